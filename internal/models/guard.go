// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/rfpmatch/internal/metrics"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// BreakerConfig tunes the provider circuit breaker. Zero fields use defaults.
type BreakerConfig struct {
	// MaxRequests allowed in half-open state. Default 3.
	MaxRequests uint32
	// Interval resets counts while closed. Default 1m.
	Interval time.Duration
	// Timeout before an open breaker moves to half-open. Default 30s.
	Timeout time.Duration
	// MinRequests before the failure ratio is evaluated. Default 5.
	MinRequests uint32
	// FailureRatio at or above which the breaker opens. Default 0.6.
	FailureRatio float64
}

func (b BreakerConfig) withDefaults() BreakerConfig {
	if b.MaxRequests == 0 {
		b.MaxRequests = 3
	}
	if b.Interval <= 0 {
		b.Interval = time.Minute
	}
	if b.Timeout <= 0 {
		b.Timeout = 30 * time.Second
	}
	if b.MinRequests == 0 {
		b.MinRequests = 5
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		b.FailureRatio = 0.6
	}
	return b
}

// guard wraps provider calls with rate limiting, a circuit breaker and metrics.
type guard struct {
	provider string
	cb       *gobreaker.CircuitBreaker[interface{}]
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newGuard(provider string, ratePerSecond float64, burst int, cfg BreakerConfig, logger zerolog.Logger) *guard {
	cfg = cfg.withDefaults()
	cbName := "models-" + provider
	logger = logger.With().Str("component", "circuit_breaker").Str("name", cbName).Logger()

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateToFloat(to))
		},

		// Only dependency outages count as failures.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, recommend.ErrDependencyUnavailable)
		},
	})

	return &guard{
		provider: provider,
		cb:       cb,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logger,
	}
}

// execute runs fn under the limiter and breaker. Rejections by either are
// reported as *recommend.DependencyUnavailableError.
func (g *guard) execute(ctx context.Context, operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()

	if err := g.limiter.Wait(ctx); err != nil {
		metrics.RecordModelRequest(g.provider, operation, "rejected", time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, recommend.Unavailable(g.provider, fmt.Errorf("rate limit: %w", err))
	}

	result, err := g.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordModelRequest(g.provider, operation, "rejected", time.Since(start))
			g.logger.Warn().Err(err).Str("operation", operation).Msg("request rejected by circuit breaker")
			return nil, recommend.Unavailable(g.provider, err)
		}
		metrics.RecordModelRequest(g.provider, operation, "failure", time.Since(start))
		return nil, err
	}

	metrics.RecordModelRequest(g.provider, operation, "success", time.Since(start))
	return result, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
