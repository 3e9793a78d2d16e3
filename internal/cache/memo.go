// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/rfpmatch/internal/metrics"
)

// Memo memoizes a pure computation through a Store under a namespace.
// Concurrent identical computations are collapsed into one. Cache failures
// are logged and bypassed; computation errors are returned and never cached.
//
// A nil *Memo is valid and always computes.
type Memo struct {
	store     Store
	namespace string
	ttl       time.Duration
	group     singleflight.Group
	logger    zerolog.Logger
}

// NewMemo creates a memoizer. store may be nil, in which case only
// concurrent duplicate calls are collapsed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMemo(store Store, namespace string, ttl time.Duration, logger zerolog.Logger) *Memo {
	return &Memo{
		store:     store,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger.With().Str("component", "cache").Str("namespace", namespace).Logger(),
	}
}

// Namespace returns the memo's key namespace.
func (m *Memo) Namespace() string {
	if m == nil {
		return ""
	}
	return m.namespace
}

// Do returns the cached value for params, or runs compute and caches its
// result. params must be JSON-serializable and fully identify the input.
func Do[T any](ctx context.Context, m *Memo, params interface{}, compute func(context.Context) (T, error)) (T, error) {
	if m == nil {
		return compute(ctx)
	}

	key := GenerateKey(m.namespace, params)

	if cached, ok := m.lookup(ctx, key); ok {
		var value T
		err := json.Unmarshal(cached, &value)
		if err == nil {
			return value, nil
		}
		m.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
	}

	run := func() (interface{}, error) {
		value, err := compute(ctx)
		if err != nil {
			return value, err
		}
		m.save(ctx, key, value)
		return value, nil
	}

	led := false
	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		led = true
		return run()
	})
	// A joined call inherits the leader's context. When the leader was
	// canceled or timed out and this caller is still live, compute again.
	if err != nil && !led && isContextError(err) && ctx.Err() == nil {
		m.logger.Debug().Err(err).Str("key", key).Msg("shared computation aborted, recomputing")
		v, err = run()
	}
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := v.(T)
	return value, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// lookup reads key from the store, recording the result.
func (m *Memo) lookup(ctx context.Context, key string) ([]byte, bool) {
	if m.store == nil {
		return nil, false
	}

	data, ok, err := m.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCacheLookup(m.namespace, "error")
		m.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, bypassing")
		return nil, false
	case !ok:
		metrics.RecordCacheLookup(m.namespace, "miss")
		return nil, false
	default:
		metrics.RecordCacheLookup(m.namespace, "hit")
		return data, true
	}
}

// save writes value under key, logging failures.
func (m *Memo) save(ctx context.Context, key string, value interface{}) {
	if m.store == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := m.store.Set(ctx, key, data, m.ttl); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("cache write failed, bypassing")
	}
}
