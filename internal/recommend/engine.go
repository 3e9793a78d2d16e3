// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/rfpmatch/internal/logging"
	"github.com/tomtom215/rfpmatch/internal/metrics"
)

// Request outcomes recorded in metrics.
const (
	outcomeSuccess      = "success"
	outcomePartial      = "partial"
	outcomeInvalid      = "invalid"
	outcomeInsufficient = "insufficient_signals"
	outcomeConfig       = "configuration_error"
	outcomeCanceled     = "canceled"
	outcomeError        = "error"
)

// Engine fuses the four recommendation signals into a ranked list.
// It holds only immutable configuration and collaborator handles and is
// safe for concurrent use.
type Engine struct {
	weights   Weights
	config    EngineConfig
	extractor RequirementExtractor
	scorers   Scorers
	logger    zerolog.Logger
}

// NewEngine creates a new fusion engine. Weights are revalidated, and every
// collaborator must be non-nil. Violations return a *ConfigurationError.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(weights Weights, extractor RequirementExtractor, scorers Scorers, cfg EngineConfig, logger zerolog.Logger) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	switch {
	case extractor == nil:
		return nil, NewConfigurationError("extractor", "requirement extractor is required")
	case scorers.Collaborative == nil:
		return nil, NewConfigurationError("scorers.collaborative", "collaborative scorer is required")
	case scorers.Content == nil:
		return nil, NewConfigurationError("scorers.content_based", "content scorer is required")
	case scorers.Graph == nil:
		return nil, NewConfigurationError("scorers.knowledge_graph", "graph scorer is required")
	case scorers.LLM == nil:
		return nil, NewConfigurationError("scorers.llm", "llm scorer is required")
	}

	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	return &Engine{
		weights:   weights,
		config:    cfg,
		extractor: extractor,
		scorers:   scorers,
		logger:    logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Weights returns the engine's weight set.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Recommend ranks req.Candidates against req.RFPText.
//
// Signals that fail with a dependency or validation error contribute zero
// and are marked unavailable in the breakdown. A candidate with no available
// signal is excluded. If every candidate is excluded, an
// *InsufficientSignalsError is returned. If ctx is canceled mid-request, the
// completed candidates are returned in a Result with Partial set, together
// with an error wrapping the context error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}
	ctx = logging.ContextWithRequestID(ctx, req.RequestID)
	logger := logging.WithContext(ctx, e.logger).With().
		Str("user_id", req.UserID).
		Logger()

	if err := validateRequest(req); err != nil {
		e.recordOutcome(outcomeInvalid)
		return nil, err
	}

	logger.Debug().Int("candidates", len(req.Candidates)).Msg("processing recommendation request")

	reqs, err := e.extractRequirements(ctx, req.RFPText)
	if err != nil {
		e.recordOutcome(outcomeFor(err))
		return nil, err
	}

	tasks, taskErr := e.extractTasks(ctx, reqs)
	if taskErr != nil {
		if errors.Is(taskErr, ErrConfiguration) {
			e.recordOutcome(outcomeConfig)
			return nil, taskErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			e.recordOutcome(outcomeCanceled)
			return nil, fmt.Errorf("extract tasks: %w", ctxErr)
		}
		logger.Warn().Err(taskErr).Msg("task extraction failed, knowledge graph signal unavailable")
	}

	scored, completed, err := e.scoreCandidates(ctx, req, reqs, tasks, taskErr, logger)
	if err != nil {
		e.recordOutcome(outcomeFor(err))
		return nil, err
	}

	result := e.buildResult(req, reqs, tasks, scored, completed, start)

	if ctxErr := ctx.Err(); ctxErr != nil && result.Partial {
		e.recordOutcome(outcomePartial)
		logger.Warn().
			Int("completed", len(result.Items)+len(result.Excluded)).
			Int("candidates", len(req.Candidates)).
			Msg("recommendation interrupted, returning partial result")
		return result, fmt.Errorf("recommend interrupted: %w", ctxErr)
	}

	if len(result.Items) == 0 {
		e.recordOutcome(outcomeInsufficient)
		return nil, insufficientSignals(result.Excluded)
	}

	e.recordOutcome(outcomeSuccess)
	logger.Debug().
		Int("ranked", len(result.Items)).
		Int("excluded", len(result.Excluded)).
		Int64("latency_ms", result.Metadata.LatencyMS).
		Msg("recommendation complete")

	return result, nil
}

// ScoreProduct computes the fused score and breakdown of a single product
// without ranking. A product with no available signal returns an
// *InsufficientSignalsError.
//
//nolint:gocritic // hugeParam: product passed by value for immutability
func (e *Engine) ScoreProduct(ctx context.Context, product Product, reqs []Requirement, userID string) (*ScoredProduct, error) {
	if strings.TrimSpace(product.ID) == "" {
		return nil, NewValidationError("product.id", "must not be empty")
	}
	if len(reqs) == 0 {
		return nil, NewValidationError("requirements", "must not be empty")
	}

	tasks, taskErr := e.extractTasks(ctx, reqs)
	if taskErr != nil && errors.Is(taskErr, ErrConfiguration) {
		return nil, taskErr
	}

	sp, err := e.scoreProduct(ctx, product, reqs, userID, tasks, taskErr, e.logger)
	if err != nil {
		return nil, err
	}
	if sp.Breakdown.AvailableCount() == 0 {
		return nil, insufficientSignals([]ExcludedItem{{ProductID: product.ID, Breakdown: sp.Breakdown}})
	}
	return &sp, nil
}

// validateRequest rejects empty input and duplicate candidate IDs.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func validateRequest(req Request) error {
	if strings.TrimSpace(req.RFPText) == "" {
		return NewValidationError("rfp_text", "must not be empty")
	}
	if len(req.Candidates) == 0 {
		return NewValidationError("candidates", "must not be empty")
	}

	seen := make(map[string]struct{}, len(req.Candidates))
	for i, p := range req.Candidates {
		if strings.TrimSpace(p.ID) == "" {
			return NewValidationError(fmt.Sprintf("candidates[%d].id", i), "must not be empty")
		}
		if _, dup := seen[p.ID]; dup {
			return NewValidationError("candidates", fmt.Sprintf("duplicate product id %q", p.ID))
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// extractRequirements runs the extractor under the per-call timeout.
func (e *Engine) extractRequirements(ctx context.Context, text string) ([]Requirement, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	reqs, err := e.extractor.Extract(callCtx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("extract requirements: %w", ctxErr)
		}
		return nil, fmt.Errorf("extract requirements: %w", classifyCallError("requirement_extractor", err))
	}
	if len(reqs) == 0 {
		return nil, NewValidationError("rfp_text", "no requirements could be extracted")
	}
	return reqs, nil
}

// extractTasks runs knowledge-graph task extraction once per request.
func (e *Engine) extractTasks(ctx context.Context, reqs []Requirement) ([]Task, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	tasks, err := e.scorers.Graph.ExtractTasks(callCtx, reqs)
	if err != nil {
		return nil, classifyCallError(SignalKnowledgeGraph.String(), err)
	}
	return tasks, nil
}

// scoreCandidates scores every candidate on a bounded worker pool. It
// returns the scored products indexed like req.Candidates and a parallel
// slice marking which candidates finished. Only a ConfigurationError aborts.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) scoreCandidates(ctx context.Context, req Request, reqs []Requirement, tasks []Task, taskErr error, logger zerolog.Logger) ([]ScoredProduct, []bool, error) {
	scored := make([]ScoredProduct, len(req.Candidates))
	completed := make([]bool, len(req.Candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i := range req.Candidates {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			sp, err := e.scoreProduct(gctx, req.Candidates[i], reqs, req.UserID, tasks, taskErr, logger)
			if err != nil {
				if errors.Is(err, ErrConfiguration) {
					return err
				}
				// Interrupted; the candidate stays incomplete.
				return nil
			}
			scored[i] = sp
			completed[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return scored, completed, nil
}

// signalOutcome is the result of one signal call.
type signalOutcome struct {
	score     SignalScore
	rationale string
	fatal     error
	canceled  bool
}

// scoreProduct runs the four signals for one product concurrently and fuses
// them. It returns an error only for a ConfigurationError or when ctx was
// canceled before every signal finished.
//
//nolint:gocritic // hugeParam: product passed by value for immutability
func (e *Engine) scoreProduct(ctx context.Context, product Product, reqs []Requirement, userID string, tasks []Task, taskErr error, logger zerolog.Logger) (ScoredProduct, error) {
	outcomes := make([]signalOutcome, len(AllSignals))

	var g errgroup.Group
	for i, sig := range AllSignals {
		g.Go(func() error {
			outcomes[i] = e.runSignal(ctx, sig, product, reqs, userID, tasks, taskErr)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // signal goroutines never return errors

	sp := ScoredProduct{Product: product}
	for i, sig := range AllSignals {
		out := outcomes[i]
		if out.fatal != nil {
			return ScoredProduct{}, out.fatal
		}
		if out.canceled {
			return ScoredProduct{}, fmt.Errorf("score product %s: %w", product.ID, ctx.Err())
		}

		sp.Breakdown.set(sig, out.score)
		if !out.score.Available {
			metrics.SignalUnavailable.WithLabelValues(sig.String(), out.score.ErrorKind).Inc()
			logger.Warn().
				Str("product_id", product.ID).
				Str("signal", sig.String()).
				Str("error_kind", out.score.ErrorKind).
				Str("error", out.score.Error).
				Msg("signal unavailable, contributing zero")
			continue
		}

		w := e.weights.For(sig)
		sp.FusedScore += w * out.score.Value
		sp.Coverage += w
		if out.rationale != "" {
			sp.Rationale = out.rationale
		}
	}

	sp.FusedScore = clamp01(sp.FusedScore)
	sp.Coverage = clamp01(sp.Coverage)
	return sp, nil
}

// runSignal invokes one scorer under the per-call timeout and classifies
// its result.
//
//nolint:gocritic // hugeParam: product passed by value for immutability
func (e *Engine) runSignal(ctx context.Context, sig Signal, product Product, reqs []Requirement, userID string, tasks []Task, taskErr error) signalOutcome {
	if sig == SignalKnowledgeGraph && taskErr != nil {
		return signalOutcome{score: UnavailableScore(taskErr)}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	start := time.Now()
	var (
		value     float64
		rationale string
		err       error
	)
	switch sig {
	case SignalCollaborative:
		value, err = e.scorers.Collaborative.Score(callCtx, product.ID, userID)
	case SignalContentBased:
		value, err = e.scorers.Content.Score(callCtx, product, reqs)
	case SignalKnowledgeGraph:
		value, err = e.scorers.Graph.Score(callCtx, product, tasks)
	case SignalLLM:
		var j Judgment
		j, err = e.scorers.LLM.Score(callCtx, product, reqs)
		value, rationale = j.Score, j.Rationale
	}
	metrics.SignalDuration.WithLabelValues(sig.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, ErrConfiguration) {
			return signalOutcome{fatal: err}
		}
		if ctx.Err() != nil {
			return signalOutcome{canceled: true}
		}
		return signalOutcome{score: UnavailableScore(classifyCallError(sig.String(), err))}
	}

	if math.IsNaN(value) || value < 0 || value > 1 {
		verr := NewValidationError(sig.String(), fmt.Sprintf("score %v outside [0, 1]", value))
		return signalOutcome{score: UnavailableScore(verr)}
	}
	return signalOutcome{score: Available(value), rationale: rationale}
}

// classifyCallError maps a per-call timeout to a DependencyUnavailableError.
// Typed errors pass through unchanged.
func classifyCallError(dependency string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Unavailable(dependency, fmt.Errorf("call timed out: %w", err))
	}
	return err
}

// buildResult ranks completed candidates and separates exclusions.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResult(req Request, reqs []Requirement, tasks []Task, scored []ScoredProduct, completed []bool, start time.Time) *Result {
	result := &Result{
		RequestID:    req.RequestID,
		Items:        make([]RankedItem, 0, len(scored)),
		Requirements: reqs,
		Tasks:        tasks,
	}

	for i := range scored {
		if !completed[i] {
			result.Partial = true
			continue
		}
		sp := scored[i]
		if sp.Breakdown.AvailableCount() == 0 {
			result.Excluded = append(result.Excluded, ExcludedItem{
				ProductID: sp.Product.ID,
				Breakdown: sp.Breakdown,
			})
			continue
		}
		result.Items = append(result.Items, RankedItem{
			ProductID:  sp.Product.ID,
			FusedScore: sp.FusedScore,
			Coverage:   sp.Coverage,
			Breakdown:  sp.Breakdown,
			Product:    sp.Product,
			Rationale:  sp.Rationale,
		})
	}

	rankItems(result.Items)

	result.Metadata = ResultMetadata{
		UserID:     req.UserID,
		Candidates: len(req.Candidates),
		Weights:    e.weights,
		LatencyMS:  time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
	}
	return result
}

// rankItems sorts by fused score descending, ties broken by product ID
// ascending, and assigns 1-based ranks.
func rankItems(items []RankedItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].FusedScore != items[j].FusedScore {
			return items[i].FusedScore > items[j].FusedScore
		}
		return items[i].ProductID < items[j].ProductID
	})
	for i := range items {
		items[i].Rank = i + 1
	}
}

// insufficientSignals builds the total-outage error from excluded items.
func insufficientSignals(excluded []ExcludedItem) *InsufficientSignalsError {
	causes := make(map[string][]string)
	seen := make(map[string]struct{})
	for _, ex := range excluded {
		for _, sig := range AllSignals {
			s := ex.Breakdown.Get(sig)
			if s.Available || s.Error == "" {
				continue
			}
			key := sig.String() + "\x00" + s.Error
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			causes[sig.String()] = append(causes[sig.String()], s.Error)
		}
	}
	return &InsufficientSignalsError{Candidates: len(excluded), Causes: causes}
}

func (e *Engine) recordOutcome(outcome string) {
	metrics.RecommendRequests.WithLabelValues(outcome).Inc()
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return outcomeConfig
	case errors.Is(err, ErrValidation):
		return outcomeInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return outcomeError
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
