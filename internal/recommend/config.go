// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
)

// WeightTolerance is the allowed deviation of the weight sum from 1.0.
// The bound is inclusive.
const WeightTolerance = 0.01

// sumEpsilon absorbs float rounding so that sums written as exactly
// 1.0 ± WeightTolerance in decimal are accepted.
const sumEpsilon = 1e-9

// Weights defines the contribution of each signal to the fused score.
// Weights are not normalized: they must be supplied explicitly and already
// sum to 1.0. The zero value is invalid.
type Weights struct {
	collaborative  float64
	contentBased   float64
	knowledgeGraph float64
	llm            float64
}

// NewWeights validates and builds a weight set. Every weight must lie in
// [0, 1] and their sum must be within WeightTolerance of 1.0.
func NewWeights(collaborative, contentBased, knowledgeGraph, llm float64) (Weights, error) {
	w := Weights{
		collaborative:  collaborative,
		contentBased:   contentBased,
		knowledgeGraph: knowledgeGraph,
		llm:            llm,
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Validate checks range and sum constraints.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Validate() error {
	for _, s := range AllSignals {
		v := w.For(s)
		if math.IsNaN(v) || v < 0 || v > 1 {
			return NewConfigurationError("weights."+s.String(), fmt.Sprintf("must be in [0, 1], got %v", v))
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightTolerance+sumEpsilon {
		return NewConfigurationError("weights", fmt.Sprintf("must sum to 1.0 ± %.2f, got %.4f", WeightTolerance, sum))
	}
	return nil
}

// For returns the weight of signal s.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) For(s Signal) float64 {
	switch s {
	case SignalCollaborative:
		return w.collaborative
	case SignalContentBased:
		return w.contentBased
	case SignalKnowledgeGraph:
		return w.knowledgeGraph
	case SignalLLM:
		return w.llm
	default:
		return 0
	}
}

// Sum returns the total of all four weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Sum() float64 {
	return w.collaborative + w.contentBased + w.knowledgeGraph + w.llm
}

// ToMap returns the weights keyed by signal name.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) ToMap() map[string]float64 {
	m := make(map[string]float64, len(AllSignals))
	for _, s := range AllSignals {
		m[s.String()] = w.For(s)
	}
	return m
}

// MarshalJSON encodes the weights as a signal-keyed object.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.ToMap())
}

// EngineConfig contains operational parameters of the engine.
type EngineConfig struct {
	// CallTimeout bounds every individual scorer call.
	// Default: 10s.
	CallTimeout time.Duration `json:"call_timeout"`

	// Workers bounds how many candidates are scored concurrently.
	// Default: 8.
	Workers int `json:"workers"`
}

// DefaultEngineConfig returns the default operational parameters.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CallTimeout: 10 * time.Second,
		Workers:     8,
	}
}

// withDefaults fills zero fields and rejects negative values.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (c EngineConfig) withDefaults() (EngineConfig, error) {
	def := DefaultEngineConfig()
	if c.CallTimeout < 0 {
		return c, NewConfigurationError("engine.call_timeout", "must not be negative")
	}
	if c.Workers < 0 {
		return c, NewConfigurationError("engine.workers", "must not be negative")
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = def.CallTimeout
	}
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	return c, nil
}
