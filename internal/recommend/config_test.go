// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package recommend

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestNewWeights(t *testing.T) {
	tests := []struct {
		name    string
		w       [4]float64
		wantErr bool
	}{
		{"exact sum", [4]float64{0.25, 0.25, 0.30, 0.20}, false},
		{"within tolerance high", [4]float64{0.25, 0.25, 0.30, 0.209}, false},
		{"within tolerance low", [4]float64{0.25, 0.25, 0.30, 0.191}, false},
		{"upper bound inclusive", [4]float64{0.25, 0.25, 0.25, 0.26}, false},
		{"upper bound inclusive shifted", [4]float64{0.25, 0.25, 0.30, 0.21}, false},
		{"lower bound inclusive", [4]float64{0.25, 0.25, 0.30, 0.19}, false},
		{"just above upper bound", [4]float64{0.25, 0.25, 0.30, 0.2101}, true},
		{"just below lower bound", [4]float64{0.25, 0.25, 0.30, 0.1899}, true},
		{"single signal", [4]float64{0, 0, 0, 1}, false},
		{"sum too high", [4]float64{0.3, 0.3, 0.3, 0.3}, true},
		{"sum too low", [4]float64{0.1, 0.1, 0.1, 0.1}, true},
		{"all zero", [4]float64{0, 0, 0, 0}, true},
		{"negative weight", [4]float64{-0.1, 0.5, 0.3, 0.3}, true},
		{"weight above one", [4]float64{1.1, -0.1, 0, 0}, true},
		{"NaN weight", [4]float64{math.NaN(), 0.5, 0.25, 0.25}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWeights(tt.w[0], tt.w[1], tt.w[2], tt.w[3])
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewWeights(%v) error = nil, want error", tt.w)
				}
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("NewWeights(%v) error = %T, want *ConfigurationError", tt.w, err)
				}
				if w != (Weights{}) {
					t.Errorf("NewWeights(%v) returned non-zero weights on error", tt.w)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewWeights(%v) error = %v", tt.w, err)
			}
			if got := w.For(SignalLLM); got != tt.w[3] {
				t.Errorf("For(SignalLLM) = %v, want %v", got, tt.w[3])
			}
		})
	}
}

func TestWeights_ToleranceBoundary(t *testing.T) {
	// Sweep the sum across the tolerance boundary.
	for delta := -0.02; delta <= 0.02; delta += 0.001 {
		llm := 0.20 + delta
		_, err := NewWeights(0.25, 0.25, 0.30, llm)
		inside := math.Abs(delta) <= WeightTolerance+1e-12
		outside := math.Abs(delta) > WeightTolerance+1e-6
		switch {
		case inside && err != nil:
			t.Errorf("NewWeights(sum=%.3f) error = %v, want nil", 1+delta, err)
		case outside && err == nil:
			t.Errorf("NewWeights(sum=%.3f) error = nil, want error", 1+delta)
		}
	}
}

func TestWeights_MarshalJSON(t *testing.T) {
	w, err := NewWeights(0.25, 0.25, 0.30, 0.20)
	if err != nil {
		t.Fatalf("NewWeights() error = %v", err)
	}

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var got map[string]float64
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got["knowledge_graph"] != 0.30 {
		t.Errorf("knowledge_graph = %v, want 0.30", got["knowledge_graph"])
	}
	if len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}
}

func TestEngineConfig_withDefaults(t *testing.T) {
	cfg, err := EngineConfig{Workers: 3}.withDefaults()
	if err != nil {
		t.Fatalf("withDefaults() error = %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Errorf("CallTimeout = %v, want 10s", cfg.CallTimeout)
	}

	if _, err := (EngineConfig{CallTimeout: -time.Second}).withDefaults(); err == nil {
		t.Error("withDefaults() with negative timeout error = nil, want error")
	}
}

func TestSignalScore_MarshalJSON(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		data, err := json.Marshal(Available(0.5))
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		if string(data) != `{"value":0.5,"available":true}` {
			t.Errorf("json = %s", data)
		}
	})

	t.Run("unavailable omits value", func(t *testing.T) {
		s := UnavailableScore(Unavailable("graph_store", errors.New("connection refused")))
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		if strings.Contains(string(data), "value") {
			t.Errorf("json = %s, want no value field", data)
		}
		if !strings.Contains(string(data), `"error_kind":"dependency_unavailable"`) {
			t.Errorf("json = %s, want dependency_unavailable kind", data)
		}
	})
}

func TestSignal_String(t *testing.T) {
	tests := []struct {
		signal   Signal
		expected string
	}{
		{SignalCollaborative, "collaborative"},
		{SignalContentBased, "content_based"},
		{SignalKnowledgeGraph, "knowledge_graph"},
		{SignalLLM, "llm"},
		{Signal(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.signal.String(); got != tt.expected {
				t.Errorf("Signal(%d).String() = %q, want %q", tt.signal, got, tt.expected)
			}
		})
	}
}

func TestProduct_Text(t *testing.T) {
	p := Product{Name: "Gloves", Description: "  ", Category: "hand protection", Brand: "Acme"}
	if got, want := p.Text(), "Gloves hand protection Acme"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if got := (Product{ID: "x"}).Text(); got != "" {
		t.Errorf("Text() = %q, want empty", got)
	}
}
