// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordStoreQuery tests store query metric recording
func TestRecordStoreQuery(t *testing.T) {
	tests := []struct {
		name      string
		store     string
		operation string
		err       error
		wantErr   float64
	}{
		{name: "successful query", store: "order_store", operation: "purchase_history"},
		{name: "failed query", store: "graph_store", operation: "out_edges", err: errors.New("database is locked"), wantErr: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(StoreQueryErrors.WithLabelValues(tt.store, tt.operation))
			RecordStoreQuery(tt.store, tt.operation, 5*time.Millisecond, tt.err)
			after := testutil.ToFloat64(StoreQueryErrors.WithLabelValues(tt.store, tt.operation))
			if got := after - before; got != tt.wantErr {
				t.Errorf("error counter delta = %v, want %v", got, tt.wantErr)
			}
		})
	}
}

// TestRecordModelRequest tests model request metric recording
func TestRecordModelRequest(t *testing.T) {
	counter := ModelRequests.WithLabelValues("ollama", "chat", "success")
	before := testutil.ToFloat64(counter)

	RecordModelRequest("ollama", "chat", "success", 120*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("model request counter delta = %v, want 1", got)
	}
}

// TestRecordCacheLookup tests cache metric recording
func TestRecordCacheLookup(t *testing.T) {
	hits := CacheRequests.WithLabelValues("embedding", "hit")
	misses := CacheRequests.WithLabelValues("embedding", "miss")
	hitsBefore := testutil.ToFloat64(hits)
	missesBefore := testutil.ToFloat64(misses)

	RecordCacheLookup("embedding", "hit")
	RecordCacheLookup("embedding", "hit")
	RecordCacheLookup("embedding", "miss")

	if got := testutil.ToFloat64(hits) - hitsBefore; got != 2 {
		t.Errorf("hit delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(misses) - missesBefore; got != 1 {
		t.Errorf("miss delta = %v, want 1", got)
	}
}

// TestRecordCircuitBreakerTransition tests breaker metric recording
func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("openai", "closed", "open", 2)

	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("openai")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("openai", "closed", "open")); got < 1 {
		t.Errorf("transition counter = %v, want >= 1", got)
	}
}
