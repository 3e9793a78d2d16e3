// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the recommendation pipeline:
// - Recommendation request outcomes
// - Per-signal latency and unavailability
// - Order store and graph store query performance
// - Model provider calls and circuit breaker state
// - Cache efficiency

var (
	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfpmatch_recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "success", "partial", "invalid", "insufficient_signals", "configuration_error", "canceled", "error"
	)

	SignalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rfpmatch_signal_duration_seconds",
			Help:    "Duration of a single signal computation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"signal"},
	)

	SignalUnavailable = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfpmatch_signal_unavailable_total",
			Help: "Total number of signal computations marked unavailable",
		},
		[]string{"signal", "kind"},
	)

	// Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rfpmatch_store_query_duration_seconds",
			Help:    "Duration of order store and graph store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfpmatch_store_query_errors_total",
			Help: "Total number of failed store queries",
		},
		[]string{"store", "operation"},
	)

	// Model Provider Metrics
	ModelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfpmatch_model_requests_total",
			Help: "Total number of model provider requests",
		},
		[]string{"provider", "operation", "result"}, // result: "success", "failure", "rejected"
	)

	ModelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rfpmatch_model_request_duration_seconds",
			Help:    "Duration of model provider requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rfpmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfpmatch_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Cache Metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfpmatch_cache_requests_total",
			Help: "Total number of cache lookups by namespace and result",
		},
		[]string{"namespace", "result"}, // result: "hit", "miss", "error"
	)
)

// RecordStoreQuery records a store query metric
func RecordStoreQuery(store, operation string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(store, operation).Inc()
	}
}

// RecordModelRequest records a model provider request metric
func RecordModelRequest(provider, operation, result string, duration time.Duration) {
	ModelRequests.WithLabelValues(provider, operation, result).Inc()
	ModelRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache lookup result
func RecordCacheLookup(namespace, result string) {
	CacheRequests.WithLabelValues(namespace, result).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change and updates
// the state gauge.
func RecordCircuitBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
