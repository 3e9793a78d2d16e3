// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

/*
Package metrics provides Prometheus instrumentation for the recommendation
pipeline.

All metrics are registered with promauto on the default registry when the
package is imported. Names share the rfpmatch_ prefix.

# Metric Categories

Recommendation:
  - rfpmatch_recommend_requests_total (counter)
    Labels: outcome (success, partial, invalid, insufficient_signals,
    configuration_error, canceled, error)
  - rfpmatch_signal_duration_seconds (histogram)
    Labels: signal
  - rfpmatch_signal_unavailable_total (counter)
    Labels: signal, kind

Stores:
  - rfpmatch_store_query_duration_seconds (histogram)
    Labels: store (order_store, graph_store), operation
  - rfpmatch_store_query_errors_total (counter)
    Labels: store, operation

Model providers:
  - rfpmatch_model_requests_total (counter)
    Labels: provider, operation (chat, embed), result (success, failure, rejected)
  - rfpmatch_model_request_duration_seconds (histogram)
    Labels: provider, operation
  - rfpmatch_circuit_breaker_state (gauge)
    Values: 0=closed, 1=half-open, 2=open
  - rfpmatch_circuit_breaker_transitions_total (counter)
    Labels: name, from, to

Cache:
  - rfpmatch_cache_requests_total (counter)
    Labels: namespace (embedding, llm_judgment, co_purchase), result (hit, miss, error)

# Usage

Record helpers keep label order in one place:

	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	metrics.RecordStoreQuery("order_store", "purchase_history", time.Since(start), err)

RFPMatch runs as a CLI rather than a scraped service, so WriteText dumps the
current values in the text exposition format after a run:

	rfpmatch recommend --rfp rfp.txt --candidates products.json --metrics-out metrics.prom
*/
package metrics
