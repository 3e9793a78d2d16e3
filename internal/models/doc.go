// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package models provides language-model and embedding clients for the
// content-based and LLM analysis signals.
//
// Two providers are supported:
//   - openai: any OpenAI-compatible endpoint (/chat/completions, /embeddings)
//   - ollama: a local Ollama server (/api/chat, /api/embeddings)
//
// Every call passes through a token-bucket rate limiter
// (golang.org/x/time/rate) and a circuit breaker (sony/gobreaker). Breaker
// state and transitions are exported through internal/metrics.
//
// Error mapping:
//   - transport failure, 408, 429, 5xx, open breaker: DependencyUnavailableError
//   - 401, 403, missing credentials or models: ConfigurationError
//   - other 4xx, undecodable or empty response: ValidationError
//
// Only DependencyUnavailableError counts as a breaker failure.
package models
