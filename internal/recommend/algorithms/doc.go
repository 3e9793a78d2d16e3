// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package algorithms implements the four signal scorers consumed by the
// recommendation engine.
//
// # Scorers
//
//   - Collaborative: purchase-history overlap (co-purchase and similar-user
//     frequency) over an OrderStore
//   - Content: mean of lexical term-frequency cosine and embedding cosine
//   - KnowledgeGraph: best tool/task/safety path confidence over a GraphStore
//   - LLMJudge: a language-model compatibility judgment
//
// Each scorer returns a value in [0,1] or a typed error from
// internal/recommend. None substitutes a neutral value when a dependency
// fails: unavailability is always an explicit error, so the engine can mark
// the signal unavailable instead of ranking on a fabricated score.
//
// # Caching
//
// Co-purchase counts, embeddings and judgments are memoized through
// cache.Memo. A nil memo disables caching without changing results.
//
// # Thread Safety
//
// All scorers hold only immutable configuration and collaborator handles and
// are safe for concurrent use.
package algorithms
