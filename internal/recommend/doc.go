// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package recommend implements the hybrid product recommendation engine used
// to answer RFP (request for proposal) quotations.
//
// # Architecture
//
// The engine ranks a set of candidate products against free-text buyer
// requirements by fusing four independent evidence signals:
//
//   - Collaborative: purchase-history overlap for the buyer and similar buyers
//   - Content-Based: lexical and semantic similarity of product text
//   - Knowledge Graph: tool/task/safety compatibility via graph traversal
//   - LLM: a contextual language-model judgment with a rationale
//
// Signal implementations live in the algorithms subpackage; the engine only
// depends on the CollaborativeScorer, ContentScorer, GraphScorer and LLMScorer
// interfaces declared here.
//
// # Fusion
//
// Weights are supplied explicitly through NewWeights and must sum to 1.0
// within WeightTolerance. There are no built-in defaults. The fused score of
// a product is the weighted sum of its available signals and Coverage is the
// total weight of those signals.
//
// # Failure Policy
//
// A signal failing with a dependency or validation error contributes zero,
// is marked unavailable in the product's Breakdown and is logged at warn
// level. A product whose four signals all fail is excluded from the ranking.
// When every candidate is excluded, Recommend returns an
// *InsufficientSignalsError. A ConfigurationError raised at score time aborts
// the request.
//
// # Usage
//
//	weights, err := recommend.NewWeights(0.25, 0.25, 0.30, 0.20)
//	if err != nil {
//	    return err
//	}
//	engine, err := recommend.NewEngine(weights, extractor, recommend.Scorers{
//	    Collaborative: collab,
//	    Content:       content,
//	    Graph:         graph,
//	    LLM:           llm,
//	}, recommend.DefaultEngineConfig(), logger)
//
//	result, err := engine.Recommend(ctx, recommend.Request{
//	    RFPText:    "need waterproof safety gloves size L",
//	    Candidates: products,
//	    UserID:     "buyer-42",
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Candidates are scored on a bounded
// worker pool and the four signals of each candidate run concurrently, each
// under its own call timeout.
package recommend
