// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package logging provides the zerolog-based structured logging used across
// RFPMatch.
//
// # Overview
//
// A single global logger is configured once at startup with Init. Components
// receive a zerolog.Logger by value and derive children with a "component"
// field; the global helpers exist for the CLI and tests.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	storeLogger := logging.WithComponent("order_store")
//
// # Context Propagation
//
// Two identifiers travel on the context:
//
//	correlation_id  one CLI invocation or batch run (8 characters)
//	request_id      one recommendation request (full UUID)
//
// Ctx and WithContext attach both to log lines when present:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Int("candidates", n).Msg("ranking")
//
// # Output
//
// JSON is the default. Console output is intended for local use:
//
//	{"level":"warn","component":"engine","request_id":"...","signal":"llm","message":"signal unavailable"}
//
// # Secrets
//
// MaskSecret shortens credentials such as model API keys before they are
// printed or logged.
package logging
