// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package main is the entry point for the rfpmatch command.
//
// rfpmatch ranks candidate catalog products against the free text of a
// request for proposal, fusing four signals: purchase history, text
// similarity, a tool/task knowledge graph and a language-model judgment.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layers (defaults, config.yaml, environment)
//  2. Logging: zerolog with a per-invocation correlation ID
//  3. Stores: DuckDB order store and SQLite knowledge graph, optionally seeded
//  4. Cache: memory or BadgerDB-backed memoization
//  5. Models: chat and embedding client behind a circuit breaker
//  6. Engine: scorers wired into the fusion engine
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the command context. A recommendation canceled
// mid-run prints the candidates completed so far with "partial": true.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
