// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package graph stores the tool/task/safety knowledge graph in SQLite.
//
// Nodes are Tools (mapped to catalog products via ProductID), Tasks (carrying
// match keywords) and Safety items. Edges are directed and carry a confidence
// in [0,1]:
//
//	tool   -USED_FOR->   task
//	tool   -SIMILAR_TO-> tool
//	task   -REQUIRES->   safety
//	tool   -PROVIDES->   safety
//
// The store uses the pure-Go modernc.org/sqlite driver so the binary keeps
// no extra C dependency beyond DuckDB. Read failures are reported as
// *recommend.DependencyUnavailableError naming "graph_store".
package graph
