// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package database provides the DuckDB-backed order store used by the
// collaborative filtering signal.
//
// # Overview
//
// The store holds historical purchase lines in a single purchases table keyed
// by (order_id, product_id). The recommendation path only reads from it;
// InsertPurchases exists for ingestion and fixtures.
//
// Queries:
//   - PurchaseHistory: a buyer's purchases, newest first
//   - UsersSharingCategories: buyers sharing at least N distinct categories
//   - CountBuyers: distinct buyers of a product among a user set
//   - CoPurchaseCount: orders containing a product together with any of a set
//
// # Database Technology
//
// DuckDB is accessed through database/sql with the CGO-based driver
// (github.com/duckdb/duckdb-go/v2). An empty path or ":memory:" opens an
// in-memory database shared by every pooled connection.
//
// # Error Handling
//
// Every query failure is returned as a *recommend.DependencyUnavailableError
// naming "order_store". Empty results are valid and never errors.
package database
