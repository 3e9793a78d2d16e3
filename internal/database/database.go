// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/rs/zerolog"
)

// storeName labels order store metrics and dependency errors.
const storeName = "order_store"

// Config holds DuckDB connection settings.
type Config struct {
	// Path is the database file. Empty or ":memory:" opens an in-memory database.
	Path string

	// Threads is the DuckDB worker thread count. Zero uses runtime.NumCPU().
	Threads int

	// MaxMemory is the DuckDB memory limit (e.g. "1GB"). Empty uses the DuckDB default.
	MaxMemory string

	// QueryTimeout bounds each query. Zero uses 30s.
	QueryTimeout time.Duration
}

// DB is the DuckDB-backed order store. It is safe for concurrent use.
type DB struct {
	conn   *sql.DB
	cfg    Config
	logger zerolog.Logger
}

// Open opens the DuckDB database and creates the schema if needed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*DB, error) {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}

	conn, err := sql.Open("duckdb", connectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	db := &DB{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "database").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	db.configureConnectionPool()

	if err := db.createTables(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}

	db.logger.Info().Str("path", displayPath(cfg.Path)).Msg("order store opened")
	return db, nil
}

// connectionString builds the DuckDB DSN.
func connectionString(cfg Config) string {
	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}

	var params []string
	if cfg.Threads > 0 {
		params = append(params, fmt.Sprintf("threads=%d", cfg.Threads))
	}
	if cfg.MaxMemory != "" {
		params = append(params, "max_memory="+cfg.MaxMemory)
	}
	if len(params) == 0 {
		return path
	}
	return path + "?" + strings.Join(params, "&")
}

// configureConnectionPool sets connection pool parameters
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// createTables creates the purchases table and its indexes.
func (db *DB) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS purchases (
			order_id     TEXT NOT NULL,
			user_id      TEXT NOT NULL,
			product_id   TEXT NOT NULL,
			category     TEXT NOT NULL DEFAULT '',
			purchased_at TIMESTAMP NOT NULL,
			PRIMARY KEY (order_id, product_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_product ON purchases(product_id)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// queryContext derives the per-query timeout context.
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.cfg.QueryTimeout)
}

func displayPath(path string) string {
	if path == "" || path == ":memory:" {
		return ":memory:"
	}
	return path
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
