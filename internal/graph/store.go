// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/tomtom215/rfpmatch/internal/metrics"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

const storeName = "graph_store"

// NodeKind classifies graph nodes.
type NodeKind string

const (
	KindTool   NodeKind = "tool"
	KindTask   NodeKind = "task"
	KindSafety NodeKind = "safety"
)

// Relation is a directed edge label.
type Relation string

const (
	// UsedFor links a tool to a task it performs.
	UsedFor Relation = "USED_FOR"
	// SimilarTo links two interchangeable tools.
	SimilarTo Relation = "SIMILAR_TO"
	// Requires links a task to a safety item it needs.
	Requires Relation = "REQUIRES"
	// Provides links a tool to a safety item it delivers.
	Provides Relation = "PROVIDES"
)

func (r Relation) valid() bool {
	switch r {
	case UsedFor, SimilarTo, Requires, Provides:
		return true
	}
	return false
}

// Node is a Tool, Task or Safety node. ProductID is set only on tool nodes
// that correspond to a catalog product.
type Node struct {
	ID        string   `json:"id"`
	Kind      NodeKind `json:"kind"`
	Name      string   `json:"name"`
	Keywords  []string `json:"keywords,omitempty"`
	ProductID string   `json:"product_id,omitempty"`
}

// Edge is a weighted directed relation.
type Edge struct {
	Source     string   `json:"source"`
	Relation   Relation `json:"relation"`
	Target     string   `json:"target"`
	Confidence float64  `json:"confidence"`
}

// Config holds SQLite settings for the graph store.
type Config struct {
	// Path is the database file. Empty or ":memory:" opens a private in-memory database.
	Path string

	// QueryTimeout bounds each query. Zero uses 10s.
	QueryTimeout time.Duration
}

// Store is the SQLite-backed knowledge graph.
type Store struct {
	db     *sql.DB
	cfg    Config
	logger zerolog.Logger
}

// Open opens (or creates) the graph database and migrates its schema.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}

	inMemory := cfg.Path == "" || cfg.Path == ":memory:"
	dsn := ":memory:"
	if !inMemory {
		dsn = "file:" + cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open graph db: %w", err)
	}
	if inMemory {
		// Every new connection to ":memory:" is a fresh empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "graph").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	path := cfg.Path
	if inMemory {
		path = ":memory:"
	}
	s.logger.Info().Str("path", path).Msg("graph store opened")
	return s, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			keywords   TEXT NOT NULL DEFAULT '[]',
			product_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			source     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			relation   TEXT NOT NULL,
			target     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			confidence REAL NOT NULL,
			PRIMARY KEY (source, relation, target)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_product ON nodes(product_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate graph schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertNode inserts or replaces a node.
func (s *Store) UpsertNode(ctx context.Context, n Node) (err error) {
	if strings.TrimSpace(n.ID) == "" {
		return recommend.NewValidationError("node.id", "must not be empty")
	}
	switch n.Kind {
	case KindTool, KindTask, KindSafety:
	default:
		return recommend.NewValidationError("node.kind", fmt.Sprintf("unknown kind %q", n.Kind))
	}

	keywords, err := json.Marshal(normalizeKeywords(n.Keywords))
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "upsert_node", time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (id, kind, name, keywords, product_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			keywords = excluded.keywords,
			product_id = excluded.product_id`,
		n.ID, string(n.Kind), n.Name, string(keywords), n.ProductID)
	if err != nil {
		return unavailable("upsert node", err)
	}
	return nil
}

// UpsertEdge inserts or replaces an edge. Both endpoints must exist.
func (s *Store) UpsertEdge(ctx context.Context, e Edge) (err error) {
	if e.Source == "" || e.Target == "" {
		return recommend.NewValidationError("edge", "source and target are required")
	}
	if !e.Relation.valid() {
		return recommend.NewValidationError("edge.relation", fmt.Sprintf("unknown relation %q", e.Relation))
	}
	if math.IsNaN(e.Confidence) || e.Confidence < 0 || e.Confidence > 1 {
		return recommend.NewValidationError("edge.confidence", fmt.Sprintf("%v outside [0,1]", e.Confidence))
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "upsert_edge", time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	var present int
	if err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nodes WHERE id IN (?, ?)`, e.Source, e.Target).Scan(&present); err != nil {
		return unavailable("check edge endpoints", err)
	}
	want := 2
	if e.Source == e.Target {
		want = 1
	}
	if present != want {
		return recommend.NewValidationError("edge", fmt.Sprintf("endpoint missing for %s -%s-> %s", e.Source, e.Relation, e.Target))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO edges (source, relation, target, confidence)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source, relation, target) DO UPDATE SET confidence = excluded.confidence`,
		e.Source, string(e.Relation), e.Target, e.Confidence)
	if err != nil {
		return unavailable("upsert edge", err)
	}
	return nil
}

// Tasks returns every task node ordered by id.
func (s *Store) Tasks(ctx context.Context) (tasks []Node, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "tasks", time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, keywords, product_id
		FROM nodes
		WHERE kind = ?
		ORDER BY id`, string(KindTask))
	if err != nil {
		return nil, unavailable("query tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks = make([]Node, 0)
	for rows.Next() {
		n, scanErr := scanNode(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		tasks = append(tasks, n)
	}
	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate tasks", err)
	}
	return tasks, nil
}

// ToolNode returns the id of the tool node mapped to productID.
func (s *Store) ToolNode(ctx context.Context, productID string) (id string, found bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "tool_node", time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM nodes
		WHERE kind = ? AND product_id = ?
		ORDER BY id LIMIT 1`, string(KindTool), productID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, unavailable("query tool node", err)
	}
	return id, true, nil
}

// OutEdges returns edges leaving nodeID, restricted to relations when given.
func (s *Store) OutEdges(ctx context.Context, nodeID string, relations ...Relation) (edges []Edge, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "out_edges", time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	query := `SELECT source, relation, target, confidence FROM edges WHERE source = ?`
	args := []interface{}{nodeID}
	if len(relations) > 0 {
		query += ` AND relation IN (` + strings.TrimSuffix(strings.Repeat("?, ", len(relations)), ", ") + `)`
		for _, r := range relations {
			args = append(args, string(r))
		}
	}
	query += ` ORDER BY relation, target`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query edges", err)
	}
	defer func() { _ = rows.Close() }()

	edges = make([]Edge, 0)
	for rows.Next() {
		var e Edge
		var rel string
		if err = rows.Scan(&e.Source, &rel, &e.Target, &e.Confidence); err != nil {
			return nil, unavailable("scan edge", err)
		}
		e.Relation = Relation(rel)
		edges = append(edges, e)
	}
	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate edges", err)
	}
	return edges, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row scanner) (Node, error) {
	var n Node
	var kind, keywords string
	if err := row.Scan(&n.ID, &kind, &n.Name, &keywords, &n.ProductID); err != nil {
		return Node{}, unavailable("scan node", err)
	}
	n.Kind = NodeKind(kind)
	if err := json.Unmarshal([]byte(keywords), &n.Keywords); err != nil {
		return Node{}, fmt.Errorf("decode keywords for node %s: %w", n.ID, err)
	}
	return n, nil
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func unavailable(operation string, err error) error {
	return recommend.Unavailable(storeName, fmt.Errorf("%s: %w", operation, err))
}
