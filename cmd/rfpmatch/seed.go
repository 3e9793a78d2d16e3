// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rfpmatch/internal/database"
	"github.com/tomtom215/rfpmatch/internal/graph"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// seedData is the --seed fixture format: purchase history for the order
// store and nodes and edges for the knowledge graph.
type seedData struct {
	Purchases []recommend.PurchaseRecord `json:"purchases"`
	Nodes     []graph.Node               `json:"nodes"`
	Edges     []graph.Edge               `json:"edges"`
}

func loadSeedFile(path string) (*seedData, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an operator-supplied CLI flag
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// apply writes the fixture into the stores. Nodes are upserted before edges
// so edge endpoints exist.
func (s *seedData) apply(ctx context.Context, orders *database.DB, g *graph.Store) error {
	if err := orders.InsertPurchases(ctx, s.Purchases); err != nil {
		return fmt.Errorf("failed to seed purchases: %w", err)
	}
	for _, n := range s.Nodes {
		if err := g.UpsertNode(ctx, n); err != nil {
			return fmt.Errorf("failed to seed node %s: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges {
		if err := g.UpsertEdge(ctx, e); err != nil {
			return fmt.Errorf("failed to seed edge %s -%s-> %s: %w", e.Source, e.Relation, e.Target, err)
		}
	}
	return nil
}
