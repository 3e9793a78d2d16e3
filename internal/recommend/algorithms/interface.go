// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package algorithms

import (
	"context"
	"math"

	"github.com/tomtom215/rfpmatch/internal/graph"
	"github.com/tomtom215/rfpmatch/internal/models"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// OrderStore is the read side of the purchase history store.
// Implemented by *database.DB.
type OrderStore interface {
	PurchaseHistory(ctx context.Context, userID string) ([]recommend.PurchaseRecord, error)
	UsersSharingCategories(ctx context.Context, userID string, categories []string, minOverlap int) ([]string, error)
	CountBuyers(ctx context.Context, productID string, userIDs []string) (int, error)
	CoPurchaseCount(ctx context.Context, productID string, productIDs []string) (int, error)
}

// GraphStore is the read side of the knowledge graph.
// Implemented by *graph.Store.
type GraphStore interface {
	Tasks(ctx context.Context) ([]graph.Node, error)
	ToolNode(ctx context.Context, productID string) (string, bool, error)
	OutEdges(ctx context.Context, nodeID string, relations ...graph.Relation) ([]graph.Edge, error)
}

// Embedder produces dense text embeddings. Implemented by *models.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbeddingModelName() string
}

// ChatModel issues chat completions. Implemented by *models.Client.
type ChatModel interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	ChatModelName() string
}

// ContextCancelled checks if the context has been cancelled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// clamp01 bounds v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
