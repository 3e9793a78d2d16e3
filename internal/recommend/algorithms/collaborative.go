// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/rfpmatch/internal/cache"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// CollaborativeConfig contains configuration for purchase-history filtering.
type CollaborativeConfig struct {
	// MinOverlap is the number of distinct purchase categories another buyer
	// must share with the user to count as similar.
	// Default: 2.
	MinOverlap int

	// CoPurchaseCap normalizes co-purchase counts: min(count/cap, 1).
	// Default: 10.
	CoPurchaseCap int
}

// DefaultCollaborativeConfig returns default collaborative filtering configuration.
func DefaultCollaborativeConfig() CollaborativeConfig {
	return CollaborativeConfig{
		MinOverlap:    2,
		CoPurchaseCap: 10,
	}
}

// Collaborative scores products from historical purchase overlap.
//
// Two sub-signals are averaged when computable:
//
//	co-purchase  = min(orders containing the product and any history item / cap, 1)
//	similar-user = similar users who bought the product / |similar users|
//
// A user with no history and no similar users scores exactly 0.
type Collaborative struct {
	store OrderStore
	cfg   CollaborativeConfig
	memo  *cache.Memo
}

// NewCollaborative creates a collaborative scorer. memo may be nil.
func NewCollaborative(store OrderStore, cfg CollaborativeConfig, memo *cache.Memo) (*Collaborative, error) {
	if store == nil {
		return nil, recommend.NewConfigurationError("order_store", "not configured")
	}
	defaults := DefaultCollaborativeConfig()
	if cfg.MinOverlap <= 0 {
		cfg.MinOverlap = defaults.MinOverlap
	}
	if cfg.CoPurchaseCap <= 0 {
		cfg.CoPurchaseCap = defaults.CoPurchaseCap
	}
	return &Collaborative{store: store, cfg: cfg, memo: memo}, nil
}

// PurchaseHistory returns the user's purchases. An empty user id or an
// unknown user yields an empty history.
func (c *Collaborative) PurchaseHistory(ctx context.Context, userID string) ([]recommend.PurchaseRecord, error) {
	if userID == "" {
		return []recommend.PurchaseRecord{}, nil
	}
	return c.store.PurchaseHistory(ctx, userID)
}

// SimilarUsers returns users sharing at least MinOverlap distinct purchase
// categories with the given history.
func (c *Collaborative) SimilarUsers(ctx context.Context, userID string, history []recommend.PurchaseRecord) ([]string, error) {
	categories := distinct(history, func(r recommend.PurchaseRecord) string { return r.Category })
	if userID == "" || len(categories) == 0 {
		return []string{}, nil
	}
	return c.store.UsersSharingCategories(ctx, userID, categories, c.cfg.MinOverlap)
}

// Score returns the collaborative signal for productID and userID in [0,1].
func (c *Collaborative) Score(ctx context.Context, productID, userID string) (float64, error) {
	if userID == "" {
		return 0, nil
	}

	history, err := c.PurchaseHistory(ctx, userID)
	if err != nil {
		return 0, err
	}
	similar, err := c.SimilarUsers(ctx, userID, history)
	if err != nil {
		return 0, err
	}
	if len(history) == 0 && len(similar) == 0 {
		return 0, nil
	}

	var sum float64
	var computed int

	if len(history) > 0 {
		count, err := c.coPurchaseCount(ctx, productID, history)
		if err != nil {
			return 0, err
		}
		sum += clamp01(float64(count) / float64(c.cfg.CoPurchaseCap))
		computed++
	}

	if len(similar) > 0 {
		buyers, err := c.store.CountBuyers(ctx, productID, similar)
		if err != nil {
			return 0, err
		}
		sum += clamp01(float64(buyers) / float64(len(similar)))
		computed++
	}

	return clamp01(sum / float64(computed)), nil
}

type coPurchaseKey struct {
	Product string   `json:"product"`
	History []string `json:"history"`
}

func (c *Collaborative) coPurchaseCount(ctx context.Context, productID string, history []recommend.PurchaseRecord) (int, error) {
	ids := distinct(history, func(r recommend.PurchaseRecord) string { return r.ProductID })
	key := coPurchaseKey{Product: productID, History: ids}
	return cache.Do(ctx, c.memo, key, func(ctx context.Context) (int, error) {
		return c.store.CoPurchaseCount(ctx, productID, ids)
	})
}

// distinct returns the sorted distinct non-empty values of field.
func distinct(records []recommend.PurchaseRecord, field func(recommend.PurchaseRecord) string) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for i := range records {
		v := field(records[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
