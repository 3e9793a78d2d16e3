// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package cache

import (
	"context"
	"errors"
	"time"
)

// backfillTTL is the memory-tier TTL used when promoting an entry read from
// the back tier, whose remaining TTL is unknown.
const backfillTTL = 5 * time.Minute

// Tiered reads through a fast front tier to a slower back tier and writes to
// both. Back-tier hits are promoted to the front tier.
type Tiered struct {
	front Store
	back  Store
}

// NewTiered creates a two-tier store.
func NewTiered(front, back Store) *Tiered {
	return &Tiered{front: front, back: back}
}

// Get checks the front tier, then the back tier. A front-tier error is
// ignored in favor of the back tier.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if value, ok, err := t.front.Get(ctx, key); err == nil && ok {
		return value, true, nil
	}

	value, ok, err := t.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	_ = t.front.Set(ctx, key, value, backfillTTL) //nolint:errcheck // promotion is best effort
	return value, true, nil
}

// Set writes to both tiers and joins their errors.
func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	frontTTL := ttl
	if frontTTL <= 0 || frontTTL > backfillTTL {
		frontTTL = backfillTTL
	}
	return errors.Join(
		t.front.Set(ctx, key, value, frontTTL),
		t.back.Set(ctx, key, value, ttl),
	)
}

// Stats reports the front tier's counters. It is zero when the front tier
// keeps none.
func (t *Tiered) Stats() Stats {
	if src, ok := t.front.(StatsSource); ok {
		return src.Stats()
	}
	return Stats{}
}
