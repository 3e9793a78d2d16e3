// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

/*
Package cache memoizes expensive pure computations: text embeddings,
language-model judgments and co-purchase counts.

The cache is never authoritative. A miss, an expired entry or a failing
backend only changes latency; the underlying computation always runs when no
valid entry is found.

# Tiers

  - Memory: bounded LRU with per-entry TTL and hit/miss statistics
  - Badger: persistent BadgerDB store using native entry TTLs
  - Tiered: memory in front of Badger, promoting back-tier hits

Open selects a tier combination from Config:

	store, closeFn, err := cache.Open(cache.Config{
	    Backend:  cache.BackendBadger,
	    Path:     "/var/lib/rfpmatch/cache",
	    Capacity: 10000,
	})
	if err != nil {
	    return err
	}
	defer closeFn()

# Memoization

Memo wraps a Store with a namespace, a TTL and a singleflight group so that
concurrent identical computations run once:

	memo := cache.NewMemo(store, "embedding", 24*time.Hour, logger)
	vec, err := cache.Do(ctx, memo, []string{model, text}, func(ctx context.Context) ([]float64, error) {
	    return provider.Embed(ctx, text)
	})

Values are encoded as JSON. Cache read and write failures are logged at warn
level and bypassed. Errors returned by the computation are never cached.

# Cache Key Conventions

Keys are "<namespace>:<hash>" where the hash is the first 16 bytes of the
SHA-256 of the JSON-encoded parameters (see GenerateKey):

	embedding:<hash>     // model name + text
	llm:<hash>           // model, product, requirements
	copurchase:<hash>    // product id + sorted history product ids

# Thread Safety

All stores are safe for concurrent use. Concurrent writes to the same key
are last-write-wins.
*/
package cache
