// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// farFuture is the expiry of entries stored without a TTL.
var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// Store is a key to bytes cache with per-entry TTL. Implementations must be
// safe for concurrent use. A cache is never authoritative: callers treat
// errors as misses.
type Store interface {
	// Get returns the value and true if present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. Concurrent writes are last-write-wins.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// StatsSource is implemented by stores that count their own lookups.
type StatsSource interface {
	Stats() Stats
}

// Backend selects a Store implementation.
type Backend string

const (
	// BackendNone disables caching.
	BackendNone Backend = "none"

	// BackendMemory is a bounded in-process LRU with TTL.
	BackendMemory Backend = "memory"

	// BackendBadger is a memory tier in front of a persistent BadgerDB tier.
	BackendBadger Backend = "badger"
)

// Config holds configuration for opening a Store.
type Config struct {
	Backend Backend

	// Capacity bounds the memory tier.
	Capacity int

	// Path is the BadgerDB directory. Required for BackendBadger unless
	// InMemory is set.
	Path string

	// InMemory keeps the BadgerDB tier off disk (tests).
	InMemory bool

	// CleanupInterval controls the memory tier's expiry sweep.
	CleanupInterval time.Duration
}

// Open creates the Store selected by cfg. It returns a nil Store for
// BackendNone. The returned close function releases every tier and is never
// nil. For BackendBadger it also garbage collects the value log.
func Open(cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case BackendNone, "":
		return nil, noop, nil
	case BackendMemory:
		mem := NewMemory(cfg.Capacity, cfg.CleanupInterval)
		return mem, mem.Close, nil
	case BackendBadger:
		back, err := OpenBadger(cfg.Path, cfg.InMemory)
		if err != nil {
			return nil, noop, err
		}
		front := NewMemory(cfg.Capacity, cfg.CleanupInterval)
		closeAll := func() error {
			return errors.Join(front.Close(), back.RunGC(gcDiscardRatio), back.Close())
		}
		return NewTiered(front, back), closeAll, nil
	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// GenerateKey creates a cache key from the namespace and parameters
func GenerateKey(namespace string, params interface{}) string {
	// Serialize parameters to JSON
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to simple string key
		return fmt.Sprintf("%s:%v", namespace, params)
	}

	// Hash the JSON data for a compact key
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", namespace, hash[:16])
}
