// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryBasicOperations(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, 0)
	defer m.Close()

	if err := m.Set(ctx, "key1", []byte("value1"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := m.Get(ctx, "key1")
	if err != nil || !ok {
		t.Fatalf("Get(key1) = %v, %v, want hit", ok, err)
	}
	if string(value) != "value1" {
		t.Errorf("Get(key1) = %q, want value1", value)
	}

	if _, ok, _ := m.Get(ctx, "key2"); ok {
		t.Error("Get(key2) hit, want miss")
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, 0)
	defer m.Close()

	in := []byte("abc")
	_ = m.Set(ctx, "k", in, time.Minute)
	in[0] = 'x'

	out, _, _ := m.Get(ctx, "k")
	if string(out) != "abc" {
		t.Errorf("Get() = %q, want abc (stored value must be a copy)", out)
	}
	out[0] = 'y'

	again, _, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("Get() = %q, want abc (returned value must be a copy)", again)
	}
}

func TestMemoryExpiration(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, 0)
	defer m.Close()

	_ = m.Set(ctx, "key1", []byte("v"), 50*time.Millisecond)
	if _, ok, _ := m.Get(ctx, "key1"); !ok {
		t.Error("Expected key1 to exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok, _ := m.Get(ctx, "key1"); ok {
		t.Error("Expected key1 to be expired")
	}
	if stats := m.Stats(); stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestMemoryNoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, 0)
	defer m.Close()

	_ = m.Set(ctx, "k", []byte("v"), 0)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Error("Get() miss for entry without TTL, want hit")
	}
}

func TestMemoryLRUEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, 0)
	defer m.Close()

	_ = m.Set(ctx, "a", []byte("1"), time.Minute)
	_ = m.Set(ctx, "b", []byte("2"), time.Minute)

	// Touch a so b becomes least recently used.
	_, _, _ = m.Get(ctx, "a")
	_ = m.Set(ctx, "c", []byte("3"), time.Minute)

	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Error("Get(b) hit, want evicted")
	}
	if _, ok, _ := m.Get(ctx, "a"); !ok {
		t.Error("Get(a) miss, want retained")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, 0)
	defer m.Close()

	for i := 0; i < 5; i++ {
		_ = m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}

	m.Clear()
	if m.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", m.Len())
	}
	if _, ok, _ := m.Get(ctx, "k0"); ok {
		t.Error("Get(k0) hit after Clear")
	}
	if stats := m.Stats(); stats.Evictions != 5 || stats.TotalKeys != 0 {
		t.Errorf("Stats() = %+v, want 5 evictions and 0 keys", stats)
	}
}

func TestMemoryCloseDropsEntries(t *testing.T) {
	m := NewMemory(10, time.Minute)
	_ = m.Set(context.Background(), "k", []byte("v"), time.Minute)

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after Close, want 0", m.Len())
	}
}

func TestMemoryHitRate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, 0)
	defer m.Close()

	if rate := m.Stats().HitRate(); rate != 0.0 {
		t.Errorf("HitRate() = %v, want 0 with no operations", rate)
	}

	_ = m.Set(ctx, "k", []byte("v"), time.Minute)
	_, _, _ = m.Get(ctx, "k")
	_, _, _ = m.Get(ctx, "k")
	_, _, _ = m.Get(ctx, "k")
	_, _, _ = m.Get(ctx, "missing")

	if rate := m.Stats().HitRate(); rate != 75.0 {
		t.Errorf("HitRate() = %v, want 75", rate)
	}
}

func TestMemoryCleanupLoop(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, 20*time.Millisecond)
	defer m.Close()

	_ = m.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after cleanup", m.Len())
	}
	if m.Stats().LastCleanup.IsZero() {
		t.Error("LastCleanup is zero")
	}
}

func TestMemoryCloseIdempotent(t *testing.T) {
	m := NewMemory(10, time.Minute)
	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestMemoryConcurrency(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(100, 0)
	defer m.Close()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", i%20)
				_ = m.Set(ctx, key, []byte(fmt.Sprintf("g%d", g)), time.Minute)
				_, _, _ = m.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	if m.Len() != 20 {
		t.Errorf("Len() = %d, want 20", m.Len())
	}
}

func TestGenerateKey(t *testing.T) {
	k1 := GenerateKey("embedding", []string{"model", "text"})
	k2 := GenerateKey("embedding", []string{"model", "text"})
	k3 := GenerateKey("embedding", []string{"model", "other"})
	k4 := GenerateKey("llm", []string{"model", "text"})

	if k1 != k2 {
		t.Errorf("GenerateKey() not deterministic: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Error("GenerateKey() collision for different params")
	}
	if k1 == k4 {
		t.Error("GenerateKey() collision for different namespaces")
	}
	if len(k1) != len("embedding:")+32 {
		t.Errorf("GenerateKey() = %q, want namespace + 32 hex chars", k1)
	}
}
