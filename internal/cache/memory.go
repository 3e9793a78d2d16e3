// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds the memory tier when no capacity is given.
const DefaultMemoryCapacity = 10000

// memoryEntry is a node of the LRU list.
type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *memoryEntry
	next      *memoryEntry
}

// Memory is a thread-safe in-memory Store with TTL expiration and
// least-recently-used eviction once capacity is reached.
//
// A doubly-linked list orders entries by recency and a map provides O(1)
// lookups. Expired entries are removed lazily on Get and by a background
// cleanup loop that runs until Close is called.
type Memory struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*memoryEntry

	// head.next is the most recently used, tail.prev the least.
	head *memoryEntry
	tail *memoryEntry

	stats  Stats
	stopCh chan struct{}
	once   sync.Once
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// HitRate returns the cache hit rate as a percentage
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// NewMemory creates a new in-memory store holding at most capacity entries.
// A non-positive capacity selects DefaultMemoryCapacity. A background
// goroutine removes expired entries every cleanupInterval; pass zero to
// disable it.
//
// Example:
//
//	mem := cache.NewMemory(10000, 5*time.Minute)
//	defer mem.Close()
//	_ = mem.Set(ctx, "key", []byte("value"), time.Hour)
func NewMemory(capacity int, cleanupInterval time.Duration) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}

	m := &Memory{
		capacity: capacity,
		items:    make(map[string]*memoryEntry),
		head:     &memoryEntry{},
		tail:     &memoryEntry{},
		stats: Stats{
			LastCleanup: time.Now(),
		},
		stopCh: make(chan struct{}),
	}
	m.head.next = m.tail
	m.tail.prev = m.head

	if cleanupInterval > 0 {
		go m.cleanupLoop(cleanupInterval)
	}

	return m
}

// Get retrieves a value by key. Expired entries are removed and reported as
// a miss. The returned slice is a copy.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.items[key]
	if !exists {
		m.stats.Misses++
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		m.removeEntry(entry)
		m.stats.Misses++
		m.stats.Evictions++
		return nil, false, nil
	}

	m.moveToFront(entry)
	m.stats.Hits++
	return cloneBytes(entry.value), true, nil
}

// Set stores a copy of value under key. Concurrent writes to the same key
// are last-write-wins. A non-positive ttl stores an entry that never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := farFuture
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, exists := m.items[key]; exists {
		entry.value = cloneBytes(value)
		entry.expiresAt = expiresAt
		m.moveToFront(entry)
		return nil
	}

	entry := &memoryEntry{key: key, value: cloneBytes(value), expiresAt: expiresAt}
	m.addToFront(entry)
	m.items[key] = entry

	for len(m.items) > m.capacity {
		m.evictOldest()
	}
	m.stats.TotalKeys = int64(len(m.items))
	return nil
}

// Clear removes all entries from the cache.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.Evictions += int64(len(m.items))
	m.items = make(map[string]*memoryEntry)
	m.head.next = m.tail
	m.tail.prev = m.head
	m.stats.TotalKeys = 0
}

// Len returns the number of entries, including not yet collected expired ones.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Stats returns a snapshot of current cache performance statistics.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Close stops the background cleanup loop and drops every entry. It is
// safe to call more than once.
func (m *Memory) Close() error {
	m.once.Do(func() {
		close(m.stopCh)
		m.Clear()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (m *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stopCh:
			return
		}
	}
}

// cleanup removes all expired entries
func (m *Memory) cleanup() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.items {
		if now.After(entry.expiresAt) {
			m.removeEntry(entry)
			m.stats.Evictions++
		}
	}
	m.stats.TotalKeys = int64(len(m.items))
	m.stats.LastCleanup = now
}

// addToFront adds an entry right after head. Caller must hold the lock.
func (m *Memory) addToFront(entry *memoryEntry) {
	entry.prev = m.head
	entry.next = m.head.next
	m.head.next.prev = entry
	m.head.next = entry
}

// unlink removes an entry from the list. Caller must hold the lock.
func (m *Memory) unlink(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

// moveToFront marks an entry as most recently used. Caller must hold the lock.
func (m *Memory) moveToFront(entry *memoryEntry) {
	m.unlink(entry)
	m.addToFront(entry)
}

// removeEntry removes an entry from list and map. Caller must hold the lock.
func (m *Memory) removeEntry(entry *memoryEntry) {
	m.unlink(entry)
	delete(m.items, entry.key)
	m.stats.TotalKeys = int64(len(m.items))
}

// evictOldest removes the least recently used entry. Caller must hold the lock.
func (m *Memory) evictOldest() {
	if oldest := m.tail.prev; oldest != m.head {
		m.removeEntry(oldest)
		m.stats.Evictions++
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
