// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// setupTestDB opens an in-memory store seeded with a small order history.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{Path: ":memory:"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []recommend.PurchaseRecord{
		// alice: gloves + helmet + boots (3 categories)
		{UserID: "alice", ProductID: "glove-1", Category: "hand protection", OrderID: "o1", PurchasedAt: base},
		{UserID: "alice", ProductID: "helmet-1", Category: "head protection", OrderID: "o1", PurchasedAt: base},
		{UserID: "alice", ProductID: "boots-1", Category: "foot protection", OrderID: "o2", PurchasedAt: base.Add(24 * time.Hour)},
		// bob shares hand + head with alice
		{UserID: "bob", ProductID: "glove-2", Category: "hand protection", OrderID: "o3", PurchasedAt: base},
		{UserID: "bob", ProductID: "helmet-1", Category: "head protection", OrderID: "o3", PurchasedAt: base},
		{UserID: "bob", ProductID: "glove-1", Category: "hand protection", OrderID: "o4", PurchasedAt: base},
		// carol shares only hand with alice
		{UserID: "carol", ProductID: "glove-1", Category: "hand protection", OrderID: "o5", PurchasedAt: base},
		{UserID: "carol", ProductID: "drill-1", Category: "power tools", OrderID: "o5", PurchasedAt: base},
		// dave shares hand + foot
		{UserID: "dave", ProductID: "glove-2", Category: "hand protection", OrderID: "o6", PurchasedAt: base},
		{UserID: "dave", ProductID: "boots-1", Category: "foot protection", OrderID: "o6", PurchasedAt: base},
	}
	if err := db.InsertPurchases(context.Background(), records); err != nil {
		t.Fatalf("InsertPurchases() error = %v", err)
	}
	return db
}

func TestPurchaseHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	history, err := db.PurchaseHistory(ctx, "alice")
	if err != nil {
		t.Fatalf("PurchaseHistory() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	if history[0].ProductID != "boots-1" {
		t.Errorf("history[0].ProductID = %q, want boots-1 (newest first)", history[0].ProductID)
	}
	if !history[0].PurchasedAt.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("history[0].PurchasedAt = %v", history[0].PurchasedAt)
	}

	empty, err := db.PurchaseHistory(ctx, "nobody")
	if err != nil {
		t.Fatalf("PurchaseHistory(nobody) error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("PurchaseHistory(nobody) = %v, want empty non-nil slice", empty)
	}
}

func TestUsersSharingCategories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	categories := []string{"hand protection", "head protection", "foot protection"}

	tests := []struct {
		name       string
		minOverlap int
		want       []string
	}{
		{"overlap 1", 1, []string{"bob", "carol", "dave"}},
		{"overlap 2", 2, []string{"bob", "dave"}},
		{"overlap 3", 3, []string{}},
		{"overlap above category count", 4, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.UsersSharingCategories(ctx, "alice", categories, tt.minOverlap)
			if err != nil {
				t.Fatalf("UsersSharingCategories() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("UsersSharingCategories() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("UsersSharingCategories()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCountBuyers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := db.CountBuyers(ctx, "glove-1", []string{"bob", "carol", "dave"})
	if err != nil {
		t.Fatalf("CountBuyers() error = %v", err)
	}
	if got != 2 {
		t.Errorf("CountBuyers(glove-1) = %d, want 2", got)
	}

	if got, _ := db.CountBuyers(ctx, "glove-1", nil); got != 0 {
		t.Errorf("CountBuyers(nil users) = %d, want 0", got)
	}
}

func TestCoPurchaseCount(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		product string
		with    []string
		want    int
	}{
		{"helmet with gloves", "helmet-1", []string{"glove-1", "glove-2"}, 2},
		{"drill with gloves", "drill-1", []string{"glove-1"}, 1},
		{"self excluded", "glove-1", []string{"glove-1"}, 0},
		{"no overlap", "drill-1", []string{"boots-1"}, 0},
		{"empty set", "drill-1", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.CoPurchaseCount(ctx, tt.product, tt.with)
			if err != nil {
				t.Fatalf("CoPurchaseCount() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CoPurchaseCount(%s, %v) = %d, want %d", tt.product, tt.with, got, tt.want)
			}
		})
	}
}

func TestInsertPurchases_IgnoresDuplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	dup := []recommend.PurchaseRecord{{UserID: "alice", ProductID: "glove-1", Category: "hand protection", OrderID: "o1"}}
	if err := db.InsertPurchases(ctx, dup); err != nil {
		t.Fatalf("InsertPurchases() error = %v", err)
	}

	history, _ := db.PurchaseHistory(ctx, "alice")
	if len(history) != 3 {
		t.Errorf("len(history) = %d, want 3 after duplicate insert", len(history))
	}
}

func TestInsertPurchases_Validation(t *testing.T) {
	db := setupTestDB(t)

	err := db.InsertPurchases(context.Background(), []recommend.PurchaseRecord{{UserID: "x"}})
	if !errors.Is(err, recommend.ErrValidation) {
		t.Errorf("InsertPurchases() error = %v, want ErrValidation", err)
	}
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	db, err := Open(Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err = db.PurchaseHistory(context.Background(), "alice")
	if !errors.Is(err, recommend.ErrDependencyUnavailable) {
		t.Errorf("PurchaseHistory() on closed store error = %v, want ErrDependencyUnavailable", err)
	}
}

func TestPing(t *testing.T) {
	db, err := Open(Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
	_ = db.Close()
	if err := db.Ping(context.Background()); err == nil {
		t.Error("Ping() on closed store error = nil, want error")
	}
}

func TestConnectionString(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{}, ""},
		{Config{Path: ":memory:"}, ""},
		{Config{Path: "/data/orders.duckdb"}, "/data/orders.duckdb"},
		{Config{Path: "/data/orders.duckdb", Threads: 4, MaxMemory: "1GB"}, "/data/orders.duckdb?threads=4&max_memory=1GB"},
	}

	for _, tt := range tests {
		if got := connectionString(tt.cfg); got != tt.want {
			t.Errorf("connectionString(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}
