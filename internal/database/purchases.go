// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/rfpmatch/internal/metrics"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// InsertPurchases ingests purchase records in a single transaction.
// Records already present (same order and product) are ignored.
func (db *DB) InsertPurchases(ctx context.Context, records []recommend.PurchaseRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "insert_purchases", time.Since(start), err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // rollback after failure is best-effort
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO purchases (order_id, user_id, product_id, category, purchased_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return unavailable("prepare insert", err)
	}
	defer closeWithLog(stmt, db.logger, "prepared statement")

	for i := range records {
		r := &records[i]
		if r.OrderID == "" || r.UserID == "" || r.ProductID == "" {
			return recommend.NewValidationError(fmt.Sprintf("records[%d]", i), "order_id, user_id and product_id are required")
		}
		purchasedAt := r.PurchasedAt
		if purchasedAt.IsZero() {
			purchasedAt = time.Now()
		}
		if _, err = stmt.ExecContext(ctx, r.OrderID, r.UserID, r.ProductID, r.Category, purchasedAt.UTC()); err != nil {
			return unavailable("insert purchase", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return unavailable("commit purchases", err)
	}
	return nil
}

// PurchaseHistory returns every purchase of userID, newest first. An unknown
// user returns an empty slice.
func (db *DB) PurchaseHistory(ctx context.Context, userID string) (history []recommend.PurchaseRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "purchase_history", time.Since(start), err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, product_id, category, order_id, purchased_at
		FROM purchases
		WHERE user_id = ?
		ORDER BY purchased_at DESC, order_id, product_id`, userID)
	if err != nil {
		return nil, unavailable("query purchase history", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	history = make([]recommend.PurchaseRecord, 0)
	for rows.Next() {
		var r recommend.PurchaseRecord
		if err = rows.Scan(&r.UserID, &r.ProductID, &r.Category, &r.OrderID, &r.PurchasedAt); err != nil {
			return nil, unavailable("scan purchase", err)
		}
		history = append(history, r)
	}
	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate purchases", err)
	}
	return history, nil
}

// UsersSharingCategories returns the users other than userID who bought in
// at least minOverlap of the given categories, sorted by user id.
func (db *DB) UsersSharingCategories(ctx context.Context, userID string, categories []string, minOverlap int) (users []string, err error) {
	if len(categories) == 0 || minOverlap > len(categories) {
		return []string{}, nil
	}
	if minOverlap < 1 {
		minOverlap = 1
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "similar_users", time.Since(start), err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	args := make([]interface{}, 0, len(categories)+2)
	args = append(args, userID)
	for _, c := range categories {
		args = append(args, c)
	}
	args = append(args, minOverlap)

	query := fmt.Sprintf(`
		SELECT user_id
		FROM purchases
		WHERE user_id <> ?
		  AND category IN (%s)
		GROUP BY user_id
		HAVING COUNT(DISTINCT category) >= ?
		ORDER BY user_id`, placeholders(len(categories)))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query similar users", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	users = make([]string, 0)
	for rows.Next() {
		var u string
		if err = rows.Scan(&u); err != nil {
			return nil, unavailable("scan similar user", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate similar users", err)
	}
	return users, nil
}

// CountBuyers returns how many distinct users among userIDs bought productID.
func (db *DB) CountBuyers(ctx context.Context, productID string, userIDs []string) (count int, err error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "count_buyers", time.Since(start), err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	args := make([]interface{}, 0, len(userIDs)+1)
	args = append(args, productID)
	for _, u := range userIDs {
		args = append(args, u)
	}

	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT user_id)
		FROM purchases
		WHERE product_id = ?
		  AND user_id IN (%s)`, placeholders(len(userIDs)))

	if err = db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, unavailable("count buyers", err)
	}
	return count, nil
}

// CoPurchaseCount returns the number of orders, across all users, that
// contain productID together with at least one of productIDs.
func (db *DB) CoPurchaseCount(ctx context.Context, productID string, productIDs []string) (count int, err error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQuery(storeName, "copurchase_count", time.Since(start), err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	args := make([]interface{}, 0, len(productIDs)+1)
	args = append(args, productID)
	for _, p := range productIDs {
		args = append(args, p)
	}

	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT a.order_id)
		FROM purchases a
		JOIN purchases b ON a.order_id = b.order_id
		WHERE a.product_id = ?
		  AND b.product_id <> a.product_id
		  AND b.product_id IN (%s)`, placeholders(len(productIDs)))

	if err = db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, unavailable("count co-purchases", err)
	}
	return count, nil
}
