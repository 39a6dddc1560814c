// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the
// reporting endpoints. The database does all of the work: each function is a
// single join + GROUP BY + ORDER BY + LIMIT statement.
//
// Both reports are bounded by a lower time limit (since) on sales.sale_time;
// the caller derives it from the rolling window. Ties on the aggregate are
// broken by ascending id so results are deterministic.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-sales-api/internal/domain"
)

// TopItems returns up to limit items ranked by the number of sales recorded
// at or after since, most sold first. Items without sales in the window are
// not listed.
//
// Equivalent SQL:
//
//	SELECT sales.item_id AS id, items.name AS name, COUNT(sales.id) AS sales_amount
//	FROM sales JOIN items ON items.id = sales.item_id
//	WHERE sales.sale_time >= ?
//	GROUP BY sales.item_id, items.name
//	ORDER BY sales_amount DESC, id ASC
//	LIMIT ?
func TopItems(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]domain.ItemTop, error) {
	out := []domain.ItemTop{}
	err := db.WithContext(ctx).
		Table("sales").
		Select("sales.item_id AS id, items.name AS name, COUNT(sales.id) AS sales_amount").
		Joins("JOIN items ON items.id = sales.item_id").
		Where("sales.sale_time >= ?", since.UTC()).
		Group("sales.item_id, items.name").
		Order("sales_amount DESC, id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// TopStores returns up to limit stores ranked by income (the sum of the sold
// items' prices) over sales recorded at or after since, highest first.
//
// Equivalent SQL:
//
//	SELECT stores.id AS id, stores.address AS address, SUM(items.price) AS income
//	FROM sales
//	JOIN stores ON stores.id = sales.store_id
//	JOIN items  ON items.id  = sales.item_id
//	WHERE sales.sale_time >= ?
//	GROUP BY stores.id, stores.address
//	ORDER BY income DESC, id ASC
//	LIMIT ?
func TopStores(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]domain.StoreTop, error) {
	out := []domain.StoreTop{}
	err := db.WithContext(ctx).
		Table("sales").
		Select("stores.id AS id, stores.address AS address, SUM(items.price) AS income").
		Joins("JOIN stores ON stores.id = sales.store_id").
		Joins("JOIN items ON items.id = sales.item_id").
		Where("sales.sale_time >= ?", since.UTC()).
		Group("stores.id, stores.address").
		Order("income DESC, id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
