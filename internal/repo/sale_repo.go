// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Sale model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-sales-api/internal/domain"
)

// CreateSale inserts a sale for itemID at storeID stamped with at (stored in
// UTC). The returned row carries the database-assigned id.
//
// Referential checks are the caller's job; the foreign keys on the sales table
// reject whatever slips through.
func CreateSale(ctx context.Context, db *gorm.DB, itemID, storeID int64, at time.Time) (*domain.Sale, error) {
	s := &domain.Sale{
		SaleTime: at.UTC(),
		ItemID:   itemID,
		StoreID:  storeID,
	}
	if err := db.WithContext(ctx).Omit("Item", "Store").Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSale fetches a sale by id, or ErrNotFound.
func GetSale(ctx context.Context, db *gorm.DB, id int64) (*domain.Sale, error) {
	var s domain.Sale
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountSales returns the total number of recorded sales.
func CountSales(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Sale{}).Count(&total).Error
	return total, err
}
