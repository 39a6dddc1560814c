// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Store and
// Item models.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - When a row is not found, Get* functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Exists* functions report absence as (false, nil) and reserve the error
//     for real database failures.
//   - On DB errors (connectivity, constraints, etc.), the raw gorm error is
//     propagated.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-sales-api/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListStores returns every store ordered by id. It returns an empty (non-nil)
// slice when the table is empty.
func ListStores(ctx context.Context, db *gorm.DB) ([]domain.Store, error) {
	out := []domain.Store{}
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// ListItems returns every item ordered by id. It returns an empty (non-nil)
// slice when the table is empty.
func ListItems(ctx context.Context, db *gorm.DB) ([]domain.Item, error) {
	out := []domain.Item{}
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// GetStore fetches a store by id, or ErrNotFound.
func GetStore(ctx context.Context, db *gorm.DB, id int64) (*domain.Store, error) {
	var s domain.Store
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetItem fetches an item by id, or ErrNotFound.
func GetItem(ctx context.Context, db *gorm.DB, id int64) (*domain.Item, error) {
	var it domain.Item
	if err := db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// StoreExists reports whether a store row with the given id is present.
func StoreExists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	return exists(ctx, db, &domain.Store{}, id)
}

// ItemExists reports whether an item row with the given id is present.
func ItemExists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	return exists(ctx, db, &domain.Item{}, id)
}

// exists probes for row presence with SELECT id ... LIMIT 1 rather than
// trusting the result of an executed statement.
func exists(ctx context.Context, db *gorm.DB, model any, id int64) (bool, error) {
	var found int64
	err := db.WithContext(ctx).
		Model(model).
		Select("id").
		Where("id = ?", id).
		Limit(1).
		Scan(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return found == id && id != 0, nil
}

// UpsertStores inserts stores, overwriting the address of rows whose id already exists.
func UpsertStores(ctx context.Context, db *gorm.DB, stores []domain.Store) error {
	if len(stores) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"address"}),
		}).
		Create(&stores).Error
}

// UpsertItems inserts items, overwriting name and price of rows whose id already exists.
func UpsertItems(ctx context.Context, db *gorm.DB, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price"}),
		}).
		Create(&items).Error
}
