// Package services defines the business logic for stores, items, sales, and
// the sales reports. This file centralizes the service-level error values so
// that they can be returned consistently by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrInvalidSale is returned when a sale references a non-positive item
	// or store id.
	ErrInvalidSale = errors.New("invalid sale")

	// ErrItemNotFound indicates that the item referenced by a sale does not exist.
	ErrItemNotFound = errors.New("no such item")

	// ErrStoreNotFound indicates that the store referenced by a sale does not exist.
	ErrStoreNotFound = errors.New("no such store")

	// ErrInvalidIdempotencyKey is returned by RecordOnce for an empty key.
	ErrInvalidIdempotencyKey = errors.New("invalid idempotency key")
)
