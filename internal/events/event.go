// Package events publishes domain events about recorded sales to downstream
// consumers. Publishing happens after the sale is committed and is best
// effort: a failed publish never rolls back or fails the sale itself.
package events

import "time"

// SaleRecorded is emitted once per newly recorded sale. Replayed
// idempotent requests do not emit a second event.
type SaleRecorded struct {
	SaleID   int64     `json:"sale_id"`
	ItemID   int64     `json:"item_id"`
	StoreID  int64     `json:"store_id"`
	SaleTime time.Time `json:"sale_time"`
}
