// Package domain defines the persistence models for stores, items, and sales,
// plus the read models produced by the reporting queries. These types are
// mapped with GORM and form the core data layer of the sales API.
package domain

import "time"

// Store is a physical point of sale. Stores are provisioned outside the API
// (see the seed command) and are only read over HTTP.
//
// Fields:
//   - ID: integer primary key, assigned by whoever provisions the store.
//   - Address: free-form postal address.
type Store struct {
	ID      int64  `json:"id"      gorm:"primaryKey;autoIncrement:false"`
	Address string `json:"address" gorm:"type:varchar(255);not null"`
}

// TableName returns the database table name for Store.
func (Store) TableName() string { return "stores" }

// Item is a sellable product with a unit price.
//
// Fields:
//   - ID: integer primary key, assigned by whoever provisions the item.
//   - Name: display name.
//   - Price: unit price; every sale of the item contributes exactly this
//     amount to the selling store's income.
type Item struct {
	ID    int64   `json:"id"    gorm:"primaryKey;autoIncrement:false"`
	Name  string  `json:"name"  gorm:"type:varchar(255);not null"`
	Price float64 `json:"price" gorm:"not null;check:price >= 0"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }

// Sale records one unit of an item sold at a store. Sales are immutable once
// written: there is no update or delete path.
//
// Fields:
//   - ID: auto-increment primary key.
//   - SaleTime: moment of insertion, set server-side in UTC (indexed for the
//     rolling report window).
//   - ItemID / StoreID: foreign keys; the referenced rows must exist.
//   - Item / Store: FK associations used only to emit the constraints.
type Sale struct {
	ID       int64     `json:"id"        gorm:"primaryKey;autoIncrement"`
	SaleTime time.Time `json:"sale_time" gorm:"not null;index:idx_sales_sale_time"`
	ItemID   int64     `json:"item_id"   gorm:"not null;index:idx_sales_item"`
	StoreID  int64     `json:"store_id"  gorm:"not null;index:idx_sales_store"`

	Item  Item  `json:"-" gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Store Store `json:"-" gorm:"foreignKey:StoreID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Sale.
func (Sale) TableName() string { return "sales" }

// ItemTop is one row of the best-selling items report: how many sales an
// item collected inside the report window.
type ItemTop struct {
	ID          int64  `json:"id"           example:"3"`
	Name        string `json:"name"         example:"Espresso beans 1kg"`
	SalesAmount int64  `json:"sales_amount" example:"42"`
}

// StoreTop is one row of the top-earning stores report: the sum of the
// prices of all items a store sold inside the report window.
type StoreTop struct {
	ID      int64   `json:"id"      example:"1"`
	Address string  `json:"address" example:"12 Market St"`
	Income  float64 `json:"income"  example:"1234.5"`
}
