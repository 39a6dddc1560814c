package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	// foreign_keys is set through the DSN so every pooled connection enforces it.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Store{}, &Item{}, &Sale{}, &Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Store{}).TableName():       "stores",
		(Item{}).TableName():        "items",
		(Sale{}).TableName():        "sales",
		(Idempotency{}).TableName(): "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	for _, tbl := range []any{&Store{}, &Item{}, &Sale{}, &Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	for _, idx := range []string{"idx_sales_sale_time", "idx_sales_item", "idx_sales_store"} {
		if !m.HasIndex(&Sale{}, idx) {
			t.Fatalf("expected index %s on sales", idx)
		}
	}
	if !m.HasIndex(&Idempotency{}, "ux_client_scope_key") {
		t.Fatalf("expected unique index ux_client_scope_key on idempotency")
	}
	if !m.HasConstraint(&Sale{}, "Item") || !m.HasConstraint(&Sale{}, "Store") {
		t.Fatalf("expected FK constraints from sales to items and stores")
	}
}

func TestSale_ForeignKeysRejectUnknownReferences(t *testing.T) {
	db := newDomainDB(t)

	if err := db.Create(&Store{ID: 1, Address: "1 Main St"}).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if err := db.Create(&Item{ID: 1, Name: "tea", Price: 2.5}).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	now := time.Now().UTC()
	ok := &Sale{SaleTime: now, ItemID: 1, StoreID: 1}
	if err := db.Omit("Item", "Store").Create(ok).Error; err != nil {
		t.Fatalf("valid sale: %v", err)
	}
	if ok.ID == 0 {
		t.Fatalf("expected auto-increment id to be assigned")
	}

	badItem := &Sale{SaleTime: now, ItemID: 99, StoreID: 1}
	if err := db.Omit("Item", "Store").Create(badItem).Error; err == nil {
		t.Fatalf("expected FK violation for unknown item")
	}
	badStore := &Sale{SaleTime: now, ItemID: 1, StoreID: 99}
	if err := db.Omit("Item", "Store").Create(badStore).Error; err == nil {
		t.Fatalf("expected FK violation for unknown store")
	}

	var n int64
	if err := db.Model(&Sale{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 sale, got %d", n)
	}
}

func TestItem_NegativePriceRejected(t *testing.T) {
	db := newDomainDB(t)
	if err := db.Create(&Item{ID: 7, Name: "broken", Price: -1}).Error; err == nil {
		t.Fatalf("expected check constraint to reject negative price")
	}
}

func TestIdempotency_UniquePerClientScopeKey(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()

	first := &Idempotency{ID: "a", ClientID: "c1", Scope: "sales", Key: "k1", SaleID: 1, Status: 200, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(first).Error; err != nil {
		t.Fatalf("insert first: %v", err)
	}
	dup := &Idempotency{ID: "b", ClientID: "c1", Scope: "sales", Key: "k1", SaleID: 2, Status: 200, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate (client, scope, key)")
	}
	other := &Idempotency{ID: "c", ClientID: "c2", Scope: "sales", Key: "k1", SaleID: 3, Status: 200, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("same key for another client should be allowed: %v", err)
	}
}
