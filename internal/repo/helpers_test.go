package repo

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-sales-api/internal/domain"
)

// newTestDB opens a unique in-memory database per test so schema does not
// leak between tests. Pass the models to migrate; none means an empty schema.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// newSalesDB returns a fully migrated database.
func newSalesDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDB(t, &domain.Store{}, &domain.Item{}, &domain.Sale{}, &domain.Idempotency{})
}

func seedCatalog(t *testing.T, db *gorm.DB, stores []domain.Store, items []domain.Item) {
	t.Helper()
	if len(stores) > 0 {
		if err := db.Create(&stores).Error; err != nil {
			t.Fatalf("seed stores: %v", err)
		}
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			t.Fatalf("seed items: %v", err)
		}
	}
}

func seedSale(t *testing.T, db *gorm.DB, itemID, storeID int64, at time.Time) {
	t.Helper()
	s := &domain.Sale{SaleTime: at.UTC(), ItemID: itemID, StoreID: storeID}
	if err := db.Omit("Item", "Store").Create(s).Error; err != nil {
		t.Fatalf("seed sale item=%d store=%d: %v", itemID, storeID, err)
	}
}
