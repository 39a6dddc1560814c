// Package handlers exposes the REST endpoints of the sales API:
//   - GET  /stores/       (list stores)
//   - GET  /items/        (list items)
//   - GET  /items/top/    (best-selling items over the report window)
//   - GET  /stores/top/   (top-earning stores over the report window)
//   - POST /sales/        (record a sale)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results and service errors into HTTP responses.
package handlers

import (
	"context"

	"github.com/tbourn/go-sales-api/internal/domain"
)

//
// Service contracts (context-aware)
//

// CatalogService lists the pre-provisioned stores and items.
type CatalogService interface {
	Stores(ctx context.Context) ([]domain.Store, error)
	Items(ctx context.Context) ([]domain.Item, error)
}

// ReportService produces the rolling-window rankings.
type ReportService interface {
	TopItems(ctx context.Context) ([]domain.ItemTop, error)
	TopStores(ctx context.Context) ([]domain.StoreTop, error)
}

// SaleService records sales.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SaleService interface {
	// Record inserts a sale for existing item and store ids.
	Record(ctx context.Context, itemID, storeID int64) (*domain.Sale, error)
	// RecordOnce is Record deduplicated by (clientID, key); replayed reports
	// whether an earlier sale was returned instead of a new one.
	RecordOnce(ctx context.Context, clientID, key string, itemID, storeID int64) (sale *domain.Sale, replayed bool, err error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	catalogSvc CatalogService
	reportSvc  ReportService
	saleSvc    SaleService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(catalogSvc CatalogService, reportSvc ReportService, saleSvc SaleService) *Handlers {
	return &Handlers{catalogSvc: catalogSvc, reportSvc: reportSvc, saleSvc: saleSvc}
}
