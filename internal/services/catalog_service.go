// Package services – CatalogService
//
// CatalogService exposes the read-only store and item listings. Stores and
// items are provisioned outside the HTTP API, so there is nothing to validate
// here beyond passing the request context through to the repository.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/tbourn/go-sales-api/internal/domain"
	"github.com/tbourn/go-sales-api/internal/repo"
)

// CatalogService lists stores and items.
type CatalogService struct {
	DB *gorm.DB
}

// Stores returns every store ordered by id.
func (s *CatalogService) Stores(ctx context.Context) ([]domain.Store, error) {
	ctx, span := otel.Tracer("services/CatalogService").Start(ctx, "Stores")
	defer span.End()

	return repo.ListStores(ctx, s.DB)
}

// Items returns every item ordered by id.
func (s *CatalogService) Items(ctx context.Context) ([]domain.Item, error) {
	ctx, span := otel.Tracer("services/CatalogService").Start(ctx, "Items")
	defer span.End()

	return repo.ListItems(ctx, s.DB)
}
