// Package services – ReportService
//
// ReportService computes the two rolling-window rankings: best-selling items
// by sale count and top-earning stores by income. The window always ends at
// the current instant and reaches Window back; sales exactly on the boundary
// are included.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-sales-api/internal/domain"
	"github.com/tbourn/go-sales-api/internal/repo"
)

// Report defaults.
const (
	DefaultReportWindow = 30 * 24 * time.Hour
	DefaultReportLimit  = 10
)

// ReportService ranks items and stores over a rolling window.
type ReportService struct {
	DB *gorm.DB

	// Window is the look-back period; zero means DefaultReportWindow.
	Window time.Duration
	// Limit caps the number of rows per report; zero means DefaultReportLimit.
	Limit int
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// TopItems returns the most sold items inside the window, most sold first.
func (s *ReportService) TopItems(ctx context.Context) ([]domain.ItemTop, error) {
	since, limit := s.bounds()
	ctx, span := otel.Tracer("services/ReportService").Start(ctx, "TopItems",
		trace.WithAttributes(
			attribute.String("report.since", since.Format(time.RFC3339)),
			attribute.Int("report.limit", limit),
		),
	)
	defer span.End()

	return repo.TopItems(ctx, s.DB, since, limit)
}

// TopStores returns the highest-earning stores inside the window, highest
// income first.
func (s *ReportService) TopStores(ctx context.Context) ([]domain.StoreTop, error) {
	since, limit := s.bounds()
	ctx, span := otel.Tracer("services/ReportService").Start(ctx, "TopStores",
		trace.WithAttributes(
			attribute.String("report.since", since.Format(time.RFC3339)),
			attribute.Int("report.limit", limit),
		),
	)
	defer span.End()

	return repo.TopStores(ctx, s.DB, since, limit)
}

func (s *ReportService) bounds() (time.Time, int) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	window := s.Window
	if window <= 0 {
		window = DefaultReportWindow
	}
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	return now().UTC().Add(-window), limit
}
