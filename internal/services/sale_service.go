// Package services – SaleService
//
// SaleService records sales. A sale is accepted only when both the item and
// the store it references exist; the checks and the insert run in one
// transaction so a concurrent delete cannot slip between them, and the
// foreign keys on the sales table reject anything that does.
//
// RecordOnce adds Idempotency-Key semantics on top of Record: the first call
// for a (client, key) pair records the sale and remembers its id, and later
// calls with the same pair return that sale without inserting again.
//
// Once a new sale is committed a SaleRecorded event is published. Publishing
// is best effort: failures are logged and never reported to the caller.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-sales-api/internal/domain"
	"github.com/tbourn/go-sales-api/internal/events"
	"github.com/tbourn/go-sales-api/internal/repo"
)

// SaleScope namespaces idempotency keys used for recording sales.
const SaleScope = "sales.create"

// DefaultIdempotencyTTL is how long a key is remembered when IdempotencyTTL is unset.
const DefaultIdempotencyTTL = 24 * time.Hour

// SaleService records sales and emits sale events.
type SaleService struct {
	DB        *gorm.DB
	Publisher events.Publisher // nil disables publishing

	// IdempotencyTTL bounds how long RecordOnce replays a key.
	IdempotencyTTL time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Record validates the references and inserts a sale stamped with the
// current UTC time.
//
// Errors:
//   - ErrInvalidSale when either id is not positive.
//   - ErrItemNotFound / ErrStoreNotFound when a referenced row is missing.
//   - The underlying DB error for unexpected failures.
func (s *SaleService) Record(ctx context.Context, itemID, storeID int64) (*domain.Sale, error) {
	ctx, span := otel.Tracer("services/SaleService").Start(ctx, "Record",
		trace.WithAttributes(
			attribute.Int64("item.id", itemID),
			attribute.Int64("store.id", storeID),
		),
	)
	defer span.End()

	if itemID <= 0 || storeID <= 0 {
		return nil, ErrInvalidSale
	}

	var sale *domain.Sale
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sale, err = s.insert(ctx, tx, itemID, storeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("sale.id", sale.ID))
	s.publish(ctx, sale)
	return sale, nil
}

// RecordOnce is the idempotent form of Record. It reports replayed=true when
// the sale was recorded by an earlier call with the same clientID and key.
// A replay returns the original sale even if itemID or storeID differ.
func (s *SaleService) RecordOnce(ctx context.Context, clientID, key string, itemID, storeID int64) (*domain.Sale, bool, error) {
	ctx, span := otel.Tracer("services/SaleService").Start(ctx, "RecordOnce",
		trace.WithAttributes(
			attribute.String("client.id", clientID),
			attribute.Int64("item.id", itemID),
			attribute.Int64("store.id", storeID),
		),
	)
	defer span.End()

	if strings.TrimSpace(key) == "" {
		return nil, false, ErrInvalidIdempotencyKey
	}
	if itemID <= 0 || storeID <= 0 {
		return nil, false, ErrInvalidSale
	}

	var (
		sale     *domain.Sale
		replayed bool
	)
	now := s.now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prev, err := s.replay(ctx, tx, clientID, key, now)
		if err != nil {
			return err
		}
		if prev != nil {
			sale, replayed = prev, true
			return nil
		}

		if err := repo.ReleaseExpiredIdempotency(ctx, tx, clientID, SaleScope, key, now); err != nil {
			return err
		}
		sale, err = s.insert(ctx, tx, itemID, storeID)
		if err != nil {
			return err
		}
		_, err = repo.CreateIdempotency(ctx, tx, clientID, SaleScope, key, sale.ID, http.StatusOK, s.ttl())
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key committed first.
		prev, rerr := s.replay(ctx, s.DB, clientID, key, s.now())
		if rerr != nil {
			return nil, false, rerr
		}
		if prev == nil {
			return nil, false, err
		}
		sale, replayed, err = prev, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	span.SetAttributes(
		attribute.Int64("sale.id", sale.ID),
		attribute.Bool("idempotency.replayed", replayed),
	)
	if !replayed {
		s.publish(ctx, sale)
	}
	return sale, replayed, nil
}

// PurgeExpiredKeys drops idempotency records past their expiry and returns
// how many were removed.
func (s *SaleService) PurgeExpiredKeys(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer("services/SaleService").Start(ctx, "PurgeExpiredKeys")
	defer span.End()

	n, err := repo.PurgeExpiredIdempotency(ctx, s.DB, s.now())
	span.SetAttributes(attribute.Int64("idempotency.purged", n))
	return n, err
}

// insert runs the existence checks and the insert on tx.
func (s *SaleService) insert(ctx context.Context, tx *gorm.DB, itemID, storeID int64) (*domain.Sale, error) {
	ok, err := repo.ItemExists(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrItemNotFound
	}
	ok, err = repo.StoreExists(ctx, tx, storeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStoreNotFound
	}
	return repo.CreateSale(ctx, tx, itemID, storeID, s.now())
}

// replay returns the sale remembered for (clientID, key), or nil when the key
// is unknown or expired.
func (s *SaleService) replay(ctx context.Context, db *gorm.DB, clientID, key string, now time.Time) (*domain.Sale, error) {
	rec, err := repo.GetIdempotency(ctx, db, clientID, SaleScope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return repo.GetSale(ctx, db, rec.SaleID)
}

func (s *SaleService) publish(ctx context.Context, sale *domain.Sale) {
	if s.Publisher == nil {
		return
	}
	ev := events.SaleRecorded{
		SaleID:   sale.ID,
		ItemID:   sale.ItemID,
		StoreID:  sale.StoreID,
		SaleTime: sale.SaleTime,
	}
	if err := s.Publisher.PublishSaleRecorded(ctx, ev); err != nil {
		log.Warn().Err(err).Int64("sale_id", sale.ID).Msg("publish sale.recorded")
	}
}

func (s *SaleService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SaleService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return DefaultIdempotencyTTL
}
