// Sale HTTP handlers.
//
// POST /sales/ records one sale of an existing item at an existing store.
//
// Idempotency:
// If the client supplies an Idempotency-Key header, the sale is recorded at
// most once per (client, key). A retry returns the originally recorded sale
// and sets `Idempotency-Replayed: true`.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-sales-api/internal/domain"
	"github.com/tbourn/go-sales-api/internal/http/middleware"
	"github.com/tbourn/go-sales-api/internal/services"
)

// CreateSaleRequest is the JSON payload for recording a sale.
type CreateSaleRequest struct {
	ItemID  int64 `json:"item_id"  binding:"required,gt=0" example:"3"`
	StoreID int64 `json:"store_id" binding:"required,gt=0" example:"1"`
}

// CreateSale godoc
// @ID          createSale
// @Summary     Record a sale
// @Description Records one sale of an item at a store, stamped with the server's current UTC time.
// @Description Supports idempotency via the Idempotency-Key header (same key → same sale).
// @Tags        Sales
// @Accept      json
// @Produce     json
//
// @Param       X-Client-ID      header  string  false "Caller identity used to scope idempotency keys and rate limits"  example(pos-terminal-7)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateSaleRequest  true  "Sale payload"
//
// @Success     200  {object}  domain.Sale            "Recorded sale"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid data or unknown item/store"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limit exceeded"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /sales/ [post]
func (h *Handlers) CreateSale(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ObserveSale(middleware.SaleRejected)
		fail(c, http.StatusBadRequest, ErrCodeInvalidData, MsgInvalidData)
		return
	}

	var (
		sale     *domain.Sale
		replayed bool
		err      error
	)
	if key, present := middleware.GetIdempotencyKey(c); present {
		sale, replayed, err = h.saleSvc.RecordOnce(ctx, middleware.ClientID(c), key, req.ItemID, req.StoreID)
	} else {
		sale, err = h.saleSvc.Record(ctx, req.ItemID, req.StoreID)
	}
	if err != nil {
		middleware.ObserveSale(middleware.SaleRejected)
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			fail(c, http.StatusBadRequest, ErrCodeNoSuchItem, MsgNoSuchItem)
		case errors.Is(err, services.ErrStoreNotFound):
			fail(c, http.StatusBadRequest, ErrCodeNoSuchStore, MsgNoSuchStore)
		case errors.Is(err, services.ErrInvalidSale), errors.Is(err, services.ErrInvalidIdempotencyKey):
			fail(c, http.StatusBadRequest, ErrCodeInvalidData, MsgInvalidData)
		default:
			_ = c.Error(err)
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not record sale")
		}
		return
	}

	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
		middleware.ObserveSale(middleware.SaleReplayed)
	} else {
		middleware.ObserveSale(middleware.SaleCreated)
	}
	ok(c, http.StatusOK, sale)
}
