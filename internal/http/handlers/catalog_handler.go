package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListStores godoc
// @ID          listStores
// @Summary     List stores
// @Description Returns every store ordered by id. An empty catalog yields [].
// @Tags        Stores
// @Produce     json
// @Success     200  {array}   domain.Store
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stores/ [get]
func (h *Handlers) ListStores(c *gin.Context) {
	stores, err := h.catalogSvc.Stores(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list stores")
		return
	}
	ok(c, http.StatusOK, stores)
}

// ListItems godoc
// @ID          listItems
// @Summary     List items
// @Description Returns every item with its unit price, ordered by id.
// @Tags        Items
// @Produce     json
// @Success     200  {array}   domain.Item
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /items/ [get]
func (h *Handlers) ListItems(c *gin.Context) {
	items, err := h.catalogSvc.Items(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list items")
		return
	}
	ok(c, http.StatusOK, items)
}
