package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TopItems godoc
// @ID          topItems
// @Summary     Best-selling items
// @Description Items ranked by number of sales over the last 30 days (most sold first, at most 10).
// @Tags        Reports
// @Produce     json
// @Success     200  {array}   domain.ItemTop
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /items/top/ [get]
func (h *Handlers) TopItems(c *gin.Context) {
	rows, err := h.reportSvc.TopItems(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeReportFailed, "could not compute top items")
		return
	}
	ok(c, http.StatusOK, rows)
}

// TopStores godoc
// @ID          topStores
// @Summary     Top-earning stores
// @Description Stores ranked by income (sum of sold item prices) over the last 30 days (highest first, at most 10).
// @Tags        Reports
// @Produce     json
// @Success     200  {array}   domain.StoreTop
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stores/top/ [get]
func (h *Handlers) TopStores(c *gin.Context) {
	rows, err := h.reportSvc.TopStores(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeReportFailed, "could not compute top stores")
		return
	}
	ok(c, http.StatusOK, rows)
}
