package handlers

import (
	"net/http"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/service"
	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	sales  *service.SalesService
	closes *service.CloseService
}

func NewSalesHandler(sales *service.SalesService, closes *service.CloseService) *SalesHandler {
	return &SalesHandler{sales: sales, closes: closes}
}

type salesIngestRequest struct {
	Rows []domain.SalesRow `json:"rows"`
}

type ordersIngestRequest struct {
	Orders []domain.DailyOrder `json:"orders"`
}

func (h *SalesHandler) IngestSales(c *gin.Context) {
	var req salesIngestRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.sales.IngestSales(c.Request.Context(), req.Rows)
	if err != nil {
		respondError(c, "ingest sales", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SalesHandler) IngestOrders(c *gin.Context) {
	var req ordersIngestRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.sales.IngestOrders(c.Request.Context(), req.Orders)
	if err != nil {
		respondError(c, "ingest orders", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RegisterOrder records one live order and consumes its ingredients.
func (h *SalesHandler) RegisterOrder(c *gin.Context) {
	var payload domain.OrderPayload
	if !bindJSON(c, &payload) {
		return
	}
	result, err := h.closes.RegisterOrder(c.Request.Context(), payload)
	if err != nil {
		respondError(c, "register order", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SalesHandler) TopItems(c *gin.Context) {
	from, ok := optionalDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := optionalDateQuery(c, "to")
	if !ok {
		return
	}
	if from == nil || to == nil {
		badRequest(c, "from and to are required")
		return
	}
	items, err := h.sales.TopItems(c.Request.Context(), *from, *to, intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, "fetch top items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "items": items})
}
