package handlers

import (
	"net/http"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

type generateRequest struct {
	DaysAhead     int          `json:"days_ahead"`
	ReferenceDate *domain.Date `json:"reference_date"`
}

func (h *ForecastHandler) Generate(c *gin.Context) {
	req := generateRequest{DaysAhead: h.service.DefaultDays()}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	ref := h.service.Today()
	if req.ReferenceDate != nil {
		ref = *req.ReferenceDate
	}
	result, err := h.service.GenerateForecast(c.Request.Context(), req.DaysAhead, ref)
	if err != nil {
		respondError(c, "generate forecast", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ForecastHandler) referenceDate(c *gin.Context) (domain.Date, bool) {
	ref, ok := optionalDateQuery(c, "reference_date")
	if !ok {
		return domain.Date{}, false
	}
	if ref == nil {
		return h.service.Today(), true
	}
	return *ref, true
}

func (h *ForecastHandler) GetForecast(c *gin.Context) {
	ref, ok := h.referenceDate(c)
	if !ok {
		return
	}
	rows, err := h.service.GetForecast(c.Request.Context(), ref, intQuery(c, "days", 0))
	if err != nil {
		respondError(c, "fetch forecast", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference_date": ref, "items": rows})
}

func (h *ForecastHandler) GetItemForecast(c *gin.Context) {
	ref, ok := h.referenceDate(c)
	if !ok {
		return
	}
	items, err := h.service.GetItemForecast(c.Request.Context(), ref, intQuery(c, "days", 0))
	if err != nil {
		respondError(c, "fetch item forecast", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference_date": ref, "items": items})
}

func (h *ForecastHandler) PredictRevenue(c *gin.Context) {
	result, err := h.service.PredictRevenue(c.Request.Context(), intQuery(c, "days_ahead", 0))
	if err != nil {
		respondError(c, "predict revenue", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
