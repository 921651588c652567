package handlers

import (
	"net/http"

	"github.com/andresuchdata/kitchenops/internal/service"
	"github.com/gin-gonic/gin"
)

type CloseHandler struct {
	service *service.CloseService
}

func NewCloseHandler(service *service.CloseService) *CloseHandler {
	return &CloseHandler{service: service}
}

func (h *CloseHandler) RunDailyClose(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	result, err := h.service.RunDailyClose(c.Request.Context(), date)
	if err != nil {
		respondError(c, "run daily close", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CloseHandler) ReverseDailyClose(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	result, err := h.service.ReverseDailyClose(c.Request.Context(), date)
	if err != nil {
		respondError(c, "reverse daily close", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CloseHandler) RunBulkClose(c *gin.Context) {
	result, err := h.service.RunBulkClose(c.Request.Context())
	if err != nil {
		respondError(c, "run bulk close", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
