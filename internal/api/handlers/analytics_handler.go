package handlers

import (
	"net/http"

	"github.com/andresuchdata/kitchenops/internal/service"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics  *service.AnalyticsService
	onboarding *service.OnboardingService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, onboarding *service.OnboardingService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, onboarding: onboarding}
}

func (h *AnalyticsHandler) GetDaily(c *gin.Context) {
	date, ok := optionalDateQuery(c, "date")
	if !ok {
		return
	}
	result, err := h.analytics.GetDailyAnalytics(c.Request.Context(), date)
	if err != nil {
		respondError(c, "fetch daily analytics", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) GetRevenueTrend(c *gin.Context) {
	points, err := h.analytics.GetRevenueTrend(c.Request.Context(), intQuery(c, "days", 0))
	if err != nil {
		respondError(c, "fetch revenue trend", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *AnalyticsHandler) GetOnboarding(c *gin.Context) {
	state, err := h.onboarding.GetStatus(c.Request.Context())
	if err != nil {
		respondError(c, "fetch onboarding status", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *AnalyticsHandler) CompleteIngest(c *gin.Context) {
	state, err := h.onboarding.CompleteIngest(c.Request.Context())
	if err != nil {
		respondError(c, "complete onboarding ingest", err)
		return
	}
	c.JSON(http.StatusOK, state)
}
