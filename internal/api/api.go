package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/kitchenops/internal/api/handlers"
	"github.com/andresuchdata/kitchenops/internal/api/middleware"
	"github.com/andresuchdata/kitchenops/internal/ingest"
	"github.com/andresuchdata/kitchenops/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Catalog    *service.CatalogService
	Ledger     *service.LedgerService
	Snapshot   *service.SnapshotService
	Sales      *service.SalesService
	Close      *service.CloseService
	Forecast   *service.ForecastService
	Analytics  *service.AnalyticsService
	Onboarding *service.OnboardingService
	Ingester   *ingest.Ingester
	// Gatherer is exposed on /metrics when set.
	Gatherer prometheus.Gatherer
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}
	if services.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := router.Group("/api/v1")

	if services.Catalog != nil {
		catalog := handlers.NewCatalogHandler(services.Catalog)
		apiGroup.GET("/menu-items", catalog.ListMenuItems)
		apiGroup.POST("/menu-items", catalog.UpsertMenuItem)
		apiGroup.GET("/menu-items/search", catalog.SearchMenuItems)
		apiGroup.POST("/menu-items/:id/deactivate", catalog.DeactivateMenuItem)
		apiGroup.GET("/menu-items/:id/bom", catalog.GetRecipe)
		apiGroup.GET("/ingredients", catalog.ListIngredients)
		apiGroup.POST("/ingredients", catalog.UpsertIngredient)
		apiGroup.GET("/ingredients/search", catalog.SearchIngredients)
		apiGroup.GET("/ingredients/:id/consumers", catalog.GetConsumers)
		apiGroup.PUT("/bom", catalog.UpsertBOMEntry)
		apiGroup.DELETE("/bom/:menuItemId/:ingredientId", catalog.DeleteBOMEntry)
		apiGroup.POST("/catalog/import", catalog.ImportCatalog)
	}

	if services.Ledger != nil && services.Snapshot != nil {
		inventory := handlers.NewInventoryHandler(services.Ledger, services.Snapshot)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("/snapshot", inventory.GetSnapshot)
			inventoryGroup.POST("/:ingredientId/receive", inventory.Receive)
			inventoryGroup.POST("/:ingredientId/count", inventory.Count)
			inventoryGroup.GET("/:ingredientId/balance", inventory.GetBalance)
			inventoryGroup.GET("/:ingredientId/transactions", inventory.ListTransactions)
		}
	}

	if services.Sales != nil && services.Close != nil {
		sales := handlers.NewSalesHandler(services.Sales, services.Close)
		apiGroup.POST("/sales/ingest", sales.IngestSales)
		apiGroup.GET("/sales/top-items", sales.TopItems)
		apiGroup.POST("/orders/ingest", sales.IngestOrders)
		apiGroup.POST("/orders", sales.RegisterOrder)
	}

	if services.Ingester != nil {
		uploads := handlers.NewIngestHandler(services.Ingester)
		apiGroup.POST("/ingest/upload", uploads.Upload)
	}

	if services.Close != nil {
		closes := handlers.NewCloseHandler(services.Close)
		closeGroup := apiGroup.Group("/close")
		{
			closeGroup.POST("/bulk", closes.RunBulkClose)
			closeGroup.POST("/:date", closes.RunDailyClose)
			closeGroup.POST("/:date/reverse", closes.ReverseDailyClose)
		}
	}

	if services.Forecast != nil {
		forecast := handlers.NewForecastHandler(services.Forecast)
		forecastGroup := apiGroup.Group("/forecast")
		{
			forecastGroup.GET("", forecast.GetForecast)
			forecastGroup.POST("/generate", forecast.Generate)
			forecastGroup.GET("/items", forecast.GetItemForecast)
			forecastGroup.GET("/revenue", forecast.PredictRevenue)
		}
	}

	if services.Analytics != nil && services.Onboarding != nil {
		analytics := handlers.NewAnalyticsHandler(services.Analytics, services.Onboarding)
		apiGroup.GET("/analytics/daily", analytics.GetDaily)
		apiGroup.GET("/analytics/revenue-trend", analytics.GetRevenueTrend)
		apiGroup.GET("/onboarding", analytics.GetOnboarding)
		apiGroup.POST("/onboarding/ingest-complete", analytics.CompleteIngest)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
