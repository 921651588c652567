package service

import (
	"context"
	"math"
	"strings"

	"github.com/andresuchdata/kitchenops/internal/cache"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/rs/zerolog/log"
)

const defaultTopItems = 10

// SalesService loads daily sales aggregates and order headers.
type SalesService struct {
	store     repository.Store
	analytics cache.AnalyticsCache
}

func NewSalesService(store repository.Store, analyticsCache cache.AnalyticsCache) *SalesService {
	if analyticsCache == nil {
		analyticsCache = cache.NewNoopAnalyticsCache()
	}
	return &SalesService{store: store, analytics: analyticsCache}
}

// IngestSales replaces the aggregate of each (date, item) row. Rows later in
// the batch win over earlier rows with the same key. Unknown item names are
// created as active menu items.
func (s *SalesService) IngestSales(ctx context.Context, rows []domain.SalesRow) (*domain.IngestSalesResult, error) {
	for i, row := range rows {
		if row.BusinessDate.IsZero() {
			return nil, domain.NewValidationError("business_date", "row %d: business_date is required", i+1)
		}
		if strings.TrimSpace(row.MenuItemName) == "" {
			return nil, domain.NewValidationError("menu_item_name", "row %d: menu_item_name is required", i+1)
		}
		if !(row.Qty >= 0) || math.IsInf(row.Qty, 0) {
			return nil, domain.InvalidQuantity("qty", "row %d: qty must not be negative", i+1)
		}
		if math.IsNaN(row.NetSales) || math.IsInf(row.NetSales, 0) {
			return nil, domain.InvalidQuantity("net_sales", "row %d: net_sales must be a number", i+1)
		}
	}

	result := &domain.IngestSalesResult{Status: domain.StatusSuccess}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		for _, row := range rows {
			item, created, err := resolveMenuItem(ctx, tx, strings.TrimSpace(row.MenuItemName), row.Category)
			if err != nil {
				return err
			}
			if created {
				result.MenuItemsCreated++
			}
			source := row.Source
			if source == "" {
				source = domain.SalesSourceUpload
			}
			if err := tx.ReplaceSalesLine(ctx, domain.SalesLineItem{
				BusinessDate: row.BusinessDate,
				MenuItemID:   item.ID,
				Qty:          row.Qty,
				NetSales:     row.NetSales,
				Source:       source,
			}); err != nil {
				return err
			}
			result.RowsProcessed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("rows", result.RowsProcessed).
		Int("menu_items_created", result.MenuItemsCreated).
		Msg("sales: ingested daily aggregates")
	return result, nil
}

// IngestOrders upserts order headers by order id. It never touches inventory.
func (s *SalesService) IngestOrders(ctx context.Context, orders []domain.DailyOrder) (*domain.IngestOrdersResult, error) {
	for i, order := range orders {
		if strings.TrimSpace(order.OrderID) == "" {
			return nil, domain.NewValidationError("order_id", "row %d: order_id is required", i+1)
		}
		if order.BusinessDate.IsZero() {
			return nil, domain.NewValidationError("business_date", "row %d: business_date is required", i+1)
		}
	}

	result := &domain.IngestOrdersResult{Status: domain.StatusSuccess}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		for i := range orders {
			order := orders[i]
			order.OrderID = strings.TrimSpace(order.OrderID)
			if _, err := tx.UpsertOrder(ctx, &order); err != nil {
				return err
			}
			result.RowsProcessed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.analytics.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("analytics: cache invalidate failed")
	}
	log.Info().Int("orders", result.RowsProcessed).Msg("sales: ingested order headers")
	return result, nil
}

// TopItems ranks menu items by quantity sold between from and to inclusive.
func (s *SalesService) TopItems(ctx context.Context, from, to domain.Date, limit int) ([]domain.TopItem, error) {
	if to.Before(from) {
		return nil, domain.NewValidationError("to", "end date %s is before start date %s", to, from)
	}
	if limit <= 0 {
		limit = defaultTopItems
	}
	var items []domain.TopItem
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		items, err = tx.TopItems(ctx, from, to, limit)
		return err
	})
	if items == nil {
		items = make([]domain.TopItem, 0)
	}
	return items, err
}
