package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/kitchenops/internal/cache"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/metrics"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CloseService turns sales into inventory consumption, either once per
// business date or per live order.
type CloseService struct {
	store   repository.Store
	cache   cache.InventoryCache
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCloseService(store repository.Store, cacheImpl cache.InventoryCache, m *metrics.Metrics) *CloseService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopInventoryCache()
	}
	return &CloseService{store: store, cache: cacheImpl, metrics: m, now: systemClock}
}

func (s *CloseService) WithClock(now func() time.Time) *CloseService {
	s.now = now
	return s
}

// RunDailyClose posts one CONSUME entry per ingredient used by the date's
// sales. A date is closed at most once; later calls report skipped.
func (s *CloseService) RunDailyClose(ctx context.Context, date domain.Date) (*domain.CloseResult, error) {
	result := &domain.CloseResult{BusinessDate: date}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		closed, err := tx.GetDailyClose(ctx, date)
		if err != nil {
			return err
		}
		if closed != nil {
			result.Status = domain.StatusSkipped
			result.Message = fmt.Sprintf("business date %s is already closed", date)
			return nil
		}

		sales, err := tx.ListSalesByDate(ctx, date)
		if err != nil {
			return err
		}
		if len(sales) == 0 {
			result.Status = domain.StatusNoData
			result.Message = fmt.Sprintf("no sales recorded for %s", date)
			return nil
		}

		usage, err := pendingUsage(ctx, tx, sales)
		if err != nil {
			return err
		}
		posted := countPositive(usage)

		// The marker goes first so a concurrent close of the same date
		// fails here before touching any balance.
		if err := tx.InsertDailyClose(ctx, domain.DailyClose{BusinessDate: date, ClosedAt: s.now(), ConsumeTxns: posted}); err != nil {
			return err
		}

		bd := date
		template := domain.InventoryTxn{
			BusinessDate: &bd,
			Source:       domain.SourceClose,
			Note:         fmt.Sprintf("daily close %s", date),
		}
		if _, err := consumeAll(ctx, tx, usage, template); err != nil {
			return err
		}

		result.Status = domain.StatusSuccess
		result.ConsumeTxnsCreated = posted
		return nil
	})
	if err != nil {
		s.metrics.OperationError("daily_close", err)
		return nil, err
	}

	s.metrics.DailyClose(result.Status)
	if result.Status == domain.StatusSuccess {
		s.metrics.LedgerTxn(domain.TxnConsume, result.ConsumeTxnsCreated)
		invalidateInventory(ctx, s.cache)
		log.Info().
			Str("business_date", date.String()).
			Int("consume_txns", result.ConsumeTxnsCreated).
			Msg("close: business date closed")
	}
	return result, nil
}

// ReverseDailyClose undoes a close: balances get the consumed quantity back,
// the close entries and the closed marker are removed. Order-time
// consumption is left alone.
func (s *CloseService) ReverseDailyClose(ctx context.Context, date domain.Date) (*domain.ReverseResult, error) {
	result := &domain.ReverseResult{Status: domain.StatusSuccess, BusinessDate: date}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		txns, err := tx.ListCloseTxns(ctx, date)
		if err != nil {
			return err
		}
		sort.Slice(txns, func(i, j int) bool {
			return txns[i].IngredientID.String() < txns[j].IngredientID.String()
		})

		ids := make([]uuid.UUID, 0, len(txns))
		for _, txn := range txns {
			current, err := lockedBalance(ctx, tx, txn.IngredientID)
			if err != nil {
				return err
			}
			if err := tx.SaveBalance(ctx, domain.InventoryBalance{
				IngredientID: txn.IngredientID,
				QtyOnHand:    current - txn.QtyDelta,
			}); err != nil {
				return err
			}
			ids = append(ids, txn.ID)
		}
		if len(ids) > 0 {
			if err := tx.DeleteTxns(ctx, ids); err != nil {
				return err
			}
		}
		if _, err := tx.DeleteDailyClose(ctx, date); err != nil {
			return err
		}
		result.TxnsReversed = len(ids)
		return nil
	})
	if err != nil {
		s.metrics.OperationError("reverse_close", err)
		return nil, err
	}

	invalidateInventory(ctx, s.cache)
	log.Info().
		Str("business_date", date.String()).
		Int("txns_reversed", result.TxnsReversed).
		Msg("close: business date reopened")
	return result, nil
}

// RunBulkClose closes every date that has sales and is not closed yet,
// oldest first.
func (s *CloseService) RunBulkClose(ctx context.Context) (*domain.BulkCloseResult, error) {
	var open []domain.Date
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		dates, err := tx.ListSalesDates(ctx)
		if err != nil {
			return err
		}
		closed, err := tx.ListClosedDates(ctx)
		if err != nil {
			return err
		}
		done := make(map[string]struct{}, len(closed))
		for _, d := range closed {
			done[d.String()] = struct{}{}
		}
		for _, d := range dates {
			if _, ok := done[d.String()]; !ok {
				open = append(open, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Before(open[j]) })

	result := &domain.BulkCloseResult{Status: domain.StatusSuccess, Dates: make([]domain.Date, 0, len(open))}
	for _, d := range open {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := s.RunDailyClose(ctx, d)
		if err != nil {
			return result, fmt.Errorf("close %s: %w", d, err)
		}
		if res.Status != domain.StatusSuccess {
			continue
		}
		result.DatesProcessed++
		result.TotalConsumeTxns += res.ConsumeTxnsCreated
		result.Dates = append(result.Dates, d)
	}

	err = s.store.WithTx(ctx, func(tx repository.Tx) error {
		return markBulkCloseComplete(ctx, tx, s.now())
	})
	if err != nil {
		return result, err
	}

	log.Info().
		Int("dates_processed", result.DatesProcessed).
		Int("consume_txns", result.TotalConsumeTxns).
		Msg("close: bulk close finished")
	return result, nil
}

// RegisterOrder records a live order and consumes its ingredients right
// away. Re-submitting an order id is reported as a duplicate: the header
// takes the new metadata but keeps its business date, and neither sales nor
// stock change.
func (s *CloseService) RegisterOrder(ctx context.Context, payload domain.OrderPayload) (*domain.RegisterOrderResult, error) {
	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		return nil, domain.NewValidationError("order_id", "order_id is required")
	}
	if len(payload.Items) == 0 {
		return nil, domain.NewValidationError("items", "items must not be empty")
	}
	for i, line := range payload.Items {
		if strings.TrimSpace(line.MenuItemName) == "" {
			return nil, domain.NewValidationError("menu_item_name", "item %d: menu_item_name is required", i+1)
		}
		if !(line.Qty > 0) || math.IsInf(line.Qty, 0) {
			return nil, domain.InvalidQuantity("qty", "item %d: qty must be greater than zero", i+1)
		}
		if math.IsNaN(line.Price) || math.IsInf(line.Price, 0) {
			return nil, domain.InvalidQuantity("price", "item %d: price must be a number", i+1)
		}
	}

	date := s.orderDate(payload)
	order := orderFromPayload(orderID, date, payload)
	result := &domain.RegisterOrderResult{OrderID: orderID}

	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		existing, err := tx.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			// the sales and consumption of the first submission stay on its date
			order.BusinessDate = existing.BusinessDate
		}
		inserted, err := tx.UpsertOrder(ctx, &order)
		if err != nil {
			return err
		}
		if !inserted {
			result.Status = domain.StatusDuplicate
			result.Message = fmt.Sprintf("order %s was already registered", orderID)
			return nil
		}

		usage := make(map[uuid.UUID]float64)
		recipes := make(map[uuid.UUID][]domain.BOMEntry)
		for _, line := range payload.Items {
			item, created, err := resolveMenuItem(ctx, tx, strings.TrimSpace(line.MenuItemName), line.Category)
			if err != nil {
				return err
			}
			if created {
				result.MenuItemsCreated++
			}
			if err := tx.AccumulateSalesLine(ctx, domain.SalesLineItem{
				BusinessDate: date,
				MenuItemID:   item.ID,
				Qty:          line.Qty,
				OrderQty:     line.Qty,
				NetSales:     line.Price,
				Source:       domain.SalesSourceOrder,
			}); err != nil {
				return err
			}

			bom, ok := recipes[item.ID]
			if !ok {
				if bom, err = tx.ListBOMByMenuItem(ctx, item.ID); err != nil {
					return err
				}
				recipes[item.ID] = bom
			}
			for _, e := range bom {
				usage[e.IngredientID] += line.Qty * e.QtyPerItem
			}
			result.ItemsProcessed++
		}

		template := domain.InventoryTxn{
			BusinessDate: &date,
			Source:       domain.SourceOrder,
			OrderID:      &orderID,
			Note:         fmt.Sprintf("order %s", orderID),
		}
		consumed, err := consumeAll(ctx, tx, usage, template)
		if err != nil {
			return err
		}
		result.Status = domain.StatusSuccess
		result.IngredientsConsumed = consumed
		return nil
	})
	if err != nil {
		s.metrics.OperationError("register_order", err)
		return nil, err
	}

	s.metrics.OrderRegistered(result.Status)
	if result.Status == domain.StatusSuccess {
		s.metrics.LedgerTxn(domain.TxnConsume, result.IngredientsConsumed)
		invalidateInventory(ctx, s.cache)
	}
	log.Info().
		Str("order_id", orderID).
		Str("status", result.Status).
		Int("ingredients_consumed", result.IngredientsConsumed).
		Msg("orders: order registered")
	return result, nil
}

func (s *CloseService) orderDate(payload domain.OrderPayload) domain.Date {
	switch {
	case payload.BusinessDate != nil && !payload.BusinessDate.IsZero():
		return *payload.BusinessDate
	case payload.OpenedAt != nil:
		return domain.DateOf(*payload.OpenedAt)
	default:
		return domain.DateOf(s.now())
	}
}

func orderFromPayload(orderID string, date domain.Date, p domain.OrderPayload) domain.DailyOrder {
	return domain.DailyOrder{
		OrderID:        orderID,
		BusinessDate:   date,
		OpenedAt:       p.OpenedAt,
		ClosedAt:       p.ClosedAt,
		NumGuests:      p.NumGuests,
		ServerName:     p.ServerName,
		DiningArea:     p.DiningArea,
		ServicePeriod:  p.ServicePeriod,
		DiningOption:   p.DiningOption,
		OrderSource:    p.OrderSource,
		DiscountAmount: p.DiscountAmount,
		Subtotal:       p.Subtotal,
		Tax:            p.Tax,
		Tip:            p.Tip,
		Gratuity:       p.Gratuity,
		Total:          p.Total,
	}
}

// pendingUsage sums ingredient need for the part of each sales line that was
// not already consumed at order time.
func pendingUsage(ctx context.Context, tx repository.Tx, sales []domain.SalesLineItem) (map[uuid.UUID]float64, error) {
	usage := make(map[uuid.UUID]float64)
	for _, line := range sales {
		pending := line.Qty - line.OrderQty
		if pending <= 0 {
			continue
		}
		bom, err := tx.ListBOMByMenuItem(ctx, line.MenuItemID)
		if err != nil {
			return nil, err
		}
		for _, e := range bom {
			usage[e.IngredientID] += pending * e.QtyPerItem
		}
	}
	return usage, nil
}

func countPositive(usage map[uuid.UUID]float64) int {
	n := 0
	for _, qty := range usage {
		if qty > 0 {
			n++
		}
	}
	return n
}
