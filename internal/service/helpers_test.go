package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/andresuchdata/kitchenops/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	catalog  *CatalogService
	ledger   *LedgerService
	sales    *SalesService
	closes   *CloseService
	forecast *ForecastService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore().WithClock(clock)
	return &fixture{
		ctx:      context.Background(),
		store:    store,
		catalog:  NewCatalogService(store, nil),
		ledger:   NewLedgerService(store, nil, nil),
		sales:    NewSalesService(store, nil),
		closes:   NewCloseService(store, nil, nil).WithClock(clock),
		forecast: NewForecastService(store, nil, config.ForecastConfig{}, nil).WithClock(clock),
	}
}

func (f *fixture) menuItem(t *testing.T, name string) domain.MenuItem {
	t.Helper()
	res, err := f.catalog.UpsertMenuItem(f.ctx, domain.MenuItemInput{Name: name, Category: "Mains"})
	require.NoError(t, err)
	return *res.MenuItem
}

func (f *fixture) ingredient(t *testing.T, name, unit string) domain.Ingredient {
	t.Helper()
	res, err := f.catalog.UpsertIngredient(f.ctx, domain.IngredientInput{Name: name, Unit: unit})
	require.NoError(t, err)
	return *res.Ingredient
}

func (f *fixture) recipe(t *testing.T, item domain.MenuItem, ing domain.Ingredient, qty float64) {
	t.Helper()
	_, err := f.catalog.UpsertBOMEntry(f.ctx, item.ID, ing.ID, qty)
	require.NoError(t, err)
}

func (f *fixture) receive(t *testing.T, ing domain.Ingredient, qty float64) {
	t.Helper()
	_, err := f.ledger.Receive(f.ctx, ing.ID, qty, "")
	require.NoError(t, err)
}

func (f *fixture) sell(t *testing.T, date domain.Date, item string, qty, netSales float64) {
	t.Helper()
	_, err := f.sales.IngestSales(f.ctx, []domain.SalesRow{{BusinessDate: date, MenuItemName: item, Qty: qty, NetSales: netSales}})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) float64 {
	t.Helper()
	bal, err := f.ledger.GetBalance(f.ctx, id)
	require.NoError(t, err)
	if bal == nil {
		return 0
	}
	return bal.QtyOnHand
}

// ledgerSum adds every ledger delta for the ingredient.
func (f *fixture) ledgerSum(t *testing.T, id uuid.UUID) float64 {
	t.Helper()
	var sum float64
	err := f.store.WithTx(f.ctx, func(tx repository.Tx) error {
		txns, err := tx.ListTxns(f.ctx, id, nil)
		for _, txn := range txns {
			sum += txn.QtyDelta
		}
		return err
	})
	require.NoError(t, err)
	return sum
}

func day(month time.Month, d int) domain.Date {
	return domain.NewDate(2024, month, d)
}

// mapInventoryCache keeps cached reads in process so tests can observe
// stale entries.
type mapInventoryCache struct {
	mu          sync.Mutex
	snapshot    []domain.SnapshotRow
	forecasts   map[string][]domain.ForecastRow
	invalidated int
}

func newMapInventoryCache() *mapInventoryCache {
	return &mapInventoryCache{forecasts: make(map[string][]domain.ForecastRow)}
}

func (c *mapInventoryCache) GetSnapshot(_ context.Context) ([]domain.SnapshotRow, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, c.snapshot != nil, nil
}

func (c *mapInventoryCache) SetSnapshot(_ context.Context, rows []domain.SnapshotRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = rows
	return nil
}

func (c *mapInventoryCache) GetForecast(_ context.Context, referenceDate domain.Date, days int) ([]domain.ForecastRow, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.forecasts[fmt.Sprintf("%s:%d", referenceDate, days)]
	return rows, ok, nil
}

func (c *mapInventoryCache) SetForecast(_ context.Context, referenceDate domain.Date, days int, rows []domain.ForecastRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forecasts[fmt.Sprintf("%s:%d", referenceDate, days)] = rows
	return nil
}

func (c *mapInventoryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.forecasts = make(map[string][]domain.ForecastRow)
	c.invalidated++
	return nil
}
