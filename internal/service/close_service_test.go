package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDailyCloseConsumesRecipeQuantities(t *testing.T) {
	f := newFixture(t)
	pizza := f.menuItem(t, "Pizza")
	flour := f.ingredient(t, "Flour", "kg")
	f.recipe(t, pizza, flour, 0.5)
	f.receive(t, flour, 100)

	date := day(time.June, 3)
	f.sell(t, date, "Pizza", 10, 120)

	res, err := f.closes.RunDailyClose(f.ctx, date)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.ConsumeTxnsCreated)
	assert.Equal(t, 95.0, f.balance(t, flour.ID))
	assert.Equal(t, f.balance(t, flour.ID), f.ledgerSum(t, flour.ID))

	consume := domain.TxnConsume
	txns, err := f.ledger.ListTransactions(f.ctx, flour.ID, &consume)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, -5.0, txns[0].QtyDelta)
	assert.Equal(t, domain.SourceClose, txns[0].Source)
	assert.True(t, txns[0].BusinessDate.Equal(date))
}

func TestRunDailyCloseTwiceIsSkipped(t *testing.T) {
	f := newFixture(t)
	pizza := f.menuItem(t, "Pizza")
	flour := f.ingredient(t, "Flour", "kg")
	f.recipe(t, pizza, flour, 0.5)
	f.receive(t, flour, 100)
	date := day(time.June, 3)
	f.sell(t, date, "Pizza", 10, 120)

	_, err := f.closes.RunDailyClose(f.ctx, date)
	require.NoError(t, err)

	again, err := f.closes.RunDailyClose(f.ctx, date)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, again.Status)
	assert.Zero(t, again.ConsumeTxnsCreated)
	assert.Equal(t, 95.0, f.balance(t, flour.ID))
}

func TestRunDailyCloseConcurrentCallers(t *testing.T) {
	f := newFixture(t)
	pizza := f.menuItem(t, "Pizza")
	flour := f.ingredient(t, "Flour", "kg")
	f.recipe(t, pizza, flour, 0.5)
	f.receive(t, flour, 100)
	date := day(time.June, 3)
	f.sell(t, date, "Pizza", 10, 120)

	const workers = 6
	statuses := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.closes.RunDailyClose(f.ctx, date)
			errs[i] = err
			if res != nil {
				statuses[i] = res.Status
			}
		}(i)
	}
	wg.Wait()

	successes := 0
	for i := range statuses {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], domain.ErrIntegrity)
			continue
		}
		if statuses[i] == domain.StatusSuccess {
			successes++
		} else {
			assert.Equal(t, domain.StatusSkipped, statuses[i])
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 95.0, f.balance(t, flour.ID))
	assert.Equal(t, f.balance(t, flour.ID), f.ledgerSum(t, flour.ID))
}

func TestRunDailyCloseWithoutSales(t *testing.T) {
	f := newFixture(t)

	res, err := f.closes.RunDailyClose(f.ctx, day(time.June, 3))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoData, res.Status)
}

func TestRunDailyCloseSkipsItemsWithoutRecipe(t *testing.T) {
	f := newFixture(t)
	date := day(time.June, 3)
	f.sell(t, date, "Water", 4, 8)

	res, err := f.closes.RunDailyClose(f.ctx, date)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Zero(t, res.ConsumeTxnsCreated)
}

func TestRunDailyCloseAllowsNegativeBalance(t *testing.T) {
	f := newFixture(t)
	pizza := f.menuItem(t, "Pizza")
	cheese := f.ingredient(t, "Cheese", "kg")
	f.recipe(t, pizza, cheese, 0.25)
	f.receive(t, cheese, 1)
	date := day(time.June, 3)
	f.sell(t, date, "Pizza", 8, 96)

	_, err := f.closes.RunDailyClose(f.ctx, date)
	require.NoError(t, err)
	assert.Equal(t, -1.0, f.balance(t, cheese.ID))
}

func TestReverseDailyCloseRestoresBalances(t *testing.T) {
	f := newFixture(t)
	pizza := f.menuItem(t, "Pizza")
	flour := f.ingredient(t, "Flour", "kg")
	f.recipe(t, pizza, flour, 0.5)
	f.receive(t, flour, 100)
	date := day(time.June, 3)
	f.sell(t, date, "Pizza", 10, 120)

	_, err := f.closes.RunDailyClose(f.ctx, date)
	require.NoError(t, err)

	rev, err := f.closes.ReverseDailyClose(f.ctx, date)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, rev.Status)
	assert.Equal(t, 1, rev.TxnsReversed)
	assert.Equal(t, 100.0, f.balance(t, flour.ID))
	assert.Equal(t, 100.0, f.ledgerSum(t, flour.ID))

	// the date can be closed again afterwards
	res, err := f.closes.RunDailyClose(f.ctx, date)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, 95.0, f.balance(t, flour.ID))
}

func TestReverseDailyCloseOnOpenDateIsNoop(t *testing.T) {
	f := newFixture(t)

	rev, err := f.closes.ReverseDailyClose(f.ctx, day(time.June, 3))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, rev.Status)
	assert.Zero(t, rev.TxnsReversed)
}

func TestRunBulkCloseClosesOpenDates(t *testing.T) {
	f := newFixture(t)
	pizza := f.menuItem(t, "Pizza")
	flour := f.ingredient(t, "Flour", "kg")
	f.recipe(t, pizza, flour, 0.5)
	f.receive(t, flour, 100)
	f.sell(t, day(time.June, 1), "Pizza", 2, 24)
	f.sell(t, day(time.June, 2), "Pizza", 4, 48)
	f.sell(t, day(time.June, 3), "Pizza", 6, 72)

	_, err := f.closes.RunDailyClose(f.ctx, day(time.June, 2))
	require.NoError(t, err)

	res, err := f.closes.RunBulkClose(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DatesProcessed)
	assert.Equal(t, 2, res.TotalConsumeTxns)
	require.Len(t, res.Dates, 2)
	assert.Equal(t, "2024-06-01", res.Dates[0].String())
	assert.Equal(t, "2024-06-03", res.Dates[1].String())
	assert.Equal(t, 94.0, f.balance(t, flour.ID))

	again, err := f.closes.RunBulkClose(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, again.DatesProcessed)

	status, err := NewOnboardingService(f.store).GetStatus(f.ctx)
	require.NoError(t, err)
	assert.True(t, status.BulkCloseComplete)
}

func TestRegisterOrderConsumesImmediately(t *testing.T) {
	f := newFixture(t)
	burger := f.menuItem(t, "Burger")
	beef := f.ingredient(t, "Beef", "kg")
	f.recipe(t, burger, beef, 0.2)
	f.receive(t, beef, 10)
	date := day(time.June, 5)

	res, err := f.closes.RegisterOrder(f.ctx, domain.OrderPayload{
		OrderID:      "A-100",
		BusinessDate: &date,
		Subtotal:     30,
		Items:        []domain.OrderLine{{MenuItemName: "Burger", Qty: 2, Price: 30}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.ItemsProcessed)
	assert.Equal(t, 1, res.IngredientsConsumed)
	assert.InDelta(t, 9.6, f.balance(t, beef.ID), 1e-9)

	// the later close must not consume the same burgers again
	closeRes, err := f.closes.RunDailyClose(f.ctx, date)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, closeRes.Status)
	assert.Zero(t, closeRes.ConsumeTxnsCreated)
	assert.InDelta(t, 9.6, f.balance(t, beef.ID), 1e-9)
}

func storedOrders(t *testing.T, f *fixture, from, to domain.Date) []domain.DailyOrder {
	t.Helper()
	var orders []domain.DailyOrder
	err := f.store.WithTx(f.ctx, func(tx repository.Tx) error {
		var err error
		orders, err = tx.ListOrdersBetween(f.ctx, from, to)
		return err
	})
	require.NoError(t, err)
	return orders
}

func TestRegisterOrderDuplicate(t *testing.T) {
	f := newFixture(t)
	burger := f.menuItem(t, "Burger")
	beef := f.ingredient(t, "Beef", "kg")
	f.recipe(t, burger, beef, 0.2)
	f.receive(t, beef, 10)
	date := day(time.June, 5)

	_, err := f.closes.RegisterOrder(f.ctx, domain.OrderPayload{
		OrderID:      "A-100",
		BusinessDate: &date,
		NumGuests:    2,
		Subtotal:     30,
		Items:        []domain.OrderLine{{MenuItemName: "Burger", Qty: 2, Price: 30}},
	})
	require.NoError(t, err)

	dup, err := f.closes.RegisterOrder(f.ctx, domain.OrderPayload{
		OrderID:      "A-100",
		BusinessDate: &date,
		NumGuests:    5,
		Subtotal:     105,
		ServerName:   "Ana",
		Items:        []domain.OrderLine{{MenuItemName: "Burger", Qty: 7, Price: 105}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDuplicate, dup.Status)
	assert.Zero(t, dup.IngredientsConsumed)
	assert.InDelta(t, 9.6, f.balance(t, beef.ID), 1e-9)

	sales := salesOn(t, f, date)
	require.Len(t, sales, 1)
	assert.Equal(t, 2.0, sales[0].Qty)
	assert.Equal(t, 30.0, sales[0].NetSales)

	orders := storedOrders(t, f, date, date)
	require.Len(t, orders, 1)
	assert.Equal(t, 5, orders[0].NumGuests)
	assert.Equal(t, 105.0, orders[0].Subtotal)
	assert.Equal(t, "Ana", orders[0].ServerName)
}

func TestRegisterOrderRetryKeepsBusinessDate(t *testing.T) {
	f := newFixture(t)
	burger := f.menuItem(t, "Burger")
	beef := f.ingredient(t, "Beef", "kg")
	f.recipe(t, burger, beef, 0.2)
	f.receive(t, beef, 10)
	first := domain.DateOf(fixedNow)

	_, err := f.closes.RegisterOrder(f.ctx, domain.OrderPayload{
		OrderID:   "K-1",
		NumGuests: 2,
		Items:     []domain.OrderLine{{MenuItemName: "Burger", Qty: 2, Price: 30}},
	})
	require.NoError(t, err)

	nextDay := NewCloseService(f.store, nil, nil).WithClock(func() time.Time { return fixedNow.AddDate(0, 0, 1) })
	dup, err := nextDay.RegisterOrder(f.ctx, domain.OrderPayload{
		OrderID:   "K-1",
		NumGuests: 5,
		Items:     []domain.OrderLine{{MenuItemName: "Burger", Qty: 7, Price: 105}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDuplicate, dup.Status)
	assert.InDelta(t, 9.6, f.balance(t, beef.ID), 1e-9)

	orders := storedOrders(t, f, first, first.AddDays(1))
	require.Len(t, orders, 1)
	assert.True(t, orders[0].BusinessDate.Equal(first))
	assert.Equal(t, 5, orders[0].NumGuests)

	sales := salesOn(t, f, first)
	require.Len(t, sales, 1)
	assert.Equal(t, 2.0, sales[0].Qty)
}

func TestRegisterOrderConcurrentSubmissions(t *testing.T) {
	f := newFixture(t)
	burger := f.menuItem(t, "Burger")
	beef := f.ingredient(t, "Beef", "kg")
	f.recipe(t, burger, beef, 0.2)
	f.receive(t, beef, 10)
	date := day(time.June, 5)
	payload := domain.OrderPayload{
		OrderID:      "R-1",
		BusinessDate: &date,
		Items:        []domain.OrderLine{{MenuItemName: "Burger", Qty: 2, Price: 30}},
	}

	const workers = 8
	statuses := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.closes.RegisterOrder(f.ctx, payload)
			errs[i] = err
			if res != nil {
				statuses[i] = res.Status
			}
		}(i)
	}
	wg.Wait()

	successes := 0
	for i := range statuses {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], domain.ErrIntegrity)
			continue
		}
		if statuses[i] == domain.StatusSuccess {
			successes++
		} else {
			assert.Equal(t, domain.StatusDuplicate, statuses[i])
		}
	}
	assert.Equal(t, 1, successes)
	assert.InDelta(t, 9.6, f.balance(t, beef.ID), 1e-9)
	assert.InDelta(t, f.balance(t, beef.ID), f.ledgerSum(t, beef.ID), 1e-9)
}

func TestRegisterOrderCreatesUnknownItems(t *testing.T) {
	f := newFixture(t)
	opened := time.Date(2024, time.June, 7, 19, 30, 0, 0, time.UTC)

	res, err := f.closes.RegisterOrder(f.ctx, domain.OrderPayload{
		OrderID:  "B-1",
		OpenedAt: &opened,
		Items:    []domain.OrderLine{{MenuItemName: "Mystery Soup", Qty: 1, Price: 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MenuItemsCreated)
	assert.Zero(t, res.IngredientsConsumed)

	items, err := f.catalog.SearchMenuItems(f.ctx, "mystery")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.DefaultCategory, items[0].Category)
	assert.True(t, items[0].Active)
}

func TestRegisterOrderValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.closes.RegisterOrder(f.ctx, domain.OrderPayload{Items: []domain.OrderLine{{MenuItemName: "x", Qty: 1}}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.closes.RegisterOrder(f.ctx, domain.OrderPayload{OrderID: "C-1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.closes.RegisterOrder(f.ctx, domain.OrderPayload{OrderID: "C-1", Items: []domain.OrderLine{{MenuItemName: "x", Qty: 0}}})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}
