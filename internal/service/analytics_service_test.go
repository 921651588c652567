package service

import (
	"testing"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour int) *time.Time {
	t := time.Date(2024, time.June, 14, hour, 15, 0, 0, time.UTC)
	return &t
}

func seedOrders(t *testing.T, f *fixture) domain.Date {
	t.Helper()
	date := day(time.June, 14)
	_, err := f.sales.IngestOrders(f.ctx, []domain.DailyOrder{
		{OrderID: "a1", BusinessDate: date, OpenedAt: at(12), NumGuests: 2, ServerName: "Alice", ServicePeriod: "Lunch", DiningOption: "Dine In", Subtotal: 40, Tip: 6},
		{OrderID: "a2", BusinessDate: date, OpenedAt: at(19), NumGuests: 4, ServerName: "Alice", ServicePeriod: "Dinner", DiningOption: "Dine In", Subtotal: 80, Tip: 12},
		{OrderID: "a3", BusinessDate: date, OpenedAt: at(20), NumGuests: 1, ServerName: "Bob", ServicePeriod: "Dinner", DiningOption: "Takeout", Subtotal: 25},
		{OrderID: "a4", BusinessDate: date, OpenedAt: at(20), NumGuests: 3, ServerName: "Bob", ServicePeriod: "Dinner", Subtotal: 99, Voided: true},
	})
	require.NoError(t, err)
	return date
}

func TestGetDailyAnalytics(t *testing.T) {
	f := newFixture(t)
	date := seedOrders(t, f)
	svc := NewAnalyticsService(f.store, nil)

	got, err := svc.GetDailyAnalytics(f.ctx, &date)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, got.Status)
	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 145.0, got.TotalRevenue)
	assert.Equal(t, 7, got.TotalGuests)
	assert.Equal(t, 18.0, got.TotalTips)
	assert.InDelta(t, 48.33, got.AvgOrderValue, 0.001)

	require.Len(t, got.ByServicePeriod, 2)
	assert.Equal(t, "Dinner", got.ByServicePeriod[0].Period)
	assert.Equal(t, 105.0, got.ByServicePeriod[0].Revenue)

	require.Len(t, got.ByServer, 2)
	assert.Equal(t, "Alice", got.ByServer[0].Server)
	assert.Equal(t, 18.0, got.ByServer[0].Tips)

	require.Len(t, got.ByHour, 3)
	assert.Equal(t, 12, got.ByHour[0].Hour)
	assert.Equal(t, 1, got.ByHour[2].Orders)
}

func TestGetDailyAnalyticsDefaultsToLatestDate(t *testing.T) {
	f := newFixture(t)
	seedOrders(t, f)

	got, err := NewAnalyticsService(f.store, nil).GetDailyAnalytics(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-14", got.BusinessDate.String())
}

func TestGetDailyAnalyticsNoOrders(t *testing.T) {
	f := newFixture(t)

	got, err := NewAnalyticsService(f.store, nil).GetDailyAnalytics(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoData, got.Status)
}

func TestGetRevenueTrend(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.IngestOrders(f.ctx, []domain.DailyOrder{
		{OrderID: "x1", BusinessDate: day(time.June, 1), Subtotal: 50},
		{OrderID: "x2", BusinessDate: day(time.June, 10), Subtotal: 30},
		{OrderID: "x3", BusinessDate: day(time.June, 10), Subtotal: 10},
		{OrderID: "x4", BusinessDate: day(time.June, 12), Subtotal: 70},
	})
	require.NoError(t, err)

	points, err := NewAnalyticsService(f.store, nil).GetRevenueTrend(f.ctx, 7)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-06-10", points[0].BusinessDate.String())
	assert.Equal(t, 40.0, points[0].Revenue)
	assert.Equal(t, 20.0, points[0].AvgOrderValue)
	assert.Equal(t, 70.0, points[1].Revenue)
}
