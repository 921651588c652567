package service

import (
	"testing"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedMondays sells qty of item on each Monday of June 2024 up to the 24th.
func seedMondays(t *testing.T, f *fixture, item string, qty float64) {
	t.Helper()
	for _, d := range []int{3, 10, 17, 24} {
		f.sell(t, day(time.June, d), item, qty, qty*12)
	}
}

func TestGenerateForecastUsesWeekdayAverage(t *testing.T) {
	f := newFixture(t)
	seedMondays(t, f, "Pizza", 20)
	ref := day(time.June, 25) // Tuesday

	res, err := f.forecast.GenerateForecast(f.ctx, 7, ref)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, 7, res.DaysForecasted)
	assert.Equal(t, 7, res.ItemForecasts)

	rows, err := f.forecast.GetItemForecast(f.ctx, ref, 7)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	for _, row := range rows {
		if row.ForecastDate.Weekday() == time.Monday {
			assert.Equal(t, 20.0, row.PredictedQty)
			assert.Equal(t, "2024-07-01", row.ForecastDate.String())
		} else {
			assert.Zero(t, row.PredictedQty)
		}
	}
}

func TestGenerateForecastExpandsIngredients(t *testing.T) {
	f := newFixture(t)
	seedMondays(t, f, "Pizza", 20)
	pizza, err := f.catalog.SearchMenuItems(f.ctx, "Pizza")
	require.NoError(t, err)
	flour := f.ingredient(t, "Flour", "kg")
	f.recipe(t, pizza[0], flour, 0.5)
	f.receive(t, flour, 4)
	ref := day(time.June, 25)

	res, err := f.forecast.GenerateForecast(f.ctx, 7, ref)
	require.NoError(t, err)
	assert.Equal(t, 7, res.IngredientForecasts)

	rows, err := f.forecast.GetForecast(f.ctx, ref, 0)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	last := rows[len(rows)-1]
	assert.Equal(t, "2024-07-01", last.ForecastDate.String())
	assert.Equal(t, 10.0, last.QtyNeeded)
	assert.Equal(t, 10.0, last.CumulativeNeeded)
	assert.Equal(t, 4.0, last.QtyOnHand)
	assert.Equal(t, 6.0, last.Shortfall)

	first := rows[0]
	assert.Zero(t, first.CumulativeNeeded)
	assert.Zero(t, first.Shortfall)
}

func TestGenerateForecastReplacesWindow(t *testing.T) {
	f := newFixture(t)
	seedMondays(t, f, "Pizza", 20)
	ref := day(time.June, 25)

	_, err := f.forecast.GenerateForecast(f.ctx, 7, ref)
	require.NoError(t, err)
	_, err = f.forecast.GenerateForecast(f.ctx, 7, ref)
	require.NoError(t, err)

	rows, err := f.forecast.GetItemForecast(f.ctx, ref, 7)
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

func TestGenerateForecastWithoutHistory(t *testing.T) {
	f := newFixture(t)
	f.menuItem(t, "Salad")

	res, err := f.forecast.GenerateForecast(f.ctx, 3, day(time.June, 25))
	require.NoError(t, err)
	assert.Equal(t, 3, res.ItemForecasts)
	assert.Zero(t, res.IngredientForecasts)
}

func TestGenerateForecastRejectsBadHorizon(t *testing.T) {
	f := newFixture(t)

	_, err := f.forecast.GenerateForecast(f.ctx, 0, day(time.June, 25))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestPredictRevenueNoData(t *testing.T) {
	f := newFixture(t)

	res, err := f.forecast.PredictRevenue(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoData, res.Status)
	assert.Equal(t, "No sales data found to generate forecast.", res.Message)
	assert.Empty(t, res.Predictions)
}

func TestPredictRevenueInsufficientHistory(t *testing.T) {
	f := newFixture(t)
	for d := 1; d <= 3; d++ {
		f.sell(t, day(time.June, d), "Pizza", 10, 100)
	}

	res, err := f.forecast.PredictRevenue(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInsufficientData, res.Status)
	assert.Equal(t, 3, res.HistoricalDays)
	assert.Empty(t, res.Predictions)
}

func TestPredictRevenueFitsTrend(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 10; i++ {
		f.sell(t, day(time.June, 1+i), "Pizza", 10, float64(100+20*i))
	}

	res, err := f.forecast.PredictRevenue(f.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, 10, res.HistoricalDays)
	assert.InDelta(t, 20.0, res.Slope, 1e-9)
	assert.InDelta(t, 100.0, res.Intercept, 1e-9)
	assert.Equal(t, domain.TrendIncreasing, res.Trend)
	require.Len(t, res.Predictions, 3)
	assert.Equal(t, "2024-06-11", res.Predictions[0].Date.String())
	assert.Equal(t, 300.0, res.Predictions[0].PredictedRevenue)
	assert.Equal(t, 340.0, res.Predictions[2].PredictedRevenue)
	assert.Equal(t, "Forecast based on 10 days of history. Revenue trend is increasing (~$20/day).", res.Summary)
}

func TestPredictRevenueFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.sell(t, day(time.June, 1+i), "Pizza", 1, float64(400-100*i))
	}

	res, err := f.forecast.PredictRevenue(f.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.TrendDecreasing, res.Trend)
	for _, p := range res.Predictions {
		assert.GreaterOrEqual(t, p.PredictedRevenue, 0.0)
	}
}
