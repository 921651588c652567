package forecast

import (
	"testing"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayAverages(t *testing.T) {
	item := uuid.New()
	monday := domain.NewDate(2024, time.January, 1)
	history := []domain.SalesLineItem{
		{BusinessDate: monday, MenuItemID: item, Qty: 10},
		{BusinessDate: monday.AddDays(7), MenuItemID: item, Qty: 20},
		{BusinessDate: monday.AddDays(14), MenuItemID: item, Qty: 30},
		{BusinessDate: monday.AddDays(1), MenuItemID: item, Qty: 4},
	}

	profiles := WeekdayAverages(history)

	require.Contains(t, profiles, item)
	assert.Equal(t, 20.0, profiles[item][time.Monday])
	assert.Equal(t, 4.0, profiles[item][time.Tuesday])
	assert.Equal(t, 0.0, profiles[item][time.Sunday])
}

func TestProjectItemsUsesWeekdayOfEachDay(t *testing.T) {
	item := uuid.New()
	var profile WeekdayProfile
	profile[time.Monday] = 20
	start := domain.NewDate(2024, time.January, 30) // Tuesday

	rows := ProjectItems(map[uuid.UUID]WeekdayProfile{item: profile}, []uuid.UUID{item}, start, 7, time.Now())

	require.Len(t, rows, 7)
	for _, row := range rows {
		if row.ForecastDate.Weekday() == time.Monday {
			assert.Equal(t, 20.0, row.PredictedQty)
			assert.Equal(t, domain.NewDate(2024, time.February, 5), row.ForecastDate)
		} else {
			assert.Zero(t, row.PredictedQty)
		}
		assert.Equal(t, start, row.ReferenceDate)
	}
}

func TestProjectItemsWithoutHistory(t *testing.T) {
	item := uuid.New()
	rows := ProjectItems(map[uuid.UUID]WeekdayProfile{}, []uuid.UUID{item}, domain.NewDate(2024, time.March, 1), 3, time.Now())

	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Zero(t, row.PredictedQty)
	}
}

func TestExpandIngredients(t *testing.T) {
	pizza, salad := uuid.New(), uuid.New()
	flour, cheese := uuid.New(), uuid.New()
	day := domain.NewDate(2024, time.March, 4)

	items := []domain.ForecastItem{
		{ForecastDate: day, MenuItemID: pizza, PredictedQty: 10, ReferenceDate: day},
		{ForecastDate: day, MenuItemID: salad, PredictedQty: 4, ReferenceDate: day},
		{ForecastDate: day.AddDays(1), MenuItemID: pizza, PredictedQty: 0, ReferenceDate: day},
		{ForecastDate: day.AddDays(1), MenuItemID: salad, PredictedQty: 2, ReferenceDate: day},
	}
	bom := []domain.BOMEntry{
		{MenuItemID: pizza, IngredientID: flour, QtyPerItem: 0.5},
		{MenuItemID: pizza, IngredientID: cheese, QtyPerItem: 0.25},
		{MenuItemID: salad, IngredientID: cheese, QtyPerItem: 0.5},
	}

	rows := ExpandIngredients(items, bom)

	require.Len(t, rows, 4)
	got := make(map[string]float64)
	for _, row := range rows {
		got[row.ForecastDate.String()+"/"+row.IngredientID.String()] = row.PredictedQty
	}
	assert.Equal(t, 5.0, got[day.String()+"/"+flour.String()])
	assert.Equal(t, 4.5, got[day.String()+"/"+cheese.String()])
	assert.Equal(t, 0.0, got[day.AddDays(1).String()+"/"+flour.String()])
	assert.Equal(t, 1.0, got[day.AddDays(1).String()+"/"+cheese.String()])
}
