// Package forecast holds the demand and revenue projection math.
package forecast

import (
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/google/uuid"
)

// WeekdayProfile is the mean quantity sold per weekday, indexed by time.Weekday.
type WeekdayProfile [7]float64

// WeekdayAverages buckets history by item and weekday and averages each
// bucket over the days that have a sales row. Buckets without rows stay 0.
func WeekdayAverages(history []domain.SalesLineItem) map[uuid.UUID]WeekdayProfile {
	type bucket struct {
		sum   [7]float64
		count [7]int
	}
	buckets := make(map[uuid.UUID]*bucket)
	for _, line := range history {
		b, ok := buckets[line.MenuItemID]
		if !ok {
			b = &bucket{}
			buckets[line.MenuItemID] = b
		}
		wd := line.BusinessDate.Weekday()
		b.sum[wd] += line.Qty
		b.count[wd]++
	}

	profiles := make(map[uuid.UUID]WeekdayProfile, len(buckets))
	for id, b := range buckets {
		var p WeekdayProfile
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if b.count[wd] > 0 {
				p[wd] = b.sum[wd] / float64(b.count[wd])
			}
		}
		profiles[id] = p
	}
	return profiles
}

// ProjectItems emits one row per day in [start, start+days) for every item.
func ProjectItems(profiles map[uuid.UUID]WeekdayProfile, items []uuid.UUID, start domain.Date, days int, generatedAt time.Time) []domain.ForecastItem {
	rows := make([]domain.ForecastItem, 0, len(items)*days)
	for i := 0; i < days; i++ {
		day := start.AddDays(i)
		for _, id := range items {
			profile := profiles[id]
			rows = append(rows, domain.ForecastItem{
				ForecastDate:  day,
				MenuItemID:    id,
				PredictedQty:  profile[day.Weekday()],
				ReferenceDate: start,
				GeneratedAt:   generatedAt,
			})
		}
	}
	return rows
}

// ExpandIngredients converts item demand into ingredient demand through the
// recipe graph. Every ingredient reachable from a forecast item gets a row
// for every forecast day, including zero-demand days.
func ExpandIngredients(items []domain.ForecastItem, bom []domain.BOMEntry) []domain.ForecastIngredient {
	recipes := make(map[uuid.UUID][]domain.BOMEntry)
	for _, e := range bom {
		recipes[e.MenuItemID] = append(recipes[e.MenuItemID], e)
	}

	type key struct {
		date domain.Date
		id   uuid.UUID
	}
	totals := make(map[key]float64)
	var (
		days        []domain.Date
		seenDay     = make(map[domain.Date]bool)
		ingredients []uuid.UUID
		seenIng     = make(map[uuid.UUID]bool)
		meta        domain.ForecastItem
	)
	for _, item := range items {
		meta = item
		if !seenDay[item.ForecastDate] {
			seenDay[item.ForecastDate] = true
			days = append(days, item.ForecastDate)
		}
		for _, e := range recipes[item.MenuItemID] {
			if !seenIng[e.IngredientID] {
				seenIng[e.IngredientID] = true
				ingredients = append(ingredients, e.IngredientID)
			}
			totals[key{item.ForecastDate, e.IngredientID}] += item.PredictedQty * e.QtyPerItem
		}
	}

	rows := make([]domain.ForecastIngredient, 0, len(days)*len(ingredients))
	for _, day := range days {
		for _, id := range ingredients {
			rows = append(rows, domain.ForecastIngredient{
				ForecastDate:  day,
				IngredientID:  id,
				PredictedQty:  totals[key{day, id}],
				ReferenceDate: meta.ReferenceDate,
				GeneratedAt:   meta.GeneratedAt,
			})
		}
	}
	return rows
}
