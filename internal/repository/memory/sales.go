package memory

import (
	"context"
	"sort"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

func (t *tx) ReplaceSalesLine(_ context.Context, line domain.SalesLineItem) error {
	key := salesKey{line.BusinessDate, line.MenuItemID}
	if current, ok := t.state.sales[key]; ok {
		line.OrderQty = current.OrderQty
	}
	line.UpdatedAt = t.now()
	t.state.sales[key] = line
	return nil
}

func (t *tx) AccumulateSalesLine(_ context.Context, line domain.SalesLineItem) error {
	key := salesKey{line.BusinessDate, line.MenuItemID}
	if current, ok := t.state.sales[key]; ok {
		line.Qty += current.Qty
		line.OrderQty += current.OrderQty
		line.NetSales += current.NetSales
	}
	line.UpdatedAt = t.now()
	t.state.sales[key] = line
	return nil
}

func (t *tx) ListSalesByDate(ctx context.Context, date domain.Date) ([]domain.SalesLineItem, error) {
	return t.ListSalesBetween(ctx, date, date)
}

func (t *tx) ListSalesBetween(_ context.Context, from, to domain.Date) ([]domain.SalesLineItem, error) {
	var out []domain.SalesLineItem
	for _, line := range t.state.sales {
		if inRange(line.BusinessDate, from, to) {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BusinessDate.Equal(out[j].BusinessDate) {
			return out[i].BusinessDate.Before(out[j].BusinessDate)
		}
		return out[i].MenuItemID.String() < out[j].MenuItemID.String()
	})
	return out, nil
}

func (t *tx) ListSalesDates(_ context.Context) ([]domain.Date, error) {
	seen := make(map[domain.Date]struct{})
	for key := range t.state.sales {
		seen[key.date] = struct{}{}
	}
	return sortedDates(seen), nil
}

func (t *tx) ListDailyRevenue(_ context.Context) ([]domain.DailyRevenue, error) {
	totals := make(map[domain.Date]float64)
	for _, line := range t.state.sales {
		totals[line.BusinessDate] += line.NetSales
	}
	out := make([]domain.DailyRevenue, 0, len(totals))
	for date, revenue := range totals {
		out = append(out, domain.DailyRevenue{BusinessDate: date, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessDate.Before(out[j].BusinessDate) })
	return out, nil
}

func (t *tx) SalesStats(ctx context.Context) (domain.SalesStats, error) {
	stats := domain.SalesStats{Rows: len(t.state.sales)}
	dates, _ := t.ListSalesDates(ctx)
	if len(dates) > 0 {
		first, last := dates[0], dates[len(dates)-1]
		stats.First, stats.Last = &first, &last
	}
	return stats, nil
}

func (t *tx) TopItems(ctx context.Context, from, to domain.Date, limit int) ([]domain.TopItem, error) {
	lines, _ := t.ListSalesBetween(ctx, from, to)
	byItem := make(map[string]*domain.TopItem)
	var out []*domain.TopItem
	for _, line := range lines {
		key := line.MenuItemID.String()
		top, ok := byItem[key]
		if !ok {
			top = &domain.TopItem{MenuItemID: line.MenuItemID, Name: t.state.menuItems[line.MenuItemID].Name}
			byItem[key] = top
			out = append(out, top)
		}
		top.Qty += line.Qty
		top.NetSales += line.NetSales
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Qty != out[j].Qty {
			return out[i].Qty > out[j].Qty
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	items := make([]domain.TopItem, len(out))
	for i, top := range out {
		items[i] = *top
	}
	return items, nil
}

func sortedDates(set map[domain.Date]struct{}) []domain.Date {
	out := make([]domain.Date, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
