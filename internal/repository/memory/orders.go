package memory

import (
	"context"
	"sort"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

func (t *tx) UpsertOrder(_ context.Context, order *domain.DailyOrder) (bool, error) {
	now := t.now()
	current, exists := t.state.orders[order.OrderID]
	if exists {
		order.CreatedAt = current.CreatedAt
	} else {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	t.state.orders[order.OrderID] = *order
	return !exists, nil
}

func (t *tx) FindOrder(_ context.Context, orderID string) (*domain.DailyOrder, error) {
	order, ok := t.state.orders[orderID]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (t *tx) ListOrdersBetween(_ context.Context, from, to domain.Date) ([]domain.DailyOrder, error) {
	var out []domain.DailyOrder
	for _, order := range t.state.orders {
		if inRange(order.BusinessDate, from, to) {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BusinessDate.Equal(out[j].BusinessDate) {
			return out[i].BusinessDate.Before(out[j].BusinessDate)
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out, nil
}

func (t *tx) LatestOrderDate(_ context.Context) (*domain.Date, error) {
	var latest *domain.Date
	for _, order := range t.state.orders {
		if latest == nil || order.BusinessDate.After(*latest) {
			d := order.BusinessDate
			latest = &d
		}
	}
	return latest, nil
}

func (t *tx) GetDailyClose(_ context.Context, date domain.Date) (*domain.DailyClose, error) {
	c, ok := t.state.closes[date]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *tx) InsertDailyClose(_ context.Context, close domain.DailyClose) error {
	if _, ok := t.state.closes[close.BusinessDate]; ok {
		return integrity("business date %s already closed", close.BusinessDate)
	}
	close.ClosedAt = t.now()
	t.state.closes[close.BusinessDate] = close
	return nil
}

func (t *tx) DeleteDailyClose(_ context.Context, date domain.Date) (bool, error) {
	if _, ok := t.state.closes[date]; !ok {
		return false, nil
	}
	delete(t.state.closes, date)
	return true, nil
}

func (t *tx) ListClosedDates(_ context.Context) ([]domain.Date, error) {
	set := make(map[domain.Date]struct{}, len(t.state.closes))
	for d := range t.state.closes {
		set[d] = struct{}{}
	}
	return sortedDates(set), nil
}

func (t *tx) ReplaceForecastItems(_ context.Context, from, to domain.Date, rows []domain.ForecastItem) error {
	for key := range t.state.forecastItems {
		if inRange(key.date, from, to) {
			delete(t.state.forecastItems, key)
		}
	}
	for _, row := range rows {
		t.state.forecastItems[forecastKey{row.ForecastDate, row.MenuItemID}] = row
	}
	return nil
}

func (t *tx) ReplaceForecastIngredients(_ context.Context, from, to domain.Date, rows []domain.ForecastIngredient) error {
	for key := range t.state.forecastIngredients {
		if inRange(key.date, from, to) {
			delete(t.state.forecastIngredients, key)
		}
	}
	for _, row := range rows {
		t.state.forecastIngredients[forecastKey{row.ForecastDate, row.IngredientID}] = row
	}
	return nil
}

func (t *tx) ListForecastItems(_ context.Context, from, to domain.Date) ([]domain.ForecastItem, error) {
	var out []domain.ForecastItem
	for key, row := range t.state.forecastItems {
		if inRange(key.date, from, to) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ForecastDate.Equal(out[j].ForecastDate) {
			return out[i].ForecastDate.Before(out[j].ForecastDate)
		}
		return out[i].MenuItemID.String() < out[j].MenuItemID.String()
	})
	return out, nil
}

func (t *tx) ListForecastIngredients(_ context.Context, from, to domain.Date) ([]domain.ForecastIngredient, error) {
	var out []domain.ForecastIngredient
	for key, row := range t.state.forecastIngredients {
		if inRange(key.date, from, to) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ForecastDate.Equal(out[j].ForecastDate) {
			return out[i].ForecastDate.Before(out[j].ForecastDate)
		}
		return out[i].IngredientID.String() < out[j].IngredientID.String()
	})
	return out, nil
}

func (t *tx) GetConfig(_ context.Context, key string) ([]byte, error) {
	value, ok := t.state.config[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

func (t *tx) SetConfig(_ context.Context, key string, value []byte) error {
	t.state.config[key] = append([]byte(nil), value...)
	return nil
}
