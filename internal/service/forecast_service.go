package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/kitchenops/internal/cache"
	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/forecast"
	"github.com/andresuchdata/kitchenops/internal/metrics"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxForecastDays        = 90
	defaultRevenueDays     = 7
	revenueNoDataMsg       = "No sales data found to generate forecast."
	revenueInsufficientMsg = "Not enough historical data points to generate a forecast."
)

type ForecastService struct {
	store   repository.Store
	cache   cache.InventoryCache
	cfg     config.ForecastConfig
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewForecastService(store repository.Store, cacheImpl cache.InventoryCache, cfg config.ForecastConfig, m *metrics.Metrics) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopInventoryCache()
	}
	defaults := config.Defaults().Forecast
	if cfg.Days <= 0 {
		cfg.Days = defaults.Days
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = defaults.HistoryDays
	}
	if cfg.RevenueHistoryDays <= 0 {
		cfg.RevenueHistoryDays = defaults.RevenueHistoryDays
	}
	if cfg.RevenueMinDays < 2 {
		cfg.RevenueMinDays = defaults.RevenueMinDays
	}
	if cfg.RevenueTrendThreshold <= 0 {
		cfg.RevenueTrendThreshold = defaults.RevenueTrendThreshold
	}
	return &ForecastService{store: store, cache: cacheImpl, cfg: cfg, metrics: m, now: systemClock}
}

func (s *ForecastService) WithClock(now func() time.Time) *ForecastService {
	s.now = now
	return s
}

// Today is the default reference date for callers that omit one.
func (s *ForecastService) Today() domain.Date {
	return domain.DateOf(s.now())
}

// DefaultDays is the configured forecast horizon.
func (s *ForecastService) DefaultDays() int {
	return s.cfg.Days
}

// GenerateForecast projects per-item demand for [referenceDate,
// referenceDate+daysAhead) from weekday averages of the preceding history
// window, expands it to ingredients and replaces stored rows in that range.
func (s *ForecastService) GenerateForecast(ctx context.Context, daysAhead int, referenceDate domain.Date) (*domain.ForecastResult, error) {
	if daysAhead <= 0 || daysAhead > maxForecastDays {
		return nil, domain.InvalidQuantity("days_ahead", "days_ahead must be between 1 and %d", maxForecastDays)
	}
	if referenceDate.IsZero() {
		return nil, domain.NewValidationError("reference_date", "reference_date is required")
	}

	started := time.Now()
	end := referenceDate.AddDays(daysAhead - 1)
	result := &domain.ForecastResult{
		Status:         domain.StatusSuccess,
		ReferenceDate:  referenceDate,
		DaysForecasted: daysAhead,
	}

	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		items, err := tx.ListMenuItems(ctx, true)
		if err != nil {
			return err
		}
		history, err := tx.ListSalesBetween(ctx, referenceDate.AddDays(-s.cfg.HistoryDays), referenceDate.AddDays(-1))
		if err != nil {
			return err
		}
		bom, err := tx.ListBOM(ctx)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		itemRows := forecast.ProjectItems(forecast.WeekdayAverages(history), ids, referenceDate, daysAhead, s.now())
		ingredientRows := forecast.ExpandIngredients(itemRows, bom)

		if err := tx.ReplaceForecastItems(ctx, referenceDate, end, itemRows); err != nil {
			return fmt.Errorf("store item forecast: %w", err)
		}
		if err := tx.ReplaceForecastIngredients(ctx, referenceDate, end, ingredientRows); err != nil {
			return fmt.Errorf("store ingredient forecast: %w", err)
		}
		result.ItemForecasts = len(itemRows)
		result.IngredientForecasts = len(ingredientRows)
		return nil
	})
	if err != nil {
		s.metrics.OperationError("generate_forecast", err)
		return nil, err
	}

	s.metrics.ObserveForecast(time.Since(started))
	invalidateInventory(ctx, s.cache)
	log.Info().
		Str("reference_date", referenceDate.String()).
		Int("days", daysAhead).
		Int("item_rows", result.ItemForecasts).
		Int("ingredient_rows", result.IngredientForecasts).
		Msg("forecast: generated")
	return result, nil
}

// GetForecast reports ingredient need over [referenceDate, referenceDate+days)
// with a running total per ingredient and the shortfall against stock on hand.
// days <= 0 uses the configured window.
func (s *ForecastService) GetForecast(ctx context.Context, referenceDate domain.Date, days int) ([]domain.ForecastRow, error) {
	if days <= 0 {
		days = s.cfg.Days
	}
	if rows, ok, err := s.cache.GetForecast(ctx, referenceDate, days); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get failed")
	}

	rows := make([]domain.ForecastRow, 0)
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		stored, err := tx.ListForecastIngredients(ctx, referenceDate, referenceDate.AddDays(days-1))
		if err != nil {
			return err
		}
		if len(stored) == 0 {
			return nil
		}
		ingredients, err := ingredientIndex(ctx, tx)
		if err != nil {
			return err
		}
		onHand, err := balanceIndex(ctx, tx)
		if err != nil {
			return err
		}

		sort.SliceStable(stored, func(i, j int) bool {
			if !stored[i].ForecastDate.Equal(stored[j].ForecastDate) {
				return stored[i].ForecastDate.Before(stored[j].ForecastDate)
			}
			return ingredients[stored[i].IngredientID].Name < ingredients[stored[j].IngredientID].Name
		})

		cumulative := make(map[uuid.UUID]float64)
		for _, f := range stored {
			ing := ingredients[f.IngredientID]
			cumulative[f.IngredientID] += f.PredictedQty
			cum := cumulative[f.IngredientID]
			have := onHand[f.IngredientID]
			rows = append(rows, domain.ForecastRow{
				ForecastDate:     f.ForecastDate,
				IngredientID:     f.IngredientID,
				Name:             ing.Name,
				Unit:             ing.Unit,
				QtyNeeded:        f.PredictedQty,
				CumulativeNeeded: cum,
				QtyOnHand:        have,
				Shortfall:        math.Max(0, cum-have),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetForecast(ctx, referenceDate, days, rows); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}
	return rows, nil
}

// GetItemForecast returns stored per-item demand for the window.
func (s *ForecastService) GetItemForecast(ctx context.Context, referenceDate domain.Date, days int) ([]domain.ForecastItem, error) {
	if days <= 0 {
		days = s.cfg.Days
	}
	var rows []domain.ForecastItem
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		rows, err = tx.ListForecastItems(ctx, referenceDate, referenceDate.AddDays(days-1))
		return err
	})
	if rows == nil {
		rows = make([]domain.ForecastItem, 0)
	}
	return rows, err
}

// PredictRevenue fits a line through recent daily revenue and extends it
// daysAhead days past the last day with sales.
func (s *ForecastService) PredictRevenue(ctx context.Context, daysAhead int) (*domain.RevenueForecast, error) {
	if daysAhead <= 0 {
		daysAhead = defaultRevenueDays
	}
	if daysAhead > maxForecastDays {
		return nil, domain.InvalidQuantity("days_ahead", "days_ahead must be at most %d", maxForecastDays)
	}

	var history []domain.DailyRevenue
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		history, err = tx.ListDailyRevenue(ctx)
		return err
	})
	if err != nil {
		s.metrics.OperationError("predict_revenue", err)
		return nil, err
	}

	out := &domain.RevenueForecast{Predictions: make([]domain.RevenuePrediction, 0)}
	switch {
	case len(history) == 0:
		out.Status, out.Message = domain.StatusNoData, revenueNoDataMsg
		return out, nil
	case len(history) < s.cfg.RevenueMinDays:
		out.Status, out.Message = domain.StatusInsufficientData, revenueInsufficientMsg
		out.HistoricalDays = len(history)
		return out, nil
	}

	sort.Slice(history, func(i, j int) bool { return history[i].BusinessDate.Before(history[j].BusinessDate) })
	if len(history) > s.cfg.RevenueHistoryDays {
		history = history[len(history)-s.cfg.RevenueHistoryDays:]
	}
	ys := make([]float64, len(history))
	for i, d := range history {
		ys[i] = d.Revenue
	}
	line, err := forecast.FitLine(ys)
	if err != nil {
		return nil, err
	}

	last := history[len(history)-1].BusinessDate
	for i, v := range line.Project(len(ys), daysAhead) {
		out.Predictions = append(out.Predictions, domain.RevenuePrediction{
			Date:             last.AddDays(i + 1),
			PredictedRevenue: v,
		})
	}
	out.Status = domain.StatusSuccess
	out.HistoricalDays = len(ys)
	out.Slope = line.Slope
	out.Intercept = line.Intercept
	out.Trend = forecast.Trend(line.Slope, s.cfg.RevenueTrendThreshold)
	out.Summary = fmt.Sprintf("Forecast based on %d days of history. Revenue trend is %s (~$%d/day).",
		len(ys), out.Trend, int64(math.Abs(math.Round(line.Slope))))
	return out, nil
}

func ingredientIndex(ctx context.Context, tx repository.Tx) (map[uuid.UUID]domain.Ingredient, error) {
	ings, err := tx.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]domain.Ingredient, len(ings))
	for _, ing := range ings {
		index[ing.ID] = ing
	}
	return index, nil
}

func balanceIndex(ctx context.Context, tx repository.Tx) (map[uuid.UUID]float64, error) {
	balances, err := tx.ListBalances(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]float64, len(balances))
	for _, b := range balances {
		index[b.IngredientID] = b.QtyOnHand
	}
	return index, nil
}
