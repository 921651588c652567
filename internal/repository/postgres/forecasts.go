package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

func (r *txRepo) ReplaceForecastItems(ctx context.Context, from, to domain.Date, rows []domain.ForecastItem) error {
	if _, err := r.tx.ExecContext(ctx,
		`DELETE FROM forecast_items WHERE forecast_date BETWEEN $1 AND $2`, from, to); err != nil {
		return fmt.Errorf("failed to clear item forecast: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	query := `
		INSERT INTO forecast_items (forecast_date, menu_item_id, predicted_qty, reference_date, generated_at)
		VALUES (:forecast_date, :menu_item_id, :predicted_qty, :reference_date, :generated_at)
	`
	for _, batch := range chunk(len(rows), 500) {
		if _, err := r.tx.NamedExecContext(ctx, query, rows[batch[0]:batch[1]]); err != nil {
			return classify(fmt.Errorf("failed to insert item forecast: %w", err))
		}
	}
	return nil
}

func (r *txRepo) ReplaceForecastIngredients(ctx context.Context, from, to domain.Date, rows []domain.ForecastIngredient) error {
	if _, err := r.tx.ExecContext(ctx,
		`DELETE FROM forecast_ingredients WHERE forecast_date BETWEEN $1 AND $2`, from, to); err != nil {
		return fmt.Errorf("failed to clear ingredient forecast: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	query := `
		INSERT INTO forecast_ingredients (forecast_date, ingredient_id, predicted_qty, reference_date, generated_at)
		VALUES (:forecast_date, :ingredient_id, :predicted_qty, :reference_date, :generated_at)
	`
	for _, batch := range chunk(len(rows), 500) {
		if _, err := r.tx.NamedExecContext(ctx, query, rows[batch[0]:batch[1]]); err != nil {
			return classify(fmt.Errorf("failed to insert ingredient forecast: %w", err))
		}
	}
	return nil
}

func (r *txRepo) ListForecastItems(ctx context.Context, from, to domain.Date) ([]domain.ForecastItem, error) {
	query := `
		SELECT forecast_date, menu_item_id, predicted_qty, reference_date, generated_at
		FROM forecast_items
		WHERE forecast_date BETWEEN $1 AND $2
		ORDER BY forecast_date, menu_item_id
	`
	var out []domain.ForecastItem
	if err := r.tx.SelectContext(ctx, &out, query, from, to); err != nil {
		return nil, fmt.Errorf("error listing item forecast: %w", err)
	}
	return out, nil
}

func (r *txRepo) ListForecastIngredients(ctx context.Context, from, to domain.Date) ([]domain.ForecastIngredient, error) {
	query := `
		SELECT forecast_date, ingredient_id, predicted_qty, reference_date, generated_at
		FROM forecast_ingredients
		WHERE forecast_date BETWEEN $1 AND $2
		ORDER BY forecast_date, ingredient_id
	`
	var out []domain.ForecastIngredient
	if err := r.tx.SelectContext(ctx, &out, query, from, to); err != nil {
		return nil, fmt.Errorf("error listing ingredient forecast: %w", err)
	}
	return out, nil
}

// chunk splits n rows into [start, end) ranges of at most size rows.
func chunk(n, size int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

func (r *txRepo) GetConfig(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.tx.GetContext(ctx, &value, `SELECT value FROM app_config WHERE key = $1`, key)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", key, err)
	}
	return value, nil
}

func (r *txRepo) SetConfig(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO app_config (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.tx.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to write config %s: %w", key, err)
	}
	return nil
}
