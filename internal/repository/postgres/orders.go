package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `order_id, business_date, opened_at, closed_at, num_guests, server_name, dining_area,
	service_period, dining_option, order_source, discount_amount, subtotal, tax, tip, gratuity, total,
	voided, created_at, updated_at`

// UpsertOrder relies on the order_id primary key, so two concurrent
// registrations of one order cannot both observe an insert.
func (r *txRepo) UpsertOrder(ctx context.Context, order *domain.DailyOrder) (bool, error) {
	query := `
		INSERT INTO daily_orders (
			order_id, business_date, opened_at, closed_at, num_guests, server_name, dining_area,
			service_period, dining_option, order_source, discount_amount, subtotal, tax, tip,
			gratuity, total, voided
		) VALUES (
			:order_id, :business_date, :opened_at, :closed_at, :num_guests, :server_name, :dining_area,
			:service_period, :dining_option, :order_source, :discount_amount, :subtotal, :tax, :tip,
			:gratuity, :total, :voided
		)
		ON CONFLICT (order_id) DO UPDATE SET
			business_date = EXCLUDED.business_date,
			opened_at = EXCLUDED.opened_at,
			closed_at = EXCLUDED.closed_at,
			num_guests = EXCLUDED.num_guests,
			server_name = EXCLUDED.server_name,
			dining_area = EXCLUDED.dining_area,
			service_period = EXCLUDED.service_period,
			dining_option = EXCLUDED.dining_option,
			order_source = EXCLUDED.order_source,
			discount_amount = EXCLUDED.discount_amount,
			subtotal = EXCLUDED.subtotal,
			tax = EXCLUDED.tax,
			tip = EXCLUDED.tip,
			gratuity = EXCLUDED.gratuity,
			total = EXCLUDED.total,
			voided = EXCLUDED.voided,
			updated_at = NOW()
		RETURNING created_at, updated_at, (xmax = 0) AS inserted
	`
	rows, err := sqlx.NamedQueryContext(ctx, r.tx, query, order)
	if err != nil {
		return false, classify(fmt.Errorf("failed to upsert order: %w", err))
	}
	defer rows.Close()

	var inserted bool
	if rows.Next() {
		if err := rows.Scan(&order.CreatedAt, &order.UpdatedAt, &inserted); err != nil {
			return false, fmt.Errorf("failed to scan upserted order: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return false, classify(fmt.Errorf("failed to upsert order: %w", err))
	}
	return inserted, nil
}

func (r *txRepo) FindOrder(ctx context.Context, orderID string) (*domain.DailyOrder, error) {
	var order domain.DailyOrder
	err := r.tx.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM daily_orders WHERE order_id = $1`, orderID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding order: %w", err)
	}
	return &order, nil
}

func (r *txRepo) ListOrdersBetween(ctx context.Context, from, to domain.Date) ([]domain.DailyOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM daily_orders
		WHERE business_date BETWEEN $1 AND $2
		ORDER BY business_date, order_id
	`
	var out []domain.DailyOrder
	if err := r.tx.SelectContext(ctx, &out, query, from, to); err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	return out, nil
}

func (r *txRepo) LatestOrderDate(ctx context.Context) (*domain.Date, error) {
	var latest *domain.Date
	if err := r.tx.GetContext(ctx, &latest, `SELECT MAX(business_date) FROM daily_orders`); err != nil {
		return nil, fmt.Errorf("error reading latest order date: %w", err)
	}
	return latest, nil
}
