package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

const salesColumns = `business_date, menu_item_id, qty, order_qty, net_sales, source, updated_at`

// ReplaceSalesLine keeps order_qty: that part of the day was already consumed
// when the orders were registered.
func (r *txRepo) ReplaceSalesLine(ctx context.Context, line domain.SalesLineItem) error {
	query := `
		INSERT INTO sales_line_items (business_date, menu_item_id, qty, net_sales, source, updated_at)
		VALUES (:business_date, :menu_item_id, :qty, :net_sales, :source, NOW())
		ON CONFLICT (business_date, menu_item_id)
		DO UPDATE SET
			qty = EXCLUDED.qty,
			net_sales = EXCLUDED.net_sales,
			source = EXCLUDED.source,
			updated_at = NOW()
	`
	if _, err := r.tx.NamedExecContext(ctx, query, line); err != nil {
		return fmt.Errorf("failed to replace sales line: %w", err)
	}
	return nil
}

func (r *txRepo) AccumulateSalesLine(ctx context.Context, line domain.SalesLineItem) error {
	query := `
		INSERT INTO sales_line_items (business_date, menu_item_id, qty, order_qty, net_sales, source, updated_at)
		VALUES (:business_date, :menu_item_id, :qty, :order_qty, :net_sales, :source, NOW())
		ON CONFLICT (business_date, menu_item_id)
		DO UPDATE SET
			qty = sales_line_items.qty + EXCLUDED.qty,
			order_qty = sales_line_items.order_qty + EXCLUDED.order_qty,
			net_sales = sales_line_items.net_sales + EXCLUDED.net_sales,
			updated_at = NOW()
	`
	if _, err := r.tx.NamedExecContext(ctx, query, line); err != nil {
		return fmt.Errorf("failed to accumulate sales line: %w", err)
	}
	return nil
}

func (r *txRepo) ListSalesByDate(ctx context.Context, date domain.Date) ([]domain.SalesLineItem, error) {
	return r.ListSalesBetween(ctx, date, date)
}

func (r *txRepo) ListSalesBetween(ctx context.Context, from, to domain.Date) ([]domain.SalesLineItem, error) {
	query := `
		SELECT ` + salesColumns + `
		FROM sales_line_items
		WHERE business_date BETWEEN $1 AND $2
		ORDER BY business_date, menu_item_id
	`
	var out []domain.SalesLineItem
	if err := r.tx.SelectContext(ctx, &out, query, from, to); err != nil {
		return nil, fmt.Errorf("error listing sales: %w", err)
	}
	return out, nil
}

func (r *txRepo) ListSalesDates(ctx context.Context) ([]domain.Date, error) {
	var out []domain.Date
	if err := r.tx.SelectContext(ctx, &out,
		`SELECT DISTINCT business_date FROM sales_line_items ORDER BY business_date`); err != nil {
		return nil, fmt.Errorf("error listing sales dates: %w", err)
	}
	return out, nil
}

func (r *txRepo) ListDailyRevenue(ctx context.Context) ([]domain.DailyRevenue, error) {
	query := `
		SELECT business_date, SUM(net_sales) AS revenue
		FROM sales_line_items
		GROUP BY business_date
		ORDER BY business_date
	`
	var out []domain.DailyRevenue
	if err := r.tx.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("error listing daily revenue: %w", err)
	}
	return out, nil
}

func (r *txRepo) SalesStats(ctx context.Context) (domain.SalesStats, error) {
	var stats domain.SalesStats
	query := `
		SELECT COUNT(*) AS row_count, MIN(business_date) AS first_date, MAX(business_date) AS last_date
		FROM sales_line_items
	`
	if err := r.tx.GetContext(ctx, &stats, query); err != nil {
		return stats, fmt.Errorf("error reading sales stats: %w", err)
	}
	return stats, nil
}

func (r *txRepo) TopItems(ctx context.Context, from, to domain.Date, limit int) ([]domain.TopItem, error) {
	query := `
		SELECT s.menu_item_id, m.name, SUM(s.qty) AS qty, SUM(s.net_sales) AS net_sales
		FROM sales_line_items s
		JOIN menu_items m ON m.id = s.menu_item_id
		WHERE s.business_date BETWEEN $1 AND $2
		GROUP BY s.menu_item_id, m.name
		ORDER BY qty DESC, m.name
		LIMIT $3
	`
	var out []domain.TopItem
	if err := r.tx.SelectContext(ctx, &out, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("error listing top items: %w", err)
	}
	return out, nil
}
