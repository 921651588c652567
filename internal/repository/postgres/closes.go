package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

func (r *txRepo) GetDailyClose(ctx context.Context, date domain.Date) (*domain.DailyClose, error) {
	var c domain.DailyClose
	err := r.tx.GetContext(ctx, &c,
		`SELECT business_date, closed_at, consume_txns FROM daily_closes WHERE business_date = $1`, date)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading daily close: %w", err)
	}
	return &c, nil
}

// InsertDailyClose claims the date. A concurrent closer blocks on the primary
// key until this transaction ends and then fails with a unique violation.
func (r *txRepo) InsertDailyClose(ctx context.Context, close domain.DailyClose) error {
	if _, err := r.tx.ExecContext(ctx,
		`INSERT INTO daily_closes (business_date, consume_txns) VALUES ($1, $2)`,
		close.BusinessDate, close.ConsumeTxns); err != nil {
		return classify(fmt.Errorf("failed to mark %s closed: %w", close.BusinessDate, err))
	}
	return nil
}

func (r *txRepo) DeleteDailyClose(ctx context.Context, date domain.Date) (bool, error) {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM daily_closes WHERE business_date = $1`, date)
	if err != nil {
		return false, fmt.Errorf("failed to reopen %s: %w", date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *txRepo) ListClosedDates(ctx context.Context) ([]domain.Date, error) {
	var out []domain.Date
	if err := r.tx.SelectContext(ctx, &out, `SELECT business_date FROM daily_closes ORDER BY business_date`); err != nil {
		return nil, fmt.Errorf("error listing closed dates: %w", err)
	}
	return out, nil
}
