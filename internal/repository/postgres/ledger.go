package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const txnColumns = `id, ingredient_id, txn_type, qty_delta, business_date, source, order_id, note, created_at`

func (r *txRepo) GetBalance(ctx context.Context, ingredientID uuid.UUID) (*domain.InventoryBalance, error) {
	return r.balance(ctx, ingredientID, "")
}

func (r *txRepo) LockBalance(ctx context.Context, ingredientID uuid.UUID) (*domain.InventoryBalance, error) {
	return r.balance(ctx, ingredientID, " FOR UPDATE")
}

func (r *txRepo) balance(ctx context.Context, ingredientID uuid.UUID, suffix string) (*domain.InventoryBalance, error) {
	var bal domain.InventoryBalance
	err := r.tx.GetContext(ctx, &bal,
		`SELECT ingredient_id, qty_on_hand, updated_at FROM inventory_on_hand WHERE ingredient_id = $1`+suffix,
		ingredientID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("error reading balance: %w", err))
	}
	return &bal, nil
}

func (r *txRepo) SaveBalance(ctx context.Context, balance domain.InventoryBalance) error {
	query := `
		INSERT INTO inventory_on_hand (ingredient_id, qty_on_hand, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (ingredient_id)
		DO UPDATE SET qty_on_hand = EXCLUDED.qty_on_hand, updated_at = NOW()
	`
	if _, err := r.tx.ExecContext(ctx, query, balance.IngredientID, balance.QtyOnHand); err != nil {
		return classify(fmt.Errorf("failed to save balance: %w", err))
	}
	return nil
}

func (r *txRepo) ListBalances(ctx context.Context) ([]domain.InventoryBalance, error) {
	var out []domain.InventoryBalance
	if err := r.tx.SelectContext(ctx, &out,
		`SELECT ingredient_id, qty_on_hand, updated_at FROM inventory_on_hand ORDER BY ingredient_id`); err != nil {
		return nil, fmt.Errorf("error listing balances: %w", err)
	}
	return out, nil
}

func (r *txRepo) InsertTxn(ctx context.Context, txn *domain.InventoryTxn) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	query := `
		INSERT INTO inventory_txns (id, ingredient_id, txn_type, qty_delta, business_date, source, order_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	if err := r.tx.QueryRowxContext(ctx, query,
		txn.ID, txn.IngredientID, txn.Type, txn.QtyDelta, txn.BusinessDate, txn.Source, txn.OrderID, txn.Note,
	).Scan(&txn.CreatedAt); err != nil {
		return classify(fmt.Errorf("failed to insert inventory txn: %w", err))
	}
	return nil
}

func (r *txRepo) ListTxns(ctx context.Context, ingredientID uuid.UUID, txnType *domain.TxnType) ([]domain.InventoryTxn, error) {
	var typeFilter *string
	if txnType != nil {
		s := string(*txnType)
		typeFilter = &s
	}
	query := `
		SELECT ` + txnColumns + `
		FROM inventory_txns
		WHERE ingredient_id = $1 AND ($2::text IS NULL OR txn_type = $2)
		ORDER BY seq
	`
	var out []domain.InventoryTxn
	if err := r.tx.SelectContext(ctx, &out, query, ingredientID, typeFilter); err != nil {
		return nil, fmt.Errorf("error listing inventory txns: %w", err)
	}
	return out, nil
}

func (r *txRepo) ListCloseTxns(ctx context.Context, date domain.Date) ([]domain.InventoryTxn, error) {
	query := `
		SELECT ` + txnColumns + `
		FROM inventory_txns
		WHERE txn_type = 'CONSUME' AND source = 'close' AND business_date = $1
		ORDER BY ingredient_id
	`
	var out []domain.InventoryTxn
	if err := r.tx.SelectContext(ctx, &out, query, date); err != nil {
		return nil, fmt.Errorf("error listing close txns: %w", err)
	}
	return out, nil
}

func (r *txRepo) DeleteTxns(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	if _, err := r.tx.ExecContext(ctx,
		`DELETE FROM inventory_txns WHERE id = ANY($1::uuid[])`, pq.StringArray(keys)); err != nil {
		return fmt.Errorf("failed to delete inventory txns: %w", err)
	}
	return nil
}

func (r *txRepo) ListDailyUsage(ctx context.Context) ([]domain.DailyUsage, error) {
	query := `
		SELECT ingredient_id, business_date, SUM(-qty_delta) AS qty
		FROM inventory_txns
		WHERE txn_type = 'CONSUME' AND business_date IS NOT NULL
		GROUP BY ingredient_id, business_date
		ORDER BY ingredient_id, business_date
	`
	var out []domain.DailyUsage
	if err := r.tx.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("error listing daily usage: %w", err)
	}
	return out, nil
}
