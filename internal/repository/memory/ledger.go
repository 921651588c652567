package memory

import (
	"context"
	"sort"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/google/uuid"
)

func (t *tx) GetBalance(_ context.Context, ingredientID uuid.UUID) (*domain.InventoryBalance, error) {
	bal, ok := t.state.balances[ingredientID]
	if !ok {
		return nil, nil
	}
	return &bal, nil
}

// LockBalance is a plain read: the store mutex already serializes writers.
func (t *tx) LockBalance(ctx context.Context, ingredientID uuid.UUID) (*domain.InventoryBalance, error) {
	return t.GetBalance(ctx, ingredientID)
}

func (t *tx) SaveBalance(_ context.Context, balance domain.InventoryBalance) error {
	if _, ok := t.state.ingredients[balance.IngredientID]; !ok {
		return domain.NewNotFound("ingredient", balance.IngredientID)
	}
	balance.UpdatedAt = t.now()
	t.state.balances[balance.IngredientID] = balance
	return nil
}

func (t *tx) ListBalances(_ context.Context) ([]domain.InventoryBalance, error) {
	out := make([]domain.InventoryBalance, 0, len(t.state.balances))
	for _, bal := range t.state.balances {
		out = append(out, bal)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID.String() < out[j].IngredientID.String() })
	return out, nil
}

func (t *tx) InsertTxn(_ context.Context, txn *domain.InventoryTxn) error {
	if txn.Type == domain.TxnConsume && txn.Source == domain.SourceClose {
		for _, existing := range t.state.txns {
			if existing.Type == domain.TxnConsume && existing.Source == domain.SourceClose &&
				existing.IngredientID == txn.IngredientID && existing.BusinessDate.Equal(*txn.BusinessDate) {
				return integrity("close consumption for %s on %s already recorded", txn.IngredientID, txn.BusinessDate)
			}
		}
	}
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = t.now()
	t.state.txns = append(t.state.txns, *txn)
	return nil
}

func (t *tx) ListTxns(_ context.Context, ingredientID uuid.UUID, txnType *domain.TxnType) ([]domain.InventoryTxn, error) {
	var out []domain.InventoryTxn
	for _, txn := range t.state.txns {
		if txn.IngredientID != ingredientID {
			continue
		}
		if txnType != nil && txn.Type != *txnType {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func (t *tx) ListCloseTxns(_ context.Context, date domain.Date) ([]domain.InventoryTxn, error) {
	var out []domain.InventoryTxn
	for _, txn := range t.state.txns {
		if txn.Type == domain.TxnConsume && txn.Source == domain.SourceClose &&
			txn.BusinessDate != nil && txn.BusinessDate.Equal(date) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (t *tx) DeleteTxns(_ context.Context, ids []uuid.UUID) error {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := t.state.txns[:0]
	for _, txn := range t.state.txns {
		if _, ok := drop[txn.ID]; ok {
			continue
		}
		kept = append(kept, txn)
	}
	t.state.txns = kept
	return nil
}

func (t *tx) ListDailyUsage(_ context.Context) ([]domain.DailyUsage, error) {
	type key struct {
		id   uuid.UUID
		date domain.Date
	}
	totals := make(map[key]float64)
	for _, txn := range t.state.txns {
		if txn.Type != domain.TxnConsume || txn.BusinessDate == nil {
			continue
		}
		totals[key{txn.IngredientID, *txn.BusinessDate}] += -txn.QtyDelta
	}

	out := make([]domain.DailyUsage, 0, len(totals))
	for k, qty := range totals {
		out = append(out, domain.DailyUsage{IngredientID: k.id, BusinessDate: k.date, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IngredientID != out[j].IngredientID {
			return out[i].IngredientID.String() < out[j].IngredientID.String()
		}
		return out[i].BusinessDate.Before(out[j].BusinessDate)
	})
	return out, nil
}
