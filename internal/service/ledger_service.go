package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/kitchenops/internal/cache"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/metrics"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type LedgerService struct {
	store   repository.Store
	cache   cache.InventoryCache
	metrics *metrics.Metrics
}

func NewLedgerService(store repository.Store, cacheImpl cache.InventoryCache, m *metrics.Metrics) *LedgerService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopInventoryCache()
	}
	return &LedgerService{store: store, cache: cacheImpl, metrics: m}
}

// Receive records stock arriving for an ingredient.
func (s *LedgerService) Receive(ctx context.Context, ingredientID uuid.UUID, qty float64, note string) (*domain.ReceiveResult, error) {
	if !domain.PositiveQty(qty) {
		return nil, domain.InvalidQuantity("qty", "receive quantity must be at least 0.0001")
	}

	result := &domain.ReceiveResult{Status: domain.StatusSuccess, IngredientID: ingredientID}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetIngredient(ctx, ingredientID); err != nil {
			return err
		}
		current, err := lockedBalance(ctx, tx, ingredientID)
		if err != nil {
			return err
		}
		txn := &domain.InventoryTxn{
			IngredientID: ingredientID,
			Type:         domain.TxnReceive,
			QtyDelta:     qty,
			Source:       domain.SourceManual,
			Note:         note,
		}
		result.NewBalance = current + qty
		return writeLedger(ctx, tx, txn, result.NewBalance)
	})
	if err != nil {
		s.metrics.OperationError("receive", err)
		return nil, err
	}

	s.metrics.LedgerTxn(domain.TxnReceive, 1)
	invalidateInventory(ctx, s.cache)
	return result, nil
}

// Count sets the on-hand quantity to a physical count, recording the
// difference as a COUNT entry even when it is zero.
func (s *LedgerService) Count(ctx context.Context, ingredientID uuid.UUID, actualQty float64, note string) (*domain.CountResult, error) {
	if !(actualQty >= 0) || math.IsInf(actualQty, 0) {
		return nil, domain.InvalidQuantity("actual_qty", "counted quantity must not be negative")
	}

	result := &domain.CountResult{Status: domain.StatusSuccess, IngredientID: ingredientID, NewBalance: actualQty}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetIngredient(ctx, ingredientID); err != nil {
			return err
		}
		current, err := lockedBalance(ctx, tx, ingredientID)
		if err != nil {
			return err
		}
		result.Delta = actualQty - current
		txn := &domain.InventoryTxn{
			IngredientID: ingredientID,
			Type:         domain.TxnCount,
			QtyDelta:     result.Delta,
			Source:       domain.SourceManual,
			Note:         note,
		}
		return writeLedger(ctx, tx, txn, actualQty)
	})
	if err != nil {
		s.metrics.OperationError("count", err)
		return nil, err
	}

	s.metrics.LedgerTxn(domain.TxnCount, 1)
	invalidateInventory(ctx, s.cache)
	return result, nil
}

// GetBalance returns nil when the ingredient has never had a ledger entry.
func (s *LedgerService) GetBalance(ctx context.Context, ingredientID uuid.UUID) (*domain.InventoryBalance, error) {
	var balance *domain.InventoryBalance
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetIngredient(ctx, ingredientID); err != nil {
			return err
		}
		var err error
		balance, err = tx.GetBalance(ctx, ingredientID)
		return err
	})
	return balance, err
}

func (s *LedgerService) ListTransactions(ctx context.Context, ingredientID uuid.UUID, txnType *domain.TxnType) ([]domain.InventoryTxn, error) {
	var txns []domain.InventoryTxn
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetIngredient(ctx, ingredientID); err != nil {
			return err
		}
		var err error
		txns, err = tx.ListTxns(ctx, ingredientID, txnType)
		return err
	})
	if txns == nil {
		txns = make([]domain.InventoryTxn, 0)
	}
	return txns, err
}

// lockedBalance reads the on-hand quantity under a row lock. An ingredient
// without a balance row counts as zero.
func lockedBalance(ctx context.Context, tx repository.Tx, ingredientID uuid.UUID) (float64, error) {
	balance, err := tx.LockBalance(ctx, ingredientID)
	if err != nil {
		return 0, fmt.Errorf("lock balance %s: %w", ingredientID, err)
	}
	if balance == nil {
		return 0, nil
	}
	return balance.QtyOnHand, nil
}

// writeLedger appends txn and moves the balance to next in the same unit of work.
func writeLedger(ctx context.Context, tx repository.Tx, txn *domain.InventoryTxn, next float64) error {
	if err := tx.InsertTxn(ctx, txn); err != nil {
		return fmt.Errorf("insert %s txn: %w", txn.Type, err)
	}
	if err := tx.SaveBalance(ctx, domain.InventoryBalance{IngredientID: txn.IngredientID, QtyOnHand: next}); err != nil {
		return fmt.Errorf("save balance %s: %w", txn.IngredientID, err)
	}
	return nil
}

// consumeAll posts one CONSUME entry per ingredient. Balances are locked in
// ascending id order so concurrent writers never wait on each other in a cycle.
func consumeAll(ctx context.Context, tx repository.Tx, usage map[uuid.UUID]float64, template domain.InventoryTxn) (int, error) {
	ids := make([]uuid.UUID, 0, len(usage))
	for id, qty := range usage {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		current, err := lockedBalance(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		txn := template
		txn.IngredientID = id
		txn.Type = domain.TxnConsume
		txn.QtyDelta = -usage[id]
		if err := writeLedger(ctx, tx, &txn, current-usage[id]); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func invalidateInventory(ctx context.Context, c cache.InventoryCache) {
	if err := c.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("inventory: cache invalidate failed")
	}
}

func systemClock() time.Time {
	return time.Now()
}
