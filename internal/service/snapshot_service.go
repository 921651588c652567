package service

import (
	"context"
	"sort"

	"github.com/andresuchdata/kitchenops/internal/cache"
	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/inventory"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SnapshotService reports on-hand stock with usage-derived supply status.
type SnapshotService struct {
	store      repository.Store
	cache      cache.InventoryCache
	calculator *inventory.Calculator
}

func NewSnapshotService(store repository.Store, cacheImpl cache.InventoryCache, calculator *inventory.Calculator) *SnapshotService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopInventoryCache()
	}
	if calculator == nil {
		calculator = inventory.NewCalculator(inventory.PolicyFromConfig(config.Defaults().Inventory))
	}
	return &SnapshotService{store: store, cache: cacheImpl, calculator: calculator}
}

// GetInventorySnapshot returns one row per ingredient ordered by name.
func (s *SnapshotService) GetInventorySnapshot(ctx context.Context) ([]domain.SnapshotRow, error) {
	if rows, ok, err := s.cache.GetSnapshot(ctx); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("snapshot: cache get failed")
	}

	rows := make([]domain.SnapshotRow, 0)
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		ingredients, err := tx.ListIngredients(ctx)
		if err != nil {
			return err
		}
		onHand, err := balanceIndex(ctx, tx)
		if err != nil {
			return err
		}
		daily, err := tx.ListDailyUsage(ctx)
		if err != nil {
			return err
		}
		usage := make(map[uuid.UUID][]domain.DailyUsage)
		for _, u := range daily {
			usage[u.IngredientID] = append(usage[u.IngredientID], u)
		}

		for _, ing := range ingredients {
			history := usage[ing.ID]
			sort.Slice(history, func(i, j int) bool { return history[i].BusinessDate.Before(history[j].BusinessDate) })
			m := s.calculator.Calculate(onHand[ing.ID], ing.ReorderPoint, ing.LeadTimeDays, history)
			rows = append(rows, domain.SnapshotRow{
				IngredientID:  ing.ID,
				Name:          ing.Name,
				Unit:          ing.Unit,
				QtyOnHand:     onHand[ing.ID],
				ReorderPoint:  ing.ReorderPoint,
				LeadTimeDays:  ing.LeadTimeDays,
				AvgDailyUsage: m.AvgDailyUsage,
				DaysOfSupply:  m.DaysOfSupply,
				Status:        m.Status,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	if err := s.cache.SetSnapshot(ctx, rows); err != nil {
		log.Warn().Err(err).Msg("snapshot: cache set failed")
	}
	return rows, nil
}
