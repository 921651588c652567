package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/rs/zerolog/log"
)

const onboardingConfigKey = "onboarding"

// OnboardingService tracks the first-run import of sales history.
type OnboardingService struct {
	store repository.Store
	now   func() time.Time
}

func NewOnboardingService(store repository.Store) *OnboardingService {
	return &OnboardingService{store: store, now: systemClock}
}

func (s *OnboardingService) WithClock(now func() time.Time) *OnboardingService {
	s.now = now
	return s
}

func (s *OnboardingService) GetStatus(ctx context.Context) (*domain.OnboardingState, error) {
	var state domain.OnboardingState
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		state, err = loadOnboarding(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// CompleteIngest records the span of imported sales history.
func (s *OnboardingService) CompleteIngest(ctx context.Context) (*domain.OnboardingState, error) {
	var state domain.OnboardingState
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		if state, err = loadOnboarding(ctx, tx); err != nil {
			return err
		}
		stats, err := tx.SalesStats(ctx)
		if err != nil {
			return err
		}
		state.HistoryUploaded = true
		state.HistoryRowsIngested = stats.Rows
		state.HistoryStartDate = stats.First
		state.HistoryEndDate = stats.Last
		settleOnboarding(&state, s.now())
		return saveOnboarding(ctx, tx, state)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int("rows", state.HistoryRowsIngested).Bool("setup_complete", state.SetupComplete).Msg("onboarding: history ingest recorded")
	return &state, nil
}

func markBulkCloseComplete(ctx context.Context, tx repository.Tx, now time.Time) error {
	state, err := loadOnboarding(ctx, tx)
	if err != nil {
		return err
	}
	state.BulkCloseComplete = true
	settleOnboarding(&state, now)
	return saveOnboarding(ctx, tx, state)
}

func settleOnboarding(state *domain.OnboardingState, now time.Time) {
	if state.SetupComplete || !state.HistoryUploaded || !state.BulkCloseComplete {
		return
	}
	state.SetupComplete = true
	state.CompletedAt = &now
}

func loadOnboarding(ctx context.Context, tx repository.Tx) (domain.OnboardingState, error) {
	var state domain.OnboardingState
	raw, err := tx.GetConfig(ctx, onboardingConfigKey)
	if err != nil || raw == nil {
		return state, err
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("decode onboarding state: %w", err)
	}
	return state, nil
}

func saveOnboarding(ctx context.Context, tx repository.Tx, state domain.OnboardingState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode onboarding state: %w", err)
	}
	return tx.SetConfig(ctx, onboardingConfigKey, raw)
}
