// Package memory is an in-process repository.Store. A transaction works on a
// copy of the state and swaps it in on commit, so a failed callback leaves
// nothing behind.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/google/uuid"
)

type bomKey struct {
	menuItemID   uuid.UUID
	ingredientID uuid.UUID
}

type salesKey struct {
	date       domain.Date
	menuItemID uuid.UUID
}

type forecastKey struct {
	date domain.Date
	id   uuid.UUID
}

type state struct {
	menuItems           map[uuid.UUID]domain.MenuItem
	ingredients         map[uuid.UUID]domain.Ingredient
	bom                 map[bomKey]domain.BOMEntry
	balances            map[uuid.UUID]domain.InventoryBalance
	txns                []domain.InventoryTxn
	sales               map[salesKey]domain.SalesLineItem
	orders              map[string]domain.DailyOrder
	closes              map[domain.Date]domain.DailyClose
	forecastItems       map[forecastKey]domain.ForecastItem
	forecastIngredients map[forecastKey]domain.ForecastIngredient
	config              map[string][]byte
}

func newState() *state {
	return &state{
		menuItems:           make(map[uuid.UUID]domain.MenuItem),
		ingredients:         make(map[uuid.UUID]domain.Ingredient),
		bom:                 make(map[bomKey]domain.BOMEntry),
		balances:            make(map[uuid.UUID]domain.InventoryBalance),
		sales:               make(map[salesKey]domain.SalesLineItem),
		orders:              make(map[string]domain.DailyOrder),
		closes:              make(map[domain.Date]domain.DailyClose),
		forecastItems:       make(map[forecastKey]domain.ForecastItem),
		forecastIngredients: make(map[forecastKey]domain.ForecastIngredient),
		config:              make(map[string][]byte),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.menuItems {
		c.menuItems[k] = v
	}
	for k, v := range s.ingredients {
		c.ingredients[k] = v
	}
	for k, v := range s.bom {
		c.bom[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	c.txns = append(make([]domain.InventoryTxn, 0, len(s.txns)), s.txns...)
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.closes {
		c.closes[k] = v
	}
	for k, v := range s.forecastItems {
		c.forecastItems[k] = v
	}
	for k, v := range s.forecastIngredients {
		c.forecastIngredients[k] = v
	}
	for k, v := range s.config {
		c.config[k] = append([]byte(nil), v...)
	}
	return c
}

// Store serializes transactions behind a single mutex.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

// WithClock overrides the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{state: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Close() error {
	return nil
}

type tx struct {
	state *state
	now   func() time.Time
}

var _ repository.Tx = (*tx)(nil)

func integrity(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrIntegrity, fmt.Sprintf(format, args...))
}

func inRange(d, from, to domain.Date) bool {
	return !d.Before(from) && !d.After(to)
}
