package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	inventoryKeyPrefix = "inventory:"
	snapshotKey        = inventoryKeyPrefix + "snapshot"
	forecastKeyPrefix  = inventoryKeyPrefix + "forecast:"
)

// InventoryCache holds reads derived from ledger balances. Any ledger write
// invalidates the whole prefix.
type InventoryCache interface {
	GetSnapshot(ctx context.Context) ([]domain.SnapshotRow, bool, error)
	SetSnapshot(ctx context.Context, rows []domain.SnapshotRow) error
	GetForecast(ctx context.Context, referenceDate domain.Date, days int) ([]domain.ForecastRow, bool, error)
	SetForecast(ctx context.Context, referenceDate domain.Date, days int, rows []domain.ForecastRow) error
	InvalidateAll(ctx context.Context) error
}

type redisInventoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopInventoryCache struct{}

func NewInventoryCache(cfg config.CacheConfig) (InventoryCache, error) {
	if !cfg.Enabled {
		return &noopInventoryCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisInventoryCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopInventoryCache() InventoryCache {
	return &noopInventoryCache{}
}

func (c *redisInventoryCache) GetSnapshot(ctx context.Context) ([]domain.SnapshotRow, bool, error) {
	var rows []domain.SnapshotRow
	ok, err := getJSON(ctx, c.client, snapshotKey, &rows)
	return rows, ok, err
}

func (c *redisInventoryCache) SetSnapshot(ctx context.Context, rows []domain.SnapshotRow) error {
	return setJSON(ctx, c.client, snapshotKey, rows, c.ttl)
}

func (c *redisInventoryCache) GetForecast(ctx context.Context, referenceDate domain.Date, days int) ([]domain.ForecastRow, bool, error) {
	var rows []domain.ForecastRow
	ok, err := getJSON(ctx, c.client, forecastKey(referenceDate, days), &rows)
	return rows, ok, err
}

func (c *redisInventoryCache) SetForecast(ctx context.Context, referenceDate domain.Date, days int, rows []domain.ForecastRow) error {
	return setJSON(ctx, c.client, forecastKey(referenceDate, days), rows, c.ttl)
}

func (c *redisInventoryCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, inventoryKeyPrefix, scanBatchSize)
}

func (n *noopInventoryCache) GetSnapshot(ctx context.Context) ([]domain.SnapshotRow, bool, error) {
	return nil, false, nil
}

func (n *noopInventoryCache) SetSnapshot(ctx context.Context, rows []domain.SnapshotRow) error {
	return nil
}

func (n *noopInventoryCache) GetForecast(ctx context.Context, referenceDate domain.Date, days int) ([]domain.ForecastRow, bool, error) {
	return nil, false, nil
}

func (n *noopInventoryCache) SetForecast(ctx context.Context, referenceDate domain.Date, days int, rows []domain.ForecastRow) error {
	return nil
}

func (n *noopInventoryCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func forecastKey(referenceDate domain.Date, days int) string {
	return fmt.Sprintf("%s%s:%d", forecastKeyPrefix, referenceDate, days)
}
