package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/redis/go-redis/v9"
)

const analyticsKeyPrefix = "analytics:daily:"

type AnalyticsCache interface {
	GetDaily(ctx context.Context, date domain.Date) (*domain.DailyAnalytics, bool, error)
	SetDaily(ctx context.Context, date domain.Date, analytics *domain.DailyAnalytics) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalyticsCache{client: client, ttl: ttl}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetDaily(ctx context.Context, date domain.Date) (*domain.DailyAnalytics, bool, error) {
	var analytics domain.DailyAnalytics
	ok, err := getJSON(ctx, c.client, analyticsKey(date), &analytics)
	if !ok || err != nil {
		return nil, false, err
	}
	return &analytics, true, nil
}

func (c *redisAnalyticsCache) SetDaily(ctx context.Context, date domain.Date, analytics *domain.DailyAnalytics) error {
	return setJSON(ctx, c.client, analyticsKey(date), analytics, c.ttl)
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix, scanBatchSize)
}

func (n *noopAnalyticsCache) GetDaily(ctx context.Context, date domain.Date) (*domain.DailyAnalytics, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetDaily(ctx context.Context, date domain.Date, analytics *domain.DailyAnalytics) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func analyticsKey(date domain.Date) string {
	return fmt.Sprintf("%s%s", analyticsKeyPrefix, date)
}
