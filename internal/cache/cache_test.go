package cache

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCachesAreNoop(t *testing.T) {
	ctx := context.Background()

	inv, err := NewInventoryCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, inv.SetSnapshot(ctx, []domain.SnapshotRow{{Name: "Flour"}}))
	rows, ok, err := inv.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rows)

	analytics, err := NewAnalyticsCache(config.CacheConfig{})
	require.NoError(t, err)
	_, ok, err = analytics.GetDaily(ctx, domain.NewDate(2024, time.June, 1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	day := domain.NewDate(2024, time.June, 15)
	assert.Equal(t, "inventory:forecast:2024-06-15:7", forecastKey(day, 7))
	assert.Equal(t, "analytics:daily:2024-06-15", analyticsKey(day))
	assert.Contains(t, snapshotKey, inventoryKeyPrefix)
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisPassword: "secret", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://cache:6380/1"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 1, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}
