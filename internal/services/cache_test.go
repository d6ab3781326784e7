package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/optimizer"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

func TestOptimizationCacheKey(t *testing.T) {
	pool := []models.Player{{ID: "1", Position: models.PositionQB, Salary: 8000, Projection: 20}}
	settings := models.DefaultSettings()

	k1, err := OptimizationCacheKey(pool, settings)
	require.NoError(t, err)
	k2, err := OptimizationCacheKey(pool, settings)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Contains(t, k1, "optimization:")

	settings.MinUniquePlayers = 4
	k3, err := OptimizationCacheKey(pool, settings)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	pool[0].IsLocked = true
	k4, err := OptimizationCacheKey(pool, models.DefaultSettings())
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)
}

func TestResultCache_Disabled(t *testing.T) {
	log, _ := test.NewNullLogger()
	cache := NewResultCache(nil, time.Minute, time.Second, log)

	assert.False(t, cache.Enabled())
	assert.False(t, cache.Cacheable(models.Settings{Randomness: 0}))

	_, err := cache.Get(context.Background(), "optimization:x")
	assert.ErrorIs(t, err, utils.ErrCacheMiss)
	assert.NoError(t, cache.Set(context.Background(), "optimization:x", &optimizer.Result{}))
}

func TestResultCache_BreakerOpensWhenRedisIsDown(t *testing.T) {
	log, _ := test.NewNullLogger()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	cache := NewResultCache(client, time.Minute, time.Minute, log)
	seed := int64(1)
	assert.True(t, cache.Cacheable(models.Settings{Randomness: 10, Seed: &seed}))
	assert.False(t, cache.Cacheable(models.Settings{Randomness: 10}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := cache.Get(ctx, "optimization:down")
		require.Error(t, err)
		assert.False(t, errors.Is(err, utils.ErrCacheMiss))
	}

	assert.Equal(t, gobreaker.StateOpen, cache.State())
	_, err := cache.Get(ctx, "optimization:down")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
