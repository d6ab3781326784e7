package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/optimizer"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

// ResultCache stores finished batches in Redis behind a circuit breaker. Only
// reproducible runs are cached; a nil client disables the cache entirely.
type ResultCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	logger  *logrus.Logger
}

func NewResultCache(client *redis.Client, ttl time.Duration, timeout time.Duration, logger *logrus.Logger) *ResultCache {
	settings := gobreaker.Settings{
		Name:        "result-cache",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &ResultCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		ttl:     ttl,
		logger:  logger,
	}
}

func (c *ResultCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Cacheable reports whether a batch with these settings may be served from cache.
func (c *ResultCache) Cacheable(settings models.Settings) bool {
	return c.Enabled() && settings.IsDeterministic()
}

func (c *ResultCache) State() gobreaker.State {
	return c.breaker.State()
}

// Get loads a cached result. A missing key returns utils.ErrCacheMiss.
func (c *ResultCache) Get(ctx context.Context, key string) (*optimizer.Result, error) {
	if !c.Enabled() {
		return nil, utils.ErrCacheMiss
	}

	data, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, utils.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var result optimizer.Result
	if err := json.Unmarshal(data.([]byte), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return &result, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, result *optimizer.Result) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// OptimizationCacheKey hashes the pool and settings so identical requests share a key.
func OptimizationCacheKey(pool []models.Player, settings models.Settings) (string, error) {
	payload, err := json.Marshal(struct {
		Players  []models.Player `json:"players"`
		Settings models.Settings `json:"settings"`
	}{pool, settings})
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return "optimization:" + hex.EncodeToString(sum[:]), nil
}
