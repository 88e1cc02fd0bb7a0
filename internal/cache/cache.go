// Package cache memoizes derived listings and statistics in Redis. TTLs are
// a performance hint only: correctness comes from the service evicting every
// cached key inside each mutating operation before it returns.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"payment-stats/internal/logger"
	"payment-stats/internal/models"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

const (
	KeySortedListing = "payments:sorted"
	KeyStatistics    = "payments:statistics"

	ListingTTL    = 5 * time.Minute
	StatisticsTTL = 2 * time.Minute
)

// KeyByStatus names the cached listing for one status.
func KeyByStatus(status models.PaymentStatus) string {
	return "payments:by-status:" + string(status)
}

// MutationKeys lists every key a store mutation must evict.
func MutationKeys() []string {
	keys := []string{KeySortedListing, KeyStatistics}
	for _, status := range models.Statuses {
		keys = append(keys, KeyByStatus(status))
	}
	return keys
}

// Cache is the external memoization collaborator.
type Cache interface {
	// Get unmarshals the cached value for key into dest, or returns
	// ErrCacheMiss.
	Get(ctx context.Context, key string, dest any) error

	// Put stores value under key with the given TTL.
	Put(ctx context.Context, key string, value any, ttl time.Duration) error

	// EvictAll removes the given keys.
	EvictAll(ctx context.Context, keys ...string) error
}

// RedisCache implements Cache on a Redis client with JSON values.
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisCache(client *redis.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.log.LogCache("MISS", key, "Key not cached")
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cached value for %s: %w", key, err)
	}

	c.log.LogCache("HIT", key, "Served from cache")
	return nil
}

func (c *RedisCache) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}

	c.log.LogCache("PUT", key, fmt.Sprintf("Cached with TTL %s", ttl))
	return nil
}

func (c *RedisCache) EvictAll(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to evict cache keys: %w", err)
	}

	c.log.LogCache("EVICT", fmt.Sprintf("%d keys", len(keys)), "Caches invalidated")
	return nil
}
