package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "price:"

// RedisCache is a Redis-backed implementation of Cache. Expiry is delegated
// to Redis TTLs, so no purge task is needed for this backend.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache creates a Redis-backed price cache.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached price and whether a live entry exists.
func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	val, err := c.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get price: %w", err)
	}

	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		// A corrupt entry reads as a miss; the next Set overwrites it.
		return 0, false, nil
	}
	return price, true, nil
}

// Set stores a price under the cache's TTL.
func (c *RedisCache) Set(ctx context.Context, key string, price float64) error {
	err := c.rdb.Set(ctx, redisKeyPrefix+key, strconv.FormatFloat(price, 'g', -1, 64), c.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set price: %w", err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
