// Package cache wraps a single Redis client used to hold short-lived
// snapshots (the active discount list read by the price resolver).
//
// Every helper is a no-op when Connect was never called or failed, so the
// shop keeps serving straight from the store when Redis is down.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/minimalshop/config"
	"github.com/shashiranjanraj/minimalshop/pkg/metrics"
)

var RDB *redis.Client

// Connect initialises the Redis client and verifies the connection with a ping.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		RDB = nil
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return nil
}

// Close releases the client if one is open.
func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

// Get unmarshals the value under key into dest. It reports a hit.
func Get(ctx context.Context, key string, dest any) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value as JSON under key for ttl.
func Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return RDB.Set(ctx, key, data, ttl).Err()
}

// Forget removes keys.
func Forget(ctx context.Context, keys ...string) error {
	if RDB == nil || len(keys) == 0 {
		return nil
	}
	return RDB.Del(ctx, keys...).Err()
}

// Remember fills dest from the cache, or calls load and caches its result.
// A non-positive ttl bypasses the cache entirely. A failed cache write is
// not an error; a failed load is.
//
//	var list []models.Discount
//	err := cache.Remember(ctx, "pricing:discounts", ttl, &list, func() ([]models.Discount, error) {
//	    return store.List(ctx)
//	})
func Remember[T any](ctx context.Context, key string, ttl time.Duration, dest *T, load func() (T, error)) error {
	if ttl > 0 && Get(ctx, key, dest) {
		return nil
	}

	v, err := load()
	if err != nil {
		return err
	}
	*dest = v
	if ttl > 0 {
		_ = Set(ctx, key, v, ttl)
	}
	return nil
}
