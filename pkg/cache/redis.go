package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces cache keys in a shared Redis database.
	DefaultKeyPrefix = "mcp:cache:"

	layerRedis = "redis"
	scanCount  = 100
)

// RedisStore is a Store backed by Redis. Several clients, in one process or
// many, can share it.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store. An empty prefix selects
// DefaultKeyPrefix.
func NewRedisStore(redisClient *redis.Client, prefix string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := r.redis.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	return &entry, nil
}

// Set implements Store. The entry gets a Redis expiry of ttl; a ttl of zero
// or less stores nothing.
func (r *RedisStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.redis.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, r.prefix+key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear implements Store. Only keys under the store's prefix are removed.
func (r *RedisStore) Clear(ctx context.Context) (int, error) {
	keys, err := r.keys(ctx)
	if err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := r.redis.Del(ctx, keys...).Result()
	if err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return int(removed), nil
}

// Len implements Store.
func (r *RedisStore) Len(ctx context.Context) (int, error) {
	keys, err := r.keys(ctx)
	if err != nil {
		CacheErrors.WithLabelValues("len").Inc()
		return 0, err
	}
	return len(keys), nil
}

// Layer implements Store.
func (r *RedisStore) Layer() string {
	return layerRedis
}

func (r *RedisStore) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.redis.Scan(ctx, 0, r.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}
