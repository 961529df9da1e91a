package gateway

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/swiss-mcp/mcp-commons/internal/config"
	"github.com/swiss-mcp/mcp-commons/pkg/cache"
	"github.com/swiss-mcp/mcp-commons/pkg/mcperr"
)

// OpenStore builds the cache store selected by cfg. The returned close
// function releases the backend connection and is never nil.
func OpenStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, func() error, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, mcperr.Configuration(fmt.Sprintf("connect to redis at %s: %v", cfg.RedisAddr, err), "cache.redis_addr", err)
		}
		return cache.NewRedisStore(rdb, cfg.KeyPrefix), rdb.Close, nil
	case config.CacheBackendMemory, "":
		return cache.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, mcperr.Configuration(fmt.Sprintf("unknown cache backend %q", cfg.Backend), "cache.backend", nil)
	}
}
