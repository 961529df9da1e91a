package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiss-mcp/mcp-commons/internal/config"
	"github.com/swiss-mcp/mcp-commons/pkg/cache"
	"github.com/swiss-mcp/mcp-commons/pkg/mcperr"
)

func TestOpenStore_Memory(t *testing.T) {
	store, closeFn, err := OpenStore(context.Background(), config.CacheConfig{Backend: config.CacheBackendMemory})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer closeFn()

	assert.IsType(t, &cache.MemoryStore{}, store)
	assert.Equal(t, "memory", store.Layer())
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.CacheConfig{Backend: "memcached"})
	require.Error(t, err)

	e, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "cache.backend", e.Details["config_key"])
}

func TestOpenStore_RedisUnreachable(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.CacheConfig{
		Backend:   config.CacheBackendRedis,
		RedisAddr: "127.0.0.1:1",
	})
	require.Error(t, err)

	e, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.CodeConfiguration, e.Code)
	assert.Equal(t, "cache.redis_addr", e.Details["config_key"])
}
