// Package cache holds the response cache behind the MCP HTTP client.
//
// Entries are raw JSON bodies keyed by the MD5 hash of the request URL and
// its query parameters sorted by name. An entry is valid while it is younger
// than the client's TTL; expired entries are treated as absent and removed
// when they are next read.
//
// Two stores are provided:
//
//   - MemoryStore, a mutex-guarded map owned by a single client (default)
//   - RedisStore, a go-redis backed store that can be shared between processes
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//
//	key := cache.CacheKey{
//		URL:    "https://api.example.ch/v1/stations",
//		Params: url.Values{"canton": []string{"ZH"}},
//	}
//
//	entry, err := cache.Lookup(ctx, store, key.Hash(), time.Now(), 2*time.Minute)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch upstream, then store.Set(ctx, key.Hash(), entry, ttl)
//	}
//
// # Redis
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := cache.NewRedisStore(redisClient, "")
//
// Redis entries carry a native expiry equal to the TTL they were stored with,
// so Redis reclaims them even when no client reads them again.
//
// # Metrics
//
//   - mcp_cache_hits_total{layer} - Cache hits
//   - mcp_cache_misses_total{layer} - Cache misses
//   - mcp_cache_expired_total{layer} - Entries found but older than the TTL
//   - mcp_cache_entries{layer} - Entries held by the memory store
//   - mcp_cache_errors_total{operation} - Cache operation errors
package cache
