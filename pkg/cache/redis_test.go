package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis on DB 15 and skips the test when
// none is running. The container-backed variant lives in
// redis_integration_test.go.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	store := NewRedisStore(client, "")
	if store.redis != client {
		t.Error("RedisStore redis client not set correctly")
	}
	if store.prefix != DefaultKeyPrefix {
		t.Errorf("prefix = %q, want %q", store.prefix, DefaultKeyPrefix)
	}
	if store.Layer() != "redis" {
		t.Errorf("Layer() = %q, want redis", store.Layer())
	}
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil, "")
}

func TestRedisStore(t *testing.T) {
	client := setupTestRedis(t)
	runRedisStoreSuite(t, client)
}

// runRedisStoreSuite exercises a RedisStore against a live server.
func runRedisStoreSuite(t *testing.T, client *redis.Client) {
	t.Helper()
	ctx := context.Background()
	store := NewRedisStore(client, "test:cache:")
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("miss", func(t *testing.T) {
		if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		if err := store.Set(ctx, "k1", NewEntry([]byte(`{"a":1}`), now), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := store.Get(ctx, "k1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got.Value) != `{"a":1}` {
			t.Errorf("Value = %s, want %s", got.Value, `{"a":1}`)
		}
		if !got.StoredAt.Equal(now) {
			t.Errorf("StoredAt = %v, want %v", got.StoredAt, now)
		}
	})

	t.Run("native expiry", func(t *testing.T) {
		if err := store.Set(ctx, "k2", NewEntry([]byte(`1`), now), 30*time.Second); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		ttl, err := client.TTL(ctx, "test:cache:k2").Result()
		if err != nil {
			t.Fatalf("TTL() error = %v", err)
		}
		if ttl <= 0 || ttl > 30*time.Second {
			t.Errorf("redis TTL = %v, want (0, 30s]", ttl)
		}
	})

	t.Run("non-positive ttl stores nothing", func(t *testing.T) {
		if err := store.Set(ctx, "k3", NewEntry([]byte(`1`), now), 0); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if _, err := store.Get(ctx, "k3"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("corrupt entry", func(t *testing.T) {
		client.Set(ctx, "test:cache:bad", "not json", time.Minute)
		if _, err := store.Get(ctx, "bad"); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("Get() error = %v, want ErrInvalidEntry", err)
		}
		_ = store.Delete(ctx, "bad")
	})

	t.Run("clear only own prefix", func(t *testing.T) {
		client.Set(ctx, "other:key", "x", time.Minute)

		n, err := store.Len(ctx)
		if err != nil {
			t.Fatalf("Len() error = %v", err)
		}
		if n != 2 {
			t.Errorf("Len() = %d, want 2", n)
		}

		removed, err := store.Clear(ctx)
		if err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if removed != 2 {
			t.Errorf("Clear() = %d, want 2", removed)
		}

		if exists, _ := client.Exists(ctx, "other:key").Result(); exists != 1 {
			t.Error("Clear() removed a key outside the store prefix")
		}
	})
}
