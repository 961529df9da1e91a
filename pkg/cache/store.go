package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store persists cache entries by hashed key. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the entry for key or ErrCacheMiss.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores entry under key. ttl is a hint for stores with native
	// expiry; validity is always decided by Lookup.
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Len returns the number of stored entries.
	Len(ctx context.Context) (int, error)

	// Layer names the store in metrics ("memory", "redis").
	Layer() string
}

// Lookup returns the entry for key if it is still valid at now.
// An entry older than ttl is deleted and reported as ErrCacheMiss.
func Lookup(ctx context.Context, s Store, key string, now time.Time, ttl time.Duration) (*Entry, error) {
	layer := s.Layer()

	entry, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			CacheMisses.WithLabelValues(layer).Inc()
		}
		return nil, err
	}

	if !entry.IsValid(now, ttl) {
		_ = s.Delete(ctx, key)
		CacheExpired.WithLabelValues(layer).Inc()
		CacheMisses.WithLabelValues(layer).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(layer).Inc()
	return entry, nil
}
