package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const layerMemory = "memory"

// MemoryStore is an in-process Store guarded by a read/write mutex.
// Concurrent writers to one key resolve last-write-wins.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	return entry, nil
}

// Set implements Store. The ttl is ignored; expiry is checked on read.
func (m *MemoryStore) Set(_ context.Context, key string, entry *Entry, _ time.Duration) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	m.mu.Lock()
	m.entries[key] = entry
	n := len(m.entries)
	m.mu.Unlock()

	CacheEntries.WithLabelValues(layerMemory).Set(float64(n))
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	n := len(m.entries)
	m.mu.Unlock()

	CacheEntries.WithLabelValues(layerMemory).Set(float64(n))
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) (int, error) {
	m.mu.Lock()
	n := len(m.entries)
	m.entries = make(map[string]*Entry)
	m.mu.Unlock()

	CacheEntries.WithLabelValues(layerMemory).Set(0)
	return n, nil
}

// Len implements Store.
func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Layer implements Store.
func (m *MemoryStore) Layer() string {
	return layerMemory
}
