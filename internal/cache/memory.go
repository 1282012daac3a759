package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// MemoryCache is an in-process cache bounded by entry count.
type MemoryCache struct {
	store *ristretto.Cache
}

// NewMemoryCache creates a cache holding roughly maxEntries entries.
func NewMemoryCache(maxEntries int64) (*MemoryCache, error) {
	if maxEntries <= 0 {
		maxEntries = 100_000
	}

	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}

	return &MemoryCache{store: store}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	value, ok := m.store.Get(key)
	if !ok {
		return "", ErrMiss
	}

	s, ok := value.(string)
	if !ok {
		return "", ErrMiss
	}

	return s, nil
}

// Set waits for the write to be applied so a following Get observes it.
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.store.SetWithTTL(key, value, 1, ttl)
	m.store.Wait()

	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Del(key)

	return nil
}

// Shutdown stops the cache's background goroutines.
func (m *MemoryCache) Shutdown() error {
	m.store.Close()

	return nil
}

var _ Cache = (*MemoryCache)(nil)
