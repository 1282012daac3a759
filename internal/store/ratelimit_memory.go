package store

import (
	"context"
	"sync"
	"time"
)

type rateWindow struct {
	count   int64
	expires time.Time
}

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

// WithClock replaces the store's time source.
func (s *RateLimitMemoryStore) WithClock(now func() time.Time) *RateLimitMemoryStore {
	s.now = now

	return s
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.expires) {
		s.prune(now)

		w = &rateWindow{expires: now.Add(window)}
		s.windows[key] = w
	}

	w.count++

	return w.count, w.expires.Sub(now), nil
}

// prune drops expired windows. Callers hold the lock.
func (s *RateLimitMemoryStore) prune(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.expires) {
			delete(s.windows, key)
		}
	}
}
