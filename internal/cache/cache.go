// Package cache holds the alias -> target URL read cache.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports a key that is not cached.
var ErrMiss = errors.New("cache miss")

// Cache is a string key/value cache with per-entry TTL.
type Cache interface {
	// Get returns ErrMiss when key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key; a zero ttl never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
