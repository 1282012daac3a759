package ratelimit

import (
	"context"
	"time"
)

// Store keeps fixed-window request counters.
type Store interface {
	// Record counts one request against key. The first request of a window
	// starts it; the returned ttl is the time left until it resets.
	Record(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}
