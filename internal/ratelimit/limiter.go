package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Decision is the outcome of one check, reported from the tightest limit.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	Reset     time.Duration
	Window    time.Duration
}

// Limiter applies fixed-window limits per client and route.
type Limiter struct {
	store Store
}

// NewLimiter creates a limiter on top of store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow counts the request against every limit. It stops at the first limit
// exceeded; otherwise it reports the limit with the fewest remaining requests.
func (l *Limiter) Allow(ctx context.Context, client, route string, limits []LimitConfig) (Decision, error) {
	tightest := Decision{Allowed: true, Remaining: -1}

	for _, limit := range limits {
		key := fmt.Sprintf("ratelimit:%s:%s:%d", route, client, limit.Window.Milliseconds())

		count, ttl, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return Decision{}, fmt.Errorf("record request for %s: %w", route, err)
		}

		d := Decision{
			Allowed:   count <= limit.Max,
			Limit:     limit.Max,
			Remaining: max(limit.Max-count, 0),
			Reset:     ttl,
			Window:    limit.Window,
		}

		if !d.Allowed {
			return d, nil
		}

		if tightest.Remaining < 0 || d.Remaining < tightest.Remaining {
			tightest = d
		}
	}

	return tightest, nil
}
