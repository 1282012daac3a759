package visits_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/serroba/shortlink/internal/visits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingIncrementer struct {
	mu         sync.Mutex
	counts     map[string]int
	err        error
	block      chan struct{}
	noDeadline bool
}

func newCountingIncrementer() *countingIncrementer {
	return &countingIncrementer{counts: make(map[string]int)}
}

func (c *countingIncrementer) IncrementVisits(ctx context.Context, slug string) error {
	if c.block != nil {
		<-c.block
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		c.noDeadline = true
	}

	if c.err != nil {
		return c.err
	}

	c.counts[slug]++

	return nil
}

func (c *countingIncrementer) count(slug string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counts[slug]
}

func TestDispatcher(t *testing.T) {
	t.Run("records every dispatched visit before shutdown returns", func(t *testing.T) {
		incr := newCountingIncrementer()
		d := visits.NewDispatcher(incr, visits.Config{Workers: 3, QueueSize: 100}, zap.NewNop())

		for range 50 {
			d.Dispatch("abc")
		}

		require.NoError(t, d.Shutdown())
		assert.Equal(t, 50, incr.count("abc"))
		assert.False(t, incr.noDeadline, "increments run with a deadline")
	})

	t.Run("failures are logged, not returned", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		incr := newCountingIncrementer()
		incr.err = errors.New("db down")
		d := visits.NewDispatcher(incr, visits.Config{Workers: 1}, zap.New(core))

		d.Dispatch("abc")

		require.NoError(t, d.Shutdown())
		require.Equal(t, 1, logs.FilterMessage("failed to record visit").Len())
	})

	t.Run("drops visits when the queue is full", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		incr := newCountingIncrementer()
		incr.block = make(chan struct{})
		d := visits.NewDispatcher(incr, visits.Config{Workers: 1, QueueSize: 1}, zap.New(core))

		// At most one in flight and one queued; the rest are dropped.
		for range 6 {
			d.Dispatch("abc")
		}

		close(incr.block)
		require.NoError(t, d.Shutdown())

		assert.Positive(t, logs.FilterMessage("visit dropped, queue full").Len())
		assert.LessOrEqual(t, incr.count("abc"), 2)
	})

	t.Run("dispatch after shutdown is dropped", func(t *testing.T) {
		incr := newCountingIncrementer()
		d := visits.NewDispatcher(incr, visits.Config{}, zap.NewNop())

		require.NoError(t, d.Shutdown())
		require.NoError(t, d.Shutdown())

		d.Dispatch("abc")

		assert.Zero(t, incr.count("abc"))
	})
}
