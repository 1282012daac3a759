// Package visits records alias visits off the request path.
package visits

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Incrementer persists one visit of slug.
type Incrementer interface {
	IncrementVisits(ctx context.Context, slug string) error
}

// Config tunes a Dispatcher. Zero values fall back to defaults.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Dispatcher hands visits to a fixed pool of workers. Each increment runs
// under its own context, detached from the request that caused it. Failures
// go to an error channel whose only reader logs them.
type Dispatcher struct {
	incr    Incrementer
	queue   chan string
	errs    chan error
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	closed  bool
	workers errgroup.Group
	logged  chan struct{}
}

// NewDispatcher creates a dispatcher and starts its workers.
func NewDispatcher(incr Incrementer, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	d := &Dispatcher{
		incr:    incr,
		queue:   make(chan string, cfg.QueueSize),
		errs:    make(chan error, cfg.Workers),
		timeout: cfg.Timeout,
		logger:  logger,
		logged:  make(chan struct{}),
	}

	for range cfg.Workers {
		d.workers.Go(d.work)
	}

	go d.logErrors()

	return d
}

// Dispatch queues a visit of slug without blocking. The visit is dropped
// when the queue is full or the dispatcher is shut down.
func (d *Dispatcher) Dispatch(slug string) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("visit dropped, dispatcher stopped", zap.String("alias", slug))

		return
	}

	select {
	case d.queue <- slug:
	default:
		d.logger.Warn("visit dropped, queue full", zap.String("alias", slug))
	}
}

// Shutdown stops accepting visits and waits for queued ones to finish.
func (d *Dispatcher) Shutdown() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()

		return nil
	}

	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	err := d.workers.Wait()

	close(d.errs)
	<-d.logged

	return err
}

func (d *Dispatcher) work() error {
	for slug := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.incr.IncrementVisits(ctx, slug)
		cancel()

		if err != nil {
			d.errs <- fmt.Errorf("increment visits of %q: %w", slug, err)
		}
	}

	return nil
}

func (d *Dispatcher) logErrors() {
	defer close(d.logged)

	for err := range d.errs {
		d.logger.Error("failed to record visit", zap.Error(err))
	}
}
