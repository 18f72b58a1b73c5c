// Package worker provides an asynchronous worker pool for publishing stream
// events through an eventstream.Publisher.
//
// The pool decouples publishing from the stream decode loop so that a slow or
// unavailable broker never stalls the events shown to the user.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/cloudctl/pkg/eventstream"
	"github.com/papercomputeco/cloudctl/pkg/logger"
)

var (
	defaultNumWorkers     uint          = 2
	defaultJobQueueSize   uint          = 256
	defaultPublishTimeout time.Duration = 5 * time.Second
)

// ErrNoPublisher is returned by NewPool without a Publisher.
var ErrNoPublisher = errors.New("no publisher configured")

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher receives every enqueued event.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds a single Publish call.
	PublishTimeout time.Duration

	Logger *slog.Logger
}

// Stats counts what happened to enqueued events.
type Stats struct {
	Published uint64
	Failed    uint64
	Dropped   uint64
}

// Pool publishes events asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan *eventstream.StreamEvent
	wg     sync.WaitGroup
	logger *slog.Logger

	published atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, ErrNoPublisher
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.PublishTimeout == 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.StreamEvent, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits an event for publishing.
// Returns true if enqueued, false if the queue is full, resulting in the event being dropped.
func (p *Pool) Enqueue(event *eventstream.StreamEvent) bool {
	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return true
	default:
		p.dropped.Add(1)
		p.logger.Error("event not queued, queue full, event dropped",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return false
	}
}

// Close signals workers to stop, waits for queued events to drain and closes
// the publisher. Enqueue must not be called after Close.
func (p *Pool) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.queue)
		p.wg.Wait()
		err = p.config.Publisher.Close()
	})
	return err
}

// Stats returns the current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
	}
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("publish worker started", "worker_id", id)

	for event := range p.queue {
		p.publish(event)
	}

	p.logger.Debug("publish worker stopped", "worker_id", id)
}

func (p *Pool) publish(event *eventstream.StreamEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.failed.Add(1)
		p.logger.Warn("publishing event failed",
			"event_type", event.EventType,
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.published.Add(1)
}
