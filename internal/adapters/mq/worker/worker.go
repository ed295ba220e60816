package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/okian/clubhouse/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Notification is what workers read off the queue.
type Notification = model.Notification

// Publisher delivers a notification downstream.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, n Notification) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, n Notification) error { return f(ctx, n) }

// Queue defines how workers receive notifications.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Notification
}

// Worker publishes notifications until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current notification.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker reads from a Queue and hands each notification to a Publisher.
type InMemoryWorker struct {
	queue     Queue
	publisher Publisher
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, publisher Publisher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		publisher: publisher,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	in := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case n, ok := <-in:
			if !ok {
				return
			}
			if err := w.process(ctx, n); err != nil {
				w.logger.Error(ctx, "error publishing notification", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, n Notification) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.publisher.Publish(ctx, n); err != nil {
		metrics.RecordNotificationError()
		w.logger.Warn(ctx, "notification not delivered",
			logger.String("id", n.ID),
			logger.String("kind", string(n.Kind)),
			logger.Error(err),
		)
		return fmt.Errorf("failed to publish notification %s: %w", n.ID, err)
	}
	metrics.RecordNotificationPublished()
	return nil
}

// Pool manages several workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. Counts below one use the default.
func NewPool(workerCount int, queue Queue, publisher Publisher) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(queue, publisher, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start runs every worker in its own goroutine.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Shutdown closes the queue when it supports closing, then stops the workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
