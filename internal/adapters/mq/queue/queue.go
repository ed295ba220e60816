package queue

import (
	"context"
	"sync"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Notification is the payload flowing through the queue.
type Notification = model.Notification

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds n without blocking. It fails with ErrFull or ErrClosed.
	Enqueue(ctx context.Context, n Notification) error

	// Dequeue returns a channel of notifications, closed when the queue closes.
	Dequeue(ctx context.Context) <-chan Notification

	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Notification
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Notification, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a notification to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n Notification) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return err
	}

	select {
	case q.items <- n:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.items))
		return nil
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that receives notifications as they arrive.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Notification {
	out := make(chan Notification)
	go func() {
		defer close(out)
		for n := range q.items {
			select {
			case out <- n:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.items))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of buffered notifications.
func (q *InMemoryQueue) Len() int {
	return len(q.items)
}

// Close stops accepting notifications. Buffered ones are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
