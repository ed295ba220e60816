package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/clubhouse/internal/domain/temporal"
	"github.com/okian/clubhouse/pkg/metrics"
)

// Phase is the tri-state of a loader.
type Phase int

// Phases.
const (
	Loading Phase = iota
	Failed
	Ready
)

func (p Phase) String() string {
	switch p {
	case Failed:
		return "error"
	case Ready:
		return "ready"
	default:
		return "loading"
	}
}

// MarshalText renders the phase name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// State is what a view renders: Loading, Failed with Err, or Ready with Data.
type State[T any] struct {
	Data      T
	Err       error
	UpdatedAt time.Time
	Ticket    uint64
	Phase     Phase
}

// Fetcher loads a view's data.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Loader owns one view's data. Every Refresh takes a ticket; a result is
// applied only while its ticket is the latest issued and the loader is open.
type Loader[T any] struct {
	mu       sync.Mutex
	name     string
	fetch    Fetcher[T]
	clock    temporal.Clock
	onReady  func(T)
	state    State[T]
	issued   uint64
	inflight map[uint64]context.CancelFunc
	closed   bool
}

// NewLoader returns a loader in the Loading phase.
func NewLoader[T any](name string, fetch func(ctx context.Context) (T, error), clock temporal.Clock) *Loader[T] {
	if clock == nil {
		clock = temporal.SystemClock
	}
	return &Loader[T]{
		name:     name,
		fetch:    fetch,
		clock:    clock,
		inflight: make(map[uint64]context.CancelFunc),
	}
}

// OnReady registers fn to run, under no lock, after each applied result.
func (l *Loader[T]) OnReady(fn func(T)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReady = fn
}

// State returns the current state.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Refresh fetches and applies the result if no newer Refresh was issued
// meanwhile. A superseded result is dropped and ErrStale returned; after
// Close, ErrClosed. A fetch that fails because ctx itself ended is treated
// as abandoned: the prior state is restored and ErrStale returned.
func (l *Loader[T]) Refresh(ctx context.Context) (State[T], error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return State[T]{}, ErrClosed
	}
	l.issued++
	ticket := l.issued
	prev := l.state
	caller := ctx
	ctx, cancel := context.WithCancel(ctx)
	l.inflight[ticket] = cancel
	l.state = State[T]{Phase: Loading, Ticket: ticket}
	l.mu.Unlock()

	data, err := l.fetch(ctx)

	l.mu.Lock()
	delete(l.inflight, ticket)
	cancel()
	switch {
	case l.closed:
		l.mu.Unlock()
		metrics.RecordStaleResult(l.name)
		return State[T]{}, ErrClosed
	case ticket != l.issued:
		l.mu.Unlock()
		metrics.RecordStaleResult(l.name)
		return State[T]{}, ErrStale
	case err != nil && caller.Err() != nil:
		l.state = prev
		st := l.state
		l.mu.Unlock()
		metrics.RecordStaleResult(l.name)
		return st, fmt.Errorf("%w: %w", ErrStale, caller.Err())
	}

	if err != nil {
		l.state = State[T]{Phase: Failed, Err: err, Ticket: ticket, UpdatedAt: l.clock()}
		st := l.state
		l.mu.Unlock()
		metrics.RecordRefreshError(l.name)
		return st, err
	}
	l.state = State[T]{Phase: Ready, Data: data, Ticket: ticket, UpdatedAt: l.clock()}
	st, onReady := l.state, l.onReady
	l.mu.Unlock()

	if onReady != nil {
		onReady(data)
	}
	return st, nil
}

// Close marks the loader inactive and cancels in-flight fetches. Results that
// arrive afterwards are dropped.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for t, cancel := range l.inflight {
		cancel()
		delete(l.inflight, t)
	}
}
