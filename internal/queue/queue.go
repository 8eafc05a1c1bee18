package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Push after Close, and by Pop once the queue is
// closed and empty.
var ErrClosed = errors.New("queue closed")

// Queue is an unbounded FIFO safe for concurrent use.
//
// Pop blocks until an item is available. Each pushed value is returned by
// exactly one Pop. Close stops Pop from waiting but leaves the backlog in
// place, so values pushed before Close are still handed out.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool

	// changed is closed and replaced whenever items or closed change.
	changed chan struct{}
}

// New creates an empty, open queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items:   make([]T, 0, 16),
		changed: make(chan struct{}),
	}
}

// Push appends v to the tail. It never blocks.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.broadcast()
	return nil
}

// Pop removes and returns the head of the queue, waiting if it is empty.
//
// It returns ErrClosed once the queue is closed and drained, or ctx.Err()
// if ctx is done first.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		changed := q.changed
		q.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Close marks the queue closed and wakes every waiting Pop. It is safe to
// call more than once.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.broadcast()
}

// Discard removes and returns everything still queued, in FIFO order.
func (q *Queue[T]) Discard() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = make([]T, 0)
	q.broadcast()
	return out
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// broadcast wakes all current waiters. Caller holds q.mu.
func (q *Queue[T]) broadcast() {
	close(q.changed)
	q.changed = make(chan struct{})
}
