package queue

import (
	"sync"
)

// Queue is a generic thread-safe FIFO with a wake channel, so a consumer
// goroutine can sleep until work arrives instead of polling. Push never
// blocks, which keeps producers (the foreground session loop) latency-free
// regardless of how far the consumer has fallen behind.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	wake  chan struct{}
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
		wake:  make(chan struct{}, 1),
	}
}

// Push appends items and signals the wake channel.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// TryPop removes and returns the first item, reporting whether one existed.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Wait returns the wake channel. It fires at least once after any Push; a
// consumer must still drain with TryPop until empty, since multiple pushes
// may coalesce into one signal.
func (q *Queue[T]) Wait() <-chan struct{} {
	return q.wake
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Clear removes all items.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}
