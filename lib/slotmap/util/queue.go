package util

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type queueNode[T any] struct {
	value *T
	next  atomic.Pointer[queueNode[T]]
}

// Queue is an unbounded lock-free multi-producer single-consumer queue.
// Producers append with Push and never wait for the consumer, which makes it safe to call
// while holding a table lock. A single background goroutine drains the
// linked list into the channel returned by Recv.
//
// Ordering between concurrent producers is the order in which their
// appends succeed.
type Queue[T any] struct {
	head     atomic.Pointer[queueNode[T]]
	tail     atomic.Pointer[queueNode[T]]
	out      chan *T
	consumer sync.WaitGroup
	closed   atomic.Bool

	mu   sync.Mutex
	cond *sync.Cond
}

// NewQueue creates a queue and starts its consumer goroutine
func NewQueue[T any]() *Queue[T] {
	sentinel := &queueNode[T]{}
	q := &Queue[T]{out: make(chan *T)}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	q.consumer.Add(1)
	go q.drain()
	return q
}

// Push appends an item. It returns false if the item is nil or the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *Queue[T]) Push(value *T) bool {
	if value == nil || q.closed.Load() {
		return false
	}

	n := &queueNode[T]{value: value}
	var spins uint8
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if next == nil {
			if tail.next.CompareAndSwap(nil, n) {
				// another producer may already have advanced the tail, that's fine
				q.tail.CompareAndSwap(tail, n)
				q.wake()
				return true
			}
		} else {
			// help a producer that appended but did not advance the tail yet
			q.tail.CompareAndSwap(tail, next)
		}

		// exponential backoff under contention
		if spins < 10 {
			spins++
			for i := 0; i < 1<<spins; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// drain moves items from the linked list to the output channel
func (q *Queue[T]) drain() {
	defer q.consumer.Done()
	defer close(q.out)

	for {
		delivered := false
		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			delivered = true
			value := next.value
			q.head.Store(next)
			q.out <- value
			next.value = nil
		}

		if !delivered && q.closed.Load() {
			return
		}

		if !delivered {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the channel the queued items are delivered on.
// The channel is closed after Close once all pending items were delivered.
func (q *Queue[T]) Recv() <-chan *T {
	return q.out
}

// Close stops accepting new items
func (q *Queue[T]) Close() {
	q.closed.Store(true)
	q.wake()
}

// wake signals the consumer. The mutex orders the signal after the consumer's
// emptiness check so the wakeup can't be lost.
func (q *Queue[T]) wake() {
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// IsClosed reports whether Close was called
func (q *Queue[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len counts the pending items. This is O(n) and meant for debugging.
func (q *Queue[T]) Len() int {
	count := 0
	for n := q.head.Load().next.Load(); n != nil; n = n.next.Load() {
		count++
	}
	return count
}
