// pkg/mmapcache/sigbusqueue.go
// InMemoryQueue is a ready-made SigbusSource (a Cache has none unless
// one is passed to WithSigbusSource): a bounded, non-blocking
// queue a real signal handler (or, in tests, a fault injector) pushes
// into and ProcessSigbus drains.
//
// LEARN: a real SIGBUS handler runs on a signal stack and must not
// allocate or block; it can safely do a non-blocking channel send,
// which is exactly what Push does. Everything past that point — this
// file included — runs on an ordinary goroutine.

package mmapcache

import "github.com/aaomidi/mmapcache/internal/bufpool"

// InMemoryQueue is a fixed-capacity, non-blocking FIFO of fault
// addresses.
type InMemoryQueue struct {
	ch chan uintptr
}

var scratchPool = bufpool.New(
	func() *[]uintptr { s := make([]uintptr, 0, 16); return &s },
	func(s *[]uintptr) { *s = (*s)[:0] },
)

// NewInMemoryQueue creates a queue holding up to capacity addresses
// before Push starts reporting failure. A real signal handler has
// nowhere to put an address that doesn't fit; spec.md's design notes
// treat an overflowing queue the same way as any other dropped fault
// notification, so Push simply reports whether the push succeeded.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &InMemoryQueue{ch: make(chan uintptr, capacity)}
}

// Push enqueues addr without blocking, returning false if the queue is
// full.
func (q *InMemoryQueue) Push(addr uintptr) bool {
	select {
	case q.ch <- addr:
		return true
	default:
		return false
	}
}

// Pop implements SigbusSource.
func (q *InMemoryQueue) Pop() (uintptr, bool, error) {
	select {
	case addr := <-q.ch:
		return addr, true, nil
	default:
		return 0, false, nil
	}
}

// DrainBatch drains every currently queued address into a freshly
// allocated slice, using a pooled scratch buffer to build it up
// without allocating on every call.
func (q *InMemoryQueue) DrainBatch() []uintptr {
	buf := scratchPool.Get()
	defer scratchPool.Put(buf)

	for {
		select {
		case addr := <-q.ch:
			*buf = append(*buf, addr)
		default:
			out := make([]uintptr, len(*buf))
			copy(out, *buf)
			return out
		}
	}
}
