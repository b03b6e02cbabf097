// pkg/concurrency/semaphore.go
// A counting semaphore built on a buffered channel.
//
// LEARN: the channel's capacity is the semaphore's permit count; an
// empty struct{} token costs nothing, so acquiring is just sending one
// and releasing is receiving one back out.

package concurrency

import (
	"context"
	"errors"
)

// ErrClosed is returned by Acquire once the semaphore has been closed.
var ErrClosed = errors.New("concurrency: semaphore closed")

// Semaphore is a counting semaphore.
type Semaphore struct {
	tokens chan struct{}
	closed chan struct{}
}

// NewSemaphore creates a semaphore with the given number of permits.
// capacity <= 0 is treated as 1.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 1
	}
	return &Semaphore{
		tokens: make(chan struct{}, capacity),
		closed: make(chan struct{}),
	}
}

// Acquire blocks until a permit is available, ctx is done, or the
// semaphore is closed.
func (s *Semaphore) Acquire(ctx context.Context) error {
	// Checked separately and first: once closed is closed it is always
	// a ready case, so folding it into the select below would let a
	// still-open tokens slot race it and randomly grant a permit after
	// Close.
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return ErrClosed
	case s.tokens <- struct{}{}:
		return nil
	}
}

// Release returns a permit. Releasing without a matching Acquire is a
// programming error and panics, the same way over-releasing a mutex
// would deadlock rather than silently succeed. Once the semaphore is
// closed, Release is a no-op and never panics.
func (s *Semaphore) Release() {
	select {
	case <-s.closed:
		return
	default:
	}
	select {
	case <-s.tokens:
	default:
		panic("concurrency: semaphore released without a matching acquire")
	}
}

// Close causes every blocked and future Acquire to return ErrClosed.
func (s *Semaphore) Close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}
