// pkg/concurrency/serializer.go
// Serializer enforces the "callers serialize their own access"
// contract mmapcache.Cache requires, for programs that drive the cache
// from more than one goroutine. It adds no locking inside Cache
// itself — it is opt-in sugar one layer up.

package concurrency

import (
	"context"
	"io/fs"

	"github.com/aaomidi/mmapcache/pkg/mmapcache"
)

// Serializer wraps a *mmapcache.Cache with a single-permit semaphore,
// so concurrent callers from multiple goroutines are forced through
// one at a time instead of racing the cache's unlocked internal
// state.
type Serializer struct {
	cache *mmapcache.Cache
	sem   *Semaphore
}

// NewSerializer wraps cache.
func NewSerializer(cache *mmapcache.Cache) *Serializer {
	return &Serializer{cache: cache, sem: NewSemaphore(1)}
}

// Get serializes a call to fd.Get.
func (s *Serializer) Get(ctx context.Context, fd *mmapcache.FileDescriptor, contextID int, keepAlways bool, offset, size uint64, fi fs.FileInfo) ([]byte, error) {
	if err := s.sem.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.sem.Release()
	return fd.Get(contextID, keepAlways, offset, size, fi)
}

// ProcessSigbus serializes a call to Cache.ProcessSigbus.
func (s *Serializer) ProcessSigbus(ctx context.Context) error {
	if err := s.sem.Acquire(ctx); err != nil {
		return err
	}
	defer s.sem.Release()
	s.cache.ProcessSigbus()
	return nil
}

// FreeFD serializes a call to Cache.FreeFD.
func (s *Serializer) FreeFD(ctx context.Context, fd *mmapcache.FileDescriptor) error {
	if err := s.sem.Acquire(ctx); err != nil {
		return err
	}
	defer s.sem.Release()
	s.cache.FreeFD(fd)
	return nil
}

// Close releases the underlying semaphore, causing any blocked or
// future call through this Serializer to fail with ErrClosed. It does
// not touch the wrapped Cache.
func (s *Serializer) Close() {
	s.sem.Close()
}
