// pkg/mmapcache/errors.go
// Centralized error definitions for the window cache.
//
// LEARN: Sentinel errors are package-level variables compared with
// errors.Is(). This keeps error handling programmatic instead of
// string-matching messages.

package mmapcache

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory means mmap(2) failed with ENOMEM and eviction of
	// every unused window still left no room.
	ErrOutOfMemory = errors.New("mmapcache: out of memory")

	// ErrAddrNotAvailable means the requested offset lies at or beyond
	// the end of the file, so no window can ever cover it.
	ErrAddrNotAvailable = errors.New("mmapcache: address not available")

	// ErrPoisoned means the file descriptor has an outstanding SIGBUS
	// fault; its windows now serve zero-filled anonymous memory instead
	// of file contents and must not be trusted for reads that matter.
	ErrPoisoned = errors.New("mmapcache: file descriptor poisoned by sigbus")

	// ErrUnsupportedPlatform means mmap facilities this package depends
	// on (MAP_FIXED re-mapping, in particular) are not implemented for
	// the current GOOS.
	ErrUnsupportedPlatform = errors.New("mmapcache: mmap not supported on this platform")

	// ErrInvalidContext means a context ID was outside [0, MaxContexts).
	ErrInvalidContext = errors.New("mmapcache: context id out of range")

	// ErrInvalidSize means a zero-length access was requested.
	ErrInvalidSize = errors.New("mmapcache: size must be greater than zero")
)

// WrapMmap wraps a raw mmap(2)/munmap(2) failure with the operation
// that produced it, preserving the underlying errno for errors.Is.
func WrapMmap(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("mmapcache: %s: %w", operation, err)
}

// Error codes for callers that want a stable, machine-readable
// identifier instead of matching on the Go error value directly.
const (
	CodeOutOfMemory         = "MMAPCACHE_OUT_OF_MEMORY"
	CodeAddrNotAvailable    = "MMAPCACHE_ADDR_NOT_AVAILABLE"
	CodePoisoned            = "MMAPCACHE_POISONED"
	CodeUnsupportedPlatform = "MMAPCACHE_UNSUPPORTED_PLATFORM"
	CodeInvalidContext      = "MMAPCACHE_INVALID_CONTEXT"
	CodeInvalidSize         = "MMAPCACHE_INVALID_SIZE"
	CodeInternal            = "MMAPCACHE_INTERNAL"
)

// ErrorCode returns a stable identifier for err, checking the most
// specific sentinels first since wrapped errors can match more than
// one via errors.Is.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOutOfMemory):
		return CodeOutOfMemory
	case errors.Is(err, ErrAddrNotAvailable):
		return CodeAddrNotAvailable
	case errors.Is(err, ErrPoisoned):
		return CodePoisoned
	case errors.Is(err, ErrUnsupportedPlatform):
		return CodeUnsupportedPlatform
	case errors.Is(err, ErrInvalidContext):
		return CodeInvalidContext
	case errors.Is(err, ErrInvalidSize):
		return CodeInvalidSize
	default:
		return CodeInternal
	}
}

// IsRetryable reports whether err might succeed if retried after some
// windows have been freed elsewhere. Only the transient resource
// exhaustion case qualifies; poisoning and range errors will not
// resolve themselves.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrOutOfMemory)
}
