// pkg/mmapcache/cache.go
// Cache is the root of the window pool: it owns every registered file
// descriptor, every context slot, and the unused-window LRU they
// share.
//
// LEARN: everything in this package assumes single-threaded,
// cooperative access (see doc.go). Nothing here takes a lock. Callers
// that drive Cache from more than one goroutine must serialize their
// own calls, e.g. with pkg/concurrency.Serializer.

package mmapcache

import (
	"fmt"
	"log/slog"

	"github.com/aaomidi/mmapcache/pkg/audit"
)

// DefaultMaxContexts is the number of context slots a Cache gets when
// WithMaxContexts is not passed to New. Context IDs are small,
// caller-assigned integers (e.g. one per journal query cursor); this
// mirrors the original's compile-time MMAP_CACHE_MAX_CONTEXTS, made a
// per-Cache option instead of a global constant.
const DefaultMaxContexts = 32

// DefaultMinWindows is the window count at or below which the cache
// keeps growing instead of reusing an unused window, even if one is
// available; reuse starts once the count exceeds it. It
// absorbs a burst of distinct small accesses without thrashing the
// first few windows created.
const DefaultMinWindows = 64

// FatalFunc is invoked when the cache observes a condition it cannot
// safely continue past: a SIGBUS fault at an address it cannot
// attribute to any mapped window, a SigbusSource that reports an error
// (see sigbus.go), or a window that cannot be re-mapped as anonymous
// memory during invalidation (see window.go). The original
// calls assert_se(), which aborts the process; the default FatalFunc
// panics instead, so the condition is observable and test-injectable
// rather than only reproducible by crashing the whole program.
type FatalFunc func(format string, args ...any)

func defaultFatal(logger *slog.Logger) FatalFunc {
	return func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		logger.Error(msg)
		panic(msg)
	}
}

// Cache is a bounded pool of mmap'd file windows shared across an
// arbitrary number of file descriptors and access contexts.
type Cache struct {
	refCount int

	logger *slog.Logger
	fatal  FatalFunc
	sigbus SigbusSource
	audit  audit.Sink

	maxContexts int
	minWindows  int
	windowSize  uint64

	fds      map[int]*FileDescriptor
	contexts []*Context

	nWindows int

	unusedHead *Window
	unusedTail *Window

	statHit    uint64
	statList   uint64
	statMiss   uint64
	statEvict  uint64
	statFaults uint64
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithMaxContexts overrides DefaultMaxContexts.
func WithMaxContexts(n int) Option {
	return func(c *Cache) { c.maxContexts = n }
}

// WithMinWindows overrides DefaultMinWindows.
func WithMinWindows(n int) Option {
	return func(c *Cache) { c.minWindows = n }
}

// WithWindowSize overrides the default window span target. Actual
// windows may still be smaller near a short file's end, or larger to
// cover a request bigger than the configured size (see
// computeWindowSpan).
func WithWindowSize(n uint64) Option {
	return func(c *Cache) { c.windowSize = n }
}

// WithLogger overrides the cache's structured logger. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFatalFunc overrides the abort path described on FatalFunc.
func WithFatalFunc(f FatalFunc) Option {
	return func(c *Cache) {
		if f != nil {
			c.fatal = f
		}
	}
}

// WithSigbusSource installs the queue ProcessSigbus drains. Without
// one, ProcessSigbus is a no-op and FreeFD skips the drain it would
// otherwise do first.
func WithSigbusSource(s SigbusSource) Option {
	return func(c *Cache) { c.sigbus = s }
}

// WithAuditSink installs an optional audit trail for registrations,
// evictions, and faults. Defaults to no auditing.
func WithAuditSink(a audit.Sink) Option {
	return func(c *Cache) { c.audit = a }
}

// New creates a Cache with a reference count of one.
func New(opts ...Option) (*Cache, error) {
	c := &Cache{
		refCount:    1,
		logger:      slog.Default(),
		maxContexts: DefaultMaxContexts,
		minWindows:  DefaultMinWindows,
		windowSize:  defaultWindowSize(),
		fds:         make(map[int]*FileDescriptor),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fatal == nil {
		c.fatal = defaultFatal(c.logger)
	}
	if c.maxContexts <= 0 {
		return nil, fmt.Errorf("mmapcache: max contexts must be positive, got %d", c.maxContexts)
	}
	if c.minWindows < 0 {
		return nil, fmt.Errorf("mmapcache: min windows must not be negative, got %d", c.minWindows)
	}
	if c.windowSize == 0 {
		return nil, fmt.Errorf("mmapcache: window size must be positive")
	}
	c.contexts = make([]*Context, c.maxContexts)
	return c, nil
}

// Ref increments the reference count and returns c, mirroring the
// original's DEFINE_TRIVIAL_REF_UNREF_FUNC idiom.
func (c *Cache) Ref() *Cache {
	c.refCount++
	return c
}

// Unref decrements the reference count. At zero it tears the cache
// down: every context is detached, every remaining file descriptor
// (and every window it owns, pinned or not) is freed, and anything
// left on the unused list is unmapped. No mapping outlives this call.
func (c *Cache) Unref() {
	c.refCount--
	if c.refCount > 0 {
		return
	}
	for i, ctx := range c.contexts {
		if ctx != nil {
			c.contextFree(ctx)
			c.contexts[i] = nil
		}
	}
	for _, f := range c.fds {
		c.freeFD(f)
	}
	for c.unusedTail != nil {
		c.windowFree(c.unusedTail)
	}
}

// MaxContexts returns the number of context slots this cache was
// constructed with.
func (c *Cache) MaxContexts() int { return c.maxContexts }

// NumWindows returns the number of windows currently allocated,
// whether in use, unused-but-parked, or pinned.
func (c *Cache) NumWindows() int { return c.nWindows }
