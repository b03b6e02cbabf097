// pkg/mmapcache/window.go
// Window is one mmap'd span of a file. Windows form three intrusive
// lists at once: a per-file-descriptor list (fdNext/fdPrev), the
// cache-wide unused LRU (unusedNext/unusedPrev), and the head of a
// doubly-linked list of contexts currently pointed at it (contexts,
// via Context.byWindowNext/byWindowPrev).
//
// LEARN: this is the same "pointer fields embedded in the struct"
// technique a generic map-keyed LRU can't express, because here a
// window is pointed at by many contexts while a context points at at
// most one window — a relationship, not just a cache slot.

package mmapcache

import "github.com/aaomidi/mmapcache/pkg/audit"

// Window is one mmap'd region backing reads for a single
// FileDescriptor.
type Window struct {
	cache *Cache
	fd    *FileDescriptor

	invalidated bool // serving zero-filled anonymous memory, not the file
	keepAlways  bool // pinned: never parked on the unused LRU
	inUnused    bool

	data   []byte
	offset uint64 // page-aligned file offset this window starts at
	size   uint64 // == len(data), page-aligned

	fdNext, fdPrev         *Window
	unusedNext, unusedPrev *Window

	contexts *Context // head of the by-window context list
}

func pageAlign(n, pageSz uint64) uint64 {
	return (n + pageSz - 1) &^ (pageSz - 1)
}

// windowMatches reports whether w already covers [offset, offset+size).
func windowMatches(w *Window, offset, size uint64) bool {
	return offset >= w.offset && offset+size <= w.offset+w.size
}

func windowMatchesFD(w *Window, f *FileDescriptor, offset, size uint64) bool {
	return w.fd == f && windowMatches(w, offset, size)
}

// windowSlice returns the sub-slice of w.data covering [offset,
// offset+size), which the caller must have already verified with
// windowMatches. This is the Go realization of "pointer == window.ptr
// + (offset - window.offset)": a slice, not raw pointer arithmetic.
func windowSlice(w *Window, offset, size uint64) []byte {
	start := offset - w.offset
	return w.data[start : start+size]
}

// computeWindowSpan applies the sizing policy from section 4.3: round
// the request down to a page boundary, pad it out to at least
// windowSize (centered on the request when possible, but never
// extending before byte zero), then clamp to the file's actual size
// when fileSize is known.
func computeWindowSpan(offset, size, windowSize, pageSz uint64, fileSize uint64, haveFileSize bool) (woffset, wsize uint64, err error) {
	// The raw request, not the padded window, decides availability:
	// padding can walk the window's start back to 0, and checking the
	// padded start here would let an out-of-range request silently
	// resolve to some other, in-range window instead of failing.
	if haveFileSize && offset >= fileSize {
		return 0, 0, ErrAddrNotAvailable
	}

	woffset = offset &^ (pageSz - 1)
	wsize = pageAlign(size+(offset-woffset), pageSz)

	if wsize < windowSize {
		delta := pageAlign((windowSize-wsize)/2, pageSz)
		if delta > woffset {
			woffset = 0
		} else {
			woffset -= delta
		}
		wsize = windowSize
	}

	if haveFileSize && woffset+wsize > fileSize {
		wsize = pageAlign(fileSize-woffset, pageSz)
	}
	return woffset, wsize, nil
}

// mmapWithRetry maps [offset, offset+size) of fd, evicting the LRU
// tail and retrying on ENOMEM until either the mapping succeeds or
// there is nothing left to evict.
func (c *Cache) mmapWithRetry(fd int, prot int, offset uint64, size uint64) ([]byte, error) {
	for {
		data, err := platformMmap(fd, int64(offset), int(size), prot)
		if err == nil {
			return data, nil
		}
		if !isOutOfMemory(err) {
			return nil, WrapMmap("mmap", err)
		}
		if c.unusedTail == nil {
			return nil, ErrOutOfMemory
		}
		c.statEvict++
		if c.audit != nil {
			c.audit.Record(audit.Event{Action: audit.ActionWindowEvicted, FD: c.unusedTail.fd.fd, Offset: c.unusedTail.offset, Size: c.unusedTail.size, Detail: "evicted to satisfy ENOMEM"})
		}
		c.windowFree(c.unusedTail)
	}
}

// newOrReuseWindow allocates a fresh Window, or — once the pool has
// grown past minWindows and something sits on the unused LRU — reuses
// the LRU tail in place of allocating. Either way the returned window
// is already linked onto f's by-fd list and fully populated; it is
// not yet attached to any context.
func (c *Cache) newOrReuseWindow(f *FileDescriptor, keepAlways bool, woffset, wsize uint64, data []byte) *Window {
	var w *Window
	reused := c.unusedTail != nil && c.nWindows > c.minWindows
	if !reused {
		w = &Window{}
		c.nWindows++
	} else {
		w = c.unusedTail
		c.windowUnlink(w)
		if c.audit != nil {
			c.audit.Record(audit.Event{Action: audit.ActionWindowReused, FD: w.fd.fd, Offset: w.offset, Size: w.size, Detail: "reused for a new mapping"})
		}
	}

	*w = Window{
		cache:      c,
		fd:         f,
		keepAlways: keepAlways,
		data:       data,
		offset:     woffset,
		size:       wsize,
	}

	w.fdNext = f.windowsHead
	if f.windowsHead != nil {
		f.windowsHead.fdPrev = w
	}
	f.windowsHead = w

	if c.audit != nil {
		c.audit.Record(audit.Event{Action: audit.ActionWindowCreated, FD: f.fd, Offset: woffset, Size: wsize})
	}
	return w
}

// windowUnlink detaches w from every list it participates in and
// unmaps its memory, but does not decrement Cache.nWindows — that is
// windowFree's job, since newOrReuseWindow's reuse path unlinks a
// window it is about to repopulate, not discard.
func (c *Cache) windowUnlink(w *Window) {
	if w.data != nil {
		_ = platformMunmap(w.data)
		w.data = nil
	}

	if w.fd != nil {
		if w.fdPrev != nil {
			w.fdPrev.fdNext = w.fdNext
		} else {
			w.fd.windowsHead = w.fdNext
		}
		if w.fdNext != nil {
			w.fdNext.fdPrev = w.fdPrev
		}
		w.fdNext, w.fdPrev = nil, nil
	}

	if w.inUnused {
		c.removeUnused(w)
	}

	for ctx := w.contexts; ctx != nil; {
		next := ctx.byWindowNext
		ctx.window = nil
		ctx.byWindowNext, ctx.byWindowPrev = nil, nil
		ctx = next
	}
	w.contexts = nil
}

// windowFree unlinks w and retires its slot in the pool.
func (c *Cache) windowFree(w *Window) {
	c.windowUnlink(w)
	c.nWindows--
}

// windowInvalidate replaces w's backing pages with zero-filled
// anonymous memory at the same address, so every pointer already
// handed out into w stays valid but now reads zeroes instead of (now
// untrustworthy) file contents. Idempotent.
func (c *Cache) windowInvalidate(w *Window) {
	if w.invalidated {
		return
	}
	if err := platformRemapAnonymous(w.data, w.fd.prot); err != nil {
		c.fatal("mmapcache: failed to invalidate window fd=%d offset=%d: %v", w.fd.fd, w.offset, err)
		return
	}
	w.invalidated = true
	c.statFaults++
	if c.audit != nil {
		c.audit.Record(audit.Event{Action: audit.ActionWindowInvalidated, FD: w.fd.fd, Offset: w.offset, Size: w.size})
	}
}

func (c *Cache) pushUnused(w *Window) {
	w.unusedNext = c.unusedHead
	w.unusedPrev = nil
	if c.unusedHead != nil {
		c.unusedHead.unusedPrev = w
	}
	c.unusedHead = w
	if c.unusedTail == nil {
		c.unusedTail = w
	}
	w.inUnused = true
}

func (c *Cache) removeUnused(w *Window) {
	if w.unusedPrev != nil {
		w.unusedPrev.unusedNext = w.unusedNext
	} else {
		c.unusedHead = w.unusedNext
	}
	if w.unusedNext != nil {
		w.unusedNext.unusedPrev = w.unusedPrev
	} else {
		c.unusedTail = w.unusedPrev
	}
	w.unusedNext, w.unusedPrev = nil, nil
	w.inUnused = false
}
