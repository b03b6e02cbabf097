// pkg/mmapcache/lookup.go
// Get implements the three-tier lookup: the calling context's current
// window (fast path), a linear scan of the file's other windows
// (medium path), and finally mapping a new window (slow path).

package mmapcache

import "io/fs"

// Get returns the bytes of f covering [offset, offset+size). contextID
// must be in [0, cache.MaxContexts()); it identifies the caller so
// repeated nearby reads from the same logical reader hit the fast
// path. If keepAlways is true, the window ultimately serving this
// request is pinned and will never be evicted by ENOMEM pressure or
// parked on the unused LRU, even after every context detaches from it.
// fi is an optional (possibly nil) stat of the underlying file, used
// to clamp the window to the file's actual extent; passing nil skips
// that clamp, which the original does for anonymous/unsized mappings.
func (f *FileDescriptor) Get(contextID int, keepAlways bool, offset, size uint64, fi fs.FileInfo) ([]byte, error) {
	c := f.cache
	if contextID < 0 || contextID >= len(c.contexts) {
		return nil, ErrInvalidContext
	}
	if size == 0 {
		return nil, ErrInvalidSize
	}

	if ret, ok, err := c.tryContext(f, contextID, keepAlways, offset, size); err != nil {
		return nil, err
	} else if ok {
		return ret, nil
	}

	if ret, ok, err := c.findMmap(f, contextID, keepAlways, offset, size); err != nil {
		return nil, err
	} else if ok {
		return ret, nil
	}

	c.statMiss++
	return c.addMmap(f, contextID, keepAlways, offset, size, fi)
}

// tryContext is the fast path: does the context's current window
// already cover this request? A stale match (same window, but it no
// longer covers offset/size, or belongs to a different fd entirely
// now that the context was last reused for something else) is
// detached rather than just ignored, so it is free to be re-attached
// by findMmap or addMmap below.
func (c *Cache) tryContext(f *FileDescriptor, contextID int, keepAlways bool, offset, size uint64) ([]byte, bool, error) {
	ctx := c.contexts[contextID]
	if ctx == nil || ctx.window == nil {
		return nil, false, nil
	}
	w := ctx.window
	if !windowMatchesFD(w, f, offset, size) {
		c.contextDetachWindow(ctx)
		return nil, false, nil
	}
	if w.fd.sigbus {
		return nil, false, ErrPoisoned
	}
	if keepAlways {
		w.keepAlways = true
	}
	c.statHit++
	return windowSlice(w, offset, size), true, nil
}

// findMmap is the medium path: scan f's other windows for one that
// already covers this request, and if found, attach the context to
// it (creating the context slot on first use).
func (c *Cache) findMmap(f *FileDescriptor, contextID int, keepAlways bool, offset, size uint64) ([]byte, bool, error) {
	if f.sigbus {
		return nil, false, ErrPoisoned
	}
	var w *Window
	for cur := f.windowsHead; cur != nil; cur = cur.fdNext {
		if windowMatches(cur, offset, size) {
			w = cur
			break
		}
	}
	if w == nil {
		return nil, false, nil
	}

	ctx := c.contextAdd(contextID)
	c.contextAttachWindow(ctx, w)
	if keepAlways {
		w.keepAlways = true
	}
	c.statList++
	return windowSlice(w, offset, size), true, nil
}

// addMmap is the slow path: compute the window's span per the sizing
// policy, map it (evicting and retrying on ENOMEM as needed), and
// attach the requesting context to the freshly created or reused
// window.
func (c *Cache) addMmap(f *FileDescriptor, contextID int, keepAlways bool, offset, size uint64, fi fs.FileInfo) ([]byte, error) {
	var fileSize uint64
	haveFileSize := fi != nil
	if haveFileSize {
		fileSize = uint64(fi.Size())
	}

	woffset, wsize, err := computeWindowSpan(offset, size, c.windowSize, uint64(pageSize()), fileSize, haveFileSize)
	if err != nil {
		return nil, err
	}

	data, err := c.mmapWithRetry(f.fd, f.prot, woffset, wsize)
	if err != nil {
		return nil, err
	}

	ctx := c.contextAdd(contextID)
	w := c.newOrReuseWindow(f, keepAlways, woffset, wsize, data)
	c.contextAttachWindow(ctx, w)

	return windowSlice(w, offset, size), nil
}
