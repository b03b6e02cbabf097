// pkg/mmapcache/context.go
// Context is a caller-assigned access slot: it remembers the last
// window a particular reader last touched, so a sequence of nearby
// reads from that reader hits the fast path instead of re-scanning a
// file's window list every time.

package mmapcache

// Context is a lightweight per-caller cursor into the window cache,
// identified by a small integer ID the caller chooses (commonly one
// per logical reader, e.g. one per open journal cursor).
type Context struct {
	cache *Cache
	id    int

	window *Window

	byWindowNext, byWindowPrev *Context
}

// ID returns the context's caller-assigned identifier.
func (ctx *Context) ID() int { return ctx.id }

// contextAdd returns the context slot for id, creating it if this is
// its first use.
func (c *Cache) contextAdd(id int) *Context {
	if ctx := c.contexts[id]; ctx != nil {
		return ctx
	}
	ctx := &Context{cache: c, id: id}
	c.contexts[id] = ctx
	return ctx
}

// contextFree detaches ctx from whatever window it points at and
// clears its slot.
func (c *Cache) contextFree(ctx *Context) {
	c.contextDetachWindow(ctx)
	c.contexts[ctx.id] = nil
}

// contextDetachWindow clears ctx's window pointer and removes ctx
// from that window's by-window list. If the window has no other
// context pointing at it and isn't pinned, it is parked on the unused
// LRU (or, in the debug build, destroyed immediately).
func (c *Cache) contextDetachWindow(ctx *Context) {
	w := ctx.window
	if w == nil {
		return
	}
	ctx.window = nil

	if ctx.byWindowPrev != nil {
		ctx.byWindowPrev.byWindowNext = ctx.byWindowNext
	} else {
		w.contexts = ctx.byWindowNext
	}
	if ctx.byWindowNext != nil {
		ctx.byWindowNext.byWindowPrev = ctx.byWindowPrev
	}
	ctx.byWindowNext, ctx.byWindowPrev = nil, nil

	if w.contexts == nil && !w.keepAlways {
		if debugImmediateFree {
			c.windowFree(w)
		} else {
			c.pushUnused(w)
		}
	}
}

// contextAttachWindow points ctx at w, detaching ctx from any window
// it previously pointed at and removing w from the unused LRU if it
// was parked there.
func (c *Cache) contextAttachWindow(ctx *Context, w *Window) {
	if ctx.window == w {
		return
	}
	c.contextDetachWindow(ctx)

	if w.inUnused {
		c.removeUnused(w)
	}

	ctx.window = w
	ctx.byWindowNext = w.contexts
	ctx.byWindowPrev = nil
	if w.contexts != nil {
		w.contexts.byWindowPrev = ctx
	}
	w.contexts = ctx
}
