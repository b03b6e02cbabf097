// pkg/mmapcache/sigbus.go
// SIGBUS fault handling. The cache never installs a signal handler
// itself; it only consumes a queue of already-captured fault
// addresses through the SigbusSource interface, which keeps this
// package testable without touching process-wide signal state.

package mmapcache

import (
	"unsafe"

	"github.com/aaomidi/mmapcache/pkg/audit"
)

// SigbusSource supplies addresses that faulted with SIGBUS while the
// caller's own signal handler was active. Pop returns the next queued
// address; ok is false once the queue is drained. A non-nil err means
// the source itself is broken (not merely empty) and ProcessSigbus
// treats that as fatal, since continuing would process faults out of
// order.
type SigbusSource interface {
	Pop() (addr uintptr, ok bool, err error)
}

// ProcessSigbus drains the installed SigbusSource, if any. Every
// queued address is attributed to the file descriptor owning the
// window it falls inside; that descriptor is marked poisoned. Once the
// queue is empty, every window belonging to a newly poisoned
// descriptor is invalidated (re-mapped as anonymous zero-filled
// memory) so outstanding pointers into it stay valid but stop serving
// file contents. An address that cannot be attributed to any window at
// all is unrecoverable — the fault could be anywhere, including inside
// unrelated heap memory — and is treated as fatal.
func (c *Cache) ProcessSigbus() {
	if c.sigbus == nil {
		return
	}

	faulted := false
	for {
		addr, ok, err := c.sigbus.Pop()
		if err != nil {
			c.fatal("mmapcache: sigbus source failed: %v", err)
			return
		}
		if !ok {
			break
		}

		f := c.attributeFault(addr)
		if f == nil {
			if c.audit != nil {
				c.audit.Record(audit.Event{Action: audit.ActionSigbusUnattributed, Detail: "no mapped window covers this address"})
			}
			c.fatal("mmapcache: sigbus at %#x could not be attributed to any mapped window", addr)
			return
		}
		if !f.sigbus {
			f.sigbus = true
			faulted = true
			if c.audit != nil {
				c.audit.Record(audit.Event{Action: audit.ActionFDPoisoned, FD: f.fd})
			}
		}
	}

	if !faulted {
		return
	}
	for _, f := range c.fds {
		if !f.sigbus {
			continue
		}
		for w := f.windowsHead; w != nil; w = w.fdNext {
			c.windowInvalidate(w)
		}
	}
}

// attributeFault returns the file descriptor owning the window that
// addr falls inside, or nil if no window covers it.
func (c *Cache) attributeFault(addr uintptr) *FileDescriptor {
	for _, f := range c.fds {
		for w := f.windowsHead; w != nil; w = w.fdNext {
			if len(w.data) == 0 {
				continue
			}
			base := uintptr(unsafe.Pointer(&w.data[0]))
			if addr >= base && addr < base+uintptr(len(w.data)) {
				return f
			}
		}
	}
	return nil
}

// GotSigbus drains any pending SIGBUS notifications and reports
// whether f is now poisoned.
func (f *FileDescriptor) GotSigbus() bool {
	f.cache.ProcessSigbus()
	return f.sigbus
}
