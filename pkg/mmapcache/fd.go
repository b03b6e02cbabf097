// pkg/mmapcache/fd.go
// FileDescriptor is a cache-managed handle for one raw file
// descriptor: the set of windows currently mapped over it, the
// protection it was registered with, and whether it has an
// outstanding SIGBUS fault.

package mmapcache

import "github.com/aaomidi/mmapcache/pkg/audit"

// FileDescriptor is returned by AddFD and is the handle callers use
// for every subsequent Get.
type FileDescriptor struct {
	cache *Cache
	fd    int
	prot  int

	sigbus bool

	windowsHead *Window // intrusive by-fd list, see Window.fdNext/fdPrev
}

// FD returns the raw file descriptor this handle wraps.
func (f *FileDescriptor) FD() int { return f.fd }

// Sigbus reports whether this file descriptor currently has an
// unresolved SIGBUS fault. While true, every window on this handle
// serves zero-filled anonymous memory rather than file contents.
func (f *FileDescriptor) Sigbus() bool { return f.sigbus }

// AddFD registers fd with the cache under the given protection flags
// (a combination of the platform's PROT_* constants) and returns its
// handle. Calling AddFD again for the same fd returns the existing
// handle unchanged: the first registration's prot wins, matching the
// original mmap_cache_add_fd, which never reconciles a second caller's
// protection request against the first's. A caller that needs a wider
// protection must register a distinct *os.File/fd, or track ownership
// itself so only one caller ever calls AddFD for a given descriptor.
func (c *Cache) AddFD(fd int, prot int) *FileDescriptor {
	if f, ok := c.fds[fd]; ok {
		return f
	}
	f := &FileDescriptor{cache: c, fd: fd, prot: prot}
	c.fds[fd] = f
	if c.audit != nil {
		c.audit.Record(audit.Event{Action: audit.ActionFDRegistered, FD: fd})
	}
	return f
}

// Lookup returns the handle previously registered for fd, if any.
func (c *Cache) Lookup(fd int) (*FileDescriptor, bool) {
	f, ok := c.fds[fd]
	return f, ok
}

// FreeFD drains any pending SIGBUS notifications first (so a fault
// that arrived for this handle is attributed before its windows
// disappear), then destroys every window on f — pinned or not — and
// removes f from the cache. It is the caller's responsibility to
// ensure no other context is mid-lookup against f when this runs; the
// cache enforces none of that itself (see the concurrency model).
func (c *Cache) FreeFD(f *FileDescriptor) {
	if f == nil {
		return
	}
	c.ProcessSigbus()
	c.freeFD(f)
}

// freeFD is the teardown body shared by FreeFD and Unref. It does not
// drain the SIGBUS queue; callers that need that ordering do it first.
func (c *Cache) freeFD(f *FileDescriptor) {
	for f.windowsHead != nil {
		c.windowFree(f.windowsHead)
	}
	delete(c.fds, f.fd)
	if c.audit != nil {
		c.audit.Record(audit.Event{Action: audit.ActionFDFreed, FD: f.fd})
	}
}
