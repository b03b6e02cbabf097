//go:build linux

// pkg/mmapcache/platform_linux.go
// Linux mmap/munmap primitives, plus the MAP_FIXED re-map used to
// invalidate a window after a SIGBUS fault.
//
// LEARN: golang.org/x/sys/unix.Mmap never exposes the addr argument of
// mmap(2) — it always asks the kernel to pick an address. Re-mapping a
// window "in place" (same address, new anonymous backing) after a
// SIGBUS needs MAP_FIXED with an explicit address, which only the raw
// syscall gives us.

package mmapcache

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ProtRead and ProtWrite are the platform's PROT_READ/PROT_WRITE
// values, exported so callers can build an AddFD protection mask
// without importing golang.org/x/sys/unix themselves.
const (
	ProtRead  = unix.PROT_READ
	ProtWrite = unix.PROT_WRITE
)

func pageSize() int {
	return unix.Getpagesize()
}

func platformMmap(fd int, offset int64, length int, prot int) ([]byte, error) {
	return unix.Mmap(fd, offset, length, prot, unix.MAP_SHARED)
}

func isOutOfMemory(err error) bool {
	return errors.Is(err, unix.ENOMEM)
}

func platformMunmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}

// platformRemapAnonymous replaces the pages backing data with a
// zero-filled anonymous private mapping at the exact same address. The
// slice header is unchanged; only what it points at changes. Used to
// keep serving reads from a window whose file turned out to be
// unreadable (truncated, I/O error) without moving every existing
// pointer into it.
func platformRemapAnonymous(data []byte, prot int) error {
	if len(data) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	_, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr,
		uintptr(len(data)),
		uintptr(prot),
		uintptr(unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_FIXED),
		^uintptr(0), // fd = -1, required for MAP_ANONYMOUS
		0,
	)
	if errno != 0 {
		return errno
	}
	return nil
}
