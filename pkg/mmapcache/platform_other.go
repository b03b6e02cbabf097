//go:build !linux

// pkg/mmapcache/platform_other.go
// Stub platform backend for everything that isn't Linux.
//
// LEARN: SIGBUS-based fault recovery and MAP_FIXED re-mapping are
// POSIX/Linux concepts the rest of this package assumes throughout
// (spec-level, not a Go limitation). Windows has no mmap-time SIGBUS
// equivalent at all (a truncated mapped file raises a structured
// exception instead), so rather than fake a mapping that silently
// cannot participate in fault recovery, this platform reports itself
// unsupported.

package mmapcache

// ProtRead and ProtWrite mirror the POSIX PROT_READ/PROT_WRITE values
// for API symmetry with platform_linux.go; mmap itself always fails
// with ErrUnsupportedPlatform on this build.
const (
	ProtRead  = 0x1
	ProtWrite = 0x2
)

func pageSize() int { return 4096 }

func platformMmap(fd int, offset int64, length int, prot int) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

func isOutOfMemory(err error) bool {
	return false
}

func platformMunmap(data []byte) error {
	return ErrUnsupportedPlatform
}

func platformRemapAnonymous(data []byte, prot int) error {
	return ErrUnsupportedPlatform
}
