// pkg/mmapcache/result.go
// TryGet is a convenience wrapper around Get for callers that want to
// carry an unwrapped outcome around (e.g. through a channel) instead
// of branching on the error immediately.

package mmapcache

import (
	"io/fs"

	"github.com/aaomidi/mmapcache/pkg/result"
)

// TryGet calls Get and wraps its outcome in a result.Result.
func (f *FileDescriptor) TryGet(contextID int, keepAlways bool, offset, size uint64, fi fs.FileInfo) result.Result[[]byte] {
	return result.FromPair(f.Get(contextID, keepAlways, offset, size, fi))
}
