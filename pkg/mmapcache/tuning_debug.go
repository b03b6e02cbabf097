//go:build mmapcache_debugwindow

// pkg/mmapcache/tuning_debug.go
// Debug tuning, enabled by building with -tags mmapcache_debugwindow.
//
// LEARN: shrinking every window to a single page and destroying it the
// instant its last context detaches (instead of parking it on the
// unused LRU) turns a use-after-unmap bug into an immediate SIGSEGV on
// the very next access, rather than a read that happens to still find
// the old bytes because the page was never reused. This trades
// performance for a much shorter debugging loop and is never enabled
// in a release build.

package mmapcache

func defaultWindowSize() uint64 { return uint64(pageSize()) }

const debugImmediateFree = true
