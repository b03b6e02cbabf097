//go:build !mmapcache_debugwindow

// pkg/mmapcache/tuning.go
// Release tuning: windows span a generous default size, and a
// last-context-detach parks the window on the unused LRU instead of
// destroying it, so a nearby future access can reuse the mapping.

package mmapcache

const defaultWindowSizeBytes = 8 * 1024 * 1024

func defaultWindowSize() uint64 { return defaultWindowSizeBytes }

// debugImmediateFree is false in the release build: see tuning_debug.go.
const debugImmediateFree = false
