// Package mmapcache implements a bounded pool of memory-mapped file
// windows with LRU eviction, a many-to-one context-to-window fast
// path, and SIGBUS fault recovery.
//
// The cache is single-threaded and cooperative: nothing in this
// package takes a lock, and every exported method must be called from
// one goroutine at a time (see pkg/concurrency for an opt-in wrapper
// that enforces this for callers that have more than one goroutine).
// A Cache owns a fixed number of Context slots and an unbounded
// number of FileDescriptor handles, each with its own list of Window
// mappings; windows are shared across file descriptors only in the
// sense that they all draw from the same unused-window LRU, never by
// two descriptors pointing at the same window.
package mmapcache
