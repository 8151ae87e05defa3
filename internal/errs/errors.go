// Package errs holds the sentinel errors shared across the allocator's
// internal packages and re-exported at the module root.
package errs

import "errors"

var (
	// ErrOutOfMemory is returned when the region provider refuses to grow
	// the heap window far enough to satisfy a request.
	ErrOutOfMemory = errors.New("blockheap: out of memory")

	// ErrNotInitialized is returned by any operation performed on a Heap
	// before Init has succeeded.
	ErrNotInitialized = errors.New("blockheap: not initialized")

	// ErrAlreadyInitialized is returned by Init when called more than once
	// on the same Heap.
	ErrAlreadyInitialized = errors.New("blockheap: already initialized")

	// ErrRegionUnsupported is returned by region providers that have no
	// implementation on the current platform.
	ErrRegionUnsupported = errors.New("blockheap: region provider unsupported on this platform")

	// ErrBadIncrement is returned by Provider.Extend for a non-positive
	// increment.
	ErrBadIncrement = errors.New("blockheap: region extend increment must be positive")
)
