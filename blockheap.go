// Package blockheap implements a boundary-tagged, explicit-free-list
// dynamic memory allocator over a growable byte region. It plays the role
// of malloc/free/realloc for callers that want addresses into a single
// contiguous buffer — an mmap'd region, a shared-memory segment, or a plain
// in-process byte slice — rather than Go heap pointers.
//
// A Heap is single-threaded: callers that share one across goroutines must
// serialize access themselves.
package blockheap

import (
	"io"

	"blockheap/internal/checker"
	"blockheap/internal/errs"
	"blockheap/internal/policy"
	"blockheap/region"
)

// Sentinel errors, re-exported so callers can errors.Is against them without
// importing the internal packages.
var (
	ErrOutOfMemory        = errs.ErrOutOfMemory
	ErrNotInitialized     = errs.ErrNotInitialized
	ErrAlreadyInitialized = errs.ErrAlreadyInitialized
	ErrRegionUnsupported  = errs.ErrRegionUnsupported
)

// NullAddr is the address returned (and accepted) in place of a pointer to
// denote "no block" — analogous to C's NULL. Address 0 always falls inside
// the heap's leading alignment pad, which never holds a real block.
const NullAddr = 0

// Heap is an allocator bound to one region.Provider.
type Heap struct {
	p *policy.Heap
}

// New returns a Heap over prov. Init must be called once before Allocate,
// Free, Reallocate or CheckHeap.
func New(prov region.Provider) *Heap {
	return &Heap{p: policy.New(prov)}
}

// NewInMemory is a convenience constructor for a Heap backed by a single
// pre-allocated []byte, with no OS dependency — the usual choice for tests
// and for programs that don't need the allocation to live in shared or
// otherwise externally-visible memory.
func NewInMemory(capacity int64) *Heap {
	return New(region.NewMemory(capacity))
}

// Init lays down the heap's sentinels and its first free block. Calling it
// twice on the same Heap returns ErrAlreadyInitialized.
func (h *Heap) Init() error {
	if h.p.Initialized() {
		return ErrAlreadyInitialized
	}
	ok, err := h.p.Init()
	if err != nil {
		return err
	}
	if !ok {
		return ErrOutOfMemory
	}
	return nil
}

// Allocate reserves a block able to hold size bytes and returns its
// address. size == 0 returns (NullAddr, nil) with no effect, mirroring
// malloc(0)'s permitted behavior.
func (h *Heap) Allocate(size uint64) (uint64, error) {
	if !h.p.Initialized() {
		return NullAddr, ErrNotInitialized
	}
	bp, ok := h.p.Allocate(size)
	if !ok {
		if size == 0 {
			return NullAddr, nil
		}
		return NullAddr, ErrOutOfMemory
	}
	return bp, nil
}

// Free releases the block at addr. Freeing NullAddr is a no-op.
func (h *Heap) Free(addr uint64) error {
	if !h.p.Initialized() {
		return ErrNotInitialized
	}
	h.p.Free(addr)
	return nil
}

// Reallocate resizes the block at addr to hold size bytes, preserving its
// contents up to the smaller of the old and new sizes. addr == NullAddr
// behaves like Allocate(size); size == 0 behaves like Free(addr).
func (h *Heap) Reallocate(addr uint64, size uint64) (uint64, error) {
	if !h.p.Initialized() {
		return NullAddr, ErrNotInitialized
	}
	bp, ok := h.p.Reallocate(addr, size)
	if !ok {
		if size == 0 {
			return NullAddr, nil
		}
		return NullAddr, ErrOutOfMemory
	}
	return bp, nil
}

// Bytes returns the heap's current committed byte region. Callers may read
// and write through it directly at addresses returned by Allocate, but
// must not retain the slice across a call that might grow the heap
// (Allocate, Reallocate, or a Free that triggers no growth is safe).
func (h *Heap) Bytes() []byte {
	return h.p.Bytes()
}

// CheckHeap walks the block chain and the free list, cross-checks that they
// agree on which blocks are free, and returns every violation found. An
// empty, non-nil-vs-nil-agnostic result means the heap is consistent. If w
// is non-nil, a human-readable dump of every block is written to it first.
func (h *Heap) CheckHeap(w io.Writer) []checker.Violation {
	if !h.p.Initialized() {
		return []checker.Violation{{Address: NullAddr, Message: ErrNotInitialized.Error()}}
	}

	data := h.p.Bytes()
	prologue := h.p.PrologueBp()

	if w != nil {
		checker.Dump(w, data, prologue)
	}

	violations := checker.Walk(data, prologue)
	_, listViolations := checker.WalkFreeList(data, h.p.FreeListHead())
	violations = append(violations, listViolations...)
	violations = append(violations, checker.CrossCheck(data, prologue, h.p.FreeListHead())...)
	return violations
}
