// Package policy implements the allocator's four public operations —
// Init, Allocate, Free, Reallocate — on top of blocklayout, freelist and
// coalesce. It owns the single allocator instance: the heap's region
// provider, free-list head, and repeat-pattern counters are fields of Heap
// rather than package globals, so the traditional C-style global API
// becomes a thin adapter bound to one instance (the root package does that
// binding).
package policy

import (
	"blockheap/internal/blocklayout"
	"blockheap/internal/coalesce"
	"blockheap/internal/freelist"
	"blockheap/region"
)

const (
	// ChunkSize is how much to grow the heap by, at minimum, when no free
	// block satisfies a request and the caller's own size is smaller.
	ChunkSize = 4096

	// RepeatThreshold is how many consecutive identical-size allocations
	// are tolerated before find_fit bypasses the free-list walk. Tunable,
	// not load-bearing.
	RepeatThreshold = 30

	// initRegionBytes is the pad + prologue + epilogue setup Init writes
	// before requesting the first real free block.
	initRegionBytes = 6 * blocklayout.WSIZE // W pad + 4W prologue + W epilogue
)

// Heap is one allocator instance: a heap window (via its region.Provider),
// the explicit free list threaded through it, and the repeat-pattern
// escape-hatch counters. Heap is single-threaded and non-reentrant — every
// method call must be externally serialized by the caller; Heap does no
// locking of its own.
type Heap struct {
	prov region.Provider
	list *freelist.List

	initialized bool
	lastSize    uint64
	repeatCount int
}

// New returns a Heap bound to prov. Init must be called before any other
// method.
func New(prov region.Provider) *Heap {
	return &Heap{prov: prov, list: freelist.New()}
}

// Initialized reports whether Init has already succeeded.
func (h *Heap) Initialized() bool { return h.initialized }

// Bytes returns the current committed heap region, for callers (the
// consistency checker) that need to read it directly.
func (h *Heap) Bytes() []byte { return h.prov.Bytes() }

// PrologueBp returns the address of the prologue sentinel block, the
// traversal starting point for anything walking the block chain.
func (h *Heap) PrologueBp() uint64 { return 2 * blocklayout.WSIZE }

// FreeListHead returns the current head of the explicit free list.
func (h *Heap) FreeListHead() uint64 { return h.list.Head }

// Init lays down the pad, prologue, and epilogue sentinels, then extends the
// heap with one free block of minimum size. It must be called exactly once.
func (h *Heap) Init() (bool, error) {
	if _, err := h.prov.Extend(initRegionBytes); err != nil {
		return false, err
	}
	data := h.prov.Bytes()

	prologueBp := uint64(2 * blocklayout.WSIZE)
	blocklayout.SetBlock(data, prologueBp, 4*blocklayout.WSIZE, true)

	epilogueOff := blocklayout.Hdr(blocklayout.NextBlock(data, prologueBp))
	blocklayout.SetEpilogue(data, epilogueOff)

	if _, ok := h.extendHeap(blocklayout.MinBlock); !ok {
		return false, nil
	}
	h.initialized = true
	return true, nil
}

// extendHeap grows the committed region by enough bytes for a new free
// block of at least want bytes (rounded up to a DW multiple, floored at
// MinBlock), writes its header/footer and a fresh epilogue after it, and
// coalesces it with whatever free block it's now adjacent to. The new
// block's header overwrites the position the old epilogue header occupied.
func (h *Heap) extendHeap(want uint64) (uint64, bool) {
	size := roundUpDW(want)
	if size < blocklayout.MinBlock {
		size = blocklayout.MinBlock
	}

	before := int64(len(h.prov.Bytes()))
	if _, err := h.prov.Extend(int64(size)); err != nil {
		return 0, false
	}
	data := h.prov.Bytes()

	bp := uint64(before)
	blocklayout.SetBlock(data, bp, size, false)
	blocklayout.SetEpilogue(data, bp+size-blocklayout.WSIZE)

	merged := coalesce.Coalesce(data, h.list, bp)
	return merged, true
}

func roundUpDW(n uint64) uint64 {
	return (n + blocklayout.DW - 1) / blocklayout.DW * blocklayout.DW
}
