package policy

import (
	"blockheap/internal/blocklayout"
	"blockheap/internal/freelist"
)

// adjustedSize converts a caller-requested payload size into the actual
// block size to search for: header + footer overhead (DW), rounded up to
// the next DW multiple, floored at the minimum block size.
func adjustedSize(size uint64) uint64 {
	if size <= blocklayout.DW {
		return 2 * blocklayout.DW
	}
	return roundUpDW(size + blocklayout.DW)
}

// findFit walks the free list for the first block of at least asize bytes.
// If the caller has requested this exact size more than RepeatThreshold
// times in a row, it skips the walk and extends the heap directly by
// max(asize, MinBlock) bytes — avoiding a linear rescan of a free list that
// a long run of same-size requests would otherwise make artificially
// expensive.
func (h *Heap) findFit(asize uint64) (uint64, bool) {
	if asize == h.lastSize {
		h.repeatCount++
	} else {
		h.lastSize = asize
		h.repeatCount = 0
	}

	if h.repeatCount > RepeatThreshold {
		want := asize
		if want < blocklayout.MinBlock {
			want = blocklayout.MinBlock
		}
		return h.extendHeap(want)
	}

	data := h.prov.Bytes()
	for bp := h.list.Head; bp != blocklayout.NullAddr; bp = blocklayout.FreeNext(data, bp) {
		if blocklayout.BlockSize(data, bp) >= asize {
			return bp, true
		}
	}
	return 0, false
}

// place carves asize bytes out of the free block bp, splitting off and
// re-freeing the remainder when it's large enough to stand on its own as a
// block (>= MinBlock). bp must currently be on the free list.
func (h *Heap) place(bp, asize uint64) {
	data := h.prov.Bytes()
	csize := blocklayout.BlockSize(data, bp)

	freelist.Remove(data, h.list, bp)

	if csize-asize >= blocklayout.MinBlock {
		blocklayout.SetBlock(data, bp, asize, true)
		rem := blocklayout.NextBlock(data, bp)
		blocklayout.SetBlock(data, rem, csize-asize, false)
		freelist.Insert(data, h.list, rem)
	} else {
		blocklayout.SetBlock(data, bp, csize, true)
	}
}

// Allocate reserves a block able to hold size bytes and returns its address.
// It returns (0, false) if size is zero or the heap cannot be grown far
// enough to satisfy the request.
func (h *Heap) Allocate(size uint64) (uint64, bool) {
	if size == 0 {
		return 0, false
	}

	asize := adjustedSize(size)

	if bp, ok := h.findFit(asize); ok {
		h.place(bp, asize)
		return bp, true
	}

	want := asize
	if want < ChunkSize {
		want = ChunkSize
	}
	bp, ok := h.extendHeap(want)
	if !ok {
		return 0, false
	}
	h.place(bp, asize)
	return bp, true
}
