package policy

import (
	"blockheap/internal/blocklayout"
	"blockheap/internal/freelist"
)

// Reallocate resizes the block at bp to hold size bytes, preserving its
// contents up to the smaller of the old and new sizes. A null bp behaves
// like Allocate(size); a zero size behaves like Free(bp) and returns
// (0, false), since there is no block left to hand back.
//
// The overhead added to size before comparing against the current block
// size is 2*WSIZE (header + footer, equal to DW), so newsize <= oldsize
// holds exactly when the current payload already fits size bytes. Unlike
// adjustedSize, newsize is not rounded up to a DW multiple or floored at
// MinBlock.
func (h *Heap) Reallocate(bp, size uint64) (uint64, bool) {
	if size == 0 {
		h.Free(bp)
		return 0, false
	}
	if bp == blocklayout.NullAddr {
		return h.Allocate(size)
	}

	data := h.prov.Bytes()
	oldsize := blocklayout.BlockSize(data, bp)
	newsize := size + 2*blocklayout.WSIZE

	if newsize <= oldsize {
		return bp, true
	}

	next := blocklayout.NextBlock(data, bp)
	if !blocklayout.IsAllocated(data, next) {
		merged := oldsize + blocklayout.BlockSize(data, next)
		if merged >= newsize {
			freelist.Remove(data, h.list, next)
			blocklayout.SetBlock(data, bp, merged, true)
			return bp, true
		}
	}

	newBp, ok := h.Allocate(size)
	if !ok {
		return 0, false
	}
	data = h.prov.Bytes()

	copyLen := oldsize - 2*blocklayout.WSIZE
	if size < copyLen {
		copyLen = size
	}
	copy(data[newBp:newBp+copyLen], data[bp:bp+copyLen])

	h.Free(bp)
	return newBp, true
}
