package policy

import (
	"blockheap/internal/blocklayout"
	"blockheap/internal/coalesce"
)

// Free releases the block at bp, coalescing it with any free neighbors.
// Freeing the null address (0) is a no-op, mirroring free(NULL) in C.
func (h *Heap) Free(bp uint64) {
	if bp == blocklayout.NullAddr {
		return
	}
	data := h.prov.Bytes()
	size := blocklayout.BlockSize(data, bp)
	blocklayout.SetBlock(data, bp, size, false)
	coalesce.Coalesce(data, h.list, bp)
}
