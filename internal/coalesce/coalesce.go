// Package coalesce implements immediate boundary-tag coalescing: merging a
// just-freed block with whichever of its neighbors are also free, then
// inserting the (possibly merged) result into the free list.
package coalesce

import (
	"blockheap/internal/blocklayout"
	"blockheap/internal/freelist"
)

// Coalesce merges bp with its free neighbors and returns the address of the
// resulting block, already inserted into list. bp's own header/footer must
// already be written as free; bp itself must not yet be on list.
func Coalesce(data []byte, list *freelist.List, bp uint64) uint64 {
	prev := blocklayout.PrevBlock(data, bp)
	// prev == bp means the word at bp-DW reads as size 0, i.e. there is no
	// real previous block, so treat it as allocated. At the first real block
	// prev is the prologue, which is allocated and stops the merge there.
	prevFree := prev != bp && !blocklayout.IsAllocated(data, prev)

	next := blocklayout.NextBlock(data, bp)
	nextFree := !blocklayout.IsAllocated(data, next)

	size := blocklayout.BlockSize(data, bp)

	switch {
	case !prevFree && !nextFree:
		// neither neighbor is free
	case !prevFree && nextFree:
		size += blocklayout.BlockSize(data, next)
		freelist.Remove(data, list, next)
		blocklayout.SetBlock(data, bp, size, false)
	case prevFree && !nextFree:
		size += blocklayout.BlockSize(data, prev)
		freelist.Remove(data, list, prev)
		bp = prev
		blocklayout.SetBlock(data, bp, size, false)
	default: // both free
		size += blocklayout.BlockSize(data, prev) + blocklayout.BlockSize(data, next)
		freelist.Remove(data, list, prev)
		freelist.Remove(data, list, next)
		bp = prev
		blocklayout.SetBlock(data, bp, size, false)
	}

	freelist.Insert(data, list, bp)
	return bp
}
