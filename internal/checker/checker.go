// Package checker implements heap consistency checking: walking the block
// chain and the free list independently, and cross-checking that what each
// one reports agrees with the other.
package checker

import (
	"fmt"
	"io"

	"blockheap/internal/blocklayout"
)

// Violation describes one consistency check failure, anchored to the block
// address where it was detected.
type Violation struct {
	Address uint64
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("block %d: %s", v.Address, v.Message)
}

// Walk checks the prologue's shape (an allocated MinBlock-sized block with
// matching header and footer), then traverses the block chain from the
// first real block (immediately after the prologue, at prologueBp+4*WSIZE)
// to the epilogue, checking: DW alignment of every payload address,
// header/footer agreement, size a DW multiple and at least MinBlock, and no
// two adjacent free blocks (coalescing should have merged them). It does
// not read the free list; CrossCheck compares the two.
func Walk(data []byte, prologueBp uint64) []Violation {
	var violations []Violation

	if blocklayout.BlockSize(data, prologueBp) != blocklayout.MinBlock ||
		!blocklayout.IsAllocated(data, prologueBp) ||
		blocklayout.HeaderWord(data, prologueBp) != blocklayout.FooterWord(data, prologueBp) {
		violations = append(violations, Violation{prologueBp, "prologue block is malformed"})
	}

	bp := blocklayout.NextBlock(data, prologueBp)
	prevFree := false
	for {
		size := blocklayout.BlockSize(data, bp)
		if size == 0 {
			// epilogue: zero-size, allocated, terminates the walk.
			if !blocklayout.IsAllocated(data, bp) {
				violations = append(violations, Violation{bp, "epilogue marked free"})
			}
			break
		}

		if bp%blocklayout.DW != 0 {
			violations = append(violations, Violation{bp, "payload address is not double-word aligned"})
		}

		hdr := blocklayout.HeaderWord(data, bp)
		ftr := blocklayout.FooterWord(data, bp)
		if hdr != ftr {
			violations = append(violations, Violation{bp, "header and footer disagree"})
		}
		if size%blocklayout.DW != 0 {
			violations = append(violations, Violation{bp, "size is not a double-word multiple"})
		}
		if size < blocklayout.MinBlock {
			violations = append(violations, Violation{bp, "block smaller than the minimum block size"})
		}

		free := !blocklayout.IsAllocated(data, bp)
		if free && prevFree {
			violations = append(violations, Violation{bp, "adjacent free blocks were not coalesced"})
		}
		prevFree = free

		bp = blocklayout.NextBlock(data, bp)
	}

	return violations
}

// WalkFreeList traverses the explicit free list from head, returning every
// address it visits plus any violations found along the way: a cycle (an
// address visited twice), a prev/next link that doesn't point back
// correctly, or a list member whose own header says it's allocated.
func WalkFreeList(data []byte, head uint64) (visited []uint64, violations []Violation) {
	seen := make(map[uint64]bool)
	prev := blocklayout.NullAddr

	for bp := head; bp != blocklayout.NullAddr; {
		if seen[bp] {
			violations = append(violations, Violation{bp, "free list contains a cycle"})
			break
		}
		seen[bp] = true
		visited = append(visited, bp)

		if blocklayout.IsAllocated(data, bp) {
			violations = append(violations, Violation{bp, "free list entry is marked allocated"})
		}
		if blocklayout.FreePrev(data, bp) != prev {
			violations = append(violations, Violation{bp, "free-list prev link does not point back to predecessor"})
		}

		prev = bp
		bp = blocklayout.FreeNext(data, bp)
	}

	return visited, violations
}

// CrossCheck reports every free block Walk saw that WalkFreeList's visited
// set missed, and every address WalkFreeList visited that Walk's free set
// didn't: the two traversals must agree on exactly which blocks are free.
func CrossCheck(data []byte, prologueBp, head uint64) []Violation {
	var violations []Violation

	free := make(map[uint64]bool)
	bp := blocklayout.NextBlock(data, prologueBp)
	for blocklayout.BlockSize(data, bp) != 0 {
		if !blocklayout.IsAllocated(data, bp) {
			free[bp] = true
		}
		bp = blocklayout.NextBlock(data, bp)
	}

	visited, _ := WalkFreeList(data, head)
	onList := make(map[uint64]bool, len(visited))
	for _, v := range visited {
		onList[v] = true
		if !free[v] {
			violations = append(violations, Violation{v, "free list entry is not a free block in the chain"})
		}
	}
	for v := range free {
		if !onList[v] {
			violations = append(violations, Violation{v, "free block in the chain is missing from the free list"})
		}
	}

	return violations
}

// Dump writes one line per block in the chain, in address order, noting
// size, allocation state, and (for free blocks) their list links.
func Dump(w io.Writer, data []byte, prologueBp uint64) {
	bp := blocklayout.NextBlock(data, prologueBp)
	for {
		size := blocklayout.BlockSize(data, bp)
		if size == 0 {
			fmt.Fprintf(w, "%d: epilogue\n", bp)
			return
		}
		if blocklayout.IsAllocated(data, bp) {
			fmt.Fprintf(w, "%d: allocated size=%d\n", bp, size)
		} else {
			fmt.Fprintf(w, "%d: free size=%d prev=%d next=%d\n",
				bp, size, blocklayout.FreePrev(data, bp), blocklayout.FreeNext(data, bp))
		}
		bp = blocklayout.NextBlock(data, bp)
	}
}
