// Package freelist implements the doubly-linked, LIFO explicit free list
// threaded through free blocks' payload words. It holds no state of its own
// beyond the head offset — the actual prev/next links live inside the heap
// bytes, via blocklayout's free-node accessors.
package freelist

import "blockheap/internal/blocklayout"

// List is the free list's head pointer. The zero value is an empty list.
type List struct {
	Head uint64
}

// New returns an empty free list.
func New() *List {
	return &List{Head: blocklayout.NullAddr}
}

// Insert pushes bp onto the front of the list (LIFO: most-recently-freed
// first). bp's header/footer must already be written as free.
func Insert(data []byte, list *List, bp uint64) {
	prevHead := list.Head
	blocklayout.SetFreeNext(data, bp, prevHead)
	if prevHead != blocklayout.NullAddr {
		blocklayout.SetFreePrev(data, prevHead, bp)
	}
	blocklayout.SetFreePrev(data, bp, blocklayout.NullAddr)
	list.Head = bp
}

// Remove unlinks bp from the list. bp must currently be on the list.
func Remove(data []byte, list *List, bp uint64) {
	prev := blocklayout.FreePrev(data, bp)
	next := blocklayout.FreeNext(data, bp)
	if prev != blocklayout.NullAddr {
		blocklayout.SetFreeNext(data, prev, next)
	} else {
		list.Head = next
	}
	if next != blocklayout.NullAddr {
		blocklayout.SetFreePrev(data, next, prev)
	}
}
