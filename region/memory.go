package region

import "blockheap/internal/errs"

// memoryProvider is a portable, syscall-free Provider backed by a single
// pre-allocated []byte. It never touches the OS, so it runs anywhere and
// gives deterministic behavior for tests; grounded in the arena-byte-slice
// idiom used across the example pack for in-process allocator demos.
type memoryProvider struct {
	data      []byte
	committed int64
}

// NewMemory returns a Provider whose entire capacity is a single Go byte
// slice allocated up front. Extend never relocates it, so offsets handed
// out to the allocator stay valid for the provider's lifetime.
func NewMemory(capacity int64) Provider {
	return &memoryProvider{data: make([]byte, capacity)}
}

func (p *memoryProvider) Extend(increment int64) (int64, error) {
	if increment <= 0 {
		return 0, errs.ErrBadIncrement
	}
	newCommitted := p.committed + increment
	if newCommitted > int64(len(p.data)) {
		return 0, errs.ErrOutOfMemory
	}
	off := p.committed
	p.committed = newCommitted
	return off, nil
}

func (p *memoryProvider) Bytes() []byte { return p.data[:p.committed] }
func (p *memoryProvider) Low() int64   { return 0 }
func (p *memoryProvider) High() int64  { return p.committed }
func (p *memoryProvider) Size() int64  { return p.committed }
func (p *memoryProvider) Close() error { return nil }
