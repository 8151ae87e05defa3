//go:build unix

package region

import (
	"sync"

	"golang.org/x/sys/unix"

	"blockheap/internal/errs"
)

// mmapProvider reserves the full capacity up front with an anonymous,
// unreadable mapping and commits pages as Extend is called, by flipping
// their protection to read/write. This is what makes the provider behave
// like sbrk: the reservation never moves, so every offset Extend has ever
// returned stays valid for the provider's lifetime, without the allocator
// having to cope with relocation.
type mmapProvider struct {
	mu        sync.Mutex
	data      []byte
	capacity  int64
	committed int64
	protected int64
	pageSize  int64
}

// NewMMap reserves capacity bytes of address space and returns a Provider
// that commits it incrementally. capacity is the hard ceiling the heap can
// ever grow to; Extend past it returns errs.ErrOutOfMemory.
func NewMMap(capacity int64) (Provider, error) {
	if capacity <= 0 {
		return nil, errs.ErrBadIncrement
	}
	data, err := unix.Mmap(-1, 0, int(capacity), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return &mmapProvider{
		data:     data,
		capacity: capacity,
		pageSize: int64(unix.Getpagesize()),
	}, nil
}

func (p *mmapProvider) Extend(increment int64) (int64, error) {
	if increment <= 0 {
		return 0, errs.ErrBadIncrement
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	newCommitted := p.committed + increment
	if newCommitted > p.capacity {
		return 0, errs.ErrOutOfMemory
	}
	if newCommitted > p.protected {
		newProtected := roundUp(newCommitted, p.pageSize)
		if newProtected > p.capacity {
			newProtected = p.capacity
		}
		if err := unix.Mprotect(p.data[:newProtected], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return 0, err
		}
		p.protected = newProtected
	}
	off := p.committed
	p.committed = newCommitted
	return off, nil
}

func (p *mmapProvider) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data[:p.committed]
}

func (p *mmapProvider) Low() int64  { return 0 }
func (p *mmapProvider) High() int64 { return p.committed }
func (p *mmapProvider) Size() int64 { return p.committed }

func (p *mmapProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil
	}
	err := unix.Munmap(p.data)
	p.data = nil
	return err
}

func roundUp(n, a int64) int64 {
	return (n + a - 1) / a * a
}
