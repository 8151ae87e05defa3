package freelist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"blockheap/internal/blocklayout"
)

func mkFreeBlock(data []byte, bp, size uint64) {
	blocklayout.SetBlock(data, bp, size, false)
}

func collect(data []byte, list *List) []uint64 {
	var out []uint64
	for bp := list.Head; bp != blocklayout.NullAddr; bp = blocklayout.FreeNext(data, bp) {
		out = append(out, bp)
	}
	return out
}

func TestInsertIsLIFO(t *testing.T) {
	data := make([]byte, 512)
	list := New()
	require.Equal(t, blocklayout.NullAddr, list.Head)

	mkFreeBlock(data, 64, 32)
	mkFreeBlock(data, 96, 32)
	mkFreeBlock(data, 128, 32)

	Insert(data, list, 64)
	Insert(data, list, 96)
	Insert(data, list, 128)

	require.Equal(t, []uint64{128, 96, 64}, collect(data, list))
}

func TestRemoveHead(t *testing.T) {
	data := make([]byte, 512)
	list := New()
	mkFreeBlock(data, 64, 32)
	mkFreeBlock(data, 96, 32)
	Insert(data, list, 64)
	Insert(data, list, 96)

	Remove(data, list, 96)
	require.Equal(t, []uint64{64}, collect(data, list))
}

func TestRemoveMiddle(t *testing.T) {
	data := make([]byte, 512)
	list := New()
	mkFreeBlock(data, 64, 32)
	mkFreeBlock(data, 96, 32)
	mkFreeBlock(data, 128, 32)
	Insert(data, list, 64)
	Insert(data, list, 96)
	Insert(data, list, 128)

	Remove(data, list, 96)
	require.Equal(t, []uint64{128, 64}, collect(data, list))
}

func TestRemoveTail(t *testing.T) {
	data := make([]byte, 512)
	list := New()
	mkFreeBlock(data, 64, 32)
	mkFreeBlock(data, 96, 32)
	Insert(data, list, 64)
	Insert(data, list, 96)

	Remove(data, list, 64)
	require.Equal(t, []uint64{96}, collect(data, list))
}

func TestRemoveOnlyElementEmptiesList(t *testing.T) {
	data := make([]byte, 512)
	list := New()
	mkFreeBlock(data, 64, 32)
	Insert(data, list, 64)

	Remove(data, list, 64)
	require.Equal(t, blocklayout.NullAddr, list.Head)
	require.Empty(t, collect(data, list))
}
