package blockheap_test

import (
	"math/rand"
	"testing"
	"time"

	"blockheap"
)

// acceptanceReport summarizes one run of the table below, in the style
// used for this project's earlier validation runs: a flat list of
// category/name results plus pass/fail counts, useful when this suite is
// invoked outside `go test` (e.g. piped through a report renderer).
type acceptanceReport struct {
	Timestamp time.Time
	Results   []testResult
	Summary   summary
}

type testResult struct {
	Category   string
	Name       string
	Passed     bool
	DurationMs int64
}

type summary struct {
	Total, Passed, Failed int
}

type testCase struct {
	Category string
	Name     string
	Fn       func(t *testing.T)
}

func TestAcceptance(t *testing.T) {
	report := &acceptanceReport{Timestamp: time.Now()}

	cases := []testCase{
		{"BasicLifecycle", "AllocateWriteReadFree", testAllocateWriteReadFree},
		{"BasicLifecycle", "DoubleInitFails", testDoubleInitFails},
		{"BasicLifecycle", "UninitializedOpsFail", testUninitializedOpsFail},
		{"ArgumentHandling", "AllocateZeroReturnsNull", testAllocateZeroReturnsNull},
		{"ArgumentHandling", "FreeNullIsNoop", testFreeNullIsNoop},
		{"ArgumentHandling", "ReallocateNullActsAsAllocate", testReallocateNullIsAllocate},
		{"ArgumentHandling", "ReallocateZeroFrees", testReallocateZeroFrees},
		{"Fragmentation", "FreeAdjacentBlocksCoalesce", testFreeAdjacentBlocksCoalesce},
		{"Fragmentation", "SplitThenReuseRemainder", testSplitThenReuseRemainder},
		{"Fragmentation", "InterleavedAllocFreePreservesConsistency", testInterleavedAllocFree},
		{"Reallocation", "GrowInPlaceIntoFreeNeighbor", testReallocGrowInPlace},
		{"Reallocation", "GrowCopiesWhenNoRoom", testReallocGrowCopies},
		{"Reallocation", "ShrinkKeepsAddress", testReallocShrinkKeepsAddress},
		{"SpaceExhaustion", "FixedCapacityExhausts", testFixedCapacityExhausts},
		{"Consistency", "CheckHeapCleanAfterMixedWorkload", testCheckHeapCleanAfterWorkload},
		{"RepeatPattern", "EscapeHatchStillProducesDistinctBlocks", testRepeatPatternDistinctBlocks},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.Category+"/"+tc.Name, func(t *testing.T) {
			start := time.Now()
			tr := testResult{Category: tc.Category, Name: tc.Name}
			defer func() {
				tr.DurationMs = time.Since(start).Milliseconds()
				tr.Passed = !t.Failed()
				report.Results = append(report.Results, tr)
			}()
			tc.Fn(t)
		})
	}

	report.Summary.Total = len(report.Results)
	for _, r := range report.Results {
		if r.Passed {
			report.Summary.Passed++
		} else {
			report.Summary.Failed++
		}
	}
	if report.Summary.Failed > 0 {
		t.Logf("acceptance summary: %+v", report.Summary)
	}
}

func newHeap(t *testing.T, capacity int64) *blockheap.Heap {
	t.Helper()
	h := blockheap.NewInMemory(capacity)
	if err := h.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return h
}

func testAllocateWriteReadFree(t *testing.T) {
	h := newHeap(t, 1<<20)
	addr, err := h.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	data := h.Bytes()
	copy(data[addr:addr+5], []byte("hello"))
	if string(h.Bytes()[addr:addr+5]) != "hello" {
		t.Fatalf("payload not preserved")
	}
	if err := h.Free(addr); err != nil {
		t.Fatalf("Free: %v", err)
	}
}

func testDoubleInitFails(t *testing.T) {
	h := blockheap.NewInMemory(1 << 16)
	if err := h.Init(); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if err := h.Init(); err != blockheap.ErrAlreadyInitialized {
		t.Fatalf("second Init: want ErrAlreadyInitialized got %v", err)
	}
}

func testUninitializedOpsFail(t *testing.T) {
	h := blockheap.NewInMemory(1 << 16)
	if _, err := h.Allocate(16); err != blockheap.ErrNotInitialized {
		t.Fatalf("Allocate before Init: want ErrNotInitialized got %v", err)
	}
	if err := h.Free(0); err != blockheap.ErrNotInitialized {
		t.Fatalf("Free before Init: want ErrNotInitialized got %v", err)
	}
}

func testAllocateZeroReturnsNull(t *testing.T) {
	h := newHeap(t, 1<<16)
	addr, err := h.Allocate(0)
	if err != nil || addr != blockheap.NullAddr {
		t.Fatalf("Allocate(0): want (NullAddr, nil) got (%d, %v)", addr, err)
	}
}

func testFreeNullIsNoop(t *testing.T) {
	h := newHeap(t, 1<<16)
	if err := h.Free(blockheap.NullAddr); err != nil {
		t.Fatalf("Free(NullAddr): %v", err)
	}
}

func testReallocateNullIsAllocate(t *testing.T) {
	h := newHeap(t, 1<<16)
	addr, err := h.Reallocate(blockheap.NullAddr, 32)
	if err != nil || addr == blockheap.NullAddr {
		t.Fatalf("Reallocate(NullAddr, 32): got (%d, %v)", addr, err)
	}
}

func testReallocateZeroFrees(t *testing.T) {
	h := newHeap(t, 1<<16)
	addr, _ := h.Allocate(32)
	result, err := h.Reallocate(addr, 0)
	if err != nil || result != blockheap.NullAddr {
		t.Fatalf("Reallocate(addr, 0): got (%d, %v)", result, err)
	}
}

func testFreeAdjacentBlocksCoalesce(t *testing.T) {
	h := newHeap(t, 1<<16)
	a, _ := h.Allocate(32)
	b, _ := h.Allocate(32)
	_ = h.Free(a)
	_ = h.Free(b)

	big, err := h.Allocate(72)
	if err != nil {
		t.Fatalf("Allocate after coalesce: %v", err)
	}
	if big != a {
		t.Fatalf("expected coalesced block to start at %d, got %d", a, big)
	}
}

func testSplitThenReuseRemainder(t *testing.T) {
	h := newHeap(t, 1<<16)
	whole, _ := h.Allocate(256)
	_ = h.Free(whole)

	a, _ := h.Allocate(16)
	b, err := h.Allocate(16)
	if err != nil {
		t.Fatalf("Allocate remainder: %v", err)
	}
	if a == b {
		t.Fatalf("split should produce two distinct blocks")
	}
}

func testInterleavedAllocFree(t *testing.T) {
	h := newHeap(t, 4<<20)
	var live []uint64
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		if len(live) > 0 && rng.Intn(2) == 0 {
			idx := rng.Intn(len(live))
			_ = h.Free(live[idx])
			live = append(live[:idx], live[idx+1:]...)
			continue
		}
		addr, err := h.Allocate(uint64(8 + rng.Intn(200)))
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		live = append(live, addr)
	}
	if violations := h.CheckHeap(nil); len(violations) != 0 {
		t.Fatalf("heap inconsistent after interleaved workload: %v", violations)
	}
}

func testReallocGrowInPlace(t *testing.T) {
	h := newHeap(t, 1<<16)
	a, _ := h.Allocate(16)
	b, _ := h.Allocate(16)
	_ = h.Free(b)

	grown, err := h.Reallocate(a, 48)
	if err != nil || grown != a {
		t.Fatalf("Reallocate in place: got (%d, %v), want (%d, nil)", grown, err, a)
	}
}

func testReallocGrowCopies(t *testing.T) {
	h := newHeap(t, 1<<16)
	a, _ := h.Allocate(16)
	copy(h.Bytes()[a:a+16], []byte("0123456789abcdef"))
	_, _ = h.Allocate(16) // deny the in-place growth path

	grown, err := h.Reallocate(a, 4096)
	if err != nil {
		t.Fatalf("Reallocate with copy: %v", err)
	}
	if string(h.Bytes()[grown:grown+16]) != "0123456789abcdef" {
		t.Fatalf("payload not preserved across Reallocate copy")
	}
}

func testReallocShrinkKeepsAddress(t *testing.T) {
	h := newHeap(t, 1<<16)
	a, _ := h.Allocate(64)
	same, err := h.Reallocate(a, 8)
	if err != nil || same != a {
		t.Fatalf("Reallocate shrink: got (%d, %v), want (%d, nil)", same, err, a)
	}
}

func testFixedCapacityExhausts(t *testing.T) {
	h := newHeap(t, 4096)
	exhausted := false
	for i := 0; i < 1000; i++ {
		if _, err := h.Allocate(256); err != nil {
			if err != blockheap.ErrOutOfMemory {
				t.Fatalf("unexpected error: %v", err)
			}
			exhausted = true
			break
		}
	}
	if !exhausted {
		t.Fatalf("expected a fixed-capacity heap to eventually exhaust")
	}
}

func testCheckHeapCleanAfterWorkload(t *testing.T) {
	h := newHeap(t, 1<<20)
	var live []uint64
	for i := 0; i < 100; i++ {
		addr, err := h.Allocate(uint64(16 + i%64))
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		live = append(live, addr)
	}
	for i := 0; i < len(live); i += 2 {
		_ = h.Free(live[i])
	}
	if violations := h.CheckHeap(nil); len(violations) != 0 {
		t.Fatalf("CheckHeap found violations: %v", violations)
	}
}

func testRepeatPatternDistinctBlocks(t *testing.T) {
	h := newHeap(t, 8<<20)
	seen := make(map[uint64]bool)
	for i := 0; i < 64; i++ {
		addr, err := h.Allocate(40)
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if seen[addr] {
			t.Fatalf("address %d reused while still live", addr)
		}
		seen[addr] = true
	}
}
