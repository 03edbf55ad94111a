package heap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heapkit/heapkit/mem"
)

func fillPattern(buf []byte, n int, seed byte) {
	for i := 0; i < n; i++ {
		buf[i] = seed + byte(i)
	}
}

func requirePattern(t *testing.T, buf []byte, n int, seed byte) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.Equal(t, seed+byte(i), buf[i], "payload byte %d lost", i)
	}
}

func Test_Realloc_ZeroSizeIsFree(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	p, _, err := h.Alloc(24)
	require.NoError(t, err)

	ref, buf, err := h.Realloc(p, 0)
	require.NoError(t, err)
	require.Equal(t, NilRef, ref)
	require.Nil(t, buf)

	// The block really was freed: the next fitting request reuses it.
	p2, _, err := h.Alloc(24)
	require.NoError(t, err)
	require.Equal(t, p, p2)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_NilRefIsAlloc(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	ref, buf, err := h.Realloc(NilRef, 32)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, ref)
	require.GreaterOrEqual(t, len(buf), 32)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_AbsorbsNextInPlace(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	a, bufA, err := h.Alloc(24)
	require.NoError(t, err)
	b, _, err := h.Alloc(24)
	require.NoError(t, err)
	_, _, err = h.Alloc(24) // guard
	require.NoError(t, err)

	fillPattern(bufA, 24, 0x10)
	require.NoError(t, h.Free(b))

	// a + freed b hold 16 words: a 40-byte request fits without moving.
	ref, buf, err := h.Realloc(a, 40)
	require.NoError(t, err)
	require.Equal(t, a, ref)
	requirePattern(t, buf, 24, 0x10)
	require.Equal(t, 1, h.Stats().ReallocInPlace)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_AbsorbsPreviousAndShifts(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	a, _, err := h.Alloc(24)
	require.NoError(t, err)
	b, bufB, err := h.Alloc(24)
	require.NoError(t, err)
	_, _, err = h.Alloc(24) // guard keeps b's next allocated
	require.NoError(t, err)

	fillPattern(bufB, 24, 0x20)
	require.NoError(t, h.Free(a))

	ref, buf, err := h.Realloc(b, 40)
	require.NoError(t, err)
	require.Equal(t, a, ref, "payload should shift backward into the freed block")
	requirePattern(t, buf, 24, 0x20)
	require.Equal(t, 1, h.Stats().ReallocInPlace)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_AbsorbsBothNeighbors(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	a, _, err := h.Alloc(24)
	require.NoError(t, err)
	b, bufB, err := h.Alloc(24)
	require.NoError(t, err)
	c, _, err := h.Alloc(24)
	require.NoError(t, err)
	_, _, err = h.Alloc(24) // guard
	require.NoError(t, err)

	fillPattern(bufB, 24, 0x30)
	require.NoError(t, h.Free(a))
	require.NoError(t, h.Free(c))

	// Only a+b+c combined (24 words) can hold 80 bytes in place.
	ref, buf, err := h.Realloc(b, 80)
	require.NoError(t, err)
	require.Equal(t, a, ref)
	requirePattern(t, buf, 24, 0x30)
	require.Equal(t, 1, h.Stats().ReallocInPlace)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_GrowsAtHeapEnd(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	// Lay out the chunk so the second block runs flush against the
	// epilogue fence: 8 words, then the remaining 120 words.
	a, _, err := h.Alloc(24)
	require.NoError(t, err)
	b, bufB, err := h.Alloc(120*wordSize - 2*wordSize)
	require.NoError(t, err)

	blockB := uint32(b) - 1
	require.Equal(t, uint32(0), h.blockSize(h.nextBlock(blockB)),
		"setup: block must sit directly before the epilogue")

	fillPattern(bufB, 64, 0x40)
	growsBefore := h.Stats().GrowCalls

	ref, buf, err := h.Realloc(b, 1000)
	require.NoError(t, err)
	require.Equal(t, b, ref, "end-of-heap realloc must not move the payload")
	require.GreaterOrEqual(t, len(buf), 1000)
	requirePattern(t, buf, 64, 0x40)
	require.Equal(t, growsBefore+1, h.Stats().GrowCalls)
	require.NoError(t, h.Check(false))

	_ = a
}

func Test_Realloc_FallbackCopies(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	a, bufA, err := h.Alloc(24)
	require.NoError(t, err)
	_, _, err = h.Alloc(24) // pin both neighbors
	require.NoError(t, err)

	fillPattern(bufA, 24, 0x50)

	// Neither neighbor is free and a is not at the heap end, so the
	// request must relocate.
	ref, buf, err := h.Realloc(a, 512)
	require.NoError(t, err)
	require.NotEqual(t, a, ref)
	require.GreaterOrEqual(t, len(buf), 512)
	requirePattern(t, buf, 24, 0x50)

	// The old block was freed on the way out.
	st := h.Stats()
	require.Zero(t, st.ReallocInPlace)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_ShrinkPreservesPrefix(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	a, bufA, err := h.Alloc(256)
	require.NoError(t, err)
	_, _, err = h.Alloc(24) // pin the right neighbor
	require.NoError(t, err)
	fillPattern(bufA, 256, 0x60)

	ref, buf, err := h.Realloc(a, 40)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, ref)
	require.GreaterOrEqual(t, len(buf), 40)
	requirePattern(t, buf, 40, 0x60)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_FailureLeavesOriginalIntact(t *testing.T) {
	h := newSmallHeap(t, 1024)

	a, bufA, err := h.Alloc(24)
	require.NoError(t, err)
	_, _, err = h.Alloc(24) // pin the right neighbor
	require.NoError(t, err)
	fillPattern(bufA, 24, 0x70)

	// Larger than the arena can ever provide.
	_, _, err = h.Realloc(a, 1<<20)
	require.ErrorIs(t, err, ErrGrowFail)

	// Original payload still live, content intact.
	got, err := h.Payload(a)
	require.NoError(t, err)
	requirePattern(t, got, 24, 0x70)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_BadRef(t *testing.T) {
	h := newTestHeap(t, &ConfigExact)

	_, _, err := h.Realloc(Ref(12345), 64)
	require.ErrorIs(t, err, ErrBadRef)
	require.NoError(t, h.Check(false))
}

func Test_Realloc_OverflowLeavesOriginalIntact(t *testing.T) {
	h, err := New(mem.NewSlice(1<<16), &ConfigExact)
	require.NoError(t, err)

	a, bufA, err := h.Alloc(24)
	require.NoError(t, err)
	fillPattern(bufA, 24, 0x7A)

	_, _, err = h.Realloc(a, math.MaxInt/2)
	require.ErrorIs(t, err, ErrTooLarge)

	got, err := h.Payload(a)
	require.NoError(t, err)
	requirePattern(t, got, 24, 0x7A)
}
