package heap

import (
	"github.com/heapkit/heapkit/mem"
)

// Ref names an allocated payload: the word offset of its first byte
// within the arena. Refs remain valid until the payload is freed.
type Ref = uint32

// NilRef is the null reference. Free(NilRef) is a no-op and
// Realloc(NilRef, n) behaves as Alloc(n).
const NilRef Ref = 0

// Heap is a boundary-tagged allocator over a single growable arena.
// Not safe for concurrent use.
type Heap struct {
	arena mem.Arena
	cfg   Config

	// buckets holds the head block offset of each size class
	// (ClassBounds classes plus the catch-all); 0 = empty.
	buckets []uint32

	// start is the word offset where the first block begins; the
	// prologue fence footer sits at start-1.
	start uint32

	stats Stats
}

// New initializes an allocator over the given arena: it writes the
// prologue and epilogue fences and performs one initial extension of
// ChunkWords. The arena must be empty. A nil cfg selects DefaultConfig.
func New(a mem.Arena, cfg *Config) (*Heap, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := &Heap{
		arena:   a,
		cfg:     *cfg,
		buckets: make([]uint32, len(cfg.ClassBounds)+1),
	}

	// The fences sit at the top of an alignment-sized prelude so that
	// every payload (one word past its header) lands on an alignment
	// boundary.
	alignWords := uint32(cfg.Alignment / wordSize)
	if err := a.Append(int(alignWords) * wordSize); err != nil {
		return nil, ErrGrowFail
	}
	h.start = alignWords - 1
	h.setWordAt(h.start-1, fenceTag) // prologue footer
	h.setWordAt(h.start, fenceTag)   // epilogue header

	if _, err := h.extend(uint32(cfg.ChunkWords)); err != nil {
		return nil, err
	}
	return h, nil
}

// Alloc returns a reference to, and the bytes of, a payload of at
// least size bytes, aligned to the configured alignment. A zero size
// is a defined no-op returning NilRef. Fails with ErrTooLarge on
// adjusted-size overflow and ErrGrowFail when the arena cannot grow.
func (h *Heap) Alloc(size int) (Ref, []byte, error) {
	h.stats.AllocCalls++

	if size == 0 {
		return NilRef, nil, nil
	}
	if r, ok := h.cfg.RoundSizes[size]; ok {
		size = r
	}

	awords, err := h.adjust(size)
	if err != nil {
		return NilRef, nil, err
	}

	if b, ok := h.findFit(awords); ok {
		h.stats.AllocFastPath++
		h.place(b, awords)
		return h.refOf(b), h.payloadOf(b), nil
	}

	// No fit anywhere: extend by at least one chunk.
	grow := awords
	if c := uint32(h.cfg.ChunkWords); grow < c {
		grow = c
	}
	if logAlloc {
		debugLogf("Alloc(%d): no fit for %d words, growing by %d", size, awords, grow)
	}
	b, err := h.extend(grow)
	if err != nil {
		return NilRef, nil, err
	}
	h.stats.AllocSlowPath++
	h.place(b, awords)
	return h.refOf(b), h.payloadOf(b), nil
}

// Free returns a payload to the free index, coalescing with free
// neighbors. NilRef is a no-op. Freeing a reference that does not name
// a live payload returns ErrBadRef; freeing the same live-looking
// reference twice is undefined.
func (h *Heap) Free(ref Ref) error {
	h.stats.FreeCalls++

	if ref == NilRef {
		return nil
	}
	b, err := h.blockOf(ref)
	if err != nil {
		return err
	}
	h.setBlock(b, h.blockSize(b), false)
	h.coalesce(b)
	return nil
}

// Payload returns the payload bytes for a live reference.
func (h *Heap) Payload(ref Ref) ([]byte, error) {
	b, err := h.blockOf(ref)
	if err != nil {
		return nil, err
	}
	return h.payloadOf(b), nil
}

// Stats returns a copy of the allocator's operation counters.
func (h *Heap) Stats() Stats {
	return h.stats
}

// Config returns the configuration the heap was built with.
func (h *Heap) Config() Config {
	return h.cfg
}

// Size returns the current heap length in bytes.
func (h *Heap) Size() int {
	return h.arena.Size()
}

// extend grows the heap by the given word count and returns the
// resulting free block, already coalesced with a trailing free block
// and inserted into the index. The new block's header overwrites the
// old epilogue fence; a fresh epilogue is written at the new end. On
// arena failure the heap is unmodified.
func (h *Heap) extend(words uint32) (uint32, error) {
	oldWords := h.totalWords()
	if err := h.arena.Append(int(words) * wordSize); err != nil {
		return 0, ErrGrowFail
	}
	h.stats.GrowCalls++
	h.stats.GrowWords += int64(words)

	b := oldWords - 1 // old epilogue position
	h.setBlock(b, words, false)
	h.setWordAt(b+words, fenceTag) // new epilogue header

	if logAlloc {
		debugLogf("extend: +%d words, heap now %d words", words, h.totalWords())
	}
	return h.coalesce(b), nil
}

// place carves awords out of the free block at b: the block leaves the
// index, and the remainder is split off and reinserted when it is
// large enough to stand alone. Small remainders are absorbed to avoid
// unusable fragments.
func (h *Heap) place(b, awords uint32) {
	csize := h.blockSize(b)
	h.removeBlock(b)

	if csize-awords >= uint32(h.cfg.MinBlockWords) {
		h.stats.SplitCount++
		h.setBlock(b, awords, true)
		rem := b + awords
		h.setBlock(rem, csize-awords, false)
		h.pushFront(rem)
	} else {
		h.stats.AbsorbCount++
		h.setBlock(b, csize, true)
	}
}

// coalesce merges the free block at b with whichever physical
// neighbors are free, then inserts the result into the index once.
// Returns the merged block's offset. The fences bound both lookups:
// their in-use bit stops the merge at either heap edge.
func (h *Heap) coalesce(b uint32) uint32 {
	size := h.blockSize(b)
	prevAlloc := h.prevUsed(b)
	next := b + size
	nextAlloc := h.blockUsed(next)

	switch {
	case prevAlloc && nextAlloc:
		// Neighbors allocated: insert as-is.

	case prevAlloc && !nextAlloc:
		h.stats.CoalesceNext++
		nsize := h.blockSize(next)
		h.removeBlock(next)
		h.setBlock(b, size+nsize, false)

	case !prevAlloc && nextAlloc:
		h.stats.CoalescePrev++
		p := h.prevBlock(b)
		psize := h.blockSize(p)
		h.removeBlock(p)
		h.setBlock(p, psize+size, false)
		b = p

	default:
		h.stats.CoalesceBoth++
		p := h.prevBlock(b)
		psize := h.blockSize(p)
		nsize := h.blockSize(next)
		h.removeBlock(p)
		h.removeBlock(next)
		h.setBlock(p, psize+size+nsize, false)
		b = p
	}

	h.pushFront(b)
	return b
}
