package heap

import (
	"fmt"
	"os"

	"github.com/heapkit/heapkit/internal/word"
)

// Check walks every block in heap order and validates the allocator's
// invariants:
//
//   - header and footer of every block are bit-identical
//   - no two physically adjacent blocks are both free
//   - every free block appears in exactly one size-class list, in the
//     list matching its size; allocated blocks appear in none
//   - every payload start satisfies the configured alignment
//   - the heap is bounded by intact zero-size fences
//
// Returns nil for a consistent heap, or an error naming the first
// violation found. With verbose set, each block is logged to stderr as
// it is visited.
func (h *Heap) Check(verbose bool) error {
	total := h.totalWords()
	if total == 0 {
		return fmt.Errorf("heap: not initialized")
	}
	if h.wordAt(h.start-1) != fenceTag {
		return fmt.Errorf("heap: prologue fence damaged (tag %#x)", h.wordAt(h.start-1))
	}

	freeBlocks := 0
	prevFree := false
	for b := h.start; ; {
		size := h.blockSize(b)
		used := h.blockUsed(b)

		if size == 0 {
			if !used {
				return fmt.Errorf("heap: fence at word %d not marked in use", b)
			}
			if b != total-1 {
				return fmt.Errorf("heap: premature fence at word %d (heap ends at %d)", b, total-1)
			}
			break
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "[CHECK] block@%d size=%d used=%v\n", b, size, used)
		}

		if b+size >= total {
			return fmt.Errorf("heap: block at word %d (size %d) overruns heap end %d", b, size, total)
		}
		if h.wordAt(b) != h.wordAt(b+size-1) {
			return fmt.Errorf(
				"heap: block at word %d header %#x != footer %#x",
				b, h.wordAt(b), h.wordAt(b+size-1),
			)
		}
		if size < uint32(h.cfg.MinBlockWords) {
			return fmt.Errorf("heap: block at word %d below minimum size (%d words)", b, size)
		}
		if !word.IsAligned(int(b+1)*wordSize, h.cfg.Alignment) {
			return fmt.Errorf("heap: payload at word %d misaligned", b+1)
		}

		if !used {
			if prevFree {
				return fmt.Errorf("heap: adjacent free blocks at word %d (coalescing missed)", b)
			}
			freeBlocks++
			if !h.onFreeList(b) {
				return fmt.Errorf(
					"heap: free block at word %d missing from size class %d",
					b, h.bucketFor(size),
				)
			}
		}
		prevFree = !used
		b += size
	}

	// Cross-check the index: every listed block must be a free block in
	// its correct class with intact links, and the membership count
	// must equal the number of free blocks seen in heap order (exactly
	// one membership each).
	listed := 0
	for i, head := range h.buckets {
		for b := head; b != 0; b = h.linkNext(b) {
			listed++
			if uint32(listed) > total {
				return fmt.Errorf("heap: free list cycle detected in class %d", i)
			}
			if b >= total-1 || b < h.start {
				return fmt.Errorf("heap: class %d links out-of-range block %d", i, b)
			}
			if h.blockUsed(b) {
				return fmt.Errorf("heap: allocated block at word %d on free list %d", b, i)
			}
			if h.bucketFor(h.blockSize(b)) != i {
				return fmt.Errorf(
					"heap: block at word %d (size %d) filed in class %d, belongs in %d",
					b, h.blockSize(b), i, h.bucketFor(h.blockSize(b)),
				)
			}
			if next := h.linkNext(b); next != 0 && h.linkPrev(next) != b {
				return fmt.Errorf("heap: broken back-link between words %d and %d", b, next)
			}
		}
	}
	if listed != freeBlocks {
		return fmt.Errorf(
			"heap: %d free blocks in heap order but %d list memberships",
			freeBlocks, listed,
		)
	}
	return nil
}

// onFreeList reports whether block b appears in the size class its
// size selects.
func (h *Heap) onFreeList(b uint32) bool {
	total := h.totalWords()
	n := uint32(0)
	for e := h.buckets[h.bucketFor(h.blockSize(b))]; e != 0; e = h.linkNext(e) {
		if e == b {
			return true
		}
		n++
		if n > total {
			return false // cycle; reported by the caller's walk
		}
	}
	return false
}
