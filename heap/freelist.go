package heap

// Segregated free-list index. Each size class is an intrusive doubly
// linked list threaded through the first two payload words of its free
// blocks; bucket heads live in Heap.buckets. Word offset 0 can never
// name a block, so it doubles as the nil link.

// linkPrev/linkNext read a free block's list links.
func (h *Heap) linkPrev(b uint32) uint32 { return h.wordAt(b + 1) }
func (h *Heap) linkNext(b uint32) uint32 { return h.wordAt(b + 2) }

func (h *Heap) setLinkPrev(b, v uint32) { h.setWordAt(b+1, v) }
func (h *Heap) setLinkNext(b, v uint32) { h.setWordAt(b+2, v) }

// bucketFor returns the size-class index for a block of the given
// total word size.
func (h *Heap) bucketFor(size uint32) int {
	for i, bound := range h.cfg.ClassBounds {
		if size <= uint32(bound) {
			return i
		}
	}
	return len(h.cfg.ClassBounds) // catch-all
}

// pushFront inserts a free block at the head of its size class (LIFO).
func (h *Heap) pushFront(b uint32) {
	idx := h.bucketFor(h.blockSize(b))
	head := h.buckets[idx]
	h.setLinkPrev(b, 0)
	h.setLinkNext(b, head)
	if head != 0 {
		h.setLinkPrev(head, b)
	}
	h.buckets[idx] = b
}

// removeBlock unlinks a free block from its size class. O(1): the
// block's own links locate its neighbors, and its size locates the
// bucket head when the block is first in line.
func (h *Heap) removeBlock(b uint32) {
	prev := h.linkPrev(b)
	next := h.linkNext(b)
	if prev != 0 {
		h.setLinkNext(prev, next)
	} else {
		h.buckets[h.bucketFor(h.blockSize(b))] = next
	}
	if next != 0 {
		h.setLinkPrev(next, prev)
	}
}

// findFit locates a free block of at least awords using bounded
// first-fit with class fallback: starting at the smallest class that
// could hold the request, examine at most ScanLimit entries per class
// in LIFO order and take the first that fits; on a capped miss, move
// to the next class rather than continuing the scan.
func (h *Heap) findFit(awords uint32) (uint32, bool) {
	for i := h.bucketFor(awords); i < len(h.buckets); i++ {
		n := 0
		for b := h.buckets[i]; b != 0; b = h.linkNext(b) {
			if h.blockSize(b) >= awords {
				return b, true
			}
			n++
			if n >= h.cfg.ScanLimit {
				break
			}
		}
	}
	return 0, false
}
