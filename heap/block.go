package heap

import "github.com/heapkit/heapkit/internal/word"

// Block layout, in words:
//
//	[ header | payload ... | footer ]
//
// Header and footer are identical boundary tags: (size << 1) | used,
// where size is the block's total length in words. A free block's
// first two payload words hold its prev/next free-list links (block
// word offsets, 0 = none); the links are only meaningful while the
// block is free.

const (
	wordSize = word.Size

	// maxBlockWords is the largest size the 31-bit tag field can hold.
	maxBlockWords = 1<<31 - 1

	// fenceTag is the boundary tag of the prologue/epilogue sentinels:
	// size 0, in use. Fences are never allocated and never coalesced.
	fenceTag = 1
)

func makeTag(size uint32, used bool) uint32 {
	t := size << 1
	if used {
		t |= 1
	}
	return t
}

// wordAt reads the raw word at word offset w.
func (h *Heap) wordAt(w uint32) uint32 {
	return word.ReadU32(h.arena.Bytes(), int(w)*wordSize)
}

// setWordAt writes the raw word at word offset w.
func (h *Heap) setWordAt(w uint32, v uint32) {
	word.PutU32(h.arena.Bytes(), int(w)*wordSize, v)
}

// blockSize returns the total size in words of the block whose header
// is at word offset b.
func (h *Heap) blockSize(b uint32) uint32 {
	return h.wordAt(b) >> 1
}

// blockUsed reports whether the block at b is allocated.
func (h *Heap) blockUsed(b uint32) bool {
	return h.wordAt(b)&1 != 0
}

// setBlock writes the block's header and footer as one logical update.
func (h *Heap) setBlock(b, size uint32, used bool) {
	t := makeTag(size, used)
	h.setWordAt(b, t)
	h.setWordAt(b+size-1, t)
}

// nextBlock returns the header offset of the physically following
// block. Not meaningful for the epilogue fence.
func (h *Heap) nextBlock(b uint32) uint32 {
	return b + h.blockSize(b)
}

// prevUsed reports whether the physically preceding block is
// allocated, via its footer. Works at the left edge because the
// prologue fence footer sits directly below the first block.
func (h *Heap) prevUsed(b uint32) bool {
	return h.wordAt(b-1)&1 != 0
}

// prevBlock returns the header offset of the physically preceding
// block. Not meaningful when the previous tag is a fence.
func (h *Heap) prevBlock(b uint32) uint32 {
	return b - h.wordAt(b-1)>>1
}

// payloadOf returns the payload bytes of the block at b: everything
// between header and footer.
func (h *Heap) payloadOf(b uint32) []byte {
	size := h.blockSize(b)
	return h.arena.Bytes()[int(b+1)*wordSize : int(b+size-1)*wordSize]
}

// refOf returns the public reference for the block at b.
func (h *Heap) refOf(b uint32) Ref {
	return Ref(b + 1)
}

// totalWords returns the current heap length in words.
func (h *Heap) totalWords() uint32 {
	return uint32(h.arena.Size() / wordSize)
}

// blockOf validates a payload reference and returns its block offset.
func (h *Heap) blockOf(ref Ref) (uint32, error) {
	w := uint32(ref)
	total := h.totalWords()
	if w <= h.start || w >= total {
		return 0, ErrBadRef
	}
	if !word.IsAligned(int(w)*wordSize, h.cfg.Alignment) {
		return 0, ErrBadRef
	}
	b := w - 1
	if !h.blockUsed(b) {
		return 0, ErrBadRef
	}
	size := h.blockSize(b)
	if size < uint32(h.cfg.MinBlockWords) || b+size >= total {
		return 0, ErrBadRef
	}
	return b, nil
}

// adjust converts a request in bytes to a block size in words:
// payload plus both tags, rounded up to the alignment, clamped to the
// minimum block size. Rejects requests whose rounded size wraps below
// the input (integer overflow) or exceeds the tag's size field.
func (h *Heap) adjust(size int) (uint32, error) {
	if size < 0 {
		return 0, ErrTooLarge
	}
	bsize := word.AlignUp(size+2*wordSize, h.cfg.Alignment)
	if bsize < size {
		return 0, ErrTooLarge
	}
	awords := bsize / wordSize
	if awords < h.cfg.MinBlockWords {
		awords = h.cfg.MinBlockWords
	}
	if awords > maxBlockWords {
		return 0, ErrTooLarge
	}
	return uint32(awords), nil
}
