package heap

// Realloc resizes the payload named by ref to at least size bytes.
//
// A zero size frees the payload and returns NilRef; a NilRef behaves
// as Alloc(size). Otherwise the heap first tries to satisfy the
// request in place by absorbing free physical neighbors (shifting the
// payload backward when the previous block is consumed), then by
// growing the heap when the block is the last before the epilogue
// fence. Only when no in-place option fits does it fall back to
// allocate, copy, free.
//
// On any failure the original payload is left untouched and remains
// valid.
func (h *Heap) Realloc(ref Ref, size int) (Ref, []byte, error) {
	h.stats.ReallocCalls++

	if size == 0 {
		if err := h.Free(ref); err != nil {
			return NilRef, nil, err
		}
		return NilRef, nil, nil
	}
	if ref == NilRef {
		return h.Alloc(size)
	}

	b, err := h.blockOf(ref)
	if err != nil {
		return NilRef, nil, err
	}
	cur := h.blockSize(b)
	oldPayload := h.payloadOf(b)

	awords, err := h.adjust(size)
	if err != nil {
		return NilRef, nil, err
	}

	prevAlloc := h.prevUsed(b)
	next := b + cur
	nextAlloc := h.blockUsed(next)
	var psize, nsize uint32
	if !prevAlloc {
		psize = h.blockSize(h.prevBlock(b))
	}
	if !nextAlloc {
		nsize = h.blockSize(next)
	}

	switch {
	case !prevAlloc && nextAlloc && psize+cur >= awords:
		// Absorb previous: payload shifts backward in memory.
		p := b - psize
		h.removeBlock(p)
		h.setBlock(p, psize+cur, true)
		copy(h.payloadOf(p), oldPayload)
		h.stats.ReallocInPlace++
		return h.refOf(p), h.payloadOf(p), nil

	case prevAlloc && !nextAlloc && cur+nsize >= awords:
		// Absorb next in place: no payload move.
		h.removeBlock(next)
		h.setBlock(b, cur+nsize, true)
		h.stats.ReallocInPlace++
		return h.refOf(b), h.payloadOf(b), nil

	case !prevAlloc && !nextAlloc && psize+cur+nsize >= awords:
		// Absorb both neighbors: payload shifts to the new start.
		p := b - psize
		h.removeBlock(p)
		h.removeBlock(next)
		h.setBlock(p, psize+cur+nsize, true)
		copy(h.payloadOf(p), oldPayload)
		h.stats.ReallocInPlace++
		return h.refOf(p), h.payloadOf(p), nil

	case prevAlloc && awords > cur && h.blockSize(next) == 0:
		// Last block before the epilogue fence: grow the heap and
		// absorb the new space without moving the payload. The new
		// block cannot merge backward past us (we are allocated), so
		// extend hands back the block sitting exactly at next.
		grow := awords - cur
		if c := uint32(h.cfg.ChunkWords); grow < c {
			grow = c
		}
		nb, gerr := h.extend(grow)
		if gerr != nil {
			return NilRef, nil, gerr
		}
		h.removeBlock(nb)
		h.setBlock(b, cur+h.blockSize(nb), true)
		h.stats.ReallocInPlace++
		return h.refOf(b), h.payloadOf(b), nil
	}

	// Relocate: allocate, copy, free. The original block is only
	// released after the copy succeeds.
	newRef, newPayload, err := h.Alloc(size)
	if err != nil {
		return NilRef, nil, err
	}
	n := len(oldPayload)
	if size < n {
		n = size
	}
	copy(newPayload, oldPayload[:n])
	if err := h.Free(ref); err != nil {
		return NilRef, nil, err
	}
	return newRef, newPayload, nil
}
