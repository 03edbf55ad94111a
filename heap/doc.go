// Package heap implements a single-threaded dynamic-memory allocator
// over one contiguous, growable arena.
//
// # Overview
//
// The allocator manages boundary-tagged blocks inside a mem.Arena using
// a segregated free-list design. Every block carries a 4-byte tag at
// its first and last word encoding the block's total size in words and
// an in-use bit; the duplicate footer makes backward coalescing O(1).
// Free blocks additionally thread prev/next links through their own
// payload words, so list insertion and removal never allocate.
//
// # Allocator Interface
//
// The core type is Heap, which supports:
//
//   - Alloc(size): Allocate a payload of at least size bytes
//   - Free(ref): Return a payload to the free index
//   - Realloc(ref, size): Resize, preferring in-place absorption of
//     free neighbors over allocate/copy/free
//   - Check(verbose): Walk the heap and validate every invariant
//
// # Size Classes
//
// The default configuration maintains 10 segregated free lists keyed
// on total block size in words:
//
//	Class 0:     ≤   128 words
//	Class 1:     ≤   256 words
//	Class 2:     ≤   512 words
//	Class 3:     ≤  1024 words
//	Class 4:     ≤  2048 words
//	Class 5:     ≤  4096 words
//	Class 6:     ≤  8192 words
//	Class 7:     ≤ 16384 words
//	Class 8:     ≤ 32768 words
//	Class 9:     larger (catch-all)
//
// Blocks are pushed to the front of their class (LIFO) and searched
// first-fit with a bounded per-class scan, trading a small chance of
// suboptimal placement for bounded search time.
//
// # Usage Example
//
//	a := mem.NewSlice(1 << 20)
//	h, err := heap.New(a, nil)
//	if err != nil {
//	    return err
//	}
//
//	ref, buf, err := h.Alloc(256)
//	if err != nil {
//	    return err
//	}
//
//	// Write into buf...
//	copy(buf, payload)
//
//	// Later, return the block
//	err = h.Free(ref)
//
// # Growth
//
// When no free block satisfies a request, the heap grows its arena by
// at least the configured chunk size and folds the new region into the
// free index, merging with a trailing free block if one exists. Growth
// never relocates existing blocks; the arena contract guarantees a
// stable base address.
//
// # References
//
// A Ref is the word offset of a payload's first word within the arena.
// NilRef (zero) is the null reference: Free(NilRef) is a no-op and
// Realloc(NilRef, n) behaves as Alloc(n).
//
// # Thread Safety
//
// Heap instances are not thread-safe. The allocator is designed for a
// single owning goroutine; callers needing concurrent access must
// synchronize externally.
package heap
