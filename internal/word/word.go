// Package word provides little-endian word encoding and alignment
// arithmetic for the allocator's boundary tags.
//
// Implementation: Uses encoding/binary.LittleEndian. Modern Go
// compilers inline and bounds-check-eliminate these calls well enough
// that an unsafe variant buys nothing measurable.
package word

import "encoding/binary"

// Size is the width of one heap word in bytes. Boundary tags and
// free-list links are each exactly one word.
const Size = 4

// PutU32 writes a uint32 value to the buffer at the specified byte offset.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified byte offset.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// AlignUp returns n rounded up to the next multiple of align.
// align must be a power of two.
//
// Example:
//
//	AlignUp(1, 16)  = 16
//	AlignUp(16, 16) = 16
//	AlignUp(17, 16) = 32
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// IsAligned reports whether n is a multiple of align.
// align must be a power of two.
func IsAligned(n, align int) bool {
	return n&(align-1) == 0
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
