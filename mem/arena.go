// Package mem provides the growable memory regions the allocator
// manages blocks inside of.
//
// An Arena is a single contiguous byte region that grows at its end and
// never relocates: every byte offset handed out remains valid for the
// life of the arena. Growth may fail (capacity exhausted), in which
// case the arena is left unmodified.
//
// Two implementations are provided:
//
//   - SliceArena: backed by a slice with its full capacity reserved up
//     front. Portable, no syscalls.
//   - MmapArena: backed by an anonymous mapping that is reserved
//     inaccessible and committed page by page as the arena grows.
//     Available on linux and darwin; elsewhere the constructor falls
//     back to a slice-backed region.
package mem

import "errors"

// ErrArenaFull indicates that an Append would exceed the arena's
// reserved capacity. The arena is unchanged.
var ErrArenaFull = errors.New("mem: arena capacity exhausted")

// Arena is a contiguous byte region that grows in place.
//
// Implementations must guarantee that Bytes() always aliases the same
// backing memory: offsets into the region stay valid across Append
// calls (non-relocating growth).
type Arena interface {
	// Append extends the region by n bytes of zeroed memory.
	// On error the region is left unmodified.
	Append(n int) error

	// Bytes returns the current region. The slice is invalidated in
	// length (never in base address) by the next Append.
	Bytes() []byte

	// Size returns the current region length in bytes.
	Size() int
}

// SliceArena is an Arena backed by a Go slice whose capacity is fixed
// at construction. Append only extends the length, so the backing
// array never moves.
type SliceArena struct {
	buf []byte
}

// NewSlice returns a SliceArena that can grow up to capacity bytes.
func NewSlice(capacity int) *SliceArena {
	return &SliceArena{buf: make([]byte, 0, capacity)}
}

// Append extends the arena by n zeroed bytes.
func (a *SliceArena) Append(n int) error {
	if n < 0 {
		return ErrArenaFull
	}
	if len(a.buf)+n > cap(a.buf) {
		return ErrArenaFull
	}
	a.buf = a.buf[:len(a.buf)+n]
	return nil
}

// Bytes returns the current region.
func (a *SliceArena) Bytes() []byte { return a.buf }

// Size returns the current region length.
func (a *SliceArena) Size() int { return len(a.buf) }
