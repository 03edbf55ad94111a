//go:build linux || darwin

package mem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MmapArena is an Arena backed by an anonymous private mapping.
//
// The full capacity is reserved PROT_NONE at construction, which
// consumes address space but no physical memory. Append commits pages
// with mprotect as the region grows, so the base address is fixed for
// the arena's lifetime regardless of how large it gets.
type MmapArena struct {
	region    []byte // whole reserved mapping
	size      int    // bytes handed out via Append
	committed int    // bytes made readable/writable (page multiple)
	pageSize  int
}

// NewMmap reserves capacity bytes of address space and returns an
// arena that commits it incrementally. capacity is rounded up to the
// page size.
func NewMmap(capacity int) (*MmapArena, error) {
	pageSize := unix.Getpagesize()
	reserve := ((capacity + pageSize - 1) / pageSize) * pageSize
	if reserve == 0 {
		reserve = pageSize
	}

	region, err := unix.Mmap(
		-1,
		0,
		reserve,
		unix.PROT_NONE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("mem: reserve %d bytes: %w", reserve, err)
	}

	return &MmapArena{
		region:   region,
		pageSize: pageSize,
	}, nil
}

// Append extends the arena by n zeroed bytes, committing pages as needed.
func (a *MmapArena) Append(n int) error {
	if n < 0 {
		return ErrArenaFull
	}
	newSize := a.size + n
	if newSize > len(a.region) {
		return ErrArenaFull
	}

	commitEnd := ((newSize + a.pageSize - 1) / a.pageSize) * a.pageSize
	if commitEnd > len(a.region) {
		commitEnd = len(a.region)
	}
	if commitEnd > a.committed {
		if err := unix.Mprotect(
			a.region[a.committed:commitEnd],
			unix.PROT_READ|unix.PROT_WRITE,
		); err != nil {
			return fmt.Errorf("mem: commit pages: %w", err)
		}
		a.committed = commitEnd
	}

	a.size = newSize
	return nil
}

// Bytes returns the committed region.
func (a *MmapArena) Bytes() []byte { return a.region[:a.size] }

// Size returns the current region length.
func (a *MmapArena) Size() int { return a.size }

// Close releases the mapping. The arena must not be used afterwards.
func (a *MmapArena) Close() error {
	if a.region == nil {
		return nil
	}
	err := unix.Munmap(a.region)
	a.region = nil
	a.size = 0
	a.committed = 0
	return err
}
