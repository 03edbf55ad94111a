//go:build !linux && !darwin

package mem

// MmapArena falls back to a slice-backed region on platforms where the
// reserve/commit mapping scheme isn't wired up.
type MmapArena struct {
	*SliceArena
}

// NewMmap returns a slice-backed arena with the requested capacity.
func NewMmap(capacity int) (*MmapArena, error) {
	return &MmapArena{SliceArena: NewSlice(capacity)}, nil
}

// Close is a no-op for the slice-backed fallback.
func (a *MmapArena) Close() error { return nil }
