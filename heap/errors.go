package heap

import "errors"

var (
	// ErrTooLarge indicates the adjusted block size overflowed or
	// exceeds the tag's 31-bit size field.
	ErrTooLarge = errors.New("heap: request too large")

	// ErrGrowFail indicates the arena could not be extended. The heap
	// is left unmodified.
	ErrGrowFail = errors.New("heap: grow failed")

	// ErrBadRef indicates a reference that does not name a live,
	// allocated payload in this heap.
	ErrBadRef = errors.New("heap: bad payload reference")
)
