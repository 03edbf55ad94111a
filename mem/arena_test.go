package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SliceArena_Append(t *testing.T) {
	a := NewSlice(64)
	require.Equal(t, 0, a.Size())

	require.NoError(t, a.Append(16))
	require.Equal(t, 16, a.Size())
	require.Len(t, a.Bytes(), 16)

	// New bytes are zeroed
	for i, b := range a.Bytes() {
		require.Equal(t, byte(0), b, "byte %d not zeroed", i)
	}
}

func Test_SliceArena_NonRelocating(t *testing.T) {
	a := NewSlice(1 << 16)
	require.NoError(t, a.Append(8))

	base := &a.Bytes()[0]
	a.Bytes()[0] = 0x5A

	for i := 0; i < 16; i++ {
		require.NoError(t, a.Append(4096))
	}

	// Base address and contents must survive growth
	require.Same(t, base, &a.Bytes()[0])
	require.Equal(t, byte(0x5A), a.Bytes()[0])
}

func Test_SliceArena_Full(t *testing.T) {
	a := NewSlice(32)
	require.NoError(t, a.Append(32))

	err := a.Append(1)
	require.ErrorIs(t, err, ErrArenaFull)

	// Failed append leaves the arena unchanged
	require.Equal(t, 32, a.Size())
}

func Test_MmapArena_AppendAndGrow(t *testing.T) {
	a, err := NewMmap(1 << 20)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Append(100))
	require.Equal(t, 100, a.Size())

	a.Bytes()[0] = 0xAB
	base := &a.Bytes()[0]

	// Grow across several page boundaries
	for i := 0; i < 8; i++ {
		require.NoError(t, a.Append(5000))
	}

	require.Same(t, base, &a.Bytes()[0])
	require.Equal(t, byte(0xAB), a.Bytes()[0])

	// New memory is zeroed and writable
	buf := a.Bytes()
	require.Equal(t, byte(0), buf[len(buf)-1])
	buf[len(buf)-1] = 0xCD
	require.Equal(t, byte(0xCD), a.Bytes()[a.Size()-1])
}

func Test_MmapArena_CapacityExhausted(t *testing.T) {
	a, err := NewMmap(8192)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Append(8192))
	require.ErrorIs(t, a.Append(1), ErrArenaFull)
	require.Equal(t, 8192, a.Size())
}
