package word

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_PutReadU32_RoundTrip(t *testing.T) {
	buf := make([]byte, 16)

	PutU32(buf, 0, 0xDEADBEEF)
	PutU32(buf, 4, 1)
	PutU32(buf, 12, 0xFFFFFFFF)

	require.Equal(t, uint32(0xDEADBEEF), ReadU32(buf, 0))
	require.Equal(t, uint32(1), ReadU32(buf, 4))
	require.Equal(t, uint32(0), ReadU32(buf, 8))
	require.Equal(t, uint32(0xFFFFFFFF), ReadU32(buf, 12))
}

func Test_PutU32_LittleEndian(t *testing.T) {
	buf := make([]byte, 4)
	PutU32(buf, 0, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
}

func Test_AlignUp(t *testing.T) {
	require.Equal(t, 0, AlignUp(0, 16))
	require.Equal(t, 16, AlignUp(1, 16))
	require.Equal(t, 16, AlignUp(16, 16))
	require.Equal(t, 32, AlignUp(17, 16))
	require.Equal(t, 8, AlignUp(5, 8))
}

func Test_IsAligned(t *testing.T) {
	require.True(t, IsAligned(0, 16))
	require.True(t, IsAligned(32, 16))
	require.False(t, IsAligned(20, 16))
	require.True(t, IsAligned(20, 4))
}

func Test_IsPow2(t *testing.T) {
	require.True(t, IsPow2(1))
	require.True(t, IsPow2(16))
	require.True(t, IsPow2(4096))
	require.False(t, IsPow2(0))
	require.False(t, IsPow2(-16))
	require.False(t, IsPow2(24))
}
