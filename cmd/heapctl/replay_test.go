package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heapkit/heapkit/heap"
	"github.com/heapkit/heapkit/mem"
)

func Test_ParseTrace(t *testing.T) {
	in := `
# fragmentation workload
a 0 512
a 1 128

r 0 1024
f 1
f 0
`
	ops, err := parseTrace(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ops, 5)
	require.Equal(t, traceOp{kind: 'a', id: 0, size: 512}, ops[0])
	require.Equal(t, traceOp{kind: 'r', id: 0, size: 1024}, ops[2])
	require.Equal(t, traceOp{kind: 'f', id: 1}, ops[3])
}

func Test_ParseTrace_Errors(t *testing.T) {
	for _, in := range []string{
		"a 0",         // missing size
		"a x 12",      // bad id
		"a 0 -5",      // negative size
		"f",           // missing id
		"z 0 12",      // unknown op
		"r 0 12 true", // trailing field
	} {
		_, err := parseTrace(strings.NewReader(in))
		require.Error(t, err, "input %q should not parse", in)
	}
}

func Test_RunOps_Replay(t *testing.T) {
	h, err := heap.New(mem.NewSlice(1<<20), &heap.ConfigExact)
	require.NoError(t, err)

	ops, err := parseTrace(strings.NewReader(`
a 0 100
a 1 200
f 0
r 1 400
a 2 64
f 1
`))
	require.NoError(t, err)

	report, err := runOps(h, ops)
	require.NoError(t, err)
	require.Equal(t, 6, report.Ops)
	require.Equal(t, 1, report.LiveBlocks)
	require.Equal(t, int64(64), report.LiveBytes)
	require.Positive(t, report.HeapBytes)
	require.NoError(t, h.Check(false))
}

func Test_RunOps_RejectsUnknownBlock(t *testing.T) {
	h, err := heap.New(mem.NewSlice(1<<20), &heap.ConfigExact)
	require.NoError(t, err)

	ops, err := parseTrace(strings.NewReader("f 7"))
	require.NoError(t, err)

	_, err = runOps(h, ops)
	require.Error(t, err)
}

func Test_RunOps_DoubleAlloc(t *testing.T) {
	h, err := heap.New(mem.NewSlice(1<<20), &heap.ConfigExact)
	require.NoError(t, err)

	ops, err := parseTrace(strings.NewReader("a 0 16\na 0 16"))
	require.NoError(t, err)

	_, err = runOps(h, ops)
	require.Error(t, err)
}
