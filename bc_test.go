package xcdat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// synthBcData fabricates a double array image exercising small and
// multi-byte transformed values, leaf links below and above 8 bits, and
// free slots.
func synthBcData() bcData {
	const n = 512
	base := make([]uint32, n)
	check := make([]uint32, n)
	var leaf bitBuilder
	for i := range n {
		base[i] = uint32(i)
		check[i] = uint32(i)
	}
	leaf.resize(n)

	used := uint64(0)
	mark := func(i int, b, c uint32, isLeaf bool) {
		base[i] = b
		check[i] = c
		if isLeaf {
			leaf.set(uint64(i))
		}
		used++
	}
	mark(0, 300, 0, false)
	mark(301, 17, 0, false)
	mark(302, 1<<20, 0, false)
	// Leaf links: single byte, multi byte, and the reserved empty
	// continuation.
	mark(17, 5, 301, true)
	mark(16, 70000, 301, true)
	mark(260, 9999999, 302, true)
	mark(261, 0, 302, true)

	return bcData{base: base, check: check, leaves: leaf.build(), numUsed: used}
}

func checkBcAgainstData(t *testing.T, bc BcArray, src bcData) {
	t.Helper()
	n := len(src.base)
	require.Equal(t, uint64(n), bc.NumNodes())
	require.Equal(t, src.numUsed, bc.NumUsedNodes())
	require.Equal(t, uint64(n)-src.numUsed, bc.NumFreeNodes())
	for i := range n {
		isLeaf := src.leaves.Get(uint64(i))
		require.Equal(t, isLeaf, bc.IsLeaf(ID(i)), "leaf %d", i)
		require.Equal(t, ID(src.check[i]), bc.Check(ID(i)), "check %d", i)
		if isLeaf {
			require.Equal(t, ID(src.base[i]), bc.Link(ID(i)), "link %d", i)
		} else {
			require.Equal(t, ID(src.base[i]), bc.Base(ID(i)), "base %d", i)
		}
	}
}

func TestBcBackends(t *testing.T) {
	src := synthBcData()
	for _, fast := range []bool{false, true} {
		bc := newBcArray(src, fast)
		checkBcAgainstData(t, bc, src)

		var buf bytes.Buffer
		require.NoError(t, bc.write(&buf))
		require.Equal(t, bc.SizeInBytes(), uint64(buf.Len()))

		got, err := readBcArray(&buf)
		require.NoError(t, err)
		checkBcAgainstData(t, got, src)
		require.IsType(t, bc, got)
	}
}

func TestBcUnknownKind(t *testing.T) {
	_, err := readBcArray(bytes.NewReader([]byte{0xFE}))
	require.ErrorIs(t, err, ErrBadBcKind)
}

func TestDacVectorAccess(t *testing.T) {
	values := []uint32{0, 1, 255, 256, 257, 65535, 65536, 1 << 24, 0, 42}
	d := buildDacVector(values)
	for i, v := range values {
		require.Equal(t, v, d.access(uint64(i)), "value %d", i)
	}

	var buf bytes.Buffer
	require.NoError(t, d.write(&buf))
	require.Equal(t, d.sizeInBytes(), uint64(buf.Len()))

	got, err := readDacVector(&buf)
	require.NoError(t, err)
	for i, v := range values {
		require.Equal(t, v, got.access(uint64(i)), "value %d after round trip", i)
	}
}
