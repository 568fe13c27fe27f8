package xcdat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildRejectsBadInputs(t *testing.T) {
	_, err := Build(nil, Options{})
	require.ErrorIs(t, err, ErrNoKeys)

	_, err = BuildStrings([]string{"b", "a"}, Options{})
	require.ErrorIs(t, err, ErrKeyOutOfOrder)

	_, err = BuildStrings([]string{"a", "a"}, Options{})
	require.ErrorIs(t, err, ErrDuplicateKey)

	_, err = BuildStrings([]string{"a\x00b"}, Options{})
	require.ErrorIs(t, err, ErrZeroByteKey)

	// The same key set is fine in binary mode.
	_, err = BuildStrings([]string{"a\x00b"}, Options{BinMode: true})
	require.NoError(t, err)
}

func TestBuildLayoutInvariants(t *testing.T) {
	keys := []string{"", "a", "ap", "app", "apple", "banana", "car", "cart"}
	tr, err := BuildStrings(keys, Options{})
	require.NoError(t, err)

	// The slot count stays a multiple of 256 so base^code cannot index
	// out of bounds, and the root is never a leaf.
	require.Zero(t, tr.NumNodes()%256)
	require.False(t, tr.bc.IsLeaf(0))
	require.Equal(t, ID(0), tr.bc.Check(0))

	require.Equal(t, uint64(len(keys)), tr.NumKeys())
	require.Equal(t, uint64(len(keys)), tr.terminal.NumOnes())
	require.Equal(t, tr.NumNodes(), tr.terminal.NumBits())
	require.Equal(t, tr.NumNodes(), tr.NumUsedNodes()+tr.NumFreeNodes())
	require.Equal(t, uint64(len("banana")), tr.MaxLength())

	// Distinct bytes: a b c e l n p r t.
	require.Equal(t, uint64(9), tr.AlphabetSize())
	require.False(t, tr.BinMode())

	// tail[0] is the reserved padding byte.
	require.Equal(t, byte(0), tr.tail[0])
}

func TestBuildSingleKey(t *testing.T) {
	for _, key := range []string{"", "x", "hello"} {
		tr, err := BuildStrings([]string{key}, Options{})
		require.NoError(t, err, "key %q", key)
		require.Equal(t, uint64(1), tr.NumKeys())
		require.False(t, tr.bc.IsLeaf(0), "key %q", key)
		require.Equal(t, ID(0), tr.LookupString(key), "key %q", key)
		require.Equal(t, key, string(tr.Access(0)), "key %q", key)
		require.Equal(t, NotFound, tr.LookupString(key+"z"), "key %q", key)
	}
}

func TestBuildCodeTableBijection(t *testing.T) {
	tr, err := BuildStrings([]string{"abc", "bbd", "bcd"}, Options{})
	require.NoError(t, err)

	var seen [256]bool
	for c := range 256 {
		code := tr.table[c]
		require.False(t, seen[code])
		seen[code] = true
		require.Equal(t, byte(c), tr.table[256+int(code)])
	}
	// Bytes occurring in keys take the smallest codes.
	for _, c := range tr.alphabet {
		require.Less(t, int(tr.table[c]), len(tr.alphabet))
	}
}
