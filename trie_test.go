package xcdat

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var testKeys = []string{
	"", "a", "ap", "app", "apple", "applet", "banana", "band", "bandana",
	"can", "candle", "candy", "car", "care", "careful", "cart", "cat",
	"catalog", "dog", "dove", "download", "unrelated", "zebra",
}

var testQueries = []string{
	"", "a", "ap", "app", "apple", "applesauce", "applet", "appletree",
	"b", "band", "bandanas", "c", "can", "cand", "candl", "candle",
	"candy", "car", "cares", "cart", "cat", "catalog", "do", "dow",
	"download", "nonexistent", "u", "unrelated", "z", "zebra crossing",
	"zz",
}

// refPrefixes lists the registered keys that are prefixes of q, shortest
// first.
func refPrefixes(keys []string, q string) []string {
	var out []string
	for l := 0; l <= len(q); l++ {
		if slices.Contains(keys, q[:l]) {
			out = append(out, q[:l])
		}
	}
	return out
}

// refExtensions lists the registered keys having q as a prefix; keys is
// sorted, so the result is in lexicographic order.
func refExtensions(keys []string, q string) []string {
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, q) {
			out = append(out, k)
		}
	}
	return out
}

func collectPrefix(tr *Trie, q string) ([]string, []ID) {
	var keys []string
	var ids []ID
	it := tr.MakePrefixIterator([]byte(q))
	for it.Next() {
		keys = append(keys, string(it.Key()))
		ids = append(ids, it.ID())
	}
	return keys, ids
}

func collectPredictive(tr *Trie, q string) ([]string, []ID) {
	var keys []string
	var ids []ID
	it := tr.MakePredictiveIterator([]byte(q))
	for it.Next() {
		keys = append(keys, string(it.Key()))
		ids = append(ids, it.ID())
	}
	return keys, ids
}

// checkDictionary exercises every queryable property of spec'd behavior
// over the registered key set.
func checkDictionary(t *testing.T, tr *Trie, keys []string) {
	t.Helper()

	require.Equal(t, uint64(len(keys)), tr.NumKeys())

	// Round-trip identity and ID density.
	seen := make([]bool, len(keys))
	for _, k := range keys {
		id := tr.LookupString(k)
		require.NotEqual(t, NotFound, id, "key %q", k)
		require.Less(t, uint64(id), tr.NumKeys(), "key %q", k)
		require.False(t, seen[id], "key %q", k)
		seen[id] = true
		require.Equal(t, k, string(tr.Access(id)), "id %d", id)
	}

	// Negative lookups and out-of-range access.
	for _, q := range testQueries {
		if !slices.Contains(keys, q) {
			require.Equal(t, NotFound, tr.LookupString(q), "query %q", q)
		}
	}
	require.Nil(t, tr.Access(ID(tr.NumKeys())))
	require.Nil(t, tr.Access(NotFound))

	// Iterator completeness and order against the reference model.
	for _, q := range testQueries {
		gotKeys, gotIDs := collectPrefix(tr, q)
		require.Equal(t, refPrefixes(keys, q), gotKeys, "prefixes of %q", q)
		for i, k := range gotKeys {
			require.Equal(t, tr.LookupString(k), gotIDs[i], "prefix %q of %q", k, q)
		}

		gotKeys, gotIDs = collectPredictive(tr, q)
		require.Equal(t, refExtensions(keys, q), gotKeys, "extensions of %q", q)
		for i, k := range gotKeys {
			require.Equal(t, tr.LookupString(k), gotIDs[i], "extension %q of %q", k, q)
		}
	}
}

func buildVariants(t *testing.T, keys []string) map[string]*Trie {
	t.Helper()
	variants := make(map[string]*Trie)
	for _, opts := range []Options{
		{},
		{Fast: true},
		{BinMode: true},
		{BinMode: true, Fast: true},
	} {
		name := "compact"
		if opts.Fast {
			name = "fast"
		}
		if opts.BinMode {
			name += "-bin"
		}
		tr, err := BuildStrings(keys, opts)
		require.NoError(t, err)
		require.Equal(t, opts.BinMode, tr.BinMode())
		variants[name] = tr
	}
	return variants
}

func TestTrieProperties(t *testing.T) {
	for name, tr := range buildVariants(t, testKeys) {
		t.Run(name, func(t *testing.T) {
			checkDictionary(t, tr, testKeys)
		})
	}
}

func TestTrieSerializationFidelity(t *testing.T) {
	for name, tr := range buildVariants(t, testKeys) {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tr.Write(&buf))
			require.Equal(t, tr.SizeInBytes(), uint64(buf.Len()))

			got, err := ReadTrie(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			require.Equal(t, tr.SizeInBytes(), got.SizeInBytes())
			require.Equal(t, tr.NumKeys(), got.NumKeys())
			require.Equal(t, tr.NumNodes(), got.NumNodes())
			require.Equal(t, tr.NumUsedNodes(), got.NumUsedNodes())
			require.Equal(t, tr.MaxLength(), got.MaxLength())
			require.Equal(t, tr.BinMode(), got.BinMode())
			checkDictionary(t, got, testKeys)

			// Re-serialization is byte-identical.
			var buf2 bytes.Buffer
			require.NoError(t, got.Write(&buf2))
			require.Equal(t, buf.Bytes(), buf2.Bytes())
		})
	}
}

func TestTrieMalformedStream(t *testing.T) {
	tr, err := BuildStrings(testKeys, Options{})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tr.Write(&buf))

	_, err = ReadTrie(bytes.NewReader(nil))
	require.Error(t, err)

	for _, cut := range []int{1, 9, buf.Len() / 3, buf.Len() / 2, buf.Len() - 1} {
		_, err := ReadTrie(bytes.NewReader(buf.Bytes()[:cut]))
		require.Error(t, err, "cut at %d", cut)
	}
}

func TestTrieBinaryKeys(t *testing.T) {
	keys := []string{
		"\x00", "\x00\x00", "\x00a", "a", "a\x00", "a\x00b", "a\x00b\x00",
		"ab", "b\x00\xff", "\xff\x00\xff",
	}
	slices.Sort(keys)

	_, err := BuildStrings(keys, Options{})
	require.ErrorIs(t, err, ErrZeroByteKey)

	for _, fast := range []bool{false, true} {
		tr, err := BuildStrings(keys, Options{BinMode: true, Fast: fast})
		require.NoError(t, err)

		for i, k := range keys {
			id := tr.LookupString(k)
			require.NotEqual(t, NotFound, id, "key %d", i)
			require.Equal(t, k, string(tr.Access(id)), "key %d", i)
		}
		require.Equal(t, NotFound, tr.LookupString("\x00b"))
		require.Equal(t, NotFound, tr.LookupString("a\x00b\x00c"))

		gotKeys, _ := collectPredictive(tr, "a")
		require.Equal(t, []string{"a", "a\x00", "a\x00b", "a\x00b\x00", "ab"}, gotKeys)

		gotKeys, _ = collectPrefix(tr, "a\x00b\x00")
		require.Equal(t, []string{"a", "a\x00", "a\x00b", "a\x00b\x00"}, gotKeys)

		var buf bytes.Buffer
		require.NoError(t, tr.Write(&buf))
		got, err := ReadTrie(&buf)
		require.NoError(t, err)
		for _, k := range keys {
			require.Equal(t, tr.LookupString(k), got.LookupString(k))
		}
	}
}

func TestIteratorExhaustionIdempotent(t *testing.T) {
	tr, err := BuildStrings(testKeys, Options{})
	require.NoError(t, err)

	pit := tr.MakePrefixIterator([]byte("applesauce"))
	for pit.Next() {
	}
	for range 3 {
		require.False(t, pit.Next())
	}

	dit := tr.MakePredictiveIterator([]byte("ca"))
	for dit.Next() {
	}
	for range 3 {
		require.False(t, dit.Next())
	}

	// A dead-end query is exhausted from the start.
	dit = tr.MakePredictiveIterator([]byte("qqq"))
	require.False(t, dit.Next())
	require.False(t, dit.Next())
}

// The worked examples from the interface contract.
func TestIteratorExamples(t *testing.T) {
	tr, err := BuildStrings([]string{"a", "ap", "app", "apple"}, Options{})
	require.NoError(t, err)
	keys, _ := collectPrefix(tr, "applesauce")
	require.Equal(t, []string{"a", "ap", "app", "apple"}, keys)
	keys, _ = collectPrefix(tr, "banana")
	require.Empty(t, keys)

	tr, err = BuildStrings([]string{"car", "care", "cart", "cat", "dog"}, Options{})
	require.NoError(t, err)
	keys, _ = collectPredictive(tr, "ca")
	require.Equal(t, []string{"car", "care", "cart", "cat"}, keys)
	keys, _ = collectPredictive(tr, "do")
	require.Equal(t, []string{"dog"}, keys)
	keys, _ = collectPredictive(tr, "z")
	require.Empty(t, keys)

	// The empty query enumerates the whole dictionary in order.
	keys, _ = collectPredictive(tr, "")
	require.Equal(t, []string{"car", "care", "cart", "cat", "dog"}, keys)
}

func TestTrieStatsReport(t *testing.T) {
	for name, tr := range buildVariants(t, testKeys) {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			tr.WriteStats(&buf)
			out := buf.String()
			require.Contains(t, out, "num keys")
			require.Contains(t, out, "size in bytes")
		})
	}
}
