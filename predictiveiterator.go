package xcdat

// PredictiveIterator enumerates the registered keys that have a query
// as a prefix, in lexicographic order. It is created by
// MakePredictiveIterator and driven by Next; each iterator belongs to a
// single reader.
//
// Enumeration is an explicit-stack DFS so that Next can return one key
// at a time and the iterator can be abandoned mid-traversal without any
// cleanup. Children are pushed in descending edge order so they pop in
// ascending order, and an internal node's own key is emitted before any
// of its extensions.
type PredictiveIterator struct {
	trie *Trie
	key  []byte

	stack []predictiveFrame
	buf   []byte
	id    ID

	began bool
	done  bool
}

type predictiveFrame struct {
	depth int
	c     byte
	node  ID
}

// MakePredictiveIterator returns a predictive iterator over key.
func (t *Trie) MakePredictiveIterator(key []byte) *PredictiveIterator {
	return &PredictiveIterator{
		trie: t,
		key:  key,
		buf:  make([]byte, 0, t.maxLength),
	}
}

// Key returns the key found by the last successful Next. The returned
// slice is reused by subsequent Next calls.
func (it *PredictiveIterator) Key() []byte { return it.buf }

// ID returns the ID found by the last successful Next.
func (it *PredictiveIterator) ID() ID { return it.id }

// Next advances to the next matching key. Once it returns false it
// keeps returning false.
func (it *PredictiveIterator) Next() bool {
	if it.done {
		return false
	}
	t := it.trie

	if !it.began {
		it.began = true
		if it.seek() {
			return true
		}
		if it.done {
			return false
		}
	}

	for len(it.stack) > 0 {
		fr := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		if fr.depth > 0 {
			it.buf = resizeBytes(it.buf, fr.depth)
			it.buf[fr.depth-1] = fr.c
		}

		if t.bc.IsLeaf(fr.node) {
			it.id = t.keyID(fr.node)
			it.buf = t.extractSuffix(uint64(t.bc.Link(fr.node)), it.buf)
			return true
		}

		base := t.bc.Base(fr.node)
		for i := len(t.alphabet) - 1; i >= 0; i-- {
			c := t.alphabet[i]
			child := base ^ t.code(c)
			if t.bc.Check(child) == fr.node {
				it.stack = append(it.stack, predictiveFrame{
					depth: fr.depth + 1,
					c:     c,
					node:  child,
				})
			}
		}

		if t.terminal.Get(uint64(fr.node)) {
			it.id = t.keyID(fr.node)
			return true
		}
	}

	it.done = true
	return false
}

// seek navigates the trie along the query. It either primes the DFS
// stack with the node the query lands on, emits the single key the
// query is a tail-prefix of (returning true), or exhausts the iterator.
func (it *PredictiveIterator) seek() bool {
	t := it.trie
	node := ID(0)

	for pos := 0; pos < len(it.key); pos++ {
		if t.bc.IsLeaf(node) {
			// The rest of the query must be a prefix of this
			// leaf's tail suffix; at most one key can match.
			it.done = true
			tailPos := uint64(t.bc.Link(node))
			if tailPos == 0 {
				return false
			}
			next, exact, ok := t.matchPrefixOfSuffix(it.key, pos, tailPos)
			if !ok {
				return false
			}
			it.buf = append(it.buf, it.key[pos:]...)
			it.id = t.keyID(node)
			if !exact {
				it.buf = t.extractSuffix(next, it.buf)
			}
			return true
		}

		child := t.bc.Base(node) ^ t.code(it.key[pos])
		if t.bc.Check(child) != node {
			it.done = true
			return false
		}
		node = child
		it.buf = append(it.buf, it.key[pos])
	}

	fr := predictiveFrame{depth: len(it.buf), node: node}
	if len(it.buf) > 0 {
		fr.c = it.buf[len(it.buf)-1]
	}
	it.stack = append(it.stack, fr)
	return false
}
