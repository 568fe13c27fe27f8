package xcdat

// PrefixIterator enumerates the registered keys that are prefixes of a
// query, shortest first. It is created by MakePrefixIterator and driven
// by Next; each iterator belongs to a single reader.
type PrefixIterator struct {
	trie *Trie
	key  []byte

	pos  int
	node ID
	id   ID

	began bool
	done  bool
}

// MakePrefixIterator returns a common-prefix iterator over key.
func (t *Trie) MakePrefixIterator(key []byte) *PrefixIterator {
	return &PrefixIterator{trie: t, key: key}
}

// Key returns the key found by the last successful Next.
func (it *PrefixIterator) Key() []byte { return it.key[:it.pos] }

// ID returns the ID found by the last successful Next.
func (it *PrefixIterator) ID() ID { return it.id }

// Next advances to the next matching key. Once it returns false it
// keeps returning false.
func (it *PrefixIterator) Next() bool {
	if it.done {
		return false
	}
	t := it.trie

	if !it.began {
		it.began = true
		// The root spells the empty key, a prefix of everything.
		if t.terminal.Get(uint64(it.node)) {
			it.id = t.keyID(it.node)
			return true
		}
	}

	for !t.bc.IsLeaf(it.node) {
		if it.pos == len(it.key) {
			it.done = true
			it.id = NotFound
			return false
		}
		child := t.bc.Base(it.node) ^ t.code(it.key[it.pos])
		if t.bc.Check(child) != it.node {
			it.done = true
			it.id = NotFound
			return false
		}
		it.pos++
		it.node = child
		if !t.bc.IsLeaf(child) && t.terminal.Get(uint64(child)) {
			it.id = t.keyID(child)
			return true
		}
	}

	// A leaf ends the walk: its key is a prefix of the query exactly
	// when its whole tail suffix prefixes the remaining query bytes.
	it.done = true
	n, ok := t.suffixIsPrefix(it.key, it.pos, uint64(t.bc.Link(it.node)))
	if !ok {
		it.id = NotFound
		return false
	}
	it.pos += n
	it.id = t.keyID(it.node)
	return true
}
