package xcdat

import (
	"fmt"
	"io"
	"slices"
)

// Trie is the compressed string dictionary. It is immutable after Build
// or ReadTrie and safe for unsynchronized concurrent readers.
type Trie struct {
	bc       BcArray
	terminal *BitVector
	tail     []byte
	boundary *BitVector // meaningful only in binary mode
	alphabet []byte
	table    [512]byte // table[c] = code, table[256+code] = c

	numKeys   uint64
	maxLength uint64
	binMode   bool
}

// NumKeys returns the number of registered keys.
func (t *Trie) NumKeys() uint64 { return t.numKeys }

// BinMode reports whether the binary-safe tail encoding is active.
func (t *Trie) BinMode() bool { return t.binMode }

// MaxLength returns the length of the longest registered key.
func (t *Trie) MaxLength() uint64 { return t.maxLength }

// AlphabetSize returns the number of distinct byte values used by keys.
func (t *Trie) AlphabetSize() uint64 { return uint64(len(t.alphabet)) }

// NumNodes returns the double-array slot count, free slots included.
func (t *Trie) NumNodes() uint64 { return t.bc.NumNodes() }

// NumUsedNodes returns the number of nodes in the original trie.
func (t *Trie) NumUsedNodes() uint64 { return t.bc.NumUsedNodes() }

// NumFreeNodes returns the number of empty double-array slots.
func (t *Trie) NumFreeNodes() uint64 { return t.bc.NumFreeNodes() }

func (t *Trie) keyID(node ID) ID { return ID(t.terminal.Rank(uint64(node))) }
func (t *Trie) nodeID(id ID) ID  { return ID(t.terminal.Select(uint64(id))) }
func (t *Trie) code(c byte) ID   { return ID(t.table[c]) }

func (t *Trie) edge(parent, child ID) byte {
	return t.table[256+(t.bc.Base(parent)^child)]
}

// Lookup returns the ID of key, or NotFound if it is not registered.
func (t *Trie) Lookup(key []byte) ID {
	pos := 0
	node := ID(0)

	for !t.bc.IsLeaf(node) {
		if pos == len(key) {
			if t.terminal.Get(uint64(node)) {
				return t.keyID(node)
			}
			return NotFound
		}
		child := t.bc.Base(node) ^ t.code(key[pos])
		if t.bc.Check(child) != node {
			return NotFound
		}
		pos++
		node = child
	}

	if !t.matchSuffix(key, pos, uint64(t.bc.Link(node))) {
		return NotFound
	}
	return t.keyID(node)
}

// LookupString is a convenience wrapper over Lookup.
func (t *Trie) LookupString(key string) ID { return t.Lookup([]byte(key)) }

// Access decodes the key registered under id, or nil when id is out of
// range. The key is rebuilt by chasing Check upward to the root and
// reversing, then appending the leaf's tail suffix if it has one.
func (t *Trie) Access(id ID) []byte {
	if uint64(id) >= t.numKeys {
		return nil
	}

	node := t.nodeID(id)
	tailPos := uint64(0)
	hasTail := t.bc.IsLeaf(node)
	if hasTail {
		tailPos = uint64(t.bc.Link(node))
	}

	dec := make([]byte, 0, t.maxLength)
	for node != 0 {
		parent := t.bc.Check(node)
		dec = append(dec, t.edge(parent, node))
		node = parent
	}
	slices.Reverse(dec)

	if hasTail && tailPos != 0 {
		dec = t.extractSuffix(tailPos, dec)
	}
	return dec
}

// matchSuffix reports whether key[pos:] equals the tail suffix at
// tailPos, in full. The reserved offset 0 is the empty continuation and
// matches only an exhausted key.
func (t *Trie) matchSuffix(key []byte, pos int, tailPos uint64) bool {
	if pos == len(key) {
		return tailPos == 0
	}
	if tailPos == 0 {
		return false
	}

	if t.binMode {
		for pos < len(key) {
			if key[pos] != t.tail[tailPos] {
				return false
			}
			pos++
			if t.boundary.Get(tailPos) {
				return pos == len(key)
			}
			tailPos++
		}
		// Key exhausted before the suffix boundary.
		return false
	}

	for pos < len(key) {
		if t.tail[tailPos] == 0 || key[pos] != t.tail[tailPos] {
			return false
		}
		pos++
		tailPos++
	}
	return t.tail[tailPos] == 0
}

// matchPrefixOfSuffix consumes key[pos:] against the tail suffix at
// tailPos without requiring full-suffix equality. On success it returns
// the position just past the matched bytes and whether the suffix ended
// exactly where the key did. tailPos must be nonzero and pos < len(key).
func (t *Trie) matchPrefixOfSuffix(key []byte, pos int, tailPos uint64) (next uint64, exact, ok bool) {
	if t.binMode {
		for {
			if key[pos] != t.tail[tailPos] {
				return 0, false, false
			}
			pos++
			if t.boundary.Get(tailPos) {
				return tailPos, pos == len(key), pos == len(key)
			}
			tailPos++
			if pos == len(key) {
				return tailPos, false, true
			}
		}
	}

	for {
		if t.tail[tailPos] == 0 || key[pos] != t.tail[tailPos] {
			return 0, false, false
		}
		pos++
		tailPos++
		if pos == len(key) {
			return tailPos, false, true
		}
	}
}

// suffixIsPrefix reports whether the whole tail suffix at tailPos is a
// prefix of key[pos:], returning the suffix length. The reserved offset
// 0 is the empty suffix and is a prefix of anything.
func (t *Trie) suffixIsPrefix(key []byte, pos int, tailPos uint64) (int, bool) {
	if tailPos == 0 {
		return 0, true
	}
	n := 0

	if t.binMode {
		for {
			if pos == len(key) || key[pos] != t.tail[tailPos] {
				return 0, false
			}
			pos++
			n++
			if t.boundary.Get(tailPos) {
				return n, true
			}
			tailPos++
		}
	}

	for t.tail[tailPos] != 0 {
		if pos == len(key) || key[pos] != t.tail[tailPos] {
			return 0, false
		}
		pos++
		tailPos++
		n++
	}
	return n, true
}

// extractSuffix appends the tail suffix at tailPos to dst.
func (t *Trie) extractSuffix(tailPos uint64, dst []byte) []byte {
	if t.binMode {
		if tailPos == 0 {
			return dst
		}
		for {
			dst = append(dst, t.tail[tailPos])
			if t.boundary.Get(tailPos) {
				return dst
			}
			tailPos++
		}
	}

	for t.tail[tailPos] != 0 {
		dst = append(dst, t.tail[tailPos])
		tailPos++
	}
	return dst
}

// SizeInBytes reports the serialized dictionary size.
func (t *Trie) SizeInBytes() uint64 {
	n := t.bc.SizeInBytes()
	n += t.terminal.SizeInBytes()
	n += 8 + uint64(len(t.tail))
	n += t.boundary.SizeInBytes()
	n += 8 + uint64(len(t.alphabet))
	n += 512
	n += 8 // numKeys
	n += 8 // maxLength
	n += 1 // binMode
	return n
}

// Write serializes the dictionary. The section order is fixed: BASE/
// CHECK backend, terminal flags, tail, boundary flags (present even in
// null-terminated mode, where it is empty), alphabet, the raw 512-byte
// code table, numKeys, maxLength, binMode.
func (t *Trie) Write(w io.Writer) error {
	if err := t.bc.write(w); err != nil {
		return err
	}
	if err := t.terminal.write(w); err != nil {
		return err
	}
	if err := writeByteSlice(w, t.tail); err != nil {
		return err
	}
	if err := t.boundary.write(w); err != nil {
		return err
	}
	if err := writeByteSlice(w, t.alphabet); err != nil {
		return err
	}
	if _, err := w.Write(t.table[:]); err != nil {
		return err
	}
	if err := writeUint64(w, t.numKeys); err != nil {
		return err
	}
	if err := writeUint64(w, t.maxLength); err != nil {
		return err
	}
	var mode byte
	if t.binMode {
		mode = 1
	}
	return writeByteValue(w, mode)
}

// ReadTrie deserializes a dictionary written by Write. A truncated or
// structurally inconsistent stream fails loudly; the query engine
// re-checks nothing at query time.
func ReadTrie(r io.Reader) (*Trie, error) {
	bc, err := readBcArray(r)
	if err != nil {
		return nil, fmt.Errorf("reading base/check: %w", err)
	}
	terminal, err := readBitVector(r)
	if err != nil {
		return nil, fmt.Errorf("reading terminal flags: %w", err)
	}
	tail, err := readByteSlice(r)
	if err != nil {
		return nil, fmt.Errorf("reading tail: %w", err)
	}
	boundary, err := readBitVector(r)
	if err != nil {
		return nil, fmt.Errorf("reading boundary flags: %w", err)
	}
	alphabet, err := readByteSlice(r)
	if err != nil {
		return nil, fmt.Errorf("reading alphabet: %w", err)
	}
	t := &Trie{
		bc:       bc,
		terminal: terminal,
		tail:     tail,
		boundary: boundary,
		alphabet: alphabet,
	}
	if _, err := io.ReadFull(r, t.table[:]); err != nil {
		return nil, fmt.Errorf("reading code table: %w", err)
	}
	if t.numKeys, err = readUint64(r); err != nil {
		return nil, fmt.Errorf("reading key count: %w", err)
	}
	if t.maxLength, err = readUint64(r); err != nil {
		return nil, fmt.Errorf("reading max length: %w", err)
	}
	mode, err := readByteValue(r)
	if err != nil {
		return nil, fmt.Errorf("reading tail mode: %w", err)
	}
	t.binMode = mode != 0

	if terminal.NumBits() != bc.NumNodes() {
		return nil, fmt.Errorf("%w: terminal flag count", ErrBadStream)
	}
	if terminal.NumOnes() != t.numKeys {
		return nil, fmt.Errorf("%w: key count", ErrBadStream)
	}
	if t.binMode && boundary.NumBits() != uint64(len(tail)) {
		return nil, fmt.Errorf("%w: boundary flag count", ErrBadStream)
	}
	if len(alphabet) > 256 {
		return nil, fmt.Errorf("%w: alphabet size", ErrBadStream)
	}
	return t, nil
}
