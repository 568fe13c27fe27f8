package xcdat

import (
	"bytes"
	"fmt"
	"slices"
)

const noSlot = ^uint32(0)

// Build constructs a dictionary over keys, which must be sorted in
// ascending byte order and free of duplicates. Keys containing a zero
// byte require Options.BinMode.
func Build(keys [][]byte, opts Options) (*Trie, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	var counts [256]uint64
	var maxLength uint64
	for i, k := range keys {
		if i > 0 {
			switch bytes.Compare(keys[i-1], k) {
			case 1:
				return nil, fmt.Errorf("%w: key %d", ErrKeyOutOfOrder, i)
			case 0:
				return nil, fmt.Errorf("%w: key %d", ErrDuplicateKey, i)
			}
		}
		if !opts.BinMode && bytes.IndexByte(k, 0) >= 0 {
			return nil, fmt.Errorf("%w: key %d", ErrZeroByteKey, i)
		}
		maxLength = max(maxLength, uint64(len(k)))
		for _, c := range k {
			counts[c]++
		}
	}

	b := &builder{
		keys:     keys,
		opts:     opts,
		freeHead: noSlot,
		freeTail: noSlot,
	}
	b.buildTable(counts)

	// tail[0] is padding so that real suffixes start at offset >= 1;
	// offset 0 is the reserved "empty continuation".
	b.tail = []byte{0}
	if opts.BinMode {
		b.boundary.push(false)
	}

	b.grow(512)
	b.allocate(0)
	b.check[0] = 0
	// A childless root keeps this base; >= 256 so no query code can
	// alias a child onto slot 0 (see findBase). arrange overwrites it
	// whenever the root has edges.
	b.base[0] = 256
	b.arrange(0, 0, 0, len(keys))

	n := uint64(len(b.base))
	b.term.resize(n)
	b.leaf.resize(n)

	src := bcData{
		base:    b.base,
		check:   b.check,
		leaves:  b.leaf.build(),
		numUsed: b.numUsed,
	}
	return &Trie{
		bc:        newBcArray(src, opts.Fast),
		terminal:  b.term.build(),
		tail:      b.tail,
		boundary:  b.boundary.build(),
		alphabet:  b.alphabet,
		table:     b.table,
		numKeys:   uint64(len(keys)),
		maxLength: maxLength,
		binMode:   opts.BinMode,
	}, nil
}

// BuildStrings is a convenience wrapper over Build.
func BuildStrings(keys []string, opts Options) (*Trie, error) {
	bs := make([][]byte, len(keys))
	for i, k := range keys {
		bs[i] = []byte(k)
	}
	return Build(bs, opts)
}

type builder struct {
	keys [][]byte
	opts Options

	// The double array under construction, plain and mutable. Free
	// slots are threaded into a doubly-linked list through next/prev
	// and keep base[i] == check[i] == i, which the query engine relies
	// on (a free slot must never pass the Check(child) == parent test).
	base  []uint32
	check []uint32
	used  []bool
	next  []uint32
	prev  []uint32

	freeHead uint32
	freeTail uint32

	leaf     bitBuilder
	term     bitBuilder
	tail     []byte
	boundary bitBuilder

	table    [512]byte
	alphabet []byte

	numUsed uint64
}

// buildTable assigns compact edge codes: bytes are ordered by descending
// frequency (ties broken by byte value), so the bytes that actually
// occur in keys take the codes [0, alphabetSize). The inverse half of
// the table lives at [256, 512).
func (b *builder) buildTable(counts [256]uint64) {
	order := make([]int, 256)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		if counts[x] != counts[y] {
			if counts[x] > counts[y] {
				return -1
			}
			return 1
		}
		return x - y
	})
	for code, c := range order {
		b.table[c] = byte(code)
		b.table[256+code] = byte(c)
	}
	for c := range 256 {
		if counts[c] != 0 {
			b.alphabet = append(b.alphabet, byte(c))
		}
	}
}

// grow extends the double array to n slots, appending the new slots to
// the free list. n stays a multiple of 256 so that base^code can never
// index past the end for any code.
func (b *builder) grow(n int) {
	for i := len(b.base); i < n; i++ {
		b.base = append(b.base, uint32(i))
		b.check = append(b.check, uint32(i))
		b.used = append(b.used, false)
		b.next = append(b.next, noSlot)
		b.prev = append(b.prev, noSlot)
		b.pushFree(uint32(i))
	}
}

func (b *builder) pushFree(i uint32) {
	b.next[i] = noSlot
	b.prev[i] = b.freeTail
	if b.freeTail != noSlot {
		b.next[b.freeTail] = i
	} else {
		b.freeHead = i
	}
	b.freeTail = i
}

// allocate claims slot i, unlinking it from the free list.
func (b *builder) allocate(i uint32) {
	if p := b.prev[i]; p != noSlot {
		b.next[p] = b.next[i]
	} else {
		b.freeHead = b.next[i]
	}
	if n := b.next[i]; n != noSlot {
		b.prev[n] = b.prev[i]
	} else {
		b.freeTail = b.prev[i]
	}
	b.used[i] = true
	b.numUsed++
}

// findBase picks a BASE for a node with the given edge codes such that
// every child slot base^code is free. The root additionally requires
// base >= 256: otherwise a query byte whose code equals the root's BASE
// would alias a child onto slot 0, and Check(0) == 0 would accept it.
func (b *builder) findBase(codes []uint32, node uint32) uint32 {
	for f := b.freeHead; f != noSlot; f = b.next[f] {
		base := f ^ codes[0]
		if node == 0 && base < 256 {
			continue
		}
		ok := true
		for _, c := range codes[1:] {
			if b.used[base^c] {
				ok = false
				break
			}
		}
		if ok {
			return base
		}
	}
	// No free slot accommodates the edge set; claim a fresh, fully
	// free block. All children land inside it.
	start := uint32(len(b.base))
	b.grow(len(b.base) + 256)
	return start
}

type edgeRange struct {
	c      byte
	lo, hi int
}

// arrange lays out the subtrie for keys[lo:hi], all of which share a
// depth-byte prefix spelled by the path to node.
func (b *builder) arrange(node uint32, depth, lo, hi int) {
	if hi-lo == 1 && node != 0 {
		// A single remaining key: node becomes a leaf and the
		// remainder of the key moves to the tail buffer. The root is
		// exempt so that its terminal flag always means "the empty
		// key is registered".
		b.term.set(uint64(node))
		b.leaf.set(uint64(node))
		b.base[node] = b.appendSuffix(b.keys[lo][depth:])
		return
	}

	if len(b.keys[lo]) == depth {
		// The shortest key in the range ends exactly here.
		b.term.set(uint64(node))
		lo++
	}
	if lo == hi {
		// Only reachable for a root whose single key is empty.
		return
	}

	var edges []edgeRange
	for i := lo; i < hi; {
		c := b.keys[i][depth]
		j := i + 1
		for j < hi && b.keys[j][depth] == c {
			j++
		}
		edges = append(edges, edgeRange{c: c, lo: i, hi: j})
		i = j
	}

	codes := make([]uint32, len(edges))
	for k, e := range edges {
		codes[k] = uint32(b.table[e.c])
	}

	base := b.findBase(codes, node)
	b.base[node] = base

	// Claim every child before descending; a child's own subtree must
	// not steal its siblings' slots.
	children := make([]uint32, len(edges))
	for k := range edges {
		child := base ^ codes[k]
		b.allocate(child)
		b.check[child] = node
		children[k] = child
	}
	for k, e := range edges {
		b.arrange(children[k], depth+1, e.lo, e.hi)
	}
}

// appendSuffix stores a leaf's key remainder in the tail buffer and
// returns its link offset. An empty remainder is the reserved offset 0.
func (b *builder) appendSuffix(suffix []byte) uint32 {
	if len(suffix) == 0 {
		return 0
	}
	pos := uint32(len(b.tail))
	if b.opts.BinMode {
		for i, c := range suffix {
			b.tail = append(b.tail, c)
			b.boundary.push(i == len(suffix)-1)
		}
	} else {
		b.tail = append(b.tail, suffix...)
		b.tail = append(b.tail, 0)
	}
	return pos
}
