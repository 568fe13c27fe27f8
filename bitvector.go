package xcdat

import (
	"fmt"
	"io"
	"math/bits"
)

// BitVector is an immutable bit sequence with constant-time rank and
// near-constant-time select. The rank directory is derived from the raw
// words on construction and is not serialized.
type BitVector struct {
	words []uint64
	nbits uint64
	// ranks[i] is the number of set bits in words[:i].
	ranks []uint64
	ones  uint64
}

func newBitVector(words []uint64, nbits uint64) *BitVector {
	v := &BitVector{words: words, nbits: nbits}
	v.index()
	return v
}

func (v *BitVector) index() {
	v.ranks = make([]uint64, len(v.words)+1)
	for i, w := range v.words {
		v.ranks[i+1] = v.ranks[i] + uint64(bits.OnesCount64(w))
	}
	v.ones = v.ranks[len(v.words)]
}

// Get reports whether bit i is set.
func (v *BitVector) Get(i uint64) bool {
	return v.words[i>>6]&(1<<(i&63)) != 0
}

// Rank returns the number of set bits strictly before position i.
func (v *BitVector) Rank(i uint64) uint64 {
	w := i >> 6
	r := v.ranks[w]
	if rem := i & 63; rem != 0 {
		r += uint64(bits.OnesCount64(v.words[w] & (1<<rem - 1)))
	}
	return r
}

// Select returns the position of the k-th set bit, counting from zero.
// Rank and Select are inverse: Select(Rank(i)) == i whenever bit i is
// set. k must be < NumOnes; out-of-range k yields NumBits.
func (v *BitVector) Select(k uint64) uint64 {
	if k >= v.ones {
		return v.nbits
	}
	// Binary search the word whose cumulative rank covers k.
	lo, hi := 0, len(v.words)
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if v.ranks[mid] <= k {
			lo = mid
		} else {
			hi = mid
		}
	}
	w := v.words[lo]
	k -= v.ranks[lo]
	pos := uint64(lo) << 6
	for {
		c := uint64(bits.OnesCount8(uint8(w)))
		if k < c {
			break
		}
		k -= c
		w >>= 8
		pos += 8
	}
	for ; ; pos++ {
		if w&1 != 0 {
			if k == 0 {
				return pos
			}
			k--
		}
		w >>= 1
	}
}

func (v *BitVector) NumBits() uint64 { return v.nbits }
func (v *BitVector) NumOnes() uint64 { return v.ones }

// SizeInBytes reports the serialized size.
func (v *BitVector) SizeInBytes() uint64 {
	return 8 + 8*uint64(len(v.words))
}

func (v *BitVector) write(w io.Writer) error {
	if err := writeUint64(w, v.nbits); err != nil {
		return err
	}
	var b [8]byte
	for _, word := range v.words {
		for i := range b {
			b[i] = byte(word >> (8 * i))
		}
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

func readBitVector(r io.Reader) (*BitVector, error) {
	nbits, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if nbits > maxSectionBytes*8 {
		return nil, fmt.Errorf("%w: bit vector length %d", ErrBadStream, nbits)
	}
	nwords := (nbits + 63) / 64
	raw := make([]byte, 8*nwords)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	words := make([]uint64, nwords)
	for i := range words {
		var w uint64
		for j := range 8 {
			w |= uint64(raw[8*i+j]) << (8 * j)
		}
		words[i] = w
	}
	return newBitVector(words, nbits), nil
}

// bitBuilder accumulates bits for a BitVector under construction.
type bitBuilder struct {
	words []uint64
	nbits uint64
}

// push appends one bit.
func (b *bitBuilder) push(bit bool) {
	w := b.nbits >> 6
	if w == uint64(len(b.words)) {
		b.words = append(b.words, 0)
	}
	if bit {
		b.words[w] |= 1 << (b.nbits & 63)
	}
	b.nbits++
}

// set sets bit i, growing the vector to cover it if needed.
func (b *bitBuilder) set(i uint64) {
	for i >= b.nbits {
		b.push(false)
	}
	b.words[i>>6] |= 1 << (i & 63)
}

// resize extends the vector with zero bits up to n.
func (b *bitBuilder) resize(n uint64) {
	for b.nbits < n {
		b.push(false)
	}
}

func (b *bitBuilder) build() *BitVector {
	return newBitVector(b.words, b.nbits)
}
