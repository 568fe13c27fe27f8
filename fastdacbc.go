package xcdat

import (
	"fmt"
	"io"
)

// FastDacBc is the speed-leaning BASE/CHECK backend. It keeps the same
// interleaved XOR transform as DacBc but flattens the DAC levels into a
// single byte plane plus one overflow array: a transformed value either
// fits the byte plane or is stored whole in extra, addressed by the rank
// of its overflow flag. Every access costs at most one rank.
type FastDacBc struct {
	low      []byte
	extended *BitVector
	extra    []uint32
	leaves   *BitVector
	links    []uint32
	numUsed  uint64
}

func newFastDacBc(src bcData) *FastDacBc {
	n := len(src.base)
	bc := &FastDacBc{
		low:     make([]byte, 2*n),
		links:   make([]uint32, 0, src.leaves.NumOnes()),
		numUsed: src.numUsed,
	}
	var ext bitBuilder
	put := func(slot int, v uint32) {
		if v < 256 {
			bc.low[slot] = byte(v)
			ext.push(false)
			return
		}
		ext.push(true)
		bc.extra = append(bc.extra, v)
	}
	for i := range n {
		if src.leaves.Get(uint64(i)) {
			put(2*i, src.base[i]&0xFF)
			bc.links = append(bc.links, src.base[i]>>8)
		} else {
			put(2*i, src.base[i]^uint32(i))
		}
		put(2*i+1, src.check[i]^uint32(i))
	}
	bc.extended = ext.build()
	bc.leaves = src.leaves
	return bc
}

func (bc *FastDacBc) access(slot uint64) uint32 {
	if !bc.extended.Get(slot) {
		return uint32(bc.low[slot])
	}
	return bc.extra[bc.extended.Rank(slot)]
}

func (bc *FastDacBc) Base(i ID) ID  { return ID(bc.access(2*uint64(i))) ^ i }
func (bc *FastDacBc) Check(i ID) ID { return ID(bc.access(2*uint64(i)+1)) ^ i }

func (bc *FastDacBc) Link(i ID) ID {
	return ID(bc.access(2*uint64(i)) | bc.links[bc.leaves.Rank(uint64(i))]<<8)
}

func (bc *FastDacBc) IsLeaf(i ID) bool { return bc.leaves.Get(uint64(i)) }

func (bc *FastDacBc) NumNodes() uint64     { return bc.leaves.NumBits() }
func (bc *FastDacBc) NumUsedNodes() uint64 { return bc.numUsed }
func (bc *FastDacBc) NumFreeNodes() uint64 { return bc.NumNodes() - bc.numUsed }

func (bc *FastDacBc) SizeInBytes() uint64 {
	return 1 + (8 + uint64(len(bc.low))) + bc.extended.SizeInBytes() +
		(8 + 4*uint64(len(bc.extra))) + bc.leaves.SizeInBytes() +
		(8 + 4*uint64(len(bc.links))) + 8
}

func (bc *FastDacBc) write(w io.Writer) error {
	if err := writeByteValue(w, bcKindFast); err != nil {
		return err
	}
	if err := writeByteSlice(w, bc.low); err != nil {
		return err
	}
	if err := bc.extended.write(w); err != nil {
		return err
	}
	if err := writeUint32Slice(w, bc.extra); err != nil {
		return err
	}
	if err := bc.leaves.write(w); err != nil {
		return err
	}
	if err := writeUint32Slice(w, bc.links); err != nil {
		return err
	}
	return writeUint64(w, bc.numUsed)
}

func readFastDacBc(r io.Reader) (*FastDacBc, error) {
	low, err := readByteSlice(r)
	if err != nil {
		return nil, err
	}
	extended, err := readBitVector(r)
	if err != nil {
		return nil, err
	}
	extra, err := readUint32Slice(r)
	if err != nil {
		return nil, err
	}
	leaves, err := readBitVector(r)
	if err != nil {
		return nil, err
	}
	links, err := readUint32Slice(r)
	if err != nil {
		return nil, err
	}
	numUsed, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if uint64(len(low)) != 2*leaves.NumBits() ||
		extended.NumBits() != uint64(len(low)) ||
		extended.NumOnes() != uint64(len(extra)) ||
		leaves.NumOnes() != uint64(len(links)) {
		return nil, fmt.Errorf("%w: base/check sections inconsistent", ErrBadStream)
	}
	return &FastDacBc{
		low:      low,
		extended: extended,
		extra:    extra,
		leaves:   leaves,
		links:    links,
		numUsed:  numUsed,
	}, nil
}

func (bc *FastDacBc) writeStats(w io.Writer, total uint64) {
	fmt.Fprintf(w, "member size statistics of xcdat.FastDacBc\n")
	showSizeRatio(w, "\tlow plane:     ", 8+uint64(len(bc.low)), total)
	showSizeRatio(w, "\textended:      ", bc.extended.SizeInBytes(), total)
	showSizeRatio(w, "\textra:         ", 8+4*uint64(len(bc.extra)), total)
	showSizeRatio(w, "\tleaves:        ", bc.leaves.SizeInBytes(), total)
	showSizeRatio(w, "\tlinks:         ", 8+4*uint64(len(bc.links)), total)
}
