package xcdat

import (
	"fmt"
	"io"
)

// DacBc is the compact BASE/CHECK backend. BASE and CHECK are
// interleaved into one DAC-coded value stream: slot 2i carries
// Base(i)^i (or the low link byte for a leaf) and slot 2i+1 carries
// Check(i)^i. The XOR transform keeps children numerically close to
// their parents, so most transformed values fit a single byte plane.
// The high link bytes live in their own DAC stream, addressed by leaf
// rank.
type DacBc struct {
	values  dacVector
	leaves  *BitVector
	links   dacVector
	numUsed uint64
}

func newDacBc(src bcData) *DacBc {
	n := len(src.base)
	values := make([]uint32, 2*n)
	links := make([]uint32, 0, src.leaves.NumOnes())
	for i := range n {
		if src.leaves.Get(uint64(i)) {
			values[2*i] = src.base[i] & 0xFF
			links = append(links, src.base[i]>>8)
		} else {
			values[2*i] = src.base[i] ^ uint32(i)
		}
		values[2*i+1] = src.check[i] ^ uint32(i)
	}
	return &DacBc{
		values:  buildDacVector(values),
		leaves:  src.leaves,
		links:   buildDacVector(links),
		numUsed: src.numUsed,
	}
}

func (bc *DacBc) Base(i ID) ID  { return ID(bc.values.access(2*uint64(i))) ^ i }
func (bc *DacBc) Check(i ID) ID { return ID(bc.values.access(2*uint64(i)+1)) ^ i }

func (bc *DacBc) Link(i ID) ID {
	low := bc.values.access(2 * uint64(i))
	return ID(low | bc.links.access(bc.leaves.Rank(uint64(i)))<<8)
}

func (bc *DacBc) IsLeaf(i ID) bool { return bc.leaves.Get(uint64(i)) }

func (bc *DacBc) NumNodes() uint64     { return bc.leaves.NumBits() }
func (bc *DacBc) NumUsedNodes() uint64 { return bc.numUsed }
func (bc *DacBc) NumFreeNodes() uint64 { return bc.NumNodes() - bc.numUsed }

func (bc *DacBc) SizeInBytes() uint64 {
	return 1 + bc.values.sizeInBytes() + bc.leaves.SizeInBytes() + bc.links.sizeInBytes() + 8
}

func (bc *DacBc) write(w io.Writer) error {
	if err := writeByteValue(w, bcKindCompact); err != nil {
		return err
	}
	if err := bc.values.write(w); err != nil {
		return err
	}
	if err := bc.leaves.write(w); err != nil {
		return err
	}
	if err := bc.links.write(w); err != nil {
		return err
	}
	return writeUint64(w, bc.numUsed)
}

func readDacBc(r io.Reader) (*DacBc, error) {
	values, err := readDacVector(r)
	if err != nil {
		return nil, err
	}
	leaves, err := readBitVector(r)
	if err != nil {
		return nil, err
	}
	links, err := readDacVector(r)
	if err != nil {
		return nil, err
	}
	numUsed, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if values.numValues() != 2*leaves.NumBits() {
		return nil, fmt.Errorf("%w: base/check value count", ErrBadStream)
	}
	if links.numValues() != leaves.NumOnes() {
		return nil, fmt.Errorf("%w: link count", ErrBadStream)
	}
	return &DacBc{values: values, leaves: leaves, links: links, numUsed: numUsed}, nil
}

func (bc *DacBc) writeStats(w io.Writer, total uint64) {
	fmt.Fprintf(w, "member size statistics of xcdat.DacBc\n")
	showSizeRatio(w, "\tvalues:        ", bc.values.sizeInBytes(), total)
	showSizeRatio(w, "\tleaves:        ", bc.leaves.SizeInBytes(), total)
	showSizeRatio(w, "\tlinks:         ", bc.links.sizeInBytes(), total)
	fmt.Fprintf(w, "\tdac planes:     %d\n", len(bc.values.planes))
}
