package xcdat

import (
	"fmt"
	"io"
)

// BcArray is the succinct store for the BASE and CHECK columns of the
// double array. For a leaf node the BASE slot is reinterpreted as the
// node's tail link; Base is meaningful only for non-leaf nodes and Link
// only for leaves.
//
// Both implementations rely on the same layout invariants, maintained by
// the builder:
//
//   - NumNodes is a multiple of 256, so Base(n)^code stays in bounds for
//     any code
//   - a free slot i stores Base(i) == Check(i) == i, so it can never
//     satisfy the Check(child) == parent test
type BcArray interface {
	Base(i ID) ID
	Check(i ID) ID
	Link(i ID) ID
	IsLeaf(i ID) bool

	NumNodes() uint64
	NumUsedNodes() uint64
	NumFreeNodes() uint64
	SizeInBytes() uint64

	write(w io.Writer) error
	writeStats(w io.Writer, total uint64)
}

const (
	bcKindCompact byte = iota
	bcKindFast
)

// bcData is the builder's plain-array form of the double array, consumed
// by the backend constructors.
type bcData struct {
	base    []uint32
	check   []uint32
	leaves  *BitVector
	numUsed uint64
}

func newBcArray(src bcData, fast bool) BcArray {
	if fast {
		return newFastDacBc(src)
	}
	return newDacBc(src)
}

func readBcArray(r io.Reader) (BcArray, error) {
	kind, err := readByteValue(r)
	if err != nil {
		return nil, err
	}
	switch kind {
	case bcKindCompact:
		return readDacBc(r)
	case bcKindFast:
		return readFastDacBc(r)
	}
	return nil, fmt.Errorf("%w: kind %d", ErrBadBcKind, kind)
}
