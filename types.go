package xcdat

import "errors"

// ID is a dense key identifier, and doubles as a node index into the
// double array. Key IDs occupy [0, NumKeys); node IDs occupy
// [0, NumNodes).
type ID = uint32

// NotFound is the sentinel returned by Lookup for unregistered keys.
const NotFound = ^ID(0)

var (
	ErrNoKeys        = errors.New("xcdat: no keys")
	ErrKeyOutOfOrder = errors.New("xcdat: key out of order")
	ErrDuplicateKey  = errors.New("xcdat: duplicate key")
	ErrZeroByteKey   = errors.New("xcdat: key contains a zero byte, binary mode required")

	ErrBadStream = errors.New("xcdat: malformed dictionary stream")
	ErrBadBcKind = errors.New("xcdat: unknown base/check backend kind")
)

// Options selects the tail encoding and the BASE/CHECK backend for Build.
type Options struct {
	// BinMode selects the binary-safe tail encoding. Required when any
	// key contains an embedded zero byte.
	BinMode bool
	// Fast selects the byte-plane BASE/CHECK backend, which decodes
	// with at most one rank per access at some cost in space.
	Fast bool
}
