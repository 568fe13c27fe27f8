package xcdat

/*

# xcdat: compressed, immutable string dictionary

This package implements a static dictionary mapping byte-string keys to
dense integer IDs, built on an improved double-array trie with suffix
(TAIL) compression and succinct rank/select support structures.

It follows the same "flat buffers, index arithmetic" style as pointer-free
merkle index structures:

- node relationships are arithmetic over shared integer arrays, never an
  object graph
- all query state lives in small explicit cursors
- the whole structure serializes as a fixed-order concatenation of
  self-delimiting sections

## Double-array navigation

For a non-leaf node n and an edge code c, the candidate child is

	child = Base(n) ^ c

and the candidate is a real child iff Check(child) == n. Check doubles as
a parent pointer, which is what allows Access to decode a key by walking
upward from its node to the root.

A node with no outgoing trie edges is a leaf; its Base slot is
reinterpreted as a link into the TAIL buffer holding the unique remainder
of its key. Offset 0 is reserved to mean "empty continuation".

## Key IDs

A node is terminal when a registered key ends on its path. The ID of a
key is the rank of its terminal node among all terminal nodes, so IDs are
dense in [0, NumKeys). Rank and select over the terminal bit-vector
convert between node IDs and key IDs in both directions.

## Tail modes

Two mutually exclusive TAIL encodings, fixed per dictionary:

- null-terminated: suffixes end at a 0x00 byte; keys must not contain
  embedded zero bytes
- binary: a parallel boundary bit-vector marks the last byte of each
  suffix; keys may contain any byte value

## Queries

- Lookup(key) -> ID (NotFound sentinel when absent)
- Access(id) -> key (nil when id is out of range)
- MakePrefixIterator(key): enumerates registered keys that are prefixes
  of the query, shortest first
- MakePredictiveIterator(key): enumerates registered keys extending the
  query, in lexicographic order

The dictionary is immutable after construction or deserialization and is
safe for unsynchronized concurrent readers. Iterators carry private
cursor state and belong to a single reader.

Construction is provided by Build over a sorted, duplicate-free key set.
The BASE/CHECK columns are stored in one of two interchangeable succinct
backends (see BcArray): a DAC-coded compact form and a byte-plane "fast"
form trading space for decode speed.

*/
