package xcdat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Serialized sections are length-prefixed with a big-endian uint64.
// maxSectionBytes bounds a single section so a corrupt prefix cannot
// drive a huge allocation before the read fails.
const maxSectionBytes = 1 << 37

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func writeByteValue(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

func readByteValue(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeByteSlice(w io.Writer, b []byte) error {
	if err := writeUint64(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readByteSlice(r io.Reader) ([]byte, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if n > maxSectionBytes {
		return nil, fmt.Errorf("%w: section length %d", ErrBadStream, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeUint32Slice(w io.Writer, vs []uint32) error {
	if err := writeUint64(w, uint64(len(vs))); err != nil {
		return err
	}
	buf := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint32(buf[4*i:], v)
	}
	_, err := w.Write(buf)
	return err
}

func readUint32Slice(r io.Reader) ([]uint32, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if n > maxSectionBytes/4 {
		return nil, fmt.Errorf("%w: section length %d", ErrBadStream, n)
	}
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	vs := make([]uint32, n)
	for i := range vs {
		vs[i] = binary.BigEndian.Uint32(buf[4*i:])
	}
	return vs, nil
}

// resizeBytes grows or truncates b to n bytes, preserving capacity where
// it can.
func resizeBytes(b []byte, n int) []byte {
	if n <= len(b) {
		return b[:n]
	}
	for len(b) < n {
		b = append(b, 0)
	}
	return b
}
