package xcdat

import (
	"fmt"
	"io"
)

// dacVector stores uint32 values with Directly Addressable Codes: plane
// 0 holds the low byte of every value, and each continuation flag routes
// the remainder, via rank, to the value's slot in the next plane.
type dacVector struct {
	planes [][]byte
	// flags[l] is parallel to planes[l]; a set bit means the value
	// continues into planes[l+1]. len(flags) == len(planes)-1.
	flags []*BitVector
}

func buildDacVector(values []uint32) dacVector {
	var d dacVector
	cur := values
	for {
		plane := make([]byte, len(cur))
		var next []uint32
		var fb bitBuilder
		for i, v := range cur {
			plane[i] = byte(v)
			rest := v >> 8
			fb.push(rest != 0)
			if rest != 0 {
				next = append(next, rest)
			}
		}
		d.planes = append(d.planes, plane)
		if len(next) == 0 {
			break
		}
		d.flags = append(d.flags, fb.build())
		cur = next
	}
	return d
}

func (d *dacVector) access(i uint64) uint32 {
	v := uint32(d.planes[0][i])
	for l := 0; l < len(d.flags); l++ {
		if !d.flags[l].Get(i) {
			break
		}
		i = d.flags[l].Rank(i)
		v |= uint32(d.planes[l+1][i]) << (8 * uint(l+1))
	}
	return v
}

func (d *dacVector) numValues() uint64 {
	return uint64(len(d.planes[0]))
}

func (d *dacVector) sizeInBytes() uint64 {
	n := uint64(1)
	for _, p := range d.planes {
		n += 8 + uint64(len(p))
	}
	for _, f := range d.flags {
		n += f.SizeInBytes()
	}
	return n
}

func (d *dacVector) write(w io.Writer) error {
	if err := writeByteValue(w, byte(len(d.planes))); err != nil {
		return err
	}
	for _, p := range d.planes {
		if err := writeByteSlice(w, p); err != nil {
			return err
		}
	}
	for _, f := range d.flags {
		if err := f.write(w); err != nil {
			return err
		}
	}
	return nil
}

func readDacVector(r io.Reader) (dacVector, error) {
	nplanes, err := readByteValue(r)
	if err != nil {
		return dacVector{}, err
	}
	if nplanes == 0 || nplanes > 4 {
		return dacVector{}, fmt.Errorf("%w: dac plane count %d", ErrBadStream, nplanes)
	}
	var d dacVector
	for range nplanes {
		p, err := readByteSlice(r)
		if err != nil {
			return dacVector{}, err
		}
		d.planes = append(d.planes, p)
	}
	for range nplanes - 1 {
		f, err := readBitVector(r)
		if err != nil {
			return dacVector{}, err
		}
		d.flags = append(d.flags, f)
	}
	for l, f := range d.flags {
		if f.NumBits() != uint64(len(d.planes[l])) || f.NumOnes() != uint64(len(d.planes[l+1])) {
			return dacVector{}, fmt.Errorf("%w: dac plane %d inconsistent", ErrBadStream, l+1)
		}
	}
	return d, nil
}
