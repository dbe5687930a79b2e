package bitstr

import (
	"errors"
	"fmt"
)

// ErrUnderflow is returned when a read runs past the end of the bit string.
var ErrUnderflow = errors.New("bitstr: underflow")

// Bit returns bit i of data, counting from the most significant bit of data[0].
func Bit(data []byte, i int) bool {
	return data[i>>3]&(0x80>>(i&7)) != 0
}

// Reader reads big-endian bit fields from a byte slice with position tracking.
type Reader struct {
	data []byte
	end  int
	pos  int
}

// NewReader creates a Reader over bits [start, end) of data.
func NewReader(data []byte, start, end int) *Reader {
	return &Reader{data: data, pos: start, end: end}
}

// Position returns the current bit position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return r.end - r.pos
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (bool, error) {
	if r.pos >= r.end {
		return false, r.wrapError(ErrUnderflow)
	}
	b := Bit(r.data, r.pos)
	r.pos++
	return b, nil
}

// ReadUint reads n bits (n <= 64) as an unsigned big-endian integer.
func (r *Reader) ReadUint(n int) (uint64, error) {
	v, err := r.PeekUint(n)
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// PeekUint reads n bits without advancing.
func (r *Reader) PeekUint(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, r.wrapError(fmt.Errorf("invalid width %d", n))
	}
	if r.pos+n > r.end {
		return 0, r.wrapError(ErrUnderflow)
	}
	var v uint64
	for i := 0; i < n; i++ {
		v <<= 1
		if Bit(r.data, r.pos+i) {
			v |= 1
		}
	}
	return v, nil
}

// ReadBytes reads n whole bytes starting at the current bit position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.pos+n*8 > r.end {
		return nil, r.wrapError(ErrUnderflow)
	}
	buf := Copy(r.data, r.pos, n*8)
	r.pos += n * 8
	return buf, nil
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at bit %d: %w", r.pos, err)
}

// Copy extracts bits [start, start+n) of data into a fresh left-aligned byte slice.
func Copy(data []byte, start, n int) []byte {
	out := make([]byte, (n+7)/8)
	if start&7 == 0 {
		copy(out, data[start>>3:])
		if n&7 != 0 {
			out[len(out)-1] &= 0xff << (8 - n&7)
		}
		return out
	}
	for i := 0; i < n; i++ {
		if Bit(data, start+i) {
			out[i>>3] |= 0x80 >> (i & 7)
		}
	}
	return out
}
