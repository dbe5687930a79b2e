package cell

import (
	"encoding/hex"
	"strings"

	"github.com/wippyai/tvm-disasm/cell/internal/bitstr"
)

const hexDigits = "0123456789abcdef"

// hexBits renders the first n bits of data. When n is not a multiple of four a one
// bit and zero padding complete the last nibble and "_" is appended.
func hexBits(data []byte, n int) string {
	var b strings.Builder
	full := n / 4
	for i := 0; i < full; i++ {
		b.WriteByte(hexDigits[nibble(data, i*4)])
	}
	if rem := n % 4; rem != 0 {
		var v byte
		for i := 0; i < rem; i++ {
			v <<= 1
			if bitstr.Bit(data, full*4+i) {
				v |= 1
			}
		}
		v = v<<1 | 1
		v <<= 3 - rem
		b.WriteByte(hexDigits[v])
		b.WriteByte('_')
	}
	return b.String()
}

func nibble(data []byte, bit int) byte {
	v := data[bit>>3]
	if bit&7 == 0 {
		return v >> 4
	}
	if bit&7 == 4 {
		return v & 0xf
	}
	var out byte
	for i := 0; i < 4; i++ {
		out <<= 1
		if bitstr.Bit(data, bit+i) {
			out |= 1
		}
	}
	return out
}

// ParseHex parses the hex notation produced by Hex: an optional trailing "_" marks
// a completion tag that is stripped together with the trailing zero bits.
func ParseHex(s string) ([]byte, int, error) {
	tagged := strings.HasSuffix(s, "_")
	s = strings.TrimSuffix(s, "_")
	padded := s
	if len(padded)%2 == 1 {
		padded += "0"
	}
	data, err := hex.DecodeString(padded)
	if err != nil {
		return nil, 0, errBadHex(s, err)
	}
	bits := len(s) * 4
	if tagged {
		for bits > 0 && !bitstr.Bit(data, bits-1) {
			bits--
		}
		if bits == 0 {
			return nil, 0, errBadHex(s, nil)
		}
		bits--
	}
	return bitstr.Copy(data, 0, bits), bits, nil
}

// FromHex builds a cell from hex notation and child references.
func FromHex(s string, refs ...*Cell) (*Cell, error) {
	data, bits, err := ParseHex(s)
	if err != nil {
		return nil, err
	}
	return newCell(data, bits, refs)
}

// MustFromHex is like FromHex but panics on error.
func MustFromHex(s string, refs ...*Cell) *Cell {
	c, err := FromHex(s, refs...)
	if err != nil {
		panic(err)
	}
	return c
}
