package cell

import (
	"github.com/wippyai/tvm-disasm/cell/internal/bitstr"
)

// Slice is a read cursor over a window of a cell's bits and references.
// Slices are small values; Clone before reading when the original position
// must be kept.
type Slice struct {
	cell   *Cell
	pos    int
	end    int
	ref    int
	refEnd int
}

// Cell returns the underlying cell.
func (s *Slice) Cell() *Cell {
	return s.cell
}

// Pos returns the bit offset of the cursor inside the underlying cell.
func (s *Slice) Pos() int {
	return s.pos
}

// RefPos returns the index of the next unread reference in the underlying cell.
func (s *Slice) RefPos() int {
	return s.ref
}

// BitsLeft returns the number of unread bits.
func (s *Slice) BitsLeft() int {
	return s.end - s.pos
}

// RefsLeft returns the number of unread references.
func (s *Slice) RefsLeft() int {
	return s.refEnd - s.ref
}

// Clone returns an independent copy of the cursor.
func (s *Slice) Clone() *Slice {
	c := *s
	return &c
}

func (s *Slice) reader() *bitstr.Reader {
	return bitstr.NewReader(s.cell.data, s.pos, s.end)
}

// BitAt peeks bit i relative to the cursor.
func (s *Slice) BitAt(i int) bool {
	return bitstr.Bit(s.cell.data, s.pos+i)
}

// PreloadUint reads n bits (n <= 64) without advancing.
func (s *Slice) PreloadUint(n int) (uint64, error) {
	if n > s.BitsLeft() {
		return 0, errUnderflow(n, s.BitsLeft())
	}
	return s.reader().PeekUint(n)
}

// LoadUint reads n bits (n <= 64) as an unsigned integer.
func (s *Slice) LoadUint(n int) (uint64, error) {
	v, err := s.PreloadUint(n)
	if err != nil {
		return 0, err
	}
	s.pos += n
	return v, nil
}

// LoadInt reads n bits (n <= 64) as a two's complement integer.
func (s *Slice) LoadInt(n int) (int64, error) {
	v, err := s.LoadUint(n)
	if err != nil {
		return 0, err
	}
	if n > 0 && n < 64 && v&(1<<uint(n-1)) != 0 {
		v |= ^uint64(0) << uint(n)
	}
	return int64(v), nil
}

// LoadBit reads a single bit.
func (s *Slice) LoadBit() (bool, error) {
	v, err := s.LoadUint(1)
	return v == 1, err
}

// LoadBytes reads n whole bytes.
func (s *Slice) LoadBytes(n int) ([]byte, error) {
	if n*8 > s.BitsLeft() {
		return nil, errUnderflow(n*8, s.BitsLeft())
	}
	out := bitstr.Copy(s.cell.data, s.pos, n*8)
	s.pos += n * 8
	return out, nil
}

// LoadSlice splits off the next bits data bits and refs references into a new
// slice over the same cell and advances past them.
func (s *Slice) LoadSlice(bits, refs int) (*Slice, error) {
	if bits > s.BitsLeft() {
		return nil, errUnderflow(bits, s.BitsLeft())
	}
	if refs > s.RefsLeft() {
		return nil, errNoRef(s.ref+refs-1, s.refEnd)
	}
	sub := &Slice{cell: s.cell, pos: s.pos, end: s.pos + bits, ref: s.ref, refEnd: s.ref + refs}
	s.pos += bits
	s.ref += refs
	return sub, nil
}

// Prefix returns a slice over the first bits bits and refs references without
// advancing.
func (s *Slice) Prefix(bits, refs int) *Slice {
	return &Slice{cell: s.cell, pos: s.pos, end: s.pos + bits, ref: s.ref, refEnd: s.ref + refs}
}

// PeekRef returns reference i relative to the cursor.
func (s *Slice) PeekRef(i int) (*Cell, error) {
	if i < 0 || i >= s.RefsLeft() {
		return nil, errNoRef(i, s.RefsLeft())
	}
	return s.cell.refs[s.ref+i], nil
}

// LoadRef reads the next reference.
func (s *Slice) LoadRef() (*Cell, error) {
	c, err := s.PeekRef(0)
	if err != nil {
		return nil, err
	}
	s.ref++
	return c, nil
}

// Skip advances past n bits.
func (s *Slice) Skip(n int) error {
	if n > s.BitsLeft() {
		return errUnderflow(n, s.BitsLeft())
	}
	s.pos += n
	return nil
}

// TrimRight drops trailing zero bits and the last one bit before them. A slice
// holding only zeros becomes empty.
func (s *Slice) TrimRight() {
	end := s.end
	for end > s.pos && !bitstr.Bit(s.cell.data, end-1) {
		end--
	}
	if end > s.pos {
		end--
	}
	s.end = end
}

// Bits copies the unread bits into a fresh byte slice.
func (s *Slice) Bits() []byte {
	return bitstr.Copy(s.cell.data, s.pos, s.BitsLeft())
}

// Hex renders the unread bits like Cell.Hex.
func (s *Slice) Hex() string {
	return hexBits(s.Bits(), s.BitsLeft())
}

// BitsEqual reports whether the unread bits of s and o are identical.
func (s *Slice) BitsEqual(o *Slice) bool {
	if s.BitsLeft() != o.BitsLeft() {
		return false
	}
	for i := 0; i < s.BitsLeft(); i++ {
		if s.BitAt(i) != o.BitAt(i) {
			return false
		}
	}
	return true
}

// ToCell builds a new cell holding exactly the unread bits and references.
func (s *Slice) ToCell() (*Cell, error) {
	refs := make([]*Cell, s.RefsLeft())
	copy(refs, s.cell.refs[s.ref:s.refEnd])
	return newCell(s.Bits(), s.BitsLeft(), refs)
}
