package cell

import (
	"github.com/wippyai/tvm-disasm/cell/internal/bitstr"
)

// Builder accumulates bits and references for a new cell. The first error is kept
// and reported by EndCell, so calls can be chained.
type Builder struct {
	w    *bitstr.Writer
	refs []*Cell
	err  error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{w: bitstr.NewWriter()}
}

func (b *Builder) fits(n int) bool {
	if b.err != nil {
		return false
	}
	if b.w.Len()+n > MaxBits {
		b.err = errTooManyBits(b.w.Len() + n)
		return false
	}
	return true
}

// StoreUint appends the low n bits of v.
func (b *Builder) StoreUint(v uint64, n int) *Builder {
	if b.fits(n) {
		b.w.WriteUint(v, n)
	}
	return b
}

// StoreInt appends v as an n-bit two's complement integer.
func (b *Builder) StoreInt(v int64, n int) *Builder {
	return b.StoreUint(uint64(v), n)
}

// StoreBit appends a single bit.
func (b *Builder) StoreBit(v bool) *Builder {
	if b.fits(1) {
		b.w.WriteBit(v)
	}
	return b
}

// StoreBits appends the first n bits of data.
func (b *Builder) StoreBits(data []byte, n int) *Builder {
	if b.fits(n) {
		b.w.WriteBits(data, n)
	}
	return b
}

// StoreHex appends bits given in hex notation.
func (b *Builder) StoreHex(s string) *Builder {
	if b.err != nil {
		return b
	}
	data, n, err := ParseHex(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.StoreBits(data, n)
}

// StoreSlice appends the unread bits and references of s.
func (b *Builder) StoreSlice(s *Slice) *Builder {
	b.StoreBits(s.Bits(), s.BitsLeft())
	for i := 0; i < s.RefsLeft(); i++ {
		r, _ := s.PeekRef(i)
		b.StoreRef(r)
	}
	return b
}

// StoreRef appends a child reference.
func (b *Builder) StoreRef(c *Cell) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.refs) == MaxRefs {
		b.err = errTooManyRefs(len(b.refs) + 1)
		return b
	}
	b.refs = append(b.refs, c)
	return b
}

// BitLen returns the number of bits stored so far.
func (b *Builder) BitLen() int {
	return b.w.Len()
}

// EndCell finalizes the cell.
func (b *Builder) EndCell() (*Cell, error) {
	if b.err != nil {
		return nil, b.err
	}
	data := make([]byte, len(b.w.Bytes()))
	copy(data, b.w.Bytes())
	refs := make([]*Cell, len(b.refs))
	copy(refs, b.refs)
	return newCell(data, b.w.Len(), refs)
}

// MustEndCell is like EndCell but panics on error.
func (b *Builder) MustEndCell() *Cell {
	c, err := b.EndCell()
	if err != nil {
		panic(err)
	}
	return c
}
