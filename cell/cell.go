package cell

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/wippyai/tvm-disasm/cell/internal/bitstr"
)

const (
	// MaxBits is the data capacity of a single cell.
	MaxBits = 1023
	// MaxRefs is the number of child references a cell can hold.
	MaxRefs = 4
	// MaxDepth bounds the depth of any cell tree accepted by this package.
	MaxDepth = 1024
)

// Hash is a cell representation hash.
type Hash [32]byte

// String returns the lowercase hex form of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Cell is an immutable ordinary TVM cell. Hash and depth are computed on construction,
// so a Cell may be shared between goroutines.
type Cell struct {
	data  []byte
	refs  []*Cell
	bits  int
	depth int
	hash  Hash
}

func newCell(data []byte, bits int, refs []*Cell) (*Cell, error) {
	if bits > MaxBits {
		return nil, errTooManyBits(bits)
	}
	if len(refs) > MaxRefs {
		return nil, errTooManyRefs(len(refs))
	}
	c := &Cell{data: data, bits: bits, refs: refs}
	for _, r := range refs {
		if r.depth+1 > c.depth {
			c.depth = r.depth + 1
		}
	}
	if c.depth > MaxDepth {
		return nil, errTooDeep()
	}
	c.hash = c.computeHash()
	return c, nil
}

func (c *Cell) descriptors() (byte, byte) {
	d1 := byte(len(c.refs))
	d2 := byte(c.bits/8 + (c.bits+7)/8)
	return d1, d2
}

// paddedData returns the data bytes with the completion tag applied.
func (c *Cell) paddedData() []byte {
	out := make([]byte, (c.bits+7)/8)
	copy(out, c.data)
	if c.bits&7 != 0 {
		out[len(out)-1] |= 0x80 >> (c.bits & 7)
	}
	return out
}

func (c *Cell) computeHash() Hash {
	h := sha256.New()
	d1, d2 := c.descriptors()
	h.Write([]byte{d1, d2})
	h.Write(c.paddedData())
	for _, r := range c.refs {
		h.Write([]byte{byte(r.depth >> 8), byte(r.depth)})
	}
	for _, r := range c.refs {
		h.Write(r.hash[:])
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// Hash returns the representation hash.
func (c *Cell) Hash() Hash {
	return c.hash
}

// Depth returns the depth of the tree below c; a leaf has depth 0.
func (c *Cell) Depth() int {
	return c.depth
}

// BitLen returns the number of data bits.
func (c *Cell) BitLen() int {
	return c.bits
}

// Data returns the data bytes; unused low bits of the last byte are zero.
func (c *Cell) Data() []byte {
	return c.data
}

// RefCount returns the number of child references.
func (c *Cell) RefCount() int {
	return len(c.refs)
}

// Ref returns child i, or nil if there is no such child.
func (c *Cell) Ref(i int) *Cell {
	if i < 0 || i >= len(c.refs) {
		return nil
	}
	return c.refs[i]
}

// Bit returns data bit i.
func (c *Cell) Bit(i int) bool {
	return bitstr.Bit(c.data, i)
}

// Hex renders the data bits in hex with a completion tag when the length is not
// a multiple of four.
func (c *Cell) Hex() string {
	return hexBits(c.data, c.bits)
}

// BeginParse returns a slice covering the whole cell.
func (c *Cell) BeginParse() *Slice {
	return &Slice{cell: c, end: c.bits, refEnd: len(c.refs)}
}

// Count returns the number of cells in the tree rooted at c, counting shared
// subtrees once per occurrence, and the number of distinct cells.
func (c *Cell) Count() (total uint64, unique int) {
	memo := make(map[Hash]uint64)
	var walk func(*Cell) uint64
	walk = func(x *Cell) uint64 {
		if n, ok := memo[x.hash]; ok {
			return n
		}
		n := uint64(1)
		for _, r := range x.refs {
			n += walk(r)
		}
		memo[x.hash] = n
		return n
	}
	total = walk(c)
	return total, len(memo)
}
