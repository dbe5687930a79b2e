// Package cell implements ordinary TVM cells, slices over them, the bag-of-cells
// serialization format and HashmapE dictionaries.
//
// A cell holds up to 1023 data bits and up to four references to other cells.
// Cells are immutable and identified by their representation hash:
//
//	c := cell.NewBuilder().StoreUint(0x8b, 8).StoreRef(child).MustEndCell()
//	s := c.BeginParse()
//	op, err := s.LoadUint(8)
//
// Bit strings are written in hex with an optional completion tag: "f85_" is the
// 11-bit string 11111000010.
package cell
