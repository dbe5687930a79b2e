package cell

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/wippyai/tvm-disasm/cell/internal/bitstr"
	"github.com/wippyai/tvm-disasm/errors"
)

// Bag-of-cells magic prefixes.
const (
	magicGeneric   = 0xb5ee9c72
	magicIndexed   = 0x68ff65f3
	magicIndexCRC  = 0xacc3a728
	maxBoCCells    = 1 << 24
	cellHashBytes  = 32
	cellDepthBytes = 2
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

type bocHeader struct {
	hasIndex  bool
	hasCRC    bool
	sizeBytes int
	offBytes  int
	cells     int
	roots     int
	dataSize  int
	rootList  []int
}

type bocReader struct {
	data []byte
	pos  int
}

func (r *bocReader) need(n int) error {
	if r.pos+n > len(r.data) {
		return errors.Load(fmt.Sprintf("truncated at byte %d, need %d more", r.pos, n), nil)
	}
	return nil
}

func (r *bocReader) readByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *bocReader) readUint(n int) (int, error) {
	if err := r.need(n); err != nil {
		return 0, err
	}
	v := 0
	for _, b := range r.data[r.pos : r.pos+n] {
		v = v<<8 | int(b)
	}
	r.pos += n
	return v, nil
}

func (r *bocReader) readBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func readHeader(r *bocReader) (*bocHeader, error) {
	magic, err := r.readUint(4)
	if err != nil {
		return nil, err
	}
	h := &bocHeader{}
	flags, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch magic {
	case magicGeneric:
		h.hasIndex = flags&0x80 != 0
		h.hasCRC = flags&0x40 != 0
		h.sizeBytes = int(flags & 7)
	case magicIndexed:
		h.hasIndex = true
		h.sizeBytes = int(flags)
	case magicIndexCRC:
		h.hasIndex = true
		h.hasCRC = true
		h.sizeBytes = int(flags)
	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Detail("unknown bag-of-cells magic %08x", magic).
			Value(magic).
			Build()
	}
	if h.sizeBytes < 1 || h.sizeBytes > 4 {
		return nil, errors.Load(fmt.Sprintf("bad reference size %d", h.sizeBytes), nil)
	}
	off, err := r.readByte()
	if err != nil {
		return nil, err
	}
	h.offBytes = int(off)
	if h.offBytes < 1 || h.offBytes > 8 {
		return nil, errors.Load(fmt.Sprintf("bad offset size %d", h.offBytes), nil)
	}
	if h.cells, err = r.readUint(h.sizeBytes); err != nil {
		return nil, err
	}
	if h.roots, err = r.readUint(h.sizeBytes); err != nil {
		return nil, err
	}
	if _, err = r.readUint(h.sizeBytes); err != nil { // absent
		return nil, err
	}
	if h.dataSize, err = r.readUint(h.offBytes); err != nil {
		return nil, err
	}
	if h.cells > maxBoCCells || h.roots > h.cells || h.roots == 0 {
		return nil, errors.Load(fmt.Sprintf("bad counts: %d cells, %d roots", h.cells, h.roots), nil)
	}
	if magic == magicGeneric {
		for i := 0; i < h.roots; i++ {
			idx, err := r.readUint(h.sizeBytes)
			if err != nil {
				return nil, err
			}
			h.rootList = append(h.rootList, idx)
		}
	} else {
		if h.roots != 1 {
			return nil, errors.Load(fmt.Sprintf("legacy format with %d roots", h.roots), nil)
		}
		h.rootList = []int{0}
	}
	if h.hasIndex {
		if _, err := r.readBytes(h.cells * h.offBytes); err != nil {
			return nil, err
		}
	}
	return h, nil
}

type rawCell struct {
	data []byte
	bits int
	refs []int
}

func readCell(r *bocReader, h *bocHeader, idx int) (*rawCell, error) {
	d1, err := r.readByte()
	if err != nil {
		return nil, err
	}
	d2, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if d1&8 != 0 {
		return nil, errors.Unsupported(errors.PhaseLoad, fmt.Sprintf("exotic cell %d", idx))
	}
	refCount := int(d1 & 7)
	if refCount > MaxRefs {
		return nil, errTooManyRefs(refCount)
	}
	if d1&16 != 0 {
		levels := 1
		if _, err := r.readBytes(levels * (cellHashBytes + cellDepthBytes)); err != nil {
			return nil, err
		}
	}
	size := (int(d2) + 1) / 2
	raw, err := r.readBytes(size)
	if err != nil {
		return nil, err
	}
	bits := size * 8
	if d2&1 == 1 {
		for bits > 0 && !bitstr.Bit(raw, bits-1) {
			bits--
		}
		if bits == 0 {
			return nil, errors.Load(fmt.Sprintf("cell %d: missing completion tag", idx), nil)
		}
		bits--
	}
	rc := &rawCell{data: bitstr.Copy(raw, 0, bits), bits: bits}
	for i := 0; i < refCount; i++ {
		ref, err := r.readUint(h.sizeBytes)
		if err != nil {
			return nil, err
		}
		if ref <= idx || ref >= h.cells {
			return nil, errors.Load(fmt.Sprintf("cell %d: bad reference %d", idx, ref), nil)
		}
		rc.refs = append(rc.refs, ref)
	}
	return rc, nil
}

// DeserializeBoC parses a serialized bag of cells and returns its roots.
func DeserializeBoC(data []byte) ([]*Cell, error) {
	r := &bocReader{data: data}
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	start := r.pos
	if err := r.need(h.dataSize); err != nil {
		return nil, err
	}
	raws := make([]*rawCell, h.cells)
	for i := range raws {
		if raws[i], err = readCell(r, h, i); err != nil {
			return nil, err
		}
	}
	if r.pos-start != h.dataSize {
		return nil, errors.Load(fmt.Sprintf("cell data is %d bytes, header says %d", r.pos-start, h.dataSize), nil)
	}
	if h.hasCRC {
		want, err := r.readBytes(4)
		if err != nil {
			return nil, err
		}
		if crc32.Checksum(data[:r.pos-4], crcTable) != binary.LittleEndian.Uint32(want) {
			return nil, errors.Load("crc32c mismatch", nil)
		}
	}

	// References always point forward, so build from the last cell back.
	cells := make([]*Cell, h.cells)
	for i := h.cells - 1; i >= 0; i-- {
		raw := raws[i]
		refs := make([]*Cell, len(raw.refs))
		for j, ref := range raw.refs {
			refs[j] = cells[ref]
		}
		c, err := newCell(raw.data, raw.bits, refs)
		if err != nil {
			return nil, errors.Load(fmt.Sprintf("cell %d", i), err)
		}
		cells[i] = c
	}

	roots := make([]*Cell, 0, len(h.rootList))
	for _, idx := range h.rootList {
		if idx >= h.cells {
			return nil, errors.OutOfBounds(errors.PhaseLoad, []string{"roots"}, idx, h.cells)
		}
		roots = append(roots, cells[idx])
	}
	return roots, nil
}

func bytesFor(v int) int {
	n := 1
	for v >= 1<<(8*n) && n < 8 {
		n++
	}
	return n
}

// SerializeBoC writes roots in the generic format without an index, with a crc32c
// trailer. Identical subtrees are stored once.
func SerializeBoC(roots ...*Cell) ([]byte, error) {
	if len(roots) == 0 {
		return nil, errors.InvalidData(errors.PhaseRender, nil, "no roots to serialize")
	}
	index := make(map[Hash]int)
	var order []*Cell
	var visit func(*Cell)
	visit = func(c *Cell) {
		if _, ok := index[c.hash]; ok {
			return
		}
		index[c.hash] = -1
		for _, r := range c.refs {
			visit(r)
		}
		order = append(order, c)
	}
	for _, r := range roots {
		visit(r)
	}
	// reverse post-order puts every parent before its children
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	for i, c := range order {
		index[c.hash] = i
	}

	sizeBytes := bytesFor(len(order))
	w := bitstr.NewWriter()
	for _, c := range order {
		d1, d2 := c.descriptors()
		w.WriteBytes([]byte{d1, d2})
		w.WriteBytes(c.paddedData())
		for _, r := range c.refs {
			w.WriteUint(uint64(index[r.hash]), sizeBytes*8)
		}
	}
	body := w.Bytes()
	offBytes := bytesFor(len(body))

	out := bitstr.NewWriter()
	out.WriteUint(magicGeneric, 32)
	out.WriteUint(0x40|uint64(sizeBytes), 8)
	out.WriteUint(uint64(offBytes), 8)
	out.WriteUint(uint64(len(order)), sizeBytes*8)
	out.WriteUint(uint64(len(roots)), sizeBytes*8)
	out.WriteUint(0, sizeBytes*8)
	out.WriteUint(uint64(len(body)), offBytes*8)
	for _, r := range roots {
		out.WriteUint(uint64(index[r.hash]), sizeBytes*8)
	}
	out.WriteBytes(body)
	res := out.Bytes()
	var crc [4]byte
	binary.LittleEndian.PutUint32(crc[:], crc32.Checksum(res, crcTable))
	return append(res, crc[:]...), nil
}
