package bitstr

// Writer appends bit fields to a growing byte buffer.
type Writer struct {
	buf []byte
	n   int
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written bytes. Unused low bits of the last byte are zero.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return w.n
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(b bool) {
	if w.n&7 == 0 {
		w.buf = append(w.buf, 0)
	}
	if b {
		w.buf[w.n>>3] |= 0x80 >> (w.n & 7)
	}
	w.n++
}

// WriteUint appends the low n bits of v, most significant first.
func (w *Writer) WriteUint(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(v>>uint(i)&1 == 1)
	}
}

// WriteBits appends the first n bits of data.
func (w *Writer) WriteBits(data []byte, n int) {
	if w.n&7 == 0 && n&7 == 0 {
		w.buf = append(w.buf, data[:n>>3]...)
		w.n += n
		return
	}
	for i := 0; i < n; i++ {
		w.WriteBit(Bit(data, i))
	}
}

// WriteBytes appends whole bytes.
func (w *Writer) WriteBytes(data []byte) {
	w.WriteBits(data, len(data)*8)
}
