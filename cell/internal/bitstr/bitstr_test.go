package bitstr

import (
	"bytes"
	"errors"
	"testing"
)

func TestReader(t *testing.T) {
	r := NewReader([]byte{0xa5, 0x0f}, 0, 16)

	b, err := r.ReadBit()
	if err != nil || !b {
		t.Fatalf("ReadBit = %v, %v", b, err)
	}
	v, err := r.ReadUint(3)
	if err != nil || v != 0b010 {
		t.Fatalf("ReadUint(3) = %b, %v", v, err)
	}
	v, err = r.PeekUint(8)
	if err != nil || v != 0x50 {
		t.Fatalf("PeekUint(8) = %x, %v", v, err)
	}
	if r.Position() != 4 {
		t.Fatalf("Position = %d after peek", r.Position())
	}
	v, err = r.ReadUint(12)
	if err != nil || v != 0x50f {
		t.Fatalf("ReadUint(12) = %x, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d", r.Remaining())
	}
	if _, err := r.ReadBit(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
}

func TestReaderWindow(t *testing.T) {
	r := NewReader([]byte{0xff, 0x00}, 4, 12)
	got, err := r.ReadBytes(1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0xf0}) {
		t.Errorf("ReadBytes = %x, want f0", got)
	}
}

func TestCopy(t *testing.T) {
	tests := []struct {
		data  []byte
		start int
		n     int
		want  []byte
	}{
		{[]byte{0xab, 0xcd}, 0, 16, []byte{0xab, 0xcd}},
		{[]byte{0xab, 0xcd}, 0, 12, []byte{0xab, 0xc0}},
		{[]byte{0xab, 0xcd}, 4, 8, []byte{0xbc}},
		{[]byte{0xab, 0xcd}, 3, 3, []byte{0x40}},
		{[]byte{0xab}, 8, 0, []byte{}},
	}
	for _, tt := range tests {
		got := Copy(tt.data, tt.start, tt.n)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Copy(%x, %d, %d) = %x, want %x", tt.data, tt.start, tt.n, got, tt.want)
		}
	}
}

func TestWriter(t *testing.T) {
	w := NewWriter()
	w.WriteBit(true)
	w.WriteUint(0b010, 3)
	w.WriteBytes([]byte{0x50})
	w.WriteUint(0xf, 4)

	if w.Len() != 16 {
		t.Fatalf("Len = %d, want 16", w.Len())
	}
	if !bytes.Equal(w.Bytes(), []byte{0xa5, 0x0f}) {
		t.Errorf("Bytes = %x, want a50f", w.Bytes())
	}

	w = NewWriter()
	w.WriteBytes([]byte{0xde, 0xad})
	w.WriteBits([]byte{0xe0}, 3)
	if w.Len() != 19 || !bytes.Equal(w.Bytes(), []byte{0xde, 0xad, 0xe0}) {
		t.Errorf("got %x/%d", w.Bytes(), w.Len())
	}
}
