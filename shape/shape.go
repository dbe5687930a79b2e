package shape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

type kind uint8

const (
	kindAny kind = iota
	kindLiteral
	kindVar
)

// Shape is a structural pattern over a cell tree. Literal nodes must match a
// cell exactly, Var nodes bind the cell under a name, Any nodes match anything.
type Shape struct {
	name string
	hex  string
	data []byte
	refs []*Shape
	bits int
	kind kind
}

// Any matches every cell and binds nothing.
func Any() *Shape {
	return &Shape{kind: kindAny}
}

// Var matches every cell and binds it under name.
func Var(name string) *Shape {
	return &Shape{kind: kindVar, name: name}
}

// ParseLiteral builds a literal node from hex notation. A trailing "_" marks a
// completion tag.
func ParseLiteral(hex string) (*Shape, error) {
	data, bits, err := cell.ParseHex(hex)
	if err != nil {
		return nil, err
	}
	return &Shape{kind: kindLiteral, hex: hex, data: data, bits: bits}, nil
}

// Literal is like ParseLiteral but panics on malformed hex.
func Literal(hex string) *Shape {
	s, err := ParseLiteral(hex)
	if err != nil {
		panic(fmt.Sprintf("shape: bad literal %q: %v", hex, err))
	}
	return s
}

// Branch returns a copy of s with children appended to its references.
func (s *Shape) Branch(children ...*Shape) *Shape {
	cp := *s
	cp.refs = append(append([]*Shape(nil), s.refs...), children...)
	return &cp
}

// Captures matches c against s and returns the cells bound by Var nodes.
// Matching never backtracks: any mismatch fails the whole match.
func (s *Shape) Captures(c *cell.Cell) (map[string]*cell.Cell, error) {
	out := make(map[string]*cell.Cell)
	if err := s.capture(c, out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Shape) capture(c *cell.Cell, out map[string]*cell.Cell, path []string) error {
	switch s.kind {
	case kindAny:
		return nil
	case kindVar:
		out[s.name] = c
		return nil
	}
	if c.BitLen() != s.bits {
		return mismatch(path, "data size doesn't match")
	}
	if !bytes.Equal(c.Data(), s.data) {
		return mismatch(path, "data doesn't match")
	}
	if c.RefCount() != len(s.refs) {
		return mismatch(path, "number of children doesn't match")
	}
	for i, child := range s.refs {
		if err := child.capture(c.Ref(i), out, append(path, fmt.Sprint(i))); err != nil {
			return err
		}
	}
	return nil
}

func mismatch(path []string, detail string) error {
	return errors.New(errors.PhaseMatch, errors.KindCheckFailed).
		Path(path...).
		Detail("%s", detail).
		Build()
}

// String renders the pattern in a compact nested form, e.g.
// 8adb35(20f861ed1ed9, $dict-c3, *).
func (s *Shape) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s *Shape) write(b *strings.Builder) {
	switch s.kind {
	case kindAny:
		b.WriteByte('*')
		return
	case kindVar:
		b.WriteString("$" + s.name)
		return
	}
	b.WriteString(s.hex)
	if len(s.refs) == 0 {
		return
	}
	b.WriteByte('(')
	for i, r := range s.refs {
		if i > 0 {
			b.WriteString(", ")
		}
		r.write(b)
	}
	b.WriteByte(')')
}
