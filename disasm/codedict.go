package disasm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

// dictJumpHead reports whether insn pushes a dictionary that a following
// DICTUGETJMP dispatches through.
func dictJumpHead(insn, next *Instruction) bool {
	if next.Name != "DICTUGETJMP" {
		return false
	}
	return insn.Name == "DICTPUSHCONST" || insn.Name == "PFXDICTSWITCH"
}

type codeKey struct {
	first *Instruction
	n     int
}

// ElaborateDictJumps walks code and every nested block and tags each
// DICTPUSHCONST or PFXDICTSWITCH directly followed by DICTUGETJMP with a
// CodeDictMarker. Running it twice over the same tree is a no-op.
func ElaborateDictJumps(code Code) {
	visited := make(map[codeKey]struct{})
	stack := []Code{code}
	marked := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(cur) == 0 {
			continue
		}
		key := codeKey{first: cur[0], n: len(cur)}
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}

		for i := 0; i+1 < len(cur); i++ {
			if dictJumpHead(cur[i], cur[i+1]) && !cur[i].marked() {
				cur[i].Params = append(cur[i].Params, CodeDictMarker{})
				marked++
			}
		}
		for _, insn := range cur {
			for _, p := range insn.Params {
				if b, ok := p.(CodeBlock); ok {
					stack = append(stack, b.Code)
				}
			}
		}
	}
	if marked > 0 {
		Logger().Debug("dictionary jumps elaborated", zap.Int("count", marked))
	}
}

type dictLeaf struct {
	key    uint64
	offset int
	code   Code
}

// DelimitedDict is a jump-table dictionary whose leaves have been located in
// the cell tree and decoded as code.
type DelimitedDict struct {
	root    *cell.Cell
	keyBits int
	leaves  map[string]dictLeaf
}

// NewDelimitedDict wraps the dictionary rooted at root with keyBits-bit keys.
func NewDelimitedDict(root *cell.Cell, keyBits int) *DelimitedDict {
	return &DelimitedDict{
		root:    root,
		keyBits: keyBits,
		leaves:  make(map[string]dictLeaf),
	}
}

// Mark finds, for every entry, the path of reference indices from the root to
// the cell holding its value and the bit offset where the value starts, then
// decodes the value. Two entries resolving to the same path fail.
func (d *DelimitedDict) Mark() error {
	entries, err := cell.LoadDict(d.root, d.keyBits)
	if err != nil {
		return errors.Wrap(errors.PhaseElaborate, errors.KindInvalidData, err, "read jump table")
	}
	for _, e := range entries {
		path, offset, ok := locate(d.root, e.Value)
		if !ok {
			return errors.NotFound(errors.PhaseElaborate, "dictionary leaf", fmt.Sprint(e.Key))
		}
		code, err := NewLoader().Load(e.Value.Clone(), true)
		if err != nil {
			return errors.Wrap(errors.PhaseElaborate, errors.KindInvalidData, err, fmt.Sprintf("method %d", e.Key))
		}
		k := string(path)
		if _, dup := d.leaves[k]; dup {
			return errors.NonUniquePath(e.Key)
		}
		d.leaves[k] = dictLeaf{key: e.Key, offset: offset, code: code}
		Logger().Debug("dictionary entry marked",
			zap.Uint64("key", e.Key),
			zap.Binary("path", path),
			zap.Int("offset", offset))
	}
	return nil
}

// sameRefs compares the unread references of a and b by hash.
func sameRefs(a, b *cell.Slice) bool {
	if a.RefsLeft() != b.RefsLeft() {
		return false
	}
	for i := 0; i < a.RefsLeft(); i++ {
		x, _ := a.PeekRef(i)
		y, _ := b.PeekRef(i)
		if x.Hash() != y.Hash() {
			return false
		}
	}
	return true
}

// locate searches the tree under root depth first for a cell with the same
// references as target whose bits, from some offset on, equal target's bits.
func locate(root *cell.Cell, target *cell.Slice) ([]byte, int, bool) {
	type frame struct {
		c    *cell.Cell
		path []byte
	}
	seen := make(map[cell.Hash]struct{})
	stack := []frame{{c: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[f.c.Hash()]; ok {
			continue
		}
		seen[f.c.Hash()] = struct{}{}

		s := f.c.BeginParse()
		if sameRefs(s, target) {
			for {
				if s.BitsEqual(target) {
					return f.path, s.Pos(), true
				}
				if s.Skip(1) != nil {
					break
				}
			}
		}
		for i := f.c.RefCount() - 1; i >= 0; i-- {
			path := make([]byte, len(f.path)+1)
			copy(path, f.path)
			path[len(f.path)] = byte(i)
			stack = append(stack, frame{c: f.c.Ref(i), path: path})
		}
	}
	return nil, 0, false
}

// Print renders the dictionary tree with every marked leaf replaced by its
// method id and decoded code.
func (d *DelimitedDict) Print(indent string) (string, error) {
	var b strings.Builder
	if err := d.print(&b, d.root, indent, nil); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (d *DelimitedDict) print(b *strings.Builder, c *cell.Cell, indent string, path []byte) error {
	fmt.Fprintf(b, "%s.cell { ;; #%s\n", indent, c.Hash())
	inner := "  " + indent
	s := c.BeginParse()
	if leaf, ok := d.leaves[string(path)]; ok {
		if leaf.offset > 0 {
			fmt.Fprintf(b, "%s.blob x%s\n", inner, s.Prefix(leaf.offset, 0).Hex())
		}
		fmt.Fprintf(b, "%s;; method %d\n", inner, leaf.key)
		full := Printer{Full: true}
		if err := full.write(b, leaf.code, inner); err != nil {
			return err
		}
	} else {
		if s.BitsLeft() > 0 {
			fmt.Fprintf(b, "%s.blob x%s\n", inner, s.Hex())
		}
		for i := 0; i < c.RefCount(); i++ {
			next := append(append([]byte(nil), path...), byte(i))
			if err := d.print(b, c.Ref(i), inner, next); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(b, "%s}\n", indent)
	return nil
}
