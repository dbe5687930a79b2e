package disasm

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

// Behavior selects the signaling or quiet form of an instruction.
type Behavior interface {
	Apply(*Instruction) *Instruction
}

// Signaling leaves the instruction as is.
type Signaling struct{}

// Apply implements Behavior.
func (Signaling) Apply(i *Instruction) *Instruction { return i }

// Quiet marks the instruction as the non-throwing variant.
type Quiet struct{}

// Apply implements Behavior.
func (Quiet) Apply(i *Instruction) *Instruction {
	i.Quiet = true
	return i
}

// handler decodes one instruction; the slice is positioned at the opcode.
type handler func(l *Loader, s *cell.Slice) (*Instruction, error)

// decodeFunc decodes operands after the opcode prefix has been consumed.
type decodeFunc func(l *Loader, s *cell.Slice) (*Instruction, error)

// prefix is an opcode bit pattern.
type prefix struct {
	value uint64
	bits  int
}

func parsePrefix(p string) prefix {
	data, n, err := cell.ParseHex(p)
	if err != nil || n > 64 {
		panic(fmt.Sprintf("disasm: bad opcode prefix %q", p))
	}
	var v uint64
	for i := 0; i < n; i++ {
		v <<= 1
		if data[i>>3]&(0x80>>(i&7)) != 0 {
			v |= 1
		}
	}
	return prefix{value: v, bits: n}
}

func (p prefix) String() string {
	return fmt.Sprintf("%0*x/%d", (p.bits+3)/4, p.value, p.bits)
}

// expect consumes the opcode bits and verifies them.
func expect(s *cell.Slice, p prefix) error {
	v, err := s.LoadUint(p.bits)
	if err != nil {
		return err
	}
	if v != p.value {
		return errors.CheckFailed(errors.PhaseDecode, fmt.Sprintf("opcode %s, got %x", p, v))
	}
	return nil
}

type entry struct {
	h      handler
	prefix prefix
}

// with builds an entry that checks the opcode prefix p and then runs f.
func with(p string, f decodeFunc) entry {
	pre := parsePrefix(p)
	return entry{prefix: pre, h: func(l *Loader, s *cell.Slice) (*Instruction, error) {
		if err := expect(s, pre); err != nil {
			return nil, err
		}
		return f(l, s)
	}}
}

// operand reads one instruction parameter.
type operand func(l *Loader, s *cell.Slice) (Param, error)

// opB builds an entry for an instruction whose operands are read in order.
func opB[B Behavior](p, name string, args ...operand) entry {
	return with(p, func(l *Loader, s *cell.Slice) (*Instruction, error) {
		insn := newInsn(name)
		for _, a := range args {
			v, err := a(l, s)
			if err != nil {
				return nil, err
			}
			insn.Params = append(insn.Params, v)
		}
		var b B
		return b.Apply(insn), nil
	})
}

func op(p, name string, args ...operand) entry {
	return opB[Signaling](p, name, args...)
}

// quiet prepends the B7 prefix shared by quiet arithmetic.
func quiet(e entry) entry {
	pre := prefix{value: 0xb7, bits: 8}
	inner := e.h
	return entry{
		prefix: prefix{value: 0xb7<<uint(e.prefix.bits) | e.prefix.value, bits: e.prefix.bits + 8},
		h: func(l *Loader, s *cell.Slice) (*Instruction, error) {
			if err := expect(s, pre); err != nil {
				return nil, err
			}
			return inner(l, s)
		},
	}
}

// names builds one no-operand entry per mnemonic for consecutive byte-aligned
// opcodes starting at first.
func names(first uint64, width int, mnemonics ...string) []entry {
	out := make([]entry, 0, len(mnemonics))
	for i, name := range mnemonics {
		if name == "" {
			continue
		}
		out = append(out, op(fmt.Sprintf("%0*x", width/4, first+uint64(i)), name))
	}
	return out
}

func field(s *cell.Slice, bits int) (int, error) {
	v, err := s.LoadUint(bits)
	return int(v), err
}

func sreg(bits int) operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := field(s, bits)
		return StackRegister{Index: v}, err
	}
}

func creg() operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := field(s, 4)
		return ControlRegister{Index: v}, err
	}
}

func length(bits, bias int) operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := field(s, bits)
		return Length{Value: v + bias}, err
	}
}

func integer(bits, bias int) operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := field(s, bits)
		return Integer{Value: v + bias}, err
	}
}

func sinteger(bits int) operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := s.LoadInt(bits)
		return Integer{Value: int(v)}, err
	}
}

func pargs(bits int) operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := field(s, bits)
		return Pargs{Value: v}, err
	}
}

func rargs(bits int) operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := field(s, bits)
		return Rargs{Value: v}, err
	}
}

// nargs reads a count where the all-ones value means "all" and prints as -1.
func nargs(bits int) operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := field(s, bits)
		if err != nil {
			return nil, err
		}
		if v == 1<<uint(bits)-1 {
			v = -1
		}
		return Nargs{Value: v}, nil
	}
}

// fixedRargs yields a return count implied by the opcode itself.
func fixedRargs(v int) operand {
	return func(*Loader, *cell.Slice) (Param, error) {
		return Rargs{Value: v}, nil
	}
}

func nargsRaw(bits int) operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		v, err := field(s, bits)
		return Nargs{Value: v}, err
	}
}

// cellRef consumes one reference and keeps it as a raw cell. A missing
// reference becomes a placeholder.
func cellRef() operand {
	return func(_ *Loader, s *cell.Slice) (Param, error) {
		if s.RefsLeft() == 0 {
			return CellRef{}, nil
		}
		c, err := s.LoadRef()
		return CellRef{Cell: c}, err
	}
}

// codeRef consumes one reference and decodes it as a continuation.
func codeRef() operand {
	return func(l *Loader, s *cell.Slice) (Param, error) {
		if s.RefsLeft() == 0 {
			return CellRef{}, nil
		}
		c, err := s.LoadRef()
		if err != nil {
			return nil, err
		}
		code, err := l.LoadCell(c)
		if err != nil {
			return nil, err
		}
		return CodeBlock{Cell: c, Code: code}, nil
	}
}

// trie maps opcode bit prefixes to handlers; lookup picks the longest match.
type trie struct {
	next [2]*trie
	h    handler
	p    prefix
}

func (t *trie) insert(e entry) {
	n := t
	for i := e.prefix.bits - 1; i >= 0; i-- {
		b := e.prefix.value >> uint(i) & 1
		if n.next[b] == nil {
			n.next[b] = &trie{}
		}
		n = n.next[b]
	}
	if n.h != nil {
		panic(fmt.Sprintf("disasm: duplicate opcode prefix %s", e.prefix))
	}
	n.h = e.h
	n.p = e.prefix
}

func (t *trie) lookup(s *cell.Slice) handler {
	var best handler
	n := t
	for i := 0; i < s.BitsLeft(); i++ {
		b := 0
		if s.BitAt(i) {
			b = 1
		}
		if n = n.next[b]; n == nil {
			break
		}
		if n.h != nil {
			best = n.h
		}
	}
	return best
}

func (t *trie) count() int {
	if t == nil {
		return 0
	}
	n := t.next[0].count() + t.next[1].count()
	if t.h != nil {
		n++
	}
	return n
}

var (
	codepage0Once sync.Once
	codepage0Trie *trie
)

// codepage0 returns the opcode table, building it on first use.
func codepage0() *trie {
	codepage0Once.Do(func() { codepage0Trie = buildCodepage0() })
	return codepage0Trie
}

func buildCodepage0() *trie {
	t := &trie{}
	for _, group := range [][]entry{
		stackOps(),
		tupleOps(),
		constOps(),
		arithOps(),
		compareOps(),
		cellOps(),
		parseOps(),
		controlOps(),
		exceptionOps(),
		dictOps(),
		appOps(),
		debugOps(),
	} {
		for _, e := range group {
			t.insert(e)
		}
	}
	Logger().Debug("opcode table built", zap.Int("patterns", t.count()))
	return t
}

// OpcodeCount returns the number of distinct opcode patterns the decoder knows.
func OpcodeCount() int {
	return codepage0().count()
}
