package disasm

import (
	"fmt"
	"math/big"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

func pushintTiny(_ *Loader, s *cell.Slice) (*Instruction, error) {
	x, err := field(s, 4)
	if err != nil {
		return nil, err
	}
	if x > 10 {
		x -= 16
	}
	return newInsn("PUSHINT", Integer{Value: x}), nil
}

// loadBigInt reads the long PUSHINT immediate: a 5-bit length l followed by a
// two's complement integer of 8l+19 bits.
func loadBigInt(s *cell.Slice) (*big.Int, error) {
	l, err := field(s, 5)
	if err != nil {
		return nil, err
	}
	n := 8*l + 19
	if n > s.BitsLeft() {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Detail("integer of %d bits, %d left", n, s.BitsLeft()).
			Build()
	}
	raw, err := s.LoadSlice(n, 0)
	if err != nil {
		return nil, err
	}
	// left-align the value in whole bytes, then shift the padding out
	b := raw.Bits()
	v := new(big.Int).SetBytes(b)
	v.Rsh(v, uint(len(b)*8-n))
	if v.Bit(n-1) == 1 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(n)))
	}
	return v, nil
}

func pushintBig(_ *Loader, s *cell.Slice) (*Instruction, error) {
	v, err := loadBigInt(s)
	if err != nil {
		return nil, err
	}
	return newInsn("PUSHINT", BigInteger{Value: v}), nil
}

// pushslice reads a length field and a bit string of lenBits*8+extra bits,
// with refBits of reference count that must be zero.
func pushslice(refBits, lenBits, extra int) decodeFunc {
	return func(_ *Loader, s *cell.Slice) (*Instruction, error) {
		if refBits > 0 {
			r, err := field(s, refBits)
			if err != nil {
				return nil, err
			}
			if r != 0 {
				return nil, errors.Unsupported(errors.PhaseDecode, "PUSHSLICE with references")
			}
		}
		x, err := field(s, lenBits)
		if err != nil {
			return nil, err
		}
		bits, err := s.LoadSlice(x*8+extra, 0)
		if err != nil {
			return nil, err
		}
		bits.TrimRight()
		return newInsn("PUSHSLICE", SliceParam{Value: bits}), nil
	}
}

func pushcontLong(l *Loader, s *cell.Slice) (*Instruction, error) {
	r, err := field(s, 2)
	if err != nil {
		return nil, err
	}
	xx, err := field(s, 7)
	if err != nil {
		return nil, err
	}
	missing := 0
	if r > s.RefsLeft() {
		missing = r - s.RefsLeft()
		r = s.RefsLeft()
	}
	body, err := s.LoadSlice(xx*8, r)
	if err != nil {
		return nil, err
	}
	code, err := l.Load(body, true)
	if err != nil {
		return nil, err
	}
	insn := newInsn("PUSHCONT", CodeBlock{Code: code})
	if missing > 0 {
		insn.Comment = fmt.Sprintf("missing %d ref(s)", missing)
	}
	return insn, nil
}

func pushcontShort(l *Loader, s *cell.Slice) (*Instruction, error) {
	x, err := field(s, 4)
	if err != nil {
		return nil, err
	}
	body, err := s.LoadSlice(x*8, 0)
	if err != nil {
		return nil, err
	}
	code, err := l.Load(body, true)
	if err != nil {
		return nil, err
	}
	return newInsn("PUSHCONT", CodeBlock{Code: code}), nil
}

func constOps() []entry {
	return []entry{
		with("7", pushintTiny),
		op("80", "PUSHINT", sinteger(8)),
		op("81", "PUSHINT", sinteger(16)),
		with("82", pushintBig),
		op("83", "PUSHPOW2", integer(8, 1)),
		op("83FF", "PUSHNAN"),
		op("84", "PUSHPOW2DEC", integer(8, 1)),
		op("85", "PUSHNEGPOW2", integer(8, 1)),
		op("88", "PUSHREF", cellRef()),
		op("89", "PUSHREFSLICE", cellRef()),
		op("8A", "PUSHREFCONT", codeRef()),
		with("8B", pushslice(0, 4, 4)),
		with("8C", pushslice(2, 5, 1)),
		with("8D", pushslice(3, 7, 6)),
		with("8F_", pushcontLong),
		with("9", pushcontShort),
	}
}
