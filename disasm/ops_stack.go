package disasm

import (
	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

// regs reads fields of the given widths and subtracts the matching bias from
// each, producing a pair or triple of stack registers.
func regs(name string, widths []int, bias []int) decodeFunc {
	return func(_ *Loader, s *cell.Slice) (*Instruction, error) {
		v := make([]int, len(widths))
		for i, w := range widths {
			x, err := field(s, w)
			if err != nil {
				return nil, err
			}
			v[i] = x - bias[i]
		}
		if len(v) == 2 {
			return newInsn(name, StackRegisterPair{A: v[0], B: v[1]}), nil
		}
		return newInsn(name, StackRegisterTriple{A: v[0], B: v[1], C: v[2]}), nil
	}
}

func pair(name string, bi, bj int) decodeFunc {
	return regs(name, []int{4, 4}, []int{bi, bj})
}

func triple(name string, bi, bj, bk int) decodeFunc {
	return regs(name, []int{4, 4, 4}, []int{bi, bj, bk})
}

// lengthIndex reads two 4-bit fields with biases.
func lengthIndex(name string, bi, bj int, positive bool) decodeFunc {
	return func(_ *Loader, s *cell.Slice) (*Instruction, error) {
		i, err := field(s, 4)
		if err != nil {
			return nil, err
		}
		j, err := field(s, 4)
		if err != nil {
			return nil, err
		}
		if positive && i == 0 {
			return nil, errors.CheckFailed(errors.PhaseDecode, name+" requires a non-zero first field")
		}
		return newInsn(name, LengthAndIndex{Length: i + bi, Index: j + bj}), nil
	}
}

func stackOps() []entry {
	out := []entry{
		op("00", "NOP"),
		op("0", "XCHG", sreg(4)),
		with("1", func(_ *Loader, s *cell.Slice) (*Instruction, error) {
			i, err := field(s, 4)
			return newInsn("XCHG", StackRegisterPair{A: 1, B: i}), err
		}),
		with("10", pair("XCHG", 0, 0)),
		with("11", func(_ *Loader, s *cell.Slice) (*Instruction, error) {
			ii, err := field(s, 8)
			return newInsn("XCHG", StackRegisterPair{A: 0, B: ii}), err
		}),
		op("2", "PUSH", sreg(4)),
		op("3", "POP", sreg(4)),
		with("4", triple("XCHG3", 0, 0, 0)),
		with("50", pair("XCHG2", 0, 0)),
		with("51", pair("XCPU", 0, 0)),
		with("52", pair("PUXC", 0, 1)),
		with("53", pair("PUSH2", 0, 0)),
		with("541", triple("XC2PU", 0, 0, 0)),
		with("542", triple("XCPUXC", 0, 0, 1)),
		with("543", triple("XCPU2", 0, 0, 0)),
		with("544", triple("PUXC2", 0, 1, 1)),
		with("545", triple("PUXCPU", 0, 1, 1)),
		with("546", triple("PU2XC", 0, 1, 2)),
		with("547", triple("PUSH3", 0, 0, 0)),
		with("55", lengthIndex("BLKSWAP", 1, 1, false)),
		op("56", "PUSH", sreg(8)),
		op("57", "POP", sreg(8)),
		with("5E", lengthIndex("REVERSE", 2, 0, false)),
		op("5F0", "BLKDROP", length(4, 0)),
		with("5F", lengthIndex("BLKPUSH", 0, 0, false)),
		with("6C", lengthIndex("BLKDROP2", 0, 0, true)),
	}
	out = append(out, names(0x58, 8, "ROT", "ROTREV", "SWAP2", "DROP2", "DUP2", "OVER2")...)
	out = append(out, names(0x60, 8,
		"PICK", "ROLLX", "ROLLREVX", "BLKSWX", "REVX", "DROPX",
		"TUCK", "XCHGX", "DEPTH", "CHKDEPTH", "ONLYTOPX", "ONLYX")...)
	out = append(out, names(0x6d, 8, "NULL", "ISNULL")...)
	return out
}

func tupleOps() []entry {
	out := []entry{
		op("6F0", "TUPLE", length(4, 0)),
		op("6F1", "INDEX", length(4, 0)),
		op("6F2", "UNTUPLE", length(4, 0)),
		op("6F3", "UNPACKFIRST", length(4, 0)),
		op("6F4", "EXPLODE", length(4, 0)),
		op("6F5", "SETINDEX", length(4, 0)),
		op("6F6", "INDEXQ", length(4, 0)),
		op("6F7", "SETINDEXQ", length(4, 0)),
		op("6FB", "INDEX2", integer(2, 0), integer(2, 0)),
		op("6FE_", "INDEX3", integer(2, 0), integer(2, 0), integer(2, 0)),
	}
	out = append(out, names(0x6f80, 16,
		"TUPLEVAR", "INDEXVAR", "UNTUPLEVAR", "UNPACKFIRSTVAR", "EXPLODEVAR",
		"SETINDEXVAR", "INDEXVARQ", "SETINDEXVARQ", "TLEN", "QTLEN",
		"ISTUPLE", "LAST", "TPUSH", "TPOP")...)
	out = append(out, names(0x6f90, 16,
		"ZEROSWAPIF", "ZEROSWAPIFNOT", "ZEROROTRIF", "ZEROROTRIFNOT",
		"ZEROSWAPIF2", "ZEROSWAPIFNOT2", "ZEROROTRIF2", "ZEROROTRIFNOT2")...)
	out = append(out, names(0x6fa0, 16,
		"NULLSWAPIF", "NULLSWAPIFNOT", "NULLROTRIF", "NULLROTRIFNOT",
		"NULLSWAPIF2", "NULLSWAPIFNOT2", "NULLROTRIF2", "NULLROTRIFNOT2")...)
	return out
}
