package disasm

import (
	"fmt"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

// divmodKinds maps the second byte of A9xx to a mnemonic and whether an
// 8-bit shift amount (stored minus one) follows.
var divmodKinds = map[int]struct {
	name  string
	shift bool
}{
	0x04: {"DIV", false},
	0x05: {"DIVR", false},
	0x06: {"DIVC", false},
	0x08: {"MOD", false},
	0x0c: {"DIVMOD", false},
	0x0d: {"DIVMODR", false},
	0x0e: {"DIVMODC", false},
	0x24: {"RSHIFT", false},
	0x34: {"RSHIFT", true},
	0x38: {"MODPOW2", true},
	0x84: {"MULDIV", false},
	0x85: {"MULDIVR", false},
	0x8c: {"MULDIVMOD", false},
	0xa4: {"MULRSHIFT", false},
	0xa5: {"MULRSHIFTR", false},
	0xb4: {"MULRSHIFT", true},
	0xb5: {"MULRSHIFTR", true},
	0xc4: {"LSHIFTDIV", false},
	0xc5: {"LSHIFTDIVR", false},
	0xd4: {"LSHIFTDIV", true},
	0xd5: {"LSHIFTDIVR", true},
}

func divmod[B Behavior](_ *Loader, s *cell.Slice) (*Instruction, error) {
	k, err := field(s, 8)
	if err != nil {
		return nil, err
	}
	kind, ok := divmodKinds[k]
	if !ok {
		return nil, errors.CheckFailed(errors.PhaseDecode, fmt.Sprintf("unknown divmod kind %02x", k))
	}
	insn := newInsn(kind.name)
	if kind.shift {
		tt, err := field(s, 8)
		if err != nil {
			return nil, err
		}
		insn.Params = append(insn.Params, Length{Value: tt + 1})
	}
	var b B
	return b.Apply(insn), nil
}

// arith lists the opcodes that exist in both signaling and quiet form.
func arith[B Behavior]() []entry {
	return []entry{
		opB[B]("A0", "ADD"),
		opB[B]("A1", "SUB"),
		opB[B]("A2", "SUBR"),
		opB[B]("A3", "NEGATE"),
		opB[B]("A4", "INC"),
		opB[B]("A5", "DEC"),
		opB[B]("A6", "ADDCONST", sinteger(8)),
		opB[B]("A7", "MULCONST", sinteger(8)),
		opB[B]("A8", "MUL"),
		with("A9", divmod[B]),
		opB[B]("AA", "LSHIFT", length(8, 1)),
		opB[B]("AB", "RSHIFT", length(8, 1)),
		opB[B]("AC", "LSHIFT"),
		opB[B]("AD", "RSHIFT"),
		opB[B]("AE", "POW2"),
		opB[B]("B0", "AND"),
		opB[B]("B1", "OR"),
		opB[B]("B2", "XOR"),
		opB[B]("B3", "NOT"),
		opB[B]("B4", "FITS", length(8, 1)),
		opB[B]("B5", "UFITS", length(8, 1)),
		opB[B]("B600", "FITSX"),
		opB[B]("B601", "UFITSX"),
		opB[B]("B602", "BITSIZE"),
		opB[B]("B603", "UBITSIZE"),
		opB[B]("B608", "MIN"),
		opB[B]("B609", "MAX"),
		opB[B]("B60A", "MINMAX"),
		opB[B]("B60B", "ABS"),
		opB[B]("B8", "SGN"),
		opB[B]("B9", "LESS"),
		opB[B]("BA", "EQUAL"),
		opB[B]("BB", "LEQ"),
		opB[B]("BC", "GREATER"),
		opB[B]("BD", "NEQ"),
		opB[B]("BE", "GEQ"),
		opB[B]("BF", "CMP"),
		opB[B]("C0", "EQINT", sinteger(8)),
		opB[B]("C1", "LESSINT", sinteger(8)),
		opB[B]("C2", "GTINT", sinteger(8)),
		opB[B]("C3", "NEQINT", sinteger(8)),
	}
}

func arithOps() []entry {
	out := arith[Signaling]()
	for _, e := range arith[Quiet]() {
		out = append(out, quiet(e))
	}
	return append(out,
		op("C4", "ISNAN"),
		op("C5", "CHKNAN"),
	)
}

func compareOps() []entry {
	out := names(0xc700, 16,
		"SEMPTY", "SDEMPTY", "SREMPTY", "SDFIRST", "SDLEXCMP", "SDEQ")
	return append(out, names(0xc708, 16,
		"SDPFX", "SDPFXREV", "SDPPFX", "SDPPFXREV", "SDSFX", "SDSFXREV",
		"SDPSFX", "SDPSFXREV", "SDCNTLEAD0", "SDCNTLEAD1", "SDCNTTRAIL0", "SDCNTTRAIL1")...)
}
