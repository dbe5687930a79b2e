package disasm

import (
	"fmt"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

// globalIndex reads a 5-bit global variable index; zero is taken by the
// VAR form of the same opcode.
func globalIndex(name string) decodeFunc {
	return func(_ *Loader, s *cell.Slice) (*Instruction, error) {
		k, err := field(s, 5)
		if err != nil {
			return nil, err
		}
		if k == 0 {
			return nil, errors.CheckFailed(errors.PhaseDecode, name+" index 0")
		}
		return newInsn(name, Length{Value: k}), nil
	}
}

func appOps() []entry {
	out := []entry{
		op("F82", "GETPARAM", length(4, 0)),
		with("F85_", globalIndex("GETGLOB")),
		with("F87_", globalIndex("SETGLOB")),
	}
	out = append(out, names(0xf800, 16, "ACCEPT", "SETGASLIMIT", "BUYGAS", "", "GRAMTOGAS", "GASTOGRAM")...)
	out = append(out, names(0xf80f, 16, "COMMIT", "RANDU256", "RAND", "", "", "SETRAND", "ADDRAND")...)
	out = append(out, names(0xf823, 16, "NOW", "BLOCKLT", "LTIME", "RANDSEED", "BALANCE", "MYADDR", "CONFIGROOT")...)
	out = append(out, names(0xf830, 16, "CONFIGDICT", "", "CONFIGPARAM", "CONFIGOPTPARAM")...)
	out = append(out, names(0xf840, 16, "GETGLOBVAR")...)
	out = append(out, names(0xf860, 16, "SETGLOBVAR")...)
	out = append(out, names(0xf900, 16, "HASHCU", "HASHSU", "SHA256U")...)
	out = append(out, names(0xf910, 16, "CHKSIGNU", "CHKSIGNS")...)
	out = append(out, names(0xf940, 16, "CDATASIZEQ", "CDATASIZE", "SDATASIZEQ", "SDATASIZE")...)
	out = append(out, names(0xfa00, 16,
		"LDGRAMS", "LDVARINT16", "STGRAMS", "STVARINT16",
		"LDVARUINT32", "LDVARINT32", "STVARUINT32", "STVARINT32")...)
	for i, name := range []string{"LDMSGADDR", "PARSEMSGADDR", "REWRITESTDADDR", "REWRITEVARADDR"} {
		code := 0xfa40 + uint64(2*i)
		out = append(out, names(code, 16, name)...)
		out = append(out, opB[Quiet](fmt.Sprintf("%04x", code+1), name))
	}
	out = append(out, names(0xfb00, 16, "SENDRAWMSG", "", "RAWRESERVE", "RAWRESERVEX", "SETCODE", "", "SETLIBCODE", "CHANGELIB")...)
	return out
}

func dumpString(_ *Loader, s *cell.Slice) (*Instruction, error) {
	n, err := field(s, 4)
	if err != nil {
		return nil, err
	}
	mode, err := field(s, 8)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if mode != 0 {
			return nil, errors.CheckFailed(errors.PhaseDecode, "LOGFLUSH mode")
		}
		return newInsn("LOGFLUSH"), nil
	}
	var name string
	switch mode {
	case 0:
		name = "LOGSTR"
	case 1:
		name = "PRINTSTR"
	default:
		return nil, errors.Unsupported(errors.PhaseDecode, "debug string mode")
	}
	str, err := s.LoadSlice(n*8, 0)
	if err != nil {
		return nil, err
	}
	return newInsn(name, SliceParam{Value: str}), nil
}

// debugRegister reads a 4-bit stack index for DUMP and PRINT; 15 is reserved.
func debugRegister(name string) decodeFunc {
	return func(_ *Loader, s *cell.Slice) (*Instruction, error) {
		n, err := field(s, 4)
		if err != nil {
			return nil, err
		}
		if n == 15 {
			return nil, errors.Unsupported(errors.PhaseDecode, name+" 15")
		}
		return newInsn(name, Integer{Value: n}), nil
	}
}

func setcp(_ *Loader, s *cell.Slice) (*Instruction, error) {
	n, err := field(s, 8)
	if err != nil {
		return nil, err
	}
	if n != 0 {
		return nil, errors.Unsupported(errors.PhaseDecode, "unknown codepage")
	}
	return newInsn("SETCP0"), nil
}

func debugOps() []entry {
	out := []entry{
		op("FE00", "DUMPSTK"),
		op("FE0", "DUMPSTKTOP", integer(4, 0)),
		with("FE2", debugRegister("DUMP")),
		with("FE3", debugRegister("PRINT")),
		with("FEF", dumpString),
		with("FF", setcp),
		op("FFF0", "SETCPX"),
	}
	out = append(out, names(0xfe10, 16, "HEXDUMP", "HEXPRINT", "BINDUMP", "BINPRINT", "STRDUMP", "STRPRINT")...)
	out = append(out, names(0xfe1e, 16, "DEBUGOFF", "DEBUGON")...)
	return out
}
