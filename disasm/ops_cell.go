package disasm

import (
	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

// inlineSlice reads a bit string of lenBits*8+extra bits after an optional
// reference count field that must be zero, and strips the completion tag.
func inlineSlice[B Behavior](name string, refBits, lenBits, extra int) decodeFunc {
	return func(_ *Loader, s *cell.Slice) (*Instruction, error) {
		if refBits > 0 {
			r, err := field(s, refBits)
			if err != nil {
				return nil, err
			}
			if r != 0 {
				return nil, errors.Unsupported(errors.PhaseDecode, name+" with references")
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
		var b B
		return b.Apply(newInsn(name, SliceParam{Value: bits})), nil
	}
}

func cellOps() []entry {
	out := []entry{
		op("C8", "NEWC"),
		op("C9", "ENDC"),
		op("CA", "STI", length(8, 1)),
		op("CB", "STU", length(8, 1)),
		op("CC", "STREF"),
		op("CD", "STBREFR"),
		op("CE", "STSLICE"),
		op("CF08", "STI", length(8, 1)),
		op("CF09", "STU", length(8, 1)),
		op("CF0A", "STIR", length(8, 1)),
		op("CF0B", "STUR", length(8, 1)),
		opB[Quiet]("CF0C", "STI", length(8, 1)),
		opB[Quiet]("CF0D", "STU", length(8, 1)),
		opB[Quiet]("CF0E", "STIR", length(8, 1)),
		opB[Quiet]("CF0F", "STUR", length(8, 1)),
		op("CF20", "STREFCONST", cellRef()),
		op("CF21", "STREF2CONST", cellRef(), cellRef()),
		op("CF23", "ENDXC"),
		op("CF38", "BCHKBITS", length(8, 1)),
		opB[Quiet]("CF3C", "BCHKBITS", length(8, 1)),
		with("CFC_", inlineSlice[Signaling]("STSLICECONST", 2, 3, 2)),
	}
	out = append(out, names(0xcf00, 16,
		"STIX", "STUX", "STIXR", "STUXR", "STIXQ", "STUXQ", "STIXRQ", "STUXRQ")...)
	out = append(out, names(0xcf10, 16,
		"STREF", "STBREF", "STSLICE", "STB", "STREFR", "STBREFR", "STSLICER", "STBR",
		"STREFQ", "STBREFQ", "STSLICEQ", "STBQ", "STREFRQ", "STBREFRQ", "STSLICERQ", "STBRQ")...)
	out = append(out, names(0xcf28, 16, "STILE4", "STULE4", "STILE8", "STULE8")...)
	out = append(out, names(0xcf30, 16,
		"BDEPTH", "BBITS", "BREFS", "BBITREFS", "", "BREMBITS", "BREMREFS", "BREMBITREFS")...)
	out = append(out, names(0xcf39, 16, "BCHKBITS", "BCHKREFS", "BCHKBITREFS")...)
	out = append(out, names(0xcf3d, 16, "BCHKBITSQ", "BCHKREFSQ", "BCHKBITREFSQ")...)
	out = append(out, names(0xcf40, 16, "STZEROES", "STONES", "STSAME")...)
	return out
}

func parseOps() []entry {
	out := []entry{
		op("D0", "CTOS"),
		op("D1", "ENDS"),
		op("D2", "LDI", length(8, 1)),
		op("D3", "LDU", length(8, 1)),
		op("D4", "LDREF"),
		op("D5", "LDREFRTOS"),
		op("D6", "LDSLICE", length(8, 1)),
		op("D708", "LDI", length(8, 1)),
		op("D709", "LDU", length(8, 1)),
		op("D70A", "PLDI", length(8, 1)),
		op("D70B", "PLDU", length(8, 1)),
		opB[Quiet]("D70C", "LDI", length(8, 1)),
		opB[Quiet]("D70D", "LDU", length(8, 1)),
		opB[Quiet]("D70E", "PLDI", length(8, 1)),
		opB[Quiet]("D70F", "PLDU", length(8, 1)),
		with("D714_", func(_ *Loader, s *cell.Slice) (*Instruction, error) {
			c, err := field(s, 3)
			return newInsn("PLDUZ", Length{Value: 32 * (c + 1)}), err
		}),
		op("D71C", "LDSLICE", length(8, 1)),
		op("D71D", "PLDSLICE", length(8, 1)),
		opB[Quiet]("D71E", "LDSLICE", length(8, 1)),
		opB[Quiet]("D71F", "PLDSLICE", length(8, 1)),
		with("D72A_", inlineSlice[Signaling]("SDBEGINS", 0, 7, 3)),
		with("D72E_", inlineSlice[Quiet]("SDBEGINS", 0, 7, 3)),
		op("D74C", "PLDREF"),
		op("D74E_", "PLDREFIDX", length(2, 0)),
	}
	out = append(out, names(0xd700, 16,
		"LDIX", "LDUX", "PLDIX", "PLDUX", "LDIXQ", "LDUXQ", "PLDIXQ", "PLDUXQ")...)
	out = append(out, names(0xd718, 16, "LDSLICEX", "PLDSLICEX", "LDSLICEXQ", "PLDSLICEXQ")...)
	out = append(out, names(0xd720, 16,
		"SDCUTFIRST", "SDSKIPFIRST", "SDCUTLAST", "SDSKIPLAST", "SDSUBSTR", "", "SDBEGINSX", "SDBEGINSXQ")...)
	out = append(out, names(0xd730, 16,
		"SCUTFIRST", "SSKIPFIRST", "SCUTLAST", "SSKIPLAST", "SUBSLICE", "", "SPLIT", "SPLITQ",
		"", "XCTOS", "XLOAD", "XLOADQ")...)
	out = append(out, names(0xd741, 16,
		"SCHKBITS", "SCHKREFS", "SCHKBITREFS", "", "SCHKBITSQ", "SCHKREFSQ", "SCHKBITREFSQ",
		"PLDREFVAR", "SBITS", "SREFS", "SBITREFS")...)
	out = append(out, names(0xd750, 16,
		"LDILE4", "LDULE4", "LDILE8", "LDULE8", "PLDILE4", "PLDULE4", "PLDILE8", "PLDULE8",
		"LDILE4Q", "LDULE4Q", "LDILE8Q", "LDULE8Q", "PLDILE4Q", "PLDULE4Q", "PLDILE8Q", "PLDULE8Q")...)
	out = append(out, names(0xd760, 16, "LDZEROES", "LDONES", "LDSAME", "", "SDEPTH", "CDEPTH")...)
	return out
}
