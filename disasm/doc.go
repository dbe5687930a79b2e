// Package disasm decodes TVM bytecode stored in cells into instruction trees
// and renders them as assembly text.
//
// # Pipeline
//
//	Loader              opcode trie walk over a cell slice, nested code decoded
//	                    from inline bits or child references
//	ElaborateDictJumps  tags DICTPUSHCONST/PFXDICTSWITCH + DICTUGETJMP pairs
//	DelimitedDict       locates jump-table leaves in the cell tree and decodes them
//	Printer             text rendering with an optional bytecode column
//
// # Opcode Table
//
// Opcodes are registered as bit prefixes of codepage 0. Lookup picks the
// longest registered prefix, so a 16-bit form such as PLDREF (D74C) wins over
// the 14-bit PLDREFIDX (D74E_) it overlaps. Prefixes use TVM hex notation:
// a trailing "_" marks a completion tag, so "F85_" is the 11-bit prefix
// 1111 1000 010.
//
// Quiet variants share the mnemonic of the signaling form and set
// Instruction.Quiet; Mnemonic appends the "Q".
//
// # Failure Policy
//
// A truncated operand, an opcode check mismatch or more than one reference
// left after the last instruction abort the whole Load. A reference that an
// opcode expects but that is absent is kept as a CellRef with a nil Cell and
// rendered as a placeholder.
//
// # Example
//
//	root, _ := cell.FromHex("8b04")
//	code, err := disasm.NewLoader().Load(root.BeginParse(), false)
//	if err != nil {
//	    return err
//	}
//	disasm.ElaborateDictJumps(code)
//	p := disasm.Printer{Full: true}
//	text, err := p.Print(code, "")
//	// text == "PUSHSLICE x4_\n"
package disasm
