package disasm

import "github.com/wippyai/tvm-disasm/cell"

// Disassemble decodes s, elaborates dictionary jumps and renders the result
// in full. With collapse set, cells decoded before print as a marker.
func Disassemble(s *cell.Slice, collapse bool) (string, error) {
	code, err := NewLoader(WithCollapse(collapse)).Load(s, false)
	if err != nil {
		return "", err
	}
	ElaborateDictJumps(code)
	p := Printer{Full: true}
	return p.Print(code, "")
}
