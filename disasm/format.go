package disasm

import (
	"fmt"
	"strings"

	"github.com/wippyai/tvm-disasm/cell"
)

// Printer renders decoded code as assembly text.
type Printer struct {
	// Full expands nested code and cells inline. Without it block operands
	// are omitted and dictionaries are not rendered.
	Full bool
	// BytecodeWidth, when positive, prefixes each line with a column of that
	// width holding the instruction's source bits in hex.
	BytecodeWidth int
}

// Print renders code with every line prefixed by indent.
func (p *Printer) Print(code Code, indent string) (string, error) {
	var b strings.Builder
	if err := p.write(&b, code, indent); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (p *Printer) bytecode(b *strings.Builder, insn *Instruction) {
	if p.BytecodeWidth <= 0 {
		return
	}
	var text string
	if insn != nil && insn.Bytecode != nil {
		text = insn.Bytecode.Hex()
		if r := insn.Refs(); r > 0 {
			text += fmt.Sprintf(" {%dr}", r)
		}
		if len(text) > p.BytecodeWidth {
			text = text[:p.BytecodeWidth]
		}
	}
	fmt.Fprintf(b, "%-*s │ ", p.BytecodeWidth, text)
}

func (p *Printer) write(b *strings.Builder, code Code, indent string) error {
	for _, insn := range code {
		p.bytecode(b, insn)
		b.WriteString(indent)
		if p.Full {
			switch insn.Name {
			case "DICTPUSHCONST", "PFXDICTSWITCH":
				if err := p.writeDictPush(b, insn, indent); err != nil {
					return err
				}
				continue
			case "IMPLICIT-JMP":
				blk := insn.Params[0].(CodeBlock)
				fmt.Fprintf(b, ".cell { ;; #%s\n", blk.Cell.Hash())
				if err := p.write(b, blk.Code, "  "+indent); err != nil {
					return err
				}
				b.WriteString(indent)
				b.WriteString("}\n")
				continue
			}
		}
		b.WriteString(insn.Mnemonic())
		if err := p.writeParams(b, insn.Params, indent); err != nil {
			return err
		}
		if insn.Comment != "" {
			b.WriteString(" ;; ")
			b.WriteString(insn.Comment)
		}
		b.WriteByte('\n')
	}
	return nil
}

func (p *Printer) writeParams(b *strings.Builder, params []Param, indent string) error {
	var out strings.Builder
	if len(params) > 0 {
		out.WriteByte(' ')
	}
	for i, param := range params {
		block := false
		switch v := param.(type) {
		case BigInteger:
			out.WriteString(v.Value.String())
		case ControlRegister:
			fmt.Fprintf(&out, "c%d", v.Index)
		case Integer:
			fmt.Fprintf(&out, "%d", v.Value)
		case Length:
			fmt.Fprintf(&out, "%d", v.Value)
		case LengthAndIndex:
			fmt.Fprintf(&out, "%d, %d", v.Length, v.Index)
		case Nargs:
			fmt.Fprintf(&out, "%d", v.Value)
		case Pargs:
			fmt.Fprintf(&out, "%d", v.Value)
		case Rargs:
			fmt.Fprintf(&out, "%d", v.Value)
		case SliceParam:
			out.WriteString("x" + v.Value.Hex())
		case StackRegister:
			out.WriteString(register(v.Index))
		case StackRegisterPair:
			out.WriteString(register(v.A) + ", " + register(v.B))
		case StackRegisterTriple:
			out.WriteString(register(v.A) + ", " + register(v.B) + ", " + register(v.C))
		case CodeBlock:
			if p.Full {
				if v.Cell != nil {
					fmt.Fprintf(&out, "{ ;; #%s\n", v.Cell.Hash())
				} else {
					out.WriteString("{\n")
				}
				if err := p.write(&out, v.Code, "  "+indent); err != nil {
					return err
				}
				p.bytecode(&out, nil)
				out.WriteString(indent + "}")
				block = true
			}
		case CellRef:
			if p.Full {
				switch {
				case v.Collapsed:
					out.WriteString("<collapsed>")
				case v.Cell != nil:
					writeCell(&out, v.Cell, indent, false)
				default:
					out.WriteString("{\n")
					p.bytecode(&out, nil)
					out.WriteString(indent + "  ;; missing cell\n")
					p.bytecode(&out, nil)
					out.WriteString(indent + "}")
				}
				block = true
			}
		case CodeDictMarker:
			if p.Full {
				panic("disasm: dictionary marker reached the generic printer")
			}
		}
		if i+1 < len(params) && !block {
			out.WriteString(", ")
		}
	}
	text := out.String()
	if !p.Full {
		text = strings.TrimRight(text, ", ")
	}
	b.WriteString(text)
	return nil
}

func register(i int) string {
	if i < 0 {
		return fmt.Sprintf("s(%d)", i)
	}
	return fmt.Sprintf("s%d", i)
}

func (p *Printer) writeDictPush(b *strings.Builder, insn *Instruction, indent string) error {
	keyBits := insn.Params[0].(Length).Value
	ref := insn.Params[1].(CellRef)
	if ref.Cell == nil {
		fmt.Fprintf(b, "%s %d ;; missing dict ref\n", insn.Name, keyBits)
		return nil
	}
	fmt.Fprintf(b, "%s %d\n", insn.Name, keyBits)
	if !insn.marked() {
		writeCell(b, ref.Cell, indent, true)
		return nil
	}
	// Two keys aliasing one leaf abort the listing instead of falling
	// back to the raw cell.
	dict := NewDelimitedDict(ref.Cell, keyBits)
	if err := dict.Mark(); err != nil {
		return err
	}
	text, err := dict.Print(indent)
	if err != nil {
		return err
	}
	b.WriteString(text)
	return nil
}

// writeCell renders a raw cell tree as nested .cell blocks with .blob data.
func writeCell(b *strings.Builder, c *cell.Cell, indent string, dotCell bool) {
	if dotCell {
		b.WriteString(indent + ".cell ")
	}
	fmt.Fprintf(b, "{ ;; #%s\n", c.Hash())
	inner := "  " + indent
	if c.BitLen() > 0 {
		fmt.Fprintf(b, "%s.blob x%s\n", inner, c.Hex())
	}
	for i := 0; i < c.RefCount(); i++ {
		writeCell(b, c.Ref(i), inner, true)
	}
	b.WriteString(indent + "}")
	if dotCell {
		b.WriteByte('\n')
	}
}

// PrintCell renders a raw cell tree the way cell operands are printed.
func PrintCell(c *cell.Cell, indent string) string {
	var b strings.Builder
	writeCell(&b, c, indent, true)
	return b.String()
}
