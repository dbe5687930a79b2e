package disasm_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/disasm"
	"github.com/wippyai/tvm-disasm/errors"
)

func disassemble(t *testing.T, hex string, refs ...*cell.Cell) string {
	t.Helper()
	c := cell.MustFromHex(hex, refs...)
	text, err := disasm.Disassemble(c.BeginParse(), false)
	if err != nil {
		t.Fatalf("Disassemble(%s): %v", hex, err)
	}
	return text
}

func TestDecodeOpcodes(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"00", "NOP"},
		{"01", "XCHG s1"},
		{"12", "XCHG s1, s2"},
		{"1023", "XCHG s2, s3"},
		{"11ff", "XCHG s0, s255"},
		{"25", "PUSH s5"},
		{"36", "POP s6"},
		{"4123", "XCHG3 s1, s2, s3"},
		{"5210", "PUXC s1, s(-1)"},
		{"546000", "PU2XC s0, s(-1), s(-2)"},
		{"5500", "BLKSWAP 1, 1"},
		{"5e00", "REVERSE 2, 0"},
		{"5f03", "BLKDROP 3"},
		{"5f13", "BLKPUSH 1, 3"},
		{"6c12", "BLKDROP2 1, 2"},
		{"58", "ROT"},
		{"6f23", "UNTUPLE 3"},
		{"6fb6", "INDEX2 1, 2"},
		{"6fe4", "INDEX3 2, 1, 0"},
		{"6f92", "ZEROROTRIF"},
		{"70", "PUSHINT 0"},
		{"7a", "PUSHINT 10"},
		{"7b", "PUSHINT -5"},
		{"80ff", "PUSHINT -1"},
		{"81ff00", "PUSHINT -256"},
		{"820186a0", "PUSHINT 100000"},
		{"8207ffff", "PUSHINT -1"},
		{"8300", "PUSHPOW2 1"},
		{"83ff", "PUSHNAN"},
		{"8b04", "PUSHSLICE x4_"},
		{"91a0", "PUSHCONT {\n  ADD\n}"},
		{"a0", "ADD"},
		{"a6ff", "ADDCONST -1"},
		{"a904", "DIV"},
		{"a93407", "RSHIFT 8"},
		{"b7a0", "ADDQ"},
		{"b7a904", "DIVQ"},
		{"b407", "FITS 8"},
		{"b7b407", "FITSQ 8"},
		{"c0ff", "EQINT -1"},
		{"c700", "SEMPTY"},
		{"c8", "NEWC"},
		{"cb1f", "STU 32"},
		{"cf0c1f", "STIQ 32"},
		{"cf83", "STSLICECONST xc_"},
		{"d31f", "LDU 32"},
		{"d70b1f", "PLDU 32"},
		{"d714", "PLDUZ 160"},
		{"d710", "PLDUZ 32"},
		{"d72806", "SDBEGINS xc_"},
		{"d72c06", "SDBEGINSQ xc_"},
		{"d74c", "PLDREF"},
		{"d74d", "PLDREFIDX 1"},
		{"d8", "CALLX"},
		{"da12", "CALLXARGS 1, 2"},
		{"db05", "CALLXARGS 5, -1"},
		{"db30", "RET"},
		{"e39f", "IFBITJMP 31"},
		{"ec3f", "SETCONTARGS 3, -1"},
		{"ed43", "PUSHCTR c3"},
		{"ed5f", "POPCTR c15"},
		{"f012", "CALL 18"},
		{"f20a", "THROW 10"},
		{"f2ff", "TRY"},
		{"f312", "TRYARGS 1, 2"},
		{"f406", "LDDICTQ"},
		{"f40e", "DICTUGET"},
		{"f462", "DICTDELGET"},
		{"f467", "DICTUDELGETREF"},
		{"f4a1", "DICTUGETJMP"},
		{"f800", "ACCEPT"},
		{"f820", "GETPARAM 0"},
		{"f823", "NOW"},
		{"f840", "GETGLOBVAR"},
		{"f841", "GETGLOB 1"},
		{"f871", "SETGLOB 17"},
		{"fa41", "LDMSGADDRQ"},
		{"fe00", "DUMPSTK"},
		{"fe05", "DUMPSTKTOP 5"},
		{"fef000", "LOGFLUSH"},
		{"fef10041", "LOGSTR x41"},
		{"ff00", "SETCP0"},
		{"fff0", "SETCPX"},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got := disassemble(t, tt.hex)
			if got != tt.want+"\n" {
				t.Errorf("got %q, want %q", got, tt.want+"\n")
			}
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		kind errors.Kind
	}{
		{"unknown opcode", "c6", errors.KindInvalidOpcode},
		{"BLKDROP2 zero", "6c00", errors.KindCheckFailed},
		{"truncated operand", "80", errors.KindOutOfBounds},
		{"unknown codepage", "ff01", errors.KindUnsupported},
		{"LOGFLUSH mode", "fef003", errors.KindCheckFailed},
		{"PUSHSLICE with refs", "8c40", errors.KindUnsupported},
		{"DUMP 15", "fe2f", errors.KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cell.MustFromHex(tt.hex)
			_, err := disasm.NewLoader().Load(c.BeginParse(), false)
			if err == nil {
				t.Fatal("expected error")
			}
			target := &errors.Error{Phase: errors.PhaseDecode, Kind: tt.kind}
			if !stderrors.Is(err, target) {
				t.Errorf("got %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestDecodeErrorCarriesCell(t *testing.T) {
	c := cell.MustFromHex("a0c6")
	_, err := disasm.NewLoader().Load(c.BeginParse(), false)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Cell != c.Hash().String() {
		t.Errorf("Cell = %q, want %q", e.Cell, c.Hash())
	}
	if !strings.Contains(err.Error(), "unknown opcode xc6") {
		t.Errorf("message %q lacks opcode", err.Error())
	}
}

func TestImplicitJump(t *testing.T) {
	next := cell.MustFromHex("a1")
	got := disassemble(t, "a0", next)
	want := "ADD\n.cell { ;; #" + next.Hash().String() + "\n  SUB\n}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInlineContinuation(t *testing.T) {
	root := cell.MustFromHex("a0", cell.MustFromHex("a1"))
	code, err := disasm.NewLoader().Load(root.BeginParse(), true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(code) != 2 || code[0].Name != "ADD" || code[1].Name != "SUB" {
		t.Errorf("unexpected code %v", code)
	}
}

func TestTwoRemainingReferences(t *testing.T) {
	root := cell.MustFromHex("a0", cell.MustFromHex("a1"), cell.MustFromHex("a2"))
	_, err := disasm.NewLoader().Load(root.BeginParse(), false)
	if err == nil || !strings.Contains(err.Error(), "two or more remaining references") {
		t.Errorf("got %v", err)
	}
}

func TestMissingReferences(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want string
	}{
		{"PUSHREF", "88", "PUSHREF {\n  ;; missing cell\n}\n"},
		{"CALLREF", "db3c", "CALLREF {\n  ;; missing cell\n}\n"},
		{"DICTPUSHCONST", "f4a413", "DICTPUSHCONST 19 ;; missing dict ref\n"},
		{"PUSHCONT long", "8e80", "PUSHCONT {\n} ;; missing 1 ref(s)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := disassemble(t, tt.hex); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPushRef(t *testing.T) {
	ref := cell.MustFromHex("")
	got := disassemble(t, "88", ref)
	want := "PUSHREF { ;; #" + ref.Hash().String() + "\n}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCollapse(t *testing.T) {
	body := cell.MustFromHex("a0")
	root := cell.MustFromHex("e30f", body, body)
	h := body.Hash().String()

	tests := []struct {
		collapse bool
		want     string
	}{
		{false, "IFREFELSEREF { ;; #" + h + "\n  ADD\n}{ ;; #" + h + "\n  ADD\n}\n"},
		{true, "IFREFELSEREF { ;; #" + h + "\n  ADD\n}{ ;; #" + h + "\n  ;; <collapsed>\n}\n"},
	}

	for _, tt := range tests {
		got, err := disasm.Disassemble(root.BeginParse(), tt.collapse)
		if err != nil {
			t.Fatalf("Disassemble: %v", err)
		}
		if got != tt.want {
			t.Errorf("collapse=%v: got %q, want %q", tt.collapse, got, tt.want)
		}
	}
}

func TestInstructionBytecode(t *testing.T) {
	c := cell.MustFromHex("a0b407", cell.MustFromHex("a1"))
	code, err := disasm.NewLoader().Load(c.BeginParse(), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(code) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(code))
	}
	if got := code[1].Bytecode.Hex(); got != "b407" {
		t.Errorf("FITS bytecode = %q", got)
	}
	if code[1].Refs() != 0 {
		t.Errorf("FITS refs = %d", code[1].Refs())
	}
	if code[2].Name != "IMPLICIT-JMP" {
		t.Errorf("last instruction = %s", code[2].Name)
	}
}

func TestOpcodeCount(t *testing.T) {
	if n := disasm.OpcodeCount(); n != 678 {
		t.Errorf("OpcodeCount = %d, want 678", n)
	}
}
