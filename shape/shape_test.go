package shape_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
	"github.com/wippyai/tvm-disasm/shape"
)

const solidityMain = "8aed5320e30320c0ffe30220c0fee302f20b"

func TestCaptures(t *testing.T) {
	leaf := cell.MustFromHex("a0")
	other := cell.MustFromHex("a1")

	tests := []struct {
		name    string
		shape   *shape.Shape
		root    *cell.Cell
		want    map[string]string
		wantErr string
	}{
		{
			name:  "var binds root",
			shape: shape.Var("x"),
			root:  leaf,
			want:  map[string]string{"x": "a0"},
		},
		{
			name:  "any binds nothing",
			shape: shape.Any(),
			root:  leaf,
			want:  map[string]string{},
		},
		{
			name:  "literal with branches",
			shape: shape.Literal("8adb35").Branch(shape.Var("a"), shape.Var("b")),
			root:  cell.MustFromHex("8adb35", leaf, other),
			want:  map[string]string{"a": "a0", "b": "a1"},
		},
		{
			name:  "tagged literal",
			shape: shape.Literal("f4a_"),
			root:  cell.MustFromHex("f4a_"),
			want:  map[string]string{},
		},
		{
			name:    "longer cell",
			shape:   shape.Literal("8adb"),
			root:    cell.MustFromHex("8adb35"),
			wantErr: "data size doesn't match",
		},
		{
			name:    "different data",
			shape:   shape.Literal("8adb36"),
			root:    cell.MustFromHex("8adb35"),
			wantErr: "data doesn't match",
		},
		{
			name:    "extra reference",
			shape:   shape.Literal("8adb35").Branch(shape.Var("a")),
			root:    cell.MustFromHex("8adb35", leaf, other),
			wantErr: "number of children doesn't match",
		},
		{
			name:    "nested mismatch",
			shape:   shape.Literal("8adb35").Branch(shape.Literal("a1")),
			root:    cell.MustFromHex("8adb35", leaf),
			wantErr: "at 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.shape.Captures(tt.root)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
				}
				if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseMatch, Kind: errors.KindCheckFailed}) {
					t.Errorf("error %v is not a match failure", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Captures: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d captures, want %d", len(got), len(tt.want))
			}
			for name, hex := range tt.want {
				if c := got[name]; c == nil || c.Hex() != hex {
					t.Errorf("capture %q = %v, want %s", name, c, hex)
				}
			}
		})
	}
}

func TestBranchCopies(t *testing.T) {
	base := shape.Literal("8adb35")
	one := base.Branch(shape.Var("a"))
	if got := base.String(); got != "8adb35" {
		t.Errorf("base changed: %s", got)
	}
	if got := one.String(); got != "8adb35($a)" {
		t.Errorf("String = %s", got)
	}
}

func TestLiteralPanicsOnBadHex(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	shape.Literal("zz")
}

func currentRoot(dict, version *cell.Cell) *cell.Cell {
	return cell.MustFromHex(solidityMain,
		cell.MustFromHex("f4a420f4bdf2c04e", dict, version),
		cell.MustFromHex("a0"),
		cell.MustFromHex("a1"),
		cell.MustFromHex("a2"),
	)
}

func TestRecognizeBuiltin(t *testing.T) {
	dict := cell.MustFromHex("00")
	version := cell.MustFromHex("302e34372e30")

	tests := []struct {
		name   string
		root   *cell.Cell
		layout string
		check  string
	}{
		{
			name: "deprecated1",
			root: cell.MustFromHex("ff00f4a42022c00192f4a0e18aed535830f4a1",
				dict, cell.MustFromHex("f4a420f4a1", dict)),
			layout: "deprecated1",
			check:  "dict-public",
		},
		{
			name: "deprecated2",
			root: cell.MustFromHex(solidityMain,
				cell.MustFromHex("f4a420f4a1", dict, version),
				cell.MustFromHex("a0"), cell.MustFromHex("a1"), cell.MustFromHex("a2")),
			layout: "deprecated2",
			check:  "version",
		},
		{
			name:   "current",
			root:   currentRoot(dict, version),
			layout: "current",
			check:  "ticktock",
		},
		{
			name: "current with own code",
			root: cell.MustFromHex("8adb35",
				cell.MustFromHex("20f861ed1ed9"),
				cell.MustFromHex(solidityMain, dict,
					cell.MustFromHex("a0"), cell.MustFromHex("a1"), cell.MustFromHex("a2"))),
			layout: "current-mycode",
			check:  "external",
		},
		{
			name:   "fun-c",
			root:   cell.MustFromHex("ff00f4a413f4bcf2c80b", cell.MustFromHex("00", dict)),
			layout: "fun-c",
			check:  "dict-c3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := shape.Recognize(shape.Builtin(), tt.root)
			if err != nil {
				t.Fatalf("Recognize: %v", err)
			}
			if m.Layout.Name != tt.layout {
				t.Errorf("layout = %s, want %s", m.Layout.Name, tt.layout)
			}
			if m.Captures[tt.check] == nil {
				t.Errorf("capture %q missing", tt.check)
			}
		})
	}
}

func TestRecognizePriority(t *testing.T) {
	root := cell.MustFromHex("a0", cell.MustFromHex("a1"))
	layouts := []shape.Layout{
		{Name: "first", Shape: shape.Literal("a0").Branch(shape.Any())},
		{Name: "second", Shape: shape.Literal("a0").Branch(shape.Var("body"))},
	}
	m, err := shape.Recognize(layouts, root)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if m.Layout.Name != "first" {
		t.Errorf("layout = %s, want first", m.Layout.Name)
	}

	layouts[0].Shape = shape.Literal("a1")
	m, err = shape.Recognize(layouts, root)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if m.Layout.Name != "second" || m.Captures["body"].Hex() != "a1" {
		t.Errorf("fallback match = %s %v", m.Layout.Name, m.Captures)
	}
}

func TestRecognizeFails(t *testing.T) {
	_, err := shape.Recognize(shape.Builtin(), cell.MustFromHex("a0"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to recognize selector") {
		t.Errorf("error = %v", err)
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseMatch, Kind: errors.KindNotFound}) {
		t.Errorf("error %v has the wrong category", err)
	}
}

func TestBuiltinRegions(t *testing.T) {
	for _, l := range shape.Builtin() {
		if len(l.Regions) == 0 {
			t.Errorf("%s has no regions", l.Name)
		}
		for _, r := range l.Regions {
			if r.Kind == shape.RegionDict && r.KeyBits != 32 && r.KeyBits != 19 {
				t.Errorf("%s: %s key bits %d", l.Name, r.Capture, r.KeyBits)
			}
		}
	}
}

func TestMismatchDetail(t *testing.T) {
	_, err := shape.Literal("a0").Branch(shape.Literal("a2")).Captures(
		cell.MustFromHex("a0", cell.MustFromHex("a1")))
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error = %v", err)
	}
	if e.Detail != "data doesn't match" {
		t.Errorf("detail = %q", e.Detail)
	}
	if len(e.Path) != 1 || e.Path[0] != "0" {
		t.Errorf("path = %v", e.Path)
	}
}
