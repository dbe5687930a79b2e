package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/config"
	"github.com/wippyai/tvm-disasm/errors"
	"github.com/wippyai/tvm-disasm/export"
)

const solidityMain = "8aed5320e30320c0ffe30220c0fee302f20b"

// contract builds a state init whose code uses the current solidity selector
// with one internal function (id 1, MUL).
func contract(t *testing.T) *cell.Cell {
	t.Helper()
	dict, err := cell.BuildDict(32, map[uint64]*cell.Cell{1: cell.MustFromHex("a8")})
	if err != nil {
		t.Fatalf("BuildDict: %v", err)
	}
	code := cell.MustFromHex(solidityMain,
		cell.MustFromHex("f4a420f4bdf2c04e", dict, cell.MustFromHex("302e34372e30")),
		cell.MustFromHex("a0"),
		cell.MustFromHex("a1"),
		cell.MustFromHex("a2"),
	)
	return cell.MustFromHex("34_", code)
}

func writeBoC(t *testing.T, root *cell.Cell) string {
	t.Helper()
	data, err := cell.SerializeBoC(root)
	if err != nil {
		t.Fatalf("SerializeBoC: %v", err)
	}
	path := filepath.Join(t.TempDir(), "contract.tvc")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func textListing(t *testing.T, root *cell.Cell, opts textOptions) *listing {
	t.Helper()
	roots, err := readRoots(writeBoC(t, root))
	if err != nil {
		t.Fatalf("readRoots: %v", err)
	}
	l, err := disassemble(config.Default(), roots, opts)
	if err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	return l
}

func TestTextCurrentSelector(t *testing.T) {
	l := textListing(t, contract(t), textOptions{full: true})

	want := `.version 0.47.0
;; solidity selector detected
;; internal functions dictionary

.internal-alias :function_1, 1
.internal :function_1
MUL

;; internal transaction entry point
.internal-alias :function_internal, 0
.internal :function_internal
ADD

;; external transaction entry point
.internal-alias :function_external, -1
.internal :function_external
SUB

;; ticktock transaction entry point
.internal-alias :function_ticktock, -2
.internal :function_ticktock
SUBR

`
	if got := l.text(); got != want {
		t.Errorf("listing mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if l.layout != "current" || l.version != "0.47.0" {
		t.Errorf("layout = %s, version = %s", l.layout, l.version)
	}
}

func TestTextBytecodeColumn(t *testing.T) {
	cfg := config.Default()
	cfg.Output.BytecodeWidth = 4
	roots := []*cell.Cell{cell.MustFromHex("a0a1")}
	l, err := disassemble(cfg, roots, textOptions{raw: true, full: true})
	if err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	want := "a0   │ ADD\na1   │ SUB\n"
	if got := l.text(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextRaw(t *testing.T) {
	l := textListing(t, cell.MustFromHex("a0a1", cell.MustFromHex("a8")), textOptions{raw: true, full: true})
	got := l.text()
	if !strings.HasPrefix(got, "ADD\nSUB\n.cell { ;; #") || !strings.Contains(got, "  MUL\n}\n") {
		t.Errorf("raw listing:\n%s", got)
	}
	if strings.HasSuffix(got, "\n\n") {
		t.Error("raw listing ends with a blank line")
	}
}

func TestTextSharedMethodBodies(t *testing.T) {
	dict, err := cell.BuildDict(19, map[uint64]*cell.Cell{0: cell.MustFromHex("a0"), 1: cell.MustFromHex("a0")})
	if err != nil {
		t.Fatalf("BuildDict: %v", err)
	}
	roots := []*cell.Cell{cell.MustFromHex("f4a413f4a1", dict)}
	_, err = disassemble(config.Default(), roots, textOptions{raw: true, full: true})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseElaborate, Kind: errors.KindNonUniquePath}) {
		t.Errorf("error = %v, want non-unique path", err)
	}
}

func TestTextUnrecognized(t *testing.T) {
	roots := []*cell.Cell{cell.MustFromHex("00", cell.MustFromHex("a0"))}
	_, err := disassemble(config.Default(), roots, textOptions{full: true})
	if err == nil || !strings.Contains(err.Error(), "failed to recognize selector") {
		t.Errorf("error = %v", err)
	}
}

func TestTextCBOR(t *testing.T) {
	l := textListing(t, contract(t), textOptions{full: true})
	var buf bytes.Buffer
	if err := writeListing(&buf, l, "cbor"); err != nil {
		t.Fatalf("writeListing: %v", err)
	}
	doc, err := export.Unmarshal(buf.Bytes())
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Layout != "current" || doc.Version != "0.47.0" {
		t.Errorf("document = %s %s", doc.Layout, doc.Version)
	}
	if len(doc.Regions) != 4 {
		t.Fatalf("regions = %d, want 4", len(doc.Regions))
	}
	methods := doc.Regions[0].Methods
	if len(methods) != 1 || methods[0].ID != 1 || methods[0].Code[0].Name != "MUL" {
		t.Errorf("methods = %+v", methods)
	}
	if ext := doc.Regions[2]; ext.EntryID != -1 || ext.Code[0].Name != "SUB" {
		t.Errorf("external = %+v", ext)
	}
}

func TestMethodID(t *testing.T) {
	tests := []struct {
		key  uint64
		want int64
	}{
		{0, 0},
		{1, 1},
		{0xffffffff, -1},
		{0x7ffff, 0x7ffff},
	}
	for _, tt := range tests {
		if got := methodID(tt.key); got != tt.want {
			t.Errorf("methodID(%#x) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestDump(t *testing.T) {
	long := strings.Repeat("ab", 40)
	root := cell.MustFromHex("a0", cell.MustFromHex(""), cell.MustFromHex(long))

	var buf bytes.Buffer
	runDump(&buf, []*cell.Cell{root})
	want := "1 root in total\n" +
		"root 0 (3 cells, 3 unique):\n" +
		"└ a0\n" +
		"  ├ 8_\n" +
		"  └ " + long[:64] + "…\n" +
		"    " + long[64:] + "\n"
	if got := buf.String(); got != want {
		t.Errorf("dump mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	buf.Reset()
	runDump(&buf, nil)
	if buf.String() != "empty\n" {
		t.Errorf("empty dump = %q", buf.String())
	}
}

func TestGraphviz(t *testing.T) {
	empty := cell.MustFromHex("")
	root := cell.MustFromHex("a0", empty, empty)

	var buf bytes.Buffer
	runGraphviz(&buf, root)
	got := buf.String()

	id := root.Hash().String()[:8]
	child := empty.Hash().String()[:8]
	for _, want := range []string{
		"digraph code {\n",
		`  "` + id + `" [label=<<table border="0"><tr><td align="left"><b>` + id + `</b></td></tr><tr><td align="left">a0</td></tr></table>>];`,
		`  "` + id + `" -> "` + child + `" [ taillabel="0"];`,
		`  "` + id + `" -> "` + child + `" [ taillabel="1"];`,
		`<tr><td align="left">8_</td></tr>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("graphviz output missing %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "[label="); n != 2 {
		t.Errorf("nodes = %d, want 2 (shared child drawn once)", n)
	}
}

func TestGraphvizRoot(t *testing.T) {
	code := contract(t).Ref(0)
	tests := []struct {
		method string
		want   string
	}{
		{"", solidityMain},
		{"int", "a0"},
		{"ext", "a1"},
		{"ticktock", "a2"},
		{"1", "a8"},
	}
	for _, tt := range tests {
		c, err := graphvizRoot(code, tt.method)
		if err != nil {
			t.Fatalf("graphvizRoot(%q): %v", tt.method, err)
		}
		if c.Hex() != tt.want {
			t.Errorf("graphvizRoot(%q) = %s, want %s", tt.method, c.Hex(), tt.want)
		}
	}

	for _, method := range []string{"2", "abc"} {
		if _, err := graphvizRoot(code, method); err == nil {
			t.Errorf("graphvizRoot(%q): expected error", method)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInteractiveNavigation(t *testing.T) {
	l := textListing(t, contract(t), textOptions{full: true})
	m := newInteractiveModel("contract.tvc", l)

	m.Update(key("j"))
	if m.selected != 1 {
		t.Fatalf("selected = %d, want 1", m.selected)
	}
	m.Update(key("k"))
	m.Update(key("enter"))
	if m.state != stateView {
		t.Fatalf("state = %v, want view", m.state)
	}
	if !strings.Contains(m.View(), ".version 0.47.0") {
		t.Error("first region does not show the preamble")
	}

	m.Update(key("/"))
	if m.state != stateJump {
		t.Fatalf("state = %v, want jump", m.state)
	}
	m.Update(key("1"))
	m.Update(key("enter"))
	if m.state != stateView || m.err != nil {
		t.Errorf("jump to method 1: state %v, err %v", m.state, m.err)
	}

	m.Update(key("/"))
	m.Update(key("7"))
	m.Update(key("enter"))
	if m.err == nil {
		t.Error("jump to a missing method succeeded")
	}

	m.Update(key("esc"))
	if m.state != stateSelectRegion {
		t.Errorf("state = %v, want region list", m.state)
	}
	if !strings.Contains(m.View(), "(1 methods)") {
		t.Error("region list does not count methods")
	}
}
