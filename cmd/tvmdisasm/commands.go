package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/config"
	"github.com/wippyai/tvm-disasm/disasm"
	"github.com/wippyai/tvm-disasm/errors"
	"github.com/wippyai/tvm-disasm/export"
	"github.com/wippyai/tvm-disasm/shape"
)

func readRoots(filename string) ([]*cell.Cell, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return cell.DeserializeBoC(data)
}

// codeRoot returns the code cell of a state init stored as the first root.
func codeRoot(roots []*cell.Cell) (*cell.Cell, error) {
	if len(roots) == 0 {
		return nil, errors.NotFound(errors.PhaseLoad, "root", "0")
	}
	code := roots[0].Ref(0)
	if code == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "code reference", "0")
	}
	return code, nil
}

func runDump(w io.Writer, roots []*cell.Cell) {
	if len(roots) == 0 {
		fmt.Fprintln(w, "empty")
		return
	}
	noun := "roots"
	if len(roots) < 2 {
		noun = "root"
	}
	fmt.Fprintf(w, "%d %s in total\n", len(roots), noun)
	for i, root := range roots {
		total, unique := root.Count()
		fmt.Fprintf(w, "root %d (%d cells, %d unique):\n", i, total, unique)
		dumpTree(w, root, "", true)
	}
}

func dumpTree(w io.Writer, c *cell.Cell, prefix string, last bool) {
	head, next := "├ ", "│ "
	if last {
		head, next = "└ ", "  "
	}
	hex := c.Hex()
	if hex == "" {
		fmt.Fprintf(w, "%s%s8_\n", prefix, head)
	} else {
		first := true
		for len(hex) > 64 {
			lead := next
			if first {
				lead = head
			}
			fmt.Fprintf(w, "%s%s%s…\n", prefix, lead, hex[:64])
			hex = hex[64:]
			first = false
		}
		lead := next
		if first {
			lead = head
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, lead, hex)
	}
	for i := 0; i < c.RefCount(); i++ {
		dumpTree(w, c.Ref(i), prefix+next, i == c.RefCount()-1)
	}
}

// graphvizRoot picks the cell to draw: the whole code, one of the entry
// points, or an internal method looked up by id.
func graphvizRoot(code *cell.Cell, method string) (*cell.Cell, error) {
	entry := func(i int, name string) (*cell.Cell, error) {
		if c := code.Ref(i); c != nil {
			return c, nil
		}
		return nil, errors.NotFound(errors.PhaseLoad, "entry point", name)
	}
	switch method {
	case "":
		return code, nil
	case "int":
		return entry(1, method)
	case "ext":
		return entry(2, method)
	case "ticktock":
		return entry(3, method)
	}

	id, err := strconv.ParseUint(method, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("method id: %w", err)
	}
	var dict *cell.Cell
	if head := code.Ref(0); head != nil {
		dict = head.Ref(0)
	}
	if dict == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "internal methods dictionary", method)
	}
	if _, err := cell.LoadDict(dict, 32); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "empty internal methods dictionary")
	}
	value, err := cell.LookupDict(dict, 32, id)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "internal method", method)
	}
	return value.ToCell()
}

func runGraphviz(w io.Writer, root *cell.Cell) {
	fmt.Fprintln(w, "digraph code {")
	fmt.Fprintln(w, `  node [shape=box, fontname="DejaVu Sans Mono"]`)
	visited := make(map[cell.Hash]struct{})
	graphvizWalk(w, root, visited)
	fmt.Fprintln(w, "}")
}

func nodeID(c *cell.Cell) string {
	return c.Hash().String()[:8]
}

func graphvizRows(c *cell.Cell) string {
	hex := c.Hex()
	if hex == "" {
		return `<tr><td align="left">8_</td></tr>`
	}
	var b strings.Builder
	for len(hex) > 32 {
		fmt.Fprintf(&b, `<tr><td align="left">%s</td></tr>`, hex[:32])
		hex = hex[32:]
	}
	fmt.Fprintf(&b, `<tr><td align="left">%s</td></tr>`, hex)
	return b.String()
}

func graphvizWalk(w io.Writer, c *cell.Cell, visited map[cell.Hash]struct{}) {
	visited[c.Hash()] = struct{}{}
	id := nodeID(c)
	fmt.Fprintf(w, "  \"%s\" [label=<<table border=\"0\"><tr><td align=\"left\"><b>%s</b></td></tr>%s</table>>];\n",
		id, id, graphvizRows(c))
	for i := 0; i < c.RefCount(); i++ {
		fmt.Fprintf(w, "  \"%s\" -> \"%s\" [ taillabel=\"%d\"];\n", id, nodeID(c.Ref(i)), i)
	}
	for i := 0; i < c.RefCount(); i++ {
		child := c.Ref(i)
		if _, ok := visited[child.Hash()]; !ok {
			graphvizWalk(w, child, visited)
		}
	}
}

// disassembler turns code cells into listings with one Loader per region, so
// regions can be decoded in parallel.
type disassembler struct {
	cfg     *config.Config
	printer disasm.Printer
}

func (d *disassembler) decode(s *cell.Slice) (disasm.Code, error) {
	code, err := disasm.NewLoader(d.cfg.LoaderOptions()...).Load(s, false)
	if err != nil {
		return nil, err
	}
	disasm.ElaborateDictJumps(code)
	return code, nil
}

func (d *disassembler) render(code disasm.Code) (string, error) {
	return d.printer.Print(code, d.cfg.Output.Indent)
}

// piece is one independently decoded body of a listing.
type piece struct {
	slice *cell.Slice
	head  string
	text  string
	tail  string
	code  disasm.Code
	id    int64
}

// section is one printed region of a listing.
type section struct {
	title  string
	head   string
	kind   shape.RegionKind
	pieces []*piece
	region export.Region
	// note replaces the pieces when the region could not be read.
	note string
}

func (s *section) text() string {
	var b strings.Builder
	b.WriteString(s.head)
	if s.note != "" {
		b.WriteString(s.note)
	}
	for _, p := range s.pieces {
		b.WriteString(p.head)
		b.WriteString(p.text)
		b.WriteString(p.tail)
	}
	return b.String()
}

// listing is a disassembled contract.
type listing struct {
	layout   string
	version  string
	preamble string
	sections []*section
}

func (l *listing) text() string {
	var b strings.Builder
	b.WriteString(l.preamble)
	for _, s := range l.sections {
		b.WriteString(s.text())
	}
	return b.String()
}

func (l *listing) document() *export.Document {
	doc := &export.Document{Layout: l.layout, Version: l.version}
	for _, s := range l.sections {
		doc.Regions = append(doc.Regions, s.region)
	}
	return doc
}

func entrypoint(id int64, name string) string {
	if name == "" {
		name = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf(".internal-alias :function_%s, %d\n.internal :function_%s\n", name, id, name)
}

// methodID reads a dictionary key as a 32-bit signed method id.
func methodID(key uint64) int64 {
	return int64(int32(uint32(key)))
}

// rawListing disassembles the whole first root without layout recognition.
func (d *disassembler) rawListing(root *cell.Cell) (*listing, error) {
	p := &piece{slice: root.BeginParse()}
	if err := d.decodeAll([]*piece{p}); err != nil {
		return nil, err
	}
	return &listing{
		layout: "raw",
		sections: []*section{{
			title:  "root",
			pieces: []*piece{p},
			kind:   shape.RegionCode,
			region: export.Region{Name: "root", Code: export.FromCode(p.code)},
		}},
	}, nil
}

// buildListing recognizes the selector layout of code and decodes every region.
func (d *disassembler) buildListing(code *cell.Cell, layouts []shape.Layout) (*listing, error) {
	m, err := shape.Recognize(layouts, code)
	if err != nil {
		return nil, err
	}

	out := &listing{layout: m.Layout.Name}
	var pre strings.Builder
	var all []*piece
	for _, r := range m.Layout.Regions {
		if r.Kind != shape.RegionVersion {
			continue
		}
		c, ok := m.Captures[r.Capture]
		if !ok {
			if r.Optional {
				continue
			}
			return nil, errors.NotFound(errors.PhaseMatch, "capture", r.Capture)
		}
		if utf8.Valid(c.Data()) {
			out.version = string(c.Data())
			fmt.Fprintf(&pre, ".version %s\n", out.version)
		} else {
			pre.WriteString(";; failed to parse version bytes: invalid utf-8\n")
		}
	}
	if m.Layout.Banner != "" {
		fmt.Fprintf(&pre, ";; %s\n", m.Layout.Banner)
	}
	out.preamble = pre.String()

	for _, r := range m.Layout.Regions {
		if r.Kind == shape.RegionVersion {
			continue
		}
		c, ok := m.Captures[r.Capture]
		if !ok {
			if r.Optional {
				continue
			}
			return nil, errors.NotFound(errors.PhaseMatch, "capture", r.Capture)
		}
		s := &section{
			title:  r.Comment,
			kind:   r.Kind,
			region: export.Region{Name: r.Capture, Comment: r.Comment, EntryID: r.EntryID},
		}
		if r.Comment != "" {
			s.head = ";; " + r.Comment + "\n"
		}
		switch r.Kind {
		case shape.RegionDict:
			entries, err := cell.LoadDict(c, r.KeyBits)
			if err != nil {
				s.note = fmt.Sprintf(";; %s wasn't recognized\n", r.Comment)
				break
			}
			for _, e := range entries {
				id := methodID(e.Key)
				s.pieces = append(s.pieces, &piece{
					slice: e.Value.Clone(),
					head:  "\n" + entrypoint(id, ""),
					tail:  "\n",
					id:    id,
				})
			}
		default:
			s.pieces = []*piece{{
				slice: c.BeginParse(),
				head:  entrypoint(int64(r.EntryID), r.EntryName),
				tail:  "\n",
				id:    int64(r.EntryID),
			}}
		}
		all = append(all, s.pieces...)
		out.sections = append(out.sections, s)
	}

	if err := d.decodeAll(all); err != nil {
		return nil, err
	}
	for _, s := range out.sections {
		if s.kind != shape.RegionDict {
			s.region.Code = export.FromCode(s.pieces[0].code)
			continue
		}
		for _, p := range s.pieces {
			s.region.Methods = append(s.region.Methods, export.Method{ID: p.id, Code: export.FromCode(p.code)})
		}
	}
	return out, nil
}

// decodeAll decodes and renders pieces in parallel. The first error wins.
func (d *disassembler) decodeAll(pieces []*piece) error {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for _, p := range pieces {
		wg.Add(1)
		sem <- struct{}{}
		go func(p *piece) {
			defer wg.Done()
			defer func() { <-sem }()
			err := d.decodePiece(p)
			if err != nil {
				mu.Lock()
				if first == nil {
					first = err
				}
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()
	return first
}

func (d *disassembler) decodePiece(p *piece) error {
	code, err := d.decode(p.slice)
	if err != nil {
		return err
	}
	text, err := d.render(code)
	if err != nil {
		return err
	}
	p.code = code
	p.text = text
	return nil
}
