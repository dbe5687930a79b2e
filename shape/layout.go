package shape

import (
	"go.uber.org/zap"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

// RegionKind tells how a captured cell is rendered.
type RegionKind string

const (
	RegionVersion RegionKind = "version" // cell data is a UTF-8 compiler version
	RegionDict    RegionKind = "dict"    // method dictionary, one entry per method
	RegionCode    RegionKind = "code"    // transaction entry point
)

// Region names one capture of a layout and how to print it.
type Region struct {
	Capture   string
	Kind      RegionKind
	Comment   string
	EntryName string
	KeyBits   int
	EntryID   int
	// Optional regions are skipped when the capture is absent.
	Optional bool
}

// Layout is a known selector layout: the shape of the code root and the
// regions to print once it matches.
type Layout struct {
	Shape   *Shape
	Name    string
	Banner  string
	Regions []Region
}

// Match is the first layout that recognized a code root.
type Match struct {
	Captures map[string]*cell.Cell
	Layout   *Layout
}

const solidityMain = "8aed5320e30320c0ffe30220c0fee302f20b"

func entryRegions() []Region {
	return []Region{
		{Capture: "internal", Kind: RegionCode, Comment: "internal transaction entry point", EntryName: "internal", EntryID: 0},
		{Capture: "external", Kind: RegionCode, Comment: "external transaction entry point", EntryName: "external", EntryID: -1},
		{Capture: "ticktock", Kind: RegionCode, Comment: "ticktock transaction entry point", EntryName: "ticktock", EntryID: -2},
	}
}

func solidityRegions(optionalVersion bool) []Region {
	regions := []Region{
		{Capture: "version", Kind: RegionVersion, Optional: optionalVersion},
		{Capture: "dict-c3", Kind: RegionDict, Comment: "internal functions dictionary", KeyBits: 32},
	}
	return append(regions, entryRegions()...)
}

// Builtin returns the known selector layouts in the order they are tried.
func Builtin() []Layout {
	return []Layout{
		{
			Name:   "deprecated1",
			Banner: "solidity deprecated selector detected",
			Shape: Literal("ff00f4a42022c00192f4a0e18aed535830f4a1").Branch(
				Var("dict-public"),
				Literal("f4a420f4a1").Branch(Var("dict-c3")),
			),
			Regions: []Region{
				{Capture: "dict-public", Kind: RegionDict, Comment: "public methods dictionary", KeyBits: 32},
				{Capture: "dict-c3", Kind: RegionDict, Comment: "internal functions dictionary", KeyBits: 32},
			},
		},
		{
			Name:   "deprecated2",
			Banner: "solidity selector detected",
			Shape: Literal(solidityMain).Branch(
				Literal("f4a420f4a1").Branch(Var("dict-c3"), Var("version")),
				Var("internal"),
				Var("external"),
				Var("ticktock"),
			),
			Regions: solidityRegions(false),
		},
		{
			Name:   "current",
			Banner: "solidity selector detected",
			Shape: Literal(solidityMain).Branch(
				Literal("f4a420f4bdf2c04e").Branch(Var("dict-c3"), Var("version")),
				Var("internal"),
				Var("external"),
				Var("ticktock"),
			),
			Regions: solidityRegions(false),
		},
		{
			Name:   "current-mycode",
			Banner: "solidity selector detected",
			Shape: Literal("8adb35").Branch(
				Literal("20f861ed1ed9"),
				Literal(solidityMain).Branch(
					Var("dict-c3"),
					Var("internal"),
					Var("external"),
					Var("ticktock"),
				),
			),
			Regions: solidityRegions(true),
		},
		{
			Name:   "fun-c",
			Banner: "fun-c selector detected",
			Shape:  Literal("ff00f4a413f4bcf2c80b").Branch(Var("dict-c3").Branch(Any())),
			Regions: []Region{
				{Capture: "dict-c3", Kind: RegionDict, Comment: "internal functions dictionary", KeyBits: 19},
			},
		},
	}
}

// Recognize tries layouts in order against root and returns the first match.
func Recognize(layouts []Layout, root *cell.Cell) (*Match, error) {
	for i := range layouts {
		l := &layouts[i]
		captures, err := l.Shape.Captures(root)
		if err != nil {
			Logger().Debug("layout rejected", zap.String("layout", l.Name), zap.Error(err))
			continue
		}
		Logger().Debug("layout matched", zap.String("layout", l.Name), zap.Int("captures", len(captures)))
		return &Match{Layout: l, Captures: captures}, nil
	}
	return nil, errors.New(errors.PhaseMatch, errors.KindNotFound).
		Cell(root.Hash().String()).
		Detail("failed to recognize selector").
		Build()
}
