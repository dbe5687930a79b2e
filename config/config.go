// Package config handles tvmdisasm.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/tvm-disasm/disasm"
	"github.com/wippyai/tvm-disasm/errors"
	"github.com/wippyai/tvm-disasm/shape"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "tvmdisasm.toml"

// Config represents a tvmdisasm.toml file.
type Config struct {
	Output  Output   `toml:"output"`
	Cache   Cache    `toml:"cache"`
	Layouts []Layout `toml:"layout"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Output configures text rendering.
type Output struct {
	Indent        string `toml:"indent"`
	BytecodeWidth int    `toml:"bytecode-width"`
	Collapse      bool   `toml:"collapse"`
}

// Cache configures the decoded-cell cache.
type Cache struct {
	Size int `toml:"size"`
}

// Layout is an extra selector layout.
type Layout struct {
	Name     string   `toml:"name"`
	Priority string   `toml:"priority"`
	Banner   string   `toml:"banner"`
	Shape    Node     `toml:"shape"`
	Regions  []Region `toml:"region"`
}

// Node is one node of a layout's shape tree. Exactly one of Literal, Var and
// Any must be set.
type Node struct {
	Literal string `toml:"literal"`
	Var     string `toml:"var"`
	Branch  []Node `toml:"branch"`
	Any     bool   `toml:"any"`
}

// Region describes how to print one capture of a layout.
type Region struct {
	Capture   string `toml:"capture"`
	Kind      string `toml:"kind"`
	Comment   string `toml:"comment"`
	EntryName string `toml:"entry-name"`
	KeyBits   int    `toml:"key-bits"`
	EntryID   int    `toml:"entry-id"`
	Optional  bool   `toml:"optional"`
}

const (
	PriorityBefore = "before"
	PriorityAfter  = "after"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Cache.Size <= 0 {
		c.Cache.Size = disasm.DefaultCacheSize
	}
	for i := range c.Layouts {
		l := &c.Layouts[i]
		if l.Priority == "" {
			l.Priority = PriorityAfter
		}
		for j := range l.Regions {
			r := &l.Regions[j]
			if r.Kind == "" {
				r.Kind = string(shape.RegionCode)
			}
			if r.Kind == string(shape.RegionDict) && r.KeyBits == 0 {
				r.KeyBits = 32
			}
		}
	}
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigFailed(path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, errors.ConfigFailed(path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, errors.ConfigFailed(path, err)
	}

	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a tvmdisasm.toml file, then
// loads it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func invalid(path []string, format string, args ...any) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidData).
		Path(path...).
		Detail(format, args...).
		Build()
}

func (c *Config) validate() error {
	if c.Output.BytecodeWidth < 0 {
		return invalid([]string{"output", "bytecode-width"}, "must not be negative")
	}
	for i, l := range c.Layouts {
		at := []string{"layout", fmt.Sprint(i)}
		if l.Name == "" {
			return invalid(at, "layout without a name")
		}
		if l.Priority != PriorityBefore && l.Priority != PriorityAfter {
			return invalid(at, "priority %q, want %q or %q", l.Priority, PriorityBefore, PriorityAfter)
		}
		if len(l.Regions) == 0 {
			return invalid(at, "layout %s prints no regions", l.Name)
		}
		for j, r := range l.Regions {
			rat := append(at, "region", fmt.Sprint(j))
			if r.Capture == "" {
				return invalid(rat, "region without a capture")
			}
			switch shape.RegionKind(r.Kind) {
			case shape.RegionCode, shape.RegionVersion:
			case shape.RegionDict:
				if r.KeyBits <= 0 || r.KeyBits > 64 {
					return invalid(rat, "key-bits %d out of range", r.KeyBits)
				}
			default:
				return invalid(rat, "unknown region kind %q", r.Kind)
			}
		}
	}
	return nil
}

// Compile builds the shape described by n.
func (n Node) Compile() (*shape.Shape, error) {
	set := 0
	if n.Literal != "" {
		set++
	}
	if n.Var != "" {
		set++
	}
	if n.Any {
		set++
	}
	if set != 1 {
		return nil, invalid(nil, "shape node needs exactly one of literal, var, any")
	}

	var s *shape.Shape
	switch {
	case n.Var != "":
		s = shape.Var(n.Var)
	case n.Any:
		s = shape.Any()
	default:
		lit, err := shape.ParseLiteral(n.Literal)
		if err != nil {
			return nil, errors.ConfigFailed("shape literal", err)
		}
		s = lit
	}
	for _, b := range n.Branch {
		child, err := b.Compile()
		if err != nil {
			return nil, err
		}
		s = s.Branch(child)
	}
	return s, nil
}

// Layout converts the configured layout to a shape.Layout.
func (l Layout) Layout() (shape.Layout, error) {
	s, err := l.Shape.Compile()
	if err != nil {
		return shape.Layout{}, err
	}
	out := shape.Layout{Name: l.Name, Banner: l.Banner, Shape: s}
	for _, r := range l.Regions {
		out.Regions = append(out.Regions, shape.Region{
			Capture:   r.Capture,
			Kind:      shape.RegionKind(r.Kind),
			Comment:   r.Comment,
			EntryName: r.EntryName,
			KeyBits:   r.KeyBits,
			EntryID:   r.EntryID,
			Optional:  r.Optional,
		})
	}
	return out, nil
}

// ShapeLayouts returns the layouts to try in order: configured layouts with
// priority "before", the built-in layouts, then the remaining configured ones.
func (c *Config) ShapeLayouts() ([]shape.Layout, error) {
	var before, after []shape.Layout
	for _, l := range c.Layouts {
		sl, err := l.Layout()
		if err != nil {
			return nil, err
		}
		if l.Priority == PriorityBefore {
			before = append(before, sl)
		} else {
			after = append(after, sl)
		}
	}
	out := append(before, shape.Builtin()...)
	return append(out, after...), nil
}

// LoaderOptions returns the disasm.Loader options implied by the config.
func (c *Config) LoaderOptions() []disasm.Option {
	return []disasm.Option{
		disasm.WithCacheSize(c.Cache.Size),
		disasm.WithCollapse(c.Output.Collapse),
	}
}
