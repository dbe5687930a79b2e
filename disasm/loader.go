package disasm

import (
	stderrors "errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/errors"
)

// DefaultCacheSize is the number of decoded cells kept by a Loader.
const DefaultCacheSize = 4096

// Loader decodes cells into instruction sequences. A Loader keeps per-run
// state and must not be shared between goroutines; use one Loader per
// independent code region.
type Loader struct {
	cache    *lru.Cache[cell.Hash, Code]
	seen     map[cell.Hash]struct{}
	depth    int
	collapse bool
}

// Option configures a Loader.
type Option func(*loaderConfig)

type loaderConfig struct {
	cacheSize int
	collapse  bool
}

// WithCollapse makes cells seen before decode to a single collapsed marker.
func WithCollapse(collapse bool) Option {
	return func(c *loaderConfig) { c.collapse = collapse }
}

// WithCacheSize bounds the decoded-cell cache.
func WithCacheSize(n int) Option {
	return func(c *loaderConfig) { c.cacheSize = n }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	cfg := loaderConfig{cacheSize: DefaultCacheSize}
	for _, o := range opts {
		o(&cfg)
	}
	cache, err := lru.New[cell.Hash, Code](cfg.cacheSize)
	if err != nil {
		cache, _ = lru.New[cell.Hash, Code](DefaultCacheSize)
	}
	return &Loader{
		cache:    cache,
		seen:     make(map[cell.Hash]struct{}),
		collapse: cfg.collapse,
	}
}

// Load decodes every instruction of s. If one reference remains afterwards it
// holds the continuation of the program: with inline set its code is appended,
// otherwise it is wrapped in an IMPLICIT-JMP instruction.
func (l *Loader) Load(s *cell.Slice, inline bool) (Code, error) {
	if l.depth >= cell.MaxDepth {
		return nil, errors.TooDeep(errors.PhaseDecode, cell.MaxDepth)
	}
	l.depth++
	defer func() { l.depth-- }()

	code, err := l.decode(s)
	if err != nil {
		return nil, err
	}
	switch s.RefsLeft() {
	case 0:
	case 1:
		next, err := s.LoadRef()
		if err != nil {
			return nil, err
		}
		nextCode, err := l.LoadCell(next)
		if err != nil {
			return nil, err
		}
		if inline {
			code = append(code, nextCode...)
		} else {
			code = append(code, newInsn("IMPLICIT-JMP", CodeBlock{Cell: next, Code: nextCode}))
		}
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindCheckFailed).
			Cell(s.Cell().Hash().String()).
			Detail("two or more remaining references").
			Build()
	}
	return code, nil
}

// LoadCell decodes a whole cell. Results are cached by hash; with collapse
// enabled a cell decoded before yields a single ";;" marker instead.
func (l *Loader) LoadCell(c *cell.Cell) (Code, error) {
	h := c.Hash()
	if _, ok := l.seen[h]; ok && l.collapse {
		return Code{newInsn(";;", CellRef{Cell: c, Collapsed: true})}, nil
	}
	if code, ok := l.cache.Get(h); ok {
		Logger().Debug("cell cache hit", zap.String("hash", h.String()))
		return code, nil
	}
	code, err := l.Load(c.BeginParse(), false)
	if err != nil {
		return nil, err
	}
	l.seen[h] = struct{}{}
	l.cache.Add(h, code)
	Logger().Debug("decoded cell",
		zap.String("hash", h.String()),
		zap.Int("instructions", len(code)),
		zap.Int("depth", l.depth))
	return code, nil
}

func (l *Loader) decode(s *cell.Slice) (Code, error) {
	table := codepage0()
	var code Code
	for s.BitsLeft() > 0 {
		h := table.lookup(s)
		if h == nil {
			return nil, l.annotate(errors.InvalidOpcode(peekHex(s)), s)
		}
		start := s.Clone()
		insn, err := h(l, s)
		if err != nil {
			return nil, l.annotate(err, start)
		}
		if insn.Bytecode == nil {
			insn.Bytecode = start.Prefix(start.BitsLeft()-s.BitsLeft(), start.RefsLeft()-s.RefsLeft())
		}
		code = append(code, insn)
	}
	return code, nil
}

// annotate records the cell and bit offset of a decode failure.
func (l *Loader) annotate(err error, s *cell.Slice) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cell == "" {
		e.Cell = s.Cell().Hash().String()
		if e.Value == nil {
			e.Value = s.Pos()
		}
		return e
	}
	return err
}

func peekHex(s *cell.Slice) string {
	n := s.BitsLeft()
	if n > 24 {
		n = 24
	}
	return s.Prefix(n, 0).Hex()
}
