package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad      Phase = "load"      // bag-of-cells and cell parsing
	PhaseDecode    Phase = "decode"    // bitcode to instructions
	PhaseElaborate Phase = "elaborate" // dictionary jump recovery
	PhaseMatch     Phase = "match"     // selector shape recognition
	PhaseRender    Phase = "render"    // text and cbor output
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidOpcode Kind = "invalid_opcode"
	KindCheckFailed   Kind = "check_failed"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindInvalidData   Kind = "invalid_data"
	KindNonUniquePath Kind = "non_unique_path"
	KindNotFound      Kind = "not_found"
	KindTooDeep       Kind = "too_deep"
	KindUnsupported   Kind = "unsupported"
)

// Error is the structured error type used throughout the disassembler
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Cell   string // representation hash of the cell being processed, hex
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Cell != "" {
		b.WriteString(" in cell ")
		b.WriteString(e.Cell)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the structural path, e.g. the selector region or dictionary key
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cell sets the hash of the offending cell
func (b *Builder) Cell(hash string) *Builder {
	b.err.Cell = hash
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidOpcode creates an error for bits that match no known opcode
func InvalidOpcode(prefix string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidOpcode,
		Detail: fmt.Sprintf("unknown opcode x%s", prefix),
		Value:  prefix,
	}
}

// CheckFailed creates an error for a failed opcode or operand check
func CheckFailed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCheckFailed,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NonUniquePath creates an error for a dictionary value found at two places
func NonUniquePath(key uint64) *Error {
	return &Error{
		Phase:  PhaseElaborate,
		Kind:   KindNonUniquePath,
		Detail: "non-unique path found",
		Value:  key,
	}
}

// TooDeep creates an error for a cell tree exceeding the depth limit
func TooDeep(phase Phase, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTooDeep,
		Detail: fmt.Sprintf("cell tree deeper than %d", limit),
		Value:  limit,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a bag-of-cells loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ConfigFailed creates a configuration error
func ConfigFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
