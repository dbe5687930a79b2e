package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindCheckFailed,
				Path:   []string{"internal", "dict"},
				Cell:   "ab12",
				Detail: "opcode mismatch",
			},
			contains: []string{"[decode]", "check_failed", "internal.dict", "in cell ab12", "opcode mismatch"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLoad,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[load]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseElaborate,
				Kind:   KindInvalidData,
				Detail: "bad dictionary",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[elaborate]", "invalid_data", "bad dictionary", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidOpcode,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidOpcode}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseLoad, Kind: KindInvalidOpcode}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	wrapped := Wrap(PhaseRender, KindInvalidData, err, "render")
	if !errors.Is(wrapped, &Error{Phase: PhaseDecode, Kind: KindInvalidOpcode}) {
		t.Error("errors.Is should see through Wrap")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseMatch, KindNotFound).
		Path("layout", "current").
		Cell("deadbeef").
		Value(42).
		Cause(cause).
		Detail("capture %q missing", "dict-c3").
		Build()

	if err.Phase != PhaseMatch {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseMatch)
	}
	if err.Kind != KindNotFound {
		t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
	}
	if len(err.Path) != 2 || err.Path[0] != "layout" || err.Path[1] != "current" {
		t.Errorf("Path = %v, want [layout current]", err.Path)
	}
	if err.Cell != "deadbeef" {
		t.Errorf("Cell = %v, want deadbeef", err.Cell)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != `capture "dict-c3" missing` {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"InvalidOpcode", InvalidOpcode("ff8_"), PhaseDecode, KindInvalidOpcode},
		{"CheckFailed", CheckFailed(PhaseDecode, "opcode"), PhaseDecode, KindCheckFailed},
		{"OutOfBounds", OutOfBounds(PhaseLoad, nil, 5, 4), PhaseLoad, KindOutOfBounds},
		{"InvalidData", InvalidData(PhaseLoad, nil, "bad magic"), PhaseLoad, KindInvalidData},
		{"NonUniquePath", NonUniquePath(7), PhaseElaborate, KindNonUniquePath},
		{"TooDeep", TooDeep(PhaseDecode, 1024), PhaseDecode, KindTooDeep},
		{"Unsupported", Unsupported(PhaseLoad, "exotic cells"), PhaseLoad, KindUnsupported},
		{"NotFound", NotFound(PhaseMatch, "method", "12"), PhaseMatch, KindNotFound},
		{"Load", Load("header", nil), PhaseLoad, KindInvalidData},
		{"ConfigFailed", ConfigFailed("layout", nil), PhaseConfig, KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
		})
	}

	if got := InvalidOpcode("ff8_").Error(); !strings.Contains(got, "unknown opcode xff8_") {
		t.Errorf("InvalidOpcode message = %q", got)
	}
	if got := NonUniquePath(3).Detail; got != "non-unique path found" {
		t.Errorf("NonUniquePath detail = %q", got)
	}
}
