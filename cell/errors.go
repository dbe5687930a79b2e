package cell

import (
	"fmt"

	"github.com/wippyai/tvm-disasm/errors"
)

func errTooManyBits(n int) error {
	return errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
		Detail("cell data of %d bits exceeds %d", n, MaxBits).
		Value(n).
		Build()
}

func errTooManyRefs(n int) error {
	return errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
		Detail("cell with %d references exceeds %d", n, MaxRefs).
		Value(n).
		Build()
}

func errTooDeep() error {
	return errors.TooDeep(errors.PhaseLoad, MaxDepth)
}

func errBadHex(s string, cause error) error {
	return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, cause, fmt.Sprintf("bad hex bitstring %q", s))
}

func errNoRef(i, n int) error {
	return errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
		Detail("reference %d of %d", i, n).
		Value(i).
		Build()
}

func errUnderflow(want, have int) error {
	return errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
		Detail("need %d bits, %d left", want, have).
		Value(want).
		Build()
}
