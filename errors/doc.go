// Package errors provides structured error types for the disassembler.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the structural path, the hash of the offending cell and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindCheckFailed).
//		Path("internal").
//		Cell(c.Hash().String()).
//		Detail("opcode %s", "DICTPUSHCONST").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidOpcode("ff8_")
//	err := errors.TooDeep(errors.PhaseLoad, 1024)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
