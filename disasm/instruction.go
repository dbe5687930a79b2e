package disasm

import (
	"math/big"

	"github.com/wippyai/tvm-disasm/cell"
)

// Instruction is one decoded TVM instruction.
type Instruction struct {
	// Bytecode covers the bits and references the instruction was decoded from.
	Bytecode *cell.Slice
	Name     string
	Comment  string
	Params   []Param
	Quiet    bool
}

func newInsn(name string, params ...Param) *Instruction {
	return &Instruction{Name: name, Params: params}
}

// Mnemonic returns the name with the quiet suffix applied.
func (i *Instruction) Mnemonic() string {
	if i.Quiet {
		return i.Name + "Q"
	}
	return i.Name
}

// Refs returns the number of references consumed by the instruction itself.
func (i *Instruction) Refs() int {
	if i.Bytecode == nil {
		return 0
	}
	return i.Bytecode.RefsLeft()
}

func (i *Instruction) marked() bool {
	for _, p := range i.Params {
		if _, ok := p.(CodeDictMarker); ok {
			return true
		}
	}
	return false
}

// Code is a decoded instruction sequence.
type Code []*Instruction

// Param is an instruction operand. The concrete types below are the only
// implementations.
type Param interface {
	isParam()
}

// BigInteger holds a PUSHINT constant.
type BigInteger struct {
	Value *big.Int
}

// ControlRegister is c0..c15.
type ControlRegister struct {
	Index int
}

// Integer is a small signed immediate.
type Integer struct {
	Value int
}

// Length is a bit, byte or element count.
type Length struct {
	Value int
}

// LengthAndIndex is the pair used by tuple index operations.
type LengthAndIndex struct {
	Length int
	Index  int
}

// Nargs is a continuation argument count; -1 means all.
type Nargs struct {
	Value int
}

// Pargs is the number of parameters passed to a continuation.
type Pargs struct {
	Value int
}

// Rargs is the number of return values; -1 means all.
type Rargs struct {
	Value int
}

// SliceParam is an inline bit string.
type SliceParam struct {
	Value *cell.Slice
}

// StackRegister is s0..s255.
type StackRegister struct {
	Index int
}

// StackRegisterPair is two stack registers.
type StackRegisterPair struct {
	A, B int
}

// StackRegisterTriple is three stack registers.
type StackRegisterTriple struct {
	A, B, C int
}

// CodeBlock is a nested continuation. Cell is the cell the code was loaded
// from, nil for continuations embedded inline.
type CodeBlock struct {
	Cell *cell.Cell
	Code Code
}

// CellRef is a referenced cell. A nil Cell means the reference was missing.
// Collapsed is set when the cell was already printed elsewhere.
type CellRef struct {
	Cell      *cell.Cell
	Collapsed bool
}

// CodeDictMarker tags a DICTPUSHCONST or PFXDICTSWITCH that heads a
// dictionary jump table.
type CodeDictMarker struct{}

func (BigInteger) isParam()          {}
func (ControlRegister) isParam()     {}
func (Integer) isParam()             {}
func (Length) isParam()              {}
func (LengthAndIndex) isParam()      {}
func (Nargs) isParam()               {}
func (Pargs) isParam()               {}
func (Rargs) isParam()               {}
func (SliceParam) isParam()          {}
func (StackRegister) isParam()       {}
func (StackRegisterPair) isParam()   {}
func (StackRegisterTriple) isParam() {}
func (CodeBlock) isParam()           {}
func (CellRef) isParam()             {}
func (CodeDictMarker) isParam()      {}
