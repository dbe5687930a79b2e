// Package export serializes disassembled code to CBOR for tools that consume
// the instruction tree rather than the text listing.
package export

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/tvm-disasm/disasm"
	"github.com/wippyai/tvm-disasm/errors"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("export: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Param kinds.
const (
	KindBigInteger      = "bigint"
	KindControlRegister = "creg"
	KindInteger         = "int"
	KindLength          = "length"
	KindLengthAndIndex  = "length-index"
	KindNargs           = "nargs"
	KindPargs           = "pargs"
	KindRargs           = "rargs"
	KindSlice           = "slice"
	KindStackRegister   = "sreg"
	KindCode            = "code"
	KindCell            = "cell"
	KindDictJump        = "dict-jump"
)

// Document is a whole disassembled contract.
type Document struct {
	Layout  string   `cbor:"1,keyasint,omitempty"`
	Version string   `cbor:"2,keyasint,omitempty"`
	Regions []Region `cbor:"3,keyasint"`
}

// Region is one printed region of a recognized layout, or the whole root for
// raw disassembly.
type Region struct {
	Name    string        `cbor:"1,keyasint"`
	Comment string        `cbor:"2,keyasint,omitempty"`
	Code    []Instruction `cbor:"3,keyasint,omitempty"`
	Methods []Method      `cbor:"4,keyasint,omitempty"`
	EntryID int           `cbor:"5,keyasint"`
}

// Method is one entry of a method dictionary.
type Method struct {
	Code []Instruction `cbor:"2,keyasint"`
	ID   int64         `cbor:"1,keyasint"`
}

// Instruction mirrors disasm.Instruction.
type Instruction struct {
	Name     string  `cbor:"1,keyasint"`
	Params   []Param `cbor:"3,keyasint,omitempty"`
	Comment  string  `cbor:"4,keyasint,omitempty"`
	Bytecode string  `cbor:"5,keyasint,omitempty"`
	Refs     int     `cbor:"6,keyasint,omitempty"`
	Quiet    bool    `cbor:"2,keyasint,omitempty"`
}

// Param mirrors one disasm.Param. Ints holds register indices and small
// immediates, Hex holds slice bits or a cell hash.
type Param struct {
	Big       *big.Int      `cbor:"3,keyasint,omitempty"`
	Kind      string        `cbor:"1,keyasint"`
	Hex       string        `cbor:"4,keyasint,omitempty"`
	Ints      []int64       `cbor:"2,keyasint,omitempty"`
	Code      []Instruction `cbor:"5,keyasint,omitempty"`
	Collapsed bool          `cbor:"6,keyasint,omitempty"`
	Missing   bool          `cbor:"7,keyasint,omitempty"`
}

// FromCode converts decoded code to its export form.
func FromCode(code disasm.Code) []Instruction {
	out := make([]Instruction, 0, len(code))
	for _, insn := range code {
		e := Instruction{
			Name:    insn.Name,
			Quiet:   insn.Quiet,
			Comment: insn.Comment,
			Refs:    insn.Refs(),
		}
		if insn.Bytecode != nil {
			e.Bytecode = insn.Bytecode.Hex()
		}
		for _, p := range insn.Params {
			e.Params = append(e.Params, fromParam(p))
		}
		out = append(out, e)
	}
	return out
}

func ints(v ...int) []int64 {
	out := make([]int64, len(v))
	for i, x := range v {
		out[i] = int64(x)
	}
	return out
}

func fromParam(p disasm.Param) Param {
	switch v := p.(type) {
	case disasm.BigInteger:
		return Param{Kind: KindBigInteger, Big: v.Value}
	case disasm.ControlRegister:
		return Param{Kind: KindControlRegister, Ints: ints(v.Index)}
	case disasm.Integer:
		return Param{Kind: KindInteger, Ints: ints(v.Value)}
	case disasm.Length:
		return Param{Kind: KindLength, Ints: ints(v.Value)}
	case disasm.LengthAndIndex:
		return Param{Kind: KindLengthAndIndex, Ints: ints(v.Length, v.Index)}
	case disasm.Nargs:
		return Param{Kind: KindNargs, Ints: ints(v.Value)}
	case disasm.Pargs:
		return Param{Kind: KindPargs, Ints: ints(v.Value)}
	case disasm.Rargs:
		return Param{Kind: KindRargs, Ints: ints(v.Value)}
	case disasm.SliceParam:
		return Param{Kind: KindSlice, Hex: v.Value.Hex()}
	case disasm.StackRegister:
		return Param{Kind: KindStackRegister, Ints: ints(v.Index)}
	case disasm.StackRegisterPair:
		return Param{Kind: KindStackRegister, Ints: ints(v.A, v.B)}
	case disasm.StackRegisterTriple:
		return Param{Kind: KindStackRegister, Ints: ints(v.A, v.B, v.C)}
	case disasm.CodeBlock:
		out := Param{Kind: KindCode, Code: FromCode(v.Code)}
		if v.Cell != nil {
			out.Hex = v.Cell.Hash().String()
		}
		return out
	case disasm.CellRef:
		out := Param{Kind: KindCell, Collapsed: v.Collapsed, Missing: v.Cell == nil && !v.Collapsed}
		if v.Cell != nil {
			out.Hex = v.Cell.Hash().String()
		}
		return out
	case disasm.CodeDictMarker:
		return Param{Kind: KindDictJump}
	}
	panic(fmt.Sprintf("export: unknown parameter %T", p))
}

// Marshal encodes doc in canonical CBOR.
func Marshal(doc *Document) ([]byte, error) {
	data, err := encMode.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRender, errors.KindInvalidData, err, "cbor encode")
	}
	return data, nil
}

// Unmarshal decodes a document written by Marshal.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseRender, errors.KindInvalidData, err, "cbor decode")
	}
	return &doc, nil
}
