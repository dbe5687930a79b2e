// Package tvmdisasm is a disassembler for TVM smart contract bytecode.
//
// Contracts are stored as bags of cells: trees of immutable nodes holding up
// to 1023 data bits and up to four child references. Code lives in the data
// bits, nested continuations and jump tables live in children. This module
// reads such trees and prints them as assembly text.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	tvmdisasm/          Root package (documentation only)
//	├── cell/           Cells, slices, bag-of-cells codec, dictionaries
//	├── disasm/         Opcode table, decoder, jump-table elaboration, printer
//	├── shape/          Structural patterns for known selector layouts
//	├── config/         tvmdisasm.toml output options and extra layouts
//	├── export/         CBOR form of decoded code
//	├── errors/         Structured error types for debugging
//	└── cmd/tvmdisasm/  dump, graphviz and text commands
//
// # Quick Start
//
// Disassemble the code of a state init:
//
//	roots, err := cell.DeserializeBoC(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := disasm.Disassemble(roots[0].Ref(0).BeginParse(), false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(text)
//
// Recognize the selector and print each region separately:
//
//	m, err := shape.Recognize(shape.Builtin(), roots[0].Ref(0))
//	if err != nil {
//	    log.Fatal(err) // failed to recognize selector
//	}
//	for _, r := range m.Layout.Regions {
//	    fmt.Println(r.Comment, m.Captures[r.Capture].Hash())
//	}
//
// # Errors
//
// Malformed bytecode fails the whole decode with an *errors.Error carrying
// the phase and kind. Missing references are not errors: they render as
// ";; missing cell" style placeholders so partial trees stay readable.
//
// # Thread Safety
//
// Cells are immutable and safe for concurrent reads. A disasm.Loader is NOT
// thread-safe; use one Loader per goroutine. The text command decodes
// regions and dictionary methods in parallel this way.
package tvmdisasm
