// Package code defines the pre-compiled program representation the
// interpreter consumes. Source-to-bytecode compilation happens in a
// separate front end; monty's own tests build CodeObject values directly
// rather than parsing source.
package code

import (
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/values"
)

// Param describes one declared parameter of a CodeObject.
type Param struct {
	Name       string
	HasDefault bool
	Default    values.Value
}

// CodeObject is a compiled function/module body: its constant pool,
// instruction stream, and parameter metadata.
type CodeObject struct {
	Name         string
	Params       []Param
	IsVariadic   bool
	IsCoroutine  bool
	Instructions []opcodes.Instruction
	Constants    []values.Value
	// CodeConstants holds nested function/coroutine bodies referenced by
	// MAKE_FUNCTION/MAKE_COROUTINE instructions (instruction operand A
	// indexes this slice), kept separate from Constants because values.Value
	// has no case for "compiled code" in its tagged variant.
	CodeConstants []*CodeObject
	NumLocals     int
	// LocalNames maps a local slot to its source name, used only for error
	// messages and debugging, mirroring the teacher's CallFrame bookkeeping.
	LocalNames []string
}
