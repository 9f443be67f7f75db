package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
)

func TestDecorateWrapsPlainErrorWithFrameContext(t *testing.T) {
	f := newCallFrame("my_func", &code.CodeObject{}, nil)
	f.IP = 3
	raw := mtyerr.TypeErrorf("bad thing")

	err := decorate(f, opcodes.Instruction{Op: opcodes.OpAdd}, raw)
	ie, ok := err.(*InterpreterError)
	require.True(t, ok)
	assert.Equal(t, "my_func", ie.Frame)
	assert.Equal(t, 3, ie.IP)
	assert.Equal(t, opcodes.OpAdd, ie.Opcode)
	assert.Same(t, raw, ie.Err)
}

func TestDecorateIsIdempotentOnAlreadyDecoratedError(t *testing.T) {
	f := newCallFrame("my_func", &code.CodeObject{}, nil)
	once := decorate(f, opcodes.Instruction{}, mtyerr.TypeErrorf("x"))
	twice := decorate(f, opcodes.Instruction{}, once)
	assert.Same(t, once, twice)
}

func TestDecorateNilErrorReturnsNil(t *testing.T) {
	f := newCallFrame("f", &code.CodeObject{}, nil)
	assert.Nil(t, decorate(f, opcodes.Instruction{}, nil))
}

func TestAsPyErrorUnwrapsThroughInterpreterError(t *testing.T) {
	f := newCallFrame("f", &code.CodeObject{}, nil)
	pe := mtyerr.ValueErrorf("oops")
	wrapped := decorate(f, opcodes.Instruction{}, pe)

	got, ok := AsPyError(wrapped)
	require.True(t, ok)
	assert.Same(t, pe, got)
}

func TestAsPyErrorFalseOnUnrelatedError(t *testing.T) {
	_, ok := AsPyError(errors.New("plain"))
	assert.False(t, ok)
}

func TestInterpreterErrorMessageFormat(t *testing.T) {
	f := newCallFrame("f", &code.CodeObject{}, nil)
	f.IP = 5
	err := decorate(f, opcodes.Instruction{Op: opcodes.OpSub}, mtyerr.ValueErrorf("bad"))
	assert.Contains(t, err.Error(), "frame=f")
	assert.Contains(t, err.Error(), "ip=5")
	assert.Contains(t, err.Error(), "SUB")
}
