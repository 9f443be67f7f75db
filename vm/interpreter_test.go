package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/builtinshost"
	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func osGetenvProgram() *code.CodeObject {
	return &code.CodeObject{
		Name:      "<module>",
		Constants: []values.Value{values.Str("HOME")},
		Instructions: []opcodes.Instruction{
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpCallOS, Name: "os.getenv", IsOS: true, Shape: &opcodes.CallShape{NumPositional: 1}},
			{Op: opcodes.OpReturn},
		},
	}
}

func TestStartReturnsSnapshotForHostCall(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	interp := NewInterpreter(ctx, osGetenvProgram())

	state, err := interp.Start()
	require.NoError(t, err)
	snap, ok := state.(*Snapshot)
	require.True(t, ok)
	assert.True(t, snap.IsOSFunction)
	assert.Equal(t, "os.getenv", snap.FunctionName)
	assert.NotEmpty(t, snap.ResumeToken())
}

func TestResumeDeliversValueAndCompletes(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	interp := NewInterpreter(ctx, osGetenvProgram())

	state, err := interp.Start()
	require.NoError(t, err)
	snap := state.(*Snapshot)

	state, err = snap.Resume("/home/monty")
	require.NoError(t, err)
	done, ok := state.(*Complete)
	require.True(t, ok)
	assert.Equal(t, "/home/monty", done.Output.AsString())
}

func TestDoubleResumeRaisesStateError(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	interp := NewInterpreter(ctx, osGetenvProgram())

	state, err := interp.Start()
	require.NoError(t, err)
	snap := state.(*Snapshot)

	_, err = snap.Resume("first")
	require.NoError(t, err)

	_, err = snap.Resume("second")
	require.Error(t, err)
	_, ok := err.(*mtyerr.StateError)
	assert.True(t, ok)
	assert.Contains(t, err.Error(), "StateError")
}

func TestUnhandledExceptionSurfacesAsMontyRuntimeError(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	excVal := reg.NewException(&registry.ExceptionInstance{TypeName: "ValueError", Args: []values.Value{values.Str("boom")}})
	co := &code.CodeObject{
		Name:      "<module>",
		Constants: []values.Value{excVal},
		Instructions: []opcodes.Instruction{
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpRaise},
		},
	}
	interp := NewInterpreter(ctx, co)

	_, err := interp.Start()
	require.Error(t, err)
	mre, ok := err.(*mtyerr.MontyRuntimeError)
	require.True(t, ok)
	assert.Equal(t, "ValueError: boom", mre.Error())
}

func TestResumeWithExceptionIsCatchableInScript(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	co := &code.CodeObject{
		Name:      "<module>",
		Constants: []values.Value{values.Str("HOME"), values.Str("caught")},
		Instructions: []opcodes.Instruction{
			{Op: opcodes.OpSetupHandler, A: 4, B: -1, Name: "NotImplementedError"},
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpCallOS, Name: "os.getenv", IsOS: true, Shape: &opcodes.CallShape{NumPositional: 1}},
			{Op: opcodes.OpReturn},
			{Op: opcodes.OpLoadConst, A: 1},
			{Op: opcodes.OpReturn},
		},
	}
	interp := NewInterpreter(ctx, co)

	state, err := interp.Start()
	require.NoError(t, err)
	snap := state.(*Snapshot)

	state, err = snap.Resume(builtinshost.HostException{TypeName: "NotImplementedError", Message: "no handler"})
	require.NoError(t, err)
	done, ok := state.(*Complete)
	require.True(t, ok)
	assert.Equal(t, "caught", done.Output.AsString())
}

func TestResumeWithExceptionUncaughtSurfacesAsMontyRuntimeError(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	interp := NewInterpreter(ctx, osGetenvProgram())

	state, err := interp.Start()
	require.NoError(t, err)
	snap := state.(*Snapshot)

	_, err = snap.Resume(builtinshost.HostException{TypeName: "NotImplementedError", Message: "OS function 'os.getenv' not implemented with standard execution"})
	require.Error(t, err)
	mre, ok := err.(*mtyerr.MontyRuntimeError)
	require.True(t, ok)
	assert.Equal(t, "NotImplementedError: OS function 'os.getenv' not implemented with standard execution", mre.Error())
}

func TestOSGetenvSnapshotPadsMissingDefaultWithNone(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	interp := NewInterpreter(ctx, osGetenvProgram())

	state, err := interp.Start()
	require.NoError(t, err)
	snap := state.(*Snapshot)
	args := snap.Args.AsTuple()
	require.Len(t, args, 2)
	assert.Equal(t, "HOME", args[0].AsString())
	assert.True(t, args[1].IsNone())
}

func TestDoubleStartRaisesStateError(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	interp := NewInterpreter(ctx, osGetenvProgram())

	_, err := interp.Start()
	require.NoError(t, err)

	_, err = interp.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StateError")
}
