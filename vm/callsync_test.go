package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func TestCallSyncBuiltinFunction(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	fn := reg.NewFunction(&registry.Function{
		Name: "inc",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			return values.IntFromInt64(args[0].AsInt().Int64() + 1), nil
		},
	})

	out, err := CallSync(ctx, fn, []values.Value{values.IntFromInt64(4)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.AsInt().Int64())
}

func TestCallSyncUserFunctionRunsToCompletion(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	co := &code.CodeObject{
		Name:      "double",
		Params:    []code.Param{{Name: "a"}},
		NumLocals: 1,
		Instructions: []opcodes.Instruction{
			{Op: opcodes.OpLoadLocal, A: 0},
			{Op: opcodes.OpLoadLocal, A: 0},
			{Op: opcodes.OpAdd},
			{Op: opcodes.OpReturn},
		},
	}
	fn := reg.NewFunction(&registry.Function{Name: "double", Code: co})

	out, err := CallSync(ctx, fn, []values.Value{values.IntFromInt64(21)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.AsInt().Int64())
}

func TestCallSyncBoundMethodPrependsReceiver(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	builtinFn := reg.NewFunction(&registry.Function{
		Name: "tag",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			return values.Tuple(args...), nil
		},
	})
	recv := values.Str("self")
	bm := reg.NewBoundMethod(&registry.BoundMethod{Receiver: recv, Func: builtinFn})

	out, err := CallSync(ctx, bm, []values.Value{values.IntFromInt64(1)}, nil)
	require.NoError(t, err)
	items := out.AsTuple()
	require.Len(t, items, 2)
	assert.Equal(t, recv, items[0])
}

func TestCallSyncPreservesOuterContextStateAcrossCall(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	outer := newCallFrame("<module>", &code.CodeObject{}, nil)
	ctx.Frames = []*CallFrame{outer}
	ctx.Halted = false

	fn := reg.NewFunction(&registry.Function{
		Name:    "noop",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) { return values.None(), nil },
	})
	_, err := CallSync(ctx, fn, nil, nil)
	require.NoError(t, err)

	require.Len(t, ctx.Frames, 1)
	assert.Same(t, outer, ctx.Frames[0])
	assert.False(t, ctx.Halted)
}

func TestCallSyncHostCallMidCallbackSurfacesAsRuntimeError(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	co := &code.CodeObject{
		Name:      "needs_host",
		NumLocals: 0,
		Constants: []values.Value{values.Str("HOME")},
		Instructions: []opcodes.Instruction{
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpCallOS, Name: "getenv", IsOS: true, Shape: &opcodes.CallShape{NumPositional: 1}},
			{Op: opcodes.OpReturn},
		},
	}
	fn := reg.NewFunction(&registry.Function{Name: "needs_host", Code: co})

	_, err := CallSync(ctx, fn, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getenv")
}

func TestCallSyncNonCallableRaisesTypeError(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	_, err := CallSync(ctx, values.IntFromInt64(1), nil, nil)
	require.Error(t, err)
}
