package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func TestCallValueInvokesGoBuiltinDirectly(t *testing.T) {
	reg := registry.New()
	fn := reg.NewFunction(&registry.Function{
		Name: "inc",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			return values.IntFromInt64(args[0].AsInt().Int64() + 1), nil
		},
	})
	out, err := CallValue(reg, fn, []values.Value{values.IntFromInt64(4)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.AsInt().Int64())
}

func TestCallValueBoundMethodPrependsReceiverThenDelegates(t *testing.T) {
	reg := registry.New()
	builtinFn := reg.NewFunction(&registry.Function{
		Name: "tag",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			return values.Tuple(args...), nil
		},
	})
	recv := values.Str("self")
	bm := reg.NewBoundMethod(&registry.BoundMethod{Receiver: recv, Func: builtinFn})

	out, err := CallValue(reg, bm, []values.Value{values.IntFromInt64(1)}, nil)
	require.NoError(t, err)
	items := out.AsTuple()
	require.Len(t, items, 2)
	assert.Equal(t, recv, items[0])
}

func TestCallValueFallsBackToInvokeHookForUserFunctions(t *testing.T) {
	reg := registry.New()
	fn := reg.NewFunction(&registry.Function{Name: "user_fn"})

	prev := Invoke
	defer func() { Invoke = prev }()

	called := false
	Invoke = func(reg *registry.Registry, fn values.Value, args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		called = true
		return values.Str("via-invoke"), nil
	}

	out, err := CallValue(reg, fn, nil, nil)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "via-invoke", out.AsString())
}

func TestCallValueNonCallableRaisesTypeErrorWhenNoInvokeHook(t *testing.T) {
	reg := registry.New()
	prev := Invoke
	defer func() { Invoke = prev }()
	Invoke = nil

	_, err := CallValue(reg, values.IntFromInt64(1), nil, nil)
	require.Error(t, err)
}
