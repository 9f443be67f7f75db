package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func TestRegisterExceptionsInstallsAllConstructors(t *testing.T) {
	reg := registry.New()
	b := make(map[string]values.Value)
	RegisterExceptions(reg, b)

	for _, name := range exceptionTypeNames {
		fn, ok := b[name]
		require.True(t, ok, "missing constructor for %s", name)
		v, err := reg.Function(fn).Builtin([]values.Value{values.Str("bad")}, nil)
		require.NoError(t, err)
		exc := reg.Exception(v)
		assert.Equal(t, name, exc.TypeName)
		assert.Equal(t, []values.Value{values.Str("bad")}, exc.Args)
	}
}

func TestExceptionStrNoArgsIsEmpty(t *testing.T) {
	reg := registry.New()
	assert.Equal(t, "", ExceptionStr(reg, &registry.ExceptionInstance{TypeName: "ValueError"}))
}

func TestExceptionStrSingleStringArgReturnsRaw(t *testing.T) {
	reg := registry.New()
	got := ExceptionStr(reg, &registry.ExceptionInstance{TypeName: "ValueError", Args: []values.Value{values.Str("bad input")}})
	assert.Equal(t, "bad input", got)
}

func TestExceptionStrSingleNonStringArgUsesRepr(t *testing.T) {
	reg := registry.New()
	got := ExceptionStr(reg, &registry.ExceptionInstance{TypeName: "ValueError", Args: []values.Value{values.IntFromInt64(404)}})
	assert.Equal(t, "404", got)
}

func TestExceptionStrMultipleArgsReprsTuple(t *testing.T) {
	reg := registry.New()
	got := ExceptionStr(reg, &registry.ExceptionInstance{
		TypeName: "ValueError",
		Args:     []values.Value{values.IntFromInt64(1), values.Str("x")},
	})
	assert.Equal(t, reg.Repr(values.Tuple(values.IntFromInt64(1), values.Str("x"))), got)
}
