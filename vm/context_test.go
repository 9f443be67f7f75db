package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func TestPushPopCurrentFrame(t *testing.T) {
	ctx := NewExecutionContext(registry.New())
	assert.Nil(t, ctx.currentFrame())
	assert.Nil(t, ctx.popFrame())

	f1 := newCallFrame("outer", &code.CodeObject{}, nil)
	f2 := newCallFrame("inner", &code.CodeObject{}, f1)
	ctx.pushFrame(f1)
	ctx.pushFrame(f2)

	assert.Same(t, f2, ctx.currentFrame())
	assert.Same(t, f2, ctx.popFrame())
	assert.Same(t, f1, ctx.currentFrame())
	assert.Same(t, f1, ctx.popFrame())
	assert.Nil(t, ctx.currentFrame())
}

func TestResolveNameGlobalShadowsBuiltin(t *testing.T) {
	ctx := NewExecutionContext(registry.New())
	ctx.Builtins["len"] = values.Str("builtin-len")
	ctx.Globals["len"] = values.Str("shadowed-len")

	v, ok := ctx.ResolveName("len")
	assert.True(t, ok)
	assert.Equal(t, "shadowed-len", v.AsString())
}

func TestResolveNameFallsBackToBuiltin(t *testing.T) {
	ctx := NewExecutionContext(registry.New())
	ctx.Builtins["len"] = values.Str("builtin-len")

	v, ok := ctx.ResolveName("len")
	assert.True(t, ok)
	assert.Equal(t, "builtin-len", v.AsString())
}

func TestResolveNameUndefinedReturnsFalse(t *testing.T) {
	ctx := NewExecutionContext(registry.New())
	_, ok := ctx.ResolveName("nope")
	assert.False(t, ok)
}
