package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func TestExecBuildContainerTuple(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)

	f.push(values.IntFromInt64(1))
	f.push(values.IntFromInt64(2))
	ok, err := m.execBuildContainer(ctx, f, opcodes.Instruction{Op: opcodes.OpBuildTuple, A: 2})
	require.NoError(t, err)
	assert.True(t, ok)

	items := f.pop().AsTuple()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].AsInt().Int64())
	assert.Equal(t, int64(2), items[1].AsInt().Int64())
}

func TestExecBuildContainerList(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)

	f.push(values.Str("a"))
	ok, err := m.execBuildContainer(ctx, f, opcodes.Instruction{Op: opcodes.OpBuildList, A: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	list := reg.List(f.pop())
	require.Len(t, list.Items, 1)
	assert.Equal(t, "a", list.Items[0].AsString())
}

func TestExecBuildContainerSetPushesResultAndDedupes(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)

	f.push(values.IntFromInt64(1))
	f.push(values.IntFromInt64(1))
	ok, err := m.execBuildContainer(ctx, f, opcodes.Instruction{Op: opcodes.OpBuildSet, A: 2})
	require.NoError(t, err)
	assert.True(t, ok)

	setVal := f.pop()
	s := reg.SetObj(setVal)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains(values.IntFromInt64(1)))
}

func TestExecBuildContainerSetRejectsUnhashableElement(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)

	f.push(reg.NewList(nil))
	_, err := m.execBuildContainer(ctx, f, opcodes.Instruction{Op: opcodes.OpBuildSet, A: 1})
	require.Error(t, err)
}

func TestExecBuildContainerDict(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)

	f.push(values.Str("k"))
	f.push(values.IntFromInt64(9))
	ok, err := m.execBuildContainer(ctx, f, opcodes.Instruction{Op: opcodes.OpBuildDict, A: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	d := reg.Dict(f.pop())
	v, found := d.Get(values.Str("k"))
	require.True(t, found)
	assert.Equal(t, int64(9), v.AsInt().Int64())
}

func TestExecBuildContainerTupleUnpackFlattensParts(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)

	f.push(values.Tuple(values.IntFromInt64(1), values.IntFromInt64(2)))
	f.push(reg.NewList([]values.Value{values.IntFromInt64(3)}))
	ok, err := m.execBuildContainer(ctx, f, opcodes.Instruction{Op: opcodes.OpBuildTupleUnpack, A: 2})
	require.NoError(t, err)
	assert.True(t, ok)

	items := f.pop().AsTuple()
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[2].AsInt().Int64())
}

func TestExecBuildContainerListUnpack(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)

	f.push(reg.NewList([]values.Value{values.IntFromInt64(1)}))
	f.push(reg.NewList([]values.Value{values.IntFromInt64(2)}))
	ok, err := m.execBuildContainer(ctx, f, opcodes.Instruction{Op: opcodes.OpBuildListUnpack, A: 2})
	require.NoError(t, err)
	assert.True(t, ok)

	list := reg.List(f.pop())
	require.Len(t, list.Items, 2)
}

func TestMaterializeRejectsNonIterable(t *testing.T) {
	reg := registry.New()
	m, ctx, _ := frame(reg)

	_, err := m.materialize(ctx, values.IntFromInt64(1))
	require.Error(t, err)
	pe, ok := err.(*mtyerr.PyError)
	require.True(t, ok)
	assert.Equal(t, mtyerr.TypeErrorKind, pe.Kind)
}
