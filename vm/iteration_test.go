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

func TestGetIteratorOverTuple(t *testing.T) {
	reg := registry.New()
	m, ctx, _ := frame(reg)

	it, err := m.getIterator(ctx, values.Tuple(values.IntFromInt64(1), values.IntFromInt64(2)))
	require.NoError(t, err)
	iter := reg.IteratorOf(it)
	v, ok, err := iter.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), v.AsInt().Int64())
}

func TestGetIteratorOverString(t *testing.T) {
	reg := registry.New()
	m, ctx, _ := frame(reg)

	it, err := m.getIterator(ctx, values.Str("ab"))
	require.NoError(t, err)
	iter := reg.IteratorOf(it)
	v, _, _ := iter.Next()
	assert.Equal(t, "a", v.AsString())
}

func TestGetIteratorOverDictYieldsKeys(t *testing.T) {
	reg := registry.New()
	m, ctx, _ := frame(reg)
	d := registry.NewDict()
	d.Set(values.Str("x"), values.IntFromInt64(1))
	dv := reg.NewDictFrom(d)

	it, err := m.getIterator(ctx, dv)
	require.NoError(t, err)
	iter := reg.IteratorOf(it)
	v, ok, err := iter.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", v.AsString())
}

func TestGetIteratorOverSet(t *testing.T) {
	reg := registry.New()
	m, ctx, _ := frame(reg)
	sv := reg.NewSet()
	reg.SetObj(sv).Add(values.IntFromInt64(7))

	it, err := m.getIterator(ctx, sv)
	require.NoError(t, err)
	iter := reg.IteratorOf(it)
	v, ok, err := iter.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), v.AsInt().Int64())
}

func TestGetIteratorPassesThroughExistingIterator(t *testing.T) {
	reg := registry.New()
	m, ctx, _ := frame(reg)
	first, err := m.getIterator(ctx, values.Tuple(values.IntFromInt64(1)))
	require.NoError(t, err)

	second, err := m.getIterator(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetIteratorRejectsNonIterable(t *testing.T) {
	reg := registry.New()
	m, ctx, _ := frame(reg)
	_, err := m.getIterator(ctx, values.IntFromInt64(1))
	require.Error(t, err)
	pe, ok := err.(*mtyerr.PyError)
	require.True(t, ok)
	assert.Equal(t, mtyerr.TypeErrorKind, pe.Kind)
}

func TestExecForIterDrivesUntilExhaustedThenJumps(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)
	it, err := m.getIterator(ctx, values.Tuple(values.IntFromInt64(1), values.IntFromInt64(2)))
	require.NoError(t, err)

	f.push(it)
	ok, err := m.execForIter(ctx, f, opcodes.Instruction{A: 99})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), f.pop().AsInt().Int64())

	ok, err = m.execForIter(ctx, f, opcodes.Instruction{A: 99})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), f.pop().AsInt().Int64())

	ok, err = m.execForIter(ctx, f, opcodes.Instruction{A: 99})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 99, f.IP)
	assert.Equal(t, 0, len(f.Stack)) // the exhausted iterator was dropped
}

func TestExecGetIterPushesIteratorValue(t *testing.T) {
	reg := registry.New()
	m, ctx, f := frame(reg)

	f.push(reg.NewList([]values.Value{values.IntFromInt64(1)}))
	ok, err := m.execGetIter(ctx, f, opcodes.Instruction{})
	require.NoError(t, err)
	assert.True(t, ok)

	iter := reg.IteratorOf(f.pop())
	v, hasNext, err := iter.Next()
	require.NoError(t, err)
	require.True(t, hasNext)
	assert.Equal(t, int64(1), v.AsInt().Int64())
}
