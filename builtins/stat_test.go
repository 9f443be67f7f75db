package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func TestFileStatFillsExactFieldOrder(t *testing.T) {
	reg, b := newRegisterred(t)
	ns := reg.Record(b["StatResult"])
	fileStatFn := reg.Function(ns.Fields[0])

	out, err := fileStatFn.Builtin([]values.Value{
		values.IntFromInt64(1024), values.IntFromInt64(0o644), values.Float(1700000000),
	}, nil)
	require.NoError(t, err)

	rec := reg.Record(out)
	require.Len(t, rec.Fields, 10)
	assert.Equal(t, int64(0o644), rec.Fields[0].AsInt().Int64()) // st_mode
	assert.Equal(t, int64(0), rec.Fields[1].AsInt().Int64())     // st_ino
	assert.Equal(t, int64(0), rec.Fields[2].AsInt().Int64())     // st_dev
	assert.Equal(t, int64(1), rec.Fields[3].AsInt().Int64())     // st_nlink
	assert.Equal(t, int64(0), rec.Fields[4].AsInt().Int64())     // st_uid
	assert.Equal(t, int64(0), rec.Fields[5].AsInt().Int64())     // st_gid
	assert.Equal(t, int64(1024), rec.Fields[6].AsInt().Int64())  // st_size
	assert.Equal(t, 0.0, rec.Fields[7].AsFloat())                // st_atime
	assert.Equal(t, 1700000000.0, rec.Fields[8].AsFloat())       // st_mtime
	assert.Equal(t, 0.0, rec.Fields[9].AsFloat())                // st_ctime
}

func TestDirStatZeroesSize(t *testing.T) {
	reg, b := newRegisterred(t)
	ns := reg.Record(b["StatResult"])
	dirStatFn := reg.Function(ns.Fields[1])

	out, err := dirStatFn.Builtin([]values.Value{values.IntFromInt64(0o755), values.Float(42)}, nil)
	require.NoError(t, err)

	rec := reg.Record(out)
	assert.Equal(t, int64(0o755), rec.Fields[0].AsInt().Int64())
	assert.Equal(t, int64(0), rec.Fields[6].AsInt().Int64()) // st_size always 0 for a directory
	assert.Equal(t, 42.0, rec.Fields[8].AsFloat())
}

func TestFileStatKeywordArgsOverridePositional(t *testing.T) {
	reg, b := newRegisterred(t)
	ns := reg.Record(b["StatResult"])
	fileStatFn := reg.Function(ns.Fields[0])

	kwargs := registry.NewDict()
	kwargs.Set(values.Str("mode"), values.IntFromInt64(0o600))

	out, err := fileStatFn.Builtin([]values.Value{values.IntFromInt64(10)}, kwargs)
	require.NoError(t, err)
	rec := reg.Record(out)
	assert.Equal(t, int64(0o600), rec.Fields[0].AsInt().Int64())
	assert.Equal(t, int64(10), rec.Fields[6].AsInt().Int64())
}

func TestStatResultIsFrozenAndTupleLike(t *testing.T) {
	reg, b := newRegisterred(t)
	ns := reg.Record(b["StatResult"])
	fileStatFn := reg.Function(ns.Fields[0])
	out, err := fileStatFn.Builtin(nil, nil)
	require.NoError(t, err)

	rec := reg.Record(out)
	assert.True(t, rec.Type.Frozen)
	assert.True(t, rec.Type.TupleLike)
	assert.Equal(t, 6, rec.Type.FieldIndex("st_size"))
}
