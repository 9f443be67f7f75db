package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func TestParsePathNormalizesDotAndSlashes(t *testing.T) {
	p := ParsePath("/a/./b//c")
	assert.True(t, p.Absolute)
	assert.Equal(t, []string{"a", "b", "c"}, p.Parts)
}

func TestParsePathRelative(t *testing.T) {
	p := ParsePath("a/b")
	assert.False(t, p.Absolute)
	assert.Equal(t, []string{"a", "b"}, p.Parts)
}

func TestJoinPathAppendsSegments(t *testing.T) {
	base := values.PurePath{Absolute: true, Parts: []string{"a"}}
	joined := JoinPath(base, "b/c")
	assert.Equal(t, []string{"a", "b", "c"}, joined.Parts)
	assert.True(t, joined.Absolute)
}

func TestPathAttrNameAndParent(t *testing.T) {
	reg := registry.New()
	p := values.Path(values.PurePath{Absolute: true, Parts: []string{"a", "b.txt"}})

	name, ok, err := PathAttr(reg, p, "name")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b.txt", name.AsString())

	parent, ok, err := PathAttr(reg, p, "parent")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, parent.AsPath().Parts)
}

func TestPathAttrPartsIncludesRootForAbsolute(t *testing.T) {
	reg := registry.New()
	p := values.Path(values.PurePath{Absolute: true, Parts: []string{"a", "b"}})

	parts, ok, err := PathAttr(reg, p, "parts")
	require.NoError(t, err)
	require.True(t, ok)
	items := parts.AsTuple()
	require.Len(t, items, 3)
	assert.Equal(t, "/", items[0].AsString())
	assert.Equal(t, "a", items[1].AsString())
}

func TestPathAttrMethodReturnsHostCallBoundMethod(t *testing.T) {
	reg := registry.New()
	p := values.Path(values.PurePath{Absolute: true, Parts: []string{"a"}})

	v, ok, err := PathAttr(reg, p, "read_text")
	require.NoError(t, err)
	require.True(t, ok)

	bm := reg.BoundMethod(v)
	assert.Equal(t, p, bm.Receiver)
	fn := reg.Function(bm.Func)
	assert.True(t, fn.IsHostCall)
	assert.Equal(t, "Path.read_text", fn.HostName)
}

func TestPathAttrUnknownNameNotFound(t *testing.T) {
	reg := registry.New()
	p := values.Path(values.PurePath{Absolute: true})
	_, ok, err := PathAttr(reg, p, "bogus")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParentOfRootIsRoot(t *testing.T) {
	reg := registry.New()
	root := values.Path(values.PurePath{Absolute: true})
	parent, ok, err := PathAttr(reg, root, "parent")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, root.AsPath(), parent.AsPath())
}
