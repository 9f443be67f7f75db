package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iansi36283/monty/opcodes"
)

const sampleFixture = `{
  "external_functions": ["greet"],
  "code": {
    "name": "<module>",
    "num_locals": 1,
    "local_names": ["x"],
    "constants": [
      {"type": "int", "int": "42"},
      {"type": "str", "str": "hi"},
      {"type": "tuple", "tuple": [{"type": "bool", "bool": true}, {"type": "float", "float": 1.5}]}
    ],
    "instructions": [
      {"op": "LOAD_CONST", "a": 0},
      {"op": "STORE_LOCAL", "a": 0},
      {"op": "CALL_EXTERNAL", "name": "greet", "shape": {"num_positional": 1}},
      {"op": "RETURN"}
    ],
    "code_constants": [
      {"name": "helper", "num_locals": 0, "instructions": [{"op": "RETURN"}]}
    ]
  }
}`

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadProgramParsesExternalFunctionsAndCode(t *testing.T) {
	path := writeFixture(t, sampleFixture)
	p, err := loadProgram(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"greet"}, p.ExternalFunctions)
	assert.Equal(t, "<module>", p.Code.Name)
}

func TestToCodeObjectConvertsConstantsAndInstructions(t *testing.T) {
	path := writeFixture(t, sampleFixture)
	p, err := loadProgram(path)
	require.NoError(t, err)

	co, err := p.Code.toCodeObject()
	require.NoError(t, err)

	require.Len(t, co.Constants, 3)
	assert.Equal(t, int64(42), co.Constants[0].AsInt().Int64())
	assert.Equal(t, "hi", co.Constants[1].AsString())

	tup := co.Constants[2].AsTuple()
	require.Len(t, tup, 2)
	assert.True(t, tup[0].AsBool())
	assert.Equal(t, 1.5, tup[1].AsFloat())

	require.Len(t, co.Instructions, 4)
	assert.Equal(t, opcodes.OpLoadConst, co.Instructions[0].Op)
	assert.Equal(t, opcodes.OpCallExternal, co.Instructions[2].Op)
	require.NotNil(t, co.Instructions[2].Shape)
	assert.Equal(t, 1, co.Instructions[2].Shape.NumPositional)

	require.Len(t, co.CodeConstants, 1)
	assert.Equal(t, "helper", co.CodeConstants[0].Name)
}

func TestToCodeObjectRejectsUnknownOpcode(t *testing.T) {
	path := writeFixture(t, `{"code": {"name": "m", "instructions": [{"op": "NOT_A_REAL_OP"}]}}`)
	p, err := loadProgram(path)
	require.NoError(t, err)
	_, err = p.Code.toCodeObject()
	require.Error(t, err)
}

func TestJSONValueToValueUnsupportedTypeErrors(t *testing.T) {
	jv := jsonValue{Type: "weird"}
	_, err := jv.toValue()
	require.Error(t, err)
}

func TestJSONValueToValueInvalidIntErrors(t *testing.T) {
	jv := jsonValue{Type: "int", Int: "not-a-number"}
	_, err := jv.toValue()
	require.Error(t, err)
}

func TestLoadProgramMissingFileErrors(t *testing.T) {
	_, err := loadProgram(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.Error(t, err)
}

func TestJSONValueNoneDefaultsWhenTypeOmitted(t *testing.T) {
	jv := jsonValue{}
	v, err := jv.toValue()
	require.NoError(t, err)
	assert.True(t, v.IsNone())
}
