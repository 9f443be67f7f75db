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

func loopingProgram() *code.CodeObject {
	// Two repeated LOAD_CONST/LOAD_CONST/ADD/POP_TOP groups followed by a
	// LOAD_CONST/RETURN, purely to give the profiler repeat hits on the same
	// opcodes without needing real control flow.
	return &code.CodeObject{
		Name:      "<module>",
		Constants: []values.Value{values.IntFromInt64(1)},
		Instructions: []opcodes.Instruction{
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpAdd},
			{Op: opcodes.OpPopTop},
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpAdd},
			{Op: opcodes.OpPopTop},
			{Op: opcodes.OpLoadConst, A: 0},
			{Op: opcodes.OpReturn},
		},
	}
}

func TestStepCountReflectsDispatchedInstructions(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	m := New()
	co := loopingProgram()

	res, err := m.Start(ctx, co)
	require.NoError(t, err)
	require.True(t, res.Done)
	assert.Equal(t, len(co.Instructions), m.StepCount())
}

func TestHotSpotsRanksMostFrequentFirst(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	m := New()
	co := loopingProgram()

	_, err := m.Start(ctx, co)
	require.NoError(t, err)

	hot := m.HotSpots(1)
	require.Len(t, hot, 1)
	assert.Equal(t, 1, hot[0].Count) // each IP in this straight-line program executes exactly once
}

func TestHotSpotsRespectsLimit(t *testing.T) {
	reg := registry.New()
	ctx := NewExecutionContext(reg)
	m := New()
	co := loopingProgram()

	_, err := m.Start(ctx, co)
	require.NoError(t, err)

	all := m.HotSpots(0)
	limited := m.HotSpots(2)
	assert.LessOrEqual(t, len(limited), 2)
	assert.LessOrEqual(t, len(limited), len(all))
}
