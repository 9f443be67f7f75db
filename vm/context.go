package vm

import (
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// PendingCall captures an external/OS call instruction's arguments, the
// interpreter's equivalent of the teacher's pending-call buffer, right
// before it is handed to the embedder as a Snapshot.
type PendingCall struct {
	IsOS     bool
	Name     string
	Args     []values.Value
	Kwargs   *registry.Dict
	Frame    *CallFrame
}

// ExecutionContext carries the mutable state of one interpreter run: its
// object registry, module globals, builtin environment, and frame stack,
// mirroring the teacher's vm.ExecutionContext (GlobalVars/CallStack/Stack)
// generalized to monty's frame model.
type ExecutionContext struct {
	Registry *registry.Registry
	Globals  map[string]values.Value
	Builtins map[string]values.Value

	Frames []*CallFrame

	Halted bool
	Output values.Value

	// Pending is set by a CALL_OS/CALL_EXTERNAL instruction and consumed by
	// the driving Interpreter immediately after run() returns.
	Pending *PendingCall
}

// NewExecutionContext constructs an execution context with an empty global
// scope; Builtins is populated by the caller (builtins.Register).
func NewExecutionContext(reg *registry.Registry) *ExecutionContext {
	return &ExecutionContext{
		Registry: reg,
		Globals:  make(map[string]values.Value),
		Builtins: make(map[string]values.Value),
		Frames:   make([]*CallFrame, 0, 8),
	}
}

func (ctx *ExecutionContext) pushFrame(f *CallFrame) { ctx.Frames = append(ctx.Frames, f) }

func (ctx *ExecutionContext) popFrame() *CallFrame {
	n := len(ctx.Frames)
	if n == 0 {
		return nil
	}
	f := ctx.Frames[n-1]
	ctx.Frames = ctx.Frames[:n-1]
	return f
}

func (ctx *ExecutionContext) currentFrame() *CallFrame {
	if len(ctx.Frames) == 0 {
		return nil
	}
	return ctx.Frames[len(ctx.Frames)-1]
}

// ResolveName implements builtin shadowing: a module global with this name,
// if assigned, shadows the builtin of the same name.
func (ctx *ExecutionContext) ResolveName(name string) (values.Value, bool) {
	if v, ok := ctx.Globals[name]; ok {
		return v, true
	}
	if v, ok := ctx.Builtins[name]; ok {
		return v, true
	}
	return values.None(), false
}
