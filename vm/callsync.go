package vm

import (
	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// CallSync drives a user-defined (bytecode) callable to completion without
// ever suspending, the primitive the engine package wires up as
// builtins.Invoke so sorted(key=...), map, and filter can call back into
// Python-level callables. A host call reached mid-evaluation is reported as
// a RuntimeError rather than hanging forever, since the synchronous
// iteration helpers have no way to carry a Snapshot back to the embedder
// from inside their own call.
func CallSync(ctx *ExecutionContext, fn values.Value, args []values.Value, kwargs *registry.Dict) (values.Value, error) {
	vm := New()
	savedFrames := ctx.Frames
	savedHalted := ctx.Halted
	savedPending := ctx.Pending
	ctx.Frames = nil
	ctx.Halted = false
	defer func() {
		ctx.Frames = savedFrames
		ctx.Halted = savedHalted
		ctx.Pending = savedPending
	}()

	if fn.Kind != values.KindObject {
		return values.Value{}, mtyerr.TypeErrorf("'%s' object is not callable", ctx.Registry.TypeName(fn))
	}
	ref := fn.AsRef()
	var co *code.CodeObject
	switch ref.Kind {
	case values.ObjFunction:
		f := ctx.Registry.Function(fn)
		if f.Builtin != nil {
			return f.Builtin(args, kwargs)
		}
		co = f.Code
	case values.ObjBoundMethod:
		bm := ctx.Registry.BoundMethod(fn)
		boundArgs, boundKwargs := registry.BindCall(bm.Receiver, args, kwargs)
		return CallSync(ctx, bm.Func, boundArgs, boundKwargs)
	default:
		return values.Value{}, mtyerr.TypeErrorf("'%s' object is not callable", ctx.Registry.TypeName(fn))
	}
	if co == nil {
		return values.Value{}, mtyerr.RuntimeErrorf("callable has no code object")
	}
	frame := newCallFrame(co.Name, co, nil)
	if err := bindParams(frame, co, args, kwargs); err != nil {
		return values.Value{}, err
	}
	ctx.pushFrame(frame)
	res, err := vm.run(ctx)
	if err != nil {
		return values.Value{}, err
	}
	if res.Pending != nil {
		return values.Value{}, mtyerr.RuntimeErrorf("host call '%s' reached inside a synchronous callback", res.Pending.Name)
	}
	return res.Output, nil
}
