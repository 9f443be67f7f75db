package builtins

import (
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// Invoke is set by the composition root (engine.New) to a closure that
// drives a callable Value to completion using the real interpreter loop
// (vm.CallSync bound to the live ExecutionContext). This indirection mirrors
// the teacher's VirtualMachine.CompilerCallback hook: builtins needs to call
// back into user-defined (bytecode) callables for sorted(key=...)/map/
// filter, and routing the call through the embedder's wiring keeps the
// builtin surface free of any dependency on interpreter construction.
var Invoke func(reg *registry.Registry, fn values.Value, args []values.Value, kwargs *registry.Dict) (values.Value, error)

// CallValue invokes fn, which may be a Go builtin Function, a BoundMethod
// wrapping one, or a user-defined bytecode Function/BoundMethod (via
// Invoke). It does not support invoking something that triggers a host
// suspension (sorted/map/filter run synchronously); Invoke returns a
// RuntimeError in that case rather than hanging.
func CallValue(reg *registry.Registry, fn values.Value, args []values.Value, kwargs *registry.Dict) (values.Value, error) {
	if fn.Kind == values.KindObject && fn.AsRef().Kind == values.ObjFunction {
		f := reg.Function(fn)
		if f.Builtin != nil {
			return f.Builtin(args, kwargs)
		}
	}
	if fn.Kind == values.KindObject && fn.AsRef().Kind == values.ObjBoundMethod {
		bm := reg.BoundMethod(fn)
		boundArgs, boundKwargs := registry.BindCall(bm.Receiver, args, kwargs)
		return CallValue(reg, bm.Func, boundArgs, boundKwargs)
	}
	if Invoke != nil {
		return Invoke(reg, fn, args, kwargs)
	}
	return values.Value{}, mtyerr.TypeErrorf("'%s' object is not callable", reg.TypeName(fn))
}
