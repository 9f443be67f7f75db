package vm

import (
	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// AttrResolver lets a package outside vm (builtins) contribute attribute
// lookup for value kinds the registry doesn't own directly (Path and exception
// instances; records, StatResult included, are resolved by the registry and
// never reach a resolver). Registered once by builtins.Register, the
// same indirection the teacher uses for its BuiltinContext hooks.
type AttrResolver func(ctx *ExecutionContext, receiver values.Value, name string) (values.Value, bool, error)

var attrResolvers []AttrResolver

// RegisterAttrResolver installs a fallback attribute resolver, consulted
// when the receiver is not an ObjectRef(Record) (for which the registry
// already implements the attribute lookup order directly).
func RegisterAttrResolver(r AttrResolver) { attrResolvers = append(attrResolvers, r) }

func (vm *VirtualMachine) execLoadAttr(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	recv := frame.pop()
	if recv.Kind == values.KindObject && recv.AsRef().Kind == values.ObjRecord {
		v, err := ctx.Registry.GetAttr(recv, inst.Name)
		if err != nil {
			return false, err
		}
		frame.push(v)
		return true, nil
	}
	for _, r := range attrResolvers {
		if v, ok, err := r(ctx, recv, inst.Name); ok || err != nil {
			if err != nil {
				return false, err
			}
			frame.push(v)
			return true, nil
		}
	}
	return false, mtyerr.AttributeErrorf("'%s' object has no attribute '%s'", ctx.Registry.TypeName(recv), inst.Name)
}

func (vm *VirtualMachine) execStoreAttr(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	recv := frame.pop()
	val := frame.pop()
	if recv.Kind == values.KindObject && recv.AsRef().Kind == values.ObjRecord {
		if err := ctx.Registry.SetAttr(recv, inst.Name, val); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, mtyerr.AttributeErrorf("'%s' object has no attribute '%s'", ctx.Registry.TypeName(recv), inst.Name)
}

// execLoadSubscr implements `a[b]` for list, tuple, str, bytes, dict, and
// TupleLike records (StatResult positional indexing).
func (vm *VirtualMachine) execLoadSubscr(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	index := frame.pop()
	recv := frame.pop()
	v, err := subscriptGet(ctx, recv, index)
	if err != nil {
		return false, err
	}
	frame.push(v)
	return true, nil
}

func subscriptGet(ctx *ExecutionContext, recv, index values.Value) (values.Value, error) {
	switch recv.Kind {
	case values.KindTuple:
		return sequenceIndex(recv.AsTuple(), index, "tuple")
	case values.KindStr:
		s := []rune(recv.AsString())
		items := make([]values.Value, len(s))
		for i, r := range s {
			items[i] = values.Str(string(r))
		}
		v, err := sequenceIndex(items, index, "str")
		if err != nil {
			return values.Value{}, err
		}
		return v, nil
	case values.KindBytes:
		b := recv.AsBytes()
		items := make([]values.Value, len(b))
		for i, c := range b {
			items[i] = values.IntFromInt64(int64(c))
		}
		return sequenceIndex(items, index, "bytes")
	case values.KindObject:
		ref := recv.AsRef()
		switch ref.Kind {
		case values.ObjList:
			return sequenceIndex(ctx.Registry.List(recv).Items, index, "list")
		case values.ObjDict:
			d := ctx.Registry.Dict(recv)
			val, ok := d.Get(index)
			if !ok {
				return values.Value{}, mtyerr.KeyErrorf("%s", ctx.Registry.Repr(index))
			}
			return val, nil
		case values.ObjRecord:
			rec := ctx.Registry.Record(recv)
			if !rec.Type.TupleLike {
				return values.Value{}, mtyerr.TypeErrorf("'%s' object is not subscriptable", rec.Type.Name)
			}
			return sequenceIndex(rec.Fields, index, rec.Type.Name)
		}
	}
	return values.Value{}, mtyerr.TypeErrorf("'%s' object is not subscriptable", ctx.Registry.TypeName(recv))
}

func sequenceIndex(items []values.Value, index values.Value, typeName string) (values.Value, error) {
	if index.Kind != values.KindInt && index.Kind != values.KindBool {
		return values.Value{}, mtyerr.TypeErrorf("%s indices must be integers", typeName)
	}
	i := int(toBig(index).Int64())
	n := len(items)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return values.Value{}, mtyerr.IndexErrorf("%s index out of range", typeName)
	}
	return items[i], nil
}

func (vm *VirtualMachine) execStoreSubscr(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	index := frame.pop()
	recv := frame.pop()
	val := frame.pop()
	switch recv.Kind {
	case values.KindObject:
		ref := recv.AsRef()
		switch ref.Kind {
		case values.ObjList:
			items := ctx.Registry.List(recv).Items
			if index.Kind != values.KindInt && index.Kind != values.KindBool {
				return false, mtyerr.TypeErrorf("list indices must be integers")
			}
			i := int(toBig(index).Int64())
			n := len(items)
			if i < 0 {
				i += n
			}
			if i < 0 || i >= n {
				return false, mtyerr.IndexErrorf("list assignment index out of range")
			}
			items[i] = val
			return true, nil
		case values.ObjDict:
			if _, err := ctx.Registry.HashValue(index); err != nil {
				return false, err
			}
			ctx.Registry.Dict(recv).Set(index, val)
			return true, nil
		}
	}
	return false, mtyerr.TypeErrorf("'%s' object does not support item assignment", ctx.Registry.TypeName(recv))
}

// execCall implements call dispatch over Function and BoundMethod values,
// including the argument-prepend operation for bound methods
// (registry.BindCall) across all CallShape variants. The
// OpCallOS/OpCallExternal instructions never reach here (the run loop
// intercepts them before executeInstruction's switch); a Function value
// marked IsHostCall that is called through CALL suspends in dispatchCall.
func (vm *VirtualMachine) execCall(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	shape := inst.Shape
	kwargs := registry.NewDict()
	for i := len(shape.KeywordNames) - 1; i >= 0; i-- {
		kwargs.Set(values.Str(shape.KeywordNames[i]), frame.pop())
	}
	var args []values.Value
	if shape.HasStarArgs {
		star := frame.pop()
		extra, err := vm.materialize(ctx, star)
		if err != nil {
			return false, err
		}
		positional := frame.popN(shape.NumPositional)
		args = append(positional, extra...)
	} else {
		args = frame.popN(shape.NumPositional)
	}
	callee := frame.pop()
	return vm.dispatchCall(ctx, frame, callee, args, kwargs)
}

func (vm *VirtualMachine) dispatchCall(ctx *ExecutionContext, frame *CallFrame, callee values.Value, args []values.Value, kwargs *registry.Dict) (bool, error) {
	if callee.Kind != values.KindObject {
		return false, mtyerr.TypeErrorf("'%s' object is not callable", ctx.Registry.TypeName(callee))
	}
	ref := callee.AsRef()
	switch ref.Kind {
	case values.ObjBoundMethod:
		bm := ctx.Registry.BoundMethod(callee)
		boundArgs, boundKwargs := registry.BindCall(bm.Receiver, args, kwargs)
		return vm.dispatchCall(ctx, frame, bm.Func, boundArgs, boundKwargs)
	case values.ObjFunction:
		fn := ctx.Registry.Function(callee)
		if fn.IsHostCall {
			// Handled by the run loop's OpCallOS/OpCallExternal
			// interception; reaching here means a Function value marked
			// IsHostCall was invoked through a path (e.g. a variable holding
			// it) other than a direct CALL_OS/CALL_EXTERNAL instruction.
			// Surface the same pending-call machinery either way.
			if fn.HostName == "os.getenv" && len(args) == 1 {
				// os.getenv's Snapshot always carries both
				// (key, default_or_None) regardless of how many arguments
				// the script passed.
				args = append(args, values.None())
			}
			ctx.Pending = &PendingCall{IsOS: fn.HostIsOS, Name: fn.HostName, Args: args, Kwargs: kwargs, Frame: frame}
			return false, errSuspend
		}
		if fn.IsAsync {
			co := ctx.Registry.NewCoroutine(&registry.Coroutine{Name: fn.Name})
			root := newCallFrame(fn.Name, fn.Code, nil)
			if err := bindParams(root, fn.Code, args, kwargs); err != nil {
				return false, err
			}
			ctx.Registry.Coroutine(co).State = []*CallFrame{root}
			frame.push(co)
			return true, nil
		}
		if fn.Builtin != nil {
			v, err := fn.Builtin(args, kwargs)
			if err != nil {
				return false, err
			}
			frame.push(v)
			return true, nil
		}
		if fn.Code == nil {
			return false, mtyerr.RuntimeErrorf("function %s has no code object", fn.Name)
		}
		callFrame := newCallFrame(fn.Name, fn.Code, frame)
		if err := bindParams(callFrame, fn.Code, args, kwargs); err != nil {
			return false, err
		}
		ctx.pushFrame(callFrame)
		// advance=true moves the caller past this CALL now, so the return
		// value lands on a stack whose IP already points at the resume
		// instruction; dispatch picks up the new frame on the next loop turn.
		return true, nil
	}
	return false, mtyerr.TypeErrorf("'%s' object is not callable", ctx.Registry.TypeName(callee))
}

// bindParams fills frame.Locals from a call's positional/keyword arguments
// against co's declared parameter metadata, applying defaults for any
// parameter neither positional nor keyword arguments supplied.
func bindParams(frame *CallFrame, co *code.CodeObject, args []values.Value, kwargs *registry.Dict) error {
	n := len(co.Params)
	if len(args) > n && !co.IsVariadic {
		return mtyerr.TypeErrorf("%s() takes %d positional argument(s) but %d were given", co.Name, n, len(args))
	}
	for i, p := range co.Params {
		switch {
		case i < len(args):
			frame.Locals[i] = args[i]
		case kwargs != nil:
			if v, ok := kwargs.Get(values.Str(p.Name)); ok {
				frame.Locals[i] = v
				continue
			}
			fallthrough
		default:
			if p.HasDefault {
				frame.Locals[i] = p.Default
			} else {
				return mtyerr.TypeErrorf("%s() missing required argument: '%s'", co.Name, p.Name)
			}
		}
	}
	if co.IsVariadic && len(args) > n {
		extra := append([]values.Value{}, args[n:]...)
		frame.VarArgs = extra
	}
	return nil
}
