package vm

import (
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/values"
)

// getIterator implements the iteration protocol over the builtin
// sequence/container kinds. range objects and the results of enumerate,
// zip, map, filter and reversed are already ObjIterator values by
// construction and pass through unchanged; sorted returns a list and a
// Path.iterdir answer arrives as a tuple, so both are walked like any other
// list or tuple.
func (vm *VirtualMachine) getIterator(ctx *ExecutionContext, v values.Value) (values.Value, error) {
	if v.Kind == values.KindObject && v.AsRef().Kind == values.ObjIterator {
		return v, nil
	}
	switch v.Kind {
	case values.KindTuple:
		return ctx.Registry.SliceIterator(v.AsTuple()), nil
	case values.KindStr:
		s := []rune(v.AsString())
		items := make([]values.Value, len(s))
		for i, r := range s {
			items[i] = values.Str(string(r))
		}
		return ctx.Registry.SliceIterator(items), nil
	case values.KindBytes:
		b := v.AsBytes()
		items := make([]values.Value, len(b))
		for i, c := range b {
			items[i] = values.IntFromInt64(int64(c))
		}
		return ctx.Registry.SliceIterator(items), nil
	case values.KindObject:
		ref := v.AsRef()
		switch ref.Kind {
		case values.ObjList:
			items := append([]values.Value{}, ctx.Registry.List(v).Items...)
			return ctx.Registry.SliceIterator(items), nil
		case values.ObjDict:
			return ctx.Registry.SliceIterator(ctx.Registry.Dict(v).Keys()), nil
		case values.ObjSet:
			return ctx.Registry.SliceIterator(ctx.Registry.SetObj(v).Items()), nil
		}
	}
	return values.Value{}, mtyerr.TypeErrorf("'%s' object is not iterable", typeNameOf(ctx, v))
}

func (vm *VirtualMachine) execGetIter(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	v := frame.pop()
	it, err := vm.getIterator(ctx, v)
	if err != nil {
		return false, err
	}
	frame.push(it)
	return true, nil
}

// execForIter reads the iterator GET_ITER left on top of the stack (it stays
// there for the next turn) and pushes its next value for the loop body to
// consume, or pops the exhausted iterator and jumps to inst.A (the loop's
// exit label). This matches the teacher's FE_FETCH/FE_FREE pairing
// but collapsed into a single instruction, since monty's iteration protocol
// is closed over a fixed set of iterable kinds.
func (vm *VirtualMachine) execForIter(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	itVal := frame.top()
	iter := ctx.Registry.IteratorOf(itVal)
	val, ok, err := iter.Next()
	if err != nil {
		return false, err
	}
	if !ok {
		frame.pop() // drop the exhausted iterator
		frame.IP = inst.A
		return false, nil
	}
	frame.push(val)
	return true, nil
}
