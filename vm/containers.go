package vm

import (
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/values"
)

func (vm *VirtualMachine) execBuildContainer(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	switch inst.Op {
	case opcodes.OpBuildTuple:
		items := frame.popN(inst.A)
		frame.push(values.Tuple(items...))
		return true, nil
	case opcodes.OpBuildList:
		items := frame.popN(inst.A)
		frame.push(ctx.Registry.NewList(items))
		return true, nil
	case opcodes.OpBuildSet:
		items := frame.popN(inst.A)
		sv := ctx.Registry.NewSet()
		s := ctx.Registry.SetObj(sv)
		for _, it := range items {
			if _, err := ctx.Registry.HashValue(it); err != nil {
				return false, err
			}
			s.Add(it)
		}
		frame.push(sv)
		return true, nil
	case opcodes.OpBuildDict:
		pairs := frame.popN(inst.A * 2)
		dv := ctx.Registry.NewDict()
		d := ctx.Registry.Dict(dv)
		for i := 0; i < len(pairs); i += 2 {
			if _, err := ctx.Registry.HashValue(pairs[i]); err != nil {
				return false, err
			}
			d.Set(pairs[i], pairs[i+1])
		}
		frame.push(dv)
		return true, nil
	case opcodes.OpBuildTupleUnpack:
		parts := frame.popN(inst.A)
		var out []values.Value
		for _, p := range parts {
			items, err := vm.materialize(ctx, p)
			if err != nil {
				return false, err
			}
			out = append(out, items...)
		}
		frame.push(values.Tuple(out...))
		return true, nil
	case opcodes.OpBuildListUnpack:
		parts := frame.popN(inst.A)
		var out []values.Value
		for _, p := range parts {
			items, err := vm.materialize(ctx, p)
			if err != nil {
				return false, err
			}
			out = append(out, items...)
		}
		frame.push(ctx.Registry.NewList(out))
		return true, nil
	}
	return false, mtyerr.RuntimeErrorf("unsupported container opcode %s", inst.Op)
}

// materialize drains an iterable value into a slice, used by the splat
// container-construction variants.
func (vm *VirtualMachine) materialize(ctx *ExecutionContext, v values.Value) ([]values.Value, error) {
	it, err := vm.getIterator(ctx, v)
	if err != nil {
		return nil, err
	}
	iter := ctx.Registry.IteratorOf(it)
	var out []values.Value
	for {
		val, ok, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, val)
	}
}
