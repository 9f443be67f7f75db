package vm

import (
	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// execMakeFunction implements MAKE_FUNCTION/MAKE_COROUTINE, turning a
// CodeObject constant into a first-class callable Function value, mirroring
// the teacher's closure-creation opcode. inst.A indexes
// frame.Code.CodeConstants, the slice of nested *code.CodeObject bodies kept
// beside the value constant pool.
func (vm *VirtualMachine) execMakeFunction(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	co := frame.Code.CodeConstants[inst.A]
	fn := &registry.Function{
		Name:    co.Name,
		Code:    co,
		IsAsync: co.IsCoroutine || inst.Op == opcodes.OpMakeCoroutine,
	}
	frame.push(ctx.Registry.NewFunction(fn))
	return true, nil
}

// MakeFunctionValue is the non-bytecode-driven equivalent of MAKE_FUNCTION:
// it wraps co as a callable Function value without executing an instruction.
func MakeFunctionValue(reg *registry.Registry, name string, co *code.CodeObject, isAsync bool) values.Value {
	return reg.NewFunction(&registry.Function{Name: name, Code: co, IsAsync: isAsync})
}

// MakeBuiltinValue wraps a Go closure as a callable Function value.
func MakeBuiltinValue(reg *registry.Registry, name string, fn func(args []values.Value, kwargs *registry.Dict) (values.Value, error)) values.Value {
	return reg.NewFunction(&registry.Function{Name: name, Builtin: fn})
}
