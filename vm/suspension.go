package vm

import (
	"errors"

	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// errSuspend is a sentinel error distinct from mtyerr.PyError: it signals
// "execution must suspend here and hand a Snapshot to the embedder", never
// a sandboxed exception, so vm.run must never attempt to match it against
// an `except` handler.
var errSuspend = errors.New("monty: suspend for host call")

// prepareHostCall captures the pending call's
// function name, positional args, and keyword args from an OP_CALL_OS/
// OP_CALL_EXTERNAL instruction whose operands name the function directly
// (no attribute lookup needed, unlike Path's bound methods, which suspend
// through the generic OpCall path in attrs.go's dispatchCall instead).
func (vm *VirtualMachine) prepareHostCall(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (*PendingCall, error) {
	shape := inst.Shape
	kwargs := registry.NewDict()
	for i := len(shape.KeywordNames) - 1; i >= 0; i-- {
		kwargs.Set(values.Str(shape.KeywordNames[i]), frame.pop())
	}
	args := frame.popN(shape.NumPositional)
	if inst.Name == "os.getenv" && len(args) == 1 {
		// The os.getenv Snapshot always carries both
		// (key, default_or_None), however many arguments the script passed.
		args = append(args, values.None())
	}
	return &PendingCall{IsOS: inst.IsOS, Name: inst.Name, Args: args, Kwargs: kwargs, Frame: frame}, nil
}

// raiseValue implements OP_RAISE/OP_RERAISE: it converts a Value (expected
// to be an ObjectRef(ExceptionInstance)) into the *mtyerr.PyError carried by
// the frame unwinding machinery, tagging it with the exception's declared
// type name so `except <TypeName>` matching (unwindToHandler) works for both
// builtin and user-raised exceptions.
func (vm *VirtualMachine) raiseValue(ctx *ExecutionContext, frame *CallFrame, exc values.Value) error {
	name, args := excShape(ctx, exc)
	kind := mtyerr.Kind(name)
	msg := ""
	if len(args) == 1 {
		msg = ctx.Registry.Repr(args[0])
		if args[0].Kind == values.KindStr {
			msg = args[0].AsString()
		}
	}
	pe := &mtyerr.PyError{Kind: kind, Message: msg}
	for _, a := range args {
		pe.Args = append(pe.Args, a)
	}
	return pe
}

func excShape(ctx *ExecutionContext, exc values.Value) (string, []values.Value) {
	if exc.Kind == values.KindObject && exc.AsRef().Kind == values.ObjException {
		ei := ctx.Registry.Exception(exc)
		return ei.TypeName, ei.Args
	}
	return ctx.Registry.TypeName(exc), []values.Value{exc}
}

// unwindToHandler implements exception propagation: exceptions unwind
// frames until a handler whose type filter matches is found (SETUP_HANDLER
// pushed one); FrozenInstanceError-shaped AttributeErrors are still matched
// as AttributeError, since both share mtyerr.AttributeErrorKind. When no handler on the
// current stack matches, the *mtyerr.PyError itself is returned: callers
// above this stack (an awaiting frame, a CallSync callback, or ultimately
// the Interpreter, which wraps it as MontyRuntimeError) decide what an
// unhandled sandbox exception means at their level.
func (vm *VirtualMachine) unwindToHandler(ctx *ExecutionContext, pe *mtyerr.PyError) (bool, error) {
	for frame := ctx.currentFrame(); frame != nil; frame = ctx.currentFrame() {
		for len(frame.Handlers) > 0 {
			h := frame.Handlers[len(frame.Handlers)-1]
			frame.Handlers = frame.Handlers[:len(frame.Handlers)-1]
			if !handlerMatches(h.typeName, pe.Kind) {
				continue
			}
			frame.Stack = frame.Stack[:h.stackLen]
			excVal := ctx.Registry.NewException(&registry.ExceptionInstance{
				TypeName: string(pe.Kind),
				Args:     valuesFromArgs(pe.Args),
			})
			frame.PendingExc = &excVal
			frame.push(excVal)
			frame.IP = h.catchIP
			return true, nil
		}
		ctx.popFrame()
	}
	return false, pe
}

// handlerMatches applies the except-clause type filter: a bare handler
// catches everything, `except Exception` catches every sandbox exception,
// and a named handler catches exactly its own kind.
func handlerMatches(typeName string, kind mtyerr.Kind) bool {
	return typeName == "" || typeName == "Exception" || typeName == string(kind)
}

func valuesFromArgs(args []interface{}) []values.Value {
	out := make([]values.Value, len(args))
	for i, a := range args {
		if v, ok := a.(values.Value); ok {
			out[i] = v
		} else if s, ok := a.(string); ok {
			out[i] = values.Str(s)
		} else {
			out[i] = values.None()
		}
	}
	return out
}
