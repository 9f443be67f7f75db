package vm

import (
	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/values"
)

// exceptionHandler marks an active try block: where to jump on a matching
// except clause and where to jump for the finally block, mirroring the
// teacher's exceptionHandler{catchIP, finallyIP}.
type exceptionHandler struct {
	catchIP   int
	finallyIP int
	stackLen  int    // operand stack depth to restore when unwinding into this handler
	typeName  string // exception type this handler catches; "" catches everything
}

// CallFrame holds one invocation's local slots, operand stack, instruction
// pointer, and reference to its code object. Coroutine frames additionally
// carry the await bookkeeping below.
type CallFrame struct {
	Name         string
	Code         *code.CodeObject
	IP           int
	Locals       []values.Value
	Stack        []values.Value
	Handlers     []exceptionHandler
	Caller       *CallFrame
	PendingExc   *values.Value // the exception currently propagating, if any

	// IsCoroutine marks frames created for `async def` invocations.
	IsCoroutine bool

	// Injected carries an exception delivered from outside normal dispatch:
	// a host answering resume() with an exception-shaped value targets the
	// frame that issued the call, and the raise must happen there (possibly
	// deep inside a coroutine's private stack) so its handlers get first
	// chance at it. Consumed at the top of the dispatch loop.
	Injected *mtyerr.PyError

	// GatherNext is the round-robin cursor of an in-progress
	// YIELD_FROM_GATHER in this frame: the constituent index to step next
	// when the instruction re-executes after a host suspension. A frame can
	// be blocked on at most one gather at a time, so a single cursor
	// suffices.
	GatherNext int

	// VarArgs holds the overflow positional arguments bound to a variadic
	// parameter's *args slot, mirroring the teacher's CallFrame handling of
	// PHP's func_get_args().
	VarArgs []values.Value
}

// newCallFrame constructs a frame ready to execute co from instruction 0,
// mirroring the teacher's newCallFrame(name, receiver, instructions, constants).
func newCallFrame(name string, co *code.CodeObject, caller *CallFrame) *CallFrame {
	locals := make([]values.Value, co.NumLocals)
	for i := range locals {
		locals[i] = values.None()
	}
	return &CallFrame{
		Name:        name,
		Code:        co,
		IP:          0,
		Locals:      locals,
		Stack:       make([]values.Value, 0, 8),
		Caller:      caller,
		IsCoroutine: co.IsCoroutine,
	}
}

func (f *CallFrame) push(v values.Value) { f.Stack = append(f.Stack, v) }

func (f *CallFrame) pop() values.Value {
	n := len(f.Stack)
	v := f.Stack[n-1]
	f.Stack = f.Stack[:n-1]
	return v
}

func (f *CallFrame) popN(n int) []values.Value {
	out := make([]values.Value, n)
	copy(out, f.Stack[len(f.Stack)-n:])
	f.Stack = f.Stack[:len(f.Stack)-n]
	return out
}

func (f *CallFrame) top() values.Value { return f.Stack[len(f.Stack)-1] }
