// Package vm implements monty's interpreter loop, mirroring the teacher's
// vm.VirtualMachine.Execute/run/executeInstruction split (vm/vm.go): a
// top-level driver that pushes the module frame and loops calling
// executeInstruction until the frame stack empties or a host call suspends
// execution.
package vm

import (
	"fmt"

	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// DebugLevel controls the verbosity of runtime diagnostics collected,
// mirroring the teacher's vm.DebugLevel.
type DebugLevel int

const (
	DebugLevelNone DebugLevel = iota
	DebugLevelBasic
	DebugLevelDetailed
)

// Option configures a VirtualMachine at construction time, the idiom the
// teacher uses for ExecutionContext defaults (NewExecutionContext) and its
// NewVirtualMachineWithProfiling/EnableAdvancedProfiling constructors.
type Option func(*VirtualMachine)

func WithDebugLevel(level DebugLevel) Option {
	return func(vm *VirtualMachine) { vm.debugLevel = level }
}

// WithMaxSteps bounds the number of dispatched instructions before the
// interpreter gives up with a RuntimeError, guarding the host against a
// script that spins without ever reaching a host call or returning.
func WithMaxSteps(n int) Option {
	return func(vm *VirtualMachine) { vm.maxSteps = n }
}

// VirtualMachine is the bytecode interpreter that executes compiled monty
// instructions, mirroring the teacher's VirtualMachine.
type VirtualMachine struct {
	debugLevel  DebugLevel
	breakpoints map[int]struct{}
	watchVars   map[string]struct{}
	profile     *profileState
	maxSteps    int
}

// New constructs a VirtualMachine with basic instrumentation disabled,
// mirroring the teacher's NewVirtualMachine.
func New(opts ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		debugLevel:  DebugLevelNone,
		breakpoints: make(map[int]struct{}),
		watchVars:   make(map[string]struct{}),
		profile:     newProfileState(),
		maxSteps:    10_000_000,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

func (vm *VirtualMachine) SetBreakpoint(ip int) { vm.breakpoints[ip] = struct{}{} }

func (vm *VirtualMachine) WatchVariable(name string) {
	if name != "" {
		vm.watchVars[name] = struct{}{}
	}
}

// Start pushes the module-level frame for co and drives it, mirroring the
// teacher's Execute pushing a "{main}" frame before calling run.
func (vm *VirtualMachine) Start(ctx *ExecutionContext, co *code.CodeObject) (*RunResult, error) {
	frame := newCallFrame("<module>", co, nil)
	ctx.pushFrame(frame)
	return vm.run(ctx)
}

// RunResult is what one vm.run pass produces: either a host-call suspension
// (Pending set) or completion (Done set, Output holding the final value).
type RunResult struct {
	Pending *PendingCall
	Done    bool
	Output  values.Value
}

// Resume continues execution after the host answered a PendingCall: it
// pushes the resume value onto the issuing frame's operand stack, advances
// that frame's instruction pointer past the call, and continues dispatch.
func (vm *VirtualMachine) Resume(ctx *ExecutionContext, pc *PendingCall, value values.Value) (*RunResult, error) {
	pc.Frame.push(value)
	pc.Frame.IP++
	return vm.run(ctx)
}

// ResumeWithException drives resume(value) when the host's answer is itself
// exception-shaped, triggering an in-interpreter raise rather than a normal
// return. The raise must happen in the frame
// that issued the host call — which may sit inside a coroutine's private
// stack, not the stack run() dispatches on — so the exception is parked on
// that frame and consumed when dispatch next reaches it.
func (vm *VirtualMachine) ResumeWithException(ctx *ExecutionContext, pc *PendingCall, exc values.Value) (*RunResult, error) {
	pc.Frame.IP++
	pe, _ := AsPyError(vm.raiseValue(ctx, pc.Frame, exc))
	pc.Frame.Injected = pe
	return vm.run(ctx)
}

func (vm *VirtualMachine) run(ctx *ExecutionContext) (*RunResult, error) {
	steps := 0
	for {
		frame := ctx.currentFrame()
		if frame == nil {
			return &RunResult{Done: true, Output: ctx.Output}, nil
		}

		steps++
		if steps > vm.maxSteps {
			return nil, mtyerr.RuntimeErrorf("exceeded max step count (%d)", vm.maxSteps)
		}

		if frame.Injected != nil {
			inj := frame.Injected
			frame.Injected = nil
			handled, herr := vm.handleError(ctx, frame, inj)
			if herr != nil {
				return nil, herr
			}
			if !handled {
				return nil, herr
			}
			continue
		}

		if frame.IP < 0 || frame.IP >= len(frame.Code.Instructions) {
			// Implicit return None when reaching the end of the instruction
			// stream without an explicit RETURN, mirroring the teacher's
			// "falling off the end returns null" rule.
			if done, err := vm.handleReturn(ctx, values.None()); err != nil {
				return nil, err
			} else if done {
				return &RunResult{Done: true, Output: ctx.Output}, nil
			}
			continue
		}

		inst := frame.Code.Instructions[frame.IP]
		vm.profile.observe(frame.IP, inst.Op)
		if _, ok := vm.breakpoints[frame.IP]; ok && vm.debugLevel != DebugLevelNone {
			// Breakpoints are purely diagnostic: recorded, never pausing
			// dispatch (monty has no interactive debugger attached here).
			vm.profile.breakpointHits++
		}

		if inst.Op == opcodes.OpCallOS || inst.Op == opcodes.OpCallExternal {
			pending, err := vm.prepareHostCall(ctx, frame, inst)
			if err != nil {
				if handled, herr := vm.handleError(ctx, frame, err); herr != nil {
					return nil, herr
				} else if !handled {
					return nil, herr
				}
				continue
			}
			if pending != nil {
				ctx.Pending = pending
				return &RunResult{Pending: pending}, nil
			}
			continue
		}

		advance, err := vm.executeInstruction(ctx, frame, inst)
		if err == errSuspend {
			return &RunResult{Pending: ctx.Pending}, nil
		}
		if err != nil {
			handled, herr := vm.handleError(ctx, frame, err)
			if herr != nil {
				return nil, herr
			}
			if !handled {
				return nil, herr
			}
			continue
		}

		if ctx.Halted {
			return &RunResult{Done: true, Output: ctx.Output}, nil
		}

		if advance {
			frame.IP++
		}
	}
}

// handleError implements unwinding: it decorates err, then looks for a
// matching exception handler on frame (or its callers), mirroring the
// teacher's OP_THROW/handler-search logic. Returns handled=true if execution
// should continue (a handler was found and frame.IP now points at its catch
// IP), or the original (possibly-wrapped) error to propagate to the host.
func (vm *VirtualMachine) handleError(ctx *ExecutionContext, frame *CallFrame, err error) (bool, error) {
	pe, ok := AsPyError(err)
	if !ok {
		return false, decorate(frame, currentInst(frame), err)
	}
	return vm.unwindToHandler(ctx, pe)
}

func currentInst(frame *CallFrame) (inst opcodes.Instruction) {
	if frame == nil || frame.IP < 0 || frame.IP >= len(frame.Code.Instructions) {
		return inst
	}
	return frame.Code.Instructions[frame.IP]
}

func (vm *VirtualMachine) executeInstruction(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	switch {
	case inst.Op == opcodes.OpLoadConst:
		frame.push(frame.Code.Constants[inst.A])
		return true, nil
	case inst.Op == opcodes.OpLoadLocal:
		frame.push(frame.Locals[inst.A])
		return true, nil
	case inst.Op == opcodes.OpStoreLocal:
		frame.Locals[inst.A] = frame.pop()
		return true, nil
	case inst.Op == opcodes.OpLoadGlobal:
		if v, ok := ctx.Globals[inst.Name]; ok {
			frame.push(v)
			return true, nil
		}
		return false, nameError(inst.Name)
	case inst.Op == opcodes.OpStoreGlobal:
		ctx.Globals[inst.Name] = frame.pop()
		return true, nil
	case inst.Op == opcodes.OpLoadBuiltin:
		v, ok := ctx.ResolveName(inst.Name)
		if !ok {
			return false, nameError(inst.Name)
		}
		frame.push(v)
		return true, nil
	case inst.Op == opcodes.OpPopTop:
		frame.pop()
		return true, nil
	case inst.Op == opcodes.OpDupTop:
		frame.push(frame.top())
		return true, nil
	case isArithmetic(inst.Op):
		return vm.execArithmetic(ctx, frame, inst)
	case isBitwise(inst.Op):
		return vm.execBitwise(ctx, frame, inst)
	case inst.Op == opcodes.OpBitNot:
		return vm.execBitwiseNot(ctx, frame, inst)
	case inst.Op == opcodes.OpNeg, inst.Op == opcodes.OpPos, inst.Op == opcodes.OpNot:
		return vm.execUnary(ctx, frame, inst)
	case isComparison(inst.Op):
		return vm.execComparison(ctx, frame, inst)
	case isContainerBuild(inst.Op):
		return vm.execBuildContainer(ctx, frame, inst)
	case inst.Op == opcodes.OpJump:
		frame.IP = inst.A
		return false, nil
	case inst.Op == opcodes.OpJumpIfFalse:
		if !ctx.Registry.Truthy(frame.pop()) {
			frame.IP = inst.A
			return false, nil
		}
		return true, nil
	case inst.Op == opcodes.OpJumpIfTrue:
		if ctx.Registry.Truthy(frame.pop()) {
			frame.IP = inst.A
			return false, nil
		}
		return true, nil
	case inst.Op == opcodes.OpGetIter:
		return vm.execGetIter(ctx, frame, inst)
	case inst.Op == opcodes.OpForIter:
		return vm.execForIter(ctx, frame, inst)
	case inst.Op == opcodes.OpLoadAttr:
		return vm.execLoadAttr(ctx, frame, inst)
	case inst.Op == opcodes.OpStoreAttr:
		return vm.execStoreAttr(ctx, frame, inst)
	case inst.Op == opcodes.OpLoadSubscr:
		return vm.execLoadSubscr(ctx, frame, inst)
	case inst.Op == opcodes.OpStoreSubscr:
		return vm.execStoreSubscr(ctx, frame, inst)
	case inst.Op == opcodes.OpLoadMethod:
		return vm.execLoadAttr(ctx, frame, inst) // method bind reuses attribute lookup
	case inst.Op == opcodes.OpCall:
		return vm.execCall(ctx, frame, inst)
	case inst.Op == opcodes.OpMakeFunction:
		return vm.execMakeFunction(ctx, frame, inst)
	case inst.Op == opcodes.OpMakeCoroutine:
		return vm.execMakeFunction(ctx, frame, inst) // same closure shape; IsAsync flag differs
	case inst.Op == opcodes.OpReturn:
		v := frame.pop()
		done, err := vm.handleReturn(ctx, v)
		if err != nil {
			return false, err
		}
		if done {
			ctx.Halted = true
		}
		return false, nil
	case inst.Op == opcodes.OpRaise:
		exc := frame.pop()
		return false, vm.raiseValue(ctx, frame, exc)
	case inst.Op == opcodes.OpSetupHandler:
		// inst.Name carries the except clause's exception type; empty means
		// a bare `except:` (or `try/finally`) catching everything.
		frame.Handlers = append(frame.Handlers, exceptionHandler{catchIP: inst.A, finallyIP: inst.B, stackLen: len(frame.Stack), typeName: inst.Name})
		return true, nil
	case inst.Op == opcodes.OpPopHandler:
		if len(frame.Handlers) > 0 {
			frame.Handlers = frame.Handlers[:len(frame.Handlers)-1]
		}
		return true, nil
	case inst.Op == opcodes.OpReraise:
		if frame.PendingExc == nil {
			return false, fmt.Errorf("monty: reraise with no pending exception")
		}
		exc := *frame.PendingExc
		frame.PendingExc = nil
		return false, vm.raiseValue(ctx, frame, exc)
	case inst.Op == opcodes.OpAwait:
		return vm.execAwait(ctx, frame, inst)
	case inst.Op == opcodes.OpYieldFromGather:
		return vm.execGather(ctx, frame, inst)
	}
	return false, fmt.Errorf("monty: unimplemented opcode %s", inst.Op)
}

func isArithmetic(op opcodes.Opcode) bool {
	switch op {
	case opcodes.OpAdd, opcodes.OpSub, opcodes.OpMul, opcodes.OpDiv, opcodes.OpFloorDiv, opcodes.OpMod, opcodes.OpPow:
		return true
	}
	return false
}

func isBitwise(op opcodes.Opcode) bool {
	switch op {
	case opcodes.OpBitAnd, opcodes.OpBitOr, opcodes.OpBitXor, opcodes.OpShl, opcodes.OpShr:
		return true
	}
	return false
}

func isComparison(op opcodes.Opcode) bool {
	switch op {
	case opcodes.OpEq, opcodes.OpNe, opcodes.OpLt, opcodes.OpLe, opcodes.OpGt, opcodes.OpGe:
		return true
	}
	return false
}

func isContainerBuild(op opcodes.Opcode) bool {
	switch op {
	case opcodes.OpBuildTuple, opcodes.OpBuildList, opcodes.OpBuildDict, opcodes.OpBuildSet,
		opcodes.OpBuildTupleUnpack, opcodes.OpBuildListUnpack:
		return true
	}
	return false
}

func nameError(name string) error {
	return &nameErr{name: name}
}

type nameErr struct{ name string }

func (e *nameErr) Error() string { return fmt.Sprintf("name '%s' is not defined", e.name) }

// handleReturn pops the current frame and delivers v either to the caller's
// operand stack or, when the module frame itself returns, as the script's
// final output. Returns done=true when there is no caller frame left,
// mirroring the teacher's "falling off {main}" case.
func (vm *VirtualMachine) handleReturn(ctx *ExecutionContext, v values.Value) (bool, error) {
	frame := ctx.popFrame()
	caller := ctx.currentFrame()
	if caller == nil {
		ctx.Output = v
		return true, nil
	}
	_ = frame
	caller.push(v)
	return false, nil
}

// RegistryOf is a convenience accessor used by builtins wired through
// ExecutionContext.
func RegistryOf(ctx *ExecutionContext) *registry.Registry { return ctx.Registry }
