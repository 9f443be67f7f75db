// The embedder-facing surface of the vm package: Interpreter wraps a
// VirtualMachine + ExecutionContext pair behind the start/Snapshot.resume/
// Complete protocol, and Snapshot.ResumeToken is a github.com/google/uuid
// v4 value so a stale or repeated resume() call is detectable
// deterministically.
package vm

import (
	"github.com/google/uuid"

	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// Interpreter is the embedder handle returned by New: one per script
// execution, never reused across two different CodeObjects.
type Interpreter struct {
	vm      *VirtualMachine
	ctx     *ExecutionContext
	co      *code.CodeObject
	started bool
	live    *Snapshot // the currently unresumed Snapshot, if any
}

// NewInterpreter constructs an Interpreter ready to run co, with builtins
// (and any declared external function names) already registered into ctx.
func NewInterpreter(ctx *ExecutionContext, co *code.CodeObject, opts ...Option) *Interpreter {
	return &Interpreter{vm: New(opts...), ctx: ctx, co: co}
}

// Snapshot is a suspended interpreter state exposing a pending host call.
type Snapshot struct {
	IsOSFunction bool
	FunctionName string
	Args         values.Value // Tuple
	Kwargs       values.Value // Dict ObjectRef

	interp      *Interpreter
	pending     *PendingCall
	resumeToken string
	resumed     bool
}

// Complete is a terminated interpreter state carrying the script's final
// expression value.
type Complete struct {
	Output values.Value
}

// Start begins execution, producing either a Snapshot or a Complete.
// Calling Start twice raises StateError.
func (in *Interpreter) Start() (interface{}, error) {
	if in.started {
		return nil, mtyerr.NewStateError("start() called more than once")
	}
	in.started = true
	res, err := in.vm.Start(in.ctx, in.co)
	if err != nil {
		return nil, hostError(err)
	}
	return in.fromResult(res)
}

// hostError converts an unhandled sandbox exception into the
// MontyRuntimeError wrapper the embedder sees; host-protocol errors
// (StateError, internal errors) pass through unchanged.
func hostError(err error) error {
	if pe, ok := AsPyError(err); ok {
		return mtyerr.NewMontyRuntimeError(string(pe.Kind), pe.Message)
	}
	return err
}

func (in *Interpreter) fromResult(res *RunResult) (interface{}, error) {
	if res.Done {
		return &Complete{Output: res.Output}, nil
	}
	snap := &Snapshot{
		IsOSFunction: res.Pending.IsOS,
		FunctionName: res.Pending.Name,
		Args:         values.Tuple(res.Pending.Args...),
		Kwargs:       in.ctx.Registry.NewDictFrom(res.Pending.Kwargs),
		interp:       in,
		pending:      res.Pending,
		resumeToken:  uuid.NewString(),
	}
	in.live = snap
	return snap, nil
}

// Resume delivers the host's answer for this Snapshot's pending call.
// resume(value) may be called exactly once per Snapshot; a second call
// raises StateError. value undergoes the host→interpreter conversion
// documented on HostValue.
func (s *Snapshot) Resume(value interface{}) (interface{}, error) {
	if s.resumed || s != s.interp.live {
		return nil, mtyerr.NewStateError("resume() called more than once on this Snapshot")
	}
	s.resumed = true
	s.interp.live = nil

	converted, isExc := HostValue(s.interp.ctx.Registry, value)
	var res *RunResult
	var err error
	if isExc {
		res, err = s.interp.vm.ResumeWithException(s.interp.ctx, s.pending, converted)
	} else {
		res, err = s.interp.vm.Resume(s.interp.ctx, s.pending, converted)
	}
	if err != nil {
		return nil, hostError(err)
	}
	return s.interp.fromResult(res)
}

// ResumeToken exposes the UUID identifying this Snapshot.
func (s *Snapshot) ResumeToken() string { return s.resumeToken }

// Registry exposes the interpreter's object arena so an embedder can
// deep-convert Snapshot.Args/Kwargs with ToHost/ToHostDict into host-side
// immutable equivalents.
func (in *Interpreter) Registry() *registry.Registry { return in.ctx.Registry }
