// Package engine is monty's reference embedder: it wires registry,
// builtins, and vm together behind a single constructor that takes compiled
// code plus the declared external function names and returns an interpreter
// handle, along with the Run convenience loop. It is the
// one place allowed to import both vm and builtins, since builtins already
// depends on vm (for AttrResolver registration) and vm must not depend back
// on builtins.
package engine

import (
	"github.com/Iansi36283/monty/builtins"
	"github.com/Iansi36283/monty/builtinshost"
	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
	"github.com/Iansi36283/monty/vm"
)

func init() {
	// builtins.Invoke needs a live ExecutionContext, which doesn't exist at
	// package-init time; New wraps CallSync with the ctx it constructs, so
	// this default only matters if a caller invokes a builtin.CallValue
	// path before any Script has been built.
	builtins.Invoke = func(reg *registry.Registry, fn values.Value, args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		return values.Value{}, errNoContext
	}
}

var errNoContext = &noContextErr{}

type noContextErr struct{}

func (*noContextErr) Error() string { return "monty: no active interpreter context" }

// New constructs an Interpreter for co, with the full builtin surface
// installed and each name in externalNames registered as a host-call
// function.
func New(co *code.CodeObject, externalNames []string, opts ...vm.Option) *vm.Interpreter {
	reg := registry.New()
	ctx := vm.NewExecutionContext(reg)
	builtins.Register(reg, ctx.Builtins, externalNames)
	builtins.Invoke = func(r *registry.Registry, fn values.Value, args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		return vm.CallSync(ctx, fn, args, kwargs)
	}
	return vm.NewInterpreter(ctx, co, opts...)
}

// Run drives interp to completion, invoking osHandler for every OS-call
// Snapshot and the matching entry of externalFns for every external-call
// Snapshot, the `run(os=handler, external_functions={...})` convenience
// loop. Providing a nil osHandler or an externalFns map missing a name
// encountered at runtime raises NotImplementedError inside the
// interpreter.
func Run(interp *vm.Interpreter, osHandler func(name string, args, kwargs interface{}) (interface{}, error),
	externalFns map[string]func(args, kwargs interface{}) (interface{}, error)) (interface{}, error) {
	state, err := interp.Start()
	if err != nil {
		return nil, err
	}
	for {
		switch s := state.(type) {
		case *vm.Complete:
			return vm.ToHost(interp.Registry(), s.Output), nil
		case *vm.Snapshot:
			var (
				result  interface{}
				herr    error
				missing bool
				suffix  string
			)
			reg := interp.Registry()
			hostArgs := vm.ToHost(reg, s.Args)
			hostKwargs := vm.ToHostDict(reg, reg.Dict(s.Kwargs))
			if s.IsOSFunction {
				if osHandler == nil {
					missing, suffix = true, " not implemented with standard execution"
				} else {
					result, herr = osHandler(s.FunctionName, hostArgs, hostKwargs)
				}
			} else {
				fn, ok := externalFns[s.FunctionName]
				if !ok {
					missing, suffix = true, " not implemented"
				} else {
					result, herr = fn(hostArgs, hostKwargs)
				}
			}
			if herr != nil {
				return nil, herr
			}
			if missing {
				// A missing handler raises NotImplementedError
				// *inside* the interpreter (so an `except` clause could
				// still catch it); left uncaught, it surfaces to the host
				// as MontyRuntimeError.
				result = builtinshost.HostException{
					TypeName: "NotImplementedError",
					Message:  "OS function '" + s.FunctionName + "'" + suffix,
				}
			}
			state, err = s.Resume(result)
			if err != nil {
				return nil, err
			}
		}
	}
}
