// Exception constructors: TypeError, AttributeError, ValueError, KeyError,
// IndexError, ZeroDivisionError, NotImplementedError, RuntimeError are
// exposed as callables that build a registry.ExceptionInstance, matching
// reference Python's `raise ValueError("bad")` calling the type as a
// constructor.
package builtins

import (
	"sync"

	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
	"github.com/Iansi36283/monty/vm"
)

var exceptionTypeNames = []string{
	"TypeError", "AttributeError", "ValueError", "KeyError", "IndexError",
	"ZeroDivisionError", "NotImplementedError", "RuntimeError", "Exception",
}

// RegisterExceptions installs the exception-type constructors into builtins
// and the attribute surface of a caught exception instance (`exc.args`).
func RegisterExceptions(reg *registry.Registry, builtins map[string]values.Value) {
	for _, name := range exceptionTypeNames {
		name := name
		builtins[name] = reg.NewFunction(&registry.Function{
			Name: name,
			Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
				return reg.NewException(&registry.ExceptionInstance{TypeName: name, Args: args}), nil
			},
		})
	}
	excResolverOnce.Do(func() {
		vm.RegisterAttrResolver(func(ctx *vm.ExecutionContext, recv values.Value, attr string) (values.Value, bool, error) {
			if recv.Kind != values.KindObject || recv.AsRef().Kind != values.ObjException {
				return values.Value{}, false, nil
			}
			if attr == "args" {
				return values.Tuple(ctx.Registry.Exception(recv).Args...), true, nil
			}
			return values.Value{}, false, nil
		})
	})
}

var excResolverOnce sync.Once

// ExceptionStr implements the str(exc) rule: exc.args[0] when Args has
// length 1, else repr(exc.args).
func ExceptionStr(reg *registry.Registry, exc *registry.ExceptionInstance) string {
	switch len(exc.Args) {
	case 0:
		return ""
	case 1:
		if exc.Args[0].Kind == values.KindStr {
			return exc.Args[0].AsString()
		}
		return reg.Repr(exc.Args[0])
	default:
		return reg.Repr(values.Tuple(exc.Args...))
	}
}
