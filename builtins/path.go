// Package builtins implements monty's builtin surface: the free functions
// (len, range, sorted, ...), the Path/StatResult/os value surface, and the
// exception constructors. Host-call-triggering builtins
// (Path's methods, os.getenv) are plain registry.Function values carrying an
// IsHostCall marker, which the VM's CALL dispatch recognizes and suspends on;
// the suspension mechanics themselves live in vm/suspension.go. The only vm
// surface this package touches is the attribute-resolver registration hook
// (RegisterAttrResolver).
package builtins

import (
	"sync"

	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
	"github.com/Iansi36283/monty/vm"
)

// pathMethods are the Path methods that must leave the sandbox; each
// compiles to a host call named "Path.<method>" whose first positional
// argument is the path itself.
var pathMethods = []string{
	"exists", "is_file", "is_dir", "stat",
	"read_text", "read_bytes", "write_text", "write_bytes", "iterdir",
}

var pathResolverOnce sync.Once

func isPathMethod(name string) bool {
	for _, m := range pathMethods {
		if m == name {
			return true
		}
	}
	return false
}

// ParsePath constructs a PurePath from a POSIX string, normalizing "."
// segments and collapsing repeated slashes, the way pathlib.PurePosixPath
// does.
func ParsePath(s string) values.PurePath { return values.ParsePurePath(s) }

// NewPathFunction returns the Path(...) constructor builtin.
func NewPathFunction(reg *registry.Registry) values.Value {
	fn := &registry.Function{
		Name: "Path",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			if len(args) != 1 || args[0].Kind != values.KindStr {
				return values.Value{}, mtyerr.TypeErrorf("Path() takes a single str argument")
			}
			return values.Path(ParsePath(args[0].AsString())), nil
		},
	}
	return reg.NewFunction(fn)
}

// JoinPath implements the `/` operator on a Path. The VM's DIV instruction
// applies it directly when the left operand is a Path; the __path_join__
// builtin below exposes the same operation to embedders.
func JoinPath(p values.PurePath, seg string) values.PurePath { return p.Join(seg) }

// PathAttr resolves a Path's properties and methods.
// Property access (parts/name/parent) is resolved immediately; method access
// returns a host-call Function value that the VM's CALL instruction
// recognizes and suspends on, with args[0] pre-seeded to the path itself.
func PathAttr(reg *registry.Registry, p values.Value, name string) (values.Value, bool, error) {
	pp := p.AsPath()
	switch name {
	case "parts":
		items := make([]values.Value, 0, len(pp.Parts)+1)
		if pp.Absolute {
			items = append(items, values.Str("/"))
		}
		for _, part := range pp.Parts {
			items = append(items, values.Str(part))
		}
		return values.Tuple(items...), true, nil
	case "name":
		if len(pp.Parts) == 0 {
			return values.Str(""), true, nil
		}
		return values.Str(pp.Parts[len(pp.Parts)-1]), true, nil
	case "parent":
		if len(pp.Parts) == 0 {
			return values.Path(pp), true, nil
		}
		return values.Path(values.PurePath{Absolute: pp.Absolute, Parts: pp.Parts[:len(pp.Parts)-1]}), true, nil
	}
	if isPathMethod(name) {
		fn := reg.NewFunction(&registry.Function{
			Name:       "Path." + name,
			IsHostCall: true,
			HostIsOS:   true,
			HostName:   "Path." + name,
		})
		// Bound like any other method: calling it prepends the path itself
		// as args[0].
		bound := reg.NewBoundMethod(&registry.BoundMethod{Receiver: p, Func: fn})
		return bound, true, nil
	}
	return values.Value{}, false, nil
}

// RegisterPath installs the Path(...) constructor into builtins and wires
// Path attribute/method dispatch into the VM's AttrResolver hook. The
// resolver list is process-global, so the hook registers once and resolves
// against the calling context's own registry — never the registry of
// whichever interpreter happened to be constructed first.
func RegisterPath(reg *registry.Registry, builtins map[string]values.Value) {
	builtins["Path"] = NewPathFunction(reg)
	pathResolverOnce.Do(func() {
		vm.RegisterAttrResolver(func(ctx *vm.ExecutionContext, recv values.Value, name string) (values.Value, bool, error) {
			if recv.Kind != values.KindPath {
				return values.Value{}, false, nil
			}
			return PathAttr(ctx.Registry, recv, name)
		})
	})
	builtins["__path_join__"] = reg.NewFunction(&registry.Function{
		Name: "__path_join__",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			if len(args) != 2 || args[0].Kind != values.KindPath || args[1].Kind != values.KindStr {
				return values.Value{}, mtyerr.TypeErrorf("unsupported operand type(s) for /: 'PurePosixPath' and '%s'", reg.TypeName(args[1]))
			}
			return values.Path(JoinPath(args[0].AsPath(), args[1].AsString())), nil
		},
	})
}
