// StatResult: a 10-field tuple-like Record type produced by
// StatResult.file_stat/dir_stat, supporting both attribute access (via the
// registry's normal Record field lookup) and positional indexing (via
// RecordType.TupleLike, resolved by vm's LOAD_SUBSCR handler).
package builtins

import (
	"github.com/Iansi36283/monty/builtinshost"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

func newStatResultType(reg *registry.Registry) *registry.RecordType {
	fields := make([]registry.Field, len(builtinshost.StatFieldNames))
	for i, name := range builtinshost.StatFieldNames {
		fields[i] = registry.Field{Name: name}
	}
	return &registry.RecordType{
		Name:      "StatResult",
		Fields:    fields,
		Frozen:    true,
		TupleLike: true,
	}
}

// RegisterStat installs StatResult.file_stat/dir_stat and registers the
// StatResult RecordType into the registry's type table, where the
// host↔interpreter boundary finds it to rebuild a StatResult from a
// HostStatResult answer.
func RegisterStat(reg *registry.Registry, builtins map[string]values.Value) {
	rt := newStatResultType(reg)
	reg.RegisterType(rt)

	fileStat := reg.NewFunction(&registry.Function{
		Name: "StatResult.file_stat",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			size, mode, mtime := statArgs(args, kwargs)
			return reg.NewRecord(rt, []values.Value{
				mode, values.IntFromInt64(0), values.IntFromInt64(0), values.IntFromInt64(1),
				values.IntFromInt64(0), values.IntFromInt64(0), size, values.Float(0), mtime, values.Float(0),
			}), nil
		},
	})
	dirStat := reg.NewFunction(&registry.Function{
		Name: "StatResult.dir_stat",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			mode, mtime := statArgs2(args, kwargs)
			return reg.NewRecord(rt, []values.Value{
				mode, values.IntFromInt64(0), values.IntFromInt64(0), values.IntFromInt64(1),
				values.IntFromInt64(0), values.IntFromInt64(0), values.IntFromInt64(0), values.Float(0), mtime, values.Float(0),
			}), nil
		},
	})

	// StatResult itself is exposed as a namespace-like record carrying the
	// two factory functions as plain declared fields (not Methods, which
	// would bind it as a receiver via registry.BindCall — file_stat/dir_stat
	// take no such receiver), the way the interpreter surfaces
	// `StatResult.file_stat(...)` as attribute access on a module-level name.
	nsType := &registry.RecordType{
		Name:   "StatResult",
		Fields: []registry.Field{{Name: "file_stat"}, {Name: "dir_stat"}},
		Frozen: true,
	}
	builtins["StatResult"] = reg.NewRecord(nsType, []values.Value{fileStat, dirStat})
}

func statArgs(args []values.Value, kwargs *registry.Dict) (size, mode, mtime values.Value) {
	size, mode, mtime = values.IntFromInt64(0), values.IntFromInt64(0), values.Float(0)
	if len(args) > 0 {
		size = args[0]
	}
	if len(args) > 1 {
		mode = args[1]
	}
	if len(args) > 2 {
		mtime = args[2]
	}
	if kwargs != nil {
		if v, ok := kwargs.Get(values.Str("size")); ok {
			size = v
		}
		if v, ok := kwargs.Get(values.Str("mode")); ok {
			mode = v
		}
		if v, ok := kwargs.Get(values.Str("mtime")); ok {
			mtime = v
		}
	}
	return
}

func statArgs2(args []values.Value, kwargs *registry.Dict) (mode, mtime values.Value) {
	mode, mtime = values.IntFromInt64(0), values.Float(0)
	if len(args) > 0 {
		mode = args[0]
	}
	if len(args) > 1 {
		mtime = args[1]
	}
	if kwargs != nil {
		if v, ok := kwargs.Get(values.Str("mode")); ok {
			mode = v
		}
		if v, ok := kwargs.Get(values.Str("mtime")); ok {
			mtime = v
		}
	}
	return
}
