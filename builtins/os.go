// os.getenv(key[, default]): suspends with function name "os.getenv" and
// args (key, default_or_None). Arity normalization (padding a missing
// default with None) happens in vm's host-call capture, which special-cases
// the "os.getenv" name the same way it special-cases no other builtin: its
// Snapshot always carries exactly two argument slots regardless of how many
// arguments the script passed.
package builtins

import (
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// RegisterOS installs the `os` surface: a namespace record exposing
// `getenv` as a host-call Function, mirroring Path's attribute-surfaced
// host calls.
func RegisterOS(reg *registry.Registry, builtins map[string]values.Value) {
	getenv := reg.NewFunction(&registry.Function{
		Name:       "os.getenv",
		IsHostCall: true,
		HostIsOS:   true,
		HostName:   "os.getenv",
	})
	rt := &registry.RecordType{
		Name:   "os",
		Fields: []registry.Field{{Name: "getenv"}},
		Frozen: true,
	}
	builtins["os"] = reg.NewRecord(rt, []values.Value{getenv})
}
