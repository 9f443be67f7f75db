// asyncio.gather. The VM's YIELD_FROM_GATHER opcode does the actual
// round-robin scheduling (vm/async.go); this builtin just gives the
// `asyncio.gather` name an identity and the reference repr,
// "<function gather at 0x...>".
package builtins

import (
	"fmt"

	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// RegisterAsync installs the `asyncio` namespace exposing `gather`. Calling
// `asyncio.gather(...)` compiles to building a tuple of the coroutine
// arguments followed by YIELD_FROM_GATHER, not a normal Builtin call — the
// scheduling has to live inside the VM loop so host suspensions mid-gather
// can surface to the embedder. The Builtin installed here exists only so
// that a direct `asyncio.gather` reference (not immediately called) has a
// sensible repr and identity.
func RegisterAsync(reg *registry.Registry, builtins map[string]values.Value) {
	gatherRef := reg.NewFunction(&registry.Function{
		Name: "gather",
		Builtin: func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
			return values.Value{}, mtyerr.RuntimeErrorf("asyncio.gather result must be awaited")
		},
	})
	asyncioType := &registry.RecordType{
		Name:   "asyncio",
		Fields: []registry.Field{{Name: "gather"}},
		Frozen: true,
	}
	builtins["asyncio"] = reg.NewRecord(asyncioType, []values.Value{gatherRef})
}

// GatherRepr matches reference Python's "<function gather at 0x...>"
// form; the registry's generic Function repr already produces this shape
// (see registry.Registry.Repr's ObjFunction case), so no override is needed
// beyond giving the Function the name "gather" above. Exported for tests
// that want to assert the exact format independent of registry internals.
func GatherRepr(id uint64) string { return fmt.Sprintf("<function gather at 0x%012x>", id<<4) }
