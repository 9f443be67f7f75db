// Package registry implements monty's object registry: the
// arena of mutable compound objects — lists, dicts, sets, records,
// coroutines, functions, bound methods, and exception instances — addressed
// by stable 64-bit identifiers. It is the sole mutation point for compound
// values, mirroring the teacher's global class table
// (vm.storeGlobalClass/getGlobalClass) generalized into a full arena.
package registry

import (
	"fmt"
	"sync"

	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/values"
)

// List is the mutable backing store for a Python list.
type List struct {
	Items []values.Value
}

// dictEntry is one live or tombstoned slot of a Dict/Set's insertion-ordered
// backing store.
type dictEntry struct {
	key     values.Value
	val     values.Value
	deleted bool
}

// KeyOps resolves hashing and equality for keys the value layer cannot
// decide on its own: frozen records behind ObjectRefs hash as
// (TypeName, fields...) and compare by type identity plus field values, and
// only the Registry can see through the Ref. *Registry implements it.
type KeyOps interface {
	HashValue(v values.Value) (uint64, error)
	Equal(a, b values.Value) bool
}

// Dict is an insertion-ordered mapping, as reference-Python dicts are.
type Dict struct {
	entries []dictEntry
	index   map[uint64][]int
	ops     KeyOps
}

// NewDict constructs an empty, insertion-ordered Dict resolving keys at the
// value layer only. Keyword-argument dicts (always str-keyed) use this;
// script-visible dicts and sets come from Registry.NewDict/NewSet, which
// attach the registry as KeyOps so record keys resolve correctly.
func NewDict() *Dict {
	return &Dict{index: make(map[uint64][]int)}
}

func newDictWithOps(ops KeyOps) *Dict {
	return &Dict{index: make(map[uint64][]int), ops: ops}
}

func (d *Dict) hashKey(key values.Value) uint64 {
	if d.ops != nil {
		h, err := d.ops.HashValue(key)
		if err != nil {
			return 0 // unhashable keys are rejected before insertion
		}
		return h
	}
	return key.Hash()
}

func (d *Dict) keyEqual(a, b values.Value) bool {
	if d.ops != nil {
		return d.ops.Equal(a, b)
	}
	return a.Equal(b)
}

func (d *Dict) findIndex(key values.Value) int {
	for _, idx := range d.index[d.hashKey(key)] {
		if !d.entries[idx].deleted && d.keyEqual(d.entries[idx].key, key) {
			return idx
		}
	}
	return -1
}

// Get returns the value for key and whether it was present.
func (d *Dict) Get(key values.Value) (values.Value, bool) {
	idx := d.findIndex(key)
	if idx < 0 {
		return values.None(), false
	}
	return d.entries[idx].val, true
}

// Set inserts or updates key, preserving original insertion position on
// update (reference Python dict semantics).
func (d *Dict) Set(key, val values.Value) {
	if idx := d.findIndex(key); idx >= 0 {
		d.entries[idx].val = val
		return
	}
	h := d.hashKey(key)
	d.entries = append(d.entries, dictEntry{key: key, val: val})
	d.index[h] = append(d.index[h], len(d.entries)-1)
}

// Delete removes key, returning whether it was present.
func (d *Dict) Delete(key values.Value) bool {
	idx := d.findIndex(key)
	if idx < 0 {
		return false
	}
	d.entries[idx].deleted = true
	return true
}

// Len reports the number of live entries.
func (d *Dict) Len() int {
	n := 0
	for _, e := range d.entries {
		if !e.deleted {
			n++
		}
	}
	return n
}

// Keys returns live keys in insertion order.
func (d *Dict) Keys() []values.Value {
	out := make([]values.Value, 0, len(d.entries))
	for _, e := range d.entries {
		if !e.deleted {
			out = append(out, e.key)
		}
	}
	return out
}

// Items returns live (key, value) pairs in insertion order.
func (d *Dict) Items() []values.Value {
	keys := d.Keys()
	out := make([]values.Value, len(keys))
	for i, k := range keys {
		v, _ := d.Get(k)
		out[i] = values.Tuple(k, v)
	}
	return out
}

// Set is the backing store for a Python set: a Dict whose values are unused.
type Set struct {
	dict *Dict
}

// NewSet constructs an empty, insertion-ordered Set; see NewDict for the
// KeyOps caveat.
func NewSet() *Set { return &Set{dict: NewDict()} }

func (s *Set) Add(v values.Value)        { s.dict.Set(v, values.None()) }
func (s *Set) Contains(v values.Value) bool { _, ok := s.dict.Get(v); return ok }
func (s *Set) Remove(v values.Value) bool { return s.dict.Delete(v) }
func (s *Set) Len() int                  { return s.dict.Len() }
func (s *Set) Items() []values.Value     { return s.dict.Keys() }

// Field describes one declared field of a RecordType.
type Field struct {
	Name         string
	HasDefault   bool
	Default      values.Value
}

// RecordType is the process-lifetime descriptor registered once per user
// record type, the reference-Python "dataclass" equivalent.
type RecordType struct {
	Name       string
	Fields     []Field
	Frozen     bool
	Methods    map[string]values.Value // name -> Function Value (ObjectRef)
	CustomRepr bool
	// TupleLike marks record types that also support positional indexing
	// over their declared fields, e.g. StatResult.
	TupleLike bool
}

// FieldIndex exposes the declared-field lookup to callers outside this
// package (e.g. the VM's subscript handler for TupleLike records).
func (rt *RecordType) FieldIndex(name string) int { return rt.fieldIndex(name) }

func (rt *RecordType) fieldIndex(name string) int {
	for i, f := range rt.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Record is a user-defined record instance.
type Record struct {
	Type   *RecordType
	Fields []values.Value    // declared fields, in RecordType.Fields order
	Extra  map[string]values.Value // additional attributes (mutable records only)
}

// Function is a compiled, callable unit: either user-defined bytecode or a
// Go builtin, mirroring the teacher's registry.Function split between
// Instructions and Builtin.
type Function struct {
	Name    string
	Code    *code.CodeObject // set for user-defined functions
	Builtin func(args []values.Value, kwargs *Dict) (values.Value, error)
	IsAsync bool

	// Host-call marker. When set, invoking this Function
	// does not run Builtin/Code at all: the VM captures the pending call and
	// suspends, yielding a Snapshot to the embedder instead.
	IsHostCall bool
	HostIsOS   bool
	HostName   string
}

// BoundMethod pairs a receiver with its underlying Function: calling it
// prepends Receiver to whatever argument shape is supplied.
type BoundMethod struct {
	Receiver values.Value
	Func     values.Value // ObjectRef(Function)
}

// Coroutine's State is managed by the vm package (to avoid an import cycle);
// registry only stores the opaque state plus bookkeeping visible to Record
// machinery and repr.
type Coroutine struct {
	Name     string
	State    interface{} // the coroutine's private frame stack ([]*vm.CallFrame), opaque here
	Started  bool
	Done     bool
	Result   values.Value
	Err      error
}

// ExceptionInstance is a raised or constructed exception value.
type ExceptionInstance struct {
	TypeName string
	Args     []values.Value
}

// Registry is the object arena. One Registry is created per interpreter and
// lives exactly as long as it does; dropping the interpreter releases every
// object at once.
type Registry struct {
	mu      sync.Mutex
	nextID  uint64
	objects map[values.ObjectID]interface{}
	types   map[string]*RecordType
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		objects: make(map[values.ObjectID]interface{}),
		types:   make(map[string]*RecordType),
	}
}

// RegisterType records a RecordType descriptor under its name, mirroring the
// teacher's storeGlobalClass. Registration happens once per type per
// interpreter (builtins.Register for StatResult, the record-type factories
// for user types).
func (r *Registry) RegisterType(rt *RecordType) {
	r.mu.Lock()
	r.types[rt.Name] = rt
	r.mu.Unlock()
}

// TypeByName resolves a registered RecordType, or nil.
func (r *Registry) TypeByName(name string) *RecordType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.types[name]
}

func (r *Registry) alloc(kind values.ObjectKind, obj interface{}) values.Value {
	r.mu.Lock()
	r.nextID++
	id := values.ObjectID(r.nextID)
	r.objects[id] = obj
	r.mu.Unlock()
	return values.Object(values.Ref{Kind: kind, ID: id})
}

func (r *Registry) NewList(items []values.Value) values.Value {
	return r.alloc(values.ObjList, &List{Items: items})
}

func (r *Registry) NewDict() values.Value {
	return r.alloc(values.ObjDict, newDictWithOps(r))
}

// NewDictFrom wraps an already-constructed *Dict as a registry-owned Value,
// used by the suspension boundary to surface a PendingCall's Kwargs as the
// Snapshot's kwargs mapping.
func (r *Registry) NewDictFrom(d *Dict) values.Value {
	if d == nil {
		d = NewDict()
	}
	return r.alloc(values.ObjDict, d)
}

func (r *Registry) NewSet() values.Value {
	return r.alloc(values.ObjSet, &Set{dict: newDictWithOps(r)})
}

func (r *Registry) NewRecord(rt *RecordType, fields []values.Value) values.Value {
	rec := &Record{Type: rt, Fields: fields}
	if !rt.Frozen {
		rec.Extra = make(map[string]values.Value)
	}
	return r.alloc(values.ObjRecord, rec)
}

func (r *Registry) NewCoroutine(co *Coroutine) values.Value {
	return r.alloc(values.ObjCoroutine, co)
}

func (r *Registry) NewFunction(fn *Function) values.Value {
	return r.alloc(values.ObjFunction, fn)
}

func (r *Registry) NewBoundMethod(bm *BoundMethod) values.Value {
	return r.alloc(values.ObjBoundMethod, bm)
}

func (r *Registry) NewException(exc *ExceptionInstance) values.Value {
	return r.alloc(values.ObjException, exc)
}

// Get resolves a Ref to its underlying object. Callers type-assert to the
// concrete struct matching ref.Kind.
func (r *Registry) Get(ref values.Ref) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.objects[ref.ID]
}

func (r *Registry) List(v values.Value) *List               { return r.Get(v.AsRef()).(*List) }
func (r *Registry) Dict(v values.Value) *Dict                { return r.Get(v.AsRef()).(*Dict) }
func (r *Registry) SetObj(v values.Value) *Set               { return r.Get(v.AsRef()).(*Set) }
func (r *Registry) Record(v values.Value) *Record            { return r.Get(v.AsRef()).(*Record) }
func (r *Registry) Coroutine(v values.Value) *Coroutine      { return r.Get(v.AsRef()).(*Coroutine) }
func (r *Registry) Function(v values.Value) *Function        { return r.Get(v.AsRef()).(*Function) }
func (r *Registry) BoundMethod(v values.Value) *BoundMethod   { return r.Get(v.AsRef()).(*BoundMethod) }
func (r *Registry) Exception(v values.Value) *ExceptionInstance {
	return r.Get(v.AsRef()).(*ExceptionInstance)
}

// Truthy resolves the container-emptiness rule for ObjectRef values that
// values.Value.Truthy cannot decide on its own.
func (r *Registry) Truthy(v values.Value) bool {
	if v.Kind != values.KindObject {
		return v.Truthy()
	}
	ref := v.AsRef()
	switch ref.Kind {
	case values.ObjList:
		return len(r.List(v).Items) != 0
	case values.ObjDict:
		return r.Dict(v).Len() != 0
	case values.ObjSet:
		return r.SetObj(v).Len() != 0
	default:
		return true
	}
}

// Equal resolves ObjectRef equality the way reference Python does: lists compare
// elementwise, records compare by type identity and field values, dicts
// compare by key/value pairs irrespective of order, sets by membership.
func (r *Registry) Equal(a, b values.Value) bool {
	if a.Kind != values.KindObject || b.Kind != values.KindObject {
		return a.Equal(b)
	}
	ar, br := a.AsRef(), b.AsRef()
	if ar.Kind != br.Kind {
		return false
	}
	switch ar.Kind {
	case values.ObjList:
		al, bl := r.List(a).Items, r.List(b).Items
		if len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !r.Equal(al[i], bl[i]) {
				return false
			}
		}
		return true
	case values.ObjDict:
		ad, bd := r.Dict(a), r.Dict(b)
		if ad.Len() != bd.Len() {
			return false
		}
		for _, k := range ad.Keys() {
			av, _ := ad.Get(k)
			bv, ok := bd.Get(k)
			if !ok || !r.Equal(av, bv) {
				return false
			}
		}
		return true
	case values.ObjSet:
		as, bs := r.SetObj(a), r.SetObj(b)
		if as.Len() != bs.Len() {
			return false
		}
		for _, item := range as.Items() {
			if !bs.Contains(item) {
				return false
			}
		}
		return true
	case values.ObjRecord:
		ar2, br2 := r.Record(a), r.Record(b)
		if ar2.Type != br2.Type {
			return false
		}
		for i := range ar2.Fields {
			if !r.Equal(ar2.Fields[i], br2.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return ar == br
	}
}

// TypeName resolves the reference-Python type name used in error messages
// ("'list' object is not callable", "'Point' object has no attribute ...").
// It is the counterpart to Repr for ObjectRef values, which values.Value
// cannot name on its own.
func (r *Registry) TypeName(v values.Value) string {
	if v.Kind != values.KindObject {
		return v.TypeName()
	}
	switch v.AsRef().Kind {
	case values.ObjList:
		return "list"
	case values.ObjDict:
		return "dict"
	case values.ObjSet:
		return "set"
	case values.ObjRecord:
		return r.Record(v).Type.Name
	case values.ObjFunction:
		return "function"
	case values.ObjBoundMethod:
		return "method"
	case values.ObjCoroutine:
		return "coroutine"
	case values.ObjException:
		return r.Exception(v).TypeName
	case values.ObjIterator:
		return "iterator"
	}
	return v.TypeName()
}

// Repr resolves the textual representation of an ObjectRef value.
func (r *Registry) Repr(v values.Value) string {
	if v.Kind != values.KindObject {
		return v.Repr()
	}
	ref := v.AsRef()
	switch ref.Kind {
	case values.ObjList:
		items := r.List(v).Items
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = r.Repr(it)
		}
		return "[" + join(parts, ", ") + "]"
	case values.ObjDict:
		d := r.Dict(v)
		parts := make([]string, 0, d.Len())
		for _, k := range d.Keys() {
			val, _ := d.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", r.Repr(k), r.Repr(val)))
		}
		return "{" + join(parts, ", ") + "}"
	case values.ObjSet:
		s := r.SetObj(v)
		if s.Len() == 0 {
			return "set()"
		}
		parts := make([]string, 0, s.Len())
		for _, it := range s.Items() {
			parts = append(parts, r.Repr(it))
		}
		return "{" + join(parts, ", ") + "}"
	case values.ObjRecord:
		return r.reprRecord(r.Record(v))
	case values.ObjFunction:
		fn := r.Function(v)
		return fmt.Sprintf("<function %s at 0x%012x>", fn.Name, uint64(ref.ID)<<4)
	case values.ObjBoundMethod:
		bm := r.BoundMethod(v)
		fn := r.Function(bm.Func)
		return fmt.Sprintf("<bound method %s of %s>", fn.Name, r.Repr(bm.Receiver))
	case values.ObjCoroutine:
		co := r.Coroutine(v)
		return fmt.Sprintf("<coroutine object %s at 0x%012x>", co.Name, uint64(ref.ID)<<4)
	case values.ObjException:
		exc := r.Exception(v)
		return fmt.Sprintf("%s(%s)", exc.TypeName, join(reprAll(r, exc.Args), ", "))
	}
	return "<object>"
}

func reprAll(r *Registry, vs []values.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = r.Repr(v)
	}
	return out
}

func (r *Registry) reprRecord(rec *Record) string {
	parts := make([]string, len(rec.Type.Fields))
	for i, f := range rec.Type.Fields {
		parts[i] = fmt.Sprintf("%s=%s", f.Name, r.Repr(rec.Fields[i]))
	}
	return fmt.Sprintf("%s(%s)", rec.Type.Name, join(parts, ", "))
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
