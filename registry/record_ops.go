package registry

import (
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/values"
)

// GetAttr implements record attribute lookup: declared field, then method
// table, then extra-attribute map (mutable records only). Missing attribute
// raises AttributeError with the exact reference-Python message.
func (r *Registry) GetAttr(v values.Value, name string) (values.Value, error) {
	rec := r.Record(v)
	if idx := rec.Type.fieldIndex(name); idx >= 0 {
		return rec.Fields[idx], nil
	}
	if fn, ok := rec.Type.Methods[name]; ok {
		return r.NewBoundMethod(&BoundMethod{Receiver: v, Func: fn}), nil
	}
	if rec.Extra != nil {
		if val, ok := rec.Extra[name]; ok {
			return val, nil
		}
	}
	return values.None(), mtyerr.AttributeErrorf(
		"'%s' object has no attribute '%s'", rec.Type.Name, name)
}

// SetAttr implements record attribute assignment: frozen records reject any
// field or attribute assignment (FrozenInstanceError semantics, modeled as
// an AttributeError so `except AttributeError` catches it); mutable records accept
// assignment to declared fields or any new attribute, which lands in the
// extra-attribute map and is excluded from repr.
func (r *Registry) SetAttr(v values.Value, name string, val values.Value) error {
	rec := r.Record(v)
	idx := rec.Type.fieldIndex(name)
	if rec.Type.Frozen {
		if idx >= 0 {
			return mtyerr.AttributeErrorf("cannot assign to field '%s'", name)
		}
		return mtyerr.AttributeErrorf("cannot assign to field '%s'", name)
	}
	if idx >= 0 {
		rec.Fields[idx] = val
		return nil
	}
	if rec.Extra == nil {
		rec.Extra = make(map[string]values.Value)
	}
	rec.Extra[name] = val
	return nil
}

// HashRecord hashes a frozen record as the hash of
// (TypeName, field values...); mutable records are unhashable.
func (r *Registry) HashRecord(v values.Value) (uint64, error) {
	rec := r.Record(v)
	if !rec.Type.Frozen {
		return 0, mtyerr.TypeErrorf("unhashable type: '%s'", rec.Type.Name)
	}
	parts := []values.Value{values.Str(rec.Type.Name)}
	parts = append(parts, rec.Fields...)
	h := values.Tuple(parts...)
	return h.Hash(), nil
}

// HashValue is the registry-aware counterpart to values.Value.Hash: it
// resolves ObjectRef values (frozen records) that values.Value cannot hash
// on its own, and rejects unhashable mutable compounds.
func (r *Registry) HashValue(v values.Value) (uint64, error) {
	if v.Kind != values.KindObject {
		if !v.Hashable() {
			// Tuple containing an unhashable element.
			return 0, mtyerr.TypeErrorf("unhashable type: '%s'", tupleElementTypeName(v))
		}
		return v.Hash(), nil
	}
	ref := v.AsRef()
	switch ref.Kind {
	case values.ObjRecord:
		return r.HashRecord(v)
	case values.ObjList:
		return 0, mtyerr.TypeErrorf("unhashable type: 'list'")
	case values.ObjDict:
		return 0, mtyerr.TypeErrorf("unhashable type: 'dict'")
	case values.ObjSet:
		return 0, mtyerr.TypeErrorf("unhashable type: 'set'")
	default:
		return v.Hash(), nil
	}
}

func tupleElementTypeName(v values.Value) string {
	if v.Kind == values.KindTuple {
		for _, item := range v.AsTuple() {
			if !item.Hashable() {
				return tupleElementTypeName(item)
			}
		}
	}
	return v.TypeName()
}

// BindCall is the single argument-prepend operation every bound method call
// funnels through: it prepends Receiver to whichever pending-argument shape
// is current. Centralizing it here, over all four shapes (empty, one
// positional, two positional, with keyword-only arguments), keeps the
// shapes from drifting apart.
func BindCall(receiver values.Value, args []values.Value, kwargs *Dict) ([]values.Value, *Dict) {
	switch len(args) {
	case 0:
		return []values.Value{receiver}, kwargs
	case 1:
		return []values.Value{receiver, args[0]}, kwargs
	case 2:
		return []values.Value{receiver, args[0], args[1]}, kwargs
	default:
		out := make([]values.Value, 0, len(args)+1)
		out = append(out, receiver)
		out = append(out, args...)
		return out, kwargs
	}
}

// NewIntField is a convenience used by builtins constructing default field
// values for generated record types (e.g. StatResult).
func NewIntField(i int64) values.Value { return values.IntFromInt64(i) }
