// Host↔interpreter value conversion at the suspension boundary. Snapshot
// args are deep-converted to host-side immutable equivalents; resume()
// values undergo the reverse conversion.
package vm

import (
	"math/big"

	"github.com/Iansi36283/monty/builtinshost"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// ToHost deep-converts an interpreter Value into its host-side immutable
// equivalent: string for Str, []byte for Bytes, a HostPath for Path, a
// []interface{} for Tuple (recursively converted), and Go scalars otherwise.
func ToHost(reg *registry.Registry, v values.Value) interface{} {
	switch v.Kind {
	case values.KindNone:
		return nil
	case values.KindBool:
		return v.AsBool()
	case values.KindInt:
		i := v.AsInt()
		if i.IsInt64() {
			return i.Int64()
		}
		return new(big.Int).Set(i)
	case values.KindFloat:
		return v.AsFloat()
	case values.KindStr:
		return v.AsString()
	case values.KindBytes:
		out := make([]byte, len(v.AsBytes()))
		copy(out, v.AsBytes())
		return out
	case values.KindTuple:
		items := v.AsTuple()
		out := make([]interface{}, len(items))
		for i, it := range items {
			out[i] = ToHost(reg, it)
		}
		return out
	case values.KindPath:
		return builtinshost.HostPath{Absolute: v.AsPath().Absolute, Parts: append([]string{}, v.AsPath().Parts...)}
	case values.KindObject:
		ref := v.AsRef()
		if ref.Kind == values.ObjRecord {
			rec := reg.Record(v)
			if rec.Type.TupleLike {
				out := make([]interface{}, len(rec.Fields))
				for i, f := range rec.Fields {
					out[i] = ToHost(reg, f)
				}
				return builtinshost.HostStatResult{TypeName: rec.Type.Name, Fields: out}
			}
		}
	}
	return reg.Repr(v)
}

// ToHostDict converts a *registry.Dict into a host-side map keyed by the
// converted-to-string form of each key (keyword-argument dicts only ever use
// str keys in the supported subset).
func ToHostDict(reg *registry.Registry, d *registry.Dict) map[string]interface{} {
	out := make(map[string]interface{}, d.Len())
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		out[k.AsString()] = ToHost(reg, v)
	}
	return out
}

// HostValue implements the reverse, host→interpreter conversion: Go scalars
// wrap directly, HostStatResult becomes a record with the registered
// StatResult RecordType attached, and an error/HostException value triggers
// an in-interpreter raise (the second return value reports this case).
func HostValue(reg *registry.Registry, v interface{}) (values.Value, bool) {
	switch t := v.(type) {
	case nil:
		return values.None(), false
	case bool:
		return values.Bool(t), false
	case int:
		return values.IntFromInt64(int64(t)), false
	case int64:
		return values.IntFromInt64(t), false
	case *big.Int:
		return values.IntFromBig(t), false
	case float64:
		return values.Float(t), false
	case string:
		return values.Str(t), false
	case []byte:
		return values.Bytes(t), false
	case builtinshost.HostPath:
		return values.Path(values.PurePath{Absolute: t.Absolute, Parts: append([]string{}, t.Parts...)}), false
	case builtinshost.HostStatResult:
		return reg.NewRecord(statResultType(reg), hostStatFields(reg, t)), false
	case []interface{}:
		items := make([]values.Value, len(t))
		for i, it := range t {
			items[i], _ = HostValue(reg, it)
		}
		return values.Tuple(items...), false
	case builtinshost.HostException:
		exc := reg.NewException(&registry.ExceptionInstance{TypeName: t.TypeName, Args: []values.Value{values.Str(t.Message)}})
		return exc, true
	case error:
		exc := reg.NewException(&registry.ExceptionInstance{TypeName: "RuntimeError", Args: []values.Value{values.Str(t.Error())}})
		return exc, true
	}
	return values.None(), false
}

func hostStatFields(reg *registry.Registry, t builtinshost.HostStatResult) []values.Value {
	out := make([]values.Value, len(t.Fields))
	for i, f := range t.Fields {
		out[i], _ = HostValue(reg, f)
	}
	return out
}

// statResultType resolves the canonical StatResult RecordType builtins
// registered into this interpreter's registry; HostValue needs it to rebuild
// a record from a host-side HostStatResult answer without importing the
// builtins package (which itself imports vm's AttrResolver hook, so the
// dependency must run this direction only). An interpreter driven without
// builtins.Register still accepts HostStatResult answers: the descriptor is
// built from the shared field list and registered on first use.
func statResultType(reg *registry.Registry) *registry.RecordType {
	if rt := reg.TypeByName("StatResult"); rt != nil {
		return rt
	}
	fields := make([]registry.Field, len(builtinshost.StatFieldNames))
	for i, name := range builtinshost.StatFieldNames {
		fields[i] = registry.Field{Name: name}
	}
	rt := &registry.RecordType{Name: "StatResult", Fields: fields, Frozen: true, TupleLike: true}
	reg.RegisterType(rt)
	return rt
}
