// Package values implements monty's tagged runtime value variant: None,
// Bool, Int (arbitrary precision), Float, Str, Bytes, Tuple, Path, and
// ObjectRef, along with equality, hashing, truthiness, and repr.
package values

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies which case of the tagged variant a Value holds.
type Kind byte

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBytes
	KindTuple
	KindPath
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBytes:
		return "bytes"
	case KindTuple:
		return "tuple"
	case KindPath:
		return "PurePosixPath"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// ObjectID addresses a mutable compound value in the object registry.
type ObjectID uint64

// ObjectKind distinguishes the compound types that live behind an ObjectRef.
type ObjectKind byte

const (
	ObjList ObjectKind = iota
	ObjDict
	ObjSet
	ObjRecord
	ObjCoroutine
	ObjFunction
	ObjBoundMethod
	ObjException
	// ObjIterator is an implementation-internal cursor over a sequence (the
	// "next value or end" operation behind the iteration protocol). It is
	// not one of the user-visible compound types; the interpreter allocates
	// one whenever GET_ITER/FOR_ITER needs to walk a list, dict, set, range,
	// or a builtin's generator-style result.
	ObjIterator
)

// Value is the tagged variant every monty runtime slot holds.
type Value struct {
	Kind Kind
	Data interface{}
}

// PurePath is a normalized POSIX pure path: components plus an absolute flag.
type PurePath struct {
	Absolute bool
	Parts    []string
}

// ParsePurePath normalizes a POSIX path string into a PurePath, dropping "."
// segments and collapsing repeated slashes the way pathlib.PurePosixPath does.
func ParsePurePath(s string) PurePath {
	abs := strings.HasPrefix(s, "/")
	raw := strings.Split(s, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p == "" || p == "." {
			continue
		}
		parts = append(parts, p)
	}
	return PurePath{Absolute: abs, Parts: parts}
}

// Join implements the `/` operator on a PurePath: an absolute right-hand
// segment replaces the path entirely, anything else appends its normalized
// components.
func (p PurePath) Join(seg string) PurePath {
	if strings.HasPrefix(seg, "/") {
		return ParsePurePath(seg)
	}
	extra := ParsePurePath(seg)
	return PurePath{Absolute: p.Absolute, Parts: append(append([]string{}, p.Parts...), extra.Parts...)}
}

// Ref points into the object registry; the registry package resolves it.
type Ref struct {
	Kind ObjectKind
	ID   ObjectID
}

// Constructors.

func None() Value { return Value{Kind: KindNone} }

func Bool(b bool) Value { return Value{Kind: KindBool, Data: b} }

func IntFromInt64(i int64) Value { return Value{Kind: KindInt, Data: big.NewInt(i)} }

func IntFromBig(i *big.Int) Value { return Value{Kind: KindInt, Data: new(big.Int).Set(i)} }

func Float(f float64) Value { return Value{Kind: KindFloat, Data: f} }

func Str(s string) Value { return Value{Kind: KindStr, Data: s} }

func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Kind: KindBytes, Data: cp}
}

func Tuple(items ...Value) Value { return Value{Kind: KindTuple, Data: items} }

func Path(p PurePath) Value { return Value{Kind: KindPath, Data: p} }

func Object(ref Ref) Value { return Value{Kind: KindObject, Data: ref} }

// Accessors. Each panics if called on the wrong Kind; callers in vm/builtins
// check Kind first, matching the teacher's values.Value.AsInt/AsString style.

func (v Value) AsBool() bool { return v.Data.(bool) }

func (v Value) AsInt() *big.Int { return v.Data.(*big.Int) }

func (v Value) AsFloat() float64 { return v.Data.(float64) }

func (v Value) AsString() string { return v.Data.(string) }

func (v Value) AsBytes() []byte { return v.Data.([]byte) }

func (v Value) AsTuple() []Value { return v.Data.([]Value) }

func (v Value) AsPath() PurePath { return v.Data.(PurePath) }

func (v Value) AsRef() Ref { return v.Data.(Ref) }

func (v Value) IsNone() bool { return v.Kind == KindNone }

// Truthy implements reference-Python truthiness: False, None,
// numeric zero, empty string/bytes/container are false; everything else,
// including every Record instance (no __bool__ override in this subset), is
// true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNone:
		return false
	case KindBool:
		return v.AsBool()
	case KindInt:
		return v.AsInt().Sign() != 0
	case KindFloat:
		return v.AsFloat() != 0
	case KindStr:
		return len(v.AsString()) != 0
	case KindBytes:
		return len(v.AsBytes()) != 0
	case KindTuple:
		return len(v.AsTuple()) != 0
	case KindPath:
		return true
	case KindObject:
		// List/Dict/Set emptiness is resolved by the registry, which calls
		// back into TruthyContainer; records/functions/coroutines are always
		// truthy.
		return true
	}
	return true
}

// Equal implements structural equality for immutable values. ObjectRef
// equality (lists, dicts, sets, records) is resolved by the registry, which
// has access to the arena; Equal here only handles the case where both
// operands are immutable or refer to the identical object.
func (a Value) Equal(b Value) bool {
	if a.Kind != b.Kind {
		// int/float/bool cross-kind comparisons follow reference Python.
		return numericEqual(a, b)
	}
	switch a.Kind {
	case KindNone:
		return true
	case KindBool:
		return a.AsBool() == b.AsBool()
	case KindInt:
		return a.AsInt().Cmp(b.AsInt()) == 0
	case KindFloat:
		return a.AsFloat() == b.AsFloat()
	case KindStr:
		return a.AsString() == b.AsString()
	case KindBytes:
		return string(a.AsBytes()) == string(b.AsBytes())
	case KindTuple:
		at, bt := a.AsTuple(), b.AsTuple()
		if len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !at[i].Equal(bt[i]) {
				return false
			}
		}
		return true
	case KindPath:
		ap, bp := a.AsPath(), b.AsPath()
		if ap.Absolute != bp.Absolute || len(ap.Parts) != len(bp.Parts) {
			return false
		}
		for i := range ap.Parts {
			if ap.Parts[i] != bp.Parts[i] {
				return false
			}
		}
		return true
	case KindObject:
		return a.AsRef() == b.AsRef()
	}
	return false
}

func numericEqual(a, b Value) bool {
	af, aok := asFloatLike(a)
	bf, bok := asFloatLike(b)
	if aok && bok {
		return af == bf
	}
	return false
}

func asFloatLike(v Value) (float64, bool) {
	switch v.Kind {
	case KindBool:
		if v.AsBool() {
			return 1, true
		}
		return 0, true
	case KindInt:
		f := new(big.Float).SetInt(v.AsInt())
		out, _ := f.Float64()
		return out, true
	case KindFloat:
		return v.AsFloat(), true
	}
	return 0, false
}

// Hashable reports whether v can be used as a dict key / set element without
// consulting the registry (compound mutable values are rejected by the
// registry layer before reaching here).
func (v Value) Hashable() bool {
	switch v.Kind {
	case KindNone, KindBool, KindInt, KindFloat, KindStr, KindBytes, KindPath:
		return true
	case KindTuple:
		for _, item := range v.AsTuple() {
			if !item.Hashable() {
				return false
			}
		}
		return true
	}
	return false
}

// Hash produces a hash consistent with Equal: x == y ⇒ Hash(x) == Hash(y).
func (v Value) Hash() uint64 {
	h := fnv.New64a()
	writeHash(h, v)
	return h.Sum64()
}

func writeHash(h interface{ Write([]byte) (int, error) }, v Value) {
	switch v.Kind {
	case KindNone:
		h.Write([]byte{0})
	case KindBool:
		// bools compare equal to 0/1, so they must hash through the same
		// numeric encoding as ints and floats
		h.Write([]byte{2})
		if v.AsBool() {
			h.Write(big.NewInt(1).Bytes())
		} else {
			h.Write(big.NewInt(0).Bytes())
		}
	case KindInt:
		h.Write([]byte{2})
		h.Write(v.AsInt().Bytes())
	case KindFloat:
		h.Write([]byte{2}) // ints and floats that compare equal must hash equal
		f := v.AsFloat()
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			bi, _ := big.NewFloat(f).Int(nil)
			h.Write(bi.Bytes())
		} else {
			h.Write([]byte(strconv.FormatFloat(f, 'g', -1, 64)))
		}
	case KindStr:
		h.Write([]byte{3})
		h.Write([]byte(v.AsString()))
	case KindBytes:
		h.Write([]byte{4})
		h.Write(v.AsBytes())
	case KindTuple:
		h.Write([]byte{5})
		for _, item := range v.AsTuple() {
			writeHash(h, item)
		}
	case KindPath:
		h.Write([]byte{6})
		p := v.AsPath()
		if p.Absolute {
			h.Write([]byte{1})
		}
		h.Write([]byte(strings.Join(p.Parts, "/")))
	}
}

// Repr renders v the way reference Python's repr() would for the supported
// subset. Compound ObjectRef values are rendered by the registry, which owns
// their mutable state; Repr here handles everything resolvable locally.
func (v Value) Repr() string {
	switch v.Kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.AsBool() {
			return "True"
		}
		return "False"
	case KindInt:
		return v.AsInt().String()
	case KindFloat:
		return formatFloat(v.AsFloat())
	case KindStr:
		return reprString(v.AsString())
	case KindBytes:
		return reprBytes(v.AsBytes())
	case KindTuple:
		items := v.AsTuple()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.Repr()
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindPath:
		p := v.AsPath()
		return fmt.Sprintf("PurePosixPath(%s)", reprString(pathString(p)))
	}
	return fmt.Sprintf("<object at kind %d>", v.Kind)
}

// Str mirrors reference Python's str(): identical to Repr() except for Str
// values, rendered without quoting, and Path values, rendered as the plain
// joined POSIX string.
func (v Value) Str() string {
	switch v.Kind {
	case KindStr:
		return v.AsString()
	case KindFloat:
		return formatFloat(v.AsFloat())
	case KindPath:
		return pathString(v.AsPath())
	}
	return v.Repr()
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func reprString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func reprBytes(b []byte) string {
	var sb strings.Builder
	sb.WriteString("b'")
	for _, c := range b {
		switch {
		case c == '\'':
			sb.WriteString(`\'`)
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			sb.WriteString(fmt.Sprintf(`\x%02x`, c))
		}
	}
	sb.WriteString("'")
	return sb.String()
}

func pathString(p PurePath) string {
	if len(p.Parts) == 0 {
		if p.Absolute {
			return "/"
		}
		return "."
	}
	sep := strings.Join(p.Parts, "/")
	if p.Absolute {
		return "/" + sep
	}
	return sep
}

// PathString is exported for builtins.Path, which needs pathString without
// duplicating the joining rule.
func PathString(p PurePath) string { return pathString(p) }

// TypeName returns the reference-Python type name used in error messages
// ("'<typename>' object is not callable", etc).
func (v Value) TypeName() string { return v.Kind.String() }
