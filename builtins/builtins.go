package builtins

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// Register installs the full builtin surface into the interpreter's builtin
// scope, plus the Path/StatResult/os value surface and exception
// constructors. externalNames declares the host-visible external function
// names; each becomes a host-call Function value so calling it suspends
// rather than erroring with NameError.
func Register(reg *registry.Registry, builtins map[string]values.Value, externalNames []string) {
	def := func(name string, fn func(args []values.Value, kwargs *registry.Dict) (values.Value, error)) {
		builtins[name] = reg.NewFunction(&registry.Function{Name: name, Builtin: fn})
	}

	def("len", biLen(reg))
	def("hash", biHash(reg))
	def("repr", biRepr(reg))
	def("bool", biBool(reg))
	def("int", biInt(reg))
	def("str", biStr(reg))
	def("bytes", biBytes(reg))
	def("tuple", biTuple(reg))
	def("list", biList(reg))
	def("dict", biDict(reg))
	def("set", biSet(reg))
	def("range", biRange(reg))
	def("sorted", biSorted(reg))
	def("enumerate", biEnumerate(reg))
	def("zip", biZip(reg))
	def("map", biMap(reg))
	def("filter", biFilter(reg))
	def("reversed", biReversed(reg))
	def("min", biMinMax(reg, true))
	def("max", biMinMax(reg, false))
	def("sum", biSum(reg))
	def("any", biAny(reg))
	def("all", biAll(reg))

	RegisterExceptions(reg, builtins)
	RegisterPath(reg, builtins)
	RegisterStat(reg, builtins)
	RegisterOS(reg, builtins)
	RegisterAsync(reg, builtins)

	for _, name := range externalNames {
		builtins[name] = reg.NewFunction(&registry.Function{
			Name: name, IsHostCall: true, HostIsOS: false, HostName: name,
		})
	}
}

func iterAll(reg *registry.Registry, v values.Value) ([]values.Value, error) {
	switch v.Kind {
	case values.KindTuple:
		return v.AsTuple(), nil
	case values.KindStr:
		s := []rune(v.AsString())
		out := make([]values.Value, len(s))
		for i, r := range s {
			out[i] = values.Str(string(r))
		}
		return out, nil
	case values.KindBytes:
		b := v.AsBytes()
		out := make([]values.Value, len(b))
		for i, c := range b {
			out[i] = values.IntFromInt64(int64(c))
		}
		return out, nil
	case values.KindObject:
		ref := v.AsRef()
		switch ref.Kind {
		case values.ObjList:
			return append([]values.Value{}, reg.List(v).Items...), nil
		case values.ObjDict:
			return reg.Dict(v).Keys(), nil
		case values.ObjSet:
			return reg.SetObj(v).Items(), nil
		case values.ObjIterator:
			it := reg.IteratorOf(v)
			var out []values.Value
			for {
				val, ok, err := it.Next()
				if err != nil {
					return nil, err
				}
				if !ok {
					return out, nil
				}
				out = append(out, val)
			}
		}
	}
	return nil, mtyerr.TypeErrorf("'%s' object is not iterable", reg.TypeName(v))
}

func biLen(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) != 1 {
			return values.Value{}, mtyerr.TypeErrorf("len() takes exactly one argument (%d given)", len(args))
		}
		v := args[0]
		switch v.Kind {
		case values.KindStr:
			return values.IntFromInt64(int64(len([]rune(v.AsString())))), nil
		case values.KindBytes:
			return values.IntFromInt64(int64(len(v.AsBytes()))), nil
		case values.KindTuple:
			return values.IntFromInt64(int64(len(v.AsTuple()))), nil
		case values.KindObject:
			switch v.AsRef().Kind {
			case values.ObjList:
				return values.IntFromInt64(int64(len(reg.List(v).Items))), nil
			case values.ObjDict:
				return values.IntFromInt64(int64(reg.Dict(v).Len())), nil
			case values.ObjSet:
				return values.IntFromInt64(int64(reg.SetObj(v).Len())), nil
			}
		}
		return values.Value{}, mtyerr.TypeErrorf("object of type '%s' has no len()", reg.TypeName(v))
	}
}

func biHash(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) != 1 {
			return values.Value{}, mtyerr.TypeErrorf("hash() takes exactly one argument (%d given)", len(args))
		}
		h, err := reg.HashValue(args[0])
		if err != nil {
			return values.Value{}, err
		}
		return values.IntFromInt64(int64(h)), nil
	}
}

func biRepr(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		return values.Str(reg.Repr(args[0])), nil
	}
}

func biBool(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) == 0 {
			return values.Bool(false), nil
		}
		return values.Bool(reg.Truthy(args[0])), nil
	}
}

func biInt(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) == 0 {
			return values.IntFromInt64(0), nil
		}
		v := args[0]
		switch v.Kind {
		case values.KindInt:
			return v, nil
		case values.KindBool:
			if v.AsBool() {
				return values.IntFromInt64(1), nil
			}
			return values.IntFromInt64(0), nil
		case values.KindFloat:
			return values.IntFromInt64(int64(v.AsFloat())), nil
		case values.KindStr:
			s := strings.TrimSpace(v.AsString())
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return values.Value{}, mtyerr.ValueErrorf("invalid literal for int() with base 10: %s", reprQuoted(s))
			}
			return values.IntFromInt64(n), nil
		}
		return values.Value{}, mtyerr.TypeErrorf("int() argument must be a string or a number, not '%s'", reg.TypeName(v))
	}
}

func reprQuoted(s string) string { return "'" + s + "'" }

func biStr(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) == 0 {
			return values.Str(""), nil
		}
		v := args[0]
		if v.Kind == values.KindObject {
			if v.AsRef().Kind == values.ObjException {
				return values.Str(ExceptionStr(reg, reg.Exception(v))), nil
			}
			return values.Str(reg.Repr(v)), nil
		}
		return values.Str(v.Str()), nil
	}
}

func biBytes(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) == 0 {
			return values.Bytes(nil), nil
		}
		v := args[0]
		switch v.Kind {
		case values.KindStr:
			return values.Bytes([]byte(v.AsString())), nil
		case values.KindBytes:
			return v, nil
		}
		return values.Value{}, mtyerr.TypeErrorf("cannot convert '%s' object to bytes", reg.TypeName(v))
	}
}

func biTuple(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) == 0 {
			return values.Tuple(), nil
		}
		items, err := iterAll(reg, args[0])
		if err != nil {
			return values.Value{}, err
		}
		return values.Tuple(items...), nil
	}
}

func biList(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) == 0 {
			return reg.NewList(nil), nil
		}
		items, err := iterAll(reg, args[0])
		if err != nil {
			return values.Value{}, err
		}
		return reg.NewList(append([]values.Value{}, items...)), nil
	}
}

func biDict(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		dv := reg.NewDict()
		d := reg.Dict(dv)
		if len(args) == 1 {
			items, err := iterAll(reg, args[0])
			if err != nil {
				return values.Value{}, err
			}
			for _, pair := range items {
				if pair.Kind != values.KindTuple || len(pair.AsTuple()) != 2 {
					return values.Value{}, mtyerr.ValueErrorf("dictionary update sequence element is not a 2-tuple")
				}
				kv := pair.AsTuple()
				if _, err := reg.HashValue(kv[0]); err != nil {
					return values.Value{}, err
				}
				d.Set(kv[0], kv[1])
			}
		}
		if kwargs != nil {
			for _, k := range kwargs.Keys() {
				v, _ := kwargs.Get(k)
				d.Set(k, v)
			}
		}
		return dv, nil
	}
}

func biSet(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		sv := reg.NewSet()
		s := reg.SetObj(sv)
		if len(args) == 1 {
			items, err := iterAll(reg, args[0])
			if err != nil {
				return values.Value{}, err
			}
			for _, it := range items {
				if _, err := reg.HashValue(it); err != nil {
					return values.Value{}, err
				}
				s.Add(it)
			}
		}
		return sv, nil
	}
}

func biRange(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		var start, stop, step int64 = 0, 0, 1
		asInt := func(v values.Value) (int64, error) {
			if v.Kind != values.KindInt && v.Kind != values.KindBool {
				return 0, mtyerr.TypeErrorf("'%s' object cannot be interpreted as an integer", reg.TypeName(v))
			}
			return toInt64(v), nil
		}
		var err error
		switch len(args) {
		case 1:
			if stop, err = asInt(args[0]); err != nil {
				return values.Value{}, err
			}
		case 2:
			if start, err = asInt(args[0]); err != nil {
				return values.Value{}, err
			}
			if stop, err = asInt(args[1]); err != nil {
				return values.Value{}, err
			}
		case 3:
			if start, err = asInt(args[0]); err != nil {
				return values.Value{}, err
			}
			if stop, err = asInt(args[1]); err != nil {
				return values.Value{}, err
			}
			if step, err = asInt(args[2]); err != nil {
				return values.Value{}, err
			}
			if step == 0 {
				return values.Value{}, mtyerr.ValueErrorf("range() arg 3 must not be zero")
			}
		default:
			return values.Value{}, mtyerr.TypeErrorf("range expected 1 to 3 arguments, got %d", len(args))
		}
		cur := start
		return reg.NewIterator(func() (values.Value, bool, error) {
			if (step > 0 && cur >= stop) || (step < 0 && cur <= stop) {
				return values.None(), false, nil
			}
			v := values.IntFromInt64(cur)
			cur += step
			return v, true, nil
		}), nil
	}
}

func biSorted(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) != 1 {
			return values.Value{}, mtyerr.TypeErrorf("sorted() takes exactly one argument (%d given)", len(args))
		}
		items, err := iterAll(reg, args[0])
		if err != nil {
			return values.Value{}, err
		}
		out := append([]values.Value{}, items...)
		var keyFn values.Value
		hasKey := false
		reverse := false
		if kwargs != nil {
			if k, ok := kwargs.Get(values.Str("key")); ok && !k.IsNone() {
				keyFn, hasKey = k, true
			}
			if r, ok := kwargs.Get(values.Str("reverse")); ok {
				reverse = reg.Truthy(r)
			}
		}
		keys := out
		if hasKey {
			keys = make([]values.Value, len(out))
			for i, it := range out {
				kv, err := CallValue(reg, keyFn, []values.Value{it}, nil)
				if err != nil {
					return values.Value{}, err
				}
				keys[i] = kv
			}
		}
		idx := make([]int, len(out))
		for i := range idx {
			idx[i] = i
		}
		var sortErr error
		sort.SliceStable(idx, func(i, j int) bool {
			c, err := compareSortKeys(reg, keys[idx[i]], keys[idx[j]])
			if err != nil && sortErr == nil {
				sortErr = err
			}
			if reverse {
				return c > 0
			}
			return c < 0
		})
		if sortErr != nil {
			return values.Value{}, sortErr
		}
		result := make([]values.Value, len(out))
		for i, id := range idx {
			result[i] = out[id]
		}
		return reg.NewList(result), nil
	}
}

func compareSortKeys(reg *registry.Registry, a, b values.Value) (int, error) {
	af, aok := numericLike(a)
	bf, bok := numericLike(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.Kind == values.KindStr && b.Kind == values.KindStr {
		switch {
		case a.AsString() < b.AsString():
			return -1, nil
		case a.AsString() > b.AsString():
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, mtyerr.TypeErrorf("'<' not supported between instances of '%s' and '%s'", reg.TypeName(a), reg.TypeName(b))
}

// toInt64 extracts an int64 from an Int or Bool value, mirroring vm.toBig's
// bool-as-0/1 coercion for the builtins that accept either.
func toInt64(v values.Value) int64 {
	if v.Kind == values.KindBool {
		if v.AsBool() {
			return 1
		}
		return 0
	}
	return v.AsInt().Int64()
}

func numericLike(v values.Value) (float64, bool) {
	switch v.Kind {
	case values.KindInt:
		f := new(big.Float).SetInt(v.AsInt())
		out, _ := f.Float64()
		return out, true
	case values.KindFloat:
		return v.AsFloat(), true
	case values.KindBool:
		if v.AsBool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func biEnumerate(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		items, err := iterAll(reg, args[0])
		if err != nil {
			return values.Value{}, err
		}
		start := int64(0)
		if len(args) > 1 {
			start = toInt64(args[1])
		}
		i := 0
		return reg.NewIterator(func() (values.Value, bool, error) {
			if i >= len(items) {
				return values.None(), false, nil
			}
			v := values.Tuple(values.IntFromInt64(start+int64(i)), items[i])
			i++
			return v, true, nil
		}), nil
	}
}

func biZip(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		seqs := make([][]values.Value, len(args))
		minLen := -1
		for i, a := range args {
			items, err := iterAll(reg, a)
			if err != nil {
				return values.Value{}, err
			}
			seqs[i] = items
			if minLen < 0 || len(items) < minLen {
				minLen = len(items)
			}
		}
		if minLen < 0 {
			minLen = 0
		}
		i := 0
		return reg.NewIterator(func() (values.Value, bool, error) {
			if i >= minLen {
				return values.None(), false, nil
			}
			row := make([]values.Value, len(seqs))
			for j, s := range seqs {
				row[j] = s[i]
			}
			i++
			return values.Tuple(row...), true, nil
		}), nil
	}
}

func biMap(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) < 2 {
			return values.Value{}, mtyerr.TypeErrorf("map() must have at least two arguments")
		}
		fn := args[0]
		items, err := iterAll(reg, args[1])
		if err != nil {
			return values.Value{}, err
		}
		i := 0
		return reg.NewIterator(func() (values.Value, bool, error) {
			if i >= len(items) {
				return values.None(), false, nil
			}
			v, err := CallValue(reg, fn, []values.Value{items[i]}, nil)
			i++
			if err != nil {
				return values.Value{}, false, err
			}
			return v, true, nil
		}), nil
	}
}

func biFilter(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		if len(args) != 2 {
			return values.Value{}, mtyerr.TypeErrorf("filter() takes exactly two arguments")
		}
		fn := args[0]
		items, err := iterAll(reg, args[1])
		if err != nil {
			return values.Value{}, err
		}
		i := 0
		return reg.NewIterator(func() (values.Value, bool, error) {
			for i < len(items) {
				v := items[i]
				i++
				if fn.IsNone() {
					if reg.Truthy(v) {
						return v, true, nil
					}
					continue
				}
				keep, err := CallValue(reg, fn, []values.Value{v}, nil)
				if err != nil {
					return values.Value{}, false, err
				}
				if reg.Truthy(keep) {
					return v, true, nil
				}
			}
			return values.None(), false, nil
		}), nil
	}
}

func biReversed(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		items, err := iterAll(reg, args[0])
		if err != nil {
			return values.Value{}, err
		}
		i := len(items) - 1
		return reg.NewIterator(func() (values.Value, bool, error) {
			if i < 0 {
				return values.None(), false, nil
			}
			v := items[i]
			i--
			return v, true, nil
		}), nil
	}
}

func biMinMax(reg *registry.Registry, isMin bool) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		var items []values.Value
		if len(args) == 1 {
			var err error
			items, err = iterAll(reg, args[0])
			if err != nil {
				return values.Value{}, err
			}
		} else {
			items = args
		}
		if len(items) == 0 {
			return values.Value{}, mtyerr.ValueErrorf("%s() arg is an empty sequence", minMaxName(isMin))
		}
		best := items[0]
		for _, it := range items[1:] {
			c, err := compareSortKeys(reg, it, best)
			if err != nil {
				return values.Value{}, err
			}
			if (isMin && c < 0) || (!isMin && c > 0) {
				best = it
			}
		}
		return best, nil
	}
}

func minMaxName(isMin bool) string {
	if isMin {
		return "min"
	}
	return "max"
}

func biSum(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		items, err := iterAll(reg, args[0])
		if err != nil {
			return values.Value{}, err
		}
		total := values.IntFromInt64(0)
		if len(args) > 1 {
			total = args[1]
		}
		isFloat := total.Kind == values.KindFloat
		fsum := 0.0
		isum := int64(0)
		if isFloat {
			fsum = total.AsFloat()
		} else {
			isum = toInt64(total)
		}
		for _, it := range items {
			switch it.Kind {
			case values.KindFloat:
				if !isFloat {
					fsum = float64(isum)
					isFloat = true
				}
				fsum += it.AsFloat()
			case values.KindInt, values.KindBool:
				n := toInt64(it)
				if isFloat {
					fsum += float64(n)
				} else {
					isum += n
				}
			default:
				return values.Value{}, mtyerr.TypeErrorf("unsupported operand type(s) for +: '%s' and '%s'", "int", reg.TypeName(it))
			}
		}
		if isFloat {
			return values.Float(fsum), nil
		}
		return values.IntFromInt64(isum), nil
	}
}

func biAny(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		items, err := iterAll(reg, args[0])
		if err != nil {
			return values.Value{}, err
		}
		for _, it := range items {
			if reg.Truthy(it) {
				return values.Bool(true), nil
			}
		}
		return values.Bool(false), nil
	}
}

func biAll(reg *registry.Registry) func([]values.Value, *registry.Dict) (values.Value, error) {
	return func(args []values.Value, kwargs *registry.Dict) (values.Value, error) {
		items, err := iterAll(reg, args[0])
		if err != nil {
			return values.Value{}, err
		}
		for _, it := range items {
			if !reg.Truthy(it) {
				return values.Bool(false), nil
			}
		}
		return values.Bool(true), nil
	}
}
