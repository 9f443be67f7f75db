package registry

import "github.com/Iansi36283/monty/values"

// Iterator is the registry-backed cursor behind the iteration protocol: any
// value that exposes a next-value-or-end operation. It backs FOR_ITER over
// lists, tuples, strings, bytes, dicts, sets, ranges, and the
// iterator-returning builtins (enumerate, zip, map, filter, reversed).
type Iterator struct {
	Next func() (values.Value, bool, error) // value, ok, error
}

func (r *Registry) NewIterator(next func() (values.Value, bool, error)) values.Value {
	return r.alloc(values.ObjIterator, &Iterator{Next: next})
}

func (r *Registry) IteratorOf(v values.Value) *Iterator {
	return r.Get(v.AsRef()).(*Iterator)
}

// SliceIterator builds an Iterator over a pre-materialized slice of values,
// the case GET_ITER uses for tuple, str, bytes, list, dict and set values.
func (r *Registry) SliceIterator(items []values.Value) values.Value {
	i := 0
	return r.NewIterator(func() (values.Value, bool, error) {
		if i >= len(items) {
			return values.None(), false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	})
}
