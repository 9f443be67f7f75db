package vm

import (
	"math"

	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/values"
)

// compareOrdered returns -1/0/1 for ordered comparisons, or an error for
// unorderable operand pairs. NaN never compares equal to anything, including
// itself, and is unordered relative to everything.
func compareOrdered(a, b values.Value) (int, error) {
	ak, bk := classify(a), classify(b)
	if ak != numNone && bk != numNone {
		af, bf := toFloat(a), toFloat(b)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, errUnordered
		}
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
		as, bs := a.AsString(), b.AsString()
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.Kind == values.KindBytes && b.Kind == values.KindBytes {
		as, bs := string(a.AsBytes()), string(b.AsBytes())
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.Kind == values.KindTuple && b.Kind == values.KindTuple {
		at, bt := a.AsTuple(), b.AsTuple()
		for i := 0; i < len(at) && i < len(bt); i++ {
			c, err := compareOrdered(at[i], bt[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		switch {
		case len(at) < len(bt):
			return -1, nil
		case len(at) > len(bt):
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, mtyerr.TypeErrorf("'<' not supported between instances of '%s' and '%s'", a.TypeName(), b.TypeName())
}

// errUnordered is a sentinel distinguishing "NaN involved" from a genuine
// type error; comparisons against NaN simply yield false rather than raise.
var errUnordered = &nanError{}

type nanError struct{}

func (*nanError) Error() string { return "nan comparison" }

func (vm *VirtualMachine) execComparison(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	b := frame.pop()
	a := frame.pop()

	switch inst.Op {
	case opcodes.OpEq:
		frame.push(values.Bool(valuesEqual(ctx, a, b)))
		return true, nil
	case opcodes.OpNe:
		frame.push(values.Bool(!valuesEqual(ctx, a, b)))
		return true, nil
	}

	if a.Kind == values.KindObject || b.Kind == values.KindObject {
		// ordered comparison on compound objects is not part of the subset
		return false, mtyerr.TypeErrorf("'<' not supported between instances of '%s' and '%s'",
			ctx.Registry.TypeName(a), ctx.Registry.TypeName(b))
	}

	c, err := compareOrdered(a, b)
	if err != nil {
		if err == errUnordered {
			switch inst.Op {
			case opcodes.OpLt, opcodes.OpLe, opcodes.OpGt, opcodes.OpGe:
				frame.push(values.Bool(false))
				return true, nil
			}
		}
		return false, err
	}
	var res bool
	switch inst.Op {
	case opcodes.OpLt:
		res = c < 0
	case opcodes.OpLe:
		res = c <= 0
	case opcodes.OpGt:
		res = c > 0
	case opcodes.OpGe:
		res = c >= 0
	}
	frame.push(values.Bool(res))
	return true, nil
}

func valuesEqual(ctx *ExecutionContext, a, b values.Value) bool {
	if a.Kind == values.KindObject || b.Kind == values.KindObject {
		return ctx.Registry.Equal(a, b)
	}
	return a.Equal(b)
}
