package vm

import (
	"math"
	"math/big"

	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/values"
)

// numKind classifies a value for arithmetic purposes; mixed int/float
// operands promote to float.
type numKind int

const (
	numNone numKind = iota
	numInt
	numFloat
)

func classify(v values.Value) numKind {
	switch v.Kind {
	case values.KindBool, values.KindInt:
		return numInt
	case values.KindFloat:
		return numFloat
	}
	return numNone
}

func toBig(v values.Value) *big.Int {
	if v.Kind == values.KindBool {
		if v.AsBool() {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
	return v.AsInt()
}

func toFloat(v values.Value) float64 {
	switch v.Kind {
	case values.KindFloat:
		return v.AsFloat()
	case values.KindBool:
		if v.AsBool() {
			return 1
		}
		return 0
	case values.KindInt:
		f := new(big.Float).SetInt(v.AsInt())
		out, _ := f.Float64()
		return out
	}
	return 0
}

// typeNameOf names v for error messages, resolving compound ObjectRef
// values through the registry.
func typeNameOf(ctx *ExecutionContext, v values.Value) string { return ctx.Registry.TypeName(v) }

func (vm *VirtualMachine) execArithmetic(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	b := frame.pop()
	a := frame.pop()

	if inst.Op == opcodes.OpDiv && a.Kind == values.KindPath {
		// Path concatenation: Path / str and Path / Path.
		switch b.Kind {
		case values.KindStr:
			frame.push(values.Path(a.AsPath().Join(b.AsString())))
			return true, nil
		case values.KindPath:
			frame.push(values.Path(a.AsPath().Join(values.PathString(b.AsPath()))))
			return true, nil
		}
		return false, mtyerr.TypeErrorf("unsupported operand type(s) for /: 'PurePosixPath' and '%s'", typeNameOf(ctx, b))
	}

	if inst.Op == opcodes.OpAdd {
		if a.Kind == values.KindStr && b.Kind == values.KindStr {
			frame.push(values.Str(a.AsString() + b.AsString()))
			return true, nil
		}
		if a.Kind == values.KindBytes && b.Kind == values.KindBytes {
			frame.push(values.Bytes(append(append([]byte{}, a.AsBytes()...), b.AsBytes()...)))
			return true, nil
		}
		if a.Kind == values.KindTuple && b.Kind == values.KindTuple {
			out := append(append([]values.Value{}, a.AsTuple()...), b.AsTuple()...)
			frame.push(values.Tuple(out...))
			return true, nil
		}
	}

	ak, bk := classify(a), classify(b)
	if ak == numNone || bk == numNone {
		return false, mtyerr.TypeErrorf("unsupported operand type(s) for %s: '%s' and '%s'",
			symbolFor(inst.Op), typeNameOf(ctx, a), typeNameOf(ctx, b))
	}

	useFloat := ak == numFloat || bk == numFloat
	if inst.Op == opcodes.OpDiv {
		useFloat = true // true division always yields float, as in reference Python
	}

	if useFloat {
		af, bf := toFloat(a), toFloat(b)
		res, err := floatArith(inst.Op, af, bf)
		if err != nil {
			return false, err
		}
		frame.push(values.Float(res))
		return true, nil
	}

	ai, bi := toBig(a), toBig(b)
	res, err := intArith(inst.Op, ai, bi)
	if err != nil {
		return false, err
	}
	frame.push(res)
	return true, nil
}

func symbolFor(op opcodes.Opcode) string {
	switch op {
	case opcodes.OpAdd:
		return "+"
	case opcodes.OpSub:
		return "-"
	case opcodes.OpMul:
		return "*"
	case opcodes.OpDiv:
		return "/"
	case opcodes.OpFloorDiv:
		return "//"
	case opcodes.OpMod:
		return "%"
	case opcodes.OpPow:
		return "**"
	}
	return op.String()
}

func floatArith(op opcodes.Opcode, a, b float64) (float64, error) {
	switch op {
	case opcodes.OpAdd:
		return a + b, nil
	case opcodes.OpSub:
		return a - b, nil
	case opcodes.OpMul:
		return a * b, nil
	case opcodes.OpDiv:
		if b == 0 {
			return 0, mtyerr.ZeroDivisionErrorf("float division by zero")
		}
		return a / b, nil
	case opcodes.OpFloorDiv:
		if b == 0 {
			return 0, mtyerr.ZeroDivisionErrorf("float floor division by zero")
		}
		return math.Floor(a / b), nil
	case opcodes.OpMod:
		if b == 0 {
			return 0, mtyerr.ZeroDivisionErrorf("float modulo")
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, nil
	case opcodes.OpPow:
		return math.Pow(a, b), nil
	}
	return 0, mtyerr.RuntimeErrorf("unsupported float opcode %s", op)
}

func intArith(op opcodes.Opcode, a, b *big.Int) (values.Value, error) {
	res := new(big.Int)
	switch op {
	case opcodes.OpAdd:
		return values.IntFromBig(res.Add(a, b)), nil
	case opcodes.OpSub:
		return values.IntFromBig(res.Sub(a, b)), nil
	case opcodes.OpMul:
		return values.IntFromBig(res.Mul(a, b)), nil
	case opcodes.OpFloorDiv:
		if b.Sign() == 0 {
			return values.Value{}, mtyerr.ZeroDivisionErrorf("integer division or modulo by zero")
		}
		q, m := new(big.Int), new(big.Int)
		q.DivMod(a, b, m) // big.Int.DivMod implements Euclidean division (0 <= m < |b|)
		if m.Sign() != 0 && b.Sign() < 0 {
			// Euclidean division rounds toward +inf relative to floor
			// division whenever b is negative and the split isn't exact.
			q.Sub(q, big.NewInt(1))
		}
		return values.IntFromBig(q), nil
	case opcodes.OpMod:
		if b.Sign() == 0 {
			return values.Value{}, mtyerr.ZeroDivisionErrorf("integer division or modulo by zero")
		}
		// big.Int.Mod returns the Euclidean remainder in [0, |b|). Python's %
		// takes the sign of the divisor, so when b is negative and the
		// Euclidean remainder is nonzero, shift it down by b.
		m := new(big.Int).Mod(a, b)
		if b.Sign() < 0 && m.Sign() > 0 {
			m.Add(m, b)
		}
		return values.IntFromBig(m), nil
	case opcodes.OpPow:
		if b.Sign() < 0 {
			// Negative exponent on ints yields float in reference Python.
			af, _ := new(big.Float).SetInt(a).Float64()
			bf, _ := new(big.Float).SetInt(b).Float64()
			return values.Float(math.Pow(af, bf)), nil
		}
		return values.IntFromBig(res.Exp(a, b, nil)), nil
	}
	return values.Value{}, mtyerr.RuntimeErrorf("unsupported int opcode %s", op)
}

func (vm *VirtualMachine) execUnary(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	v := frame.pop()
	switch inst.Op {
	case opcodes.OpNot:
		frame.push(values.Bool(!ctx.Registry.Truthy(v)))
		return true, nil
	case opcodes.OpNeg:
		switch classify(v) {
		case numInt:
			frame.push(values.IntFromBig(new(big.Int).Neg(toBig(v))))
		case numFloat:
			frame.push(values.Float(-toFloat(v)))
		default:
			return false, mtyerr.TypeErrorf("bad operand type for unary -: '%s'", typeNameOf(ctx, v))
		}
		return true, nil
	case opcodes.OpPos:
		switch classify(v) {
		case numInt:
			frame.push(values.IntFromBig(toBig(v)))
		case numFloat:
			frame.push(values.Float(toFloat(v)))
		default:
			return false, mtyerr.TypeErrorf("bad operand type for unary +: '%s'", typeNameOf(ctx, v))
		}
		return true, nil
	}
	return false, mtyerr.RuntimeErrorf("unsupported unary opcode %s", inst.Op)
}

func (vm *VirtualMachine) execBitwiseNot(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	v := frame.pop()
	if classify(v) != numInt {
		return false, mtyerr.TypeErrorf("bad operand type for unary ~: '%s'", typeNameOf(ctx, v))
	}
	frame.push(values.IntFromBig(new(big.Int).Not(toBig(v))))
	return true, nil
}

func (vm *VirtualMachine) execBitwise(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	b := frame.pop()
	a := frame.pop()
	if classify(a) != numInt || classify(b) != numInt {
		return false, mtyerr.TypeErrorf("unsupported operand type(s) for %s: '%s' and '%s'",
			symbolFor(inst.Op), typeNameOf(ctx, a), typeNameOf(ctx, b))
	}
	ai, bi := toBig(a), toBig(b)
	res := new(big.Int)
	switch inst.Op {
	case opcodes.OpBitAnd:
		res.And(ai, bi)
	case opcodes.OpBitOr:
		res.Or(ai, bi)
	case opcodes.OpBitXor:
		res.Xor(ai, bi)
	case opcodes.OpShl, opcodes.OpShr:
		if bi.Sign() < 0 {
			return false, mtyerr.ValueErrorf("negative shift count")
		}
		n := uint(bi.Uint64())
		if inst.Op == opcodes.OpShl {
			res.Lsh(ai, n)
		} else {
			res.Rsh(ai, n)
		}
	}
	frame.push(values.IntFromBig(res))
	return true, nil
}
