package value

import "math/big"

// BinaryOp applies a scalar binary operator to two Numbers. Arrays never
// participate in arithmetic (spec.md §7 TypeError "numeric op on array").
func BinaryOp(op string, x, y *Number) (Value, error) {
	switch op {
	case "+":
		return &Number{Rat: new(big.Rat).Add(x.Rat, y.Rat)}, nil
	case "-":
		return &Number{Rat: new(big.Rat).Sub(x.Rat, y.Rat)}, nil
	case "*":
		return &Number{Rat: new(big.Rat).Mul(x.Rat, y.Rat)}, nil
	case "/":
		if y.IsZero() {
			return nil, ErrDivisionByZero
		}
		return &Number{Rat: new(big.Rat).Quo(x.Rat, y.Rat)}, nil
	case "//":
		if y.IsZero() {
			return nil, ErrDivisionByZero
		}
		return floorDiv(x.Rat, y.Rat), nil
	case "%":
		if y.IsZero() {
			return nil, ErrDivisionByZero
		}
		return remainder(x.Rat, y.Rat), nil
	case "**":
		return power(x.Rat, y.Rat)
	case "^":
		return bitwise(x.Rat, y.Rat, func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) })
	case "&":
		return bitwise(x.Rat, y.Rat, func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) })
	case "|":
		return bitwise(x.Rat, y.Rat, func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) })
	case "==":
		return boolNumber(x.Rat.Cmp(y.Rat) == 0), nil
	case "!=":
		return boolNumber(x.Rat.Cmp(y.Rat) != 0), nil
	case "<":
		return boolNumber(x.Rat.Cmp(y.Rat) < 0), nil
	case "<=":
		return boolNumber(x.Rat.Cmp(y.Rat) <= 0), nil
	case ">":
		return boolNumber(x.Rat.Cmp(y.Rat) > 0), nil
	case ">=":
		return boolNumber(x.Rat.Cmp(y.Rat) >= 0), nil
	default:
		return nil, ErrTypeMismatch
	}
}

func boolNumber(b bool) *Number {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

// floorDiv computes the mathematical floor of x/y (towards negative infinity,
// unlike big.Rat's truncating Quo).
func floorDiv(x, y *big.Rat) *Number {
	q := new(big.Rat).Quo(x, y)
	num := new(big.Int).Quo(q.Num(), q.Denom())
	rem := new(big.Int).Rem(q.Num(), q.Denom())
	if rem.Sign() != 0 && (rem.Sign() < 0) != (q.Denom().Sign() < 0) {
		num.Sub(num, big.NewInt(1))
	}
	return &Number{Rat: new(big.Rat).SetInt(num)}
}

// remainder computes x - y*floor(x/y), so it always carries the sign of y,
// matching the floor-division pairing used by // above.
func remainder(x, y *big.Rat) *Number {
	fd := floorDiv(x, y)
	prod := new(big.Rat).Mul(fd.Rat, y)
	return &Number{Rat: new(big.Rat).Sub(x, prod)}
}

// power implements `**`. A non-integer base requires an integer exponent
// (spec.md §4.1); negative exponents are legal (1/base^n).
func power(base, exp *big.Rat) (Value, error) {
	if !exp.IsInt() {
		if !base.IsInt() {
			return nil, ErrNonIntegerExponent
		}
		// Integer base, non-integer (necessarily rational) exponent is not
		// representable as an exact rational result in general.
		return nil, ErrNonIntegerExponent
	}
	e := exp.Num() // exp.Denom() == 1 since exp.IsInt()
	neg := e.Sign() < 0
	n := new(big.Int).Abs(e)
	if !n.IsInt64() {
		return nil, ErrNonIntegerExponent
	}
	result := new(big.Rat).SetInt64(1)
	for i := n.Int64(); i > 0; i-- {
		result.Mul(result, base)
	}
	if neg {
		if result.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		result = new(big.Rat).Inv(result)
	}
	return &Number{Rat: result}, nil
}

func bitwise(x, y *big.Rat, f func(a, b *big.Int) *big.Int) (Value, error) {
	if !x.IsInt() || !y.IsInt() {
		return nil, ErrNonIntegerOperand
	}
	return &Number{Rat: new(big.Rat).SetInt(f(x.Num(), y.Num()))}, nil
}

// UnaryOp applies a scalar unary operator.
func UnaryOp(op string, x *Number) (Value, error) {
	switch op {
	case "-":
		return &Number{Rat: new(big.Rat).Neg(x.Rat)}, nil
	case "!":
		return boolNumber(!x.Truthy()), nil
	default:
		return nil, ErrTypeMismatch
	}
}

// InverseModOp returns the modop that undoes op, per spec.md §4.4's table
// (`+=`<->`-=`, `*=`<->`/=`, `^=` self-inverse).
func InverseModOp(op string) string {
	switch op {
	case "+=":
		return "-="
	case "-=":
		return "+="
	case "*=":
		return "/="
	case "/=":
		return "*="
	case "^=":
		return "^="
	default:
		return ""
	}
}
