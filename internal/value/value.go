// Package value implements the runtime value model: exact rational scalars
// and recursively nested arrays of values (spec.md §3/§4.1).
//
// Arithmetic here returns plain sentinel errors (ErrDivisionByZero, etc.)
// rather than positional errors — callers in internal/interp attach the
// AST position and surrounding construct before surfacing a
// railerr.RailError to the user.
package value

import (
	"errors"
	"math/big"
	"strings"
)

// Sentinel errors returned by the arithmetic and indexing helpers below.
var (
	ErrTypeMismatch       = errors.New("operation not defined for this value's type")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrNonIntegerExponent = errors.New("exponent must be an integer when the base is not an integer power")
	ErrNonIntegerOperand  = errors.New("bitwise operator requires an integer-valued rational")
	ErrScalarLength       = errors.New("# applied to a scalar")
	ErrScalarIndex        = errors.New("index applied to a scalar")
	ErrIndexOutOfRange    = errors.New("array index out of range")
)

// Value is a tagged variant: either a Number or an Array.
type Value interface {
	Type() string
	String() string
	// Equal reports structural equality.
	Equal(other Value) bool
	// DeepCopy returns an independent copy; scalars may return themselves
	// since *big.Rat is treated as immutable once constructed.
	DeepCopy() Value
}

// Number is an exact rational scalar.
type Number struct {
	Rat *big.Rat
}

// NewNumber wraps r. r is not copied; callers that intend to keep mutating
// r after handing it to NewNumber must clone it first.
func NewNumber(r *big.Rat) *Number { return &Number{Rat: r} }

// NewInt builds a Number from an int64.
func NewInt(n int64) *Number { return &Number{Rat: big.NewRat(n, 1)} }

// Type returns "NUMBER".
func (n *Number) Type() string { return "NUMBER" }

// String renders integral rationals without a denominator, and non-integral
// ones as "p/q".
func (n *Number) String() string {
	if n.Rat.IsInt() {
		return n.Rat.Num().String()
	}
	return n.Rat.RatString()
}

// Equal reports whether other is a Number with the same rational value.
func (n *Number) Equal(other Value) bool {
	o, ok := other.(*Number)
	if !ok {
		return false
	}
	return n.Rat.Cmp(o.Rat) == 0
}

// DeepCopy returns a Number backed by an independent *big.Rat.
func (n *Number) DeepCopy() Value {
	return &Number{Rat: new(big.Rat).Set(n.Rat)}
}

// IsZero reports whether n is exactly 0.
func (n *Number) IsZero() bool { return n.Rat.Sign() == 0 }

// Truthy treats any nonzero number as true, per spec.md §4.1's `!x`
// (logical not is 1 if x is zero else 0).
func (n *Number) Truthy() bool { return n.Rat.Sign() != 0 }

// Array is an ordered, heterogeneous-in-principle sequence of values.
type Array struct {
	Elems []Value
}

// NewArray wraps elems directly (no copy).
func NewArray(elems []Value) *Array { return &Array{Elems: elems} }

// Type returns "ARRAY".
func (a *Array) Type() string { return "ARRAY" }

// String renders as "[e1, e2, ...]" (spec.md §6).
func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range a.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports element-wise structural equality.
func (a *Array) Equal(other Value) bool {
	o, ok := other.(*Array)
	if !ok || len(a.Elems) != len(o.Elems) {
		return false
	}
	for i, e := range a.Elems {
		if !e.Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// DeepCopy recursively copies every element.
func (a *Array) DeepCopy() Value {
	out := make([]Value, len(a.Elems))
	for i, e := range a.Elems {
		out[i] = e.DeepCopy()
	}
	return &Array{Elems: out}
}

// Len returns the array's length, or an error if v is a scalar.
func Len(v Value) (int, error) {
	a, ok := v.(*Array)
	if !ok {
		return 0, ErrScalarLength
	}
	return len(a.Elems), nil
}

// NormalizeIndex resolves a possibly-negative index against length n,
// wrapping modulo n (spec.md §4.1: `key[-i % klen]`-style usage). Positive
// indices that are still out of range are an error; so are indices into an
// empty array.
func NormalizeIndex(idx, n int) (int, error) {
	if n == 0 {
		return 0, ErrIndexOutOfRange
	}
	if idx < 0 {
		idx = ((idx % n) + n) % n
	}
	if idx >= n {
		return 0, ErrIndexOutOfRange
	}
	return idx, nil
}

// Index resolves a single index step against v, which must be an Array.
func Index(v Value, idx int) (Value, error) {
	a, ok := v.(*Array)
	if !ok {
		return nil, ErrScalarIndex
	}
	i, err := NormalizeIndex(idx, len(a.Elems))
	if err != nil {
		return nil, err
	}
	return a.Elems[i], nil
}
