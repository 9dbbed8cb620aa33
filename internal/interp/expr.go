package interp

import (
	"math/big"

	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/value"
)

// Eval evaluates an expression against env. Pure: no statement-level side
// effects (spec.md §4.3).
func Eval(e ast.Expression, env *Env) (value.Value, error) {
	switch n := e.(type) {
	case *ast.NumberLit:
		return &value.Number{Rat: new(big.Rat).Set(n.Value)}, nil

	case *ast.Lookup:
		return evalLookup(n, env)

	case *ast.Unary:
		x, err := Eval(n.X, env)
		if err != nil {
			return nil, err
		}
		num, ok := x.(*value.Number)
		if !ok {
			return nil, typeErrf(n.Pos(), "unary "+n.Op, "operand must be a number, got %s", x.Type())
		}
		out, err := value.UnaryOp(n.Op, num)
		if err != nil {
			return nil, wrapScopeErr(n.Pos(), "unary "+n.Op, err)
		}
		return out, nil

	case *ast.Binary:
		x, err := Eval(n.X, env)
		if err != nil {
			return nil, err
		}
		y, err := Eval(n.Y, env)
		if err != nil {
			return nil, err
		}
		xn, ok := x.(*value.Number)
		if !ok {
			return nil, typeErrf(n.Pos(), "binary "+n.Op, "left operand must be a number, got %s", x.Type())
		}
		yn, ok := y.(*value.Number)
		if !ok {
			return nil, typeErrf(n.Pos(), "binary "+n.Op, "right operand must be a number, got %s", y.Type())
		}
		out, err := value.BinaryOp(n.Op, xn, yn)
		if err != nil {
			return nil, wrapScopeErr(n.Pos(), "binary "+n.Op, err)
		}
		return out, nil

	case *ast.ArrayLiteral:
		elems := make([]value.Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := Eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return value.NewArray(elems), nil

	case *ast.ArrayRange:
		return evalArrayRange(n, env)

	case *ast.ArrayTensor:
		return evalArrayTensor(n, env)

	case *ast.LenExpr:
		base, err := Eval(n.X, env)
		if err != nil {
			return nil, err
		}
		l, err := value.Len(base)
		if err != nil {
			return nil, wrapScopeErr(n.Pos(), "#", err)
		}
		return value.NewInt(int64(l)), nil

	case *ast.ThreadIDExpr:
		return value.NewInt(int64(env.Thread.TID)), nil

	case *ast.NumThreadsExpr:
		return value.NewInt(int64(env.Thread.N)), nil

	default:
		return nil, railerr.NewTypeError(e.Pos(), "expression", "unknown expression node", nil)
	}
}

// evalLookup resolves a name (optionally module-qualified, optionally
// indexed) to its current value.
func evalLookup(n *ast.Lookup, env *Env) (value.Value, error) {
	base, err := lookupBase(n, env)
	if err != nil {
		return nil, err
	}
	cur := base
	for _, idxExpr := range n.Index {
		idx, err := evalIndex(idxExpr, env)
		if err != nil {
			return nil, err
		}
		cur, err = value.Index(cur, idx)
		if err != nil {
			return nil, wrapScopeErr(n.Pos(), "index", err)
		}
	}
	return cur, nil
}

// lookupBase resolves just the name part of a Lookup (before indexing),
// honoring module qualification.
func lookupBase(n *ast.Lookup, env *Env) (value.Value, error) {
	if n.Module == "" {
		v, ok := env.Scope.Get(n.Name)
		if !ok {
			return nil, railerr.NewScopeError(n.Pos(), "lookup", "undefined name '"+n.Name+"'")
		}
		return v, nil
	}
	modEnv, ok := env.Thread.Registry.Resolve(env.Module, n.Module)
	if !ok {
		return nil, railerr.NewScopeError(n.Pos(), "lookup", "undefined module '"+n.Module+"'")
	}
	v, ok := modEnv.Globals.Get(n.Name)
	if !ok {
		return nil, railerr.NewScopeError(n.Pos(), "lookup", "undefined name '"+n.Module+"."+n.Name+"'")
	}
	return v.DeepCopy(), nil
}

// evalIndex evaluates e and requires it to be an integer-valued Number.
func evalIndex(e ast.Expression, env *Env) (int, error) {
	v, err := Eval(e, env)
	if err != nil {
		return 0, err
	}
	return toInt(e.Pos(), v)
}

func toInt(pos *ast.Position, v value.Value) (int, error) {
	n, ok := v.(*value.Number)
	if !ok {
		return 0, typeErrf(pos, "index", "index must be a number, got %s", v.Type())
	}
	if !n.Rat.IsInt() {
		return 0, typeErrf(pos, "index", "index must be an integer, got %s", n.String())
	}
	if !n.Rat.Num().IsInt64() {
		return 0, typeErrf(pos, "index", "index out of representable range")
	}
	return int(n.Rat.Num().Int64()), nil
}

func evalArrayRange(n *ast.ArrayRange, env *Env) (value.Value, error) {
	start, err := evalRat(n.Start, env)
	if err != nil {
		return nil, err
	}
	end, err := evalRat(n.End, env)
	if err != nil {
		return nil, err
	}
	var step *big.Rat
	if n.Step == nil {
		step = big.NewRat(1, 1)
	} else {
		step, err = evalRat(n.Step, env)
		if err != nil {
			return nil, err
		}
	}
	if step.Sign() == 0 {
		return nil, railerr.NewArithmeticError(n.Pos(), "..", "range step must not be zero", nil)
	}
	var elems []value.Value
	if step.Sign() > 0 {
		for cur := new(big.Rat).Set(start); cur.Cmp(end) < 0; cur.Add(cur, step) {
			elems = append(elems, &value.Number{Rat: new(big.Rat).Set(cur)})
		}
	} else {
		for cur := new(big.Rat).Set(start); cur.Cmp(end) > 0; cur.Add(cur, step) {
			elems = append(elems, &value.Number{Rat: new(big.Rat).Set(cur)})
		}
	}
	return value.NewArray(elems), nil
}

func evalRat(e ast.Expression, env *Env) (*big.Rat, error) {
	v, err := Eval(e, env)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*value.Number)
	if !ok {
		return nil, typeErrf(e.Pos(), "range", "range bound must be a number, got %s", v.Type())
	}
	return n.Rat, nil
}

func evalArrayTensor(n *ast.ArrayTensor, env *Env) (value.Value, error) {
	fill, err := Eval(n.Fill, env)
	if err != nil {
		return nil, err
	}
	shape := make([]int, len(n.Shape))
	for i, se := range n.Shape {
		d, err := evalIndex(se, env)
		if err != nil {
			return nil, err
		}
		if d < 0 {
			return nil, typeErrf(se.Pos(), "tensor", "shape dimension must be non-negative, got %d", d)
		}
		shape[i] = d
	}
	return buildTensor(shape, fill), nil
}

func buildTensor(shape []int, fill value.Value) value.Value {
	if len(shape) == 0 {
		return fill.DeepCopy()
	}
	elems := make([]value.Value, shape[0])
	for i := range elems {
		elems[i] = buildTensor(shape[1:], fill)
	}
	return value.NewArray(elems)
}
