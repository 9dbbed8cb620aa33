package interp

import (
	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/value"
)

// slot is a resolved, mutable storage location: get reads the current
// value, set overwrites it in place. Only local (non-global) names can
// produce a slot, since globals are read-only by value (spec.md §4.9).
type slot struct {
	get func() value.Value
	set func(value.Value)
}

// resolveSlot resolves lookup to a mutable slot for modop/swap targets.
func resolveSlot(n *ast.Lookup, env *Env, construct string) (*slot, error) {
	if n.Module != "" {
		return nil, railerr.NewScopeError(n.Pos(), construct, "cannot assign through a module-qualified name")
	}
	ref, ok := env.Scope.Ref(n.Name)
	if !ok {
		if env.Scope.Has(n.Name) {
			return nil, railerr.NewScopeError(n.Pos(), construct, "global '"+n.Name+"' is immutable")
		}
		return nil, railerr.NewScopeError(n.Pos(), construct, "undefined name '"+n.Name+"'")
	}
	if len(n.Index) == 0 {
		return &slot{
			get: func() value.Value { return *ref },
			set: func(v value.Value) { *ref = v },
		}, nil
	}
	container := *ref
	for i := 0; i < len(n.Index)-1; i++ {
		idx, err := evalIndex(n.Index[i], env)
		if err != nil {
			return nil, err
		}
		arr, ok := container.(*value.Array)
		if !ok {
			return nil, railerr.NewTypeError(n.Pos(), construct, "index applied to a scalar", nil)
		}
		ni, err := value.NormalizeIndex(idx, len(arr.Elems))
		if err != nil {
			return nil, wrapScopeErr(n.Pos(), construct, err)
		}
		container = arr.Elems[ni]
	}
	arr, ok := container.(*value.Array)
	if !ok {
		return nil, railerr.NewTypeError(n.Pos(), construct, "index applied to a scalar", nil)
	}
	lastIdx, err := evalIndex(n.Index[len(n.Index)-1], env)
	if err != nil {
		return nil, err
	}
	ni, err := value.NormalizeIndex(lastIdx, len(arr.Elems))
	if err != nil {
		return nil, wrapScopeErr(n.Pos(), construct, err)
	}
	return &slot{
		get: func() value.Value { return arr.Elems[ni] },
		set: func(v value.Value) { arr.Elems[ni] = v },
	}, nil
}

// resolveArray resolves lookup to the *value.Array it names — used by
// push/pop, which mutate the array's element sequence directly rather than
// replacing a single slot.
func resolveArray(n *ast.Lookup, env *Env, construct string) (*value.Array, error) {
	s, err := resolveSlot(n, env, construct)
	if err != nil {
		return nil, err
	}
	v := s.get()
	arr, ok := v.(*value.Array)
	if !ok {
		return nil, railerr.NewTypeError(n.Pos(), construct, "expected an array, got "+v.Type(), nil)
	}
	return arr, nil
}

// lookupRootNames collects every Lookup's base name reachable from e,
// ignoring module qualification, used by the modop self-modification
// check (spec.md §4.2).
func lookupRootNames(e ast.Expression, out map[string]bool) {
	switch n := e.(type) {
	case *ast.Lookup:
		out[n.Name] = true
		for _, idx := range n.Index {
			lookupRootNames(idx, out)
		}
	case *ast.Unary:
		lookupRootNames(n.X, out)
	case *ast.Binary:
		lookupRootNames(n.X, out)
		lookupRootNames(n.Y, out)
	case *ast.ArrayLiteral:
		for _, el := range n.Elems {
			lookupRootNames(el, out)
		}
	case *ast.ArrayRange:
		lookupRootNames(n.Start, out)
		lookupRootNames(n.End, out)
		if n.Step != nil {
			lookupRootNames(n.Step, out)
		}
	case *ast.ArrayTensor:
		lookupRootNames(n.Fill, out)
		for _, d := range n.Shape {
			lookupRootNames(d, out)
		}
	case *ast.LenExpr:
		out[n.X.Name] = true
	}
}
