package interp

import (
	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/value"
)

// execTry runs `try(Var in Range) Body yrt` (spec.md §4.5). Forward
// searches Range for a candidate value of Var such that walking Body up to
// its first CatchStmt leaves that catch's condition true; a candidate whose
// catch condition is false is rolled back via Scope.Snapshot/Restore before the next candidate is
// tried. Exhausting Range without a match raises TryExhausted.
//
// Reverse assumes Var is already bound (the try's forward run left it let
// at scope exit) and undoes exactly the prefix that committed: the
// statements before Body's first CatchStmt, run in reverse, followed by an
// unlet of Var. This implementation supports one CatchStmt per try body;
// see DESIGN.md.
func execTry(n *ast.TryStmt, dir Direction, env *Env) error {
	prefix, catch, ok := splitAtFirstCatch(n.Body)
	if !ok {
		return railerr.NewScopeError(n.Pos(), "try", "try body has no catch")
	}

	if dir == Reverse {
		if !env.Scope.Has(n.Var) {
			return railerr.NewScopeError(n.Pos(), "try", "undefined name '"+n.Var+"' reversing a try")
		}
		if err := ExecBlock(prefix, Reverse, env); err != nil {
			return err
		}
		if _, err := env.Scope.Unlet(n.Var, nil); err != nil {
			return wrapScopeErr(n.Pos(), "try", err)
		}
		return nil
	}

	rv, err := Eval(n.Range, env)
	if err != nil {
		return err
	}
	arr, ok := rv.(*value.Array)
	if !ok {
		return railerr.NewTypeError(n.Pos(), "try", "range must be an array", nil)
	}

	for _, cand := range arr.Elems {
		snap := env.Scope.Snapshot()
		if err := env.Scope.Let(n.Var, cand.DeepCopy()); err != nil {
			env.Scope.Restore(snap)
			return wrapScopeErr(n.Pos(), "try", err)
		}
		if err := ExecBlock(prefix, Forward, env); err != nil {
			return err
		}
		cv, err := Eval(catch.Cond, env)
		if err != nil {
			return err
		}
		if truthy(cv) {
			return nil // committed: Var stays bound, prefix's mutations stay
		}
		env.Scope.Restore(snap)
	}
	return railerr.NewTryExhausted(n.Pos(), "try", "no candidate in range satisfied the catch condition")
}

// splitAtFirstCatch scans the top-level statements of body (flattening
// nested Blocks) and splits it at the first CatchStmt found.
func splitAtFirstCatch(body []ast.Statement) (prefix []ast.Statement, catch *ast.CatchStmt, ok bool) {
	for _, s := range body {
		switch n := s.(type) {
		case *ast.CatchStmt:
			return prefix, n, true
		case *ast.Block:
			inner, c, found := splitAtFirstCatch(n.Stmts)
			if found {
				return append(prefix, inner...), c, true
			}
			prefix = append(prefix, n.Stmts...)
		default:
			prefix = append(prefix, s)
		}
	}
	return prefix, nil, false
}
