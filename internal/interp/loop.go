package interp

import (
	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/value"
)

// execLoop runs `loop(Entry) Body pool(Exit)` per spec.md §4.4's precise
// loop-predicate semantics. Forward: Entry must hold before the first
// iteration; after each iteration, Exit is checked — true stops the loop,
// false means another iteration runs, and Entry must then be false (it may
// only ever hold at the very first iteration). Reverse swaps the two
// predicates' roles and runs Body reversed — the general reversible-while-
// loop rule: the inverse of Loop(Entry,B,Exit) is Loop(Exit,reverse(B),Entry).
func execLoop(n *ast.LoopStmt, dir Direction, env *Env) error {
	if dir == Forward {
		return runLoop(n.Entry, n.Exit, n.Body, Forward, env)
	}
	return runLoop(n.Exit, n.Entry, n.Body, Reverse, env)
}

// runLoop is the shared forward-shaped algorithm; on reverse execution the
// caller has already swapped which predicate gates entry and which gates
// the stopping condition.
func runLoop(start, stop ast.Expression, body []ast.Statement, bodyDir Direction, env *Env) error {
	sv, err := Eval(start, env)
	if err != nil {
		return err
	}
	if !truthy(sv) {
		return railerr.NewReversibilityViolation(start.Pos(), "loop", "loop entry predicate does not hold")
	}
	for {
		if err := ExecBlock(body, bodyDir, env); err != nil {
			return err
		}
		ev, err := Eval(stop, env)
		if err != nil {
			return err
		}
		if truthy(ev) {
			return nil
		}
		sv, err := Eval(start, env)
		if err != nil {
			return err
		}
		if truthy(sv) {
			return railerr.NewReversibilityViolation(start.Pos(), "loop",
				"entry predicate must be false once the exit predicate is false")
		}
	}
}

// execFor runs `for(Var in Range) Body rof`. Var is bound fresh each
// iteration and destroyed at its end; forward walks Range in order with
// Body forward, reverse walks Range in reverse order with Body reversed —
// so the very last forward iteration is the first one undone.
func execFor(n *ast.ForStmt, dir Direction, env *Env) error {
	rv, err := Eval(n.Range, env)
	if err != nil {
		return err
	}
	arr, ok := rv.(*value.Array)
	if !ok {
		return railerr.NewTypeError(n.Pos(), "for", "range must be an array", nil)
	}
	elems := arr.Elems
	if dir == Reverse {
		reversed := make([]value.Value, len(elems))
		for i, e := range elems {
			reversed[len(elems)-1-i] = e
		}
		elems = reversed
	}
	for _, el := range elems {
		if err := env.Scope.Let(n.Var, el.DeepCopy()); err != nil {
			return wrapScopeErr(n.Pos(), "for", err)
		}
		if err := ExecBlock(n.Body, dir, env); err != nil {
			return err
		}
		if _, err := env.Scope.Unlet(n.Var, nil); err != nil {
			return wrapScopeErr(n.Pos(), "for", err)
		}
	}
	return nil
}
