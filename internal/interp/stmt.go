package interp

import (
	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/value"
)

// ExecBlock runs a sequence of statements under dir. Forward runs stmts in
// their written order; Reverse runs them in reverse order, each under
// Reverse — undoing C, then B, then A for a forward A;B;C (spec.md §8
// property 1).
func ExecBlock(stmts []ast.Statement, dir Direction, env *Env) error {
	if dir == Forward {
		for _, s := range stmts {
			if err := Exec(s, dir, env); err != nil {
				return err
			}
		}
		return nil
	}
	for i := len(stmts) - 1; i >= 0; i-- {
		if err := Exec(stmts[i], dir, env); err != nil {
			return err
		}
	}
	return nil
}

// Exec runs a single statement under dir, dispatching to the forward/
// reverse pair described by spec.md §4.4's table.
func Exec(s ast.Statement, dir Direction, env *Env) error {
	switch n := s.(type) {
	case *ast.Block:
		return ExecBlock(n.Stmts, dir, env)
	case *ast.LetStmt:
		return execLet(n, dir, env)
	case *ast.UnletStmt:
		return execUnlet(n, dir, env)
	case *ast.PushStmt:
		return execPush(n, dir, env)
	case *ast.PopStmt:
		return execPop(n, dir, env)
	case *ast.SwapStmt:
		return execSwap(n, env)
	case *ast.PromoteStmt:
		return execPromote(n, dir, env)
	case *ast.ModOpStmt:
		return execModOp(n, dir, env)
	case *ast.IfStmt:
		return execIf(n, dir, env)
	case *ast.LoopStmt:
		return execLoop(n, dir, env)
	case *ast.ForStmt:
		return execFor(n, dir, env)
	case *ast.BarrierStmt:
		env.Thread.Hub.Arrive(n.Name, env.Thread.N)
		return nil
	case *ast.MutexStmt:
		return execMutex(n, dir, env)
	case *ast.DoYieldUndoStmt:
		return execDoYieldUndo(n, dir, env)
	case *ast.TryStmt:
		return execTry(n, dir, env)
	case *ast.CatchStmt:
		// Only meaningful when unwound to by execTry; reaching here means a
		// catch statement ran outside of any enclosing try.
		return railerr.NewScopeError(n.Pos(), "catch", "catch used outside of a try block")
	case *ast.CallStmt:
		return execCall(n, dir, env)
	case *ast.PrintStmt:
		return execPrint(n, dir, env)
	default:
		return railerr.NewTypeError(s.Pos(), "statement", "unknown statement node", nil)
	}
}

func introduce(name string, valExpr ast.Expression, env *Env, construct string) error {
	var v value.Value
	if valExpr == nil {
		v = value.NewInt(0)
	} else {
		var err error
		v, err = Eval(valExpr, env)
		if err != nil {
			return err
		}
	}
	if err := env.Scope.Let(name, v); err != nil {
		return wrapScopeErr(nil, construct, err)
	}
	return nil
}

func checkAndRemove(name string, valExpr ast.Expression, env *Env, construct string) error {
	var expected value.Value
	if valExpr == nil {
		expected = value.NewInt(0)
	} else {
		var err error
		expected, err = Eval(valExpr, env)
		if err != nil {
			return err
		}
	}
	if _, err := env.Scope.Unlet(name, expected); err != nil {
		return wrapScopeErr(nil, construct, err)
	}
	return nil
}

func execLet(n *ast.LetStmt, dir Direction, env *Env) error {
	if dir == Forward {
		return introduce(n.Name, n.Value, env, "let")
	}
	return checkAndRemove(n.Name, n.Value, env, "let")
}

func execUnlet(n *ast.UnletStmt, dir Direction, env *Env) error {
	if dir == Forward {
		return checkAndRemove(n.Name, n.Value, env, "unlet")
	}
	return introduce(n.Name, n.Value, env, "unlet")
}

func execPush(n *ast.PushStmt, dir Direction, env *Env) error {
	if dir == Forward {
		v, ok := env.Scope.Get(n.Name)
		if !ok {
			return railerr.NewScopeError(n.Pos(), "push", "undefined name '"+n.Name+"'")
		}
		stack, err := resolveArray(n.Stack, env, "push")
		if err != nil {
			return err
		}
		stack.Elems = append(stack.Elems, v.DeepCopy())
		if _, err := env.Scope.Unlet(n.Name, nil); err != nil {
			return wrapScopeErr(n.Pos(), "push", err)
		}
		return nil
	}
	return popInto(n.Name, n.Stack, env, "push")
}

func execPop(n *ast.PopStmt, dir Direction, env *Env) error {
	if dir == Forward {
		return popInto(n.Name, n.Stack, env, "pop")
	}
	v, ok := env.Scope.Get(n.Name)
	if !ok {
		return railerr.NewScopeError(n.Pos(), "pop", "undefined name '"+n.Name+"'")
	}
	stack, err := resolveArray(n.Stack, env, "pop")
	if err != nil {
		return err
	}
	stack.Elems = append(stack.Elems, v.DeepCopy())
	if _, err := env.Scope.Unlet(n.Name, nil); err != nil {
		return wrapScopeErr(n.Pos(), "pop", err)
	}
	return nil
}

func popInto(name string, stackExpr *ast.Lookup, env *Env, construct string) error {
	stack, err := resolveArray(stackExpr, env, construct)
	if err != nil {
		return err
	}
	if len(stack.Elems) == 0 {
		return railerr.NewIndexError(stackExpr.Pos(), construct, "pop from an empty stack")
	}
	last := stack.Elems[len(stack.Elems)-1]
	stack.Elems = stack.Elems[:len(stack.Elems)-1]
	if err := env.Scope.Let(name, last); err != nil {
		return wrapScopeErr(stackExpr.Pos(), construct, err)
	}
	return nil
}

func execSwap(n *ast.SwapStmt, env *Env) error {
	sa, err := resolveSlot(n.A, env, "swap")
	if err != nil {
		return err
	}
	sb, err := resolveSlot(n.B, env, "swap")
	if err != nil {
		return err
	}
	a, b := sa.get(), sb.get()
	sa.set(b)
	sb.set(a)
	return nil
}

func execPromote(n *ast.PromoteStmt, dir Direction, env *Env) error {
	from, to := n.From, n.To
	if dir == Reverse {
		from, to = n.To, n.From
	}
	if err := env.Scope.Promote(from, to); err != nil {
		return wrapScopeErr(n.Pos(), "promote", err)
	}
	return nil
}

func execModOp(n *ast.ModOpStmt, dir Direction, env *Env) error {
	roots := map[string]bool{}
	lookupRootNames(n.Value, roots)
	if roots[n.Target.Name] {
		return railerr.NewReversibilityViolation(n.Pos(), "modop",
			"'"+n.Target.Name+"' appears on both sides of the modop: self-modification is not reversible")
	}
	op := n.Op
	if dir == Reverse {
		op = value.InverseModOp(n.Op)
		if op == "" {
			return railerr.NewReversibilityViolation(n.Pos(), "modop", "operator '"+n.Op+"' has no reverse")
		}
	}
	sl, err := resolveSlot(n.Target, env, "modop")
	if err != nil {
		return err
	}
	cur, ok := sl.get().(*value.Number)
	if !ok {
		return railerr.NewTypeError(n.Pos(), "modop", "modop target must be a number", nil)
	}
	rhs, err := Eval(n.Value, env)
	if err != nil {
		return err
	}
	rn, ok := rhs.(*value.Number)
	if !ok {
		return railerr.NewTypeError(n.Pos(), "modop", "modop operand must be a number", nil)
	}
	out, err := value.BinaryOp(op[:len(op)-1], cur, rn)
	if err != nil {
		return wrapScopeErr(n.Pos(), "modop", err)
	}
	sl.set(out)
	return nil
}

func execIf(n *ast.IfStmt, dir Direction, env *Env) error {
	post := n.Post
	if post == nil {
		post = n.Cond
	}
	if dir == Forward {
		cv, err := Eval(n.Cond, env)
		if err != nil {
			return err
		}
		cond := truthy(cv)
		branch := n.Else
		if cond {
			branch = n.Then
		}
		if err := ExecBlock(branch, dir, env); err != nil {
			return err
		}
		pv, err := Eval(post, env)
		if err != nil {
			return err
		}
		if truthy(pv) != cond {
			return railerr.NewReversibilityViolation(n.Pos(), "fi",
				"post-predicate does not match the guard's original truth value")
		}
		return nil
	}
	// Reverse: select the branch by the post-predicate (evaluated against
	// the current, post-body state), run it reversed, then check the guard
	// matches on the resulting, pre-body state.
	pv, err := Eval(post, env)
	if err != nil {
		return err
	}
	cond := truthy(pv)
	branch := n.Else
	if cond {
		branch = n.Then
	}
	if err := ExecBlock(branch, dir, env); err != nil {
		return err
	}
	cv, err := Eval(n.Cond, env)
	if err != nil {
		return err
	}
	if truthy(cv) != cond {
		return railerr.NewReversibilityViolation(n.Pos(), "if",
			"guard does not match the post-predicate's truth value")
	}
	return nil
}

func truthy(v value.Value) bool {
	if n, ok := v.(*value.Number); ok {
		return n.Truthy()
	}
	if a, ok := v.(*value.Array); ok {
		return len(a.Elems) != 0
	}
	return false
}

func execMutex(n *ast.MutexStmt, dir Direction, env *Env) error {
	tid := env.Thread.TID
	env.Thread.Hub.Lock(n.Name, tid)
	defer env.Thread.Hub.Unlock(n.Name, tid)
	return ExecBlock(n.Body, dir, env)
}

func execDoYieldUndo(n *ast.DoYieldUndoStmt, dir Direction, env *Env) error {
	if err := ExecBlock(n.Do, Forward, env); err != nil {
		return err
	}
	yieldDir := Forward
	if dir == Reverse {
		yieldDir = Reverse
	}
	if err := ExecBlock(n.Yield, yieldDir, env); err != nil {
		return err
	}
	return ExecBlock(n.Do, Reverse, env)
}

func execPrint(n *ast.PrintStmt, dir Direction, env *Env) error {
	if dir == Reverse {
		return nil // silent under reverse execution (spec.md §9 Open Question (c))
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		if a.Str != nil {
			parts[i] = *a.Str
			continue
		}
		v, err := Eval(a.Expr, env)
		if err != nil {
			return err
		}
		parts[i] = v.String()
	}
	env.Thread.Hub.Out.Write(parts, n.Newline)
	return nil
}
