package interp

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/runtime"
)

// execCall runs `(outs) <= call f{threads}(args)` / `uncall` (spec.md
// §4.8). Args bind by alias to fn's borrow list, Outs bind by alias to its
// in-out list — the callee sees the caller's own storage, not a copy. A
// single call runs fn's body once on the caller's own Thread; the parallel form `call f{N}(...)` runs
// N independent threads concurrently, each with its own Scope aliased to
// the same caller storage and its own Thread identity, fanned out with
// errgroup (spec.md §4.8 "parallel calls"). Running this statement under
// Reverse direction (the enclosing block is being undone) toggles
// call/uncall: a forward `call` is undone by running the body in Reverse,
// a forward `uncall` is undone by running it Forward.
func execCall(n *ast.CallStmt, dir Direction, env *Env) error {
	calleeModEnv, ok := env.Thread.Registry.Resolve(env.Module, n.Module)
	if !ok {
		return railerr.NewScopeError(n.Pos(), "call", "undefined module '"+n.Module+"'")
	}
	fn, ok := calleeModEnv.AST.Functions[n.Func]
	if !ok {
		name := n.Func
		if n.Module != "" {
			name = n.Module + "." + name
		}
		return railerr.NewScopeError(n.Pos(), "call", "undefined function '"+name+"'")
	}
	calleeMod := calleeModEnv.AST
	if len(n.Args) != len(fn.Borrows) {
		return railerr.NewScopeErrorf(n.Pos(), "call", "%s expects %d borrowed argument(s), got %d",
			fn.Name, len(fn.Borrows), len(n.Args))
	}
	if len(n.Outs) != len(fn.InOuts) {
		return railerr.NewScopeErrorf(n.Pos(), "call", "%s expects %d in-out argument(s), got %d",
			fn.Name, len(fn.InOuts), len(n.Outs))
	}

	threadCount := 1
	if n.Threads != nil {
		tv, err := Eval(n.Threads, env)
		if err != nil {
			return err
		}
		tc, err := toInt(n.Threads.Pos(), tv)
		if err != nil {
			return err
		}
		if tc < 1 {
			return railerr.NewScopeError(n.Pos(), "call", "thread count must be at least 1")
		}
		threadCount = tc
	}

	uncall := n.Uncall
	if dir == Reverse {
		uncall = !uncall
	}
	bodyDir := Forward
	if uncall {
		bodyDir = Reverse
	}

	roots := make([]*runtime.Entry, 0, len(n.Args)+len(n.Outs))
	for _, name := range n.Args {
		r, ok := env.Scope.ResolveRoot(name)
		if !ok {
			return railerr.NewScopeError(n.Pos(), "call", "undefined name '"+name+"' passed to "+fn.Name)
		}
		roots = append(roots, r)
	}
	for _, name := range n.Outs {
		r, ok := env.Scope.ResolveRoot(name)
		if !ok {
			return railerr.NewScopeError(n.Pos(), "call", "undefined name '"+name+"' passed to "+fn.Name)
		}
		roots = append(roots, r)
	}

	run := func(tid int) error {
		calleeScope := runtime.NewScope(calleeModEnv.Globals)
		calleeScope.ForceMono = fn.Mono()
		for i, pname := range fn.Borrows {
			if err := calleeScope.BindAlias(pname, roots[i]); err != nil {
				return wrapScopeErr(n.Pos(), "call", err)
			}
		}
		for i, pname := range fn.InOuts {
			if err := calleeScope.BindAlias(pname, roots[len(n.Args)+i]); err != nil {
				return wrapScopeErr(n.Pos(), "call", err)
			}
		}
		calleeThread := env.Thread
		if n.Threads != nil {
			calleeThread = runtime.NewThread(tid, threadCount, env.Thread.Hub, env.Thread.Registry)
		}
		calleeEnv := &Env{Scope: calleeScope, Thread: calleeThread, Module: calleeMod}

		if err := ExecBlock(fn.Body, bodyDir, calleeEnv); err != nil {
			return err
		}
		if leaked := calleeScope.Drain(); len(leaked) > 0 {
			return railerr.NewScopeErrorf(n.Pos(), "call",
				"%s returned with name(s) still bound: %v", fn.Name, leaked)
		}
		return nil
	}

	if threadCount == 1 {
		return run(0)
	}

	g, _ := errgroup.WithContext(context.Background())
	for tid := 0; tid < threadCount; tid++ {
		g.Go(func() error { return run(tid) })
	}
	return g.Wait()
}
