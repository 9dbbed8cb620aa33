// Package runner is the outermost piece of the interpreter core: given an
// already-assembled module registry, it evaluates every module's globals
// once, builds the initial thread context, and invokes the root module's
// `main` (spec.md §2 component 9, §4.9). Assembling that registry from
// `.rail` source files is an external collaborator's job (spec.md §1); this
// package only drives an in-memory one, the way `go-dws/cmd/dwscript/cmd`
// drives an already-parsed program rather than owning the parser itself.
package runner

import (
	"io"
	"sort"

	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/interp"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/railfmt"
	"github.com/raillang/railway/internal/runtime"
	"github.com/raillang/railway/internal/value"
)

// Config controls one run of the interpreter core.
type Config struct {
	// Registry holds every module reachable from Root, already parsed and
	// import-resolved.
	Registry *runtime.Registry
	// Root is the name of the module whose `main` function is the entry
	// point.
	Root string
	// Argv is bound to main's sole borrow-list parameter, conventionally
	// named "argv" (spec.md §6 CLI argument plumbing).
	Argv *value.Array
	// Threads is the thread count `main` runs under — visible to it and
	// anything it calls via `#threads`/`#TID`, but does not by itself spawn
	// goroutines; concurrency only begins at an explicit `call f{N}(...)`
	// (spec.md §5 "the runtime uses N threads only when an explicit call
	// f{N}(...) form is executed"). Defaults to 1.
	Threads int
	// Stdout receives print/println output. Defaults to io.Discard if nil.
	Stdout io.Writer
}

// Run evaluates every registered module's globals in declaration order,
// then executes Root's `main` forward to completion.
func Run(cfg Config) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	out := cfg.Stdout
	if out == nil {
		out = io.Discard
	}

	if err := evalAllGlobals(cfg.Registry); err != nil {
		return err
	}

	rootEnv, ok := cfg.Registry.Modules[cfg.Root]
	if !ok {
		return railerr.NewLoadErrorf("runner", "root module %q not found in registry", cfg.Root)
	}
	mainFn, ok := rootEnv.AST.Functions["main"]
	if !ok {
		return railerr.NewLoadErrorf("runner", "root module %q has no main function", cfg.Root)
	}

	hub := runtime.NewHub(railfmt.NewSink(out))
	thread := runtime.NewThread(0, cfg.Threads, hub, cfg.Registry)
	scope := runtime.NewScope(rootEnv.Globals)
	scope.ForceMono = mainFn.Mono()

	if err := bindArgv(scope, mainFn, cfg.Argv); err != nil {
		return err
	}

	env := &interp.Env{Scope: scope, Thread: thread, Module: rootEnv.AST}
	if err := interp.ExecBlock(mainFn.Body, interp.Forward, env); err != nil {
		return err
	}
	// argv is main's parameter, not a let of main's body: release it before
	// the drain check so it is not reported as a leaked name.
	if len(mainFn.Borrows) == 1 && scope.HasLocal(mainFn.Borrows[0]) {
		scope.Unlet(mainFn.Borrows[0], nil)
	}
	if leaked := scope.Drain(); len(leaked) > 0 {
		return railerr.NewScopeErrorf(nil, "main", "main returned with name(s) still bound: %v", leaked)
	}
	return nil
}

// bindArgv lets main's single borrow parameter (if it declares one) to
// argv, or requires main to declare none. main may not declare in-out
// parameters.
func bindArgv(scope *runtime.Scope, mainFn *ast.Function, argv *value.Array) error {
	if len(mainFn.InOuts) > 0 {
		return railerr.NewLoadErrorf("runner", "main must take no in-out parameters, has %d", len(mainFn.InOuts))
	}
	switch len(mainFn.Borrows) {
	case 0:
		return nil
	case 1:
		v := value.Value(value.NewArray(nil))
		if argv != nil {
			v = argv
		}
		if err := scope.Let(mainFn.Borrows[0], v); err != nil {
			return railerr.NewScopeError(nil, "main", err.Error())
		}
		return nil
	default:
		return railerr.NewLoadErrorf("runner", "main must take zero or one borrowed parameter, has %d", len(mainFn.Borrows))
	}
}

// evalAllGlobals evaluates each module's global block once, in declaration
// order, against that module's own (empty-globals) Scope — spec.md §4.9
// "globals are evaluated once, at load time". Modules are visited in name
// order for determinism; cross-module global references are not supported
// (globals are evaluated with no sibling-module Globals populated yet is
// acceptable since global initializers may not reference other modules'
// globals per spec.md §4.9).
func evalAllGlobals(reg *runtime.Registry) error {
	names := make([]string, 0, len(reg.Modules))
	for name := range reg.Modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		modEnv := reg.Modules[name]
		modEnv.Globals = runtime.NewScope(nil)
		thread := runtime.NewThread(0, 1, runtime.NewHub(railfmt.NewSink(io.Discard)), reg)
		env := &interp.Env{Scope: modEnv.Globals, Thread: thread, Module: modEnv.AST}
		for _, g := range modEnv.AST.Globals {
			v, err := interp.Eval(g.Value, env)
			if err != nil {
				return err
			}
			if err := modEnv.Globals.Let(g.Name, v); err != nil {
				return railerr.NewLoadError("globals", "module "+name+": "+err.Error(), err)
			}
		}
	}
	return nil
}
