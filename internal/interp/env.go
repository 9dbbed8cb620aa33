// Package interp is the reversible heart of the runtime: the expression
// evaluator (§4.3), the direction-parameterized statement evaluator
// (§4.4), the try/catch search (§4.5), and the call dispatcher (§4.8).
//
// Styled on go-dws/internal/interp: a single cohesive package, split across
// files by concern (env.go/expr.go/stmt.go/loop.go/try.go/call.go/errors.go)
// rather than go-dws's generated-visitor split, since this AST is small
// enough that a plain type switch is the right size of machinery (see
// DESIGN.md).
package interp

import (
	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/runtime"
)

// Env bundles the three things every Eval/Exec call needs: the current
// frame, the owning thread (for TID/#TID, barrier, mutex, and resolving
// imports), and the lexical module the currently-executing function
// belongs to (needed to resolve unqualified globals and `<module>.<name>`
// qualifiers against the right import table).
type Env struct {
	Scope  *runtime.Scope
	Thread *runtime.Thread
	Module *ast.Module
}

// WithScope returns a copy of e using a different Scope, keeping Thread and
// Module.
func (e *Env) WithScope(sc *runtime.Scope) *Env {
	return &Env{Scope: sc, Thread: e.Thread, Module: e.Module}
}

// WithModule returns a copy of e using a different Scope and a different
// module's lexical context, keeping Thread.
func (e *Env) WithModule(sc *runtime.Scope, mod *ast.Module) *Env {
	return &Env{Scope: sc, Thread: e.Thread, Module: mod}
}

// Direction selects forward or reverse statement semantics (spec.md §4.4).
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Forward {
		return Reverse
	}
	return Forward
}

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "reverse"
}
