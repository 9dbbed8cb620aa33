package interp

import (
	"testing"

	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/runtime"
	"github.com/raillang/railway/internal/value"
)

// newTestRegistryEnv builds an Env backed by a registry containing one
// module ("main", the caller) and a callee module "lib" with two functions:
// add, which increments its sole in-out parameter by one, and mark, which
// increments the element of its in-out array at the calling thread's TID.
func newTestRegistryEnv() *Env {
	registry := runtime.NewRegistry()

	libMod := &ast.Module{
		Name: "lib",
		Functions: map[string]*ast.Function{
			"add": {
				Name:   "add",
				InOuts: []string{"n"},
				Body: []ast.Statement{
					&ast.ModOpStmt{Target: lookup("n"), Op: ast.ModAdd, Value: numLit(1)},
				},
			},
			"mark": {
				Name:   "mark",
				InOuts: []string{"arr"},
				Body: []ast.Statement{
					&ast.ModOpStmt{
						Target: &ast.Lookup{Name: "arr", Index: []ast.Expression{&ast.ThreadIDExpr{}}},
						Op:     ast.ModAdd,
						Value:  numLit(1),
					},
				},
			},
		},
	}
	registry.Add(&runtime.ModuleEnv{AST: libMod, Globals: runtime.NewScope(nil)})

	mainMod := &ast.Module{
		Name:    "main",
		Imports: map[string]string{"lib": "lib"},
	}
	registry.Add(&runtime.ModuleEnv{AST: mainMod, Globals: runtime.NewScope(nil)})

	hub := runtime.NewHub(nil)
	thread := runtime.NewThread(0, 1, hub, registry)
	env := &Env{Scope: runtime.NewScope(nil), Thread: thread, Module: mainMod}
	return env
}

func TestCallBindsInOutByAlias(t *testing.T) {
	env := newTestRegistryEnv()
	env.Scope.Let("x", value.NewInt(10))

	call := &ast.CallStmt{Module: "lib", Func: "add", Outs: []string{"x"}}
	if err := Exec(call, Forward, env); err != nil {
		t.Fatalf("call: %v", err)
	}
	x, _ := env.Scope.Get("x")
	if x.String() != "11" {
		t.Fatalf("x = %s, want 11 (callee should mutate caller storage by alias)", x)
	}
}

// TestUncallReversesCallee exercises spec.md §4.8: reversing a forward call
// runs the callee's body in Reverse, and so does an explicit uncall run
// forward.
func TestUncallReversesCallee(t *testing.T) {
	env := newTestRegistryEnv()
	env.Scope.Let("x", value.NewInt(10))

	call := &ast.CallStmt{Module: "lib", Func: "add", Outs: []string{"x"}}
	if err := Exec(call, Forward, env); err != nil {
		t.Fatalf("call: %v", err)
	}
	if err := Exec(call, Reverse, env); err != nil {
		t.Fatalf("reverse of call: %v", err)
	}
	x, _ := env.Scope.Get("x")
	if x.String() != "10" {
		t.Fatalf("x after call;uncall round trip = %s, want 10", x)
	}

	uncall := &ast.CallStmt{Module: "lib", Func: "add", Outs: []string{"x"}, Uncall: true}
	if err := Exec(uncall, Forward, env); err != nil {
		t.Fatalf("uncall: %v", err)
	}
	x, _ = env.Scope.Get("x")
	if x.String() != "9" {
		t.Fatalf("x after explicit uncall = %s, want 9 (body ran in Reverse)", x)
	}
}

func TestCallArityMismatch(t *testing.T) {
	env := newTestRegistryEnv()
	env.Scope.Let("x", value.NewInt(10))
	env.Scope.Let("y", value.NewInt(0))
	call := &ast.CallStmt{Module: "lib", Func: "add", Outs: []string{"x", "y"}}
	if err := Exec(call, Forward, env); err == nil {
		t.Fatal("expected a scope error for an in-out arity mismatch")
	}
}

// TestParallelCallFanOut exercises the `call f{N}(...)` form: each thread
// gets its own aliased storage view onto the same caller array but touches
// a distinct element (its own TID), so the fan-out is race-free and every
// slot must be marked exactly once.
func TestParallelCallFanOut(t *testing.T) {
	env := newTestRegistryEnv()
	env.Scope.Let("arr", value.NewArray([]value.Value{
		value.NewInt(0), value.NewInt(0), value.NewInt(0), value.NewInt(0),
	}))

	call := &ast.CallStmt{Module: "lib", Func: "mark", Outs: []string{"arr"}, Threads: numLit(4)}
	if err := Exec(call, Forward, env); err != nil {
		t.Fatalf("parallel call: %v", err)
	}
	arr, _ := env.Scope.Get("arr")
	a, ok := arr.(*value.Array)
	if !ok {
		t.Fatalf("arr is not an array: %v", arr)
	}
	for i, el := range a.Elems {
		if el.String() != "1" {
			t.Fatalf("arr[%d] = %s, want 1 (thread %d should have marked its own slot)", i, el, i)
		}
	}
}
