package interp

import (
	"math/big"
	"testing"

	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/runtime"
	"github.com/raillang/railway/internal/value"
)

func newTestEnv() *Env {
	registry := runtime.NewRegistry()
	hub := runtime.NewHub(nil)
	mod := &ast.Module{Name: "main", Functions: map[string]*ast.Function{}}
	registry.Add(&runtime.ModuleEnv{AST: mod, Globals: runtime.NewScope(nil)})
	thread := runtime.NewThread(0, 1, hub, registry)
	return &Env{Scope: runtime.NewScope(nil), Thread: thread, Module: mod}
}

func numLit(n int64) *ast.NumberLit { return &ast.NumberLit{Value: big.NewRat(n, 1)} }

func lookup(name string) *ast.Lookup { return &ast.Lookup{Name: name} }

// property 1 (spec.md §8): running a block forward then reversed restores
// the original scope.
func TestInverseLaw(t *testing.T) {
	env := newTestEnv()
	body := []ast.Statement{
		&ast.LetStmt{Name: "x", Value: numLit(5)},
		&ast.ModOpStmt{Target: lookup("x"), Op: ast.ModAdd, Value: numLit(3)},
		&ast.LetStmt{Name: "y", Value: numLit(0)},
		&ast.ModOpStmt{Target: lookup("y"), Op: ast.ModAdd, Value: lookup("x")},
	}
	if err := ExecBlock(body, Forward, env); err != nil {
		t.Fatalf("forward: %v", err)
	}
	x, _ := env.Scope.Get("x")
	if x.String() != "8" {
		t.Fatalf("x = %s, want 8", x.String())
	}
	if err := ExecBlock(body, Reverse, env); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if len(env.Scope.Names()) != 0 {
		t.Fatalf("scope not empty after full reverse: %v", env.Scope.Names())
	}
}

func TestUnletIntegrityCheck(t *testing.T) {
	env := newTestEnv()
	if err := env.Scope.Let("x", value.NewInt(5)); err != nil {
		t.Fatal(err)
	}
	stmt := &ast.UnletStmt{Name: "x", Value: numLit(6)}
	if err := Exec(stmt, Forward, env); err == nil {
		t.Fatal("expected a reversibility violation for a mismatched unlet")
	}
}

func TestStackPushPopSymmetry(t *testing.T) {
	env := newTestEnv()
	if err := env.Scope.Let("s", value.NewArray(nil)); err != nil {
		t.Fatal(err)
	}
	if err := env.Scope.Let("x", value.NewInt(42)); err != nil {
		t.Fatal(err)
	}
	push := &ast.PushStmt{Name: "x", Stack: lookup("s")}
	if err := Exec(push, Forward, env); err != nil {
		t.Fatalf("push: %v", err)
	}
	if env.Scope.Has("x") {
		t.Fatal("x should be consumed by push")
	}
	if err := Exec(push, Reverse, env); err != nil {
		t.Fatalf("reverse push (pop): %v", err)
	}
	x, ok := env.Scope.Get("x")
	if !ok || x.String() != "42" {
		t.Fatalf("x not restored by reversing push, got %v", x)
	}
}

func TestSwapInvolution(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("a", value.NewInt(1))
	env.Scope.Let("b", value.NewInt(2))
	swap := &ast.SwapStmt{A: lookup("a"), B: lookup("b")}
	if err := Exec(swap, Forward, env); err != nil {
		t.Fatal(err)
	}
	a, _ := env.Scope.Get("a")
	b, _ := env.Scope.Get("b")
	if a.String() != "2" || b.String() != "1" {
		t.Fatalf("swap did not exchange values: a=%s b=%s", a, b)
	}
	if err := Exec(swap, Forward, env); err != nil { // self-inverse
		t.Fatal(err)
	}
	a, _ = env.Scope.Get("a")
	b, _ = env.Scope.Get("b")
	if a.String() != "1" || b.String() != "2" {
		t.Fatalf("swap applied twice did not restore originals: a=%s b=%s", a, b)
	}
}

func TestModOpReversibility(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(10))
	stmt := &ast.ModOpStmt{Target: lookup("x"), Op: ast.ModMul, Value: numLit(3)}
	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatal(err)
	}
	x, _ := env.Scope.Get("x")
	if x.String() != "30" {
		t.Fatalf("x = %s, want 30", x)
	}
	if err := Exec(stmt, Reverse, env); err != nil {
		t.Fatal(err)
	}
	x, _ = env.Scope.Get("x")
	if x.String() != "10" {
		t.Fatalf("x after reverse modop = %s, want 10", x)
	}
}

func TestModOpSelfModificationRejected(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("a", value.NewArray([]value.Value{value.NewInt(1), value.NewInt(2)}))
	stmt := &ast.ModOpStmt{
		Target: &ast.Lookup{Name: "a", Index: []ast.Expression{numLit(0)}},
		Op:     ast.ModAdd,
		Value:  &ast.Lookup{Name: "a", Index: []ast.Expression{numLit(0)}},
	}
	if err := Exec(stmt, Forward, env); err == nil {
		t.Fatal("expected a reversibility violation for a self-modifying modop")
	}
}

func TestIfPostPredicateMismatch(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(1))
	// then-branch flips x to 0, but Post still claims "x != 0" — a mismatch.
	stmt := &ast.IfStmt{
		Cond: lookup("x"),
		Then: []ast.Statement{
			&ast.ModOpStmt{Target: lookup("x"), Op: ast.ModSub, Value: numLit(1)},
		},
		Post: lookup("x"),
	}
	if err := Exec(stmt, Forward, env); err == nil {
		t.Fatal("expected a reversibility violation for a post-predicate mismatch")
	}
}

func TestIfDefaultPostPredicate(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(1))
	// Guard doesn't change across the body, Post defaults to Cond, so no
	// branch may change the guard's own value here.
	stmt := &ast.IfStmt{
		Cond: lookup("x"),
		Then: []ast.Statement{
			&ast.LetStmt{Name: "y", Value: numLit(9)},
		},
		Post: nil,
	}
	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatalf("if with default post-predicate should succeed: %v", err)
	}
}

// TestPromoteRoundTrip exercises `promote a => b` (spec.md §4.4): a
// monodirectional name is removed and its value rebound under a
// bidirectional name; reversing the statement swaps From/To and undoes it.
func TestPromoteRoundTrip(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let(".mono", value.NewInt(5))
	stmt := &ast.PromoteStmt{From: ".mono", To: "pub"}

	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if env.Scope.Has(".mono") {
		t.Fatal(".mono should be removed by promote")
	}
	pub, ok := env.Scope.Get("pub")
	if !ok || pub.String() != "5" {
		t.Fatalf("pub = %v, want 5", pub)
	}

	if err := Exec(stmt, Reverse, env); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if env.Scope.Has("pub") {
		t.Fatal("pub should be removed by reversing the promote")
	}
	mono, ok := env.Scope.Get(".mono")
	if !ok || mono.String() != "5" {
		t.Fatalf(".mono after reverse = %v, want 5", mono)
	}
}

// TestDoYieldUndoRoundTrip exercises `do A yield B undo` (spec.md §4.4):
// A is a reversible preamble that introduces state B's statements may
// read; A is always inverted afterward regardless of direction, while B
// itself runs forward under a forward execution of the whole statement and
// reversed under a reverse execution — so the two directions leave
// opposite, and therefore mutually cancelling, marks on bidirectional
// state B touches.
func TestDoYieldUndoRoundTrip(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("effect", value.NewInt(0))
	stmt := &ast.DoYieldUndoStmt{
		Do:    []ast.Statement{&ast.LetStmt{Name: "tmp", Value: numLit(5)}},
		Yield: []ast.Statement{&ast.ModOpStmt{Target: lookup("effect"), Op: ast.ModAdd, Value: lookup("tmp")}},
	}

	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if env.Scope.Has("tmp") {
		t.Fatal("tmp (introduced by Do) should not survive past the statement")
	}
	effect, _ := env.Scope.Get("effect")
	if effect.String() != "5" {
		t.Fatalf("effect after forward = %s, want 5", effect)
	}

	if err := Exec(stmt, Reverse, env); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if env.Scope.Has("tmp") {
		t.Fatal("tmp should not survive past the reversed statement either")
	}
	effect, _ = env.Scope.Get("effect")
	if effect.String() != "0" {
		t.Fatalf("effect after forward+reverse = %s, want 0 (Yield ran in opposite directions)", effect)
	}
}

// TestBarrierIsSelfInverse exercises `barrier "name"` in a single-threaded
// frame (expected count 1): the rendezvous completes immediately and has
// no observable effect on scope state in either direction.
func TestBarrierIsSelfInverse(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(1))
	stmt := &ast.BarrierStmt{Name: "only"}
	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := Exec(stmt, Reverse, env); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	x, _ := env.Scope.Get("x")
	if x.String() != "1" {
		t.Fatalf("barrier must not mutate scope state, x = %s", x)
	}
}

// TestMutexRoundTrip exercises `mutex "name" Body xetum` (spec.md §4.4):
// forward runs Body forward under the lock; reversing it runs Body
// reversed under the same lock, restoring the pre-statement state.
func TestMutexRoundTrip(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(1))
	stmt := &ast.MutexStmt{
		Name: "critical",
		Body: []ast.Statement{
			&ast.ModOpStmt{Target: lookup("x"), Op: ast.ModAdd, Value: numLit(4)},
		},
	}
	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatalf("forward: %v", err)
	}
	x, _ := env.Scope.Get("x")
	if x.String() != "5" {
		t.Fatalf("x after forward = %s, want 5", x)
	}
	if err := Exec(stmt, Reverse, env); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	x, _ = env.Scope.Get("x")
	if x.String() != "1" {
		t.Fatalf("x after reverse = %s, want 1", x)
	}
}
