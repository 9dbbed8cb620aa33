package interp

import (
	"testing"

	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/value"
)

func eq(l ast.Expression, n int64) *ast.Binary {
	return &ast.Binary{Op: ast.OpEq, X: l, Y: numLit(n)}
}

// TestLoopRoundTrip exercises spec.md §8 property 5: a loop run forward then
// reversed restores the pre-loop state.
func TestLoopRoundTrip(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(1))
	stmt := &ast.LoopStmt{
		Entry: eq(lookup("x"), 1),
		Body: []ast.Statement{
			&ast.ModOpStmt{Target: lookup("x"), Op: ast.ModAdd, Value: numLit(1)},
		},
		Exit: eq(lookup("x"), 3),
	}
	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatalf("forward: %v", err)
	}
	x, _ := env.Scope.Get("x")
	if x.String() != "3" {
		t.Fatalf("x after forward loop = %s, want 3", x)
	}
	if err := Exec(stmt, Reverse, env); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	x, _ = env.Scope.Get("x")
	if x.String() != "1" {
		t.Fatalf("x after reverse loop = %s, want 1", x)
	}
}

func TestLoopEntryViolation(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(0))
	stmt := &ast.LoopStmt{
		Entry: eq(lookup("x"), 1), // false: x is 0
		Body: []ast.Statement{
			&ast.ModOpStmt{Target: lookup("x"), Op: ast.ModAdd, Value: numLit(1)},
		},
		Exit: eq(lookup("x"), 3),
	}
	if err := Exec(stmt, Forward, env); err == nil {
		t.Fatal("expected a reversibility violation when the entry predicate is false")
	}
}

// TestForRoundTrip exercises the for-range construct: forward accumulates
// sum over 0..3 (= 0+1+2 = 3), reverse walks the range backwards with the
// body reversed and restores sum to 0.
func TestForRoundTrip(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("sum", value.NewInt(0))
	stmt := &ast.ForStmt{
		Var:   "v",
		Range: &ast.ArrayRange{Start: numLit(0), End: numLit(3)},
		Body: []ast.Statement{
			&ast.ModOpStmt{Target: lookup("sum"), Op: ast.ModAdd, Value: lookup("v")},
		},
	}
	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatalf("forward: %v", err)
	}
	sum, _ := env.Scope.Get("sum")
	if sum.String() != "3" {
		t.Fatalf("sum after forward for = %s, want 3", sum)
	}
	if env.Scope.Has("v") {
		t.Fatal("loop variable v should not survive past the for statement")
	}
	if err := Exec(stmt, Reverse, env); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	sum, _ = env.Scope.Get("sum")
	if sum.String() != "0" {
		t.Fatalf("sum after reverse for = %s, want 0", sum)
	}
}
