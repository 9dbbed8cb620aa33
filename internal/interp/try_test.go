package interp

import (
	"errors"
	"testing"

	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/value"
)

func TestTryCommitAndReverse(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(0))
	stmt := &ast.TryStmt{
		Var:   "v",
		Range: &ast.ArrayRange{Start: numLit(1), End: numLit(6)}, // 1,2,3,4,5
		Body: []ast.Statement{
			&ast.ModOpStmt{Target: lookup("x"), Op: ast.ModAdd, Value: lookup("v")},
			&ast.CatchStmt{Cond: &ast.Binary{Op: ast.OpEq, X: lookup("x"), Y: numLit(5)}},
		},
	}
	if err := Exec(stmt, Forward, env); err != nil {
		t.Fatalf("forward: %v", err)
	}
	x, _ := env.Scope.Get("x")
	if x.String() != "5" {
		t.Fatalf("x = %s, want 5", x)
	}
	v, ok := env.Scope.Get("v")
	if !ok || v.String() != "5" {
		t.Fatalf("v should stay bound to the winning candidate, got %v", v)
	}

	if err := Exec(stmt, Reverse, env); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	x, _ = env.Scope.Get("x")
	if x.String() != "0" {
		t.Fatalf("x after reverse = %s, want 0", x)
	}
	if env.Scope.Has("v") {
		t.Fatal("v should be unlet by reversing the try")
	}
}

func TestTryRollsBackFailedCandidates(t *testing.T) {
	env := newTestEnv()
	env.Scope.Let("x", value.NewInt(0))
	stmt := &ast.TryStmt{
		Var:   "v",
		Range: &ast.ArrayRange{Start: numLit(1), End: numLit(4)}, // 1,2,3 — none reach 100
		Body: []ast.Statement{
			&ast.ModOpStmt{Target: lookup("x"), Op: ast.ModAdd, Value: lookup("v")},
			&ast.CatchStmt{Cond: &ast.Binary{Op: ast.OpEq, X: lookup("x"), Y: numLit(100)}},
		},
	}
	err := Exec(stmt, Forward, env)
	if err == nil {
		t.Fatal("expected TryExhausted")
	}
	var re *railerr.RailError
	if !errors.As(err, &re) {
		t.Fatalf("expected a *railerr.RailError, got %T: %v", err, err)
	}
	// every failed candidate must have been rolled back, leaving x untouched
	x, _ := env.Scope.Get("x")
	if x.String() != "0" {
		t.Fatalf("x = %s after an exhausted try, want 0 (fully rolled back)", x)
	}
	if env.Scope.Has("v") {
		t.Fatal("v must not remain bound after an exhausted try")
	}
}
