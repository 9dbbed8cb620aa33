// Package railerr implements the error taxonomy of spec.md §7, styled on
// go-dws's internal/interp/errors: a single error struct carrying a
// category, the source position, and the construct that raised it.
package railerr

import (
	"fmt"

	"github.com/raillang/railway/internal/ast"
)

// Kind is one of the §7 error categories.
type Kind string

const (
	KindReversibilityViolation Kind = "ReversibilityViolation"
	KindScopeError             Kind = "ScopeError"
	KindTypeError              Kind = "TypeError"
	KindIndexError             Kind = "IndexError"
	KindArithmeticError        Kind = "ArithmeticError"
	KindTryExhausted           Kind = "TryExhausted"
	KindLoadError              Kind = "LoadError"
	KindSyncError              Kind = "SyncError"
)

// RailError is the runtime error type surfaced to the caller of internal/interp
// and internal/runner. Errors abort the current thread immediately
// (spec.md §7 "Propagation").
type RailError struct {
	Kind      Kind
	Pos       *ast.Position
	Construct string // the statement/expression kind that raised it, e.g. "unlet"
	Message   string
	Err       error // wrapped cause, if any
}

func (e *RailError) Error() string {
	where := ""
	if e.Construct != "" {
		where = fmt.Sprintf(" in %s", e.Construct)
	}
	if e.Pos != nil {
		return fmt.Sprintf("%s error at %s%s: %s", e.Kind, e.Pos.String(), where, e.Message)
	}
	return fmt.Sprintf("%s error%s: %s", e.Kind, where, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *RailError) Unwrap() error { return e.Err }

func new_(kind Kind, pos *ast.Position, construct, message string, cause error) *RailError {
	return &RailError{Kind: kind, Pos: pos, Construct: construct, Message: message, Err: cause}
}

// NewReversibilityViolation reports a failed unlet check, fi/pool predicate
// mismatch, or overlapping modop read/write set.
func NewReversibilityViolation(pos *ast.Position, construct, message string) *RailError {
	return new_(KindReversibilityViolation, pos, construct, message, nil)
}

// NewReversibilityViolationf is the formatted variant.
func NewReversibilityViolationf(pos *ast.Position, construct, format string, args ...any) *RailError {
	return new_(KindReversibilityViolation, pos, construct, fmt.Sprintf(format, args...), nil)
}

// NewScopeError reports an undefined lookup, duplicate let, mono-rule
// violation, or non-empty callee frame on return.
func NewScopeError(pos *ast.Position, construct, message string) *RailError {
	return new_(KindScopeError, pos, construct, message, nil)
}

// NewScopeErrorf is the formatted variant.
func NewScopeErrorf(pos *ast.Position, construct, format string, args ...any) *RailError {
	return new_(KindScopeError, pos, construct, fmt.Sprintf(format, args...), nil)
}

// NewTypeError reports a numeric op on an array, indexing a scalar, # of a
// scalar, or a non-integer exponent on a rational base.
func NewTypeError(pos *ast.Position, construct, message string, cause error) *RailError {
	return new_(KindTypeError, pos, construct, message, cause)
}

// NewIndexError reports a positive out-of-range array index.
func NewIndexError(pos *ast.Position, construct, message string) *RailError {
	return new_(KindIndexError, pos, construct, message, nil)
}

// NewArithmeticError reports division by zero or a non-integer XOR/AND/OR
// operand.
func NewArithmeticError(pos *ast.Position, construct, message string, cause error) *RailError {
	return new_(KindArithmeticError, pos, construct, message, cause)
}

// NewTryExhausted reports a `try` that walked its whole range with no
// `catch` firing.
func NewTryExhausted(pos *ast.Position, construct, message string) *RailError {
	return new_(KindTryExhausted, pos, construct, message, nil)
}

// NewLoadError reports a missing module, file, or CLI flag.
func NewLoadError(construct, message string, cause error) *RailError {
	return new_(KindLoadError, nil, construct, message, cause)
}

// NewLoadErrorf is the formatted variant.
func NewLoadErrorf(construct, format string, args ...any) *RailError {
	return new_(KindLoadError, nil, construct, fmt.Sprintf(format, args...), nil)
}

// NewSyncError reports a programmer-visible synchronization impossibility,
// e.g. a barrier whose expected count could be detected as inconsistent.
func NewSyncError(pos *ast.Position, construct, message string) *RailError {
	return new_(KindSyncError, pos, construct, message, nil)
}
