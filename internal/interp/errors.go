package interp

import (
	"errors"
	"fmt"

	"github.com/raillang/railway/internal/ast"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/runtime"
	"github.com/raillang/railway/internal/value"
)

// wrapScopeErr turns a runtime/value sentinel error into a positional
// railerr.RailError, classifying it per spec.md §7.
func wrapScopeErr(pos *ast.Position, construct string, err error) error {
	if err == nil {
		return nil
	}
	var re *railerr.RailError
	if errors.As(err, &re) {
		return err // already classified
	}
	switch {
	case errors.Is(err, runtime.ErrUnletMismatch):
		return railerr.NewReversibilityViolation(pos, construct, err.Error())
	case errors.Is(err, runtime.ErrDuplicateLet),
		errors.Is(err, runtime.ErrUndefinedName),
		errors.Is(err, runtime.ErrImmutableGlobal):
		return railerr.NewScopeError(pos, construct, err.Error())
	case errors.Is(err, value.ErrScalarLength):
		return railerr.NewTypeError(pos, construct, "# applied to a scalar", err)
	case errors.Is(err, value.ErrScalarIndex):
		return railerr.NewTypeError(pos, construct, "index applied to a scalar", err)
	case errors.Is(err, value.ErrIndexOutOfRange):
		return railerr.NewIndexError(pos, construct, "index out of range")
	case errors.Is(err, value.ErrDivisionByZero):
		return railerr.NewArithmeticError(pos, construct, "division by zero", err)
	case errors.Is(err, value.ErrNonIntegerOperand):
		return railerr.NewArithmeticError(pos, construct, "bitwise operator requires an integer operand", err)
	case errors.Is(err, value.ErrNonIntegerExponent):
		return railerr.NewTypeError(pos, construct, "exponent must be an integer", err)
	case errors.Is(err, value.ErrTypeMismatch):
		return railerr.NewTypeError(pos, construct, "operation not defined for this value's type", err)
	default:
		return railerr.NewTypeError(pos, construct, err.Error(), err)
	}
}

func typeErrf(pos *ast.Position, construct, format string, args ...any) error {
	return railerr.NewTypeError(pos, construct, fmt.Sprintf(format, args...), nil)
}
