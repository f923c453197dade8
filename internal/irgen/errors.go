package irgen

import (
	"errors"
	"fmt"

	"minicc/internal/ast"
	"minicc/internal/ir"
	"minicc/internal/source"
)

// Sentinels wrapped by InternalError. They mark generator invariants that a
// checked program never violates.
var (
	ErrUnknownVariable     = errors.New("unknown variable")
	ErrRedeclared          = errors.New("redeclared")
	ErrMissingTerminator   = ir.ErrMissingTerminator
	ErrDuplicateTerminator = errors.New("block already has a terminator")
	ErrUnsupported         = errors.New("unsupported construct")
	ErrTypeMismatch        = errors.New("type disagrees with checker")
)

// InternalError is a compiler defect, as opposed to an error in the user's
// program.
type InternalError struct {
	Func string
	Span source.Span
	Err  error
}

func (e *InternalError) Error() string {
	msg := fmt.Sprintf("internal error in %s: %v", e.Func, e.Err)
	if fn, line, col := e.Span.LocStart(); fn != "" {
		return fmt.Sprintf("%s:%d:%d: %s", fn, line, col, msg)
	}
	return msg
}

func (e *InternalError) Unwrap() error { return e.Err }

func internalErr(fn *ast.FuncDecl, at source.Span, sentinel error, detail string) *InternalError {
	err := sentinel
	if detail != "" {
		err = fmt.Errorf("%w: %s", sentinel, detail)
	}
	return &InternalError{Func: fn.Name, Span: at, Err: err}
}
