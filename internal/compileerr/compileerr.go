// Package compileerr defines the compile-time error taxonomy: errors
// raised by type inference and the bytecode builder, each carrying the
// AST id of the offending node so a caller can render a diagnostic
// against the span table (spec.md §6, §7).
package compileerr

import (
	"errors"
	"fmt"

	"github.com/knorrfg/leviscript/internal/ast"
	"github.com/knorrfg/leviscript/internal/types"
)

// Kind discriminates the compile-time error taxonomy.
type Kind int

const (
	UndefinedSymbol Kind = iota
	NotCallable
	UnusedVar
	TypeMismatch
	CompilerBug
)

func (k Kind) String() string {
	switch k {
	case UndefinedSymbol:
		return "UndefinedSymbol"
	case NotCallable:
		return "NotCallable"
	case UnusedVar:
		return "UnusedVar"
	case TypeMismatch:
		return "TypeMismatch"
	case CompilerBug:
		return "CompilerBug"
	default:
		return "CompileError(?)"
	}
}

// Error is a single typed compile-time error.
type Error struct {
	Kind     Kind
	AstID    ast.ID
	Name     string       // UndefinedSymbol, UnusedVar
	Expected types.TypeSet // TypeMismatch
	Found    types.DataType
	Msg      string // CompilerBug
}

func (e *Error) Error() string {
	switch e.Kind {
	case UndefinedSymbol:
		return fmt.Sprintf("undefined symbol %q (node %d)", e.Name, e.AstID)
	case NotCallable:
		return fmt.Sprintf("not callable (node %d)", e.AstID)
	case UnusedVar:
		return fmt.Sprintf("unused parameter %q (node %d)", e.Name, e.AstID)
	case TypeMismatch:
		return fmt.Sprintf("type mismatch at node %d: expected %s, found %s", e.AstID, e.Expected, e.Found)
	case CompilerBug:
		return fmt.Sprintf("compiler bug at node %d: %s", e.AstID, e.Msg)
	default:
		return fmt.Sprintf("compile error at node %d", e.AstID)
	}
}

func NewUndefinedSymbol(id ast.ID, name string) *Error {
	return &Error{Kind: UndefinedSymbol, AstID: id, Name: name}
}

func NewNotCallable(id ast.ID) *Error {
	return &Error{Kind: NotCallable, AstID: id}
}

func NewUnusedVar(id ast.ID, name string) *Error {
	return &Error{Kind: UnusedVar, AstID: id, Name: name}
}

func NewTypeMismatch(id ast.ID, expected types.TypeSet, found types.DataType) *Error {
	return &Error{Kind: TypeMismatch, AstID: id, Expected: expected, Found: found}
}

func NewCompilerBug(id ast.ID, msg string) *Error {
	return &Error{Kind: CompilerBug, AstID: id, Msg: msg}
}

// As reports whether err (or something it wraps) is a *Error, mirroring
// the standard errors.As pattern callers already expect.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
