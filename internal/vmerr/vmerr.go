// Package vmerr defines the runtime error taxonomy raised by the VM
// (spec.md §6, §7). Every error is fatal: the VM never tries to recover
// from a bytecode-corruption class error, it only gives the caller
// enough context (pc, and — once resolved through debug information —
// the originating AST id) to report a diagnostic and exit non-zero.
package vmerr

import (
	"errors"
	"fmt"

	"github.com/knorrfg/leviscript/internal/ast"
	"github.com/knorrfg/leviscript/internal/types"
)

// Kind discriminates the runtime error taxonomy.
type Kind int

const (
	Runtime Kind = iota
	TypeError
	UnexpectedStackEntry
	UnknownBuiltIn
	StackEmpty
	NonExecutableOpcode
	UnexpectedOpcode
)

func (k Kind) String() string {
	switch k {
	case Runtime:
		return "Runtime"
	case TypeError:
		return "TypeError"
	case UnexpectedStackEntry:
		return "UnexpectedStackEntry"
	case UnknownBuiltIn:
		return "UnknownBuiltIn"
	case StackEmpty:
		return "StackEmpty"
	case NonExecutableOpcode:
		return "NonExecutableOpcode"
	case UnexpectedOpcode:
		return "UnexpectedOpcode"
	default:
		return "RuntimeError(?)"
	}
}

// Error is a single typed runtime error. Pc is the byte offset the
// dispatch loop was at when the error occurred; AstID is filled in by
// the caller once it has been resolved through the debug information's
// offset→index→ast-id chain (it is left zero by the VM itself, which
// only knows the pc).
type Error struct {
	Kind     Kind
	Pc       int
	AstID    ast.ID
	HasAstID bool
	Msg      string
	Accessed types.DataType // TypeError
	Expected types.TypeSet  // TypeError
}

func (e *Error) Error() string {
	loc := fmt.Sprintf("pc=%d", e.Pc)
	if e.HasAstID {
		loc = fmt.Sprintf("node %d (pc=%d)", e.AstID, e.Pc)
	}
	switch e.Kind {
	case Runtime:
		return fmt.Sprintf("runtime error at %s: %s", loc, e.Msg)
	case TypeError:
		return fmt.Sprintf("type error at %s: accessed %s, expected %s", loc, e.Accessed, e.Expected)
	case UnexpectedStackEntry:
		return fmt.Sprintf("unexpected stack entry at %s", loc)
	case UnknownBuiltIn:
		return fmt.Sprintf("unknown built-in %q at %s", e.Msg, loc)
	case StackEmpty:
		return fmt.Sprintf("stack empty at %s", loc)
	case NonExecutableOpcode:
		return fmt.Sprintf("non-executable opcode at %s", loc)
	case UnexpectedOpcode:
		return fmt.Sprintf("unexpected opcode at %s: %s", loc, e.Msg)
	default:
		return fmt.Sprintf("vm error at %s", loc)
	}
}

// WithAstID returns a copy of e annotated with the resolved AST id, used
// once the dispatch loop has walked the debug information's
// offset→index→ast-id chain to locate the originating node (spec.md
// §4.6's failure semantics for built-ins, and §7 generally).
func (e *Error) WithAstID(id ast.ID) *Error {
	cp := *e
	cp.AstID = id
	cp.HasAstID = true
	return &cp
}

func NewRuntime(pc int, msg string) *Error {
	return &Error{Kind: Runtime, Pc: pc, Msg: msg}
}

func NewTypeError(pc int, accessed types.DataType, expected types.TypeSet) *Error {
	return &Error{Kind: TypeError, Pc: pc, Accessed: accessed, Expected: expected}
}

func NewUnexpectedStackEntry(pc int) *Error {
	return &Error{Kind: UnexpectedStackEntry, Pc: pc}
}

func NewUnknownBuiltIn(pc int, name string) *Error {
	return &Error{Kind: UnknownBuiltIn, Pc: pc, Msg: name}
}

func NewStackEmpty(pc int) *Error {
	return &Error{Kind: StackEmpty, Pc: pc}
}

func NewNonExecutableOpcode(pc int) *Error {
	return &Error{Kind: NonExecutableOpcode, Pc: pc}
}

func NewUnexpectedOpcode(pc int, msg string) *Error {
	return &Error{Kind: UnexpectedOpcode, Pc: pc, Msg: msg}
}

// As reports whether err (or something it wraps) is a *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
