package parser

import (
	"fmt"

	"github.com/knorrfg/leviscript/internal/span"
)

// Error is a single parse failure, located by source position. The core
// never produces these itself (spec.md §1/§6: parsing is an external
// collaborator), but a concrete parser still needs some error shape to
// report against — this mirrors compileerr/vmerr's "typed error with a
// location" convention for consistency across the pipeline.
type Error struct {
	Pos span.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func newError(pos span.Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
