package cmd

import (
	"fmt"

	"github.com/knorrfg/leviscript/internal/builder"
	"github.com/knorrfg/leviscript/internal/builtins"
	"github.com/knorrfg/leviscript/internal/bytecode"
	"github.com/knorrfg/leviscript/internal/parser"
	"github.com/knorrfg/leviscript/internal/typeinfer"
)

// compile runs the full front end (lex, parse, infer, build) over src and
// returns the program ready to execute or persist.
func compile(filename, src string) (bytecode.ByteCode, bytecode.DebugInformation, *builtins.Registry, error) {
	block, _, err := parser.Parse(filename, src)
	if err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, nil, fmt.Errorf("parse error: %w", err)
	}

	reg := builtins.New()
	env, idx := typeinfer.Start(reg)
	if err := typeinfer.InferBlock(block, env, idx); err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, nil, fmt.Errorf("type error: %w", err)
	}

	code, debug, err := builder.Compile(block, idx)
	if err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, nil, fmt.Errorf("compile error: %w", err)
	}

	return code, debug, reg, nil
}
