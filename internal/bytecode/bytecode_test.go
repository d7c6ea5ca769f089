package bytecode_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/knorrfg/leviscript/internal/builder"
	"github.com/knorrfg/leviscript/internal/builtins"
	"github.com/knorrfg/leviscript/internal/parser"
	"github.com/knorrfg/leviscript/internal/typeinfer"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	block, _, err := parser.Parse("<test>", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	reg := builtins.New()
	env, idx := typeinfer.Start(reg)
	if err := typeinfer.InferBlock(block, env, idx); err != nil {
		t.Fatalf("infer: %v", err)
	}

	code, debug, err := builder.Compile(block, idx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	return code.Disassemble(debug)
}

func TestDisassembleEcho(t *testing.T) {
	snaps.MatchSnapshot(t, "disassemble_echo", compile(t, `echo("hi")`))
}

func TestDisassembleLetAndStringInterpolation(t *testing.T) {
	snaps.MatchSnapshot(t, "disassemble_let_interp", compile(t, `{ let name = "world"; echo("hi $name") }`))
}

func TestDisassembleExecWithDynamicBin(t *testing.T) {
	snaps.MatchSnapshot(t, "disassemble_exec_dynamic_bin", compile(t, `{ let bin = "ls"; exec(bin, "-la") }`))
}
