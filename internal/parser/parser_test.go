package parser

import (
	"testing"

	"github.com/knorrfg/leviscript/internal/ast"
)

func TestParseSimpleCall(t *testing.T) {
	block, table, err := Parse("<test>", `echo("hi")`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(block.Phrases) != 1 {
		t.Fatalf("expected 1 phrase, got %d", len(block.Phrases))
	}
	call, ok := block.Phrases[0].Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call, got %T", block.Phrases[0].Expr)
	}
	callee, ok := call.Callee.(*ast.Symbol)
	if !ok || callee.Name != "echo" {
		t.Fatalf("expected callee echo, got %#v", call.Callee)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(call.Args))
	}
	if table.Len() == 0 {
		t.Fatalf("expected span table to be populated")
	}
}

func TestParseLetAndAlias(t *testing.T) {
	block, _, err := Parse("<test>", `let a = "x"; let b = a`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(block.Phrases) != 2 {
		t.Fatalf("expected 2 phrases, got %d", len(block.Phrases))
	}
	second, ok := block.Phrases[1].Expr.(*ast.Let)
	if !ok {
		t.Fatalf("expected second phrase to be a Let, got %T", block.Phrases[1].Expr)
	}
	sym, ok := second.Rhs.(*ast.Symbol)
	if !ok || sym.Name != "a" {
		t.Fatalf("expected alias rhs to be symbol 'a', got %#v", second.Rhs)
	}
}

func TestParseBlockExprResultIsBareSymbol(t *testing.T) {
	block, _, err := Parse("<test>", `{ let s = "t"; s }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	blockExpr, ok := block.Phrases[0].Expr.(*ast.BlockExpr)
	if !ok {
		t.Fatalf("expected *ast.BlockExpr, got %T", block.Phrases[0].Expr)
	}
	if len(blockExpr.Block.Phrases) != 2 {
		t.Fatalf("expected 2 phrases inside block, got %d", len(blockExpr.Block.Phrases))
	}
	last := blockExpr.Block.Phrases[1].Expr
	sym, ok := last.(*ast.Symbol)
	if !ok || sym.Name != "s" {
		t.Fatalf("expected final phrase to be bare symbol 's', got %#v", last)
	}
}

func TestParseStringInterpolation(t *testing.T) {
	block, _, err := Parse("<test>", `echo("hello ${1}, $name")`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	call := block.Phrases[0].Expr.(*ast.Call)
	str, ok := call.Args[0].(*ast.StrLit)
	if !ok {
		t.Fatalf("expected *ast.StrLit arg, got %T", call.Args[0])
	}
	if len(str.Parts) != 4 {
		t.Fatalf("expected 4 parts (pure, subexpr, pure, symbol), got %d: %#v", len(str.Parts), str.Parts)
	}
	if str.Parts[0].Kind != ast.PurePart || str.Parts[0].Literal != "hello " {
		t.Fatalf("unexpected part 0: %#v", str.Parts[0])
	}
	if str.Parts[1].Kind != ast.SubExprPart {
		t.Fatalf("unexpected part 1: %#v", str.Parts[1])
	}
	if _, ok := str.Parts[1].SubExpr.(*ast.IntLit); !ok {
		t.Fatalf("expected sub-expr to be an IntLit, got %#v", str.Parts[1].SubExpr)
	}
	if str.Parts[3].Kind != ast.SymbolPart || str.Parts[3].Symbol.Name != "name" {
		t.Fatalf("unexpected part 3: %#v", str.Parts[3])
	}
}

func TestParseFragment(t *testing.T) {
	block, _, err := Parse("<test>", `let f = |x, y| echo(x)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	let := block.Phrases[0].Expr.(*ast.Let)
	frag, ok := let.Rhs.(*ast.FnFragment)
	if !ok {
		t.Fatalf("expected *ast.FnFragment, got %T", let.Rhs)
	}
	if len(frag.Args) != 2 || frag.Args[0].Name != "x" || frag.Args[1].Name != "y" {
		t.Fatalf("unexpected fragment args: %#v", frag.Args)
	}
}

func TestParseMissingClosingParenIsError(t *testing.T) {
	_, _, err := Parse("<test>", `echo("hi"`)
	if err == nil {
		t.Fatalf("expected a parse error for an unterminated call")
	}
}

func TestParseBoolAndFloatLiterals(t *testing.T) {
	block, _, err := Parse("<test>", `let a = 3.5; let b = #t`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a := block.Phrases[0].Expr.(*ast.Let)
	if _, ok := a.Rhs.(*ast.FloatLit); !ok {
		t.Fatalf("expected FloatLit, got %#v", a.Rhs)
	}
	b := block.Phrases[1].Expr.(*ast.Let)
	boolLit, ok := b.Rhs.(*ast.BoolLit)
	if !ok || !boolLit.Value {
		t.Fatalf("expected BoolLit(true), got %#v", b.Rhs)
	}
}
