package typeinfer

import (
	"testing"

	"github.com/knorrfg/leviscript/internal/ast"
	"github.com/knorrfg/leviscript/internal/compileerr"
	"github.com/knorrfg/leviscript/internal/types"
)

type fakeRegistry struct {
	names map[string]types.Signature
	order []string
}

func newFakeRegistry() *fakeRegistry {
	variadic := types.AllTypes()
	echoSig := types.Signature{Variadic: &variadic, Result: types.Single(types.UnitType())}
	return &fakeRegistry{
		names: map[string]types.Signature{"echo": echoSig},
		order: []string{"echo"},
	}
}

func (f *fakeRegistry) Names() []string { return f.order }
func (f *fakeRegistry) Signature(name string) (types.Signature, bool) {
	sig, ok := f.names[name]
	return sig, ok
}

func TestInferIntLitAndLet(t *testing.T) {
	env, idx := Start(newFakeRegistry())
	let := &ast.Let{ID: 1, Name: "x", Rhs: &ast.IntLit{ID: 0, Value: 3}}
	block := &ast.Block{ID: 2, Phrases: []*ast.Phrase{{ID: 3, Expr: let}}}

	if err := InferBlock(block, env, idx); err != nil {
		t.Fatalf("infer: %v", err)
	}
	if !idx[AstID(1)].Equal(types.IntType()) {
		t.Fatalf("expected let to be typed Int, got %s", idx[AstID(1)])
	}
	if !idx[AstID(2)].Equal(types.IntType()) {
		t.Fatalf("expected block to be typed Int, got %s", idx[AstID(2)])
	}
}

func TestInferUndefinedSymbol(t *testing.T) {
	env, idx := Start(newFakeRegistry())
	sym := &ast.Symbol{ID: 0, Name: "nope"}
	block := &ast.Block{ID: 1, Phrases: []*ast.Phrase{{ID: 2, Expr: sym}}}

	err := InferBlock(block, env, idx)
	if err == nil {
		t.Fatalf("expected undefined symbol error")
	}
	ce, ok := compileerr.As(err)
	if !ok || ce.Kind != compileerr.UndefinedSymbol || ce.AstID != 0 {
		t.Fatalf("expected UndefinedSymbol at node 0, got %+v", ce)
	}
}

func TestInferCallNotCallable(t *testing.T) {
	env, idx := Start(newFakeRegistry())
	lit := &ast.IntLit{ID: 0, Value: 1}
	let := &ast.Let{ID: 1, Name: "x", Rhs: lit}
	call := &ast.Call{ID: 2, Callee: &ast.Symbol{ID: 3, Name: "x"}}
	block := &ast.Block{ID: 4, Phrases: []*ast.Phrase{
		{ID: 5, Expr: let},
		{ID: 6, Expr: call},
	}}

	err := InferBlock(block, env, idx)
	if err == nil {
		t.Fatalf("expected NotCallable error")
	}
	ce, ok := compileerr.As(err)
	if !ok || ce.Kind != compileerr.NotCallable {
		t.Fatalf("expected NotCallable, got %+v", ce)
	}
}

func TestInferEchoCall(t *testing.T) {
	env, idx := Start(newFakeRegistry())
	call := &ast.Call{
		ID:     1,
		Callee: &ast.Symbol{ID: 0, Name: "echo"},
		Args:   []ast.Expr{&ast.StrLit{ID: 2, Parts: []ast.StrLitPart{{Kind: ast.PurePart, Literal: "hi"}}}},
	}
	block := &ast.Block{ID: 3, Phrases: []*ast.Phrase{{ID: 4, Expr: call}}}

	if err := InferBlock(block, env, idx); err != nil {
		t.Fatalf("infer: %v", err)
	}
	if !idx[AstID(1)].Equal(types.UnitType()) {
		t.Fatalf("expected echo call to be typed Unit, got %s", idx[AstID(1)])
	}
}

func TestInferFnFragmentUsageDirected(t *testing.T) {
	env, idx := Start(newFakeRegistry())
	// fn(name) { echo name }
	body := &ast.Call{
		ID:     2,
		Callee: &ast.Symbol{ID: 3, Name: "echo"},
		Args:   []ast.Expr{&ast.Symbol{ID: 4, Name: "name"}},
	}
	frag := &ast.FnFragment{
		ID:   1,
		Args: []ast.ArgDef{{ID: 0, Name: "name"}},
		Body: body,
	}
	block := &ast.Block{ID: 5, Phrases: []*ast.Phrase{{ID: 6, Expr: frag}}}

	if err := InferBlock(block, env, idx); err != nil {
		t.Fatalf("infer: %v", err)
	}
	fragType := idx[AstID(1)]
	if fragType.Kind != types.KindCallable || fragType.CallableKind != types.Fragment {
		t.Fatalf("expected fragment to be typed Callable(Fragment), got %s", fragType)
	}
	// echo is variadic AllTypes, so the param falls back to Str.
	if !idx[AstID(0)].Equal(types.StrType()) {
		t.Fatalf("expected param defaulted to Str, got %s", idx[AstID(0)])
	}
}

func TestInferFnFragmentUnusedVar(t *testing.T) {
	env, idx := Start(newFakeRegistry())
	body := &ast.IntLit{ID: 1, Value: 0}
	frag := &ast.FnFragment{
		ID:   2,
		Args: []ast.ArgDef{{ID: 0, Name: "unused"}},
		Body: body,
	}
	block := &ast.Block{ID: 3, Phrases: []*ast.Phrase{{ID: 4, Expr: frag}}}

	err := InferBlock(block, env, idx)
	if err == nil {
		t.Fatalf("expected UnusedVar error")
	}
	ce, ok := compileerr.As(err)
	if !ok || ce.Kind != compileerr.UnusedVar {
		t.Fatalf("expected UnusedVar, got %+v", ce)
	}
}
