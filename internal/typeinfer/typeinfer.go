// Package typeinfer implements the bottom-up type inference pass of
// spec.md §4.1: it threads an (Environment, TypeIndex) pair through the
// AST left-to-right, seeding the environment from an external built-in
// registry and assigning a types.DataType to every AST id it visits.
//
// Grounded on
// _examples/original_source/leviscript-lib/src/type_inference.rs, with
// FnFragment's usage-directed mining implemented per spec.md §4.1 since
// the original leaves that case a stub (`todo!()`).
package typeinfer

import (
	"github.com/knorrfg/leviscript/internal/ast"
	"github.com/knorrfg/leviscript/internal/compileerr"
	"github.com/knorrfg/leviscript/internal/types"
)

// EnvID is a tagged union of an AST id and a built-in id (spec.md §3).
type EnvID struct {
	BuiltIn bool
	ID      uint32
}

func AstID(id ast.ID) EnvID     { return EnvID{ID: id} }
func BuiltInID(id uint32) EnvID { return EnvID{BuiltIn: true, ID: id} }

// TypeIndex maps an EnvID to its inferred type.
type TypeIndex map[EnvID]types.DataType

// Environment is a scoped mapping of name to EnvID, shadowed by inner
// scopes and restored on scope exit.
type Environment struct {
	scopes []map[string]EnvID
}

// NewEnvironment creates an environment with a single empty scope.
func NewEnvironment() *Environment {
	return &Environment{scopes: []map[string]EnvID{{}}}
}

// Push opens a new, empty inner scope.
func (e *Environment) Push() {
	e.scopes = append(e.scopes, map[string]EnvID{})
}

// Pop discards the innermost scope and its bindings.
func (e *Environment) Pop() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Add binds name to id in the innermost scope.
func (e *Environment) Add(name string, id EnvID) {
	e.scopes[len(e.scopes)-1][name] = id
}

// Find looks up name starting from the innermost scope outward.
func (e *Environment) Find(name string) (EnvID, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if id, ok := e.scopes[i][name]; ok {
			return id, true
		}
	}
	return EnvID{}, false
}

// Registry is the external built-in function registry (spec.md §4.6):
// a stable enumeration of names plus a name→signature lookup, used only
// to seed the initial environment.
type Registry interface {
	Names() []string
	Signature(name string) (types.Signature, bool)
}

// Start seeds a fresh environment and type index with BuiltInID entries
// for every name in reg, each typed Callable(BuiltIn, signature).
func Start(reg Registry) (*Environment, TypeIndex) {
	env := NewEnvironment()
	idx := TypeIndex{}
	for i, name := range reg.Names() {
		sig, ok := reg.Signature(name)
		if !ok {
			panic("typeinfer: no signature found for built-in: " + name)
		}
		id := BuiltInID(uint32(i))
		env.Add(name, id)
		idx[id] = types.CallableType(types.BuiltIn, sig)
	}
	return env, idx
}

// InferBlock infers types for every node reachable from block under env,
// recording results in idx. It mutates env in place; callers that need
// the bindings introduced by block confined to a nested scope should
// Push/Pop around the call themselves.
func InferBlock(block *ast.Block, env *Environment, idx TypeIndex) error {
	var lastID ast.ID
	have := false
	for _, phrase := range block.Phrases {
		if err := inferExpr(phrase.Expr, env, idx); err != nil {
			return err
		}
		idx[AstID(phrase.ID)] = idx[AstID(phrase.Expr.NodeID())]
		lastID = phrase.ID
		have = true
	}
	if have {
		idx[AstID(block.ID)] = idx[AstID(lastID)]
	} else {
		idx[AstID(block.ID)] = types.UnitType()
	}
	return nil
}

func inferExpr(expr ast.Expr, env *Environment, idx TypeIndex) error {
	switch n := expr.(type) {
	case *ast.IntLit:
		idx[AstID(n.ID)] = types.IntType()
		return nil
	case *ast.FloatLit:
		idx[AstID(n.ID)] = types.FloatType()
		return nil
	case *ast.BoolLit:
		idx[AstID(n.ID)] = types.BoolType()
		return nil
	case *ast.StrLit:
		return inferStrLit(n, env, idx)
	case *ast.Symbol:
		return inferSymbol(n, env, idx)
	case *ast.Let:
		return inferLet(n, env, idx)
	case *ast.Call:
		return inferCall(n, env, idx)
	case *ast.FnFragment:
		return inferFnFragment(n, env, idx)
	case *ast.BlockExpr:
		return inferBlockExpr(n, env, idx)
	default:
		return compileerr.NewCompilerBug(expr.NodeID(), "inferExpr: unhandled expr type")
	}
}

func inferStrLit(n *ast.StrLit, env *Environment, idx TypeIndex) error {
	// StrLit's own type is always Str, regardless of interpolation
	// (spec.md §9 open-question resolution: "the correct behavior is
	// str"), but every interpolated part still needs its own type
	// assigned so the builder can lower it.
	for _, part := range n.Parts {
		switch part.Kind {
		case ast.SymbolPart:
			if err := inferSymbol(part.Symbol, env, idx); err != nil {
				return err
			}
		case ast.SubExprPart:
			if err := inferExpr(part.SubExpr, env, idx); err != nil {
				return err
			}
		}
	}
	idx[AstID(n.ID)] = types.StrType()
	return nil
}

func inferSymbol(n *ast.Symbol, env *Environment, idx TypeIndex) error {
	def, ok := env.Find(n.Name)
	if !ok {
		return compileerr.NewUndefinedSymbol(n.ID, n.Name)
	}
	idx[AstID(n.ID)] = idx[def]
	return nil
}

func inferLet(n *ast.Let, env *Environment, idx TypeIndex) error {
	if err := inferExpr(n.Rhs, env, idx); err != nil {
		return err
	}
	id := AstID(n.ID)
	idx[id] = idx[AstID(n.Rhs.NodeID())]
	env.Add(n.Name, id)
	return nil
}

func inferBlockExpr(n *ast.BlockExpr, env *Environment, idx TypeIndex) error {
	env.Push()
	defer env.Pop()
	if err := InferBlock(n.Block, env, idx); err != nil {
		return err
	}
	idx[AstID(n.ID)] = idx[AstID(n.Block.ID)]
	return nil
}

func inferCall(n *ast.Call, env *Environment, idx TypeIndex) error {
	if err := inferExpr(n.Callee, env, idx); err != nil {
		return err
	}
	argTypes := make([]types.DataType, len(n.Args))
	for i, arg := range n.Args {
		if err := inferExpr(arg, env, idx); err != nil {
			return err
		}
		argTypes[i] = idx[AstID(arg.NodeID())]
	}

	calleeType := idx[AstID(n.Callee.NodeID())]
	resultSet, ok := calleeType.TryReturnType()
	if !ok {
		return compileerr.NewNotCallable(n.ID)
	}
	if !calleeType.Signature.Satisfies(argTypes) {
		expected := calleeType.Signature.Result
		if len(argTypes) > 0 {
			if ts, ok := calleeType.Signature.NthArg(0); ok {
				expected = ts
			}
		}
		return compileerr.NewTypeMismatch(n.ID, expected, firstOrUnit(argTypes))
	}
	resultType, ok := resultSet.Concrete()
	if !ok {
		return compileerr.NewCompilerBug(n.ID, "call result type set does not resolve to a concrete type")
	}
	idx[AstID(n.ID)] = resultType
	return nil
}

func firstOrUnit(ts []types.DataType) types.DataType {
	if len(ts) == 0 {
		return types.UnitType()
	}
	return ts[0]
}

// inferFnFragment implements spec.md §4.1's usage-directed mining: it
// does not assign argument types up front. Instead it walks the body
// for Call sites where a fragment parameter is passed directly, reads
// the concrete type each such call-site's signature demands at that
// position, and requires all usages of a parameter to agree.
func inferFnFragment(n *ast.FnFragment, env *Environment, idx TypeIndex) error {
	paramTypes := make([]types.DataType, len(n.Args))
	paramHasUsage := make([]bool, len(n.Args))
	paramHasConcrete := make([]bool, len(n.Args))
	nameToIdx := make(map[string]int, len(n.Args))
	for i, a := range n.Args {
		nameToIdx[a.Name] = i
	}

	err := ast.Walk(n.Body, func(node ast.Node) error {
		call, ok := node.(*ast.Call)
		if !ok {
			return nil
		}
		if err := inferExpr(call.Callee, env, idx); err != nil {
			// Callee might itself reference a fragment parameter in a
			// way that isn't resolvable yet; skip sites we can't type.
			return nil
		}
		calleeType := idx[AstID(call.Callee.NodeID())]
		if calleeType.Kind != types.KindCallable {
			return nil
		}
		for pos, argExpr := range call.Args {
			sym, ok := argExpr.(*ast.Symbol)
			if !ok {
				continue
			}
			pi, ok := nameToIdx[sym.Name]
			if !ok {
				continue
			}
			ts, ok := calleeType.Signature.NthArg(pos)
			if !ok {
				continue
			}
			concrete, ok := ts.Concrete()
			if !ok {
				// A variadic AllTypes usage (e.g. passed straight to a
				// stringifying built-in) constrains nothing; record the
				// usage but leave the type unconstrained by it.
				paramHasUsage[pi] = true
				continue
			}
			paramHasUsage[pi] = true
			if paramHasConcrete[pi] {
				if !paramTypes[pi].Equal(concrete) {
					return compileerr.NewTypeMismatch(n.ID, types.Single(paramTypes[pi]), concrete)
				}
			} else {
				paramTypes[pi] = concrete
				paramHasConcrete[pi] = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, a := range n.Args {
		if !paramHasUsage[i] {
			return compileerr.NewUnusedVar(a.ID, a.Name)
		}
		if !paramHasConcrete[i] {
			// Usage existed, but only inside variadic AllTypes call
			// sites (e.g. passed to echo): the builtins framing funnels
			// all arguments through stringifying commands, so default
			// such parameters to Str.
			paramTypes[i] = types.StrType()
		}
	}

	env.Push()
	argSets := make([]types.TypeSet, len(n.Args))
	for i, a := range n.Args {
		id := AstID(a.ID)
		idx[id] = paramTypes[i]
		env.Add(a.Name, id)
		argSets[i] = types.Single(paramTypes[i])
	}
	if err := inferExpr(n.Body, env, idx); err != nil {
		env.Pop()
		return err
	}
	env.Pop()

	sig := types.Signature{
		Args:   argSets,
		Result: types.Single(idx[AstID(n.Body.NodeID())]),
	}
	idx[AstID(n.ID)] = types.CallableType(types.Fragment, sig)
	return nil
}
