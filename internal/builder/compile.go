package builder

import (
	"github.com/knorrfg/leviscript/internal/ast"
	"github.com/knorrfg/leviscript/internal/bytecode"
	"github.com/knorrfg/leviscript/internal/compileerr"
	"github.com/knorrfg/leviscript/internal/types"
	"github.com/knorrfg/leviscript/internal/typeinfer"
	"github.com/knorrfg/leviscript/internal/value"
)

// execBuiltinName is the built-in whose bin-name comes from its first
// argument rather than from the call's own name (SPEC_FULL.md §6: every
// other built-in name denotes the literal process to run).
const execBuiltinName = "exec"

// Compile lowers a type-checked program into final bytecode. idx must be
// the TypeIndex produced by typeinfer.InferBlock over program (spec.md
// §4.3).
func Compile(program *ast.Block, idx typeinfer.TypeIndex) (bytecode.ByteCode, bytecode.DebugInformation, error) {
	b := New()
	if err := b.compileBlockPhrases(program, idx); err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, err
	}
	code, debug := b.Build()
	return code, debug, nil
}

// compileBlockPhrases compiles each phrase of block in sequence, popping
// every non-final result (its value is never consumed) and leaving the
// last phrase's value, if any, on top of the stack. A Let phrase is never
// popped regardless of position: its pushed value (if any) is the bound
// variable's backing slot and must live on until the enclosing scope
// collapses, and a Let that binds a fragment or aliases another symbol
// pushes nothing at all for a pop to consume.
func (b *Builder) compileBlockPhrases(block *ast.Block, idx typeinfer.TypeIndex) error {
	for i, phrase := range block.Phrases {
		if err := b.compileExpr(phrase.Expr, idx); err != nil {
			return err
		}
		_, isLet := phrase.Expr.(*ast.Let)
		if i != len(block.Phrases)-1 && !isLet {
			b.PopStackEntries(1)
		}
	}
	return nil
}

func (b *Builder) compileExpr(expr ast.Expr, idx typeinfer.TypeIndex) error {
	switch n := expr.(type) {
	case *ast.IntLit:
		b.PushPrimitive(value.Int(n.Value), n.ID)
		return nil
	case *ast.FloatLit:
		b.PushPrimitive(value.Float(n.Value), n.ID)
		return nil
	case *ast.BoolLit:
		b.PushPrimitive(value.Bool(n.Value), n.ID)
		return nil
	case *ast.StrLit:
		return b.compileStrLit(n, idx)
	case *ast.Symbol:
		return b.compileSymbol(n)
	case *ast.Let:
		return b.compileLet(n, idx)
	case *ast.Call:
		return b.compileCall(n, idx)
	case *ast.BlockExpr:
		return b.compileBlockExpr(n, idx)
	case *ast.FnFragment:
		return compileerr.NewCompilerBug(n.ID, "a fragment has no runtime representation and cannot be used as a bare value")
	default:
		return compileerr.NewCompilerBug(expr.NodeID(), "compileExpr: unhandled expr type")
	}
}

func (b *Builder) compileSymbol(n *ast.Symbol) error {
	if _, isFragment := b.fragments[n.Name]; isFragment {
		return compileerr.NewCompilerBug(n.ID, "fragment \""+n.Name+"\" has no runtime value; it can only be used as a call target")
	}
	return b.CopySymbolTargetToStackTop(n.Name, n.ID)
}

func (b *Builder) compileLet(n *ast.Let, idx typeinfer.TypeIndex) error {
	if sym, ok := n.Rhs.(*ast.Symbol); ok {
		if _, isFragment := b.fragments[sym.Name]; isFragment {
			b.fragments[n.Name] = b.fragments[sym.Name]
			return nil
		}
		if err := b.AddSymbolAlias(sym.Name, n.Name, sym.ID); err != nil {
			return err
		}
		return nil
	}
	if frag, ok := n.Rhs.(*ast.FnFragment); ok {
		b.fragments[n.Name] = frag
		return nil
	}
	if err := b.compileExpr(n.Rhs, idx); err != nil {
		return err
	}
	b.AddSymbolForStackTop(n.Name)
	return nil
}

func (b *Builder) compileBlockExpr(n *ast.BlockExpr, idx typeinfer.TypeIndex) error {
	b.OpenScope(n.ID)
	if err := b.compileBlockPhrases(n.Block, idx); err != nil {
		return err
	}
	return b.CollapseScope()
}

// compileStrLit lowers a (possibly interpolated) string literal: each
// part is pushed, then the part count, then StrCat is emitted (spec.md
// §4.3).
func (b *Builder) compileStrLit(n *ast.StrLit, idx typeinfer.TypeIndex) error {
	for _, part := range n.Parts {
		switch part.Kind {
		case ast.PurePart:
			b.AddToDataSectionAndPushRef(value.ComptimeHeap(value.Heap{Kind: value.HeapStr, Str: part.Literal}), types.StrType(), n.ID)
		case ast.SymbolPart:
			if err := b.compileSymbol(part.Symbol); err != nil {
				return err
			}
		case ast.SubExprPart:
			if err := b.compileExpr(part.SubExpr, idx); err != nil {
				return err
			}
		}
	}
	b.PushPrimitive(value.Int(int64(len(n.Parts))), n.ID)
	b.emit2StrCat(n.ID)
	// StrCat pops its count and parts itself at run time: only the
	// shadow stack is adjusted here, no Pop is emitted.
	b.stackInfo = b.stackInfo[:len(b.stackInfo)-(len(n.Parts)+1)]
	b.CreateValueInMemory(types.StrType(), n.ID)
	return nil
}

// compileCall lowers a Call. Only built-in callees lower to bytecode:
// every built-in name denotes an external process, and a Call is lowered
// to Exec (SPEC_FULL.md §6). Calling a fragment is rejected — there is no
// invoke opcode for a value of CallableKind Fragment.
func (b *Builder) compileCall(n *ast.Call, idx typeinfer.TypeIndex) error {
	callee, ok := n.Callee.(*ast.Symbol)
	if !ok {
		return compileerr.NewCompilerBug(n.ID, "dynamic call targets are not supported; the callee must name a built-in directly")
	}
	if _, isFragment := b.fragments[callee.Name]; isFragment {
		return compileerr.NewCompilerBug(n.ID, "cannot call fragment \""+callee.Name+"\": no invoke opcode is defined for FnFragment callables")
	}

	calleeType, ok := idx[typeinfer.AstID(callee.ID)]
	if !ok || calleeType.Kind != types.KindCallable || calleeType.CallableKind != types.BuiltIn {
		return compileerr.NewNotCallable(n.ID)
	}
	sig := calleeType.Signature

	if len(n.Args) == 0 && (callee.Name == "true" || callee.Name == "false") {
		b.PushPrimitive(value.Bool(callee.Name == "true"), n.ID)
		return nil
	}

	// Every process built-in's arguments accept AllTypes (SPEC_FULL.md §6):
	// the registry renders each to a string at run time rather than
	// requiring it to already be one, so no cast is ever inserted here for
	// this built-in set — check_and_fix_type_of_stack_top still runs, as
	// spec.md §4.3 requires on every argument, it just never has anything
	// to fix against an all-accepting target.
	argTypeSet, _ := sig.NthArg(0)
	processArgs := n.Args
	pushed := 0
	if callee.Name == execBuiltinName {
		if len(n.Args) == 0 {
			return compileerr.NewTypeMismatch(n.ID, argTypeSet, types.UnitType())
		}
		binArg := n.Args[0]
		if err := b.compileExpr(binArg, idx); err != nil {
			return err
		}
		if !b.CheckAndFixTypeOfStackTop(argTypeSet) {
			return compileerr.NewTypeMismatch(binArg.NodeID(), argTypeSet, b.TopType())
		}
		processArgs = n.Args[1:]
		pushed++
	} else {
		b.AddToDataSectionAndPushRef(value.ComptimeHeap(value.Heap{Kind: value.HeapStr, Str: callee.Name}), types.StrType(), n.ID)
		pushed++
	}

	for _, arg := range processArgs {
		if err := b.compileExpr(arg, idx); err != nil {
			return err
		}
		if !b.CheckAndFixTypeOfStackTop(argTypeSet) {
			return compileerr.NewTypeMismatch(arg.NodeID(), argTypeSet, b.TopType())
		}
		pushed++
	}

	b.PushPrimitive(value.Int(int64(len(processArgs))), n.ID)
	pushed++
	b.emitExec(n.ID)
	// Exec pops the count, the arguments and the binary itself at run
	// time: only the shadow stack is adjusted here, no Pop is emitted.
	b.stackInfo = b.stackInfo[:len(b.stackInfo)-pushed]

	resultType, ok := sig.Result.Concrete()
	if !ok {
		return compileerr.NewCompilerBug(n.ID, "built-in result type set does not resolve to a concrete type")
	}
	b.CreateValueInMemory(resultType, n.ID)
	return nil
}
