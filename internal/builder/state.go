// Package builder implements the bytecode builder of spec.md §4.3–§4.4: it
// consumes the AST (already typed by internal/typeinfer) and emits
// internal/opcode instructions while maintaining a compile-time shadow of
// the runtime stack (stack_info) and the ownership discipline that lets
// the VM run without a garbage collector.
//
// Grounded on
// _examples/original_source/leviscript-lib/src/core/bytecode_builder.rs
// for the DataInfo/DataTypeInfo shape and the public operations, and on
// spec.md §4.4 for the scope-collapse algorithm (not present in the
// retrieved original source — implemented directly from the prose).
package builder

import (
	"github.com/knorrfg/leviscript/internal/ast"
	"github.com/knorrfg/leviscript/internal/bytecode"
	"github.com/knorrfg/leviscript/internal/compileerr"
	"github.com/knorrfg/leviscript/internal/opcode"
	"github.com/knorrfg/leviscript/internal/types"
	"github.com/knorrfg/leviscript/internal/value"
)

// OwnerKind discriminates a heap-typed shadow entry's ownership state
// (spec.md §3 Invariants, §4.4).
type OwnerKind int

const (
	// OwnerMe marks this slot as the one responsible for freeing the heap
	// value it refers to when popped.
	OwnerMe OwnerKind = iota
	// OwnerSome marks this slot as a non-owning reference to the heap
	// value owned by another slot (Idx).
	OwnerSome
	// OwnerDisowned marks a slot whose heap value has been transferred to
	// another slot; it must never emit PopFree.
	OwnerDisowned
)

// Owner is the ownership tag of a heap-typed shadow entry.
type Owner struct {
	Kind OwnerKind
	Idx  uint32 // meaningful when Kind == OwnerSome
}

// InfoKind discriminates a TypeInfo (spec.md §3's DataTypeInfo).
type InfoKind int

const (
	InfoDataSec InfoKind = iota
	InfoHeap
	InfoStack
	InfoCallable
)

// TypeInfo is the compile-time shadow of one stack entry's type and, for
// heap-typed entries, its ownership state.
type TypeInfo struct {
	Kind    InfoKind
	DType   types.DataType
	DSecIdx uint32 // InfoDataSec
	Owner   Owner  // InfoHeap
}

// DataInfo is one entry of the shadow stack (spec.md §3).
type DataInfo struct {
	AstID ast.ID
	Info  TypeInfo
}

// scopeMark records where a lexical scope began: the shadow-stack
// watermark and the AST id the scope was opened for.
type scopeMark struct {
	watermark int
	astID     ast.ID
}

// symbolScopes is a scoped name→slot-index table (spec.md §3's
// symbol_table), independent of typeinfer's name→EnvID environment: the
// builder only ever needs the runtime stack slot a name resolves to.
type symbolScopes struct {
	scopes []map[string]int
}

func newSymbolScopes() *symbolScopes {
	return &symbolScopes{scopes: []map[string]int{{}}}
}

func (s *symbolScopes) push()                      { s.scopes = append(s.scopes, map[string]int{}) }
func (s *symbolScopes) pop()                       { s.scopes = s.scopes[:len(s.scopes)-1] }
func (s *symbolScopes) add(name string, slot int)   { s.scopes[len(s.scopes)-1][name] = slot }

func (s *symbolScopes) find(name string) (int, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if slot, ok := s.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

// Builder accumulates opcodes, a compile-time data section, and the
// shadow stack/symbol-table state described in spec.md §3 and §4.3.
type Builder struct {
	text   []opcode.Op
	astIDs []ast.ID
	data   []value.Comptime

	stackInfo   []DataInfo
	symbols     *symbolScopes
	scopeStarts []scopeMark

	// fragments holds names bound (via Let) to a FnFragment body. Fragment
	// values have no runtime representation in this core (see SPEC_FULL.md
	// §6) — binding one creates no stack entry and emits no code; it is
	// only legal to reference such a name as a Call that is then rejected
	// with a CompilerBug, since there is no invoke opcode for it.
	fragments map[string]*ast.FnFragment
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{symbols: newSymbolScopes(), fragments: map[string]*ast.FnFragment{}}
}

func (b *Builder) emit(op opcode.Op, id ast.ID) {
	b.text = append(b.text, op)
	b.astIDs = append(b.astIDs, id)
}

// emitExec and emit2StrCat are thin named wrappers so call sites in
// compile.go read like the operation they lower, matching the rest of
// the builder's push_*/emit-style public methods.
func (b *Builder) emitExec(id ast.ID)     { b.emit(opcode.Exec(), id) }
func (b *Builder) emit2StrCat(id ast.ID)  { b.emit(opcode.StrCat(), id) }

// PushPrimitive emits PushPrimitive and records a stack-typed shadow entry
// (spec.md §4.3: push_primitive).
func (b *Builder) PushPrimitive(val value.CopyValue, id ast.ID) {
	b.emit(opcode.PushPrimitive(toOpcodeCopy(val)), id)
	b.stackInfo = append(b.stackInfo, DataInfo{
		AstID: id,
		Info:  TypeInfo{Kind: InfoStack, DType: copyDataType(val)},
	})
}

// AddToDataSectionAndPushRef appends val to the data section, emits
// PushDataSecRef, and records a non-owning DataSecTypeInfo shadow entry
// (spec.md §4.3: add_to_datasection_and_push_ref).
func (b *Builder) AddToDataSectionAndPushRef(val value.Comptime, dtype types.DataType, id ast.ID) {
	b.data = append(b.data, val)
	idx := uint32(len(b.data) - 1)
	b.emit(opcode.PushDataSecRef(idx), id)
	b.stackInfo = append(b.stackInfo, DataInfo{
		AstID: id,
		Info:  TypeInfo{Kind: InfoDataSec, DType: dtype, DSecIdx: idx},
	})
}

// CopySymbolTargetToStackTop finds the stack slot bound to name and emits
// RepushStackEntry for it, deriving the new entry's ownership per spec.md
// §4.3: a Me-owned original becomes a Some(slot) borrow; anything else is
// cloned as-is.
func (b *Builder) CopySymbolTargetToStackTop(name string, id ast.ID) error {
	slot, ok := b.symbols.find(name)
	if !ok {
		return compileerr.NewUndefinedSymbol(id, name)
	}
	b.emit(opcode.RepushStackEntry(uint32(slot)), id)
	original := b.stackInfo[slot]
	newInfo := original.Info
	if original.Info.Kind == InfoHeap && original.Info.Owner.Kind == OwnerMe {
		newInfo.Owner = Owner{Kind: OwnerSome, Idx: uint32(slot)}
	}
	b.stackInfo = append(b.stackInfo, DataInfo{AstID: id, Info: newInfo})
	return nil
}

// AddSymbolForStackTop binds name to the current stack top slot (spec.md
// §4.3: add_symbol_for_stack_top, named for parity with the original's
// own method of that name).
func (b *Builder) AddSymbolForStackTop(name string) {
	if len(b.stackInfo) == 0 {
		panic("builder: AddSymbolForStackTop called with empty stack")
	}
	b.symbols.add(name, len(b.stackInfo)-1)
}

// AddSymbolAlias binds alias to the same slot as an existing symbol,
// without touching stack_info or text (spec.md §4.3's Let-over-Symbol
// optimization).
func (b *Builder) AddSymbolAlias(name, alias string, id ast.ID) error {
	slot, ok := b.symbols.find(name)
	if !ok {
		return compileerr.NewUndefinedSymbol(id, name)
	}
	b.symbols.add(alias, slot)
	return nil
}

// PopStackEntries emits PopFree for every Me-owned heap entry among the n
// topmost shadow entries and Pop for everything else, then removes them
// from stack_info (spec.md §4.3: pop_stack_entries).
func (b *Builder) PopStackEntries(n int) {
	for i := 0; i < n; i++ {
		top := b.stackInfo[len(b.stackInfo)-1]
		if top.Info.Kind == InfoHeap && top.Info.Owner.Kind == OwnerMe {
			b.emit(opcode.PopFree(), top.AstID)
		} else {
			b.emit(opcode.Pop(), top.AstID)
		}
		b.stackInfo = b.stackInfo[:len(b.stackInfo)-1]
	}
}

// CreateValueInMemory updates stack_info for a value just produced by a
// just-emitted instruction, marking a heap-typed result Me-owned (spec.md
// §4.3: create_value_in_memory).
func (b *Builder) CreateValueInMemory(dtype types.DataType, id ast.ID) {
	info := TypeInfo{DType: dtype}
	if dtype.IsHeap() {
		info.Kind = InfoHeap
		info.Owner = Owner{Kind: OwnerMe}
	} else {
		info.Kind = InfoStack
	}
	b.stackInfo = append(b.stackInfo, DataInfo{AstID: id, Info: info})
}

// getCast returns the cast opcode that converts current to target, if
// one is registered (spec.md §4.3: check_and_fix_type_of_stack_top's
// "look up a cast opcode"). This core only ever needs to coerce values
// into process-argument strings or truth values; there is no numeric
// cast because no arithmetic opcode exists to exercise one (spec.md
// §4.2's opcode set is exhaustive, see SPEC_FULL.md §6).
func getCast(target types.DataType) (opcode.Op, bool) {
	switch {
	case target.Kind == types.KindHeap && target.Heap.Kind == types.Str:
		return opcode.ToStr(), true
	case target.Kind == types.KindStack && target.Stack == types.Bool:
		return opcode.ToBool(), true
	default:
		return opcode.Op{}, false
	}
}

// CheckAndFixTypeOfStackTop checks the stack top against target,
// inserting a cast instruction if target collapses to a single concrete
// type the current value can be cast to. Returns false if nothing can
// satisfy target, leaving the caller to raise a TypeMismatch (spec.md
// §4.3: check_and_fix_type_of_stack_top).
func (b *Builder) CheckAndFixTypeOfStackTop(target types.TypeSet) bool {
	top := b.stackInfo[len(b.stackInfo)-1]
	if target.Satisfies(top.Info.DType) {
		return true
	}
	concrete, ok := target.Concrete()
	if !ok {
		return false
	}
	castOp, ok := getCast(concrete)
	if !ok {
		return false
	}
	b.emit(castOp, top.AstID)
	b.stackInfo = b.stackInfo[:len(b.stackInfo)-1]
	b.CreateValueInMemory(concrete, top.AstID)
	return true
}

// OpenScope records the current shadow-stack watermark and opens a new
// symbol-table scope (spec.md §4.4: open_scope).
func (b *Builder) OpenScope(id ast.ID) {
	b.scopeStarts = append(b.scopeStarts, scopeMark{watermark: len(b.stackInfo), astID: id})
	b.symbols.push()
}

// CollapseScope implements the §4.4 algorithm exactly: it reduces the
// shadow (and emitted) stack to the scope's watermark plus, if the scope
// produced a value, that value — resolving ownership transfer for
// borrowed heap values along the way.
func (b *Builder) CollapseScope() error {
	n := len(b.scopeStarts)
	mark := b.scopeStarts[n-1]
	b.scopeStarts = b.scopeStarts[:n-1]
	watermark := mark.watermark

	if len(b.stackInfo) == watermark {
		b.PushPrimitive(value.Unit(), mark.astID)
		b.symbols.pop()
		return nil
	}

	resultIdx := len(b.stackInfo) - 1
	result := b.stackInfo[resultIdx]
	if result.Info.Kind == InfoHeap {
		switch result.Info.Owner.Kind {
		case OwnerSome:
			// If the slot this borrows from is itself local to the scope
			// (and about to be discarded below), the borrow becomes the
			// sole owner; mark the old owner disowned so the pop loop
			// below discards it with a plain Pop, not a PopFree. If the
			// owner survives the scope, the borrow is left untouched:
			// forcing it to Me here would free the same heap value twice.
			ownerIdx := result.Info.Owner.Idx
			if int(ownerIdx) >= watermark {
				b.stackInfo[ownerIdx].Info.Owner = Owner{Kind: OwnerDisowned}
				result.Info.Owner = Owner{Kind: OwnerMe}
			}
		case OwnerDisowned:
			return compileerr.NewCompilerBug(mark.astID, "scope collapse found an already-disowned heap value")
		}
	}

	// Move the result out of the way before discarding the scope's other
	// locals, so the loop below only ever sees entries that are actually
	// still on the runtime stack.
	b.emit(opcode.StackTopToReg(0), result.AstID)
	b.stackInfo = b.stackInfo[:resultIdx]

	for len(b.stackInfo) > watermark {
		entry := b.stackInfo[len(b.stackInfo)-1]
		if entry.Info.Kind == InfoHeap && entry.Info.Owner.Kind == OwnerMe {
			b.emit(opcode.PopFree(), entry.AstID)
		} else {
			b.emit(opcode.Pop(), entry.AstID)
		}
		b.stackInfo = b.stackInfo[:len(b.stackInfo)-1]
	}

	b.emit(opcode.ReadReg(0), result.AstID)
	b.stackInfo = append(b.stackInfo, result)

	b.symbols.pop()
	return nil
}

// Build finalizes the program: appends Exit(0), computes per-opcode
// offsets, and returns the immutable ByteCode plus its DebugInformation
// (spec.md §4.3: build).
func (b *Builder) Build() (bytecode.ByteCode, bytecode.DebugInformation) {
	b.emit(opcode.Exit(0), b.lastAstIDOrZero())

	var text []byte
	index := make(map[int]int, len(b.text))
	for i, op := range b.text {
		index[len(text)] = i
		text = opcode.Encode(text, op)
	}

	return bytecode.ByteCode{Text: text, Data: append([]value.Comptime(nil), b.data...)},
		bytecode.DebugInformation{AstIDs: append([]ast.ID(nil), b.astIDs...), Index: index}
}

func (b *Builder) lastAstIDOrZero() ast.ID {
	if len(b.astIDs) == 0 {
		return 0
	}
	return b.astIDs[len(b.astIDs)-1]
}

// StackDepth returns the current shadow-stack depth, used by tests that
// assert scope-collapse invariants.
func (b *Builder) StackDepth() int { return len(b.stackInfo) }

// TopType returns the DataType of the current shadow-stack top.
func (b *Builder) TopType() types.DataType {
	return b.stackInfo[len(b.stackInfo)-1].Info.DType
}

func toOpcodeCopy(v value.CopyValue) opcode.CopyValue {
	return opcode.CopyValue{Kind: opcode.CopyKind(v.Kind), Int: v.Int, Float: v.Float, Bool: v.Bool}
}

func copyDataType(v value.CopyValue) types.DataType {
	switch v.Kind {
	case value.CopyInt:
		return types.IntType()
	case value.CopyFloat:
		return types.FloatType()
	case value.CopyBool:
		return types.BoolType()
	default:
		return types.UnitType()
	}
}
