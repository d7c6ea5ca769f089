package builder

import (
	"testing"

	"github.com/knorrfg/leviscript/internal/opcode"
	"github.com/knorrfg/leviscript/internal/types"
	"github.com/knorrfg/leviscript/internal/value"
)

func lastOp(b *Builder) opcode.Op {
	if len(b.text) == 0 {
		return opcode.Op{}
	}
	return b.text[len(b.text)-1]
}

func TestCollapseEmptyScopeYieldsUnit(t *testing.T) {
	b := New()
	b.OpenScope(1)
	if err := b.CollapseScope(); err != nil {
		t.Fatalf("CollapseScope: %v", err)
	}
	if b.StackDepth() != 1 {
		t.Fatalf("expected one Unit entry on the shadow stack, got depth %d", b.StackDepth())
	}
	if !b.TopType().Equal(types.UnitType()) {
		t.Fatalf("expected Unit, got %s", b.TopType())
	}
}

func TestCollapseScopeFreesInteriorLocalsAndKeepsResult(t *testing.T) {
	b := New()
	// An entry that survives the scope (outer local).
	b.PushPrimitive(value.Int(1), 1)
	b.AddSymbolForStackTop("outer")

	b.OpenScope(2)
	// A Me-owned heap-typed interior local, never referenced by the result.
	b.AddToDataSectionAndPushRef(value.ComptimeHeap(value.Heap{Kind: value.HeapStr, Str: "local"}), types.StrType(), 3)
	b.CreateValueInMemory(types.StrType(), 3) // a second, Me-owned entry, as if some op had produced it
	b.AddSymbolForStackTop("interior")
	// The scope's result: a plain Int.
	b.PushPrimitive(value.Int(9), 4)

	if err := b.CollapseScope(); err != nil {
		t.Fatalf("CollapseScope: %v", err)
	}

	// outer (1) + result (1) == 2.
	if b.StackDepth() != 2 {
		t.Fatalf("expected shadow stack depth 2 after collapse, got %d", b.StackDepth())
	}
	if !b.TopType().Equal(types.IntType()) {
		t.Fatalf("expected collapsed result to be Int, got %s", b.TopType())
	}

	// The interior local's disposal and the register shuffle must both have
	// been emitted: a PopFree (or Pop) for the discarded interior entries,
	// a StackTopToReg to save the result, and a ReadReg to restore it.
	var sawStackTopToReg, sawReadReg, sawDiscard bool
	for _, op := range b.text {
		switch op.Disc {
		case opcode.DStackTopToReg:
			sawStackTopToReg = true
		case opcode.DReadReg:
			sawReadReg = true
		case opcode.DPopFree, opcode.DPop:
			sawDiscard = true
		}
	}
	if !sawStackTopToReg || !sawReadReg || !sawDiscard {
		t.Fatalf("expected StackTopToReg, discard and ReadReg to be emitted, text=%v", b.text)
	}
}

func TestCollapseScopeBorrowOfSurvivingOwnerIsUntouched(t *testing.T) {
	b := New()
	// Owner slot 0, declared outside the scope — survives it.
	b.CreateValueInMemory(types.StrType(), 1)
	b.stackInfo[0].Info.Owner = Owner{Kind: OwnerMe}
	b.AddSymbolForStackTop("owner")

	b.OpenScope(2)
	// A borrow of the outer owner, produced inside the scope, is the
	// scope's result.
	if err := b.CopySymbolTargetToStackTop("owner", 3); err != nil {
		t.Fatalf("CopySymbolTargetToStackTop: %v", err)
	}

	if err := b.CollapseScope(); err != nil {
		t.Fatalf("CollapseScope: %v", err)
	}

	// owner (slot 0) + the restored borrow == 2 entries.
	if b.StackDepth() != 2 {
		t.Fatalf("expected depth 2, got %d", b.StackDepth())
	}
	result := b.stackInfo[b.StackDepth()-1]
	if result.Info.Owner.Kind != OwnerSome || result.Info.Owner.Idx != 0 {
		t.Fatalf("expected borrow of surviving owner to be left untouched as Some(0), got %+v", result.Info.Owner)
	}
	if b.stackInfo[0].Info.Owner.Kind != OwnerMe {
		t.Fatalf("expected surviving owner to remain Me-owned, got %+v", b.stackInfo[0].Info.Owner)
	}
}

func TestCollapseScopePromotesBorrowOfInteriorOwner(t *testing.T) {
	b := New()
	b.OpenScope(1)
	// The owner is declared inside the scope...
	b.AddToDataSectionAndPushRef(value.ComptimeHeap(value.Heap{Kind: value.HeapStr, Str: "inner"}), types.StrType(), 2)
	b.CreateValueInMemory(types.StrType(), 2)
	b.AddSymbolForStackTop("inner")
	// ...and the scope's result borrows it.
	if err := b.CopySymbolTargetToStackTop("inner", 3); err != nil {
		t.Fatalf("CopySymbolTargetToStackTop: %v", err)
	}

	if err := b.CollapseScope(); err != nil {
		t.Fatalf("CollapseScope: %v", err)
	}

	if b.StackDepth() != 1 {
		t.Fatalf("expected depth 1 (result only), got %d", b.StackDepth())
	}
	result := b.stackInfo[0]
	if result.Info.Owner.Kind != OwnerMe {
		t.Fatalf("expected borrow of a discarded interior owner to be promoted to Me, got %+v", result.Info.Owner)
	}
}

func TestAddSymbolAliasEmitsNoCode(t *testing.T) {
	b := New()
	b.PushPrimitive(value.Int(1), 1)
	b.AddSymbolForStackTop("x")
	before := len(b.text)

	if err := b.AddSymbolAlias("x", "y", 2); err != nil {
		t.Fatalf("AddSymbolAlias: %v", err)
	}
	if len(b.text) != before {
		t.Fatalf("expected AddSymbolAlias to emit no opcodes, text grew from %d to %d", before, len(b.text))
	}
	slot, ok := b.symbols.find("y")
	if !ok || slot != 0 {
		t.Fatalf("expected alias y to resolve to slot 0, got slot=%d ok=%v", slot, ok)
	}
}

func TestCopySymbolTargetToStackTopUndefined(t *testing.T) {
	b := New()
	err := b.CopySymbolTargetToStackTop("nope", 1)
	if err == nil {
		t.Fatalf("expected undefined symbol error")
	}
}

func TestCheckAndFixTypeOfStackTopInsertsCast(t *testing.T) {
	b := New()
	b.PushPrimitive(value.Int(1), 1)
	if !b.CheckAndFixTypeOfStackTop(types.Single(types.StrType())) {
		t.Fatalf("expected an Int to be castable to Str")
	}
	if !b.TopType().Equal(types.StrType()) {
		t.Fatalf("expected stack top to now be typed Str, got %s", b.TopType())
	}
	if lastOp(b).Disc != opcode.DToStr {
		t.Fatalf("expected a ToStr cast to be emitted, got %s", lastOp(b))
	}
}

func TestCheckAndFixTypeOfStackTopRejectsUncastable(t *testing.T) {
	b := New()
	b.AddToDataSectionAndPushRef(value.ComptimeHeap(value.Heap{Kind: value.HeapStr, Str: "s"}), types.StrType(), 1)
	if b.CheckAndFixTypeOfStackTop(types.Single(types.IntType())) {
		t.Fatalf("expected a Str to be rejected against a required Int, no cast exists")
	}
}

func TestPopStackEntriesEmitsPopFreeForMeOwnedHeap(t *testing.T) {
	b := New()
	b.AddToDataSectionAndPushRef(value.ComptimeHeap(value.Heap{Kind: value.HeapStr, Str: "s"}), types.StrType(), 1)
	b.CreateValueInMemory(types.StrType(), 1)
	b.PopStackEntries(1)
	if lastOp(b).Disc != opcode.DPopFree {
		t.Fatalf("expected PopFree for a Me-owned heap entry, got %s", lastOp(b))
	}
}

func TestPopStackEntriesEmitsPlainPopForStackTyped(t *testing.T) {
	b := New()
	b.PushPrimitive(value.Int(1), 1)
	b.PopStackEntries(1)
	if lastOp(b).Disc != opcode.DPop {
		t.Fatalf("expected Pop for a stack-typed entry, got %s", lastOp(b))
	}
}

func TestBuildAppendsExit(t *testing.T) {
	b := New()
	b.PushPrimitive(value.Int(1), 1)
	code, debug := b.Build()
	if len(code.Text) == 0 {
		t.Fatalf("expected non-empty text")
	}
	if len(debug.AstIDs) != 2 { // PushPrimitive + Exit
		t.Fatalf("expected 2 debug entries, got %d", len(debug.AstIDs))
	}
	if lastOp(b).Disc != opcode.DExit {
		t.Fatalf("expected Build to append Exit, got %s", lastOp(b))
	}
}
