// Package vm implements the stack+heap virtual machine of spec.md §4.5:
// byte-addressed dispatch over the opcode discriminant, a runtime stack,
// an O(1)-free-slot heap, the immutable data section, and a small
// register file used by scope collapse.
//
// Grounded on _examples/original_source/leviscript-lib/src/vm.rs (Memory,
// the exec_* function shape, get_as/resolve_ref) and vm/stack.rs, adapted
// to Go's value.Runtime/value.Ref index-based references instead of raw
// pointers (spec.md §9).
package vm

import (
	"fmt"

	"github.com/knorrfg/leviscript/internal/heap"
	"github.com/knorrfg/leviscript/internal/value"
	"github.com/knorrfg/leviscript/internal/vmerr"
)

// RegisterCount is the size of the small fixed register file
// StackTopToReg/ReadReg address (spec.md §4.5). Scope collapse only ever
// uses register 0; more slots are reserved for a future debugger/FFI
// need without changing the encoding.
const RegisterCount = 4

// Memory holds everything a Runner mutates while executing: the stack,
// the heap arena, the read-only data section, and the register file
// (spec.md §4.5).
type Memory struct {
	Stack     []value.Runtime
	Heap      *heap.Heap[value.Heap]
	DataSeg   []value.Comptime
	Registers [RegisterCount]value.Runtime
}

// NewMemory creates an empty Memory over the given (immutable) data
// section.
func NewMemory(dataSeg []value.Comptime) *Memory {
	return &Memory{Heap: heap.New[value.Heap](), DataSeg: dataSeg}
}

// Push appends v to the top of the stack.
func (m *Memory) Push(v value.Runtime) { m.Stack = append(m.Stack, v) }

// Pop removes and returns the stack top, or a StackEmpty error.
func (m *Memory) Pop(pc int) (value.Runtime, error) {
	if len(m.Stack) == 0 {
		return value.Runtime{}, vmerr.NewStackEmpty(pc)
	}
	v := m.Stack[len(m.Stack)-1]
	m.Stack = m.Stack[:len(m.Stack)-1]
	return v, nil
}

// Top returns the stack top without removing it.
func (m *Memory) Top(pc int) (value.Runtime, error) {
	if len(m.Stack) == 0 {
		return value.Runtime{}, vmerr.NewStackEmpty(pc)
	}
	return m.Stack[len(m.Stack)-1], nil
}

// PopInt pops the stack top and requires it to be a copy Int, as used by
// StrCat's and Exec's leading count operand.
func (m *Memory) PopInt(pc int) (int64, error) {
	v, err := m.Pop(pc)
	if err != nil {
		return 0, err
	}
	if !v.IsCopy || v.Copy.Kind != value.CopyInt {
		return 0, vmerr.NewUnexpectedStackEntry(pc)
	}
	return v.Copy.Int, nil
}

// DeleteRef frees the heap slot backing v if v is a HeapRef. It never
// frees a DataSecRef slot, since the data section is immutable for the
// lifetime of the bytecode (spec.md §9's open-question resolution: "the
// builder must never emit PopFree for a DataSecTypeInfo"; this is the
// runtime's matching half of that invariant).
func (m *Memory) DeleteRef(v value.Runtime) {
	if !v.IsCopy && v.Ref.Kind == value.HeapRef {
		m.Heap.Delete(v.Ref.Idx)
	}
}

// RenderString renders v's string representation, following a single
// level of heap or data-section indirection (spec.md §4.2: StrCat
// "concatenates their string renderings").
func (m *Memory) RenderString(pc int, v value.Runtime) (string, error) {
	if v.IsCopy {
		return v.Copy.String(), nil
	}
	switch v.Ref.Kind {
	case value.HeapRef:
		return m.Heap.Get(v.Ref.Idx).String(), nil
	case value.DataSecRef:
		if int(v.Ref.Idx) >= len(m.DataSeg) {
			return "", vmerr.NewRuntime(pc, fmt.Sprintf("data section index %d out of range", v.Ref.Idx))
		}
		return m.DataSeg[v.Ref.Idx].String(), nil
	default:
		return "", vmerr.NewUnexpectedStackEntry(pc)
	}
}

// RequireString renders v and errors unless it is actually string-typed
// (a Str or Keyword heap value, or a data-section one) — used where the
// builder's type discipline guarantees a Str but the VM still checks,
// per spec.md §7: "the analogous cases ... must produce a typed error,
// not a crash".
func (m *Memory) RequireString(pc int, v value.Runtime) (string, error) {
	if v.IsCopy {
		return "", vmerr.NewUnexpectedStackEntry(pc)
	}
	switch v.Ref.Kind {
	case value.HeapRef:
		h := m.Heap.Get(v.Ref.Idx)
		if h.Kind != value.HeapStr && h.Kind != value.HeapKeyword {
			return "", vmerr.NewUnexpectedStackEntry(pc)
		}
		return h.Str, nil
	case value.DataSecRef:
		if int(v.Ref.Idx) >= len(m.DataSeg) {
			return "", vmerr.NewRuntime(pc, fmt.Sprintf("data section index %d out of range", v.Ref.Idx))
		}
		c := m.DataSeg[v.Ref.Idx]
		if c.IsCopy || (c.Heap.Kind != value.HeapStr && c.Heap.Kind != value.HeapKeyword) {
			return "", vmerr.NewUnexpectedStackEntry(pc)
		}
		return c.Heap.Str, nil
	default:
		return "", vmerr.NewUnexpectedStackEntry(pc)
	}
}

// PushOwnedString allocates a new heap string and pushes a HeapRef to it,
// the shape every Me-owned Str result takes at runtime (ToStr, StrCat,
// the built-in registry's "strcat").
func (m *Memory) PushOwnedString(s string) {
	idx := m.Heap.Push(value.Heap{Kind: value.HeapStr, Str: s})
	m.Push(value.RuntimeOfRef(value.Ref{Kind: value.HeapRef, Idx: idx}))
}
