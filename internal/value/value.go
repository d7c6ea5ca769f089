// Package value implements Leviscript's runtime and compile-time value
// representations: the copy-by-value stack payloads, and the heap/data
// references that stand in for everything too big to copy (spec.md §3,
// grounded on original_source's core/data.rs Data/DataRef enums).
package value

import "fmt"

// CopyKind discriminates a CopyValue.
type CopyKind int

const (
	CopyInt CopyKind = iota
	CopyFloat
	CopyBool
	CopyUnit
)

// CopyValue is a value that fits on the stack by value: Int, Float,
// Bool, or Unit. It never needs heap backing and is never owned.
type CopyValue struct {
	Kind  CopyKind
	Int   int64
	Float float64
	Bool  bool
}

func Int(v int64) CopyValue     { return CopyValue{Kind: CopyInt, Int: v} }
func Float(v float64) CopyValue { return CopyValue{Kind: CopyFloat, Float: v} }
func Bool(v bool) CopyValue     { return CopyValue{Kind: CopyBool, Bool: v} }
func Unit() CopyValue           { return CopyValue{Kind: CopyUnit} }

func (c CopyValue) String() string {
	switch c.Kind {
	case CopyInt:
		return fmt.Sprintf("%d", c.Int)
	case CopyFloat:
		return fmt.Sprintf("%g", c.Float)
	case CopyBool:
		return fmt.Sprintf("%t", c.Bool)
	case CopyUnit:
		return "()"
	default:
		return "CopyValue(?)"
	}
}

// RefKind discriminates a runtime reference: either into the live heap
// arena, or into the read-only data section baked into the bytecode
// file (spec.md §4.3's DataRef).
type RefKind int

const (
	HeapRef RefKind = iota
	DataSecRef
)

// Ref is an index-based reference, standing in for the original Rust
// implementation's raw pointer. An index into a Go slice is just as
// cheap to copy and dereference and needs no unsafe package or manual
// lifetime reasoning (spec.md §9 explicitly allows substituting a safer
// encoding for the pointer).
type Ref struct {
	Kind RefKind
	Idx  uint32
}

func (r Ref) String() string {
	if r.Kind == HeapRef {
		return fmt.Sprintf("heap[%d]", r.Idx)
	}
	return fmt.Sprintf("data[%d]", r.Idx)
}

// HeapKind discriminates the value held by a heap slot.
type HeapKind int

const (
	HeapStr HeapKind = iota
	HeapKeyword
	HeapVec
	HeapDict
	HeapSet
)

// DictEntry is one key/value pair of a Dict heap value.
type DictEntry struct {
	Key   Comptime
	Value Comptime
}

// Heap is the payload of a heap-resident value. Exactly one of its
// fields is meaningful, selected by Kind. Runtime heap values
// (internal/heap, internal/vm) and compile-time data-section values
// share this shape: a compile-time Vec/Dict/Set can only ever contain
// other Comptime values, never a live Ref (see Comptime below).
type Heap struct {
	Kind HeapKind
	Str  string
	Vec  []Comptime
	Dict []DictEntry
	Set  []Comptime
}

func (h Heap) String() string {
	switch h.Kind {
	case HeapStr, HeapKeyword:
		return h.Str
	case HeapVec:
		return fmt.Sprintf("%v", h.Vec)
	case HeapDict:
		return fmt.Sprintf("%v", h.Dict)
	case HeapSet:
		return fmt.Sprintf("%v", h.Set)
	default:
		return "Heap(?)"
	}
}

// Comptime is a value the builder can fully materialize at compile
// time: either a copy value, or a heap value whose nested elements are
// themselves Comptime all the way down. It can never carry a live Ref —
// the original implementation's ComptimeRef is an uninhabited marker
// variant for exactly this reason (spec.md §3: "unit, unusable at
// runtime"); Go expresses that by simply never giving Comptime a Ref
// field at all.
type Comptime struct {
	IsCopy bool
	Copy   CopyValue
	Heap   Heap
}

func ComptimeCopy(c CopyValue) Comptime { return Comptime{IsCopy: true, Copy: c} }
func ComptimeHeap(h Heap) Comptime      { return Comptime{Heap: h} }

func (c Comptime) String() string {
	if c.IsCopy {
		return c.Copy.String()
	}
	return c.Heap.String()
}

// Runtime is a value as the VM actually manipulates it on the stack: a
// copy value, or a Ref into live heap or data-section storage. A Ref to
// a Vec/Dict/Set reaches a Heap value, whose elements are Comptime
// values stored inline.
type Runtime struct {
	IsCopy bool
	Copy   CopyValue
	Ref    Ref
}

func RuntimeCopy(c CopyValue) Runtime { return Runtime{IsCopy: true, Copy: c} }
func RuntimeOfRef(r Ref) Runtime      { return Runtime{Ref: r} }

func (r Runtime) String() string {
	if r.IsCopy {
		return r.Copy.String()
	}
	return r.Ref.String()
}
