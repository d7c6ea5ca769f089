// Package opcode defines Leviscript's bytecode instruction set and its
// binary encoding: a 2-byte discriminant followed by a payload of fixed
// type, padded to an even total length (spec.md §4.2).
//
// Per spec.md §9's design note, payloads are encoded with explicit
// little-endian field writers rather than a copy of the in-memory
// representation of a payload struct — Go has no portable "raw memory
// image of a struct" operation to lean on anyway, so there is no
// temptation to reach for one.
package opcode

import "fmt"

// Discriminant identifies an opcode kind. Values are assigned
// sequentially in declaration order below; stable for a given build,
// not meant to be portable across versions (spec.md §4.2).
type Discriminant uint16

const (
	DExec Discriminant = iota
	DStrCat
	DPushDataSecRef
	DPushPrimitive
	DRepushStackEntry
	DPushRefToStack
	DToStr
	DToBool
	DPop
	DPopFree
	DStackTopToReg
	DReadReg
	DExit
	discriminantCount
)

func (d Discriminant) String() string {
	switch d {
	case DExec:
		return "Exec"
	case DStrCat:
		return "StrCat"
	case DPushDataSecRef:
		return "PushDataSecRef"
	case DPushPrimitive:
		return "PushPrimitive"
	case DRepushStackEntry:
		return "RepushStackEntry"
	case DPushRefToStack:
		return "PushRefToStack"
	case DToStr:
		return "ToStr"
	case DToBool:
		return "ToBool"
	case DPop:
		return "Pop"
	case DPopFree:
		return "PopFree"
	case DStackTopToReg:
		return "StackTopToReg"
	case DReadReg:
		return "ReadReg"
	case DExit:
		return "Exit"
	default:
		return fmt.Sprintf("Discriminant(%d)", uint16(d))
	}
}

// CopyKind mirrors value.CopyKind without importing internal/value, so
// that opcode stays a leaf package (value depends on nothing, opcode
// depends on nothing, but keeping them independent avoids an import
// cycle once vm wires both together).
type CopyKind uint8

const (
	CopyInt CopyKind = iota
	CopyFloat
	CopyBool
	CopyUnit
)

// CopyValue is the payload carried by PushPrimitive.
type CopyValue struct {
	Kind  CopyKind
	Int   int64
	Float float64
	Bool  bool
}

// DataRefKind discriminates a DataRef payload.
type DataRefKind uint8

const (
	StackIdx DataRefKind = iota
	DataSecIdx
)

// DataRef is the payload carried by PushRefToStack.
type DataRef struct {
	Kind DataRefKind
	Idx  uint32
}

// Op is a single decoded instruction. Exactly the field(s) relevant to
// Discriminant are meaningful; this mirrors the tag-plus-one-payload
// shape of the source opcode set (spec.md §4.2) as a flat struct, which
// keeps Encode/Decode and the VM's field access simple without a type
// switch over payload implementations.
type Op struct {
	Disc Discriminant
	U32  uint32    // PushDataSecRef, RepushStackEntry
	Copy CopyValue // PushPrimitive
	Ref  DataRef   // PushRefToStack
	U8   uint8     // StackTopToReg, ReadReg
	I32  int32     // Exit
}

func Exec() Op                       { return Op{Disc: DExec} }
func StrCat() Op                     { return Op{Disc: DStrCat} }
func PushDataSecRef(idx uint32) Op   { return Op{Disc: DPushDataSecRef, U32: idx} }
func PushPrimitive(v CopyValue) Op   { return Op{Disc: DPushPrimitive, Copy: v} }
func RepushStackEntry(idx uint32) Op { return Op{Disc: DRepushStackEntry, U32: idx} }
func PushRefToStack(r DataRef) Op    { return Op{Disc: DPushRefToStack, Ref: r} }
func ToStr() Op                      { return Op{Disc: DToStr} }
func ToBool() Op                     { return Op{Disc: DToBool} }
func Pop() Op                        { return Op{Disc: DPop} }
func PopFree() Op                    { return Op{Disc: DPopFree} }
func StackTopToReg(slot uint8) Op    { return Op{Disc: DStackTopToReg, U8: slot} }
func ReadReg(slot uint8) Op          { return Op{Disc: DReadReg, U8: slot} }
func Exit(code int32) Op             { return Op{Disc: DExit, I32: code} }

// Count returns the number of declared discriminants, sized for
// building a dispatch table indexed directly by Discriminant (spec.md
// §4.5: "a direct array indexed by discriminant is preferred").
func Count() int { return int(discriminantCount) }

// HasPayload reports whether d carries any encoded payload bytes, i.e.
// is not one of the tag-only opcodes.
func (d Discriminant) HasPayload() bool {
	switch d {
	case DExec, DStrCat, DToStr, DToBool, DPop, DPopFree:
		return false
	default:
		return true
	}
}

func (o Op) String() string {
	switch o.Disc {
	case DPushDataSecRef, DRepushStackEntry:
		return fmt.Sprintf("%s(%d)", o.Disc, o.U32)
	case DPushPrimitive:
		return fmt.Sprintf("%s(%v)", o.Disc, o.Copy)
	case DPushRefToStack:
		return fmt.Sprintf("%s(%v)", o.Disc, o.Ref)
	case DStackTopToReg, DReadReg:
		return fmt.Sprintf("%s(%d)", o.Disc, o.U8)
	case DExit:
		return fmt.Sprintf("%s(%d)", o.Disc, o.I32)
	default:
		return o.Disc.String()
	}
}
