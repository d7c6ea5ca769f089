// Package types implements Leviscript's compile-time type system:
// DataType, the StackType/HeapType split, callable signatures, and the
// TypeSet templates signatures are matched against (spec.md §3).
package types

import (
	"fmt"
	"sort"
	"strings"
)

// StackType is a value type that fits by value on the VM stack.
type StackType int

const (
	Int StackType = iota
	Float
	Bool
	Unit
)

func (s StackType) String() string {
	switch s {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case Unit:
		return "Unit"
	default:
		return "StackType(?)"
	}
}

// HeapKind is the discriminant of a HeapType.
type HeapKind int

const (
	Str HeapKind = iota
	Keyword
	Vec
	Dict
	Set
)

// HeapType is a non-copy value type that lives on the runtime heap.
// Vec/Dict/Set carry the element type(s) they were declared with.
type HeapType struct {
	Kind  HeapKind
	Elem  *DataType // Vec, Set
	Key   *DataType // Dict
	Value *DataType // Dict
}

func (h HeapType) String() string {
	switch h.Kind {
	case Str:
		return "Str"
	case Keyword:
		return "Keyword"
	case Vec:
		return fmt.Sprintf("Vec(%s)", h.Elem)
	case Dict:
		return fmt.Sprintf("Dict(%s,%s)", h.Key, h.Value)
	case Set:
		return fmt.Sprintf("Set(%s)", h.Elem)
	default:
		return "HeapType(?)"
	}
}

// CallableKind distinguishes a built-in command from a user-defined
// fragment.
type CallableKind int

const (
	BuiltIn CallableKind = iota
	Fragment
)

func (k CallableKind) String() string {
	if k == BuiltIn {
		return "BuiltIn"
	}
	return "Fragment"
}

// Kind discriminates a DataType.
type Kind int

const (
	KindStack Kind = iota
	KindHeap
	KindCallable
)

// DataType is the full compile-time type of a value: a StackType, a
// HeapType, or a Callable with its kind and signature.
type DataType struct {
	Kind         Kind
	Stack        StackType
	Heap         HeapType
	CallableKind CallableKind
	Signature    *Signature
}

func StackOf(s StackType) DataType  { return DataType{Kind: KindStack, Stack: s} }
func HeapOf(h HeapType) DataType    { return DataType{Kind: KindHeap, Heap: h} }
func StrType() DataType             { return HeapOf(HeapType{Kind: Str}) }
func KeywordType() DataType         { return HeapOf(HeapType{Kind: Keyword}) }
func IntType() DataType             { return StackOf(Int) }
func FloatType() DataType           { return StackOf(Float) }
func BoolType() DataType            { return StackOf(Bool) }
func UnitType() DataType            { return StackOf(Unit) }

func VecType(elem DataType) DataType {
	return HeapOf(HeapType{Kind: Vec, Elem: &elem})
}

func DictType(key, value DataType) DataType {
	return HeapOf(HeapType{Kind: Dict, Key: &key, Value: &value})
}

func SetType(elem DataType) DataType {
	return HeapOf(HeapType{Kind: Set, Elem: &elem})
}

func CallableType(kind CallableKind, sig Signature) DataType {
	return DataType{Kind: KindCallable, CallableKind: kind, Signature: &sig}
}

// IsHeap reports whether values of this type live on the heap and are
// subject to the builder's ownership discipline.
func (d DataType) IsHeap() bool { return d.Kind == KindHeap }

func (d DataType) String() string {
	switch d.Kind {
	case KindStack:
		return d.Stack.String()
	case KindHeap:
		return d.Heap.String()
	case KindCallable:
		return fmt.Sprintf("Callable(%s, %s)", d.CallableKind, d.Signature)
	default:
		return "DataType(?)"
	}
}

// Equal reports structural equality, used for TypeSet membership and for
// collapsing a TypeSet to a concrete type.
func (d DataType) Equal(other DataType) bool {
	return d.String() == other.String()
}

// TryReturnType returns the callable's result type set, if d is callable.
func (d DataType) TryReturnType() (TypeSet, bool) {
	if d.Kind != KindCallable {
		return TypeSet{}, false
	}
	return d.Signature.Result, true
}

// Signature describes a callable's parameters, optional variadic tail,
// and result.
type Signature struct {
	Args     []TypeSet
	Variadic *TypeSet
	Result   TypeSet
}

func (s *Signature) String() string {
	if s == nil {
		return "<nil signature>"
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	variadic := ""
	if s.Variadic != nil {
		variadic = fmt.Sprintf(", %s...", s.Variadic)
	}
	return fmt.Sprintf("(%s%s) -> %s", strings.Join(parts, ", "), variadic, s.Result.String())
}

// NthArg returns the type-set that the nth positional argument must
// satisfy: a fixed parameter, or the variadic set once positional
// parameters run out. Returns false if n is out of range and there is
// no variadic tail.
func (s *Signature) NthArg(n int) (TypeSet, bool) {
	if n < len(s.Args) {
		return s.Args[n], true
	}
	if s.Variadic != nil {
		return *s.Variadic, true
	}
	return TypeSet{}, false
}

// Satisfies reports whether args is an acceptable call to s: every
// positional parameter's type set accepts the corresponding argument, and
// either there is no surplus or a variadic type set accepts it all.
func (s *Signature) Satisfies(args []DataType) bool {
	for i, ts := range s.Args {
		if i >= len(args) {
			return false
		}
		if !ts.Satisfies(args[i]) {
			return false
		}
	}
	rest := args[min(len(s.Args), len(args)):]
	if s.Variadic == nil {
		return len(rest) == 0
	}
	for _, a := range rest {
		if !s.Variadic.Satisfies(a) {
			return false
		}
	}
	return true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// TypeSet is a template a concrete DataType is matched against: either
// every type (AllTypes) or a finite, order-independent set.
type TypeSet struct {
	all   bool
	types []DataType
}

// AllTypes returns the TypeSet accepting any type.
func AllTypes() TypeSet { return TypeSet{all: true} }

// SomeTypes returns the TypeSet accepting exactly the given types.
// Duplicate-by-equality entries are collapsed and the set is stored in a
// stable order so two TypeSets built from the same elements compare
// equal regardless of construction order (spec.md §3: "order-independent,
// equality by set").
func SomeTypes(types ...DataType) TypeSet {
	seen := make(map[string]DataType, len(types))
	order := make([]string, 0, len(types))
	for _, t := range types {
		key := t.String()
		if _, ok := seen[key]; !ok {
			seen[key] = t
			order = append(order, key)
		}
	}
	sort.Strings(order)
	out := make([]DataType, len(order))
	for i, key := range order {
		out[i] = seen[key]
	}
	return TypeSet{types: out}
}

// Single is shorthand for SomeTypes(t), used when a concrete DataType
// needs lifting into a TypeSet (e.g. in a Signature).
func Single(t DataType) TypeSet { return SomeTypes(t) }

func (ts TypeSet) String() string {
	if ts.all {
		return "AllTypes"
	}
	parts := make([]string, len(ts.types))
	for i, t := range ts.types {
		parts[i] = t.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Satisfies reports whether t is an acceptable member of the set.
func (ts TypeSet) Satisfies(t DataType) bool {
	if ts.all {
		return true
	}
	for _, candidate := range ts.types {
		if candidate.Equal(t) {
			return true
		}
	}
	return false
}

// Concrete returns the single type the set represents, if it has
// exactly one member. A Call's result type must collapse this way
// (spec.md §4.1).
func (ts TypeSet) Concrete() (DataType, bool) {
	if ts.all || len(ts.types) != 1 {
		return DataType{}, false
	}
	return ts.types[0], true
}

// Equal reports whether two type sets accept the same types.
func (ts TypeSet) Equal(other TypeSet) bool {
	return ts.String() == other.String()
}
