package value

import "testing"

func TestCopyValueString(t *testing.T) {
	cases := []struct {
		v    CopyValue
		want string
	}{
		{Int(3), "3"},
		{Float(1.5), "1.5"},
		{Bool(true), "true"},
		{Unit(), "()"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestComptimeHeapNesting(t *testing.T) {
	vec := ComptimeHeap(Heap{
		Kind: HeapVec,
		Vec:  []Comptime{ComptimeCopy(Int(1)), ComptimeCopy(Int(2))},
	})
	if vec.IsCopy {
		t.Fatalf("expected heap comptime value, got copy")
	}
	if len(vec.Heap.Vec) != 2 {
		t.Fatalf("expected 2 nested elements, got %d", len(vec.Heap.Vec))
	}
}

func TestRuntimeRefKinds(t *testing.T) {
	heapVal := RuntimeOfRef(Ref{Kind: HeapRef, Idx: 4})
	dataVal := RuntimeOfRef(Ref{Kind: DataSecRef, Idx: 1})
	if heapVal.IsCopy || dataVal.IsCopy {
		t.Fatalf("ref-backed runtime values must not be copy values")
	}
	if heapVal.Ref.Kind != HeapRef {
		t.Fatalf("expected HeapRef kind")
	}
	if dataVal.Ref.Kind != DataSecRef {
		t.Fatalf("expected DataSecRef kind")
	}
}
