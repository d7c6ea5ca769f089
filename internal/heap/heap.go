// Package heap implements the O(1)-free-slot arena the VM allocates
// heap-resident values into (spec.md §4, grounded on original_source's
// core/heap.rs and vm/heap.rs).
//
// Push appends or reuses a freed slot; Delete marks a slot free without
// shrinking the backing storage, trading space for O(1) reuse. The
// original Rust implementation returns raw pointers and needs an
// auxiliary address map to turn one back into an index on free; a Go
// realization can use the index itself as the handle throughout, so
// that bookkeeping has no Go counterpart.
package heap

// Heap is a generic arena of T, indexed by uint32 so a Heap index fits
// directly into value.Ref.
type Heap[T any] struct {
	data []T
	free []uint32
}

// New creates an empty heap.
func New[T any]() *Heap[T] {
	return &Heap[T]{}
}

// Push stores val in a free slot if one exists, otherwise appends, and
// returns the slot's index.
func (h *Heap[T]) Push(val T) uint32 {
	if n := len(h.free); n > 0 {
		idx := h.free[n-1]
		h.free = h.free[:n-1]
		h.data[idx] = val
		return idx
	}
	h.data = append(h.data, val)
	return uint32(len(h.data) - 1)
}

// Delete frees idx for reuse by a later Push. It does not zero the slot;
// callers must not read a deleted index again.
func (h *Heap[T]) Delete(idx uint32) {
	h.free = append(h.free, idx)
}

// Get returns the value stored at idx. idx must have come from Push and
// not have been Delete'd since.
func (h *Heap[T]) Get(idx uint32) T {
	return h.data[idx]
}

// Set overwrites the value stored at idx in place, without affecting
// its liveness.
func (h *Heap[T]) Set(idx uint32, val T) {
	h.data[idx] = val
}

// IsFree reports whether idx is currently on the free list.
func (h *Heap[T]) IsFree(idx uint32) bool {
	for _, f := range h.free {
		if f == idx {
			return true
		}
	}
	return false
}

// Len returns the number of slots ever allocated, including freed ones
// still occupying backing storage.
func (h *Heap[T]) Len() int {
	return len(h.data)
}

// Iter calls visit with the index and value of every live (non-freed)
// slot, in index order.
func (h *Heap[T]) Iter(visit func(idx uint32, val T)) {
	for i, v := range h.data {
		if !h.IsFree(uint32(i)) {
			visit(uint32(i), v)
		}
	}
}
