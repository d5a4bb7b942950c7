package engine

import (
	"bytes"
	"slices"
)

// Pointer addresses an engine allocation. The zero Pointer is null.
type Pointer uint32

// EntryPointRecord is the raw form of an entry point. Name is a separate
// string allocation owned by the caller once the record is returned.
type EntryPointRecord struct {
	Name          Pointer
	Model         uint32
	WorkGroupSize [3]uint32
}

// ResourceRecord is the raw form of a reflected resource.
type ResourceRecord struct {
	ID         uint32
	TypeID     uint32
	BaseTypeID uint32
	Name       Pointer
}

// Memory reads and releases engine allocations. Every pointer an engine
// call hands out must be passed to Free exactly once.
type Memory interface {
	ReadString(p Pointer) ([]byte, Status)
	ReadBytes(p Pointer) ([]byte, Status)
	ReadEntryPoints(p Pointer) ([]EntryPointRecord, Status)
	ReadResources(p Pointer) ([]ResourceRecord, Status)
	Free(p Pointer) Status
}

type allocation struct {
	data        []byte
	entryPoints []EntryPointRecord
	resources   []ResourceRecord
	kind        allocKind
}

type allocKind uint8

const (
	allocString allocKind = iota
	allocBytes
	allocEntryPoints
	allocResources
)

// Heap hands out pointers to engine-owned buffers. Pointers are never
// reused, so a freed pointer stays invalid for the life of the heap.
type Heap struct {
	live map[Pointer]*allocation
	next Pointer

	allocs uint64
	frees  uint64
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{live: make(map[Pointer]*allocation)}
}

func (h *Heap) alloc(a *allocation) Pointer {
	h.next++
	h.live[h.next] = a
	h.allocs++
	return h.next
}

// AllocString copies s into a NUL-terminated buffer.
func (h *Heap) AllocString(s string) Pointer {
	data := make([]byte, len(s)+1)
	copy(data, s)
	return h.alloc(&allocation{data: data, kind: allocString})
}

// AllocBytes copies b into a sized buffer.
func (h *Heap) AllocBytes(b []byte) Pointer {
	return h.alloc(&allocation{data: slices.Clone(b), kind: allocBytes})
}

// AllocEntryPoints stores an entry point array.
func (h *Heap) AllocEntryPoints(records []EntryPointRecord) Pointer {
	return h.alloc(&allocation{entryPoints: slices.Clone(records), kind: allocEntryPoints})
}

// AllocResources stores a resource array.
func (h *Heap) AllocResources(records []ResourceRecord) Pointer {
	return h.alloc(&allocation{resources: slices.Clone(records), kind: allocResources})
}

func (h *Heap) lookup(p Pointer, kind allocKind) (*allocation, Status) {
	a, ok := h.live[p]
	if !ok || a.kind != kind {
		return nil, InvalidPointer
	}
	return a, Success
}

// ReadString returns a copy of the string at p, up to its terminator.
func (h *Heap) ReadString(p Pointer) ([]byte, Status) {
	a, status := h.lookup(p, allocString)
	if status != Success {
		return nil, status
	}
	data := a.data
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return slices.Clone(data), Success
}

// ReadBytes returns a copy of the buffer at p.
func (h *Heap) ReadBytes(p Pointer) ([]byte, Status) {
	a, status := h.lookup(p, allocBytes)
	if status != Success {
		return nil, status
	}
	return slices.Clone(a.data), Success
}

// ReadEntryPoints returns a copy of the entry point array at p.
func (h *Heap) ReadEntryPoints(p Pointer) ([]EntryPointRecord, Status) {
	a, status := h.lookup(p, allocEntryPoints)
	if status != Success {
		return nil, status
	}
	return slices.Clone(a.entryPoints), Success
}

// ReadResources returns a copy of the resource array at p.
func (h *Heap) ReadResources(p Pointer) ([]ResourceRecord, Status) {
	a, status := h.lookup(p, allocResources)
	if status != Success {
		return nil, status
	}
	return slices.Clone(a.resources), Success
}

// Free releases the allocation at p. Freeing null is a no-op; freeing an
// unknown or already freed pointer returns InvalidPointer.
func (h *Heap) Free(p Pointer) Status {
	if p == 0 {
		return Success
	}
	if _, ok := h.live[p]; !ok {
		return InvalidPointer
	}
	delete(h.live, p)
	h.frees++
	return Success
}

// Outstanding returns the number of live allocations.
func (h *Heap) Outstanding() int {
	return len(h.live)
}

// Stats returns the number of allocations and frees over the heap's life.
func (h *Heap) Stats() (allocs, frees uint64) {
	return h.allocs, h.frees
}

// release drops every live allocation.
func (h *Heap) release() {
	h.frees += uint64(len(h.live))
	clear(h.live)
}
