package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeap_String(t *testing.T) {
	h := NewHeap()
	p := h.AllocString("main")
	require.NotZero(t, p)

	s, status := h.ReadString(p)
	require.Equal(t, Success, status)
	assert.Equal(t, []byte("main"), s)

	// A string buffer is C-like: reads stop at the first NUL.
	q := h.AllocString("ab\x00cd")
	s, status = h.ReadString(q)
	require.Equal(t, Success, status)
	assert.Equal(t, []byte("ab"), s)

	assert.Equal(t, 2, h.Outstanding())
	assert.Equal(t, Success, h.Free(p))
	assert.Equal(t, Success, h.Free(q))
	assert.Zero(t, h.Outstanding())
}

func TestHeap_DoubleFree(t *testing.T) {
	h := NewHeap()
	p := h.AllocBytes([]byte{1, 2, 3})
	assert.Equal(t, Success, h.Free(p))
	assert.Equal(t, InvalidPointer, h.Free(p))

	_, status := h.ReadBytes(p)
	assert.Equal(t, InvalidPointer, status)

	// Pointers are not reused after a free.
	q := h.AllocBytes(nil)
	assert.NotEqual(t, p, q)

	allocs, frees := h.Stats()
	assert.Equal(t, uint64(2), allocs)
	assert.Equal(t, uint64(1), frees)
}

func TestHeap_FreeNull(t *testing.T) {
	h := NewHeap()
	assert.Equal(t, Success, h.Free(0))
	assert.Equal(t, InvalidPointer, h.Free(42))
}

func TestHeap_KindMismatch(t *testing.T) {
	h := NewHeap()
	p := h.AllocString("name")

	_, status := h.ReadBytes(p)
	assert.Equal(t, InvalidPointer, status)
	_, status = h.ReadEntryPoints(p)
	assert.Equal(t, InvalidPointer, status)
	_, status = h.ReadResources(p)
	assert.Equal(t, InvalidPointer, status)
}

func TestHeap_Records(t *testing.T) {
	h := NewHeap()
	name := h.AllocString("ubo")
	records := []ResourceRecord{{ID: 7, TypeID: 6, BaseTypeID: 5, Name: name}}
	p := h.AllocResources(records)

	// The heap keeps its own copy.
	records[0].ID = 99
	got, status := h.ReadResources(p)
	require.Equal(t, Success, status)
	assert.Equal(t, uint32(7), got[0].ID)

	eps := h.AllocEntryPoints([]EntryPointRecord{{Name: h.AllocString("main"), Model: 4}})
	gotEPs, status := h.ReadEntryPoints(eps)
	require.Equal(t, Success, status)
	require.Len(t, gotEPs, 1)
	assert.Equal(t, uint32(4), gotEPs[0].Model)

	h.release()
	assert.Zero(t, h.Outstanding())
	allocs, frees := h.Stats()
	assert.Equal(t, allocs, frees)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "NotDecorated", NotDecorated.String())
	assert.Equal(t, "InvalidArgument", InvalidArgument.String())
	assert.Equal(t, "Status(99)", Status(99).String())
	assert.Equal(t, "Status(-1)", Status(-1).String())
}
