package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/spirv"
)

func TestDecorationStore_AbsentIsNotZero(t *testing.T) {
	s := NewDecorationStore()

	_, ok := s.Decoration(5, spirv.DecorationBinding)
	assert.False(t, ok)

	s.SetDecoration(5, spirv.DecorationBinding, 0)
	v, ok := s.Decoration(5, spirv.DecorationBinding)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), v)
}

func TestDecorationStore_SetReplaces(t *testing.T) {
	s := NewDecorationStore()
	for _, want := range []uint32{3, 0xFFFFFFFF, 1} {
		s.SetDecoration(9, spirv.DecorationLocation, want)
		got, ok := s.Decoration(9, spirv.DecorationLocation)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestDecorationStore_Unset(t *testing.T) {
	s := NewDecorationStore()
	s.SetDecoration(2, spirv.DecorationDescriptorSet, 4)

	assert.True(t, s.UnsetDecoration(2, spirv.DecorationDescriptorSet))
	assert.False(t, s.UnsetDecoration(2, spirv.DecorationDescriptorSet))
	assert.False(t, s.Has(2, spirv.DecorationDescriptorSet))
}

func TestDecorationStore_FlagsReadAsOne(t *testing.T) {
	m := load(t, fixture.Fragment())

	v, ok := m.Decorations.Decoration(idOf(t, m, "Globals"), spirv.DecorationBlock)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), v)

	_, ok = m.Decorations.Decoration(idOf(t, m, "Globals"), spirv.DecorationBufferBlock)
	assert.False(t, ok)
}

func TestDecorationStore_Members(t *testing.T) {
	m := load(t, fixture.Fragment())
	globals := idOf(t, m, "Globals")

	off, ok := m.Decorations.MemberDecoration(globals, 1, spirv.DecorationOffset)
	assert.True(t, ok)
	assert.Equal(t, uint32(16), off)

	m.Decorations.SetMemberDecoration(globals, 1, spirv.DecorationOffset, 32)
	off, _ = m.Decorations.MemberDecoration(globals, 1, spirv.DecorationOffset)
	assert.Equal(t, uint32(32), off)

	// The id-level store is separate from the member store.
	assert.False(t, m.Decorations.Has(globals, spirv.DecorationOffset))
}

func TestDecorationStore_SortedEncoding(t *testing.T) {
	s := NewDecorationStore()
	s.SetDecoration(7, spirv.DecorationBinding, 2)
	s.SetDecoration(3, spirv.DecorationFlat, 5)
	s.SetMemberDecoration(3, 0, spirv.DecorationOffset, 8)
	s.add(3, noMember, decorationEntry{dec: spirv.DecorationBlock})

	got := s.sorted()
	require.Len(t, got, 4)
	assert.Equal(t, encodedDecoration{id: 3, member: noMember, dec: spirv.DecorationBlock}, got[0])
	// A flag set through the API keeps its literal for reads only.
	assert.Equal(t, encodedDecoration{id: 3, member: noMember, dec: spirv.DecorationFlat}, got[1])
	assert.Equal(t, encodedDecoration{id: 3, member: 0, dec: spirv.DecorationOffset, operands: []uint32{8}}, got[2])
	assert.Equal(t, encodedDecoration{id: 7, member: noMember, dec: spirv.DecorationBinding, operands: []uint32{2}}, got[3])

	v, _ := s.Decoration(3, spirv.DecorationFlat)
	assert.Equal(t, uint32(5), v)
}
