package ir

import (
	"cmp"
	"slices"

	"github.com/gogpu/spvcross/spirv"
)

// noMember marks a decoration on the id itself rather than a struct member.
const noMember int64 = -1

type decorationKey struct {
	id     uint32
	member int64
}

type decorationEntry struct {
	dec      spirv.Decoration
	operands []uint32
	// assigned marks a literal stored through SetDecoration. A flag
	// decoration keeps its assigned literal for reads but encodes without it.
	assigned bool
}

// DecorationStore maps (id, decoration) pairs to their literal operands.
//
// The mapping is partial: an absent pair is reported as not decorated, which
// is distinct from a pair whose literal is zero. Flag decorations read from
// the binary carry no operand and report the literal 1.
type DecorationStore struct {
	entries map[decorationKey]map[spirv.Decoration]decorationEntry
}

// NewDecorationStore returns an empty store.
func NewDecorationStore() *DecorationStore {
	return &DecorationStore{entries: make(map[decorationKey]map[spirv.Decoration]decorationEntry)}
}

func (s *DecorationStore) add(id uint32, member int64, e decorationEntry) {
	key := decorationKey{id: id, member: member}
	decs := s.entries[key]
	if decs == nil {
		decs = make(map[spirv.Decoration]decorationEntry)
		s.entries[key] = decs
	}
	e.operands = append([]uint32(nil), e.operands...)
	decs[e.dec] = e
}

func (s *DecorationStore) lookup(id uint32, member int64, dec spirv.Decoration) (uint32, bool) {
	e, ok := s.entries[decorationKey{id: id, member: member}][dec]
	if !ok {
		return 0, false
	}
	if len(e.operands) == 0 {
		return 1, true
	}
	return e.operands[0], true
}

// take removes and returns every decoration on id, sorted by decoration.
func (s *DecorationStore) take(id uint32) []decorationEntry {
	key := decorationKey{id: id, member: noMember}
	decs := s.entries[key]
	delete(s.entries, key)

	out := make([]decorationEntry, 0, len(decs))
	for _, e := range decs {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b decorationEntry) int { return cmp.Compare(a.dec, b.dec) })
	return out
}

// Decoration returns the literal of dec on id.
func (s *DecorationStore) Decoration(id uint32, dec spirv.Decoration) (uint32, bool) {
	return s.lookup(id, noMember, dec)
}

// Has reports whether id carries dec.
func (s *DecorationStore) Has(id uint32, dec spirv.Decoration) bool {
	_, ok := s.entries[decorationKey{id: id, member: noMember}][dec]
	return ok
}

// Operands returns every literal operand of dec on id.
func (s *DecorationStore) Operands(id uint32, dec spirv.Decoration) ([]uint32, bool) {
	e, ok := s.entries[decorationKey{id: id, member: noMember}][dec]
	return e.operands, ok
}

// SetDecoration stores literal as the value of dec on id, replacing any
// prior value.
func (s *DecorationStore) SetDecoration(id uint32, dec spirv.Decoration, literal uint32) {
	s.add(id, noMember, decorationEntry{dec: dec, operands: []uint32{literal}, assigned: true})
}

// UnsetDecoration removes dec from id. It reports whether dec was present.
func (s *DecorationStore) UnsetDecoration(id uint32, dec spirv.Decoration) bool {
	key := decorationKey{id: id, member: noMember}
	if _, ok := s.entries[key][dec]; !ok {
		return false
	}
	delete(s.entries[key], dec)
	if len(s.entries[key]) == 0 {
		delete(s.entries, key)
	}
	return true
}

// MemberDecoration returns the literal of dec on a struct member.
func (s *DecorationStore) MemberDecoration(id, member uint32, dec spirv.Decoration) (uint32, bool) {
	return s.lookup(id, int64(member), dec)
}

// HasMember reports whether a struct member carries dec.
func (s *DecorationStore) HasMember(id, member uint32, dec spirv.Decoration) bool {
	_, ok := s.entries[decorationKey{id: id, member: int64(member)}][dec]
	return ok
}

// SetMemberDecoration stores literal as the value of dec on a struct member.
func (s *DecorationStore) SetMemberDecoration(id, member uint32, dec spirv.Decoration, literal uint32) {
	s.add(id, int64(member), decorationEntry{dec: dec, operands: []uint32{literal}, assigned: true})
}

// encodedDecoration is one OpDecorate or OpMemberDecorate to write.
type encodedDecoration struct {
	id       uint32
	member   int64
	dec      spirv.Decoration
	operands []uint32
}

// encodedOperands returns the operands written to the binary.
func (e decorationEntry) encodedOperands() []uint32 {
	if e.assigned && !e.dec.HasLiteral() {
		return nil
	}
	return e.operands
}

// sorted lists every decoration ordered by id, member and decoration.
func (s *DecorationStore) sorted() []encodedDecoration {
	var out []encodedDecoration
	for key, decs := range s.entries {
		for dec, e := range decs {
			out = append(out, encodedDecoration{id: key.id, member: key.member, dec: dec, operands: e.encodedOperands()})
		}
	}
	slices.SortFunc(out, func(a, b encodedDecoration) int {
		if c := cmp.Compare(a.id, b.id); c != 0 {
			return c
		}
		if c := cmp.Compare(a.member, b.member); c != 0 {
			return c
		}
		return cmp.Compare(a.dec, b.dec)
	})
	return out
}
