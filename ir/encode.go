package ir

import (
	"cmp"
	"slices"

	"github.com/gogpu/spvcross/spirv"
)

// Encode serializes the module with its current names and decorations.
// Every other instruction is written back unchanged.
func (m *Module) Encode() []byte {
	b := spirv.NewModuleBuilder(m.Header.Version)
	b.SetGenerator(m.Header.Generator)
	b.SetBound(m.Header.Bound)

	for _, inst := range m.instructions {
		switch inst.Opcode {
		case spirv.OpName, spirv.OpMemberName, spirv.OpDecorate, spirv.OpMemberDecorate,
			spirv.OpDecorationGroup, spirv.OpGroupDecorate, spirv.OpGroupMemberDecorate:
			continue
		}
		b.Append(inst)
	}

	for _, id := range sortedKeys(m.names) {
		b.AddName(id, m.names[id])
	}
	for _, id := range sortedKeys(m.memberNames) {
		members := m.memberNames[id]
		for _, member := range sortedKeys(members) {
			b.AddMemberName(id, member, members[member])
		}
	}

	for _, d := range m.Decorations.sorted() {
		if d.member == noMember {
			b.AddDecorate(d.id, d.dec, d.operands...)
			continue
		}
		b.AddMemberDecorate(d.id, uint32(d.member), d.dec, d.operands...)
	}
	return b.Build()
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, cmp.Compare[uint32])
	return keys
}
