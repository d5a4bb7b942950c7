package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/spirv"
)

func TestEncode_RoundTrip(t *testing.T) {
	m := load(t, fixture.Fragment())
	again := load(t, m.Encode())

	assert.Equal(t, m.Header, again.Header)
	assert.Equal(t, m.ReflectShaderResources(), again.ReflectShaderResources())
	assert.Equal(t, m.ReflectEntryPoints(), again.ReflectEntryPoints())
	assert.Equal(t, len(m.instructions), len(again.instructions))
}

func TestEncode_CarriesDecorationChanges(t *testing.T) {
	m := load(t, fixture.Fragment())
	tex := idOf(t, m, "tex")
	globals := idOf(t, m, "globals")

	m.Decorations.SetDecoration(tex, spirv.DecorationBinding, 9)
	m.Decorations.SetDecoration(tex, spirv.DecorationNonWritable, 1)
	require.True(t, m.Decorations.UnsetDecoration(globals, spirv.DecorationDescriptorSet))
	m.SetName(tex, "albedo")

	again := load(t, m.Encode())
	binding, ok := again.Decorations.Decoration(tex, spirv.DecorationBinding)
	assert.True(t, ok)
	assert.Equal(t, uint32(9), binding)
	assert.True(t, again.Decorations.Has(tex, spirv.DecorationNonWritable))
	assert.False(t, again.Decorations.Has(globals, spirv.DecorationDescriptorSet))

	name, _ := again.Name(tex)
	assert.Equal(t, "albedo", name)
}

func TestEncode_KeepsIDDecorations(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_4)
	b.AddCapability(spirv.CapabilityShader)
	u32 := b.AddTypeInt(32, false)
	c := b.AddConstant(u32, 4)
	b.Append(spirv.Instruction{Opcode: spirv.OpDecorateID, Words: []uint32{u32, 38, c}})

	out, err := spirv.Parse(load(t, b.Build()).Encode())
	require.NoError(t, err)
	found := false
	for _, inst := range out.Instructions {
		if inst.Opcode == spirv.OpDecorateID {
			found = true
			assert.Equal(t, []uint32{u32, 38, c}, inst.Words)
		}
	}
	assert.True(t, found)
}
