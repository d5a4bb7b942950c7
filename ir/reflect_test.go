package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/spirv"
)

func names(rs []Resource) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestReflectShaderResources_Fragment(t *testing.T) {
	m := load(t, fixture.Fragment())
	res := m.ReflectShaderResources()

	assert.Equal(t, []string{"globals"}, names(res.UniformBuffers))
	assert.Equal(t, []string{"particles"}, names(res.StorageBuffers))
	assert.Equal(t, []string{"inColor", "inUV"}, names(res.StageInputs))
	assert.Equal(t, []string{"outColor"}, names(res.StageOutputs))
	assert.Equal(t, []string{"subpass"}, names(res.SubpassInputs))
	assert.Equal(t, []string{"storage"}, names(res.StorageImages))
	assert.Equal(t, []string{"combined"}, names(res.SampledImages))
	assert.Equal(t, []string{"counter"}, names(res.AtomicCounters))
	assert.Equal(t, []string{"push"}, names(res.PushConstantBuffers))
	assert.Equal(t, []string{"tex"}, names(res.SeparateImages))
	assert.Equal(t, []string{"samp"}, names(res.SeparateSamplers))

	ubo := res.UniformBuffers[0]
	assert.Equal(t, idOf(t, m, "globals"), ubo.ID)
	assert.Equal(t, idOf(t, m, "Globals"), ubo.BaseTypeID)
	assert.Equal(t, spirv.OpTypePointer, m.Opcode(ubo.TypeID))
}

func TestResources_EmptyCategoryIsNotNil(t *testing.T) {
	m := load(t, fixture.Compute())
	res := m.Resources(ResourceUniformBuffer)
	assert.NotNil(t, res)
	assert.Empty(t, res)

	// The storage buffer uses the StorageBuffer class; the builtin input is skipped.
	assert.Equal(t, []string{"data"}, names(m.Resources(ResourceStorageBuffer)))
	assert.Empty(t, m.Resources(ResourceStageInput))
}

func TestResources_BuiltinBlockExcluded(t *testing.T) {
	m := load(t, fixture.Vertex())
	assert.Equal(t, []string{"outUV"}, names(m.Resources(ResourceStageOutput)))
	assert.Equal(t, []string{"inPosition"}, names(m.Resources(ResourceStageInput)))
}

func TestResources_NameFallsBackToType(t *testing.T) {
	m := load(t, fixture.Fragment())
	globals := idOf(t, m, "globals")
	m.SetName(globals, "")
	assert.Equal(t, []string{"Globals"}, names(m.Resources(ResourceUniformBuffer)))
}

func TestResourceKind_String(t *testing.T) {
	assert.Equal(t, "UniformBuffer", ResourceUniformBuffer.String())
	assert.Equal(t, "SeparateSampler", ResourceSeparateSampler.String())
	assert.Equal(t, "Unknown", ResourceKindCount.String())
}

func TestReflectEntryPoints(t *testing.T) {
	m := load(t, fixture.Compute())
	eps := m.ReflectEntryPoints()
	require.Len(t, eps, 1)
	assert.Equal(t, ReflectedEntryPoint{
		Name:          "main",
		Model:         spirv.ExecutionModelGLCompute,
		WorkGroupSize: [3]uint32{8, 4, 1},
	}, eps[0])

	frag := load(t, fixture.Fragment()).ReflectEntryPoints()
	require.Len(t, frag, 1)
	assert.Equal(t, [3]uint32{}, frag[0].WorkGroupSize)
}

func TestWorkGroupSize_LocalSizeID(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	u32 := b.AddTypeInt(32, false)
	x := b.AddConstant(u32, 16)
	y := b.AddSpecConstant(u32, 2)
	z := b.AddConstant(u32, 1)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	fn := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelGLCompute, fn, "main", nil)
	b.Append(spirv.Instruction{
		Opcode: spirv.OpExecutionModeID,
		Words:  []uint32{fn, uint32(spirv.ExecutionModeLocalSizeID), x, y, z},
	})

	m := load(t, b.Build())
	assert.Equal(t, [3]uint32{16, 2, 1}, m.WorkGroupSize(fn))
}

func TestDeclaredStructSize(t *testing.T) {
	m := load(t, fixture.Fragment())

	// Globals: mat4 at offset 16 with a matrix stride of 16.
	size, err := m.DeclaredStructSize(idOf(t, m, "Globals"))
	require.NoError(t, err)
	assert.Equal(t, uint32(80), size)

	// Particles ends in a runtime array, which contributes nothing.
	size, err = m.DeclaredStructSize(idOf(t, m, "Particles"))
	require.NoError(t, err)
	assert.Equal(t, uint32(4), size)

	_, err = m.DeclaredStructSize(idOf(t, m, "globals"))
	var irErr *Error
	require.ErrorAs(t, err, &irErr)
	assert.Equal(t, ErrInvalidID, irErr.Kind)
}

func TestDeclaredStructSize_Arrays(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	f32 := b.AddTypeFloat(32)
	u32 := b.AddTypeInt(32, false)
	vec3 := b.AddTypeVector(f32, 3)
	four := b.AddConstant(u32, 4)
	arr := b.AddTypeArray(vec3, four)
	b.AddDecorate(arr, spirv.DecorationArrayStride, 16)
	st := b.AddTypeStruct(f32, arr)
	b.AddMemberDecorate(st, 0, spirv.DecorationOffset, 0)
	b.AddMemberDecorate(st, 1, spirv.DecorationOffset, 16)
	tail := b.AddTypeStruct(f32, vec3)
	b.AddMemberDecorate(tail, 0, spirv.DecorationOffset, 0)
	b.AddMemberDecorate(tail, 1, spirv.DecorationOffset, 4)

	m := load(t, b.Build())
	size, err := m.DeclaredStructSize(st)
	require.NoError(t, err)
	assert.Equal(t, uint32(16+4*16), size)

	size, err = m.DeclaredStructSize(tail)
	require.NoError(t, err)
	assert.Equal(t, uint32(4+12), size)
}
