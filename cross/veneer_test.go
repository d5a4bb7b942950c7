package cross

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/engine"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e), "error %v is not *Error", err)
	assert.Equal(t, code, e.Code, err.Error())
}

func TestEntryPoints_UnknownModelFailsWhole(t *testing.T) {
	f := newFake()
	f.entryPoints = []fakeEntryPoint{
		{"vs", uint32(spirv.ExecutionModelVertex)},
		{"rgen", uint32(spirv.ExecutionModelRayGenerationKHR)},
		{"fs", uint32(spirv.ExecutionModelFragment)},
	}
	c := f.compiler()

	eps, err := c.EntryPoints()
	requireCode(t, err, Unhandled)
	assert.Nil(t, eps)
	assert.Zero(t, f.Outstanding())
}

func TestEntryPoints_InvalidUTF8Name(t *testing.T) {
	f := newFake()
	f.entryPoints = []fakeEntryPoint{
		{"ma\xffin", uint32(spirv.ExecutionModelFragment)},
		{"next", uint32(spirv.ExecutionModelVertex)},
	}
	c := f.compiler()

	eps, err := c.EntryPoints()
	requireCode(t, err, Unhandled)
	assert.Nil(t, eps)
	assert.Zero(t, f.Outstanding())
}

func TestEntryPoints_Empty(t *testing.T) {
	f := newFake()
	c := f.compiler()

	eps, err := c.EntryPoints()
	require.NoError(t, err)
	assert.NotNil(t, eps)
	assert.Empty(t, eps)
	assert.Zero(t, f.Outstanding())
}

func TestEntryPoints_AllModels(t *testing.T) {
	f := newFake()
	for m := range len(executionModels) {
		f.entryPoints = append(f.entryPoints, fakeEntryPoint{"ep", uint32(executionModels[m])})
	}
	c := f.compiler()

	eps, err := c.EntryPoints()
	require.NoError(t, err)
	require.Len(t, eps, len(executionModels))
	for i, ep := range eps {
		assert.Equal(t, ExecutionModel(i), ep.ExecutionModel)
	}
	assert.Zero(t, f.Outstanding())
}

func TestShaderResources_StopsAtFailingCategory(t *testing.T) {
	f := newFake()
	f.resources[ir.ResourceUniformBuffer] = []fakeResource{{1, "ubo"}, {2, "ubo2"}}
	f.resources[ir.ResourceStageInput] = []fakeResource{{3, "good"}, {4, "bad\xfe"}, {5, "after"}}
	f.resources[ir.ResourceSampledImage] = []fakeResource{{6, "tex"}}
	c := f.compiler()

	res, err := c.ShaderResources()
	requireCode(t, err, Unhandled)
	assert.Equal(t, ShaderResources{}, res)
	assert.Equal(t, []ir.ResourceKind{ir.ResourceUniformBuffer, ir.ResourceStorageBuffer, ir.ResourceStageInput}, f.resourceCalls)
	assert.Zero(t, f.Outstanding())
}

func TestShaderResources_ElevenCategories(t *testing.T) {
	f := newFake()
	for kind := range ir.ResourceKindCount {
		f.resources[kind] = []fakeResource{{uint32(kind) + 1, kind.String()}}
	}
	c := f.compiler()

	res, err := c.ShaderResources()
	require.NoError(t, err)
	assert.Len(t, f.resourceCalls, int(ir.ResourceKindCount))
	assert.Equal(t, []Resource{{ID: 1, TypeID: 101, BaseTypeID: 201, Name: "UniformBuffer"}}, res.UniformBuffers)
	assert.Equal(t, "SeparateSampler", res.SeparateSamplers[0].Name)
	assert.Equal(t, "PushConstantBuffer", res.PushConstantBuffers[0].Name)
	assert.Zero(t, f.Outstanding())
}

func TestStatusCollapse(t *testing.T) {
	tests := []struct {
		status engine.Status
		want   ErrorCode
	}{
		{engine.Unhandled, Unhandled},
		{engine.InvalidID, Unhandled},
		{engine.InvalidModule, Unhandled},
		{engine.InvalidPointer, Unhandled},
		{engine.InvalidArgument, Unhandled},
		{engine.Status(42), Unhandled},
		{engine.Status(-7), Unhandled},
		{engine.NotDecorated, NotDecorated},
		{engine.CompilationError, CompilationError},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			f := newFake()
			f.status = tt.status
			c := f.compiler()

			_, err := c.Decoration(1, Binding)
			requireCode(t, err, tt.want)
			requireCode(t, c.SetDecoration(1, Binding, 2), tt.want)
		})
	}
}

func TestCompile_InvalidUTF8(t *testing.T) {
	f := newFake()
	f.source = "void main() { \xc3\x28 }"
	c := f.compiler()

	_, err := c.Compile()
	requireCode(t, err, Unhandled)
	assert.Zero(t, f.Outstanding())
}

func TestCompile_CopiesAndFrees(t *testing.T) {
	f := newFake()
	f.source = "void main() {}"
	c := f.compiler()

	source, err := c.Compile()
	require.NoError(t, err)
	assert.Equal(t, f.source, source)
	assert.Zero(t, f.Outstanding())

	data, err := c.Binary()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
	assert.Zero(t, f.Outstanding())

	allocs, frees := f.Stats()
	assert.Equal(t, allocs, frees)
}

func TestClose_ReleasesOnce(t *testing.T) {
	f := newFake()
	c := f.compiler()

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, f.deletes)

	_, err := c.Decoration(1, Binding)
	assert.ErrorIs(t, err, ErrUnhandled)
	_, err = c.Compile()
	assert.ErrorIs(t, err, ErrUnhandled)
	_, err = c.EntryPoints()
	assert.ErrorIs(t, err, ErrUnhandled)
	_, err = c.ShaderResources()
	assert.ErrorIs(t, err, ErrUnhandled)
	assert.ErrorIs(t, c.SetName(1, "x"), ErrUnhandled)
	assert.Equal(t, 1, f.deletes)
}

func TestEnumMappings(t *testing.T) {
	for d := range decorationCount {
		raw, ok := d.raw()
		require.True(t, ok)
		parsed, err := ParseDecoration(spirv.Decoration(raw).String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	_, ok := decorationCount.raw()
	assert.False(t, ok)

	for m := range ExecutionModel(len(executionModels)) {
		raw, ok := m.raw()
		require.True(t, ok)
		back, ok := executionModelFromRaw(raw)
		require.True(t, ok)
		assert.Equal(t, m, back)
	}
	_, ok = executionModelFromRaw(uint32(spirv.ExecutionModelMeshNV))
	assert.False(t, ok)

	text, err := GlCompute.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "GLCompute", string(text))

	var d Decoration
	require.NoError(t, d.UnmarshalText([]byte("DescriptorSet")))
	assert.Equal(t, DescriptorSet, d)
	assert.Error(t, d.UnmarshalText([]byte("Bindings")))
}

func TestError(t *testing.T) {
	err := error(&Error{Code: NotDecorated, Message: "get decoration Binding"})
	assert.Equal(t, "spvcross: NotDecorated: get decoration Binding", err.Error())
	assert.ErrorIs(t, err, ErrNotDecorated)
	assert.NotErrorIs(t, err, ErrUnhandled)
	assert.Equal(t, "spvcross: Unhandled", ErrUnhandled.Error())
}

func TestCompile_ErrorMessageFromHandle(t *testing.T) {
	f := newFake()
	f.status = engine.CompilationError
	f.lastError = "msl: execution model RayGenerationKHR is not supported"
	c := f.compiler()

	_, err := c.Compile()
	requireCode(t, err, CompilationError)
	assert.Equal(t, "spvcross: CompilationError: "+f.lastError, err.Error())

	f.lastError = ""
	_, err = c.Compile()
	requireCode(t, err, CompilationError)
	assert.Equal(t, "spvcross: CompilationError: compile", err.Error())
	assert.Zero(t, f.Outstanding())
}
