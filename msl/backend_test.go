package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

func loadModule(t *testing.T, data []byte) *ir.Module {
	t.Helper()
	sm, err := spirv.Parse(data)
	require.NoError(t, err)
	m, err := ir.Load(sm)
	require.NoError(t, err)
	return m
}

func compile(t *testing.T, data []byte, options Options, pipeline PipelineOptions) (string, TranslationInfo) {
	t.Helper()
	source, info, err := CompileWithPipeline(loadModule(t, data), options, pipeline)
	require.NoError(t, err)
	return source, info
}

func slot(n uint8) *uint8 {
	return &n
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "2.1", Version2_1.String())
	assert.True(t, Version1_2.less(Version2_0))
	assert.False(t, Version3_0.less(Version2_3))

	v, err := ParseVersion("2_3")
	require.NoError(t, err)
	assert.Equal(t, Version2_3, v)

	v, err = ParseVersion("1.2")
	require.NoError(t, err)
	assert.Equal(t, Version1_2, v)

	_, err = ParseVersion("three")
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, Version2_1, opts.LangVersion)
	assert.True(t, opts.FakeMissingBindings)
}

func TestEscapeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"color", "color"},
		{"float4", "float4_"},
		{"half3x3", "half3x3_"},
		{"kernel", "kernel_"},
		{"in", "in_"},
		{"packed_data", "packed_data_"},
		{"__hidden", "m__hidden"},
		{"_Upper", "m_Upper"},
		{"compute(vf4;", "compute_"},
		{"2d", "_2d"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeName(tt.input))
		})
	}
}

func TestNamer(t *testing.T) {
	n := newNamer()
	assert.Equal(t, "value", n.call("value"))
	assert.Equal(t, "value_1", n.call("value"))
	assert.Equal(t, "sampler_", n.call("sampler"))
	assert.Equal(t, "_unnamed", n.call("%%"))
}

func TestCompile_Fragment(t *testing.T) {
	source, info := compile(t, fixture.Fragment(), DefaultOptions(), PipelineOptions{})

	assert.Equal(t, map[string]string{"main": "main0"}, info.EntryPointNames)
	assert.False(t, info.RequiresSizesBuffer)

	assert.Contains(t, source, "#include <metal_stdlib>")
	assert.Contains(t, source, "using metal::uint;")
	assert.Contains(t, source, "struct Globals {\n    metal::float4 tint;\n    metal::float4x4 transform;\n};")
	assert.Contains(t, source, "struct Particles {\n    uint count;\n    float values[1];\n};")
	assert.Contains(t, source, "struct main0_in {\n    metal::float4 inColor [[user(locn0)]];\n    metal::float2 inUV [[user(locn1)]];\n};")
	assert.Contains(t, source, "struct main0_out {\n    metal::float4 outColor [[color(0)]];\n};")

	assert.Contains(t, source, "fragment main0_out main0(main0_in in [[stage_in]], ")
	assert.Contains(t, source, "constant Globals& globals [[buffer(0)]]")
	assert.Contains(t, source, "device Particles& particles [[buffer(1)]]")
	assert.Contains(t, source, "constant Push& push [[buffer(2)]]")
	assert.Contains(t, source, "metal::texture2d<float> tex [[texture(0)]]")
	assert.Contains(t, source, "metal::sampler samp [[sampler(1)]]")
	assert.Contains(t, source, "metal::texture2d<float> combined [[texture(2)]]")
	assert.Contains(t, source, "metal::sampler combinedSmplr [[sampler(2)]]")
	assert.Contains(t, source, "metal::texture2d<float, metal::access::read_write> storage [[texture(3)]]")
	assert.Contains(t, source, "metal::texture2d<float> subpass [[texture(4)]]")
	assert.Contains(t, source, "metal::float4 gl_FragCoord [[position]]")
	assert.NotContains(t, source, "counter")

	assert.Contains(t, source, "main0_out out = {};")
	assert.Contains(t, source, "in.inColor")
	assert.Contains(t, source, "globals.tint")
	assert.Contains(t, source, "combined.sample(combinedSmplr, ")
	assert.Contains(t, source, "push.scale")
	assert.Contains(t, source, "out.outColor = ")
	assert.Contains(t, source, "return out;")

	assert.Equal(t, map[string]string{
		"globals":       "[[buffer(0)]]",
		"particles":     "[[buffer(1)]]",
		"push":          "[[buffer(2)]]",
		"tex":           "[[texture(0)]]",
		"samp":          "[[sampler(1)]]",
		"combined":      "[[texture(2)]]",
		"combinedSmplr": "[[sampler(2)]]",
		"storage":       "[[texture(3)]]",
		"subpass":       "[[texture(4)]]",
	}, info.ResourceSlots)
}

func TestCompile_Deterministic(t *testing.T) {
	first, _ := compile(t, fixture.Fragment(), DefaultOptions(), PipelineOptions{})
	for range 5 {
		again, _ := compile(t, fixture.Fragment(), DefaultOptions(), PipelineOptions{})
		require.Equal(t, first, again)
	}
}

func TestCompile_PerEntryPointMap(t *testing.T) {
	options := DefaultOptions()
	options.PerEntryPointMap = map[string]EntryPointResources{
		"main": {
			Resources: map[ResourceBinding]BindTarget{
				{Group: 1, Binding: 2}: {Texture: slot(7), Sampler: slot(5)},
				{Group: 0, Binding: 0}: {Buffer: slot(3)},
			},
			PushConstantBuffer: slot(9),
		},
	}
	source, info := compile(t, fixture.Fragment(), options, PipelineOptions{})

	assert.Contains(t, source, "metal::texture2d<float> combined [[texture(7)]]")
	assert.Contains(t, source, "metal::sampler combinedSmplr [[sampler(5)]]")
	assert.Contains(t, source, "constant Globals& globals [[buffer(3)]]")
	assert.Contains(t, source, "constant Push& push [[buffer(9)]]")
	// Unmapped resources keep their binding number when it is free.
	assert.Equal(t, "[[buffer(1)]]", info.ResourceSlots["particles"])
	assert.Equal(t, "[[texture(0)]]", info.ResourceSlots["tex"])
}

func TestCompile_MissingBinding(t *testing.T) {
	options := DefaultOptions()
	options.FakeMissingBindings = false
	_, _, err := Compile(loadModule(t, fixture.Fragment()), options)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "msl: no Metal")
}

func TestCompile_MappedBindingWithoutSlotKind(t *testing.T) {
	options := DefaultOptions()
	options.PerEntryPointMap = map[string]EntryPointResources{
		"main": {Resources: map[ResourceBinding]BindTarget{{Group: 1, Binding: 0}: {Buffer: slot(1)}}},
	}
	_, _, err := Compile(loadModule(t, fixture.Fragment()), options)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no texture slot")
}

func TestCompile_Compute(t *testing.T) {
	source, info := compile(t, fixture.Compute(), DefaultOptions(), PipelineOptions{})

	assert.Equal(t, "main0", info.EntryPointNames["main"])
	assert.Contains(t, source, "struct Data {\n    float values[1];\n};")
	assert.Contains(t, source, "kernel void main0(device Data& data [[buffer(0)]], metal::uint3 gl_GlobalInvocationId [[thread_position_in_grid]]) {")
	assert.NotContains(t, source, "main0_out")
	assert.NotContains(t, source, "[[stage_in]]")
	assert.Contains(t, source, "data.values[")
	assert.Contains(t, source, "gl_GlobalInvocationId")
	assert.Contains(t, source, "while (true) {")
	assert.Contains(t, source, "bool loop_init = true;")
	assert.Contains(t, source, "loop_init = false;")
	assert.Contains(t, source, "break;")
}

func TestCompile_Branches(t *testing.T) {
	source, _ := compile(t, fixture.Branches(), DefaultOptions(), PipelineOptions{})

	assert.Contains(t, source, "if (")
	assert.Contains(t, source, "} else {")
	assert.Contains(t, source, "picked")
	assert.Contains(t, source, "switch (")
	assert.Contains(t, source, "case 1:")
	assert.Contains(t, source, "case 2:")
	assert.Contains(t, source, "case 3:")
	assert.Contains(t, source, "float outValue [[color(0)]];")
	assert.Contains(t, source, "float inValue [[user(locn0)]];")
}

func TestCompile_Vertex(t *testing.T) {
	source, _ := compile(t, fixture.Vertex(), DefaultOptions(), PipelineOptions{})

	assert.Contains(t, source, "struct Camera {\n    metal::float4x4 viewProj;\n};")
	assert.NotContains(t, source, "struct gl_PerVertex")
	assert.Contains(t, source, "metal::float3 inPosition [[attribute(0)]];")
	assert.Contains(t, source, "metal::float4 gl_Position [[position]];")
	assert.Contains(t, source, "metal::float2 outUV [[user(locn0)]];")
	assert.Contains(t, source, "vertex main0_out main0(main0_in in [[stage_in]], constant Camera& camera [[buffer(0)]]) {")
	assert.Contains(t, source, "metal::float4x4 ")
	assert.Contains(t, source, " = camera.viewProj;")
	assert.Contains(t, source, "out.gl_Position = ")
	assert.Contains(t, source, "out.outUV = ")
	assert.Contains(t, source, "return out;")
}

func TestCompile_OlderVersion(t *testing.T) {
	options := DefaultOptions()
	options.LangVersion = Version1_2
	source, _ := compile(t, fixture.Vertex(), options, PipelineOptions{})
	assert.Contains(t, source, "vertex main0_out main0(")
}

func TestCompile_UnsupportedStage(t *testing.T) {
	_, _, err := Compile(loadModule(t, fixture.RayGen()), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestCompile_UnknownEntryPoint(t *testing.T) {
	pipeline := PipelineOptions{EntryPoint: &ir.EntryPointSelector{Name: "missing", Model: spirv.ExecutionModelFragment}}
	_, _, err := CompileWithPipeline(loadModule(t, fixture.Fragment()), DefaultOptions(), pipeline)
	require.Error(t, err)
}

func TestCompile_NilModule(t *testing.T) {
	_, _, err := Compile(nil, DefaultOptions())
	assert.EqualError(t, err, "msl: module is nil")
}

func TestBuiltinAttribute(t *testing.T) {
	attr, typ, ok := builtinAttribute(spirv.BuiltInVertexIndex, spirv.ExecutionModelVertex, true)
	require.True(t, ok)
	assert.Equal(t, "[[vertex_id]]", attr)
	assert.Equal(t, "uint", typ)

	attr, _, ok = builtinAttribute(spirv.BuiltInFragDepth, spirv.ExecutionModelFragment, false)
	require.True(t, ok)
	assert.Equal(t, "[[depth(any)]]", attr)

	_, _, ok = builtinAttribute(spirv.BuiltInPosition, spirv.ExecutionModelFragment, false)
	assert.False(t, ok, "fragment shaders cannot write a position")

	_, _, ok = builtinAttribute(spirv.BuiltInHelperInvocation, spirv.ExecutionModelFragment, true)
	assert.False(t, ok)
}

func TestHalfToFloat(t *testing.T) {
	assert.InDelta(t, 1.0, halfToFloat(0x3c00), 0)
	assert.InDelta(t, -2.0, halfToFloat(0xc000), 0)
	assert.InDelta(t, 0.5, halfToFloat(0x3800), 0)
	assert.Equal(t, "INFINITY", formatFloat(float64(halfToFloat(0x7c00))))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.0", formatFloat(1))
	assert.Equal(t, "0.25", formatFloat(0.25))
	assert.Equal(t, "1e+20", formatFloat(1e20))
}
