// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
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

func compile(t *testing.T, data []byte, options *Options) (string, *TranslationInfo) {
	t.Helper()
	source, info, err := Compile(loadModule(t, data), options)
	require.NoError(t, err)
	require.NotNil(t, info)
	return source, info
}

func compileError(t *testing.T, data []byte, options *Options) *Error {
	t.Helper()
	_, _, err := Compile(loadModule(t, data), options)
	require.Error(t, err)
	var hlslErr *Error
	require.True(t, errors.As(err, &hlslErr), "error %v is not an *hlsl.Error", err)
	return hlslErr
}

func TestParseShaderModel(t *testing.T) {
	tests := []struct {
		input string
		want  ShaderModel
	}{
		{"50", ShaderModel5_0},
		{"5_1", ShaderModel5_1},
		{"6.0", ShaderModel6_0},
		{"sm6_6", ShaderModel6_6},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sm, err := ParseShaderModel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sm)
		})
	}

	_, err := ParseShaderModel("4_0")
	var hlslErr *Error
	require.ErrorAs(t, err, &hlslErr)
	assert.Equal(t, ErrInvalidShaderModel, hlslErr.Kind)
}

func TestShaderModelFeatures(t *testing.T) {
	assert.Equal(t, "SM 5.1", ShaderModel5_1.String())
	assert.Equal(t, "6_2", ShaderModel6_2.ProfileSuffix())
	assert.False(t, ShaderModel5_0.SupportsRegisterSpaces())
	assert.True(t, ShaderModel5_1.SupportsRegisterSpaces())
	assert.False(t, ShaderModel5_1.SupportsDXIL())
	assert.True(t, ShaderModel6_0.SupportsDXIL())
	assert.True(t, ShaderModel6_2.SupportsFloat16())
}

func TestShaderProfile(t *testing.T) {
	profile, err := ShaderProfile(spirv.ExecutionModelFragment, ShaderModel5_1)
	require.NoError(t, err)
	assert.Equal(t, "ps_5_1", profile)

	profile, err = ShaderProfile(spirv.ExecutionModelGLCompute, ShaderModel6_0)
	require.NoError(t, err)
	assert.Equal(t, "cs_6_0", profile)

	_, err = ShaderProfile(spirv.ExecutionModelRayGenerationKHR, ShaderModel6_3)
	assert.Error(t, err)
}

func TestBuiltInToSemantic(t *testing.T) {
	tests := []struct {
		builtin spirv.BuiltIn
		want    string
	}{
		{spirv.BuiltInPosition, "SV_Position"},
		{spirv.BuiltInFragCoord, "SV_Position"},
		{spirv.BuiltInVertexIndex, "SV_VertexID"},
		{spirv.BuiltInFragDepth, "SV_Depth"},
		{spirv.BuiltInGlobalInvocationID, "SV_DispatchThreadID"},
		{spirv.BuiltInLocalInvocationIndex, "SV_GroupIndex"},
	}
	for _, tt := range tests {
		semantic, ok := BuiltInToSemantic(tt.builtin)
		assert.True(t, ok, tt.builtin.String())
		assert.Equal(t, tt.want, semantic)
	}

	_, ok := BuiltInToSemantic(spirv.BuiltInPointSize)
	assert.False(t, ok)
}

func TestNamer(t *testing.T) {
	n := newNamer()
	assert.Equal(t, "value", n.call("value"))
	assert.Equal(t, "Value_1", n.call("Value"), "names differing only in case collide")
	assert.NotEqual(t, "float4", n.call("float4"), "keywords are escaped")
	assert.NotEqual(t, EntryPointName, n.call(EntryPointName), "generated names are reserved")
}

func TestFeatureFlags(t *testing.T) {
	assert.Equal(t, "none", FeatureNone.String())
	flags := FeatureFloat16 | FeatureFineDerivatives
	assert.True(t, flags.Has(FeatureFloat16))
	assert.False(t, flags.Has(FeatureFloat64))
	assert.Equal(t, "Float16, FineDerivatives", flags.String())
}

func TestCompile_Fragment(t *testing.T) {
	source, info := compile(t, fixture.Fragment(), DefaultOptions())

	assert.Equal(t, map[string]string{"main": "main"}, info.EntryPointNames)
	assert.Equal(t, ShaderModel5_1, info.RequiredShaderModel)
	assert.Equal(t, FeatureNone, info.UsedFeatures)

	assert.Contains(t, source, "struct Globals {")
	assert.Contains(t, source, "row_major float4x4 transform;")
	assert.Contains(t, source, "ConstantBuffer<Globals> globals : register(b0, space0);")
	assert.Contains(t, source, "RWByteAddressBuffer particles : register(u1, space0);")
	assert.Contains(t, source, "ConstantBuffer<Push> push;")
	assert.Contains(t, source, "Texture2D<float4> tex : register(t0, space1);")
	assert.Contains(t, source, "SamplerState samp : register(s1, space1);")
	assert.Contains(t, source, "Texture2D<float4> combined : register(t2, space1);")
	assert.Contains(t, source, "SamplerState _combined_sampler : register(s2, space1);")
	assert.Contains(t, source, "RWTexture2D<unorm float4> storage : register(u3, space1);")
	assert.NotContains(t, source, "counter")

	assert.Contains(t, source, "struct SPIRV_Cross_Input {")
	assert.Contains(t, source, "float4 inColor : TEXCOORD0;")
	assert.Contains(t, source, "float2 inUV : TEXCOORD1;")
	assert.Contains(t, source, "float4 gl_FragCoord : SV_Position;")
	assert.Contains(t, source, "struct SPIRV_Cross_Output {")
	assert.Contains(t, source, "float4 outColor : SV_Target0;")

	assert.Contains(t, source, "void frag_main()\n{")
	assert.Contains(t, source, "globals.tint")
	assert.Contains(t, source, "combined.Sample(_combined_sampler, ")
	assert.Contains(t, source, "push.scale")
	assert.Contains(t, source, "SPIRV_Cross_Output main(SPIRV_Cross_Input stage_input)")
	assert.Contains(t, source, "inColor = stage_input.inColor;")
	assert.Contains(t, source, "gl_FragCoord.w = 1.0 / gl_FragCoord.w;")
	assert.Contains(t, source, "    frag_main();\n")
	assert.Contains(t, source, "stage_output.outColor = outColor;")
	assert.Contains(t, source, "return stage_output;")

	assert.Equal(t, "register(b0, space0)", info.RegisterBindings["globals"])
	assert.Equal(t, "register(s2, space1)", info.RegisterBindings["_combined_sampler"])
}

func TestCompile_ShaderModel50(t *testing.T) {
	options := DefaultOptions()
	options.ShaderModel = ShaderModel5_0
	source, _ := compile(t, fixture.Fragment(), options)

	assert.Contains(t, source, "cbuffer globals_cbuffer : register(b0) {\n    Globals globals;\n};")
	assert.Contains(t, source, "Texture2D<float4> tex : register(t0);")
	assert.NotContains(t, source, "ConstantBuffer<Globals>")
}

func TestCompile_PushConstantTarget(t *testing.T) {
	options := DefaultOptions()
	options.PushConstantTarget = &BindTarget{Space: 2, Register: 7}
	source, _ := compile(t, fixture.Fragment(), options)

	assert.Contains(t, source, "ConstantBuffer<Push> push : register(b7, space2);")
}

func TestCompile_BindingMap(t *testing.T) {
	options := DefaultOptions()
	options.BindingMap[ResourceBinding{Group: 1, Binding: 0}] = BindTarget{Space: 4, Register: 9}
	source, info := compile(t, fixture.Fragment(), options)

	assert.Contains(t, source, "Texture2D<float4> tex : register(t9, space4);")
	assert.Equal(t, "register(t9, space4)", info.RegisterBindings["tex"])
}

func TestCompile_MissingBinding(t *testing.T) {
	options := DefaultOptions()
	options.FakeMissingBindings = false
	err := compileError(t, fixture.Fragment(), options)

	assert.True(t, err.IsMissingBinding(), "got %v", err)
}

func TestCompile_Compute(t *testing.T) {
	source, info := compile(t, fixture.Compute(), DefaultOptions())

	assert.Equal(t, "main", info.EntryPointNames["main"])
	assert.Contains(t, source, "RWByteAddressBuffer data : register(u0, space0);")
	assert.Contains(t, source, "static uint3 gl_GlobalInvocationId;")
	assert.Contains(t, source, "uint3 gl_GlobalInvocationId : SV_DispatchThreadID;")
	assert.NotContains(t, source, "SPIRV_Cross_Output")
	assert.Contains(t, source, "void comp_main()\n{")
	assert.Contains(t, source, "asfloat(data.Load(")
	assert.Contains(t, source, "data.Store(")
	assert.Contains(t, source, "[loop]\n")
	assert.Contains(t, source, "while (true) {")
	assert.Contains(t, source, "bool loop_init = true;")
	assert.Contains(t, source, "loop_init = false;")
	assert.Contains(t, source, "break;")
	assert.Contains(t, source, "[numthreads(8, 4, 1)]\nvoid main(SPIRV_Cross_Input stage_input)")
	assert.Contains(t, source, "    comp_main();\n")
}

func TestCompile_Branches(t *testing.T) {
	source, _ := compile(t, fixture.Branches(), DefaultOptions())

	assert.Contains(t, source, "if (")
	assert.Contains(t, source, "} else {")
	assert.Contains(t, source, "picked")
	assert.Contains(t, source, "switch (")
	assert.Contains(t, source, "case 1:")
	assert.Contains(t, source, "case 2:")
	assert.Contains(t, source, "case 3:")
	assert.Contains(t, source, "float outValue : SV_Target0;")
}

func TestCompile_Vertex(t *testing.T) {
	source, _ := compile(t, fixture.Vertex(), DefaultOptions())

	assert.Contains(t, source, "row_major float4x4 viewProj;")
	assert.Contains(t, source, "ConstantBuffer<Camera> camera : register(b0, space0);")
	assert.Contains(t, source, "float3 inPosition : TEXCOORD0;")
	assert.Contains(t, source, "float2 outUV : TEXCOORD0;")
	assert.Contains(t, source, "float4 gl_Position : SV_Position;")
	assert.Contains(t, source, "mul(")
	assert.Contains(t, source, "gl_Position = ")
	assert.Contains(t, source, "void vert_main()\n{")
	assert.NotContains(t, source, "gl_PerVertex")
}

func TestCompile_UnsupportedStage(t *testing.T) {
	err := compileError(t, fixture.RayGen(), DefaultOptions())
	assert.True(t, err.IsUnsupportedFeature(), "got %v", err)
}

func TestCompile_UnknownEntryPoint(t *testing.T) {
	options := DefaultOptions()
	options.EntryPoint = &ir.EntryPointSelector{Name: "missing", Model: spirv.ExecutionModelFragment}
	err := compileError(t, fixture.Fragment(), options)
	assert.Equal(t, ErrEntryPointNotFound, err.Kind, "got %v", err)
}

func TestCompile_NilModule(t *testing.T) {
	_, _, err := Compile(nil, nil)
	var hlslErr *Error
	require.ErrorAs(t, err, &hlslErr)
	assert.True(t, hlslErr.IsInternalError())
}
