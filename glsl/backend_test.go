// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

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

func compile(t *testing.T, data []byte, options Options) (string, TranslationInfo) {
	t.Helper()
	source, info, err := Compile(loadModule(t, data), options)
	require.NoError(t, err)
	return source, info
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion(450, false)
	require.NoError(t, err)
	assert.Equal(t, Version450, v)
	assert.Equal(t, "450", v.String())

	v, err = ParseVersion(310, true)
	require.NoError(t, err)
	assert.Equal(t, VersionES310, v)
	assert.Equal(t, "310 es", v.String())

	_, err = ParseVersion(45, false)
	assert.Error(t, err)
}

func TestVersionFeatures(t *testing.T) {
	assert.False(t, Version330.SupportsCompute())
	assert.True(t, Version430.SupportsCompute())
	assert.False(t, VersionES300.SupportsStorageBuffers())
	assert.True(t, VersionES310.SupportsStorageBuffers())
	assert.False(t, Version400.supportsExplicitBinding())
	assert.True(t, Version420.supportsExplicitBinding())
}

func TestCompile_Fragment(t *testing.T) {
	source, info := compile(t, fixture.Fragment(), Options{})

	assert.Equal(t, map[string]string{"main": "main"}, info.EntryPointNames)
	assert.Equal(t, Version450, info.RequiredVersion)
	assert.Contains(t, source, "#version 450\n")
	assert.Contains(t, source, "layout(std140, binding = 0) uniform Globals\n{\n    vec4 tint;\n    mat4 transform;\n} globals;")
	assert.Contains(t, source, "layout(std430, binding = 1) buffer Particles\n{\n    uint count;\n    float values[];\n} particles;")
	assert.Contains(t, source, "struct Push\n{\n    float scale;\n};")
	assert.Contains(t, source, "uniform Push push;")
	assert.Contains(t, source, "layout(location = 0) in vec4 inColor;")
	assert.Contains(t, source, "layout(location = 1) in vec2 inUV;")
	assert.Contains(t, source, "layout(location = 0) out vec4 outColor;")
	assert.Contains(t, source, "layout(binding = 0) uniform sampler2D tex;")
	assert.Contains(t, source, "layout(binding = 2) uniform sampler2D combined;")
	assert.Contains(t, source, "layout(binding = 3, rgba8) uniform image2D storage;")
	assert.Contains(t, source, "layout(binding = 4) uniform sampler2D subpass;")
	assert.Contains(t, source, "uniform atomic_uint counter;")
	assert.Contains(t, source, "void main()")
	assert.Contains(t, source, "texture(combined, ")
	assert.Contains(t, source, "push.scale;")
	assert.Contains(t, source, "globals.tint;")
	assert.Contains(t, source, "outColor = ")

	// Separate samplers and builtin inputs are never declared.
	assert.NotContains(t, source, "samp;")
	assert.NotContains(t, source, "in vec4 gl_FragCoord")
}

func TestCompile_FragmentVulkan(t *testing.T) {
	source, _ := compile(t, fixture.Fragment(), Options{Vulkan: true})

	assert.Contains(t, source, "layout(std140, set = 0, binding = 0) uniform Globals")
	assert.Contains(t, source, "layout(push_constant, std430) uniform Push\n{\n    float scale;\n} push;")
	assert.Contains(t, source, "layout(set = 1, binding = 0) uniform texture2D tex;")
	assert.Contains(t, source, "layout(set = 1, binding = 1) uniform sampler samp;")
	assert.Contains(t, source, "layout(set = 1, binding = 2) uniform sampler2D combined;")
	assert.Contains(t, source, "layout(input_attachment_index = 0, set = 1, binding = 4) uniform subpassInput subpass;")
	assert.NotContains(t, source, "struct Push")
}

func TestCompile_Compute(t *testing.T) {
	source, _ := compile(t, fixture.Compute(), Options{})

	assert.Contains(t, source, "layout(local_size_x = 8, local_size_y = 4, local_size_z = 1) in;")
	assert.Contains(t, source, "layout(std430, binding = 0) buffer Data\n{\n    float values[];\n} data;")
	assert.Contains(t, source, "    int i;\n")
	assert.Contains(t, source, "    i = 0;\n")
	assert.Contains(t, source, "bool loop_init = true;\n")
	assert.Contains(t, source, "if (!loop_init) {")
	assert.Contains(t, source, "loop_init = false;")
	assert.Contains(t, source, "break;")
	assert.Contains(t, source, "data.values[")
	assert.Contains(t, source, "gl_GlobalInvocationID;")
	assert.Contains(t, source, " + 1.0);")
	assert.Contains(t, source, " + 1);")
}

func TestCompile_ComputeNeedsVersion(t *testing.T) {
	_, _, err := Compile(loadModule(t, fixture.Compute()), Options{LangVersion: Version330})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glsl: compute shaders require GLSL 430")
}

func TestCompile_Branches(t *testing.T) {
	source, _ := compile(t, fixture.Branches(), Options{})

	assert.Contains(t, source, "    float picked;\n")
	assert.Contains(t, source, " > 0.5)) {")
	assert.Contains(t, source, "} else {")
	assert.Contains(t, source, "outValue = picked;")
	assert.Contains(t, source, "switch (int(picked)) {")
	assert.Contains(t, source, "case 1:\n")
	assert.Contains(t, source, "case 2:\n")
	assert.Contains(t, source, "case 3:\n")
	assert.Contains(t, source, "default:\n")
	assert.Contains(t, source, "outValue = 3.0;")
}

func TestCompile_Vertex(t *testing.T) {
	source, _ := compile(t, fixture.Vertex(), Options{})

	assert.Contains(t, source, "layout(std140, binding = 0) uniform Camera\n{\n    mat4 viewProj;\n} camera;")
	assert.Contains(t, source, " = camera.viewProj;")
	assert.Contains(t, source, "gl_Position = (")
	assert.Contains(t, source, "layout(location = 0) out vec2 outUV;")
	assert.Contains(t, source, ".xy;")
	assert.NotContains(t, source, "gl_PerVertex")
}

func TestCompile_ESPrecision(t *testing.T) {
	source, _ := compile(t, fixture.Branches(), Options{LangVersion: VersionES300, ForceHighPrecision: true})

	assert.Contains(t, source, "#version 300 es\n")
	assert.Contains(t, source, "precision highp float;")
	assert.Contains(t, source, "precision highp int;")
}

func TestCompile_EntryPointSelection(t *testing.T) {
	m := loadModule(t, fixture.Branches())

	_, _, err := Compile(m, Options{EntryPoint: &ir.EntryPointSelector{Name: "main", Model: spirv.ExecutionModelFragment}})
	require.NoError(t, err)

	_, _, err = Compile(m, Options{EntryPoint: &ir.EntryPointSelector{Name: "missing", Model: spirv.ExecutionModelFragment}})
	var irErr *ir.Error
	require.ErrorAs(t, err, &irErr)
	assert.Equal(t, ir.ErrInvalidID, irErr.Kind)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"main(vf4;", "main"},
		{"my__name", "my_name"},
		{"9lives", "_9lives"},
		{"a.b-c", "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.in), tt.in)
	}
}

func TestNamer(t *testing.T) {
	n := newNamer()
	assert.Equal(t, "main_1", n.call("main"))
	assert.Equal(t, "color", n.call("color"))
	assert.Equal(t, "color_2", n.call("color"))
	assert.Equal(t, "_texture", n.call("texture"))
	assert.Equal(t, "_gl_Custom", n.call("gl_Custom"))
}
