package spvcross

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/internal/fixture"
)

func TestCompile_AllTargets(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{TargetGLSL, "#version 450"},
		{TargetHLSL, "SPIRV_Cross_Output main("},
		{TargetMSL, "#include <metal_stdlib>"},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			source, err := Compile(fixture.Fragment(), tt.target)
			require.NoError(t, err)
			assert.Contains(t, source, tt.want)
		})
	}
}

func TestCompileWithOptions_EntryPoint(t *testing.T) {
	opts := DefaultOptions()
	opts.EntryPoint = "main"
	source, err := CompileWithOptions(fixture.Compute(), TargetMSL, opts)
	require.NoError(t, err)
	assert.Contains(t, source, "kernel void main0(")

	model := cross.Fragment
	opts.ExecutionModel = &model
	_, err = CompileWithOptions(fixture.Compute(), TargetMSL, opts)
	assert.ErrorContains(t, err, "entry point error")

	opts = DefaultOptions()
	opts.EntryPoint = "missing"
	_, err = CompileWithOptions(fixture.Compute(), TargetGLSL, opts)
	assert.ErrorContains(t, err, `no entry point named "missing"`)
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile([]byte{0, 1, 2, 3}, TargetGLSL)
	assert.ErrorContains(t, err, "load error")

	_, err = Compile(fixture.RayGen(), TargetMSL)
	assert.ErrorContains(t, err, "msl generation error")
	assert.ErrorIs(t, err, cross.ErrCompilationError)
}

func TestReflect(t *testing.T) {
	refl, err := Reflect(fixture.Compute())
	require.NoError(t, err)
	require.Len(t, refl.EntryPoints, 1)
	assert.Equal(t, cross.GlCompute, refl.EntryPoints[0].ExecutionModel)
	assert.Equal(t, cross.WorkGroupSize{X: 8, Y: 4, Z: 1}, refl.EntryPoints[0].WorkGroupSize)
	require.Len(t, refl.Resources.StorageBuffers, 1)
	assert.Equal(t, "data", refl.Resources.StorageBuffers[0].Name)

	_, err = Reflect(fixture.RayGen())
	assert.ErrorIs(t, err, cross.ErrUnhandled)
}

func TestLoadAndDisassemble(t *testing.T) {
	module, err := Load(fixture.Vertex())
	require.NoError(t, err)
	assert.Len(t, module.EntryPoints, 1)

	text, err := Disassemble(fixture.Vertex())
	require.NoError(t, err)
	assert.Contains(t, text, "OpEntryPoint")

	parsed, err := Parse(fixture.Vertex())
	require.NoError(t, err)
	assert.NotEmpty(t, parsed.Instructions)

	_, err = Load([]byte{1, 2, 3, 4})
	assert.ErrorContains(t, err, "parse error")
}
