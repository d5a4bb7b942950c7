package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/spvcross"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/internal/fixture"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

const globalsRemap = `resources:
  - name: globals
    set: 2
    binding: 5
  - name: inUV
    decorations:
      Location: 7
`

func TestReflectJSON(t *testing.T) {
	path := writeFile(t, "compute.spv", fixture.Compute())

	out, _, err := execute(t, "reflect", path)
	require.NoError(t, err)

	var r spvcross.Reflection
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.Len(t, r.EntryPoints, 1)
	assert.Equal(t, "main", r.EntryPoints[0].Name)
	assert.Equal(t, cross.GlCompute, r.EntryPoints[0].ExecutionModel)
	assert.Equal(t, cross.WorkGroupSize{X: 8, Y: 4, Z: 1}, r.EntryPoints[0].WorkGroupSize)
	require.Len(t, r.Resources.StorageBuffers, 1)
	assert.Equal(t, "data", r.Resources.StorageBuffers[0].Name)
	assert.Contains(t, out, `"executionModel": "GLCompute"`)
}

func TestReflectYAML(t *testing.T) {
	path := writeFile(t, "fragment.spv", fixture.Fragment())

	out, _, err := execute(t, "reflect", path, "--format", "yaml")
	require.NoError(t, err)

	var r spvcross.Reflection
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	require.Len(t, r.EntryPoints, 1)
	assert.Equal(t, cross.Fragment, r.EntryPoints[0].ExecutionModel)
	require.Len(t, r.Resources.UniformBuffers, 1)
	assert.Equal(t, "globals", r.Resources.UniformBuffers[0].Name)
	assert.Contains(t, out, "executionModel: Fragment")
}

func TestReflectInvalidFormat(t *testing.T) {
	path := writeFile(t, "fragment.spv", fixture.Fragment())
	_, _, err := execute(t, "reflect", path, "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestReflectRejectedModule(t *testing.T) {
	path := writeFile(t, "raygen.spv", fixture.RayGen())
	_, _, err := execute(t, "reflect", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, cross.ErrUnhandled)
}

func TestCompileTargets(t *testing.T) {
	path := writeFile(t, "compute.spv", fixture.Compute())

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--target", "glsl"}, "#version 450"},
		{[]string{"--target", "glsl", "--glsl-version", "310", "--es"}, "#version 310 es"},
		{[]string{"--target", "hlsl", "--shader-model", "6_0"}, "[numthreads(8, 4, 1)]"},
		{[]string{"--target", "msl", "--msl-version", "2.0"}, "kernel void main0("},
	}
	for _, tt := range tests {
		t.Run(tt.args[1], func(t *testing.T) {
			out, _, err := execute(t, append([]string{"compile", path}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCompileBadFlags(t *testing.T) {
	path := writeFile(t, "compute.spv", fixture.Compute())

	for _, args := range [][]string{
		{"--target", "wgsl"},
		{"--glsl-version", "12"},
		{"--shader-model", "9_9"},
		{"--msl-version", "two"},
		{"--entry", "nope"},
		{"--entry", "main", "--stage", "Vertex"},
		{"--entry", "main", "--stage", "Pixel"},
	} {
		_, _, err := execute(t, append([]string{"compile", path}, args...)...)
		assert.Error(t, err, "%v", args)
	}
}

func TestCompileEntryPoint(t *testing.T) {
	path := writeFile(t, "compute.spv", fixture.Compute())

	out, _, err := execute(t, "compile", path, "--target", "hlsl", "--entry", "main")
	require.NoError(t, err)
	assert.Contains(t, out, "[numthreads(8, 4, 1)]")

	out, _, err = execute(t, "compile", path, "--target", "hlsl", "--entry", "main", "--stage", "GLCompute")
	require.NoError(t, err)
	assert.Contains(t, out, "[numthreads(8, 4, 1)]")
}

func TestCompileRemap(t *testing.T) {
	path := writeFile(t, "fragment.spv", fixture.Fragment())
	remap := writeFile(t, "remap.yaml", []byte(globalsRemap))
	output := filepath.Join(t.TempDir(), "out.glsl")

	out, _, err := execute(t, "compile", path, "--vulkan", "--remap", remap, "-o", output)
	require.NoError(t, err)
	assert.Empty(t, out)

	source, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(source), "set = 2, binding = 5")
	assert.Contains(t, string(source), "layout(location = 7) in")
}

func TestCompileVerbose(t *testing.T) {
	path := writeFile(t, "compute.spv", fixture.Compute())

	out, errOut, err := execute(t, "compile", path, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "void main()")
	assert.Contains(t, errOut, "module loaded")
	assert.Contains(t, errOut, "compiled")

	_, errOut, err = execute(t, "compile", path)
	require.NoError(t, err)
	assert.Empty(t, errOut)
}

func TestDis(t *testing.T) {
	path := writeFile(t, "compute.spv", fixture.Compute())

	out, _, err := execute(t, "dis", path)
	require.NoError(t, err)
	assert.Contains(t, out, "; SPIR-V")
	assert.Contains(t, out, "OpEntryPoint GLCompute")

	_, _, err = execute(t, "dis", writeFile(t, "bad.spv", []byte{1, 2, 3, 4}))
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, _, err := execute(t, "dis", filepath.Join(t.TempDir(), "missing.spv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading module")
}

func TestPatch(t *testing.T) {
	path := writeFile(t, "fragment.spv", fixture.Fragment())
	remap := writeFile(t, "remap.yaml", []byte(globalsRemap))
	output := filepath.Join(t.TempDir(), "patched.spv")

	_, _, err := execute(t, "patch", path, "--remap", remap, "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	c, err := cross.Load(data, cross.DefaultOptions())
	require.NoError(t, err)
	defer c.Close()

	res, err := c.ShaderResources()
	require.NoError(t, err)
	globals := res.UniformBuffers[0]
	set, err := c.Decoration(globals.ID, cross.DescriptorSet)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), set)
	binding, err := c.Decoration(globals.ID, cross.Binding)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), binding)
}

func TestPatchRequiresFlags(t *testing.T) {
	path := writeFile(t, "fragment.spv", fixture.Fragment())
	_, _, err := execute(t, "patch", path)
	assert.Error(t, err)
}

func TestLoadRemap(t *testing.T) {
	r, err := LoadRemap(writeFile(t, "remap.yaml", []byte(`resources:
  - id: 12
    decorations:
      DescriptorSet: 1
      Binding: 3
    unset: [Location]
`)))
	require.NoError(t, err)
	require.Len(t, r.Resources, 1)
	e := r.Resources[0]
	assert.Equal(t, uint32(12), e.ID)
	assert.Equal(t, map[cross.Decoration]uint32{cross.DescriptorSet: 1, cross.Binding: 3}, e.Decorations)
	assert.Equal(t, []cross.Decoration{cross.Location}, e.Unset)

	_, err = LoadRemap(writeFile(t, "bad.yaml", []byte("resources:\n  - decorations:\n      Bindings: 1\n")))
	assert.Error(t, err)

	_, err = LoadRemap(writeFile(t, "anon.yaml", []byte("resources:\n  - set: 1\n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither id nor name")
}

func TestRemapApply(t *testing.T) {
	c, err := cross.Load(fixture.Fragment(), cross.DefaultOptions())
	require.NoError(t, err)
	defer c.Close()

	binding := uint32(4)
	r := &Remap{Resources: []RemapEntry{{Name: "missing", Binding: &binding}}}
	require.Error(t, r.Apply(c))

	res, err := c.ShaderResources()
	require.NoError(t, err)
	combined := res.SampledImages[0]

	r = &Remap{Resources: []RemapEntry{{
		ID:      combined.ID,
		Binding: &binding,
		Unset:   []cross.Decoration{cross.Location, cross.DescriptorSet},
	}}}
	require.NoError(t, r.Apply(c))

	got, err := c.Decoration(combined.ID, cross.Binding)
	require.NoError(t, err)
	assert.Equal(t, binding, got)
	_, err = c.Decoration(combined.ID, cross.DescriptorSet)
	assert.ErrorIs(t, err, cross.ErrNotDecorated)

	var nilRemap *Remap
	assert.NoError(t, nilRemap.Apply(c))
}
