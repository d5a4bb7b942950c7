package cross

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gogpu/spvcross/internal/engine"
	"github.com/gogpu/spvcross/internal/fixture"
)

func load(t *testing.T, data []byte, options Options) *Compiler {
	t.Helper()
	c, err := Load(data, options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func resourceNamed(t *testing.T, list []Resource, name string) Resource {
	t.Helper()
	for _, r := range list {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no resource named %q", name)
	return Resource{}
}

func mustResources(t *testing.T, c *Compiler) ShaderResources {
	t.Helper()
	res, err := c.ShaderResources()
	require.NoError(t, err)
	return res
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load([]byte{1, 2, 3}, DefaultOptions())
	requireCode(t, err, Unhandled)

	_, err = Load(make([]byte, 20), DefaultOptions())
	requireCode(t, err, Unhandled)

	opts := DefaultOptions()
	opts.Target = Target(7)
	_, err = Load(fixture.Fragment(), opts)
	requireCode(t, err, Unhandled)
}

func TestDecoration_SetThenGet(t *testing.T) {
	c := load(t, fixture.Fragment(), DefaultOptions())
	res, err := c.ShaderResources()
	require.NoError(t, err)
	globals := resourceNamed(t, res.UniformBuffers, "globals")

	tests := []struct {
		dec     Decoration
		literal uint32
	}{
		{Binding, 0},
		{Binding, 7},
		{DescriptorSet, 3},
		{Location, 12},
		{Offset, 0xffffffff},
		{SpecID, 1},
	}
	for _, tt := range tests {
		t.Run(tt.dec.String(), func(t *testing.T) {
			require.NoError(t, c.SetDecoration(globals.ID, tt.dec, tt.literal))
			require.NoError(t, c.SetDecoration(globals.ID, tt.dec, tt.literal))
			got, err := c.Decoration(globals.ID, tt.dec)
			require.NoError(t, err)
			assert.Equal(t, tt.literal, got)
		})
	}
}

func TestDecoration_Absent(t *testing.T) {
	c := load(t, fixture.Fragment(), DefaultOptions())
	res, err := c.ShaderResources()
	require.NoError(t, err)
	globals := resourceNamed(t, res.UniformBuffers, "globals")

	_, err = c.Decoration(globals.ID, Location)
	requireCode(t, err, NotDecorated)

	// A zero literal reads back as a value, not as absence.
	require.NoError(t, c.SetDecoration(globals.ID, Location, 0))
	v, err := c.Decoration(globals.ID, Location)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, c.UnsetDecoration(globals.ID, Location))
	_, err = c.Decoration(globals.ID, Location)
	requireCode(t, err, NotDecorated)

	// Flag decorations read as 1.
	v, err = c.Decoration(res.UniformBuffers[0].BaseTypeID, Block)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)
}

func TestDecoration_UnknownID(t *testing.T) {
	c := load(t, fixture.Fragment(), DefaultOptions())
	_, err := c.Decoration(100000, Binding)
	requireCode(t, err, Unhandled)
	requireCode(t, c.SetDecoration(100000, Binding, 1), Unhandled)
}

func TestEntryPoints(t *testing.T) {
	c := load(t, fixture.Compute(), DefaultOptions())
	eps, err := c.EntryPoints()
	require.NoError(t, err)
	assert.Equal(t, []EntryPoint{{Name: "main", ExecutionModel: GlCompute, WorkGroupSize: WorkGroupSize{8, 4, 1}}}, eps)

	c = load(t, fixture.Fragment(), DefaultOptions())
	eps, err = c.EntryPoints()
	require.NoError(t, err)
	assert.Equal(t, []EntryPoint{{Name: "main", ExecutionModel: Fragment}}, eps)
}

func TestEntryPoints_None(t *testing.T) {
	c := load(t, fixture.Empty(), DefaultOptions())
	eps, err := c.EntryPoints()
	require.NoError(t, err)
	assert.Empty(t, eps)
}

func TestEntryPoints_Rejected(t *testing.T) {
	c := load(t, fixture.RayGen(), DefaultOptions())
	_, err := c.EntryPoints()
	requireCode(t, err, Unhandled)

	c = load(t, fixture.InvalidName(), DefaultOptions())
	_, err = c.EntryPoints()
	requireCode(t, err, Unhandled)
}

func TestShaderResources_Disjoint(t *testing.T) {
	c := load(t, fixture.Fragment(), DefaultOptions())
	res, err := c.ShaderResources()
	require.NoError(t, err)

	categories := [][]Resource{
		res.UniformBuffers, res.StorageBuffers, res.StageInputs, res.StageOutputs,
		res.SubpassInputs, res.StorageImages, res.SampledImages, res.AtomicCounters,
		res.PushConstantBuffers, res.SeparateImages, res.SeparateSamplers,
	}
	seen := make(map[uint32]bool)
	for _, list := range categories {
		for _, r := range list {
			assert.False(t, seen[r.ID], "resource %s in two categories", r.Name)
			seen[r.ID] = true
		}
	}

	names := func(list []Resource) []string {
		out := make([]string, len(list))
		for i, r := range list {
			out[i] = r.Name
		}
		return out
	}
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

	globals := res.UniformBuffers[0]
	assert.NotEqual(t, globals.TypeID, globals.BaseTypeID)
	size, err := c.DeclaredStructSize(globals.BaseTypeID)
	require.NoError(t, err)
	assert.Equal(t, uint32(80), size)

	_, err = c.DeclaredStructSize(globals.TypeID)
	requireCode(t, err, Unhandled)
}

func TestShaderResources_Empty(t *testing.T) {
	c := load(t, fixture.Empty(), DefaultOptions())
	res, err := c.ShaderResources()
	require.NoError(t, err)
	assert.Empty(t, res.UniformBuffers)
	assert.Empty(t, res.SeparateSamplers)
}

func TestCompile_Idempotent(t *testing.T) {
	for _, target := range []Target{GLSL, HLSL, MSL} {
		t.Run(target.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Target = target
			c := load(t, fixture.Fragment(), opts)

			first, err := c.Compile()
			require.NoError(t, err)
			second, err := c.Compile()
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestCompile_FollowsBinding(t *testing.T) {
	tests := []struct {
		target Target
		want   func(n string) string
	}{
		{GLSL, func(n string) string { return "layout(std140, binding = " + n + ") uniform Globals" }},
		{HLSL, func(n string) string { return "register(b" + n + ", space0)" }},
		{MSL, func(n string) string { return "constant Globals& globals [[buffer(" + n + ")]]" }},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Target = tt.target
			c := load(t, fixture.Fragment(), opts)
			res, err := c.ShaderResources()
			require.NoError(t, err)
			globals := resourceNamed(t, res.UniformBuffers, "globals")

			require.NoError(t, c.SetDecoration(globals.ID, Binding, 5))
			source, err := c.Compile()
			require.NoError(t, err)
			assert.Contains(t, source, tt.want("5"))

			require.NoError(t, c.SetDecoration(globals.ID, Binding, 6))
			source, err = c.Compile()
			require.NoError(t, err)
			assert.Contains(t, source, tt.want("6"))
			assert.NotContains(t, source, tt.want("5"))
		})
	}
}

func TestCompile_Error(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = MSL
	c := load(t, fixture.RayGen(), opts)
	_, err := c.Compile()
	requireCode(t, err, CompilationError)
	assert.ErrorIs(t, err, ErrCompilationError)
}

func TestSetOptionsAndEntryPoint(t *testing.T) {
	c := load(t, fixture.Compute(), DefaultOptions())

	source, err := c.Compile()
	require.NoError(t, err)
	assert.Contains(t, source, "layout(local_size_x = 8, local_size_y = 4, local_size_z = 1) in;")

	opts := DefaultOptions()
	opts.Target = HLSL
	require.NoError(t, c.SetOptions(opts))
	require.NoError(t, c.SetEntryPoint("main", GlCompute))
	source, err = c.Compile()
	require.NoError(t, err)
	assert.Contains(t, source, "[numthreads(8, 4, 1)]")

	requireCode(t, c.SetEntryPoint("main", Vertex), Unhandled)
	requireCode(t, c.SetEntryPoint("main", ExecutionModel(99)), Unhandled)
}

func TestNames(t *testing.T) {
	c := load(t, fixture.Fragment(), DefaultOptions())
	res, err := c.ShaderResources()
	require.NoError(t, err)
	particles := resourceNamed(t, res.StorageBuffers, "particles")

	name, err := c.Name(particles.ID)
	require.NoError(t, err)
	assert.Equal(t, "particles", name)

	require.NoError(t, c.SetName(particles.ID, "motes"))
	name, err = c.Name(particles.ID)
	require.NoError(t, err)
	assert.Equal(t, "motes", name)

	source, err := c.Compile()
	require.NoError(t, err)
	assert.Contains(t, source, "} motes;")
}

func TestBinary_RoundTrip(t *testing.T) {
	c := load(t, fixture.Fragment(), DefaultOptions())
	res, err := c.ShaderResources()
	require.NoError(t, err)
	tex := resourceNamed(t, res.SeparateImages, "tex")
	require.NoError(t, c.SetDecoration(tex.ID, DescriptorSet, 4))
	require.NoError(t, c.SetDecoration(tex.ID, Binding, 9))

	data, err := c.Binary()
	require.NoError(t, err)

	reloaded := load(t, data, DefaultOptions())
	set, err := reloaded.Decoration(tex.ID, DescriptorSet)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), set)
	binding, err := reloaded.Decoration(tex.ID, Binding)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), binding)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core)

	c := load(t, fixture.Compute(), opts)
	_, err := c.Compile()
	require.NoError(t, err)
	require.NoError(t, c.Close())

	assert.Equal(t, 1, logs.FilterMessage("module loaded").Len())
	assert.Equal(t, 1, logs.FilterMessage("compiled").Len())
	assert.Equal(t, 1, logs.FilterMessage("compiler closed").Len())
}

func TestPackageLogger(t *testing.T) {
	assert.NotNil(t, Logger())
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	load(t, fixture.Empty(), DefaultOptions())
	assert.Equal(t, 1, logs.FilterMessage("module loaded").Len())
}

func TestShaderResources_FixedAfterLoad(t *testing.T) {
	c := load(t, fixture.Fragment(), DefaultOptions())
	before, err := c.ShaderResources()
	require.NoError(t, err)

	globals := resourceNamed(t, before.UniformBuffers, "globals")
	particles := resourceNamed(t, before.StorageBuffers, "particles")
	inUV := resourceNamed(t, before.StageInputs, "inUV")

	require.NoError(t, c.SetDecoration(globals.BaseTypeID, BufferBlock, 1))
	require.NoError(t, c.UnsetDecoration(globals.BaseTypeID, Block))
	require.NoError(t, c.SetDecoration(inUV.ID, BuiltIn, 15))
	for _, dec := range []Decoration{Block, BufferBlock} {
		if err := c.UnsetDecoration(particles.BaseTypeID, dec); err != nil {
			requireCode(t, err, NotDecorated)
		}
	}

	after, err := c.ShaderResources()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeclaredStructSize_OwnMessage(t *testing.T) {
	_, err := Load(make([]byte, 20), DefaultOptions())
	requireCode(t, err, Unhandled)
	assert.Contains(t, err.Error(), "magic")

	c := load(t, fixture.Fragment(), DefaultOptions())
	_, err = c.DeclaredStructSize(99999)
	requireCode(t, err, Unhandled)
	assert.NotContains(t, err.Error(), "magic")
	assert.Contains(t, err.Error(), "get declared struct size")
}

func TestCompile_ErrorStaysWithCompiler(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = MSL
	failing := load(t, fixture.RayGen(), opts)
	healthy := load(t, fixture.Empty(), opts)

	_, err := failing.Compile()
	requireCode(t, err, CompilationError)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.NotEmpty(t, e.Message)

	_, err = healthy.DeclaredStructSize(1)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), e.Message)
}

func TestNoOutstandingBuffers(t *testing.T) {
	heapOf := func(c *Compiler) *engine.Engine {
		e, ok := c.h.engine.(*engine.Engine)
		require.True(t, ok)
		return e
	}

	for _, target := range []Target{GLSL, HLSL, MSL} {
		t.Run(target.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Target = target
			c := load(t, fixture.Fragment(), opts)
			e := heapOf(c)

			_, err := c.EntryPoints()
			require.NoError(t, err)
			assert.Zero(t, e.Outstanding())

			_, err = c.ShaderResources()
			require.NoError(t, err)
			assert.Zero(t, e.Outstanding())

			_, err = c.Compile()
			require.NoError(t, err)
			assert.Zero(t, e.Outstanding())

			globals := resourceNamed(t, mustResources(t, c).UniformBuffers, "globals")
			_, err = c.Name(globals.ID)
			require.NoError(t, err)
			assert.Zero(t, e.Outstanding())

			_, err = c.Binary()
			require.NoError(t, err)
			assert.Zero(t, e.Outstanding())

			allocs, frees := e.Stats()
			assert.Equal(t, allocs, frees)
		})
	}

	t.Run("failed enumeration", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Target = MSL
		c := load(t, fixture.RayGen(), opts)
		e := heapOf(c)

		_, err := c.EntryPoints()
		requireCode(t, err, Unhandled)
		assert.Zero(t, e.Outstanding())

		_, err = c.Compile()
		requireCode(t, err, CompilationError)
		assert.Zero(t, e.Outstanding())
	})
}

func TestSetLogger_Nil(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(nil)
	require.NotNil(t, Logger())
	c := load(t, fixture.Empty(), DefaultOptions())
	assert.NoError(t, c.Close())
}
