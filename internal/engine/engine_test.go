package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

func load(t *testing.T, data []byte, options Options) *Engine {
	t.Helper()
	words, err := spirv.Words(data)
	require.NoError(t, err)
	var diag string
	e, status := Load(words, options, &diag)
	require.Equal(t, Success, status, diag)
	t.Cleanup(func() {
		if e.Module() != nil {
			e.Delete()
		}
	})
	return e
}

func findResource(t *testing.T, e *Engine, kind ir.ResourceKind, name string) ir.Resource {
	t.Helper()
	for _, r := range e.Module().Resources(kind) {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no %s resource named %q", kind, name)
	return ir.Resource{}
}

func compileString(t *testing.T, e *Engine) string {
	t.Helper()
	var p Pointer
	require.Equal(t, Success, e.Compile(&p), e.LastError())
	source, status := e.ReadString(p)
	require.Equal(t, Success, status)
	require.Equal(t, Success, e.Free(p))
	return string(source)
}

func TestLoad_InvalidModule(t *testing.T) {
	var diag string
	_, status := Load([]uint32{0xdeadbeef, 0, 0, 0, 0}, DefaultOptions(), &diag)
	assert.Equal(t, InvalidModule, status)
	assert.Contains(t, diag, "magic")

	_, status = Load(nil, DefaultOptions(), nil)
	assert.Equal(t, InvalidModule, status)
}

func TestEngine_Decorations(t *testing.T) {
	e := load(t, fixture.Fragment(), DefaultOptions())
	globals := findResource(t, e, ir.ResourceUniformBuffer, "globals")

	var v uint32
	require.Equal(t, Success, e.GetDecoration(&v, globals.ID, uint32(spirv.DecorationBinding)))
	assert.Equal(t, uint32(0), v)

	require.Equal(t, Success, e.SetDecoration(globals.ID, uint32(spirv.DecorationBinding), 5))
	require.Equal(t, Success, e.GetDecoration(&v, globals.ID, uint32(spirv.DecorationBinding)))
	assert.Equal(t, uint32(5), v)

	assert.Equal(t, NotDecorated, e.GetDecoration(&v, globals.ID, uint32(spirv.DecorationLocation)))
	assert.Equal(t, Success, e.UnsetDecoration(globals.ID, uint32(spirv.DecorationBinding)))
	assert.Equal(t, NotDecorated, e.UnsetDecoration(globals.ID, uint32(spirv.DecorationBinding)))
	assert.Equal(t, NotDecorated, e.GetDecoration(&v, globals.ID, uint32(spirv.DecorationBinding)))

	unknown := e.Module().Header.Bound + 10
	assert.Equal(t, InvalidID, e.GetDecoration(&v, unknown, uint32(spirv.DecorationBinding)))
	assert.Equal(t, InvalidID, e.SetDecoration(unknown, uint32(spirv.DecorationBinding), 1))
}

func TestEngine_EntryPoints(t *testing.T) {
	e := load(t, fixture.Compute(), DefaultOptions())

	var p Pointer
	var n int
	require.Equal(t, Success, e.GetEntryPoints(&p, &n))
	require.Equal(t, 1, n)

	records, status := e.ReadEntryPoints(p)
	require.Equal(t, Success, status)
	require.Len(t, records, 1)
	assert.Equal(t, uint32(spirv.ExecutionModelGLCompute), records[0].Model)

	name, status := e.ReadString(records[0].Name)
	require.Equal(t, Success, status)
	assert.Equal(t, "main", string(name))

	assert.Equal(t, 2, e.Outstanding())
	require.Equal(t, Success, e.Free(records[0].Name))
	require.Equal(t, Success, e.Free(p))
	assert.Zero(t, e.Outstanding())
}

func TestEngine_Resources(t *testing.T) {
	e := load(t, fixture.Fragment(), DefaultOptions())

	var p Pointer
	var n int
	require.Equal(t, Success, e.GetResources(ir.ResourceStorageBuffer, &p, &n))
	records, status := e.ReadResources(p)
	require.Equal(t, Success, status)
	require.Len(t, records, n)
	require.Equal(t, 1, n)

	name, status := e.ReadString(records[0].Name)
	require.Equal(t, Success, status)
	assert.Equal(t, "particles", string(name))
	assert.NotEqual(t, records[0].TypeID, records[0].BaseTypeID)

	require.Equal(t, Success, e.Free(records[0].Name))
	require.Equal(t, Success, e.Free(p))
	assert.Zero(t, e.Outstanding())

	assert.Equal(t, InvalidArgument, e.GetResources(ir.ResourceKindCount, &p, &n))
}

func TestEngine_CompileFollowsDecorations(t *testing.T) {
	opts := DefaultOptions()
	opts.GLSL.Vulkan = true
	e := load(t, fixture.Fragment(), opts)
	globals := findResource(t, e, ir.ResourceUniformBuffer, "globals")

	first := compileString(t, e)
	assert.Equal(t, first, compileString(t, e))
	assert.Contains(t, first, "set = 0, binding = 0")

	require.Equal(t, Success, e.SetDecoration(globals.ID, uint32(spirv.DecorationBinding), 9))
	assert.Contains(t, compileString(t, e), "set = 0, binding = 9")

	require.Equal(t, Success, e.SetDecoration(globals.ID, uint32(spirv.DecorationBinding), 11))
	source := compileString(t, e)
	assert.Contains(t, source, "set = 0, binding = 11")
	assert.NotContains(t, source, "set = 0, binding = 9)")
}

func TestEngine_Targets(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{TargetGLSL, "void main()"},
		{TargetHLSL, "[numthreads("},
		{TargetMSL, "kernel void main0("},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Target = tt.target
			e := load(t, fixture.Compute(), opts)
			assert.Contains(t, compileString(t, e), tt.want)
		})
	}
}

func TestEngine_CompilationError(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = TargetMSL
	e := load(t, fixture.RayGen(), opts)
	var p Pointer
	assert.Equal(t, CompilationError, e.Compile(&p))
	assert.NotEmpty(t, e.LastError())
	assert.Zero(t, e.Outstanding())
}

func TestEngine_SetEntryPoint(t *testing.T) {
	e := load(t, fixture.Compute(), DefaultOptions())
	assert.Equal(t, Success, e.SetEntryPoint("main", uint32(spirv.ExecutionModelGLCompute)))
	assert.Equal(t, InvalidArgument, e.SetEntryPoint("main", uint32(spirv.ExecutionModelFragment)))
	assert.Equal(t, InvalidArgument, e.SetOptions(Options{Target: Target(9)}))
}

func TestEngine_Names(t *testing.T) {
	e := load(t, fixture.Fragment(), DefaultOptions())
	globals := findResource(t, e, ir.ResourceUniformBuffer, "globals")

	require.Equal(t, Success, e.SetName(globals.ID, "frame"))
	var p Pointer
	require.Equal(t, Success, e.GetName(&p, globals.ID))
	name, status := e.ReadString(p)
	require.Equal(t, Success, status)
	assert.Equal(t, "frame", string(name))
	require.Equal(t, Success, e.Free(p))
}

func TestEngine_DeclaredStructSize(t *testing.T) {
	e := load(t, fixture.Fragment(), DefaultOptions())
	globals := findResource(t, e, ir.ResourceUniformBuffer, "globals")

	var size uint32
	require.Equal(t, Success, e.GetDeclaredStructSize(&size, globals.BaseTypeID), e.LastError())
	assert.Equal(t, uint32(80), size)

	assert.Equal(t, InvalidID, e.GetDeclaredStructSize(&size, globals.TypeID))
}

func TestEngine_Encode(t *testing.T) {
	e := load(t, fixture.Fragment(), DefaultOptions())
	globals := findResource(t, e, ir.ResourceUniformBuffer, "globals")
	require.Equal(t, Success, e.SetDecoration(globals.ID, uint32(spirv.DecorationBinding), 3))

	var p Pointer
	require.Equal(t, Success, e.Encode(&p))
	data, status := e.ReadBytes(p)
	require.Equal(t, Success, status)
	require.Equal(t, Success, e.Free(p))

	words, err := spirv.Words(data)
	require.NoError(t, err)
	reloaded, status := Load(words, DefaultOptions())
	require.Equal(t, Success, status)
	defer reloaded.Delete()

	var v uint32
	require.Equal(t, Success, reloaded.GetDecoration(&v, globals.ID, uint32(spirv.DecorationBinding)))
	assert.Equal(t, uint32(3), v)
}

func TestEngine_Delete(t *testing.T) {
	e := load(t, fixture.Fragment(), DefaultOptions())
	var p Pointer
	require.Equal(t, Success, e.Compile(&p))
	require.Equal(t, 1, e.Outstanding())

	assert.Equal(t, Success, e.Delete())
	assert.Zero(t, e.Outstanding())
	assert.Equal(t, InvalidPointer, e.Delete())
	assert.Equal(t, Unhandled, e.Compile(&p))

	var v uint32
	assert.Equal(t, Unhandled, e.GetDecoration(&v, 1, uint32(spirv.DecorationBinding)))
}

func TestEngine_LastErrorPerHandle(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = TargetMSL
	failing := load(t, fixture.RayGen(), opts)
	other := load(t, fixture.Compute(), opts)

	var p Pointer
	require.Equal(t, CompilationError, failing.Compile(&p))
	assert.NotEmpty(t, failing.LastError())
	assert.Empty(t, other.LastError())

	var size uint32
	assert.Equal(t, InvalidID, other.GetDeclaredStructSize(&size, 99999))
	assert.Empty(t, other.LastError(), "an undefined id records no message")
}
