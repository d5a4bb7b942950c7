package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/spirv"
)

func load(t *testing.T, data []byte) *Module {
	t.Helper()
	sm, err := spirv.Parse(data)
	require.NoError(t, err)
	m, err := Load(sm)
	require.NoError(t, err)
	return m
}

// idOf finds the id carrying an OpName.
func idOf(t *testing.T, m *Module, name string) uint32 {
	t.Helper()
	for id, n := range m.names {
		if n == name {
			return id
		}
	}
	t.Fatalf("no id named %q", name)
	return 0
}

func TestLoad_Fragment(t *testing.T) {
	m := load(t, fixture.Fragment())

	require.Len(t, m.EntryPoints, 1)
	ep := m.EntryPoints[0]
	assert.Equal(t, "main", ep.Name)
	assert.Equal(t, spirv.ExecutionModelFragment, ep.Model)
	assert.Len(t, ep.Interface, 4)

	assert.Contains(t, m.Capabilities, spirv.CapabilityInputAttachment)
	assert.Equal(t, spirv.MemoryModelGLSL450, m.MemoryModel)
	assert.Len(t, m.Globals, 13)
	require.Len(t, m.Functions, 1)
	assert.Len(t, m.Functions[0].Blocks, 1)

	globals := idOf(t, m, "globals")
	assert.True(t, m.IsDefined(globals))
	assert.Equal(t, spirv.OpVariable, m.Opcode(globals))
	assert.NotNil(t, m.Global(globals))
	assert.False(t, m.IsDefined(m.Header.Bound+1))

	name, ok := m.MemberName(idOf(t, m, "Globals"), 1)
	assert.True(t, ok)
	assert.Equal(t, "transform", name)
}

func TestLoad_Blocks(t *testing.T) {
	m := load(t, fixture.Compute())
	fn := m.Functions[0]
	require.Len(t, fn.Blocks, 5)
	require.Len(t, fn.Locals, 1)

	header := fn.Blocks[1]
	assert.Equal(t, MergeLoop, header.MergeKind)
	assert.Equal(t, fn.Blocks[4].Label, header.Merge)
	assert.Equal(t, fn.Blocks[3].Label, header.Continue)
	assert.Equal(t, spirv.OpBranchConditional, header.Terminator.Opcode)
	assert.Same(t, header, fn.Block(header.Label))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *spirv.ModuleBuilder)
		kind  ErrorKind
	}{
		{
			name: "duplicate id",
			build: func(b *spirv.ModuleBuilder) {
				f := b.AddTypeFloat(32)
				b.Append(spirv.Instruction{Opcode: spirv.OpTypeBool, Words: []uint32{f}})
			},
			kind: ErrInvalidModule,
		},
		{
			name: "id beyond bound",
			build: func(b *spirv.ModuleBuilder) {
				b.Append(spirv.Instruction{Opcode: spirv.OpTypeBool, Words: []uint32{1000}})
			},
			kind: ErrInvalidModule,
		},
		{
			name: "entry point without function",
			build: func(b *spirv.ModuleBuilder) {
				b.AddEntryPoint(spirv.ExecutionModelVertex, 7, "main", nil)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "unterminated function",
			build: func(b *spirv.ModuleBuilder) {
				void := b.AddTypeVoid()
				fnType := b.AddTypeFunction(void)
				b.AddFunction(fnType, void, spirv.FunctionControlNone)
				b.AddLabel()
				b.AddFunctionEnd()
			},
			kind: ErrInvalidModule,
		},
		{
			name: "float width 0",
			build: func(b *spirv.ModuleBuilder) {
				b.AddTypeFloat(0)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "int width 7",
			build: func(b *spirv.ModuleBuilder) {
				b.AddTypeInt(7, true)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "vector of 1",
			build: func(b *spirv.ModuleBuilder) {
				b.AddTypeVector(b.AddTypeFloat(32), 1)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "vector of 5",
			build: func(b *spirv.ModuleBuilder) {
				b.AddTypeVector(b.AddTypeInt(32, false), 5)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "vector of vectors",
			build: func(b *spirv.ModuleBuilder) {
				b.AddTypeVector(b.AddTypeVector(b.AddTypeFloat(32), 2), 2)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "matrix of 0 columns",
			build: func(b *spirv.ModuleBuilder) {
				b.AddTypeMatrix(b.AddTypeVector(b.AddTypeFloat(32), 4), 0)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "matrix of scalars",
			build: func(b *spirv.ModuleBuilder) {
				b.AddTypeMatrix(b.AddTypeFloat(32), 4)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "vector of undefined type",
			build: func(b *spirv.ModuleBuilder) {
				b.AddTypeVector(b.AllocID(), 3)
			},
			kind: ErrInvalidModule,
		},
		{
			name: "truncated type",
			build: func(b *spirv.ModuleBuilder) {
				b.Append(spirv.Instruction{Opcode: spirv.OpTypeImage, Words: []uint32{b.AllocID(), 1}})
			},
			kind: ErrInvalidModule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := spirv.NewModuleBuilder(spirv.Version1_0)
			b.AddCapability(spirv.CapabilityShader)
			tt.build(b)
			sm, err := spirv.Parse(b.Build())
			require.NoError(t, err)

			_, err = Load(sm)
			require.Error(t, err)
			var irErr *Error
			require.ErrorAs(t, err, &irErr)
			assert.Equal(t, tt.kind, irErr.Kind)
		})
	}
}

func TestLoad_DecorationGroups(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	group := b.AllocID()
	f32 := b.AddTypeFloat(32)
	ptr := b.AddTypePointer(spirv.StorageClassInput, f32)
	a := b.AddVariable(ptr, spirv.StorageClassInput)
	c := b.AddVariable(ptr, spirv.StorageClassInput)
	st := b.AddTypeStruct(f32, f32)

	b.AddDecorate(group, spirv.DecorationFlat)
	b.AddDecorate(group, spirv.DecorationLocation, 3)
	b.Append(spirv.Instruction{Opcode: spirv.OpDecorationGroup, Words: []uint32{group}})
	b.Append(spirv.Instruction{Opcode: spirv.OpGroupDecorate, Words: []uint32{group, a, c}})
	b.Append(spirv.Instruction{Opcode: spirv.OpGroupMemberDecorate, Words: []uint32{group, st, 1}})

	m := load(t, b.Build())
	for _, id := range []uint32{a, c} {
		v, ok := m.Decorations.Decoration(id, spirv.DecorationLocation)
		assert.True(t, ok)
		assert.Equal(t, uint32(3), v)
		assert.True(t, m.Decorations.Has(id, spirv.DecorationFlat))
	}
	assert.True(t, m.Decorations.HasMember(st, 1, spirv.DecorationFlat))
	assert.False(t, m.Decorations.HasMember(st, 0, spirv.DecorationFlat))
	assert.False(t, m.Decorations.Has(group, spirv.DecorationFlat), "group itself keeps no decorations")
}
