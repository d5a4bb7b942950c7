package spirv

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestDisassemble_Golden(t *testing.T) {
	m, err := Parse(computeModule().Build())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "compute_minimal", []byte(Disassemble(m)))
}

func TestDisassemble_Decorations(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	floatType := b.AddTypeFloat(32)
	vec4 := b.AddTypeVector(floatType, 4)
	ptr := b.AddTypePointer(StorageClassOutput, vec4)
	v := b.AddVariable(ptr, StorageClassOutput)
	b.AddDecorate(v, DecorationBuiltIn, uint32(BuiltInPosition))
	b.AddDecorate(v, DecorationLocation, 3)

	m, err := Parse(b.Build())
	require.NoError(t, err)

	text := Disassemble(m)
	require.Contains(t, text, "OpDecorate %_4 BuiltIn Position")
	require.Contains(t, text, "OpDecorate %_4 Location 3")
	require.Contains(t, text, "%_3 = OpTypePointer Output %_2")
	require.Contains(t, text, "%_4 = OpVariable %_3 Output")
	require.Contains(t, text, "%_2 = OpTypeVector %_1 4")
}
