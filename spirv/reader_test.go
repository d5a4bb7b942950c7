package spirv

import (
	"encoding/binary"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computeModule() *ModuleBuilder {
	b := NewModuleBuilder(Version1_0)
	b.AddCapability(CapabilityShader)
	b.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	voidType := b.AddTypeVoid()
	funcType := b.AddTypeFunction(voidType)
	fn := b.AddFunction(funcType, voidType, FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(ExecutionModelGLCompute, fn, "main", nil)
	b.AddExecutionMode(fn, ExecutionModeLocalSize, 8, 1, 1)
	b.AddName(fn, "main")
	return b
}

func TestParse_Header(t *testing.T) {
	m, err := Parse(computeModule().Build())
	require.NoError(t, err)

	assert.Equal(t, Version1_0, m.Header.Version)
	assert.Equal(t, uint32(GeneratorID), m.Header.Generator)
	assert.Equal(t, uint32(5), m.Header.Bound)
	assert.Len(t, m.Instructions, 11)
}

func TestParse_ByteSwapped(t *testing.T) {
	data := computeModule().Build()
	swapped := make([]byte, len(data))
	for i := 0; i < len(data); i += 4 {
		binary.LittleEndian.PutUint32(swapped[i:], bits.ReverseBytes32(binary.LittleEndian.Uint32(data[i:])))
	}

	want, err := Parse(data)
	require.NoError(t, err)
	got, err := Parse(swapped)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse_Errors(t *testing.T) {
	valid := computeModule().BuildWords()

	toBytes := func(words []uint32) []byte {
		out := make([]byte, len(words)*4)
		for i, w := range words {
			binary.LittleEndian.PutUint32(out[i*4:], w)
		}
		return out
	}

	badMagic := append([]uint32(nil), valid...)
	badMagic[0] = 0xDEADBEEF

	zeroCount := append([]uint32(nil), valid[:HeaderWords]...)
	zeroCount = append(zeroCount, uint32(OpNop))

	truncated := append([]uint32(nil), valid[:HeaderWords]...)
	truncated = append(truncated, 4<<16|uint32(OpName), 1)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "too small"},
		{"unaligned", []byte{3, 2, 0x23, 7, 0}, "multiple of 4"},
		{"bad magic", toBytes(badMagic), "invalid magic"},
		{"zero word count", toBytes(zeroCount), "zero word count"},
		{"truncated", toBytes(truncated), "truncated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Message, tt.want)
		})
	}
}

func TestInstruction_ResultIDs(t *testing.T) {
	tests := []struct {
		inst       Instruction
		resultType uint32
		result     uint32
	}{
		{Instruction{Opcode: OpTypeFloat, Words: []uint32{7, 32}}, 0, 7},
		{Instruction{Opcode: OpLoad, Words: []uint32{3, 9, 4}}, 3, 9},
		{Instruction{Opcode: OpStore, Words: []uint32{4, 9}}, 0, 0},
		{Instruction{Opcode: OpLabel, Words: []uint32{12}}, 0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.inst.Opcode.String(), func(t *testing.T) {
			rt, r := tt.inst.ResultIDs()
			assert.Equal(t, tt.resultType, rt)
			assert.Equal(t, tt.result, r)
		})
	}
}

func TestInstruction_LiteralStringKeepsRawBytes(t *testing.T) {
	raw := string([]byte{0xff, 0xfe, 'a'})
	inst := Instruction{Opcode: OpName, Words: append([]uint32{1}, StringWords(raw)...)}

	got, next := inst.LiteralString(1)
	assert.Equal(t, raw, got)
	assert.Equal(t, 2, next)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "OpDecorate", OpDecorate.String())
	assert.Equal(t, "Op65000", OpCode(65000).String())
	assert.Equal(t, "DescriptorSet", DecorationDescriptorSet.String())
	assert.Equal(t, "GLCompute", ExecutionModelGLCompute.String())
	assert.Equal(t, "Uniform", StorageClassUniform.String())
	assert.Equal(t, "1.3", Version1_3.String())
}
