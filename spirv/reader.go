package spirv

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Module is a decoded SPIR-V word stream: the header plus every instruction
// in file order.
type Module struct {
	Header       Header
	Instructions []Instruction
}

// ParseError reports a malformed SPIR-V binary.
type ParseError struct {
	// Word is the word offset at which decoding failed.
	Word int

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("spirv: word %d: %s", e.Word, e.Message)
}

// Words converts a binary module to host words. Both little-endian and
// byte-swapped modules are accepted; the magic number decides.
func Words(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, &ParseError{Word: len(data) / 4, Message: fmt.Sprintf("size %d is not a multiple of 4", len(data))}
	}
	if len(data) < HeaderWords*4 {
		return nil, &ParseError{Word: 0, Message: "module too small for header"}
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] == bits.ReverseBytes32(MagicNumber) {
		for i := range words {
			words[i] = bits.ReverseBytes32(words[i])
		}
	}
	return words, nil
}

// Parse decodes a binary module.
func Parse(data []byte) (*Module, error) {
	words, err := Words(data)
	if err != nil {
		return nil, err
	}
	return ParseWords(words)
}

// ParseWords decodes a module that is already split into host-order words.
func ParseWords(words []uint32) (*Module, error) {
	if len(words) < HeaderWords {
		return nil, &ParseError{Word: 0, Message: "module too small for header"}
	}
	if words[0] != MagicNumber {
		return nil, &ParseError{Word: 0, Message: fmt.Sprintf("invalid magic 0x%08X", words[0])}
	}

	m := &Module{
		Header: Header{
			Version:   wordToVersion(words[1]),
			Generator: words[2],
			Bound:     words[3],
			Schema:    words[4],
		},
	}

	offset := HeaderWords
	for offset < len(words) {
		word := words[offset]
		opcode := OpCode(word & 0xFFFF)
		wordCount := int(word >> 16)

		if wordCount == 0 {
			return nil, &ParseError{Word: offset, Message: fmt.Sprintf("%s has zero word count", opcode)}
		}
		if offset+wordCount > len(words) {
			return nil, &ParseError{Word: offset, Message: fmt.Sprintf("%s truncated: needs %d words, %d left", opcode, wordCount, len(words)-offset)}
		}

		operands := make([]uint32, wordCount-1)
		copy(operands, words[offset+1:offset+wordCount])
		m.Instructions = append(m.Instructions, Instruction{Opcode: opcode, Words: operands})
		offset += wordCount
	}

	return m, nil
}

// LiteralString decodes the NUL-terminated literal string that starts at
// operand index start. It returns the raw bytes as a string (no UTF-8
// validation is done here) and the operand index following the literal.
func (i Instruction) LiteralString(start int) (string, int) {
	var buf []byte
	for w := start; w < len(i.Words); w++ {
		word := i.Words[w]
		for shift := 0; shift < 32; shift += 8 {
			b := byte(word >> shift)
			if b == 0 {
				return string(buf), w + 1
			}
			buf = append(buf, b)
		}
	}
	return string(buf), len(i.Words)
}

// Operand returns operand n or zero when the instruction is too short.
func (i Instruction) Operand(n int) uint32 {
	if n < 0 || n >= len(i.Words) {
		return 0
	}
	return i.Words[n]
}

// ResultIDs reports the result type and result id of the instruction, when
// present.
func (i Instruction) ResultIDs() (resultType, result uint32) {
	hasType, hasResult := i.Opcode.ResultShape()
	n := 0
	if hasType {
		resultType = i.Operand(n)
		n++
	}
	if hasResult {
		result = i.Operand(n)
	}
	return resultType, result
}

// ResultShape reports whether an opcode carries a result type and a result id.
func (op OpCode) ResultShape() (hasType, hasResult bool) {
	switch op {
	case OpNop, OpSourceContinued, OpSource, OpSourceExtension, OpName,
		OpMemberName, OpLine, OpNoLine, OpExtension, OpMemoryModel,
		OpEntryPoint, OpExecutionMode, OpExecutionModeID, OpCapability,
		OpStore, OpCopyMemory, OpDecorate, OpMemberDecorate, OpDecorateID,
		OpDecorateString, OpMemberDecorateString, OpGroupDecorate,
		OpGroupMemberDecorate, OpImageWrite, OpControlBarrier, OpMemoryBarrier,
		OpLoopMerge, OpSelectionMerge, OpBranch, OpBranchConditional,
		OpSwitch, OpKill, OpReturn, OpReturnValue, OpUnreachable,
		OpFunctionEnd, OpModuleProcessed:
		return false, false
	case OpString, OpExtInstImport, OpTypeVoid, OpTypeBool, OpTypeInt,
		OpTypeFloat, OpTypeVector, OpTypeMatrix, OpTypeImage, OpTypeSampler,
		OpTypeSampledImage, OpTypeArray, OpTypeRuntimeArray, OpTypeStruct,
		OpTypeOpaque, OpTypePointer, OpTypeFunction, OpDecorationGroup, OpLabel:
		return false, true
	}
	return true, true
}

func wordToVersion(word uint32) Version {
	return Version{Major: uint8(word >> 16), Minor: uint8(word >> 8)}
}
