package spirv

import (
	"encoding/binary"
	"math"
)

// Instruction represents a SPIR-V instruction.
type Instruction struct {
	Opcode OpCode
	Words  []uint32 // result type ID, result ID, operands
}

// InstructionBuilder builds SPIR-V instructions.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates a new instruction builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{
		words: make([]uint32, 0, 8),
	}
}

// AddWord adds a word to the instruction.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddWords adds several words to the instruction.
func (b *InstructionBuilder) AddWords(words ...uint32) {
	b.words = append(b.words, words...)
}

// AddString adds a null-terminated string, padded to a word boundary.
// The bytes are written as given; callers may store any byte sequence.
func (b *InstructionBuilder) AddString(s string) {
	b.words = append(b.words, StringWords(s)...)
}

// Build builds the instruction with the given opcode.
func (b *InstructionBuilder) Build(opcode OpCode) Instruction {
	return Instruction{
		Opcode: opcode,
		Words:  b.words,
	}
}

// StringWords encodes s as a SPIR-V literal string.
func StringWords(s string) []uint32 {
	bytes := []byte(s)
	bytes = append(bytes, 0)
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}

	words := make([]uint32, 0, len(bytes)/4)
	for i := 0; i < len(bytes); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(bytes[i:]))
	}
	return words
}

// Encode encodes the instruction to binary.
func (i Instruction) Encode() []uint32 {
	wordCount := uint32(len(i.Words) + 1) // +1 for opcode word
	result := make([]uint32, 0, wordCount)
	result = append(result, (wordCount<<16)|uint32(i.Opcode))
	result = append(result, i.Words...)
	return result
}

// section identifies one of the logical layout sections of a module.
type section uint8

const (
	sectionCapabilities section = iota
	sectionExtensions
	sectionExtInstImports
	sectionMemoryModel
	sectionEntryPoints
	sectionExecutionModes
	sectionDebugStrings
	sectionDebugNames
	sectionAnnotations
	sectionTypes
	sectionFunctions
	sectionCount
)

// ModuleBuilder builds complete SPIR-V modules. Instructions are collected per
// logical section and written in the order the binary layout requires, so
// callers may add them in any order.
type ModuleBuilder struct {
	// Header
	version   Version
	generator uint32
	bound     uint32 // explicit bound, raised to nextID on Build
	schema    uint32

	sections [sectionCount][]Instruction

	// inFunction routes Append calls between OpFunction and OpFunctionEnd.
	inFunction bool

	// ID allocation
	nextID uint32
}

// NewModuleBuilder creates a new SPIR-V module builder.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		nextID:    1,
	}
}

// SetGenerator sets the generator magic written to the header.
func (b *ModuleBuilder) SetGenerator(generator uint32) {
	b.generator = generator
}

// SetBound reserves ids below bound, so AllocID never hands them out again.
func (b *ModuleBuilder) SetBound(bound uint32) {
	b.bound = bound
	if bound > b.nextID {
		b.nextID = bound
	}
}

// AllocID allocates a new SPIR-V ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *ModuleBuilder) add(s section, opcode OpCode, words ...uint32) {
	inst := Instruction{Opcode: opcode, Words: append([]uint32(nil), words...)}
	b.sections[s] = append(b.sections[s], inst)
}

// Append adds an already-encoded instruction, routing it to the section its
// opcode belongs to. Instructions between OpFunction and OpFunctionEnd stay
// in the function section.
func (b *ModuleBuilder) Append(inst Instruction) {
	s := b.sectionOf(inst.Opcode)
	if s == sectionMemoryModel {
		b.sections[s] = b.sections[s][:0]
	}
	b.sections[s] = append(b.sections[s], inst)
}

func (b *ModuleBuilder) sectionOf(opcode OpCode) section {
	if b.inFunction {
		if opcode == OpFunctionEnd {
			b.inFunction = false
		}
		return sectionFunctions
	}
	switch opcode {
	case OpCapability:
		return sectionCapabilities
	case OpExtension:
		return sectionExtensions
	case OpExtInstImport:
		return sectionExtInstImports
	case OpMemoryModel:
		return sectionMemoryModel
	case OpEntryPoint:
		return sectionEntryPoints
	case OpExecutionMode, OpExecutionModeID:
		return sectionExecutionModes
	case OpString, OpSource, OpSourceContinued, OpSourceExtension:
		return sectionDebugStrings
	case OpName, OpMemberName, OpModuleProcessed:
		return sectionDebugNames
	case OpDecorate, OpMemberDecorate, OpDecorationGroup, OpGroupDecorate,
		OpGroupMemberDecorate, OpDecorateID, OpDecorateString, OpMemberDecorateString:
		return sectionAnnotations
	case OpFunction:
		b.inFunction = true
		return sectionFunctions
	}
	return sectionTypes
}

// AddCapability adds a capability.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	b.add(sectionCapabilities, OpCapability, uint32(capability))
}

// AddExtension adds an extension.
func (b *ModuleBuilder) AddExtension(name string) {
	b.add(sectionExtensions, OpExtension, StringWords(name)...)
}

// AddExtInstImport imports an extended instruction set.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	id := b.AllocID()
	b.add(sectionExtInstImports, OpExtInstImport, append([]uint32{id}, StringWords(name)...)...)
	return id
}

// SetMemoryModel sets the memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	b.sections[sectionMemoryModel] = []Instruction{{
		Opcode: OpMemoryModel,
		Words:  []uint32{uint32(addressing), uint32(memory)},
	}}
}

// AddEntryPoint adds an entry point.
func (b *ModuleBuilder) AddEntryPoint(execModel ExecutionModel, funcID uint32, name string, interfaces []uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(execModel))
	builder.AddWord(funcID)
	builder.AddString(name)
	builder.AddWords(interfaces...)
	b.sections[sectionEntryPoints] = append(b.sections[sectionEntryPoints], builder.Build(OpEntryPoint))
}

// AddExecutionMode adds an execution mode.
func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	b.add(sectionExecutionModes, OpExecutionMode, append([]uint32{entryPoint, uint32(mode)}, params...)...)
}

// AddString adds a debug string.
func (b *ModuleBuilder) AddString(text string) uint32 {
	id := b.AllocID()
	b.add(sectionDebugStrings, OpString, append([]uint32{id}, StringWords(text)...)...)
	return id
}

// AddName adds a debug name.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	b.add(sectionDebugNames, OpName, append([]uint32{id}, StringWords(name)...)...)
}

// AddMemberName adds a debug member name.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	b.add(sectionDebugNames, OpMemberName, append([]uint32{structID, member}, StringWords(name)...)...)
}

// AddDecorate adds a decoration.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	b.add(sectionAnnotations, OpDecorate, append([]uint32{id, uint32(decoration)}, params...)...)
}

// AddMemberDecorate adds a member decoration.
func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	b.add(sectionAnnotations, OpMemberDecorate, append([]uint32{structID, member, uint32(decoration)}, params...)...)
}

// addType emits a type-section instruction whose first operand is a fresh result id.
func (b *ModuleBuilder) addType(opcode OpCode, operands ...uint32) uint32 {
	id := b.AllocID()
	b.add(sectionTypes, opcode, append([]uint32{id}, operands...)...)
	return id
}

// AddTypeVoid adds OpTypeVoid.
func (b *ModuleBuilder) AddTypeVoid() uint32 { return b.addType(OpTypeVoid) }

// AddTypeBool adds OpTypeBool.
func (b *ModuleBuilder) AddTypeBool() uint32 { return b.addType(OpTypeBool) }

// AddTypeFloat adds OpTypeFloat.
func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 { return b.addType(OpTypeFloat, width) }

// AddTypeInt adds OpTypeInt.
func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	var signedness uint32
	if signed {
		signedness = 1
	}
	return b.addType(OpTypeInt, width, signedness)
}

// AddTypeVector adds OpTypeVector.
func (b *ModuleBuilder) AddTypeVector(componentType uint32, count uint32) uint32 {
	return b.addType(OpTypeVector, componentType, count)
}

// AddTypeMatrix adds OpTypeMatrix.
func (b *ModuleBuilder) AddTypeMatrix(columnType uint32, columnCount uint32) uint32 {
	return b.addType(OpTypeMatrix, columnType, columnCount)
}

// AddTypeImage adds OpTypeImage.
func (b *ModuleBuilder) AddTypeImage(sampledType uint32, dim Dim, depth, arrayed, ms, sampled uint32, format ImageFormat) uint32 {
	return b.addType(OpTypeImage, sampledType, uint32(dim), depth, arrayed, ms, sampled, uint32(format))
}

// AddTypeSampler adds OpTypeSampler.
func (b *ModuleBuilder) AddTypeSampler() uint32 { return b.addType(OpTypeSampler) }

// AddTypeSampledImage adds OpTypeSampledImage.
func (b *ModuleBuilder) AddTypeSampledImage(imageType uint32) uint32 {
	return b.addType(OpTypeSampledImage, imageType)
}

// AddTypeArray adds OpTypeArray. length is a constant ID.
func (b *ModuleBuilder) AddTypeArray(elementType uint32, length uint32) uint32 {
	return b.addType(OpTypeArray, elementType, length)
}

// AddTypeRuntimeArray adds OpTypeRuntimeArray.
func (b *ModuleBuilder) AddTypeRuntimeArray(elementType uint32) uint32 {
	return b.addType(OpTypeRuntimeArray, elementType)
}

// AddTypePointer adds OpTypePointer.
func (b *ModuleBuilder) AddTypePointer(storageClass StorageClass, baseType uint32) uint32 {
	return b.addType(OpTypePointer, uint32(storageClass), baseType)
}

// AddTypeFunction adds OpTypeFunction.
func (b *ModuleBuilder) AddTypeFunction(returnType uint32, paramTypes ...uint32) uint32 {
	return b.addType(OpTypeFunction, append([]uint32{returnType}, paramTypes...)...)
}

// AddTypeStruct adds OpTypeStruct.
func (b *ModuleBuilder) AddTypeStruct(memberTypes ...uint32) uint32 {
	return b.addType(OpTypeStruct, memberTypes...)
}

// addValue emits an instruction of the form <result type> <result id> operands...
func (b *ModuleBuilder) addValue(s section, opcode OpCode, resultType uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	b.add(s, opcode, append([]uint32{resultType, id}, operands...)...)
	return id
}

// AddConstant adds OpConstant.
func (b *ModuleBuilder) AddConstant(typeID uint32, values ...uint32) uint32 {
	return b.addValue(sectionTypes, OpConstant, typeID, values...)
}

// AddSpecConstant adds OpSpecConstant.
func (b *ModuleBuilder) AddSpecConstant(typeID uint32, values ...uint32) uint32 {
	return b.addValue(sectionTypes, OpSpecConstant, typeID, values...)
}

// AddConstantBool adds OpConstantTrue or OpConstantFalse.
func (b *ModuleBuilder) AddConstantBool(typeID uint32, value bool) uint32 {
	if value {
		return b.addValue(sectionTypes, OpConstantTrue, typeID)
	}
	return b.addValue(sectionTypes, OpConstantFalse, typeID)
}

// AddConstantFloat32 adds a 32-bit float constant.
func (b *ModuleBuilder) AddConstantFloat32(typeID uint32, value float32) uint32 {
	return b.AddConstant(typeID, math.Float32bits(value))
}

// AddConstantFloat64 adds a 64-bit float constant.
func (b *ModuleBuilder) AddConstantFloat64(typeID uint32, value float64) uint32 {
	bits := math.Float64bits(value)
	return b.AddConstant(typeID, uint32(bits&0xFFFFFFFF), uint32(bits>>32))
}

// AddConstantComposite adds OpConstantComposite.
func (b *ModuleBuilder) AddConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	return b.addValue(sectionTypes, OpConstantComposite, typeID, constituents...)
}

// AddVariable adds a module-scope OpVariable.
func (b *ModuleBuilder) AddVariable(pointerType uint32, storageClass StorageClass) uint32 {
	return b.addValue(sectionTypes, OpVariable, pointerType, uint32(storageClass))
}

// AddVariableWithInit adds a module-scope OpVariable with initializer.
func (b *ModuleBuilder) AddVariableWithInit(pointerType uint32, storageClass StorageClass, initID uint32) uint32 {
	return b.addValue(sectionTypes, OpVariable, pointerType, uint32(storageClass), initID)
}

// AddLocalVariable adds a Function storage OpVariable inside the current function.
func (b *ModuleBuilder) AddLocalVariable(pointerType uint32) uint32 {
	return b.addValue(sectionFunctions, OpVariable, pointerType, uint32(StorageClassFunction))
}

// AddFunction adds a function definition.
func (b *ModuleBuilder) AddFunction(funcType uint32, returnType uint32, control FunctionControl) uint32 {
	return b.addValue(sectionFunctions, OpFunction, returnType, uint32(control), funcType)
}

// AddFunctionParameter adds a function parameter.
func (b *ModuleBuilder) AddFunctionParameter(typeID uint32) uint32 {
	return b.addValue(sectionFunctions, OpFunctionParameter, typeID)
}

// AddLabel adds a label.
func (b *ModuleBuilder) AddLabel() uint32 {
	id := b.AllocID()
	b.add(sectionFunctions, OpLabel, id)
	return id
}

// AddLabelID adds a label for an id allocated earlier, for forward branches.
func (b *ModuleBuilder) AddLabelID(id uint32) {
	b.add(sectionFunctions, OpLabel, id)
}

// AddReturn adds OpReturn.
func (b *ModuleBuilder) AddReturn() { b.add(sectionFunctions, OpReturn) }

// AddReturnValue adds OpReturnValue.
func (b *ModuleBuilder) AddReturnValue(valueID uint32) {
	b.add(sectionFunctions, OpReturnValue, valueID)
}

// AddFunctionEnd adds OpFunctionEnd.
func (b *ModuleBuilder) AddFunctionEnd() { b.add(sectionFunctions, OpFunctionEnd) }

// AddFunctionCall adds OpFunctionCall.
func (b *ModuleBuilder) AddFunctionCall(resultType uint32, function uint32, args ...uint32) uint32 {
	return b.addValue(sectionFunctions, OpFunctionCall, resultType, append([]uint32{function}, args...)...)
}

// AddBinaryOp adds a binary operation instruction.
func (b *ModuleBuilder) AddBinaryOp(opcode OpCode, resultType uint32, left uint32, right uint32) uint32 {
	return b.addValue(sectionFunctions, opcode, resultType, left, right)
}

// AddUnaryOp adds a unary operation instruction.
func (b *ModuleBuilder) AddUnaryOp(opcode OpCode, resultType uint32, operand uint32) uint32 {
	return b.addValue(sectionFunctions, opcode, resultType, operand)
}

// AddLoad adds OpLoad.
func (b *ModuleBuilder) AddLoad(resultType uint32, pointer uint32) uint32 {
	return b.addValue(sectionFunctions, OpLoad, resultType, pointer)
}

// AddStore adds OpStore.
func (b *ModuleBuilder) AddStore(pointer uint32, value uint32) {
	b.add(sectionFunctions, OpStore, pointer, value)
}

// AddAccessChain adds OpAccessChain.
func (b *ModuleBuilder) AddAccessChain(resultType uint32, base uint32, indices ...uint32) uint32 {
	return b.addValue(sectionFunctions, OpAccessChain, resultType, append([]uint32{base}, indices...)...)
}

// AddCompositeConstruct adds OpCompositeConstruct.
func (b *ModuleBuilder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	return b.addValue(sectionFunctions, OpCompositeConstruct, resultType, constituents...)
}

// AddCompositeExtract adds OpCompositeExtract.
func (b *ModuleBuilder) AddCompositeExtract(resultType uint32, composite uint32, indices ...uint32) uint32 {
	return b.addValue(sectionFunctions, OpCompositeExtract, resultType, append([]uint32{composite}, indices...)...)
}

// AddVectorShuffle adds OpVectorShuffle for vector swizzle operations.
func (b *ModuleBuilder) AddVectorShuffle(resultType uint32, vec1 uint32, vec2 uint32, components []uint32) uint32 {
	return b.addValue(sectionFunctions, OpVectorShuffle, resultType, append([]uint32{vec1, vec2}, components...)...)
}

// AddSelect adds OpSelect.
func (b *ModuleBuilder) AddSelect(resultType uint32, condition uint32, accept uint32, reject uint32) uint32 {
	return b.addValue(sectionFunctions, OpSelect, resultType, condition, accept, reject)
}

// AddSampledImage adds OpSampledImage.
func (b *ModuleBuilder) AddSampledImage(resultType uint32, image uint32, sampler uint32) uint32 {
	return b.addValue(sectionFunctions, OpSampledImage, resultType, image, sampler)
}

// AddImageSample adds an image sampling instruction with optional image operands.
func (b *ModuleBuilder) AddImageSample(opcode OpCode, resultType uint32, sampledImage uint32, coordinate uint32, operands ...uint32) uint32 {
	return b.addValue(sectionFunctions, opcode, resultType, append([]uint32{sampledImage, coordinate}, operands...)...)
}

// AddImageWrite adds OpImageWrite.
func (b *ModuleBuilder) AddImageWrite(image uint32, coordinate uint32, texel uint32) {
	b.add(sectionFunctions, OpImageWrite, image, coordinate, texel)
}

// AddPhi adds OpPhi. pairs alternates value and parent label ids.
func (b *ModuleBuilder) AddPhi(resultType uint32, pairs ...uint32) uint32 {
	return b.addValue(sectionFunctions, OpPhi, resultType, pairs...)
}

// AddSelectionMerge adds OpSelectionMerge.
func (b *ModuleBuilder) AddSelectionMerge(mergeLabel uint32, control SelectionControl) {
	b.add(sectionFunctions, OpSelectionMerge, mergeLabel, uint32(control))
}

// AddLoopMerge adds OpLoopMerge.
func (b *ModuleBuilder) AddLoopMerge(mergeLabel uint32, continueLabel uint32, control LoopControl) {
	b.add(sectionFunctions, OpLoopMerge, mergeLabel, continueLabel, uint32(control))
}

// AddBranch adds OpBranch.
func (b *ModuleBuilder) AddBranch(target uint32) {
	b.add(sectionFunctions, OpBranch, target)
}

// AddBranchConditional adds OpBranchConditional.
func (b *ModuleBuilder) AddBranchConditional(condition uint32, trueLabel uint32, falseLabel uint32) {
	b.add(sectionFunctions, OpBranchConditional, condition, trueLabel, falseLabel)
}

// AddSwitch adds OpSwitch. targets alternates literal and label ids.
func (b *ModuleBuilder) AddSwitch(selector uint32, defaultLabel uint32, targets ...uint32) {
	b.add(sectionFunctions, OpSwitch, append([]uint32{selector, defaultLabel}, targets...)...)
}

// AddKill adds OpKill (fragment shader discard).
func (b *ModuleBuilder) AddKill() { b.add(sectionFunctions, OpKill) }

// AddExtInst adds OpExtInst (extended instruction).
func (b *ModuleBuilder) AddExtInst(resultType uint32, extSet uint32, instruction uint32, operands ...uint32) uint32 {
	return b.addValue(sectionFunctions, OpExtInst, resultType, append([]uint32{extSet, instruction}, operands...)...)
}

// Build generates the final SPIR-V binary.
func (b *ModuleBuilder) Build() []byte {
	words := b.BuildWords()
	buffer := make([]byte, len(words)*4)
	for i, word := range words {
		binary.LittleEndian.PutUint32(buffer[i*4:], word)
	}
	return buffer
}

// BuildWords generates the final module as host words.
func (b *ModuleBuilder) BuildWords() []uint32 {
	bound := b.nextID
	if b.bound > bound {
		bound = b.bound
	}

	totalWords := HeaderWords
	for _, insts := range b.sections {
		totalWords += countWords(insts)
	}

	words := make([]uint32, 0, totalWords)
	words = append(words, MagicNumber, versionToWord(b.version), b.generator, bound, b.schema)
	for _, insts := range b.sections {
		for _, inst := range insts {
			words = append(words, inst.Encode()...)
		}
	}
	return words
}

// countWords counts total words in instructions.
func countWords(instructions []Instruction) int {
	count := 0
	for _, inst := range instructions {
		count += len(inst.Words) + 1
	}
	return count
}

// versionToWord converts Version to SPIR-V word format.
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}
