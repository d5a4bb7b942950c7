package spirv

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

// SPIR-V magic number and constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator

	// HeaderWords is the number of words in the module header.
	HeaderWords = 5
)

// Header is the decoded five-word module header.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes understood by the reader, the lowering pass and the disassembler.
const (
	OpNop                       OpCode = 0
	OpUndef                     OpCode = 1
	OpSourceContinued           OpCode = 2
	OpSource                    OpCode = 3
	OpSourceExtension           OpCode = 4
	OpName                      OpCode = 5
	OpMemberName                OpCode = 6
	OpString                    OpCode = 7
	OpLine                      OpCode = 8
	OpExtension                 OpCode = 10
	OpExtInstImport             OpCode = 11
	OpExtInst                   OpCode = 12
	OpMemoryModel               OpCode = 14
	OpEntryPoint                OpCode = 15
	OpExecutionMode             OpCode = 16
	OpCapability                OpCode = 17
	OpTypeVoid                  OpCode = 19
	OpTypeBool                  OpCode = 20
	OpTypeInt                   OpCode = 21
	OpTypeFloat                 OpCode = 22
	OpTypeVector                OpCode = 23
	OpTypeMatrix                OpCode = 24
	OpTypeImage                 OpCode = 25
	OpTypeSampler               OpCode = 26
	OpTypeSampledImage          OpCode = 27
	OpTypeArray                 OpCode = 28
	OpTypeRuntimeArray          OpCode = 29
	OpTypeStruct                OpCode = 30
	OpTypeOpaque                OpCode = 31
	OpTypePointer               OpCode = 32
	OpTypeFunction              OpCode = 33
	OpConstantTrue              OpCode = 41
	OpConstantFalse             OpCode = 42
	OpConstant                  OpCode = 43
	OpConstantComposite         OpCode = 44
	OpConstantSampler           OpCode = 45
	OpConstantNull              OpCode = 46
	OpSpecConstantTrue          OpCode = 48
	OpSpecConstantFalse         OpCode = 49
	OpSpecConstant              OpCode = 50
	OpSpecConstantComposite     OpCode = 51
	OpSpecConstantOp            OpCode = 52
	OpFunction                  OpCode = 54
	OpFunctionParameter         OpCode = 55
	OpFunctionEnd               OpCode = 56
	OpFunctionCall              OpCode = 57
	OpVariable                  OpCode = 59
	OpImageTexelPointer         OpCode = 60
	OpLoad                      OpCode = 61
	OpStore                     OpCode = 62
	OpCopyMemory                OpCode = 63
	OpAccessChain               OpCode = 65
	OpInBoundsAccessChain       OpCode = 66
	OpArrayLength               OpCode = 68
	OpDecorate                  OpCode = 71
	OpMemberDecorate            OpCode = 72
	OpDecorationGroup           OpCode = 73
	OpGroupDecorate             OpCode = 74
	OpGroupMemberDecorate       OpCode = 75
	OpVectorExtractDynamic      OpCode = 77
	OpVectorInsertDynamic       OpCode = 78
	OpVectorShuffle             OpCode = 79
	OpCompositeConstruct        OpCode = 80
	OpCompositeExtract          OpCode = 81
	OpCompositeInsert           OpCode = 82
	OpCopyObject                OpCode = 83
	OpTranspose                 OpCode = 84
	OpSampledImage              OpCode = 86
	OpImageSampleImplicitLod    OpCode = 87
	OpImageSampleExplicitLod    OpCode = 88
	OpImageSampleDrefImplicitLod OpCode = 89
	OpImageSampleDrefExplicitLod OpCode = 90
	OpImageSampleProjImplicitLod OpCode = 91
	OpImageSampleProjExplicitLod OpCode = 92
	OpImageFetch                OpCode = 95
	OpImageGather               OpCode = 96
	OpImageDrefGather           OpCode = 97
	OpImageRead                 OpCode = 98
	OpImageWrite                OpCode = 99
	OpImage                     OpCode = 100
	OpImageQuerySizeLod         OpCode = 103
	OpImageQuerySize            OpCode = 104
	OpImageQueryLevels          OpCode = 106
	OpImageQuerySamples         OpCode = 107
	OpConvertFToU               OpCode = 109
	OpConvertFToS               OpCode = 110
	OpConvertSToF               OpCode = 111
	OpConvertUToF               OpCode = 112
	OpUConvert                  OpCode = 113
	OpSConvert                  OpCode = 114
	OpFConvert                  OpCode = 115
	OpBitcast                   OpCode = 124
	OpSNegate                   OpCode = 126
	OpFNegate                   OpCode = 127
	OpIAdd                      OpCode = 128
	OpFAdd                      OpCode = 129
	OpISub                      OpCode = 130
	OpFSub                      OpCode = 131
	OpIMul                      OpCode = 132
	OpFMul                      OpCode = 133
	OpUDiv                      OpCode = 134
	OpSDiv                      OpCode = 135
	OpFDiv                      OpCode = 136
	OpUMod                      OpCode = 137
	OpSRem                      OpCode = 138
	OpSMod                      OpCode = 139
	OpFRem                      OpCode = 140
	OpFMod                      OpCode = 141
	OpVectorTimesScalar         OpCode = 142
	OpMatrixTimesScalar         OpCode = 143
	OpVectorTimesMatrix         OpCode = 144
	OpMatrixTimesVector         OpCode = 145
	OpMatrixTimesMatrix         OpCode = 146
	OpOuterProduct              OpCode = 147
	OpDot                       OpCode = 148
	OpAny                       OpCode = 154
	OpAll                       OpCode = 155
	OpIsNan                     OpCode = 156
	OpIsInf                     OpCode = 157
	OpLogicalEqual              OpCode = 164
	OpLogicalNotEqual           OpCode = 165
	OpLogicalOr                 OpCode = 166
	OpLogicalAnd                OpCode = 167
	OpLogicalNot                OpCode = 168
	OpSelect                    OpCode = 169
	OpIEqual                    OpCode = 170
	OpINotEqual                 OpCode = 171
	OpUGreaterThan              OpCode = 172
	OpSGreaterThan              OpCode = 173
	OpUGreaterThanEqual         OpCode = 174
	OpSGreaterThanEqual         OpCode = 175
	OpULessThan                 OpCode = 176
	OpSLessThan                 OpCode = 177
	OpULessThanEqual            OpCode = 178
	OpSLessThanEqual            OpCode = 179
	OpFOrdEqual                 OpCode = 180
	OpFUnordEqual               OpCode = 181
	OpFOrdNotEqual              OpCode = 182
	OpFUnordNotEqual            OpCode = 183
	OpFOrdLessThan              OpCode = 184
	OpFUnordLessThan            OpCode = 185
	OpFOrdGreaterThan           OpCode = 186
	OpFUnordGreaterThan         OpCode = 187
	OpFOrdLessThanEqual         OpCode = 188
	OpFUnordLessThanEqual       OpCode = 189
	OpFOrdGreaterThanEqual      OpCode = 190
	OpFUnordGreaterThanEqual    OpCode = 191
	OpShiftRightLogical         OpCode = 194
	OpShiftRightArithmetic      OpCode = 195
	OpShiftLeftLogical          OpCode = 196
	OpBitwiseOr                 OpCode = 197
	OpBitwiseXor                OpCode = 198
	OpBitwiseAnd                OpCode = 199
	OpNot                       OpCode = 200
	OpBitReverse                OpCode = 204
	OpBitCount                  OpCode = 205
	OpDPdx                      OpCode = 207
	OpDPdy                      OpCode = 208
	OpFwidth                    OpCode = 209
	OpDPdxFine                  OpCode = 210
	OpDPdyFine                  OpCode = 211
	OpFwidthFine                OpCode = 212
	OpDPdxCoarse                OpCode = 213
	OpDPdyCoarse                OpCode = 214
	OpFwidthCoarse              OpCode = 215
	OpControlBarrier            OpCode = 224
	OpMemoryBarrier             OpCode = 225
	OpPhi                       OpCode = 245
	OpLoopMerge                 OpCode = 246
	OpSelectionMerge            OpCode = 247
	OpLabel                     OpCode = 248
	OpBranch                    OpCode = 249
	OpBranchConditional         OpCode = 250
	OpSwitch                    OpCode = 251
	OpKill                      OpCode = 252
	OpReturn                    OpCode = 253
	OpReturnValue               OpCode = 254
	OpUnreachable               OpCode = 255
	OpNoLine                    OpCode = 317
	OpModuleProcessed           OpCode = 330
	OpExecutionModeID           OpCode = 331
	OpDecorateID                OpCode = 332
	OpDecorateString            OpCode = 5632
	OpMemberDecorateString      OpCode = 5633
)

// Capability represents a SPIR-V capability.
type Capability uint32

// Common capabilities
const (
	CapabilityMatrix         Capability = 0
	CapabilityShader         Capability = 1
	CapabilityGeometry       Capability = 2
	CapabilityTessellation   Capability = 3
	CapabilityFloat64        Capability = 10
	CapabilityInt64          Capability = 11
	CapabilityImageQuery     Capability = 50
	CapabilityInputAttachment Capability = 40
)

// AddressingModel is the operand of OpMemoryModel.
type AddressingModel uint32

// Addressing models.
const (
	AddressingModelLogical    AddressingModel = 0
	AddressingModelPhysical32 AddressingModel = 1
	AddressingModelPhysical64 AddressingModel = 2
)

// MemoryModel is the second operand of OpMemoryModel.
type MemoryModel uint32

// Memory models.
const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelOpenCL  MemoryModel = 2
	MemoryModelVulkan  MemoryModel = 3
)

// ExecutionModel is the stage of an OpEntryPoint.
type ExecutionModel uint32

// Execution models.
const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5
	ExecutionModelKernel                 ExecutionModel = 6
	ExecutionModelTaskNV                 ExecutionModel = 5267
	ExecutionModelMeshNV                 ExecutionModel = 5268
	ExecutionModelRayGenerationKHR       ExecutionModel = 5313
	ExecutionModelIntersectionKHR        ExecutionModel = 5314
	ExecutionModelAnyHitKHR              ExecutionModel = 5315
	ExecutionModelClosestHitKHR          ExecutionModel = 5316
	ExecutionModelMissKHR                ExecutionModel = 5317
	ExecutionModelCallableKHR            ExecutionModel = 5318
)

// ExecutionMode is the mode operand of OpExecutionMode.
type ExecutionMode uint32

// Execution modes.
const (
	ExecutionModeInvocations        ExecutionMode = 0
	ExecutionModePixelCenterInteger ExecutionMode = 6
	ExecutionModeOriginUpperLeft    ExecutionMode = 7
	ExecutionModeOriginLowerLeft    ExecutionMode = 8
	ExecutionModeEarlyFragmentTests ExecutionMode = 9
	ExecutionModeDepthReplacing     ExecutionMode = 12
	ExecutionModeDepthGreater       ExecutionMode = 14
	ExecutionModeDepthLess          ExecutionMode = 15
	ExecutionModeDepthUnchanged     ExecutionMode = 16
	ExecutionModeLocalSize          ExecutionMode = 17
	ExecutionModeLocalSizeHint      ExecutionMode = 18
	ExecutionModeOutputVertices     ExecutionMode = 26
	ExecutionModeLocalSizeID        ExecutionMode = 38
)

// StorageClass is the storage class of a pointer or variable.
type StorageClass uint32

// Storage classes.
const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassCrossWorkgroup  StorageClass = 5
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassGeneric         StorageClass = 8
	StorageClassPushConstant    StorageClass = 9
	StorageClassAtomicCounter   StorageClass = 10
	StorageClassImage           StorageClass = 11
	StorageClassStorageBuffer   StorageClass = 12
)

// Decoration represents a SPIR-V decoration.
type Decoration uint32

// Decorations.
const (
	DecorationRelaxedPrecision            Decoration = 0
	DecorationSpecID                      Decoration = 1
	DecorationBlock                       Decoration = 2
	DecorationBufferBlock                 Decoration = 3
	DecorationRowMajor                    Decoration = 4
	DecorationColMajor                    Decoration = 5
	DecorationArrayStride                 Decoration = 6
	DecorationMatrixStride                Decoration = 7
	DecorationGLSLShared                  Decoration = 8
	DecorationGLSLPacked                  Decoration = 9
	DecorationCPacked                     Decoration = 10
	DecorationBuiltIn                     Decoration = 11
	DecorationNoPerspective               Decoration = 13
	DecorationFlat                        Decoration = 14
	DecorationPatch                       Decoration = 15
	DecorationCentroid                    Decoration = 16
	DecorationSample                      Decoration = 17
	DecorationInvariant                   Decoration = 18
	DecorationRestrict                    Decoration = 19
	DecorationAliased                     Decoration = 20
	DecorationVolatile                    Decoration = 21
	DecorationConstant                    Decoration = 22
	DecorationCoherent                    Decoration = 23
	DecorationNonWritable                 Decoration = 24
	DecorationNonReadable                 Decoration = 25
	DecorationUniform                     Decoration = 26
	DecorationSaturatedConversion         Decoration = 28
	DecorationStream                      Decoration = 29
	DecorationLocation                    Decoration = 30
	DecorationComponent                   Decoration = 31
	DecorationIndex                       Decoration = 32
	DecorationBinding                     Decoration = 33
	DecorationDescriptorSet               Decoration = 34
	DecorationOffset                      Decoration = 35
	DecorationXfbBuffer                   Decoration = 36
	DecorationXfbStride                   Decoration = 37
	DecorationFuncParamAttr               Decoration = 38
	DecorationFPRoundingMode              Decoration = 39
	DecorationFPFastMathMode              Decoration = 40
	DecorationLinkageAttributes           Decoration = 41
	DecorationNoContraction               Decoration = 42
	DecorationInputAttachmentIndex        Decoration = 43
	DecorationAlignment                   Decoration = 44
	DecorationOverrideCoverageNV          Decoration = 5248
	DecorationPassthroughNV               Decoration = 5250
	DecorationViewportRelativeNV          Decoration = 5252
	DecorationSecondaryViewportRelativeNV Decoration = 5256
)

// HasLiteral reports whether the decoration carries a literal operand in the
// binary encoding. Flag decorations such as Block carry none.
func (d Decoration) HasLiteral() bool {
	switch d {
	case DecorationSpecID, DecorationArrayStride, DecorationMatrixStride,
		DecorationBuiltIn, DecorationStream, DecorationLocation,
		DecorationComponent, DecorationIndex, DecorationBinding,
		DecorationDescriptorSet, DecorationOffset, DecorationXfbBuffer,
		DecorationXfbStride, DecorationFuncParamAttr, DecorationFPRoundingMode,
		DecorationFPFastMathMode, DecorationInputAttachmentIndex,
		DecorationAlignment, DecorationSecondaryViewportRelativeNV:
		return true
	}
	return false
}

// BuiltIn is the literal of a BuiltIn decoration.
type BuiltIn uint32

// Built-in variables.
const (
	BuiltInPosition              BuiltIn = 0
	BuiltInPointSize             BuiltIn = 1
	BuiltInClipDistance          BuiltIn = 3
	BuiltInCullDistance          BuiltIn = 4
	BuiltInVertexID              BuiltIn = 5
	BuiltInInstanceID            BuiltIn = 6
	BuiltInPrimitiveID           BuiltIn = 7
	BuiltInInvocationID          BuiltIn = 8
	BuiltInLayer                 BuiltIn = 9
	BuiltInViewportIndex         BuiltIn = 10
	BuiltInTessLevelOuter        BuiltIn = 11
	BuiltInTessLevelInner        BuiltIn = 12
	BuiltInTessCoord             BuiltIn = 13
	BuiltInPatchVertices         BuiltIn = 14
	BuiltInFragCoord             BuiltIn = 15
	BuiltInPointCoord            BuiltIn = 16
	BuiltInFrontFacing           BuiltIn = 17
	BuiltInSampleID              BuiltIn = 18
	BuiltInSamplePosition        BuiltIn = 19
	BuiltInSampleMask            BuiltIn = 20
	BuiltInFragDepth             BuiltIn = 22
	BuiltInHelperInvocation      BuiltIn = 23
	BuiltInNumWorkgroups         BuiltIn = 24
	BuiltInWorkgroupSize         BuiltIn = 25
	BuiltInWorkgroupID           BuiltIn = 26
	BuiltInLocalInvocationID     BuiltIn = 27
	BuiltInGlobalInvocationID    BuiltIn = 28
	BuiltInLocalInvocationIndex  BuiltIn = 29
	BuiltInVertexIndex           BuiltIn = 42
	BuiltInInstanceIndex         BuiltIn = 43
)

// Dim is the dimensionality of an OpTypeImage.
type Dim uint32

// Image dimensionalities.
const (
	Dim1D          Dim = 0
	Dim2D          Dim = 1
	Dim3D          Dim = 2
	DimCube        Dim = 3
	DimRect        Dim = 4
	DimBuffer      Dim = 5
	DimSubpassData Dim = 6
)

// ImageFormat is the format operand of an OpTypeImage.
type ImageFormat uint32

// Image formats, in encoding order.
const (
	ImageFormatUnknown ImageFormat = iota
	ImageFormatRgba32f
	ImageFormatRgba16f
	ImageFormatR32f
	ImageFormatRgba8
	ImageFormatRgba8Snorm
	ImageFormatRg32f
	ImageFormatRg16f
	ImageFormatR11fG11fB10f
	ImageFormatR16f
	ImageFormatRgba16
	ImageFormatRgb10A2
	ImageFormatRg16
	ImageFormatRg8
	ImageFormatR16
	ImageFormatR8
	ImageFormatRgba16Snorm
	ImageFormatRg16Snorm
	ImageFormatRg8Snorm
	ImageFormatR16Snorm
	ImageFormatR8Snorm
	ImageFormatRgba32i
	ImageFormatRgba16i
	ImageFormatRgba8i
	ImageFormatR32i
	ImageFormatRg32i
	ImageFormatRg16i
	ImageFormatRg8i
	ImageFormatR16i
	ImageFormatR8i
	ImageFormatRgba32ui
	ImageFormatRgba16ui
	ImageFormatRgba8ui
	ImageFormatR32ui
	ImageFormatRgb10a2ui
	ImageFormatRg32ui
	ImageFormatRg16ui
	ImageFormatRg8ui
	ImageFormatR16ui
	ImageFormatR8ui
)

// FunctionControl is the control mask of OpFunction.
type FunctionControl uint32

// Function control flags.
const (
	FunctionControlNone       FunctionControl = 0
	FunctionControlInline     FunctionControl = 1
	FunctionControlDontInline FunctionControl = 2
	FunctionControlPure       FunctionControl = 4
	FunctionControlConst      FunctionControl = 8
)

// SelectionControl is the control mask of OpSelectionMerge.
type SelectionControl uint32

// Selection control flags.
const (
	SelectionControlNone SelectionControl = 0
)

// LoopControl is the control mask of OpLoopMerge.
type LoopControl uint32

// Loop control flags.
const (
	LoopControlNone LoopControl = 0
)

// Image operand mask bits used by sampling instructions.
const (
	ImageOperandsBias        uint32 = 0x1
	ImageOperandsLod         uint32 = 0x2
	ImageOperandsGrad        uint32 = 0x4
	ImageOperandsConstOffset uint32 = 0x8
	ImageOperandsOffset      uint32 = 0x10
	ImageOperandsSample      uint32 = 0x40
)

// GLSLstd450 is an instruction number of the GLSL.std.450 extended set.
type GLSLstd450 uint32

// GLSL.std.450 instructions.
const (
	GLSLstd450Round         GLSLstd450 = 1
	GLSLstd450RoundEven     GLSLstd450 = 2
	GLSLstd450Trunc         GLSLstd450 = 3
	GLSLstd450FAbs          GLSLstd450 = 4
	GLSLstd450SAbs          GLSLstd450 = 5
	GLSLstd450FSign         GLSLstd450 = 6
	GLSLstd450SSign         GLSLstd450 = 7
	GLSLstd450Floor         GLSLstd450 = 8
	GLSLstd450Ceil          GLSLstd450 = 9
	GLSLstd450Fract         GLSLstd450 = 10
	GLSLstd450Radians       GLSLstd450 = 11
	GLSLstd450Degrees       GLSLstd450 = 12
	GLSLstd450Sin           GLSLstd450 = 13
	GLSLstd450Cos           GLSLstd450 = 14
	GLSLstd450Tan           GLSLstd450 = 15
	GLSLstd450Asin          GLSLstd450 = 16
	GLSLstd450Acos          GLSLstd450 = 17
	GLSLstd450Atan          GLSLstd450 = 18
	GLSLstd450Sinh          GLSLstd450 = 19
	GLSLstd450Cosh          GLSLstd450 = 20
	GLSLstd450Tanh          GLSLstd450 = 21
	GLSLstd450Atan2         GLSLstd450 = 25
	GLSLstd450Pow           GLSLstd450 = 26
	GLSLstd450Exp           GLSLstd450 = 27
	GLSLstd450Log           GLSLstd450 = 28
	GLSLstd450Exp2          GLSLstd450 = 29
	GLSLstd450Log2          GLSLstd450 = 30
	GLSLstd450Sqrt          GLSLstd450 = 31
	GLSLstd450InverseSqrt   GLSLstd450 = 32
	GLSLstd450Determinant   GLSLstd450 = 33
	GLSLstd450MatrixInverse GLSLstd450 = 34
	GLSLstd450FMin          GLSLstd450 = 37
	GLSLstd450UMin          GLSLstd450 = 38
	GLSLstd450SMin          GLSLstd450 = 39
	GLSLstd450FMax          GLSLstd450 = 40
	GLSLstd450UMax          GLSLstd450 = 41
	GLSLstd450SMax          GLSLstd450 = 42
	GLSLstd450FClamp        GLSLstd450 = 43
	GLSLstd450UClamp        GLSLstd450 = 44
	GLSLstd450SClamp        GLSLstd450 = 45
	GLSLstd450FMix          GLSLstd450 = 46
	GLSLstd450Step          GLSLstd450 = 48
	GLSLstd450SmoothStep    GLSLstd450 = 49
	GLSLstd450Fma           GLSLstd450 = 50
	GLSLstd450Ldexp         GLSLstd450 = 53
	GLSLstd450Length        GLSLstd450 = 66
	GLSLstd450Distance      GLSLstd450 = 67
	GLSLstd450Cross         GLSLstd450 = 68
	GLSLstd450Normalize     GLSLstd450 = 69
	GLSLstd450FaceForward   GLSLstd450 = 70
	GLSLstd450Reflect       GLSLstd450 = 71
	GLSLstd450Refract       GLSLstd450 = 72
	GLSLstd450FindILsb      GLSLstd450 = 73
	GLSLstd450FindSMsb      GLSLstd450 = 74
	GLSLstd450FindUMsb      GLSLstd450 = 75
	GLSLstd450NMin          GLSLstd450 = 79
	GLSLstd450NMax          GLSLstd450 = 80
	GLSLstd450NClamp        GLSLstd450 = 81
)

// GLSLstd450Name is the import name of the GLSL.std.450 extended instruction set.
const GLSLstd450Name = "GLSL.std.450"
