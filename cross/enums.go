package cross

import (
	"fmt"

	"github.com/gogpu/spvcross/spirv"
)

// ExecutionModel is the pipeline stage of an entry point.
type ExecutionModel uint8

// Execution models a Compiler can report and select.
const (
	Vertex ExecutionModel = iota
	TessellationControl
	TessellationEvaluation
	Geometry
	Fragment
	GlCompute
	Kernel
)

var executionModels = [...]spirv.ExecutionModel{
	Vertex:                 spirv.ExecutionModelVertex,
	TessellationControl:    spirv.ExecutionModelTessellationControl,
	TessellationEvaluation: spirv.ExecutionModelTessellationEvaluation,
	Geometry:               spirv.ExecutionModelGeometry,
	Fragment:               spirv.ExecutionModelFragment,
	GlCompute:              spirv.ExecutionModelGLCompute,
	Kernel:                 spirv.ExecutionModelKernel,
}

func (m ExecutionModel) String() string {
	if int(m) < len(executionModels) {
		return executionModels[m].String()
	}
	return fmt.Sprintf("ExecutionModel(%d)", uint8(m))
}

// MarshalText encodes m by its SPIR-V name.
func (m ExecutionModel) MarshalText() ([]byte, error) {
	if int(m) >= len(executionModels) {
		return nil, fmt.Errorf("unknown execution model %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a SPIR-V execution model name.
func (m *ExecutionModel) UnmarshalText(text []byte) error {
	v, err := ParseExecutionModel(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// raw returns the SPIR-V value of m.
func (m ExecutionModel) raw() (uint32, bool) {
	if int(m) >= len(executionModels) {
		return 0, false
	}
	return uint32(executionModels[m]), true
}

// executionModelFromRaw maps a SPIR-V execution model back. Stages added
// after the classic graphics and compute set, such as ray tracing and
// mesh shading, have no public value.
func executionModelFromRaw(raw uint32) (ExecutionModel, bool) {
	for m, r := range executionModels {
		if uint32(r) == raw {
			return ExecutionModel(m), true
		}
	}
	return 0, false
}

// ParseExecutionModel looks up an execution model by its SPIR-V name,
// such as "Fragment" or "GLCompute".
func ParseExecutionModel(name string) (ExecutionModel, error) {
	for m, r := range executionModels {
		if r.String() == name {
			return ExecutionModel(m), nil
		}
	}
	return 0, fmt.Errorf("unknown execution model %q", name)
}

// Decoration is a SPIR-V decoration kind.
type Decoration uint8

// Decorations readable and writable through a Compiler.
const (
	RelaxedPrecision Decoration = iota
	SpecID
	Block
	BufferBlock
	RowMajor
	ColMajor
	ArrayStride
	MatrixStride
	GLSLShared
	GLSLPacked
	CPacked
	BuiltIn
	NoPerspective
	Flat
	Patch
	Centroid
	Sample
	Invariant
	Restrict
	Aliased
	Volatile
	Constant
	Coherent
	NonWritable
	NonReadable
	Uniform
	SaturatedConversion
	Stream
	Location
	Component
	Index
	Binding
	DescriptorSet
	Offset
	XfbBuffer
	XfbStride
	FuncParamAttr
	FPRoundingMode
	FPFastMathMode
	LinkageAttributes
	NoContraction
	InputAttachmentIndex
	Alignment
	OverrideCoverageNV
	PassthroughNV
	ViewportRelativeNV
	SecondaryViewportRelativeNV

	decorationCount
)

var decorations = [decorationCount]spirv.Decoration{
	RelaxedPrecision:            spirv.DecorationRelaxedPrecision,
	SpecID:                      spirv.DecorationSpecID,
	Block:                       spirv.DecorationBlock,
	BufferBlock:                 spirv.DecorationBufferBlock,
	RowMajor:                    spirv.DecorationRowMajor,
	ColMajor:                    spirv.DecorationColMajor,
	ArrayStride:                 spirv.DecorationArrayStride,
	MatrixStride:                spirv.DecorationMatrixStride,
	GLSLShared:                  spirv.DecorationGLSLShared,
	GLSLPacked:                  spirv.DecorationGLSLPacked,
	CPacked:                     spirv.DecorationCPacked,
	BuiltIn:                     spirv.DecorationBuiltIn,
	NoPerspective:               spirv.DecorationNoPerspective,
	Flat:                        spirv.DecorationFlat,
	Patch:                       spirv.DecorationPatch,
	Centroid:                    spirv.DecorationCentroid,
	Sample:                      spirv.DecorationSample,
	Invariant:                   spirv.DecorationInvariant,
	Restrict:                    spirv.DecorationRestrict,
	Aliased:                     spirv.DecorationAliased,
	Volatile:                    spirv.DecorationVolatile,
	Constant:                    spirv.DecorationConstant,
	Coherent:                    spirv.DecorationCoherent,
	NonWritable:                 spirv.DecorationNonWritable,
	NonReadable:                 spirv.DecorationNonReadable,
	Uniform:                     spirv.DecorationUniform,
	SaturatedConversion:         spirv.DecorationSaturatedConversion,
	Stream:                      spirv.DecorationStream,
	Location:                    spirv.DecorationLocation,
	Component:                   spirv.DecorationComponent,
	Index:                       spirv.DecorationIndex,
	Binding:                     spirv.DecorationBinding,
	DescriptorSet:               spirv.DecorationDescriptorSet,
	Offset:                      spirv.DecorationOffset,
	XfbBuffer:                   spirv.DecorationXfbBuffer,
	XfbStride:                   spirv.DecorationXfbStride,
	FuncParamAttr:               spirv.DecorationFuncParamAttr,
	FPRoundingMode:              spirv.DecorationFPRoundingMode,
	FPFastMathMode:              spirv.DecorationFPFastMathMode,
	LinkageAttributes:           spirv.DecorationLinkageAttributes,
	NoContraction:               spirv.DecorationNoContraction,
	InputAttachmentIndex:        spirv.DecorationInputAttachmentIndex,
	Alignment:                   spirv.DecorationAlignment,
	OverrideCoverageNV:          spirv.DecorationOverrideCoverageNV,
	PassthroughNV:               spirv.DecorationPassthroughNV,
	ViewportRelativeNV:          spirv.DecorationViewportRelativeNV,
	SecondaryViewportRelativeNV: spirv.DecorationSecondaryViewportRelativeNV,
}

func (d Decoration) String() string {
	if d < decorationCount {
		return decorations[d].String()
	}
	return fmt.Sprintf("Decoration(%d)", uint8(d))
}

func (d Decoration) raw() (uint32, bool) {
	if d >= decorationCount {
		return 0, false
	}
	return uint32(decorations[d]), true
}

// ParseDecoration looks up a decoration by its SPIR-V name, such as
// "Binding" or "DescriptorSet".
func ParseDecoration(name string) (Decoration, error) {
	for d := range decorationCount {
		if decorations[d].String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown decoration %q", name)
}

// MarshalText encodes d by its SPIR-V name.
func (d Decoration) MarshalText() ([]byte, error) {
	if d >= decorationCount {
		return nil, fmt.Errorf("unknown decoration %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a SPIR-V decoration name.
func (d *Decoration) UnmarshalText(text []byte) error {
	v, err := ParseDecoration(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
