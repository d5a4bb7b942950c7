package ir

import (
	"fmt"

	"github.com/gogpu/spvcross/spirv"
)

// Module is the id table of a loaded SPIR-V module.
//
// Everything a backend needs is reachable by id. Declaration order is kept
// for globals, functions and entry points so reflection and emission are
// deterministic.
type Module struct {
	Header          spirv.Header
	Capabilities    []spirv.Capability
	Extensions      []string
	ExtInstSets     map[uint32]string
	AddressingModel spirv.AddressingModel
	MemoryModel     spirv.MemoryModel

	EntryPoints    []EntryPoint
	ExecutionModes map[uint32][]ExecutionMode

	Types     map[uint32]*Type
	Constants map[uint32]*Constant
	Globals   []*Variable
	Functions []*Function

	// Decorations is the mutable decoration store.
	Decorations *DecorationStore

	names       map[uint32]string
	memberNames map[uint32]map[uint32]string
	globals     map[uint32]*Variable
	functions   map[uint32]*Function
	defined     map[uint32]spirv.OpCode
	resultTypes map[uint32]uint32

	// resourceKinds is the category of each resource variable, fixed when
	// the module is loaded.
	resourceKinds map[uint32]ResourceKind

	// instructions is the original stream, re-encoded by Encode.
	instructions []spirv.Instruction
}

// EntryPoint is an OpEntryPoint declaration.
type EntryPoint struct {
	Model    spirv.ExecutionModel
	Function uint32
	// Name holds the raw literal bytes; it is not guaranteed to be valid UTF-8.
	Name      string
	Interface []uint32
}

// ExecutionMode is an OpExecutionMode declaration.
type ExecutionMode struct {
	Mode     spirv.ExecutionMode
	Operands []uint32
}

// TypeKind identifies the shape of a type.
type TypeKind uint8

// Type kinds, one per OpType instruction the loader accepts.
const (
	TypeVoid TypeKind = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeVector
	TypeMatrix
	TypeImage
	TypeSampler
	TypeSampledImage
	TypeArray
	TypeRuntimeArray
	TypeStruct
	TypePointer
	TypeFunction
	TypeOpaque
)

var typeKindNames = [...]string{
	TypeVoid: "void", TypeBool: "bool", TypeInt: "int", TypeFloat: "float",
	TypeVector: "vector", TypeMatrix: "matrix", TypeImage: "image", TypeSampler: "sampler",
	TypeSampledImage: "sampled image", TypeArray: "array", TypeRuntimeArray: "runtime array",
	TypeStruct: "struct", TypePointer: "pointer", TypeFunction: "function", TypeOpaque: "opaque",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", uint8(k))
}

// Type is a decoded OpType* instruction.
type Type struct {
	ID   uint32
	Kind TypeKind

	// Width and Signed describe TypeInt and TypeFloat.
	Width  uint32
	Signed bool

	// Elem is the component type of a vector, the column type of a matrix,
	// the element type of an array, the pointee of a pointer, the sampled
	// type of an image or the image type of a sampled image.
	Elem uint32

	// Count is the component count of a vector or the column count of a matrix.
	Count uint32

	// Length is the id of the constant holding an array's length.
	Length uint32

	// Members holds struct member types or function parameter types.
	Members []uint32

	// Return is the return type of a function type.
	Return uint32

	// StorageClass is the storage class of a pointer type.
	StorageClass spirv.StorageClass

	// Image describes TypeImage.
	Image ImageInfo
}

// ImageInfo carries the operands of OpTypeImage.
type ImageInfo struct {
	Dim          spirv.Dim
	Depth        uint32
	Arrayed      bool
	Multisampled bool
	// Sampled is 1 for sampled images, 2 for storage images and 0 when unknown.
	Sampled uint32
	Format  spirv.ImageFormat
}

// ConstantKind identifies the shape of a constant.
type ConstantKind uint8

const (
	ConstScalar ConstantKind = iota
	ConstBool
	ConstComposite
	ConstNull
	ConstUndef
	ConstSpecOp
)

// Constant is a decoded OpConstant*, OpSpecConstant* or module-scope OpUndef.
type Constant struct {
	ID   uint32
	Type uint32
	Kind ConstantKind
	Spec bool

	// Value holds the literal words of a scalar constant.
	Value []uint32
	// Bool is the value of a boolean constant.
	Bool bool
	// Components are the constituent ids of a composite constant.
	Components []uint32
}

// Uint32 returns the low literal word of a scalar constant.
func (c *Constant) Uint32() uint32 {
	if len(c.Value) == 0 {
		return 0
	}
	return c.Value[0]
}

// Variable is an OpVariable.
type Variable struct {
	ID           uint32
	Type         uint32 // pointer type
	StorageClass spirv.StorageClass
	Initializer  uint32
}

// Function is an OpFunction with its parameters, locals and blocks.
type Function struct {
	ID           uint32
	ResultType   uint32
	FunctionType uint32
	Control      spirv.FunctionControl
	Params       []Param
	Locals       []*Variable
	Blocks       []*BasicBlock

	blocks map[uint32]*BasicBlock
}

// Param is an OpFunctionParameter.
type Param struct {
	ID   uint32
	Type uint32
}

// Block returns the block with the given label.
func (f *Function) Block(label uint32) *BasicBlock {
	return f.blocks[label]
}

// MergeKind tells which merge instruction a header block carries.
type MergeKind uint8

const (
	MergeNone MergeKind = iota
	MergeSelection
	MergeLoop
)

// BasicBlock is a SPIR-V block: a label, its instructions and a terminator.
type BasicBlock struct {
	Label        uint32
	Instructions []spirv.Instruction
	MergeKind    MergeKind
	Merge        uint32
	Continue     uint32
	Terminator   spirv.Instruction
}

// IsDefined reports whether some instruction in the module produces id.
func (m *Module) IsDefined(id uint32) bool {
	_, ok := m.defined[id]
	return ok
}

// Opcode returns the opcode of the instruction that defines id.
func (m *Module) Opcode(id uint32) spirv.OpCode {
	return m.defined[id]
}

// Type returns the type with the given id, or nil.
func (m *Module) Type(id uint32) *Type {
	return m.Types[id]
}

// Constant returns the constant with the given id, or nil.
func (m *Module) Constant(id uint32) *Constant {
	return m.Constants[id]
}

// Global returns the module-scope variable with the given id, or nil.
func (m *Module) Global(id uint32) *Variable {
	return m.globals[id]
}

// Function returns the function with the given id, or nil.
func (m *Module) Function(id uint32) *Function {
	return m.functions[id]
}

// ResultType returns the result type of the instruction defining id.
func (m *Module) ResultType(id uint32) uint32 {
	return m.resultTypes[id]
}

// Name returns the OpName of id, if any.
func (m *Module) Name(id uint32) (string, bool) {
	name, ok := m.names[id]
	return name, ok
}

// SetName replaces the debug name of id.
func (m *Module) SetName(id uint32, name string) {
	m.names[id] = name
}

// MemberName returns the OpMemberName of a struct member, if any.
func (m *Module) MemberName(id, member uint32) (string, bool) {
	name, ok := m.memberNames[id][member]
	return name, ok
}

// SetMemberName replaces the debug name of a struct member.
func (m *Module) SetMemberName(id, member uint32, name string) {
	if m.memberNames[id] == nil {
		m.memberNames[id] = make(map[uint32]string)
	}
	m.memberNames[id][member] = name
}

// ExecutionModeOperands returns the operands of the given mode on fn.
func (m *Module) ExecutionModeOperands(fn uint32, mode spirv.ExecutionMode) ([]uint32, bool) {
	for _, em := range m.ExecutionModes[fn] {
		if em.Mode == mode {
			return em.Operands, true
		}
	}
	return nil, false
}

// FindEntryPoint returns the entry point with the given name and model.
func (m *Module) FindEntryPoint(name string, model spirv.ExecutionModel) (*EntryPoint, bool) {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Name == name && m.EntryPoints[i].Model == model {
			return &m.EntryPoints[i], true
		}
	}
	return nil, false
}
