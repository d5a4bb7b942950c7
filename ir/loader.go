package ir

import (
	"github.com/gogpu/spvcross/spirv"
)

// loader builds a Module from an instruction stream.
type loader struct {
	m *Module

	fn    *Function
	block *BasicBlock

	groups       map[uint32][]decorationEntry
	groupTargets []spirv.Instruction
}

// Load builds the id table of a parsed module.
func Load(src *spirv.Module) (*Module, error) {
	m := &Module{
		Header:         src.Header,
		ExtInstSets:    make(map[uint32]string),
		ExecutionModes: make(map[uint32][]ExecutionMode),
		Types:          make(map[uint32]*Type),
		Constants:      make(map[uint32]*Constant),
		Decorations:    NewDecorationStore(),
		names:          make(map[uint32]string),
		memberNames:    make(map[uint32]map[uint32]string),
		globals:        make(map[uint32]*Variable),
		functions:      make(map[uint32]*Function),
		defined:        make(map[uint32]spirv.OpCode),
		resultTypes:    make(map[uint32]uint32),
		instructions:   src.Instructions,
	}
	l := &loader{m: m, groups: make(map[uint32][]decorationEntry)}

	for _, inst := range src.Instructions {
		if err := l.define(inst); err != nil {
			return nil, err
		}
		if err := l.instruction(inst); err != nil {
			err.Message = inst.Opcode.String() + ": " + err.Message
			return nil, err
		}
	}
	if l.fn != nil {
		return nil, NewError(ErrInvalidModule, "function %%%d has no OpFunctionEnd", l.fn.ID)
	}
	if err := l.flattenGroups(); err != nil {
		return nil, err
	}
	for _, ep := range m.EntryPoints {
		if m.functions[ep.Function] == nil {
			return nil, errorAt(ErrInvalidModule, ep.Function, "entry point %q names no function", ep.Name)
		}
	}
	m.resourceKinds = make(map[uint32]ResourceKind)
	for _, v := range m.Globals {
		if kind, ok := m.ClassifyResource(v); ok {
			m.resourceKinds[v.ID] = kind
		}
	}
	return m, nil
}

func (l *loader) define(inst spirv.Instruction) error {
	resultType, result := inst.ResultIDs()
	hasType, hasResult := inst.Opcode.ResultShape()
	if !hasResult {
		return nil
	}
	if result == 0 {
		return NewError(ErrInvalidModule, "%s is missing its result id", inst.Opcode)
	}
	if l.m.Header.Bound != 0 && result >= l.m.Header.Bound {
		return errorAt(ErrInvalidModule, result, "id exceeds bound %d", l.m.Header.Bound)
	}
	if _, dup := l.m.defined[result]; dup {
		return errorAt(ErrInvalidModule, result, "id defined twice")
	}
	l.m.defined[result] = inst.Opcode
	if hasType {
		l.m.resultTypes[result] = resultType
	}
	return nil
}

//nolint:gocyclo,cyclop,funlen // one case per module-level opcode
func (l *loader) instruction(inst spirv.Instruction) *Error {
	m := l.m
	op := inst.Opcode
	if len(inst.Words) < minOperands(op) {
		return NewError(ErrInvalidModule, "expected at least %d operands, got %d", minOperands(op), len(inst.Words))
	}

	switch op {
	case spirv.OpNop, spirv.OpLine, spirv.OpNoLine, spirv.OpSource, spirv.OpSourceContinued,
		spirv.OpSourceExtension, spirv.OpModuleProcessed, spirv.OpString:
		return nil

	case spirv.OpCapability:
		m.Capabilities = append(m.Capabilities, spirv.Capability(inst.Words[0]))
	case spirv.OpExtension:
		name, _ := inst.LiteralString(0)
		m.Extensions = append(m.Extensions, name)
	case spirv.OpExtInstImport:
		name, _ := inst.LiteralString(1)
		m.ExtInstSets[inst.Words[0]] = name
	case spirv.OpMemoryModel:
		m.AddressingModel = spirv.AddressingModel(inst.Words[0])
		m.MemoryModel = spirv.MemoryModel(inst.Words[1])

	case spirv.OpEntryPoint:
		name, next := inst.LiteralString(2)
		ep := EntryPoint{
			Model:    spirv.ExecutionModel(inst.Words[0]),
			Function: inst.Words[1],
			Name:     name,
		}
		if next < len(inst.Words) {
			ep.Interface = append([]uint32(nil), inst.Words[next:]...)
		}
		m.EntryPoints = append(m.EntryPoints, ep)

	case spirv.OpExecutionMode, spirv.OpExecutionModeID:
		fn := inst.Words[0]
		m.ExecutionModes[fn] = append(m.ExecutionModes[fn], ExecutionMode{
			Mode:     spirv.ExecutionMode(inst.Words[1]),
			Operands: append([]uint32(nil), inst.Words[2:]...),
		})

	case spirv.OpName:
		name, _ := inst.LiteralString(1)
		m.names[inst.Words[0]] = name
	case spirv.OpMemberName:
		name, _ := inst.LiteralString(2)
		m.SetMemberName(inst.Words[0], inst.Words[1], name)

	case spirv.OpDecorate:
		m.Decorations.add(inst.Words[0], noMember, decorationEntry{
			dec:      spirv.Decoration(inst.Words[1]),
			operands: inst.Words[2:],
		})
	case spirv.OpMemberDecorate:
		m.Decorations.add(inst.Words[0], int64(inst.Words[1]), decorationEntry{
			dec:      spirv.Decoration(inst.Words[2]),
			operands: inst.Words[3:],
		})
	case spirv.OpDecorateID, spirv.OpDecorateString, spirv.OpMemberDecorateString:
		// Id and string operands are not literals; Encode keeps these verbatim.
		return nil
	case spirv.OpDecorationGroup:
		l.groups[inst.Words[0]] = nil
	case spirv.OpGroupDecorate, spirv.OpGroupMemberDecorate:
		l.groupTargets = append(l.groupTargets, inst)

	case spirv.OpTypeVoid, spirv.OpTypeBool, spirv.OpTypeInt, spirv.OpTypeFloat,
		spirv.OpTypeVector, spirv.OpTypeMatrix, spirv.OpTypeImage, spirv.OpTypeSampler,
		spirv.OpTypeSampledImage, spirv.OpTypeArray, spirv.OpTypeRuntimeArray,
		spirv.OpTypeStruct, spirv.OpTypePointer, spirv.OpTypeFunction, spirv.OpTypeOpaque:
		t, err := decodeType(inst)
		if err != nil {
			return err
		}
		if err := checkType(m, t); err != nil {
			return err
		}
		m.Types[t.ID] = t

	case spirv.OpConstant, spirv.OpSpecConstant:
		m.Constants[inst.Words[1]] = &Constant{
			ID: inst.Words[1], Type: inst.Words[0], Kind: ConstScalar,
			Spec: op == spirv.OpSpecConstant, Value: append([]uint32(nil), inst.Words[2:]...),
		}
	case spirv.OpConstantTrue, spirv.OpConstantFalse, spirv.OpSpecConstantTrue, spirv.OpSpecConstantFalse:
		m.Constants[inst.Words[1]] = &Constant{
			ID: inst.Words[1], Type: inst.Words[0], Kind: ConstBool,
			Spec: op == spirv.OpSpecConstantTrue || op == spirv.OpSpecConstantFalse,
			Bool: op == spirv.OpConstantTrue || op == spirv.OpSpecConstantTrue,
		}
	case spirv.OpConstantComposite, spirv.OpSpecConstantComposite:
		m.Constants[inst.Words[1]] = &Constant{
			ID: inst.Words[1], Type: inst.Words[0], Kind: ConstComposite,
			Spec: op == spirv.OpSpecConstantComposite, Components: append([]uint32(nil), inst.Words[2:]...),
		}
	case spirv.OpConstantNull:
		m.Constants[inst.Words[1]] = &Constant{ID: inst.Words[1], Type: inst.Words[0], Kind: ConstNull}
	case spirv.OpSpecConstantOp:
		m.Constants[inst.Words[1]] = &Constant{
			ID: inst.Words[1], Type: inst.Words[0], Kind: ConstSpecOp, Spec: true,
			Value: append([]uint32(nil), inst.Words[2:]...),
		}

	case spirv.OpUndef:
		if l.block == nil {
			m.Constants[inst.Words[1]] = &Constant{ID: inst.Words[1], Type: inst.Words[0], Kind: ConstUndef}
			return nil
		}
		l.block.Instructions = append(l.block.Instructions, inst)

	case spirv.OpVariable:
		v := &Variable{ID: inst.Words[1], Type: inst.Words[0], StorageClass: spirv.StorageClass(inst.Words[2])}
		if len(inst.Words) > 3 {
			v.Initializer = inst.Words[3]
		}
		if l.fn == nil {
			m.Globals = append(m.Globals, v)
			m.globals[v.ID] = v
			return nil
		}
		if l.block == nil {
			return errorAt(ErrInvalidModule, v.ID, "local variable outside a block")
		}
		l.fn.Locals = append(l.fn.Locals, v)

	case spirv.OpFunction:
		if l.fn != nil {
			return errorAt(ErrInvalidModule, inst.Words[1], "nested function")
		}
		l.fn = &Function{
			ID:           inst.Words[1],
			ResultType:   inst.Words[0],
			Control:      spirv.FunctionControl(inst.Words[2]),
			FunctionType: inst.Words[3],
			blocks:       make(map[uint32]*BasicBlock),
		}
	case spirv.OpFunctionParameter:
		if l.fn == nil || l.block != nil {
			return errorAt(ErrInvalidModule, inst.Words[1], "parameter outside a function header")
		}
		l.fn.Params = append(l.fn.Params, Param{ID: inst.Words[1], Type: inst.Words[0]})
	case spirv.OpFunctionEnd:
		if l.fn == nil {
			return NewError(ErrInvalidModule, "no function to end")
		}
		if l.block != nil {
			return errorAt(ErrInvalidModule, l.block.Label, "block has no terminator")
		}
		m.Functions = append(m.Functions, l.fn)
		m.functions[l.fn.ID] = l.fn
		l.fn = nil

	case spirv.OpLabel:
		if l.fn == nil {
			return errorAt(ErrInvalidModule, inst.Words[0], "label outside a function")
		}
		if l.block != nil {
			return errorAt(ErrInvalidModule, l.block.Label, "block has no terminator")
		}
		l.block = &BasicBlock{Label: inst.Words[0]}
		l.fn.Blocks = append(l.fn.Blocks, l.block)
		l.fn.blocks[l.block.Label] = l.block

	case spirv.OpSelectionMerge:
		if err := l.requireBlock(); err != nil {
			return err
		}
		l.block.MergeKind = MergeSelection
		l.block.Merge = inst.Words[0]
	case spirv.OpLoopMerge:
		if err := l.requireBlock(); err != nil {
			return err
		}
		l.block.MergeKind = MergeLoop
		l.block.Merge = inst.Words[0]
		l.block.Continue = inst.Words[1]

	case spirv.OpBranch, spirv.OpBranchConditional, spirv.OpSwitch, spirv.OpReturn,
		spirv.OpReturnValue, spirv.OpKill, spirv.OpUnreachable:
		if err := l.requireBlock(); err != nil {
			return err
		}
		l.block.Terminator = inst
		l.block = nil

	default:
		if l.fn == nil {
			return NewError(ErrUnsupportedFeature, "unexpected at module scope")
		}
		if err := l.requireBlock(); err != nil {
			return err
		}
		l.block.Instructions = append(l.block.Instructions, inst)
	}
	return nil
}

func (l *loader) requireBlock() *Error {
	if l.block == nil {
		return NewError(ErrInvalidModule, "instruction outside a block")
	}
	return nil
}

// checkType rejects numeric types no emitter can lay out: scalar widths
// other than 8, 16, 32 and 64, and vectors or matrices that are not made
// of 2 to 4 components of the right kind.
func checkType(m *Module, t *Type) *Error {
	switch t.Kind {
	case TypeInt, TypeFloat:
		switch t.Width {
		case 8, 16, 32, 64:
			return nil
		}
		return errorAt(ErrInvalidModule, t.ID, "%s width %d", t.Kind, t.Width)
	case TypeVector, TypeMatrix:
		if t.Count < 2 || t.Count > 4 {
			return errorAt(ErrInvalidModule, t.ID, "%s has %d components", t.Kind, t.Count)
		}
		elem := m.Types[t.Elem]
		if elem == nil {
			return errorAt(ErrInvalidModule, t.ID, "%s component type %%%d is not a type", t.Kind, t.Elem)
		}
		if t.Kind == TypeMatrix {
			if elem.Kind != TypeVector {
				return errorAt(ErrInvalidModule, t.ID, "matrix column type is %s", elem.Kind)
			}
			return nil
		}
		switch elem.Kind {
		case TypeBool, TypeInt, TypeFloat:
			return nil
		}
		return errorAt(ErrInvalidModule, t.ID, "vector component type is %s", elem.Kind)
	}
	return nil
}

func decodeType(inst spirv.Instruction) (*Type, *Error) {
	w := inst.Words
	t := &Type{ID: w[0]}
	switch inst.Opcode {
	case spirv.OpTypeVoid:
		t.Kind = TypeVoid
	case spirv.OpTypeBool:
		t.Kind = TypeBool
	case spirv.OpTypeInt:
		t.Kind = TypeInt
		t.Width = w[1]
		t.Signed = w[2] != 0
	case spirv.OpTypeFloat:
		t.Kind = TypeFloat
		t.Width = w[1]
	case spirv.OpTypeVector:
		t.Kind = TypeVector
		t.Elem, t.Count = w[1], w[2]
	case spirv.OpTypeMatrix:
		t.Kind = TypeMatrix
		t.Elem, t.Count = w[1], w[2]
	case spirv.OpTypeImage:
		t.Kind = TypeImage
		t.Elem = w[1]
		t.Image = ImageInfo{
			Dim:          spirv.Dim(w[2]),
			Depth:        w[3],
			Arrayed:      w[4] != 0,
			Multisampled: w[5] != 0,
			Sampled:      w[6],
			Format:       spirv.ImageFormat(w[7]),
		}
	case spirv.OpTypeSampler:
		t.Kind = TypeSampler
	case spirv.OpTypeSampledImage:
		t.Kind = TypeSampledImage
		t.Elem = w[1]
	case spirv.OpTypeArray:
		t.Kind = TypeArray
		t.Elem, t.Length = w[1], w[2]
	case spirv.OpTypeRuntimeArray:
		t.Kind = TypeRuntimeArray
		t.Elem = w[1]
	case spirv.OpTypeStruct:
		t.Kind = TypeStruct
		t.Members = append([]uint32(nil), w[1:]...)
	case spirv.OpTypePointer:
		t.Kind = TypePointer
		t.StorageClass = spirv.StorageClass(w[1])
		t.Elem = w[2]
	case spirv.OpTypeFunction:
		t.Kind = TypeFunction
		t.Return = w[1]
		t.Members = append([]uint32(nil), w[2:]...)
	case spirv.OpTypeOpaque:
		t.Kind = TypeOpaque
	default:
		return nil, errorAt(ErrUnsupportedFeature, w[0], "type %s", inst.Opcode)
	}
	return t, nil
}

// minOperands is the operand count below which an instruction is malformed.
func minOperands(op spirv.OpCode) int {
	switch op {
	case spirv.OpCapability, spirv.OpExtInstImport, spirv.OpLabel, spirv.OpBranch,
		spirv.OpTypeVoid, spirv.OpTypeBool, spirv.OpTypeSampler, spirv.OpDecorationGroup,
		spirv.OpSelectionMerge, spirv.OpTypeOpaque:
		return 1
	case spirv.OpMemoryModel, spirv.OpName, spirv.OpDecorate,
		spirv.OpExecutionMode, spirv.OpExecutionModeID, spirv.OpTypeFloat, spirv.OpTypeSampledImage,
		spirv.OpTypeRuntimeArray, spirv.OpConstantTrue, spirv.OpConstantFalse,
		spirv.OpSpecConstantTrue, spirv.OpSpecConstantFalse, spirv.OpConstantNull,
		spirv.OpUndef, spirv.OpFunctionParameter, spirv.OpTypeFunction, spirv.OpSwitch:
		return 2
	case spirv.OpEntryPoint, spirv.OpMemberName, spirv.OpMemberDecorate, spirv.OpTypeInt,
		spirv.OpTypeVector, spirv.OpTypeMatrix, spirv.OpTypeArray, spirv.OpTypePointer,
		spirv.OpConstant, spirv.OpSpecConstant, spirv.OpVariable, spirv.OpBranchConditional,
		spirv.OpLoopMerge:
		return 3
	case spirv.OpFunction:
		return 4
	case spirv.OpTypeImage:
		return 8
	}
	return 0
}

// flattenGroups copies decoration group contents onto their targets. Group
// decorations precede OpDecorationGroup, so they are moved out of the store
// only once the whole stream is read.
func (l *loader) flattenGroups() error {
	for group := range l.groups {
		l.groups[group] = l.m.Decorations.take(group)
	}
	for _, inst := range l.groupTargets {
		group := inst.Words[0]
		entries, ok := l.groups[group]
		if !ok {
			return errorAt(ErrInvalidModule, group, "not a decoration group")
		}
		if inst.Opcode == spirv.OpGroupDecorate {
			for _, target := range inst.Words[1:] {
				for _, e := range entries {
					l.m.Decorations.add(target, noMember, e)
				}
			}
			continue
		}
		for i := 1; i+1 < len(inst.Words); i += 2 {
			for _, e := range entries {
				l.m.Decorations.add(inst.Words[i], int64(inst.Words[i+1]), e)
			}
		}
	}
	return nil
}
