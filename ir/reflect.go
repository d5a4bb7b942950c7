package ir

import (
	"github.com/gogpu/spvcross/spirv"
)

// ReflectedEntryPoint is an entry point as reported by reflection.
type ReflectedEntryPoint struct {
	Name  string
	Model spirv.ExecutionModel
	// WorkGroupSize is zero-filled unless the entry point declares a local size.
	WorkGroupSize [3]uint32
}

// ReflectEntryPoints returns every entry point in declaration order.
func (m *Module) ReflectEntryPoints() []ReflectedEntryPoint {
	out := make([]ReflectedEntryPoint, 0, len(m.EntryPoints))
	for _, ep := range m.EntryPoints {
		out = append(out, ReflectedEntryPoint{
			Name:          ep.Name,
			Model:         ep.Model,
			WorkGroupSize: m.WorkGroupSize(ep.Function),
		})
	}
	return out
}

// WorkGroupSize returns the local size declared for fn, from LocalSize or,
// failing that, from the constants named by LocalSizeId.
func (m *Module) WorkGroupSize(fn uint32) [3]uint32 {
	var size [3]uint32
	if ops, ok := m.ExecutionModeOperands(fn, spirv.ExecutionModeLocalSize); ok {
		copy(size[:], ops)
		return size
	}
	if ops, ok := m.ExecutionModeOperands(fn, spirv.ExecutionModeLocalSizeID); ok {
		for i := 0; i < len(ops) && i < 3; i++ {
			if c := m.Constants[ops[i]]; c != nil {
				size[i] = c.Uint32()
			}
		}
	}
	return size
}

// Resource is a reflected resource variable.
type Resource struct {
	ID uint32
	// TypeID is the variable's pointer type.
	TypeID uint32
	// BaseTypeID is the pointee with pointers and arrays stripped.
	BaseTypeID uint32
	Name       string
}

// ResourceKind names one of the resource categories.
type ResourceKind uint8

// Resource categories in reflection order.
const (
	ResourceUniformBuffer ResourceKind = iota
	ResourceStorageBuffer
	ResourceStageInput
	ResourceStageOutput
	ResourceSubpassInput
	ResourceStorageImage
	ResourceSampledImage
	ResourceAtomicCounter
	ResourcePushConstantBuffer
	ResourceSeparateImage
	ResourceSeparateSampler

	// ResourceKindCount is the number of resource categories.
	ResourceKindCount
)

var resourceKindNames = [ResourceKindCount]string{
	"UniformBuffer", "StorageBuffer", "StageInput", "StageOutput", "SubpassInput",
	"StorageImage", "SampledImage", "AtomicCounter", "PushConstantBuffer",
	"SeparateImage", "SeparateSampler",
}

func (k ResourceKind) String() string {
	if k < ResourceKindCount {
		return resourceKindNames[k]
	}
	return "Unknown"
}

// ShaderResources partitions resource variables by category.
type ShaderResources struct {
	UniformBuffers      []Resource
	StorageBuffers      []Resource
	StageInputs         []Resource
	StageOutputs        []Resource
	SubpassInputs       []Resource
	StorageImages       []Resource
	SampledImages       []Resource
	AtomicCounters      []Resource
	PushConstantBuffers []Resource
	SeparateImages      []Resource
	SeparateSamplers    []Resource
}

// ReflectShaderResources collects every category in declaration order.
func (m *Module) ReflectShaderResources() ShaderResources {
	return ShaderResources{
		UniformBuffers:      m.Resources(ResourceUniformBuffer),
		StorageBuffers:      m.Resources(ResourceStorageBuffer),
		StageInputs:         m.Resources(ResourceStageInput),
		StageOutputs:        m.Resources(ResourceStageOutput),
		SubpassInputs:       m.Resources(ResourceSubpassInput),
		StorageImages:       m.Resources(ResourceStorageImage),
		SampledImages:       m.Resources(ResourceSampledImage),
		AtomicCounters:      m.Resources(ResourceAtomicCounter),
		PushConstantBuffers: m.Resources(ResourcePushConstantBuffer),
		SeparateImages:      m.Resources(ResourceSeparateImage),
		SeparateSamplers:    m.Resources(ResourceSeparateSampler),
	}
}

// Resources returns the variables of one category in declaration order.
// Categories are decided when the module is loaded; later decoration
// changes do not move a variable between them.
func (m *Module) Resources(kind ResourceKind) []Resource {
	out := []Resource{}
	for _, v := range m.Globals {
		k, ok := m.resourceKinds[v.ID]
		if !ok || k != kind {
			continue
		}
		base := m.BaseType(v.Type)
		out = append(out, Resource{
			ID:         v.ID,
			TypeID:     v.Type,
			BaseTypeID: base,
			Name:       m.resourceName(v.ID, base),
		})
	}
	return out
}

func (m *Module) resourceName(id, base uint32) string {
	if name, ok := m.names[id]; ok && name != "" {
		return name
	}
	return m.names[base]
}

// ClassifyResource reports the category of a global variable under the
// current decorations. Variables that are not resources, and builtin stage
// I/O, report false.
func (m *Module) ClassifyResource(v *Variable) (ResourceKind, bool) {
	base := m.Types[m.BaseType(v.Type)]
	if base == nil {
		return 0, false
	}

	switch v.StorageClass {
	case spirv.StorageClassInput, spirv.StorageClassOutput:
		if m.IsBuiltinVariable(v) {
			return 0, false
		}
		if v.StorageClass == spirv.StorageClassInput {
			return ResourceStageInput, true
		}
		return ResourceStageOutput, true

	case spirv.StorageClassUniform:
		switch {
		case m.Decorations.Has(base.ID, spirv.DecorationBufferBlock):
			return ResourceStorageBuffer, true
		case m.Decorations.Has(base.ID, spirv.DecorationBlock):
			return ResourceUniformBuffer, true
		}
		return 0, false

	case spirv.StorageClassStorageBuffer:
		return ResourceStorageBuffer, true

	case spirv.StorageClassPushConstant:
		return ResourcePushConstantBuffer, true

	case spirv.StorageClassAtomicCounter:
		return ResourceAtomicCounter, true

	case spirv.StorageClassUniformConstant:
		switch base.Kind {
		case TypeImage:
			switch {
			case base.Image.Dim == spirv.DimSubpassData:
				return ResourceSubpassInput, true
			case base.Image.Sampled == 2:
				return ResourceStorageImage, true
			}
			return ResourceSeparateImage, true
		case TypeSampledImage:
			return ResourceSampledImage, true
		case TypeSampler:
			return ResourceSeparateSampler, true
		}
	}
	return 0, false
}

// IsBuiltinVariable reports whether v is builtin stage I/O: either the
// variable carries BuiltIn or its block type has BuiltIn members.
func (m *Module) IsBuiltinVariable(v *Variable) bool {
	if m.Decorations.Has(v.ID, spirv.DecorationBuiltIn) {
		return true
	}
	base := m.Types[m.BaseType(v.Type)]
	if base == nil || base.Kind != TypeStruct {
		return false
	}
	for i := range base.Members {
		if m.Decorations.HasMember(base.ID, uint32(i), spirv.DecorationBuiltIn) {
			return true
		}
	}
	return false
}

// BaseType strips pointer and array layers from a type.
func (m *Module) BaseType(id uint32) uint32 {
	for {
		t := m.Types[id]
		if t == nil {
			return id
		}
		switch t.Kind {
		case TypePointer, TypeArray, TypeRuntimeArray:
			id = t.Elem
		default:
			return id
		}
	}
}

// DeclaredStructSize returns the size in bytes of a struct as laid out by
// its Offset, ArrayStride and MatrixStride decorations: the offset of the
// last member plus that member's declared size.
func (m *Module) DeclaredStructSize(id uint32) (uint32, error) {
	t := m.Types[id]
	if t == nil {
		return 0, errorAt(ErrInvalidID, id, "not a type")
	}
	if t.Kind != TypeStruct {
		return 0, errorAt(ErrInvalidID, id, "not a struct type")
	}
	if len(t.Members) == 0 {
		return 0, errorAt(ErrInvalidModule, id, "struct has no members")
	}
	last := uint32(len(t.Members) - 1)
	offset, ok := m.Decorations.MemberDecoration(id, last, spirv.DecorationOffset)
	if !ok {
		return 0, errorAt(ErrInvalidModule, id, "member %d has no Offset", last)
	}
	size, err := m.declaredMemberSize(id, last)
	if err != nil {
		return 0, err
	}
	return offset + size, nil
}

func (m *Module) declaredMemberSize(structID, member uint32) (uint32, error) {
	memberType := m.Types[m.Types[structID].Members[member]]
	if memberType == nil {
		return 0, errorAt(ErrInvalidID, structID, "member %d has no type", member)
	}

	switch memberType.Kind {
	case TypeRuntimeArray:
		return 0, nil
	case TypeArray:
		stride, ok := m.Decorations.Decoration(memberType.ID, spirv.DecorationArrayStride)
		if !ok {
			return 0, errorAt(ErrInvalidModule, memberType.ID, "array has no ArrayStride")
		}
		length := m.Constants[memberType.Length]
		if length == nil || length.Kind != ConstScalar {
			return 0, errorAt(ErrUnsupportedFeature, memberType.ID, "array length is not a literal constant")
		}
		return stride * length.Uint32(), nil
	case TypeStruct:
		return m.DeclaredStructSize(memberType.ID)
	case TypeMatrix:
		column := m.Types[memberType.Elem]
		if stride, ok := m.Decorations.MemberDecoration(structID, member, spirv.DecorationMatrixStride); ok {
			if m.Decorations.HasMember(structID, member, spirv.DecorationRowMajor) {
				return stride * column.Count, nil
			}
			return stride * memberType.Count, nil
		}
		return m.scalarSize(column.Elem) * column.Count * memberType.Count, nil
	case TypeVector:
		return m.scalarSize(memberType.Elem) * memberType.Count, nil
	case TypeInt, TypeFloat, TypeBool:
		return m.scalarSize(memberType.ID), nil
	}
	return 0, errorAt(ErrUnsupportedFeature, memberType.ID, "type has no declared size")
}

func (m *Module) scalarSize(id uint32) uint32 {
	t := m.Types[id]
	if t == nil || t.Kind == TypeBool {
		return 4
	}
	return t.Width / 8
}
