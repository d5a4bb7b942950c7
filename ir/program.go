package ir

import (
	"github.com/gogpu/spvcross/spirv"
)

// EntryPointSelector picks an entry point by name and execution model.
type EntryPointSelector struct {
	Name  string
	Model spirv.ExecutionModel
}

// SelectEntryPoint returns the entry point matching sel, or the first entry
// point when sel is nil.
func (m *Module) SelectEntryPoint(sel *EntryPointSelector) (*EntryPoint, error) {
	if sel == nil {
		if len(m.EntryPoints) == 0 {
			return nil, NewError(ErrInvalidModule, "module has no entry points")
		}
		return &m.EntryPoints[0], nil
	}
	ep, ok := m.FindEntryPoint(sel.Name, sel.Model)
	if !ok {
		return nil, NewError(ErrInvalidID, "no entry point %q for %s", sel.Name, sel.Model)
	}
	return ep, nil
}

// Program is an entry point together with every function it reaches,
// lowered, and the globals a backend has to declare for it.
type Program struct {
	EntryPoint *EntryPoint

	// Functions are in call order: callees first, the entry function last.
	Functions []*FunctionBody

	// Globals are the resources and module-scope variables of the module,
	// plus the stage I/O listed in the entry point interface, in
	// declaration order.
	Globals []*Variable
}

// Entry returns the lowered entry function.
func (p *Program) Entry() *FunctionBody {
	return p.Functions[len(p.Functions)-1]
}

// LowerEntryPoint lowers every function reachable from the selected entry point.
func (m *Module) LowerEntryPoint(sel *EntryPointSelector) (*Program, error) {
	ep, err := m.SelectEntryPoint(sel)
	if err != nil {
		return nil, err
	}
	order, err := m.CallOrder(ep.Function)
	if err != nil {
		return nil, err
	}
	p := &Program{EntryPoint: ep}
	for _, fn := range order {
		body, err := m.Lower(fn)
		if err != nil {
			return nil, err
		}
		p.Functions = append(p.Functions, body)
	}

	inInterface := make(map[uint32]bool, len(ep.Interface))
	for _, id := range ep.Interface {
		inInterface[id] = true
	}
	for _, v := range m.Globals {
		switch v.StorageClass {
		case spirv.StorageClassInput, spirv.StorageClassOutput:
			if !inInterface[v.ID] {
				continue
			}
		}
		p.Globals = append(p.Globals, v)
	}
	return p, nil
}

// Structs returns the struct types the program uses, each after the
// structs it contains.
func (m *Module) Structs(p *Program) []uint32 {
	seen := make(map[uint32]bool)
	var out []uint32
	var visit func(id uint32)
	visit = func(id uint32) {
		t := m.Types[id]
		if t == nil || seen[id] {
			return
		}
		seen[id] = true
		switch t.Kind {
		case TypeStruct:
			for _, member := range t.Members {
				visit(member)
			}
			out = append(out, id)
		case TypeFunction:
			visit(t.Return)
			for _, param := range t.Members {
				visit(param)
			}
		case TypeVector, TypeMatrix, TypeArray, TypeRuntimeArray, TypePointer:
			visit(t.Elem)
		}
	}
	for _, v := range p.Globals {
		visit(v.Type)
	}
	for _, fn := range p.Functions {
		visit(fn.Function.FunctionType)
		for _, l := range fn.Locals {
			visit(l.Type)
		}
		for _, e := range fn.Expressions {
			visit(e.Type)
		}
	}
	return out
}

// BuiltIn returns the BuiltIn decoration of a variable.
func (m *Module) BuiltIn(id uint32) (spirv.BuiltIn, bool) {
	v, ok := m.Decorations.Decoration(id, spirv.DecorationBuiltIn)
	return spirv.BuiltIn(v), ok
}

// MemberBuiltIn returns the BuiltIn decoration of a struct member.
func (m *Module) MemberBuiltIn(structID, member uint32) (spirv.BuiltIn, bool) {
	v, ok := m.Decorations.MemberDecoration(structID, member, spirv.DecorationBuiltIn)
	return spirv.BuiltIn(v), ok
}

// IsBuiltinBlock reports whether a struct type has BuiltIn members.
func (m *Module) IsBuiltinBlock(structID uint32) bool {
	t := m.Types[structID]
	if t == nil || t.Kind != TypeStruct {
		return false
	}
	for i := range t.Members {
		if m.Decorations.HasMember(structID, uint32(i), spirv.DecorationBuiltIn) {
			return true
		}
	}
	return false
}

// IsBlock reports whether a struct is the type of a buffer block.
func (m *Module) IsBlock(structID uint32) bool {
	return m.Decorations.Has(structID, spirv.DecorationBlock) ||
		m.Decorations.Has(structID, spirv.DecorationBufferBlock)
}

// IsStorageBuffer reports whether v is a storage buffer in either encoding.
func (m *Module) IsStorageBuffer(v *Variable) bool {
	if v.StorageClass == spirv.StorageClassStorageBuffer {
		return true
	}
	return v.StorageClass == spirv.StorageClassUniform &&
		m.Decorations.Has(m.BaseType(v.Type), spirv.DecorationBufferBlock)
}

// IsReadOnlyBuffer reports whether a buffer variable is never written:
// the variable or every member of its block is NonWritable.
func (m *Module) IsReadOnlyBuffer(v *Variable) bool {
	if m.Decorations.Has(v.ID, spirv.DecorationNonWritable) {
		return true
	}
	t := m.Types[m.BaseType(v.Type)]
	if t == nil || t.Kind != TypeStruct || len(t.Members) == 0 {
		return false
	}
	for i := range t.Members {
		if !m.Decorations.HasMember(t.ID, uint32(i), spirv.DecorationNonWritable) {
			return false
		}
	}
	return true
}

// GlobalRoot follows access chains back to the global variable they start
// from, if any.
func (b *FunctionBody) GlobalRoot(h ExpressionHandle) (uint32, bool) {
	for {
		switch k := b.Expressions[h].Kind.(type) {
		case ExprGlobalVariable:
			return k.Variable, true
		case ExprAccess:
			h = k.Base
		case ExprAccessIndex:
			h = k.Base
		default:
			return 0, false
		}
	}
}
