package ir

// IsOpaque reports whether values of the type are handles: images, samplers,
// sampled images and pointers. Opaque values are never copied into temporaries.
func (m *Module) IsOpaque(id uint32) bool {
	t := m.Types[id]
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeImage, TypeSampler, TypeSampledImage, TypePointer:
		return true
	}
	return false
}

// Pointee returns the pointee of a pointer type, or id itself.
func (m *Module) Pointee(id uint32) uint32 {
	if t := m.Types[id]; t != nil && t.Kind == TypePointer {
		return t.Elem
	}
	return id
}

// Scalar returns the scalar type of a scalar, vector or matrix type.
func (m *Module) Scalar(id uint32) *Type {
	t := m.Types[id]
	for t != nil {
		switch t.Kind {
		case TypeVector:
			t = m.Types[t.Elem]
		case TypeMatrix:
			t = m.Types[t.Elem]
		default:
			return t
		}
	}
	return nil
}

// IsComposite reports whether the type is an array or struct.
func (m *Module) IsComposite(id uint32) bool {
	t := m.Types[id]
	return t != nil && (t.Kind == TypeArray || t.Kind == TypeRuntimeArray || t.Kind == TypeStruct)
}

// ComponentType returns the type reached by indexing into id with index.
// The index is only consulted for structs.
func (m *Module) ComponentType(id, index uint32) (uint32, bool) {
	t := m.Types[id]
	if t == nil {
		return 0, false
	}
	switch t.Kind {
	case TypeVector, TypeMatrix, TypeArray, TypeRuntimeArray:
		return t.Elem, true
	case TypeStruct:
		if int(index) < len(t.Members) {
			return t.Members[index], true
		}
	}
	return 0, false
}

// ArrayLength returns the literal length of an array type.
func (m *Module) ArrayLength(id uint32) (uint32, bool) {
	t := m.Types[id]
	if t == nil || t.Kind != TypeArray {
		return 0, false
	}
	c := m.Constants[t.Length]
	if c == nil || c.Kind != ConstScalar {
		return 0, false
	}
	return c.Uint32(), true
}
