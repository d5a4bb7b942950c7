// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Buffer Type Constants
// =============================================================================

// HLSL buffer type constants.
const (
	// Byte address buffer types (raw buffer access)
	hlslByteAddressBuffer   = "ByteAddressBuffer"
	hlslRWByteAddressBuffer = "RWByteAddressBuffer"

	// Constant buffer types
	hlslConstantBuffer = "ConstantBuffer"
	hlslCBuffer        = "cbuffer"
)

// defaultMatrixStride is the column stride of matrices without a
// MatrixStride decoration.
const defaultMatrixStride = 16

// =============================================================================
// Resource Declarations
// =============================================================================

// writeGlobalVariables writes resources and module-scope variables.
func (w *Writer) writeGlobalVariables() error {
	wrote := false
	for _, v := range w.program.Globals {
		ok, err := w.writeGlobalVariable(v)
		if err != nil {
			return err
		}
		wrote = wrote || ok
	}
	if wrote {
		w.writeLine("")
	}
	return nil
}

// writeGlobalVariable writes one global declaration. It reports false for
// variables declared elsewhere or not at all.
//
//nolint:gocyclo,cyclop // one case per storage class
func (w *Writer) writeGlobalVariable(v *ir.Variable) (bool, error) {
	name := w.names[v.ID]
	valueType := w.module.Pointee(v.Type)

	switch v.StorageClass {
	case spirv.StorageClassInput, spirv.StorageClassOutput:
		// Stage I/O is written with the entry point structs.
		return false, nil

	case spirv.StorageClassUniform, spirv.StorageClassStorageBuffer:
		target, err := w.bindTarget(v)
		if err != nil {
			return false, err
		}
		if w.module.IsStorageBuffer(v) {
			bufType, rt := hlslRWByteAddressBuffer, RegisterTypeU
			if w.module.IsReadOnlyBuffer(v) {
				bufType, rt = hlslByteAddressBuffer, RegisterTypeT
			}
			w.writeLine("%s %s%s%s;", bufType, name, w.arraySuffix(valueType), w.registerSuffix(name, target, rt))
			return true, nil
		}
		w.writeConstantBuffer(name, valueType, &target)
		return true, nil

	case spirv.StorageClassPushConstant:
		w.writeConstantBuffer(name, valueType, w.options.PushConstantTarget)
		return true, nil

	case spirv.StorageClassAtomicCounter:
		// Atomic counters have no HLSL equivalent; uses fail at the access.
		return false, nil

	case spirv.StorageClassUniformConstant:
		return true, w.writeOpaqueVariable(v, name, valueType)

	case spirv.StorageClassPrivate:
		if v.Initializer != 0 {
			init, err := w.initializer(v.Initializer)
			if err != nil {
				return false, err
			}
			w.writeLine("static %s = %s;", w.typeDecl(valueType, name), init)
			return true, nil
		}
		w.writeLine("static %s;", w.typeDecl(valueType, name))
		return true, nil

	case spirv.StorageClassWorkgroup:
		w.writeLine("groupshared %s;", w.typeDecl(valueType, name))
		return true, nil
	}
	return false, NewErrorAt(ErrUnsupportedFeature, v.ID, "storage class %s is not supported", v.StorageClass)
}

// writeConstantBuffer declares a uniform or push constant block. Shader
// model 5.0 has no ConstantBuffer template, so the block is wrapped in a
// cbuffer instead. A nil target leaves the register to the compiler.
func (w *Writer) writeConstantBuffer(name string, valueType uint32, target *BindTarget) {
	block := w.typeName(w.module.BaseType(valueType))
	var register string
	if target != nil {
		register = w.registerSuffix(name, *target, RegisterTypeB)
	}
	if w.options.ShaderModel < ShaderModel5_1 && !w.isArray(valueType) {
		w.writeLine("%s %s%s {", hlslCBuffer, w.namer.call(name+"_cbuffer"), register)
		w.pushIndent()
		w.writeLine("%s %s;", block, name)
		w.popIndent()
		w.writeLine("};")
		return
	}
	w.writeLine("%s<%s> %s%s%s;", hlslConstantBuffer, block, name, w.arraySuffix(valueType), register)
}

// writeOpaqueVariable declares a texture, sampler or combined image. A
// combined image becomes a texture plus a sampler bound to the same slot.
func (w *Writer) writeOpaqueVariable(v *ir.Variable, name string, valueType uint32) error {
	base := w.module.Types[w.module.BaseType(valueType)]
	if base == nil {
		return NewErrorAt(ErrInvalidModule, v.ID, "resource has no type")
	}
	target, err := w.bindTarget(v)
	if err != nil {
		return err
	}
	suffix := w.arraySuffix(valueType)

	switch base.Kind {
	case ir.TypeSampler:
		w.writeLine("%s %s%s%s;", SamplerToHLSL(w.comparisonSamplers[v.ID]), name, suffix,
			w.registerSuffix(name, target, RegisterTypeS))
		return nil

	case ir.TypeImage:
		rt := RegisterTypeT
		if base.Image.Sampled == 2 && base.Image.Dim != spirv.DimSubpassData {
			rt = RegisterTypeU
		}
		w.writeLine("%s %s%s%s;", w.typeName(base.ID), name, suffix, w.registerSuffix(name, target, rt))
		return nil

	case ir.TypeSampledImage:
		w.writeLine("%s %s%s%s;", w.typeName(base.ID), name, suffix, w.registerSuffix(name, target, RegisterTypeT))
		sampler := w.samplerNames[v.ID]
		w.writeLine("%s %s%s%s;", SamplerToHLSL(w.comparisonSamplers[v.ID]), sampler, suffix,
			w.registerSuffix(sampler, target, RegisterTypeS))
		return nil
	}
	return NewErrorAt(ErrUnsupportedType, v.ID, "uniform constant of this type is not supported")
}

// initializer returns the HLSL form of a variable initializer.
func (w *Writer) initializer(id uint32) (string, error) {
	if c := w.module.Constant(id); c != nil {
		return w.constantValue(c, true)
	}
	if name, ok := w.names[id]; ok {
		return name, nil
	}
	return "", NewErrorAt(ErrUnsupportedFeature, id, "unsupported initializer")
}

// =============================================================================
// Byte Address Buffer Access
// =============================================================================

// storageAddress is a location inside a byte address buffer.
type storageAddress struct {
	buffer  string
	offset  uint32
	dynamic []string
	typ     uint32

	// Layout of the matrix the address is in, if any.
	rowMajor     bool
	matrixStride uint32
	// componentStride is the distance between vector components when they
	// are not adjacent, as for a column of a row-major matrix.
	componentStride uint32
}

// at returns the byte offset expression of the address plus extra bytes.
func (a storageAddress) at(extra uint32) string {
	terms := append([]string(nil), a.dynamic...)
	if a.offset+extra != 0 || len(terms) == 0 {
		terms = append(terms, fmt.Sprintf("%d", a.offset+extra))
	}
	return strings.Join(terms, " + ")
}

// storageBuffer returns the storage buffer a pointer expression points
// into, if any.
func (w *Writer) storageBuffer(h ir.ExpressionHandle) (*ir.Variable, bool) {
	id, ok := w.fn.GlobalRoot(h)
	if !ok {
		return nil, false
	}
	v := w.module.Global(id)
	if v == nil || !w.module.IsStorageBuffer(v) {
		return nil, false
	}
	return v, true
}

// storageAddress resolves an access chain into a storage buffer to a byte
// offset, following the Offset, ArrayStride and MatrixStride decorations.
//
//nolint:gocyclo,cyclop // one case per composite kind
func (w *Writer) storageAddress(h ir.ExpressionHandle, v *ir.Variable) (storageAddress, error) {
	var chain []ir.ExpressionHandle
	for cur := h; ; {
		switch k := w.fn.Expr(cur).Kind.(type) {
		case ir.ExprAccess:
			chain = append(chain, cur)
			cur = k.Base
			continue
		case ir.ExprAccessIndex:
			chain = append(chain, cur)
			cur = k.Base
			continue
		}
		break
	}

	addr := storageAddress{buffer: w.names[v.ID], typ: w.module.Pointee(v.Type)}
	dec := w.module.Decorations

	// An array of buffers is indexed first.
	if !w.module.IsBlock(addr.typ) && w.isArray(addr.typ) && len(chain) > 0 {
		index, err := w.chainIndex(chain[len(chain)-1])
		if err != nil {
			return addr, err
		}
		addr.buffer = fmt.Sprintf("%s[%s]", addr.buffer, index)
		addr.typ = w.module.Types[addr.typ].Elem
		chain = chain[:len(chain)-1]
	}

	for i := len(chain) - 1; i >= 0; i-- {
		t := w.module.Types[addr.typ]
		if t == nil {
			return addr, NewError(ErrInvalidModule, "access into an untyped buffer value")
		}
		switch t.Kind {
		case ir.TypeStruct:
			k, ok := w.fn.Expr(chain[i]).Kind.(ir.ExprAccessIndex)
			if !ok || int(k.Index) >= len(t.Members) {
				return addr, NewErrorAt(ErrInvalidModule, t.ID, "invalid member access")
			}
			off, _ := dec.MemberDecoration(t.ID, k.Index, spirv.DecorationOffset)
			addr.offset += off
			addr.typ = t.Members[k.Index]
			addr.rowMajor = dec.HasMember(t.ID, k.Index, spirv.DecorationRowMajor)
			addr.matrixStride = defaultMatrixStride
			if ms, ok := dec.MemberDecoration(t.ID, k.Index, spirv.DecorationMatrixStride); ok {
				addr.matrixStride = ms
			}
			addr.componentStride = 0

		case ir.TypeArray, ir.TypeRuntimeArray:
			stride, ok := dec.Decoration(t.ID, spirv.DecorationArrayStride)
			if !ok {
				return addr, NewErrorAt(ErrInvalidModule, t.ID, "buffer array has no ArrayStride")
			}
			if err := w.addIndex(&addr, chain[i], stride); err != nil {
				return addr, err
			}
			addr.typ = t.Elem

		case ir.TypeMatrix:
			stride := addr.matrixStride
			if addr.rowMajor {
				stride = w.scalarSize(addr.typ)
			}
			if err := w.addIndex(&addr, chain[i], stride); err != nil {
				return addr, err
			}
			if addr.rowMajor {
				addr.componentStride = addr.matrixStride
			}
			addr.typ = t.Elem

		case ir.TypeVector:
			stride := addr.componentStride
			if stride == 0 {
				stride = w.scalarSize(addr.typ)
			}
			if err := w.addIndex(&addr, chain[i], stride); err != nil {
				return addr, err
			}
			addr.typ = t.Elem
			addr.componentStride = 0

		default:
			return addr, NewErrorAt(ErrInvalidModule, t.ID, "access into a scalar")
		}
	}
	return addr, nil
}

// addIndex adds the offset of one indexing step to an address.
func (w *Writer) addIndex(addr *storageAddress, h ir.ExpressionHandle, stride uint32) error {
	switch k := w.fn.Expr(h).Kind.(type) {
	case ir.ExprAccessIndex:
		addr.offset += k.Index * stride
	case ir.ExprAccess:
		index, err := w.expr(k.Index)
		if err != nil {
			return err
		}
		if !w.isUnsigned(w.fn.Expr(k.Index).Type) {
			index = fmt.Sprintf("uint(%s)", index)
		}
		addr.dynamic = append(addr.dynamic, fmt.Sprintf("%s * %d", index, stride))
	}
	return nil
}

// chainIndex returns the index of an access chain step as text.
func (w *Writer) chainIndex(h ir.ExpressionHandle) (string, error) {
	switch k := w.fn.Expr(h).Kind.(type) {
	case ir.ExprAccessIndex:
		return fmt.Sprintf("%d", k.Index), nil
	case ir.ExprAccess:
		return w.expr(k.Index)
	}
	return "", NewError(ErrInternalError, "not an access chain step")
}

// scalarSize returns the byte size of the scalar type of id.
func (w *Writer) scalarSize(id uint32) uint32 {
	if s := w.module.Scalar(id); s != nil && s.Width > 0 {
		return s.Width / 8
	}
	return 4
}

// loadFunction returns the ByteAddressBuffer load method for n words.
func loadFunction(n uint32) string {
	if n <= 1 {
		return "Load"
	}
	return fmt.Sprintf("Load%d", n)
}

// storeFunction returns the ByteAddressBuffer store method for n words.
func storeFunction(n uint32) string {
	if n <= 1 {
		return "Store"
	}
	return fmt.Sprintf("Store%d", n)
}

// storageLoad returns the value at addr. Structs and arrays come back as
// brace lists, which are only valid in initializers, so those loads are
// always baked.
//
//nolint:gocyclo,cyclop // one case per type kind
func (w *Writer) storageLoad(addr storageAddress) (string, error) {
	t := w.module.Types[addr.typ]
	if t == nil {
		return "", NewError(ErrInvalidModule, "load of an untyped buffer value")
	}
	switch t.Kind {
	case ir.TypeBool, ir.TypeInt, ir.TypeFloat:
		return w.loadWords(addr, t, 1)

	case ir.TypeVector:
		scalar := w.module.Types[t.Elem]
		if addr.componentStride == 0 {
			return w.loadWords(addr, scalar, t.Count)
		}
		parts := make([]string, t.Count)
		for i := range parts {
			c := addr
			c.offset += uint32(i) * addr.componentStride //nolint:gosec // G115: component index
			c.typ = t.Elem
			c.componentStride = 0
			s, err := w.loadWords(c, scalar, 1)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return fmt.Sprintf("%s(%s)", w.typeName(addr.typ), strings.Join(parts, ", ")), nil

	case ir.TypeMatrix:
		parts := make([]string, t.Count)
		for i := range parts {
			c := addr
			c.typ = t.Elem
			if addr.rowMajor {
				c.offset += uint32(i) * w.scalarSize(addr.typ) //nolint:gosec // G115: column index
				c.componentStride = addr.matrixStride
			} else {
				c.offset += uint32(i) * addr.matrixStride //nolint:gosec // G115: column index
			}
			s, err := w.storageLoad(c)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return fmt.Sprintf("%s(%s)", w.typeName(addr.typ), strings.Join(parts, ", ")), nil

	case ir.TypeStruct, ir.TypeArray:
		var parts []string
		err := w.forEachElement(addr, func(elem storageAddress, _ string) error {
			s, err := w.storageLoad(elem)
			parts = append(parts, s)
			return err
		})
		if err != nil {
			return "", err
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	}
	return "", NewErrorAt(ErrUnsupportedType, t.ID, "runtime arrays cannot be loaded whole")
}

// loadWords loads n adjacent 32-bit scalars and converts them from raw bits.
func (w *Writer) loadWords(addr storageAddress, scalar *ir.Type, n uint32) (string, error) {
	if scalar == nil || scalar.Width > 32 || (scalar.Width != 0 && scalar.Width < 32) {
		return "", NewError(ErrUnsupportedType, "only 32-bit values can be read from byte address buffers")
	}
	load := fmt.Sprintf("%s.%s(%s)", addr.buffer, loadFunction(n), addr.at(0))
	switch scalar.Kind {
	case ir.TypeFloat:
		return fmt.Sprintf("asfloat(%s)", load), nil
	case ir.TypeInt:
		if scalar.Signed {
			return fmt.Sprintf("asint(%s)", load), nil
		}
		return load, nil
	}
	return fmt.Sprintf("(%s != 0u)", load), nil
}

// forEachElement calls fn for each member of a struct or element of an
// array at addr, with the accessor suffix that reaches it in a value.
func (w *Writer) forEachElement(addr storageAddress, fn func(elem storageAddress, accessor string) error) error {
	t := w.module.Types[addr.typ]
	dec := w.module.Decorations
	switch t.Kind {
	case ir.TypeStruct:
		for i, member := range t.Members {
			elem := addr
			off, _ := dec.MemberDecoration(t.ID, uint32(i), spirv.DecorationOffset)
			elem.offset += off
			elem.typ = member
			elem.rowMajor = dec.HasMember(t.ID, uint32(i), spirv.DecorationRowMajor)
			elem.matrixStride = defaultMatrixStride
			if ms, ok := dec.MemberDecoration(t.ID, uint32(i), spirv.DecorationMatrixStride); ok {
				elem.matrixStride = ms
			}
			if err := fn(elem, "."+w.memberNames[memberKey{t.ID, uint32(i)}]); err != nil {
				return err
			}
		}
		return nil
	case ir.TypeArray:
		n, ok := w.module.ArrayLength(addr.typ)
		if !ok {
			return NewErrorAt(ErrUnsupportedFeature, t.ID, "buffer arrays sized by specialization constants are not supported")
		}
		stride, _ := dec.Decoration(t.ID, spirv.DecorationArrayStride)
		for i := uint32(0); i < n; i++ {
			elem := addr
			elem.offset += i * stride
			elem.typ = t.Elem
			if err := fn(elem, fmt.Sprintf("[%d]", i)); err != nil {
				return err
			}
		}
		return nil
	}
	return NewErrorAt(ErrInternalError, t.ID, "not a struct or array")
}

// storageStore writes value to addr. Composite values are stored
// piecewise, so value must be a name or another side-effect free text.
//
//nolint:gocyclo,cyclop // one case per type kind
func (w *Writer) storageStore(addr storageAddress, value string) error {
	t := w.module.Types[addr.typ]
	if t == nil {
		return NewError(ErrInvalidModule, "store of an untyped buffer value")
	}
	switch t.Kind {
	case ir.TypeBool, ir.TypeInt, ir.TypeFloat:
		return w.storeWords(addr, t, 1, value)

	case ir.TypeVector:
		scalar := w.module.Types[t.Elem]
		if addr.componentStride == 0 {
			return w.storeWords(addr, scalar, t.Count, value)
		}
		for i := uint32(0); i < t.Count; i++ {
			c := addr
			c.offset += i * addr.componentStride
			c.typ = t.Elem
			c.componentStride = 0
			if err := w.storeWords(c, scalar, 1, fmt.Sprintf("%s.%c", value, components[i])); err != nil {
				return err
			}
		}
		return nil

	case ir.TypeMatrix:
		for i := uint32(0); i < t.Count; i++ {
			c := addr
			c.typ = t.Elem
			if addr.rowMajor {
				c.offset += i * w.scalarSize(addr.typ)
				c.componentStride = addr.matrixStride
			} else {
				c.offset += i * addr.matrixStride
			}
			if err := w.storageStore(c, fmt.Sprintf("%s[%d]", value, i)); err != nil {
				return err
			}
		}
		return nil

	case ir.TypeStruct, ir.TypeArray:
		return w.forEachElement(addr, func(elem storageAddress, accessor string) error {
			return w.storageStore(elem, value+accessor)
		})
	}
	return NewErrorAt(ErrUnsupportedType, t.ID, "runtime arrays cannot be stored whole")
}

// storeWords stores n adjacent 32-bit scalars as raw bits.
func (w *Writer) storeWords(addr storageAddress, scalar *ir.Type, n uint32, value string) error {
	if scalar == nil || scalar.Width > 32 || (scalar.Width != 0 && scalar.Width < 32) {
		return NewError(ErrUnsupportedType, "only 32-bit values can be written to byte address buffers")
	}
	switch {
	case scalar.Kind == ir.TypeFloat || (scalar.Kind == ir.TypeInt && scalar.Signed):
		value = fmt.Sprintf("asuint(%s)", value)
	case scalar.Kind == ir.TypeBool:
		value = fmt.Sprintf("%s(%s)", w.vectorName(&ir.Type{Kind: ir.TypeInt, Width: 32}, n), value)
	}
	w.writeLine("%s.%s(%s, %s);", addr.buffer, storeFunction(n), addr.at(0), value)
	return nil
}

// arrayLength returns the element count of the runtime array at the end
// of a storage buffer.
func (w *Writer) arrayLength(e *ir.Expression, k ir.ExprArrayLength) (string, error) {
	v, ok := w.storageBuffer(k.Pointer)
	if !ok {
		return "", NewError(ErrUnsupportedFeature, "array length of a value outside a storage buffer")
	}
	addr, err := w.storageAddress(k.Pointer, v)
	if err != nil {
		return "", err
	}
	st := w.module.Types[addr.typ]
	if st == nil || st.Kind != ir.TypeStruct || int(k.Member) >= len(st.Members) {
		return "", NewError(ErrInvalidModule, "array length of a non-struct")
	}
	dec := w.module.Decorations
	off, _ := dec.MemberDecoration(st.ID, k.Member, spirv.DecorationOffset)
	stride, _ := dec.Decoration(st.Members[k.Member], spirv.DecorationArrayStride)
	if stride == 0 {
		return "", NewErrorAt(ErrInvalidModule, st.ID, "runtime array has no ArrayStride")
	}

	bufType := hlslRWByteAddressBuffer
	if w.module.IsReadOnlyBuffer(v) {
		bufType = hlslByteAddressBuffer
	}
	w.requireHelper(ArrayLengthFunction+bufType, ArrayLengthFunction, fmt.Sprintf(`uint %s(%s buffer, uint offset, uint stride)
{
    uint size;
    buffer.GetDimensions(size);
    return (size - offset) / stride;
}
`, ArrayLengthFunction, bufType))

	call := fmt.Sprintf("%s(%s, %s, %d)", ArrayLengthFunction, addr.buffer, addr.at(off), stride)
	if !w.isUnsigned(e.Type) {
		return fmt.Sprintf("%s(%s)", w.typeName(e.Type), call), nil
	}
	return call, nil
}
