// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Type Names
// =============================================================================

// typeName returns the HLSL name for a type, without array dimensions.
//
// SPIR-V matrices are column-major; a matrix with C columns of R rows is
// written as floatCxR, so each HLSL row holds a SPIR-V column and products
// are written with the operands swapped.
func (w *Writer) typeName(id uint32) string {
	t := w.module.Types[id]
	if t == nil {
		return "unknown_type"
	}
	switch t.Kind {
	case ir.TypeVoid:
		return "void"
	case ir.TypeBool, ir.TypeInt, ir.TypeFloat:
		return w.scalarName(t)
	case ir.TypeVector:
		return fmt.Sprintf("%s%d", w.scalarName(w.module.Types[t.Elem]), t.Count)
	case ir.TypeMatrix:
		col := w.module.Types[t.Elem]
		rows := uint32(4)
		if col != nil {
			rows = col.Count
		}
		return fmt.Sprintf("%s%dx%d", w.scalarName(w.module.Scalar(id)), t.Count, rows)
	case ir.TypeArray, ir.TypeRuntimeArray, ir.TypePointer:
		return w.typeName(t.Elem)
	case ir.TypeStruct:
		if name, ok := w.names[id]; ok {
			return name
		}
		return fmt.Sprintf("_%d", id)
	case ir.TypeSampler:
		return SamplerToHLSL(false)
	case ir.TypeImage:
		return w.imageTypeName(t)
	case ir.TypeSampledImage:
		if img := w.module.Types[t.Elem]; img != nil {
			return w.imageTypeName(img)
		}
	}
	return "unknown_type"
}

// scalarName returns the HLSL name for a scalar type and records the
// features it needs.
func (w *Writer) scalarName(t *ir.Type) string {
	if t == nil {
		return "unknown_type"
	}
	switch t.Kind {
	case ir.TypeBool:
		return hlslBool
	case ir.TypeFloat:
		switch t.Width {
		case 16:
			w.usedFeatures |= FeatureFloat16
			w.requireShaderModel(ShaderModel6_2)
			return hlslHalf
		case 64:
			w.usedFeatures |= FeatureFloat64
			return hlslDouble
		}
		return hlslFloat
	case ir.TypeInt:
		if t.Width == 64 {
			w.usedFeatures |= Feature64BitIntegers
			w.requireShaderModel(ShaderModel6_0)
			if t.Signed {
				return hlslInt64
			}
			return hlslUint64
		}
		if t.Signed {
			return hlslInt
		}
		return hlslUint
	}
	return "unknown_type"
}

// vectorName returns the name of a vector of n components of scalar, or
// the scalar itself for n == 1.
func (w *Writer) vectorName(scalar *ir.Type, n uint32) string {
	if n <= 1 {
		return w.scalarName(scalar)
	}
	return fmt.Sprintf("%s%d", w.scalarName(scalar), n)
}

// imageTypeName returns the HLSL texture type for an image.
func (w *Writer) imageTypeName(t *ir.Type) string {
	img := t.Image
	sampled := w.scalarName(w.module.Types[t.Elem])
	if t.Elem == 0 || w.module.Types[t.Elem] == nil {
		sampled = hlslFloat
	}

	if img.Dim == spirv.DimBuffer {
		if img.Sampled == 2 {
			n, norm := formatComponents(img.Format)
			return fmt.Sprintf("RWBuffer<%s%s>", norm, w.vectorName(w.module.Types[t.Elem], n))
		}
		return fmt.Sprintf("Buffer<%s4>", sampled)
	}
	if img.Dim == spirv.DimSubpassData {
		return fmt.Sprintf("Texture2D<%s4>", sampled)
	}

	dim := ImageDimToHLSL(img.Dim, img.Arrayed, img.Multisampled)
	if img.Sampled == 2 {
		n, norm := formatComponents(img.Format)
		return fmt.Sprintf("RW%s%s<%s%s>", hlslTexture, dim, norm, w.vectorName(w.module.Types[t.Elem], n))
	}
	return fmt.Sprintf("%s%s<%s4>", hlslTexture, dim, sampled)
}

// arraySuffix returns the array dimensions of a type, outermost first.
func (w *Writer) arraySuffix(id uint32) string {
	t := w.module.Types[id]
	if t == nil {
		return ""
	}
	switch t.Kind {
	case ir.TypeArray:
		if n, ok := w.module.ArrayLength(id); ok {
			return fmt.Sprintf("[%d]", n) + w.arraySuffix(t.Elem)
		}
		if name, ok := w.names[t.Length]; ok {
			return "[" + name + "]" + w.arraySuffix(t.Elem)
		}
		return "[1]" + w.arraySuffix(t.Elem)
	case ir.TypeRuntimeArray:
		return "[]" + w.arraySuffix(t.Elem)
	case ir.TypePointer:
		return w.arraySuffix(t.Elem)
	}
	return ""
}

// typeDecl declares name with the given type, e.g. "float4 colors[4]".
func (w *Writer) typeDecl(id uint32, name string) string {
	return w.typeName(id) + " " + name + w.arraySuffix(id)
}

// isArray reports whether a type is a sized or runtime array.
func (w *Writer) isArray(id uint32) bool {
	t := w.module.Types[id]
	return t != nil && (t.Kind == ir.TypeArray || t.Kind == ir.TypeRuntimeArray)
}

// =============================================================================
// Struct Definitions
// =============================================================================

// writeTypes writes struct type definitions. Structs only reached through
// byte address buffers and builtin blocks are never declared.
func (w *Writer) writeTypes() {
	for _, id := range w.module.Structs(w.program) {
		if w.module.IsBuiltinBlock(id) || (w.bufferBlocks[id] && !w.structUsedByValue(id)) {
			continue
		}
		w.writeStructDefinition(id)
	}
}

// structUsedByValue reports whether a buffer block struct is also used as a
// value type outside of the buffers, so it still needs a declaration.
func (w *Writer) structUsedByValue(id uint32) bool {
	for _, v := range w.program.Globals {
		if w.module.BaseType(v.Type) == id && !w.module.IsStorageBuffer(v) {
			return true
		}
	}
	return false
}

// writeStructDefinition writes one struct. Matrix members are written with
// the opposite majority keyword, matching the swapped matrix shape.
func (w *Writer) writeStructDefinition(id uint32) {
	t := w.module.Types[id]
	w.writeLine("struct %s {", w.names[id])
	w.pushIndent()
	for i, member := range t.Members {
		var layout string
		if w.isMatrixType(member) {
			switch {
			case w.module.Decorations.HasMember(id, uint32(i), spirv.DecorationColMajor):
				layout = "row_major "
			case w.module.Decorations.HasMember(id, uint32(i), spirv.DecorationRowMajor):
				layout = "column_major "
			}
		}
		w.writeLine("%s%s;", layout, w.typeDecl(member, w.memberNames[memberKey{id, uint32(i)}]))
	}
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
}

// isMatrixType reports whether a type, or the element of an array type, is
// a matrix.
func (w *Writer) isMatrixType(id uint32) bool {
	t := w.module.Types[id]
	for t != nil && (t.Kind == ir.TypeArray || t.Kind == ir.TypeRuntimeArray) {
		t = w.module.Types[t.Elem]
	}
	return t != nil && t.Kind == ir.TypeMatrix
}

// =============================================================================
// Constants
// =============================================================================

// writeConstants writes named constants: specialization constants, which
// can be overridden with preprocessor definitions, and struct or array
// composites, which HLSL can only build in initializers.
func (w *Writer) writeConstants() error {
	wrote := false
	for _, c := range sortedConstants(w.module) {
		name, ok := w.names[c.ID]
		if !ok {
			continue
		}
		value, err := w.constantValue(c, false)
		if err != nil {
			return err
		}
		if specID, ok := w.module.Decorations.Decoration(c.ID, spirv.DecorationSpecID); ok && c.Spec && c.Kind != ir.ConstComposite {
			macro := fmt.Sprintf("SPIRV_CROSS_CONSTANT_ID_%d", specID)
			w.writeLine("#ifndef %s", macro)
			w.writeLine("#define %s %s", macro, value)
			w.writeLine("#endif")
			value = macro
		}
		w.writeLine("static const %s = %s;", w.typeDecl(c.Type, name), value)
		wrote = true
	}
	if wrote {
		w.writeLine("")
	}
	return nil
}

// constantValue returns the HLSL representation of a constant. Named
// constants are referenced by name unless inline is false.
func (w *Writer) constantValue(c *ir.Constant, inline bool) (string, error) {
	if inline {
		if name, ok := w.names[c.ID]; ok {
			return name, nil
		}
	}
	switch c.Kind {
	case ir.ConstBool:
		if c.Bool {
			return "true", nil
		}
		return "false", nil
	case ir.ConstScalar:
		return w.scalarValue(c.Type, c.Value), nil
	case ir.ConstComposite:
		parts := make([]string, len(c.Components))
		for i, comp := range c.Components {
			cc := w.module.Constant(comp)
			if cc == nil {
				return "", NewErrorAt(ErrInvalidModule, c.ID, "composite constant has a non-constant part")
			}
			s, err := w.constantValue(cc, true)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		if t := w.module.Types[c.Type]; t != nil && (t.Kind == ir.TypeStruct || t.Kind == ir.TypeArray) {
			return "{ " + strings.Join(parts, ", ") + " }", nil
		}
		return fmt.Sprintf("%s(%s)", w.typeName(c.Type), strings.Join(parts, ", ")), nil
	case ir.ConstNull, ir.ConstUndef:
		return w.zeroValue(c.Type), nil
	}
	return "", NewErrorAt(ErrUnsupportedFeature, c.ID, "specialization constant operations are not supported")
}

// scalarValue returns the HLSL representation of a scalar literal.
func (w *Writer) scalarValue(typeID uint32, words []uint32) string {
	t := w.module.Types[typeID]
	lo := uint64(0)
	if len(words) > 0 {
		lo = uint64(words[0])
	}
	if len(words) > 1 {
		lo |= uint64(words[1]) << 32
	}
	if t == nil {
		return fmt.Sprintf("%d", lo)
	}
	switch t.Kind {
	case ir.TypeFloat:
		if t.Width == 64 {
			return formatFloat64(math.Float64frombits(lo))
		}
		return formatFloat32(math.Float32frombits(uint32(lo))) //nolint:gosec // G115: low word
	case ir.TypeInt:
		switch {
		case t.Width == 64 && t.Signed:
			return fmt.Sprintf("%dl", int64(lo)) //nolint:gosec // G115: reinterpreting bits
		case t.Width == 64:
			return fmt.Sprintf("%dul", lo)
		case t.Signed:
			return fmt.Sprintf("%d", int32(uint32(lo))) //nolint:gosec // G115: reinterpreting bits
		}
		return fmt.Sprintf("%du", uint32(lo)) //nolint:gosec // G115: low word
	case ir.TypeBool:
		if lo != 0 {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%d", lo)
}

// zeroValue returns a zero-initialized value of the type. Array zeros are
// brace lists and only valid in initializers.
func (w *Writer) zeroValue(typeID uint32) string {
	t := w.module.Types[typeID]
	if t == nil {
		return "0"
	}
	switch t.Kind {
	case ir.TypeBool:
		return "false"
	case ir.TypeInt, ir.TypeFloat:
		return w.scalarValue(typeID, nil)
	case ir.TypeArray:
		n, _ := w.module.ArrayLength(typeID)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = w.zeroValue(t.Elem)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return fmt.Sprintf("(%s)0", w.typeName(typeID))
}

// formatFloat32 formats a float32 for HLSL output.
func formatFloat32(f float32) string {
	if math.IsInf(float64(f), 1) {
		return "1.#INF"
	}
	if math.IsInf(float64(f), -1) {
		return "-1.#INF"
	}
	if math.IsNaN(float64(f)) {
		return "(0.0 / 0.0)"
	}
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatFloat64 formats a float64 for HLSL output.
func formatFloat64(f float64) string {
	if math.IsInf(f, 1) {
		return "1.#INF"
	}
	if math.IsInf(f, -1) {
		return "-1.#INF"
	}
	if math.IsNaN(f) {
		return "(0.0L / 0.0L)"
	}
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + "L"
}
