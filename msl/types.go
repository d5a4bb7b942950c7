package msl

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

// typeName returns the MSL name for a type. Sized arrays are metal::array;
// runtime arrays are written as their element, see arraySuffix.
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
		return w.vectorName(w.module.Types[t.Elem], t.Count)
	case ir.TypeMatrix:
		col := w.module.Types[t.Elem]
		rows := uint32(4)
		if col != nil {
			rows = col.Count
		}
		return fmt.Sprintf("metal::%s%dx%d", w.scalarName(w.module.Scalar(id)), t.Count, rows)
	case ir.TypeArray:
		if w.options.LangVersion.less(Version2_0) {
			w.fail(fmt.Errorf("arrays need MSL 2.0, targeting %s", w.options.LangVersion))
		}
		if n, ok := w.module.ArrayLength(id); ok {
			return fmt.Sprintf("metal::array<%s, %d>", w.typeName(t.Elem), n)
		}
		if name, ok := w.names[t.Length]; ok {
			return fmt.Sprintf("metal::array<%s, %s>", w.typeName(t.Elem), name)
		}
		return fmt.Sprintf("metal::array<%s, 1>", w.typeName(t.Elem))
	case ir.TypeRuntimeArray, ir.TypePointer:
		return w.typeName(t.Elem)
	case ir.TypeStruct:
		if name, ok := w.names[id]; ok {
			return name
		}
		return fmt.Sprintf("_%d", id)
	case ir.TypeSampler:
		return "metal::sampler"
	case ir.TypeImage:
		name, err := w.imageTypeName(t, false, w.defaultAccess(t))
		w.fail(err)
		return name
	case ir.TypeSampledImage:
		if img := w.module.Types[t.Elem]; img != nil {
			name, err := w.imageTypeName(img, false, "")
			w.fail(err)
			return name
		}
	}
	return "unknown_type"
}

// scalarName returns the MSL name for a scalar type.
func (w *Writer) scalarName(t *ir.Type) string {
	if t == nil {
		return "unknown_type"
	}
	switch t.Kind {
	case ir.TypeBool:
		return "bool"
	case ir.TypeFloat:
		switch t.Width {
		case 16:
			return "half"
		case 64:
			w.fail(fmt.Errorf("64-bit floats are not supported by Metal"))
			return "double"
		}
		return "float"
	case ir.TypeInt:
		switch {
		case t.Width == 64 && t.Signed:
			return "long"
		case t.Width == 64:
			return "ulong"
		case t.Width == 16 && t.Signed:
			return "short"
		case t.Width == 16:
			return "ushort"
		case t.Signed:
			return "int"
		}
		return "uint"
	}
	return "unknown_type"
}

// vectorName returns the name of a vector of n components of scalar, or
// the scalar itself for n == 1.
func (w *Writer) vectorName(scalar *ir.Type, n uint32) string {
	if n <= 1 {
		return w.scalarName(scalar)
	}
	return fmt.Sprintf("metal::%s%d", w.scalarName(scalar), n)
}

// imageTypeName returns the Metal texture type for an image. depth selects
// a depth texture; access is the access qualifier of storage images.
func (w *Writer) imageTypeName(t *ir.Type, depth bool, access string) (string, error) {
	img := t.Image
	sampled := "float"
	if st := w.module.Types[t.Elem]; st != nil && st.Kind != ir.TypeVoid {
		sampled = w.scalarName(st)
	}

	var base string
	switch img.Dim {
	case spirv.Dim1D:
		base = "texture1d"
		if img.Arrayed {
			base += "_array"
		}
		depth = false
	case spirv.Dim2D, spirv.DimRect, spirv.DimSubpassData:
		base = "texture2d"
		if depth {
			base = "depth2d"
		}
		if img.Multisampled {
			base += "_ms"
		}
		if img.Arrayed {
			base += "_array"
		}
	case spirv.Dim3D:
		base = "texture3d"
		depth = false
	case spirv.DimCube:
		base = "texturecube"
		if depth {
			base = "depthcube"
		}
		if img.Arrayed {
			base += "_array"
		}
	case spirv.DimBuffer:
		if w.options.LangVersion.less(Version2_1) {
			return "", fmt.Errorf("texel buffers need MSL 2.1, targeting %s", w.options.LangVersion)
		}
		base = "texture_buffer"
		depth = false
	default:
		return "", fmt.Errorf("image dimension %d is not supported", img.Dim)
	}
	if depth {
		sampled = "float"
	}
	if access != "" {
		return fmt.Sprintf("metal::%s<%s, %s>", base, sampled, access), nil
	}
	return fmt.Sprintf("metal::%s<%s>", base, sampled), nil
}

// defaultAccess is the access of a storage image passed to a function,
// where no decoration says how it is used.
func (w *Writer) defaultAccess(t *ir.Type) string {
	if t.Image.Sampled == 2 && t.Image.Dim != spirv.DimSubpassData {
		return "metal::access::read_write"
	}
	return ""
}

// arraySuffix returns "[1]" for runtime arrays, which can only be the last
// member of a buffer block and are indexed past their declared end.
func (w *Writer) arraySuffix(id uint32) string {
	t := w.module.Types[id]
	if t != nil && t.Kind == ir.TypeRuntimeArray {
		return "[1]"
	}
	return ""
}

// typeDecl declares name with the given type, e.g. "metal::float4 color".
func (w *Writer) typeDecl(id uint32, name string) string {
	return w.typeName(id) + " " + name + w.arraySuffix(id)
}

// isArray reports whether a type is a sized or runtime array.
func (w *Writer) isArray(id uint32) bool {
	t := w.module.Types[id]
	return t != nil && (t.Kind == ir.TypeArray || t.Kind == ir.TypeRuntimeArray)
}

// fail records the first error found while naming types, which has no
// error return of its own.
func (w *Writer) fail(err error) {
	if err != nil && w.err == nil {
		w.err = err
	}
}

// =============================================================================
// Builtins
// =============================================================================

// builtinAttribute returns the Metal attribute of a builtin stage variable
// and the type Metal requires for it, empty when the SPIR-V type is used.
//
//nolint:gocyclo,cyclop // one case per builtin
func builtinAttribute(b spirv.BuiltIn, model spirv.ExecutionModel, input bool) (attr, metalType string, ok bool) {
	if !input {
		switch b {
		case spirv.BuiltInPosition:
			return "[[position]]", "", model == spirv.ExecutionModelVertex
		case spirv.BuiltInPointSize:
			return "[[point_size]]", "", model == spirv.ExecutionModelVertex
		case spirv.BuiltInClipDistance:
			return "[[clip_distance]]", "", model == spirv.ExecutionModelVertex
		case spirv.BuiltInLayer:
			return "[[render_target_array_index]]", "uint", model == spirv.ExecutionModelVertex
		case spirv.BuiltInViewportIndex:
			return "[[viewport_array_index]]", "uint", model == spirv.ExecutionModelVertex
		case spirv.BuiltInFragDepth:
			return "[[depth(any)]]", "", model == spirv.ExecutionModelFragment
		case spirv.BuiltInSampleMask:
			return "[[sample_mask]]", "uint", model == spirv.ExecutionModelFragment
		}
		return "", "", false
	}

	switch model {
	case spirv.ExecutionModelVertex:
		switch b {
		case spirv.BuiltInVertexIndex, spirv.BuiltInVertexID:
			return "[[vertex_id]]", "uint", true
		case spirv.BuiltInInstanceIndex, spirv.BuiltInInstanceID:
			return "[[instance_id]]", "uint", true
		}
	case spirv.ExecutionModelFragment:
		switch b {
		case spirv.BuiltInFragCoord:
			return "[[position]]", "metal::float4", true
		case spirv.BuiltInFrontFacing:
			return "[[front_facing]]", "bool", true
		case spirv.BuiltInPointCoord:
			return "[[point_coord]]", "metal::float2", true
		case spirv.BuiltInSampleID:
			return "[[sample_id]]", "uint", true
		case spirv.BuiltInSampleMask:
			return "[[sample_mask]]", "uint", true
		case spirv.BuiltInPrimitiveID:
			return "[[primitive_id]]", "uint", true
		case spirv.BuiltInLayer:
			return "[[render_target_array_index]]", "uint", true
		case spirv.BuiltInViewportIndex:
			return "[[viewport_array_index]]", "uint", true
		}
	case spirv.ExecutionModelGLCompute:
		switch b {
		case spirv.BuiltInGlobalInvocationID:
			return "[[thread_position_in_grid]]", "metal::uint3", true
		case spirv.BuiltInLocalInvocationID:
			return "[[thread_position_in_threadgroup]]", "metal::uint3", true
		case spirv.BuiltInLocalInvocationIndex:
			return "[[thread_index_in_threadgroup]]", "uint", true
		case spirv.BuiltInWorkgroupID:
			return "[[threadgroup_position_in_grid]]", "metal::uint3", true
		case spirv.BuiltInNumWorkgroups:
			return "[[threadgroups_per_grid]]", "metal::uint3", true
		}
	}
	return "", "", false
}

// stageKeyword returns the Metal function qualifier of an execution model.
func stageKeyword(model spirv.ExecutionModel) string {
	switch model {
	case spirv.ExecutionModelVertex:
		return "vertex"
	case spirv.ExecutionModelFragment:
		return "fragment"
	case spirv.ExecutionModelGLCompute:
		return "kernel"
	}
	return ""
}

// =============================================================================
// Struct Definitions
// =============================================================================

// structPlan is the member declarations of a struct and its Metal layout.
type structPlan struct {
	lines []string
	size  uint32
	align uint32
}

// writeTypes writes struct type definitions. Builtin blocks become members
// of the output struct and are never declared.
func (w *Writer) writeTypes() error {
	for _, id := range w.module.Structs(w.program) {
		if w.module.IsBuiltinBlock(id) {
			continue
		}
		plan, err := w.planStruct(id)
		if err != nil {
			return err
		}
		w.writeLine("struct %s {", w.names[id])
		w.pushIndent()
		for _, line := range plan.lines {
			w.writeLine("%s", line)
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
	return w.err
}

// planStruct lays out a struct. Members of structs with explicit offsets
// are padded to their offset; a vec3 followed by a member closer than 16
// bytes is declared packed. Layouts Metal cannot express are errors.
//
//nolint:gocognit,gocyclo,cyclop,funlen // offset, stride and packing checks per member
func (w *Writer) planStruct(id uint32) (*structPlan, error) {
	if plan, ok := w.structPlans[id]; ok {
		return plan, nil
	}
	t := w.module.Types[id]
	dec := w.module.Decorations
	explicit := false
	for i := range t.Members {
		if dec.HasMember(id, uint32(i), spirv.DecorationOffset) {
			explicit = true
			break
		}
	}

	plan := &structPlan{align: 1}
	var cur uint32
	for i, member := range t.Members {
		key := memberKey{id, uint32(i)}
		name := w.memberNames[key]
		decl := w.typeDecl(member, name)
		size, align, err := w.layoutOf(member)
		if err != nil {
			return nil, err
		}

		if explicit {
			off, _ := dec.MemberDecoration(id, uint32(i), spirv.DecorationOffset)
			mt := w.module.Types[member]

			if mt != nil && mt.Kind == ir.TypeMatrix {
				stride, _ := dec.MemberDecoration(id, uint32(i), spirv.DecorationMatrixStride)
				if dec.HasMember(id, uint32(i), spirv.DecorationRowMajor) {
					decl, size, align = w.transposedMatrix(mt, name)
					w.rowMajor[key] = true
				}
				if colSize := size / w.matrixColumns(mt, w.rowMajor[key]); stride != 0 && stride != colSize {
					return nil, fmt.Errorf("struct %s member %s: matrix stride %d does not match Metal's %d", w.names[id], name, stride, colSize)
				}
			}
			if w.isArray(member) {
				if w.isMatrixArray(member) && dec.HasMember(id, uint32(i), spirv.DecorationRowMajor) {
					return nil, fmt.Errorf("struct %s member %s: arrays of row-major matrices are not supported", w.names[id], name)
				}
				if err := w.checkArrayStride(member); err != nil {
					return nil, fmt.Errorf("struct %s member %s: %w", w.names[id], name, err)
				}
			}
			if mt != nil && mt.Kind == ir.TypeVector && mt.Count == 3 {
				packedNext := i+1 < len(t.Members) && nextOffset(dec, id, uint32(i+1)) < off+size
				if packedNext || off%align != 0 {
					scalar := w.module.Types[mt.Elem]
					decl = fmt.Sprintf("metal::packed_%s3 %s", w.scalarName(scalar), name)
					size, align = 3*scalar.Width/8, scalar.Width/8
				}
			}

			if off < cur {
				return nil, fmt.Errorf("struct %s member %s: offset %d overlaps the previous member", w.names[id], name, off)
			}
			if off%align != 0 {
				return nil, fmt.Errorf("struct %s member %s: offset %d is not %d-byte aligned", w.names[id], name, off, align)
			}
			if off > cur {
				plan.lines = append(plan.lines, fmt.Sprintf("char _pad%d[%d];", i, off-cur))
				cur = off
			}
		} else {
			cur = alignUp(cur, align)
		}

		plan.lines = append(plan.lines, decl+";")
		cur += size
		plan.align = max(plan.align, align)
	}
	plan.size = alignUp(cur, plan.align)
	w.structPlans[id] = plan
	return plan, nil
}

// nextOffset returns the Offset decoration of a member.
func nextOffset(dec *ir.DecorationStore, id, member uint32) uint32 {
	off, ok := dec.MemberDecoration(id, member, spirv.DecorationOffset)
	if !ok {
		return math.MaxUint32
	}
	return off
}

// transposedMatrix declares a row-major matrix member as the transposed
// column-major matrix, returning the declaration and its layout.
func (w *Writer) transposedMatrix(t *ir.Type, name string) (string, uint32, uint32) {
	col := w.module.Types[t.Elem]
	scalar := w.module.Scalar(t.ID)
	rows := col.Count
	vecSize, vecAlign := vectorLayout(scalar.Width/8, t.Count)
	return fmt.Sprintf("metal::%s%dx%d %s", w.scalarName(scalar), rows, t.Count, name), rows * vecSize, vecAlign
}

// matrixColumns returns the number of columns of a matrix as declared.
func (w *Writer) matrixColumns(t *ir.Type, transposed bool) uint32 {
	if transposed {
		return w.module.Types[t.Elem].Count
	}
	return t.Count
}

// isMatrixArray reports whether a type is an array of matrices.
func (w *Writer) isMatrixArray(id uint32) bool {
	t := w.module.Types[id]
	for t != nil && (t.Kind == ir.TypeArray || t.Kind == ir.TypeRuntimeArray) {
		t = w.module.Types[t.Elem]
	}
	return t != nil && t.Kind == ir.TypeMatrix
}

// checkArrayStride compares an array's ArrayStride with Metal's element stride.
func (w *Writer) checkArrayStride(id uint32) error {
	t := w.module.Types[id]
	stride, ok := w.module.Decorations.Decoration(id, spirv.DecorationArrayStride)
	if !ok {
		return nil
	}
	size, align, err := w.layoutOf(t.Elem)
	if err != nil {
		return err
	}
	if want := alignUp(size, align); stride != want {
		return fmt.Errorf("array stride %d does not match Metal's %d", stride, want)
	}
	if w.isArray(t.Elem) {
		return w.checkArrayStride(t.Elem)
	}
	return nil
}

// layoutOf returns the size and alignment Metal gives a type.
func (w *Writer) layoutOf(id uint32) (size, align uint32, err error) {
	t := w.module.Types[id]
	if t == nil {
		return 0, 1, fmt.Errorf("type %%%d is not defined", id)
	}
	switch t.Kind {
	case ir.TypeBool:
		return 1, 1, nil
	case ir.TypeInt, ir.TypeFloat:
		return t.Width / 8, t.Width / 8, nil
	case ir.TypeVector:
		s, _, err := w.layoutOf(t.Elem)
		size, align := vectorLayout(s, t.Count)
		return size, align, err
	case ir.TypeMatrix:
		colSize, colAlign, err := w.layoutOf(t.Elem)
		return t.Count * colSize, colAlign, err
	case ir.TypeArray:
		n, _ := w.module.ArrayLength(id)
		es, ea, err := w.layoutOf(t.Elem)
		return n * alignUp(es, ea), ea, err
	case ir.TypeRuntimeArray:
		_, ea, err := w.layoutOf(t.Elem)
		return 0, ea, err
	case ir.TypeStruct:
		plan, err := w.planStruct(id)
		if err != nil {
			return 0, 1, err
		}
		return plan.size, plan.align, nil
	}
	return 0, 1, fmt.Errorf("type %%%d has no memory layout", id)
}

// vectorLayout returns the size and alignment of a vector of n scalars of
// the given size. Three-component vectors take the room of four.
func vectorLayout(scalarSize, n uint32) (uint32, uint32) {
	if n == 3 {
		n = 4
	}
	return n * scalarSize, n * scalarSize
}

func alignUp(v, align uint32) uint32 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

// =============================================================================
// Stage Structs
// =============================================================================

// writeStageStructs writes the <entry>_in and <entry>_out structs. Builtin
// inputs are entry point parameters and stay out of the input struct.
func (w *Writer) writeStageStructs() {
	if w.hasStageInput() {
		w.writeLine("struct %s {", w.inputStruct)
		w.pushIndent()
		for _, sv := range w.inputs {
			if !sv.param {
				w.writeLine("%s;", w.stageMember(sv))
			}
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
	if len(w.outputs) > 0 {
		w.writeLine("struct %s {", w.outputStruct)
		w.pushIndent()
		for _, sv := range w.outputs {
			w.writeLine("%s;", w.stageMember(sv))
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
}

// stageMember declares a stage struct member with its attribute. Arrays,
// such as clip distances, are C arrays with the attribute before the size.
func (w *Writer) stageMember(sv stageVar) string {
	if n, ok := w.module.ArrayLength(sv.typ); ok && sv.metalType == "" {
		return fmt.Sprintf("%s %s %s [%d]", w.typeName(w.module.Types[sv.typ].Elem), sv.name, sv.attribute, n)
	}
	declType := sv.metalType
	if declType == "" {
		declType = w.typeName(sv.typ)
	}
	return fmt.Sprintf("%s %s %s", declType, sv.name, sv.attribute)
}

// hasStageInput reports whether the entry point takes a [[stage_in]] struct.
func (w *Writer) hasStageInput() bool {
	for _, sv := range w.inputs {
		if !sv.param {
			return true
		}
	}
	return false
}

// =============================================================================
// Constants
// =============================================================================

// writeConstants writes named constants: composites, and specialization
// constants, which become function constants with their default value.
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
			tmp := w.namer.call(name + "_tmp")
			w.writeLine("constant %s %s [[function_constant(%d)]];", w.typeName(c.Type), tmp, specID)
			w.writeLine("constant %s %s = is_function_constant_defined(%s) ? %s : %s;", w.typeName(c.Type), name, tmp, tmp, value)
		} else {
			w.writeLine("constant %s = %s;", w.typeDecl(c.Type, name), value)
		}
		wrote = true
	}
	if wrote {
		w.writeLine("")
	}
	return w.err
}

// constantValue returns the MSL representation of a constant. Named
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
				return "", fmt.Errorf("constant %%%d: composite has a non-constant part", c.ID)
			}
			s, err := w.constantValue(cc, true)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		if w.module.IsComposite(c.Type) {
			return fmt.Sprintf("%s{ %s }", w.typeName(c.Type), strings.Join(parts, ", ")), nil
		}
		return fmt.Sprintf("%s(%s)", w.typeName(c.Type), strings.Join(parts, ", ")), nil
	case ir.ConstNull, ir.ConstUndef:
		return w.zeroValue(c.Type), nil
	}
	return "", fmt.Errorf("constant %%%d: specialization constant operations are not supported", c.ID)
}

// scalarValue returns the MSL representation of a scalar literal.
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
		switch t.Width {
		case 64:
			w.fail(fmt.Errorf("64-bit floats are not supported by Metal"))
			return formatFloat(math.Float64frombits(lo))
		case 16:
			return formatFloat(float64(halfToFloat(uint16(lo)))) + "h" //nolint:gosec // G115: low half word
		}
		return formatFloat(float64(math.Float32frombits(uint32(lo)))) //nolint:gosec // G115: low word
	case ir.TypeInt:
		switch {
		case t.Width == 64 && t.Signed:
			return fmt.Sprintf("%dl", int64(lo)) //nolint:gosec // G115: reinterpreting bits
		case t.Width == 64:
			return fmt.Sprintf("%dul", lo)
		case t.Signed:
			v := int32(uint32(lo)) //nolint:gosec // G115: reinterpreting bits
			if v == math.MinInt32 {
				return "(-2147483647 - 1)"
			}
			return fmt.Sprintf("%d", v)
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

// zeroValue returns a zero value of the type.
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
	case ir.TypeVector:
		return fmt.Sprintf("%s(%s)", w.typeName(typeID), w.scalarValue(t.Elem, nil))
	}
	return w.typeName(typeID) + "{}"
}

// initializer returns the MSL form of a variable initializer.
func (w *Writer) initializer(id uint32) (string, error) {
	if c := w.module.Constant(id); c != nil {
		return w.constantValue(c, true)
	}
	if name, ok := w.names[id]; ok {
		return name, nil
	}
	return "", fmt.Errorf("initializer %%%d is not a constant", id)
}

// formatFloat formats a float literal, using the Metal macros for
// infinities and NaN.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INFINITY"
	case math.IsInf(f, -1):
		return "(-INFINITY)"
	case math.IsNaN(f):
		return "NAN"
	}
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// halfToFloat widens an IEEE 754 half precision value.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff
	switch {
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// Subnormal: value is frac * 2^-24.
		f := float32(frac) / (1 << 24)
		if sign != 0 {
			return -f
		}
		return f
	}
	return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
}
