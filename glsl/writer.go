// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// memberKey identifies a struct member for name lookup.
type memberKey struct {
	structID uint32
	member   uint32
}

// Writer generates GLSL source code from IR.
type Writer struct {
	module  *ir.Module
	program *ir.Program
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	namer       *namer
	names       map[uint32]string
	memberNames map[memberKey]string

	// Struct types declared as interface blocks instead of structs.
	blockTypes map[uint32]bool

	// Function context (set during function writing)
	fn         *ir.FunctionBody
	paramNames []string
	localNames map[uint32]string
	baked      map[ir.ExpressionHandle]string

	// Output tracking
	extensions      []string
	requiredVersion Version
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	n := &namer{
		usedNames: make(map[string]struct{}),
	}
	n.usedNames["main"] = struct{}{}
	return n
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	// Escape reserved words
	escaped := escapeKeyword(sanitize(base))

	// First try the base name directly
	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}

	// Add numeric suffix
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// sanitize keeps the identifier part of a debug name. Compilers mangle
// function names as "name(args;", which is cut at the parenthesis.
func sanitize(name string) string {
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c)
		}
	}
	// GLSL reserves identifiers containing "__".
	s := b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}

// newWriter creates a new GLSL writer.
func newWriter(module *ir.Module, program *ir.Program, options *Options) *Writer {
	return &Writer{
		module:          module,
		program:         program,
		options:         options,
		namer:           newNamer(),
		names:           make(map[uint32]string),
		memberNames:     make(map[memberKey]string),
		blockTypes:      make(map[uint32]bool),
		requiredVersion: options.LangVersion,
	}
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates GLSL code for the entire module.
func (w *Writer) writeModule() error {
	if w.program.EntryPoint.Model == spirv.ExecutionModelGLCompute && !w.options.LangVersion.SupportsCompute() {
		return fmt.Errorf("compute shaders require GLSL %s or newer", Version430.VersionNumber())
	}

	// 1. Register all names
	w.registerNames()

	// 2. Write execution modes
	w.writeStageLayout()

	// 3. Write type definitions (structs)
	w.writeTypes()

	// 4. Write specialization constants
	if err := w.writeSpecConstants(); err != nil {
		return err
	}

	// 5. Write global variables (uniforms, inputs, outputs)
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}

	// 6. Write functions, callees first and the entry point last
	for _, fn := range w.program.Functions {
		if err := w.writeFunction(fn); err != nil {
			return err
		}
	}

	// 7. Prepend the version directive, now that the extensions are known
	body := w.out.String()
	w.out.Reset()
	w.writeVersionDirective()
	w.writePrecisionQualifiers()
	w.out.WriteString(body)
	return nil
}

// writeVersionDirective writes the #version directive.
func (w *Writer) writeVersionDirective() {
	w.writeLine("#version %s", w.options.LangVersion.String())
	if !w.options.LangVersion.ES && !w.options.LangVersion.supportsExplicitBinding() {
		w.extensions = append(w.extensions, "GL_ARB_shading_language_420pack")
	}
	for _, ext := range w.extensions {
		w.writeLine("#extension %s : require", ext)
	}
	w.writeLine("")
}

// writePrecisionQualifiers writes precision qualifiers for ES.
func (w *Writer) writePrecisionQualifiers() {
	if !w.options.LangVersion.ES {
		return
	}
	precision := "mediump"
	if w.options.ForceHighPrecision {
		precision = "highp"
	}
	w.writeLine("precision %s float;", precision)
	w.writeLine("precision %s int;", precision)
	w.writeLine("")
}

// writeStageLayout writes the layout declarations implied by execution modes.
func (w *Writer) writeStageLayout() {
	ep := w.program.EntryPoint
	switch ep.Model {
	case spirv.ExecutionModelGLCompute:
		size := w.module.WorkGroupSize(ep.Function)
		w.writeLine("layout(local_size_x = %d, local_size_y = %d, local_size_z = %d) in;", size[0], size[1], size[2])
		w.writeLine("")
	case spirv.ExecutionModelFragment:
		if _, ok := w.module.ExecutionModeOperands(ep.Function, spirv.ExecutionModeEarlyFragmentTests); ok {
			w.writeLine("layout(early_fragment_tests) in;")
			w.writeLine("")
		}
	}
}

// idName returns a debug-name based identifier for id.
func (w *Writer) idName(id uint32) string {
	if name, ok := w.module.Name(id); ok && sanitize(name) != "" {
		return w.namer.call(name)
	}
	return w.namer.call(fmt.Sprintf("_%d", id))
}

// registerNames assigns unique names to all module-scope entities.
func (w *Writer) registerNames() {
	for _, v := range w.program.Globals {
		if w.isInterfaceBlock(v) {
			w.blockTypes[w.module.BaseType(v.Type)] = true
		}
	}

	for _, id := range w.module.Structs(w.program) {
		w.names[id] = w.idName(id)
		t := w.module.Types[id]
		used := make(map[string]bool, len(t.Members))
		for i := range t.Members {
			name, ok := w.module.MemberName(id, uint32(i))
			name = escapeKeyword(sanitize(name))
			if !ok || name == "_unnamed" {
				name = fmt.Sprintf("_m%d", i)
			}
			for used[name] {
				name += "_"
			}
			used[name] = true
			w.memberNames[memberKey{id, uint32(i)}] = name
		}
	}

	for _, v := range w.program.Globals {
		w.names[v.ID] = w.idName(v.ID)
	}

	for _, c := range sortedConstants(w.module) {
		if c.Spec {
			w.names[c.ID] = w.idName(c.ID)
		}
	}

	for _, fn := range w.program.Functions[:len(w.program.Functions)-1] {
		w.names[fn.Function.ID] = w.idName(fn.Function.ID)
	}
	w.names[w.program.Entry().Function.ID] = "main"
}

// isInterfaceBlock reports whether a global is declared as a GLSL interface
// block rather than a plain variable.
func (w *Writer) isInterfaceBlock(v *ir.Variable) bool {
	base := w.module.BaseType(v.Type)
	if w.module.IsBuiltinBlock(base) || !w.module.IsBlock(base) {
		return false
	}
	switch v.StorageClass {
	case spirv.StorageClassUniform, spirv.StorageClassStorageBuffer,
		spirv.StorageClassInput, spirv.StorageClassOutput:
		return true
	case spirv.StorageClassPushConstant:
		return w.options.Vulkan
	}
	return false
}

// writeTypes writes struct type definitions.
func (w *Writer) writeTypes() {
	for _, id := range w.module.Structs(w.program) {
		if w.blockTypes[id] || w.module.IsBuiltinBlock(id) {
			continue
		}
		w.writeLine("struct %s", w.names[id])
		w.writeLine("{")
		w.pushIndent()
		w.writeMembers(id)
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
}

// writeMembers writes the member declarations of a struct or block.
func (w *Writer) writeMembers(id uint32) {
	t := w.module.Types[id]
	for i, member := range t.Members {
		var layout []string
		if w.module.Decorations.HasMember(id, uint32(i), spirv.DecorationRowMajor) {
			layout = append(layout, "row_major")
		}
		name := w.memberNames[memberKey{id, uint32(i)}]
		w.writeLine("%s%s;", layoutQualifier(layout), w.typeDecl(member, name))
	}
}

// writeSpecConstants writes specialization constants as named constants.
func (w *Writer) writeSpecConstants() error {
	wrote := false
	for _, c := range sortedConstants(w.module) {
		if !c.Spec {
			continue
		}
		value, err := w.constantValue(c, false)
		if err != nil {
			return err
		}
		var layout []string
		if specID, ok := w.module.Decorations.Decoration(c.ID, spirv.DecorationSpecID); ok && w.options.Vulkan {
			layout = append(layout, fmt.Sprintf("constant_id = %d", specID))
		}
		w.writeLine("%sconst %s = %s;", layoutQualifier(layout), w.typeDecl(c.Type, w.names[c.ID]), value)
		wrote = true
	}
	if wrote {
		w.writeLine("")
	}
	return nil
}

// writeGlobalVariables writes uniform, input, and output declarations.
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
// variables that need no declaration, such as builtins.
//
//nolint:gocyclo,cyclop // one case per storage class
func (w *Writer) writeGlobalVariable(v *ir.Variable) (bool, error) {
	name := w.names[v.ID]
	valueType := w.module.Pointee(v.Type)
	dec := w.module.Decorations

	switch v.StorageClass {
	case spirv.StorageClassInput, spirv.StorageClassOutput:
		if w.module.IsBuiltinVariable(v) {
			return false, nil
		}
		qualifier := "in"
		if v.StorageClass == spirv.StorageClassOutput {
			qualifier = "out"
		}
		layout := w.locationLayout(v.ID)
		if w.isInterfaceBlock(v) {
			w.writeInterfaceBlock(v, layout, qualifier)
			return true, nil
		}
		w.writeLine("%s%s%s %s;", layoutQualifier(layout), w.interpolation(v.ID), qualifier, w.typeDecl(valueType, name))
		return true, nil

	case spirv.StorageClassUniform, spirv.StorageClassStorageBuffer:
		if !w.isInterfaceBlock(v) {
			return false, fmt.Errorf("uniform %s is not a block", name)
		}
		layout := w.bindingLayout(v.ID)
		if w.module.IsStorageBuffer(v) {
			if !w.options.LangVersion.SupportsStorageBuffers() {
				return false, fmt.Errorf("storage buffer %s requires GLSL %s or newer", name, Version430.VersionNumber())
			}
			layout = append([]string{"std430"}, layout...)
			prefix := "buffer"
			if w.module.IsReadOnlyBuffer(v) {
				prefix = "readonly buffer"
			}
			w.writeInterfaceBlock(v, layout, prefix)
			return true, nil
		}
		w.writeInterfaceBlock(v, append([]string{"std140"}, layout...), "uniform")
		return true, nil

	case spirv.StorageClassPushConstant:
		if w.options.Vulkan {
			w.writeInterfaceBlock(v, []string{"push_constant", "std430"}, "uniform")
			return true, nil
		}
		w.writeLine("uniform %s;", w.typeDecl(valueType, name))
		return true, nil

	case spirv.StorageClassAtomicCounter:
		layout := w.bindingLayout(v.ID)
		offset, _ := dec.Decoration(v.ID, spirv.DecorationOffset)
		layout = append(layout, fmt.Sprintf("offset = %d", offset))
		w.writeLine("%suniform atomic_uint %s%s;", layoutQualifier(layout), name, w.arraySuffix(valueType))
		return true, nil

	case spirv.StorageClassUniformConstant:
		return w.writeOpaqueVariable(v, name, valueType)

	case spirv.StorageClassPrivate:
		if v.Initializer != 0 {
			init, err := w.initializer(v.Initializer)
			if err != nil {
				return false, err
			}
			w.writeLine("%s = %s;", w.typeDecl(valueType, name), init)
			return true, nil
		}
		w.writeLine("%s;", w.typeDecl(valueType, name))
		return true, nil

	case spirv.StorageClassWorkgroup:
		w.writeLine("shared %s;", w.typeDecl(valueType, name))
		return true, nil
	}
	return false, fmt.Errorf("global %s has unsupported storage class %s", name, v.StorageClass)
}

// writeOpaqueVariable declares an image, sampler or sampled image uniform.
func (w *Writer) writeOpaqueVariable(v *ir.Variable, name string, valueType uint32) (bool, error) {
	base := w.module.Types[w.module.BaseType(valueType)]
	if base == nil {
		return false, fmt.Errorf("uniform %s has no type", name)
	}
	layout := w.bindingLayout(v.ID)
	var access string

	switch base.Kind {
	case ir.TypeSampler:
		if !w.options.Vulkan {
			// Samplers are folded into the images they are combined with.
			return false, nil
		}
	case ir.TypeImage:
		switch {
		case base.Image.Dim == spirv.DimSubpassData:
			if w.options.Vulkan {
				index, _ := w.module.Decorations.Decoration(v.ID, spirv.DecorationInputAttachmentIndex)
				layout = append([]string{fmt.Sprintf("input_attachment_index = %d", index)}, layout...)
			}
		case base.Image.Sampled == 2:
			if format := imageFormat(base.Image.Format); format != "" {
				layout = append(layout, format)
			}
			switch {
			case w.module.Decorations.Has(v.ID, spirv.DecorationNonWritable):
				access = "readonly "
			case w.module.Decorations.Has(v.ID, spirv.DecorationNonReadable):
				access = "writeonly "
			}
		}
	case ir.TypeSampledImage:
	default:
		return false, fmt.Errorf("uniform %s has unsupported type", name)
	}
	w.writeLine("%suniform %s%s;", layoutQualifier(layout), access, w.typeDecl(valueType, name))
	return true, nil
}

// writeInterfaceBlock writes a named block with its members and instance name.
func (w *Writer) writeInterfaceBlock(v *ir.Variable, layout []string, qualifier string) {
	valueType := w.module.Pointee(v.Type)
	base := w.module.BaseType(valueType)
	w.writeLine("%s%s %s", layoutQualifier(layout), qualifier, w.names[base])
	w.writeLine("{")
	w.pushIndent()
	w.writeMembers(base)
	w.popIndent()
	w.writeLine("} %s%s;", w.names[v.ID], w.arraySuffix(valueType))
}

// bindingLayout returns the set and binding layout qualifiers of a resource.
func (w *Writer) bindingLayout(id uint32) []string {
	var layout []string
	dec := w.module.Decorations
	if set, ok := dec.Decoration(id, spirv.DecorationDescriptorSet); ok && w.options.Vulkan {
		layout = append(layout, fmt.Sprintf("set = %d", set))
	}
	if binding, ok := dec.Decoration(id, spirv.DecorationBinding); ok {
		if w.options.Vulkan || w.options.LangVersion.supportsExplicitBinding() || !w.options.LangVersion.ES {
			layout = append(layout, fmt.Sprintf("binding = %d", binding))
		}
	}
	return layout
}

// locationLayout returns the location layout qualifiers of stage I/O.
func (w *Writer) locationLayout(id uint32) []string {
	var layout []string
	dec := w.module.Decorations
	if loc, ok := dec.Decoration(id, spirv.DecorationLocation); ok {
		layout = append(layout, fmt.Sprintf("location = %d", loc))
	}
	if comp, ok := dec.Decoration(id, spirv.DecorationComponent); ok {
		layout = append(layout, fmt.Sprintf("component = %d", comp))
	}
	if index, ok := dec.Decoration(id, spirv.DecorationIndex); ok {
		layout = append(layout, fmt.Sprintf("index = %d", index))
	}
	return layout
}

// interpolation returns the interpolation qualifiers of stage I/O.
func (w *Writer) interpolation(id uint32) string {
	dec := w.module.Decorations
	var q string
	switch {
	case dec.Has(id, spirv.DecorationFlat):
		q = "flat "
	case dec.Has(id, spirv.DecorationNoPerspective):
		q = "noperspective "
	}
	switch {
	case dec.Has(id, spirv.DecorationCentroid):
		q += "centroid "
	case dec.Has(id, spirv.DecorationSample):
		q += "sample "
	}
	return q
}

func layoutQualifier(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return "layout(" + strings.Join(parts, ", ") + ") "
}

// writeFunction writes a single function definition.
func (w *Writer) writeFunction(fn *ir.FunctionBody) error {
	w.fn = fn
	w.localNames = make(map[uint32]string)
	w.baked = make(map[ir.ExpressionHandle]string)
	w.paramNames = w.paramNames[:0]
	defer func() { w.fn = nil }()

	args := make([]string, 0, len(fn.Function.Params))
	for _, p := range fn.Function.Params {
		name := w.idName(p.ID)
		w.paramNames = append(w.paramNames, name)
		decl := w.typeDecl(w.module.Pointee(p.Type), name)
		if pt := w.module.Types[p.Type]; pt != nil && pt.Kind == ir.TypePointer {
			decl = "inout " + decl
		}
		args = append(args, decl)
	}

	w.writeLine("%s %s(%s)", w.typeName(fn.Function.ResultType), w.names[fn.Function.ID], strings.Join(args, ", "))
	w.writeLine("{")
	w.pushIndent()

	for _, local := range fn.Locals {
		name := w.idName(local.ID)
		w.localNames[local.ID] = name
		if local.Init != 0 {
			init, err := w.initializer(local.Init)
			if err != nil {
				return err
			}
			w.writeLine("%s = %s;", w.typeDecl(local.Type, name), init)
			continue
		}
		w.writeLine("%s;", w.typeDecl(local.Type, name))
	}

	if err := w.writeBlock(fn.Body); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

// initializer returns the GLSL form of a variable initializer.
func (w *Writer) initializer(id uint32) (string, error) {
	if c := w.module.Constant(id); c != nil {
		return w.constantValue(c, true)
	}
	if name, ok := w.names[id]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unsupported initializer %%%d", id)
}

// constantValue returns the GLSL representation of a constant. Spec
// constants are referenced by name unless inline is false.
func (w *Writer) constantValue(c *ir.Constant, inline bool) (string, error) {
	if c.Spec && inline {
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
				return "", fmt.Errorf("composite constant %%%d has a non-constant part", c.ID)
			}
			s, err := w.constantValue(cc, true)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return fmt.Sprintf("%s(%s)", w.constructorName(c.Type), strings.Join(parts, ", ")), nil
	case ir.ConstNull, ir.ConstUndef:
		return w.zeroValue(c.Type), nil
	}
	return "", fmt.Errorf("specialization constant operation %%%d is not supported", c.ID)
}

// scalarValue returns the GLSL representation of a scalar literal.
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
		return formatFloat(math.Float32frombits(uint32(lo))) //nolint:gosec // G115: low word
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

// zeroValue returns a zero-initialized value of the type.
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
	case ir.TypeVector, ir.TypeMatrix:
		return fmt.Sprintf("%s(%s)", w.typeName(typeID), w.zeroValue(w.module.Scalar(typeID).ID))
	case ir.TypeArray:
		n, _ := w.module.ArrayLength(typeID)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = w.zeroValue(t.Elem)
		}
		return fmt.Sprintf("%s(%s)", w.constructorName(typeID), strings.Join(parts, ", "))
	case ir.TypeStruct:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = w.zeroValue(m)
		}
		return fmt.Sprintf("%s(%s)", w.typeName(typeID), strings.Join(parts, ", "))
	}
	return "0"
}

// sortedConstants returns the module constants in id order.
func sortedConstants(m *ir.Module) []*ir.Constant {
	out := make([]*ir.Constant, 0, len(m.Constants))
	for id := uint32(1); id < m.Header.Bound; id++ {
		if c := m.Constants[id]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Helper methods for output

func (w *Writer) writeLine(format string, args ...any) {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *Writer) pushIndent() {
	w.indent++
}

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// formatFloat formats a float32 for GLSL output.
func formatFloat(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		return "(0.0 / 0.0)"
	case math.IsInf(float64(f), 1):
		return "(1.0 / 0.0)"
	case math.IsInf(float64(f), -1):
		return "(-1.0 / 0.0)"
	}
	s := fmt.Sprintf("%g", f)
	// Ensure it has a decimal point or exponent
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatFloat64 formats a float64 for GLSL output.
func formatFloat64(f float64) string {
	s := fmt.Sprintf("%g", f)
	// Ensure it has a decimal point or exponent
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + "lf" // double literal suffix
}
