// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// memberKey identifies a struct member for name lookup.
type memberKey struct {
	structID uint32
	member   uint32
}

// stageVar is a stage input or output. It is declared as a static global
// and copied through SPIRV_Cross_Input or SPIRV_Cross_Output by main.
type stageVar struct {
	name      string
	typ       uint32
	semantic  string
	modifiers string

	builtin   spirv.BuiltIn
	isBuiltin bool
	// element is set for builtins that SPIR-V declares as one-element
	// arrays while the semantic is a scalar, such as SampleMask.
	element bool
}

// Writer generates HLSL source code from IR.
type Writer struct {
	module  *ir.Module
	program *ir.Program
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	namer         *namer
	names         map[uint32]string
	memberNames   map[memberKey]string
	builtinNames  map[uint32]string
	memberStatics map[memberKey]string
	samplerNames  map[uint32]string

	// Struct types that are only reached through byte address buffers.
	bufferBlocks map[uint32]bool

	// Sampler globals used for depth comparisons.
	comparisonSamplers map[uint32]bool

	inputs  []stageVar
	outputs []stageVar

	// Function context (set during function writing)
	fn            *ir.FunctionBody
	paramNames    []string
	paramSamplers map[uint32]string
	localNames    map[uint32]string
	baked         map[ir.ExpressionHandle]string

	// Helper functions, written between the declarations and the functions.
	helperKeys map[string]bool
	helperCode strings.Builder

	// Output tracking
	entryPointNames     map[string]string
	usedFeatures        FeatureFlags
	requiredShaderModel ShaderModel
	registerBindings    map[string]string
	helperOrder         []string
}

// newWriter creates a new HLSL writer.
func newWriter(module *ir.Module, program *ir.Program, options *Options) *Writer {
	return &Writer{
		module:              module,
		program:             program,
		options:             options,
		namer:               newNamer(),
		names:               make(map[uint32]string),
		memberNames:         make(map[memberKey]string),
		builtinNames:        make(map[uint32]string),
		memberStatics:       make(map[memberKey]string),
		samplerNames:        make(map[uint32]string),
		bufferBlocks:        make(map[uint32]bool),
		comparisonSamplers:  make(map[uint32]bool),
		helperKeys:          make(map[string]bool),
		entryPointNames:     make(map[string]string),
		registerBindings:    make(map[string]string),
		requiredShaderModel: options.ShaderModel,
	}
}

// String returns the generated HLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates HLSL code for the selected entry point.
func (w *Writer) writeModule() error {
	ep := w.program.EntryPoint
	if _, ok := ShaderStageToHLSL(ep.Model); !ok {
		return NewErrorAt(ErrUnsupportedFeature, ep.Function, "execution model %s is not supported", ep.Model)
	}
	w.entryPointNames[ep.Name] = EntryPointName

	// 1. Register all names and collect stage I/O
	if err := w.registerNames(); err != nil {
		return err
	}

	// 2. Find samplers used for depth comparisons
	w.findComparisonSamplers()

	// 3. Write type definitions (structs)
	w.writeTypes()

	// 4. Write constants
	if err := w.writeConstants(); err != nil {
		return err
	}

	// 5. Write resources and module-scope variables
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}

	// 6. Write stage I/O statics and structs
	w.writeStageIO()

	declarations := w.out.String()
	w.out.Reset()

	// 7. Write functions, callees first, then the main wrapper
	for _, fn := range w.program.Functions {
		if err := w.writeFunction(fn); err != nil {
			return err
		}
	}
	w.writeEntryPoint()

	// 8. Assemble, with the helpers the functions asked for in between
	functions := w.out.String()
	w.out.Reset()
	w.out.WriteString(declarations)
	w.out.WriteString(w.helperCode.String())
	w.out.WriteString(functions)
	return nil
}

// idName returns a debug-name based identifier for id.
func (w *Writer) idName(id uint32) string {
	if name, ok := w.module.Name(id); ok && sanitize(name) != "" {
		return w.namer.call(name)
	}
	return w.namer.call(fmt.Sprintf("_%d", id))
}

// registerNames assigns unique names to all module-scope entities.
func (w *Writer) registerNames() error {
	for _, v := range w.program.Globals {
		if w.module.IsStorageBuffer(v) {
			w.bufferBlocks[w.module.BaseType(v.Type)] = true
		}
	}

	for _, id := range w.module.Structs(w.program) {
		w.names[id] = w.idName(id)
		t := w.module.Types[id]
		used := make(map[string]bool, len(t.Members))
		for i := range t.Members {
			name, ok := w.module.MemberName(id, uint32(i))
			name = Escape(sanitize(name))
			if !ok || name == UnnamedIdentifier {
				name = fmt.Sprintf("_m%d", i)
			}
			for used[strings.ToLower(name)] {
				name += "_"
			}
			used[strings.ToLower(name)] = true
			w.memberNames[memberKey{id, uint32(i)}] = name
		}
	}

	if err := w.collectStageIO(); err != nil {
		return err
	}

	for _, v := range w.program.Globals {
		switch v.StorageClass {
		case spirv.StorageClassInput, spirv.StorageClassOutput:
			continue
		}
		w.names[v.ID] = w.idName(v.ID)
		if base := w.module.Types[w.module.BaseType(v.Type)]; base != nil && base.Kind == ir.TypeSampledImage {
			w.samplerNames[v.ID] = w.namer.call("_" + w.names[v.ID] + "_sampler")
		}
	}

	for _, c := range sortedConstants(w.module) {
		if c.Spec || w.module.IsComposite(c.Type) {
			w.names[c.ID] = w.idName(c.ID)
		}
	}

	for _, fn := range w.program.Functions[:len(w.program.Functions)-1] {
		w.names[fn.Function.ID] = w.idName(fn.Function.ID)
	}
	w.names[w.program.Entry().Function.ID] = entryFunctionName(w.program.EntryPoint.Model)
	return nil
}

// collectStageIO gathers the stage inputs and outputs of the entry point.
// Builtin block members become separate statics.
func (w *Writer) collectStageIO() error {
	model := w.program.EntryPoint.Model
	dec := w.module.Decorations

	for _, v := range w.program.Globals {
		if v.StorageClass != spirv.StorageClassInput && v.StorageClass != spirv.StorageClassOutput {
			continue
		}
		input := v.StorageClass == spirv.StorageClassInput
		valueType := w.module.Pointee(v.Type)
		base := w.module.BaseType(valueType)

		var vars []stageVar
		if b, ok := w.module.BuiltIn(v.ID); ok {
			sv, err := w.builtinVar(v.ID, b, valueType)
			if err != nil {
				return err
			}
			w.builtinNames[v.ID] = sv.name
			vars = append(vars, sv)
		} else if w.module.IsBuiltinBlock(base) {
			if base != valueType {
				return NewErrorAt(ErrUnsupportedFeature, v.ID, "arrayed builtin blocks are not supported")
			}
			for i, member := range w.module.Types[base].Members {
				b, ok := w.module.MemberBuiltIn(base, uint32(i))
				if !ok {
					continue
				}
				sv, err := w.builtinVar(v.ID, b, member)
				if err != nil {
					return err
				}
				w.memberStatics[memberKey{base, uint32(i)}] = sv.name
				vars = append(vars, sv)
			}
		} else if t := w.module.Types[base]; t != nil && t.Kind == ir.TypeStruct {
			return NewErrorAt(ErrUnsupportedFeature, v.ID, "stage I/O blocks are not supported")
		} else {
			loc, ok := dec.Decoration(v.ID, spirv.DecorationLocation)
			if !ok {
				return NewErrorAt(ErrInvalidModule, v.ID, "stage variable has no Location")
			}
			w.names[v.ID] = w.idName(v.ID)
			sv := stageVar{
				name:     w.names[v.ID],
				typ:      valueType,
				semantic: fmt.Sprintf("TEXCOORD%d", loc),
			}
			if !input && model == spirv.ExecutionModelFragment {
				sv.semantic = fmt.Sprintf("SV_Target%d", loc)
			}
			if (input && model == spirv.ExecutionModelFragment) || (!input && model == spirv.ExecutionModelVertex) {
				sv.modifiers = w.interpolation(v.ID)
			}
			vars = append(vars, sv)
		}

		if input {
			w.inputs = append(w.inputs, vars...)
		} else {
			w.outputs = append(w.outputs, vars...)
		}
	}
	return nil
}

// builtinVar describes a builtin stage variable.
func (w *Writer) builtinVar(id uint32, b spirv.BuiltIn, typ uint32) (stageVar, error) {
	sv := stageVar{
		name:      w.namer.call("gl_" + b.String()),
		typ:       typ,
		builtin:   b,
		isBuiltin: true,
	}
	semantic, ok := BuiltInToSemantic(b)
	if !ok {
		if b == spirv.BuiltInPointSize {
			// HLSL has no point size; writes go to the static only.
			return sv, nil
		}
		return sv, NewErrorAt(ErrUnsupportedFeature, id, "builtin %s is not supported", b)
	}
	sv.semantic = semantic
	if t := w.module.Types[typ]; t != nil && t.Kind == ir.TypeArray && b == spirv.BuiltInSampleMask {
		sv.element = true
	}
	return sv, nil
}

// interpolation returns the interpolation modifiers of stage I/O.
func (w *Writer) interpolation(id uint32) string {
	dec := w.module.Decorations
	var q string
	switch {
	case dec.Has(id, spirv.DecorationFlat):
		q = "nointerpolation "
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

// findComparisonSamplers marks the samplers and combined images that take
// part in depth comparisons, so they are declared as comparison samplers.
func (w *Writer) findComparisonSamplers() {
	for _, fn := range w.program.Functions {
		for _, e := range fn.Expressions {
			sample, ok := e.Kind.(ir.ExprImageSample)
			if !ok || sample.DepthRef == nil {
				continue
			}
			var root ir.ExpressionHandle
			if si, ok := fn.Expressions[sample.SampledImage].Kind.(ir.ExprSampledImage); ok {
				root = si.Sampler
			} else {
				root = sample.SampledImage
			}
			if id, ok := opaqueRoot(fn, root); ok {
				w.comparisonSamplers[id] = true
			}
		}
	}
}

// opaqueRoot finds the global an image or sampler value was loaded from.
func opaqueRoot(fn *ir.FunctionBody, h ir.ExpressionHandle) (uint32, bool) {
	for {
		switch k := fn.Expressions[h].Kind.(type) {
		case ir.ExprLoad:
			h = k.Pointer
		case ir.ExprAccess:
			h = k.Base
		case ir.ExprAccessIndex:
			h = k.Base
		case ir.ExprGlobalVariable:
			return k.Variable, true
		default:
			return 0, false
		}
	}
}

// bindTarget returns the register target of a resource.
func (w *Writer) bindTarget(v *ir.Variable) (BindTarget, error) {
	dec := w.module.Decorations
	set, _ := dec.Decoration(v.ID, spirv.DecorationDescriptorSet)
	binding, _ := dec.Decoration(v.ID, spirv.DecorationBinding)

	if target, ok := w.options.BindingMap[ResourceBinding{Group: set, Binding: binding}]; ok {
		return target, nil
	}
	if !w.options.FakeMissingBindings {
		return BindTarget{}, NewErrorAt(ErrMissingBinding, v.ID, "no register for set %d binding %d", set, binding)
	}
	if set > 255 {
		return BindTarget{}, NewErrorAt(ErrMissingBinding, v.ID, "descriptor set %d does not fit a register space", set)
	}
	return BindTarget{Space: uint8(set), Register: binding}, nil
}

// registerSuffix returns the register annotation of a resource and records
// it in the translation info.
func (w *Writer) registerSuffix(name string, target BindTarget, rt RegisterType) string {
	reg := target.register(rt, w.options.ShaderModel)
	w.registerBindings[name] = reg
	return " : " + reg
}

// requireHelper adds a helper function to the output once per key.
func (w *Writer) requireHelper(key, name, code string) {
	if w.helperKeys[key] {
		return
	}
	w.helperKeys[key] = true
	w.helperCode.WriteString(code)
	w.helperCode.WriteString("\n")
	for _, existing := range w.helperOrder {
		if existing == name {
			return
		}
	}
	w.helperOrder = append(w.helperOrder, name)
}

// requireShaderModel raises the reported minimum shader model.
func (w *Writer) requireShaderModel(sm ShaderModel) {
	if sm > w.requiredShaderModel {
		w.requiredShaderModel = sm
	}
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

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
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
