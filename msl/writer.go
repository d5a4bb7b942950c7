package msl

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

// stageVar is a member of the entry point input or output struct, or a
// builtin passed as an entry point parameter.
type stageVar struct {
	name      string
	typ       uint32
	metalType string // declared type when it differs from typ
	attribute string

	builtin   spirv.BuiltIn
	isBuiltin bool
	param     bool
}

// paramKey identifies a function parameter.
type paramKey struct {
	function uint32
	index    uint32
}

// globalParam is an extra function parameter that carries a global into a
// function other than the entry point.
type globalParam struct {
	decl string
	arg  string
}

// slotKind is a Metal binding slot namespace.
type slotKind uint8

const (
	slotBuffer slotKind = iota
	slotTexture
	slotSampler
)

func (k slotKind) String() string {
	switch k {
	case slotTexture:
		return "texture"
	case slotSampler:
		return "sampler"
	}
	return "buffer"
}

// sizesBufferName is the parameter holding the byte sizes of the storage
// buffers, indexed by buffer slot.
const sizesBufferName = "spvBufferSizes"

// Writer generates MSL source code from IR.
type Writer struct {
	module   *ir.Module
	program  *ir.Program
	options  *Options
	pipeline *PipelineOptions

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	namer       *namer
	names       map[uint32]string
	memberNames map[memberKey]string

	// How globals and builtin block members are referenced in code.
	globalRefs   map[uint32]string
	memberRefs   map[memberKey]string
	samplerNames map[uint32]string

	// Images sampled with a depth comparison; declared as depth textures.
	depthImages map[uint32]bool
	depthParams map[paramKey]bool

	// Struct layouts, and the row-major matrix members declared transposed.
	structPlans map[uint32]*structPlan
	rowMajor    map[memberKey]bool

	// Entry point interface
	entryName      string
	inputStruct    string
	outputStruct   string
	inputs         []stageVar
	outputs        []stageVar
	resourceParams []string
	entryLocals    []string
	epilogue       []string

	// Extra parameters of the functions that use globals.
	globalParams map[uint32][]globalParam
	funcParams   map[uint32][]globalParam

	// Binding slots
	usedSlots   [3]map[uint8]bool
	bufferSlots map[uint32]uint8
	sizesSlot   uint8

	// Function context (set during function writing)
	fn            *ir.FunctionBody
	inEntry       bool
	paramNames    []string
	paramSamplers map[uint32]string
	localNames    map[uint32]string
	baked         map[ir.ExpressionHandle]string

	// Helper functions, written between the declarations and the functions.
	helperKeys map[string]bool
	helperCode strings.Builder

	// First error met where no error can be returned, see fail.
	err error

	// Output tracking
	entryPointNames  map[string]string
	needsSizesBuffer bool
	resourceSlots    map[string]string
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	return &namer{
		usedNames: make(map[string]struct{}),
	}
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	// First try the base name directly
	escaped := escapeName(base)
	if escaped == "" {
		escaped = "_unnamed"
	}
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

// reserve claims a name without escaping it.
func (n *namer) reserve(name string) {
	n.usedNames[name] = struct{}{}
}

// newWriter creates a new MSL writer.
func newWriter(module *ir.Module, program *ir.Program, options *Options, pipeline *PipelineOptions) *Writer {
	w := &Writer{
		module:          module,
		program:         program,
		options:         options,
		pipeline:        pipeline,
		namer:           newNamer(),
		names:           make(map[uint32]string),
		memberNames:     make(map[memberKey]string),
		globalRefs:      make(map[uint32]string),
		memberRefs:      make(map[memberKey]string),
		samplerNames:    make(map[uint32]string),
		depthImages:     make(map[uint32]bool),
		depthParams:     make(map[paramKey]bool),
		structPlans:     make(map[uint32]*structPlan),
		rowMajor:        make(map[memberKey]bool),
		globalParams:    make(map[uint32][]globalParam),
		funcParams:      make(map[uint32][]globalParam),
		bufferSlots:     make(map[uint32]uint8),
		helperKeys:      make(map[string]bool),
		entryPointNames: make(map[string]string),
		resourceSlots:   make(map[string]string),
	}
	for i := range w.usedSlots {
		w.usedSlots[i] = make(map[uint8]bool)
	}
	return w
}

// String returns the generated MSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates MSL code for the selected entry point.
func (w *Writer) writeModule() error {
	if stageKeyword(w.program.EntryPoint.Model) == "" {
		return fmt.Errorf("execution model %s is not supported", w.program.EntryPoint.Model)
	}

	// 1. Write header
	w.writeHeader()

	// 2. Register all names, stage I/O and resources
	if err := w.registerNames(); err != nil {
		return err
	}
	w.findDepthImages()
	if err := w.collectStageIO(); err != nil {
		return err
	}
	if err := w.collectResources(); err != nil {
		return err
	}
	w.collectFunctionGlobals()

	// 3. Write type definitions
	if err := w.writeTypes(); err != nil {
		return err
	}

	// 4. Write constants
	if err := w.writeConstants(); err != nil {
		return err
	}

	// 5. Write the entry point interface structs
	w.writeStageStructs()

	declarations := w.out.String()
	w.out.Reset()

	// 6. Write functions, callees first, the entry point last
	functions := w.program.Functions
	for _, fn := range functions[:len(functions)-1] {
		if err := w.writeFunction(fn); err != nil {
			return err
		}
	}
	if err := w.writeEntryPoint(functions[len(functions)-1]); err != nil {
		return err
	}

	// 7. Assemble, with the helpers the functions asked for in between
	body := w.out.String()
	w.out.Reset()
	w.out.WriteString(declarations)
	w.out.WriteString(w.helperCode.String())
	w.out.WriteString(body)
	return w.err
}

// writeHeader writes the MSL file header.
func (w *Writer) writeHeader() {
	w.writeLine("#include <metal_stdlib>")
	w.writeLine("#include <simd/simd.h>")
	w.writeLine("")
	w.writeLine("using metal::uint;")
	w.writeLine("")
}

// idName returns a debug-name based identifier for id.
func (w *Writer) idName(id uint32) string {
	if name, ok := w.module.Name(id); ok && sanitize(name) != "" {
		return w.namer.call(name)
	}
	return w.namer.call(fmt.Sprintf("_%d", id))
}

// registerNames assigns unique names to the structs, constants, globals
// and functions of the program.
func (w *Writer) registerNames() error {
	ep := w.program.EntryPoint
	if ep.Name == "main" {
		w.entryName = "main0"
		w.namer.reserve(w.entryName)
	} else {
		w.entryName = w.namer.call(ep.Name)
	}
	w.inputStruct = w.namer.call(w.entryName + "_in")
	w.outputStruct = w.namer.call(w.entryName + "_out")
	w.entryPointNames[ep.Name] = w.entryName

	for _, id := range w.module.Structs(w.program) {
		w.names[id] = w.idName(id)
		t := w.module.Types[id]
		used := make(map[string]bool, len(t.Members))
		for i := range t.Members {
			name, ok := w.module.MemberName(id, uint32(i))
			name = escapeName(name)
			if !ok || name == "" {
				name = fmt.Sprintf("_m%d", i)
			}
			for used[name] {
				name += "_"
			}
			used[name] = true
			w.memberNames[memberKey{id, uint32(i)}] = name
		}
	}

	for _, c := range sortedConstants(w.module) {
		if c.Spec || w.module.IsComposite(c.Type) {
			w.names[c.ID] = w.idName(c.ID)
		}
	}

	for _, v := range w.program.Globals {
		switch v.StorageClass {
		case spirv.StorageClassInput, spirv.StorageClassOutput:
			continue
		}
		w.names[v.ID] = w.idName(v.ID)
		w.globalRefs[v.ID] = w.names[v.ID]
		if base := w.module.Types[w.module.BaseType(v.Type)]; base != nil && base.Kind == ir.TypeSampledImage {
			w.samplerNames[v.ID] = w.namer.call(w.names[v.ID] + "Smplr")
		}
	}

	for _, fn := range w.program.Functions[:len(w.program.Functions)-1] {
		w.names[fn.Function.ID] = w.idName(fn.Function.ID)
	}
	return nil
}

// findDepthImages marks the images that take part in depth comparisons,
// so they are declared as depth textures.
func (w *Writer) findDepthImages() {
	for _, fn := range w.program.Functions {
		for _, e := range fn.Expressions {
			sample, ok := e.Kind.(ir.ExprImageSample)
			if !ok || sample.DepthRef == nil {
				continue
			}
			root := sample.SampledImage
			if si, ok := fn.Expressions[root].Kind.(ir.ExprSampledImage); ok {
				root = si.Image
			}
			if id, ok := opaqueRoot(fn, root); ok {
				w.depthImages[id] = true
			} else if index, ok := argumentRoot(fn, root); ok {
				w.depthParams[paramKey{fn.Function.ID, index}] = true
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

// argumentRoot finds the function parameter an image value comes from.
func argumentRoot(fn *ir.FunctionBody, h ir.ExpressionHandle) (uint32, bool) {
	for {
		switch k := fn.Expressions[h].Kind.(type) {
		case ir.ExprLoad:
			h = k.Pointer
		case ir.ExprAccess:
			h = k.Base
		case ir.ExprAccessIndex:
			h = k.Base
		case ir.ExprFunctionArgument:
			return k.Index, true
		default:
			return 0, false
		}
	}
}

// =============================================================================
// Stage I/O
// =============================================================================

// collectStageIO sorts the entry point interface into the input struct,
// the output struct and builtin parameters.
//
//nolint:gocognit,gocyclo,cyclop,funlen // one branch per interface variable shape
func (w *Writer) collectStageIO() error {
	model := w.program.EntryPoint.Model
	for _, v := range w.program.Globals {
		if v.StorageClass != spirv.StorageClassInput && v.StorageClass != spirv.StorageClassOutput {
			continue
		}
		input := v.StorageClass == spirv.StorageClassInput
		valueType := w.module.Pointee(v.Type)
		base := w.module.BaseType(valueType)

		if b, ok := w.module.BuiltIn(v.ID); ok {
			if err := w.addBuiltin(v.ID, b, valueType, input, func(ref string) { w.globalRefs[v.ID] = ref }); err != nil {
				return err
			}
			continue
		}

		if w.module.IsBuiltinBlock(base) {
			if input || base != valueType {
				return fmt.Errorf("builtin block %%%d: only non-arrayed output blocks are supported", v.ID)
			}
			for i, member := range w.module.Types[base].Members {
				b, ok := w.module.MemberBuiltIn(base, uint32(i))
				if !ok {
					continue
				}
				key := memberKey{base, uint32(i)}
				if err := w.addBuiltin(v.ID, b, member, false, func(ref string) { w.memberRefs[key] = ref }); err != nil {
					return err
				}
			}
			continue
		}

		t := w.module.Types[valueType]
		if t == nil || t.Kind == ir.TypeStruct || t.Kind == ir.TypeMatrix || t.Kind == ir.TypeArray {
			return fmt.Errorf("stage variable %%%d: only scalar and vector stage I/O is supported", v.ID)
		}
		loc, ok := w.module.Decorations.Decoration(v.ID, spirv.DecorationLocation)
		if !ok {
			return fmt.Errorf("stage variable %%%d has no Location", v.ID)
		}
		sv := stageVar{name: w.idName(v.ID), typ: valueType}
		switch {
		case input && model == spirv.ExecutionModelVertex:
			sv.attribute = fmt.Sprintf("[[attribute(%d)]]", loc)
		case input:
			sv.attribute = fmt.Sprintf("[[user(locn%d)%s]]", loc, w.interpolation(v.ID))
		case model == spirv.ExecutionModelFragment:
			if index, ok := w.module.Decorations.Decoration(v.ID, spirv.DecorationIndex); ok {
				sv.attribute = fmt.Sprintf("[[color(%d), index(%d)]]", loc, index)
			} else {
				sv.attribute = fmt.Sprintf("[[color(%d)]]", loc)
			}
		default:
			sv.attribute = fmt.Sprintf("[[user(locn%d)%s]]", loc, w.interpolation(v.ID))
		}
		if input {
			w.inputs = append(w.inputs, sv)
			w.globalRefs[v.ID] = "in." + sv.name
			w.globalParams[v.ID] = []globalParam{{decl: "const thread " + w.inputStruct + "& in", arg: "in"}}
		} else {
			w.outputs = append(w.outputs, sv)
			w.globalRefs[v.ID] = "out." + sv.name
			w.globalParams[v.ID] = []globalParam{w.outputParam()}
		}
	}
	return nil
}

// outputParam carries the output struct into a function.
func (w *Writer) outputParam() globalParam {
	return globalParam{decl: "thread " + w.outputStruct + "& out", arg: "out"}
}

// addBuiltin adds a builtin stage variable. setRef receives how code
// refers to it.
//
//nolint:gocyclo,cyclop // one case per builtin shape
func (w *Writer) addBuiltin(id uint32, b spirv.BuiltIn, typ uint32, input bool, setRef func(string)) error {
	model := w.program.EntryPoint.Model
	name := w.namer.call("gl_" + b.String())
	attr, metalType, ok := builtinAttribute(b, model, input)
	if !ok {
		return fmt.Errorf("builtin %s is not supported as %s", b, ioDirection(input))
	}

	if !input {
		if b == spirv.BuiltInPointSize && !w.pipeline.AllowAndForcePointSize {
			w.entryLocals = append(w.entryLocals, fmt.Sprintf("float %s = 1.0;", name))
			setRef(name)
			w.globalParams[id] = append(w.globalParams[id], globalParam{decl: "thread float& " + name, arg: name})
			return nil
		}
		if b == spirv.BuiltInSampleMask {
			// SPIR-V writes the mask through a one-element array.
			local := w.namer.call(name + "_out")
			w.entryLocals = append(w.entryLocals, fmt.Sprintf("%s;", w.typeDecl(typ, local)))
			w.epilogue = append(w.epilogue, fmt.Sprintf("out.%s = uint(%s[0]);", name, local))
			w.outputs = append(w.outputs, stageVar{name: name, typ: typ, metalType: metalType, attribute: attr, builtin: b, isBuiltin: true})
			setRef(local)
			w.globalParams[id] = append(w.globalParams[id], globalParam{decl: w.referenceDecl("thread", typ, local), arg: local})
			return nil
		}
		w.outputs = append(w.outputs, stageVar{name: name, typ: typ, metalType: metalType, attribute: attr, builtin: b, isBuiltin: true})
		setRef("out." + name)
		w.globalParams[id] = append(w.globalParams[id], w.outputParam())
		return nil
	}

	sv := stageVar{name: name, typ: typ, metalType: metalType, attribute: attr, builtin: b, isBuiltin: true, param: true}
	w.inputs = append(w.inputs, sv)
	ref := name
	if b == spirv.BuiltInSampleMask {
		local := w.namer.call(name + "_in")
		w.entryLocals = append(w.entryLocals, fmt.Sprintf("%s = { %s(%s) };", w.typeDecl(typ, local), w.typeName(w.module.BaseType(typ)), name))
		w.globalParams[id] = []globalParam{{decl: w.referenceDecl("thread", typ, local), arg: local}}
		setRef(local)
		return nil
	}
	if metalType != "" && metalType != w.typeName(typ) {
		ref = fmt.Sprintf("%s(%s)", w.typeName(typ), name)
	}
	declType := metalType
	if declType == "" {
		declType = w.typeName(typ)
	}
	w.globalParams[id] = []globalParam{{decl: declType + " " + name, arg: name}}
	setRef(ref)
	return nil
}

func ioDirection(input bool) string {
	if input {
		return "input"
	}
	return "output"
}

// interpolation returns the interpolation attribute suffix of a fragment
// input or vertex output.
func (w *Writer) interpolation(id uint32) string {
	dec := w.module.Decorations
	if dec.Has(id, spirv.DecorationFlat) {
		return ", flat"
	}
	perspective := "perspective"
	if dec.Has(id, spirv.DecorationNoPerspective) {
		perspective = "no_perspective"
	}
	switch {
	case dec.Has(id, spirv.DecorationCentroid):
		return ", centroid_" + perspective
	case dec.Has(id, spirv.DecorationSample):
		return ", sample_" + perspective
	case perspective != "perspective":
		return ", center_" + perspective
	}
	return ""
}

// =============================================================================
// Resources
// =============================================================================

// collectResources assigns binding slots to the resources and builds the
// entry point parameters and locals that declare the module-scope globals.
//
//nolint:gocognit,gocyclo,cyclop,funlen // one branch per storage class
func (w *Writer) collectResources() error {
	// Explicit bindings claim their slots before generated ones.
	resources := w.options.PerEntryPointMap[w.program.EntryPoint.Name]
	for _, target := range resources.Resources {
		for kind, slot := range []*uint8{target.Buffer, target.Texture, target.Sampler} {
			if slot != nil {
				w.usedSlots[kind][*slot] = true
			}
		}
	}
	if resources.PushConstantBuffer != nil {
		w.usedSlots[slotBuffer][*resources.PushConstantBuffer] = true
	}
	w.sizesSlot = defaultSizesBuffer
	if resources.SizesBuffer != nil {
		w.sizesSlot = *resources.SizesBuffer
	}
	if w.usesArrayLength() {
		w.needsSizesBuffer = true
		w.usedSlots[slotBuffer][w.sizesSlot] = true
	}

	for _, v := range w.program.Globals {
		name := w.names[v.ID]
		valueType := w.module.Pointee(v.Type)
		base := w.module.Types[w.module.BaseType(valueType)]

		switch v.StorageClass {
		case spirv.StorageClassInput, spirv.StorageClassOutput, spirv.StorageClassAtomicCounter:
			continue

		case spirv.StorageClassUniform, spirv.StorageClassStorageBuffer, spirv.StorageClassPushConstant:
			if w.isArray(valueType) {
				return fmt.Errorf("buffer %s: arrays of buffers are not supported", name)
			}
			var slot uint8
			var err error
			if v.StorageClass == spirv.StorageClassPushConstant && resources.PushConstantBuffer != nil {
				slot = *resources.PushConstantBuffer
			} else if v.StorageClass == spirv.StorageClassPushConstant {
				slot, err = w.fakeSlot(slotBuffer, 0)
			} else {
				slot, err = w.bindSlot(v, slotBuffer)
			}
			if err != nil {
				return err
			}
			space := "constant"
			if w.module.IsStorageBuffer(v) {
				space = "device"
				if w.module.IsReadOnlyBuffer(v) {
					space = "const device"
				}
				w.bufferSlots[v.ID] = slot
			}
			decl := fmt.Sprintf("%s %s& %s", space, w.typeName(valueType), name)
			w.addResourceParam(v.ID, decl, name, w.slotAttribute(name, slotBuffer, slot))

		case spirv.StorageClassUniformConstant:
			if base == nil {
				return fmt.Errorf("resource %s has no type", name)
			}
			switch base.Kind {
			case ir.TypeSampler:
				slot, err := w.bindSlot(v, slotSampler)
				if err != nil {
					return err
				}
				w.addResourceParam(v.ID, w.opaqueDecl(valueType, "metal::sampler", name), name, w.slotAttribute(name, slotSampler, slot))
			case ir.TypeImage:
				slot, err := w.bindSlot(v, slotTexture)
				if err != nil {
					return err
				}
				texType, err := w.imageTypeName(base, w.depthImages[v.ID], w.imageAccess(v.ID, base))
				if err != nil {
					return fmt.Errorf("resource %s: %w", name, err)
				}
				w.addResourceParam(v.ID, w.opaqueDecl(valueType, texType, name), name, w.slotAttribute(name, slotTexture, slot))
			case ir.TypeSampledImage:
				img := w.module.Types[base.Elem]
				if img == nil {
					return fmt.Errorf("resource %s has no image type", name)
				}
				texSlot, err := w.bindSlot(v, slotTexture)
				if err != nil {
					return err
				}
				smpSlot, err := w.bindSlot(v, slotSampler)
				if err != nil {
					return err
				}
				texType, err := w.imageTypeName(img, w.depthImages[v.ID], "")
				if err != nil {
					return fmt.Errorf("resource %s: %w", name, err)
				}
				sampler := w.samplerNames[v.ID]
				w.addResourceParam(v.ID, w.opaqueDecl(valueType, texType, name), name, w.slotAttribute(name, slotTexture, texSlot))
				w.addResourceParam(v.ID, w.opaqueDecl(valueType, "metal::sampler", sampler), sampler, w.slotAttribute(sampler, slotSampler, smpSlot))
			default:
				return fmt.Errorf("resource %s: uniform constants of this type are not supported", name)
			}

		case spirv.StorageClassPrivate:
			init := ""
			if v.Initializer != 0 {
				value, err := w.initializer(v.Initializer)
				if err != nil {
					return err
				}
				init = " = " + value
			} else {
				init = " = {}"
			}
			w.entryLocals = append(w.entryLocals, fmt.Sprintf("%s%s;", w.typeDecl(valueType, name), init))
			w.globalParams[v.ID] = []globalParam{{decl: w.referenceDecl("thread", valueType, name), arg: name}}

		case spirv.StorageClassWorkgroup:
			w.entryLocals = append(w.entryLocals, fmt.Sprintf("threadgroup %s;", w.typeDecl(valueType, name)))
			w.globalParams[v.ID] = []globalParam{{decl: w.referenceDecl("threadgroup", valueType, name), arg: name}}

		default:
			return fmt.Errorf("global %s: storage class %s is not supported", name, v.StorageClass)
		}
	}

	if w.needsSizesBuffer {
		w.resourceParams = append(w.resourceParams, fmt.Sprintf("constant uint* %s [[buffer(%d)]]", sizesBufferName, w.sizesSlot))
	}
	return nil
}

// addResourceParam adds an entry point parameter for a resource and the
// matching parameter for functions that use it.
func (w *Writer) addResourceParam(id uint32, decl, name, attribute string) {
	w.resourceParams = append(w.resourceParams, decl+" "+attribute)
	w.globalParams[id] = append(w.globalParams[id], globalParam{decl: decl, arg: name})
}

// opaqueDecl declares a texture or sampler, wrapping arrays in metal::array.
func (w *Writer) opaqueDecl(valueType uint32, elem, name string) string {
	if n, ok := w.module.ArrayLength(valueType); ok {
		return fmt.Sprintf("metal::array<%s, %d> %s", elem, n, name)
	}
	return elem + " " + name
}

// referenceDecl declares a reference parameter in an address space.
func (w *Writer) referenceDecl(space string, valueType uint32, name string) string {
	return fmt.Sprintf("%s %s& %s", space, w.typeName(valueType), name)
}

// imageAccess returns the access qualifier of a storage image.
func (w *Writer) imageAccess(id uint32, t *ir.Type) string {
	if t.Image.Sampled != 2 || t.Image.Dim == spirv.DimSubpassData {
		return ""
	}
	switch {
	case w.module.Decorations.Has(id, spirv.DecorationNonWritable):
		return "metal::access::read"
	case w.module.Decorations.Has(id, spirv.DecorationNonReadable):
		return "metal::access::write"
	}
	return "metal::access::read_write"
}

// bindSlot returns the slot of a resource in one slot namespace.
func (w *Writer) bindSlot(v *ir.Variable, kind slotKind) (uint8, error) {
	dec := w.module.Decorations
	set, _ := dec.Decoration(v.ID, spirv.DecorationDescriptorSet)
	binding, _ := dec.Decoration(v.ID, spirv.DecorationBinding)

	resources := w.options.PerEntryPointMap[w.program.EntryPoint.Name]
	if target, ok := resources.Resources[ResourceBinding{Group: set, Binding: binding}]; ok {
		slot := [3]*uint8{target.Buffer, target.Texture, target.Sampler}[kind]
		if slot == nil {
			return 0, fmt.Errorf("set %d binding %d has no %s slot", set, binding, kind)
		}
		return *slot, nil
	}
	if !w.options.FakeMissingBindings {
		return 0, fmt.Errorf("no Metal %s slot for set %d binding %d", kind, set, binding)
	}
	want := uint8(0)
	if binding <= 255 {
		want = uint8(binding)
	}
	return w.fakeSlot(kind, want)
}

// fakeSlot claims want, or the next free slot after it.
func (w *Writer) fakeSlot(kind slotKind, want uint8) (uint8, error) {
	for i := 0; i < 256; i++ {
		slot := want + uint8(i) //nolint:gosec // G115: wraps within the slot range
		if !w.usedSlots[kind][slot] {
			w.usedSlots[kind][slot] = true
			return slot, nil
		}
	}
	return 0, fmt.Errorf("out of %s slots", kind)
}

// slotAttribute returns the binding attribute of a resource and records it
// in the translation info.
func (w *Writer) slotAttribute(name string, kind slotKind, slot uint8) string {
	attr := fmt.Sprintf("[[%s(%d)]]", kind, slot)
	w.resourceSlots[name] = attr
	return attr
}

// usesArrayLength reports whether the program queries a runtime array length.
func (w *Writer) usesArrayLength() bool {
	for _, fn := range w.program.Functions {
		for _, e := range fn.Expressions {
			if _, ok := e.Kind.(ir.ExprArrayLength); ok {
				return true
			}
		}
	}
	return false
}

// collectFunctionGlobals works out which globals each function other than
// the entry point uses, directly or through its callees, so they can be
// passed as parameters.
func (w *Writer) collectFunctionGlobals() {
	functions := w.program.Functions
	for _, fn := range functions[:len(functions)-1] {
		var params []globalParam
		seen := make(map[string]bool)
		add := func(ps []globalParam) {
			for _, p := range ps {
				if !seen[p.arg] {
					seen[p.arg] = true
					params = append(params, p)
				}
			}
		}
		for _, e := range fn.Expressions {
			switch k := e.Kind.(type) {
			case ir.ExprGlobalVariable:
				add(w.globalParams[k.Variable])
			case ir.ExprArrayLength:
				add([]globalParam{{decl: "constant uint* " + sizesBufferName, arg: sizesBufferName}})
			}
		}
		walkCalls(fn.Body, func(callee uint32) { add(w.funcParams[callee]) })
		w.funcParams[fn.Function.ID] = params
	}
}

// walkCalls calls visit for every function called in a block.
func walkCalls(block ir.Block, visit func(uint32)) {
	for _, stmt := range block {
		switch k := stmt.Kind.(type) {
		case ir.StmtCall:
			visit(k.Function)
		case ir.StmtIf:
			walkCalls(k.Accept, visit)
			walkCalls(k.Reject, visit)
		case ir.StmtSwitch:
			for _, c := range k.Cases {
				walkCalls(c.Body, visit)
			}
		case ir.StmtLoop:
			walkCalls(k.Body, visit)
			walkCalls(k.Continuing, visit)
		}
	}
}

// requireHelper adds a helper function to the output once per key.
func (w *Writer) requireHelper(key, code string) {
	if w.helperKeys[key] {
		return
	}
	w.helperKeys[key] = true
	w.helperCode.WriteString(code)
	w.helperCode.WriteString("\n")
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

// Output helpers

// writeLine writes a line with optional format args and a newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
