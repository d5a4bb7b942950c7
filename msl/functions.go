package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Functions
// =============================================================================

// beginFunction resets the per-function state.
func (w *Writer) beginFunction(fn *ir.FunctionBody) {
	w.fn = fn
	w.localNames = make(map[uint32]string)
	w.baked = make(map[ir.ExpressionHandle]string)
	w.paramNames = w.paramNames[:0]
	w.paramSamplers = make(map[uint32]string)
}

// writeFunction writes a function other than the entry point. The globals
// it uses are passed as trailing parameters.
func (w *Writer) writeFunction(fn *ir.FunctionBody) error {
	w.beginFunction(fn)
	defer func() { w.fn = nil }()

	params := make([]string, 0, len(fn.Function.Params))
	for i, p := range fn.Function.Params {
		name := w.idName(p.ID)
		w.paramNames = append(w.paramNames, name)
		decl, err := w.paramDecl(fn, uint32(i), p.Type, name) //nolint:gosec // G115: parameter index
		if err != nil {
			return err
		}
		params = append(params, decl...)
	}
	for _, gp := range w.funcParams[fn.Function.ID] {
		params = append(params, gp.decl)
	}

	w.writeLine("%s %s(%s) {", w.typeName(fn.Function.ResultType), w.names[fn.Function.ID], strings.Join(params, ", "))
	w.pushIndent()
	if err := w.writeLocals(fn); err != nil {
		return err
	}
	if err := w.writeBlock(fn.Body); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return w.err
}

// paramDecl declares a function parameter. A combined image becomes a
// texture and a sampler parameter; pointers become references in the
// address space of their storage class.
func (w *Writer) paramDecl(fn *ir.FunctionBody, index, typ uint32, name string) ([]string, error) {
	t := w.module.Types[typ]
	if t == nil {
		return nil, fmt.Errorf("parameter %s has no type", name)
	}
	switch t.Kind {
	case ir.TypeSampledImage:
		img := w.module.Types[t.Elem]
		if img == nil {
			return nil, fmt.Errorf("parameter %s has no image type", name)
		}
		texType, err := w.imageTypeName(img, w.depthParams[paramKey{fn.Function.ID, index}], "")
		if err != nil {
			return nil, err
		}
		sampler := w.namer.call(name + "Smplr")
		w.paramSamplers[index] = sampler
		return []string{texType + " " + name, "metal::sampler " + sampler}, nil
	case ir.TypeImage:
		texType, err := w.imageTypeName(t, w.depthParams[paramKey{fn.Function.ID, index}], w.defaultAccess(t))
		if err != nil {
			return nil, err
		}
		return []string{texType + " " + name}, nil
	case ir.TypePointer:
		pointee := w.module.Types[t.Elem]
		if pointee != nil && (pointee.Kind == ir.TypeImage || pointee.Kind == ir.TypeSampler || pointee.Kind == ir.TypeSampledImage) {
			return nil, fmt.Errorf("parameter %s: pointers to opaque types are not supported", name)
		}
		return []string{w.referenceDecl(addressSpace(t.StorageClass), t.Elem, name)}, nil
	}
	return []string{w.typeDecl(typ, name)}, nil
}

// addressSpace returns the Metal address space of a storage class.
func addressSpace(sc spirv.StorageClass) string {
	switch sc {
	case spirv.StorageClassWorkgroup:
		return "threadgroup"
	case spirv.StorageClassStorageBuffer:
		return "device"
	case spirv.StorageClassUniform, spirv.StorageClassPushConstant:
		return "constant"
	}
	return "thread"
}

// writeLocals declares the function variables.
func (w *Writer) writeLocals(fn *ir.FunctionBody) error {
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
	return nil
}

// =============================================================================
// Entry Point
// =============================================================================

// writeEntryPoint writes the entry point function. Its parameters are the
// stage input struct, the resources and the builtin inputs; it returns the
// stage output struct.
func (w *Writer) writeEntryPoint(fn *ir.FunctionBody) error {
	w.beginFunction(fn)
	w.inEntry = true
	defer func() {
		w.fn = nil
		w.inEntry = false
	}()

	ep := w.program.EntryPoint
	var params []string
	if w.hasStageInput() {
		params = append(params, fmt.Sprintf("%s in [[stage_in]]", w.inputStruct))
	}
	params = append(params, w.resourceParams...)
	for _, sv := range w.inputs {
		if !sv.param {
			continue
		}
		declType := sv.metalType
		if declType == "" {
			declType = w.typeName(sv.typ)
		}
		params = append(params, fmt.Sprintf("%s %s %s", declType, sv.name, sv.attribute))
	}

	returnType := "void"
	if len(w.outputs) > 0 {
		returnType = w.outputStruct
	}
	if ep.Model == spirv.ExecutionModelFragment {
		if _, ok := w.module.ExecutionModeOperands(ep.Function, spirv.ExecutionModeEarlyFragmentTests); ok {
			w.writeLine("[[early_fragment_tests]]")
		}
	}
	w.writeLine("%s %s %s(%s) {", stageKeyword(ep.Model), returnType, w.entryName, strings.Join(params, ", "))
	w.pushIndent()

	if len(w.outputs) > 0 {
		w.writeLine("%s out = {};", w.outputStruct)
	}
	for _, line := range w.entryLocals {
		w.writeLine("%s", line)
	}
	if err := w.writeLocals(fn); err != nil {
		return err
	}
	if err := w.writeBlock(fn.Body); err != nil {
		return err
	}
	if len(w.outputs) > 0 && !endsWithReturn(fn.Body) {
		w.writeEntryReturn()
	}

	w.popIndent()
	w.writeLine("}")
	return w.err
}

// endsWithReturn reports whether a block ends in a return.
func endsWithReturn(block ir.Block) bool {
	if len(block) == 0 {
		return false
	}
	_, ok := block[len(block)-1].Kind.(ir.StmtReturn)
	return ok
}
