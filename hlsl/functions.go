// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Functions
// =============================================================================

// writeFunction writes a single function definition. The entry point body
// is written like any other function and called from main.
func (w *Writer) writeFunction(fn *ir.FunctionBody) error {
	w.fn = fn
	w.localNames = make(map[uint32]string)
	w.baked = make(map[ir.ExpressionHandle]string)
	w.paramNames = w.paramNames[:0]
	w.paramSamplers = make(map[uint32]string)
	defer func() { w.fn = nil }()

	args := make([]string, 0, len(fn.Function.Params))
	for i, p := range fn.Function.Params {
		name := w.idName(p.ID)
		w.paramNames = append(w.paramNames, name)

		valueType := w.module.Pointee(p.Type)
		base := w.module.Types[w.module.BaseType(valueType)]
		switch {
		case base != nil && base.Kind == ir.TypeSampledImage:
			sampler := w.namer.call("_" + name + "_sampler")
			w.paramSamplers[uint32(i)] = sampler //nolint:gosec // G115: parameter index
			args = append(args, w.typeDecl(valueType, name), SamplerToHLSL(false)+" "+sampler+w.arraySuffix(valueType))
		case w.module.IsOpaque(valueType) || (base != nil && (base.Kind == ir.TypeImage || base.Kind == ir.TypeSampler)):
			args = append(args, w.typeDecl(valueType, name))
		case valueType != p.Type:
			args = append(args, "inout "+w.typeDecl(valueType, name))
		default:
			args = append(args, w.typeDecl(valueType, name))
		}
	}

	returnType := w.typeName(fn.Function.ResultType)
	if w.isArray(fn.Function.ResultType) {
		return NewErrorAt(ErrUnsupportedFeature, fn.Function.ID, "functions returning arrays are not supported")
	}
	w.writeLine("%s %s(%s)", returnType, w.names[fn.Function.ID], strings.Join(args, ", "))
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

// =============================================================================
// Entry Point I/O
// =============================================================================

// writeStageIO declares the stage variables as statics and the structs
// main receives and returns them in.
func (w *Writer) writeStageIO() {
	if len(w.inputs)+len(w.outputs) == 0 {
		return
	}
	for _, sv := range append(append([]stageVar(nil), w.inputs...), w.outputs...) {
		w.writeLine("static %s;", w.typeDecl(sv.typ, sv.name))
	}
	w.writeLine("")
	w.writeStageStruct(InputStructName, w.inputs)
	w.writeStageStruct(OutputStructName, w.outputs)
}

// writeStageStruct writes SPIRV_Cross_Input or SPIRV_Cross_Output. Stage
// variables without a semantic are left out.
func (w *Writer) writeStageStruct(name string, vars []stageVar) {
	if !hasSemantics(vars) {
		return
	}
	w.writeLine("struct %s {", name)
	w.pushIndent()
	for _, sv := range vars {
		if sv.semantic == "" {
			continue
		}
		decl := w.typeDecl(sv.typ, sv.name)
		if sv.element {
			decl = w.typeName(sv.typ) + " " + sv.name
		}
		w.writeLine("%s%s : %s;", sv.modifiers, decl, sv.semantic)
	}
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
}

// hasSemantics reports whether any stage variable is passed through main.
func hasSemantics(vars []stageVar) bool {
	for _, sv := range vars {
		if sv.semantic != "" {
			return true
		}
	}
	return false
}

// writeEntryPoint writes main, which copies the stage inputs into their
// statics, calls the entry point body and gathers the outputs.
func (w *Writer) writeEntryPoint() {
	ep := w.program.EntryPoint
	switch ep.Model {
	case spirv.ExecutionModelGLCompute:
		size := w.module.WorkGroupSize(ep.Function)
		w.writeLine("[numthreads(%d, %d, %d)]", size[0], size[1], size[2])
	case spirv.ExecutionModelFragment:
		if _, ok := w.module.ExecutionModeOperands(ep.Function, spirv.ExecutionModeEarlyFragmentTests); ok {
			w.writeLine("[earlydepthstencil]")
		}
	}

	hasInput, hasOutput := hasSemantics(w.inputs), hasSemantics(w.outputs)
	returnType, params := "void", ""
	if hasOutput {
		returnType = OutputStructName
	}
	if hasInput {
		params = InputStructName + " " + StageInputName
	}
	w.writeLine("%s %s(%s)", returnType, EntryPointName, params)
	w.writeLine("{")
	w.pushIndent()

	for _, sv := range w.inputs {
		if sv.semantic == "" {
			continue
		}
		target := sv.name
		if sv.element {
			target += "[0]"
		}
		w.writeLine("%s = %s.%s;", target, StageInputName, sv.name)
		if sv.isBuiltin && sv.builtin == spirv.BuiltInFragCoord {
			// SV_Position.w holds w, where gl_FragCoord.w holds 1/w.
			w.writeLine("%s.w = 1.0 / %s.w;", sv.name, sv.name)
		}
	}

	w.writeLine("%s();", entryFunctionName(ep.Model))

	if hasOutput {
		w.writeLine("%s %s;", OutputStructName, StageOutputName)
		for _, sv := range w.outputs {
			if sv.semantic == "" {
				continue
			}
			source := sv.name
			if sv.element {
				source += "[0]"
			}
			w.writeLine("%s.%s = %s;", StageOutputName, sv.name, source)
		}
		w.writeLine("return %s;", StageOutputName)
	}

	w.popIndent()
	w.writeLine("}")
}
