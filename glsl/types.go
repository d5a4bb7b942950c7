// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// glslTypeSampler is the GLSL type name for samplers.
const glslTypeSampler = "sampler"

// typeName returns the GLSL name for a type, without array dimensions.
func (w *Writer) typeName(id uint32) string {
	t := w.module.Types[id]
	if t == nil {
		return "unknown_type"
	}
	switch t.Kind {
	case ir.TypeVoid:
		return "void"
	case ir.TypeBool, ir.TypeInt, ir.TypeFloat:
		return w.scalarToGLSL(t)
	case ir.TypeVector:
		return w.vectorToGLSL(w.module.Types[t.Elem], t.Count)
	case ir.TypeMatrix:
		col := w.module.Types[t.Elem]
		prefix := ""
		if s := w.module.Scalar(id); s != nil && s.Width == 64 {
			prefix = "d"
		}
		if col == nil || col.Count == t.Count {
			return fmt.Sprintf("%smat%d", prefix, t.Count)
		}
		return fmt.Sprintf("%smat%dx%d", prefix, t.Count, col.Count)
	case ir.TypeArray, ir.TypeRuntimeArray, ir.TypePointer:
		return w.typeName(t.Elem)
	case ir.TypeStruct:
		if name, ok := w.names[id]; ok {
			return name
		}
		return fmt.Sprintf("_%d", id)
	case ir.TypeSampler:
		return glslTypeSampler
	case ir.TypeImage:
		return w.imageToGLSL(t, false)
	case ir.TypeSampledImage:
		img := w.module.Types[t.Elem]
		if img == nil {
			return "unknown_type"
		}
		return w.imageToGLSL(img, true)
	}
	return "unknown_type"
}

// scalarToGLSL returns the GLSL name for a scalar type.
func (w *Writer) scalarToGLSL(t *ir.Type) string {
	switch t.Kind {
	case ir.TypeBool:
		return "bool"
	case ir.TypeFloat:
		switch t.Width {
		case 64:
			return "double"
		case 16:
			w.requireExtension("GL_EXT_shader_explicit_arithmetic_types_float16")
			return "float16_t"
		}
		return "float"
	case ir.TypeInt:
		if t.Width == 64 {
			w.requireExtension("GL_ARB_gpu_shader_int64")
			if t.Signed {
				return "int64_t"
			}
			return "uint64_t"
		}
		if t.Signed {
			return "int"
		}
		return "uint"
	}
	return "unknown_type"
}

// vectorToGLSL returns the GLSL name for a vector type.
func (w *Writer) vectorToGLSL(scalar *ir.Type, size uint32) string {
	return fmt.Sprintf("%svec%d", scalarPrefix(scalar), size)
}

// scalarPrefix returns the letter GLSL puts in front of vector and sampler
// names for a component type.
func scalarPrefix(scalar *ir.Type) string {
	if scalar == nil {
		return ""
	}
	switch scalar.Kind {
	case ir.TypeBool:
		return "b"
	case ir.TypeInt:
		if scalar.Signed {
			return "i"
		}
		return "u"
	case ir.TypeFloat:
		if scalar.Width == 64 {
			return "d"
		}
	}
	return ""
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
		return "[]" + w.arraySuffix(t.Elem)
	case ir.TypeRuntimeArray:
		return "[]" + w.arraySuffix(t.Elem)
	case ir.TypePointer:
		return w.arraySuffix(t.Elem)
	}
	return ""
}

// typeDecl declares name with the given type, e.g. "vec4 colors[4]".
func (w *Writer) typeDecl(id uint32, name string) string {
	return w.typeName(id) + " " + name + w.arraySuffix(id)
}

// constructorName is the name used to construct a value of the type, which
// for arrays includes the dimensions.
func (w *Writer) constructorName(id uint32) string {
	return w.typeName(id) + w.arraySuffix(id)
}

// imageToGLSL returns the GLSL name for an image/texture type. Combined
// image samplers, and separate sampled images outside Vulkan GLSL, are
// sampler types.
func (w *Writer) imageToGLSL(t *ir.Type, combined bool) string {
	img := t.Image
	prefix := scalarPrefix(w.module.Types[t.Elem])

	if img.Dim == spirv.DimSubpassData {
		if !w.options.Vulkan {
			return prefix + "sampler2D"
		}
		if img.Multisampled {
			return prefix + "subpassInputMS"
		}
		return prefix + "subpassInput"
	}

	var kind string
	switch {
	case img.Sampled == 2:
		kind = "image"
	case combined || !w.options.Vulkan:
		kind = glslTypeSampler
	default:
		kind = "texture"
	}

	var dim string
	switch img.Dim {
	case spirv.Dim1D:
		dim = "1D"
	case spirv.Dim3D:
		dim = "3D"
	case spirv.DimCube:
		dim = "Cube"
	case spirv.DimRect:
		dim = "2DRect"
	case spirv.DimBuffer:
		dim = "Buffer"
	default:
		dim = "2D"
	}
	name := prefix + kind + dim
	if img.Multisampled {
		name += "MS"
	}
	if img.Arrayed {
		name += "Array"
	}
	if img.Depth == 1 && kind == glslTypeSampler {
		name += "Shadow"
	}
	return name
}

// imageFormat returns the layout qualifier of a storage image format.
func imageFormat(f spirv.ImageFormat) string {
	switch f {
	case spirv.ImageFormatRgba32f:
		return "rgba32f"
	case spirv.ImageFormatRgba16f:
		return "rgba16f"
	case spirv.ImageFormatR32f:
		return "r32f"
	case spirv.ImageFormatRgba8:
		return "rgba8"
	case spirv.ImageFormatRgba8Snorm:
		return "rgba8_snorm"
	case spirv.ImageFormatRg32f:
		return "rg32f"
	case spirv.ImageFormatRg16f:
		return "rg16f"
	case spirv.ImageFormatR11fG11fB10f:
		return "r11f_g11f_b10f"
	case spirv.ImageFormatR16f:
		return "r16f"
	case spirv.ImageFormatRgba16:
		return "rgba16"
	case spirv.ImageFormatRgb10A2:
		return "rgb10_a2"
	case spirv.ImageFormatRg16:
		return "rg16"
	case spirv.ImageFormatRg8:
		return "rg8"
	case spirv.ImageFormatR16:
		return "r16"
	case spirv.ImageFormatR8:
		return "r8"
	case spirv.ImageFormatRgba16Snorm:
		return "rgba16_snorm"
	case spirv.ImageFormatRg16Snorm:
		return "rg16_snorm"
	case spirv.ImageFormatRg8Snorm:
		return "rg8_snorm"
	case spirv.ImageFormatR16Snorm:
		return "r16_snorm"
	case spirv.ImageFormatR8Snorm:
		return "r8_snorm"
	case spirv.ImageFormatRgba32i:
		return "rgba32i"
	case spirv.ImageFormatRgba16i:
		return "rgba16i"
	case spirv.ImageFormatRgba8i:
		return "rgba8i"
	case spirv.ImageFormatR32i:
		return "r32i"
	case spirv.ImageFormatRg32i:
		return "rg32i"
	case spirv.ImageFormatRg16i:
		return "rg16i"
	case spirv.ImageFormatRg8i:
		return "rg8i"
	case spirv.ImageFormatR16i:
		return "r16i"
	case spirv.ImageFormatR8i:
		return "r8i"
	case spirv.ImageFormatRgba32ui:
		return "rgba32ui"
	case spirv.ImageFormatRgba16ui:
		return "rgba16ui"
	case spirv.ImageFormatRgba8ui:
		return "rgba8ui"
	case spirv.ImageFormatR32ui:
		return "r32ui"
	case spirv.ImageFormatRgb10a2ui:
		return "rgb10_a2ui"
	case spirv.ImageFormatRg32ui:
		return "rg32ui"
	case spirv.ImageFormatRg16ui:
		return "rg16ui"
	case spirv.ImageFormatRg8ui:
		return "rg8ui"
	case spirv.ImageFormatR16ui:
		return "r16ui"
	case spirv.ImageFormatR8ui:
		return "r8ui"
	}
	return ""
}

// builtinName returns the GLSL variable of a builtin.
//
//nolint:gocyclo,cyclop // one case per builtin
func (w *Writer) builtinName(b spirv.BuiltIn) (string, error) {
	switch b {
	case spirv.BuiltInPosition:
		return "gl_Position", nil
	case spirv.BuiltInPointSize:
		return "gl_PointSize", nil
	case spirv.BuiltInClipDistance:
		return "gl_ClipDistance", nil
	case spirv.BuiltInCullDistance:
		return "gl_CullDistance", nil
	case spirv.BuiltInVertexID:
		return "gl_VertexID", nil
	case spirv.BuiltInInstanceID:
		return "gl_InstanceID", nil
	case spirv.BuiltInVertexIndex:
		if w.options.Vulkan {
			return "gl_VertexIndex", nil
		}
		return "gl_VertexID", nil
	case spirv.BuiltInInstanceIndex:
		if w.options.Vulkan {
			return "gl_InstanceIndex", nil
		}
		return "gl_InstanceID", nil
	case spirv.BuiltInPrimitiveID:
		return "gl_PrimitiveID", nil
	case spirv.BuiltInInvocationID:
		return "gl_InvocationID", nil
	case spirv.BuiltInLayer:
		return "gl_Layer", nil
	case spirv.BuiltInViewportIndex:
		return "gl_ViewportIndex", nil
	case spirv.BuiltInTessLevelOuter:
		return "gl_TessLevelOuter", nil
	case spirv.BuiltInTessLevelInner:
		return "gl_TessLevelInner", nil
	case spirv.BuiltInTessCoord:
		return "gl_TessCoord", nil
	case spirv.BuiltInPatchVertices:
		return "gl_PatchVerticesIn", nil
	case spirv.BuiltInFragCoord:
		return "gl_FragCoord", nil
	case spirv.BuiltInPointCoord:
		return "gl_PointCoord", nil
	case spirv.BuiltInFrontFacing:
		return "gl_FrontFacing", nil
	case spirv.BuiltInSampleID:
		return "gl_SampleID", nil
	case spirv.BuiltInSamplePosition:
		return "gl_SamplePosition", nil
	case spirv.BuiltInSampleMask:
		return "gl_SampleMask", nil
	case spirv.BuiltInFragDepth:
		return "gl_FragDepth", nil
	case spirv.BuiltInHelperInvocation:
		return "gl_HelperInvocation", nil
	case spirv.BuiltInNumWorkgroups:
		return "gl_NumWorkGroups", nil
	case spirv.BuiltInWorkgroupSize:
		return "gl_WorkGroupSize", nil
	case spirv.BuiltInWorkgroupID:
		return "gl_WorkGroupID", nil
	case spirv.BuiltInLocalInvocationID:
		return "gl_LocalInvocationID", nil
	case spirv.BuiltInGlobalInvocationID:
		return "gl_GlobalInvocationID", nil
	case spirv.BuiltInLocalInvocationIndex:
		return "gl_LocalInvocationIndex", nil
	}
	return "", fmt.Errorf("builtin %s is not supported", b)
}

// requireExtension records an extension the output needs.
func (w *Writer) requireExtension(name string) {
	for _, ext := range w.extensions {
		if ext == name {
			return
		}
	}
	w.extensions = append(w.extensions, name)
}
