// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/spvcross/spirv"
)

// HLSL type name constants.
const (
	hlslInt     = "int"
	hlslUint    = "uint"
	hlslFloat   = "float"
	hlslBool    = "bool"
	hlslHalf    = "half"
	hlslDouble  = "double"
	hlslInt64   = "int64_t"
	hlslUint64  = "uint64_t"
	hlslTexture = "Texture"
)

// BuiltInToSemantic returns the HLSL system value semantic for a builtin.
// Builtins without a semantic, such as PointSize, only exist as statics.
// Ref: https://docs.microsoft.com/en-us/windows/win32/direct3dhlsl/dx-graphics-hlsl-semantics
func BuiltInToSemantic(b spirv.BuiltIn) (string, bool) {
	switch b {
	// Vertex shader
	case spirv.BuiltInPosition, spirv.BuiltInFragCoord:
		return "SV_Position", true
	case spirv.BuiltInVertexIndex, spirv.BuiltInVertexID:
		return "SV_VertexID", true
	case spirv.BuiltInInstanceIndex, spirv.BuiltInInstanceID:
		return "SV_InstanceID", true
	case spirv.BuiltInClipDistance:
		return "SV_ClipDistance", true
	case spirv.BuiltInCullDistance:
		return "SV_CullDistance", true
	case spirv.BuiltInLayer:
		return "SV_RenderTargetArrayIndex", true
	case spirv.BuiltInViewportIndex:
		return "SV_ViewportArrayIndex", true
	// Fragment shader
	case spirv.BuiltInFrontFacing:
		return "SV_IsFrontFace", true
	case spirv.BuiltInFragDepth:
		return "SV_Depth", true
	case spirv.BuiltInSampleID:
		return "SV_SampleIndex", true
	case spirv.BuiltInSampleMask:
		return "SV_Coverage", true
	case spirv.BuiltInPrimitiveID:
		return "SV_PrimitiveID", true
	// Compute shader
	case spirv.BuiltInGlobalInvocationID:
		return "SV_DispatchThreadID", true
	case spirv.BuiltInLocalInvocationID:
		return "SV_GroupThreadID", true
	case spirv.BuiltInLocalInvocationIndex:
		return "SV_GroupIndex", true
	case spirv.BuiltInWorkgroupID:
		return "SV_GroupID", true
	}
	return "", false
}

// ImageDimToHLSL returns the HLSL texture dimension suffix.
func ImageDimToHLSL(dim spirv.Dim, arrayed, multisampled bool) string {
	var suffix string
	switch dim {
	case spirv.Dim1D:
		suffix = "1D"
	case spirv.Dim3D:
		suffix = "3D"
	case spirv.DimCube:
		suffix = "Cube"
	default:
		suffix = "2D"
	}
	if multisampled {
		suffix += "MS"
	}
	if arrayed && dim != spirv.Dim3D { // 3D textures can't be arrays
		suffix += "Array"
	}
	return suffix
}

// SamplerToHLSL returns the HLSL sampler type name.
func SamplerToHLSL(comparison bool) string {
	if comparison {
		return "SamplerComparisonState"
	}
	return "SamplerState"
}

// ShaderStageToHLSL returns the HLSL profile prefix for an execution model.
func ShaderStageToHLSL(model spirv.ExecutionModel) (string, bool) {
	switch model {
	case spirv.ExecutionModelVertex:
		return "vs", true
	case spirv.ExecutionModelFragment:
		return "ps", true // Pixel shader in HLSL terminology
	case spirv.ExecutionModelGLCompute:
		return "cs", true
	}
	return "", false
}

// ShaderProfile returns the HLSL shader profile string.
// Example: "vs_5_1", "ps_6_0", "cs_6_6"
func ShaderProfile(model spirv.ExecutionModel, sm ShaderModel) (string, error) {
	stage, ok := ShaderStageToHLSL(model)
	if !ok {
		return "", NewError(ErrUnsupportedFeature, "execution model %s has no HLSL profile", model)
	}
	return fmt.Sprintf("%s_%s", stage, sm.ProfileSuffix()), nil
}

// entryFunctionName is the name of the function holding an entry point body.
// The generated main wrapper calls it.
func entryFunctionName(model spirv.ExecutionModel) string {
	switch model {
	case spirv.ExecutionModelVertex:
		return "vert_main"
	case spirv.ExecutionModelFragment:
		return "frag_main"
	default:
		return "comp_main"
	}
}

// formatComponents returns the component count and the unorm/snorm prefix
// of a storage image format. Unknown formats read as four components.
func formatComponents(f spirv.ImageFormat) (uint32, string) {
	switch f {
	case spirv.ImageFormatRgba8, spirv.ImageFormatRgba16, spirv.ImageFormatRgb10A2:
		return 4, "unorm "
	case spirv.ImageFormatRgba8Snorm, spirv.ImageFormatRgba16Snorm:
		return 4, "snorm "
	case spirv.ImageFormatRg16, spirv.ImageFormatRg8:
		return 2, "unorm "
	case spirv.ImageFormatRg16Snorm, spirv.ImageFormatRg8Snorm:
		return 2, "snorm "
	case spirv.ImageFormatR16, spirv.ImageFormatR8:
		return 1, "unorm "
	case spirv.ImageFormatR16Snorm, spirv.ImageFormatR8Snorm:
		return 1, "snorm "
	case spirv.ImageFormatR11fG11fB10f:
		return 3, ""
	case spirv.ImageFormatRg32f, spirv.ImageFormatRg16f, spirv.ImageFormatRg32i,
		spirv.ImageFormatRg16i, spirv.ImageFormatRg8i, spirv.ImageFormatRg32ui,
		spirv.ImageFormatRg16ui, spirv.ImageFormatRg8ui:
		return 2, ""
	case spirv.ImageFormatR32f, spirv.ImageFormatR16f, spirv.ImageFormatR32i,
		spirv.ImageFormatR16i, spirv.ImageFormatR8i, spirv.ImageFormatR32ui,
		spirv.ImageFormatR16ui, spirv.ImageFormatR8ui:
		return 1, ""
	}
	return 4, ""
}
