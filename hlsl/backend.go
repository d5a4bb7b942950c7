// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"

	"github.com/gogpu/spvcross/ir"
)

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel specifies the target shader model.
	// Defaults to ShaderModel5_1 for maximum compatibility.
	ShaderModel ShaderModel

	// BindingMap maps source resource bindings to HLSL register targets.
	// If a binding is not found in the map and FakeMissingBindings is false,
	// compilation will fail with ErrMissingBinding.
	BindingMap map[ResourceBinding]BindTarget

	// FakeMissingBindings generates automatic bindings for resources
	// not found in BindingMap: the binding is the register and the
	// descriptor set is the space.
	FakeMissingBindings bool

	// PushConstantTarget is the register of the push constant block.
	// When nil the block is declared without a register.
	PushConstantTarget *BindTarget

	// EntryPoint specifies which entry point to compile.
	// If nil, the first entry point is used.
	EntryPoint *ir.EntryPointSelector
}

// DefaultOptions returns sensible default options for HLSL generation.
// Uses Shader Model 5.1 with generated bindings.
func DefaultOptions() *Options {
	return &Options{
		ShaderModel:         ShaderModel5_1,
		BindingMap:          make(map[ResourceBinding]BindTarget),
		FakeMissingBindings: true,
	}
}

// FeatureFlags indicates which HLSL features are used by the generated code.
type FeatureFlags uint32

const (
	// FeatureNone indicates no special features are used.
	FeatureNone FeatureFlags = 0

	// Feature64BitIntegers indicates 64-bit integer types are used (SM 6.0+).
	Feature64BitIntegers FeatureFlags = 1 << iota

	// FeatureFloat16 indicates half precision types are used.
	FeatureFloat16

	// FeatureFloat64 indicates double precision types are used.
	FeatureFloat64

	// FeatureFineDerivatives indicates fine or coarse derivatives are used.
	FeatureFineDerivatives
)

// Has returns true if the flags contain the specified feature.
func (f FeatureFlags) Has(feature FeatureFlags) bool {
	return f&feature != 0
}

// String returns a human-readable list of enabled features.
func (f FeatureFlags) String() string {
	var features []string
	if f.Has(Feature64BitIntegers) {
		features = append(features, "64BitIntegers")
	}
	if f.Has(FeatureFloat16) {
		features = append(features, "Float16")
	}
	if f.Has(FeatureFloat64) {
		features = append(features, "Float64")
	}
	if f.Has(FeatureFineDerivatives) {
		features = append(features, "FineDerivatives")
	}
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ", ")
}

// TranslationInfo contains metadata about the HLSL translation.
type TranslationInfo struct {
	// EntryPointNames maps original entry point names to generated HLSL names.
	// The compiled entry point is always called "main".
	EntryPointNames map[string]string

	// UsedFeatures indicates which shader features are used.
	UsedFeatures FeatureFlags

	// RequiredShaderModel is the minimum shader model needed for this shader.
	// May be higher than the requested model if features require it.
	RequiredShaderModel ShaderModel

	// RegisterBindings maps resource names to their HLSL register bindings.
	// Format: "resourceName" -> "register(t0, space0)"
	RegisterBindings map[string]string

	// HelperFunctions lists any helper functions that were generated.
	HelperFunctions []string
}

// Compile generates HLSL source code for one entry point of a module.
// Returns the HLSL source, translation info, or an error.
func Compile(module *ir.Module, options *Options) (string, *TranslationInfo, error) {
	if module == nil {
		return "", nil, NewError(ErrInternalError, "module is nil")
	}

	// Apply defaults for nil options
	if options == nil {
		options = DefaultOptions()
	}

	program, err := module.LowerEntryPoint(options.EntryPoint)
	if err != nil {
		return "", nil, fromIR(err)
	}

	w := newWriter(module, program, options)
	if err := w.writeModule(); err != nil {
		return "", nil, err
	}

	info := &TranslationInfo{
		EntryPointNames:     w.entryPointNames,
		UsedFeatures:        w.usedFeatures,
		RequiredShaderModel: w.requiredShaderModel,
		RegisterBindings:    w.registerBindings,
		HelperFunctions:     w.helperOrder,
	}

	return w.String(), info, nil
}
