package msl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/spvcross/ir"
)

// Version represents an MSL language version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common MSL versions.
var (
	Version1_2 = Version{Major: 1, Minor: 2}
	Version2_0 = Version{Major: 2, Minor: 0}
	Version2_1 = Version{Major: 2, Minor: 1}
	Version2_3 = Version{Major: 2, Minor: 3}
	Version3_0 = Version{Major: 3, Minor: 0}
)

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// less reports whether v is older than other.
func (v Version) less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

// ParseVersion parses a version written as "2.1" or "2_1".
func ParseVersion(s string) (Version, error) {
	major, minor, ok := strings.Cut(strings.ReplaceAll(s, "_", "."), ".")
	if !ok {
		return Version{}, fmt.Errorf("msl: invalid version %q", s)
	}
	ma, err := strconv.ParseUint(major, 10, 8)
	if err != nil {
		return Version{}, fmt.Errorf("msl: invalid version %q: %w", s, err)
	}
	mi, err := strconv.ParseUint(minor, 10, 8)
	if err != nil {
		return Version{}, fmt.Errorf("msl: invalid version %q: %w", s, err)
	}
	return Version{Major: uint8(ma), Minor: uint8(mi)}, nil
}

// ResourceBinding identifies a resource by its SPIR-V descriptor set and binding.
type ResourceBinding struct {
	Group   uint32
	Binding uint32
}

// BindTarget specifies the Metal binding slots for a resource.
type BindTarget struct {
	// Buffer is the buffer binding slot. Nil if not bound as buffer.
	Buffer *uint8

	// Texture is the texture binding slot. Nil if not bound as texture.
	Texture *uint8

	// Sampler is the sampler binding slot. Nil if not bound as sampler.
	Sampler *uint8
}

// EntryPointResources maps SPIR-V resource bindings to Metal binding slots.
type EntryPointResources struct {
	// Resources maps (group, binding) pairs to Metal bind targets.
	Resources map[ResourceBinding]BindTarget

	// PushConstantBuffer is the buffer slot for push constants.
	// Nil if push constants get the next free slot.
	PushConstantBuffer *uint8

	// SizesBuffer is the buffer slot for runtime array sizes.
	// Nil selects slot 24.
	SizesBuffer *uint8
}

// defaultSizesBuffer is the buffer slot of the sizes buffer when none is set.
const defaultSizesBuffer = 24

// Options configures MSL code generation.
type Options struct {
	// LangVersion is the target MSL version.
	// Defaults to Version2_1 if zero.
	LangVersion Version

	// PerEntryPointMap maps entry point names to their resource bindings.
	PerEntryPointMap map[string]EntryPointResources

	// FakeMissingBindings assigns slots to resources that are not in the
	// PerEntryPointMap: the SPIR-V binding number when it is free, the next
	// free slot of the same kind otherwise. When false a missing binding is
	// an error.
	FakeMissingBindings bool
}

// DefaultOptions returns sensible default options for MSL generation.
func DefaultOptions() Options {
	return Options{
		LangVersion:         Version2_1,
		FakeMissingBindings: true,
	}
}

// PipelineOptions configures options specific to a single pipeline/entry point.
type PipelineOptions struct {
	// EntryPoint specifies which entry point to compile.
	// If nil, the first entry point is compiled.
	EntryPoint *ir.EntryPointSelector

	// AllowAndForcePointSize writes PointSize to a [[point_size]] output.
	// Without it, point size writes are kept in a local and dropped,
	// since Metal rejects point size outputs outside point topologies.
	AllowAndForcePointSize bool
}

// TranslationInfo contains information about the compiled MSL output.
type TranslationInfo struct {
	// EntryPointNames maps original entry point names to generated MSL names.
	EntryPointNames map[string]string

	// RequiresSizesBuffer indicates if a sizes buffer is needed for
	// runtime-sized arrays.
	RequiresSizesBuffer bool

	// ResourceSlots maps resource names to the attributes they were bound
	// with, e.g. "globals" -> "[[buffer(0)]]".
	ResourceSlots map[string]string
}

// Compile generates MSL source code from an IR module.
// Returns the MSL source as a string and translation info, or an error.
func Compile(module *ir.Module, options Options) (string, TranslationInfo, error) {
	return CompileWithPipeline(module, options, PipelineOptions{})
}

// CompileWithPipeline generates MSL source code with pipeline-specific options.
func CompileWithPipeline(module *ir.Module, options Options, pipeline PipelineOptions) (string, TranslationInfo, error) {
	if module == nil {
		return "", TranslationInfo{}, fmt.Errorf("msl: module is nil")
	}

	// Apply defaults for zero values
	if options.LangVersion.Major == 0 {
		options.LangVersion = Version2_1
	}

	program, err := module.LowerEntryPoint(pipeline.EntryPoint)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("msl: %w", err)
	}

	w := newWriter(module, program, &options, &pipeline)

	// Generate MSL code
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("msl: %w", err)
	}

	info := TranslationInfo{
		EntryPointNames:     w.entryPointNames,
		RequiresSizesBuffer: w.needsSizesBuffer,
		ResourceSlots:       w.resourceSlots,
	}

	return w.String(), info, nil
}
