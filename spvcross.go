// Package spvcross provides SPIR-V reflection and cross-compilation in pure Go.
//
// spvcross reads SPIR-V binaries and translates them to:
//   - GLSL: OpenGL Shading Language, desktop and ES, optionally Vulkan flavored
//   - HLSL: High Level Shading Language for Direct3D
//   - MSL: Metal Shading Language for macOS/iOS
//
// The package provides a one-call API for the common cases. The cross
// package exposes the full compiler: decoration editing, entry point
// selection and re-encoding of the module.
//
// Example usage:
//
//	source, err := spvcross.Compile(binary, spvcross.TargetMSL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For reflection:
//
//	refl, err := spvcross.Reflect(binary)
//	for _, ubo := range refl.Resources.UniformBuffers {
//	    fmt.Println(ubo.Name)
//	}
//
// The individual stages are available too:
//
//	module, _ := spvcross.Load(binary)
//	glslCode, info, err := glsl.Compile(module, glsl.DefaultOptions())
package spvcross

import (
	"fmt"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Target is the output shading language.
type Target = cross.Target

// Output targets.
const (
	TargetGLSL = cross.GLSL
	TargetHLSL = cross.HLSL
	TargetMSL  = cross.MSL
)

// CompileOptions configures Compile.
type CompileOptions struct {
	// Options holds the emitter options. Options.Target is replaced by the
	// target passed to CompileWithOptions.
	cross.Options

	// EntryPoint selects the entry point by name. Empty selects the first.
	EntryPoint string

	// ExecutionModel disambiguates EntryPoint when a name is shared by
	// several stages. Nil takes the first entry point with the name.
	ExecutionModel *cross.ExecutionModel
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{Options: cross.DefaultOptions()}
}

// Compile translates a SPIR-V binary with default options.
func Compile(binary []byte, target Target) (string, error) {
	return CompileWithOptions(binary, target, DefaultOptions())
}

// CompileWithOptions translates a SPIR-V binary.
//
// The pipeline is:
//  1. Parse the binary into instructions
//  2. Load the module (types, decorations, entry points)
//  3. Lower the selected entry point and emit source
func CompileWithOptions(binary []byte, target Target, opts CompileOptions) (string, error) {
	opts.Target = target
	c, err := cross.Load(binary, opts.Options)
	if err != nil {
		return "", fmt.Errorf("load error: %w", err)
	}
	defer c.Close()

	if opts.EntryPoint != "" {
		model, err := resolveModel(c, opts.EntryPoint, opts.ExecutionModel)
		if err != nil {
			return "", err
		}
		if err := c.SetEntryPoint(opts.EntryPoint, model); err != nil {
			return "", fmt.Errorf("entry point error: %w", err)
		}
	}

	source, err := c.Compile()
	if err != nil {
		return "", fmt.Errorf("%s generation error: %w", target, err)
	}
	return source, nil
}

func resolveModel(c *cross.Compiler, name string, model *cross.ExecutionModel) (cross.ExecutionModel, error) {
	if model != nil {
		return *model, nil
	}
	eps, err := c.EntryPoints()
	if err != nil {
		return 0, fmt.Errorf("entry point error: %w", err)
	}
	for _, ep := range eps {
		if ep.Name == name {
			return ep.ExecutionModel, nil
		}
	}
	return 0, fmt.Errorf("entry point error: no entry point named %q", name)
}

// Reflection is everything reflection reports about a module.
type Reflection struct {
	EntryPoints []cross.EntryPoint    `json:"entryPoints" yaml:"entryPoints"`
	Resources   cross.ShaderResources `json:"resources" yaml:"resources"`
}

// Reflect reports the entry points and resources of a SPIR-V binary.
func Reflect(binary []byte) (*Reflection, error) {
	c, err := cross.Load(binary, cross.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}
	defer c.Close()

	eps, err := c.EntryPoints()
	if err != nil {
		return nil, fmt.Errorf("entry point error: %w", err)
	}
	res, err := c.ShaderResources()
	if err != nil {
		return nil, fmt.Errorf("resource error: %w", err)
	}
	return &Reflection{EntryPoints: eps, Resources: res}, nil
}

// Parse decodes a SPIR-V binary into its instruction stream.
func Parse(binary []byte) (*spirv.Module, error) {
	return spirv.Parse(binary)
}

// Load parses a SPIR-V binary and builds the module the emitters consume.
func Load(binary []byte) (*ir.Module, error) {
	parsed, err := spirv.Parse(binary)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	module, err := ir.Load(parsed)
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}
	return module, nil
}

// Disassemble renders a SPIR-V binary as text.
func Disassemble(binary []byte) (string, error) {
	parsed, err := spirv.Parse(binary)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}
	return spirv.Disassemble(parsed), nil
}
