// Package spirv reads, writes and disassembles SPIR-V binary modules.
//
// SPIR-V is the standard intermediate language for GPU shaders,
// used by Vulkan, OpenCL, and other APIs.
//
// # Reading
//
// Parse splits a binary into its header and instruction stream. Both
// little-endian and byte-swapped binaries are accepted:
//
//	module, err := spirv.Parse(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, inst := range module.Instructions {
//		fmt.Println(inst.Opcode)
//	}
//
// # Binary Writer
//
// ModuleBuilder constructs modules programmatically. Instructions are kept
// per logical section and written in layout order:
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//
//	// Add types
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//
//	// Build binary
//	binary := builder.Build()
//
// Append routes already-decoded instructions to their section, which lets a
// parsed module be re-encoded after its annotations change.
//
// # SPIR-V Structure
//
// SPIR-V modules consist of:
//   - Header (magic, version, generator, bound, schema)
//   - Capabilities (required features)
//   - Extensions (optional extensions)
//   - Extended instruction imports (GLSL.std.450, etc.)
//   - Memory model (addressing and memory model)
//   - Entry points and execution modes
//   - Debug strings and names
//   - Annotations (decorations)
//   - Types, constants and global variables
//   - Function definitions
package spirv
