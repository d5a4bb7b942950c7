// Package msl generates Metal Shading Language (MSL) from SPIR-V modules.
//
// MSL is Apple's shader language for the Metal graphics API. It is based on C++14
// with extensions for GPU programming, including explicit address spaces, attribute-based
// parameter binding, and a metal:: namespace for standard library functions.
//
// # Usage
//
//	module, err := ir.Load(parsed)
//	if err != nil {
//	    return err
//	}
//
//	source, info, err := msl.Compile(module, msl.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//
// One entry point is compiled per call; PipelineOptions.EntryPoint selects it.
//
// # Type Mapping
//
//	SPIR-V               MSL
//	------               ---
//	bool                 bool
//	int / uint           int / uint
//	float / half         float / half
//	vec4 of float        metal::float4
//	mat4 of float        metal::float4x4
//	array of T, N        metal::array<T, N>
//	runtime array of T   T name[1] (last buffer member)
//	image 2D             metal::texture2d<float>
//	image 2D, depth      metal::depth2d<float>
//	sampler              metal::sampler
//
// Buffer blocks keep their SPIR-V offsets: padding members are inserted
// and three-component vectors are packed where the next member follows
// closer than 16 bytes. Offsets or strides Metal cannot represent are
// reported as errors.
//
// # Address Spaces
//
//	Uniform, PushConstant  -> constant
//	StorageBuffer          -> device (const device when read-only)
//	Private, Function      -> thread
//	Workgroup              -> threadgroup
//
// # Entry Points
//
// Location inputs form the <entry>_in struct passed as [[stage_in]];
// outputs form <entry>_out, which the entry point returns. Builtin inputs
// are parameters with their Metal attribute ([[position]],
// [[thread_position_in_grid]], ...). An entry point named "main" is
// renamed to "main0", as main is reserved in Metal.
//
// # Resource Binding
//
// Resources are bound by Options.PerEntryPointMap. With
// FakeMissingBindings, resources missing from the map get their SPIR-V
// binding number as slot, or the next free slot of the same kind.
// TranslationInfo.ResourceSlots reports every assignment.
package msl
