// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl provides HLSL (High-Level Shading Language) code generation
// from SPIR-V modules.
//
// The generated source targets the FXC compiler (Shader Model 5.x) and the
// DXC compiler (Shader Model 6.x). One entry point is compiled at a time;
// its stage I/O travels through the SPIRV_Cross_Input and
// SPIRV_Cross_Output structs of a generated main function.
//
// # Usage
//
//	sm, _ := spirv.Parse(data)
//	module, _ := ir.Load(sm)
//	options := hlsl.DefaultOptions()
//	options.ShaderModel = hlsl.ShaderModel6_0
//
//	source, info, err := hlsl.Compile(module, options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Register Binding
//
// HLSL uses register-based resource binding with spaces:
//
//	ConstantBuffer<T> : register(b#, space#) // Uniform buffers
//	Texture2D<T>      : register(t#, space#) // Sampled images, read-only buffers
//	SamplerState      : register(s#, space#) // Samplers
//	RWTexture2D<T>    : register(u#, space#) // Storage images and buffers
//
// BindingMap in Options maps descriptor set and binding pairs to registers.
// Unmapped resources use the binding as register and the set as space when
// FakeMissingBindings is set.
//
// Storage buffers are declared as ByteAddressBuffer or RWByteAddressBuffer
// and accessed through byte offsets computed from the Offset, ArrayStride
// and MatrixStride decorations.
package hlsl
