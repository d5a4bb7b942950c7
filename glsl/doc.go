// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl provides a GLSL (OpenGL Shading Language) backend for
// SPIR-V modules.
//
// The backend lowers one entry point of an ir.Module and writes it as GLSL
// source. It supports desktop and ES targets:
//
//   - GLSL ES 3.00: WebGL 2.0, Mobile OpenGL ES 3.0
//   - GLSL 3.30 Core: Desktop OpenGL 3.3+
//   - GLSL ES 3.10: Android 5.0+ with compute shaders
//   - GLSL 4.30+ Core: Desktop OpenGL 4.3+ with compute shaders
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(module, glsl.Options{
//	    LangVersion: glsl.Version330,
//	})
//
// # Vulkan GLSL
//
// With Options.Vulkan set, descriptor sets, push constant blocks,
// specialization constant ids, separate textures and samplers and subpass
// inputs are kept. Otherwise separate images are declared as combined
// samplers, standalone samplers are dropped and subpass reads become texel
// fetches at the fragment coordinate.
//
// # Reserved Words
//
// GLSL has over 500 reserved words (including future reserved).
// The backend automatically escapes conflicting identifier names
// by prefixing them with an underscore.
package glsl
