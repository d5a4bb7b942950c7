// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// BindTarget specifies the HLSL register binding for a resource.
// HLSL uses register(x#, space#) syntax for resource binding.
type BindTarget struct {
	// Space is the register space (0-based).
	// Spaces allow multiple resources to use the same register index.
	Space uint8

	// Register is the register index within the space.
	Register uint32
}

// ResourceBinding identifies a resource in the source shader.
// This maps SPIR-V binding points to HLSL registers.
type ResourceBinding struct {
	// Group corresponds to the SPIR-V DescriptorSet decoration.
	Group uint32

	// Binding corresponds to the SPIR-V Binding decoration.
	Binding uint32
}

// RegisterType represents the HLSL register type.
type RegisterType uint8

const (
	// RegisterTypeB is for constant buffers (cbuffer).
	RegisterTypeB RegisterType = iota

	// RegisterTypeT is for textures and shader resource views.
	RegisterTypeT

	// RegisterTypeS is for samplers.
	RegisterTypeS

	// RegisterTypeU is for unordered access views (UAV).
	RegisterTypeU
)

// String returns the single-character register prefix.
func (rt RegisterType) String() string {
	switch rt {
	case RegisterTypeB:
		return "b"
	case RegisterTypeT:
		return "t"
	case RegisterTypeS:
		return "s"
	case RegisterTypeU:
		return "u"
	default:
		return "b"
	}
}

// register formats the register binding of a target, e.g. "register(t0, space1)".
// Shader Model 5.0 has no register spaces.
func (bt BindTarget) register(rt RegisterType, sm ShaderModel) string {
	if !sm.SupportsRegisterSpaces() {
		return fmt.Sprintf("register(%s%d)", rt, bt.Register)
	}
	return fmt.Sprintf("register(%s%d, space%d)", rt, bt.Register, bt.Space)
}
