// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", UnnamedIdentifier},
		{"position", "position"},
		{"cbuffer", "_cbuffer"},
		{"Texture2D", "_Texture2D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.name), "Escape(%q)", tt.name)
	}
	assert.True(t, IsReserved("cbuffer"))
	assert.False(t, IsReserved("globals"))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"main(vf4;", "main"},
		{"light.color", "lightcolor"},
		{"3d", "_3d"},
		{"a-b_c", "ab_c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.name), "sanitize(%q)", tt.name)
	}
}

func TestRegister(t *testing.T) {
	bt := BindTarget{Space: 2, Register: 7}
	assert.Equal(t, "register(t7, space2)", bt.register(RegisterTypeT, ShaderModel5_1))
	assert.Equal(t, "register(u7)", bt.register(RegisterTypeU, ShaderModel5_0))
	assert.Equal(t, "s", RegisterTypeS.String())
	assert.Equal(t, "b", RegisterType(9).String())
}

func TestImageDimToHLSL(t *testing.T) {
	assert.Equal(t, "2D", ImageDimToHLSL(spirv.Dim2D, false, false))
	assert.Equal(t, "2DMSArray", ImageDimToHLSL(spirv.Dim2D, true, true))
	assert.Equal(t, "CubeArray", ImageDimToHLSL(spirv.DimCube, true, false))
	assert.Equal(t, "3D", ImageDimToHLSL(spirv.Dim3D, true, false))
	assert.Equal(t, "SamplerComparisonState", SamplerToHLSL(true))
}

func TestErrors(t *testing.T) {
	err := NewErrorAt(ErrMissingBinding, 12, "no binding for %s", "globals")
	assert.Equal(t, "hlsl MissingBinding at %12: no binding for globals", err.Error())
	assert.True(t, err.IsMissingBinding())
	assert.False(t, err.IsUnsupportedFeature())
	assert.Equal(t, "Unknown", ErrorKind(200).String())

	tests := []struct {
		cause error
		want  ErrorKind
	}{
		{ir.NewError(ir.ErrUnstructured, "irreducible loop"), ErrUnsupportedFeature},
		{ir.NewError(ir.ErrUnsupportedFeature, "OpKill"), ErrUnsupportedFeature},
		{ir.NewError(ir.ErrInvalidID, "no entry point"), ErrEntryPointNotFound},
		{ir.NewError(ir.ErrInvalidModule, "bad"), ErrInvalidModule},
		{errors.New("boom"), ErrInternalError},
	}
	for _, tt := range tests {
		got := fromIR(tt.cause)
		assert.Equal(t, tt.want, got.Kind, tt.cause.Error())
		assert.ErrorIs(t, got, tt.cause)
	}
}
