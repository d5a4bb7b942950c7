// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// namer generates unique identifiers for HLSL output.
// It tracks used names to ensure uniqueness and handles
// HLSL's case-insensitive keyword matching.
type namer struct {
	// usedNames tracks names that have been generated (stored in lowercase for case-insensitive comparison).
	usedNames map[string]struct{}

	// counter is used to generate unique suffixes.
	counter uint32
}

// newNamer creates a new namer instance.
func newNamer() *namer {
	n := &namer{
		usedNames: make(map[string]struct{}),
	}

	// Pre-register generated names to avoid conflicts
	helperNames := []string{
		ArrayLengthFunction,
		ImageSizeFunction,
		InputStructName,
		OutputStructName,
		StageInputName,
		StageOutputName,
		EntryPointName,
	}

	for _, name := range helperNames {
		n.reserve(name)
	}

	return n
}

// call generates a unique name based on the given base.
// It escapes reserved keywords and adds numeric suffixes if needed.
func (n *namer) call(base string) string {
	// Escape reserved words first
	escaped := Escape(sanitize(base))

	// Check if this name is available (case-insensitive for HLSL)
	lowerEscaped := strings.ToLower(escaped)
	if !n.isUsedLower(lowerEscaped) {
		n.usedNames[lowerEscaped] = struct{}{}
		return escaped
	}

	// Add numeric suffix to make unique
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		lowerCandidate := strings.ToLower(candidate)
		if !n.isUsedLower(lowerCandidate) {
			n.usedNames[lowerCandidate] = struct{}{}
			return candidate
		}
	}
}

// isUsedLower checks if a lowercase name has already been used.
func (n *namer) isUsedLower(lowerName string) bool {
	_, used := n.usedNames[lowerName]
	return used
}

// reserve marks a name as used without returning it.
func (n *namer) reserve(name string) {
	n.usedNames[strings.ToLower(name)] = struct{}{}
}

// sanitize keeps the identifier part of a debug name. Compilers mangle
// function names as "name(args;", which is cut at the parenthesis.
func sanitize(name string) string {
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}
