// Package ir is the in-memory form of a SPIR-V module used for reflection
// and cross-compilation.
//
// # Structure
//
// Load turns a parsed spirv.Module into a Module: an id table holding
//   - Types, Constants and Globals, keyed by result id
//   - Functions with their basic blocks and merge information
//   - EntryPoints and ExecutionModes
//   - Decorations, a mutable store of (id, decoration) literals
//
// Reflection queries (ReflectEntryPoints, Resources, DeclaredStructSize)
// work on the id table directly. Encode writes the module back to a binary
// with the current names and decorations.
//
// # Lowering
//
// Backends do not walk basic blocks. Lower converts a function into an
// expression arena and a tree of structured statements (If, Loop, Switch,
// Break, Continue) following the merge instructions of the structured
// control flow rules. Phi results become function-scope locals assigned on
// each incoming edge.
//
// # References
//
//   - SPIR-V specification: https://www.khronos.org/registry/SPIR-V/
//   - SPIRV-Cross: https://github.com/KhronosGroup/SPIRV-Cross
package ir
