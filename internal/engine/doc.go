// Package engine is the reflection and cross-compilation engine behind the
// cross package, exposed through a call surface shaped like a native
// library: integer status codes, outputs written through pointers and
// buffers allocated on an engine heap that the caller frees explicitly.
//
// The cross package is the only intended caller. Keeping the boundary
// explicit lets it be exercised against test doubles that implement
// Compiler, and lets the heap count outstanding allocations.
package engine
