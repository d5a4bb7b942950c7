package engine

import (
	"errors"
	"fmt"

	"github.com/gogpu/spvcross/glsl"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/msl"
	"github.com/gogpu/spvcross/spirv"
)

// Target selects the code emitter.
type Target uint8

// Emitter targets.
const (
	TargetGLSL Target = iota
	TargetHLSL
	TargetMSL
)

func (t Target) String() string {
	switch t {
	case TargetGLSL:
		return "glsl"
	case TargetHLSL:
		return "hlsl"
	case TargetMSL:
		return "msl"
	}
	return fmt.Sprintf("Target(%d)", uint8(t))
}

// Options configures the emitters. Only the options of Target are used.
type Options struct {
	Target      Target
	GLSL        glsl.Options
	HLSL        hlsl.Options
	MSL         msl.Options
	MSLPipeline msl.PipelineOptions
}

// DefaultOptions returns GLSL output with every emitter at its defaults.
func DefaultOptions() Options {
	return Options{
		Target: TargetGLSL,
		GLSL:   glsl.DefaultOptions(),
		HLSL:   *hlsl.DefaultOptions(),
		MSL:    msl.DefaultOptions(),
	}
}

// Compiler is the engine call surface. Outputs are written through
// pointer arguments; buffers handed out this way belong to the caller
// until freed through Memory.
type Compiler interface {
	Memory

	Compile(out *Pointer) Status
	GetDecoration(out *uint32, id uint32, dec uint32) Status
	SetDecoration(id uint32, dec uint32, literal uint32) Status
	UnsetDecoration(id uint32, dec uint32) Status
	GetName(out *Pointer, id uint32) Status
	SetName(id uint32, name string) Status
	GetEntryPoints(out *Pointer, count *int) Status
	GetResources(kind ir.ResourceKind, out *Pointer, count *int) Status
	SetEntryPoint(name string, model uint32) Status
	GetDeclaredStructSize(out *uint32, id uint32) Status
	SetOptions(options Options) Status
	Encode(out *Pointer) Status
	Delete() Status

	// LastError is the message of the last failing call on this handle
	// that recorded one. Compile records one with every CompilationError.
	LastError() string
}

// Engine is the Go implementation of Compiler. It is not safe for
// concurrent use.
type Engine struct {
	*Heap

	module    *ir.Module
	options   Options
	entry     *ir.EntryPointSelector
	lastError string
}

var _ Compiler = (*Engine)(nil)

// Load parses a SPIR-V word stream and builds an engine over it. When the
// module is rejected the reason is written to diag, if diag is not nil.
func Load(words []uint32, options Options, diag *string) (*Engine, Status) {
	parsed, err := spirv.ParseWords(words)
	if err == nil {
		var module *ir.Module
		if module, err = ir.Load(parsed); err == nil {
			return &Engine{Heap: NewHeap(), module: module, options: options}, Success
		}
	}
	if diag != nil {
		*diag = err.Error()
	}
	return nil, InvalidModule
}

// LastError returns the message recorded by the last failing call that
// had one to give.
func (e *Engine) LastError() string {
	return e.lastError
}

// fail records err as the last error and returns status.
func (e *Engine) fail(status Status, err error) Status {
	e.lastError = err.Error()
	return status
}

// Module returns the loaded module, or nil after Delete.
func (e *Engine) Module() *ir.Module {
	return e.module
}

// Compile runs the selected emitter over the current module state.
func (e *Engine) Compile(out *Pointer) Status {
	if e.module == nil {
		return Unhandled
	}
	source, err := e.emit()
	if err != nil {
		return e.fail(CompilationError, err)
	}
	*out = e.AllocString(source)
	return Success
}

func (e *Engine) emit() (string, error) {
	switch e.options.Target {
	case TargetGLSL:
		opts := e.options.GLSL
		opts.EntryPoint = e.entry
		source, _, err := glsl.Compile(e.module, opts)
		return source, err
	case TargetHLSL:
		opts := e.options.HLSL
		opts.EntryPoint = e.entry
		source, _, err := hlsl.Compile(e.module, &opts)
		return source, err
	case TargetMSL:
		pipeline := e.options.MSLPipeline
		pipeline.EntryPoint = e.entry
		source, _, err := msl.CompileWithPipeline(e.module, e.options.MSL, pipeline)
		return source, err
	}
	return "", fmt.Errorf("unknown target %s", e.options.Target)
}

// GetDecoration reads the literal of dec on id.
func (e *Engine) GetDecoration(out *uint32, id uint32, dec uint32) Status {
	if status := e.checkID(id); status != Success {
		return status
	}
	v, ok := e.module.Decorations.Decoration(id, spirv.Decoration(dec))
	if !ok {
		return NotDecorated
	}
	*out = v
	return Success
}

// SetDecoration stores literal as the value of dec on id.
func (e *Engine) SetDecoration(id uint32, dec uint32, literal uint32) Status {
	if status := e.checkID(id); status != Success {
		return status
	}
	e.module.Decorations.SetDecoration(id, spirv.Decoration(dec), literal)
	return Success
}

// UnsetDecoration removes dec from id.
func (e *Engine) UnsetDecoration(id uint32, dec uint32) Status {
	if status := e.checkID(id); status != Success {
		return status
	}
	if !e.module.Decorations.UnsetDecoration(id, spirv.Decoration(dec)) {
		return NotDecorated
	}
	return Success
}

// GetName returns the debug name of id, empty when it has none.
func (e *Engine) GetName(out *Pointer, id uint32) Status {
	if status := e.checkID(id); status != Success {
		return status
	}
	name, _ := e.module.Name(id)
	*out = e.AllocString(name)
	return Success
}

// SetName replaces the debug name of id.
func (e *Engine) SetName(id uint32, name string) Status {
	if status := e.checkID(id); status != Success {
		return status
	}
	e.module.SetName(id, name)
	return Success
}

// GetEntryPoints returns an array of every entry point.
func (e *Engine) GetEntryPoints(out *Pointer, count *int) Status {
	if e.module == nil {
		return Unhandled
	}
	eps := e.module.ReflectEntryPoints()
	records := make([]EntryPointRecord, len(eps))
	for i, ep := range eps {
		records[i] = EntryPointRecord{
			Name:          e.AllocString(ep.Name),
			Model:         uint32(ep.Model),
			WorkGroupSize: ep.WorkGroupSize,
		}
	}
	*out = e.AllocEntryPoints(records)
	*count = len(records)
	return Success
}

// GetResources returns an array of the resources of one category.
func (e *Engine) GetResources(kind ir.ResourceKind, out *Pointer, count *int) Status {
	if e.module == nil {
		return Unhandled
	}
	if kind >= ir.ResourceKindCount {
		return InvalidArgument
	}
	resources := e.module.Resources(kind)
	records := make([]ResourceRecord, len(resources))
	for i, r := range resources {
		records[i] = ResourceRecord{
			ID:         r.ID,
			TypeID:     r.TypeID,
			BaseTypeID: r.BaseTypeID,
			Name:       e.AllocString(r.Name),
		}
	}
	*out = e.AllocResources(records)
	*count = len(records)
	return Success
}

// SetEntryPoint selects the entry point Compile emits.
func (e *Engine) SetEntryPoint(name string, model uint32) Status {
	if e.module == nil {
		return Unhandled
	}
	sel := &ir.EntryPointSelector{Name: name, Model: spirv.ExecutionModel(model)}
	if _, err := e.module.SelectEntryPoint(sel); err != nil {
		return e.fail(InvalidArgument, err)
	}
	e.entry = sel
	return Success
}

// GetDeclaredStructSize returns the declared byte size of a struct type.
func (e *Engine) GetDeclaredStructSize(out *uint32, id uint32) Status {
	if status := e.checkID(id); status != Success {
		return status
	}
	size, err := e.module.DeclaredStructSize(id)
	if err != nil {
		var irErr *ir.Error
		if errors.As(err, &irErr) && irErr.Kind == ir.ErrInvalidID {
			return e.fail(InvalidID, err)
		}
		return e.fail(InvalidArgument, err)
	}
	*out = size
	return Success
}

// SetOptions replaces the emitter options.
func (e *Engine) SetOptions(options Options) Status {
	if e.module == nil {
		return Unhandled
	}
	if options.Target > TargetMSL {
		return InvalidArgument
	}
	e.options = options
	return Success
}

// Encode serializes the module with its current names and decorations.
func (e *Engine) Encode(out *Pointer) Status {
	if e.module == nil {
		return Unhandled
	}
	*out = e.AllocBytes(e.module.Encode())
	return Success
}

// Delete releases the module and every allocation still live on the heap.
func (e *Engine) Delete() Status {
	if e.module == nil {
		return InvalidPointer
	}
	e.module = nil
	e.entry = nil
	e.release()
	return Success
}

func (e *Engine) checkID(id uint32) Status {
	if e.module == nil {
		return Unhandled
	}
	if !e.module.IsDefined(id) {
		return InvalidID
	}
	return Success
}
