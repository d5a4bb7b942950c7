package cross

import (
	"runtime"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gogpu/spvcross/internal/engine"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// WorkGroupSize is the local size of a compute entry point.
type WorkGroupSize struct {
	X uint32 `json:"x" yaml:"x"`
	Y uint32 `json:"y" yaml:"y"`
	Z uint32 `json:"z" yaml:"z"`
}

// EntryPoint describes one entry point of the module.
type EntryPoint struct {
	Name           string         `json:"name" yaml:"name"`
	ExecutionModel ExecutionModel `json:"executionModel" yaml:"executionModel"`
	// WorkGroupSize is zero unless the entry point declares a local size.
	WorkGroupSize WorkGroupSize `json:"workGroupSize" yaml:"workGroupSize"`
}

// Resource is a shader-visible variable. TypeID is the variable's own
// type; BaseTypeID has pointers and arrays stripped.
type Resource struct {
	ID         uint32 `json:"id" yaml:"id"`
	TypeID     uint32 `json:"typeId" yaml:"typeId"`
	BaseTypeID uint32 `json:"baseTypeId" yaml:"baseTypeId"`
	Name       string `json:"name" yaml:"name"`
}

// ShaderResources partitions the module's resources. Every category is in
// declaration order and no resource appears in two categories.
type ShaderResources struct {
	UniformBuffers      []Resource `json:"uniformBuffers" yaml:"uniformBuffers"`
	StorageBuffers      []Resource `json:"storageBuffers" yaml:"storageBuffers"`
	StageInputs         []Resource `json:"stageInputs" yaml:"stageInputs"`
	StageOutputs        []Resource `json:"stageOutputs" yaml:"stageOutputs"`
	SubpassInputs       []Resource `json:"subpassInputs" yaml:"subpassInputs"`
	StorageImages       []Resource `json:"storageImages" yaml:"storageImages"`
	SampledImages       []Resource `json:"sampledImages" yaml:"sampledImages"`
	AtomicCounters      []Resource `json:"atomicCounters" yaml:"atomicCounters"`
	PushConstantBuffers []Resource `json:"pushConstantBuffers" yaml:"pushConstantBuffers"`
	SeparateImages      []Resource `json:"separateImages" yaml:"separateImages"`
	SeparateSamplers    []Resource `json:"separateSamplers" yaml:"separateSamplers"`
}

var resourceCategories = [ir.ResourceKindCount]func(*ShaderResources) *[]Resource{
	ir.ResourceUniformBuffer:      func(s *ShaderResources) *[]Resource { return &s.UniformBuffers },
	ir.ResourceStorageBuffer:      func(s *ShaderResources) *[]Resource { return &s.StorageBuffers },
	ir.ResourceStageInput:         func(s *ShaderResources) *[]Resource { return &s.StageInputs },
	ir.ResourceStageOutput:        func(s *ShaderResources) *[]Resource { return &s.StageOutputs },
	ir.ResourceSubpassInput:       func(s *ShaderResources) *[]Resource { return &s.SubpassInputs },
	ir.ResourceStorageImage:       func(s *ShaderResources) *[]Resource { return &s.StorageImages },
	ir.ResourceSampledImage:       func(s *ShaderResources) *[]Resource { return &s.SampledImages },
	ir.ResourceAtomicCounter:      func(s *ShaderResources) *[]Resource { return &s.AtomicCounters },
	ir.ResourcePushConstantBuffer: func(s *ShaderResources) *[]Resource { return &s.PushConstantBuffers },
	ir.ResourceSeparateImage:      func(s *ShaderResources) *[]Resource { return &s.SeparateImages },
	ir.ResourceSeparateSampler:    func(s *ShaderResources) *[]Resource { return &s.SeparateSamplers },
}

// Compiler owns one loaded module. It is not safe for concurrent use:
// callers sharing a Compiler between goroutines must serialize access.
type Compiler struct {
	h       *handle
	cleanup runtime.Cleanup
	log     *zap.Logger
}

// handle is the engine state released by Close or, for a Compiler that is
// never closed, by the runtime once the Compiler is unreachable.
type handle struct {
	engine engine.Compiler
	closed bool
}

func (h *handle) release() engine.Status {
	if h.closed {
		return engine.Success
	}
	h.closed = true
	return h.engine.Delete()
}

// Load parses a SPIR-V binary and returns a Compiler for it. Both byte
// orders are accepted.
func Load(binary []byte, options Options) (*Compiler, error) {
	log := options.Logger
	if log == nil {
		log = Logger()
	}
	opts, err := options.engine()
	if err != nil {
		return nil, err
	}
	words, err := spirv.Words(binary)
	if err != nil {
		return nil, unhandled("%v", err)
	}
	var diag string
	e, status := engine.Load(words, opts, &diag)
	if status != engine.Success {
		log.Debug("module rejected", zap.Stringer("status", status), zap.String("reason", diag))
		return nil, &Error{Code: Unhandled, Message: diag}
	}
	log.Debug("module loaded", zap.Int("words", len(words)), zap.Stringer("target", options.Target))
	return newCompiler(e, log), nil
}

func newCompiler(e engine.Compiler, log *zap.Logger) *Compiler {
	c := &Compiler{h: &handle{engine: e}, log: log}
	c.cleanup = runtime.AddCleanup(c, func(h *handle) {
		if status := h.release(); status != engine.Success {
			log.Warn("releasing unclosed compiler failed", zap.Stringer("status", status))
		}
	}, c.h)
	return c
}

// Close releases the engine state. Calling Close again is a no-op; every
// other method fails with Unhandled once the Compiler is closed.
func (c *Compiler) Close() error {
	if c.h.closed {
		return nil
	}
	c.cleanup.Stop()
	status := c.h.release()
	c.log.Debug("compiler closed")
	return statusError(status, "delete")
}

func (c *Compiler) live() (engine.Compiler, error) {
	if c.h.closed {
		return nil, errClosed
	}
	return c.h.engine, nil
}

// free returns a buffer to the engine.
func (c *Compiler) free(mem engine.Memory, p engine.Pointer, what string) error {
	status := mem.Free(p)
	if status != engine.Success {
		c.log.Warn("freeing engine buffer failed", zap.String("buffer", what), zap.Stringer("status", status))
	}
	return statusError(status, "free "+what)
}

// takeString copies a string out of an engine buffer and frees the buffer,
// whether or not the copy succeeds.
func (c *Compiler) takeString(mem engine.Memory, p engine.Pointer, what string) (string, error) {
	data, status := mem.ReadString(p)
	freeErr := c.free(mem, p, what)
	if err := statusError(status, "read "+what); err != nil {
		return "", err
	}
	if freeErr != nil {
		return "", freeErr
	}
	if !utf8.Valid(data) {
		return "", unhandled("%s is not valid UTF-8", what)
	}
	return string(data), nil
}

// Decoration returns the literal of dec on id. An id without the
// decoration fails with NotDecorated; an unknown id fails with Unhandled.
func (c *Compiler) Decoration(id uint32, dec Decoration) (uint32, error) {
	e, err := c.live()
	if err != nil {
		return 0, err
	}
	raw, ok := dec.raw()
	if !ok {
		return 0, unhandled("unknown decoration %s", dec)
	}
	var v uint32
	if err := statusError(e.GetDecoration(&v, id, raw), "get decoration "+dec.String()); err != nil {
		return 0, err
	}
	return v, nil
}

// SetDecoration sets dec on id to literal, replacing any previous value.
// The literal is not validated against the decoration kind.
func (c *Compiler) SetDecoration(id uint32, dec Decoration, literal uint32) error {
	e, err := c.live()
	if err != nil {
		return err
	}
	raw, ok := dec.raw()
	if !ok {
		return unhandled("unknown decoration %s", dec)
	}
	if err := statusError(e.SetDecoration(id, raw, literal), "set decoration "+dec.String()); err != nil {
		return err
	}
	c.log.Debug("decoration set", zap.Uint32("id", id), zap.Stringer("decoration", dec), zap.Uint32("literal", literal))
	return nil
}

// UnsetDecoration removes dec from id.
func (c *Compiler) UnsetDecoration(id uint32, dec Decoration) error {
	e, err := c.live()
	if err != nil {
		return err
	}
	raw, ok := dec.raw()
	if !ok {
		return unhandled("unknown decoration %s", dec)
	}
	return statusError(e.UnsetDecoration(id, raw), "unset decoration "+dec.String())
}

// Name returns the debug name of id, or "" when it has none.
func (c *Compiler) Name(id uint32) (string, error) {
	e, err := c.live()
	if err != nil {
		return "", err
	}
	var p engine.Pointer
	if err := statusError(e.GetName(&p, id), "get name"); err != nil {
		return "", err
	}
	return c.takeString(e, p, "name")
}

// SetName replaces the debug name of id. Names steer the identifiers the
// emitters choose.
func (c *Compiler) SetName(id uint32, name string) error {
	e, err := c.live()
	if err != nil {
		return err
	}
	return statusError(e.SetName(id, name), "set name")
}

// EntryPoints returns every entry point. The call fails as a whole if any
// entry point cannot be converted.
func (c *Compiler) EntryPoints() ([]EntryPoint, error) {
	e, err := c.live()
	if err != nil {
		return nil, err
	}
	var p engine.Pointer
	var n int
	if err := statusError(e.GetEntryPoints(&p, &n), "get entry points"); err != nil {
		return nil, err
	}

	records, status := e.ReadEntryPoints(p)
	firstErr := statusError(status, "read entry points")
	if firstErr == nil && len(records) != n {
		firstErr = unhandled("entry point array holds %d records, want %d", len(records), n)
	}

	entryPoints := make([]EntryPoint, 0, len(records))
	for _, r := range records {
		// Every name is freed, including those after a failure.
		name, err := c.takeString(e, r.Name, "entry point name")
		model, ok := executionModelFromRaw(r.Model)
		switch {
		case firstErr != nil:
		case err != nil:
			firstErr = err
		case !ok:
			firstErr = unhandled("entry point %q has unsupported execution model %s", name, spirv.ExecutionModel(r.Model))
		default:
			entryPoints = append(entryPoints, EntryPoint{
				Name:           name,
				ExecutionModel: model,
				WorkGroupSize:  WorkGroupSize{X: r.WorkGroupSize[0], Y: r.WorkGroupSize[1], Z: r.WorkGroupSize[2]},
			})
		}
	}
	if err := c.free(e, p, "entry point array"); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	c.log.Debug("entry points enumerated", zap.Int("count", len(entryPoints)))
	return entryPoints, nil
}

// ShaderResources returns the module's resources by category. Categories
// are converted one at a time; a failure stops before the next category
// is requested.
func (c *Compiler) ShaderResources() (ShaderResources, error) {
	e, err := c.live()
	if err != nil {
		return ShaderResources{}, err
	}
	var out ShaderResources
	for kind, field := range resourceCategories {
		list, err := c.resources(e, ir.ResourceKind(kind)) //nolint:gosec // G115: bounded by ResourceKindCount
		if err != nil {
			return ShaderResources{}, err
		}
		*field(&out) = list
	}
	c.log.Debug("shader resources enumerated")
	return out, nil
}

func (c *Compiler) resources(e engine.Compiler, kind ir.ResourceKind) ([]Resource, error) {
	var p engine.Pointer
	var n int
	if err := statusError(e.GetResources(kind, &p, &n), "get "+kind.String()); err != nil {
		return nil, err
	}

	records, status := e.ReadResources(p)
	firstErr := statusError(status, "read "+kind.String())
	if firstErr == nil && len(records) != n {
		firstErr = unhandled("%s array holds %d records, want %d", kind, len(records), n)
	}

	list := make([]Resource, 0, len(records))
	for _, r := range records {
		name, err := c.takeString(e, r.Name, kind.String()+" name")
		switch {
		case firstErr != nil:
		case err != nil:
			firstErr = err
		default:
			list = append(list, Resource{ID: r.ID, TypeID: r.TypeID, BaseTypeID: r.BaseTypeID, Name: name})
		}
	}
	if err := c.free(e, p, kind.String()+" array"); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return list, nil
}

// SetEntryPoint selects the entry point Compile emits. By default the
// first entry point is used.
func (c *Compiler) SetEntryPoint(name string, model ExecutionModel) error {
	e, err := c.live()
	if err != nil {
		return err
	}
	raw, ok := model.raw()
	if !ok {
		return unhandled("unknown execution model %s", model)
	}
	return statusError(e.SetEntryPoint(name, raw), "set entry point")
}

// DeclaredStructSize returns the byte size of a struct type as declared by
// its layout decorations.
func (c *Compiler) DeclaredStructSize(id uint32) (uint32, error) {
	e, err := c.live()
	if err != nil {
		return 0, err
	}
	var size uint32
	if err := statusError(e.GetDeclaredStructSize(&size, id), "get declared struct size"); err != nil {
		return 0, err
	}
	return size, nil
}

// SetOptions replaces the emitter options. The logger is kept.
func (c *Compiler) SetOptions(options Options) error {
	e, err := c.live()
	if err != nil {
		return err
	}
	opts, err := options.engine()
	if err != nil {
		return err
	}
	return statusError(e.SetOptions(opts), "set options")
}

// Compile emits source for the selected entry point from the current
// module state.
func (c *Compiler) Compile() (string, error) {
	e, err := c.live()
	if err != nil {
		return "", err
	}
	var p engine.Pointer
	if err := compileError(e, e.Compile(&p)); err != nil {
		c.log.Debug("compile failed", zap.Error(err))
		return "", err
	}
	source, err := c.takeString(e, p, "compiled source")
	if err != nil {
		return "", err
	}
	c.log.Debug("compiled", zap.Int("bytes", len(source)))
	return source, nil
}

// Binary re-encodes the module with its current names and decorations.
func (c *Compiler) Binary() ([]byte, error) {
	e, err := c.live()
	if err != nil {
		return nil, err
	}
	var p engine.Pointer
	if err := statusError(e.Encode(&p), "encode"); err != nil {
		return nil, err
	}
	data, status := e.ReadBytes(p)
	freeErr := c.free(e, p, "module binary")
	if err := statusError(status, "read module binary"); err != nil {
		return nil, err
	}
	if freeErr != nil {
		return nil, freeErr
	}
	return data, nil
}
