package cross

import (
	"go.uber.org/zap"

	"github.com/gogpu/spvcross/internal/engine"
	"github.com/gogpu/spvcross/ir"
)

// fakeEngine is an engine double whose results are set by each test. It
// allocates on a real heap so outstanding buffers can be counted.
type fakeEngine struct {
	*engine.Heap

	entryPoints []fakeEntryPoint
	resources   map[ir.ResourceKind][]fakeResource
	source      string
	status      engine.Status
	lastError   string

	resourceCalls []ir.ResourceKind
	deletes       int
}

type fakeEntryPoint struct {
	name  string
	model uint32
}

type fakeResource struct {
	id   uint32
	name string
}

func newFake() *fakeEngine {
	return &fakeEngine{Heap: engine.NewHeap(), resources: make(map[ir.ResourceKind][]fakeResource)}
}

func (f *fakeEngine) compiler() *Compiler {
	return newCompiler(f, zap.NewNop())
}

func (f *fakeEngine) Compile(out *engine.Pointer) engine.Status {
	if f.status != engine.Success {
		return f.status
	}
	*out = f.AllocString(f.source)
	return engine.Success
}

func (f *fakeEngine) GetDecoration(out *uint32, id uint32, dec uint32) engine.Status {
	return f.status
}

func (f *fakeEngine) SetDecoration(id uint32, dec uint32, literal uint32) engine.Status {
	return f.status
}

func (f *fakeEngine) UnsetDecoration(id uint32, dec uint32) engine.Status {
	return f.status
}

func (f *fakeEngine) GetName(out *engine.Pointer, id uint32) engine.Status {
	*out = f.AllocString(f.source)
	return engine.Success
}

func (f *fakeEngine) SetName(id uint32, name string) engine.Status {
	return f.status
}

func (f *fakeEngine) GetEntryPoints(out *engine.Pointer, count *int) engine.Status {
	records := make([]engine.EntryPointRecord, len(f.entryPoints))
	for i, ep := range f.entryPoints {
		records[i] = engine.EntryPointRecord{Name: f.AllocString(ep.name), Model: ep.model}
	}
	*out = f.AllocEntryPoints(records)
	*count = len(records)
	return engine.Success
}

func (f *fakeEngine) GetResources(kind ir.ResourceKind, out *engine.Pointer, count *int) engine.Status {
	f.resourceCalls = append(f.resourceCalls, kind)
	list := f.resources[kind]
	records := make([]engine.ResourceRecord, len(list))
	for i, r := range list {
		records[i] = engine.ResourceRecord{ID: r.id, TypeID: r.id + 100, BaseTypeID: r.id + 200, Name: f.AllocString(r.name)}
	}
	*out = f.AllocResources(records)
	*count = len(records)
	return engine.Success
}

func (f *fakeEngine) SetEntryPoint(name string, model uint32) engine.Status {
	return f.status
}

func (f *fakeEngine) GetDeclaredStructSize(out *uint32, id uint32) engine.Status {
	return f.status
}

func (f *fakeEngine) SetOptions(options engine.Options) engine.Status {
	return f.status
}

func (f *fakeEngine) Encode(out *engine.Pointer) engine.Status {
	*out = f.AllocBytes([]byte{1, 2, 3, 4})
	return engine.Success
}

func (f *fakeEngine) Delete() engine.Status {
	f.deletes++
	return engine.Success
}

func (f *fakeEngine) LastError() string {
	return f.lastError
}
