package spvcross

import (
	"runtime"
	"testing"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/glsl"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/msl"
)

// ---------------------------------------------------------------------------
// Benchmark inputs
// ---------------------------------------------------------------------------

var benchModules = []struct {
	name   string
	binary []byte
}{
	{"fragment", fixture.Fragment()},
	{"vertex", fixture.Vertex()},
	{"compute_loop", fixture.Compute()},
	{"branches", fixture.Branches()},
}

// ---------------------------------------------------------------------------
// End-to-End
// ---------------------------------------------------------------------------

// BenchmarkCompile benchmarks binary-to-source translation per target,
// including parsing and loading. Reports allocations and input bytes/sec.
func BenchmarkCompile(b *testing.B) {
	for _, target := range []Target{TargetGLSL, TargetHLSL, TargetMSL} {
		for _, bm := range benchModules {
			b.Run(target.String()+"/"+bm.name, func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(bm.binary)))

				var result string
				for b.Loop() {
					var err error
					result, err = Compile(bm.binary, target)
					if err != nil {
						b.Fatalf("compile failed: %v", err)
					}
				}
				runtime.KeepAlive(result)
			})
		}
	}
}

// BenchmarkReflect benchmarks entry point and resource enumeration.
func BenchmarkReflect(b *testing.B) {
	for _, bm := range benchModules {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(bm.binary)))

			var result *Reflection
			for b.Loop() {
				var err error
				result, err = Reflect(bm.binary)
				if err != nil {
					b.Fatalf("reflect failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// ---------------------------------------------------------------------------
// Emit phase only
// ---------------------------------------------------------------------------

// BenchmarkEmit loads the module once and measures only the emitters.
func BenchmarkEmit(b *testing.B) {
	module, err := Load(fixture.Fragment())
	if err != nil {
		b.Fatalf("load failed: %v", err)
	}

	b.Run("GLSL", func(b *testing.B) {
		b.ReportAllocs()
		var result string
		for b.Loop() {
			result, _, err = glsl.Compile(module, glsl.DefaultOptions())
			if err != nil {
				b.Fatalf("glsl compile failed: %v", err)
			}
		}
		runtime.KeepAlive(result)
	})

	b.Run("HLSL", func(b *testing.B) {
		b.ReportAllocs()
		var result string
		for b.Loop() {
			result, _, err = hlsl.Compile(module, hlsl.DefaultOptions())
			if err != nil {
				b.Fatalf("hlsl compile failed: %v", err)
			}
		}
		runtime.KeepAlive(result)
	})

	b.Run("MSL", func(b *testing.B) {
		b.ReportAllocs()
		var result string
		for b.Loop() {
			result, _, err = msl.Compile(module, msl.DefaultOptions())
			if err != nil {
				b.Fatalf("msl compile failed: %v", err)
			}
		}
		runtime.KeepAlive(result)
	})
}

// BenchmarkDecorationRoundTrip measures a binding rewrite followed by a
// recompile on a long-lived compiler.
func BenchmarkDecorationRoundTrip(b *testing.B) {
	c, err := cross.Load(fixture.Fragment(), cross.DefaultOptions())
	if err != nil {
		b.Fatalf("load failed: %v", err)
	}
	defer c.Close()
	res, err := c.ShaderResources()
	if err != nil {
		b.Fatalf("reflect failed: %v", err)
	}
	id := res.UniformBuffers[0].ID

	b.ReportAllocs()
	var binding uint32
	for b.Loop() {
		binding = (binding + 1) % 8
		if err := c.SetDecoration(id, cross.Binding, binding); err != nil {
			b.Fatalf("set decoration failed: %v", err)
		}
		if _, err := c.Compile(); err != nil {
			b.Fatalf("compile failed: %v", err)
		}
	}
}
