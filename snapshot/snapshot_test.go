// Package snapshot_test provides golden snapshot tests for all backends.
//
// Every fixture module is disassembled and compiled through the three
// emitters; the output is compared to golden files stored in
// testdata/golden/{spvasm,glsl,hlsl,msl}/.
//
// To create or regenerate golden files after intentional changes:
//
//	go test ./snapshot/... -update
package snapshot_test

import (
	"flag"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/glsl"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/msl"
	"github.com/gogpu/spvcross/spirv"
)

// ---------------------------------------------------------------------------
// Test Runner
// ---------------------------------------------------------------------------

var shaders = []struct {
	name   string
	binary func() []byte
}{
	{"fragment_resources", fixture.Fragment},
	{"vertex_camera", fixture.Vertex},
	{"compute_loop", fixture.Compute},
	{"fragment_branches", fixture.Branches},
}

// TestSnapshots compiles each fixture through every backend and compares
// the output with its golden file.
func TestSnapshots(t *testing.T) {
	for _, shader := range shaders {
		t.Run(shader.name, func(t *testing.T) {
			parsed, err := spirv.Parse(shader.binary())
			require.NoError(t, err)
			module, err := ir.Load(parsed)
			require.NoError(t, err)

			t.Run("spvasm", func(t *testing.T) {
				assertGolden(t, "spvasm/"+shader.name, spirv.Disassemble(parsed))
			})

			t.Run("glsl", func(t *testing.T) {
				code, _, err := glsl.Compile(module, glsl.DefaultOptions())
				require.NoError(t, err)
				assertGolden(t, "glsl/"+shader.name, code)
			})

			t.Run("glsl_vulkan", func(t *testing.T) {
				opts := glsl.DefaultOptions()
				opts.Vulkan = true
				code, _, err := glsl.Compile(module, opts)
				require.NoError(t, err)
				assertGolden(t, "glsl/"+shader.name+".vk", code)
			})

			t.Run("hlsl", func(t *testing.T) {
				code, _, err := hlsl.Compile(module, hlsl.DefaultOptions())
				require.NoError(t, err)
				assertGolden(t, "hlsl/"+shader.name, code)
			})

			t.Run("msl", func(t *testing.T) {
				code, _, err := msl.Compile(module, msl.DefaultOptions())
				require.NoError(t, err)
				assertGolden(t, "msl/"+shader.name, code)
			})
		})
	}
}

// ---------------------------------------------------------------------------
// Golden Comparison
// ---------------------------------------------------------------------------

// assertGolden compares actual with testdata/golden/<name>.golden. A
// missing golden file skips the comparison unless -update is set.
func assertGolden(t *testing.T, name, actual string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	if _, err := os.Stat(g.GoldenFileName(t, name)); os.IsNotExist(err) && !updating() {
		t.Skipf("no golden file for %s; run with -update to create it", name)
	}
	g.Assert(t, name, []byte(actual))
}

func updating() bool {
	f := flag.Lookup("update")
	return f != nil && f.Value.String() == "true"
}
