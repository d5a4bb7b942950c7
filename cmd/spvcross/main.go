// Command spvcross reflects and cross-compiles SPIR-V modules.
//
// Usage:
//
//	spvcross reflect shader.spv --format yaml
//	spvcross compile shader.spv --target msl --msl-version 2.1 -o shader.metal
//	spvcross dis shader.spv
//	spvcross patch shader.spv --remap bindings.yaml -o patched.spv
package main

import (
	"os"

	"github.com/gogpu/spvcross/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
