// Command spvdis disassembles a SPIR-V binary. It is the dis subcommand of
// spvcross packaged on its own.
//
// Usage:
//
//	spvdis <file.spv> [-o out.spvasm]
package main

import (
	"os"

	"github.com/gogpu/spvcross/internal/cli"
)

func main() {
	cmd := cli.NewDisCommand(&cli.RootOptions{})
	cmd.Use = "spvdis <file.spv>"
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
