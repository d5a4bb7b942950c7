package cli

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/spvcross"
)

// NewDisCommand creates the dis command.
func NewDisCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dis <file.spv>",
		Short: "Disassemble a SPIR-V module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readModule(args[0])
			if err != nil {
				return err
			}
			text, err := spvcross.Disassemble(data)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, []byte(text))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: stdout)")

	return cmd
}
