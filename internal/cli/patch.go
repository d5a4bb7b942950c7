package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gogpu/spvcross/cross"
)

// PatchOptions holds flags for the patch command.
type PatchOptions struct {
	*RootOptions
	Remap  string
	Output string
}

// NewPatchCommand creates the patch command.
func NewPatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "patch <file.spv>",
		Short: "Rewrite decorations and re-encode the module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Remap, "remap", "", "YAML file of decoration rewrites")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	_ = cmd.MarkFlagRequired("remap")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runPatch(opts *PatchOptions, path string, cmd *cobra.Command) error {
	log := opts.logger(cmd.ErrOrStderr())

	data, err := readModule(path)
	if err != nil {
		return err
	}
	remap, err := LoadRemap(opts.Remap)
	if err != nil {
		return err
	}

	options := cross.DefaultOptions()
	options.Logger = log
	c, err := cross.Load(data, options)
	if err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	defer c.Close()

	if err := remap.Apply(c); err != nil {
		return err
	}
	binary, err := c.Binary()
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}
	log.Debug("writing module", zap.String("path", opts.Output), zap.Int("bytes", len(binary)))
	return writeOutput(cmd, opts.Output, binary)
}
