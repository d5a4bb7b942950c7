package cli

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/spvcross"
	"github.com/gogpu/spvcross/cross"
)

// ValidFormats defines the allowed reflection output formats.
var ValidFormats = []string{"json", "yaml"}

// ReflectOptions holds flags for the reflect command.
type ReflectOptions struct {
	*RootOptions
	Format string
}

// NewReflectCommand creates the reflect command.
func NewReflectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReflectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reflect <file.spv>",
		Short: "Print entry points and shader resources",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReflect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "json", "output format (json|yaml)")

	return cmd
}

func runReflect(opts *ReflectOptions, path string, cmd *cobra.Command) error {
	data, err := readModule(path)
	if err != nil {
		return err
	}

	options := cross.DefaultOptions()
	options.Logger = opts.logger(cmd.ErrOrStderr())
	c, err := cross.Load(data, options)
	if err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	defer c.Close()

	eps, err := c.EntryPoints()
	if err != nil {
		return fmt.Errorf("entry point error: %w", err)
	}
	res, err := c.ShaderResources()
	if err != nil {
		return fmt.Errorf("resource error: %w", err)
	}

	out, err := encodeReflection(&spvcross.Reflection{EntryPoints: eps, Resources: res}, opts.Format)
	if err != nil {
		return err
	}
	return writeOutput(cmd, "", out)
}

func encodeReflection(r *spvcross.Reflection, format string) ([]byte, error) {
	switch format {
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(data, '\n'), nil
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
