package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/glsl"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/msl"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Target      string
	Entry       string
	Stage       string
	Remap       string
	GLSLVersion int
	ES          bool
	Vulkan      bool
	ShaderModel string
	MSLVersion  string
	PointSize   bool
	Output      string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file.spv>",
		Short: "Translate a SPIR-V module to GLSL, HLSL or MSL",
		Long: `Translate one entry point of a SPIR-V module to source code.

Decorations listed in a --remap file are applied before translation,
so bindings and descriptor sets can be moved without touching the
binary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "glsl", "output language (glsl|hlsl|msl)")
	cmd.Flags().StringVarP(&opts.Entry, "entry", "e", "", "entry point name (default: first entry point)")
	cmd.Flags().StringVar(&opts.Stage, "stage", "", "execution model of --entry, such as Vertex or GLCompute")
	cmd.Flags().StringVar(&opts.Remap, "remap", "", "YAML file of decoration rewrites")
	cmd.Flags().IntVar(&opts.GLSLVersion, "glsl-version", 450, "GLSL version number")
	cmd.Flags().BoolVar(&opts.ES, "es", false, "emit GLSL ES")
	cmd.Flags().BoolVar(&opts.Vulkan, "vulkan", false, "emit Vulkan GLSL")
	cmd.Flags().StringVar(&opts.ShaderModel, "shader-model", "5_1", "HLSL shader model")
	cmd.Flags().StringVar(&opts.MSLVersion, "msl-version", "2.1", "MSL version")
	cmd.Flags().BoolVar(&opts.PointSize, "msl-point-size", false, "write PointSize to a [[point_size]] output")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default: stdout)")

	return cmd
}

// options builds compiler options from the flags.
func (o *CompileOptions) options(log *zap.Logger) (cross.Options, error) {
	options := cross.DefaultOptions()
	options.Logger = log

	target, err := cross.ParseTarget(o.Target)
	if err != nil {
		return options, err
	}
	options.Target = target

	version, err := glsl.ParseVersion(o.GLSLVersion, o.ES)
	if err != nil {
		return options, err
	}
	options.GLSL.LangVersion = version
	options.GLSL.Vulkan = o.Vulkan

	sm, err := hlsl.ParseShaderModel(o.ShaderModel)
	if err != nil {
		return options, err
	}
	options.HLSL.ShaderModel = sm

	mslVersion, err := msl.ParseVersion(o.MSLVersion)
	if err != nil {
		return options, err
	}
	options.MSL.LangVersion = mslVersion
	options.MSLPipeline.AllowAndForcePointSize = o.PointSize

	return options, nil
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	log := opts.logger(cmd.ErrOrStderr())
	options, err := opts.options(log)
	if err != nil {
		return err
	}

	data, err := readModule(path)
	if err != nil {
		return err
	}
	var remap *Remap
	if opts.Remap != "" {
		if remap, err = LoadRemap(opts.Remap); err != nil {
			return err
		}
	}

	c, err := cross.Load(data, options)
	if err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	defer c.Close()

	if err := remap.Apply(c); err != nil {
		return err
	}
	if opts.Entry != "" {
		if err := selectEntryPoint(c, opts.Entry, opts.Stage); err != nil {
			return err
		}
	}

	source, err := c.Compile()
	if err != nil {
		return fmt.Errorf("%s generation error: %w", options.Target, err)
	}
	log.Debug("writing source", zap.String("target", options.Target.String()), zap.Int("bytes", len(source)))
	return writeOutput(cmd, opts.Output, []byte(source))
}

// selectEntryPoint makes name the entry point to compile. Without a stage
// the first entry point of that name wins.
func selectEntryPoint(c *cross.Compiler, name, stage string) error {
	if stage != "" {
		model, err := cross.ParseExecutionModel(stage)
		if err != nil {
			return err
		}
		if err := c.SetEntryPoint(name, model); err != nil {
			return fmt.Errorf("entry point error: %w", err)
		}
		return nil
	}

	eps, err := c.EntryPoints()
	if err != nil {
		return fmt.Errorf("entry point error: %w", err)
	}
	for _, ep := range eps {
		if ep.Name == name {
			if err := c.SetEntryPoint(name, ep.ExecutionModel); err != nil {
				return fmt.Errorf("entry point error: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("entry point error: no entry point named %q", name)
}
