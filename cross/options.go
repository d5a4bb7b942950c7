package cross

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gogpu/spvcross/glsl"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/internal/engine"
	"github.com/gogpu/spvcross/msl"
)

// Target is the shading language Compile emits.
type Target uint8

// Supported output languages.
const (
	GLSL Target = iota
	HLSL
	MSL
)

func (t Target) String() string {
	switch t {
	case GLSL:
		return "glsl"
	case HLSL:
		return "hlsl"
	case MSL:
		return "msl"
	}
	return fmt.Sprintf("Target(%d)", uint8(t))
}

// ParseTarget parses "glsl", "hlsl" or "msl".
func ParseTarget(s string) (Target, error) {
	for _, t := range []Target{GLSL, HLSL, MSL} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown target %q", s)
}

// Options configures a Compiler. Only the emitter options of Target are
// consulted; the entry point fields inside them are overridden by
// SetEntryPoint.
type Options struct {
	Target      Target
	GLSL        glsl.Options
	HLSL        hlsl.Options
	MSL         msl.Options
	MSLPipeline msl.PipelineOptions

	// Logger overrides the package logger for this compiler.
	Logger *zap.Logger
}

// DefaultOptions returns GLSL output with every emitter at its defaults.
func DefaultOptions() Options {
	return Options{
		Target: GLSL,
		GLSL:   glsl.DefaultOptions(),
		HLSL:   *hlsl.DefaultOptions(),
		MSL:    msl.DefaultOptions(),
	}
}

func (o Options) engine() (engine.Options, error) {
	var target engine.Target
	switch o.Target {
	case GLSL:
		target = engine.TargetGLSL
	case HLSL:
		target = engine.TargetHLSL
	case MSL:
		target = engine.TargetMSL
	default:
		return engine.Options{}, unhandled("unknown target %s", o.Target)
	}
	return engine.Options{
		Target:      target,
		GLSL:        o.GLSL,
		HLSL:        o.HLSL,
		MSL:         o.MSL,
		MSLPipeline: o.MSLPipeline,
	}, nil
}
