package cli

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/spvcross/cross"
)

// Remap is a list of decoration rewrites read from YAML:
//
//	resources:
//	  - name: globals
//	    set: 1
//	    binding: 0
//	  - id: 42
//	    decorations:
//	      Location: 3
type Remap struct {
	Resources []RemapEntry `yaml:"resources"`
}

// RemapEntry targets one id, directly or by resource name.
type RemapEntry struct {
	ID          uint32                      `yaml:"id,omitempty"`
	Name        string                      `yaml:"name,omitempty"`
	Set         *uint32                     `yaml:"set,omitempty"`
	Binding     *uint32                     `yaml:"binding,omitempty"`
	Decorations map[cross.Decoration]uint32 `yaml:"decorations,omitempty"`
	Unset       []cross.Decoration          `yaml:"unset,omitempty"`
}

// LoadRemap reads and decodes a remap file.
func LoadRemap(path string) (*Remap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading remap: %w", err)
	}
	var r Remap
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing remap %s: %w", path, err)
	}
	for i, e := range r.Resources {
		if e.ID == 0 && e.Name == "" {
			return nil, fmt.Errorf("remap %s: entry %d has neither id nor name", path, i)
		}
	}
	return &r, nil
}

// Apply writes every rewrite into c. Names resolve against the shader
// resources of the module; an unknown or ambiguous name is an error.
func (r *Remap) Apply(c *cross.Compiler) error {
	if r == nil || len(r.Resources) == 0 {
		return nil
	}
	res, err := c.ShaderResources()
	if err != nil {
		return fmt.Errorf("resource error: %w", err)
	}
	byName := indexResources(res)

	for _, e := range r.Resources {
		id := e.ID
		if id == 0 {
			ids := byName[e.Name]
			switch len(ids) {
			case 0:
				return fmt.Errorf("remap: no resource named %q", e.Name)
			case 1:
				id = ids[0]
			default:
				return fmt.Errorf("remap: resource name %q is ambiguous", e.Name)
			}
		}

		for _, dec := range e.Unset {
			if err := c.UnsetDecoration(id, dec); err != nil && !errors.Is(err, cross.ErrNotDecorated) {
				return fmt.Errorf("remap %s: %w", e.label(), err)
			}
		}
		if e.Set != nil {
			if err := c.SetDecoration(id, cross.DescriptorSet, *e.Set); err != nil {
				return fmt.Errorf("remap %s: %w", e.label(), err)
			}
		}
		if e.Binding != nil {
			if err := c.SetDecoration(id, cross.Binding, *e.Binding); err != nil {
				return fmt.Errorf("remap %s: %w", e.label(), err)
			}
		}
		for dec, literal := range e.Decorations {
			if err := c.SetDecoration(id, dec, literal); err != nil {
				return fmt.Errorf("remap %s: %w", e.label(), err)
			}
		}
	}
	return nil
}

func (e RemapEntry) label() string {
	if e.Name != "" {
		return fmt.Sprintf("%q", e.Name)
	}
	return fmt.Sprintf("id %d", e.ID)
}

func indexResources(res cross.ShaderResources) map[string][]uint32 {
	out := make(map[string][]uint32)
	for _, list := range [][]cross.Resource{
		res.UniformBuffers, res.StorageBuffers, res.StageInputs, res.StageOutputs,
		res.SubpassInputs, res.StorageImages, res.SampledImages, res.AtomicCounters,
		res.PushConstantBuffers, res.SeparateImages, res.SeparateSamplers,
	} {
		for _, r := range list {
			if r.Name != "" {
				out[r.Name] = append(out[r.Name], r.ID)
			}
		}
	}
	return out
}
