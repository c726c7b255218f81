// Package catalog loads the species catalog: the list of generation
// requests fed to the pipeline at startup.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// file is the on-disk catalog document.
type file struct {
	Species []entry `yaml:"species"`
}

// entry is one catalog row.
type entry struct {
	Name             string             `yaml:"name"`
	Tier             types.Tier         `yaml:"tier"`
	Quality          types.Quality      `yaml:"quality"`
	ReferenceImages  []string           `yaml:"reference_images"`
	BiologicalParams map[string]float64 `yaml:"biological_params"`
	ForceStrategy    types.StrategyKind `yaml:"force_strategy"`
	AddToScene       bool               `yaml:"add_to_scene"`
}

// Load reads the catalog YAML and converts each entry into a
// normalized generation request.
func Load(path string) ([]*types.GenerationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse converts catalog YAML bytes into generation requests.
func Parse(data []byte) ([]*types.GenerationRequest, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	out := make([]*types.GenerationRequest, 0, len(doc.Species))
	for i, e := range doc.Species {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: species name is required", i)
		}
		if e.ForceStrategy != "" && !types.ValidStrategyKind(e.ForceStrategy) {
			return nil, fmt.Errorf("catalog entry %q: unknown strategy %q", e.Name, e.ForceStrategy)
		}
		req := &types.GenerationRequest{
			Species:          e.Name,
			Tier:             e.Tier,
			Quality:          e.Quality,
			ReferenceImages:  e.ReferenceImages,
			BiologicalParams: e.BiologicalParams,
			ForceStrategy:    e.ForceStrategy,
			AddToScene:       e.AddToScene,
		}
		req.Normalize()
		out = append(out, req)
	}
	return out, nil
}
