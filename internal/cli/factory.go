package cli

import (
	"fmt"
	"maps"
	"os"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/dsl"
	"github.com/aretw0/stackbt/pkg/registry"
	"gopkg.in/yaml.v3"
)

// loadTree parses and compiles the definition at path with the builtin leaf kinds.
func loadTree(path string) (*dsl.Tree, domain.Node, error) {
	def, err := dsl.Load(path)
	if err != nil {
		return nil, nil, err
	}
	root, err := dsl.Compile(def, dsl.WithRegistry(registry.Default()))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid tree %s: %w", path, err)
	}
	return def, root, nil
}

// loadWorld returns a copy of the definition's world, overlaid with the YAML
// map at path when set.
func loadWorld(def *dsl.Tree, path string) (map[string]any, error) {
	world := make(map[string]any)
	maps.Copy(world, def.World)
	if path == "" {
		return world, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world: %w", err)
	}
	var overlay map[string]any
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse world: %w", err)
	}
	maps.Copy(world, overlay)
	return world, nil
}
