package dsl

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tree is the root of a definition document.
type Tree struct {
	Name  string         `yaml:"name"`
	Root  Node           `yaml:"root"`
	World map[string]any `yaml:"world,omitempty"`
}

// Node is one node definition. Which fields apply depends on Type.
type Node struct {
	Type     string         `yaml:"type"`
	Name     string         `yaml:"name,omitempty"`
	Params   map[string]any `yaml:"params,omitempty"`
	Children []Node         `yaml:"children,omitempty"`
	Child    *Node          `yaml:"child,omitempty"`

	// State machines only.
	Initial string  `yaml:"initial,omitempty"`
	States  []State `yaml:"states,omitempty"`
}

// State is one state of a state machine definition.
type State struct {
	Key  string            `yaml:"key"`
	Node Node              `yaml:"node"`
	On   map[string]string `yaml:"on"`
}

// Parse decodes a YAML definition. Unknown fields are rejected.
func Parse(data []byte) (*Tree, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Tree
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to parse tree definition: %w", err)
	}
	if t.Name == "" {
		t.Name = t.Root.Name
	}
	return &t, nil
}

// Load reads and parses the definition at path.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree definition: %w", err)
	}
	return Parse(data)
}
