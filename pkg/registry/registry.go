package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/schema"
)

// Factory builds a leaf node named name from validated parameters.
type Factory func(name string, params map[string]any) (domain.Node, error)

// Entry is a registered leaf kind.
type Entry struct {
	Kind        string
	Description string
	Params      schema.Schema
	New         Factory
}

// Registry manages the leaf kinds a declarative tree may reference.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds a leaf kind to the registry.
// If a kind with the same name exists, it is overwritten.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Kind] = e
}

// RegisterFunc is Register for kinds without a parameter schema.
func (r *Registry) RegisterFunc(kind string, fn Factory) {
	r.Register(Entry{Kind: kind, New: fn})
}

// Lookup returns the entry registered for kind.
func (r *Registry) Lookup(kind string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[kind]
	return e, ok
}

// Build validates params against the kind's schema and calls its factory.
// Returns an error if the kind is not registered.
func (r *Registry) Build(kind, name string, params map[string]any) (domain.Node, error) {
	e, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("leaf kind not found: %s", kind)
	}
	if err := schema.Validate(e.Params, params); err != nil {
		return nil, err
	}
	n, err := e.New(name, params)
	if err != nil {
		return nil, fmt.Errorf("leaf %q (%s): %w", name, kind, err)
	}
	return n, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
