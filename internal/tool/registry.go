package tool

import (
	"fmt"
	"sort"
)

// Registry maps tool names to tools. Lookup is by exact name.
// A Registry is not safe for concurrent Register calls; build it at startup
// and treat it as read-only afterwards.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
	}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool. A tool registered under an existing name replaces it.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Resolve returns the tool registered under name.
func (r *Registry) Resolve(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns all tool schemas sorted by name.
func (r *Registry) Declarations() []Declaration {
	decls := make([]Declaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

// Subset returns a new registry containing only the named tools.
// Every name must be registered.
func (r *Registry) Subset(names []string) (*Registry, error) {
	sub := NewRegistry()
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
		}
		sub.Register(t)
	}
	return sub, nil
}
