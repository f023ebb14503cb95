package source

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Registry holds the known source profiles.
type Registry struct {
	byName map[string]*Profile
}

// NewRegistry creates a registry with the given profiles.
func NewRegistry(profiles ...*Profile) *Registry {
	r := &Registry{byName: map[string]*Profile{}}
	for _, p := range profiles {
		r.byName[p.Name] = p
	}
	return r
}

// Default returns the registry of all built-in profiles.
func Default() *Registry {
	return NewRegistry(French(), Portuguese(), Generic())
}

// Get returns the profile for a source name.
func (r *Registry) Get(name string) (*Profile, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, eris.Errorf("source: unknown source system %q", name)
	}
	return p, nil
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Priorities returns the merge priority of every registered source, for
// the mastering engine.
func (r *Registry) Priorities() map[string]int {
	out := make(map[string]int, len(r.byName))
	for name, p := range r.byName {
		out[name] = p.Priority
	}
	return out
}
