package clean

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Plugin is one field transformer. A plugin owns the output fields it
// writes and only reads the raw inputs relevant to them, which keeps
// transformers independently testable. Returning a *ValidationError aborts
// cleaning of the record; any other error is treated as an engine defect.
type Plugin[P, C any] interface {
	Clean(parsed *P, clean *C) error
}

// PluginFunc adapts a function to the Plugin interface.
type PluginFunc[P, C any] func(parsed *P, clean *C) error

// Clean implements Plugin.
func (f PluginFunc[P, C]) Clean(parsed *P, clean *C) error {
	return f(parsed, clean)
}

// Registry holds named plugins and applies them in registration order.
type Registry[P, C any] struct {
	names  []string
	byName map[string]Plugin[P, C]
}

// NewRegistry creates an empty plugin registry.
func NewRegistry[P, C any]() *Registry[P, C] {
	return &Registry[P, C]{byName: map[string]Plugin[P, C]{}}
}

// Register adds a plugin under a unique name. Registration order is the
// execution order. Re-registering a name replaces the plugin but keeps its
// original position.
func (r *Registry[P, C]) Register(name string, p Plugin[P, C]) *Registry[P, C] {
	if _, exists := r.byName[name]; !exists {
		r.names = append(r.names, name)
	}
	r.byName[name] = p
	return r
}

// Names returns the registered plugin names in execution order.
func (r *Registry[P, C]) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// apply runs every plugin in order against one record pair.
func (r *Registry[P, C]) apply(parsed *P, clean *C) error {
	for _, name := range r.names {
		if err := r.byName[name].Clean(parsed, clean); err != nil {
			if IsValidation(err) {
				return err
			}
			return eris.Wrapf(err, "clean: plugin %s", name)
		}
		zap.L().Debug("clean: plugin applied", zap.String("plugin", name))
	}
	return nil
}
