package plugin

import "sort"

// Registry is an ordered set of loaded plugins, keyed by handler name for
// dispatch and retaining load order for HandleInstruction broadcast and for
// the "any plugin that backs this handler" resolution rule.
type Registry struct {
	plugins  []Plugin
	handlers map[string][]Plugin // handler name -> plugins backing it, in load order
}

// NewRegistry builds a Registry from plugins in load order. A plugin whose
// Handlers() overlaps an earlier plugin's is still registered for that
// handler — dispatch runs every backing plugin in load order and counts
// the step as handled if any of them reports ran=true.
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{
		plugins:  plugins,
		handlers: make(map[string][]Plugin),
	}
	for _, p := range plugins {
		for _, h := range p.Handlers() {
			r.handlers[h] = append(r.handlers[h], p)
		}
	}
	return r
}

// Plugins returns every loaded plugin, in load order.
func (r *Registry) Plugins() []Plugin {
	return r.plugins
}

// HandlerNames returns every handler name backed by at least one loaded
// plugin, sorted for deterministic error messages and listings.
func (r *Registry) HandlerNames() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Backing returns the plugins registered for handler, in load order.
func (r *Registry) Backing(handler string) []Plugin {
	return r.handlers[handler]
}
