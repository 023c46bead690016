package translate

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds the configured translation engines
type Registry struct {
	engines     map[string]Translator
	defaultName string
}

// NewRegistry registers engines by Name. defaultName is used for requests that
// do not pick an engine.
func NewRegistry(defaultName string, engines ...Translator) *Registry {
	r := &Registry{
		engines:     make(map[string]Translator, len(engines)),
		defaultName: strings.ToLower(strings.TrimSpace(defaultName)),
	}
	for _, e := range engines {
		if e != nil {
			r.engines[e.Name()] = e
		}
	}
	return r
}

// Get returns the engine registered under name, or the default engine for ""
func (r *Registry) Get(name string) (Translator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = r.defaultName
	}
	engine, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return engine, nil
}

// Default returns the default engine name
func (r *Registry) Default() string {
	return r.defaultName
}

// Names lists registered engines in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
