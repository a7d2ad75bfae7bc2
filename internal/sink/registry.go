// Package sink provides the drain sink implementations and the factory
// registry that builds them from configuration.
package sink

import (
	"fmt"
	"sync"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

// Config is a key-value map for sink-type-specific configuration.
type Config map[string]any

func (c Config) str(key string) string {
	s, _ := c[key].(string)
	return s
}

func (c Config) num(key string) (int, bool) {
	switch n := c[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func (c Config) boolean(key string) bool {
	b, _ := c[key].(bool)
	return b
}

// Spec describes one sink instance to be created from configuration.
type Spec struct {
	Type   string `json:"type"`
	Config Config `json:"config,omitempty"`
}

// Factory creates a sink from config. Each sink type implements a Factory;
// ConfigSpec declares which configuration fields the type expects.
type Factory interface {
	Name() string
	ConfigSpec() TypeInfo
	Create(cfg Config) (wideevent.Sink, error)
}

// Registry holds registered sink factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for a sink type.
func (r *Registry) Register(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory.Name()] = factory
}

// Create builds a sink for the given type and config.
func (r *Registry) Create(name string, cfg Config) (wideevent.Sink, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sink type: %s", name)
	}
	return factory.Create(cfg)
}

// Build creates every sink described by specs, failing fast on the first
// misconfigured one.
func (r *Registry) Build(specs []Spec) ([]wideevent.Sink, error) {
	sinks := make([]wideevent.Sink, 0, len(specs))
	for _, spec := range specs {
		s, err := r.Create(spec.Type, spec.Config)
		if err != nil {
			return nil, fmt.Errorf("sink %q: %w", spec.Type, err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

// ListRegistered returns all registered sink type names.
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// GetTypeInfo returns the config spec for one sink type. ok is false if the
// type is not registered.
func (r *Registry) GetTypeInfo(name string) (info TypeInfo, ok bool) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return TypeInfo{}, false
	}
	return factory.ConfigSpec(), true
}

// AllTypesInfo returns config specs for every registered sink type.
func (r *Registry) AllTypesInfo() []TypeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TypeInfo, 0, len(r.factories))
	for _, factory := range r.factories {
		out = append(out, factory.ConfigSpec())
	}
	return out
}
