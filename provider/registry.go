package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/toolmesh/tool"
)

var (
	// ErrUnknownProvider is returned when no config with the given id exists.
	ErrUnknownProvider = fmt.Errorf("unknown provider")

	// ErrDuplicateProvider is returned when a config id is already registered.
	ErrDuplicateProvider = fmt.Errorf("duplicate provider id")

	// ErrNoBuilder is returned by Build when no builder is registered for the
	// provider's type.
	ErrNoBuilder = fmt.Errorf("no builder for provider type")
)

// BuildFunc turns a provider config into a live tool. Adapters in the
// subpackages supply implementations.
type BuildFunc func(cfg Config) (tool.Tool, error)

// Registry indexes provider configs and the per-type builders that turn them
// into tools. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	configs  map[string]Config
	order    []string
	builders map[string]BuildFunc
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs:  make(map[string]Config),
		builders: make(map[string]BuildFunc),
	}
}

// Add registers a provider config. Ids must be unique.
func (r *Registry) Add(cfg Config) error {
	if cfg.ID == "" {
		return fmt.Errorf("provider config missing id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[cfg.ID]; exists {
		return fmt.Errorf("add %q: %w", cfg.ID, ErrDuplicateProvider)
	}

	r.configs[cfg.ID] = cfg
	r.order = append(r.order, cfg.ID)
	return nil
}

// AddAll registers a batch of configs, typically the result of LoadConfig.
func (r *Registry) AddAll(cfgs []Config) error {
	for _, cfg := range cfgs {
		if err := r.Add(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the config registered under the id or ErrUnknownProvider.
func (r *Registry) Get(id string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[id]
	if !ok {
		return Config{}, fmt.Errorf("get %q: %w", id, ErrUnknownProvider)
	}
	return cfg, nil
}

// Select returns the configs offering the capability, ordered by descending
// priority. Equal priorities keep registration order.
func (r *Registry) Select(capability string) []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Config
	for _, id := range r.order {
		if cfg := r.configs[id]; cfg.HasCapability(capability) {
			matches = append(matches, cfg)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority > matches[j].Priority
	})

	return matches
}

// RegisterBuilder attaches the builder used for configs of the given type.
// Re-registering a type replaces its builder.
func (r *Registry) RegisterBuilder(providerType string, fn BuildFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[providerType] = fn
}

// Build turns the config registered under the id into a live tool using the
// builder registered for its type.
func (r *Registry) Build(id string) (tool.Tool, error) {
	r.mu.RLock()
	cfg, ok := r.configs[id]
	var fn BuildFunc
	if ok {
		fn = r.builders[cfg.Type]
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("build %q: %w", id, ErrUnknownProvider)
	}
	if fn == nil {
		return nil, fmt.Errorf("build %q (type %q): %w", id, cfg.Type, ErrNoBuilder)
	}

	return fn(cfg)
}
