package platform

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry holds the preparers for all supported platforms.
type Registry struct {
	preparers map[string]Preparer
	mu        sync.RWMutex
	logger    *slog.Logger
}

// RegistryInterface defines the registry operations the runner depends on.
// This interface enables mocking for testing.
type RegistryInterface interface {
	Get(name string) Preparer
	Names() []string
	Register(p Preparer)
}

// Compile-time assertion
var _ RegistryInterface = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		preparers: make(map[string]Preparer),
		logger:    logger,
	}
}

// Register adds a preparer, replacing any existing one for the same platform.
func (r *Registry) Register(p Preparer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	r.preparers[name] = p
	r.logger.Debug("registered preparer", "platform", name)
}

// Get returns the preparer for a platform, or nil if none exists.
func (r *Registry) Get(name string) Preparer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.preparers[name]
}

// Has returns true if a preparer exists for the platform.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.preparers[name]
	return ok
}

// Names returns the registered platform names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.preparers))
	for name := range r.preparers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
