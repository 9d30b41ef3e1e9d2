package hal

import (
	"fmt"
	"sync"
)

// BackendFactory creates a backend instance.
type BackendFactory func() Backend

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for default selection; first registered name wins.
	backendPriority = []string{"wgpu"}
)

// Register registers a backend factory under name. Typically called from
// init() in backend packages. Re-registering a name replaces the factory.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend. Useful for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// Open returns a backend instance by name. An empty name selects the
// default by priority, falling back to any registered backend.
func Open(name string) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if name != "" {
		factory, ok := backends[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
		}
		return factory(), nil
	}

	for _, candidate := range backendPriority {
		if factory, ok := backends[candidate]; ok {
			return factory(), nil
		}
	}
	for _, factory := range backends {
		return factory(), nil
	}
	return nil, ErrBackendNotAvailable
}
