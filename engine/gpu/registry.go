package gpu

import (
	"fmt"
	"sort"
	"sync"
)

// Backend names used by the backend packages when they register themselves.
const (
	BackendNative   = "native"
	BackendBrowser  = "browser"
	BackendHeadless = "headless"
)

// BackendFactory creates a backend. It is invoked once per Open call.
type BackendFactory func() (Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for OpenDefault (first available wins).
	backendPriority = []string{BackendNative, BackendBrowser, BackendHeadless}
)

// Register registers a backend factory under name, replacing any previous registration.
// Backend packages call this from init, so importing a backend package makes it available.
//
// Parameters:
//   - name: the backend name
//   - factory: the constructor invoked by Open
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates an Instance over the named backend.
//
// Parameters:
//   - name: a registered backend name
//
// Returns:
//   - *Instance: the instance dispatching to the new backend
//   - error: ErrBackendNotAvailable if name is not registered, or the factory's error
func Open(name string) (*Instance, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("open %q: %w", name, ErrBackendNotAvailable)
	}

	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	Logger().Info("gpu backend opened", "backend", b.Name())
	return NewInstance(b), nil
}

// OpenDefault opens the backend named by OXY_GPU_BACKEND, or else the first registered backend
// in the order native, browser, headless whose factory succeeds.
//
// Returns:
//   - *Instance: the instance dispatching to the selected backend
//   - error: ErrBackendNotAvailable if nothing suitable is registered
func OpenDefault() (*Instance, error) {
	if name := ConfigFromEnv().Backend; name != "" {
		return Open(name)
	}

	registryMu.RLock()
	var candidates []string
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			candidates = append(candidates, name)
		}
	}
	registryMu.RUnlock()

	err := ErrBackendNotAvailable
	for _, name := range candidates {
		var inst *Instance
		inst, err = Open(name)
		if err == nil {
			return inst, nil
		}
		Logger().Warn("gpu backend unavailable", "backend", name, "error", err)
	}
	return nil, err
}
