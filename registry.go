package drawstream

import (
	"fmt"
	"slices"
	"sync"
)

// BackendFactory creates a fresh backend. A factory is called once per
// NewBackend call, so backends never share replay state.
type BackendFactory func() Backend

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
)

// Register makes a backend available under name. Backend packages call
// it from init(), the same way database/sql drivers register:
//
//	func init() {
//	    drawstream.Register("trace", func() drawstream.Backend {
//	        return trace.New()
//	    })
//	}
//
// Register panics if factory is nil or if name is already taken, so
// conflicting imports fail at program start.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("drawstream: Register factory is nil")
	}
	if _, dup := backends[name]; dup {
		panic("drawstream: Register called twice for " + name)
	}
	backends[name] = factory
}

// Unregister removes name from the registry. Unknown names are ignored.
// Intended for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// NewBackend creates a backend registered under name.
//
//	import _ "github.com/gogpu/drawstream/backend/gpustate"
//
//	b, err := drawstream.NewBackend("gpustate")
//	if err != nil {
//	    return err
//	}
//	err = frame.Playback(b)
func NewBackend(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("drawstream: unknown backend %q (forgotten import?)", name)
	}
	return factory(), nil
}

// MustBackend is like NewBackend but panics if name is not registered.
func MustBackend(name string) Backend {
	b, err := NewBackend(name)
	if err != nil {
		panic(err)
	}
	return b
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend is registered under name.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Count returns the number of registered backends.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(backends)
}
