package scene

import (
	"fmt"
	"image"
	"sort"
	"sync"
)

// Backend consumes retained nodes and produces a frame. Implementations
// replay each node's ops in slice order; nodes arrive already sorted in
// paint order.
//
// A frame is bracketed by Begin and End. Paint may be called once per
// frame with the full node list. Backends must tolerate empty frames.
type Backend interface {
	// Begin starts a frame of the given pixel size.
	Begin(width, height int) error

	// Paint replays the nodes in order.
	Paint(nodes []*Node) error

	// End finishes the frame.
	End() error
}

// ImageBackend is implemented by backends that can hand back the
// finished frame as an image.
type ImageBackend interface {
	Backend

	// Image returns the last completed frame.
	Image() image.Image
}

// FileBackend is implemented by backends that can write the finished
// frame to a file.
type FileBackend interface {
	Backend

	// WriteFile writes the last completed frame to path.
	WriteFile(path string) error
}

// Factory creates a new backend instance.
type Factory func() Backend

// registry holds registered backend factories.
var registry = struct {
	sync.RWMutex
	factories map[string]Factory
}{
	factories: make(map[string]Factory),
}

// Register makes a backend available by name. It is intended to be
// called from the init function in packages that implement backends.
//
// It panics if name is empty, factory is nil, or name is already
// registered.
func Register(name string, factory Factory) {
	if name == "" {
		panic("scene: Register backend name is empty")
	}
	if factory == nil {
		panic("scene: Register factory is nil")
	}

	registry.Lock()
	defer registry.Unlock()

	if _, dup := registry.factories[name]; dup {
		panic(fmt.Sprintf("scene: Register called twice for backend %q", name))
	}
	registry.factories[name] = factory
}

// NewBackend creates a backend by name. It returns an error if the
// name is not registered.
func NewBackend(name string) (Backend, error) {
	registry.RLock()
	factory, ok := registry.factories[name]
	registry.RUnlock()

	if !ok {
		return nil, fmt.Errorf("scene: unknown backend %q (forgotten import?)", name)
	}
	return factory(), nil
}

// MustBackend is like NewBackend but panics on error. Intended for
// tests and program initialization where the backend must exist.
func MustBackend(name string) Backend {
	b, err := NewBackend(name)
	if err != nil {
		panic(err)
	}
	return b
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	registry.RLock()
	defer registry.RUnlock()

	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a backend name is registered.
func IsRegistered(name string) bool {
	registry.RLock()
	defer registry.RUnlock()

	_, ok := registry.factories[name]
	return ok
}
