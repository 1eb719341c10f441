package plugin

import (
	"fmt"
	"sort"
	"sync"

	"stellab.xyz/argus/internal/core"
)

// factoryRegistry is a name-to-factory map for one plugin kind.
type factoryRegistry[T Plugin] struct {
	mu        sync.RWMutex
	factories map[string]func() T
}

func newFactoryRegistry[T Plugin]() *factoryRegistry[T] {
	return &factoryRegistry[T]{factories: make(map[string]func() T)}
}

func (r *factoryRegistry[T]) Register(name string, factory func() T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("plugin %q registered twice", name))
	}
	r.factories[name] = factory
}

func (r *factoryRegistry[T]) Get(name string) (func() T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", core.ErrPluginNotFound, name)
	}
	return factory, nil
}

func (r *factoryRegistry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops all registrations. Test helper.
func (r *factoryRegistry[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = make(map[string]func() T)
}

var (
	extractorReg   = newFactoryRegistry[Extractor]()
	transformerReg = newFactoryRegistry[Transformer]()
	loaderReg      = newFactoryRegistry[Loader]()
)

// RegisterExtractor registers an extractor factory. Panics on a duplicate
// name; registration happens in init functions where a duplicate is a
// programming error.
func RegisterExtractor(name string, factory func() Extractor) {
	extractorReg.Register(name, factory)
}

// RegisterTransformer registers a transformer factory.
func RegisterTransformer(name string, factory func() Transformer) {
	transformerReg.Register(name, factory)
}

// RegisterLoader registers a loader factory.
func RegisterLoader(name string, factory func() Loader) {
	loaderReg.Register(name, factory)
}

// GetExtractorFactory looks up an extractor factory by name.
func GetExtractorFactory(name string) (func() Extractor, error) {
	return extractorReg.Get(name)
}

// GetTransformerFactory looks up a transformer factory by name.
func GetTransformerFactory(name string) (func() Transformer, error) {
	return transformerReg.Get(name)
}

// GetLoaderFactory looks up a loader factory by name.
func GetLoaderFactory(name string) (func() Loader, error) {
	return loaderReg.Get(name)
}

// ListExtractors returns registered extractor names, sorted.
func ListExtractors() []string { return extractorReg.List() }

// ListTransformers returns registered transformer names, sorted.
func ListTransformers() []string { return transformerReg.List() }

// ListLoaders returns registered loader names, sorted.
func ListLoaders() []string { return loaderReg.List() }
