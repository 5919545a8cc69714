package pipeline

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/shader"
)

// Handle identifies a backend pipeline object. Handles stay valid until the
// registry that created them shuts down or reloads.
type Handle uint64

// Backend is the pipeline-creation surface the registry drives. The concrete
// graphics backend implements it; tests substitute a recording mock.
type Backend interface {
	// CreatePipeline compiles a descriptor into a backend pipeline object.
	//
	// Parameters:
	//   - desc: the structural pipeline descriptor
	//
	// Returns:
	//   - Handle: the backend pipeline handle
	//   - error: the creation failure, nil on success
	CreatePipeline(desc Descriptor) (Handle, error)

	// DestroyPipeline releases a backend pipeline object.
	//
	// Parameters:
	//   - handle: the handle to release
	DestroyPipeline(handle Handle)
}

// registry is the implementation of the Registry interface. It owns every
// backend pipeline it creates and releases them on Shutdown.
type registry struct {
	mu      sync.Mutex
	backend Backend
	cache   map[string]Handle
	named   map[string]Handle
}

// Registry caches backend pipelines by structural descriptor identity.
// Identical descriptors always yield the same handle, so two materials
// requesting the same configuration share one backend object.
//
// Lookups are safe for concurrent readers; cache-miss insertion holds an
// exclusive guard.
type Registry interface {
	// GetOrCreate returns the handle for a descriptor, creating the backend
	// pipeline on first request. Creation failure is surfaced with the
	// descriptor key and shader names, never skipped, since a silently
	// missing pipeline would render nothing.
	//
	// Parameters:
	//   - desc: the structural pipeline descriptor
	//
	// Returns:
	//   - Handle: the cached or newly created handle
	//   - error: the backend creation failure, nil on success
	GetOrCreate(desc Descriptor) (Handle, error)

	// Register creates (or reuses) the pipeline for a descriptor and indexes
	// it under a fixed name, for passes that reference a pipeline from the
	// pipelines configuration instead of resolving one per material.
	//
	// Parameters:
	//   - name: the configuration name to index the pipeline under
	//   - desc: the structural pipeline descriptor
	//
	// Returns:
	//   - Handle: the pipeline handle
	//   - error: the backend creation failure, nil on success
	Register(name string, desc Descriptor) (Handle, error)

	// Lookup retrieves a handle by structural key without creating anything.
	//
	// Parameters:
	//   - key: the descriptor key (Descriptor.Key)
	//
	// Returns:
	//   - Handle: the handle if cached
	//   - bool: true if the key is cached
	Lookup(key string) (Handle, bool)

	// LookupName retrieves a handle registered under a fixed name.
	//
	// Parameters:
	//   - name: the configuration name
	//
	// Returns:
	//   - Handle: the handle if registered
	//   - bool: true if the name is registered
	LookupName(name string) (Handle, bool)

	// Len returns the number of distinct cached pipelines.
	//
	// Returns:
	//   - int: the cache size
	Len() int

	// Shutdown releases every backend pipeline the registry owns and clears
	// the cache. Handles obtained earlier become invalid.
	Shutdown()
}

var _ Registry = &registry{}

// NewRegistry is the entry point to create a new pipeline Registry bound to a
// backend.
//
// Parameters:
//   - backend: the pipeline-creation backend
//
// Returns:
//   - Registry: a new empty registry
func NewRegistry(backend Backend) Registry {
	return &registry{
		backend: backend,
		cache:   make(map[string]Handle),
		named:   make(map[string]Handle),
	}
}

func (r *registry) GetOrCreate(desc Descriptor) (Handle, error) {
	key := desc.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.cache[key]; ok {
		return handle, nil
	}

	handle, err := r.backend.CreatePipeline(desc)
	if err != nil {
		return 0, fmt.Errorf("failed to create pipeline %s (vertex %q, fragment %q): %w",
			key, shaderKey(desc.VertexShader()), shaderKey(desc.FragmentShader()), err)
	}
	r.cache[key] = handle

	common.Logger().Debug("pipeline created", "key", key, "cached", len(r.cache))
	return handle, nil
}

func (r *registry) Register(name string, desc Descriptor) (Handle, error) {
	handle, err := r.GetOrCreate(desc)
	if err != nil {
		return 0, fmt.Errorf("pipeline %q: %w", name, err)
	}

	r.mu.Lock()
	r.named[name] = handle
	r.mu.Unlock()
	return handle, nil
}

func (r *registry) Lookup(key string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle, ok := r.cache[key]
	return handle, ok
}

func (r *registry) LookupName(name string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle, ok := r.named[name]
	return handle, ok
}

func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, handle := range r.cache {
		r.backend.DestroyPipeline(handle)
		delete(r.cache, key)
	}
	clear(r.named)
}

func shaderKey(s shader.Shader) string {
	if s == nil {
		return ""
	}
	return s.Key()
}
