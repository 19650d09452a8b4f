package gpu

import (
	"fmt"
	"sync"
)

// Handle types. Each resource kind has its own Id type so that a BufferID can never be passed
// where a TextureID is expected. The zero value of every Id is the null handle.
type (
	AdapterID         uint64
	DeviceID          uint64
	QueueID           uint64
	BufferID          uint64
	TextureID         uint64
	TextureViewID     uint64
	SamplerID         uint64
	ShaderModuleID    uint64
	PipelineLayoutID  uint64
	BindGroupLayoutID uint64
	BindGroupID       uint64
	RenderPipelineID  uint64
	ComputePipelineID uint64
	CommandEncoderID  uint64
	CommandBufferID   uint64
	RenderPassID      uint64
	ComputePassID     uint64
	SwapChainID       uint64
)

func (id AdapterID) IsNil() bool         { return id == 0 }
func (id DeviceID) IsNil() bool          { return id == 0 }
func (id QueueID) IsNil() bool           { return id == 0 }
func (id BufferID) IsNil() bool          { return id == 0 }
func (id TextureID) IsNil() bool         { return id == 0 }
func (id TextureViewID) IsNil() bool     { return id == 0 }
func (id SamplerID) IsNil() bool         { return id == 0 }
func (id ShaderModuleID) IsNil() bool    { return id == 0 }
func (id PipelineLayoutID) IsNil() bool  { return id == 0 }
func (id BindGroupLayoutID) IsNil() bool { return id == 0 }
func (id BindGroupID) IsNil() bool       { return id == 0 }
func (id RenderPipelineID) IsNil() bool  { return id == 0 }
func (id ComputePipelineID) IsNil() bool { return id == 0 }
func (id CommandEncoderID) IsNil() bool  { return id == 0 }
func (id CommandBufferID) IsNil() bool   { return id == 0 }
func (id RenderPassID) IsNil() bool      { return id == 0 }
func (id ComputePassID) IsNil() bool     { return id == 0 }
func (id SwapChainID) IsNil() bool       { return id == 0 }

// Registry maps handles of one kind to the backend objects they stand for.
// Handles are allocated from a counter starting at 1 and are never reused, so a stale handle
// can not silently resolve to a newer object. A Registry is safe for concurrent use.
type Registry[K ~uint64, V any] struct {
	mu    sync.RWMutex
	kind  string
	next  uint64
	items map[K]V
}

// NewRegistry creates an empty registry.
//
// Parameters:
//   - kind: the resource kind name used in error messages (e.g. "buffer")
//
// Returns:
//   - *Registry[K, V]: the new registry
func NewRegistry[K ~uint64, V any](kind string) *Registry[K, V] {
	return &Registry[K, V]{
		kind:  kind,
		items: make(map[K]V),
	}
}

// Insert stores v under a fresh handle and returns it.
func (r *Registry[K, V]) Insert(v V) K {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	k := K(r.next)
	r.items[k] = v
	return k
}

// Get returns the object stored under k.
func (r *Registry[K, V]) Get(k K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[k]
	return v, ok
}

// Lookup is Get with an ErrInvalidHandle error for a missing or null handle.
func (r *Registry[K, V]) Lookup(k K) (V, error) {
	v, ok := r.Get(k)
	if !ok {
		return v, fmt.Errorf("%s %d: %w", r.kind, uint64(k), ErrInvalidHandle)
	}
	return v, nil
}

// Remove deletes k and returns the object it referred to.
func (r *Registry[K, V]) Remove(k K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[k]
	if ok {
		delete(r.items, k)
	}
	return v, ok
}

// RemoveAll deletes every key and returns their objects in order. It removes nothing unless
// every key is live and appears once.
func (r *Registry[K, V]) RemoveAll(keys []K) ([]V, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%s %d listed twice: %w", r.kind, uint64(k), ErrInvalidHandle)
		}
		if _, ok := r.items[k]; !ok {
			return nil, fmt.Errorf("%s %d: %w", r.kind, uint64(k), ErrInvalidHandle)
		}
		seen[k] = struct{}{}
	}

	out := make([]V, len(keys))
	for i, k := range keys {
		out[i] = r.items[k]
		delete(r.items, k)
	}
	return out, nil
}

// Len returns the number of live handles.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
