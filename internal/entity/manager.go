package entity

import (
	"sync"

	"voxelworld/internal/voxel"
)

// Registry owns the chunk entities of one world.
type Registry struct {
	entities map[ID]*Chunk
	next     ID
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[ID]*Chunk, 1000),
	}
}

// Spawn creates a chunk entity tagged for remeshing.
func (r *Registry) Spawn(pos voxel.Pos) *Chunk {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	c := &Chunk{
		ID:          r.next,
		Position:    pos,
		Translation: ChunkTranslation(pos),
		NeedsRemesh: true,
	}
	r.entities[c.ID] = c
	return c
}

// Get returns the live entity with the given id.
func (r *Registry) Get(id ID) (*Chunk, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entities[id]
	return c, ok
}

// Exists reports whether id is still alive.
func (r *Registry) Exists(id ID) bool {
	_, ok := r.Get(id)
	return ok
}

// Despawn removes the entity and releases its mesh. It returns false when the
// entity was already gone.
func (r *Registry) Despawn(id ID) bool {
	r.mu.Lock()
	c, ok := r.entities[id]
	if ok {
		delete(r.entities, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	if c.mesh != nil {
		c.mesh.Release()
		c.mesh = nil
	}
	return true
}

// SetMesh attaches a mesh and its bundle, taking over the caller's
// reference. The previous reference is released, even when it is the same
// resource.
func (r *Registry) SetMesh(id ID, mesh MeshRef, bundle any) bool {
	r.mu.Lock()
	c, ok := r.entities[id]
	var old MeshRef
	if ok {
		old = c.mesh
		c.mesh = mesh
		c.bundle = bundle
	}
	r.mu.Unlock()
	if old != nil {
		old.Release()
	}
	return ok
}

// ClearMesh detaches the mesh of an entity whose chunk became empty or full.
func (r *Registry) ClearMesh(id ID) {
	r.SetMesh(id, nil, nil)
}

// Snapshot returns a copy of the live entity pointers.
func (r *Registry) Snapshot() []*Chunk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Chunk, 0, len(r.entities))
	for _, c := range r.entities {
		out = append(out, c)
	}
	return out
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// DespawnAll removes every entity, releasing their meshes.
func (r *Registry) DespawnAll() int {
	r.mu.Lock()
	all := r.entities
	r.entities = make(map[ID]*Chunk, 1000)
	r.mu.Unlock()
	for _, c := range all {
		if c.mesh != nil {
			c.mesh.Release()
		}
	}
	return len(all)
}
