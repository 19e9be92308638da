package meshing

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultCacheCapacity sizes the cache map up front.
const DefaultCacheCapacity = 2000

// Handle is a reference-counted mesh shared by every chunk entity with the
// same content. It starts with one reference owned by its creator.
type Handle struct {
	mesh *Mesh
	refs atomic.Int32
}

func NewHandle(m *Mesh) *Handle {
	h := &Handle{mesh: m}
	h.refs.Store(1)
	return h
}

func (h *Handle) Mesh() *Mesh { return h.mesh }

// Retain adds a reference.
func (h *Handle) Retain() { h.refs.Add(1) }

// tryRetain adds a reference unless the handle already expired.
func (h *Handle) tryRetain() bool {
	for {
		n := h.refs.Load()
		if n <= 0 {
			return false
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference. The mesh is unreachable through the cache once
// the count reaches zero.
func (h *Handle) Release() { h.refs.Add(-1) }

func (h *Handle) Refs() int { return int(h.refs.Load()) }

func (h *Handle) expired() bool { return h.refs.Load() <= 0 }

// Key identifies cached content within one world.
type Key struct {
	World uuid.UUID
	Hash  uint64
}

type staged struct {
	key    Key
	handle *Handle
	bundle any
}

// Cache deduplicates meshes by content hash. It never owns a reference:
// an entry lives as long as some chunk entity still retains its handle.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*Handle
	bundles map[Key]any

	bufMu   sync.Mutex
	pending []staged

	hits, misses atomic.Uint64
}

// NewCache returns a cache pre-sized for capacity entries. capacity <= 0
// uses DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		entries: make(map[Key]*Handle, capacity),
		bundles: make(map[Key]any),
	}
}

// Get returns a live handle for key with a reference retained for the
// caller, who must Release it.
func (c *Cache) Get(key Key) (*Handle, bool) {
	c.mu.RLock()
	h, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && h.tryRetain() {
		c.hits.Add(1)
		return h, true
	}
	c.misses.Add(1)
	return nil, false
}

// Contains reports whether a live entry exists for key.
func (c *Cache) Contains(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.entries[key]
	return ok && !h.expired()
}

// UserBundle returns the auxiliary data stored with key's mesh.
func (c *Cache) UserBundle(key Key) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bundles[key]
}

// Buffer stages an insert for the next Apply.
func (c *Cache) Buffer(key Key, h *Handle, bundle any) {
	c.bufMu.Lock()
	c.pending = append(c.pending, staged{key: key, handle: h, bundle: bundle})
	c.bufMu.Unlock()
}

// Pending is the number of staged inserts.
func (c *Cache) Pending() int {
	c.bufMu.Lock()
	defer c.bufMu.Unlock()
	return len(c.pending)
}

// Apply moves staged inserts into the cache and drops expired entries. It
// returns false without touching the buffer when the cache is busy.
func (c *Cache) Apply() bool {
	c.bufMu.Lock()
	if !c.mu.TryLock() {
		c.bufMu.Unlock()
		return false
	}
	pending := c.pending
	c.pending = nil
	c.bufMu.Unlock()

	for _, s := range pending {
		c.entries[s.key] = s.handle
		if s.bundle != nil {
			c.bundles[s.key] = s.bundle
		} else {
			delete(c.bundles, s.key)
		}
	}
	c.removeExpiredLocked()
	c.mu.Unlock()
	return true
}

// RemoveExpired deletes entries no chunk references anymore.
func (c *Cache) RemoveExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeExpiredLocked()
}

func (c *Cache) removeExpiredLocked() int {
	n := 0
	for k, h := range c.entries {
		if h.expired() {
			delete(c.entries, k)
			delete(c.bundles, k)
			n++
		}
	}
	return n
}

// Len counts stored entries, expired ones included until the next sweep.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the lookup hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
