package world

import (
	"sync"

	"voxelworld/internal/chunk"
	"voxelworld/internal/profiling"
	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

type mapUpdate struct {
	pos   voxel.Pos
	data  chunk.Data
	event Event
}

type mapInsert struct {
	pos  voxel.Pos
	data chunk.Data
}

// ChunkMap indexes the chunk data of one world by chunk position. Readers
// go straight to the map; writers stage mutations that Apply drains once
// per tick.
type ChunkMap struct {
	chunks map[voxel.Pos]chunk.Data
	mu     sync.RWMutex

	// Inclusive bounding box of loaded chunk positions.
	min, max  voxel.Pos
	hasBounds bool

	bufMu   sync.Mutex
	staged  map[voxel.Pos]struct{}
	inserts []mapInsert
	updates []mapUpdate
	removes []voxel.Pos
}

// NewChunkMap creates an empty chunk map.
func NewChunkMap() *ChunkMap {
	return &ChunkMap{
		chunks: make(map[voxel.Pos]chunk.Data, 1000),
		staged: make(map[voxel.Pos]struct{}),
	}
}

// Get returns the chunk data stored at pos.
func (m *ChunkMap) Get(pos voxel.Pos) (chunk.Data, bool) {
	m.mu.RLock()
	d, ok := m.chunks[pos]
	m.mu.RUnlock()
	return d, ok
}

// Contains checks for a chunk without copying its data.
func (m *ChunkMap) Contains(pos voxel.Pos) bool {
	m.mu.RLock()
	_, ok := m.chunks[pos]
	m.mu.RUnlock()
	return ok
}

func (m *ChunkMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Positions returns the positions of all stored chunks in no particular order.
func (m *ChunkMap) Positions() []voxel.Pos {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]voxel.Pos, 0, len(m.chunks))
	for p := range m.chunks {
		out = append(out, p)
	}
	return out
}

// View is read access to the map while its read lock is held.
type View struct {
	chunks map[voxel.Pos]chunk.Data
}

func (v View) Get(pos voxel.Pos) (chunk.Data, bool) {
	d, ok := v.chunks[pos]
	return d, ok
}

func (v View) Contains(pos voxel.Pos) bool {
	_, ok := v.chunks[pos]
	return ok
}

// Read runs fn under a single read lock, for callers doing many lookups.
// fn must not call back into the map's write path.
func (m *ChunkMap) Read(fn func(v View)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(View{chunks: m.chunks})
}

// Bounds returns the inclusive box of loaded chunk positions.
func (m *ChunkMap) Bounds() (min, max voxel.Pos, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.min, m.max, m.hasBounds
}

// WorldBounds returns the box covered by loaded chunks in world units. The
// max corner is the far edge of the last chunk.
func (m *ChunkMap) WorldBounds() (min, max mgl32.Vec3, ok bool) {
	lo, hi, ok := m.Bounds()
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	min = lo.Vec3().Mul(voxel.ChunkSize)
	max = hi.Add(voxel.P(1, 1, 1)).Vec3().Mul(voxel.ChunkSize)
	return min, max, true
}

// BufferInsert stages a new chunk, normally a placeholder.
func (m *ChunkMap) BufferInsert(pos voxel.Pos, d chunk.Data) {
	m.bufMu.Lock()
	m.inserts = append(m.inserts, mapInsert{pos: pos, data: d})
	m.staged[pos] = struct{}{}
	m.bufMu.Unlock()
}

// IsStaged reports whether an insert for pos waits for the next Apply.
func (m *ChunkMap) IsStaged(pos voxel.Pos) bool {
	m.bufMu.Lock()
	_, ok := m.staged[pos]
	m.bufMu.Unlock()
	return ok
}

// BufferUpdate stages generated data; ev is returned by Apply once stored.
func (m *ChunkMap) BufferUpdate(pos voxel.Pos, d chunk.Data, ev Event) {
	m.bufMu.Lock()
	m.updates = append(m.updates, mapUpdate{pos: pos, data: d, event: ev})
	m.bufMu.Unlock()
}

// BufferRemove stages the removal of pos.
func (m *ChunkMap) BufferRemove(pos voxel.Pos) {
	m.bufMu.Lock()
	m.removes = append(m.removes, pos)
	m.bufMu.Unlock()
}

// Pending returns the number of staged inserts, updates and removals.
func (m *ChunkMap) Pending() (inserts, updates, removes int) {
	m.bufMu.Lock()
	defer m.bufMu.Unlock()
	return len(m.inserts), len(m.updates), len(m.removes)
}

// Apply drains the buffers in insert, update, remove order and returns the
// spawn events of the applied updates. When the write lock is taken it
// returns false and leaves every buffer untouched.
func (m *ChunkMap) Apply() ([]Event, bool) {
	defer profiling.Track("world.ChunkMap.Apply")()
	m.bufMu.Lock()
	if len(m.inserts) == 0 && len(m.updates) == 0 && len(m.removes) == 0 {
		m.bufMu.Unlock()
		return nil, true
	}
	if !m.mu.TryLock() {
		m.bufMu.Unlock()
		return nil, false
	}
	inserts, updates, removes := m.inserts, m.updates, m.removes
	m.inserts, m.updates, m.removes = nil, nil, nil
	clear(m.staged)
	m.bufMu.Unlock()
	defer m.mu.Unlock()

	for _, in := range inserts {
		m.chunks[in.pos] = in.data
		m.extend(in.pos)
	}

	var events []Event
	if len(updates) > 0 {
		events = make([]Event, 0, len(updates))
	}
	for _, up := range updates {
		m.chunks[up.pos] = up.data
		m.extend(up.pos)
		events = append(events, up.event)
	}

	recompute := false
	for _, pos := range removes {
		if _, ok := m.chunks[pos]; !ok {
			continue
		}
		delete(m.chunks, pos)
		if m.onBound(pos) {
			recompute = true
		}
	}
	if recompute {
		m.recomputeBounds()
	}
	return events, true
}

func (m *ChunkMap) extend(p voxel.Pos) {
	if !m.hasBounds {
		m.min, m.max, m.hasBounds = p, p, true
		return
	}
	m.min = voxel.Pos{X: min(m.min.X, p.X), Y: min(m.min.Y, p.Y), Z: min(m.min.Z, p.Z)}
	m.max = voxel.Pos{X: max(m.max.X, p.X), Y: max(m.max.Y, p.Y), Z: max(m.max.Z, p.Z)}
}

func (m *ChunkMap) onBound(p voxel.Pos) bool {
	return p.X == m.min.X || p.Y == m.min.Y || p.Z == m.min.Z ||
		p.X == m.max.X || p.Y == m.max.Y || p.Z == m.max.Z
}

func (m *ChunkMap) recomputeBounds() {
	m.hasBounds = false
	m.min, m.max = voxel.Pos{}, voxel.Pos{}
	for p := range m.chunks {
		m.extend(p)
	}
}
