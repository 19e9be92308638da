package world

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"voxelworld/internal/logger"
	"voxelworld/internal/meshing"
	"voxelworld/internal/metrics"
	"voxelworld/internal/profiling"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Multiverse runs several worlds on one task pool and one mesh cache.
// Cache keys carry the world id, so worlds never share meshes.
type Multiverse struct {
	pool    *TaskPool
	cache   *meshing.Cache
	metrics *metrics.Metrics
	log     *zap.Logger

	mu     sync.RWMutex
	worlds map[uuid.UUID]*World
	order  []uuid.UUID
	closed bool
}

// MultiverseConfig sizes the shared resources.
type MultiverseConfig struct {
	Workers       int
	QueueSize     int
	CacheCapacity int
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
}

func NewMultiverse(cfg MultiverseConfig) *Multiverse {
	log := cfg.Logger
	if log == nil {
		log = logger.Named("multiverse")
	}
	pool := NewTaskPool(cfg.Workers, cfg.QueueSize)
	log.Info("task pool started", zap.Int("workers", pool.Workers()))
	return &Multiverse{
		pool:    pool,
		cache:   meshing.NewCache(cfg.CacheCapacity),
		metrics: cfg.Metrics,
		log:     log,
		worlds:  make(map[uuid.UUID]*World),
	}
}

// NewWorld creates a world sharing the multiverse's pool, cache and metrics.
func (m *Multiverse) NewWorld(def Definition, opts ...Option) (*World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	base := []Option{
		WithTaskPool(m.pool),
		WithMeshCache(m.cache),
		WithMetrics(m.metrics),
		WithLogger(m.log),
	}
	w := New(def, append(base, opts...)...)
	if _, dup := m.worlds[w.ID()]; dup {
		return nil, fmt.Errorf("world %s already exists", w.ID())
	}
	m.worlds[w.ID()] = w
	m.order = append(m.order, w.ID())
	return w, nil
}

func (m *Multiverse) World(id uuid.UUID) (*World, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.worlds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorld, id)
	}
	return w, nil
}

// Worlds returns the worlds in creation order.
func (m *Multiverse) Worlds() []*World {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*World, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.worlds[id])
	}
	return out
}

// RemoveWorld closes a world and forgets it.
func (m *Multiverse) RemoveWorld(id uuid.UUID) error {
	m.mu.Lock()
	w, ok := m.worlds[id]
	if ok {
		delete(m.worlds, id)
		for i, o := range m.order {
			if o == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorld, id)
	}
	return w.Close()
}

func (m *Multiverse) MeshCache() *meshing.Cache { return m.cache }

func (m *Multiverse) TaskPool() *TaskPool { return m.pool }

// Tick ticks every world in creation order. Worlds without a viewer only
// flush writes and integrate results.
func (m *Multiverse) Tick(ctx context.Context) error {
	profiling.ResetFrame()
	for _, w := range m.Worlds() {
		if err := w.Tick(ctx); err != nil && !errors.Is(err, ErrClosed) {
			return fmt.Errorf("tick world %s: %w", w.ID(), err)
		}
	}
	return nil
}

// ChunkCounts maps world ids to loaded chunk counts, for status logs.
func (m *Multiverse) ChunkCounts() map[string]int {
	worlds := m.Worlds()
	out := make(map[string]int, len(worlds))
	for _, w := range worlds {
		out[w.ID().String()] = w.ChunkCount()
	}
	return out
}

// Close closes every world, then stops the task pool.
func (m *Multiverse) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.closed = true
	worlds := make([]*World, 0, len(m.order))
	for _, id := range m.order {
		worlds = append(worlds, m.worlds[id])
	}
	m.mu.Unlock()

	var errs []error
	for _, w := range worlds {
		if err := w.Close(); err != nil && !errors.Is(err, ErrClosed) {
			errs = append(errs, err)
		}
	}
	m.pool.Shutdown()
	return errors.Join(errs...)
}
