package world

import (
	"context"
	"time"

	"voxelworld/internal/chunk"
	"voxelworld/internal/entity"
	"voxelworld/internal/meshing"
	"voxelworld/internal/profiling"
	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Tick phases, in execution order.
const (
	PhaseSpawn     = "spawn"
	PhaseRetire    = "retire"
	PhaseRemesh    = "remesh"
	PhaseFlush     = "flush_writes"
	PhaseDespawn   = "despawn"
	PhaseApply     = "apply_buffers"
	PhaseIntegrate = "integrate"
)

// Tick advances the world by one step. Writes made before Tick are in the
// overlay before any chunk regenerated by it reads the overlay.
func (w *World) Tick(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	s := w.Settings()
	v := w.Viewer()

	w.phase(PhaseSpawn, func() {
		if v == nil {
			w.warnNoViewer()
			return
		}
		w.spawnChunks(v, s)
	})
	w.phase(PhaseRetire, func() {
		if v != nil {
			w.retireChunks(v, s)
		}
	})
	w.phase(PhaseRemesh, func() { w.dispatchRemesh(v, s) })
	w.phase(PhaseFlush, w.flushWrites)
	w.phase(PhaseDespawn, w.despawnRetired)
	w.phase(PhaseApply, w.applyBuffers)
	w.phase(PhaseIntegrate, w.pollTasks)

	w.metrics.SetChunksLoaded(w.id.String(), w.chunks.Len())
	hits, misses := w.cache.Stats()
	w.metrics.SetCacheStats(w.cache.Len(), hits, misses)
	return nil
}

func (w *World) phase(name string, fn func()) {
	start := time.Now()
	fn()
	w.metrics.ObservePhase(name, time.Since(start))
}

// dispatchRemesh submits a generation job for every chunk tagged for
// remeshing, and tags chunks whose LOD changed.
func (w *World) dispatchRemesh(v Viewer, s Settings) {
	defer profiling.Track("world.dispatchRemesh")()

	var camPos mgl32.Vec3
	if v != nil {
		camPos = v.Position()
	}
	mapper := w.def.TextureMapper()
	if mapper == nil {
		mapper = DefaultTextureMapper
	}

	for _, c := range w.entities.Snapshot() {
		if c.InFlight || c.NeedsDespawn {
			continue
		}
		lod := w.def.ChunkLOD(c.Position, camPos)
		if !c.NeedsRemesh {
			if lod == c.LOD {
				continue
			}
			c.NeedsRemesh = true
		}

		var previous *chunk.Data
		if d, ok := w.chunks.Get(c.Position); ok && d.HasGenerated() {
			previous = &d
		}
		meshFn := w.def.Meshing(c.Position)
		if meshFn == nil {
			meshFn = meshing.DefaultMeshing(s.Mesher)
		}
		job := Job{
			World:    w.id,
			Task:     chunk.NewTask(c.ID, c.Position, lod, w.def.DataShape(lod), w.def.MeshShape(lod), w.overlay),
			Lookup:   w.def.VoxelLookup(c.Position, lod, previous),
			Previous: previous,
			Strategy: s.RegenerateStrategy,
			Meshing:  meshFn,
			Mapper:   mapper,
			Cache:    w.cache,
			Results:  w.results,
			Done:     w.done,
		}
		if !w.pool.Submit(job) {
			// Queue full: the remaining chunks keep their tag for the next tick.
			w.metrics.TaskDropped(w.id.String())
			return
		}
		c.NeedsRemesh = false
		c.InFlight = true
		c.LOD = lod
		w.metrics.TaskSubmitted(w.id.String())
		w.emit(ChunkWillRemesh, c.Position, c.ID)
	}
}

// flushWrites moves buffered writes into the overlay and tags every spawned
// chunk whose data or padding covers a written voxel.
func (w *World) flushWrites() {
	defer profiling.Track("world.flushWrites")()

	w.writeMu.Lock()
	writes := w.writes
	w.writes = nil
	w.writeMu.Unlock()
	if len(writes) == 0 {
		return
	}
	w.overlay.SetMany(writes)

	// Chunks staged this tick have an entity but no map entry yet, so the
	// registry is the authority here.
	live := make(map[voxel.Pos]*entity.Chunk)
	for _, c := range w.entities.Snapshot() {
		if !c.NeedsDespawn {
			live[c.Position] = c
		}
	}

	tagged := make(map[entity.ID]struct{})
	for _, wr := range writes {
		cp := voxel.ChunkPos(wr.Pos)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					c, ok := live[cp.Add(voxel.P(dx, dy, dz))]
					if !ok {
						continue
					}
					if _, done := tagged[c.ID]; done || !w.samples(c, wr.Pos) {
						continue
					}
					tagged[c.ID] = struct{}{}
					c.NeedsRemesh = true
					w.emit(ChunkWillUpdate, c.Position, c.ID)
				}
			}
		}
	}
}

// samples reports whether regenerating c reads the voxel at p, either with
// the shape its current data was built from or the one its LOD asks for.
func (w *World) samples(c *entity.Chunk, p voxel.Pos) bool {
	shapes := []chunk.Shape{w.def.DataShape(c.LOD)}
	if d, ok := w.chunks.Get(c.Position); ok && d.HasGenerated() {
		shapes = append(shapes, d.DataShape())
	}
	for _, s := range shapes {
		lo, hi := chunk.SampledBounds(c.Position, s)
		if p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y && p.Z >= lo.Z && p.Z <= hi.Z {
			return true
		}
	}
	return false
}

func (w *World) applyBuffers() {
	events, ok := w.chunks.Apply()
	if !ok {
		w.log.Debug("chunk map busy, buffers kept")
	}
	for _, e := range events {
		w.emitEvent(e)
	}
	if w.cache.Apply() {
		clear(w.staged)
	} else {
		w.log.Debug("mesh cache busy, buffers kept")
	}
}

// pollTasks integrates every finished job without blocking.
func (w *World) pollTasks() {
	defer profiling.Track("world.pollTasks")()
	for {
		select {
		case res := <-w.results:
			w.integrate(res)
		default:
			return
		}
	}
}

func (w *World) integrate(res Result) {
	t := res.Task
	id := t.Data.Entity()
	c, ok := w.entities.Get(id)
	if !ok {
		w.metrics.TaskDropped(w.id.String())
		return
	}
	c.InFlight = false

	if res.Err != nil {
		w.log.Warn("chunk generation failed", zap.Stringer("chunk", t.Position), zap.Error(res.Err))
		w.metrics.TaskFailed(w.id.String())
		c.NeedsRemesh = true
		return
	}

	d := t.Data
	if needsMesh(d) {
		key := meshing.Key{World: w.id, Hash: d.Hash()}
		var (
			h      *meshing.Handle
			bundle any
		)
		if cached, ok := w.cache.Get(key); ok {
			h, bundle = cached, w.cache.UserBundle(key)
		} else if fresh, ok := w.staged[key]; ok && fresh.Refs() > 0 {
			fresh.Retain()
			h, bundle = fresh, res.Bundle
		} else if res.Mesh == nil {
			// The cached mesh expired while the task ran.
			c.NeedsRemesh = true
			return
		} else {
			h, bundle = meshing.NewHandle(res.Mesh), res.Bundle
			w.cache.Buffer(key, h, bundle)
			w.staged[key] = h
		}
		w.entities.SetMesh(id, h, bundle)
		if w.consumer != nil {
			w.consumer.ApplyMesh(w.id, id, t.Position, h, bundle, c.Translation)
		}
	} else if c.Mesh() != nil {
		w.entities.ClearMesh(id)
		if w.consumer != nil {
			w.consumer.RemoveMesh(w.id, id)
		}
	}

	w.chunks.BufferUpdate(t.Position, d, Event{Kind: ChunkWillSpawn, World: w.id, Chunk: t.Position, Entity: id})
	w.metrics.TaskCompleted(w.id.String())
}
