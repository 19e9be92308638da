package world

import (
	"voxelworld/internal/chunk"
	"voxelworld/internal/profiling"
	"voxelworld/internal/voxel"

	"github.com/gammazero/deque"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// chunkBox returns the world-space box of the chunk at pos.
func chunkBox(pos voxel.Pos) (min, max mgl32.Vec3) {
	min = pos.Vec3().Mul(voxel.ChunkSize)
	return min, min.Add(mgl32.Vec3{voxel.ChunkSize, voxel.ChunkSize, voxel.ChunkSize})
}

// warnNoViewer reports a tick that ran without a camera.
func (w *World) warnNoViewer() {
	if w.noViewer.Allow() {
		w.log.Warn("no viewer registered, chunk scheduling paused")
		return
	}
	w.log.Debug("no viewer registered")
}

// spawnChunks discovers missing chunks around the viewer and queues their
// creation.
func (w *World) spawnChunks(v Viewer, s Settings) {
	defer profiling.Track("world.spawnChunks")()

	camChunk := voxel.ChunkPosOf(v.Position())
	spawnDistSq := s.SpawningDistance * s.SpawningDistance
	width, height := v.ViewportSize()

	var queue deque.Deque[voxel.Pos]
	visited := make(map[voxel.Pos]struct{})
	created := 0

	w.chunks.Read(func(view View) {
		reach := float32(s.SpawningDistance * voxel.ChunkSize)
		queueAlongRay := func(x, y float32) {
			ray, ok := v.ViewportToWorld(x, y)
			if !ok {
				return
			}
			for t := float32(0); t < reach; t += voxel.ChunkSize {
				pos := voxel.ChunkPosOf(ray.At(t))
				if d, ok := view.Get(pos); ok {
					if d.IsFull() {
						break
					}
					continue
				}
				queue.PushBack(pos)
			}
		}

		if width > 0 && height > 0 {
			m := float32(s.SpawningRayMargin)
			w.rngMu.Lock()
			points := make([][2]float32, s.SpawningRays)
			for i := range points {
				points[i] = [2]float32{
					w.rng.Float32()*(float32(width)+2*m) - m,
					w.rng.Float32()*(float32(height)+2*m) - m,
				}
			}
			w.rngMu.Unlock()
			for _, p := range points {
				queueAlongRay(p[0], p[1])
			}
		}

		d := s.MinSpawningDistance
		for x := -d; x <= d; x++ {
			for y := -d; y <= d; y++ {
				for z := -d; z <= d; z++ {
					queue.PushBack(camChunk.Add(voxel.P(x, y, z)))
				}
			}
		}

		for queue.Len() > 0 {
			pos := queue.PopFront()
			if _, seen := visited[pos]; seen || queue.Len() > s.MaxSpawnPerTick {
				continue
			}
			visited[pos] = struct{}{}

			if pos.DistanceSquared(camChunk) > spawnDistSq {
				continue
			}
			if view.Contains(pos) || w.chunks.IsStaged(pos) {
				continue
			}

			c := w.entities.Spawn(pos)
			w.chunks.BufferInsert(pos, chunk.Placeholder(pos, c.ID))
			w.metrics.ChunkSpawned(w.id.String())
			created++

			if s.SpawnStrategy != Close && !v.IsVisible(chunkBox(pos)) {
				continue
			}
			for x := -1; x <= 1; x++ {
				for y := -1; y <= 1; y++ {
					for z := -1; z <= 1; z++ {
						if x == 0 && y == 0 && z == 0 {
							continue
						}
						queue.PushBack(pos.Add(voxel.P(x, y, z)))
					}
				}
			}
		}
	})

	if created > 0 {
		w.log.Debug("spawned chunks", zap.Int("chunks", created), zap.Stringer("camera_chunk", camChunk))
	}
}

// retireChunks tags chunks that are too far away, or out of view and not
// close, for despawning.
func (w *World) retireChunks(v Viewer, s Settings) {
	defer profiling.Track("world.retireChunks")()

	camChunk := voxel.ChunkPosOf(v.Position())
	spawnDistSq := s.SpawningDistance * s.SpawningDistance
	nearSq := s.MinSpawningDistance * s.MinSpawningDistance

	for _, c := range w.entities.Snapshot() {
		if c.NeedsDespawn {
			continue
		}
		culled := s.DespawnStrategy == FarAwayOrOutOfView && !v.IsVisible(chunkBox(c.Position))
		distSq := c.Position.DistanceSquared(camChunk)
		near := distSq <= nearSq
		if (culled && !near) || distSq > spawnDistSq+1 {
			c.NeedsDespawn = true
			w.emit(ChunkWillDespawn, c.Position, c.ID)
		}
	}
}

// despawnRetired removes tagged chunks whose position is still mapped.
func (w *World) despawnRetired() {
	defer profiling.Track("world.despawnRetired")()

	removed := 0
	w.chunks.Read(func(view View) {
		for _, c := range w.entities.Snapshot() {
			if !c.NeedsDespawn || !view.Contains(c.Position) {
				continue
			}
			if w.consumer != nil {
				w.consumer.RemoveMesh(w.id, c.ID)
			}
			w.entities.Despawn(c.ID)
			w.chunks.BufferRemove(c.Position)
			w.metrics.ChunkDespawned(w.id.String())
			removed++
		}
	})
	if removed > 0 {
		w.log.Debug("despawned chunks", zap.Int("chunks", removed))
	}
}
