package world_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"voxelworld/internal/camera"
	"voxelworld/internal/chunk"
	"voxelworld/internal/entity"
	"voxelworld/internal/meshing"
	"voxelworld/internal/physics"
	"voxelworld/internal/voxel"
	"voxelworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedViewer sees everything and casts no discovery rays.
type fixedViewer struct {
	mu  sync.Mutex
	pos mgl32.Vec3
}

func (v *fixedViewer) Position() mgl32.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

func (v *fixedViewer) SetPosition(p mgl32.Vec3) {
	v.mu.Lock()
	v.pos = p
	v.mu.Unlock()
}

func (v *fixedViewer) ViewportSize() (int, int) { return 0, 0 }

func (v *fixedViewer) ViewportToWorld(float32, float32) (physics.Ray, bool) {
	return physics.Ray{}, false
}

func (v *fixedViewer) IsVisible(mgl32.Vec3, mgl32.Vec3) bool { return true }

// flatDefinition is solid below y = 4 and air above.
type flatDefinition struct {
	world.BaseDefinition
	settings world.Settings
	panicAt  *voxel.Pos
}

func (d flatDefinition) Settings() world.Settings { return d.settings }

func (d flatDefinition) VoxelLookup(chunkPos voxel.Pos, _ uint8, _ *chunk.Data) chunk.LookupFunc {
	if d.panicAt != nil && *d.panicAt == chunkPos {
		return func(voxel.Pos, voxel.Voxel, bool) voxel.Voxel { panic("broken generator") }
	}
	return func(p voxel.Pos, _ voxel.Voxel, _ bool) voxel.Voxel {
		if p.Y < 4 {
			return voxel.Solid(1)
		}
		return voxel.Air
	}
}

func closeSettings(distance int) world.Settings {
	s := world.DefaultSettings()
	s.SpawningDistance = distance
	s.MinSpawningDistance = 1
	s.SpawnStrategy = world.Close
	s.DespawnStrategy = world.FarAway
	s.SpawningRays = 0
	s.RandomSeed = 7
	return s
}

func newFlatWorld(t *testing.T, distance int, opts ...world.Option) (*world.World, *fixedViewer) {
	t.Helper()
	w := world.New(flatDefinition{settings: closeSettings(distance)}, opts...)
	t.Cleanup(func() { _ = w.Close() })
	v := &fixedViewer{pos: mgl32.Vec3{16, 16, 16}}
	w.SetViewer(v)
	return w, v
}

func tickUntil(t *testing.T, w *world.World, cond func() bool) {
	t.Helper()
	ctx := context.Background()
	require.Eventually(t, func() bool {
		_ = w.Tick(ctx)
		return cond()
	}, 10*time.Second, 2*time.Millisecond)
}

func generated(w *world.World, pos voxel.Pos) bool {
	d, ok := w.GetChunk(pos)
	return ok && d.HasGenerated()
}

// pointsWithin counts chunk positions with squared distance <= r*r.
func pointsWithin(r int) int {
	n := 0
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			for z := -r; z <= r; z++ {
				if x*x+y*y+z*z <= r*r {
					n++
				}
			}
		}
	}
	return n
}

func TestSetVoxelVisibleBeforeFlush(t *testing.T) {
	w := world.New(world.BaseDefinition{})
	t.Cleanup(func() { _ = w.Close() })

	positions := []voxel.Pos{voxel.P(0, 0, 0), voxel.P(-5, 3, -40), voxel.P(1000, -70, 33)}
	for i, p := range positions {
		w.SetVoxel(p, voxel.Solid(voxel.Material(i+1)))
	}
	for i, p := range positions {
		assert.Equal(t, voxel.Solid(voxel.Material(i+1)), w.GetVoxel(p))
	}

	w.SetVoxel(positions[0], voxel.Air)
	assert.Equal(t, voxel.Air, w.GetVoxel(positions[0]), "last write wins")
	assert.Equal(t, voxel.Unset, w.GetVoxel(voxel.P(9, 9, 9)))

	require.NoError(t, w.Tick(context.Background()))
	assert.Equal(t, voxel.Air, w.GetVoxel(positions[0]), "flushed write still visible through the overlay")
	v, ok := w.Overlay().Get(positions[1])
	require.True(t, ok)
	assert.Equal(t, voxel.Solid(2), v)
}

func TestOverlayWinsAfterRegeneration(t *testing.T) {
	w, _ := newFlatWorld(t, 1)
	origin := voxel.P(0, 0, 0)
	tickUntil(t, w, func() bool { return generated(w, origin) })

	d, _ := w.GetChunk(origin)
	got, ok := d.VoxelAtWorld(voxel.P(3, 10, 5))
	require.True(t, ok)
	require.Equal(t, voxel.Air, got)

	w.SetVoxel(voxel.P(3, 10, 5), voxel.Solid(7))
	w.SetVoxel(voxel.P(3, 1, 5), voxel.Air)
	tickUntil(t, w, func() bool {
		d, ok := w.GetChunk(origin)
		return ok && d.HasVoxel(voxel.P(3, 10, 5), voxel.Solid(7))
	})
	d, _ = w.GetChunk(origin)
	assert.True(t, d.HasVoxel(voxel.P(3, 1, 5), voxel.Air))
	assert.Equal(t, voxel.Solid(7), w.GetVoxel(voxel.P(3, 10, 5)))
}

func TestRaycastFindsOverlayVoxel(t *testing.T) {
	w := world.New(world.BaseDefinition{})
	t.Cleanup(func() { _ = w.Close() })

	origin := voxel.P(0, 0, 0)
	w.Overlay().Set(origin, voxel.Solid(1))
	voxels := make([]voxel.Voxel, chunk.DefaultShape.Size())
	w.Chunks().BufferUpdate(origin, chunk.NewMixed(origin, entity.Placeholder, chunk.DefaultShape, voxels), world.Event{})
	_, ok := w.Chunks().Apply()
	require.True(t, ok)

	hit, ok := w.Raycast(physics.Ray{
		Origin:    mgl32.Vec3{0.5, 0.5, 70},
		Direction: mgl32.Vec3{0, 0, -1},
	}, nil)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, hit.Position)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, hit.Normal)
	assert.Equal(t, voxel.Solid(1), hit.Voxel)

	_, ok = w.Raycast(physics.Ray{Origin: mgl32.Vec3{0.5, 0.5, 70}, Direction: mgl32.Vec3{0, 0, -1}},
		func(mgl32.Vec3, voxel.Voxel) bool { return false })
	assert.False(t, ok)

	_, ok = w.Raycast(physics.Ray{Origin: mgl32.Vec3{5.5, 0.5, 70}, Direction: mgl32.Vec3{0, 0, -1}}, nil)
	assert.False(t, ok, "unset voxels are never hits")
}

func TestRaycastWithoutChunks(t *testing.T) {
	w := world.New(world.BaseDefinition{})
	t.Cleanup(func() { _ = w.Close() })
	w.Overlay().Set(voxel.P(0, 0, 0), voxel.Solid(1))
	_, ok := w.Raycast(physics.Ray{Origin: mgl32.Vec3{0.5, 0.5, 10}, Direction: mgl32.Vec3{0, 0, -1}}, nil)
	assert.False(t, ok)
}

func TestSpawnRespectsMaxDistance(t *testing.T) {
	const distance = 2
	w, _ := newFlatWorld(t, distance)
	want := pointsWithin(distance)
	tickUntil(t, w, func() bool { return w.ChunkCount() == want })

	for range 5 {
		require.NoError(t, w.Tick(context.Background()))
	}
	assert.Equal(t, want, w.ChunkCount())
	for _, p := range w.Chunks().Positions() {
		assert.LessOrEqual(t, p.DistanceSquared(voxel.P(0, 0, 0)), distance*distance, "chunk %v", p)
	}

	lo, hi, ok := w.Chunks().Bounds()
	require.True(t, ok)
	assert.Equal(t, voxel.P(-2, -2, -2), lo)
	assert.Equal(t, voxel.P(2, 2, 2), hi)
}

func TestSpawnWithCamera(t *testing.T) {
	s := world.DefaultSettings()
	s.SpawningDistance = 3
	s.RandomSeed = 42
	w := world.New(flatDefinition{settings: s})
	t.Cleanup(func() { _ = w.Close() })

	cam := camera.New(320, 240)
	cam.SetPosition(mgl32.Vec3{16, 40, 16})
	cam.LookAt(mgl32.Vec3{80, 0, 16})
	w.SetViewer(cam)

	ctx := context.Background()
	for range 20 {
		require.NoError(t, w.Tick(ctx))
	}
	require.Greater(t, w.ChunkCount(), pointsWithin(1)-1)

	camChunk := voxel.ChunkPosOf(cam.Position())
	for _, p := range w.Chunks().Positions() {
		assert.LessOrEqual(t, p.DistanceSquared(camChunk), s.SpawningDistance*s.SpawningDistance+1, "chunk %v", p)
	}
}

func TestRetirementAfterMovingAway(t *testing.T) {
	w, v := newFlatWorld(t, 2)
	tickUntil(t, w, func() bool { return w.ChunkCount() == pointsWithin(2) })
	old := w.Chunks().Positions()
	w.Events()

	v.SetPosition(mgl32.Vec3{1000, 1000, 1000})
	tickUntil(t, w, func() bool {
		for _, p := range old {
			if w.Chunks().Contains(p) {
				return false
			}
		}
		return true
	})

	despawned := map[voxel.Pos]bool{}
	for _, e := range w.Events() {
		if e.Kind == world.ChunkWillDespawn {
			despawned[e.Chunk] = true
			assert.Equal(t, w.ID(), e.World)
		}
	}
	for _, p := range old {
		assert.True(t, despawned[p], "missing despawn event for %v", p)
	}

	camChunk := voxel.ChunkPosOf(mgl32.Vec3{1000, 1000, 1000})
	for _, c := range w.Entities().Snapshot() {
		assert.LessOrEqual(t, c.Position.DistanceSquared(camChunk), 5)
	}
}

func TestIdenticalChunksShareOneMesh(t *testing.T) {
	w, _ := newFlatWorld(t, 1)

	layer := []voxel.Pos{voxel.P(0, 0, 0), voxel.P(1, 0, 0), voxel.P(-1, 0, 0), voxel.P(0, 0, 1), voxel.P(0, 0, -1)}
	meshed := func() []*entity.Chunk {
		var out []*entity.Chunk
		for _, c := range w.Entities().Snapshot() {
			if c.Position.Y == 0 && c.Mesh() != nil {
				out = append(out, c)
			}
		}
		return out
	}
	tickUntil(t, w, func() bool {
		for _, p := range layer {
			if !generated(w, p) {
				return false
			}
		}
		return len(meshed()) == len(layer) && w.MeshCache().Pending() == 0
	})

	chunks := meshed()
	first := chunks[0].Mesh().(*meshing.Handle)
	for _, c := range chunks[1:] {
		assert.Same(t, first, c.Mesh().(*meshing.Handle))
	}
	assert.Equal(t, len(layer), first.Refs())
	assert.Equal(t, 1, w.MeshCache().Len())
	assert.False(t, first.Mesh().IsEmpty())

	below, ok := w.GetChunk(voxel.P(0, -1, 0))
	require.True(t, ok)
	assert.Equal(t, chunk.FillUniform, below.FillType())
	above, ok := w.GetChunk(voxel.P(0, 1, 0))
	require.True(t, ok)
	assert.True(t, above.IsEmpty())
}

func TestWritesEmitUpdateAndRemesh(t *testing.T) {
	w, _ := newFlatWorld(t, 1)
	origin := voxel.P(0, 0, 0)
	tickUntil(t, w, func() bool { return generated(w, origin) && generated(w, voxel.P(-1, 0, 0)) })
	w.Events()

	var seen []world.Event
	w.Subscribe(func(e world.Event) { seen = append(seen, e) })

	// Local x == 0 also lies in the padding of the chunk at -X.
	w.SetVoxel(voxel.P(0, 10, 10), voxel.Solid(3))
	require.NoError(t, w.Tick(context.Background()))
	require.NoError(t, w.Tick(context.Background()))

	kinds := map[world.EventKind]map[voxel.Pos]bool{}
	for _, e := range seen {
		if kinds[e.Kind] == nil {
			kinds[e.Kind] = map[voxel.Pos]bool{}
		}
		kinds[e.Kind][e.Chunk] = true
	}
	assert.True(t, kinds[world.ChunkWillUpdate][origin])
	assert.True(t, kinds[world.ChunkWillUpdate][voxel.P(-1, 0, 0)])
	assert.False(t, kinds[world.ChunkWillUpdate][voxel.P(1, 0, 0)])
	assert.True(t, kinds[world.ChunkWillRemesh][origin])

	drained := w.Events()
	assert.Len(t, drained, len(seen))
}

func TestFailedGenerationKeepsPlaceholder(t *testing.T) {
	broken := voxel.P(0, 0, 0)
	def := flatDefinition{settings: closeSettings(1), panicAt: &broken}
	w := world.New(def)
	t.Cleanup(func() { _ = w.Close() })
	w.SetViewer(&fixedViewer{pos: mgl32.Vec3{16, 16, 16}})

	tickUntil(t, w, func() bool { return generated(w, voxel.P(1, 0, 0)) && generated(w, voxel.P(0, 1, 0)) })
	for range 3 {
		require.NoError(t, w.Tick(context.Background()))
	}
	d, ok := w.GetChunk(broken)
	require.True(t, ok)
	assert.False(t, d.HasGenerated())
	assert.Equal(t, voxel.Unset, w.GetVoxel(voxel.P(1, 1, 1)))
}

func TestNoViewerIsNoop(t *testing.T) {
	w := world.New(flatDefinition{settings: closeSettings(2)})
	t.Cleanup(func() { _ = w.Close() })
	for range 3 {
		require.NoError(t, w.Tick(context.Background()))
	}
	assert.Zero(t, w.ChunkCount())
	assert.Zero(t, w.Entities().Len())
}

func TestSurfaceQueries(t *testing.T) {
	w := world.New(world.BaseDefinition{})
	t.Cleanup(func() { _ = w.Close() })

	for x := -3; x <= 3; x++ {
		for z := -3; z <= 3; z++ {
			w.SetVoxel(voxel.P(x, 0, z), voxel.Solid(2))
		}
	}
	w.SetVoxel(voxel.P(1, 1, 1), voxel.Solid(3))

	p, v, ok := w.GetSurfaceVoxelAt2D(-2.5, 2.2)
	require.True(t, ok)
	assert.Equal(t, voxel.P(-3, 0, 2), p)
	assert.Equal(t, voxel.Solid(2), v)

	p, v, ok = w.GetClosestSurfaceVoxel(voxel.P(1, 20, 1))
	require.True(t, ok)
	assert.Equal(t, voxel.P(1, 1, 1), p)
	assert.Equal(t, voxel.Solid(3), v)

	_, _, ok = w.GetClosestSurfaceVoxel(voxel.P(0, 0, 0))
	assert.False(t, ok, "start inside a solid voxel")

	_, _, ok = w.GetSurfaceVoxelAt2D(50, 50)
	assert.False(t, ok)

	p, _, ok = w.GetRandomSurfaceVoxel(voxel.P(0, 2, 0), 3)
	require.True(t, ok)
	assert.LessOrEqual(t, p.Y, 1)
	assert.GreaterOrEqual(t, p.Y, 0)
}

func TestVoxelFuncSnapshotsPendingWrites(t *testing.T) {
	w := world.New(world.BaseDefinition{})
	t.Cleanup(func() { _ = w.Close() })

	w.SetVoxel(voxel.P(1, 2, 3), voxel.Solid(1))
	get := w.VoxelFunc()
	w.SetVoxel(voxel.P(4, 5, 6), voxel.Solid(2))

	done := make(chan voxel.Voxel)
	go func() { done <- get(voxel.P(1, 2, 3)) }()
	assert.Equal(t, voxel.Solid(1), <-done)
	assert.Equal(t, voxel.Unset, get(voxel.P(4, 5, 6)))
	assert.Equal(t, voxel.Solid(2), w.GetVoxel(voxel.P(4, 5, 6)))
}

func TestCloseTwice(t *testing.T) {
	w := world.New(world.BaseDefinition{})
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), world.ErrClosed)
	assert.ErrorIs(t, w.Tick(context.Background()), world.ErrClosed)
}

func TestMultiverseKeepsWorldsApart(t *testing.T) {
	mv := world.NewMultiverse(world.MultiverseConfig{Workers: 2})
	t.Cleanup(func() { _ = mv.Close() })

	a, err := mv.NewWorld(flatDefinition{settings: closeSettings(1)})
	require.NoError(t, err)
	b, err := mv.NewWorld(flatDefinition{settings: closeSettings(1)})
	require.NoError(t, err)
	require.NotEqual(t, a.ID(), b.ID())

	got, err := mv.World(b.ID())
	require.NoError(t, err)
	assert.Same(t, b, got)
	_, err = mv.World(uuid.New())
	assert.ErrorIs(t, err, world.ErrUnknownWorld)
	assert.Equal(t, []*world.World{a, b}, mv.Worlds())

	a.SetViewer(&fixedViewer{pos: mgl32.Vec3{16, 16, 16}})
	b.SetViewer(&fixedViewer{pos: mgl32.Vec3{16, 16, 16}})
	a.SetVoxel(voxel.P(5, 20, 5), voxel.Solid(9))
	assert.Equal(t, voxel.Unset, b.GetVoxel(voxel.P(5, 20, 5)))

	ctx := context.Background()
	require.Eventually(t, func() bool {
		_ = mv.Tick(ctx)
		modified, ok := a.GetChunk(voxel.P(0, 0, 0))
		return ok && modified.HasVoxel(voxel.P(5, 20, 5), voxel.Solid(9)) &&
			generated(b, voxel.P(1, 0, 0)) &&
			mv.MeshCache().Len() == 3 && mv.MeshCache().Pending() == 0
	}, 10*time.Second, 2*time.Millisecond)

	assert.Equal(t, map[string]int{a.ID().String(): 7, b.ID().String(): 7}, mv.ChunkCounts())

	require.NoError(t, mv.RemoveWorld(a.ID()))
	assert.ErrorIs(t, mv.RemoveWorld(a.ID()), world.ErrUnknownWorld)
	assert.Equal(t, []*world.World{b}, mv.Worlds())
}

func TestRemovedWorldDoesNotStallSharedPool(t *testing.T) {
	mv := world.NewMultiverse(world.MultiverseConfig{Workers: 2})
	t.Cleanup(func() { _ = mv.Close() })

	busy, err := mv.NewWorld(flatDefinition{settings: closeSettings(10)})
	require.NoError(t, err)
	busy.SetViewer(&fixedViewer{pos: mgl32.Vec3{16, 16, 16}})
	ctx := context.Background()
	require.NoError(t, busy.Tick(ctx))
	require.NoError(t, busy.Tick(ctx))
	require.NoError(t, mv.RemoveWorld(busy.ID()))

	w, err := mv.NewWorld(flatDefinition{settings: closeSettings(1)})
	require.NoError(t, err)
	w.SetViewer(&fixedViewer{pos: mgl32.Vec3{16, 16, 16}})
	tickUntil(t, w, func() bool {
		return generated(w, voxel.P(0, 0, 0)) && generated(w, voxel.P(0, 1, 0))
	})
}
