// Package world runs voxel worlds: it discovers and retires chunks around
// a viewer, generates and meshes them on a shared task pool and answers
// voxel and raycast queries.
package world

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"voxelworld/internal/chunk"
	"voxelworld/internal/entity"
	"voxelworld/internal/logger"
	"voxelworld/internal/meshing"
	"voxelworld/internal/metrics"
	"voxelworld/internal/overlay"
	"voxelworld/internal/physics"
	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrClosed       = errors.New("world: closed")
	ErrUnknownWorld = errors.New("world: unknown world")
)

const (
	surfaceFloor       = -256
	surfaceScanTop     = 256
	randomSurfaceTries = 100
	resultBuffer       = 1024
)

// Viewer provides the camera the scheduler spawns chunks around.
type Viewer interface {
	Position() mgl32.Vec3
	ViewportSize() (width, height int)
	// ViewportToWorld casts a ray through a viewport pixel, origin top-left.
	ViewportToWorld(x, y float32) (physics.Ray, bool)
	// IsVisible tests a world-space box against the view frustum.
	IsVisible(min, max mgl32.Vec3) bool
}

// MeshConsumer receives finished meshes, e.g. to upload them to a GPU.
// Calls happen on the goroutine running Tick.
type MeshConsumer interface {
	ApplyMesh(world uuid.UUID, id entity.ID, chunkPos voxel.Pos, mesh *meshing.Handle, bundle any, translation mgl32.Vec3)
	RemoveMesh(world uuid.UUID, id entity.ID)
}

// Option configures a World.
type Option func(*World)

func WithID(id uuid.UUID) Option { return func(w *World) { w.id = id } }

func WithLogger(l *zap.Logger) Option { return func(w *World) { w.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(w *World) { w.metrics = m } }

// WithTaskPool shares pool instead of starting a private one.
func WithTaskPool(pool *TaskPool) Option { return func(w *World) { w.pool = pool } }

func WithMeshCache(c *meshing.Cache) Option { return func(w *World) { w.cache = c } }

// WithOverlay starts the world from an existing set of modified voxels.
func WithOverlay(o *overlay.Overlay) Option { return func(w *World) { w.overlay = o } }

func WithMeshConsumer(c MeshConsumer) Option { return func(w *World) { w.consumer = c } }

// World is one voxel world.
type World struct {
	id      uuid.UUID
	def     Definition
	log     *zap.Logger
	metrics *metrics.Metrics

	settingsMu sync.RWMutex
	settings   Settings

	chunks   *ChunkMap
	overlay  *overlay.Overlay
	entities *entity.Registry
	cache    *meshing.Cache
	pool     *TaskPool
	ownsPool bool
	results  chan Result
	done     chan struct{}

	// Meshes created this tick that the shared cache does not expose yet.
	staged map[meshing.Key]*meshing.Handle

	writeMu sync.Mutex
	writes  []overlay.Write

	viewerMu sync.RWMutex
	viewer   Viewer
	consumer MeshConsumer

	events   eventQueue
	rngMu    sync.Mutex
	rng      *rand.Rand
	noViewer *rate.Limiter

	tickMu sync.Mutex
	closed atomic.Bool
}

// New creates a world for def. Without WithTaskPool the world starts and
// owns its own pool.
func New(def Definition, opts ...Option) *World {
	if def == nil {
		def = BaseDefinition{}
	}
	w := &World{
		id:       uuid.New(),
		def:      def,
		log:      logger.Log,
		settings: def.Settings().Normalize(),
		chunks:   NewChunkMap(),
		entities: entity.NewRegistry(),
		results:  make(chan Result, resultBuffer),
		done:     make(chan struct{}),
		staged:   make(map[meshing.Key]*meshing.Handle),
		noViewer: rate.NewLimiter(rate.Every(10*time.Second), 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.overlay == nil {
		w.overlay = overlay.New()
	}
	if w.cache == nil {
		w.cache = meshing.NewCache(meshing.DefaultCacheCapacity)
	}
	if w.pool == nil {
		w.pool = NewTaskPool(0, 0)
		w.ownsPool = true
	}
	seed := w.settings.RandomSeed
	w.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	w.log = w.log.With(zap.Stringer("world", w.id))
	return w
}

func (w *World) ID() uuid.UUID { return w.id }

func (w *World) Definition() Definition { return w.def }

func (w *World) Settings() Settings {
	w.settingsMu.RLock()
	defer w.settingsMu.RUnlock()
	return w.settings
}

// SetSettings replaces the runtime settings, clamping invalid values.
func (w *World) SetSettings(s Settings) {
	w.settingsMu.Lock()
	w.settings = s.Normalize()
	w.settingsMu.Unlock()
}

// SetSpawningDistance changes the spawn radius, in chunks.
func (w *World) SetSpawningDistance(d int) {
	w.settingsMu.Lock()
	w.settings.SpawningDistance = d
	w.settings = w.settings.Normalize()
	w.settingsMu.Unlock()
}

// SetViewer registers the camera; nil disables the scheduler.
func (w *World) SetViewer(v Viewer) {
	w.viewerMu.Lock()
	w.viewer = v
	w.viewerMu.Unlock()
}

func (w *World) Viewer() Viewer {
	w.viewerMu.RLock()
	defer w.viewerMu.RUnlock()
	return w.viewer
}

func (w *World) Overlay() *overlay.Overlay { return w.overlay }

func (w *World) Entities() *entity.Registry { return w.entities }

func (w *World) Chunks() *ChunkMap { return w.chunks }

func (w *World) MeshCache() *meshing.Cache { return w.cache }

// ChunkCount is the number of chunks in the chunk map.
func (w *World) ChunkCount() int { return w.chunks.Len() }

// Events drains the events emitted since the last call.
func (w *World) Events() []Event { return w.events.drain() }

// Subscribe registers fn for every future event. fn runs on the goroutine
// calling Tick.
func (w *World) Subscribe(fn func(Event)) { w.events.subscribe(fn) }

func (w *World) emit(kind EventKind, pos voxel.Pos, id entity.ID) {
	w.emitEvent(Event{Kind: kind, World: w.id, Chunk: pos, Entity: id})
}

func (w *World) emitEvent(e Event) {
	w.metrics.Event(w.id.String(), e.Kind.String())
	w.events.emit(e)
}

// SetVoxel queues a write. It reaches the overlay at the next tick and is
// visible to GetVoxel right away.
func (w *World) SetVoxel(pos voxel.Pos, v voxel.Voxel) {
	w.writeMu.Lock()
	w.writes = append(w.writes, overlay.Write{Pos: pos, Voxel: v})
	w.writeMu.Unlock()
}

// GetVoxel returns the voxel at pos, Unset when nothing is known about it.
func (w *World) GetVoxel(pos voxel.Pos) voxel.Voxel {
	w.writeMu.Lock()
	for i := len(w.writes) - 1; i >= 0; i-- {
		if w.writes[i].Pos == pos {
			v := w.writes[i].Voxel
			w.writeMu.Unlock()
			return v
		}
	}
	w.writeMu.Unlock()
	return w.storedVoxel(pos)
}

func (w *World) storedVoxel(pos voxel.Pos) voxel.Voxel {
	if v, ok := w.overlay.Get(pos); ok {
		return v
	}
	if d, ok := w.chunks.Get(voxel.ChunkPos(pos)); ok {
		if v, ok := d.VoxelAtWorld(pos); ok {
			return v
		}
	}
	return voxel.Unset
}

// VoxelFunc returns a getter safe to hand to other goroutines. Pending
// writes are captured when it is created.
func (w *World) VoxelFunc() func(voxel.Pos) voxel.Voxel {
	w.writeMu.Lock()
	pending := make(map[voxel.Pos]voxel.Voxel, len(w.writes))
	for _, wr := range w.writes {
		pending[wr.Pos] = wr.Voxel
	}
	w.writeMu.Unlock()

	return func(pos voxel.Pos) voxel.Voxel {
		if v, ok := pending[pos]; ok {
			return v
		}
		return w.storedVoxel(pos)
	}
}

// GetChunk returns a copy of the chunk data at a chunk position.
func (w *World) GetChunk(chunkPos voxel.Pos) (chunk.Data, bool) {
	return w.chunks.Get(chunkPos)
}

// Raycast returns the first solid voxel along ray accepted by filter,
// searching the loaded chunks up to the spawning distance.
func (w *World) Raycast(ray physics.Ray, filter physics.FilterFunc) (physics.Hit, bool) {
	lo, hi, ok := w.chunks.WorldBounds()
	if !ok {
		return physics.Hit{}, false
	}
	maxDist := float32(w.Settings().SpawningDistance * voxel.ChunkSize)
	return physics.Raycast(ray, physics.AABB{Min: lo, Max: hi}, maxDist, w.VoxelFunc(), filter)
}

func isEmptyVoxel(v voxel.Voxel) bool { return !v.IsSolid() }

// GetClosestSurfaceVoxel scans down from an empty pos for the first solid
// voxel with an empty voxel above it.
func (w *World) GetClosestSurfaceVoxel(pos voxel.Pos) (voxel.Pos, voxel.Voxel, bool) {
	get := w.VoxelFunc()
	if !isEmptyVoxel(get(pos)) {
		return voxel.Pos{}, voxel.Unset, false
	}
	up := voxel.P(0, 1, 0)
	for cur := pos; cur.Y >= surfaceFloor; cur.Y-- {
		v := get(cur)
		if v.IsSolid() && isEmptyVoxel(get(cur.Add(up))) {
			return cur, v, true
		}
	}
	return voxel.Pos{}, voxel.Unset, false
}

// GetRandomSurfaceVoxel samples the upper half sphere of radius around pos
// and returns the surface below the first sample that has one.
func (w *World) GetRandomSurfaceVoxel(pos voxel.Pos, radius int) (voxel.Pos, voxel.Voxel, bool) {
	r := float32(radius)
	for range randomSurfaceTries {
		w.rngMu.Lock()
		x := w.rng.Float32()*r*2 - r
		y := w.rng.Float32()*r*2 - r
		z := w.rng.Float32()*r*2 - r
		w.rngMu.Unlock()

		if y < 0 || x*x+y*y+z*z > r*r {
			continue
		}
		p := pos.Add(voxel.P(int(x), int(y), int(z)))
		if sp, v, ok := w.GetClosestSurfaceVoxel(p); ok {
			return sp, v, true
		}
	}
	return voxel.Pos{}, voxel.Unset, false
}

// GetSurfaceVoxelAt2D finds the surface of the column containing (x, z).
func (w *World) GetSurfaceVoxelAt2D(x, z float32) (voxel.Pos, voxel.Voxel, bool) {
	return w.GetClosestSurfaceVoxel(voxel.P(
		int(math.Floor(float64(x))),
		surfaceScanTop,
		int(math.Floor(float64(z))),
	))
}

// Close despawns every chunk and stops the private task pool, if any.
func (w *World) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	close(w.done)
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	if w.consumer != nil {
		for _, c := range w.entities.Snapshot() {
			w.consumer.RemoveMesh(w.id, c.ID)
		}
	}
	n := w.entities.DespawnAll()
	if w.ownsPool {
		w.pool.Shutdown()
	}
	w.log.Info("world closed", zap.Int("chunks", n))
	return nil
}
