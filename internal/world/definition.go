package world

import (
	"math"

	"voxelworld/internal/chunk"
	"voxelworld/internal/meshing"
	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// SpawnStrategy decides how far the discovery flood fill spreads.
type SpawnStrategy uint8

const (
	// CloseAndInView spreads only through chunks inside the view frustum.
	CloseAndInView SpawnStrategy = iota
	// Close spreads to every chunk within the spawning distance.
	Close
)

func (s SpawnStrategy) String() string {
	if s == Close {
		return "close"
	}
	return "close_and_in_view"
}

// DespawnStrategy decides which chunks get retired.
type DespawnStrategy uint8

const (
	// FarAwayOrOutOfView retires distant chunks and chunks outside the view.
	FarAwayOrOutOfView DespawnStrategy = iota
	// FarAway retires distant chunks only.
	FarAway
)

func (s DespawnStrategy) String() string {
	if s == FarAway {
		return "far_away"
	}
	return "far_away_or_out_of_view"
}

// Settings is the tunable part of a world definition. Distances are in
// chunks.
type Settings struct {
	SpawningDistance    int
	MinSpawningDistance int
	DespawnStrategy     DespawnStrategy
	SpawnStrategy       SpawnStrategy
	MaxSpawnPerTick     int
	SpawningRays        int
	// SpawningRayMargin widens the random ray area beyond the viewport, in pixels.
	SpawningRayMargin  int
	RegenerateStrategy chunk.RegenerateStrategy
	Mesher             meshing.Algorithm
	// RandomSeed seeds the discovery rays and surface sampling.
	RandomSeed uint64
}

func DefaultSettings() Settings {
	return Settings{
		SpawningDistance:    10,
		MinSpawningDistance: 1,
		DespawnStrategy:     FarAwayOrOutOfView,
		SpawnStrategy:       CloseAndInView,
		MaxSpawnPerTick:     10000,
		SpawningRays:        100,
		SpawningRayMargin:   25,
		RegenerateStrategy:  chunk.Reuse,
		Mesher:              meshing.Naive,
	}
}

// Normalize clamps out-of-range values.
func (s Settings) Normalize() Settings {
	s.SpawningDistance = max(s.SpawningDistance, 1)
	s.MinSpawningDistance = min(max(s.MinSpawningDistance, 0), s.SpawningDistance)
	s.MaxSpawnPerTick = max(s.MaxSpawnPerTick, 0)
	s.SpawningRays = max(s.SpawningRays, 0)
	s.SpawningRayMargin = max(s.SpawningRayMargin, 0)
	return s
}

// Definition is everything a world needs from the host application. One
// value describes one world and is shared with worker goroutines, so the
// functions it hands out must be safe for concurrent use.
type Definition interface {
	Settings() Settings
	// VoxelLookup returns the generator for the chunk at chunkPos.
	// previous is the chunk's current data, nil on first generation.
	VoxelLookup(chunkPos voxel.Pos, lod uint8, previous *chunk.Data) chunk.LookupFunc
	// Meshing may return nil to use the built-in mesher.
	Meshing(chunkPos voxel.Pos) meshing.MeshingFunc
	TextureMapper() meshing.TextureMapper
	ChunkLOD(chunkPos voxel.Pos, cameraPos mgl32.Vec3) uint8
	DataShape(lod uint8) chunk.Shape
	MeshShape(lod uint8) chunk.Shape
}

// BaseDefinition implements Definition with the defaults: an empty world
// without LOD. Embed it and override what differs.
type BaseDefinition struct{}

func (BaseDefinition) Settings() Settings { return DefaultSettings() }

func (BaseDefinition) VoxelLookup(voxel.Pos, uint8, *chunk.Data) chunk.LookupFunc {
	return func(voxel.Pos, voxel.Voxel, bool) voxel.Voxel { return voxel.Unset }
}

func (BaseDefinition) Meshing(voxel.Pos) meshing.MeshingFunc { return nil }

func (BaseDefinition) TextureMapper() meshing.TextureMapper { return DefaultTextureMapper }

func (BaseDefinition) ChunkLOD(voxel.Pos, mgl32.Vec3) uint8 { return 0 }

func (BaseDefinition) DataShape(uint8) chunk.Shape { return chunk.DefaultShape }

func (BaseDefinition) MeshShape(uint8) chunk.Shape { return chunk.DefaultShape }

// DefaultTextureMapper uses the material index itself for the first four
// materials and layer 0 for the rest.
func DefaultTextureMapper(m voxel.Material) [3]uint32 {
	if m <= 3 {
		return [3]uint32{uint32(m), uint32(m), uint32(m)}
	}
	return [3]uint32{}
}

// LODByDistance returns a ChunkLOD function stepping one level per
// threshold: chunks closer than thresholds[0] chunks get LOD 0, closer
// than thresholds[1] LOD 1, and so on.
func LODByDistance(thresholds ...int) func(voxel.Pos, mgl32.Vec3) uint8 {
	return func(chunkPos voxel.Pos, cameraPos mgl32.Vec3) uint8 {
		center := chunkPos.Vec3().Add(mgl32.Vec3{0.5, 0.5, 0.5}).Mul(voxel.ChunkSize)
		d := center.Sub(cameraPos).Len() / voxel.ChunkSize
		for i, th := range thresholds {
			if d < float32(th) {
				return uint8(i)
			}
		}
		return uint8(min(len(thresholds), math.MaxUint8))
	}
}

// ShapeForLOD halves the resolution per level, down to 1 voxel per axis.
func ShapeForLOD(lod uint8) chunk.Shape {
	n := voxel.ChunkSize >> min(lod, 5)
	return chunk.PaddedUniform(max(n, 1))
}
