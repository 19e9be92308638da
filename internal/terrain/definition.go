package terrain

import (
	"voxelworld/internal/chunk"
	"voxelworld/internal/meshing"
	"voxelworld/internal/registry"
	"voxelworld/internal/voxel"
	"voxelworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

var _ world.Definition = (*Definition)(nil)

// Definition is a world.Definition backed by a terrain Generator.
type Definition struct {
	settings world.Settings
	gen      Generator
	mapper   meshing.TextureMapper
	lod      func(voxel.Pos, mgl32.Vec3) uint8
	mesher   meshing.MeshingFunc
}

// Option configures a Definition.
type Option func(*Definition)

// WithSettings replaces world.DefaultSettings.
func WithSettings(s world.Settings) Option {
	return func(d *Definition) { d.settings = s.Normalize() }
}

// WithTextureMapper replaces the default registry's mapper.
func WithTextureMapper(m meshing.TextureMapper) Option {
	return func(d *Definition) { d.mapper = m }
}

// WithLOD lowers chunk resolution past each distance threshold, in chunks.
func WithLOD(thresholds ...int) Option {
	return func(d *Definition) {
		if len(thresholds) > 0 {
			d.lod = world.LODByDistance(thresholds...)
		}
	}
}

// WithMesher forces a meshing function instead of the one picked by the
// settings.
func WithMesher(fn meshing.MeshingFunc) Option {
	return func(d *Definition) { d.mesher = fn }
}

func NewDefinition(gen Generator, opts ...Option) *Definition {
	d := &Definition{
		settings: world.DefaultSettings(),
		gen:      gen,
		mapper:   registry.Default().Mapper(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Definition) Generator() Generator { return d.gen }

func (d *Definition) Settings() world.Settings { return d.settings }

// VoxelLookup returns a generator for one chunk task. The returned function
// caches columns and must only be used by that task.
func (d *Definition) VoxelLookup(voxel.Pos, uint8, *chunk.Data) chunk.LookupFunc {
	columns := make(map[[2]int]Column, (voxel.ChunkSize+2)*(voxel.ChunkSize+2))
	return func(pos voxel.Pos, _ voxel.Voxel, _ bool) voxel.Voxel {
		key := [2]int{pos.X, pos.Z}
		col, ok := columns[key]
		if !ok {
			col = d.gen.Column(pos.X, pos.Z)
			columns[key] = col
		}
		return Voxel(d.gen, col, pos.X, pos.Y, pos.Z)
	}
}

func (d *Definition) Meshing(voxel.Pos) meshing.MeshingFunc { return d.mesher }

func (d *Definition) TextureMapper() meshing.TextureMapper { return d.mapper }

func (d *Definition) ChunkLOD(pos voxel.Pos, camera mgl32.Vec3) uint8 {
	if d.lod == nil {
		return 0
	}
	return d.lod(pos, camera)
}

func (d *Definition) DataShape(lod uint8) chunk.Shape { return world.ShapeForLOD(lod) }

func (d *Definition) MeshShape(lod uint8) chunk.Shape { return world.ShapeForLOD(lod) }

// SurfaceHeight is the Y of the topmost solid voxel at x,z, ignoring caves.
func (d *Definition) SurfaceHeight(x, z int) int {
	return d.gen.Column(x, z).Height
}
