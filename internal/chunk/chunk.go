package chunk

import (
	"math"

	"voxelworld/internal/entity"
	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// FillType classifies the content of a chunk.
type FillType uint8

const (
	// FillEmpty chunks hold no solid voxel.
	FillEmpty FillType = iota
	// FillMixed chunks keep their dense voxel array.
	FillMixed
	// FillUniform chunks are full of a single voxel value.
	FillUniform
)

func (f FillType) String() string {
	switch f {
	case FillMixed:
		return "Mixed"
	case FillUniform:
		return "Uniform"
	default:
		return "Empty"
	}
}

// Data is the queryable snapshot of one chunk. It is a value type: copies
// share the voxel array, which is never written after Generate returns.
type Data struct {
	position     voxel.Pos
	lod          uint8
	voxels       []voxel.Voxel
	hash         uint64
	isFull       bool
	isEmpty      bool
	fill         FillType
	uniform      voxel.Voxel
	entity       entity.ID
	hasGenerated bool
	dataShape    Shape
	meshShape    Shape
}

// NewData returns an empty, not yet generated chunk.
func NewData() Data {
	return Data{
		isEmpty:   true,
		fill:      FillEmpty,
		entity:    entity.Placeholder,
		dataShape: DefaultShape,
		meshShape: DefaultShape,
	}
}

// Placeholder is the entry the scheduler inserts before generation ran.
func Placeholder(pos voxel.Pos, id entity.ID) Data {
	d := NewData()
	d.position = pos
	d.entity = id
	return d
}

// NewMixed wraps an existing dense array as a generated Mixed chunk without
// classifying it. Used to inject chunk data that did not come from a Task.
func NewMixed(pos voxel.Pos, id entity.ID, shape Shape, voxels []voxel.Voxel) Data {
	if len(voxels) != shape.Size() {
		panic("chunk: voxel array does not match shape")
	}
	d := NewData()
	d.position = pos
	d.entity = id
	d.dataShape = shape
	d.meshShape = shape
	d.voxels = voxels
	d.fill = FillMixed
	d.isEmpty = false
	d.hasGenerated = true
	d.hash = contentHash(d.dataShape, d.meshShape, d.voxels)
	return d
}

func (d Data) Position() voxel.Pos { return d.position }

func (d Data) LOD() uint8 { return d.lod }

// Voxels returns the dense array, nil unless the chunk is Mixed. Callers must
// not modify it.
func (d Data) Voxels() []voxel.Voxel { return d.voxels }

// Hash is the content hash used as the mesh-cache key. 0 without voxels.
func (d Data) Hash() uint64 { return d.hash }

// IsFull reports whether every cell, padding included, is solid.
func (d Data) IsFull() bool { return d.isFull }

// IsEmpty reports whether no cell is solid.
func (d Data) IsEmpty() bool { return d.isEmpty }

func (d Data) FillType() FillType { return d.fill }

// UniformVoxel returns the voxel of a Uniform chunk.
func (d Data) UniformVoxel() (voxel.Voxel, bool) {
	return d.uniform, d.fill == FillUniform
}

func (d Data) Entity() entity.ID { return d.entity }

// HasGenerated distinguishes real data from scheduler placeholders.
func (d Data) HasGenerated() bool { return d.hasGenerated }

func (d Data) DataShape() Shape { return d.dataShape }

func (d Data) MeshShape() Shape { return d.meshShape }

// Voxel returns the cell at a padded data-space coordinate.
func (d Data) Voxel(x, y, z int) voxel.Voxel {
	if d.voxels != nil {
		return d.voxels[d.dataShape.Linearize(x, y, z)]
	}
	if d.fill == FillUniform {
		return d.uniform
	}
	return voxel.Unset
}

// VoxelAtWorld looks up a world voxel position. ok is false when the
// position is not sampled by this chunk's data shape.
func (d Data) VoxelAtWorld(p voxel.Pos) (voxel.Voxel, bool) {
	scale := VoxelScale(d.dataShape)
	off := p.Sub(d.position.Scale(voxel.ChunkSize))

	x, okX := cellIndex(off.X, scale.X(), d.dataShape.X)
	y, okY := cellIndex(off.Y, scale.Y(), d.dataShape.Y)
	z, okZ := cellIndex(off.Z, scale.Z(), d.dataShape.Z)
	if !okX || !okY || !okZ {
		return voxel.Unset, false
	}
	return d.Voxel(x, y, z), true
}

func cellIndex(offset int, scale float32, dim int) (int, bool) {
	if scale <= math.SmallestNonzeroFloat32 || dim == 0 {
		return 0, false
	}
	cell := float32(math.Ceil(float64((float32(offset) + 1) / scale)))
	if cell < 0 {
		return 0, false
	}
	idx := int(cell)
	if idx >= dim {
		return 0, false
	}
	if int((cell-1)*scale) != offset {
		return 0, false
	}
	return idx, true
}

// WorldPosition is the world-space origin of the chunk.
func (d Data) WorldPosition() mgl32.Vec3 {
	return d.position.Vec3().Mul(float32(voxel.ChunkSize))
}

// AABB returns the chunk's box in chunk-local space.
func (d Data) AABB() (min, max mgl32.Vec3) {
	return mgl32.Vec3{}, mgl32.Vec3{voxel.ChunkSize, voxel.ChunkSize, voxel.ChunkSize}
}

// EnclosesPoint reports whether a world-space point lies inside the chunk,
// boundaries included.
func (d Data) EnclosesPoint(p mgl32.Vec3) bool {
	local := p.Sub(d.WorldPosition())
	lo, hi := d.AABB()
	for i := 0; i < 3; i++ {
		if local[i] < lo[i] || local[i] > hi[i] {
			return false
		}
	}
	return true
}

// HasVoxel reports whether the chunk covers p and stores v there.
func (d Data) HasVoxel(p voxel.Pos, v voxel.Voxel) bool {
	if voxel.ChunkPos(p) != d.position {
		return false
	}
	got, ok := d.VoxelAtWorld(p)
	return ok && got == v
}
