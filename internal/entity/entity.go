package entity

import (
	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// ID identifies a chunk object in the scene graph. The zero value is the
// placeholder id and never refers to a live entity.
type ID uint64

const Placeholder ID = 0

// MeshRef is a shared render resource attached to a chunk entity. The
// registry releases it when the entity drops it or is despawned.
type MeshRef interface {
	Release()
}

// Chunk is the scene-graph placement of one spawned chunk.
type Chunk struct {
	ID          ID
	Position    voxel.Pos
	LOD         uint8
	Translation mgl32.Vec3

	NeedsRemesh  bool
	NeedsDespawn bool
	// InFlight is set while a generation task for this entity is running.
	InFlight bool

	mesh   MeshRef
	bundle any
}

// Mesh returns the attached mesh resource, if any.
func (c *Chunk) Mesh() MeshRef { return c.mesh }

// Bundle returns the auxiliary data produced alongside the mesh.
func (c *Chunk) Bundle() any { return c.bundle }

// ChunkTranslation places a chunk in world space. Meshes are built in
// chunk-local space with the padding layer already removed.
func ChunkTranslation(pos voxel.Pos) mgl32.Vec3 {
	return pos.Vec3().Mul(float32(voxel.ChunkSize))
}
