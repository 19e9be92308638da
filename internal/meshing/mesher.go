// Package meshing turns padded chunk voxel arrays into renderable meshes and
// shares identical meshes between chunks.
package meshing

import (
	"voxelworld/internal/chunk"
	"voxelworld/internal/voxel"
)

// Algorithm selects the face extraction strategy.
type Algorithm uint8

const (
	// Naive emits one quad per visible voxel face.
	Naive Algorithm = iota
	// Greedy merges coplanar faces with equal material and occlusion.
	Greedy
)

func (a Algorithm) String() string {
	if a == Greedy {
		return "greedy"
	}
	return "naive"
}

// ParseAlgorithm accepts "naive" and "greedy".
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch s {
	case "naive", "":
		return Naive, true
	case "greedy":
		return Greedy, true
	}
	return Naive, false
}

// MeshingFunc builds the mesh of one chunk together with optional auxiliary
// data. It runs on worker goroutines.
type MeshingFunc func(voxels []voxel.Voxel, dataShape, meshShape chunk.Shape, mapper TextureMapper) (*Mesh, any)

// DefaultMeshing returns the built-in meshing function for a.
func DefaultMeshing(a Algorithm) MeshingFunc {
	return func(voxels []voxel.Voxel, dataShape, meshShape chunk.Shape, mapper TextureMapper) (*Mesh, any) {
		return Generate(voxels, dataShape, meshShape, mapper, a), nil
	}
}

// Generate meshes a padded voxel array. voxels is laid out in dataShape and
// is resampled to meshShape first when the two differ.
func Generate(voxels []voxel.Voxel, dataShape, meshShape chunk.Shape, mapper TextureMapper, a Algorithm) *Mesh {
	if len(voxels) != dataShape.Size() {
		panic("meshing: voxel array does not match data shape")
	}
	voxels = Resample(voxels, dataShape, meshShape)

	var quads []quad
	if a == Greedy {
		quads = greedyQuads(voxels, meshShape, mapper)
	} else {
		quads = naiveQuads(voxels, meshShape, mapper)
	}

	s := chunk.VoxelScale(meshShape)
	scale := [3]float32{s.X(), s.Y(), s.Z()}
	m := newMesh(len(quads))
	for _, q := range quads {
		m.addQuad(q, scale)
	}
	return m
}
