package meshing

import (
	"voxelworld/internal/chunk"
	"voxelworld/internal/voxel"
)

// naiveQuads emits one unit quad per visible face of every interior voxel.
func naiveQuads(voxels []voxel.Voxel, shape chunk.Shape, mapper TextureMapper) []quad {
	g := newGrid(voxels, shape)
	quads := make([]quad, 0, 256)
	for z := 1; z < shape.Z-1; z++ {
		for y := 1; y < shape.Y-1; y++ {
			for x := 1; x < shape.X-1; x++ {
				p := [3]int{x, y, z}
				v := g.at(p)
				if !v.IsOpaque() {
					continue
				}
				for _, f := range faces {
					if !g.visible(p, f) {
						continue
					}
					quads = append(quads, quad{
						face:   f,
						min:    p,
						w:      1,
						h:      1,
						ao:     g.faceAO(p, f),
						tex:    textureFor(v, mapper),
						normal: f.normal(),
					})
				}
			}
		}
	}
	return quads
}
