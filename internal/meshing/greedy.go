package meshing

import (
	"voxelworld/internal/chunk"
	"voxelworld/internal/voxel"
)

// greedyQuads merges coplanar visible faces that share a material and an
// occlusion pattern into rectangles, one layer at a time per direction.
func greedyQuads(voxels []voxel.Voxel, shape chunk.Shape, mapper TextureMapper) []quad {
	g := newGrid(voxels, shape)
	quads := make([]quad, 0, 64)
	for _, f := range faces {
		quads = greedyForDirection(g, f, mapper, quads)
	}
	return quads
}

// faceKey packs everything two faces must share to be merged. 0 means no face.
func faceKey(m voxel.Material, ao [4]int) int {
	return 1<<16 | int(m)<<8 | ao[0] | ao[1]<<2 | ao[2]<<4 | ao[3]<<6
}

func unpackAO(key int) [4]int {
	return [4]int{key & 3, key >> 2 & 3, key >> 4 & 3, key >> 6 & 3}
}

func greedyForDirection(g grid, f face, mapper TextureMapper, quads []quad) []quad {
	// Only interior cells emit faces.
	su, sv := g.dims[f.u]-2, g.dims[f.v]-2
	if su <= 0 || sv <= 0 {
		return quads
	}
	mask := make([]int, su*sv)
	cells := make([]voxel.Voxel, su*sv)

	for layer := 1; layer < g.dims[f.axis]-1; layer++ {
		for v := 0; v < sv; v++ {
			for u := 0; u < su; u++ {
				var p [3]int
				p[f.axis] = layer
				p[f.u] = u + 1
				p[f.v] = v + 1
				i := v*su + u
				mask[i] = 0
				if !g.visible(p, f) {
					continue
				}
				vx := g.at(p)
				m, _ := vx.Material()
				mask[i] = faceKey(m, g.faceAO(p, f))
				cells[i] = vx
			}
		}

		i := 0
		for i < su*sv {
			key := mask[i]
			if key == 0 {
				i++
				continue
			}
			u0 := i % su
			v0 := i / su

			width := 1
			for u1 := u0 + 1; u1 < su && mask[v0*su+u1] == key; u1++ {
				width++
			}
			height := 1
		outer:
			for v1 := v0 + 1; v1 < sv; v1++ {
				for u1 := u0; u1 < u0+width; u1++ {
					if mask[v1*su+u1] != key {
						break outer
					}
				}
				height++
			}

			var p [3]int
			p[f.axis] = layer
			p[f.u] = u0 + 1
			p[f.v] = v0 + 1
			quads = append(quads, quad{
				face:   f,
				min:    p,
				w:      width,
				h:      height,
				ao:     unpackAO(key),
				tex:    textureFor(cells[i], mapper),
				normal: f.normal(),
			})

			for vv := v0; vv < v0+height; vv++ {
				for uu := u0; uu < u0+width; uu++ {
					mask[vv*su+uu] = 0
				}
			}
			i += width
		}
	}
	return quads
}
