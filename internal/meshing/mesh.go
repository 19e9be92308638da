package meshing

import (
	"voxelworld/internal/chunk"
	"voxelworld/internal/voxel"
)

// TextureMapper maps a material to its [top, side, bottom] texture layers.
// It is called concurrently from worker goroutines.
type TextureMapper func(m voxel.Material) [3]uint32

// Mesh is a renderable triangle list in chunk-local space.
type Mesh struct {
	Positions  [][3]float32
	Normals    [][3]float32
	UVs        [][2]float32
	Colors     [][4]float32
	TexIndices [][3]uint32
	Indices    []uint32
}

func newMesh(quads int) *Mesh {
	return &Mesh{
		Positions:  make([][3]float32, 0, quads*4),
		Normals:    make([][3]float32, 0, quads*4),
		UVs:        make([][2]float32, 0, quads*4),
		Colors:     make([][4]float32, 0, quads*4),
		TexIndices: make([][3]uint32, 0, quads*4),
		Indices:    make([]uint32, 0, quads*6),
	}
}

func (m *Mesh) QuadCount() int { return len(m.Positions) / 4 }

func (m *Mesh) VertexCount() int { return len(m.Positions) }

func (m *Mesh) IsEmpty() bool { return m == nil || len(m.Indices) == 0 }

// quad is one rectangle of visible faces on a padded voxel grid.
type quad struct {
	face   face
	min    [3]int // padded cell of the (u0, v0) corner voxel
	w, h   int    // extent along the face's u and v axes
	ao     [4]int
	tex    [3]uint32
	normal [3]float32
}

var aoColors = [4][4]float32{
	{0.1, 0.1, 0.1, 1},
	{0.3, 0.3, 0.3, 1},
	{0.5, 0.5, 0.5, 1},
	{1, 1, 1, 1},
}

// addQuad appends q with corners counter-clockwise seen from the normal.
func (m *Mesh) addQuad(q quad, scale [3]float32) {
	f := q.face
	n, u, v := f.axis, f.u, f.v

	var origin [3]float32
	for i := 0; i < 3; i++ {
		origin[i] = float32(q.min[i]-1) * scale[i]
	}
	if f.sign > 0 {
		origin[n] += scale[n]
	}
	du := float32(q.w) * scale[u]
	dv := float32(q.h) * scale[v]

	corner := func(a, b float32) [3]float32 {
		p := origin
		p[u] += a
		p[v] += b
		return p
	}
	// Corner i sits at (cu[i], cv[i]) in units of the quad extent.
	cu, cv := [4]float32{0, 1, 1, 0}, [4]float32{0, 0, 1, 1}
	order := [4]int{0, 1, 2, 3}
	if f.sign < 0 {
		order = [4]int{0, 3, 2, 1}
	}

	base := uint32(len(m.Positions))
	for _, i := range order {
		m.Positions = append(m.Positions, corner(cu[i]*du, cv[i]*dv))
		m.Normals = append(m.Normals, q.normal)
		m.UVs = append(m.UVs, [2]float32{cu[i] * du, cv[i] * dv})
		m.Colors = append(m.Colors, aoColors[q.ao[i]])
		m.TexIndices = append(m.TexIndices, q.tex)
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// face describes one of the six face directions: the normal axis and its
// sign, plus the two in-plane axes ordered so that u x v points along +axis.
type face struct {
	axis, u, v int
	sign       int
}

var faces = [6]face{
	{axis: 0, u: 1, v: 2, sign: -1},
	{axis: 0, u: 1, v: 2, sign: 1},
	{axis: 1, u: 2, v: 0, sign: -1},
	{axis: 1, u: 2, v: 0, sign: 1},
	{axis: 2, u: 0, v: 1, sign: -1},
	{axis: 2, u: 0, v: 1, sign: 1},
}

func (f face) normal() [3]float32 {
	var n [3]float32
	n[f.axis] = float32(f.sign)
	return n
}

// grid wraps a padded voxel array for neighbour queries.
type grid struct {
	voxels []voxel.Voxel
	shape  chunk.Shape
	dims   [3]int
}

func newGrid(voxels []voxel.Voxel, shape chunk.Shape) grid {
	return grid{voxels: voxels, shape: shape, dims: [3]int{shape.X, shape.Y, shape.Z}}
}

func (g grid) at(p [3]int) voxel.Voxel {
	return g.voxels[g.shape.Linearize(p[0], p[1], p[2])]
}

func (g grid) opaque(p [3]int) bool {
	for i := 0; i < 3; i++ {
		if p[i] < 0 || p[i] >= g.dims[i] {
			return false
		}
	}
	return g.at(p).IsOpaque()
}

// visible reports whether the face f of the voxel at p should be drawn.
func (g grid) visible(p [3]int, f face) bool {
	if !g.at(p).IsOpaque() {
		return false
	}
	n := p
	n[f.axis] += f.sign
	return !g.opaque(n)
}

func textureFor(v voxel.Voxel, mapper TextureMapper) [3]uint32 {
	if m, ok := v.Material(); ok && mapper != nil {
		return mapper(m)
	}
	return [3]uint32{}
}
