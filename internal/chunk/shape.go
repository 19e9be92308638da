package chunk

import (
	"fmt"

	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Shape is the padded extent of a chunk's voxel array. The outermost layer on
// every face mirrors the neighbouring chunks and only informs face culling.
type Shape struct {
	X, Y, Z int
}

// DefaultShape is the full-resolution padded shape.
var DefaultShape = PaddedUniform(voxel.ChunkSize)

// PaddedUniform returns a cubic shape with n inner voxels per axis.
func PaddedUniform(n int) Shape {
	return Shape{n + 2, n + 2, n + 2}
}

// Size is the number of cells in the shape.
func (s Shape) Size() int { return s.X * s.Y * s.Z }

// Linearize maps a cell to its array index. X varies fastest.
func (s Shape) Linearize(x, y, z int) int {
	return x + y*s.X + z*s.X*s.Y
}

// Delinearize is the inverse of Linearize.
func (s Shape) Delinearize(i int) (x, y, z int) {
	z = i / (s.X * s.Y)
	i -= z * s.X * s.Y
	y = i / s.X
	x = i - y*s.X
	return x, y, z
}

// Inner returns the unpadded extents, at least 1 per axis.
func (s Shape) Inner() Shape {
	return Shape{max(s.X-2, 1), max(s.Y-2, 1), max(s.Z-2, 1)}
}

// Fits reports whether s is no larger than o on every axis.
func (s Shape) Fits(o Shape) bool {
	return s.X <= o.X && s.Y <= o.Y && s.Z <= o.Z
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.X, s.Y, s.Z)
}

// VoxelScale is the world-space size of one cell of the shape per axis.
func VoxelScale(s Shape) mgl32.Vec3 {
	in := s.Inner()
	return mgl32.Vec3{
		float32(voxel.ChunkSize) / float32(in.X),
		float32(voxel.ChunkSize) / float32(in.Y),
		float32(voxel.ChunkSize) / float32(in.Z),
	}
}

// SampledBounds is the inclusive world box the cells of a chunk at pos are
// generated from, padding included. At coarse shapes the low padding cell
// reaches one cell width into the neighbour below.
func SampledBounds(pos voxel.Pos, s Shape) (lo, hi voxel.Pos) {
	origin := pos.Scale(voxel.ChunkSize)
	scale := VoxelScale(s)
	lo = voxel.Pos{
		X: int(-scale.X()) + origin.X,
		Y: int(-scale.Y()) + origin.Y,
		Z: int(-scale.Z()) + origin.Z,
	}
	hi = voxel.Pos{
		X: int(float32(s.X-2)*scale.X()) + origin.X,
		Y: int(float32(s.Y-2)*scale.Y()) + origin.Y,
		Z: int(float32(s.Z-2)*scale.Z()) + origin.Z,
	}
	return lo, hi
}
