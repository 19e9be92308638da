package voxel

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkSize is the edge length of a chunk in voxels.
	ChunkSize = 32
	// PaddedChunkSize adds one voxel of padding on each face.
	PaddedChunkSize = ChunkSize + 2
	// Size is the world-space edge length of one voxel.
	Size float32 = 1.0
)

// Pos is an integer coordinate, either in voxel space or chunk space.
type Pos struct {
	X, Y, Z int
}

func P(x, y, z int) Pos { return Pos{X: x, Y: y, Z: z} }

func (p Pos) Add(o Pos) Pos { return Pos{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }

func (p Pos) Sub(o Pos) Pos { return Pos{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }

func (p Pos) Scale(s int) Pos { return Pos{p.X * s, p.Y * s, p.Z * s} }

// DistanceSquared is the squared euclidean distance between two positions.
func (p Pos) DistanceSquared(o Pos) int {
	d := p.Sub(o)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

func (p Pos) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Floor converts a world-space point into the voxel containing it.
func Floor(v mgl32.Vec3) Pos {
	return Pos{
		X: int(math.Floor(float64(v.X()))),
		Y: int(math.Floor(float64(v.Y()))),
		Z: int(math.Floor(float64(v.Z()))),
	}
}

// ChunkPos returns the chunk containing the voxel at world position p.
func ChunkPos(p Pos) Pos {
	return Pos{floorDiv(p.X, ChunkSize), floorDiv(p.Y, ChunkSize), floorDiv(p.Z, ChunkSize)}
}

// LocalPos returns p's offset inside its chunk, each component in [0, ChunkSize).
func LocalPos(p Pos) Pos {
	return Pos{mod(p.X, ChunkSize), mod(p.Y, ChunkSize), mod(p.Z, ChunkSize)}
}

// ChunkPosOf returns the chunk containing a world-space point.
func ChunkPosOf(v mgl32.Vec3) Pos {
	return ChunkPos(Floor(v))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
