package voxel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestVoxelZeroValueIsUnset(t *testing.T) {
	var v Voxel
	assert.True(t, v.IsUnset())
	assert.Equal(t, Unset, v)
	assert.False(t, v.IsOpaque())
}

func TestVoxelKinds(t *testing.T) {
	assert.True(t, Air.IsAir())
	assert.False(t, Air.IsOpaque())

	s := Solid(7)
	assert.True(t, s.IsSolid())
	assert.True(t, s.IsOpaque())
	m, ok := s.Material()
	assert.True(t, ok)
	assert.Equal(t, Material(7), m)

	_, ok = Air.Material()
	assert.False(t, ok)

	assert.Equal(t, Solid(1), Solid(1))
	assert.NotEqual(t, Solid(1), Solid(2))
	assert.Equal(t, "Solid(3)", Solid(3).String())
}

func TestFaceNormals(t *testing.T) {
	cases := map[Face]mgl32.Vec3{
		FaceBottom:  {0, -1, 0},
		FaceTop:     {0, 1, 0},
		FaceLeft:    {-1, 0, 0},
		FaceRight:   {1, 0, 0},
		FaceBack:    {0, 0, -1},
		FaceForward: {0, 0, 1},
	}
	for face, want := range cases {
		got, ok := face.Normal()
		assert.True(t, ok, face.String())
		assert.Equal(t, want, got, face.String())
	}
	_, ok := FaceNone.Normal()
	assert.False(t, ok)
}

func TestChunkPosFloorsNegativeCoordinates(t *testing.T) {
	assert.Equal(t, P(0, 0, 0), ChunkPos(P(0, 31, 5)))
	assert.Equal(t, P(-1, -1, 1), ChunkPos(P(-1, -32, 32)))
	assert.Equal(t, P(-2, 0, 0), ChunkPos(P(-33, 0, 0)))

	assert.Equal(t, P(31, 0, 0), LocalPos(P(-1, 0, 0)))
	assert.Equal(t, P(0, 0, 1), LocalPos(P(-32, 64, 33)))

	assert.Equal(t, P(-1, 0, 2), ChunkPosOf(mgl32.Vec3{-0.5, 31.9, 64}))
}

func TestDistanceSquared(t *testing.T) {
	assert.Equal(t, 0, P(1, 2, 3).DistanceSquared(P(1, 2, 3)))
	assert.Equal(t, 14, P(0, 0, 0).DistanceSquared(P(1, -2, 3)))
}
