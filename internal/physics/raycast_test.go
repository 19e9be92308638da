package physics_test

import (
	"testing"

	"voxelworld/internal/physics"
	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	pos  voxel.Pos
	t    float32
	face voxel.Face
}

func trace(start, end mgl32.Vec3) []step {
	var steps []step
	physics.LineTraversal(start, end, func(pos voxel.Pos, t float32, face voxel.Face) bool {
		steps = append(steps, step{pos, t, face})
		return len(steps) < 10000
	})
	return steps
}

func TestLineTraversalAlongAxes(t *testing.T) {
	start := mgl32.Vec3{0.5, 0.5, 0.5}
	tests := []struct {
		name string
		end  mgl32.Vec3
		path []voxel.Pos
		face voxel.Face
	}{
		{"x", mgl32.Vec3{2.5, 0.5, 0.5}, []voxel.Pos{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}, voxel.FaceLeft},
		{"y", mgl32.Vec3{0.5, 2.5, 0.5}, []voxel.Pos{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 2, Z: 0}}, voxel.FaceBottom},
		{"z", mgl32.Vec3{0.5, 0.5, 2.5}, []voxel.Pos{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 2}}, voxel.FaceBack},
		{"-x", mgl32.Vec3{-1.5, 0.5, 0.5}, []voxel.Pos{{X: 0, Y: 0, Z: 0}, {X: -1, Y: 0, Z: 0}, {X: -2, Y: 0, Z: 0}}, voxel.FaceRight},
		{"-y", mgl32.Vec3{0.5, -1.5, 0.5}, []voxel.Pos{{X: 0, Y: 0, Z: 0}, {X: 0, Y: -1, Z: 0}, {X: 0, Y: -2, Z: 0}}, voxel.FaceTop},
		{"-z", mgl32.Vec3{0.5, 0.5, -1.5}, []voxel.Pos{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: -1}, {X: 0, Y: 0, Z: -2}}, voxel.FaceForward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := trace(start, tt.end)
			require.Len(t, steps, len(tt.path))
			for i, s := range steps {
				assert.Equal(t, tt.path[i], s.pos)
				if i == 0 {
					assert.Equal(t, voxel.FaceNone, s.face)
					assert.Zero(t, s.t)
				} else {
					assert.Equal(t, tt.face, s.face)
				}
			}
			assert.InDelta(t, 0.25, steps[1].t, 1e-6)
			assert.InDelta(t, 0.75, steps[2].t, 1e-6)
		})
	}
}

func TestLineTraversalEndingOnBoundary(t *testing.T) {
	start := mgl32.Vec3{-5, 0.5, 1.9815}
	end := mgl32.Vec3{0, 0, 50}

	var want []voxel.Pos
	segments := []struct{ x, from, to int }{
		{-5, 1, 11}, {-4, 11, 21}, {-3, 21, 30}, {-2, 30, 40}, {-1, 40, 50},
	}
	for _, s := range segments {
		for z := s.from; z <= s.to; z++ {
			want = append(want, voxel.P(s.x, 0, z))
		}
	}
	want = append(want, voxel.P(0, 0, 50))

	steps := trace(start, end)
	got := make([]voxel.Pos, len(steps))
	prev := float32(0)
	for i, s := range steps {
		got[i] = s.pos
		assert.GreaterOrEqual(t, s.t, float32(0))
		assert.LessOrEqual(t, s.t, float32(1))
		assert.GreaterOrEqual(t, s.t, prev)
		prev = s.t
	}
	assert.Equal(t, want, got)
}

func TestLineTraversalDegenerate(t *testing.T) {
	p := mgl32.Vec3{3.2, -1.5, 7.9}
	steps := trace(p, p)
	require.Len(t, steps, 1)
	assert.Equal(t, voxel.P(3, -2, 7), steps[0].pos)

	steps = trace(mgl32.Vec3{0.1, 0.1, 0.1}, mgl32.Vec3{0.9, 0.2, 0.3})
	require.Len(t, steps, 1)
}

func TestLineTraversalStopsEarly(t *testing.T) {
	n := 0
	physics.LineTraversal(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{100.5, 0.5, 0.5}, func(voxel.Pos, float32, voxel.Face) bool {
		n++
		return n < 5
	})
	assert.Equal(t, 5, n)
}

func TestLineTraversalDiagonalVisitsEndVoxel(t *testing.T) {
	end := mgl32.Vec3{-7.3, 12.6, 4.4}
	steps := trace(mgl32.Vec3{1.2, -3.7, 0.4}, end)
	require.NotEmpty(t, steps)
	assert.Equal(t, voxel.Floor(end), steps[len(steps)-1].pos)
	for i := 1; i < len(steps); i++ {
		d := steps[i].pos.Sub(steps[i-1].pos)
		assert.Equal(t, 1, d.DistanceSquared(voxel.Pos{}), "steps must be face adjacent")
	}
}

func TestCartesianTraversal(t *testing.T) {
	var got []voxel.Pos
	physics.CartesianTraversal(voxel.P(0, 0, 0), voxel.P(0, -3, 0), func(p voxel.Pos) bool {
		got = append(got, p)
		return true
	})
	assert.Equal(t, []voxel.Pos{{X: 0, Y: 0, Z: 0}, {X: 0, Y: -1, Z: 0}, {X: 0, Y: -2, Z: 0}}, got)

	got = nil
	physics.CartesianTraversal(voxel.P(0, 0, 0), voxel.P(1, 1, 0), func(p voxel.Pos) bool {
		got = append(got, p)
		return true
	})
	assert.Empty(t, got)
}

func TestAABBIntersectRay(t *testing.T) {
	box := physics.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{32, 32, 32}}

	tIn, tOut, ok := box.IntersectRay(physics.Ray{Origin: mgl32.Vec3{0.5, 0.5, 70}, Direction: mgl32.Vec3{0, 0, -1}})
	require.True(t, ok)
	assert.InDelta(t, 38, tIn, 1e-5)
	assert.InDelta(t, 70, tOut, 1e-5)

	tIn, _, ok = box.IntersectRay(physics.Ray{Origin: mgl32.Vec3{5, 5, 5}, Direction: mgl32.Vec3{1, 0, 0}})
	require.True(t, ok)
	assert.Less(t, tIn, float32(0))

	_, _, ok = box.IntersectRay(physics.Ray{Origin: mgl32.Vec3{50, 5, 5}, Direction: mgl32.Vec3{0, 1, 0}})
	assert.False(t, ok)
	_, _, ok = box.IntersectRay(physics.Ray{Origin: mgl32.Vec3{50, 5, 5}, Direction: mgl32.Vec3{1, 0, 0}})
	assert.False(t, ok)
}

func TestAABBContainsAndIntersects(t *testing.T) {
	a := physics.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	assert.True(t, a.Contains(mgl32.Vec3{1, 1, 1}))
	assert.False(t, a.Contains(mgl32.Vec3{1.1, 0, 0}))
	assert.True(t, a.Intersects(physics.AABB{Min: mgl32.Vec3{0.5, 0.5, 0.5}, Max: mgl32.Vec3{2, 2, 2}}))
	assert.False(t, a.Intersects(physics.AABB{Min: mgl32.Vec3{1, 0, 0}, Max: mgl32.Vec3{2, 1, 1}}))
}

func solids(ps ...voxel.Pos) func(voxel.Pos) voxel.Voxel {
	set := make(map[voxel.Pos]bool, len(ps))
	for _, p := range ps {
		set[p] = true
	}
	return func(p voxel.Pos) voxel.Voxel {
		if set[p] {
			return voxel.Solid(1)
		}
		return voxel.Air
	}
}

func TestRaycast(t *testing.T) {
	bounds := physics.AABB{Min: mgl32.Vec3{-32, -32, -32}, Max: mgl32.Vec3{32, 32, 32}}
	get := solids(voxel.P(5, 0, 0))
	start := mgl32.Vec3{0.5, 0.5, 0.5}

	hit, ok := physics.Raycast(physics.Ray{Origin: start, Direction: mgl32.Vec3{1, 0, 0}}, bounds, 10, get, nil)
	require.True(t, ok)
	assert.Equal(t, voxel.P(5, 0, 0), hit.VoxelPos())
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, hit.Normal)
	assert.Equal(t, voxel.P(4, 0, 0), hit.VoxelPos().Add(hit.VoxelNormal()))

	_, ok = physics.Raycast(physics.Ray{Origin: start, Direction: mgl32.Vec3{1, 0, 0}}, bounds, 4, get, nil)
	assert.False(t, ok, "target is beyond max distance")

	_, ok = physics.Raycast(physics.Ray{Origin: start, Direction: mgl32.Vec3{0, 1, 0}}, bounds, 10, get, nil)
	assert.False(t, ok)

	get = solids(voxel.P(5, 0, 0), voxel.P(2, 2, 2))
	hit, ok = physics.Raycast(physics.Ray{Origin: start, Direction: mgl32.Vec3{1, 1, 1}}, bounds, 10, get, nil)
	require.True(t, ok)
	assert.Equal(t, voxel.P(2, 2, 2), hit.VoxelPos())
}

func TestRaycastFilterAndUnset(t *testing.T) {
	bounds := physics.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{32, 32, 32}}
	get := func(p voxel.Pos) voxel.Voxel {
		switch p.X {
		case 3:
			return voxel.Solid(2)
		case 6:
			return voxel.Solid(3)
		}
		return voxel.Unset
	}
	ray := physics.Ray{Origin: mgl32.Vec3{0.5, 0.5, 0.5}, Direction: mgl32.Vec3{1, 0, 0}}

	hit, ok := physics.Raycast(ray, bounds, 100, get, func(_ mgl32.Vec3, v voxel.Voxel) bool {
		return v != voxel.Solid(2)
	})
	require.True(t, ok)
	assert.Equal(t, voxel.Solid(3), hit.Voxel)
	assert.Equal(t, mgl32.Vec3{6, 0, 0}, hit.Position)
}

func TestRaycastStartsInsideSolid(t *testing.T) {
	bounds := physics.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{32, 32, 32}}
	hit, ok := physics.Raycast(physics.Ray{Origin: mgl32.Vec3{1.5, 1.5, 1.5}, Direction: mgl32.Vec3{0, -2, 0.5}}, bounds, 10, solids(voxel.P(1, 1, 1)), nil)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, hit.Normal)
}

func TestRaycastOutsideBounds(t *testing.T) {
	bounds := physics.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{32, 32, 32}}
	_, ok := physics.Raycast(physics.Ray{Origin: mgl32.Vec3{-10, 50, 0}, Direction: mgl32.Vec3{-1, 0, 0}}, bounds, 100, solids(voxel.P(1, 1, 1)), nil)
	assert.False(t, ok)
}

func BenchmarkRaycast(b *testing.B) {
	var wall []voxel.Pos
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			wall = append(wall, voxel.P(x, y, 5))
		}
	}
	get := solids(wall...)
	bounds := physics.AABB{Min: mgl32.Vec3{-32, -32, -32}, Max: mgl32.Vec3{32, 32, 32}}
	ray := physics.Ray{Origin: mgl32.Vec3{0, 8, 0}, Direction: mgl32.Vec3{0.1, -0.2, 1}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = physics.Raycast(ray, bounds, 64, get, nil)
	}
}
