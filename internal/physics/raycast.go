package physics

import (
	"math"

	"voxelworld/internal/profiling"
	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Hit is the result of a voxel raycast.
type Hit struct {
	// Position is the minimum corner of the hit voxel.
	Position mgl32.Vec3
	// Normal points out of the face the ray entered through.
	Normal mgl32.Vec3
	Voxel  voxel.Voxel
}

func (h Hit) VoxelPos() voxel.Pos { return voxel.Floor(h.Position) }

// VoxelNormal is Normal as an integer offset to the adjacent voxel.
func (h Hit) VoxelNormal() voxel.Pos { return voxel.Floor(h.Normal) }

// FilterFunc decides whether a solid voxel counts as a hit.
type FilterFunc func(pos mgl32.Vec3, v voxel.Voxel) bool

// Raycast walks ray through the voxels inside bounds, up to maxDistance from
// the origin, and returns the first solid voxel accepted by filter. Unset
// voxels never count as hits. A nil filter accepts everything.
func Raycast(ray Ray, bounds AABB, maxDistance float32, get func(voxel.Pos) voxel.Voxel, filter FilterFunc) (Hit, bool) {
	defer profiling.Track("physics.Raycast")()

	if ray.Direction.Len() == 0 || maxDistance <= 0 {
		return Hit{}, false
	}
	dir := ray.Direction.Normalize()
	r := Ray{Origin: ray.Origin, Direction: dir}

	tEnter, tExit, ok := bounds.IntersectRay(r)
	if !ok {
		return Hit{}, false
	}
	if bounds.Contains(r.Origin) {
		tEnter = 0
	}
	tEnter = max(tEnter, 0)
	tExit = min(tExit, maxDistance)
	if tEnter > tExit {
		return Hit{}, false
	}

	var (
		hit   Hit
		found bool
	)
	LineTraversal(r.At(tEnter), r.At(tExit), func(pos voxel.Pos, _ float32, face voxel.Face) bool {
		v := get(pos)
		if v.IsUnset() || !v.IsSolid() {
			return true
		}
		p := pos.Vec3()
		if filter != nil && !filter(p, v) {
			return true
		}
		normal, ok := face.Normal()
		if !ok {
			normal = facingNormal(dir)
		}
		hit = Hit{Position: p, Normal: normal, Voxel: v}
		found = true
		return false
	})
	return hit, found
}

// facingNormal is the axis normal of the face a ray with direction dir
// would hit first.
func facingNormal(dir mgl32.Vec3) mgl32.Vec3 {
	axis := 0
	for i := 1; i < 3; i++ {
		if math.Abs(float64(dir[i])) > math.Abs(float64(dir[axis])) {
			axis = i
		}
	}
	var n mgl32.Vec3
	if dir[axis] > 0 {
		n[axis] = -1
	} else {
		n[axis] = 1
	}
	return n
}
