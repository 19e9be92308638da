package physics

import (
	"math"

	"voxelworld/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// VisitFunc receives each traversed voxel, the normalized time along the
// segment at which it was entered and the face it was entered through.
// Returning false stops the traversal.
type VisitFunc func(pos voxel.Pos, t float32, face voxel.Face) bool

// LineTraversal visits every voxel the segment start-end passes through,
// start and end voxels included, using the Amanatides-Woo grid walk. The
// first visit is always the start voxel with t = 0 and FaceNone.
func LineTraversal(start, end mgl32.Vec3, visit VisitFunc) {
	ray := end.Sub(start)
	length := ray.Len()

	cur := voxel.Floor(start)
	last := voxel.Floor(end)
	if !visit(cur, 0, voxel.FaceNone) {
		return
	}
	if cur == last || length == 0 {
		return
	}

	inf := float32(math.Inf(1))
	var (
		pos    = [3]int{cur.X, cur.Y, cur.Z}
		step   [3]int
		maxT   [3]float32
		deltaT [3]float32
		oob    [3]int
	)
	endCell := [3]int{last.X, last.Y, last.Z}
	for i := 0; i < 3; i++ {
		dir := ray[i] / length
		if dir == 0 {
			maxT[i], deltaT[i] = inf, inf
			oob[i] = endCell[i]
			continue
		}
		rdir := 1 / dir
		deltaT[i] = float32(math.Abs(float64(voxel.Size * rdir)))
		plane := pos[i]
		if dir > 0 {
			step[i] = 1
			plane++
		} else {
			step[i] = -1
		}
		maxT[i] = (float32(plane)*voxel.Size - start[i]) * rdir
		oob[i] = endCell[i] + step[i]
	}

	faces := [3]voxel.Face{voxel.FaceRight, voxel.FaceTop, voxel.FaceForward}
	if step[0] > 0 {
		faces[0] = voxel.FaceLeft
	}
	if step[1] > 0 {
		faces[1] = voxel.FaceBottom
	}
	if step[2] > 0 {
		faces[2] = voxel.FaceBack
	}

	rlen := 1 / length
	for {
		axis := 2
		if maxT[0] < maxT[1] && maxT[0] < maxT[2] {
			axis = 0
		} else if maxT[1] < maxT[2] {
			axis = 1
		}
		if step[axis] == 0 {
			return
		}

		t := mgl32.Clamp(maxT[axis]*rlen, 0, 1)
		pos[axis] += step[axis]
		maxT[axis] += deltaT[axis]
		if pos[axis] == oob[axis] {
			return
		}
		if !visit(voxel.P(pos[0], pos[1], pos[2]), t, faces[axis]) {
			return
		}
	}
}

// CartesianTraversal walks from start (included) to end (excluded) along a
// single grid axis. Segments that are not axis aligned visit nothing.
func CartesianTraversal(start, end voxel.Pos, visit func(voxel.Pos) bool) {
	d := end.Sub(start)
	axes, dist := 0, 0
	for _, c := range [3]int{d.X, d.Y, d.Z} {
		if c != 0 {
			axes++
			dist = max(c, -c)
		}
	}
	if axes != 1 {
		return
	}
	dir := voxel.P(d.X/dist, d.Y/dist, d.Z/dist)
	for i := 0; i < dist; i++ {
		if !visit(start.Add(dir.Scale(i))) {
			return
		}
	}
}
