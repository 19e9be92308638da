package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type plane struct {
	a, b, c, d float32
}

// Frustum holds the six clip planes of a view-projection matrix in the order
// left, right, bottom, top, near, far.
type Frustum struct {
	planes [6]plane
	margin float32
}

// NewFrustum extracts the planes of clip. Boxes are inflated by margin
// before testing.
func NewFrustum(clip mgl32.Mat4, margin float32) Frustum {
	// mgl32 matrices are column major.
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	return Frustum{
		planes: [6]plane{
			normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03}),
			normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03}),
			normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13}),
			normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13}),
			normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23}),
			normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23}),
		},
		margin: margin,
	}
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// Intersects reports whether the box [min, max] is at least partly inside.
func (f Frustum) Intersects(min, max mgl32.Vec3) bool {
	m := mgl32.Vec3{f.margin, f.margin, f.margin}
	min, max = min.Sub(m), max.Add(m)
	for _, p := range f.planes {
		// Test the corner furthest along the plane normal.
		px := max.X()
		if p.a < 0 {
			px = min.X()
		}
		py := max.Y()
		if p.b < 0 {
			py = min.Y()
		}
		pz := max.Z()
		if p.c < 0 {
			pz = min.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p lies inside every plane.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	return f.Intersects(p, p)
}
