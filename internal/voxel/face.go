package voxel

import "github.com/go-gl/mathgl/mgl32"

// Face names the side of a voxel a ray entered through.
type Face uint8

const (
	FaceNone Face = iota
	FaceBottom
	FaceTop
	FaceLeft
	FaceRight
	FaceBack
	FaceForward
)

var faceNames = [...]string{"None", "Bottom", "Top", "Left", "Right", "Back", "Forward"}

func (f Face) String() string {
	if int(f) < len(faceNames) {
		return faceNames[f]
	}
	return "Face(?)"
}

// Normal returns the outward normal of the face. FaceNone has no normal.
func (f Face) Normal() (mgl32.Vec3, bool) {
	switch f {
	case FaceBottom:
		return mgl32.Vec3{0, -1, 0}, true
	case FaceTop:
		return mgl32.Vec3{0, 1, 0}, true
	case FaceLeft:
		return mgl32.Vec3{-1, 0, 0}, true
	case FaceRight:
		return mgl32.Vec3{1, 0, 0}, true
	case FaceBack:
		return mgl32.Vec3{0, 0, -1}, true
	case FaceForward:
		return mgl32.Vec3{0, 0, 1}, true
	}
	return mgl32.Vec3{}, false
}
