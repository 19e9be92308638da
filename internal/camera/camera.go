// Package camera provides the viewpoint the chunk scheduler streams around.
package camera

import (
	"math"
	"sync"

	"voxelworld/internal/physics"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera described by position, yaw and pitch in
// degrees, and the pixel size of its viewport. It is safe for concurrent use.
type Camera struct {
	mu sync.RWMutex

	position mgl32.Vec3
	yaw      float32
	pitch    float32

	fov        float32
	near, far  float32
	width      int
	height     int
	cullMargin float32
}

func New(width, height int) *Camera {
	return &Camera{
		yaw:        -90,
		fov:        60,
		near:       0.1,
		far:        1000,
		width:      width,
		height:     height,
		cullMargin: 1,
	}
}

func (c *Camera) Position() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	c.position = p
	c.mu.Unlock()
}

// SetRotation sets yaw and pitch in degrees. Pitch is clamped to +-89.
func (c *Camera) SetRotation(yaw, pitch float32) {
	c.mu.Lock()
	c.yaw = yaw
	c.pitch = mgl32.Clamp(pitch, -89, 89)
	c.mu.Unlock()
}

func (c *Camera) Rotation() (yaw, pitch float32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.yaw, c.pitch
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := target.Sub(c.position)
	if d.Len() == 0 {
		return
	}
	d = d.Normalize()
	c.yaw = mgl32.RadToDeg(float32(math.Atan2(float64(d.Z()), float64(d.X()))))
	c.pitch = mgl32.Clamp(mgl32.RadToDeg(float32(math.Asin(float64(d.Y())))), -89, 89)
}

// SetPerspective changes the vertical field of view (degrees) and the clip
// planes.
func (c *Camera) SetPerspective(fov, near, far float32) {
	c.mu.Lock()
	c.fov, c.near, c.far = fov, near, far
	c.mu.Unlock()
}

func (c *Camera) SetViewportSize(width, height int) {
	c.mu.Lock()
	c.width, c.height = width, height
	c.mu.Unlock()
}

func (c *Camera) ViewportSize() (width, height int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width, c.height
}

// Front is the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.front()
}

func (c *Camera) front() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(c.yaw))
	p := float64(mgl32.DegToRad(c.pitch))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(p)),
		float32(math.Sin(y) * math.Cos(p)),
	}.Normalize()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view()
}

func (c *Camera) view() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection()
}

func (c *Camera) projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.height > 0 {
		aspect = float32(c.width) / float32(c.height)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.fov), aspect, c.near, c.far)
}

func (c *Camera) viewProjection() mgl32.Mat4 {
	return c.projection().Mul4(c.view())
}

// ViewportToWorld returns the ray through pixel (x, y), measured from the top
// left corner. Points outside the viewport are allowed.
func (c *Camera) ViewportToWorld(x, y float32) (physics.Ray, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.width <= 0 || c.height <= 0 {
		return physics.Ray{}, false
	}
	vp := c.viewProjection()
	if vp.Det() == 0 {
		return physics.Ray{}, false
	}
	inv := vp.Inv()

	nx := 2*x/float32(c.width) - 1
	ny := 1 - 2*y/float32(c.height)
	near := mgl32.TransformCoordinate(mgl32.Vec3{nx, ny, -1}, inv)
	far := mgl32.TransformCoordinate(mgl32.Vec3{nx, ny, 1}, inv)
	dir := far.Sub(near)
	if dir.Len() == 0 {
		return physics.Ray{}, false
	}
	return physics.Ray{Origin: near, Direction: dir.Normalize()}, true
}

// WorldToNDC projects p into normalized device coordinates. ok is false for
// points behind the camera.
func (c *Camera) WorldToNDC(p mgl32.Vec3) (mgl32.Vec3, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clip := c.viewProjection().Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return mgl32.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip.W()), true
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewFrustum(c.viewProjection(), c.cullMargin)
}

// IsVisible reports whether the box intersects the view frustum.
func (c *Camera) IsVisible(min, max mgl32.Vec3) bool {
	return c.Frustum().Intersects(min, max)
}
