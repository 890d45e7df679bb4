package scene

import (
	"math"

	"rayshade/internal/mathutil"
	"rayshade/internal/tracer"
)

// Camera is a pinhole camera. Screen coordinates run from (0,0) at the top
// left to (1,1) at the bottom right.
type Camera struct {
	Eye    mathutil.Vec3
	Aspect float64 // width / height

	target             mathutil.Vec3
	forward, right, up mathutil.Vec3
	halfH              float64
}

// NewCamera aims a camera from eye at target. vfov is the vertical field of
// view in degrees.
func NewCamera(eye, target, up mathutil.Vec3, vfov, aspect float64) *Camera {
	c := &Camera{Eye: eye, Aspect: aspect}
	c.LookAt(target, up)
	c.halfH = math.Tan(mathutil.Deg2Rad(vfov) / 2)
	return c
}

// LookAt re-aims the camera, keeping its position and field of view.
func (c *Camera) LookAt(target, up mathutil.Vec3) {
	c.target = target
	c.forward = target.Sub(c.Eye).Normalize()
	c.right = c.forward.Cross(up).Normalize()
	if c.right.IsZero() {
		// up is parallel to the view direction; pick another.
		c.right = c.forward.Cross(mathutil.Vec3{0, 0, 1}).Normalize()
	}
	c.up = c.right.Cross(c.forward)
}

// Orbit swings the eye by deg degrees about the vertical axis through the
// point the camera looks at.
func (c *Camera) Orbit(deg float64) {
	r := mathutil.RotAxis(mathutil.Vec3{0, 1, 0}, mathutil.Deg2Rad(deg))
	c.Eye = c.target.Add(r.MulVec3(c.Eye.Sub(c.target)))
	c.LookAt(c.target, mathutil.Vec3{0, 1, 0})
}

// SetAspect matches the camera to a frame size.
func (c *Camera) SetAspect(w, h int) {
	if h > 0 {
		c.Aspect = float64(w) / float64(h)
	}
}

func (c *Camera) AspectRatio() float64 { return c.Aspect }

// Forward is the unit view direction.
func (c *Camera) Forward() mathutil.Vec3 { return c.forward }

// RayThrough returns the primary ray through screen point (x, y).
func (c *Camera) RayThrough(x, y float64) tracer.Ray {
	halfW := c.halfH * c.Aspect
	dir := c.forward.
		Add(c.right.Scale((2*x - 1) * halfW)).
		Add(c.up.Scale((1 - 2*y) * c.halfH)).
		Normalize()
	return tracer.NewRay(c.Eye, dir, mathutil.Vec3{1, 1, 1}, tracer.Visibility)
}
