// Package tracer implements Whitted-style recursive ray tracing: Phong
// shading with shadow rays, mirror reflection and Snell refraction.
package tracer

import (
	"fmt"

	"rayshade/internal/mathutil"
)

// Epsilon is the offset applied to spawned ray origins so they do not
// re-intersect the surface they leave.
const Epsilon = 1e-6

// RayKind tags a ray for diagnostics. It never changes the math.
type RayKind int

const (
	Visibility RayKind = iota
	Shadow
	Reflection
	Refraction
)

func (k RayKind) String() string {
	switch k {
	case Visibility:
		return "visibility"
	case Shadow:
		return "shadow"
	case Reflection:
		return "reflection"
	case Refraction:
		return "refraction"
	}
	return fmt.Sprintf("RayKind(%d)", int(k))
}

// Ray is an immutable half-line. Direction need not be unit length.
type Ray struct {
	Origin    mathutil.Vec3
	Direction mathutil.Vec3
	Weight    mathutil.Vec3 // carried attenuation, (1,1,1) for primary rays
	Kind      RayKind
}

func NewRay(origin, dir, weight mathutil.Vec3, kind RayKind) Ray {
	return Ray{Origin: origin, Direction: dir, Weight: weight, Kind: kind}
}

// At returns Origin + t*Direction.
func (r Ray) At(t float64) mathutil.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Hit is the nearest intersection of a ray with the scene. N is not
// guaranteed to be unit length. Hits are produced per query and never kept.
type Hit struct {
	T        float64
	N        mathutil.Vec3
	Material *Material
	UV       [2]float64
}

// Intersector answers nearest-hit queries. Only hits with t > 0 count.
type Intersector interface {
	Intersect(r Ray) (Hit, bool)
}

// Camera produces primary rays for normalized screen coordinates; y is
// measured downward from the top edge of the image.
type Camera interface {
	RayThrough(x, y float64) Ray
	AspectRatio() float64
}

// Scene is everything the tracer reads while rendering. Implementations must
// be safe for concurrent reads.
type Scene interface {
	Intersector
	Ambient() mathutil.Vec3
	Lights() []Light
	Camera() Camera
}

// IntersectCache is implemented by scenes that record intersection queries
// for debugging. The cache is cleared before each primary ray when tracing in
// debug mode, so IntersectCount is the number of queries that ray needed.
type IntersectCache interface {
	ClearIntersectCache()
	IntersectCount() int
}
