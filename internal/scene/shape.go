// Package scene provides a reference implementation of the tracer's Scene:
// analytic shapes, triangle meshes behind a BVH, a pinhole camera, glTF
// import and a handful of built-in scenes.
package scene

import (
	"math"

	"rayshade/internal/mathutil"
	"rayshade/internal/tracer"
)

// Shape is anything a ray can hit. Hit reports the nearest intersection with
// tMin < t < tMax. Normals point out of the surface and are not flipped
// toward the ray.
type Shape interface {
	Hit(r tracer.Ray, tMin, tMax float64) (tracer.Hit, bool)
	Bounds() AABB
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mathutil.Vec3
}

// EmptyAABB contains nothing; its union with any box is that box.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: mathutil.Splat(inf), Max: mathutil.Splat(-inf)}
}

// Infinite reports whether the box is unbounded along any axis.
func (b AABB) Infinite() bool {
	for k := 0; k < 3; k++ {
		if math.IsInf(b.Min[k], 0) || math.IsInf(b.Max[k], 0) {
			return true
		}
	}
	return false
}

func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

func (b AABB) Extend(p mathutil.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

func (b AABB) Center() mathutil.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// LongestAxis returns 0, 1 or 2.
func (b AABB) LongestAxis() int {
	d := b.Max.Sub(b.Min)
	switch {
	case d[0] >= d[1] && d[0] >= d[2]:
		return 0
	case d[1] >= d[2]:
		return 1
	}
	return 2
}

// Hit is the slab test.
func (b AABB) Hit(r tracer.Ray, tMin, tMax float64) bool {
	for k := 0; k < 3; k++ {
		inv := 1 / r.Direction[k]
		t0 := (b.Min[k] - r.Origin[k]) * inv
		t1 := (b.Max[k] - r.Origin[k]) * inv
		if inv < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return false
		}
	}
	return true
}
