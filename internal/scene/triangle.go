package scene

import (
	"rayshade/internal/mathutil"
	"rayshade/internal/tracer"
)

// Triangle is a single face. Per-vertex normals and UVs are optional; without
// them the face normal and barycentric coordinates are used.
type Triangle struct {
	V        [3]mathutil.Vec3
	N        [3]mathutil.Vec3
	UV       [3][2]float64
	Smooth   bool // N holds vertex normals
	Textured bool // UV holds vertex texture coordinates
	Material *tracer.Material
}

func NewTriangle(a, b, c mathutil.Vec3, m *tracer.Material) *Triangle {
	return &Triangle{V: [3]mathutil.Vec3{a, b, c}, Material: m}
}

// FaceNormal follows counter-clockwise winding.
func (tri *Triangle) FaceNormal() mathutil.Vec3 {
	return tri.V[1].Sub(tri.V[0]).Cross(tri.V[2].Sub(tri.V[0])).Normalize()
}

// Hit uses the Möller–Trumbore test.
func (tri *Triangle) Hit(r tracer.Ray, tMin, tMax float64) (tracer.Hit, bool) {
	e1 := tri.V[1].Sub(tri.V[0])
	e2 := tri.V[2].Sub(tri.V[0])
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -1e-12 && det < 1e-12 {
		return tracer.Hit{}, false
	}
	inv := 1 / det

	s := r.Origin.Sub(tri.V[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return tracer.Hit{}, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return tracer.Hit{}, false
	}
	t := e2.Dot(q) * inv
	if t <= tMin || t >= tMax {
		return tracer.Hit{}, false
	}

	w := 1 - u - v
	h := tracer.Hit{T: t, Material: tri.Material}
	if tri.Smooth {
		h.N = tri.N[0].Scale(w).Add(tri.N[1].Scale(u)).Add(tri.N[2].Scale(v))
	} else {
		h.N = e1.Cross(e2)
	}
	if tri.Textured {
		h.UV = [2]float64{
			w*tri.UV[0][0] + u*tri.UV[1][0] + v*tri.UV[2][0],
			w*tri.UV[0][1] + u*tri.UV[1][1] + v*tri.UV[2][1],
		}
	} else {
		h.UV = [2]float64{u, v}
	}
	return h, true
}

func (tri *Triangle) Bounds() AABB {
	return EmptyAABB().Extend(tri.V[0]).Extend(tri.V[1]).Extend(tri.V[2])
}
