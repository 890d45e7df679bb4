package scene

import (
	"math"

	"rayshade/internal/mathutil"
	"rayshade/internal/tracer"
)

// Plane is an infinite plane through Point. Texture coordinates repeat every
// TileSize units along two axes perpendicular to the normal.
type Plane struct {
	Point    mathutil.Vec3
	Normal   mathutil.Vec3
	Material *tracer.Material
	TileSize float64

	tu, tv mathutil.Vec3
}

func NewPlane(point, normal mathutil.Vec3, m *tracer.Material) *Plane {
	n := normal.Normalize()
	// Any helper not parallel to n spans the tangent plane.
	helper := mathutil.Vec3{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		helper = mathutil.Vec3{0, 0, 1}
	}
	tu := helper.Cross(n).Normalize()
	tv := n.Cross(tu)
	return &Plane{Point: point, Normal: n, Material: m, TileSize: 1, tu: tu, tv: tv}
}

func (p *Plane) Hit(r tracer.Ray, tMin, tMax float64) (tracer.Hit, bool) {
	denom := p.Normal.Dot(r.Direction)
	if math.Abs(denom) < 1e-12 {
		return tracer.Hit{}, false
	}
	t := p.Point.Sub(r.Origin).Dot(p.Normal) / denom
	if t <= tMin || t >= tMax {
		return tracer.Hit{}, false
	}

	d := r.At(t).Sub(p.Point)
	size := p.TileSize
	if size <= 0 {
		size = 1
	}
	uv := [2]float64{frac(d.Dot(p.tu) / size), frac(d.Dot(p.tv) / size)}
	return tracer.Hit{T: t, N: p.Normal, Material: p.Material, UV: uv}, true
}

// Bounds is infinite; planes are never put in a BVH.
func (p *Plane) Bounds() AABB {
	inf := math.Inf(1)
	return AABB{Min: mathutil.Splat(-inf), Max: mathutil.Splat(inf)}
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}
