package scene

import (
	"math"

	"rayshade/internal/mathutil"
	"rayshade/internal/tracer"
)

type Sphere struct {
	Center   mathutil.Vec3
	Radius   float64
	Material *tracer.Material
}

func NewSphere(center mathutil.Vec3, radius float64, m *tracer.Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, Material: m}
}

func (s *Sphere) Hit(r tracer.Ray, tMin, tMax float64) (tracer.Hit, bool) {
	oc := r.Origin.Sub(s.Center)
	a := r.Direction.Dot(r.Direction)
	halfB := oc.Dot(r.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 || a == 0 {
		return tracer.Hit{}, false
	}
	sq := math.Sqrt(disc)

	// Nearer root first; the far root is the exit when starting inside.
	t := (-halfB - sq) / a
	if t <= tMin || t >= tMax {
		t = (-halfB + sq) / a
		if t <= tMin || t >= tMax {
			return tracer.Hit{}, false
		}
	}

	n := r.At(t).Sub(s.Center).Scale(1 / s.Radius)
	return tracer.Hit{T: t, N: n, Material: s.Material, UV: sphereUV(n)}, true
}

func (s *Sphere) Bounds() AABB {
	r := mathutil.Splat(math.Abs(s.Radius))
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// sphereUV maps a unit normal to longitude/latitude; v=0 at the south pole.
func sphereUV(n mathutil.Vec3) [2]float64 {
	theta := math.Acos(math.Max(-1, math.Min(1, -n[1])))
	phi := math.Atan2(-n[2], n[0]) + math.Pi
	return [2]float64{phi / (2 * math.Pi), theta / math.Pi}
}
