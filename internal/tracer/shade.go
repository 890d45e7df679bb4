package tracer

import (
	"math"

	"rayshade/internal/mathutil"
)

// Shade evaluates Phong illumination at a hit: the ambient term plus, for
// every light, attenuated and shadowed diffuse and specular terms.
func Shade(sc Scene, r Ray, h Hit) mathutil.Vec3 {
	m := h.Material
	if m == nil {
		return mathutil.Vec3{}
	}
	color := m.Ka.Value(h).Mul(sc.Ambient())

	n := h.N.Normalize()
	v := r.Direction.Neg().Normalize()
	p := r.At(h.T)
	kd := m.Kd.Value(h)
	ks := m.Ks.Value(h)
	shininess := m.Shininess.Intensity(h)

	for _, light := range sc.Lights() {
		l := light.Direction(p).Normalize()
		lc := light.Color()

		nDotL := math.Max(0, n.Dot(l))
		rDotV := math.Max(0, l.Neg().Reflect(n).Dot(v))

		diffuse := kd.Mul(lc).Scale(nDotL)
		specular := ks.Mul(lc).Scale(math.Pow(rDotV, shininess))

		shadowRay := NewRay(p.Add(n.Scale(Epsilon)), l, lit, Shadow)
		shadow := light.ShadowAttenuation(sc, shadowRay, p)
		atten := light.DistanceAttenuation(p)

		color = color.Add(shadow.Mul(diffuse.Add(specular)).Scale(atten))
	}
	return color
}
