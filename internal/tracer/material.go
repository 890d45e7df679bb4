package tracer

import (
	"rayshade/internal/mathutil"
	"rayshade/internal/texture"
)

// Param is a material parameter bound either to a constant color or to a
// texture map looked up by the hit's UV. The binding is fixed when the Param
// is built.
type Param struct {
	value mathutil.Vec3
	tex   *texture.Map
}

// Const binds a parameter to a constant color.
func Const(c mathutil.Vec3) Param {
	return Param{value: c}
}

// Scalar binds a parameter to a constant grey, used for shininess and index
// of refraction.
func Scalar(s float64) Param {
	return Param{value: mathutil.Splat(s)}
}

// Mapped binds a parameter to a texture map.
func Mapped(m *texture.Map) Param {
	return Param{tex: m}
}

// IsMapped reports whether the parameter reads from a texture.
func (p Param) IsMapped() bool {
	return p.tex != nil
}

// Value resolves the parameter at a hit.
func (p Param) Value(h Hit) mathutil.Vec3 {
	if p.tex != nil {
		return p.tex.Sample(h.UV[0], h.UV[1])
	}
	return p.value
}

// Intensity resolves the parameter to its luminance.
func (p Param) Intensity(h Hit) float64 {
	v := p.Value(h)
	return 0.299*v[0] + 0.587*v[1] + 0.114*v[2]
}

// Material holds the Phong coefficients of a surface plus its reflective and
// transmissive weights.
type Material struct {
	Name      string
	Ka        Param // ambient
	Kd        Param // diffuse
	Ks        Param // specular
	Kr        Param // reflective
	Kt        Param // transmissive
	Shininess Param
	Index     Param // index of refraction
}

// NewMaterial returns a black, opaque, non-reflective material with index of
// refraction 1.
func NewMaterial(name string) *Material {
	return &Material{
		Name:  name,
		Index: Scalar(1),
	}
}
