package tracer

import (
	"math"

	"rayshade/internal/mathutil"
)

// DefaultFalloff is the quadratic coefficient used by point lights unless
// one is configured.
const DefaultFalloff = 0.1

// Light supplies everything the shading evaluator needs from a light source.
type Light interface {
	Color() mathutil.Vec3
	// Direction returns the unit vector from p toward the light.
	Direction(p mathutil.Vec3) mathutil.Vec3
	// DistanceAttenuation returns the falloff factor in [0,1] at p.
	DistanceAttenuation(p mathutil.Vec3) float64
	// ShadowAttenuation casts from shadow.Origin toward the light and
	// returns (1,1,1) when unobstructed and (0,0,0) when blocked.
	ShadowAttenuation(sc Intersector, shadow Ray, p mathutil.Vec3) mathutil.Vec3
}

var (
	lit      = mathutil.Vec3{1, 1, 1}
	occluded = mathutil.Vec3{}
)

// DirectionalLight is infinitely far away: constant direction, no falloff.
type DirectionalLight struct {
	Orientation mathutil.Vec3 // direction the light travels
	Col         mathutil.Vec3
}

func NewDirectionalLight(orientation, color mathutil.Vec3) *DirectionalLight {
	return &DirectionalLight{Orientation: orientation.Normalize(), Col: color}
}

func (l *DirectionalLight) Color() mathutil.Vec3 { return l.Col }

func (l *DirectionalLight) Direction(mathutil.Vec3) mathutil.Vec3 {
	return l.Orientation.Neg()
}

func (l *DirectionalLight) DistanceAttenuation(mathutil.Vec3) float64 { return 1 }

// ShadowAttenuation reports any hit toward the light as full shadow.
func (l *DirectionalLight) ShadowAttenuation(sc Intersector, shadow Ray, _ mathutil.Vec3) mathutil.Vec3 {
	r := NewRay(shadow.Origin, l.Orientation.Neg(), lit, Shadow)
	if _, ok := sc.Intersect(r); ok {
		return occluded
	}
	return lit
}

// PointLight radiates from a position and fades as 1/(1 + Falloff·d²),
// clamped so it never brightens.
type PointLight struct {
	Position mathutil.Vec3
	Col      mathutil.Vec3
	Falloff  float64
}

func NewPointLight(position, color mathutil.Vec3) *PointLight {
	return &PointLight{Position: position, Col: color, Falloff: DefaultFalloff}
}

func (l *PointLight) Color() mathutil.Vec3 { return l.Col }

func (l *PointLight) Direction(p mathutil.Vec3) mathutil.Vec3 {
	return l.Position.Sub(p).Normalize()
}

func (l *PointLight) DistanceAttenuation(p mathutil.Vec3) float64 {
	d := l.Position.Sub(p).Len()
	return math.Min(1, 1/(1+l.Falloff*d*d))
}

// ShadowAttenuation only counts occluders closer than the light itself.
func (l *PointLight) ShadowAttenuation(sc Intersector, shadow Ray, p mathutil.Vec3) mathutil.Vec3 {
	maxDist := l.Position.Sub(shadow.Origin).Len()
	r := NewRay(shadow.Origin, l.Direction(p), lit, Shadow)
	if h, ok := sc.Intersect(r); ok && h.T < maxDist {
		return occluded
	}
	return lit
}
