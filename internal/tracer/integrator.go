package tracer

import (
	"fmt"
	"math"

	"rayshade/internal/log"
	"rayshade/internal/mathutil"
	"rayshade/internal/texture"
)

var logger = log.New("tracer")

// Background selects what an escaping ray returns.
type Background int

const (
	// Gradient is the vertical white to sky-blue blend.
	Gradient Background = iota
	// CubeMap samples the configured environment map, falling back to
	// Gradient when no map is set.
	CubeMap
)

func (b Background) String() string {
	switch b {
	case Gradient:
		return "gradient"
	case CubeMap:
		return "cubemap"
	}
	return fmt.Sprintf("Background(%d)", int(b))
}

// ParseBackground maps a config name to a Background.
func ParseBackground(s string) (Background, error) {
	switch s {
	case "", "gradient":
		return Gradient, nil
	case "cubemap":
		return CubeMap, nil
	}
	return Gradient, fmt.Errorf("tracer: unknown background %q", s)
}

var (
	skyBottom = mathutil.Vec3{1, 1, 1}
	skyTop    = mathutil.Vec3{0.4, 0.7, 1.0}
)

// Options are the per-render knobs of the integrator. They are read-only
// once a render starts.
type Options struct {
	MaxDepth   int
	Threshold  float64 // minimum cumulative weight for secondary rays; 0 disables
	Background Background
	CubeMap    *texture.CubeMap
	Debug      bool
}

// Tracer evaluates radiance along rays through a scene. A Tracer is safe for
// concurrent use as long as the scene is.
type Tracer struct {
	scene Scene
	opts  Options
}

func New(sc Scene, opts Options) *Tracer {
	return &Tracer{scene: sc, opts: opts}
}

func (t *Tracer) Scene() Scene     { return t.scene }
func (t *Tracer) Options() Options { return t.opts }

// Trace returns the clamped color seen through normalized screen position
// (x, y).
func (t *Tracer) Trace(x, y float64) mathutil.Vec3 {
	cache, _ := t.scene.(IntersectCache)
	if t.opts.Debug && cache != nil {
		cache.ClearIntersectCache()
	}
	r := t.scene.Camera().RayThrough(x, y)
	c := t.TraceRay(r, lit, t.opts.MaxDepth)
	if t.opts.Debug {
		if cache != nil {
			logger.Debugf("trace (%.4f, %.4f) -> %v after %d intersections", x, y, c, cache.IntersectCount())
		} else {
			logger.Debugf("trace (%.4f, %.4f) -> %v", x, y, c)
		}
	}
	return c.Clamp(0, 1)
}

// TraceRay returns the unclamped radiance along r. thresh is the cumulative
// weight of the path so far and depth the number of bounces still allowed.
func (t *Tracer) TraceRay(r Ray, thresh mathutil.Vec3, depth int) mathutil.Vec3 {
	h, ok := t.scene.Intersect(r)
	if !ok {
		return t.Environment(r.Direction)
	}
	color := Shade(t.scene, r, h)
	if depth <= 0 || h.Material == nil {
		return color
	}

	m := h.Material
	p := r.At(h.T)
	n := h.N.Normalize()
	d := r.Direction.Normalize()

	if kr := m.Kr.Value(h); !kr.IsZero() && t.worthTracing(thresh, kr) {
		dir := d.Reflect(n)
		rr := NewRay(p.Add(dir.Scale(Epsilon)), dir, lit, Reflection)
		color = color.Add(kr.Mul(t.TraceRay(rr, thresh.Mul(kr), depth-1)))
	}

	if kt := m.Kt.Value(h); !kt.IsZero() && t.worthTracing(thresh, kt) {
		if dir, ok := refract(d, n, m.Index.Intensity(h)); ok {
			tr := NewRay(p.Add(dir.Scale(Epsilon)), dir, lit, Refraction)
			color = color.Add(kt.Mul(t.TraceRay(tr, thresh.Mul(kt), depth-1)))
		}
	}
	return color
}

func (t *Tracer) worthTracing(thresh, k mathutil.Vec3) bool {
	return t.opts.Threshold <= 0 || thresh.Mul(k).MaxComp() >= t.opts.Threshold
}

// refract bends unit direction d through a surface with unit normal n and
// index ior. Rays leaving the surface (d·n > 0) swap the indices. It
// reports false on total internal reflection.
func refract(d, n mathutil.Vec3, ior float64) (mathutil.Vec3, bool) {
	cosi := d.Dot(n)
	etai, etat := 1.0, ior
	if cosi > 0 {
		etai, etat = etat, etai
		n = n.Neg()
	} else {
		cosi = -cosi
	}
	eta := etai / etat
	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return mathutil.Vec3{}, false
	}
	return d.Scale(eta).Add(n.Scale(eta*cosi - math.Sqrt(k))), true
}

// Environment is the color of a ray that leaves the scene.
func (t *Tracer) Environment(dir mathutil.Vec3) mathutil.Vec3 {
	if t.opts.Background == CubeMap && t.opts.CubeMap != nil {
		return t.opts.CubeMap.Sample(dir)
	}
	return SkyGradient(dir)
}

// SkyGradient blends white at straight down to sky blue at straight up.
func SkyGradient(dir mathutil.Vec3) mathutil.Vec3 {
	s := 0.5 * (dir.Normalize()[1] + 1)
	return skyBottom.Lerp(skyTop, s)
}
