package scene

import (
	"sync"

	"rayshade/internal/mathutil"
	"rayshade/internal/tracer"
)

// minT rejects self-hits at the ray origin.
const minT = 1e-9

// Record is one logged intersection query.
type Record struct {
	Ray tracer.Ray
	Hit tracer.Hit
	OK  bool
}

// Scene implements tracer.Scene over a list of shapes. Call Build after the
// last Add to put bounded shapes behind a BVH.
type Scene struct {
	Name string

	// RecordIntersections logs every query until the cache is cleared.
	// Only meant for single-pixel debugging.
	RecordIntersections bool

	bounded   []Shape
	unbounded []Shape
	bvh       *BVH
	ambient   mathutil.Vec3
	lights    []tracer.Light
	camera    *Camera

	mu      sync.Mutex
	records []Record
}

func New(name string, cam *Camera) *Scene {
	return &Scene{Name: name, camera: cam}
}

// Add appends shapes. It must not be called while rendering.
func (s *Scene) Add(shapes ...Shape) {
	for _, sh := range shapes {
		if sh.Bounds().Infinite() {
			s.unbounded = append(s.unbounded, sh)
		} else {
			s.bounded = append(s.bounded, sh)
		}
	}
	s.bvh = nil
}

// Build constructs the BVH over the bounded shapes.
func (s *Scene) Build() {
	s.bvh = NewBVH(s.bounded)
}

func (s *Scene) AddLight(l tracer.Light)    { s.lights = append(s.lights, l) }
func (s *Scene) SetAmbient(c mathutil.Vec3) { s.ambient = c }
func (s *Scene) SetCamera(c *Camera)        { s.camera = c }
func (s *Scene) Ambient() mathutil.Vec3     { return s.ambient }
func (s *Scene) Lights() []tracer.Light     { return s.lights }
func (s *Scene) Camera() tracer.Camera      { return s.camera }
func (s *Scene) PinholeCamera() *Camera     { return s.camera }
func (s *Scene) NumShapes() int             { return len(s.bounded) + len(s.unbounded) }

// Bounds covers the bounded shapes only.
func (s *Scene) Bounds() AABB {
	b := EmptyAABB()
	for _, sh := range s.bounded {
		b = b.Union(sh.Bounds())
	}
	return b
}

// Intersect returns the nearest hit with t > 0.
func (s *Scene) Intersect(r tracer.Ray) (tracer.Hit, bool) {
	best, found := s.nearest(r)
	if s.RecordIntersections {
		s.mu.Lock()
		s.records = append(s.records, Record{Ray: r, Hit: best, OK: found})
		s.mu.Unlock()
	}
	return best, found
}

func (s *Scene) nearest(r tracer.Ray) (tracer.Hit, bool) {
	var best tracer.Hit
	found := false
	tMax := 1e300
	if s.bvh != nil {
		best, found = s.bvh.Hit(r, minT, tMax)
		if found {
			tMax = best.T
		}
	} else {
		for _, sh := range s.bounded {
			if h, ok := sh.Hit(r, minT, tMax); ok {
				best, found, tMax = h, true, h.T
			}
		}
	}
	for _, sh := range s.unbounded {
		if h, ok := sh.Hit(r, minT, tMax); ok {
			best, found, tMax = h, true, h.T
		}
	}
	return best, found
}

// ClearIntersectCache drops all recorded queries.
func (s *Scene) ClearIntersectCache() {
	s.mu.Lock()
	s.records = s.records[:0]
	s.mu.Unlock()
}

// IntersectCount is the number of queries recorded since the last clear.
func (s *Scene) IntersectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a copy of the recorded queries.
func (s *Scene) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
