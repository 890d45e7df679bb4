package scene

import (
	"rayshade/internal/mathutil"
	"rayshade/internal/tracer"
)

// Mesh is a named triangle soup with its own BVH.
type Mesh struct {
	Name      string
	Triangles []*Triangle
	bvh       *BVH
}

// NewMesh builds the acceleration structure over tris.
func NewMesh(name string, tris []*Triangle) *Mesh {
	shapes := make([]Shape, len(tris))
	for i, t := range tris {
		shapes[i] = t
	}
	return &Mesh{Name: name, Triangles: tris, bvh: NewBVH(shapes)}
}

func (m *Mesh) Hit(r tracer.Ray, tMin, tMax float64) (tracer.Hit, bool) {
	return m.bvh.Hit(r, tMin, tMax)
}

func (m *Mesh) Bounds() AABB {
	return m.bvh.Bounds()
}

// Box returns the 12 triangles of an axis-aligned box between lo and hi,
// with outward normals.
func Box(lo, hi mathutil.Vec3, mat *tracer.Material) []*Triangle {
	p := func(x, y, z int) mathutil.Vec3 {
		v := lo
		if x == 1 {
			v[0] = hi[0]
		}
		if y == 1 {
			v[1] = hi[1]
		}
		if z == 1 {
			v[2] = hi[2]
		}
		return v
	}
	quads := [6][4]mathutil.Vec3{
		{p(1, 0, 0), p(1, 1, 0), p(1, 1, 1), p(1, 0, 1)}, // +x
		{p(0, 0, 0), p(0, 0, 1), p(0, 1, 1), p(0, 1, 0)}, // -x
		{p(0, 1, 0), p(0, 1, 1), p(1, 1, 1), p(1, 1, 0)}, // +y
		{p(0, 0, 0), p(1, 0, 0), p(1, 0, 1), p(0, 0, 1)}, // -y
		{p(0, 0, 1), p(1, 0, 1), p(1, 1, 1), p(0, 1, 1)}, // +z
		{p(0, 0, 0), p(0, 1, 0), p(1, 1, 0), p(1, 0, 0)}, // -z
	}
	tris := make([]*Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris, Quad(q[0], q[1], q[2], q[3], mat)...)
	}
	return tris
}

// Quad splits a planar quad a-b-c-d (counter-clockwise) into two textured
// triangles spanning UV [0,1]².
func Quad(a, b, c, d mathutil.Vec3, mat *tracer.Material) []*Triangle {
	t1 := NewTriangle(a, b, c, mat)
	t1.UV = [3][2]float64{{0, 0}, {1, 0}, {1, 1}}
	t1.Textured = true
	t2 := NewTriangle(a, c, d, mat)
	t2.UV = [3][2]float64{{0, 0}, {1, 1}, {0, 1}}
	t2.Textured = true
	return []*Triangle{t1, t2}
}

// Transform moves tris in place by m and returns them. Shading normals go
// through the normal matrix so non-uniform scales keep them perpendicular.
func Transform(tris []*Triangle, m mathutil.Mat4) []*Triangle {
	nm := m.NormalMatrix()
	for _, t := range tris {
		for k := 0; k < 3; k++ {
			t.V[k] = m.MulPoint(t.V[k])
			if t.Smooth {
				t.N[k] = nm.MulVec3(t.N[k]).Normalize()
			}
		}
	}
	return tris
}

// Pivot is the affine map rotating by r about the point c.
func Pivot(r mathutil.Mat3, c mathutil.Vec3) mathutil.Mat4 {
	return mathutil.FromMat3Translation(r, c.Sub(r.MulVec3(c)))
}
