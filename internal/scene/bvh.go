package scene

import (
	"rayshade/internal/tracer"
)

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 4

// BVHNode is an interior node (Left and Right set) or a leaf (Shapes set).
type BVHNode struct {
	Box    AABB
	Left   *BVHNode
	Right  *BVHNode
	Shapes []Shape
}

// BVH is a bounding volume hierarchy over bounded shapes.
type BVH struct {
	Root *BVHNode
	n    int
}

// NewBVH builds a hierarchy with median splits along the longest axis of
// each node's centroid bounds. The input slice is not modified.
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}
	cp := make([]Shape, len(shapes))
	copy(cp, shapes)
	return &BVH{Root: buildBVH(cp), n: len(shapes)}
}

func buildBVH(shapes []Shape) *BVHNode {
	box := EmptyAABB()
	centroids := EmptyAABB()
	for _, s := range shapes {
		b := s.Bounds()
		box = box.Union(b)
		centroids = centroids.Extend(b.Center())
	}
	if len(shapes) <= leafThreshold {
		return &BVHNode{Box: box, Shapes: shapes}
	}

	axis := centroids.LongestAxis()
	if centroids.Max[axis] <= centroids.Min[axis] {
		return &BVHNode{Box: box, Shapes: shapes}
	}
	split := 0.5 * (centroids.Min[axis] + centroids.Max[axis])

	// Partition in place around the split.
	i, j := 0, len(shapes)-1
	for i <= j {
		if shapes[i].Bounds().Center()[axis] < split {
			i++
		} else {
			shapes[i], shapes[j] = shapes[j], shapes[i]
			j--
		}
	}
	if i == 0 || i == len(shapes) {
		return &BVHNode{Box: box, Shapes: shapes}
	}
	return &BVHNode{
		Box:   box,
		Left:  buildBVH(shapes[:i]),
		Right: buildBVH(shapes[i:]),
	}
}

// Len is the number of shapes in the hierarchy.
func (b *BVH) Len() int { return b.n }

func (b *BVH) Bounds() AABB {
	if b.Root == nil {
		return EmptyAABB()
	}
	return b.Root.Box
}

// Hit returns the nearest hit among all shapes.
func (b *BVH) Hit(r tracer.Ray, tMin, tMax float64) (tracer.Hit, bool) {
	if b.Root == nil {
		return tracer.Hit{}, false
	}
	return hitNode(b.Root, r, tMin, tMax)
}

func hitNode(node *BVHNode, r tracer.Ray, tMin, tMax float64) (tracer.Hit, bool) {
	if !node.Box.Hit(r, tMin, tMax) {
		return tracer.Hit{}, false
	}
	if node.Left == nil {
		var best tracer.Hit
		found := false
		for _, s := range node.Shapes {
			if h, ok := s.Hit(r, tMin, tMax); ok {
				best, found, tMax = h, true, h.T
			}
		}
		return best, found
	}

	best, found := hitNode(node.Left, r, tMin, tMax)
	if found {
		tMax = best.T
	}
	if h, ok := hitNode(node.Right, r, tMin, tMax); ok {
		return h, true
	}
	return best, found
}
