package texture

import (
	"fmt"
	"math"

	"rayshade/internal/mathutil"
)

// Face identifies one side of a cube map.
type Face int

const (
	PosX Face = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

func (f Face) String() string {
	switch f {
	case PosX:
		return "+X"
	case NegX:
		return "-X"
	case PosY:
		return "+Y"
	case NegY:
		return "-Y"
	case PosZ:
		return "+Z"
	case NegZ:
		return "-Z"
	}
	return fmt.Sprintf("Face(%d)", int(f))
}

// CubeMap is an environment made of six independently optional face maps.
// A missing face contributes black.
type CubeMap struct {
	faces [6]*Map
}

// NewCubeMap returns a cube map with no faces set.
func NewCubeMap() *CubeMap {
	return &CubeMap{}
}

// SetFace installs (or with nil, removes) the map for face f.
func (c *CubeMap) SetFace(f Face, m *Map) {
	c.faces[f] = m
}

// FaceMap returns the map for face f, which may be nil.
func (c *CubeMap) FaceMap(f Face) *Map {
	return c.faces[f]
}

// Project maps a direction to a face and face-local (u, v) in [0,1]. The
// dominant axis picks the face, ties going to X and then Y. ok is false for a
// zero-length direction.
func Project(dir mathutil.Vec3) (face Face, u, v float64, ok bool) {
	d := dir.Normalize()
	if d.IsZero() {
		return 0, 0, 0, false
	}
	x, y, z := d[0], d[1], d[2]
	ax, ay, az := math.Abs(x), math.Abs(y), math.Abs(z)

	switch {
	case ax >= ay && ax >= az:
		if x > 0 {
			face, u, v = PosX, -z/ax, -y/ax
		} else {
			face, u, v = NegX, z/ax, -y/ax
		}
	case ay >= ax && ay >= az:
		if y > 0 {
			face, u, v = PosY, x/ay, z/ay
		} else {
			face, u, v = NegY, x/ay, -z/ay
		}
	default:
		if z > 0 {
			face, u, v = PosZ, x/az, -y/az
		} else {
			face, u, v = NegZ, -x/az, -y/az
		}
	}

	// [-1, 1] → [0, 1]
	u = mathutil.Clamp01(0.5 * (u + 1))
	v = mathutil.Clamp01(0.5 * (v + 1))
	return face, u, v, true
}

// Sample returns the environment color seen along dir.
func (c *CubeMap) Sample(dir mathutil.Vec3) mathutil.Vec3 {
	face, u, v, ok := Project(dir)
	if !ok {
		return mathutil.Vec3{}
	}
	m := c.faces[face]
	if m == nil {
		return mathutil.Vec3{}
	}
	return m.Sample(u, v)
}

// LoadCubeMap builds a cube map from the face images found in dir. Faces
// without a file stay empty; a face file that fails to decode is an error.
func LoadCubeMap(dir string, loader Loader) (*CubeMap, error) {
	idx, err := BuildFaceIndex(dir)
	if err != nil {
		return nil, fmt.Errorf("texture: read cube map dir %s: %w", dir, err)
	}
	if idx.Len() == 0 {
		return nil, fmt.Errorf("texture: no cube map faces in %s", dir)
	}

	cm := NewCubeMap()
	for f := PosX; f <= NegZ; f++ {
		path, ok := idx.Path(f)
		if !ok {
			continue
		}
		m, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		cm.SetFace(f, m)
	}
	return cm, nil
}
