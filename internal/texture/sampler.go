package texture

import (
	"math"

	"rayshade/internal/mathutil"
)

// Map is a decoded RGB texture: Width×Height pixels, 3 bytes each, row-major
// with the origin at the top-left corner. A map with a zero dimension is a
// placeholder and samples as opaque white.
type Map struct {
	Width  int
	Height int
	Data   []byte
}

// NewMap wraps an RGB byte grid. Rows that data cannot fill are dropped, so
// a grid shorter than one row becomes a placeholder.
func NewMap(w, h int, data []byte) *Map {
	if w <= 0 || h <= 0 {
		return &Map{Data: data}
	}
	if rows := len(data) / (3 * w); rows < h {
		h = rows
	}
	if h == 0 {
		w = 0
	}
	return &Map{Width: w, Height: h, Data: data}
}

// Fallback is returned by Sample for placeholder maps.
var Fallback = mathutil.Vec3{1, 1, 1}

// Sample performs bilinear filtering with clamped UVs. v=0 is the bottom row
// of the image, so v is flipped before indexing. Neighbours outside the image
// are clamped to the border instead of wrapping.
func (m *Map) Sample(u, v float64) mathutil.Vec3 {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return Fallback
	}

	u = clampUV(u)
	v = clampUV(v)

	x := u * float64(m.Width-1)
	y := (1 - v) * float64(m.Height-1)

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	sx := x - float64(x0)
	sy := y - float64(y0)

	c00 := m.Pixel(x0, y0)
	c10 := m.Pixel(x0+1, y0)
	c01 := m.Pixel(x0, y0+1)
	c11 := m.Pixel(x0+1, y0+1)

	// Along x first, then y.
	c0 := c00.Scale(1 - sx).Add(c10.Scale(sx))
	c1 := c01.Scale(1 - sx).Add(c11.Scale(sx))
	return c0.Scale(1 - sy).Add(c1.Scale(sy))
}

// Pixel returns the stored color at (x, y) scaled to [0,1], with both
// coordinates clamped to the image.
func (m *Map) Pixel(x, y int) mathutil.Vec3 {
	x = max(0, min(x, m.Width-1))
	y = max(0, min(y, m.Height-1))

	i := (y*m.Width + x) * 3
	if i < 0 || i+2 >= len(m.Data) {
		return Fallback
	}
	return mathutil.Vec3{
		float64(m.Data[i]) / 255.0,
		float64(m.Data[i+1]) / 255.0,
		float64(m.Data[i+2]) / 255.0,
	}
}

// clampUV maps NaN to 0 so a degenerate coordinate can never index the grid.
func clampUV(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return mathutil.Clamp01(t)
}
