package raster

import (
	"image"
	"math"

	"rayshade/internal/mathutil"
)

// FrameBuffer holds the rendered frame as packed RGB bytes, row-major with
// the origin at the top-left corner.
type FrameBuffer struct {
	Width  int
	Height int
	Pix    []uint8 // RGB interleaved, len = W*H*3
}

// NewFrameBuffer allocates a zeroed buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(w, h)
	return fb
}

// Resize sets the dimensions and zeroes every byte. The backing slice is
// reallocated only when the byte size changes.
func (fb *FrameBuffer) Resize(w, h int) {
	n := w * h * 3
	if n != len(fb.Pix) {
		fb.Pix = make([]uint8, n)
	} else {
		clear(fb.Pix)
	}
	fb.Width = w
	fb.Height = h
}

// SetPixel stores c as floor(255·c) per channel, clamped to [0,255].
func (fb *FrameBuffer) SetPixel(i, j int, c mathutil.Vec3) {
	o := (j*fb.Width + i) * 3
	fb.Pix[o] = toByte(c[0])
	fb.Pix[o+1] = toByte(c[1])
	fb.Pix[o+2] = toByte(c[2])
}

// Pixel reads back the stored color in [0,1].
func (fb *FrameBuffer) Pixel(i, j int) mathutil.Vec3 {
	o := (j*fb.Width + i) * 3
	return mathutil.Vec3{
		float64(fb.Pix[o]) / 255.0,
		float64(fb.Pix[o+1]) / 255.0,
		float64(fb.Pix[o+2]) / 255.0,
	}
}

// Image converts the buffer to an opaque NRGBA image for encoding.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	n := fb.Width * fb.Height
	for p := 0; p < n; p++ {
		copy(img.Pix[p*4:p*4+3], fb.Pix[p*3:p*3+3])
		img.Pix[p*4+3] = 255
	}
	return img
}

func toByte(x float64) uint8 {
	v := math.Floor(255 * x)
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
