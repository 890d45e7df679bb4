package raster

import (
	"math/rand"

	"rayshade/internal/log"
	"rayshade/internal/mathutil"
)

var logger = log.New("raster")

// Tracer returns the clamped color seen through normalized screen
// coordinates. *tracer.Tracer satisfies it.
type Tracer interface {
	Trace(x, y float64) mathutil.Vec3
}

// Options control the supersampling pass.
type Options struct {
	Samples     int     // jittered samples per pixel in the second pass; 0 disables it
	AAThreshold float64 // only supersample pixels whose neighbours differ by more; 0 means every pixel
	Debug       bool
}

// Renderer drives a Tracer over a frame buffer. After Setup, TraceBlock and
// AABlock may run concurrently on disjoint blocks.
type Renderer struct {
	tracer Tracer
	opts   Options
	fb     *FrameBuffer
	aaMask []bool
}

func NewRenderer(t Tracer, opts Options) *Renderer {
	return &Renderer{tracer: t, opts: opts, fb: &FrameBuffer{}}
}

func (r *Renderer) Options() Options     { return r.opts }
func (r *Renderer) Buffer() *FrameBuffer { return r.fb }

// Setup sizes the frame buffer to w×h and clears it.
func (r *Renderer) Setup(w, h int) {
	r.fb.Resize(w, h)
	r.aaMask = nil
}

// TracePixel traces the primary ray for pixel (i, j), stores it and returns
// the color.
func (r *Renderer) TracePixel(i, j int) mathutil.Vec3 {
	x := float64(i) / float64(r.fb.Width)
	y := float64(j) / float64(r.fb.Height)
	c := r.tracer.Trace(x, y)
	r.fb.SetPixel(i, j, c)
	if r.opts.Debug {
		logger.Debugf("pixel (%d, %d) = %v", i, j, c)
	}
	return c
}

// TraceImage renders the whole frame on the calling goroutine: every row in
// order, then the supersampling pass when enabled.
func (r *Renderer) TraceImage(w, h int, rng *rand.Rand) {
	r.Setup(w, h)
	full := Block{X0: 0, Y0: 0, X1: w, Y1: h}
	r.TraceBlock(full)
	if r.opts.Samples > 0 {
		r.MarkAA()
		r.AABlock(full, rng)
	}
}

// TraceBlock runs the first pass over b and returns the number of pixels.
func (r *Renderer) TraceBlock(b Block) int {
	for j := b.Y0; j < b.Y1; j++ {
		for i := b.X0; i < b.X1; i++ {
			r.TracePixel(i, j)
		}
	}
	return b.Area()
}

// MarkAA decides which pixels the supersampling pass revisits. It must run
// after the first pass has finished for the whole frame and before any
// AABlock call.
func (r *Renderer) MarkAA() int {
	w, h := r.fb.Width, r.fb.Height
	r.aaMask = make([]bool, w*h)
	marked := 0
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			if r.opts.AAThreshold <= 0 || r.isEdge(i, j) {
				r.aaMask[j*w+i] = true
				marked++
			}
		}
	}
	return marked
}

func (r *Renderer) isEdge(i, j int) bool {
	c := r.fb.Pixel(i, j)
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		ni, nj := i+d[0], j+d[1]
		if ni < 0 || nj < 0 || ni >= r.fb.Width || nj >= r.fb.Height {
			continue
		}
		diff := c.Sub(r.fb.Pixel(ni, nj))
		diff = diff.Max(diff.Neg())
		if diff.MaxComp() > r.opts.AAThreshold {
			return true
		}
	}
	return false
}

// AABlock replaces every marked pixel of b with the average of Samples
// jittered traces and returns how many pixels were resampled. rng must not
// be shared with another goroutine.
func (r *Renderer) AABlock(b Block, rng *rand.Rand) int {
	n := r.opts.Samples
	if n <= 0 {
		return 0
	}
	if r.aaMask == nil {
		r.MarkAA()
	}
	w := float64(r.fb.Width)
	h := float64(r.fb.Height)
	done := 0
	for j := b.Y0; j < b.Y1; j++ {
		for i := b.X0; i < b.X1; i++ {
			if !r.aaMask[j*r.fb.Width+i] {
				continue
			}
			var sum mathutil.Vec3
			for s := 0; s < n; s++ {
				x := (float64(i) + rng.Float64() - 0.5) / w
				y := (float64(j) + rng.Float64() - 0.5) / h
				sum = sum.Add(r.tracer.Trace(x, y))
			}
			r.fb.SetPixel(i, j, sum.Scale(1/float64(n)))
			done++
		}
	}
	return done
}
