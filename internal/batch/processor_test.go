package batch

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"rayshade/internal/mathutil"
	"rayshade/internal/raster"
)

// coordTracer encodes the sample position in the color.
type coordTracer struct{}

func (coordTracer) Trace(x, y float64) mathutil.Vec3 {
	return mathutil.Vec3{x, y, 0.25}
}

func TestRunMatchesSequentialRender(t *testing.T) {
	const w, h = 37, 23
	seq := raster.NewRenderer(coordTracer{}, raster.Options{})
	seq.TraceImage(w, h, nil)

	for _, threads := range []int{0, 1, 3, 8} {
		r := raster.NewRenderer(coordTracer{}, raster.Options{})
		res := Run(r, Config{Width: w, Height: h, Threads: threads, BlockSize: 8})
		if !bytes.Equal(r.Buffer().Pix, seq.Buffer().Pix) {
			t.Errorf("threads=%d: parallel frame differs from sequential", threads)
		}
		if got := res.Pixels(); got != w*h {
			t.Errorf("threads=%d: %d pixels traced, want %d", threads, got, w*h)
		}
		if want := max(threads, 1); len(res.Workers) != want {
			t.Errorf("threads=%d: %d worker stats, want %d", threads, len(res.Workers), want)
		}
		blocks := 0
		for _, s := range res.Workers {
			blocks += s.Blocks
		}
		if blocks != 5*3 {
			t.Errorf("threads=%d: %d blocks, want 15", threads, blocks)
		}
	}
}

func TestRunSupersamples(t *testing.T) {
	r := raster.NewRenderer(coordTracer{}, raster.Options{Samples: 2})
	res := Run(r, Config{Width: 16, Height: 16, Threads: 4, BlockSize: 5, Seed: 42})
	if got := res.Resampled(); got != 256 {
		t.Errorf("resampled %d pixels, want 256", got)
	}
	if res.Wall <= 0 {
		t.Error("wall time not recorded")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.json")
	want := Manifest{
		Scene:      "spheres",
		Image:      "out.webp",
		Width:      64,
		Height:     48,
		Depth:      5,
		Samples:    4,
		Background: "gradient",
		Threads:    2,
		Pixels:     3072,
		WallMillis: 12,
		Rendered:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := WriteManifest(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Rendered.Equal(want.Rendered) {
		t.Errorf("rendered = %v, want %v", got.Rendered, want.Rendered)
	}
	got.Rendered = want.Rendered
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if _, err := ReadManifest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing manifest")
	}
}
