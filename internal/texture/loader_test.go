package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := encodeImage(f, filepath.Ext(path), img); err != nil {
		t.Fatal(err)
	}
}

func encodeImage(w io.Writer, ext string, img image.Image) error {
	switch ext {
	case ".bmp":
		return bmp.Encode(w, img)
	case ".jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case ".tga":
		return tga.Encode(w, img)
	default:
		return png.Encode(w, img)
	}
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"tex.png", "tex.bmp", "tex.tga"} {
		t.Run(name, func(t *testing.T) {
			img := solidImage(4, 2, color.NRGBA{10, 20, 30, 255})
			img.SetNRGBA(3, 0, color.NRGBA{200, 100, 50, 255})
			path := filepath.Join(dir, name)
			writeImage(t, path, img)

			m, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if m.Width != 4 || m.Height != 2 {
				t.Fatalf("expected 4x2; got %dx%d", m.Width, m.Height)
			}
			if len(m.Data) != 4*2*3 {
				t.Fatalf("expected %d bytes; got %d", 4*2*3, len(m.Data))
			}
			if got := m.Pixel(3, 0); got != byteColor(200, 100, 50) {
				t.Errorf("pixel (3,0) = %v", got)
			}
			if got := m.Pixel(0, 1); got != byteColor(10, 20, 30) {
				t.Errorf("pixel (0,1) = %v", got)
			}
		})
	}

	// JPEG is lossy; a flat image survives within a few levels.
	path := filepath.Join(dir, "tex.jpg")
	writeImage(t, path, solidImage(8, 8, color.NRGBA{200, 100, 50, 255}))
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 8 || m.Height != 8 {
		t.Fatalf("jpeg: expected 8x8; got %dx%d", m.Width, m.Height)
	}
	if got := m.Pixel(4, 4); !got.ApproxEqual(byteColor(200, 100, 50), 4.0/255) {
		t.Errorf("jpeg pixel = %v", got)
	}
}

func TestDecodeBytesFormats(t *testing.T) {
	img := solidImage(2, 2, color.NRGBA{0, 255, 0, 255})
	for _, ext := range []string{".png", ".jpg", ".bmp", ".tga"} {
		var buf bytes.Buffer
		if err := encodeImage(&buf, ext, img); err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		// The name carries no extension, as with glTF buffer views.
		m, err := DecodeBytes(buf.Bytes(), "embedded")
		if err != nil {
			t.Errorf("%s: %v", ext, err)
			continue
		}
		if m.Width != 2 || m.Height != 2 {
			t.Errorf("%s: got %dx%d", ext, m.Width, m.Height)
		}
		if got := m.Pixel(1, 1); !got.ApproxEqual(byteColor(0, 255, 0), 4.0/255) {
			t.Errorf("%s: pixel = %v", ext, got)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.png"), garbage} {
		_, err := Load(path)
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("Load(%s): expected *LoadError, got %v", path, err)
		}
		if le.Path != path {
			t.Errorf("LoadError.Path = %q, want %q", le.Path, path)
		}
	}
}

func TestFromImageEmpty(t *testing.T) {
	_, err := FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 3)))
	if !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}

func TestFromImageDropsAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(2, 2, 3, 3)) // non-zero origin
	img.Set(2, 2, color.RGBA{100, 150, 200, 255})
	m, err := FromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Pixel(0, 0); got != byteColor(100, 150, 200) {
		t.Errorf("pixel = %v", got)
	}
}

func TestCacheSharesMaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeImage(t, path, solidImage(1, 1, color.NRGBA{1, 2, 3, 255}))

	c := NewCache()
	m1, err := c.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := c.Load(filepath.Join(dir, ".", "a.png"))
	if err != nil {
		t.Fatal(err)
	}
	if m1 != m2 {
		t.Error("expected the same *Map for the same file")
	}

	if _, err := c.Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 cache entries; got %d", c.Len())
	}
}
