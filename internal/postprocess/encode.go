package postprocess

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
)

// Formats lists the output extensions Encode understands.
var Formats = []string{".webp", ".png", ".bmp"}

// EncodeTo writes img to w in the format named by ext.
func EncodeTo(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".webp":
		return nativewebp.Encode(w, img, nil)
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("postprocess: unsupported output format %q", ext)
}

// Encode writes img to path, choosing the format from the extension and
// creating parent directories as needed.
func Encode(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if !Supported(ext) {
		return fmt.Errorf("postprocess: unsupported output format %q", ext)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("postprocess: create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("postprocess: create %s: %w", path, err)
	}
	if err := EncodeTo(f, img, ext); err != nil {
		f.Close()
		return fmt.Errorf("postprocess: encode %s: %w", path, err)
	}
	return f.Close()
}

// Supported reports whether Encode can write files with extension ext.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, f := range Formats {
		if f == ext {
			return true
		}
	}
	return false
}

// ThumbnailPath derives the thumbnail file name for an output path:
// out/render.webp becomes out/render_thumb.webp.
func ThumbnailPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb" + ext
}
