package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Load reads and decodes an image file (BMP, PNG, JPEG, TGA or WebP) into a
// Map. Every failure is returned as a *LoadError.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	return Decode(f, path)
}

// DecodeBytes decodes an in-memory image, e.g. one embedded in a glTF buffer.
// name is only used in error messages.
func DecodeBytes(data []byte, name string) (*Map, error) {
	return Decode(bytes.NewReader(data), name)
}

// Decode decodes any registered image format from r. TGA has no magic
// number, so it is never registered with the image package: it is chosen by
// a .tga name, or tried when no registered format recognises the data.
func Decode(r io.Reader, name string) (*Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("read: %w", err)}
	}

	img, err := decodeImage(data, name)
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("decode: %w", err)}
	}

	m, err := FromImage(img)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	return m, nil
}

func decodeImage(data []byte, name string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return tga.Decode(bytes.NewReader(data))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		if timg, terr := tga.Decode(bytes.NewReader(data)); terr == nil {
			return timg, nil
		}
	}
	return img, err
}

// FromImage converts any image to a tightly packed RGB Map. Alpha is dropped
// without premultiplying.
func FromImage(src image.Image) (*Map, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	n, ok := src.(*image.NRGBA)
	if !ok {
		n = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(n, n.Bounds(), src, b.Min, draw.Src)
	}

	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		row := n.Pix[y*n.Stride:]
		for x := 0; x < w; x++ {
			si := x * 4
			di := (y*w + x) * 3
			data[di] = row[si]
			data[di+1] = row[si+1]
			data[di+2] = row[si+2]
		}
	}

	return NewMap(w, h, data), nil
}
