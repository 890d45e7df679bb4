package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// faceStems lists the accepted file stems for each cube face, in priority order.
var faceStems = [6][]string{
	PosX: {"posx", "px", "right"},
	NegX: {"negx", "nx", "left"},
	PosY: {"posy", "py", "top", "up"},
	NegY: {"negy", "ny", "bottom", "down"},
	PosZ: {"posz", "pz", "front"},
	NegZ: {"negz", "nz", "back"},
}

var imageExts = map[string]bool{
	".bmp": true, ".png": true, ".jpg": true, ".jpeg": true, ".tga": true, ".webp": true,
}

// FaceIndex maps cube faces to image files found in one directory.
type FaceIndex struct {
	paths [6]string // "" when the face has no file
}

// BuildFaceIndex scans dir (non-recursively) for cube face images. Stems are
// matched case-insensitively; a stem earlier in faceStems wins over a later
// one for the same face.
func BuildFaceIndex(dir string) (*FaceIndex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	idx := &FaceIndex{}
	rank := [6]int{}
	for i := range rank {
		rank[i] = len(faceStems[i])
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !imageExts[ext] {
			continue
		}
		stem := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))

		for face, stems := range faceStems {
			for r, s := range stems {
				if stem == s && r < rank[face] {
					idx.paths[face] = filepath.Join(dir, e.Name())
					rank[face] = r
				}
			}
		}
	}

	return idx, nil
}

// Path returns the file for a face, or ("", false).
func (idx *FaceIndex) Path(f Face) (string, bool) {
	p := idx.paths[f]
	return p, p != ""
}

// Len returns the number of faces that have a file.
func (idx *FaceIndex) Len() int {
	n := 0
	for _, p := range idx.paths {
		if p != "" {
			n++
		}
	}
	return n
}
