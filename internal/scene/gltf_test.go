package scene

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"golang.org/x/image/bmp"

	"rayshade/internal/mathutil"
	"rayshade/internal/texture"
)

func idx(i int) *int         { return &i }
func f64(v float64) *float64 { return &v }

// triangleDoc builds a one-triangle document with positions, indices and
// UVs packed in a single buffer.
func triangleDoc(t *testing.T) *gltf.Document {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(&buf, binary.LittleEndian, f)
	}
	for _, f := range []float32{0, 0, 1, 0, 0, 1} {
		binary.Write(&buf, binary.LittleEndian, f)
	}
	for _, i := range []uint16{0, 1, 2} {
		binary.Write(&buf, binary.LittleEndian, i)
	}
	data := buf.Bytes()

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 24},
			{Buffer: 0, ByteOffset: 60, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: idx(0), Count: 3, ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec3},
			{BufferView: idx(1), Count: 3, ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec2},
			{BufferView: idx(2), Count: 3, ComponentType: gltf.ComponentUshort, Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0, gltf.TEXCOORD_0: 1},
				Indices:    idx(2),
				Material:   idx(0),
			}},
		}},
		Materials: []*gltf.Material{{
			Name: "red",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{1, 0, 0, 1},
				MetallicFactor:  f64(0),
				RoughnessFactor: f64(0.5),
			},
		}},
		Nodes: []*gltf.Node{
			{Children: []int{1}, Translation: [3]float64{0, 0, -5}},
			{Mesh: idx(0), Scale: [3]float64{2, 2, 2}},
		},
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
	}
}

func TestFromGLTFTransformsNodes(t *testing.T) {
	m, err := FromGLTF(triangleDoc(t), t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Meshes) != 1 || m.Triangles() != 1 {
		t.Fatalf("%d meshes, %d triangles", len(m.Meshes), m.Triangles())
	}
	tri := m.Meshes[0].Triangles[0]
	want := [3]mathutil.Vec3{{0, 0, -5}, {2, 0, -5}, {0, 2, -5}}
	for k := range want {
		if !tri.V[k].ApproxEqual(want[k], 1e-9) {
			t.Errorf("vertex %d = %v, want %v", k, tri.V[k], want[k])
		}
	}
	if !tri.Textured || tri.Smooth {
		t.Errorf("textured=%v smooth=%v", tri.Textured, tri.Smooth)
	}
	// V is flipped so the image top maps to v=1.
	if tri.UV[2] != [2]float64{0, 0} || tri.UV[0] != [2]float64{0, 1} {
		t.Errorf("uvs = %v", tri.UV)
	}
	if tri.Material.Name != "red" {
		t.Errorf("material = %q", tri.Material.Name)
	}

	b := m.Bounds()
	if !b.Min.ApproxEqual(mathutil.Vec3{0, 0, -5}, 1e-9) || !b.Max.ApproxEqual(mathutil.Vec3{2, 2, -5}, 1e-9) {
		t.Errorf("bounds = %+v", b)
	}
}

func TestFromGLTFWithoutScenes(t *testing.T) {
	doc := triangleDoc(t)
	doc.Scenes = nil
	m, err := FromGLTF(doc, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if v := m.Meshes[0].Triangles[0].V[1]; v != (mathutil.Vec3{1, 0, 0}) {
		t.Errorf("untransformed vertex = %v", v)
	}
}

func TestFromGLTFRejectsBadIndices(t *testing.T) {
	doc := triangleDoc(t)
	doc.Buffers[0].Data[60] = 9 // first index points past the vertices
	if _, err := FromGLTF(doc, "", nil); err == nil {
		t.Error("expected error for out-of-range index")
	}

	doc = triangleDoc(t)
	doc.Accessors[0].Count = 100
	if _, err := FromGLTF(doc, "", nil); err == nil {
		t.Error("expected error for accessor overrunning its view")
	}
}

// addBuffer appends a buffer holding data and one view per [offset, length]
// pair, returning the index of the first new view.
func addBuffer(doc *gltf.Document, data []byte, views ...[2]int) int {
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{ByteLength: len(data), Data: data})
	first := len(doc.BufferViews)
	for _, v := range views {
		doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
			Buffer:     len(doc.Buffers) - 1,
			ByteOffset: v[0],
			ByteLength: v[1],
		})
	}
	return first
}

func TestFromGLTFNormalizedUVs(t *testing.T) {
	tests := []struct {
		name string
		ct   gltf.ComponentType
		data any
	}{
		{"ubyte", gltf.ComponentUbyte, []uint8{0, 0, 255, 0, 0, 255}},
		{"ushort", gltf.ComponentUshort, []uint16{0, 0, 65535, 0, 0, 65535}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			binary.Write(&buf, binary.LittleEndian, tt.data)
			doc := triangleDoc(t)
			doc.Scenes = nil
			view := addBuffer(doc, buf.Bytes(), [2]int{0, buf.Len()})
			doc.Accessors[1] = &gltf.Accessor{
				BufferView:    idx(view),
				Count:         3,
				ComponentType: tt.ct,
				Type:          gltf.AccessorVec2,
				Normalized:    true,
			}

			m, err := FromGLTF(doc, "", nil)
			if err != nil {
				t.Fatal(err)
			}
			tri := m.Meshes[0].Triangles[0]
			if !tri.Textured {
				t.Fatal("triangle lost its uvs")
			}
			want := [3][2]float64{{0, 1}, {1, 1}, {0, 0}}
			for k := range want {
				if math.Abs(tri.UV[k][0]-want[k][0]) > 1e-6 || math.Abs(tri.UV[k][1]-want[k][1]) > 1e-6 {
					t.Errorf("uv %d = %v, want %v", k, tri.UV[k], want[k])
				}
			}
		})
	}
}

func TestFromGLTFSparsePositions(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint16{1, 0})
	binary.Write(&buf, binary.LittleEndian, []float32{3, 0, 0})

	doc := triangleDoc(t)
	doc.Scenes = nil
	view := addBuffer(doc, buf.Bytes(), [2]int{0, 2}, [2]int{4, 12})
	doc.Accessors[0].Sparse = &gltf.Sparse{
		Count:   1,
		Indices: gltf.SparseIndices{BufferView: view, ComponentType: gltf.ComponentUshort},
		Values:  gltf.SparseValues{BufferView: view + 1},
	}

	m, err := FromGLTF(doc, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	tri := m.Meshes[0].Triangles[0]
	if tri.V[1] != (mathutil.Vec3{3, 0, 0}) {
		t.Errorf("sparse vertex = %v, want (3,0,0)", tri.V[1])
	}
	if tri.V[2] != (mathutil.Vec3{0, 1, 0}) {
		t.Errorf("dense vertex = %v, want (0,1,0)", tri.V[2])
	}
}

func TestFromGLTFRejectsBadAccessorOffset(t *testing.T) {
	doc := triangleDoc(t)
	doc.Accessors[0].ByteOffset = 400
	if _, err := FromGLTF(doc, "", nil); err == nil {
		t.Error("expected error for accessor offset past its view")
	}
}

func TestFromGLTFTextures(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.SetNRGBA(i%2, i/2, color.NRGBA{0, 255, 0, 255})
	}
	f, err := os.Create(filepath.Join(dir, "base.png"))
	if err != nil {
		t.Fatal(err)
	}
	png.Encode(f, img)
	f.Close()

	doc := triangleDoc(t)
	doc.Materials[0].PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: 0}
	doc.Textures = []*gltf.Texture{{Source: idx(0)}}
	doc.Images = []*gltf.Image{{URI: "base.png"}}

	cache := texture.NewCache()
	m, err := FromGLTF(doc, dir, cache)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Materials[0].Kd.IsMapped() {
		t.Fatal("base color texture not bound")
	}
	if cache.Len() != 1 {
		t.Errorf("cache holds %d textures", cache.Len())
	}

	doc.Images[0].URI = "missing.png"
	_, err = FromGLTF(doc, dir, texture.NewCache())
	var le *texture.LoadError
	if !errors.As(err, &le) {
		t.Errorf("missing texture: got %v, want *texture.LoadError", err)
	}
}

func TestFromGLTFDataURITextures(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	tests := []struct {
		mime   string
		encode func(io.Writer, image.Image) error
	}{
		{"image/png", png.Encode},
		{"image/bmp", bmp.Encode},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := tt.encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		doc := triangleDoc(t)
		doc.Materials[0].PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: 0}
		doc.Textures = []*gltf.Texture{{Source: idx(0)}}
		doc.Images = []*gltf.Image{{URI: "data:" + tt.mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes())}}

		m, err := FromGLTF(doc, "", nil)
		if err != nil {
			t.Errorf("%s: %v", tt.mime, err)
			continue
		}
		if !m.Materials[0].Kd.IsMapped() {
			t.Errorf("%s: base color texture not bound", tt.mime)
		}
	}
}

func TestPhongFromPBR(t *testing.T) {
	base := mathutil.Vec3{0.8, 0.4, 0.2}

	kd, ks, kr, shin := PhongFromPBR(base, 0, 1)
	if kd != base || !ks.ApproxEqual(mathutil.Splat(0.04), 1e-12) || !kr.IsZero() || shin != 1 {
		t.Errorf("rough dielectric: kd=%v ks=%v kr=%v shininess=%v", kd, ks, kr, shin)
	}

	kd, ks, kr, shin = PhongFromPBR(base, 1, 0)
	if !kd.IsZero() || ks != base || kr != base || shin != 256 {
		t.Errorf("polished metal: kd=%v ks=%v kr=%v shininess=%v", kd, ks, kr, shin)
	}

	_, _, _, shin = PhongFromPBR(base, 0.5, 2)
	if shin != 1 || math.IsNaN(shin) {
		t.Errorf("roughness clamps: shininess=%v", shin)
	}
}

func TestLoadGLTFMissingFile(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "none.glb"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFromModelFramesGeometry(t *testing.T) {
	m, err := FromGLTF(triangleDoc(t), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	s := FromModel(m, Options{Aspect: 1})
	cam := s.PinholeCamera()
	if _, ok := s.Intersect(cam.RayThrough(0.5, 0.5)); !ok {
		t.Error("framing camera misses the model")
	}
	if len(s.Lights()) != 2 {
		t.Errorf("%d lights", len(s.Lights()))
	}
}
