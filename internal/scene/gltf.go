package scene

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"rayshade/internal/mathutil"
	"rayshade/internal/texture"
	"rayshade/internal/tracer"
)

// Model is the geometry and materials imported from a glTF document, already
// transformed into world space.
type Model struct {
	Name      string
	Meshes    []*Mesh
	Materials []*tracer.Material
}

func (m *Model) Bounds() AABB {
	b := EmptyAABB()
	for _, mesh := range m.Meshes {
		b = b.Union(mesh.Bounds())
	}
	return b
}

// Triangles counts faces over all meshes.
func (m *Model) Triangles() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += len(mesh.Triangles)
	}
	return n
}

// LoadGLTF imports a .gltf or .glb file. External textures are read through
// textures; a texture that fails to decode fails the import.
func LoadGLTF(path string, textures texture.Loader) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: open gltf %s: %w", path, err)
	}
	m, err := FromGLTF(doc, filepath.Dir(path), textures)
	if err != nil {
		return nil, fmt.Errorf("scene: import %s: %w", path, err)
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}

// FromGLTF converts a decoded document. dir resolves relative image URIs.
func FromGLTF(doc *gltf.Document, dir string, textures texture.Loader) (*Model, error) {
	imp := &importer{doc: doc, dir: dir, textures: textures, model: &Model{}}

	for i, gm := range doc.Materials {
		m, err := imp.material(gm)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		imp.model.Materials = append(imp.model.Materials, m)
	}
	imp.fallback = tracer.NewMaterial("default")
	imp.fallback.Ka = tracer.Const(mathutil.Splat(0.8))
	imp.fallback.Kd = tracer.Const(mathutil.Splat(0.8))

	if len(doc.Scenes) == 0 {
		// No scene graph: every mesh at the origin.
		for i := range doc.Meshes {
			if err := imp.mesh(i, mathutil.Mat4Identity()); err != nil {
				return nil, err
			}
		}
		return imp.model, nil
	}

	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range", sceneIdx)
	}
	for _, n := range doc.Scenes[sceneIdx].Nodes {
		if err := imp.node(n, mathutil.Mat4Identity(), 0); err != nil {
			return nil, err
		}
	}
	return imp.model, nil
}

// maxNodeDepth guards against cyclic node graphs.
const maxNodeDepth = 64

type importer struct {
	doc      *gltf.Document
	dir      string
	textures texture.Loader
	model    *Model
	fallback *tracer.Material
}

func (imp *importer) node(idx int, parent mathutil.Mat4, depth int) error {
	if idx < 0 || idx >= len(imp.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	n := imp.doc.Nodes[idx]
	world := mathutil.Mat4Mul(parent, nodeMatrix(n))
	if n.Mesh != nil {
		if err := imp.mesh(*n.Mesh, world); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := imp.node(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeMatrix prefers an explicit matrix and otherwise composes T·R·S. Zero
// rotation and scale read as their identities.
func nodeMatrix(n *gltf.Node) mathutil.Mat4 {
	var zero [16]float64
	if n.Matrix != zero {
		if m := mathutil.FromColumnMajor(n.Matrix); !m.IsIdentity() {
			return m
		}
	}
	s := mathutil.Vec3(n.Scale)
	if s.IsZero() {
		s = mathutil.Vec3{1, 1, 1}
	}
	return mathutil.FromTRS(mathutil.Vec3(n.Translation), mathutil.Quat(n.Rotation), s)
}

func (imp *importer) mesh(idx int, world mathutil.Mat4) error {
	if idx < 0 || idx >= len(imp.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", idx)
	}
	gm := imp.doc.Meshes[idx]
	normalMat := world.NormalMatrix()

	var tris []*Triangle
	for p, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := imp.readPositions(posIdx)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: read positions: %w", gm.Name, p, err)
		}
		var normals []mathutil.Vec3
		if ni, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = imp.readNormals(ni); err != nil {
				return fmt.Errorf("mesh %q primitive %d: read normals: %w", gm.Name, p, err)
			}
		}
		var uvs [][2]float64
		if ti, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = imp.readUVs(ti); err != nil {
				return fmt.Errorf("mesh %q primitive %d: read uvs: %w", gm.Name, p, err)
			}
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = imp.readIndices(*prim.Indices); err != nil {
				return fmt.Errorf("mesh %q primitive %d: read indices: %w", gm.Name, p, err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		mat := imp.fallback
		if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(imp.model.Materials) {
			mat = imp.model.Materials[*prim.Material]
		}

		for i := 0; i+2 < len(indices); i += 3 {
			tri := &Triangle{Material: mat}
			valid := true
			for k := 0; k < 3; k++ {
				vi := indices[i+k]
				if vi < 0 || vi >= len(positions) {
					valid = false
					break
				}
				tri.V[k] = world.MulPoint(positions[vi])
				if vi < len(normals) {
					tri.N[k] = normalMat.MulVec3(normals[vi]).Normalize()
				}
				if vi < len(uvs) {
					// glTF puts v=0 at the top of the image.
					tri.UV[k] = [2]float64{uvs[vi][0], 1 - uvs[vi][1]}
				}
			}
			if !valid {
				return fmt.Errorf("mesh %q primitive %d: index out of range", gm.Name, p)
			}
			tri.Smooth = len(normals) == len(positions)
			tri.Textured = len(uvs) == len(positions)
			tris = append(tris, tri)
		}
	}
	if len(tris) > 0 {
		imp.model.Meshes = append(imp.model.Meshes, NewMesh(gm.Name, tris))
	}
	return nil
}

// material maps metallic-roughness parameters onto the Phong model: metals
// lose their diffuse term and reflect their base color, rough surfaces get a
// broad highlight and no mirror term.
func (imp *importer) material(gm *gltf.Material) (*tracer.Material, error) {
	base := mathutil.Vec3{1, 1, 1}
	alpha := 1.0
	metallic, roughness := 1.0, 1.0
	var baseTex *texture.Map

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			f := *pbr.BaseColorFactor
			base = mathutil.Vec3{f[0], f[1], f[2]}
			alpha = f[3]
		}
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			m, err := imp.texture(pbr.BaseColorTexture.Index)
			if err != nil {
				return nil, err
			}
			baseTex = m
		}
	}

	kd, ks, kr, shininess := PhongFromPBR(base, metallic, roughness)
	m := tracer.NewMaterial(gm.Name)
	if baseTex != nil {
		m.Kd = tracer.Mapped(baseTex)
		m.Ka = tracer.Mapped(baseTex)
	} else {
		m.Kd = tracer.Const(kd)
		m.Ka = tracer.Const(kd)
	}
	m.Ks = tracer.Const(ks)
	m.Kr = tracer.Const(kr)
	m.Shininess = tracer.Scalar(shininess)
	if gm.AlphaMode == gltf.AlphaBlend && alpha < 1 {
		m.Kt = tracer.Const(mathutil.Splat(1 - alpha))
		m.Index = tracer.Scalar(1.5)
	}
	return m, nil
}

// PhongFromPBR converts base color, metallic and roughness factors into
// diffuse, specular and reflective colors plus a Phong exponent.
func PhongFromPBR(base mathutil.Vec3, metallic, roughness float64) (kd, ks, kr mathutil.Vec3, shininess float64) {
	metallic = mathutil.Clamp01(metallic)
	roughness = mathutil.Clamp01(roughness)
	kd = base.Scale(1 - metallic)
	ks = mathutil.Splat(0.04).Lerp(base, metallic)
	kr = ks.Scale(metallic * (1 - roughness))
	smooth := 1 - roughness
	shininess = 1 + 255*smooth*smooth
	return kd, ks, kr, shininess
}

func (imp *importer) texture(idx int) (*texture.Map, error) {
	doc := imp.doc
	if idx < 0 || idx >= len(doc.Textures) || doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture %d missing", idx)
	}
	src := *doc.Textures[idx].Source
	if src < 0 || src >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", src)
	}
	img := doc.Images[src]
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("image%d", src)
	}

	switch {
	case img.BufferView != nil:
		data, err := imp.bufferView(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
		return texture.DecodeBytes(data, name)
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
		return texture.DecodeBytes(data, name)
	case strings.HasPrefix(img.URI, "data:"):
		// MarshalData only knows PNG and JPEG media types.
		comma := strings.IndexByte(img.URI, ',')
		if comma < 0 {
			return nil, fmt.Errorf("image %d: malformed data uri", src)
		}
		data, err := base64.StdEncoding.DecodeString(img.URI[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
		return texture.DecodeBytes(data, name)
	case img.URI != "":
		if imp.textures == nil {
			return texture.Load(filepath.Join(imp.dir, img.URI))
		}
		return imp.textures.Load(filepath.Join(imp.dir, img.URI))
	}
	return nil, fmt.Errorf("image %d has no source", src)
}

func (imp *importer) bufferView(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(imp.doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	data, err := modeler.ReadBufferView(imp.doc, imp.doc.BufferViews[idx])
	if err != nil {
		return nil, fmt.Errorf("buffer view %d: %w", idx, err)
	}
	return data, nil
}

// accessor looks up an accessor and checks that its offset lies inside its
// buffer view; modeler validates the remaining extent.
func (imp *importer) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(imp.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := imp.doc.Accessors[idx]
	if acc.BufferView != nil {
		view, err := imp.bufferView(*acc.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d: %w", idx, err)
		}
		if acc.ByteOffset < 0 || acc.ByteOffset > len(view) {
			return nil, fmt.Errorf("accessor %d: offset %d outside its buffer view", idx, acc.ByteOffset)
		}
	}
	return acc, nil
}

func (imp *importer) readPositions(idx int) ([]mathutil.Vec3, error) {
	acc, err := imp.accessor(idx)
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadPosition(imp.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", idx, err)
	}
	return toVec3(raw), nil
}

func (imp *importer) readNormals(idx int) ([]mathutil.Vec3, error) {
	acc, err := imp.accessor(idx)
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadNormal(imp.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", idx, err)
	}
	return toVec3(raw), nil
}

// readUVs accepts float and normalized integer texture coordinates.
func (imp *importer) readUVs(idx int) ([][2]float64, error) {
	acc, err := imp.accessor(idx)
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadTextureCoord(imp.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", idx, err)
	}
	out := make([][2]float64, len(raw))
	for i, uv := range raw {
		out[i] = [2]float64{float64(uv[0]), float64(uv[1])}
	}
	return out, nil
}

func (imp *importer) readIndices(idx int) ([]int, error) {
	acc, err := imp.accessor(idx)
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadIndices(imp.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", idx, err)
	}
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = int(v)
	}
	return out, nil
}

func toVec3(raw [][3]float32) []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(raw))
	for i, v := range raw {
		out[i] = mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
	}
	return out
}
