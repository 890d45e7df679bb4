package scene

import (
	"fmt"
	"math"
	"sort"

	"rayshade/internal/mathutil"
	"rayshade/internal/texture"
	"rayshade/internal/tracer"
)

// Options tune the scenes built here.
type Options struct {
	Aspect  float64 // camera width / height
	Falloff float64 // point light quadratic coefficient; 0 keeps the default
}

func (o Options) aspect() float64 {
	if o.Aspect <= 0 {
		return 1
	}
	return o.Aspect
}

func (o Options) pointLight(pos, color mathutil.Vec3) *tracer.PointLight {
	l := tracer.NewPointLight(pos, color)
	if o.Falloff > 0 {
		l.Falloff = o.Falloff
	}
	return l
}

var builtins = map[string]struct {
	desc  string
	build func(Options) *Scene
}{
	"spheres":  {"reflective and refractive spheres over a checker floor", buildSpheres},
	"cornell":  {"closed room with colored walls and a point light", buildCornell},
	"glass":    {"glass slab and ball showing refraction and total internal reflection", buildGlass},
	"textured": {"texture-mapped sphere and floor", buildTextured},
}

// Names lists the built-in scenes in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns the one-line description of a built-in scene.
func Describe(name string) string {
	return builtins[name].desc
}

// Builtin constructs a named scene with its BVH already built.
func Builtin(name string, opts Options) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("scene: unknown built-in scene %q", name)
	}
	s := b.build(opts)
	s.Name = name
	s.Build()
	return s, nil
}

func solid(name string, kd mathutil.Vec3) *tracer.Material {
	m := tracer.NewMaterial(name)
	m.Ka = tracer.Const(kd)
	m.Kd = tracer.Const(kd)
	m.Ks = tracer.Const(mathutil.Splat(0.2))
	m.Shininess = tracer.Scalar(16)
	return m
}

func mirror(name string, tint mathutil.Vec3) *tracer.Material {
	m := tracer.NewMaterial(name)
	m.Kd = tracer.Const(tint.Scale(0.1))
	m.Ks = tracer.Const(mathutil.Splat(0.8))
	m.Kr = tracer.Const(tint.Scale(0.8))
	m.Shininess = tracer.Scalar(128)
	return m
}

func glass(name string, index float64) *tracer.Material {
	m := tracer.NewMaterial(name)
	m.Ks = tracer.Const(mathutil.Splat(0.6))
	m.Kr = tracer.Const(mathutil.Splat(0.1))
	m.Kt = tracer.Const(mathutil.Splat(0.9))
	m.Shininess = tracer.Scalar(96)
	m.Index = tracer.Scalar(index)
	return m
}

// Checker builds an n×n grid of size-pixel squares alternating a and b.
func Checker(n, size int, a, b mathutil.Vec3) *texture.Map {
	w := n * size
	data := make([]byte, w*w*3)
	for y := 0; y < w; y++ {
		for x := 0; x < w; x++ {
			c := a
			if (x/size+y/size)%2 == 1 {
				c = b
			}
			o := (y*w + x) * 3
			for k := 0; k < 3; k++ {
				data[o+k] = uint8(math.Round(mathutil.Clamp01(c[k]) * 255))
			}
		}
	}
	return texture.NewMap(w, w, data)
}

func buildSpheres(o Options) *Scene {
	cam := NewCamera(mathutil.Vec3{0, 1.5, 6}, mathutil.Vec3{0, 0.6, 0}, mathutil.Vec3{0, 1, 0}, 40, o.aspect())
	s := New("spheres", cam)
	s.SetAmbient(mathutil.Splat(0.15))

	floorMat := tracer.NewMaterial("floor")
	tiles := tracer.Mapped(Checker(2, 1, mathutil.Vec3{0.9, 0.9, 0.9}, mathutil.Vec3{0.2, 0.2, 0.25}))
	floorMat.Ka = tiles
	floorMat.Kd = tiles
	floorMat.Kr = tracer.Const(mathutil.Splat(0.15))
	floor := NewPlane(mathutil.Vec3{}, mathutil.Vec3{0, 1, 0}, floorMat)
	floor.TileSize = 2

	s.Add(
		floor,
		NewSphere(mathutil.Vec3{-1.6, 0.8, 0}, 0.8, solid("red", mathutil.Vec3{0.8, 0.15, 0.1})),
		NewSphere(mathutil.Vec3{0, 1, -0.5}, 1, mirror("chrome", mathutil.Vec3{0.95, 0.95, 0.95})),
		NewSphere(mathutil.Vec3{1.6, 0.8, 0.6}, 0.8, glass("glass", 1.5)),
	)
	s.AddLight(tracer.NewDirectionalLight(mathutil.Vec3{-1, -2, -1}, mathutil.Splat(0.8)))
	s.AddLight(o.pointLight(mathutil.Vec3{2, 4, 4}, mathutil.Splat(0.9)))
	return s
}

func buildCornell(o Options) *Scene {
	cam := NewCamera(mathutil.Vec3{0, 1, 3.4}, mathutil.Vec3{0, 1, 0}, mathutil.Vec3{0, 1, 0}, 40, o.aspect())
	s := New("cornell", cam)
	s.SetAmbient(mathutil.Splat(0.1))

	white := solid("white", mathutil.Splat(0.75))
	red := solid("red", mathutil.Vec3{0.75, 0.1, 0.1})
	green := solid("green", mathutil.Vec3{0.1, 0.6, 0.1})

	v := func(x, y, z float64) mathutil.Vec3 { return mathutil.Vec3{x, y, z} }
	// Faces wind so their normals point into the room.
	floor := Quad(v(-1, 0, 1), v(1, 0, 1), v(1, 0, -1), v(-1, 0, -1), white)
	ceiling := Quad(v(-1, 2, -1), v(1, 2, -1), v(1, 2, 1), v(-1, 2, 1), white)
	back := Quad(v(-1, 0, -1), v(1, 0, -1), v(1, 2, -1), v(-1, 2, -1), white)
	left := Quad(v(-1, 0, 1), v(-1, 0, -1), v(-1, 2, -1), v(-1, 2, 1), red)
	right := Quad(v(1, 0, -1), v(1, 0, 1), v(1, 2, 1), v(1, 2, -1), green)

	var tris []*Triangle
	for _, wall := range [][]*Triangle{floor, ceiling, back, left, right} {
		tris = append(tris, wall...)
	}
	s.Add(NewMesh("room", tris))

	block := Box(v(-0.7, 0, -0.6), v(-0.1, 1.2, 0), white)
	s.Add(NewMesh("block", Transform(block, Pivot(mathutil.RotY(mathutil.Deg2Rad(18)), v(-0.4, 0, -0.3)))))
	s.Add(NewSphere(v(0.45, 0.35, 0.2), 0.35, mirror("mirror", mathutil.Splat(0.9))))
	s.AddLight(o.pointLight(v(0, 1.9, 0), mathutil.Splat(1)))
	return s
}

func buildGlass(o Options) *Scene {
	cam := NewCamera(mathutil.Vec3{0, 1.2, 5}, mathutil.Vec3{0, 0.7, 0}, mathutil.Vec3{0, 1, 0}, 45, o.aspect())
	s := New("glass", cam)
	s.SetAmbient(mathutil.Splat(0.2))

	floorMat := tracer.NewMaterial("floor")
	tiles := tracer.Mapped(Checker(8, 4, mathutil.Vec3{0.95, 0.85, 0.3}, mathutil.Vec3{0.1, 0.1, 0.4}))
	floorMat.Ka = tiles
	floorMat.Kd = tiles
	floor := NewPlane(mathutil.Vec3{}, mathutil.Vec3{0, 1, 0}, floorMat)
	floor.TileSize = 4

	s.Add(floor)
	slab := Box(mathutil.Vec3{-0.7, 0, -0.3}, mathutil.Vec3{0.7, 1.4, 0.3}, glass("slab", 1.5))
	turn := mathutil.FromTRS(mathutil.Vec3{-1.1, 0, 0}, mathutil.EulerToQuat(0, mathutil.Deg2Rad(25), 0), mathutil.Splat(1))
	s.Add(NewMesh("slab", Transform(slab, turn)))
	s.Add(NewSphere(mathutil.Vec3{0.9, 0.9, 0}, 0.9, glass("diamond", 2.4)))
	s.AddLight(o.pointLight(mathutil.Vec3{-2, 5, 3}, mathutil.Splat(1)))
	return s
}

func buildTextured(o Options) *Scene {
	cam := NewCamera(mathutil.Vec3{0, 1.2, 4}, mathutil.Vec3{0, 0.8, 0}, mathutil.Vec3{0, 1, 0}, 45, o.aspect())
	s := New("textured", cam)
	s.SetAmbient(mathutil.Splat(0.25))

	globe := tracer.NewMaterial("globe")
	stripes := tracer.Mapped(Checker(8, 8, mathutil.Vec3{0.1, 0.3, 0.8}, mathutil.Vec3{0.9, 0.9, 0.9}))
	globe.Ka = stripes
	globe.Kd = stripes
	globe.Ks = tracer.Const(mathutil.Splat(0.3))
	globe.Shininess = tracer.Scalar(32)

	floorMat := tracer.NewMaterial("floor")
	tiles := tracer.Mapped(Checker(2, 2, mathutil.Vec3{0.6, 0.3, 0.2}, mathutil.Vec3{0.9, 0.8, 0.7}))
	floorMat.Ka = tiles
	floorMat.Kd = tiles

	s.Add(NewPlane(mathutil.Vec3{}, mathutil.Vec3{0, 1, 0}, floorMat))
	s.Add(NewSphere(mathutil.Vec3{0, 0.8, 0}, 0.8, globe))
	s.AddLight(tracer.NewDirectionalLight(mathutil.Vec3{1, -1, -1}, mathutil.Splat(0.9)))
	return s
}

// FromModel frames an imported model: a camera looking at its bounds from
// the front, a floor under it, a key light and a fill light.
func FromModel(m *Model, opts Options) *Scene {
	b := m.Bounds()
	center := b.Center()
	radius := b.Max.Sub(center).Len()
	if radius <= 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
		center, radius = mathutil.Vec3{}, 1
	}

	const vfov = 40.0
	dist := radius / math.Sin(mathutil.Deg2Rad(vfov)/2)
	eye := center.Add(mathutil.Vec3{0, 0.35, 1}.Normalize().Scale(dist * 1.1))
	cam := NewCamera(eye, center, mathutil.Vec3{0, 1, 0}, vfov, opts.aspect())

	s := New(m.Name, cam)
	s.SetAmbient(mathutil.Splat(0.2))
	for _, mesh := range m.Meshes {
		s.Add(mesh)
	}
	s.Add(NewPlane(mathutil.Vec3{0, b.Min[1], 0}, mathutil.Vec3{0, 1, 0}, solid("floor", mathutil.Splat(0.6))))

	key := opts.pointLight(center.Add(mathutil.Vec3{radius * 2, radius * 3, radius * 2}), mathutil.Splat(1))
	if opts.Falloff <= 0 {
		// Scale the falloff with the model so the key light reaches it.
		key.Falloff = tracer.DefaultFalloff / (radius * radius)
	}
	s.AddLight(key)
	s.AddLight(tracer.NewDirectionalLight(mathutil.Vec3{1, -1, -2}, mathutil.Splat(0.4)))
	s.Build()
	return s
}
