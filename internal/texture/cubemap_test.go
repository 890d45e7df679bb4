package texture

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"rayshade/internal/mathutil"
)

func TestProjectFaces(t *testing.T) {
	tests := []struct {
		name string
		dir  mathutil.Vec3
		face Face
		u, v float64
	}{
		{"+X center", mathutil.Vec3{1, 0, 0}, PosX, 0.5, 0.5},
		{"-X center", mathutil.Vec3{-2, 0, 0}, NegX, 0.5, 0.5},
		{"+Y center", mathutil.Vec3{0, 3, 0}, PosY, 0.5, 0.5},
		{"-Y center", mathutil.Vec3{0, -1, 0}, NegY, 0.5, 0.5},
		{"+Z center", mathutil.Vec3{0, 0, 1}, PosZ, 0.5, 0.5},
		{"-Z center", mathutil.Vec3{0, 0, -1}, NegZ, 0.5, 0.5},
		{"+X up", mathutil.Vec3{1, 0.5, 0}, PosX, 0.5, 0.25},
		{"+X toward +z", mathutil.Vec3{1, 0, 0.5}, PosX, 0.25, 0.5},
		{"-X toward +z", mathutil.Vec3{-1, 0, 0.5}, NegX, 0.75, 0.5},
		{"+Y toward +z", mathutil.Vec3{0, 1, 0.5}, PosY, 0.5, 0.75},
		{"-Y toward +z", mathutil.Vec3{0, -1, 0.5}, NegY, 0.5, 0.25},
		{"+Z toward +x", mathutil.Vec3{0.5, 0, 1}, PosZ, 0.75, 0.5},
		{"-Z toward +x", mathutil.Vec3{0.5, 0, -1}, NegZ, 0.25, 0.5},
		{"tie goes to X", mathutil.Vec3{1, 1, 1}, PosX, 0, 0},
		{"tie Y over Z", mathutil.Vec3{0, -1, 1}, NegY, 0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face, u, v, ok := Project(tt.dir)
			if !ok {
				t.Fatal("expected ok")
			}
			if face != tt.face {
				t.Errorf("face = %v, want %v", face, tt.face)
			}
			if math.Abs(u-tt.u) > 1e-12 || math.Abs(v-tt.v) > 1e-12 {
				t.Errorf("uv = (%v,%v), want (%v,%v)", u, v, tt.u, tt.v)
			}
		})
	}
}

func TestCubeMapSample(t *testing.T) {
	cm := NewCubeMap()
	red := NewMap(1, 1, []byte{255, 0, 0})
	cm.SetFace(PosY, red)

	if got := cm.Sample(mathutil.Vec3{0, 1, 0}); got != (mathutil.Vec3{1, 0, 0}) {
		t.Errorf("+Y sample = %v", got)
	}
	if got := cm.Sample(mathutil.Vec3{0, -1, 0}); got != (mathutil.Vec3{}) {
		t.Errorf("missing face should be black, got %v", got)
	}
	if got := cm.Sample(mathutil.Vec3{}); got != (mathutil.Vec3{}) {
		t.Errorf("zero direction should be black, got %v", got)
	}
}

func TestLoadCubeMap(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "posx.png"), solidImage(2, 2, color.NRGBA{255, 0, 0, 255}))
	writeImage(t, filepath.Join(dir, "Left.bmp"), solidImage(2, 2, color.NRGBA{0, 255, 0, 255}))
	writeImage(t, filepath.Join(dir, "right.png"), solidImage(2, 2, color.NRGBA{0, 0, 255, 255}))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cm, err := LoadCubeMap(dir, NewCache())
	if err != nil {
		t.Fatal(err)
	}
	// posx outranks right for +X.
	if got := cm.Sample(mathutil.Vec3{1, 0, 0}); got != (mathutil.Vec3{1, 0, 0}) {
		t.Errorf("+X = %v", got)
	}
	if got := cm.Sample(mathutil.Vec3{-1, 0, 0}); got != (mathutil.Vec3{0, 1, 0}) {
		t.Errorf("-X = %v", got)
	}
	if cm.FaceMap(PosZ) != nil {
		t.Error("+Z should be empty")
	}
}

func TestLoadCubeMapErrors(t *testing.T) {
	empty := t.TempDir()
	if _, err := LoadCubeMap(empty, NewCache()); err == nil {
		t.Error("expected error for a directory without faces")
	}

	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "negz.png"), []byte("broken"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadCubeMap(bad, NewCache())
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
}
