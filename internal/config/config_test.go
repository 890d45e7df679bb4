package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func intp(v int) *int { return &v }

func TestResolveDefaults(t *testing.T) {
	var c Config
	c.Resolve(Flags{})
	if c.Width != 512 || c.Height != 512 || c.MaxDepth() != 5 {
		t.Errorf("size/depth defaults: %dx%d depth %d", c.Width, c.Height, c.MaxDepth())
	}
	if c.Threads != runtime.NumCPU() || c.BlockSize != 32 {
		t.Errorf("scheduling defaults: threads %d block %d", c.Threads, c.BlockSize)
	}
	if c.Background != "gradient" || c.Falloff != 0.1 || c.Output != "render.webp" {
		t.Errorf("output defaults: %q %v %q", c.Background, c.Falloff, c.Output)
	}
	if c.Threshold != 0 || c.Samples != 0 {
		t.Errorf("threshold %v samples %d, want zero", c.Threshold, c.Samples)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadAndOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "render.json")
	body := `{"width": 320, "height": 200, "depth": 0, "samples": 4, "cubemap_dir": "sky", "background": "cubemap"}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxDepth() != 0 {
		t.Errorf("explicit zero depth became %d", c.MaxDepth())
	}
	if c.CubeMapDir != filepath.Join(dir, "sky") {
		t.Errorf("cubemap dir = %q", c.CubeMapDir)
	}

	c.Resolve(Flags{Width: 640, Depth: intp(3), Threads: 2})
	if c.Width != 640 || c.Height != 200 || c.MaxDepth() != 3 || c.Threads != 2 || c.Samples != 4 {
		t.Errorf("resolved %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{width:"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestCubeMapFlagSelectsBackground(t *testing.T) {
	var c Config
	c.Resolve(Flags{CubeMapDir: "/sky"})
	if c.Background != "cubemap" {
		t.Errorf("background = %q, want cubemap", c.Background)
	}
	c = Config{}
	c.Resolve(Flags{CubeMapDir: "/sky", Background: "gradient"})
	if c.Background != "gradient" {
		t.Errorf("explicit background overridden: %q", c.Background)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		depthErr bool
		ok       bool
	}{
		{"defaults", func(*Config) {}, false, true},
		{"max depth", func(c *Config) { c.Depth = intp(MaxDepthLimit) }, false, true},
		{"negative depth", func(c *Config) { c.Depth = intp(-1) }, true, false},
		{"depth too deep", func(c *Config) { c.Depth = intp(MaxDepthLimit + 1) }, true, false},
		{"zero width", func(c *Config) { c.Width = 0 }, false, false},
		{"negative samples", func(c *Config) { c.Samples = -2 }, false, false},
		{"unknown background", func(c *Config) { c.Background = "sunset" }, false, false},
		{"cubemap without dir", func(c *Config) { c.Background = "cubemap" }, false, false},
	}
	for _, tt := range tests {
		var c Config
		c.Resolve(Flags{})
		tt.mutate(&c)
		err := c.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: err = %v", tt.name, err)
		}
		if got := errors.Is(err, ErrInvalidDepth); got != tt.depthErr {
			t.Errorf("%s: errors.Is(ErrInvalidDepth) = %v", tt.name, got)
		}
	}
}
