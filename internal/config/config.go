package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// MaxDepthLimit bounds the recursion depth a render may request.
const MaxDepthLimit = 64

// Defaults applied by Resolve.
const (
	DefaultWidth     = 512
	DefaultHeight    = 512
	DefaultDepth     = 5
	DefaultBlockSize = 32
	DefaultFalloff   = 0.1
	DefaultOutput    = "render.webp"
)

// ErrInvalidDepth is returned by Validate for a depth outside [0, MaxDepthLimit].
var ErrInvalidDepth = errors.New("config: invalid recursion depth")

// Config holds every render setting. The zero value of most fields means
// "use the default"; Depth is a pointer because zero is a valid depth.
type Config struct {
	// Frame
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Depth  *int `json:"depth"`

	// Integrator
	Threshold   float64 `json:"threshold"`
	Samples     int     `json:"samples"`
	AAThreshold float64 `json:"aa_threshold"`
	Background  string  `json:"background"`
	CubeMapDir  string  `json:"cubemap_dir"`
	Falloff     float64 `json:"falloff"`

	// Scheduling
	Threads   int   `json:"threads"`
	BlockSize int   `json:"block_size"`
	Seed      int64 `json:"seed"`

	// Output
	Output    string `json:"output"`
	Thumbnail int    `json:"thumbnail"`
	Debug     bool   `json:"debug"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Relative cube map directories are relative to the config file.
	if cfg.CubeMapDir != "" && !filepath.IsAbs(cfg.CubeMapDir) {
		cfg.CubeMapDir = filepath.Join(filepath.Dir(path), cfg.CubeMapDir)
	}
	return cfg, nil
}

// Resolve applies CLI overrides and then fills empty fields with defaults.
// CLI flags take priority when set.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Depth != nil {
		d := *flags.Depth
		c.Depth = &d
	}
	if flags.Threshold > 0 {
		c.Threshold = flags.Threshold
	}
	if flags.Samples > 0 {
		c.Samples = flags.Samples
	}
	if flags.AAThreshold > 0 {
		c.AAThreshold = flags.AAThreshold
	}
	if flags.Threads > 0 {
		c.Threads = flags.Threads
	}
	if flags.BlockSize > 0 {
		c.BlockSize = flags.BlockSize
	}
	if flags.CubeMapDir != "" {
		c.CubeMapDir = flags.CubeMapDir
		if c.Background == "" {
			c.Background = "cubemap"
		}
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Thumbnail > 0 {
		c.Thumbnail = flags.Thumbnail
	}
	if flags.Debug {
		c.Debug = true
	}

	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Depth == nil {
		d := DefaultDepth
		c.Depth = &d
	}
	if c.Background == "" {
		c.Background = "gradient"
	}
	if c.Falloff <= 0 {
		c.Falloff = DefaultFalloff
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
}

// MaxDepth returns the resolved recursion depth.
func (c *Config) MaxDepth() int {
	if c.Depth == nil {
		return DefaultDepth
	}
	return *c.Depth
}

// Validate rejects settings the renderer cannot honor.
func (c *Config) Validate() error {
	if d := c.MaxDepth(); d < 0 || d > MaxDepthLimit {
		return fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidDepth, d, MaxDepthLimit)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid size %dx%d", c.Width, c.Height)
	}
	if c.Samples < 0 {
		return fmt.Errorf("config: invalid sample count %d", c.Samples)
	}
	if c.Threshold < 0 || c.AAThreshold < 0 {
		return fmt.Errorf("config: thresholds must not be negative")
	}
	switch c.Background {
	case "gradient":
	case "cubemap":
		if c.CubeMapDir == "" {
			return fmt.Errorf("config: cubemap background needs cubemap_dir")
		}
	default:
		return fmt.Errorf("config: unknown background %q", c.Background)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width       int
	Height      int
	Depth       *int
	Threshold   float64
	Samples     int
	AAThreshold float64
	Threads     int
	BlockSize   int
	Background  string
	CubeMapDir  string
	Output      string
	Thumbnail   int
	Debug       bool
}
