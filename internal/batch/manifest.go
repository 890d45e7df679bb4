package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Manifest records how an output image was produced.
type Manifest struct {
	Scene      string    `json:"scene"`
	Image      string    `json:"image"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Depth      int       `json:"depth"`
	Threshold  float64   `json:"threshold"`
	Samples    int       `json:"samples"`
	Background string    `json:"background"`
	Threads    int       `json:"threads"`
	Pixels     int       `json:"pixels"`
	Resampled  int       `json:"resampled"`
	WallMillis int64     `json:"wall_ms"`
	Rendered   time.Time `json:"rendered"`
}

// WriteManifest writes m as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("batch: read manifest %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("batch: parse manifest %s: %w", path, err)
	}
	return m, nil
}
