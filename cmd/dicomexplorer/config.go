package main

import (
	"os"

	"github.com/carbocation/pfx"
	"gopkg.in/yaml.v3"
)

// Config holds the viewer settings that can come from a YAML file.
// Flags override any value set here.
type Config struct {
	// ListenAddress is the host:port the HTTP server binds.
	ListenAddress string `yaml:"listen_address"`

	// ThumbnailSize is the bounding box, in pixels, for each thumbnail
	// in the study strip.
	ThumbnailSize int `yaml:"thumbnail_size"`

	// ZoomFactor scales the image per zoom gesture; ZoomMin and ZoomMax
	// bound the zoom relative to fit-to-viewport.
	ZoomFactor float64 `yaml:"zoom_factor"`
	ZoomMin    float64 `yaml:"zoom_min"`
	ZoomMax    float64 `yaml:"zoom_max"`

	// HistogramBuckets is the bin count for the intensity histogram
	// beside the image pane.
	HistogramBuckets int `yaml:"histogram_buckets"`
}

// DefaultConfig returns the settings used when no config file or flags
// are given. The server binds localhost only.
func DefaultConfig() *Config {
	return &Config{
		ListenAddress:    "localhost:9019",
		ThumbnailSize:    70,
		ZoomFactor:       1.15,
		ZoomMin:          1.0,
		ZoomMax:          10.0,
		HistogramBuckets: 25,
	}
}

// LoadConfig loads settings from a YAML file, starting from the
// defaults so that a partial file only overrides what it names. A
// missing file (or an empty path) yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pfx.Err(err)
	}

	return cfg, nil
}

// normalize replaces out-of-range values with their defaults: a zoom
// factor must exceed 1, the zoom bounds must be ordered, and sizes and
// bucket counts must be positive.
func (c *Config) normalize() {
	defaults := DefaultConfig()

	if c.ListenAddress == "" {
		c.ListenAddress = defaults.ListenAddress
	}
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = defaults.ThumbnailSize
	}
	if c.ZoomFactor <= 1 {
		c.ZoomFactor = defaults.ZoomFactor
	}
	if c.ZoomMin > c.ZoomMax {
		c.ZoomMin = defaults.ZoomMin
		c.ZoomMax = defaults.ZoomMax
	}
	if c.HistogramBuckets < 1 {
		c.HistogramBuckets = defaults.HistogramBuckets
	}
}
