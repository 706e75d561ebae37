// Package config handles configuration loading and shared defaults.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brandonteo/BearMaps/internal/geo"
)

// Defaults match the Berkeley dataset the pre-rendered pyramid covers.
const (
	DefaultULLon = -122.2998046875
	DefaultULLat = 37.892195547244356
	DefaultLRLon = -122.2119140625
	DefaultLRLat = 37.82280243352756

	DefaultMaxDepth = 7
)

// Config represents the root configuration file structure.
type Config struct {
	Coverage  Coverage `yaml:"coverage,omitempty"`
	Mosaic    Mosaic   `yaml:"mosaic,omitempty"`
	TilesDir  string   `yaml:"tiles_dir,omitempty"`
	OSMFile   string   `yaml:"osm_file,omitempty"`
	AssetsDir string   `yaml:"assets_dir,omitempty"`
	MaxDepth  int      `yaml:"max_depth,omitempty"`
}

// Coverage is the root bounding box of the tile pyramid.
type Coverage struct {
	ULLon float64 `yaml:"ullon"`
	ULLat float64 `yaml:"ullat"`
	LRLon float64 `yaml:"lrlon"`
	LRLat float64 `yaml:"lrlat"`
}

// BBox returns the coverage as a geo.BBox.
func (c Coverage) BBox() geo.BBox {
	return geo.BBox{
		UL: geo.Point{Lon: c.ULLon, Lat: c.ULLat},
		LR: geo.Point{Lon: c.LRLon, Lat: c.LRLat},
	}
}

// Mosaic controls the rendered image output.
type Mosaic struct {
	Format      string  `yaml:"format,omitempty"`       // png or webp
	StrokeColor string  `yaml:"stroke_color,omitempty"` // #RRGGBB or #RRGGBBAA
	StrokeWidth float64 `yaml:"stroke_width,omitempty"`
}

// Color parses the stroke color. Roads are stroked half-transparent cyan
// unless configured otherwise.
func (m Mosaic) Color() (color.RGBA, error) {
	s := strings.TrimPrefix(m.StrokeColor, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("stroke color %q: want #RRGGBB or #RRGGBBAA", m.StrokeColor)
	}

	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("stroke color %q: %w", m.StrokeColor, err)
	}

	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Coverage: Coverage{
			ULLon: DefaultULLon, ULLat: DefaultULLat,
			LRLon: DefaultLRLon, LRLat: DefaultLRLat,
		},
		Mosaic: Mosaic{
			Format:      "png",
			StrokeColor: "#6cb5e6c8",
			StrokeWidth: 5,
		},
		TilesDir:  "img",
		OSMFile:   "berkeley.osm",
		AssetsDir: "page",
		MaxDepth:  DefaultMaxDepth,
	}
}

// Load reads and parses the YAML configuration file, filling unset fields
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if !cfg.Coverage.BBox().Valid() {
		return nil, fmt.Errorf("coverage box is malformed: %+v", cfg.Coverage)
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("max_depth must be non-negative, got %d", cfg.MaxDepth)
	}
	return cfg, nil
}
