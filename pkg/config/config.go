// Package config loads canvas defaults from a TOML file.
//
// Every field is optional; missing values keep the defaults below. A typical
// file:
//
//	[viewport]
//	scale = 1.0
//	overscan = 256
//	width = 1280
//	height = 800
//
//	[fling]
//	deceleration = 6000
//	stop_velocity = 10
//	frame_rate = 60
//
//	[index]
//	cell_size = 256
//	full_scan = false
//
//	[render]
//	density = 1.0
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/infinicanvas/pkg/canvas"
	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/spatial"
	"github.com/matzehuels/infinicanvas/pkg/core/transform"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
	"github.com/matzehuels/infinicanvas/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default viewport width in render pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in render pixels.
	DefaultHeight = 600.0

	// DefaultDensity maps one device-independent unit to one logic unit.
	DefaultDensity = 1.0
)

// =============================================================================
// Config
// =============================================================================

// Config is the parsed configuration file.
type Config struct {
	Viewport Viewport `toml:"viewport"`
	Fling    Fling    `toml:"fling"`
	Index    Index    `toml:"index"`
	Render   Render   `toml:"render"`
}

// Viewport holds the initial viewport.
type Viewport struct {
	Scale    float64 `toml:"scale"`
	Overscan float64 `toml:"overscan"`
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
}

// Fling holds inertial scrolling parameters.
type Fling struct {
	Deceleration float64 `toml:"deceleration"`
	StopVelocity float64 `toml:"stop_velocity"`
	FrameRate    int     `toml:"frame_rate"`
}

// Index holds spatial index settings.
type Index struct {
	CellSize float64 `toml:"cell_size"`
	FullScan bool    `toml:"full_scan"`
}

// Render holds measurement settings.
type Render struct {
	Density float64 `toml:"density"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Viewport: Viewport{
			Scale:    1,
			Overscan: viewport.DefaultOverscan,
			Width:    DefaultWidth,
			Height:   DefaultHeight,
		},
		Fling: Fling{
			Deceleration: viewport.DefaultFlingDeceleration,
			StopVelocity: viewport.DefaultFlingStopVelocity,
			FrameRate:    viewport.DefaultFrameRate,
		},
		Index:  Index{CellSize: spatial.DefaultCellSize},
		Render: Render{Density: DefaultDensity},
	}
}

// Load reads and validates the file at path. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value is usable.
func (c *Config) Validate() error {
	checks := []error{
		errors.ValidatePositive("viewport.scale", c.Viewport.Scale),
		errors.ValidateNonNegative("viewport.overscan", c.Viewport.Overscan),
		errors.ValidatePositive("viewport.width", c.Viewport.Width),
		errors.ValidatePositive("viewport.height", c.Viewport.Height),
		errors.ValidatePositive("fling.deceleration", c.Fling.Deceleration),
		errors.ValidateNonNegative("fling.stop_velocity", c.Fling.StopVelocity),
		errors.ValidatePositive("index.cell_size", c.Index.CellSize),
		errors.ValidatePositive("render.density", c.Render.Density),
	}
	for _, err := range checks {
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
		}
	}
	if c.Viewport.Scale < transform.MinScale {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.scale must be at least %v, got %v", transform.MinScale, c.Viewport.Scale)
	}
	if c.Fling.FrameRate <= 0 || c.Fling.FrameRate > 1000 {
		return errors.New(errors.ErrCodeInvalidConfig, "fling.frame_rate must be in 1..1000, got %d", c.Fling.FrameRate)
	}
	return nil
}

// Canvas converts the configuration into canvas settings. The frame clock
// ticks at the configured rate.
func (c *Config) Canvas() canvas.Config {
	return canvas.Config{
		Viewport: viewport.Config{
			Scale:             c.Viewport.Scale,
			Size:              geom.Sz(c.Viewport.Width, c.Viewport.Height),
			Overscan:          c.Viewport.Overscan,
			FlingDeceleration: c.Fling.Deceleration,
			FlingStopVelocity: c.Fling.StopVelocity,
			Clock:             viewport.NewTickerClock(c.Fling.FrameRate),
		},
		CellSize: c.Index.CellSize,
		FullScan: c.Index.FullScan,
		Density:  c.Render.Density,
	}
}
