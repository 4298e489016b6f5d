package viewport

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
)

const (
	// DefaultOverscan is the margin, in render pixels, added around the
	// viewport before culling.
	DefaultOverscan = 256.0

	// DefaultFlingDeceleration is the speed lost per second during a fling,
	// in render pixels per second squared.
	DefaultFlingDeceleration = 6000.0

	// DefaultFlingStopVelocity is the speed, in render pixels per second, at
	// or below which a fling ends.
	DefaultFlingStopVelocity = 10.0

	// DefaultFrameRate is the tick rate of the default frame clock.
	DefaultFrameRate = 60
)

// Config holds the initial state and motion tuning of a viewport.
// Zero fields are replaced by their defaults in New.
type Config struct {
	Scale             float64     // initial scale; 0 means 1
	Translation       geom.Point  // initial translation in render pixels
	Size              geom.Size   // initial viewport size in render pixels
	Overscan          float64     // culling margin in render pixels; negative means none
	FlingDeceleration float64     // px/s²
	FlingStopVelocity float64     // px/s
	Clock             FrameClock  // frame source for flings; nil means a 60 Hz ticker
	Logger            *log.Logger // nil means discard
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() Config {
	return Config{
		Scale:             1,
		Overscan:          DefaultOverscan,
		FlingDeceleration: DefaultFlingDeceleration,
		FlingStopVelocity: DefaultFlingStopVelocity,
	}
}

func (c *Config) setDefaults() {
	if c.Scale == 0 {
		c.Scale = 1
	}
	if c.Overscan < 0 {
		c.Overscan = 0
	}
	if !(c.FlingDeceleration > 0) {
		c.FlingDeceleration = DefaultFlingDeceleration
	}
	if !(c.FlingStopVelocity >= 0) {
		c.FlingStopVelocity = DefaultFlingStopVelocity
	}
	if c.Clock == nil {
		c.Clock = NewTickerClock(DefaultFrameRate)
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}
