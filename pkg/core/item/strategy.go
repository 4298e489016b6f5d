package item

import (
	"fmt"
	"math"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
)

// Measure is the sizing policy of an item: [Fixed] or [WrapContent].
type Measure interface {
	fmt.Stringer
	measure()
}

// Fixed sizes an unmeasured item in device-independent units. The resolver
// multiplies by the display density to get render pixels, so the item keeps
// its on-screen size at every zoom level.
type Fixed struct {
	Width, Height float64
}

func (Fixed) measure() {}

func (f Fixed) String() string { return fmt.Sprintf("fixed(%gx%g)", f.Width, f.Height) }

// Size returns the fixed size at the given density.
func (f Fixed) Size(density float64) geom.Size {
	return geom.Sz(f.Width*density, f.Height*density)
}

// WrapContent sizes an item by its content. Until a size is reported the item
// is laid out unbounded; once reported, OnMeasured receives the persisted
// logic rect.
type WrapContent struct {
	OnMeasured func(geom.Rect)
}

func (WrapContent) measure() {}

func (WrapContent) String() string { return "wrap" }

// Scale selects how an item's content follows the canvas zoom.
type Scale int

const (
	// ScaleInMeasure lays content out at its on-screen pixel size. Sharp at
	// any zoom, but content is re-measured whenever the scale changes.
	ScaleInMeasure Scale = iota

	// ScaleInRender lays content out once in logic units and scales it
	// uniformly when painting.
	ScaleInRender
)

func (s Scale) String() string {
	if s == ScaleInRender {
		return "render"
	}
	return "measure"
}

// Constraints bound the size content may take, in the units of the item's
// scale strategy.
type Constraints struct {
	MinWidth  float64 `json:"min_width"`
	MaxWidth  float64 `json:"max_width"`
	MinHeight float64 `json:"min_height"`
	MaxHeight float64 `json:"max_height"`
}

// Tight returns constraints that admit exactly s. Negative sizes clamp to 0.
func Tight(s geom.Size) Constraints {
	w, h := math.Max(0, s.Width), math.Max(0, s.Height)
	return Constraints{MinWidth: w, MaxWidth: w, MinHeight: h, MaxHeight: h}
}

// Loose returns constraints admitting anything from zero up to s.
func Loose(s geom.Size) Constraints {
	return Constraints{MaxWidth: math.Max(0, s.Width), MaxHeight: math.Max(0, s.Height)}
}

// IsTight reports whether exactly one size satisfies c.
func (c Constraints) IsTight() bool {
	return c.MinWidth == c.MaxWidth && c.MinHeight == c.MaxHeight
}

// IsBounded reports whether both maxima are finite and below geom.Unbounded.
func (c Constraints) IsBounded() bool {
	return c.MaxWidth < geom.Unbounded && c.MaxHeight < geom.Unbounded
}

// Constrain clamps s into c.
func (c Constraints) Constrain(s geom.Size) geom.Size {
	return geom.Sz(
		math.Min(math.Max(s.Width, c.MinWidth), c.MaxWidth),
		math.Min(math.Max(s.Height, c.MinHeight), c.MaxHeight),
	)
}
