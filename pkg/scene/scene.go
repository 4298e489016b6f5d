// Package scene reads and writes canvas scene files and turns them into
// registered canvas items.
//
// A scene lists explicit items and may add a generated grid of uniform items.
// Scenes are written in TOML or JSON:
//
//	[grid]
//	count = 100
//	cols = 10
//	cell_w = 256
//	cell_h = 256
//	item_w = 128
//	item_h = 64
//
//	[[items]]
//	id = "welcome"
//	x = 40
//	y = 40
//	width = 200
//	height = 80
//	label = "Hello, canvas"
//
//	[[items]]
//	x = 400
//	y = 120
//	measure = "wrap"
//	scale = "render"
//	label = "Sized by its text"
//
// The measure field selects the sizing policy: "sized" (default) uses x, y,
// width and height as final logic bounds, "fixed" treats width and height as
// device-independent units and "wrap" leaves the size to the content. The
// scale field is "measure" (default) or "render".
package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/errors"
)

// Scene file formats.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// Measure policies accepted in scene files.
const (
	MeasureSized = "sized"
	MeasureFixed = "fixed"
	MeasureWrap  = "wrap"
)

// Scale policies accepted in scene files.
const (
	ScaleMeasure = "measure"
	ScaleRender  = "render"
)

// Scene is the content of a scene file.
type Scene struct {
	Grid  *Grid  `toml:"grid,omitempty" json:"grid,omitempty"`
	Items []Item `toml:"items,omitempty" json:"items,omitempty"`
}

// Item is one explicitly placed item.
type Item struct {
	ID      string  `toml:"id,omitempty" json:"id,omitempty"`
	X       float64 `toml:"x" json:"x"`
	Y       float64 `toml:"y" json:"y"`
	Width   float64 `toml:"width,omitempty" json:"width,omitempty"`
	Height  float64 `toml:"height,omitempty" json:"height,omitempty"`
	Z       float64 `toml:"z,omitempty" json:"z,omitempty"`
	Updated int64   `toml:"updated,omitempty" json:"updated,omitempty"`
	Hidden  bool    `toml:"hidden,omitempty" json:"hidden,omitempty"`
	Measure string  `toml:"measure,omitempty" json:"measure,omitempty"`
	Scale   string  `toml:"scale,omitempty" json:"scale,omitempty"`
	Label   string  `toml:"label,omitempty" json:"label,omitempty"`
}

// Layout returns the item's initial stored layout.
func (it Item) Layout() item.Layout {
	l := item.Layout{
		Rect:       geom.R(it.X, it.Y, it.X+it.Width, it.Y+it.Height),
		ZIndex:     it.Z,
		UpdateTime: it.Updated,
		Hidden:     it.Hidden,
	}
	switch it.Measure {
	case MeasureWrap, MeasureFixed:
		l.Rect = geom.FromOrigin(l.Rect.TopLeft(), geom.Size{})
	default:
		l.Measured = true
	}
	return l
}

// MeasurePolicy returns the item's sizing policy. Sized items return nil.
func (it Item) MeasurePolicy() item.Measure {
	switch it.Measure {
	case MeasureFixed:
		return item.Fixed{Width: it.Width, Height: it.Height}
	case MeasureWrap:
		return item.WrapContent{}
	}
	return nil
}

// ScalePolicy returns the item's scale policy.
func (it Item) ScalePolicy() item.Scale {
	if it.Scale == ScaleRender {
		return item.ScaleInRender
	}
	return item.ScaleInMeasure
}

// keyNamespace seeds the deterministic keys of items without an id.
var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/infinicanvas/scene"))

// Key returns the item's registry key: its id, or a UUIDv5 derived from its
// position in the file and its origin.
func (it Item) Key(index int) string {
	if it.ID != "" {
		return it.ID
	}
	name := fmt.Sprintf("%d:%g,%g", index, it.X, it.Y)
	return uuid.NewSHA1(keyNamespace, []byte(name)).String()
}

// Validate checks the scene for values the canvas cannot use.
func (s *Scene) Validate() error {
	if s.Grid != nil {
		if err := s.Grid.Validate(); err != nil {
			return err
		}
	}
	ids := make(map[string]int, len(s.Items))
	for i, it := range s.Items {
		if it.ID != "" {
			if err := errors.ValidateItemID(it.ID); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "item %d", i)
			}
			if prev, ok := ids[it.ID]; ok {
				return errors.New(errors.ErrCodeInvalidScene, "item %d reuses id %q of item %d", i, it.ID, prev)
			}
			ids[it.ID] = i
		}
		for _, f := range []struct {
			name string
			v    float64
		}{{"x", it.X}, {"y", it.Y}, {"z", it.Z}} {
			if err := errors.ValidateFinite(f.name, f.v); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "item %d", i)
			}
		}
		if err := errors.ValidateNonNegative("width", it.Width); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "item %d", i)
		}
		if err := errors.ValidateNonNegative("height", it.Height); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "item %d", i)
		}
		switch it.Measure {
		case "", MeasureSized, MeasureFixed, MeasureWrap:
		default:
			return errors.New(errors.ErrCodeInvalidScene, "item %d: unknown measure %q (must be sized, fixed or wrap)", i, it.Measure)
		}
		switch it.Scale {
		case "", ScaleMeasure, ScaleRender:
		default:
			return errors.New(errors.ErrCodeInvalidScene, "item %d: unknown scale %q (must be measure or render)", i, it.Scale)
		}
	}
	return nil
}

// Parse decodes a scene in the given format and validates it.
func Parse(data []byte, format string) (*Scene, error) {
	var s Scene
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode toml scene")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidScene, "unknown scene key %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode json scene")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q (must be toml or json)", format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scene file. The format follows the file extension: .json is
// JSON, anything else TOML.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", path)
		}
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	s, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// FormatOf returns the scene format implied by a file name.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

// Encode writes the scene in the given format.
func (s *Scene) Encode(w io.Writer, format string) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q (must be toml or json)", format)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
