package sink

import (
	"fmt"
	"math"

	"github.com/gogpu/gg/text"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/spatial"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
)

// Option configures a sink.
type Option func(*options)

type options struct {
	label      func(visibility.VisibleItem) string
	cells      []spatial.Cell
	cellSize   float64
	overscan   bool
	background string
	font       *text.FontSource
}

// WithLabels sets the label drawn inside each item.
func WithLabels(fn func(visibility.VisibleItem) string) Option {
	return func(o *options) { o.label = fn }
}

// WithCells overlays the non-empty index cells, given in logic units.
func WithCells(cells []spatial.Cell, cellSize float64) Option {
	return func(o *options) { o.cells, o.cellSize = cells, cellSize }
}

// WithOverscan outlines the overscan area.
func WithOverscan() Option { return func(o *options) { o.overscan = true } }

// WithFont sets the font PNG labels are drawn with. Without one, PNG output
// has no labels.
func WithFont(src *text.FontSource) Option { return func(o *options) { o.font = src } }

// WithBackground sets the background color as a hex string.
func WithBackground(hex string) Option { return func(o *options) { o.background = hex } }

func newOptions(opts ...Option) options {
	o := options{label: keyLabel, background: "#fafafa"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func keyLabel(v visibility.VisibleItem) string {
	return fmt.Sprint(v.Key)
}

var palette = []string{"#8ecae6", "#ffb703", "#90be6d", "#f4a261", "#cdb4db", "#a8dadc", "#e9c46a"}

func fillColor(v visibility.VisibleItem) string {
	return palette[v.Index%len(palette)]
}

const (
	labelSize = 12.0 // label font size in render pixels

	strokeColor    = "#333333"
	unboundedColor = "#999999"
	cellColor      = "#d0d0d0"
	overscanColor  = "#e76f51"
)

// frame returns the render size of the viewport the pass was resolved for.
func frame(p *visibility.Pass) geom.Size {
	s := p.Transform.LogicRectToRender(p.Viewport).Size()
	return geom.Sz(math.Round(s.Width), math.Round(s.Height))
}

// drawRect returns where an item is drawn. Unbounded items are cut at the
// overscan area so they stay drawable.
func drawRect(p *visibility.Pass, v visibility.VisibleItem) geom.Rect {
	if !v.Unbounded {
		return v.RenderRect
	}
	limit := p.Transform.LogicRectToRender(p.Expanded)
	r := v.RenderRect
	r.Right = math.Min(r.Right, limit.Right)
	r.Bottom = math.Min(r.Bottom, limit.Bottom)
	return r
}

// cellRects returns the render rects of the overlaid index cells.
func (o options) cellRects(p *visibility.Pass) []geom.Rect {
	if o.cellSize <= 0 {
		return nil
	}
	rects := make([]geom.Rect, 0, len(o.cells))
	for _, c := range o.cells {
		logic := geom.R(float64(c.X)*o.cellSize, float64(c.Y)*o.cellSize,
			float64(c.X+1)*o.cellSize, float64(c.Y+1)*o.cellSize)
		rects = append(rects, p.Transform.LogicRectToRender(logic))
	}
	return rects
}
