package visibility

import (
	"context"
	"math"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/core/registry"
	"github.com/matzehuels/infinicanvas/pkg/core/transform"
	"github.com/matzehuels/infinicanvas/pkg/observability"
)

// VisibleItem is one item to draw in the current pass.
type VisibleItem struct {
	Index       int              `json:"index"`
	Key         any              `json:"key"`
	ZIndex      float64          `json:"z_index,omitempty"`
	UpdateTime  int64            `json:"update_time"`
	RenderRect  geom.Rect        `json:"render_rect"`
	LogicRect   geom.Rect        `json:"logic_rect"`
	Measured    bool             `json:"measured"`
	Unbounded   bool             `json:"unbounded,omitempty"` // size unknown until reported
	Scale       item.Scale       `json:"-"`
	Constraints item.Constraints `json:"constraints"`
	Content     any              `json:"-"`
}

// Pass is the result of one visibility pass, listed in paint order. It stays
// valid after the registry is reset for the next pass.
type Pass struct {
	Transform  transform.Transform `json:"transform"`
	Viewport   geom.Rect           `json:"viewport"` // logic viewport without overscan
	Expanded   geom.Rect           `json:"expanded"` // logic viewport with overscan
	Registered int                 `json:"registered"`
	Candidates int                 `json:"candidates"`
	Cells      int                 `json:"cells"`
	Items      []VisibleItem       `json:"items"`

	entries []registry.Entry
}

// Find returns the visible item registered under key.
func (p *Pass) Find(key any) (VisibleItem, bool) {
	for _, v := range p.Items {
		if v.Key == key {
			return v, true
		}
	}
	return VisibleItem{}, false
}

// HitTest returns the topmost visible item whose render rect contains pt.
func (p *Pass) HitTest(pt geom.Point) (VisibleItem, bool) {
	for i := len(p.Items) - 1; i >= 0; i-- {
		if p.Items[i].RenderRect.Contains(pt) {
			return p.Items[i], true
		}
	}
	return VisibleItem{}, false
}

// ReportMeasured records the content size of an unmeasured WrapContent item.
//
// For ScaleInMeasure content the size is in render pixels and is converted to
// logic units with the pass transform, anchored at the item's render
// top-left. For ScaleInRender content the size is already in logic units.
// The item's stored rect is replaced, it is marked measured, its update time
// is kept, and its OnMeasured callback receives the new rect.
//
// ReportMeasured reports whether anything was persisted. It ignores unknown
// indices, items that are not WrapContent or already measured, and negative
// or non-finite sizes.
func (p *Pass) ReportMeasured(index int, size geom.Size) bool {
	if index < 0 || index >= len(p.entries) {
		return false
	}
	if !validSize(size) {
		return false
	}
	e := p.entries[index]
	wrap, ok := e.Measure.(item.WrapContent)
	if !ok {
		return false
	}
	l := e.Layout.Get()
	if l.Measured {
		return false
	}

	topLeft := l.Rect.TopLeft()
	if e.Scale == item.ScaleInRender {
		l.Rect = geom.FromOrigin(topLeft, size)
	} else {
		renderTopLeft := p.Transform.LogicToRender(topLeft)
		l.Rect = p.Transform.RenderRectToLogic(geom.FromOrigin(renderTopLeft, size))
	}
	l.Measured = true
	e.Layout.Set(l)

	if wrap.OnMeasured != nil {
		wrap.OnMeasured(l.Rect)
	}
	observability.Pass().OnMeasured(context.Background(), index)
	return true
}

func validSize(s geom.Size) bool {
	return s.Width >= 0 && s.Height >= 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}
