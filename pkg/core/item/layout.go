// Package item describes a single canvas item: where it sits in logic space,
// how it is sized and how its content is scaled.
//
// The embedding surface owns each item's [Layout]. The core reads and writes
// it through an [Accessor] supplied at registration, so a layout can live in
// whatever state holder the surface already uses. [Cell] is a ready-made
// mutable holder and [Static] a read-only one.
package item

import (
	"math"
	"sync"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
)

// Layout is the stored placement of one item.
type Layout struct {
	Rect       geom.Rect `json:"rect"`               // logic-space bounds
	ZIndex     float64   `json:"z_index,omitempty"`  // carried through to paint
	UpdateTime int64     `json:"update_time"`        // recency stamp for paint order
	Hidden     bool      `json:"hidden,omitempty"`   // never visible while set
	Measured   bool      `json:"measured,omitempty"` // WrapContent size is known
}

// At returns a visible, unmeasured layout with its top-left at p.
func At(p geom.Point) Layout {
	return Layout{Rect: geom.FromOrigin(p, geom.Size{})}
}

// Sized returns a visible layout for an item whose bounds are already known.
func Sized(r geom.Rect) Layout {
	return Layout{Rect: r, Measured: true}
}

// Accessor reads and writes the stored Layout of one item.
type Accessor interface {
	Get() Layout
	Set(Layout)
}

// Cell is a mutable Layout holder safe for concurrent use.
type Cell struct {
	mu sync.RWMutex
	l  Layout
}

// NewCell returns a Cell holding l.
func NewCell(l Layout) *Cell {
	return &Cell{l: l}
}

// Get returns the current layout.
func (c *Cell) Get() Layout {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.l
}

// Set replaces the layout.
func (c *Cell) Set(l Layout) {
	c.mu.Lock()
	c.l = l
	c.mu.Unlock()
}

// Update applies fn to the layout atomically and returns the result.
func (c *Cell) Update(fn func(*Layout)) Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.l)
	return c.l
}

// Touch stamps the layout with now, which brings the item to the top of the
// paint order on the next pass.
func (c *Cell) Touch(now int64) {
	c.Update(func(l *Layout) { l.UpdateTime = now })
}

// Invalidate marks the layout unmeasured so a WrapContent item is measured
// again on the next pass.
func (c *Cell) Invalidate() {
	c.Update(func(l *Layout) { l.Measured = false })
}

// Static is a read-only Accessor. Writes are dropped.
type Static Layout

// Get returns the layout.
func (s Static) Get() Layout { return Layout(s) }

// Set does nothing.
func (Static) Set(Layout) {}

// DragOffset moves l by a drag offset reported in the item's content
// coordinates. Content laid out at scaled size (ScaleInMeasure) reports
// render pixels, which are divided by scale; content scaled at paint time
// (ScaleInRender) already reports logic units.
func DragOffset(l Layout, offset geom.Point, scale float64, strategy Scale) Layout {
	if !offset.IsFinite() {
		return l
	}
	if strategy == ScaleInMeasure {
		if !(scale > 0) || math.IsInf(scale, 0) {
			return l
		}
		offset = offset.Div(scale)
	}
	l.Rect = l.Rect.Translate(offset)
	return l
}
