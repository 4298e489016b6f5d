// Package transform maps between logic (canvas) space and render (pixel)
// space.
//
// A [Transform] is a uniform scale followed by a translation:
//
//	render = logic*Scale + Translation
//	logic  = (render - Translation) / Scale
//
// Scale is floor-clamped to [MinScale] when a Transform is built with [New],
// so the inverse mapping never divides by zero or flips orientation.
// Transform values are immutable; the viewport creates a new one on every
// state change.
package transform

import "github.com/matzehuels/infinicanvas/pkg/core/geom"

// MinScale is the smallest scale a Transform can carry.
const MinScale = 0.1

// Transform is a logic↔render mapping.
type Transform struct {
	Scale       float64    `json:"scale"`
	Translation geom.Point `json:"translation"`
}

// New returns a Transform with scale clamped to MinScale. A NaN scale is
// treated as MinScale as well.
func New(scale float64, translation geom.Point) Transform {
	return Transform{Scale: ClampScale(scale), Translation: translation}
}

// Identity returns the transform with scale 1 and no translation.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ClampScale floor-clamps s to MinScale.
func ClampScale(s float64) float64 {
	if !(s >= MinScale) {
		return MinScale
	}
	return s
}

// LogicToRender maps a logic-space point to render space.
func (t Transform) LogicToRender(p geom.Point) geom.Point {
	return p.Mul(t.Scale).Add(t.Translation)
}

// RenderToLogic maps a render-space point to logic space.
func (t Transform) RenderToLogic(p geom.Point) geom.Point {
	return p.Sub(t.Translation).Div(t.Scale)
}

// LogicRectToRender maps both corners of a logic-space rectangle.
func (t Transform) LogicRectToRender(r geom.Rect) geom.Rect {
	return geom.FromPoints(t.LogicToRender(r.TopLeft()), t.LogicToRender(r.BottomRight()))
}

// RenderRectToLogic maps both corners of a render-space rectangle.
func (t Transform) RenderRectToLogic(r geom.Rect) geom.Rect {
	return geom.FromPoints(t.RenderToLogic(r.TopLeft()), t.RenderToLogic(r.BottomRight()))
}

// ViewportLogicRect returns the logic-space rectangle visible through a
// viewport of the given render size anchored at the render origin.
func (t Transform) ViewportLogicRect(size geom.Size) geom.Rect {
	return t.RenderRectToLogic(geom.R(0, 0, size.Width, size.Height))
}
