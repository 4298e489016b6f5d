// Package geom provides the small set of 2D value types shared by the canvas
// core: points, sizes and axis-aligned rectangles.
//
// All types are plain values with float64 components. Rectangles are stored
// as edges (Left, Top, Right, Bottom) rather than origin plus size, which keeps
// corner-wise mapping between coordinate spaces trivial.
//
// Coordinates grow to the right and downward, matching render space. A
// rectangle whose Right ≤ Left or Bottom ≤ Top is degenerate: it has no area
// and never overlaps anything.
package geom

import "math"

// Unbounded is the placeholder extent used for content that has not reported
// a size yet. It is large enough to cover any realistic viewport while staying
// finite so that it survives arithmetic and JSON encoding.
const Unbounded = float64(math.MaxInt32)

// Point is a 2D point or vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Div returns p divided by s.
func (p Point) Div(s float64) Point {
	return Point{X: p.X / s, Y: p.Y / s}
}

// Length returns the Euclidean length of p.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// Mul returns s with both dimensions scaled by f.
func (s Size) Mul(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// IsEmpty reports whether s has no area.
func (s Size) IsEmpty() bool {
	return !(s.Width > 0 && s.Height > 0)
}

// Rect is an axis-aligned rectangle described by its edges.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// R builds a rectangle from its edges.
func R(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// FromPoints builds the rectangle spanned by two corners, in the given order.
func FromPoints(topLeft, bottomRight Point) Rect {
	return Rect{Left: topLeft.X, Top: topLeft.Y, Right: bottomRight.X, Bottom: bottomRight.Y}
}

// FromOrigin builds a rectangle from its top-left corner and size.
func FromOrigin(topLeft Point, size Size) Rect {
	return Rect{
		Left:   topLeft.X,
		Top:    topLeft.Y,
		Right:  topLeft.X + size.Width,
		Bottom: topLeft.Y + size.Height,
	}
}

// Width returns Right-Left.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Size returns the rectangle's width and height.
func (r Rect) Size() Size { return Size{Width: r.Width(), Height: r.Height()} }

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point { return Point{X: r.Left, Y: r.Top} }

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point { return Point{X: r.Right, Y: r.Bottom} }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// IsEmpty reports whether r is degenerate. NaN edges count as empty.
func (r Rect) IsEmpty() bool {
	return !(r.Right > r.Left && r.Bottom > r.Top)
}

// IsFinite reports whether every edge is a finite number.
func (r Rect) IsFinite() bool {
	return isFinite(r.Left) && isFinite(r.Top) && isFinite(r.Right) && isFinite(r.Bottom)
}

// Overlaps reports whether r and o share a region of positive area.
// Degenerate rectangles never overlap anything.
func (r Rect) Overlaps(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Contains reports whether p lies inside r (left/top inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Left: r.Left + d.X, Top: r.Top + d.Y, Right: r.Right + d.X, Bottom: r.Bottom + d.Y}
}

// Inflate returns r grown by m on every side. Negative m shrinks it.
func (r Rect) Inflate(m float64) Rect {
	return Rect{Left: r.Left - m, Top: r.Top - m, Right: r.Right + m, Bottom: r.Bottom + m}
}

// WithSize returns a rectangle at r's top-left corner with the given size.
func (r Rect) WithSize(s Size) Rect {
	return FromOrigin(r.TopLeft(), s)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
