// Package spatial implements the uniform-grid index used to cull canvas items.
//
// The logic plane is divided into square cells of a fixed size. Each item is
// recorded in every cell its rectangle touches, so an item spanning several
// cells appears in all of them. A query unions the buckets of every cell the
// query rectangle touches and deduplicates the result. This guarantees
// completeness: every item whose rectangle overlaps the query is returned.
// The result may also contain items that merely share a cell with the query,
// so callers still run an exact overlap test.
//
// An item covering more than MaxItemCells cells is kept in a separate
// oversized list instead of the grid, and every query whose cell range meets
// the item's returns it.
//
// The index holds no state across layout passes: it is cleared and refilled
// once per pass.
//
// Thread safety: Index is NOT safe for concurrent use.
package spatial

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
)

// DefaultCellSize is the cell edge length, in logic units, used when none is
// configured.
const DefaultCellSize = 256.0

// MaxItemCells is the largest number of cells one item is recorded in.
const MaxItemCells = 4096

// Index is a uniform grid mapping cells to item indices.
type Index struct {
	cellSize  float64
	buckets   map[int64][]int
	oversized []span
}

// span is an oversized item and its inclusive cell range.
type span struct {
	index                  int
	minX, minY, maxX, maxY int
}

// Cell is a snapshot of one non-empty grid cell.
type Cell struct {
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Items []int `json:"items"`
}

// New returns an empty index. A non-positive or non-finite cellSize falls
// back to DefaultCellSize.
func New(cellSize float64) *Index {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		cellSize = DefaultCellSize
	}
	return &Index{cellSize: cellSize, buckets: make(map[int64][]int)}
}

// CellSize returns the configured cell edge length.
func (x *Index) CellSize() float64 {
	return x.cellSize
}

// Clear drops every bucket.
func (x *Index) Clear() {
	clear(x.buckets)
	x.oversized = x.oversized[:0]
}

// Add records index in every cell covered by rect. Rectangles with
// non-finite or inverted edges are ignored.
func (x *Index) Add(index int, rect geom.Rect) {
	if !rect.IsFinite() || rect.Right < rect.Left || rect.Bottom < rect.Top {
		return
	}
	minX, minY, maxX, maxY := x.cellRange(rect)
	if cellCount(minX, minY, maxX, maxY) > MaxItemCells {
		x.oversized = append(x.oversized, span{index, minX, minY, maxX, maxY})
		return
	}
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			key := pack(cx, cy)
			x.buckets[key] = append(x.buckets[key], index)
		}
	}
}

// Query returns the indices recorded in any cell covered by rect, without
// duplicates, in first-seen order. A non-finite or inverted rect yields nil.
func (x *Index) Query(rect geom.Rect) []int {
	if !rect.IsFinite() || rect.Right < rect.Left || rect.Bottom < rect.Top {
		return nil
	}
	minX, minY, maxX, maxY := x.cellRange(rect)

	seen := make(map[int]struct{})
	var out []int
	take := func(i int) {
		if _, ok := seen[i]; !ok {
			seen[i] = struct{}{}
			out = append(out, i)
		}
	}
	visit := func(bucket []int) {
		for _, i := range bucket {
			take(i)
		}
	}

	// A query wider than the populated grid walks the buckets instead of
	// every empty cell in its range.
	if cellCount(minX, minY, maxX, maxY) > float64(len(x.buckets)) {
		for _, c := range x.Buckets() {
			if c.X >= minX && c.X <= maxX && c.Y >= minY && c.Y <= maxY {
				visit(c.Items)
			}
		}
	} else {
		for cx := minX; cx <= maxX; cx++ {
			for cy := minY; cy <= maxY; cy++ {
				visit(x.buckets[pack(cx, cy)])
			}
		}
	}

	for _, o := range x.oversized {
		if o.minX <= maxX && o.maxX >= minX && o.minY <= maxY && o.maxY >= minY {
			take(o.index)
		}
	}
	return out
}

// Oversized returns the indices kept outside the grid, in insertion order.
func (x *Index) Oversized() []int {
	out := make([]int, len(x.oversized))
	for i, o := range x.oversized {
		out[i] = o.index
	}
	return out
}

// Cells returns the number of non-empty cells.
func (x *Index) Cells() int {
	return len(x.buckets)
}

// Buckets returns a snapshot of the non-empty cells ordered by row, then
// column. The item slices are copies.
func (x *Index) Buckets() []Cell {
	cells := make([]Cell, 0, len(x.buckets))
	for key, items := range x.buckets {
		cx, cy := unpack(key)
		cells = append(cells, Cell{X: cx, Y: cy, Items: slices.Clone(items)})
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return cells
}

func (x *Index) cellRange(r geom.Rect) (minX, minY, maxX, maxY int) {
	return x.cell(r.Left), x.cell(r.Top), x.cell(r.Right), x.cell(r.Bottom)
}

func (x *Index) cell(coord float64) int {
	c := math.Floor(coord / x.cellSize)
	switch {
	case c > math.MaxInt32:
		return math.MaxInt32
	case c < math.MinInt32:
		return math.MinInt32
	}
	return int(c)
}

func cellCount(minX, minY, maxX, maxY int) float64 {
	return (float64(maxX) - float64(minX) + 1) * (float64(maxY) - float64(minY) + 1)
}

func pack(cx, cy int) int64 {
	return int64(cx)<<32 | int64(uint32(int32(cy)))
}

func unpack(key int64) (cx, cy int) {
	return int(int32(key >> 32)), int(int32(uint32(key)))
}
