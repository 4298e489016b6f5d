package scene

import (
	"math"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/errors"
)

// Grid generates count items laid out row by row, cols per row, each placed
// at a deterministic jittered offset inside its cell.
type Grid struct {
	Count int     `toml:"count" json:"count"`
	Cols  int     `toml:"cols" json:"cols"`
	CellW float64 `toml:"cell_w" json:"cell_w"`
	CellH float64 `toml:"cell_h" json:"cell_h"`
	ItemW float64 `toml:"item_w" json:"item_w"`
	ItemH float64 `toml:"item_h" json:"item_h"`
}

// DemoGrid returns the 10x10 grid of 128x64 items in 256-unit cells.
func DemoGrid() Grid {
	return Grid{Count: 100, Cols: 10, CellW: 256, CellH: 256, ItemW: 128, ItemH: 64}
}

// Validate checks the grid dimensions.
func (g Grid) Validate() error {
	if g.Count < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "grid count must not be negative, got %d", g.Count)
	}
	if g.Cols <= 0 {
		return errors.New(errors.ErrCodeInvalidScene, "grid cols must be positive, got %d", g.Cols)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"cell_w", g.CellW}, {"cell_h", g.CellH}, {"item_w", g.ItemW}, {"item_h", g.ItemH}} {
		if !isFinite(f.v) || f.v <= 0 {
			return errors.New(errors.ErrCodeInvalidScene, "grid %s must be positive, got %v", f.name, f.v)
		}
	}
	return nil
}

// Rect returns the logic bounds of grid item i.
func (g Grid) Rect(i int) geom.Rect {
	col, row := i%g.Cols, i/g.Cols
	x := float64(col)*g.CellW + (g.CellW-g.ItemW)*Jitter(2*i+7)
	y := float64(row)*g.CellH + (g.CellH-g.ItemH)*Jitter(2*i+13)
	return geom.R(x, y, x+g.ItemW, y+g.ItemH)
}

// Jitter is a deterministic pseudo-random value in [0, 1] derived from n by
// one linear congruential step.
func Jitter(n int) float64 {
	v := (int64(n)*1103515245 + 12345) & 0x7fffffff
	return float64(v) / math.MaxInt32
}
