package visibility

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/core/registry"
	"github.com/matzehuels/infinicanvas/pkg/core/transform"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
)

func prand(n int) float64 {
	return float64((int64(n)*1103515245+12345)&0x7fffffff) / float64(1<<31-1)
}

// jitterGrid places count 128x64 items in 256x256 cells, ten per row.
func jitterGrid(count int) []geom.Rect {
	rects := make([]geom.Rect, count)
	for i := range rects {
		x := float64(i%10)*256 + (256-128)*prand(2*i+7)
		y := float64(i/10)*256 + (256-64)*prand(2*i+13)
		rects[i] = geom.R(x, y, x+128, y+64)
	}
	return rects
}

func snapshot(scale float64, tr geom.Point, w, h, overscan float64) viewport.Snapshot {
	return viewport.Snapshot{
		Transform: transform.New(scale, tr),
		Size:      geom.Sz(w, h),
		Overscan:  overscan,
	}
}

func registerRects(t *testing.T, rects []geom.Rect) *registry.Registry {
	t.Helper()
	reg := registry.New()
	err := reg.Count(len(rects), registry.CountSpec{
		Layout: func(i int) item.Accessor { return item.NewCell(item.Sized(rects[i])) },
	})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func indices(p *Pass) []int {
	out := make([]int, len(p.Items))
	for i, v := range p.Items {
		out[i] = v.Index
	}
	return out
}

func TestJitteredGridMatchesBruteForce(t *testing.T) {
	rects := jitterGrid(100)
	reg := registerRects(t, rects)
	view := geom.R(0, 0, 800, 600)

	var want []int
	for i, r := range rects {
		if r.Overlaps(view) {
			want = append(want, i)
		}
	}

	for _, fullScan := range []bool{false, true} {
		p := NewResolver(Options{FullScan: fullScan}).Resolve(snapshot(1, geom.Point{}, 800, 600, 0), reg)
		if got := indices(p); !slices.Equal(got, want) {
			t.Errorf("fullScan=%v: visible = %v, want %v", fullScan, got, want)
		}
		if p.Registered != 100 {
			t.Errorf("Registered = %d, want 100", p.Registered)
		}
		for _, v := range p.Items {
			if v.RenderRect != rects[v.Index] || v.LogicRect != rects[v.Index] {
				t.Errorf("item %d rects = %v / %v, want %v", v.Index, v.RenderRect, v.LogicRect, rects[v.Index])
			}
		}
	}
}

func TestRandomViewportsMatchBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	rects := make([]geom.Rect, 500)
	for i := range rects {
		x, y := rng.Float64()*8000-4000, rng.Float64()*8000-4000
		rects[i] = geom.R(x, y, x+1+rng.Float64()*600, y+1+rng.Float64()*600)
	}
	reg := registerRects(t, rects)
	res := NewResolver(Options{CellSize: 128})

	for n := 0; n < 50; n++ {
		snap := snapshot(transform.MinScale+rng.Float64()*4,
			geom.Pt(rng.Float64()*4000-2000, rng.Float64()*4000-2000),
			400+rng.Float64()*800, 300+rng.Float64()*600, rng.Float64()*300)
		expanded := snap.Transform.LogicRectToRender(snap.ExpandedLogicRect())

		var want []int
		for i, r := range rects {
			if snap.Transform.LogicRectToRender(r).Overlaps(expanded) {
				want = append(want, i)
			}
		}
		if got := indices(res.Resolve(snap, reg)); !slices.Equal(got, want) {
			t.Fatalf("viewport %d: visible = %v, want %v", n, got, want)
		}
	}
}

func TestOverscan(t *testing.T) {
	// 50 render px right of an 800 px viewport.
	reg := registerRects(t, []geom.Rect{geom.R(425, 0, 450, 10)})
	res := NewResolver(Options{})

	tests := []struct {
		name     string
		overscan float64
		want     int
	}{
		{"no margin", 0, 0},
		{"short margin", 40, 0},
		{"reaching margin", 60, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Scale 2 doubles render distances; the margin stays in render px.
			p := res.Resolve(snapshot(2, geom.Point{}, 800, 600, tt.overscan), reg)
			if len(p.Items) != tt.want {
				t.Errorf("visible = %d, want %d", len(p.Items), tt.want)
			}
		})
	}
}

func TestPaintOrder(t *testing.T) {
	cells := []*item.Cell{
		item.NewCell(item.Layout{Rect: geom.R(0, 0, 10, 10), UpdateTime: 5, Measured: true}),
		item.NewCell(item.Layout{Rect: geom.R(5, 5, 15, 15), UpdateTime: 1, Measured: true}),
		item.NewCell(item.Layout{Rect: geom.R(8, 8, 18, 18), UpdateTime: 5, Measured: true}),
		item.NewCell(item.Layout{Rect: geom.R(1, 1, 4, 4), UpdateTime: 1, Measured: true}),
	}
	reg := registry.New()
	if err := registry.Items(reg, cells, registry.ListSpec[*item.Cell]{
		Layout: func(c *item.Cell) item.Accessor { return c },
	}); err != nil {
		t.Fatal(err)
	}
	res := NewResolver(Options{})
	snap := snapshot(1, geom.Point{}, 100, 100, 0)

	if got, want := indices(res.Resolve(snap, reg)), []int{1, 3, 0, 2}; !slices.Equal(got, want) {
		t.Errorf("paint order = %v, want %v", got, want)
	}

	// Touching brings an item to the front on the next pass.
	cells[1].Touch(9)
	if got, want := indices(res.Resolve(snap, reg)), []int{3, 0, 2, 1}; !slices.Equal(got, want) {
		t.Errorf("paint order after touch = %v, want %v", got, want)
	}
}

func TestHiddenAndDegenerate(t *testing.T) {
	reg := registry.New()
	layouts := []item.Layout{
		{Rect: geom.R(0, 0, 10, 10), Hidden: true, Measured: true},
		{Rect: geom.R(0, 0, 0, 10), Measured: true},
		{Rect: geom.R(20, 20, 10, 10), Measured: true},
		{Rect: geom.R(10, 10, 20, 20), Measured: true},
	}
	err := reg.Count(len(layouts), registry.CountSpec{
		Layout: func(i int) item.Accessor { return item.Static(layouts[i]) },
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, fullScan := range []bool{false, true} {
		p := NewResolver(Options{FullScan: fullScan}).Resolve(snapshot(1, geom.Point{}, 100, 100, 0), reg)
		if got := indices(p); !slices.Equal(got, []int{3}) {
			t.Errorf("fullScan=%v: visible = %v, want [3]", fullScan, got)
		}
	}
}

func TestFixedMeasure(t *testing.T) {
	layouts := []item.Layout{
		item.At(geom.Pt(10, 20)),
		item.Sized(geom.R(0, 0, 300, 300)),
	}
	reg := registry.New()
	err := reg.Count(len(layouts), registry.CountSpec{
		Layout:  func(i int) item.Accessor { return item.Static(layouts[i]) },
		Measure: func(int) item.Measure { return item.Fixed{Width: 50, Height: 30} },
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		scale  float64
		logic  geom.Rect
		render geom.Rect
	}{
		// The render size stays 100x60 (50x30 at density 2) at every scale.
		{"scale 1", 1, geom.R(10, 20, 110, 80), geom.R(15, 25, 115, 85)},
		{"scale 2", 2, geom.R(10, 20, 60, 50), geom.R(25, 45, 125, 105)},
		{"scale 4", 4, geom.R(10, 20, 35, 35), geom.R(45, 85, 145, 145)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewResolver(Options{Density: 2}).Resolve(snapshot(tt.scale, geom.Pt(5, 5), 2000, 2000, 0), reg)
			if len(p.Items) != 2 {
				t.Fatalf("visible = %d, want 2", len(p.Items))
			}

			v, ok := p.Find(registry.PositionKey(0))
			if !ok {
				t.Fatal("unmeasured fixed item not visible")
			}
			if v.LogicRect != tt.logic {
				t.Errorf("LogicRect = %v, want %v", v.LogicRect, tt.logic)
			}
			if v.RenderRect != tt.render {
				t.Errorf("RenderRect = %v, want %v", v.RenderRect, tt.render)
			}
			if want := item.Tight(geom.Sz(100, 60)); v.Constraints != want {
				t.Errorf("Constraints = %+v, want %+v", v.Constraints, want)
			}
			if v.Measured || v.Unbounded {
				t.Errorf("Measured = %v, Unbounded = %v", v.Measured, v.Unbounded)
			}

			// A measured Fixed item keeps its stored rect.
			measured, ok := p.Find(registry.PositionKey(1))
			if !ok {
				t.Fatal("measured fixed item not visible")
			}
			if want := geom.R(0, 0, 300, 300); measured.LogicRect != want || !measured.Measured {
				t.Errorf("measured item = %v (Measured %v), want %v", measured.LogicRect, measured.Measured, want)
			}
		})
	}
}

func TestScaleInRenderConstraints(t *testing.T) {
	reg := registry.New()
	err := reg.Count(1, registry.CountSpec{
		Layout: func(int) item.Accessor { return item.Static(item.Sized(geom.R(0, 0, 100, 40))) },
		Scale:  func(int) item.Scale { return item.ScaleInRender },
	})
	if err != nil {
		t.Fatal(err)
	}

	p := NewResolver(Options{}).Resolve(snapshot(3, geom.Point{}, 800, 600, 0), reg)
	v := p.Items[0]
	if want := item.Tight(geom.Sz(100, 40)); v.Constraints != want {
		t.Errorf("Constraints = %+v, want %+v", v.Constraints, want)
	}
	if want := geom.R(0, 0, 300, 120); v.RenderRect != want {
		t.Errorf("RenderRect = %v, want %v", v.RenderRect, want)
	}
}

func TestIndexCells(t *testing.T) {
	reg := registerRects(t, []geom.Rect{geom.R(0, 0, 300, 10), geom.R(600, 600, 610, 610)})
	res := NewResolver(Options{})
	p := res.Resolve(snapshot(1, geom.Point{}, 800, 600, 0), reg)

	if p.Cells != 3 {
		t.Errorf("Cells = %d, want 3", p.Cells)
	}
	if got := len(res.Buckets()); got != 3 {
		t.Errorf("len(Buckets()) = %d, want 3", got)
	}
	if res.CellSize() != 256 {
		t.Errorf("CellSize() = %v, want 256", res.CellSize())
	}
}

func TestHugeItem(t *testing.T) {
	reg := registerRects(t, []geom.Rect{geom.R(0, 0, 2e6, 2e6), geom.R(10, 10, 20, 20)})
	res := NewResolver(Options{})

	// Viewport in the middle of the huge item, far from the small one.
	p := res.Resolve(snapshot(1, geom.Pt(-1e6, -1e6), 800, 600, 0), reg)
	if got := indices(p); !slices.Equal(got, []int{0}) {
		t.Errorf("visible = %v, want [0]", got)
	}
	if p.Cells != 1 {
		t.Errorf("Cells = %d, want 1", p.Cells)
	}
}
