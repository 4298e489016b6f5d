package visibility

import (
	"math"
	"testing"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/core/registry"
)

func wrapRegistry(t *testing.T, cell *item.Cell, scale item.Scale, onMeasured func(geom.Rect)) *registry.Registry {
	t.Helper()
	reg := registry.New()
	err := reg.Count(1, registry.CountSpec{
		Key:     func(int) any { return "wrapped" },
		Layout:  func(int) item.Accessor { return cell },
		Measure: func(int) item.Measure { return item.WrapContent{OnMeasured: onMeasured} },
		Scale:   func(int) item.Scale { return scale },
	})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestWrapContentMeasurement(t *testing.T) {
	cell := item.NewCell(item.Layout{Rect: geom.R(50, 50, 50, 50), UpdateTime: 7})
	var reported []geom.Rect
	reg := wrapRegistry(t, cell, item.ScaleInMeasure, func(r geom.Rect) { reported = append(reported, r) })
	res := NewResolver(Options{})
	snap := snapshot(1, geom.Point{}, 800, 600, 0)

	first := res.Resolve(snap, reg)
	if len(first.Items) != 1 {
		t.Fatalf("visible = %d, want 1", len(first.Items))
	}
	v := first.Items[0]
	if !v.Unbounded || v.Measured {
		t.Errorf("first pass Unbounded = %v, Measured = %v", v.Unbounded, v.Measured)
	}
	if v.RenderRect.TopLeft() != geom.Pt(50, 50) || v.RenderRect.Width() != geom.Unbounded {
		t.Errorf("first pass RenderRect = %v", v.RenderRect)
	}
	if v.Constraints.IsBounded() {
		t.Errorf("first pass Constraints = %+v, want unbounded", v.Constraints)
	}

	if !first.ReportMeasured(v.Index, geom.Sz(200, 100)) {
		t.Fatal("ReportMeasured() = false")
	}
	got := cell.Get()
	if want := geom.R(50, 50, 250, 150); got.Rect != want || !got.Measured {
		t.Errorf("stored layout = %+v, want rect %v measured", got, want)
	}
	if got.UpdateTime != 7 {
		t.Errorf("UpdateTime = %d, want 7", got.UpdateTime)
	}
	if len(reported) != 1 || reported[0] != got.Rect {
		t.Errorf("OnMeasured calls = %v", reported)
	}

	if first.ReportMeasured(v.Index, geom.Sz(1, 1)) {
		t.Error("second ReportMeasured() = true")
	}

	second := res.Resolve(snap, reg)
	if len(second.Items) != 1 {
		t.Fatalf("visible = %d, want 1", len(second.Items))
	}
	if v := second.Items[0]; v.Unbounded || !v.Measured || v.LogicRect != geom.R(50, 50, 250, 150) {
		t.Errorf("second pass item = %+v", v)
	}
}

func TestReportMeasuredScaled(t *testing.T) {
	tests := []struct {
		name  string
		scale item.Scale
		want  geom.Rect
	}{
		// Render px (200x100) at scale 2 become 100x50 logic units.
		{"measure", item.ScaleInMeasure, geom.R(10, 10, 110, 60)},
		// Content already measured in logic units.
		{"render", item.ScaleInRender, geom.R(10, 10, 210, 110)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := item.NewCell(item.At(geom.Pt(10, 10)))
			reg := wrapRegistry(t, cell, tt.scale, nil)
			p := NewResolver(Options{}).Resolve(snapshot(2, geom.Pt(-7, 3), 800, 600, 0), reg)

			if !p.ReportMeasured(0, geom.Sz(200, 100)) {
				t.Fatal("ReportMeasured() = false")
			}
			got := cell.Get().Rect
			if math.Abs(got.Left-tt.want.Left) > 1e-9 || math.Abs(got.Top-tt.want.Top) > 1e-9 ||
				math.Abs(got.Right-tt.want.Right) > 1e-9 || math.Abs(got.Bottom-tt.want.Bottom) > 1e-9 {
				t.Errorf("stored rect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReportMeasuredRejects(t *testing.T) {
	reg := registry.New()
	fixed := item.NewCell(item.At(geom.Point{}))
	plain := item.NewCell(item.Sized(geom.R(0, 0, 10, 10)))
	wrapped := item.NewCell(item.At(geom.Point{}))
	err := registry.Items(reg, []*item.Cell{fixed, plain, wrapped}, registry.ListSpec[*item.Cell]{
		Layout: func(c *item.Cell) item.Accessor { return c },
		Measure: func(c *item.Cell) item.Measure {
			switch c {
			case fixed:
				return item.Fixed{Width: 10, Height: 10}
			case wrapped:
				return item.WrapContent{}
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	p := NewResolver(Options{}).Resolve(snapshot(1, geom.Point{}, 100, 100, 0), reg)

	tests := []struct {
		name  string
		index int
		size  geom.Size
	}{
		{"fixed item", 0, geom.Sz(5, 5)},
		{"presized item", 1, geom.Sz(5, 5)},
		{"unknown index", 3, geom.Sz(5, 5)},
		{"negative index", -1, geom.Sz(5, 5)},
		{"negative size", 2, geom.Sz(-1, 5)},
		{"nan size", 2, geom.Sz(math.NaN(), 5)},
		{"inf size", 2, geom.Sz(5, math.Inf(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p.ReportMeasured(tt.index, tt.size) {
				t.Error("ReportMeasured() = true")
			}
		})
	}
	if wrapped.Get().Measured {
		t.Error("rejected report marked the item measured")
	}
}

func TestUnmeasuredOffscreen(t *testing.T) {
	// Unbounded items extend right and down only.
	cell := item.NewCell(item.At(geom.Pt(900, 0)))
	reg := wrapRegistry(t, cell, item.ScaleInMeasure, nil)

	p := NewResolver(Options{}).Resolve(snapshot(1, geom.Point{}, 800, 600, 0), reg)
	if len(p.Items) != 0 {
		t.Errorf("visible = %d, want 0", len(p.Items))
	}
	if p.Candidates != 1 {
		t.Errorf("Candidates = %d, want 1", p.Candidates)
	}

	above := item.NewCell(item.At(geom.Pt(-5000, -5000)))
	p = NewResolver(Options{}).Resolve(snapshot(1, geom.Point{}, 800, 600, 0), wrapRegistry(t, above, item.ScaleInMeasure, nil))
	if len(p.Items) != 1 {
		t.Errorf("visible = %d, want 1", len(p.Items))
	}
}

func TestPassFind(t *testing.T) {
	cell := item.NewCell(item.Sized(geom.R(0, 0, 10, 10)))
	reg := registry.New()
	if err := registry.Items(reg, []string{"a"}, registry.ListSpec[string]{
		Layout: func(string) item.Accessor { return cell },
	}); err != nil {
		t.Fatal(err)
	}
	p := NewResolver(Options{}).Resolve(snapshot(1, geom.Point{}, 100, 100, 0), reg)
	if _, ok := p.Find("a"); !ok {
		t.Error("Find(a) missing")
	}
	if _, ok := p.Find("b"); ok {
		t.Error("Find(b) found")
	}

	// The pass outlives a registry reset.
	reg.Reset()
	if len(p.Items) != 1 || p.Registered != 1 {
		t.Errorf("pass changed after Reset: %+v", p)
	}
}

func TestHitTest(t *testing.T) {
	cells := []*item.Cell{
		item.NewCell(item.Layout{Rect: geom.R(0, 0, 100, 100), UpdateTime: 2, Measured: true}),
		item.NewCell(item.Layout{Rect: geom.R(50, 50, 150, 150), UpdateTime: 1, Measured: true}),
	}
	reg := registry.New()
	if err := registry.Items(reg, cells, registry.ListSpec[*item.Cell]{
		Layout: func(c *item.Cell) item.Accessor { return c },
	}); err != nil {
		t.Fatal(err)
	}
	p := NewResolver(Options{}).Resolve(snapshot(1, geom.Point{}, 400, 400, 0), reg)

	tests := []struct {
		pt   geom.Point
		want int
		ok   bool
	}{
		{geom.Pt(75, 75), 0, true}, // overlap: the more recent item paints on top
		{geom.Pt(120, 120), 1, true},
		{geom.Pt(300, 300), 0, false},
	}
	for _, tt := range tests {
		v, ok := p.HitTest(tt.pt)
		if ok != tt.ok || (ok && v.Index != tt.want) {
			t.Errorf("HitTest(%v) = %d, %v; want %d, %v", tt.pt, v.Index, ok, tt.want, tt.ok)
		}
	}
}
