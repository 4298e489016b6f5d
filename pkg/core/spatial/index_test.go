package spatial

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
)

func TestNewDefaultsCellSize(t *testing.T) {
	for _, size := range []float64{0, -5} {
		if got := New(size).CellSize(); got != DefaultCellSize {
			t.Errorf("New(%v).CellSize() = %v, want %v", size, got, DefaultCellSize)
		}
	}
	if got := New(64).CellSize(); got != 64 {
		t.Errorf("New(64).CellSize() = %v", got)
	}
}

func TestAddSpansCells(t *testing.T) {
	x := New(100)
	x.Add(7, geom.R(50, 50, 250, 120))

	// columns 0..2, rows 0..1
	if got := x.Cells(); got != 6 {
		t.Fatalf("Cells() = %d, want 6", got)
	}
	for _, c := range x.Buckets() {
		if !slices.Equal(c.Items, []int{7}) {
			t.Errorf("cell (%d,%d) = %v, want [7]", c.X, c.Y, c.Items)
		}
	}
}

func TestAddNegativeCoordinates(t *testing.T) {
	x := New(100)
	x.Add(1, geom.R(-150, -10, -120, 10))

	got := x.Buckets()
	want := []Cell{{X: -2, Y: -1, Items: []int{1}}, {X: -2, Y: 0, Items: []int{1}}}
	if len(got) != len(want) {
		t.Fatalf("Buckets() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].X != want[i].X || got[i].Y != want[i].Y {
			t.Errorf("Buckets()[%d] = (%d,%d), want (%d,%d)", i, got[i].X, got[i].Y, want[i].X, want[i].Y)
		}
	}
}

func TestQueryDeduplicates(t *testing.T) {
	x := New(100)
	x.Add(0, geom.R(0, 0, 350, 350))
	x.Add(1, geom.R(10, 10, 20, 20))

	got := x.Query(geom.R(0, 0, 400, 400))
	slices.Sort(got)
	if !slices.Equal(got, []int{0, 1}) {
		t.Errorf("Query() = %v, want [0 1]", got)
	}
}

func TestQueryIgnoresDegenerateInput(t *testing.T) {
	x := New(100)
	x.Add(0, geom.R(10, 10, 0, 0))
	if x.Cells() != 0 {
		t.Errorf("inverted rect should not be indexed")
	}
	if got := x.Query(geom.R(100, 100, 0, 0)); got != nil {
		t.Errorf("Query(inverted) = %v, want nil", got)
	}
}

func TestClear(t *testing.T) {
	x := New(0)
	x.Add(0, geom.R(0, 0, 10, 10))
	x.Clear()
	if got := x.Query(geom.R(0, 0, 10, 10)); len(got) != 0 {
		t.Errorf("Query() after Clear = %v", got)
	}
}

func TestQueryCompleteness(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	randRect := func(extent float64) geom.Rect {
		left := rng.Float64()*4000 - 2000
		top := rng.Float64()*4000 - 2000
		return geom.R(left, top, left+rng.Float64()*extent, top+rng.Float64()*extent)
	}

	for round := 0; round < 50; round++ {
		x := New(128)
		rects := make([]geom.Rect, 200)
		for i := range rects {
			rects[i] = randRect(600)
			x.Add(i, rects[i])
		}

		for q := 0; q < 20; q++ {
			query := randRect(1500)
			got := x.Query(query)

			seen := make(map[int]bool, len(got))
			for _, i := range got {
				if seen[i] {
					t.Fatalf("Query() returned %d twice", i)
				}
				seen[i] = true
			}
			for i, r := range rects {
				if r.Overlaps(query) && !seen[i] {
					t.Fatalf("round %d: item %d %v overlaps %v but was not returned", round, i, r, query)
				}
			}
		}
	}
}

func TestQueryWideRange(t *testing.T) {
	x := New(10)
	x.Add(3, geom.R(1e6, 1e6, 1e6+5, 1e6+5))
	got := x.Query(geom.R(-1e9, -1e9, 1e9, 1e9))
	if !slices.Equal(got, []int{3}) {
		t.Errorf("Query(wide) = %v, want [3]", got)
	}
}

func TestAddOversized(t *testing.T) {
	x := New(0)
	done := make(chan struct{})
	go func() {
		x.Add(0, geom.R(0, 0, 2e6, 2e6))
		x.Add(1, geom.R(10, 10, 20, 20))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Add() did not return for a huge rect")
	}

	if got := x.Oversized(); !slices.Equal(got, []int{0}) {
		t.Errorf("Oversized() = %v, want [0]", got)
	}
	if x.Cells() != 1 {
		t.Errorf("Cells() = %d, want 1", x.Cells())
	}

	tests := []struct {
		name  string
		query geom.Rect
		want  []int
	}{
		{"origin", geom.R(0, 0, 100, 100), []int{1, 0}},
		{"inside the huge rect", geom.R(1e6, 1e6, 1e6+10, 1e6+10), []int{0}},
		{"wide query", geom.R(-1e9, -1e9, 1e9, 1e9), []int{1, 0}},
		{"outside", geom.R(-1000, -1000, -500, -500), nil},
		{"beyond the far edge", geom.R(3e6, 3e6, 3e6+10, 3e6+10), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := x.Query(tt.query); !slices.Equal(got, tt.want) {
				t.Errorf("Query(%v) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}

	x.Clear()
	if len(x.Oversized()) != 0 || x.Query(geom.R(0, 0, 10, 10)) != nil {
		t.Error("Clear() kept the oversized item")
	}
}
