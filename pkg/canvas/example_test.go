package canvas_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infinicanvas/pkg/canvas"
	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/core/registry"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
)

func Example() {
	c := canvas.New(canvas.Config{Viewport: viewport.Config{Size: geom.Sz(800, 600)}}, log.New(io.Discard))

	notes := []*item.Cell{
		item.NewCell(item.Sized(geom.R(100, 100, 300, 200))),
		item.NewCell(item.Sized(geom.R(5000, 5000, 5200, 5100))),
		item.NewCell(item.At(geom.Pt(400, 300))),
	}
	build := func(r *registry.Registry) error {
		return registry.Items(r, notes, registry.ListSpec[*item.Cell]{
			Layout: func(n *item.Cell) item.Accessor { return n },
			Measure: func(n *item.Cell) item.Measure {
				if n == notes[2] {
					return item.WrapContent{}
				}
				return nil
			},
		})
	}

	// Zoom in around the centre of the screen.
	c.State().AnchorZoom(geom.Pt(400, 300), 2)

	pass, _ := c.Layout(context.Background(), build)
	for _, v := range pass.Items {
		fmt.Printf("item %d at %v unbounded=%v\n", v.Index, v.RenderRect.TopLeft(), v.Unbounded)
	}

	// The surface measured the third note at 120x40 px.
	pass.ReportMeasured(2, geom.Sz(120, 40))
	fmt.Println("stored:", notes[2].Get().Rect)
	// Output:
	// item 0 at {-200 -100} unbounded=false
	// item 2 at {400 300} unbounded=true
	// stored: {400 300 460 320}
}
