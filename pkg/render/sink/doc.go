// Package sink draws the result of a visibility pass.
//
// # Overview
//
// A "sink" turns a [visibility.Pass] into an output format. The drawing is
// what a surface would paint for the current viewport: every visible item at
// its render rect, in paint order, on a canvas the size of the viewport.
//
//   - SVG: [RenderSVG], vector output with one group per item
//   - PNG: [RenderPNG], rasterized with gogpu/gg
//   - JSON: [RenderJSON], the pass itself for other tools
//
// Items whose size is still unknown are clipped to the overscan area and
// drawn with a dashed outline.
//
// # Options
//
//   - [WithLabels]: Label text per item (default: the item key)
//   - [WithCells]: Overlay the spatial index cells
//   - [WithOverscan]: Outline the overscan area around the viewport
//   - [WithBackground]: Background color
//
// Basic usage:
//
//	pass, _ := c.Layout(ctx, build)
//	svg := sink.RenderSVG(pass, sink.WithCells(res.Buckets(), res.CellSize()))
//	png, err := sink.RenderPNG(pass)
//
// [visibility.Pass]: github.com/matzehuels/infinicanvas/pkg/core/visibility.Pass
package sink
