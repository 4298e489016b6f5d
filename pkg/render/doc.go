// Package render draws canvas state for inspection outside a live surface.
//
// # Overview
//
// This package holds the format conversion shared by the renderers in its
// subpackages:
//
//   - Pass drawings (in [sink] subpackage): SVG, PNG and JSON output of a
//     visibility pass
//   - Index diagrams (in [cellmap] subpackage): the spatial index as a
//     Graphviz diagram
//
// # Format Conversion
//
// The [ToPDF] function converts any SVG to PDF using the external
// rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(pass)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [sink]: github.com/matzehuels/infinicanvas/pkg/render/sink
// [cellmap]: github.com/matzehuels/infinicanvas/pkg/render/cellmap
package render
