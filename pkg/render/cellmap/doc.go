// Package cellmap draws the spatial index of a canvas as a Graphviz diagram.
//
// # Overview
//
// Each non-empty index cell becomes a box labeled with its cell coordinates
// and item count. Rows of cells share a rank and vertically adjacent cells are
// connected, so the diagram mirrors the occupied part of the canvas grid.
//
// # Usage
//
//	dot := cellmap.ToDOT(res.Buckets(), cellmap.Options{CellSize: res.CellSize()})
//	svg, err := cellmap.RenderSVG(ctx, dot)
//
// For PDF output, use [RenderPDF], which requires rsvg-convert.
//
// # Options
//
//   - CellSize: When set, labels include the cell's logic bounds
//   - Detailed: When true, labels list the item indices in each cell
package cellmap
