// Package pkg provides the libraries behind infinicanvas, an infinite-canvas
// virtualization engine.
//
// # Overview
//
// Infinicanvas places items on an unbounded 2D plane and, on every layout
// pass, resolves only the items that intersect the viewport. The pkg
// directory is organized into four areas:
//
//  1. [core] - The engine (geometry, transform, viewport, registry, culling)
//  2. [canvas] - One canvas instance assembled from the core packages
//  3. [scene] and [config] - Scene files and canvas settings
//  4. [render] and [httpapi] - Output formats and the HTTP surface
//
// # Architecture
//
// The data flow of one layout pass:
//
//	viewport input (pan, zoom, drag, fling)
//	         ↓
//	    [core/viewport] state (scale, translation, size, overscan)
//	         ↓
//	    [core/registry] (items declared for this pass)
//	         ↓
//	    [core/visibility] resolver (spatial index query, culling, paint order)
//	         ↓
//	    SVG/PNG/JSON/PDF output
//
// # Quick Start
//
// Create a canvas, declare items and draw the visible ones:
//
//	import (
//	    "github.com/matzehuels/infinicanvas/pkg/canvas"
//	    "github.com/matzehuels/infinicanvas/pkg/core/geom"
//	    "github.com/matzehuels/infinicanvas/pkg/core/viewport"
//	    "github.com/matzehuels/infinicanvas/pkg/render/sink"
//	    "github.com/matzehuels/infinicanvas/pkg/scene"
//	)
//
//	s, _ := scene.Load("board.toml")
//	m := scene.NewModel(s)
//
//	c := canvas.New(canvas.Config{Viewport: viewport.DefaultConfig()}, nil)
//	c.State().Resize(geom.Sz(1280, 800))
//	c.State().AnchorZoom(geom.Pt(640, 400), 1.5)
//
//	pass, _ := m.Frame(ctx, c)
//	svg := sink.RenderSVG(pass, sink.WithLabels(scene.Label))
//
// # Main Packages
//
// ## Core Engine
//
// [core/geom] - Points, sizes and rectangles in logic or render units.
//
// [core/transform] - The scale-and-translate mapping between logic and render
// coordinates, with anchored zoom.
//
// [core/viewport] - The viewport state: pan, zoom, resize, overscan, drags and
// inertial flings paced by a frame clock.
//
// [core/mutator] - The motion token that lets one drag or fling own the
// viewport at a time.
//
// [core/item] - Per-item layout records and the measure and scale policies.
//
// [core/registry] - The per-pass list of declared items, keyed or by count.
//
// [core/spatial] - A uniform-grid spatial index over logic rectangles.
//
// [core/visibility] - The resolver that turns a viewport snapshot and a
// registry into a [visibility.Pass] in paint order.
//
// ## Canvas and Scenes
//
// [canvas] - Assembles viewport, registry and resolver into one canvas.
//
// [scene] - TOML and JSON scene files, generated grids and the mutable item
// model that measures and drags items between passes.
//
// [config] - Canvas defaults loaded from TOML.
//
// ## Output
//
// [render/sink] - Pass output as SVG, PNG and JSON.
//
// [render/cellmap] - Spatial index cells drawn with Graphviz.
//
// [render] - SVG to PDF conversion.
//
// [httpapi] - One canvas served over HTTP.
//
// ## Infrastructure
//
// [cache] - Memory, file and null caches for rendered diagrams.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for pass, motion and HTTP events.
//
// [fonts] - System font lookup for PNG labels.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                   # All tests
//	go test ./pkg/core/visibility/...   # Specific package
//	go test -run Example ./pkg/...      # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core
// [core/geom]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/geom
// [core/transform]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/transform
// [core/viewport]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/viewport
// [core/mutator]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/mutator
// [core/item]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/item
// [core/registry]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/registry
// [core/spatial]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/spatial
// [core/visibility]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/visibility
// [visibility.Pass]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/core/visibility#Pass
// [canvas]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/canvas
// [scene]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/scene
// [config]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/config
// [render]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/render/sink
// [render/cellmap]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/render/cellmap
// [httpapi]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/httpapi
// [cache]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/observability
// [fonts]: https://pkg.go.dev/github.com/matzehuels/infinicanvas/pkg/fonts
package pkg
