// Package httpapi exposes a canvas over HTTP for remote control and
// inspection.
//
// # Overview
//
// The [Server] drives one canvas showing one scene. Viewport input arrives as
// small JSON requests and every read runs a fresh layout pass, so the
// answers always reflect the current viewport:
//
//	GET    /healthz            liveness check and build version
//	GET    /viewport           scale, translation, size, overscan and motion
//	POST   /viewport/pan       {"dx": 10, "dy": -4}
//	POST   /viewport/zoom      {"x": 400, "y": 300, "factor": 1.25} or {"x": 400, "y": 300, "wheel": -20}
//	POST   /viewport/resize    {"width": 1024, "height": 768}
//	POST   /viewport/overscan  {"overscan": 128}
//	POST   /viewport/fling     {"vx": 1200, "vy": 0}, runs in the background
//	DELETE /viewport/fling     stops a running fling
//	GET    /visible            the visible items of a pass, in paint order
//	GET    /visible.svg        the pass drawn as SVG
//	GET    /visible.png        the pass drawn as PNG (?ratio=2 for 2x)
//	GET    /hit?x=..&y=..      the topmost item under a render point
//	POST   /items/{key}/touch  brings an item to the top of the paint order
//	POST   /items/{key}/drag   {"dx": 5, "dy": 5} moves an item in render pixels
//	GET    /index              the non-empty spatial index cells
//	GET    /index.svg          the index cells as a Graphviz diagram (?detailed)
//
// Errors are reported as {"error": "...", "code": "..."} with a status
// derived from the error code.
//
// # Observability
//
// Every request is reported to [observability.HTTP] and logged at debug
// level.
package httpapi
