// Package visibility decides, once per layout pass, which registered items
// are on screen, how each one is sized and in which order they paint.
//
// A pass runs in a fixed sequence:
//
//  1. Grow the logic viewport by the overscan margin (render pixels divided
//     by scale).
//  2. Rebuild the spatial index from every bounded item and query it with the
//     grown rectangle. Unmeasured WrapContent items have no size yet and are
//     always candidates.
//  3. Compute each candidate's logic and render rectangles from its stored
//     layout and measure policy, and drop hidden items and items whose render
//     rectangle misses the grown viewport.
//  4. Sort survivors by update time, breaking ties by registration order, so
//     recently touched items paint last.
//  5. Derive content constraints from the scale policy.
//
// After drawing, the surface reports sizes of newly measured WrapContent
// items through [Pass.ReportMeasured], which writes them back to the items'
// stored layouts for the next pass.
package visibility

import (
	"cmp"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/core/registry"
	"github.com/matzehuels/infinicanvas/pkg/core/spatial"
	"github.com/matzehuels/infinicanvas/pkg/core/transform"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
)

// Options configures a Resolver.
type Options struct {
	CellSize float64     // spatial index cell size in logic units; 0 means spatial.DefaultCellSize
	FullScan bool        // test every item instead of querying the index
	Density  float64     // render pixels per device-independent unit for Fixed items; 0 means 1
	Logger   *log.Logger // nil means discard
}

// Resolver runs visibility passes. It keeps its index storage between passes
// but no results. A Resolver is not safe for concurrent use.
type Resolver struct {
	fullScan bool
	density  float64
	logger   *log.Logger
	index    *spatial.Index

	layouts   []item.Layout
	logic     []geom.Rect
	unbounded []int
}

// NewResolver returns a Resolver configured by opts.
func NewResolver(opts Options) *Resolver {
	if !(opts.Density > 0) || math.IsInf(opts.Density, 0) {
		opts.Density = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Resolver{
		fullScan: opts.FullScan,
		density:  opts.Density,
		logger:   opts.Logger,
		index:    spatial.New(opts.CellSize),
	}
}

// Density returns the render pixels per device-independent unit.
func (r *Resolver) Density() float64 {
	return r.density
}

// Buckets returns the index cells built by the most recent pass.
func (r *Resolver) Buckets() []spatial.Cell {
	return r.index.Buckets()
}

// CellSize returns the spatial index cell size.
func (r *Resolver) CellSize() float64 {
	return r.index.CellSize()
}

// Resolve runs one pass over reg as seen through snap.
func (r *Resolver) Resolve(snap viewport.Snapshot, reg *registry.Registry) *Pass {
	entries := slices.Clone(reg.Entries())
	tr := snap.Transform

	p := &Pass{
		Transform:  tr,
		Viewport:   snap.ViewportLogicRect(),
		Expanded:   snap.ExpandedLogicRect(),
		Registered: len(entries),
		entries:    entries,
	}
	expandedRender := tr.LogicRectToRender(p.Expanded)

	r.prepare(entries, tr)
	candidates := r.candidates(p.Expanded)
	p.Candidates = len(candidates)
	p.Cells = r.index.Cells()

	for _, i := range candidates {
		l := r.layouts[i]
		if l.Hidden {
			continue
		}
		e := entries[i]
		v := VisibleItem{
			Index:      i,
			Key:        e.Key,
			ZIndex:     l.ZIndex,
			UpdateTime: l.UpdateTime,
			Scale:      e.Scale,
			Content:    e.Content,
			Measured:   l.Measured,
		}

		if r.isUnbounded(e, l) {
			topLeft := tr.LogicToRender(l.Rect.TopLeft())
			v.Unbounded = true
			v.LogicRect = geom.FromOrigin(l.Rect.TopLeft(), geom.Sz(geom.Unbounded, geom.Unbounded))
			v.RenderRect = geom.FromOrigin(topLeft, geom.Sz(geom.Unbounded, geom.Unbounded))
			v.Constraints = item.Loose(geom.Sz(geom.Unbounded, geom.Unbounded))
		} else {
			v.LogicRect = r.logic[i]
			v.RenderRect = tr.LogicRectToRender(v.LogicRect)
			if e.Scale == item.ScaleInRender {
				v.Constraints = item.Tight(v.LogicRect.Size())
			} else {
				v.Constraints = item.Tight(v.RenderRect.Size())
			}
		}

		if !v.RenderRect.Overlaps(expandedRender) {
			continue
		}
		p.Items = append(p.Items, v)
	}

	slices.SortFunc(p.Items, func(a, b VisibleItem) int {
		return cmp.Or(cmp.Compare(a.UpdateTime, b.UpdateTime), cmp.Compare(a.Index, b.Index))
	})

	r.logger.Debug("visibility resolved",
		"registered", p.Registered,
		"candidates", p.Candidates,
		"visible", len(p.Items),
		"cells", p.Cells,
		"scale", tr.Scale)
	return p
}

// prepare reads every layout once and rebuilds the index.
func (r *Resolver) prepare(entries []registry.Entry, tr transform.Transform) {
	r.index.Clear()
	r.layouts = slices.Grow(r.layouts[:0], len(entries))[:len(entries)]
	r.logic = slices.Grow(r.logic[:0], len(entries))[:len(entries)]
	r.unbounded = r.unbounded[:0]

	for i, e := range entries {
		l := e.Layout.Get()
		r.layouts[i] = l
		if r.isUnbounded(e, l) {
			r.logic[i] = geom.Rect{}
			if !l.Hidden {
				r.unbounded = append(r.unbounded, i)
			}
			continue
		}
		r.logic[i] = r.logicRect(e, l, tr)
		if !r.fullScan && !l.Hidden {
			r.index.Add(i, r.logic[i])
		}
	}
}

func (r *Resolver) candidates(expanded geom.Rect) []int {
	if r.fullScan {
		all := make([]int, len(r.layouts))
		for i := range all {
			all[i] = i
		}
		return all
	}
	return append(r.index.Query(expanded), r.unbounded...)
}

func (r *Resolver) isUnbounded(e registry.Entry, l item.Layout) bool {
	_, wrap := e.Measure.(item.WrapContent)
	return wrap && !l.Measured
}

// logicRect returns the logic bounds of a bounded entry. An unmeasured Fixed
// item keeps its size in render pixels at its stored top-left, so its logic
// size shrinks as the canvas zooms in.
func (r *Resolver) logicRect(e registry.Entry, l item.Layout, tr transform.Transform) geom.Rect {
	if f, ok := e.Measure.(item.Fixed); ok && !l.Measured {
		render := geom.FromOrigin(tr.LogicToRender(l.Rect.TopLeft()), f.Size(r.density))
		return tr.RenderRectToLogic(render)
	}
	return l.Rect
}
