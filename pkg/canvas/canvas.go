// Package canvas assembles one infinite canvas: a viewport, the registry its
// surface fills each pass and the resolver that culls it.
//
// # Usage
//
// Create a canvas, describe items in Layout and draw the returned pass:
//
//	c := canvas.New(canvas.Config{Viewport: viewport.DefaultConfig()}, logger)
//	c.State().Resize(geom.Sz(800, 600))
//
//	pass, err := c.Layout(ctx, func(r *registry.Registry) error {
//	    return r.Count(len(notes), registry.CountSpec{
//	        Layout: func(i int) item.Accessor { return notes[i] },
//	    })
//	})
//	for _, v := range pass.Items {
//	    draw(v.RenderRect)
//	}
//
// Input goes straight to the viewport: c.State().Pan, AnchorZoom, BeginDrag
// and Fling.
package canvas

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infinicanvas/pkg/core/registry"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
	"github.com/matzehuels/infinicanvas/pkg/errors"
	"github.com/matzehuels/infinicanvas/pkg/observability"
)

// Config configures a canvas.
type Config struct {
	Viewport viewport.Config
	CellSize float64 // spatial index cell size; 0 means the default
	FullScan bool    // skip the spatial index
	Density  float64 // render pixels per dp for Fixed items; 0 means 1
}

// Canvas is one canvas instance. Layout passes must not overlap; viewport
// input may arrive from any goroutine.
type Canvas struct {
	state    *viewport.State
	registry *registry.Registry
	resolver *visibility.Resolver
	logger   *log.Logger

	inPass atomic.Bool
	mu     sync.RWMutex
	last   *visibility.Pass
}

// New creates a canvas. A nil logger discards output.
func New(cfg Config, logger *log.Logger) *Canvas {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Viewport.Logger == nil {
		cfg.Viewport.Logger = logger
	}
	return &Canvas{
		state:    viewport.New(cfg.Viewport),
		registry: registry.New(),
		resolver: visibility.NewResolver(visibility.Options{
			CellSize: cfg.CellSize,
			FullScan: cfg.FullScan,
			Density:  cfg.Density,
			Logger:   logger,
		}),
		logger: logger,
	}
}

// State returns the canvas viewport.
func (c *Canvas) State() *viewport.State {
	return c.state
}

// Resolver returns the visibility resolver, for inspecting its index.
func (c *Canvas) Resolver() *visibility.Resolver {
	return c.resolver
}

// Layout runs one pass: it resets the registry, lets build declare the
// items, and resolves them against a snapshot of the viewport.
//
// Layout is not re-entrant. A call made while another pass is running,
// including from inside build, fails with ErrCodeInternal.
func (c *Canvas) Layout(ctx context.Context, build func(r *registry.Registry) error) (*visibility.Pass, error) {
	if !c.inPass.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeInternal, "layout pass already running")
	}
	defer c.inPass.Store(false)

	start := time.Now()
	c.registry.Reset()
	if build != nil {
		if err := build(c.registry); err != nil {
			return nil, err
		}
	}

	hooks := observability.Pass()
	hooks.OnPassStart(ctx, c.registry.Len())

	pass := c.resolver.Resolve(c.state.Snapshot(), c.registry)

	hooks.OnPassComplete(ctx, observability.PassStats{
		Registered: pass.Registered,
		Candidates: pass.Candidates,
		Visible:    len(pass.Items),
		Cells:      pass.Cells,
	}, time.Since(start))

	c.mu.Lock()
	c.last = pass
	c.mu.Unlock()
	return pass, nil
}

// LastPass returns the most recent pass, or nil before the first one.
func (c *Canvas) LastPass() *visibility.Pass {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}
