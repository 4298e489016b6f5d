// Package viewport owns the pan/zoom state of one canvas and drives its
// inertial motion.
//
// A [State] holds the current scale, translation, viewport size and overscan
// margin. It is mutated only through its operations:
//
//   - [State.Pan] and [State.AnchorZoom] for manual input, already translated
//     into render-space deltas by the embedding layer
//   - [State.BeginDrag] for a drag session that may end in a fling
//   - [State.Fling] for decelerating motion paced by a [FrameClock]
//   - [State.Resize] and [State.SetOverscan] for surface changes
//
// # Motion ownership
//
// Operations that move the viewport compete for a single-owner token (see
// package mutator). At most one of {Panning, Flinging} is active; starting
// either preempts the other. A fling checks for preemption strictly between
// frames, so a cancelled fling never applies a partial or doubled step.
//
// # Concurrency
//
// State is safe for concurrent use, but the design assumes one control
// goroutine issuing input and at most one fling running beside it. Change
// listeners registered with [State.OnChange] run synchronously on the
// goroutine that changed the viewport and must not start or cancel motion.
package viewport

import (
	"context"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/mutator"
	"github.com/matzehuels/infinicanvas/pkg/core/transform"
	"github.com/matzehuels/infinicanvas/pkg/observability"
)

// Motion names the operation currently owning the viewport.
type Motion int

const (
	Idle Motion = iota
	Panning
	Flinging
)

func (m Motion) String() string {
	switch m {
	case Panning:
		return "panning"
	case Flinging:
		return "flinging"
	default:
		return "idle"
	}
}

// Snapshot is a consistent copy of the viewport taken at one instant.
type Snapshot struct {
	Transform transform.Transform `json:"transform"`
	Size      geom.Size           `json:"size"`
	Overscan  float64             `json:"overscan"`
}

// ViewportLogicRect returns the logic-space rectangle under the viewport.
func (s Snapshot) ViewportLogicRect() geom.Rect {
	return s.Transform.ViewportLogicRect(s.Size)
}

// ExpandedLogicRect returns the viewport rectangle grown by the overscan
// margin. Overscan is in render pixels, so the logic margin shrinks as the
// canvas zooms in and the visual margin stays constant.
func (s Snapshot) ExpandedLogicRect() geom.Rect {
	return s.ViewportLogicRect().Inflate(s.Overscan / s.Transform.Scale)
}

// State is the viewport of one canvas.
type State struct {
	mu          sync.RWMutex
	scale       float64
	translation geom.Point
	size        geom.Size
	overscan    float64

	deceleration float64
	stopVelocity float64
	clock        FrameClock
	logger       *log.Logger

	motion mutator.Mutex[Motion]

	listenersMu sync.Mutex
	listeners   []listener
	nextID      int
}

type listener struct {
	id int
	fn func(geom.Rect)
}

// New returns a State initialised from cfg.
func New(cfg Config) *State {
	cfg.setDefaults()
	return &State{
		scale:        transform.ClampScale(cfg.Scale),
		translation:  cfg.Translation,
		size:         cfg.Size,
		overscan:     cfg.Overscan,
		deceleration: cfg.FlingDeceleration,
		stopVelocity: cfg.FlingStopVelocity,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
	}
}

// Scale returns the current scale.
func (s *State) Scale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// Translation returns the current translation in render pixels.
func (s *State) Translation() geom.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.translation
}

// Size returns the viewport size in render pixels.
func (s *State) Size() geom.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Overscan returns the culling margin in render pixels.
func (s *State) Overscan() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overscan
}

// Transform returns the current logic↔render mapping.
func (s *State) Transform() transform.Transform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transform.Transform{Scale: s.scale, Translation: s.translation}
}

// ViewportLogicRect returns the logic-space rectangle under the viewport.
func (s *State) ViewportLogicRect() geom.Rect {
	return s.Snapshot().ViewportLogicRect()
}

// Snapshot returns a consistent copy of the viewport.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Transform: transform.Transform{Scale: s.scale, Translation: s.translation},
		Size:      s.size,
		Overscan:  s.overscan,
	}
}

// Motion reports which operation currently owns the viewport.
func (s *State) Motion() Motion {
	if m, ok := s.motion.Holder(); ok {
		return m
	}
	return Idle
}

// Pan moves the viewport by delta render pixels. It takes the motion token
// for the write, so an active fling or drag is stopped first and Pan returns
// once it has released.
func (s *State) Pan(delta geom.Point) {
	if !delta.IsFinite() {
		return
	}
	s.step(func() bool {
		s.translation = s.translation.Add(delta)
		return true
	})
	s.notify()
}

// step runs one discrete viewport write under the motion token and s.mu.
// Listeners are notified by the caller after the token is released.
func (s *State) step(write func() bool) bool {
	changed := false
	_ = s.motion.Mutate(context.Background(), Panning, func(context.Context) error {
		s.mu.Lock()
		changed = write()
		s.mu.Unlock()
		return nil
	})
	return changed
}

// AnchorZoom multiplies the scale by scaleDelta while keeping the logic point
// under focal (render space) fixed on screen. The new scale is floor-clamped
// to transform.MinScale; when clamping leaves the scale unchanged the call is
// a no-op. Non-finite arguments and non-positive multipliers are ignored.
// Like Pan, it stops an active fling or drag first.
func (s *State) AnchorZoom(focal geom.Point, scaleDelta float64) {
	if !focal.IsFinite() || !validZoom(scaleDelta) {
		return
	}
	var oldScale, newScale float64
	changed := s.step(func() bool {
		var zoomed bool
		oldScale, zoomed = s.zoomLocked(focal, scaleDelta)
		newScale = s.scale
		return zoomed
	})

	if changed {
		observability.Motion().OnZoom(context.Background(), oldScale, newScale)
		s.notify()
	}
}

// Gesture applies a combined pan and anchored zoom, as produced by a
// multi-touch transform gesture, as one viewport change.
func (s *State) Gesture(centroid, pan geom.Point, zoom float64) {
	if !centroid.IsFinite() || !pan.IsFinite() || !validZoom(zoom) {
		return
	}
	var oldScale, newScale float64
	zoomed := s.step(func() bool {
		s.translation = s.translation.Add(pan)
		var changed bool
		oldScale, changed = s.zoomLocked(centroid, zoom)
		newScale = s.scale
		return changed
	})

	if zoomed {
		observability.Motion().OnZoom(context.Background(), oldScale, newScale)
	}
	s.notify()
}

func validZoom(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

func (s *State) zoomLocked(focal geom.Point, scaleDelta float64) (oldScale float64, changed bool) {
	oldScale = s.scale
	newScale := transform.ClampScale(oldScale * scaleDelta)
	if newScale == oldScale {
		return oldScale, false
	}
	logicAtFocal := transform.Transform{Scale: oldScale, Translation: s.translation}.RenderToLogic(focal)
	s.scale = newScale
	s.translation = focal.Sub(logicAtFocal.Mul(newScale))
	return oldScale, true
}

// Resize records a new viewport size. Scale and translation are unchanged.
func (s *State) Resize(size geom.Size) {
	s.mu.Lock()
	if s.size == size {
		s.mu.Unlock()
		return
	}
	s.size = size
	s.mu.Unlock()
	s.notify()
}

// SetOverscan sets the culling margin in render pixels. Negative or
// non-finite values become zero.
func (s *State) SetOverscan(px float64) {
	if !(px >= 0) || math.IsInf(px, 0) {
		px = 0
	}
	s.mu.Lock()
	s.overscan = px
	s.mu.Unlock()
}

// OnChange registers fn to receive the logic viewport rectangle after every
// pan, zoom, resize and fling step. The returned function unregisters it.
// Fling steps notify while the fling owns the viewport, so fn must not pan or
// zoom.
func (s *State) OnChange(fn func(geom.Rect)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *State) translate(delta geom.Point) {
	s.mu.Lock()
	s.translation = s.translation.Add(delta)
	s.mu.Unlock()
	s.notify()
}

func (s *State) notify() {
	s.listenersMu.Lock()
	if len(s.listeners) == 0 {
		s.listenersMu.Unlock()
		return
	}
	fns := make([]func(geom.Rect), len(s.listeners))
	for i, l := range s.listeners {
		fns[i] = l.fn
	}
	s.listenersMu.Unlock()

	rect := s.ViewportLogicRect()
	for _, fn := range fns {
		fn(rect)
	}
}
