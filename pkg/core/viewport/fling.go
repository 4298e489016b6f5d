package viewport

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/mutator"
	"github.com/matzehuels/infinicanvas/pkg/observability"
)

// Fling starts an inertial motion with the configured deceleration and stop
// velocity. See FlingWith.
func (s *State) Fling(ctx context.Context, velocity geom.Point) error {
	return s.FlingWith(ctx, velocity, s.deceleration, s.stopVelocity)
}

// FlingWith moves the viewport with an initial velocity (render px/s) that
// decays by deceleration (px/s²) until its magnitude is at or below
// stopThreshold (px/s).
//
// The motion is paced by the frame clock and integrated with the real time
// elapsed between ticks. The first tick only primes the clock. Each later tick
// applies translation += v*dt and then shrinks |v| by deceleration*dt while
// keeping its direction.
//
// FlingWith blocks until the motion ends. It returns nil when the fling
// decays or is preempted by another motion, and ctx's error when ctx ends.
// Velocities already at or below the threshold return immediately.
// Non-positive deceleration and negative thresholds fall back to the
// configured values.
func (s *State) FlingWith(ctx context.Context, velocity geom.Point, deceleration, stopThreshold float64) error {
	if !velocity.IsFinite() {
		return nil
	}
	if !(deceleration > 0) || math.IsInf(deceleration, 1) {
		deceleration = s.deceleration
	}
	if !(stopThreshold >= 0) {
		stopThreshold = s.stopVelocity
	}
	if velocity.Length() <= stopThreshold {
		return nil
	}

	lease, err := s.motion.Acquire(ctx, Flinging)
	if errors.Is(err, mutator.ErrPreempted) {
		return nil
	}
	if err != nil {
		return err
	}
	defer lease.Release()

	hooks := observability.Motion()
	start := time.Now()
	ticks := 0
	reason := observability.FlingDecayed
	hooks.OnFlingStart(ctx, velocity.Length())
	s.logger.Debug("fling started", "vx", velocity.X, "vy", velocity.Y)
	defer func() {
		hooks.OnFlingEnd(ctx, reason, ticks, time.Since(start))
		s.logger.Debug("fling ended", "reason", reason, "ticks", ticks)
	}()

	stopped := func() error {
		if lease.Preempted() {
			reason = observability.FlingPreempted
			return nil
		}
		reason = observability.FlingAborted
		if err := ctx.Err(); err != nil {
			return err
		}
		return context.Canceled
	}

	lctx := lease.Context()
	last, err := s.clock.Frame(lctx)
	if err != nil {
		return stopped()
	}
	for {
		now, err := s.clock.Frame(lctx)
		if err != nil || !lease.Active() {
			return stopped()
		}
		dt := math.Max(0, float64(now-last)/float64(time.Second))
		last = now

		s.mu.Lock()
		s.translation = s.translation.Add(velocity.Mul(dt))
		s.mu.Unlock()
		ticks++
		s.notify()

		speed := velocity.Length()
		velocity = velocity.Mul(math.Max(0, speed-deceleration*dt) / speed)
		if velocity.Length() <= stopThreshold {
			return nil
		}
	}
}

// CancelFling stops the running fling, if any, and waits until it has
// released the viewport. It never interrupts a drag. CancelFling is
// idempotent and reports whether a fling was stopped.
func (s *State) CancelFling() bool {
	return s.motion.Cancel(Flinging)
}

// Drag is a manual pan session. It owns the viewport from BeginDrag until
// End or until a newer motion preempts it.
type Drag struct {
	s     *State
	lease *mutator.Lease[Motion]
	mu    sync.Mutex
}

// BeginDrag takes ownership of the viewport as Panning, stopping any fling.
// The drag also ends when ctx does.
func (s *State) BeginDrag(ctx context.Context) (*Drag, error) {
	lease, err := s.motion.Acquire(ctx, Panning)
	if err != nil {
		return nil, err
	}
	d := &Drag{s: s, lease: lease}
	go func() {
		<-lease.Context().Done()
		d.mu.Lock()
		lease.Release()
		d.mu.Unlock()
	}()
	return d, nil
}

// Move pans the viewport by delta render pixels. It reports false, and does
// nothing, once the drag has been preempted or ended.
func (d *Drag) Move(delta geom.Point) bool {
	if !delta.IsFinite() {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.lease.Active() {
		return false
	}
	d.s.translate(delta)
	return true
}

// Active reports whether the drag still owns the viewport.
func (d *Drag) Active() bool {
	return d.lease.Active()
}

// End finishes the drag. When the release velocity (render px/s) is above
// the stop threshold the viewport continues as a fling and End blocks until
// the fling finishes. A drag that was already preempted never flings.
func (d *Drag) End(ctx context.Context, velocity geom.Point) error {
	d.mu.Lock()
	active := d.lease.Active()
	d.lease.Release()
	d.mu.Unlock()

	if !active {
		return nil
	}
	return d.s.Fling(ctx, velocity)
}
