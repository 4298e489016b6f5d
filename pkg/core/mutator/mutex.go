// Package mutator provides a single-owner, preemptive mutation token.
//
// A [Mutex] guards a piece of state that several competing operations want to
// drive, such as a viewport translation that can be moved by a drag or by an
// inertial fling. Unlike sync.Mutex, acquiring the token never queues behind
// the current holder: it cancels the holder's context and waits for the
// holder to notice and release. The newest acquirer always wins.
//
// Holders are expected to check their lease context between units of work
// and to stop before mutating once it is done:
//
//	lease, err := m.Acquire(ctx, Flinging)
//	if err != nil {
//	    return err
//	}
//	defer lease.Release()
//	for lease.Context().Err() == nil {
//	    // one step of work
//	}
package mutator

import (
	"context"
	"errors"
	"sync"
)

// ErrPreempted is the cancellation cause seen by a holder whose token was
// taken over by a newer acquirer.
var ErrPreempted = errors.New("mutator: preempted by a newer owner")

// Mutex is a preemptive single-owner token. Each holder is labelled with a tag
// so observers can tell what kind of operation currently owns the state.
//
// The zero value is ready to use. Mutex is safe for concurrent use.
type Mutex[T comparable] struct {
	mu    sync.Mutex
	owner *Lease[T]
}

// Lease is proof of ownership returned by Acquire.
type Lease[T comparable] struct {
	m      *Mutex[T]
	tag    T
	ctx    context.Context
	cancel context.CancelCauseFunc
	done   chan struct{}
	once   sync.Once
}

// Acquire makes the caller the owner. Any previous owner is cancelled with
// ErrPreempted, and Acquire waits until it has released before returning, so
// the two never overlap. If ctx ends while waiting, Acquire returns ctx's
// error and the caller does not own the token.
func (m *Mutex[T]) Acquire(ctx context.Context, tag T) (*Lease[T], error) {
	lctx, cancel := context.WithCancelCause(ctx)
	l := &Lease[T]{m: m, tag: tag, ctx: lctx, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	prev := m.owner
	m.owner = l
	m.mu.Unlock()

	if prev != nil {
		prev.cancel(ErrPreempted)
		select {
		case <-prev.done:
		case <-ctx.Done():
			// Later acquirers wait on l, so l must not report done before prev.
			go func() {
				<-prev.done
				l.Release()
			}()
			return nil, ctx.Err()
		}
	}

	if err := lctx.Err(); err != nil {
		l.Release()
		if cause := context.Cause(lctx); errors.Is(cause, ErrPreempted) {
			return nil, cause
		}
		return nil, err
	}
	return l, nil
}

// Mutate acquires the token, runs fn with the lease context and releases the
// token when fn returns. A preemption while waiting to acquire is not an error.
func (m *Mutex[T]) Mutate(ctx context.Context, tag T, fn func(ctx context.Context) error) error {
	l, err := m.Acquire(ctx, tag)
	if errors.Is(err, ErrPreempted) {
		return nil
	}
	if err != nil {
		return err
	}
	defer l.Release()
	return fn(l.Context())
}

// Cancel preempts the current owner only if it carries tag, and waits for it
// to release. It reports whether an owner was cancelled. Cancel returns
// immediately when the token is free or held under a different tag.
func (m *Mutex[T]) Cancel(tag T) bool {
	m.mu.Lock()
	l := m.owner
	m.mu.Unlock()
	if l == nil || l.tag != tag {
		return false
	}
	l.cancel(ErrPreempted)
	<-l.done
	return true
}

// Holder returns the tag of the current owner, if any.
func (m *Mutex[T]) Holder() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner == nil {
		var zero T
		return zero, false
	}
	return m.owner.tag, true
}

// Context returns the lease context. It is cancelled when the lease is
// preempted, released or its parent context ends.
func (l *Lease[T]) Context() context.Context {
	return l.ctx
}

// Tag returns the tag the lease was acquired with.
func (l *Lease[T]) Tag() T {
	return l.tag
}

// Active reports whether the lease still owns the token and has not been
// cancelled.
func (l *Lease[T]) Active() bool {
	return l.ctx.Err() == nil
}

// Preempted reports whether the lease ended because a newer owner took over.
func (l *Lease[T]) Preempted() bool {
	return errors.Is(context.Cause(l.ctx), ErrPreempted)
}

// Release gives up ownership. It is safe to call more than once.
func (l *Lease[T]) Release() {
	l.once.Do(func() {
		l.m.mu.Lock()
		if l.m.owner == l {
			l.m.owner = nil
		}
		l.m.mu.Unlock()
		l.cancel(context.Canceled)
		close(l.done)
	})
}
