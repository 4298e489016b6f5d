// Package registry collects the items an embedding surface declares for one
// layout pass.
//
// A surface rebuilds the registry at the start of every pass by calling
// [Registry.Reset] and replaying its item-producing logic through [Count] or
// [Items]. Entries keep accessors rather than copies, so the resolver always
// sees the layout as it is when the pass runs and can write measured sizes
// back to the surface's own storage.
//
// Registration order is significant: an entry's index is its position across
// all calls of the pass, and ties in paint order are broken by it.
package registry

import (
	"reflect"

	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/errors"
)

// Entry is one registered item.
type Entry struct {
	Index   int           // registration position within the pass
	Key     any           // stable identity across passes
	Layout  item.Accessor // stored layout
	Measure item.Measure  // nil when the stored rect is final
	Scale   item.Scale
	Content any // opaque handle returned to the surface with the item
}

// CountSpec describes count-indexed items. Only Layout is required.
type CountSpec struct {
	Key     func(i int) any
	Layout  func(i int) item.Accessor
	Measure func(i int) item.Measure
	Scale   func(i int) item.Scale
	Content func(i int) any
}

// ListSpec describes items backed by a slice. Only Layout is required.
type ListSpec[T any] struct {
	Key     func(v T) any
	Layout  func(v T) item.Accessor
	Measure func(v T) item.Measure
	Scale   func(v T) item.Scale
	Content func(v T) any
}

// PositionKey is the default key of an item registered without one: its
// registration position in the pass.
type PositionKey int

// Registry holds the entries of one pass. It is not safe for concurrent use;
// a pass is built on one goroutine.
type Registry struct {
	entries []Entry
	keys    map[any]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{keys: make(map[any]int)}
}

// Reset drops every entry, keeping allocated storage for the next pass.
func (r *Registry) Reset() {
	clear(r.entries)
	r.entries = r.entries[:0]
	clear(r.keys)
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entry returns the entry at registration index i.
func (r *Registry) Entry(i int) (Entry, bool) {
	if i < 0 || i >= len(r.entries) {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Entries returns all entries in registration order. The slice is owned by
// the registry and valid until the next Reset.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Lookup returns the registration index of key.
func (r *Registry) Lookup(key any) (int, bool) {
	if !hashable(key) {
		return 0, false
	}
	i, ok := r.keys[key]
	return i, ok
}

// Count registers n items produced by index. Either every item is registered
// or none is: a duplicate or unusable key rolls the call back.
func (r *Registry) Count(n int, spec CountSpec) error {
	if n < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "item count must not be negative, got %d", n)
	}
	if spec.Layout == nil {
		return errors.New(errors.ErrCodeInvalidInput, "layout accessor is required")
	}

	start := len(r.entries)
	for i := 0; i < n; i++ {
		e := Entry{Index: len(r.entries), Layout: spec.Layout(i)}
		if spec.Key != nil {
			e.Key = spec.Key(i)
		} else {
			e.Key = PositionKey(e.Index)
		}
		if spec.Measure != nil {
			e.Measure = spec.Measure(i)
		}
		if spec.Scale != nil {
			e.Scale = spec.Scale(i)
		}
		if spec.Content != nil {
			e.Content = spec.Content(i)
		}
		if err := r.add(e); err != nil {
			r.truncate(start)
			return err
		}
	}
	return nil
}

// Items registers one item per element of list. Without a Key function an
// element is its own key when it is comparable, and its registration
// position otherwise. Like Count, the call is all or nothing.
func Items[T any](r *Registry, list []T, spec ListSpec[T]) error {
	if spec.Layout == nil {
		return errors.New(errors.ErrCodeInvalidInput, "layout accessor is required")
	}

	start := len(r.entries)
	for _, v := range list {
		e := Entry{Index: len(r.entries), Layout: spec.Layout(v)}
		switch {
		case spec.Key != nil:
			e.Key = spec.Key(v)
		case hashable(v):
			e.Key = v
		default:
			e.Key = PositionKey(e.Index)
		}
		if spec.Measure != nil {
			e.Measure = spec.Measure(v)
		}
		if spec.Scale != nil {
			e.Scale = spec.Scale(v)
		}
		if spec.Content != nil {
			e.Content = spec.Content(v)
		}
		if err := r.add(e); err != nil {
			r.truncate(start)
			return err
		}
	}
	return nil
}

func (r *Registry) add(e Entry) error {
	if e.Layout == nil {
		return errors.New(errors.ErrCodeInvalidInput, "item %d has no layout accessor", e.Index)
	}
	if !hashable(e.Key) {
		return errors.New(errors.ErrCodeInvalidInput, "item %d has an unusable key of type %T", e.Index, e.Key)
	}
	if prev, ok := r.keys[e.Key]; ok {
		return errors.New(errors.ErrCodeDuplicateKey, "duplicate item key %v (items %d and %d)", e.Key, prev, e.Index)
	}
	r.keys[e.Key] = e.Index
	r.entries = append(r.entries, e)
	return nil
}

func (r *Registry) truncate(n int) {
	for _, e := range r.entries[n:] {
		delete(r.keys, e.Key)
	}
	clear(r.entries[n:])
	r.entries = r.entries[:n]
}

// hashable reports whether v can be used as a map key without panicking.
func hashable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.ValueOf(v).Comparable()
}
