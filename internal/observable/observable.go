// Copyright (c) 2025 Kanban
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package observable provides small reactive value cells.
//
// A Writable holds a value and notifies subscribers on every change. A Derived
// computes a read-only value from another cell and notifies only when the computed
// value changes. Subscribers always receive the current value on subscription.
package observable

import "sync"

// Readable is a value that can be observed and snapshotted.
type Readable[T any] interface {
	// Subscribe registers fn and calls it with the current value and every later one.
	// The returned function removes the subscription.
	Subscribe(fn func(T)) (unsubscribe func())
	// Get returns the current value.
	Get() T
}

type subscriber[T any] struct {
	fn     func(T)
	active bool
}

type delivery[T any] struct {
	sub   *subscriber[T]
	value T
}

// Writable is a mutable observable cell. It is safe for concurrent use.
//
// Deliveries are queued and drained in mutation order, so a subscriber may call Set
// or its own unsubscribe function from inside its callback.
type Writable[T any] struct {
	mu       sync.Mutex
	value    T
	subs     []*subscriber[T]
	queue    []delivery[T]
	draining bool
}

// NewWritable creates a cell holding initial.
func NewWritable[T any](initial T) *Writable[T] {
	return &Writable[T]{value: initial}
}

// Get returns the current value.
func (w *Writable[T]) Get() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Set replaces the value and notifies every subscriber once.
func (w *Writable[T]) Set(v T) {
	w.mu.Lock()
	w.value = v
	for _, s := range w.subs {
		w.queue = append(w.queue, delivery[T]{sub: s, value: v})
	}
	w.drainLocked()
}

// Update replaces the value with fn applied to the current one.
func (w *Writable[T]) Update(fn func(T) T) {
	w.mu.Lock()
	v := fn(w.value)
	w.value = v
	for _, s := range w.subs {
		w.queue = append(w.queue, delivery[T]{sub: s, value: v})
	}
	w.drainLocked()
}

// Subscribe implements Readable.
func (w *Writable[T]) Subscribe(fn func(T)) func() {
	s := &subscriber[T]{fn: fn, active: true}

	w.mu.Lock()
	w.subs = append(w.subs, s)
	w.queue = append(w.queue, delivery[T]{sub: s, value: w.value})
	w.drainLocked()

	var once sync.Once
	return func() {
		once.Do(func() { w.remove(s) })
	}
}

// Subscribers returns the number of active subscriptions.
func (w *Writable[T]) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

func (w *Writable[T]) remove(s *subscriber[T]) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s.active = false
	for i, cur := range w.subs {
		if cur == s {
			w.subs = append(w.subs[:i:i], w.subs[i+1:]...)
			return
		}
	}
}

// drainLocked delivers queued values. It must be called with w.mu held and
// releases it before returning. Only one goroutine drains at a time.
func (w *Writable[T]) drainLocked() {
	if w.draining {
		w.mu.Unlock()
		return
	}
	w.draining = true
	for len(w.queue) > 0 {
		d := w.queue[0]
		w.queue = w.queue[1:]
		if !d.sub.active {
			continue
		}
		w.mu.Unlock()
		d.sub.fn(d.value)
		w.mu.Lock()
	}
	w.queue = nil
	w.draining = false
	w.mu.Unlock()
}

// Derived is a read-only cell computed from a source cell.
type Derived[S any, T comparable] struct {
	src     Readable[S]
	compute func(S) T
	out     *Writable[T]
	detach  func()
}

// NewDerived creates a cell whose value is compute applied to src.
// Subscribers are notified only when the computed value changes.
func NewDerived[S any, T comparable](src Readable[S], compute func(S) T) *Derived[S, T] {
	d := &Derived[S, T]{
		src:     src,
		compute: compute,
		out:     NewWritable(compute(src.Get())),
	}
	d.detach = src.Subscribe(func(v S) {
		next := compute(v)
		d.out.mu.Lock()
		changed := d.out.value != next
		d.out.mu.Unlock()
		if changed {
			d.out.Set(next)
		}
	})
	return d
}

// Get recomputes the value from the source's current snapshot.
func (d *Derived[S, T]) Get() T {
	return d.compute(d.src.Get())
}

// Subscribe implements Readable.
func (d *Derived[S, T]) Subscribe(fn func(T)) func() {
	return d.out.Subscribe(fn)
}

// Close detaches the cell from its source. Existing subscribers stop receiving updates.
func (d *Derived[S, T]) Close() {
	d.detach()
}
