package skein

import (
	"fmt"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
)

// Cleanup is a function returned by a computation body to release
// per-run resources. It runs before the next run and at disposal.
type Cleanup func()

// Computation is a tracked unit of work. Its body runs once at
// construction and again whenever a cell it read during its previous run
// changes. Dependencies are rebuilt from scratch on every run, so a read
// guarded by a condition stops being a dependency the moment the guard
// turns false.
type Computation struct {
	id uint64
	rt *Runtime

	// label is an optional debug name used in diagnostics.
	label string

	// fn is the body. The returned cleanup, if any, runs before the next
	// run and at disposal.
	fn      func() Cleanup
	cleanup Cleanup

	// sources are the cells read during the last run. Cleared and
	// rebuilt each run.
	sources mapset.Set[*cellCore]

	// scope is the scope that was active at construction. It is restored
	// as the active scope while the body runs, so scopes and cleanups
	// created inside land in the right place.
	scope *Scope

	// disposed marks the computation permanently inert.
	disposed atomic.Bool
}

// Option configures a computation at construction.
type Option func(*Computation)

// WithLabel attaches a debug name used in diagnostics.
func WithLabel(label string) Option {
	return func(c *Computation) {
		c.label = label
	}
}

// NewComputation creates a computation and runs it synchronously once.
// Its disposer registers with the active scope when one exists; without a
// scope the caller owns disposal and dev mode reports an advisory.
func NewComputation(rt *Runtime, fn func() Cleanup, opts ...Option) *Computation {
	c := &Computation{
		id:      nextID(),
		rt:      rt,
		fn:      fn,
		sources: mapset.NewThreadUnsafeSet[*cellCore](),
	}
	for _, opt := range opts {
		opt(c)
	}

	rt.enter()
	defer rt.leave()

	c.scope = rt.scope
	if c.scope != nil {
		c.scope.OnCleanup(c.Dispose)
	} else {
		Diagnostic(DiagUnownedComputation,
			"computation created outside any scope; it will not be reclaimed automatically",
			"label", c.label)
	}

	c.run()
	return c
}

// Label returns the debug name, empty when unset.
func (c *Computation) Label() string {
	return c.label
}

// ID returns the unique identifier for this computation.
func (c *Computation) ID() uint64 {
	return c.id
}

// IsDisposed reports whether Dispose has been called.
func (c *Computation) IsDisposed() bool {
	return c.disposed.Load()
}

// run executes the body: the previous run's cleanup fires, every
// dependency edge is discarded, and the body re-subscribes to exactly the
// cells it reads this time. The executing-computation slot and active
// scope are restored even if the body panics.
func (c *Computation) run() {
	if c.disposed.Load() {
		return
	}

	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}

	c.detachSources()

	rt := c.rt
	prevCurrent := rt.current
	prevScope := rt.scope
	rt.current = c
	rt.scope = c.scope

	defer func() {
		rt.current = prevCurrent
		rt.scope = prevScope
		if r := recover(); r != nil {
			c.deliverError(r)
		}
	}()

	c.cleanup = c.fn()
}

// addSource records a reverse edge. Called by cells when read during this
// computation's run; the set makes repeat reads idempotent.
func (c *Computation) addSource(src *cellCore) {
	c.sources.Add(src)
}

// detachSources unsubscribes from every cell read during the last run.
func (c *Computation) detachSources() {
	c.sources.Each(func(src *cellCore) bool {
		src.unsubscribe(c)
		return false
	})
	c.sources.Clear()
}

// Dispose makes the computation permanently inert: the last cleanup runs
// and every dependency edge is removed. Safe to call more than once and
// from cleanups.
func (c *Computation) Dispose() {
	if c.disposed.Swap(true) {
		return
	}

	rt := c.rt
	rt.enter()
	defer rt.leave()

	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}
	c.detachSources()
}

// deliverError routes a panic out of the body to the nearest error
// handlers registered via OnError, walking the scope chain from the
// computation's own scope outward. With no handlers the panic resumes and
// reaches whichever call triggered the run.
func (c *Computation) deliverError(r any) {
	handlers := errorHandlersFor(c.scope)
	if len(handlers) == 0 {
		panic(r)
	}
	err := asError(r)
	for _, h := range handlers {
		h(err)
	}
}

// asError converts a recovered panic value to an error.
func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("skein: computation panic: %v", r)
}
