package skein

import "sync/atomic"

// Scope owns reactive primitives for deterministic teardown. Computations
// created while a scope is active register their disposers with it; child
// scopes register theirs with the parent. Disposing a scope therefore
// cascades through everything created under it, in reverse creation order.
//
// The parent link is non-owning and exists for context lookup only.
type Scope struct {
	id uint64
	rt *Runtime

	// parent is the scope that was active when this one was created.
	// nil for a root scope.
	parent *Scope

	// cleanups run last-to-first at disposal. Child disposers, computation
	// disposers, and OnCleanup callbacks all live here.
	cleanups []func()

	// values stores context slots provided on this scope. Lazily
	// allocated.
	values map[uint64]any

	// disposed guarantees cleanups run exactly once.
	disposed atomic.Bool
}

// Root creates a scope, makes it active, runs body inside it, and restores
// the previously active scope on return, panic included. The new scope is
// a child of whatever scope was active at the call.
//
// The returned scope's Dispose tears down everything body created.
func (rt *Runtime) Root(body func()) *Scope {
	rt.enter()
	defer rt.leave()

	s := &Scope{
		id:     nextID(),
		rt:     rt,
		parent: rt.scope,
	}
	if s.parent != nil {
		s.parent.OnCleanup(s.Dispose)
	}

	prev := rt.scope
	rt.scope = s
	defer func() { rt.scope = prev }()

	body()
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the scope this one was created under, nil for roots.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed reports whether Dispose has run.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// OnCleanup registers fn to run when this scope is disposed. Cleanups run
// in reverse registration order, exactly once. Registering on an already
// disposed scope runs fn immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}

	s.rt.enter()
	defer s.rt.leave()
	s.cleanups = append(s.cleanups, fn)
}

// OnCleanup registers fn with the active scope. Without an active scope
// the registration is dropped and dev mode reports an advisory.
func (rt *Runtime) OnCleanup(fn func()) {
	rt.enter()
	defer rt.leave()

	if rt.scope == nil {
		Diagnostic(DiagNoScope, "cleanup registered outside any scope; it will never run")
		return
	}
	rt.scope.OnCleanup(fn)
}

// ActiveScope returns the currently active scope, nil when none. Only
// meaningful on the goroutine currently inside the runtime.
func (rt *Runtime) ActiveScope() *Scope {
	rt.enter()
	defer rt.leave()
	return rt.scope
}

// Dispose tears the scope down: it becomes the active scope for the
// duration, cleanups run last-to-first exactly once, and the previously
// active scope is restored. Every descendant scope and computation created
// under this scope is disposed through the cleanup chain. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	rt := s.rt
	rt.enter()
	defer rt.leave()

	prev := rt.scope
	rt.scope = s
	defer func() { rt.scope = prev }()

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// provide stores a context slot on this scope.
func (s *Scope) provide(slot uint64, value any) {
	if s.values == nil {
		s.values = make(map[uint64]any)
	}
	s.values[slot] = value
}

// lookup walks this scope's parent chain for a context slot.
func (s *Scope) lookup(slot uint64) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.values != nil {
			if v, ok := cur.values[slot]; ok {
				return v, true
			}
		}
	}
	return nil, false
}
