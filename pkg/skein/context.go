package skein

import "github.com/cespare/xxhash/v2"

// Context is a typed value channel through the scope tree. Provide stores
// a value on the active scope; Use reads the nearest provided value by
// walking the scope chain upward, falling back to the context's default.
//
// Contexts flow through computations too: while a computation runs, the
// active scope is the one it was created under, so Use inside a body sees
// the providers that surrounded its construction.
type Context[T any] struct {
	slot uint64
	def  T
}

// NewContext mints a context with a default value. Each call creates a
// distinct slot; two contexts never collide even with identical defaults.
func NewContext[T any](def T) *Context[T] {
	return &Context[T]{
		slot: nextID(),
		def:  def,
	}
}

// Provide stores value on the active scope. Descendant scopes and
// computations created under it observe this value through Use. Without an
// active scope the value is dropped and dev mode reports an advisory.
func (c *Context[T]) Provide(rt *Runtime, value T) {
	rt.enter()
	defer rt.leave()

	if rt.scope == nil {
		Diagnostic(DiagNoScope, "context provided outside any scope")
		return
	}
	rt.scope.provide(c.slot, value)
}

// Use returns the nearest provided value, or the default when no scope in
// the active chain provides one.
func (c *Context[T]) Use(rt *Runtime) T {
	rt.enter()
	defer rt.leave()

	if rt.scope != nil {
		if v, ok := rt.scope.lookup(c.slot); ok {
			return v.(T)
		}
	}
	return c.def
}

// errorHandlersSlot is the reserved context slot holding OnError handler
// chains. Minted by hashing so it cannot collide with counter-issued slots.
var errorHandlersSlot = xxhash.Sum64String("skein.error-handlers")

// OnError registers fn on the active scope to receive errors from
// computation bodies that panic. Handlers on the nearest providing scope
// run in registration order; a body panic with no handler in the chain
// propagates to whichever call triggered the run.
func (rt *Runtime) OnError(fn func(error)) {
	rt.enter()
	defer rt.leave()

	if rt.scope == nil {
		Diagnostic(DiagNoScope, "error handler registered outside any scope")
		return
	}

	var handlers []func(error)
	if v, ok := rt.scope.values[errorHandlersSlot]; ok {
		handlers = v.([]func(error))
	}
	rt.scope.provide(errorHandlersSlot, append(handlers, fn))
}

// errorHandlersFor returns the handler chain of the nearest scope that
// registered one, starting from s.
func errorHandlersFor(s *Scope) []func(error) {
	if s == nil {
		return nil
	}
	if v, ok := s.lookup(errorHandlersSlot); ok {
		return v.([]func(error))
	}
	return nil
}
