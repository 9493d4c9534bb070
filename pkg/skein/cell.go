package skein

import (
	"reflect"
	"sync"
)

// cellCore provides type-erased subscriber management.
// It is embedded in Cell[T] so computations can hold dependency edges
// without knowing the value type.
type cellCore struct {
	id uint64
	rt *Runtime

	// subs are the computations subscribed to this cell, in subscription
	// order. The entry lock guards mutation; dirty-queue insertion order
	// follows this order.
	subs []*Computation
}

// subscribe adds a computation to this cell's subscribers.
// Deduplicates by ID to prevent double-subscription.
func (cc *cellCore) subscribe(c *Computation) {
	cid := c.id
	for _, existing := range cc.subs {
		if existing.id == cid {
			return
		}
	}
	cc.subs = append(cc.subs, c)
}

// unsubscribe removes a computation from this cell's subscribers.
func (cc *cellCore) unsubscribe(c *Computation) {
	cid := c.id
	for i, existing := range cc.subs {
		if existing.id == cid {
			// Remove by swapping with the last element; subscriber
			// order only matters for live entries being marked.
			cc.subs[i] = cc.subs[len(cc.subs)-1]
			cc.subs = cc.subs[:len(cc.subs)-1]
			return
		}
	}
}

// track subscribes the executing computation, if any, and records the
// reverse edge for rebuild-on-run. Reads off the holder goroutine never
// track.
func (cc *cellCore) track() {
	rt := cc.rt
	if !rt.isHolder() {
		return
	}
	c := rt.current
	if c == nil {
		return
	}
	cc.subscribe(c)
	c.addSource(cc)
}

// markSubscribersDirty queues every current subscriber. Marking only
// appends to the dirty queue; the subscriber list itself is not mutated
// until a computation actually runs.
func (cc *cellCore) markSubscribersDirty() {
	for _, c := range cc.subs {
		cc.rt.markDirty(c)
	}
}

// Cell is a reactive value container. Reading a cell during a computation
// run automatically subscribes that computation to the cell's changes;
// reads outside any run are plain reads.
type Cell[T any] struct {
	core cellCore

	// value is the current cell value.
	value T

	// mu protects the value so Peek stays safe from any goroutine.
	mu sync.RWMutex

	// equal decides whether a write changed the value. Nil means
	// defaultEquals.
	equal func(T, T) bool
}

// NewCell creates a cell holding initial, owned by rt.
func NewCell[T any](rt *Runtime, initial T) *Cell[T] {
	return &Cell[T]{
		core: cellCore{
			id: nextID(),
			rt: rt,
		},
		value: initial,
	}
}

// Get returns the current value and subscribes the executing computation.
// Outside a computation run this is equivalent to Peek.
func (c *Cell[T]) Get() T {
	// Read the value first and release before tracking so the value
	// lock is never held while touching graph structures.
	c.mu.RLock()
	value := c.value
	c.mu.RUnlock()

	c.core.track()
	return value
}

// Peek returns the current value without subscribing.
func (c *Cell[T]) Peek() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set updates the value and marks subscribers dirty. A write that is equal
// to the current value under the cell's equality function is a no-op: no
// subscriber is marked and no flush is requested.
func (c *Cell[T]) Set(value T) {
	rt := c.core.rt
	rt.enter()
	defer rt.leave()

	c.mu.Lock()
	changed := !c.equals(c.value, value)
	if changed {
		c.value = value
	}
	c.mu.Unlock()

	if changed {
		c.core.markSubscribersDirty()
	}
}

// Update applies fn to the current value and writes the result through Set
// semantics.
func (c *Cell[T]) Update(fn func(T) T) {
	rt := c.core.rt
	rt.enter()
	defer rt.leave()

	c.mu.Lock()
	oldValue := c.value
	newValue := fn(oldValue)
	changed := !c.equals(oldValue, newValue)
	if changed {
		c.value = newValue
	}
	c.mu.Unlock()

	if changed {
		c.core.markSubscribersDirty()
	}
}

// WithEquals returns the cell configured with a custom equality function.
// Useful for types where reflect.DeepEqual is too expensive or has the
// wrong semantics.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

// ID returns the unique identifier for this cell.
func (c *Cell[T]) ID() uint64 {
	return c.core.id
}

// equals checks two values with the configured equality function.
func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides type-appropriate equality checking.
// Uses == for common comparable types and reflect.DeepEqual for the rest.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		// Slices, maps, structs, interfaces.
		return reflect.DeepEqual(a, b)
	}
}
