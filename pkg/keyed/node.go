package keyed

// Node is a handle to one presentational item. The reconciler never looks
// inside it; the only capability it needs is detaching from wherever the
// presentation layer put it.
type Node interface {
	// Detach removes the node from its container. Called exactly once per
	// removed item, through its owning scope's cleanup.
	Detach()
}

// Container is the ordered home of the reconciled nodes.
type Container interface {
	// InsertBefore places n immediately before anchor. A nil anchor means
	// the end of the container. Inserting a node that is already present
	// moves it.
	InsertBefore(n, anchor Node)
}

// RenderFunc produces the node for one item. It runs once per key, inside
// the item's own scope, with reads untracked. The getters stay live for the
// item's lifetime: data returns the latest value pushed for this key, index
// the item's current position.
type RenderFunc[T any] func(data func() T, index func() int) Node

// KeyFunc extracts a stable identity from an item and its position in the
// sequence. Items with equal keys across cycles are treated as the same
// logical entity.
type KeyFunc[T any, K comparable] func(item T, index int) K
