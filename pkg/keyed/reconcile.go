package keyed

import (
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/skein-dev/skein/pkg/lis"
	"github.com/skein-dev/skein/pkg/skein"
)

// Development diagnostic codes reported through skein.Diagnostic.
const (
	// DiagIdentityKeys flags reconciliation of primitive items without an
	// explicit key function. Equal values collapse onto one key, which
	// usually means lost nodes and wasted re-renders.
	DiagIdentityKeys = "W003"

	// DiagDuplicateKey flags two items resolving to the same key within a
	// single cycle. The later occurrence wins the key.
	DiagDuplicateKey = "W004"
)

// mappedItem is the live state for one key: its node, its owning scope, and
// the two cells the render callback reads through its getters.
type mappedItem[T any, K comparable] struct {
	key   K
	node  Node
	scope *skein.Scope
	data  *skein.Cell[T]
	index *skein.Cell[int]
}

// List is a mounted reconciler. It keeps the key-to-item table between
// cycles and re-runs whenever the source sequence's dependencies change.
// The table is only valid while the scope that owned the Mount call lives.
type List[T any, K comparable] struct {
	rt        *skein.Runtime
	container Container
	source    func() []T
	key       KeyFunc[T, K]
	render    RenderFunc[T]

	items map[K]*mappedItem[T, K]
	order []*mappedItem[T, K]

	// scratch backs the reorder pass and grows monotonically with the
	// largest sequence seen.
	scratch *lis.Scratch

	comp *skein.Computation
}

// Mount wires a source sequence to a container and runs the first cycle
// synchronously. The source function executes inside a tracked computation:
// any cell it reads becomes a trigger for the next cycle. Structural
// mis-wiring fails immediately.
func Mount[T any, K comparable](rt *skein.Runtime, container Container, source func() []T, key KeyFunc[T, K], render RenderFunc[T]) (*List[T, K], error) {
	if rt == nil {
		return nil, ErrNilRuntime
	}
	if container == nil {
		return nil, ErrNilContainer
	}
	if source == nil {
		return nil, ErrNilSource
	}
	if key == nil {
		return nil, ErrNilKeyFunc
	}
	if render == nil {
		return nil, ErrNilRender
	}

	l := &List[T, K]{
		rt:        rt,
		container: container,
		source:    source,
		key:       key,
		render:    render,
		items:     make(map[K]*mappedItem[T, K]),
	}
	l.comp = skein.NewComputation(rt, func() skein.Cleanup {
		l.runCycle(l.source())
		return nil
	}, skein.WithLabel("keyed.reconcile"))
	return l, nil
}

// MountIdentity mounts with the item value itself as its key. Fine for
// pointer-like items; for primitives an explicit key function is almost
// always what you want, and dev mode says so.
func MountIdentity[T comparable](rt *skein.Runtime, container Container, source func() []T, render RenderFunc[T]) (*List[T, T], error) {
	if primitiveKind[T]() {
		skein.Diagnostic(DiagIdentityKeys,
			"reconciling primitive items by identity; equal values share a key, supply a key function")
	}
	return Mount(rt, container, source, func(item T, _ int) T { return item }, render)
}

// primitiveKind reports whether T is a value-identity primitive.
func primitiveKind[T comparable]() bool {
	t := reflect.TypeOf(*new(T))
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// Len returns the number of live items after the last cycle.
func (l *List[T, K]) Len() int {
	return len(l.order)
}

// Lookup returns the node currently mapped to key.
func (l *List[T, K]) Lookup(k K) (Node, bool) {
	if it, ok := l.items[k]; ok {
		return it.node, true
	}
	return nil, false
}

// Dispose stops reacting to the source and tears down every item in reverse
// order. Idempotent; also happens implicitly when the owning scope of the
// Mount call is disposed.
func (l *List[T, K]) Dispose() {
	l.comp.Dispose()
	for i := len(l.order) - 1; i >= 0; i-- {
		l.order[i].scope.Dispose()
	}
	l.order = nil
	l.items = make(map[K]*mappedItem[T, K])
}

// runCycle is one full reconciliation: key resolution, create/update,
// removal, reorder, table swap.
func (l *List[T, K]) runCycle(next []T) {
	oldOrder := l.order
	oldIndex := make(map[*mappedItem[T, K]]int, len(oldOrder))
	for i, it := range oldOrder {
		oldIndex[it] = i
	}

	// Create/update. entries holds one slot per position in next; a slot
	// shadowed by a later duplicate key goes nil.
	entries := make([]*mappedItem[T, K], len(next))
	newItems := make(map[K]*mappedItem[T, K], len(next))
	slotOf := make(map[K]int, len(next))
	seen := mapset.NewThreadUnsafeSet[K]()

	for i, value := range next {
		k := l.key(value, i)

		if seen.Contains(k) {
			skein.Diagnostic(DiagDuplicateKey,
				"duplicate key within one cycle; the later item takes the key",
				"index", i)
			it := newItems[k]
			entries[slotOf[k]] = nil
			entries[i] = it
			slotOf[k] = i
			it.data.Set(value)
			continue
		}
		seen.Add(k)
		slotOf[k] = i

		if it, ok := l.items[k]; ok {
			// Surviving key: same node, new data.
			delete(l.items, k)
			it.data.Set(value)
			entries[i] = it
			newItems[k] = it
			continue
		}

		it := l.createItem(k, value, i)
		entries[i] = it
		newItems[k] = it
	}

	// Removal. Everything left in the old table lost its key; disposal
	// cascades to node detachment through the item scope's cleanup.
	for _, it := range oldOrder {
		if cur, ok := l.items[it.key]; ok && cur == it {
			delete(l.items, it.key)
			cur.scope.Dispose()
		}
	}

	// Compact shadowed slots and settle final indices.
	live := entries[:0]
	for _, it := range entries {
		if it != nil {
			live = append(live, it)
		}
	}
	for i, it := range live {
		it.index.Set(i)
	}

	l.reorder(live, oldIndex)

	l.items = newItems
	l.order = live
}

// createItem builds the scope, cells, and node for a new key. The render
// callback runs with tracking suspended so stray reads inside it subscribe
// nothing; computations it creates track normally and die with the item.
func (l *List[T, K]) createItem(k K, value T, index int) *mappedItem[T, K] {
	it := &mappedItem[T, K]{key: k}
	it.scope = l.rt.Root(func() {
		it.data = skein.NewCell(l.rt, value)
		it.index = skein.NewCell(l.rt, index)

		l.rt.Untracked(func() {
			it.node = l.render(it.data.Get, it.index.Get)
		})
		if it.node == nil {
			panic(ErrNilNode)
		}

		l.rt.OnCleanup(func() {
			it.node.Detach()
		})
	})
	return it
}

// reorder moves the fewest nodes that realize the new order. Old positions
// of surviving items form the input sequence; items on its longest
// increasing subsequence are already relatively ordered and stay put. The
// backward walk inserts every other node before a trailing anchor, so each
// item is touched once and moves are bounded by n minus the subsequence
// length.
func (l *List[T, K]) reorder(live []*mappedItem[T, K], oldIndex map[*mappedItem[T, K]]int) {
	n := len(live)
	if n == 0 {
		return
	}

	positions := make([]float64, n)
	for i, it := range live {
		if oi, ok := oldIndex[it]; ok {
			positions[i] = float64(oi)
		} else {
			positions[i] = lis.Skip
		}
	}

	if l.scratch.Cap() < n {
		l.scratch = lis.NewScratch(n)
	}
	keep := lis.Find(positions, lis.WithScratch(l.scratch))

	var anchor Node
	k := len(keep) - 1
	for i := n - 1; i >= 0; i-- {
		it := live[i]
		if k >= 0 && keep[k] == i {
			k--
		} else {
			l.container.InsertBefore(it.node, anchor)
		}
		anchor = it.node
	}
}
