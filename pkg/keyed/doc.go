// Package keyed reconciles an ordered, keyed data sequence against a live
// container of presentation nodes with a minimal number of structural
// operations.
//
// The reconciler owns a key-to-item table across update cycles. Each cycle
// it resolves keys over the new sequence, reuses the existing item for every
// surviving key (pushing fresh data and index values into the item's cells
// instead of re-rendering), creates child-scoped items for new keys, and
// disposes items whose keys disappeared. Surviving nodes are then reordered
// with the fewest possible moves: the longest increasing subsequence of old
// positions stays put, and a single backward pass inserts everything else
// before a trailing anchor.
//
// # Mounting
//
//	list, err := keyed.Mount(rt, stage,
//	    todos.Get,
//	    func(t Todo, _ int) int { return t.ID },
//	    func(data func() Todo, index func() int) keyed.Node {
//	        return stage.NewItem(data().Title)
//	    })
//
// The source function runs inside a tracked computation, so updating any
// cell it reads triggers a new cycle. The render callback runs once per key
// inside the item's own scope; reads inside it are untracked, and effects it
// creates belong to the item and are disposed with it.
//
// # Node Contract
//
// The container and its nodes stay opaque to the reconciler. A Node only
// needs to detach itself, and a Container only needs ordered insertion
// before a reference sibling (nil reference means append at the end). The
// seqtest package provides a recording implementation for tests.
package keyed
