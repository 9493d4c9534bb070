package skein

import (
	"runtime"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
)

// Runtime is a single reactive graph: its cells, computations, scopes, and
// the scheduler that drives them. Every primitive is created against one
// Runtime and never interacts with another.
//
// Execution is cooperatively single-threaded. Each entry point into the
// graph (a cell write, Batch, Dispatch, scope or computation construction)
// acquires the runtime for the calling goroutine; nested entries on the
// same goroutine are re-entrant. The scheduler flush runs when the
// outermost entry completes, so no two computations ever run concurrently.
type Runtime struct {
	// mu serializes entry points across goroutines.
	mu sync.Mutex

	// holder is the goroutine ID currently inside the runtime (0 when
	// free). Read without mu to make nested entries re-entrant and to
	// keep untracked reads off the lock.
	holder atomic.Uint64

	// depth counts nested entries on the holder goroutine.
	depth int

	// current is the computation whose body is executing, nil outside
	// any run. Cell reads subscribe it.
	current *Computation

	// scope is the active scope. New computations and cleanups register
	// here.
	scope *Scope

	// queue is the dirty set in insertion order. queued mirrors it for
	// O(1) membership; both are guarded by the entry lock.
	queue  []*Computation
	queued mapset.Set[uint64]

	// flushRequested is the single pending-flush flag. flushing marks an
	// in-progress pass so re-entrant dirtying is absorbed instead of
	// scheduling a second flush.
	flushRequested bool
	flushing       bool
}

// New creates an empty runtime.
func New() *Runtime {
	return &Runtime{
		// Thread-unsafe set is fine: the entry lock guards it.
		queued: mapset.NewThreadUnsafeSet[uint64](),
	}
}

// goroutineID returns a unique identifier for the current goroutine by
// parsing the runtime stack header. This is an implementation detail and
// must not leak into the public API.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// enter acquires the runtime for the calling goroutine, re-entrantly.
// Every enter must be paired with a deferred leave.
func (rt *Runtime) enter() {
	gid := goroutineID()
	if rt.holder.Load() == gid {
		rt.depth++
		return
	}
	rt.mu.Lock()
	rt.holder.Store(gid)
	rt.depth = 1
}

// leave releases one nesting level. When the outermost entry completes it
// runs the pending flush before unlocking, so dependents settle before any
// other goroutine gets in. The lock is released even when an unhandled
// computation panic propagates out of the flush.
func (rt *Runtime) leave() {
	rt.depth--
	if rt.depth > 0 {
		return
	}
	defer func() {
		rt.holder.Store(0)
		rt.mu.Unlock()
	}()
	rt.flush()
}

// isHolder reports whether the calling goroutine currently owns the
// runtime. Reads from other goroutines see the graph but never track.
func (rt *Runtime) isHolder() bool {
	return rt.holder.Load() == goroutineID()
}

// markDirty adds a computation to the dirty set, deduplicating by ID.
// Outside a flush it requests one; during a flush the in-progress pass
// absorbs the new entry and no second flush is scheduled.
func (rt *Runtime) markDirty(c *Computation) {
	if c.disposed.Load() {
		return
	}
	if rt.queued.Contains(c.id) {
		return
	}
	rt.queued.Add(c.id)
	rt.queue = append(rt.queue, c)
	if !rt.flushing {
		rt.flushRequested = true
	}
}

// flush runs every dirty computation in insertion order, then clears the
// set. Computations dirtied while the pass runs are appended and processed
// by the same pass. A dirty computation runs at most once per flush: it
// stays in the membership set until the pass ends, so re-dirtying it is a
// no-op.
func (rt *Runtime) flush() {
	if !rt.flushRequested {
		return
	}
	rt.flushing = true
	defer func() {
		rt.queue = rt.queue[:0]
		rt.queued.Clear()
		rt.flushing = false
		rt.flushRequested = false
	}()

	for i := 0; i < len(rt.queue); i++ {
		rt.queue[i].run()
	}
}

// Dispatch runs fn as its own entry into the runtime. This is safe to call
// from any goroutine and is the correct way to push asynchronous results
// into cells:
//
//	go func() {
//	    user, err := api.FetchUser(ctx, id)
//	    rt.Dispatch(func() {
//	        if err != nil { errCell.Set(err) } else { userCell.Set(user) }
//	    })
//	}()
//
// The flush triggered by fn's writes completes before Dispatch returns and
// before any other entry begins.
func (rt *Runtime) Dispatch(fn func()) {
	rt.enter()
	defer rt.leave()
	fn()
}

// Batch groups multiple cell writes into a single flush. Dependents of all
// written cells run once when the outermost batch completes, not per
// write. Batches nest.
//
//	rt.Batch(func() {
//	    first.Set("John")
//	    last.Set("Doe")
//	    age.Set(30)
//	})
//	// dependents ran once
func (rt *Runtime) Batch(fn func()) {
	rt.enter()
	defer rt.leave()
	fn()
}

// Untracked runs fn with dependency tracking suspended: cell reads inside
// do not subscribe the executing computation. For a single read prefer
// Cell.Peek.
func (rt *Runtime) Untracked(fn func()) {
	rt.enter()
	defer rt.leave()

	prev := rt.current
	rt.current = nil
	defer func() { rt.current = prev }()

	fn()
}
