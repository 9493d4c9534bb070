// Package skein is a fine-grained reactive runtime: values live in cells,
// work lives in computations, and the dependency graph between them is
// discovered at run time by tracking reads. Writing a cell re-runs exactly
// the computations that read it, once, after the write completes.
//
// # Core Types
//
// Cell[T] is a reactive value container:
//
//	rt := skein.New()
//	count := skein.NewCell(rt, 0)
//	value := count.Get()  // read (subscribes the running computation)
//	count.Set(5)          // write (re-runs dependents)
//	count.Update(func(n int) int { return n + 1 })
//
// Computation is a tracked unit of work that re-runs when its reads change:
//
//	skein.NewComputation(rt, func() skein.Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//
// Memo[T] is an eagerly maintained derived value:
//
//	doubled := skein.NewMemo(rt, func() int { return count.Get() * 2 })
//
// Resource wraps an async fetch behind data, loading, and error cells.
//
// # Scheduling
//
// Writes never re-run dependents inline. Dirty computations collect in a
// deduplicated queue and run in insertion order when the outermost entry
// into the runtime completes. Batch groups several writes into one flush:
//
//	rt.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})  // dependents of both run once
//
// # Ownership
//
// Scopes own teardown. rt.Root(body) runs body under a new scope;
// computations created inside register their disposers with it, and
// disposing the scope runs cleanups in reverse order, descendants first:
//
//	scope := rt.Root(func() {
//	    skein.NewComputation(rt, watchSomething)
//	    rt.OnCleanup(func() { conn.Close() })
//	})
//	defer scope.Dispose()
//
// Context[T] carries values down the scope tree without threading
// parameters, and rt.OnError collects computation panics into handlers.
//
// # Concurrency
//
// A runtime is cooperatively single-threaded: entries from different
// goroutines serialize, and no two computations ever run concurrently.
// Use rt.Dispatch to push results from other goroutines into cells.
package skein
