package skein

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Resource wraps an asynchronous fetch behind three cells: data, loading,
// and error. A computation tracks the source; every source change starts a
// new fetch generation, flips loading on, and clears the error. The fetch
// settles through Dispatch, and settlements from superseded generations
// are dropped, so a slow old fetch can never clobber a newer result.
//
//	userID := skein.NewCell(rt, 1)
//	user := skein.NewResource(rt, userID.Get, func(ctx context.Context, id int) (*User, error) {
//	    return api.FetchUser(ctx, id)
//	})
//
//	NewComputation(rt, func() Cleanup {
//	    if user.Loading() {
//	        fmt.Println("loading...")
//	    } else if err := user.Err(); err != nil {
//	        fmt.Println("failed:", err)
//	    } else {
//	        fmt.Println("user:", user.Data())
//	    }
//	    return nil
//	})
type Resource[S, T any] struct {
	rt *Runtime

	data    *Cell[T]
	loading *Cell[bool]
	err     *Cell[error]

	// epoch tags fetch generations. The per-run cleanup bumps it, so both
	// a re-fetch and disposal invalidate whatever is still in flight.
	epoch atomic.Uint64

	comp *Computation
}

// NewResource creates a resource over a tracked source and a fetch
// function. The source runs inside the resource's computation, so any cell
// it reads becomes a trigger. The first fetch starts immediately.
//
// The context passed to fetch is cancelled when a newer fetch supersedes
// it and when the resource is disposed. Fetch runs on its own goroutine;
// a panic inside it surfaces through the error cell, never to the caller.
func NewResource[S, T any](rt *Runtime, source func() S, fetch func(context.Context, S) (T, error)) *Resource[S, T] {
	r := &Resource[S, T]{
		rt:      rt,
		data:    NewCell(rt, *new(T)),
		loading: NewCell(rt, false),
		err:     NewCell[error](rt, nil),
	}

	r.comp = NewComputation(rt, func() Cleanup {
		value := source()
		epoch := r.epoch.Add(1)

		r.loading.Set(true)
		r.err.Set(nil)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			data, err := runFetch(ctx, value, fetch)
			rt.Dispatch(func() {
				if r.epoch.Load() != epoch {
					// A newer generation owns the cells now.
					return
				}
				if err != nil {
					r.err.Set(err)
				} else {
					r.data.Set(data)
				}
				r.loading.Set(false)
			})
		}()

		return func() {
			cancel()
			r.epoch.Add(1)
		}
	})

	return r
}

// runFetch invokes fetch with panic recovery so producer failures always
// come back as error values.
func runFetch[S, T any](ctx context.Context, value S, fetch func(context.Context, S) (T, error)) (data T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("skein: resource fetch panic: %v", rec)
		}
	}()
	return fetch(ctx, value)
}

// Data returns the last successful result and subscribes the executing
// computation. The zero value until the first settlement.
func (r *Resource[S, T]) Data() T {
	return r.data.Get()
}

// Loading reports whether a fetch is in flight, subscribing the executing
// computation.
func (r *Resource[S, T]) Loading() bool {
	return r.loading.Get()
}

// Err returns the error of the most recent settlement, nil while loading
// and after success. Subscribes the executing computation.
func (r *Resource[S, T]) Err() error {
	return r.err.Get()
}

// PeekData returns the last successful result without subscribing.
func (r *Resource[S, T]) PeekData() T {
	return r.data.Peek()
}

// Refetch re-runs the resource's computation, starting a fresh fetch at
// the current source value. The superseded in-flight fetch, if any, is
// cancelled and its settlement dropped.
func (r *Resource[S, T]) Refetch() {
	r.rt.Dispatch(r.comp.run)
}

// Dispose cancels the in-flight fetch and stops tracking the source. Late
// settlements are dropped; the cells keep their last values.
func (r *Resource[S, T]) Dispose() {
	r.comp.Dispose()
}
