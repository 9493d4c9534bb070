package skein

// Memo is a derived value: a cell fed by a computation over a pure
// function. It recomputes eagerly during the flush that follows a
// dependency change, and its cell's equality check stops propagation when
// the recomputed value is unchanged. Reading a memo subscribes to its cell
// exactly like reading any other cell.
type Memo[T any] struct {
	cell *Cell[T]
	comp *Computation
}

// NewMemo creates a memo over compute. The computation runs synchronously
// at construction, so the value is defined before NewMemo returns. The
// memo's disposer registers with the active scope through its computation.
func NewMemo[T any](rt *Runtime, compute func() T) *Memo[T] {
	m := &Memo[T]{
		cell: NewCell(rt, *new(T)),
	}
	m.comp = NewComputation(rt, func() Cleanup {
		m.cell.Set(compute())
		return nil
	})
	return m
}

// Get returns the current value and subscribes the executing computation.
func (m *Memo[T]) Get() T {
	return m.cell.Get()
}

// Peek returns the current value without subscribing.
func (m *Memo[T]) Peek() T {
	return m.cell.Peek()
}

// WithEquals configures the memo's change detection. It applies to
// recomputations after the call; the construction-time value is already
// in place.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.cell.equal = fn
	return m
}

// ID returns the unique identifier of the memo's cell, which is what
// readers subscribe to.
func (m *Memo[T]) ID() uint64 {
	return m.cell.ID()
}

// Dispose stops recomputation. The last computed value remains readable.
func (m *Memo[T]) Dispose() {
	m.comp.Dispose()
}
