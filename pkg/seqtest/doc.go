// Package seqtest provides a recording container for reconciler tests.
//
// A Stage implements keyed.Container and hands out keyed.Node items that
// record every attach, move, and detach applied to them. Tests assert on
// the resulting order and on the operation log instead of poking a real
// presentation layer.
//
// # Quick Start
//
//	stage := seqtest.NewStage()
//	list, err := keyed.Mount(rt, stage, source,
//	    func(s string, _ int) string { return s },
//	    func(data func() string, _ func() int) keyed.Node {
//	        return stage.NewItem(data())
//	    })
//	if err != nil {
//	    t.Fatalf("unexpected error: %v", err)
//	}
//	seqtest.ExpectOrder(t, stage, "a", "b", "c")
//
// # Counting Structural Operations
//
// The log makes move-minimality checkable: reset it after the initial
// mount, update the source, and count inserts.
//
//	stage.ResetLog()
//	items.Set([]string{"c", "b", "a"})
//	if got := stage.Moves(); got > 2 {
//	    t.Errorf("expected at most 2 moves, got %d", got)
//	}
package seqtest
