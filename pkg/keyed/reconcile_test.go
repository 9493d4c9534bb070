package keyed_test

import (
	"errors"
	"testing"

	"github.com/skein-dev/skein/pkg/keyed"
	"github.com/skein-dev/skein/pkg/seqtest"
	"github.com/skein-dev/skein/pkg/skein"
)

// mountStrings wires a string sequence onto a fresh stage with the string
// itself as key and label.
func mountStrings(t *testing.T, rt *skein.Runtime, source func() []string) (*seqtest.Stage, *keyed.List[string, string]) {
	t.Helper()
	stage := seqtest.NewStage()
	list, err := keyed.Mount(rt, stage, source,
		func(s string, _ int) string { return s },
		func(data func() string, _ func() int) keyed.Node {
			return stage.NewItem(data())
		})
	if err != nil {
		t.Fatalf("unexpected mount error: %v", err)
	}
	return stage, list
}

func TestMountRendersInitialOrder(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b", "c"})

	stage, list := mountStrings(t, rt, items.Get)

	seqtest.ExpectOrder(t, stage, "a", "b", "c")
	if list.Len() != 3 {
		t.Errorf("expected 3 live items, got %d", list.Len())
	}
}

func TestReconcileReversalKeepsNodeIdentities(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b", "c"})

	stage, _ := mountStrings(t, rt, items.Get)
	before := stage.Items()

	stage.ResetLog()
	items.Set([]string{"c", "b", "a"})

	seqtest.ExpectOrder(t, stage, "c", "b", "a")

	// Same three nodes, no re-creation.
	after := stage.Items()
	if len(after) != 3 {
		t.Fatalf("expected 3 items, got %d", len(after))
	}
	if after[0] != before[2] || after[1] != before[1] || after[2] != before[0] {
		t.Error("expected reversal to reuse the existing node identities")
	}

	// A full reversal keeps one node (the subsequence) and moves the rest.
	if got := stage.Moves(); got != 2 {
		t.Errorf("expected 2 moves for a 3-item reversal, got %d", got)
	}
	if got := stage.Detached(); got != 0 {
		t.Errorf("expected no detaches, got %d", got)
	}
}

func TestReconcileMiddleStaysOnPartialReorder(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b", "c"})

	stage, _ := mountStrings(t, rt, items.Get)

	stage.ResetLog()
	items.Set([]string{"c", "a", "b"})

	seqtest.ExpectOrder(t, stage, "c", "a", "b")

	// a and b keep their relative order; only c moves.
	if got := stage.Moves(); got != 1 {
		t.Errorf("expected 1 move, got %d", got)
	}
}

func TestReconcileRemoval(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b"})

	cleanups := map[string]int{}
	stage := seqtest.NewStage()
	_, err := keyed.Mount(rt, stage, items.Get,
		func(s string, _ int) string { return s },
		func(data func() string, _ func() int) keyed.Node {
			label := data()
			rt.OnCleanup(func() { cleanups[label]++ })
			return stage.NewItem(label)
		})
	if err != nil {
		t.Fatalf("unexpected mount error: %v", err)
	}

	before := stage.Items()
	removed := before[0]

	stage.ResetLog()
	items.Set([]string{"b"})

	seqtest.ExpectOrder(t, stage, "b")
	if removed.Detaches() != 1 {
		t.Errorf("expected removed node detached exactly once, got %d", removed.Detaches())
	}
	if cleanups["a"] != 1 {
		t.Errorf("expected a's scope disposed exactly once, got %d", cleanups["a"])
	}
	if cleanups["b"] != 0 {
		t.Errorf("expected b's scope untouched, got %d disposals", cleanups["b"])
	}
	if got := stage.Moves(); got != 0 {
		t.Errorf("expected surviving node to stay put, got %d moves", got)
	}
}

func TestReconcileEmptySequenceRemovesEverything(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b", "c"})

	stage, list := mountStrings(t, rt, items.Get)

	items.Set(nil)

	if stage.Len() != 0 {
		t.Errorf("expected empty stage, got %v", stage.Order())
	}
	if list.Len() != 0 {
		t.Errorf("expected empty table, got %d", list.Len())
	}
	if got := stage.Detached(); got != 3 {
		t.Errorf("expected 3 detaches, got %d", got)
	}
}

func TestReconcileInsertionInMiddle(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "c"})

	stage, _ := mountStrings(t, rt, items.Get)

	stage.ResetLog()
	items.Set([]string{"a", "b", "c"})

	seqtest.ExpectOrder(t, stage, "a", "b", "c")
	if got := stage.Moves(); got != 1 {
		t.Errorf("expected only the new node placed, got %d inserts", got)
	}
}

type todo struct {
	ID    int
	Title string
}

func TestReconcileUpdatesDataWithoutRerender(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []todo{{1, "write"}, {2, "review"}})

	renders := 0
	var titles []string
	stage := seqtest.NewStage()
	_, err := keyed.Mount(rt, stage, items.Get,
		func(it todo, _ int) int { return it.ID },
		func(data func() todo, _ func() int) keyed.Node {
			renders++
			node := stage.NewItem(data().Title)
			skein.NewComputation(rt, func() skein.Cleanup {
				titles = append(titles, data().Title)
				return nil
			})
			return node
		})
	if err != nil {
		t.Fatalf("unexpected mount error: %v", err)
	}

	if renders != 2 {
		t.Fatalf("expected 2 renders, got %d", renders)
	}

	// Same keys, new data: cells update, render does not run again.
	items.Set([]todo{{1, "write tests"}, {2, "review"}})

	if renders != 2 {
		t.Errorf("expected no re-render for surviving keys, got %d renders", renders)
	}
	if len(titles) != 3 || titles[2] != "write tests" {
		t.Errorf("expected item effect to observe the new title, got %v", titles)
	}

	// Identical data: the cell's equality gate keeps effects quiet.
	items.Set([]todo{{1, "write tests"}, {2, "review"}})
	if len(titles) != 3 {
		t.Errorf("expected no effect run for equal data, got %v", titles)
	}
}

func TestReconcileIndexCellsFollowReorder(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b", "c"})

	indexes := map[string]int{}
	stage := seqtest.NewStage()
	_, err := keyed.Mount(rt, stage, items.Get,
		func(s string, _ int) string { return s },
		func(data func() string, index func() int) keyed.Node {
			label := data()
			skein.NewComputation(rt, func() skein.Cleanup {
				indexes[label] = index()
				return nil
			})
			return stage.NewItem(label)
		})
	if err != nil {
		t.Fatalf("unexpected mount error: %v", err)
	}

	items.Set([]string{"c", "a", "b"})

	want := map[string]int{"c": 0, "a": 1, "b": 2}
	for label, idx := range want {
		if indexes[label] != idx {
			t.Errorf("expected %s at index %d, got %d", label, idx, indexes[label])
		}
	}
}

func TestReconcileDuplicateKeysLastWins(t *testing.T) {
	prevMode := skein.DevMode
	prevHandler := skein.DiagnosticHandler
	defer func() {
		skein.DevMode = prevMode
		skein.DiagnosticHandler = prevHandler
	}()
	skein.DevMode = true
	var codes []string
	skein.DiagnosticHandler = func(code, msg string, args ...any) {
		codes = append(codes, code)
	}

	rt := skein.New()
	items := skein.NewCell(rt, []todo{{7, "first"}, {7, "second"}})

	stage := seqtest.NewStage()
	list, err := keyed.Mount(rt, stage, items.Get,
		func(it todo, _ int) int { return it.ID },
		func(data func() todo, _ func() int) keyed.Node {
			return stage.NewItem(data().Title)
		})
	if err != nil {
		t.Fatalf("unexpected mount error: %v", err)
	}

	if list.Len() != 1 {
		t.Errorf("expected one live item for the duplicated key, got %d", list.Len())
	}
	if stage.Len() != 1 {
		t.Errorf("expected one node on stage, got %v", stage.Order())
	}

	found := false
	for _, c := range codes {
		if c == keyed.DiagDuplicateKey {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s diagnostic, got %v", keyed.DiagDuplicateKey, codes)
	}
}

func TestMountIdentityPrimitiveAdvisory(t *testing.T) {
	prevMode := skein.DevMode
	prevHandler := skein.DiagnosticHandler
	defer func() {
		skein.DevMode = prevMode
		skein.DiagnosticHandler = prevHandler
	}()
	skein.DevMode = true
	var codes []string
	skein.DiagnosticHandler = func(code, msg string, args ...any) {
		codes = append(codes, code)
	}

	rt := skein.New()
	items := skein.NewCell(rt, []string{"a"})
	stage := seqtest.NewStage()

	_, err := keyed.MountIdentity(rt, stage, items.Get,
		func(data func() string, _ func() int) keyed.Node {
			return stage.NewItem(data())
		})
	if err != nil {
		t.Fatalf("unexpected mount error: %v", err)
	}

	found := false
	for _, c := range codes {
		if c == keyed.DiagIdentityKeys {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s diagnostic, got %v", keyed.DiagIdentityKeys, codes)
	}
}

func TestMountValidation(t *testing.T) {
	rt := skein.New()
	stage := seqtest.NewStage()
	source := func() []string { return nil }
	key := func(s string, _ int) string { return s }
	render := func(func() string, func() int) keyed.Node { return stage.NewItem("x") }

	cases := []struct {
		name string
		err  error
		call func() error
	}{
		{"nil runtime", keyed.ErrNilRuntime, func() error {
			_, err := keyed.Mount(nil, stage, source, key, render)
			return err
		}},
		{"nil container", keyed.ErrNilContainer, func() error {
			_, err := keyed.Mount(rt, nil, source, key, render)
			return err
		}},
		{"nil source", keyed.ErrNilSource, func() error {
			_, err := keyed.Mount[string, string](rt, stage, nil, key, render)
			return err
		}},
		{"nil key", keyed.ErrNilKeyFunc, func() error {
			_, err := keyed.Mount[string, string](rt, stage, source, nil, render)
			return err
		}},
		{"nil render", keyed.ErrNilRender, func() error {
			_, err := keyed.Mount[string, string](rt, stage, source, key, nil)
			return err
		}},
	}
	for _, tc := range cases {
		if err := tc.call(); !errors.Is(err, tc.err) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
	}
}

func TestMountNilNodeDeliversError(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a"})
	stage := seqtest.NewStage()

	var caught error
	rt.Root(func() {
		rt.OnError(func(err error) { caught = err })
		_, err := keyed.Mount(rt, stage, items.Get,
			func(s string, _ int) string { return s },
			func(func() string, func() int) keyed.Node { return nil })
		if err != nil {
			t.Fatalf("unexpected mount error: %v", err)
		}
	})

	if !errors.Is(caught, keyed.ErrNilNode) {
		t.Errorf("expected ErrNilNode delivered to the handler, got %v", caught)
	}
}

func TestListDispose(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b"})

	stage, list := mountStrings(t, rt, items.Get)

	list.Dispose()

	if stage.Len() != 0 {
		t.Errorf("expected empty stage after dispose, got %v", stage.Order())
	}

	// No further reaction to the source.
	items.Set([]string{"a", "b", "c"})
	if stage.Len() != 0 {
		t.Errorf("expected disposed list to stay inert, got %v", stage.Order())
	}

	// Idempotent.
	list.Dispose()
}

func TestListDisposedWithOwningScope(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b"})

	var stage *seqtest.Stage
	s := rt.Root(func() {
		stage, _ = mountStrings(t, rt, items.Get)
	})

	seqtest.ExpectOrder(t, stage, "a", "b")

	s.Dispose()
	if stage.Len() != 0 {
		t.Errorf("expected owning scope teardown to clear the stage, got %v", stage.Order())
	}

	items.Set([]string{"c"})
	if stage.Len() != 0 {
		t.Errorf("expected no reaction after scope teardown, got %v", stage.Order())
	}
}

func TestLookup(t *testing.T) {
	rt := skein.New()
	items := skein.NewCell(rt, []string{"a", "b"})

	stage, list := mountStrings(t, rt, items.Get)

	node, ok := list.Lookup("b")
	if !ok {
		t.Fatal("expected b in the table")
	}
	if node != stage.Items()[1] {
		t.Error("expected the mapped node identity")
	}

	if _, ok := list.Lookup("missing"); ok {
		t.Error("expected miss for absent key")
	}
}
