package seqtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/skein-dev/skein/pkg/keyed"
)

// Stage is an ordered container of Items that records every structural
// operation applied to it. It implements keyed.Container.
//
// A Stage is not safe for concurrent use; reconciliation is
// single-threaded and tests drive it from one goroutine.
type Stage struct {
	nodes []*Item
	log   []string
}

// NewStage creates an empty stage.
func NewStage() *Stage {
	return &Stage{}
}

// Item is one node on a stage. It implements keyed.Node and remembers how
// often it was detached, so exactly-once teardown is assertable.
type Item struct {
	stage *Stage
	label string

	attached bool
	detaches int
}

// NewItem creates a detached item for this stage. The reconciler attaches
// it through InsertBefore.
func (s *Stage) NewItem(label string) *Item {
	return &Item{stage: s, label: label}
}

// Label returns the label the item was created with.
func (it *Item) Label() string {
	return it.label
}

// Attached reports whether the item is currently on the stage.
func (it *Item) Attached() bool {
	return it.attached
}

// Detaches returns how many times Detach has run.
func (it *Item) Detaches() int {
	return it.detaches
}

// Detach removes the item from the stage.
func (it *Item) Detach() {
	it.detaches++
	it.stage.remove(it)
	it.attached = false
	it.stage.log = append(it.stage.log, "detach "+it.label)
}

// InsertBefore places n immediately before anchor, appending when anchor is
// nil. An already attached node is moved. Implements keyed.Container.
func (s *Stage) InsertBefore(n, anchor keyed.Node) {
	item, ok := n.(*Item)
	if !ok {
		panic(fmt.Sprintf("seqtest: foreign node %T on stage", n))
	}

	s.remove(item)

	at := len(s.nodes)
	if anchor != nil {
		ref, ok := anchor.(*Item)
		if !ok {
			panic(fmt.Sprintf("seqtest: foreign anchor %T on stage", anchor))
		}
		for i, cur := range s.nodes {
			if cur == ref {
				at = i
				break
			}
		}
	}

	s.nodes = append(s.nodes, nil)
	copy(s.nodes[at+1:], s.nodes[at:])
	s.nodes[at] = item
	item.attached = true

	anchorLabel := "end"
	if ref, ok := anchor.(*Item); ok {
		anchorLabel = ref.label
	}
	s.log = append(s.log, "insert "+item.label+" before "+anchorLabel)
}

// remove takes the item off the stage if present.
func (s *Stage) remove(item *Item) {
	for i, cur := range s.nodes {
		if cur == item {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

// Order returns the labels currently on stage, in order.
func (s *Stage) Order() []string {
	labels := make([]string, len(s.nodes))
	for i, it := range s.nodes {
		labels[i] = it.label
	}
	return labels
}

// Items returns the items currently on stage, in order.
func (s *Stage) Items() []*Item {
	out := make([]*Item, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Len returns the number of items on stage.
func (s *Stage) Len() int {
	return len(s.nodes)
}

// Log returns every structural operation recorded so far.
func (s *Stage) Log() []string {
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

// ResetLog clears the operation log, keeping the stage contents.
func (s *Stage) ResetLog() {
	s.log = s.log[:0]
}

// Moves counts insert operations in the log. After ResetLog this is the
// number of structural placements a cycle performed.
func (s *Stage) Moves() int {
	n := 0
	for _, op := range s.log {
		if strings.HasPrefix(op, "insert ") {
			n++
		}
	}
	return n
}

// Detached counts detach operations in the log.
func (s *Stage) Detached() int {
	n := 0
	for _, op := range s.log {
		if strings.HasPrefix(op, "detach ") {
			n++
		}
	}
	return n
}

// ExpectOrder asserts the stage holds exactly the given labels in order.
func ExpectOrder(t *testing.T, s *Stage, labels ...string) {
	t.Helper()
	got := s.Order()
	if len(got) != len(labels) {
		t.Errorf("expected stage order %v, got %v", labels, got)
		return
	}
	for i := range labels {
		if got[i] != labels[i] {
			t.Errorf("expected stage order %v, got %v", labels, got)
			return
		}
	}
}
