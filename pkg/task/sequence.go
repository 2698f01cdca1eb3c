package task

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/observability"
)

// Sequence runs tasks in order over a shared [State].
type Sequence struct {
	tasks    []Task
	state    *State
	watchers []Watcher
}

// NewSequence returns a sequence holding tasks in the given order. Each
// task's Setup runs as it is added.
func NewSequence(tasks ...Task) *Sequence {
	q := &Sequence{state: NewState()}
	for _, t := range tasks {
		q.Append(t)
	}
	return q
}

// State returns the sequence's state.
func (q *Sequence) State() *State {
	return q.state
}

// Tasks returns a copy of the task list in execution order.
func (q *Sequence) Tasks() []Task {
	return append([]Task(nil), q.tasks...)
}

// Names returns the task names in execution order.
func (q *Sequence) Names() []string {
	names := make([]string, len(q.tasks))
	for i, t := range q.tasks {
		names[i] = t.Name()
	}
	return names
}

// Index returns the position of the first task named name, or -1.
func (q *Sequence) Index(name string) int {
	for i, t := range q.tasks {
		if t.Name() == name {
			return i
		}
	}
	return -1
}

// InsertAt inserts t at index i and runs its Setup. Out of range indexes
// are clamped, so a large index appends.
func (q *Sequence) InsertAt(i int, t Task) {
	i = max(0, min(i, len(q.tasks)))
	q.tasks = append(q.tasks, nil)
	copy(q.tasks[i+1:], q.tasks[i:])
	q.tasks[i] = t
	t.Setup(q.state)
}

// Append adds t at the end.
func (q *Sequence) Append(t Task) {
	q.InsertAt(len(q.tasks), t)
}

// Prepend adds t at the start.
func (q *Sequence) Prepend(t Task) {
	q.InsertAt(0, t)
}

// InsertBefore inserts t right before the first task named anchor, or at the
// start when no such task exists.
func (q *Sequence) InsertBefore(anchor string, t Task) {
	if i := q.Index(anchor); i >= 0 {
		q.InsertAt(i, t)
		return
	}
	q.Prepend(t)
}

// InsertAfter inserts t right after the first task named anchor, or at the
// end when no such task exists.
func (q *Sequence) InsertAfter(anchor string, t Task) {
	if i := q.Index(anchor); i >= 0 {
		q.InsertAt(i+1, t)
		return
	}
	q.Append(t)
}

// AddWatcher registers w. A watcher with the same identity as w is replaced
// in place and keeps its dispatch position.
func (q *Sequence) AddWatcher(w Watcher) {
	if i := q.watcherIndex(w); i >= 0 {
		q.watchers[i] = w
		return
	}
	q.watchers = append(q.watchers, w)
}

// RemoveWatcher unregisters the watcher with the same identity as w and
// reports whether one was found.
func (q *Sequence) RemoveWatcher(w Watcher) bool {
	i := q.watcherIndex(w)
	if i < 0 {
		return false
	}
	q.watchers = append(q.watchers[:i], q.watchers[i+1:]...)
	return true
}

// Watchers returns the number of registered watchers.
func (q *Sequence) Watchers() int {
	return len(q.watchers)
}

func (q *Sequence) watcherIndex(w Watcher) int {
	id := watcherIdentity(w)
	if id == nil {
		return -1
	}
	for i, other := range q.watchers {
		if watcherIdentity(other) == id {
			return i
		}
	}
	return -1
}

// watcherIdentity returns a comparable identity, or nil when the watcher is
// neither Identified nor comparable.
func watcherIdentity(w Watcher) any {
	if idw, ok := w.(Identified); ok {
		return "id:" + idw.WatcherID()
	}
	if w == nil || !reflect.TypeOf(w).Comparable() {
		return nil
	}
	return w
}

// Reset clears the state and runs every task's Setup again, in order.
func (q *Sequence) Reset() {
	q.state.Clear()
	for _, t := range q.tasks {
		t.Setup(q.state)
	}
}

// Run executes every task in order. The first error aborts the run and is
// returned wrapped with the failing task's name.
func (q *Sequence) Run(ctx context.Context) error {
	bus := fanout(q.watchers)
	hooks := observability.Tasks()
	for _, t := range q.tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		bus.OnTaskBegin(t)
		hooks.OnTaskStart(ctx, t.Name())
		start := time.Now()
		err := t.Execute(ctx, q.state, bus)
		hooks.OnTaskComplete(ctx, t.Name(), time.Since(start), err)
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
		bus.OnTaskEnd(t)
	}
	return nil
}

// fanout dispatches to a snapshot of watchers in registration order.
type fanout []Watcher

func (f fanout) OnTaskBegin(t Task) {
	for _, w := range f {
		w.OnTaskBegin(t)
	}
}

func (f fanout) OnTaskEnd(t Task) {
	for _, w := range f {
		w.OnTaskEnd(t)
	}
}

func (f fanout) OnEvent(ev event.Event) {
	for _, w := range f {
		w.OnEvent(ev)
	}
}
