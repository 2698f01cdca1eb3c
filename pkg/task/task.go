package task

import (
	"context"

	"github.com/matzehuels/mcinstall/pkg/event"
)

// Task is one step of a [Sequence].
//
// Name is the task's identity: relative insertion and watcher output refer
// to tasks by name, and a sequence should not hold two tasks with the same
// name.
type Task interface {
	Name() string
	// Setup runs when the task joins a sequence and after every reset. It
	// may insert default values into the state but must not depend on the
	// setup of other tasks.
	Setup(s *State)
	// Execute runs the task once per installation.
	Execute(ctx context.Context, s *State, w Watcher) error
}

// Watcher observes a running sequence.
type Watcher interface {
	OnTaskBegin(t Task)
	OnTaskEnd(t Task)
	OnEvent(ev event.Event)
}

// Identified lets a watcher choose its registration identity. Watchers that
// do not implement it are identified by their own value.
type Identified interface {
	WatcherID() string
}

// NopWatcher ignores everything. Embed it to implement only some hooks.
type NopWatcher struct{}

func (NopWatcher) OnTaskBegin(Task)       {}
func (NopWatcher) OnTaskEnd(Task)         {}
func (NopWatcher) OnEvent(ev event.Event) {}

// EventFunc adapts a function to a watcher that only receives events.
type EventFunc func(ev event.Event)

func (f EventFunc) OnTaskBegin(Task)       {}
func (f EventFunc) OnTaskEnd(Task)         {}
func (f EventFunc) OnEvent(ev event.Event) { f(ev) }

// Func builds a task from plain functions. setup may be nil.
func Func(name string, setup func(*State), exec func(context.Context, *State, Watcher) error) Task {
	return &funcTask{name: name, setup: setup, exec: exec}
}

type funcTask struct {
	name  string
	setup func(*State)
	exec  func(context.Context, *State, Watcher) error
}

func (t *funcTask) Name() string { return t.name }

func (t *funcTask) Setup(s *State) {
	if t.setup != nil {
		t.setup(s)
	}
}

func (t *funcTask) Execute(ctx context.Context, s *State, w Watcher) error {
	return t.exec(ctx, s, w)
}
