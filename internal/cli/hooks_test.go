package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/observability"
	"github.com/matzehuels/mcinstall/pkg/task"
)

func TestDebugHooksLogTasks(t *testing.T) {
	t.Cleanup(observability.Reset)
	var buf bytes.Buffer
	registerDebugHooks(newLogger(&buf, log.DebugLevel))

	seq := task.NewSequence(task.Func("jar", nil, func(context.Context, *task.State, task.Watcher) error {
		return nil
	}))
	if err := seq.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "task complete") || !strings.Contains(buf.String(), "jar") {
		t.Errorf("log = %q, want task completion for jar", buf.String())
	}
}

func TestDebugHooksSkipSuccessfulEntries(t *testing.T) {
	var buf bytes.Buffer
	h := debugHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnEntryComplete(ctx, "https://example.com/a.jar", 10, time.Millisecond, nil)
	if buf.Len() != 0 {
		t.Errorf("successful entry logged: %q", buf.String())
	}
	h.OnEntryComplete(ctx, "https://example.com/b.jar", 0, time.Millisecond, errors.New("reset"))
	if !strings.Contains(buf.String(), "b.jar") {
		t.Errorf("failed entry not logged: %q", buf.String())
	}
}
