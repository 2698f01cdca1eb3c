package game

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/mcinstall/pkg/download"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/task"
)

type recorder struct {
	task.NopWatcher
	events []event.Event
}

func (r *recorder) OnEvent(ev event.Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []event.Kind {
	out := make([]event.Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind()
	}
	return out
}

// newState returns a state seeded as the metadata task would leave it for a
// single version id holding doc.
func newState(t *testing.T, id, doc string) (*task.State, Context) {
	t.Helper()
	dir := t.TempDir()
	gc := Context{MainDir: dir, WorkDir: filepath.Join(dir, "work")}
	s := task.NewState()
	ContextKey.Insert(s, gc)
	d, err := metadata.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v := gc.Version(id)
	v.Metadata = d
	metadata.VersionKey.Insert(s, v)
	metadata.MergedKey.Insert(s, d)
	ListKey.Insert(s, &download.List{})
	return s, gc
}

func execute(t *testing.T, tk task.Task, s *task.State) (*recorder, error) {
	t.Helper()
	rec := &recorder{}
	return rec, tk.Execute(context.Background(), s, rec)
}

func entries(s *task.State) []download.Entry {
	l, _ := ListKey.Get(s)
	return l.Entries()
}

func sha1Hex(data string) string {
	sum := sha1.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}
