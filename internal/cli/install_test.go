package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/mcinstall/pkg/cache"
	"github.com/matzehuels/mcinstall/pkg/download"
	fabricapi "github.com/matzehuels/mcinstall/pkg/integrations/fabric"
	"github.com/matzehuels/mcinstall/pkg/task"
)

func TestInstallOptionsLoader(t *testing.T) {
	tests := []struct {
		name    string
		opts    installOptions
		wantAPI fabricapi.API
		wantVer string
		wantOK  bool
	}{
		{"vanilla", installOptions{}, fabricapi.API{}, "", false},
		{"bare fabric", installOptions{fabric: latestLoader}, fabricapi.Fabric, "", true},
		{"pinned fabric", installOptions{fabric: "0.14.22"}, fabricapi.Fabric, "0.14.22", true},
		{"bare quilt", installOptions{quilt: latestLoader}, fabricapi.Quilt, "", true},
		{"pinned quilt", installOptions{quilt: "0.21.0"}, fabricapi.Quilt, "0.21.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, ver, ok := tt.opts.loader()
			if ok != tt.wantOK || ver != tt.wantVer || api != tt.wantAPI {
				t.Errorf("loader() = (%v, %q, %v), want (%v, %q, %v)", api, ver, ok, tt.wantAPI, tt.wantVer, tt.wantOK)
			}
		})
	}
}

// recordingWatcher counts retries and keeps the final outcome.
type recordingWatcher struct {
	task.NopWatcher
	retries []int
	id      string
	err     error
}

func (r *recordingWatcher) retry(attempt int, _ error) { r.retries = append(r.retries, attempt) }

func (r *recordingWatcher) finish(id string, err error) error {
	r.id, r.err = id, err
	return nil
}

var seededKey = task.NewKey[string]("test.seed")

// flakySequence fails its download task with an aggregate download error
// for the first failures runs. Each run requires the seeded key.
func flakySequence(failures int, calls *int) *task.Sequence {
	return task.NewSequence(task.Func("download", nil, func(_ context.Context, s *task.State, _ task.Watcher) error {
		*calls++
		if _, err := seededKey.Require(s); err != nil {
			return err
		}
		if *calls <= failures {
			return &download.Error{Failures: []download.Failure{{Code: download.CodeConnection, Err: errors.New("reset")}}}
		}
		return nil
	}))
}

func seedVersion(s *task.State) { seededKey.Insert(s, "1.20.1") }

func testBackoff(attempts int) cache.Backoff {
	return cache.Backoff{Attempts: attempts, Delay: time.Millisecond}
}

func TestInstallWithRetriesRecovers(t *testing.T) {
	calls := 0
	w := &recordingWatcher{}

	err := installWithRetries(context.Background(), flakySequence(1, &calls), seedVersion, testBackoff(3), w)
	if err != nil {
		t.Fatalf("installWithRetries() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(w.retries) != 1 || w.retries[0] != 2 {
		t.Errorf("retries = %v, want [2]", w.retries)
	}
}

func TestInstallWithRetriesExhausted(t *testing.T) {
	calls := 0
	err := installWithRetries(context.Background(), flakySequence(10, &calls), seedVersion, testBackoff(1), &recordingWatcher{})

	if !download.IsError(err) {
		t.Fatalf("error = %v, want download error", err)
	}
	if cache.IsRetryable(err) {
		t.Error("returned error should not stay wrapped as retryable")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestInstallWithRetriesOtherErrors(t *testing.T) {
	calls := 0
	seq := task.NewSequence(task.Func("metadata", nil, func(context.Context, *task.State, task.Watcher) error {
		calls++
		return errors.New("version not found")
	}))
	w := &recordingWatcher{}

	if err := installWithRetries(context.Background(), seq, nil, testBackoff(4), w); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(w.retries) != 0 {
		t.Errorf("retries = %v, want none", w.retries)
	}
}
