package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/download"
	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// Output formats accepted by --output.
const (
	outputHuman  = "human"
	outputJSON   = "json"
	outputSilent = "silent"
)

// installWatcher observes an install and reports its outcome.
type installWatcher interface {
	task.Watcher
	// retry is called before the sequence is run again after err.
	retry(attempt int, err error)
	// finish is called once with the installed version id or the error. It
	// returns the first error the watcher hit writing its own output.
	finish(id string, err error) error
}

// newWatcher returns the watcher for an --output format.
func newWatcher(format string, w io.Writer, logger *log.Logger, runID string) (installWatcher, error) {
	switch format {
	case outputHuman, "":
		return &humanWatcher{logger: logger, start: time.Now()}, nil
	case outputJSON:
		return &jsonWatcher{enc: json.NewEncoder(w), runID: runID, now: time.Now}, nil
	case outputSilent:
		return silentWatcher{}, nil
	}
	return nil, mcerrors.New(mcerrors.ErrCodeInvalidInput, "unknown output format %q (want human, json or silent)", format)
}

// =============================================================================
// Human output
// =============================================================================

// humanWatcher prints status lines and a spinner with download progress.
// Events arrive on the goroutine running the sequence.
type humanWatcher struct {
	logger *log.Logger
	start  time.Time

	spinner   *Spinner
	dlStart   time.Time
	dlEntries int
	dlBytes   int64
	received  int64
	completed map[int]int // per worker
}

func (h *humanWatcher) OnTaskBegin(t task.Task) {
	h.logger.Debug("task begin", "task", t.Name())
}

func (h *humanWatcher) OnTaskEnd(t task.Task) {
	h.logger.Debug("task end", "task", t.Name())
}

func (h *humanWatcher) OnEvent(ev event.Event) {
	switch e := ev.(type) {
	case event.VersionFetching:
		printInfo("Fetching %s", StyleHighlight.Render(e.ID))
	case event.VersionLoaded:
		if e.Depth == 0 {
			printSuccess("Loaded %s", StyleHighlight.Render(e.ID))
		} else {
			printSuccess("Loaded parent %s", StyleHighlight.Render(e.ID))
		}
	case event.LoaderResolve:
		if e.LoaderVersion != "" {
			printSuccess("Resolved %s loader %s for %s", e.Loader, StyleHighlight.Render(e.LoaderVersion), e.GameVersion)
		}
	case event.ResolveEnd:
		printDetail("%d %s", e.Count, e.Facet)
	case event.JvmLoaded:
		printSuccess("Java %s", StyleValue.Render(e.Version))
		printFile(e.Path)
	case event.DownloadStart:
		h.dlStart = time.Now()
		h.dlEntries, h.dlBytes, h.received = e.Entries, e.Bytes, 0
		h.completed = make(map[int]int, e.Workers)
		h.spinner = newSpinner(h.progressMessage())
		h.spinner.Start()
	case event.DownloadProgress:
		h.received += e.Bytes
		h.completed[e.Worker] = e.Completed
		if h.spinner != nil {
			h.spinner.SetMessage(h.progressMessage())
		}
	case event.DownloadComplete:
		h.stopSpinner()
		printSuccess("Downloaded %s files", StyleNumber.Render(fmt.Sprint(e.Entries)))
		printDownloadStats(e.Entries, e.Bytes, time.Since(h.dlStart))
	default:
		h.logger.Debug(event.Describe(ev))
	}
}

func (h *humanWatcher) progressMessage() string {
	done := 0
	for _, n := range h.completed {
		done += n
	}
	return fmt.Sprintf("Downloading %d/%d files (%s/%s)", done, h.dlEntries, formatBytes(h.received), formatBytes(h.dlBytes))
}

func (h *humanWatcher) stopSpinner() {
	if h.spinner != nil {
		h.spinner.Stop()
		h.spinner = nil
	}
}

func (h *humanWatcher) retry(attempt int, err error) {
	h.stopSpinner()
	printWarning("%v", err)
	printInfo("Retrying (attempt %d)", attempt)
}

func (h *humanWatcher) finish(id string, err error) error {
	h.stopSpinner()
	if err == nil {
		printNewline()
		printSuccess("Installed %s (%s)", StyleHighlight.Render(id), time.Since(h.start).Round(time.Millisecond))
		return nil
	}
	var de *download.Error
	if errors.As(err, &de) {
		for _, f := range de.Failures {
			printError("%s: %s", f.Entry.Label(), f.Code)
			printDetail("%v", f.Err)
		}
	}
	return nil
}

// =============================================================================
// JSON output
// =============================================================================

// jsonRecord is one line of --output json.
type jsonRecord struct {
	Run   string      `json:"run"`
	Time  time.Time   `json:"time"`
	Kind  string      `json:"kind"`
	Task  string      `json:"task,omitempty"`
	ID    string      `json:"id,omitempty"`
	Code  string      `json:"code,omitempty"`
	Error string      `json:"error,omitempty"`
	Event event.Event `json:"event,omitempty"`
}

// Record kinds besides the event kinds.
const (
	kindTaskBegin = "task_begin"
	kindTaskEnd   = "task_end"
	kindRetry     = "retry"
	kindInstalled = "installed"
	kindFailed    = "failed"
)

// jsonWatcher writes one JSON object per line, tagged with the run id.
type jsonWatcher struct {
	enc   *json.Encoder
	runID string
	now   func() time.Time
	err   error // first write error
}

func (j *jsonWatcher) write(r jsonRecord) {
	r.Run, r.Time = j.runID, j.now()
	if err := j.enc.Encode(r); err != nil && j.err == nil {
		j.err = err
	}
}

func (j *jsonWatcher) OnTaskBegin(t task.Task) {
	j.write(jsonRecord{Kind: kindTaskBegin, Task: t.Name()})
}

func (j *jsonWatcher) OnTaskEnd(t task.Task) {
	j.write(jsonRecord{Kind: kindTaskEnd, Task: t.Name()})
}

func (j *jsonWatcher) OnEvent(ev event.Event) {
	j.write(jsonRecord{Kind: string(ev.Kind()), Event: ev})
}

func (j *jsonWatcher) retry(attempt int, err error) {
	j.write(jsonRecord{Kind: kindRetry, Code: string(mcerrors.GetCode(err)), Error: fmt.Sprintf("attempt %d: %v", attempt, err)})
}

func (j *jsonWatcher) finish(id string, err error) error {
	if err != nil {
		j.write(jsonRecord{Kind: kindFailed, Code: string(mcerrors.GetCode(err)), Error: err.Error()})
	} else {
		j.write(jsonRecord{Kind: kindInstalled, ID: id})
	}
	return j.err
}

// =============================================================================
// Silent output
// =============================================================================

type silentWatcher struct{ task.NopWatcher }

func (silentWatcher) retry(int, error)           {}
func (silentWatcher) finish(string, error) error { return nil }
