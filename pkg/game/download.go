package game

import (
	"context"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/download"
	"github.com/matzehuels/mcinstall/pkg/session"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// DownloadTaskName identifies [DownloadTask].
const DownloadTaskName = "download"

// ListKey holds the download list shared by every resolution task.
var ListKey = task.NewKey[*download.List]("game.downloads")

// DefaultWorkers is the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU() * 4
}

// downloads returns the shared list, creating it if a sequence was built
// without a [DownloadTask].
func downloads(s *task.State) *download.List {
	if l, ok := ListKey.Get(s); ok && l != nil {
		return l
	}
	l := &download.List{}
	ListKey.Insert(s, l)
	return l
}

// DownloadTask runs the shared download list once. The list is emptied after
// a successful run, so re-running a sequence only fetches what is missing.
type DownloadTask struct {
	Session *session.Session // nil selects session.Default()
	Workers int              // zero selects DefaultWorkers
	Logger  *log.Logger
}

func (t *DownloadTask) Name() string { return DownloadTaskName }

func (t *DownloadTask) Setup(s *task.State) {
	ListKey.Insert(s, &download.List{})
}

func (t *DownloadTask) Execute(ctx context.Context, s *task.State, w task.Watcher) error {
	l := downloads(s)
	if l.Len() == 0 {
		return nil
	}
	sess := t.Session
	if sess == nil {
		sess = session.Default()
	}
	workers := t.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}

	logger.Debug("downloading", "entries", l.Len(), "bytes", l.Size(), "workers", workers)
	if err := l.Run(ctx, sess, w, workers); err != nil {
		return err
	}
	l.Reset()
	return nil
}
