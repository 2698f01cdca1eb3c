package download

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/observability"
	"github.com/matzehuels/mcinstall/pkg/session"
)

// Emitter receives engine events. A task.Watcher satisfies it.
type Emitter interface {
	OnEvent(ev event.Event)
}

// progressInterval throttles in-transfer progress reports per worker.
var progressInterval = 100 * time.Millisecond

const bufferSize = 64 << 10

// errSizeMismatch and errDigestMismatch mark verification failures.
var (
	errSizeMismatch   = errors.New("size mismatch")
	errDigestMismatch = errors.New("sha1 mismatch")
)

// Run downloads every entry using at most workers concurrent transfers.
// An empty list returns immediately without emitting events.
//
// Run emits one [event.DownloadStart], then progress from each worker, then
// one [event.DownloadComplete] if every entry succeeded. Otherwise it returns
// an [*Error] listing every failed entry.
func (l *List) Run(ctx context.Context, s *session.Session, em Emitter, workers int) error {
	n := len(l.entries)
	if n == 0 {
		return nil
	}
	workers = max(1, min(workers, n))
	entries := l.Entries()

	hooks := observability.Downloads()
	start := time.Now()
	em.OnEvent(event.DownloadStart{Entries: n, Bytes: l.size, Workers: workers})
	hooks.OnDownloadStart(ctx, n, l.size, workers)

	var (
		mu       sync.Mutex
		failures []indexedFailure
		wg       sync.WaitGroup
	)
	events := make(chan event.Event, workers*4)

	for id := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := &worker{id: id, session: s, events: events, buf: make([]byte, bufferSize), sum: sha1.New()}
			for i := id; i < n; i += workers {
				if f, ok := w.fetch(ctx, entries[i]); !ok {
					mu.Lock()
					failures = append(failures, indexedFailure{index: i, Failure: f})
					mu.Unlock()
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(events)
	}()

	for ev := range events {
		em.OnEvent(ev)
	}

	hooks.OnDownloadComplete(ctx, n, len(failures), time.Since(start))
	if len(failures) > 0 {
		sort.Slice(failures, func(a, b int) bool { return failures[a].index < failures[b].index })
		out := make([]Failure, len(failures))
		for i, f := range failures {
			out[i] = f.Failure
		}
		return &Error{Failures: out}
	}
	em.OnEvent(event.DownloadComplete{Entries: n, Bytes: l.size})
	return nil
}

type indexedFailure struct {
	index int
	Failure
}

// worker owns a reusable buffer and hasher. Only its goroutine touches it.
type worker struct {
	id        int
	session   *session.Session
	events    chan<- event.Event
	buf       []byte
	sum       hash.Hash
	completed int

	pending  int64
	lastSent time.Time
}

func (w *worker) fetch(ctx context.Context, e Entry) (Failure, bool) {
	start := time.Now()
	w.lastSent = start
	n, err := w.transfer(ctx, e)
	observability.Downloads().OnEntryComplete(ctx, e.URL, n, time.Since(start), err)
	if err != nil {
		code := codeFor(err)
		switch {
		case errors.Is(err, errSizeMismatch):
			code = CodeInvalidSize
		case errors.Is(err, errDigestMismatch):
			code = CodeInvalidSHA1
		}
		// Bytes already reported stay reported; flush the remainder so
		// per-worker byte totals match what was transferred.
		w.report(true)
		return Failure{Entry: e, Code: code, Err: err}, false
	}
	w.completed++
	w.report(true)
	return Failure{}, true
}

// transfer streams e into a temporary file and renames it into place.
func (w *worker) transfer(ctx context.Context, e Entry) (int64, error) {
	resp, err := w.session.Get(ctx, e.URL, "*/*")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	dir := filepath.Dir(e.Dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(e.Dest)+".*.part")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w.sum.Reset()
	var written int64
	for {
		nr, rerr := resp.Body.Read(w.buf)
		if nr > 0 {
			if _, err := tmp.Write(w.buf[:nr]); err != nil {
				return written, err
			}
			w.sum.Write(w.buf[:nr])
			written += int64(nr)
			w.pending += int64(nr)
			w.report(false)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, &session.Error{Kind: session.Classify(rerr), Method: "GET", URL: e.URL, Err: rerr}
		}
	}

	if e.Size > 0 && written != e.Size {
		return written, fmt.Errorf("%w: got %d bytes, want %d", errSizeMismatch, written, e.Size)
	}
	if e.SHA1 != "" {
		if got := hex.EncodeToString(w.sum.Sum(nil)); !strings.EqualFold(got, e.SHA1) {
			return written, fmt.Errorf("%w: got %s, want %s", errDigestMismatch, got, e.SHA1)
		}
	}

	mode := os.FileMode(0o644)
	if e.Executable {
		mode = 0o755
	}
	if err := tmp.Chmod(mode); err != nil {
		return written, err
	}
	if err := tmp.Close(); err != nil {
		return written, err
	}
	if err := os.Rename(tmpName, e.Dest); err != nil {
		return written, err
	}
	committed = true
	return written, nil
}

// report sends a progress event when forced or when the throttle interval
// has elapsed.
func (w *worker) report(force bool) {
	now := time.Now()
	elapsed := now.Sub(w.lastSent)
	if !force && elapsed < progressInterval {
		return
	}
	if !force && w.pending == 0 {
		return
	}
	var speed float64
	if elapsed > 0 {
		speed = float64(w.pending) / elapsed.Seconds()
	}
	w.events <- event.DownloadProgress{
		Worker:    w.id,
		Bytes:     w.pending,
		Completed: w.completed,
		Speed:     speed,
	}
	w.pending = 0
	w.lastSent = now
}
