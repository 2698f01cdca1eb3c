package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer the spinner goroutine writes to.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testSpinner(message string) (*Spinner, *syncBuffer) {
	out := &syncBuffer{}
	s := newSpinner(message)
	s.out = out
	s.interval = 5 * time.Millisecond
	return s, out
}

func TestSpinnerDrawsMessage(t *testing.T) {
	s, out := testSpinner("Downloading 0/3 files")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Downloading 0/3 files") {
		t.Errorf("spinner output = %q, want message", out.String())
	}
	if !strings.HasSuffix(out.String(), "\r") {
		t.Error("Stop() should clear the line")
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	s, out := testSpinner("Downloading 0/3 files")
	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.SetMessage("Downloading 2/3 files")
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Downloading 2/3 files") {
		t.Errorf("spinner output = %q, want updated message", out.String())
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := testSpinner("Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}
