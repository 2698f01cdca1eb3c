package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/observability"
)

// debugHooks logs library instrumentation at debug level. The root command
// registers it for --verbose runs.
type debugHooks struct {
	logger *log.Logger
}

func registerDebugHooks(l *log.Logger) {
	h := debugHooks{logger: l}
	observability.SetTaskHooks(h)
	observability.SetDownloadHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h debugHooks) OnTaskStart(context.Context, string) {}

func (h debugHooks) OnTaskComplete(_ context.Context, name string, d time.Duration, err error) {
	h.logger.Debug("task complete", "task", name, "took", d.Round(time.Millisecond), "err", err)
}

func (h debugHooks) OnDownloadStart(_ context.Context, entries int, bytes int64, workers int) {
	h.logger.Debug("download start", "entries", entries, "bytes", bytes, "workers", workers)
}

func (h debugHooks) OnEntryComplete(_ context.Context, url string, _ int64, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("download failed", "url", url, "took", d.Round(time.Millisecond), "err", err)
	}
}

func (h debugHooks) OnDownloadComplete(_ context.Context, entries, failures int, d time.Duration) {
	h.logger.Debug("download complete", "entries", entries, "failures", failures, "took", d.Round(time.Millisecond))
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "backend", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "backend", keyType)
}

func (h debugHooks) OnCacheSet(context.Context, string, int) {}

func (h debugHooks) OnRequest(context.Context, string, string, string) {}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
