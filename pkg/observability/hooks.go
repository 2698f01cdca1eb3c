// Package observability lets a program receive instrumentation from the
// installer libraries without those libraries depending on a metrics or
// tracing backend.
//
// Four hook sets exist: task execution, downloads, cache access and HTTP
// requests. Each defaults to a no-op and can be replaced once at startup:
//
//	observability.SetTaskHooks(myTaskHooks{})
//
// Library code fetches the current hooks at the call site:
//
//	hooks := observability.Tasks()
//	hooks.OnTaskStart(ctx, "libraries")
//	// ... run the task ...
//	hooks.OnTaskComplete(ctx, "libraries", time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// TaskHooks receives events from installation sequences.
type TaskHooks interface {
	OnTaskStart(ctx context.Context, name string)
	OnTaskComplete(ctx context.Context, name string, duration time.Duration, err error)
}

// DownloadHooks receives events from the download engine.
type DownloadHooks interface {
	// OnDownloadStart records the start of a run over entries files.
	OnDownloadStart(ctx context.Context, entries int, bytes int64, workers int)

	// OnEntryComplete records one finished entry. err is nil on success.
	OnEntryComplete(ctx context.Context, url string, bytes int64, duration time.Duration, err error)

	// OnDownloadComplete records the end of a run and its failure count.
	OnDownloadComplete(ctx context.Context, entries, failures int, duration time.Duration)
}

// CacheHooks receives events from cache backends. keyType names the backend.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP session.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure such as a timeout or refused
	// connection.
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopTaskHooks struct{}

func (NoopTaskHooks) OnTaskStart(context.Context, string)                          {}
func (NoopTaskHooks) OnTaskComplete(context.Context, string, time.Duration, error) {}

type NoopDownloadHooks struct{}

func (NoopDownloadHooks) OnDownloadStart(context.Context, int, int64, int)                     {}
func (NoopDownloadHooks) OnEntryComplete(context.Context, string, int64, time.Duration, error) {}
func (NoopDownloadHooks) OnDownloadComplete(context.Context, int, int, time.Duration)          {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook set.
type slot[T any] struct {
	v   atomic.Pointer[T]
	def T
}

func (s *slot[T]) get() T {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.v.Store(&h) }
func (s *slot[T]) reset()  { s.v.Store(nil) }

var (
	taskHooks     = &slot[TaskHooks]{def: NoopTaskHooks{}}
	downloadHooks = &slot[DownloadHooks]{def: NoopDownloadHooks{}}
	cacheHooks    = &slot[CacheHooks]{def: NoopCacheHooks{}}
	httpHooks     = &slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetTaskHooks registers task hooks. A nil h is ignored.
func SetTaskHooks(h TaskHooks) {
	if h != nil {
		taskHooks.set(h)
	}
}

// SetDownloadHooks registers download hooks. A nil h is ignored.
func SetDownloadHooks(h DownloadHooks) {
	if h != nil {
		downloadHooks.set(h)
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.set(h)
	}
}

func Tasks() TaskHooks         { return taskHooks.get() }
func Downloads() DownloadHooks { return downloadHooks.get() }
func Cache() CacheHooks        { return cacheHooks.get() }
func HTTP() HTTPHooks          { return httpHooks.get() }

// Reset restores the no-op hooks.
func Reset() {
	taskHooks.reset()
	downloadHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
