// Package event defines the closed set of progress and status events emitted
// by installation tasks.
//
// Every event implements [Event], whose unexported marker method keeps the set
// sealed to this package. Watchers dispatch with a single type switch over the
// concrete types, or over [Kind] when only the tag is needed:
//
//	switch e := ev.(type) {
//	case event.DownloadProgress:
//	    bar.Add(e.Bytes)
//	case event.DownloadComplete:
//	    bar.Done()
//	}
package event

import "fmt"

// Kind is the stable tag of an event, suitable for machine-readable output.
type Kind string

// Event kinds.
const (
	KindVersionLoading   Kind = "version_loading"
	KindVersionFetching  Kind = "version_fetching"
	KindVersionLoaded    Kind = "version_loaded"
	KindLoaderResolve    Kind = "loader_resolve"
	KindResolveBegin     Kind = "resolve_begin"
	KindResolveEnd       Kind = "resolve_end"
	KindJarFound         Kind = "jar_found"
	KindJvmLoading       Kind = "jvm_loading"
	KindJvmLoaded        Kind = "jvm_loaded"
	KindDownloadStart    Kind = "download_start"
	KindDownloadProgress Kind = "download_progress"
	KindDownloadComplete Kind = "download_complete"
)

// Kinds lists every event kind in declaration order.
var Kinds = []Kind{
	KindVersionLoading, KindVersionFetching, KindVersionLoaded,
	KindLoaderResolve,
	KindResolveBegin, KindResolveEnd,
	KindJarFound,
	KindJvmLoading, KindJvmLoaded,
	KindDownloadStart, KindDownloadProgress, KindDownloadComplete,
}

// Facet names the part of an installation a resolve task is computing.
type Facet string

// Resolution facets.
const (
	FacetLibraries Facet = "libraries"
	FacetAssets    Facet = "assets"
	FacetLogger    Facet = "logger"
	FacetJvm       Facet = "jvm"
	FacetJar       Facet = "jar"
)

// Event is a tagged progress or status value. The set of implementations is
// closed.
type Event interface {
	Kind() Kind
	isEvent()
}

// VersionLoading is emitted before a version's metadata is loaded from disk.
type VersionLoading struct{ ID string }

// VersionFetching is emitted before a version's metadata is fetched remotely.
type VersionFetching struct{ ID string }

// VersionLoaded is emitted once a version's metadata is available.
type VersionLoaded struct {
	ID    string
	Depth int // position in the parent chain, 0 for the root
}

// LoaderResolve is emitted by variant tasks while resolving a loader.
type LoaderResolve struct {
	Loader        string
	GameVersion   string
	LoaderVersion string // empty until resolved
}

// ResolveBegin opens a facet resolution.
type ResolveBegin struct{ Facet Facet }

// ResolveEnd closes a facet resolution. Count is the number of items the
// facet contributed, whether or not they needed downloading.
type ResolveEnd struct {
	Facet Facet
	Count int
}

// JarFound is emitted when the client jar location is known.
type JarFound struct {
	ID   string
	Path string
}

// JvmLoading is emitted before a JVM runtime is resolved.
type JvmLoading struct{ Component string }

// JvmLoaded is emitted once the JVM executable is known.
type JvmLoaded struct {
	Component string
	Version   string
	Path      string
}

// DownloadStart is emitted once, before any transfer begins.
type DownloadStart struct {
	Entries int
	Bytes   int64
	Workers int
}

// DownloadProgress reports one worker's progress since its previous report.
// Speeds are per worker; aggregating them is the watcher's job.
type DownloadProgress struct {
	Worker    int
	Bytes     int64   // bytes since the worker's previous report
	Completed int     // entries this worker has finished so far
	Speed     float64 // bytes per second over the last interval
}

// DownloadComplete is emitted once when every entry succeeded.
type DownloadComplete struct {
	Entries int
	Bytes   int64
}

func (VersionLoading) Kind() Kind   { return KindVersionLoading }
func (VersionFetching) Kind() Kind  { return KindVersionFetching }
func (VersionLoaded) Kind() Kind    { return KindVersionLoaded }
func (LoaderResolve) Kind() Kind    { return KindLoaderResolve }
func (ResolveBegin) Kind() Kind     { return KindResolveBegin }
func (ResolveEnd) Kind() Kind       { return KindResolveEnd }
func (JarFound) Kind() Kind         { return KindJarFound }
func (JvmLoading) Kind() Kind       { return KindJvmLoading }
func (JvmLoaded) Kind() Kind        { return KindJvmLoaded }
func (DownloadStart) Kind() Kind    { return KindDownloadStart }
func (DownloadProgress) Kind() Kind { return KindDownloadProgress }
func (DownloadComplete) Kind() Kind { return KindDownloadComplete }

func (VersionLoading) isEvent()   {}
func (VersionFetching) isEvent()  {}
func (VersionLoaded) isEvent()    {}
func (LoaderResolve) isEvent()    {}
func (ResolveBegin) isEvent()     {}
func (ResolveEnd) isEvent()       {}
func (JarFound) isEvent()         {}
func (JvmLoading) isEvent()       {}
func (JvmLoaded) isEvent()        {}
func (DownloadStart) isEvent()    {}
func (DownloadProgress) isEvent() {}
func (DownloadComplete) isEvent() {}

// Describe returns a short human-readable rendering of an event.
func Describe(ev Event) string {
	switch e := ev.(type) {
	case VersionLoading:
		return fmt.Sprintf("loading version %s", e.ID)
	case VersionFetching:
		return fmt.Sprintf("fetching version %s", e.ID)
	case VersionLoaded:
		return fmt.Sprintf("loaded version %s", e.ID)
	case LoaderResolve:
		if e.LoaderVersion == "" {
			return fmt.Sprintf("resolving %s loader for %s", e.Loader, e.GameVersion)
		}
		return fmt.Sprintf("resolved %s loader %s for %s", e.Loader, e.LoaderVersion, e.GameVersion)
	case ResolveBegin:
		return fmt.Sprintf("resolving %s", e.Facet)
	case ResolveEnd:
		return fmt.Sprintf("resolved %d %s", e.Count, e.Facet)
	case JarFound:
		return fmt.Sprintf("client jar %s", e.Path)
	case JvmLoading:
		return fmt.Sprintf("loading JVM %s", e.Component)
	case JvmLoaded:
		return fmt.Sprintf("JVM %s ready at %s", e.Component, e.Path)
	case DownloadStart:
		return fmt.Sprintf("downloading %d files (%d bytes) with %d workers", e.Entries, e.Bytes, e.Workers)
	case DownloadProgress:
		return fmt.Sprintf("worker %d: %d done", e.Worker, e.Completed)
	case DownloadComplete:
		return fmt.Sprintf("downloaded %d files", e.Entries)
	}
	return string(ev.Kind())
}
