// Package manifest maintains a local copy of the remote version registry.
//
// The registry lists every published game version with its type, release
// time and the location and digest of its metadata document. [Manifest]
// keeps a JSON snapshot on disk, revalidates it with If-Modified-Since once
// it is older than a configurable age, and falls back to the snapshot when
// the network is unavailable.
//
// Lookups resolve the "release" and "snapshot" aliases to the registry's
// latest pointers. A lookup for an unknown identifier is not an error here;
// reporting it is left to metadata resolution.
package manifest

import (
	"context"
	"encoding/json"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/integrations/mojang"
)

// Aliases accepted by [Manifest.ResolveAlias].
const (
	AliasRelease  = "release"
	AliasSnapshot = "snapshot"
)

// DefaultMaxAge is the snapshot age after which lookups revalidate.
const DefaultMaxAge = time.Hour

// Entry is one registry row.
type Entry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Time        time.Time `json:"time"`
	ReleaseTime time.Time `json:"releaseTime"`
	SHA1        string    `json:"sha1,omitempty"`
}

// Latest holds the registry's alias pointers.
type Latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// Fetcher performs the conditional registry download.
// [*mojang.Client] implements it.
type Fetcher interface {
	FetchManifest(ctx context.Context, ifModifiedSince string) (*mojang.ManifestResponse, error)
}

// snapshot is both the remote document and the cache file layout.
type snapshot struct {
	FetchedAt    time.Time `json:"fetched_at"`
	LastModified string    `json:"last_modified,omitempty"`
	Latest       Latest    `json:"latest"`
	Versions     []Entry   `json:"versions"`
}

// Options configures a [Manifest].
type Options struct {
	// CachePath is the snapshot file. Empty keeps the snapshot in memory.
	CachePath string
	// MaxAge is used by lookups; zero selects DefaultMaxAge.
	MaxAge time.Duration
	Logger *log.Logger
}

// Manifest is the version registry with its local cache.
// It is safe for concurrent use.
type Manifest struct {
	fetcher Fetcher
	path    string
	maxAge  time.Duration
	logger  *log.Logger
	now     func() time.Time

	mu     sync.Mutex
	data   *snapshot
	loaded bool
}

// New creates a Manifest. Nothing is read or fetched until first use.
func New(fetcher Fetcher, opts Options) *Manifest {
	if opts.MaxAge == 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Manifest{
		fetcher: fetcher,
		path:    opts.CachePath,
		maxAge:  opts.MaxAge,
		logger:  opts.Logger,
		now:     time.Now,
	}
}

// RefreshIfStale fetches the registry when no snapshot exists or the
// snapshot is older than maxAge, then rewrites the cache file. A failed
// refresh keeps an existing snapshot and only fails when there is none.
func (m *Manifest) RefreshIfStale(ctx context.Context, maxAge time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx, maxAge)
}

func (m *Manifest) refreshLocked(ctx context.Context, maxAge time.Duration) error {
	if !m.loaded {
		m.data = m.readCache()
		m.loaded = true
	}
	if m.data != nil && m.now().Sub(m.data.FetchedAt) <= maxAge {
		return nil
	}

	var since string
	if m.data != nil {
		since = m.data.LastModified
	}
	resp, err := m.fetcher.FetchManifest(ctx, since)
	if err != nil {
		if m.data != nil {
			m.logger.Warn("version manifest refresh failed, using cached copy", "err", err)
			return nil
		}
		return mcerrors.Wrap(mcerrors.ErrCodeManifestUnavailable, err, "version manifest unavailable")
	}

	if resp.NotModified && m.data != nil {
		m.data.FetchedAt = m.now()
		m.logger.Debug("version manifest not modified")
	} else {
		var fresh snapshot
		if err := json.Unmarshal(resp.Data, &fresh); err != nil {
			if m.data != nil {
				m.logger.Warn("version manifest is malformed, using cached copy", "err", err)
				return nil
			}
			return mcerrors.Wrap(mcerrors.ErrCodeManifestUnavailable, err, "decode version manifest")
		}
		fresh.FetchedAt = m.now()
		fresh.LastModified = resp.LastModified
		m.data = &fresh
		m.logger.Debug("version manifest refreshed", "versions", len(fresh.Versions))
	}

	if err := m.writeCache(); err != nil {
		m.logger.Warn("could not write version manifest cache", "path", m.path, "err", err)
	}
	return nil
}

func (m *Manifest) readCache() *snapshot {
	if m.path == "" {
		return nil
	}
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return nil
	}
	var s snapshot
	if json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return &s
}

func (m *Manifest) writeCache() error {
	if m.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}

func (m *Manifest) ensure(ctx context.Context) (*snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.refreshLocked(ctx, m.maxAge); err != nil {
		return nil, err
	}
	return m.data, nil
}

// ResolveAlias maps "release" and "snapshot" to the latest identifiers.
// Anything else, including an alias the registry has no pointer for, is
// returned unchanged with alias false. Non-alias input never loads the
// registry.
func (m *Manifest) ResolveAlias(ctx context.Context, id string) (resolved string, alias bool, err error) {
	if id != AliasRelease && id != AliasSnapshot {
		return id, false, nil
	}
	s, err := m.ensure(ctx)
	if err != nil {
		return "", false, err
	}
	latest := s.Latest.Release
	if id == AliasSnapshot {
		latest = s.Latest.Snapshot
	}
	if latest == "" {
		return id, false, nil
	}
	return latest, true, nil
}

// Get returns the registry row for id, resolving aliases first.
func (m *Manifest) Get(ctx context.Context, id string) (Entry, bool, error) {
	id, _, err := m.ResolveAlias(ctx, id)
	if err != nil {
		return Entry{}, false, err
	}
	s, err := m.ensure(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range s.Versions {
		if e.ID == id {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Type returns the release type of id, or "" when it is not listed.
func (m *Manifest) Type(ctx context.Context, id string) (string, error) {
	e, _, err := m.Get(ctx, id)
	return e.Type, err
}

// Latest returns the alias pointers.
func (m *Manifest) Latest(ctx context.Context) (Latest, error) {
	s, err := m.ensure(ctx)
	if err != nil {
		return Latest{}, err
	}
	return s.Latest, nil
}

// All returns the registry rows in registry order, newest first. The
// sequence iterates a snapshot and may be ranged over repeatedly.
func (m *Manifest) All(ctx context.Context) (iter.Seq[Entry], error) {
	s, err := m.ensure(ctx)
	if err != nil {
		return nil, err
	}
	versions := s.Versions
	return func(yield func(Entry) bool) {
		for _, e := range versions {
			if !yield(e) {
				return
			}
		}
	}, nil
}

// FetchedAt reports when the snapshot was last confirmed fresh.
func (m *Manifest) FetchedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return time.Time{}
	}
	return m.data.FetchedAt
}
