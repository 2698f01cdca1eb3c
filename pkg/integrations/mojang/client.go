package mojang

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/mcinstall/pkg/cache"
	"github.com/matzehuels/mcinstall/pkg/integrations"
	"github.com/matzehuels/mcinstall/pkg/session"
)

// Official endpoints.
const (
	ManifestURL  = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	RuntimesURL  = "https://piston-meta.mojang.com/v1/products/java-runtime/2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json"
	ResourcesURL = "https://resources.download.minecraft.net"
	LibrariesURL = "https://libraries.minecraft.net/"
)

// Download is a remote file descriptor as it appears throughout Mojang
// metadata.
type Download struct {
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// ManifestResponse is the result of a conditional manifest fetch.
type ManifestResponse struct {
	Data         []byte // raw body, nil when NotModified
	LastModified string
	NotModified  bool
}

// Runtimes is the Java runtime catalogue: platform → component → releases.
type Runtimes map[string]map[string][]Runtime

// Runtime is one published release of a runtime component.
type Runtime struct {
	Manifest Download `json:"manifest"`
	Version  struct {
		Name     string `json:"name"`
		Released string `json:"released"`
	} `json:"version"`
}

// Lookup returns the first release of component for platform.
func (r Runtimes) Lookup(platform, component string) (Runtime, bool) {
	rel := r[platform][component]
	if len(rel) == 0 {
		return Runtime{}, false
	}
	return rel[0], true
}

// RuntimeManifest lists the files of one runtime release.
type RuntimeManifest struct {
	Files map[string]RuntimeFile `json:"files"`
	// Version is filled in locally from the catalogue entry.
	Version string `json:"version,omitempty"`
}

// RuntimeFile is a file, directory or link of a runtime.
type RuntimeFile struct {
	Type       string              `json:"type"`
	Executable bool                `json:"executable,omitempty"`
	Target     string              `json:"target,omitempty"`
	Downloads  map[string]Download `json:"downloads,omitempty"`
}

// Client talks to the Mojang metadata services.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	manifestURL string
	runtimesURL string
}

// NewClient creates a client against the official endpoints. Only the
// runtime catalogue goes through backend; version documents and asset
// indexes are cached on disk by their callers.
func NewClient(sess *session.Session, backend cache.Cache, keyer cache.Keyer, ttl time.Duration) *Client {
	return &Client{
		Client:      integrations.NewClient(sess, backend, keyer, "mojang", ttl),
		manifestURL: ManifestURL,
		runtimesURL: RuntimesURL,
	}
}

// WithEndpoints returns a copy of c using other manifest and runtime URLs.
// Empty arguments keep the current value.
func (c *Client) WithEndpoints(manifestURL, runtimesURL string) *Client {
	cp := *c
	if manifestURL != "" {
		cp.manifestURL = manifestURL
	}
	if runtimesURL != "" {
		cp.runtimesURL = runtimesURL
	}
	return &cp
}

// FetchManifest downloads the version manifest. A non-empty ifModifiedSince
// is sent as If-Modified-Since and a 304 answer yields NotModified.
func (c *Client) FetchManifest(ctx context.Context, ifModifiedSince string) (*ManifestResponse, error) {
	sess := c.Session()
	req, err := sess.NewRequest(ctx, c.manifestURL, "application/json")
	if err != nil {
		return nil, err
	}
	if ifModifiedSince != "" {
		req.Header.Set("If-Modified-Since", ifModifiedSince)
	}
	resp, err := sess.Do(req)
	if err != nil {
		return nil, integrations.MapError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return &ManifestResponse{NotModified: true, LastModified: ifModifiedSince}, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, integrations.MapError(&session.Error{
			Kind: session.KindStatus, Method: http.MethodGet, URL: c.manifestURL, Status: resp.StatusCode,
		})
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, integrations.MapError(&session.Error{
			Kind: session.Classify(err), Method: http.MethodGet, URL: c.manifestURL, Err: err,
		})
	}
	return &ManifestResponse{Data: data, LastModified: resp.Header.Get("Last-Modified")}, nil
}

// FetchVersion downloads a version metadata document verbatim.
func (c *Client) FetchVersion(ctx context.Context, url string) ([]byte, error) {
	return c.FetchBytes(ctx, url)
}

// FetchAssetIndex downloads an asset index verbatim.
func (c *Client) FetchAssetIndex(ctx context.Context, url string) ([]byte, error) {
	return c.FetchBytes(ctx, url)
}

// FetchRuntimes returns the Java runtime catalogue.
func (c *Client) FetchRuntimes(ctx context.Context, refresh bool) (Runtimes, error) {
	var r Runtimes
	err := c.Cached(ctx, "runtimes", refresh, &r, func() error {
		return c.Get(ctx, c.runtimesURL, &r)
	})
	return r, err
}

// FetchRuntimeManifest returns the file list of a runtime release and stamps
// it with the release name.
func (c *Client) FetchRuntimeManifest(ctx context.Context, rt Runtime, refresh bool) (*RuntimeManifest, error) {
	if rt.Manifest.URL == "" {
		return nil, fmt.Errorf("runtime %q has no manifest url", rt.Version.Name)
	}
	var m RuntimeManifest
	key := "runtime:" + rt.Manifest.SHA1
	if rt.Manifest.SHA1 == "" {
		key = "runtime:" + rt.Manifest.URL
	}
	err := c.Cached(ctx, key, refresh, &m, func() error {
		return c.Get(ctx, rt.Manifest.URL, &m)
	})
	if err != nil {
		return nil, err
	}
	m.Version = rt.Version.Name
	return &m, nil
}

// AssetURL is the download location of an asset object under base. An
// empty base selects ResourcesURL.
func AssetURL(base, hash string) string {
	if base == "" {
		base = ResourcesURL
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(base, "/"), hash[:2], hash)
}
