// Package fabric provides a client for the Fabric and Quilt loader metadata
// services. Both expose the same API shape under different base URLs.
package fabric

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/mcinstall/pkg/cache"
	"github.com/matzehuels/mcinstall/pkg/integrations"
	"github.com/matzehuels/mcinstall/pkg/session"
)

// API names a loader metadata service.
type API struct {
	Name    string // also the default version id prefix
	BaseURL string
}

var (
	Fabric = API{Name: "fabric", BaseURL: "https://meta.fabricmc.net/v2"}
	Quilt  = API{Name: "quilt", BaseURL: "https://meta.quiltmc.org/v3"}
)

// LoaderVersion is one loader release compatible with a game version.
type LoaderVersion struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

type loaderEntry struct {
	Loader LoaderVersion `json:"loader"`
}

// Client queries one loader API. Safe for concurrent use.
type Client struct {
	*integrations.Client
	api API
}

// NewClient creates a client for api.
func NewClient(api API, sess *session.Session, backend cache.Cache, keyer cache.Keyer, ttl time.Duration) *Client {
	return &Client{
		Client: integrations.NewClient(sess, backend, keyer, api.Name, ttl),
		api:    api,
	}
}

// API returns the service this client talks to.
func (c *Client) API() API { return c.api }

// Loaders lists the loader versions available for game, newest first.
func (c *Client) Loaders(ctx context.Context, game string, refresh bool) ([]LoaderVersion, error) {
	var entries []loaderEntry
	err := c.Cached(ctx, "loaders:"+game, refresh, &entries, func() error {
		return c.Get(ctx, integrations.JoinURL(c.api.BaseURL, "versions", "loader", game), &entries)
	})
	if err != nil {
		return nil, err
	}
	out := make([]LoaderVersion, len(entries))
	for i, e := range entries {
		out[i] = e.Loader
	}
	return out, nil
}

// LatestLoader returns the first loader version listed for game.
func (c *Client) LatestLoader(ctx context.Context, game string, refresh bool) (string, error) {
	loaders, err := c.Loaders(ctx, game, refresh)
	if err != nil {
		return "", err
	}
	if len(loaders) == 0 {
		return "", fmt.Errorf("%w: no %s loader for %s", integrations.ErrNotFound, c.api.Name, game)
	}
	return loaders[0].Version, nil
}

// Profile returns the launcher profile of (game, loader) verbatim. The
// profile is a version metadata document inheriting from game.
func (c *Client) Profile(ctx context.Context, game, loader string) ([]byte, error) {
	return c.FetchBytes(ctx, integrations.JoinURL(c.api.BaseURL, "versions", "loader", game, loader, "profile", "json"))
}
