package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matzehuels/mcinstall/pkg/cache"
	"github.com/matzehuels/mcinstall/pkg/session"
)

// Client provides shared HTTP functionality for the metadata API clients:
// response caching under a namespace, retries, and error classification.
type Client struct {
	session   *session.Session
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
}

// NewClient creates a Client. A nil session selects [session.Default], a nil
// backend disables caching and a nil keyer selects [cache.DefaultKeyer].
func NewClient(sess *session.Session, backend cache.Cache, keyer cache.Keyer, namespace string, ttl time.Duration) *Client {
	if sess == nil {
		sess = session.Default()
	}
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Client{session: sess, cache: backend, keyer: keyer, namespace: namespace, ttl: ttl}
}

// Session returns the underlying HTTP session.
func (c *Client) Session() *session.Session { return c.session }

// Cached retrieves a JSON value from cache or executes fetch and caches the
// result. If refresh is true, the cache is bypassed and fetch is always
// called. fetch should populate v; on success v is stored.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, k); ok && json.Unmarshal(data, v) == nil {
			return nil
		}
	}
	if err := cache.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, k, data, c.ttl)
	}
	return nil
}

// CachedBytes is [Client.Cached] for raw payloads that are kept verbatim.
func (c *Client) CachedBytes(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, k); ok {
			return data, nil
		}
	}
	var data []byte
	err := cache.RetryWithBackoff(ctx, func() (err error) {
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, k, data, c.ttl)
	return data, nil
}

// Get performs a GET and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	data, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetBytes performs a GET and returns the body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	data, err := c.session.Fetch(ctx, url, "application/json")
	if err != nil {
		return nil, MapError(err)
	}
	return data, nil
}

// FetchBytes is [Client.GetBytes] retrying temporary failures with
// [cache.DefaultBackoff]. The body is returned verbatim and never cached.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := cache.RetryWithBackoff(ctx, func() (err error) {
		data, err = c.GetBytes(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// GetText performs a GET and returns the body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	data, err := c.GetBytes(ctx, url)
	return string(data), err
}

// MapError maps session failures onto ErrNotFound and ErrNetwork, marking
// temporary ones retryable. The session error stays in the chain.
func MapError(err error) error {
	var se *session.Error
	if !errors.As(err, &se) {
		return err
	}
	if se.Kind == session.KindStatus && se.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if se.Temporary() {
		return cache.Retryable(fmt.Errorf("%w: %w", ErrNetwork, err))
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
