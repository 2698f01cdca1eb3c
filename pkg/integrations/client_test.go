package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/mcinstall/pkg/cache"
	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/session"
)

func testClient(t *testing.T) (*Client, cache.Cache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return NewClient(session.New(session.Options{Timeout: 5 * time.Second}), c, nil, "test", time.Hour), c
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil, nil, nil, "ns", 0)
	if client.Session() == nil {
		t.Error("nil session should select the default session")
	}
	if client.cache == nil || client.keyer == nil {
		t.Error("nil backend and keyer should be replaced")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client, _ := testClient(t)

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text response"))
	}))
	defer server.Close()

	client, _ := testClient(t)
	text, err := client.GetText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetText() error: %v", err)
	}
	if text != "plain text response" {
		t.Errorf("GetText() = %q", text)
	}
}

func TestClientGetDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{"))
	}))
	defer server.Close()

	client, _ := testClient(t)
	var v map[string]any
	if err := client.Get(context.Background(), server.URL, &v); err == nil {
		t.Error("Get() should fail on malformed JSON")
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := testClient(t)
	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if got := session.StatusCode(err); got != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", got)
	}
	if cache.IsRetryable(err) {
		t.Error("404 should not be retryable")
	}
}

func TestClientGet500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := testClient(t)
	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork", err)
	}
	if !cache.IsRetryable(err) {
		t.Errorf("Get() error should be retryable, got %T", err)
	}
	if code := mcerrors.GetCode(err); code != mcerrors.ErrCodeHTTPStatus {
		t.Errorf("GetCode = %s, want %s", code, mcerrors.ErrCodeHTTPStatus)
	}
}

func TestClientGet403NotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, _ := testClient(t)
	_, err := client.GetBytes(context.Background(), server.URL)
	if !errors.Is(err, ErrNetwork) || cache.IsRetryable(err) {
		t.Errorf("403: err = %v, retryable = %v", err, cache.IsRetryable(err))
	}
}

func TestClientCached(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	type testData struct {
		Value string `json:"value"`
	}
	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			v.Value = "fetched"
			return nil
		}
	}

	var first testData
	if err := client.Cached(ctx, "key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second testData
	if err := client.Cached(ctx, "key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q", second.Value)
	}

	var third testData
	if err := client.Cached(ctx, "key", true, &third, fetch(&third)); err != nil {
		t.Fatal(err)
	}
	if fetchCount != 2 {
		t.Errorf("refresh should bypass the cache, fetch count = %d", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client, _ := testClient(t)

	fetchCount := 0
	var value string
	err := client.Cached(context.Background(), "err", false, &value, func() error {
		fetchCount++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetchCount != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", fetchCount)
	}
}

func TestClientCachedBytes(t *testing.T) {
	client, backend := testClient(t)
	ctx := context.Background()

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte(`{"raw":true}`), nil
	}
	for range 2 {
		data, err := client.CachedBytes(ctx, "raw", false, fetch)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != `{"raw":true}` {
			t.Errorf("data = %s", data)
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	key := cache.NewDefaultKeyer().HTTPKey("test", "raw")
	if _, hit, _ := backend.Get(ctx, key); !hit {
		t.Errorf("entry not stored under %q", key)
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	plain := errors.New("boom")
	if got := MapError(plain); got != plain {
		t.Errorf("MapError(non-session error) = %v", got)
	}
}
