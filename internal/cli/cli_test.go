package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/cache"
	"github.com/matzehuels/mcinstall/pkg/config"
	"github.com/matzehuels/mcinstall/pkg/session"
)

func testCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.Config.Cache.Backend = config.BackendNone
	c.Config.MainDir = t.TempDir()
	return c
}

// writeGameDir lays out a main directory holding a fresh manifest snapshot
// and the installed metadata of the given versions.
func writeGameDir(t *testing.T, dir string, installed ...string) {
	t.Helper()
	snapshot := map[string]any{
		"fetched_at": time.Now().UTC(),
		"latest":     map[string]string{"release": "1.20.1", "snapshot": "23w31a"},
		"versions": []map[string]any{
			{"id": "23w31a", "type": "snapshot", "releaseTime": "2023-08-01T12:00:00Z"},
			{"id": "1.20.1", "type": "release", "releaseTime": "2023-06-12T13:25:51Z"},
			{"id": "1.19.4", "type": "release", "releaseTime": "2023-03-14T12:56:18Z"},
			{"id": "b1.7.3", "type": "old_beta", "releaseTime": "2011-07-07T22:00:00Z"},
		},
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "versions", manifestFile), raw)

	for _, id := range installed {
		doc := []byte(`{"id": "` + id + `", "type": "release", "mainClass": "net.minecraft.client.main.Main", "libraries": []}`)
		writeFile(t, filepath.Join(dir, "versions", id, id+".json"), doc)
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		c := testCLI(t)
		got, err := c.newCache(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := got.(cache.Clearer); ok {
			t.Errorf("none backend = %T, want a cache without Clear", got)
		}
	})

	t.Run("no-cache flag wins", func(t *testing.T) {
		c := testCLI(t)
		c.Config.Cache.Backend = config.BackendFile
		c.noCache = true
		got, err := c.newCache(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := got.(*cache.FileCache); ok {
			t.Error("--no-cache should disable the file cache")
		}
	})

	t.Run("file", func(t *testing.T) {
		c := testCLI(t)
		c.Config.Cache.Backend = config.BackendFile
		c.Config.Cache.Dir = filepath.Join(t.TempDir(), "api")
		got, err := c.newCache(ctx)
		if err != nil {
			t.Fatal(err)
		}
		fc, ok := got.(*cache.FileCache)
		if !ok {
			t.Fatalf("file backend = %T, want *cache.FileCache", got)
		}
		if fc.Dir() != c.Config.Cache.Dir {
			t.Errorf("Dir() = %q, want %q", fc.Dir(), c.Config.Cache.Dir)
		}
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c := testCLI(t)
		c.Config.Cache.Backend = config.BackendRedis
		c.Config.Cache.RedisURL = "redis://" + mr.Addr()
		got, err := c.newCache(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer got.Close()
		if _, ok := got.(*cache.RedisCache); !ok {
			t.Errorf("redis backend = %T, want *cache.RedisCache", got)
		}
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		c := testCLI(t)
		c.Config.Cache.Backend = config.BackendRedis
		c.Config.Cache.RedisURL = "redis://" + addr
		if _, err := c.newCache(ctx); err == nil {
			t.Error("expected error for unreachable redis")
		}
	})
}

func TestCacheDirOverride(t *testing.T) {
	c := testCLI(t)
	c.Config.Cache.Dir = "/srv/mcinstall-cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/mcinstall-cache" {
		t.Errorf("cacheDir() = %q, want the configured dir", dir)
	}
}

func TestCacheDirDefault(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	c := testCLI(t)

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestSearchVersions(t *testing.T) {
	c := testCLI(t)
	writeGameDir(t, c.Config.MainDir, "1.20.1")
	ctx := context.Background()

	e, err := c.newEnv(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	tests := []struct {
		name string
		opts searchOptions
		want []string
	}{
		{"all", searchOptions{}, []string{"23w31a", "1.20.1", "1.19.4", "b1.7.3"}},
		{"type", searchOptions{typ: "release"}, []string{"1.20.1", "1.19.4"}},
		{"filter", searchOptions{filter: "1.19"}, []string{"1.19.4"}},
		{"limit", searchOptions{limit: 2}, []string{"23w31a", "1.20.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := searchVersions(ctx, e, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, r := range rows {
				got = append(got, r.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("searchVersions() = %v, want %v", got, tt.want)
			}
		})
	}

	rows, err := searchVersions(ctx, e, searchOptions{typ: "release"})
	if err != nil {
		t.Fatal(err)
	}
	if !rows[0].Installed || !rows[0].Latest {
		t.Errorf("1.20.1 row = %+v, want installed and latest", rows[0])
	}
	if rows[1].Installed || rows[1].Latest {
		t.Errorf("1.19.4 row = %+v, want neither installed nor latest", rows[1])
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	root := testCLI(t).RootCommand()

	want := []string{"install", "search", "show", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "main-dir", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestRootCommandShowGraph(t *testing.T) {
	dir := t.TempDir()
	writeGameDir(t, dir, "1.20.1")
	cfg := filepath.Join(dir, "config.toml")
	writeFile(t, cfg, []byte("[cache]\nbackend = \"none\"\n"))
	graph := filepath.Join(dir, "chain.dot")

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"--config", cfg, "--main-dir", dir, "show", "release", "--graph", graph})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("show: %v", err)
	}

	dot, err := os.ReadFile(graph)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"1.20.1"`) {
		t.Errorf("graph missing the resolved version:\n%s", dot)
	}
}

func TestRootCommandCacheClear(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "api")
	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(context.Background(), "runtimes", []byte("{}"), time.Hour); err != nil {
		t.Fatal(err)
	}

	cfg := filepath.Join(dir, "config.yaml")
	writeFile(t, cfg, []byte("cache:\n  backend: file\n  dir: "+cacheDir+"\n"))

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"--config", cfg, "cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, ok, _ := fc.Get(context.Background(), "runtimes"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestRootCommandInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	writeFile(t, cfg, []byte("[cache]\nbackend = \"memcached\"\n"))

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"--config", cfg, "cache", "path"})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected an invalid config error")
	}
}

func TestNewMojangClientMirror(t *testing.T) {
	var hits []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"latest": {"release": "1.20.1"}, "versions": []}`))
	}))
	defer server.Close()

	c := testCLI(t)
	c.Config.Endpoints.ManifestURL = server.URL + "/mc/manifest.json"
	mc := c.newMojangClient(session.New(session.Options{}), cache.NewNullCache())

	if _, err := mc.FetchManifest(context.Background(), ""); err != nil {
		t.Fatalf("FetchManifest: %v", err)
	}
	if len(hits) != 1 || hits[0] != "/mc/manifest.json" {
		t.Errorf("mirror requests = %v, want [/mc/manifest.json]", hits)
	}
}

func TestMirrorHost(t *testing.T) {
	if got := mirrorHost("", "https://mirror.example.org/all.json"); got != "mirror.example.org" {
		t.Errorf("mirrorHost() = %q, want mirror.example.org", got)
	}
	if got := mirrorHost("", ""); got != "custom" {
		t.Errorf("mirrorHost() = %q, want custom", got)
	}
}
