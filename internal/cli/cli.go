package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/buildinfo"
	"github.com/matzehuels/mcinstall/pkg/cache"
	"github.com/matzehuels/mcinstall/pkg/config"
	"github.com/matzehuels/mcinstall/pkg/game"
	"github.com/matzehuels/mcinstall/pkg/integrations/mojang"
	"github.com/matzehuels/mcinstall/pkg/manifest"
	"github.com/matzehuels/mcinstall/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories, cache prefixes and
// the user agent.
const appName = "mcinstall"

// manifestFile is the version manifest snapshot under the versions directory.
const manifestFile = "version_manifest.json"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	mainDir    string
	noCache    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file and applies the global flags over it.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.mainDir != "" {
		cfg.MainDir = c.mainDir
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend, "main_dir", cfg.MainDir)
	return nil
}

// =============================================================================
// Environment
// =============================================================================

// env bundles the collaborators a command needs.
type env struct {
	game     game.Context
	session  *session.Session
	cache    cache.Cache
	mojang   *mojang.Client
	manifest *manifest.Manifest
}

// newEnv builds the installation context, HTTP session, cache and Mojang
// clients from the configuration. workDir overrides the configured one.
func (c *CLI) newEnv(ctx context.Context, workDir string) (*env, error) {
	if workDir == "" {
		workDir = c.Config.WorkDir
	}
	gc, err := game.NewContext(c.Config.MainDir, workDir)
	if err != nil {
		return nil, fmt.Errorf("game directory: %w", err)
	}
	backend, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	sess := session.New(session.Options{
		Timeout:   c.Config.Timeout.Duration,
		UserAgent: buildinfo.UserAgent(appName),
	})
	mc := c.newMojangClient(sess, backend)
	m := manifest.New(mc, manifest.Options{
		CachePath: filepath.Join(gc.VersionsDir(), manifestFile),
		MaxAge:    c.Config.ManifestMaxAge.Duration,
		Logger:    c.Logger,
	})
	return &env{game: gc, session: sess, cache: backend, mojang: mc, manifest: m}, nil
}

// newMojangClient returns the Mojang client, pointed at the configured
// mirror if any. Mirror responses are cached under their own key prefix.
func (c *CLI) newMojangClient(sess *session.Session, backend cache.Cache) *mojang.Client {
	ep := c.Config.Endpoints
	if !ep.Mirrored() {
		return mojang.NewClient(sess, backend, nil, c.Config.Cache.TTL.Duration)
	}
	scope := "mirror:" + mirrorHost(ep.ManifestURL, ep.RuntimesURL) + ":"
	keyer := cache.NewScopedKeyer(nil, scope)
	return mojang.NewClient(sess, backend, keyer, c.Config.Cache.TTL.Duration).WithEndpoints(ep.ManifestURL, ep.RuntimesURL)
}

// mirrorHost returns the host of the first non-empty URL.
func mirrorHost(urls ...string) string {
	for _, u := range urls {
		if parsed, err := url.Parse(u); err == nil && parsed.Host != "" {
			return parsed.Host
		}
	}
	return "custom"
}

func (e *env) Close() error {
	return e.cache.Close()
}

// =============================================================================
// Cache
// =============================================================================

// newCache opens the configured cache backend. --no-cache and the "none"
// backend disable caching; a file cache without a usable directory degrades
// to no cache.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.Config.Cache
	switch cc.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(cc.RedisURL, appName+":")
		if err != nil {
			return nil, err
		}
		if err := rc.Ping(ctx); err != nil {
			rc.Close()
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	case config.BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cc.MongoURI, cc.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return mc, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: cache.dir from the config,
// else the XDG cache directory (~/.cache/mcinstall/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
