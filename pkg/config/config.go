// Package config loads the mcinstall configuration file.
//
// The file is TOML or YAML, chosen by extension, and is looked up at
// $XDG_CONFIG_HOME/mcinstall/config.toml unless a path is given. ${VAR} and
// ${VAR:-default} references are expanded before parsing. All values are
// optional; command-line flags override them.
package config

import (
	"fmt"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the configuration file.
type Config struct {
	MainDir        string    `toml:"main_dir" yaml:"main_dir"`
	WorkDir        string    `toml:"work_dir" yaml:"work_dir"`
	Workers        int       `toml:"workers" yaml:"workers"`
	Timeout        Duration  `toml:"timeout" yaml:"timeout"`
	ManifestMaxAge Duration  `toml:"manifest_max_age" yaml:"manifest_max_age"`
	Retries        int       `toml:"retries" yaml:"retries"`
	Cache          Cache     `toml:"cache" yaml:"cache"`
	Endpoints      Endpoints `toml:"endpoints" yaml:"endpoints"`
}

// Cache configures the API response cache.
type Cache struct {
	Backend       string   `toml:"backend" yaml:"backend"`
	Dir           string   `toml:"dir" yaml:"dir"`
	TTL           Duration `toml:"ttl" yaml:"ttl"`
	RedisURL      string   `toml:"redis_url" yaml:"redis_url"`
	MongoURI      string   `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database" yaml:"mongo_database"`
}

// Endpoints points the installer at mirrors. Empty fields keep the official
// Mojang services.
type Endpoints struct {
	ManifestURL  string `toml:"manifest_url" yaml:"manifest_url"`
	RuntimesURL  string `toml:"runtimes_url" yaml:"runtimes_url"`
	ResourcesURL string `toml:"resources_url" yaml:"resources_url"`
	LibrariesURL string `toml:"libraries_url" yaml:"libraries_url"`
}

// Mirrored reports whether any metadata endpoint is overridden.
func (e Endpoints) Mirrored() bool {
	return e.ManifestURL != "" || e.RuntimesURL != ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ManifestMaxAge: Duration{time.Hour},
		Retries:        1,
		Cache: Cache{
			Backend:       BackendFile,
			TTL:           Duration{24 * time.Hour},
			MongoDatabase: "mcinstall",
		},
	}
}

// Validate checks value ranges and the cache backend settings.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "workers must not be negative")
	}
	if c.Retries < 0 {
		return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "retries must not be negative")
	}
	for _, ep := range []struct{ name, url string }{
		{"manifest_url", c.Endpoints.ManifestURL},
		{"runtimes_url", c.Endpoints.RuntimesURL},
		{"resources_url", c.Endpoints.ResourcesURL},
		{"libraries_url", c.Endpoints.LibrariesURL},
	} {
		if ep.url != "" && !isHTTPURL(ep.url) {
			return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "endpoints.%s must be an http(s) URL, got %q", ep.name, ep.url)
		}
	}
	switch c.Cache.Backend {
	case "", BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses TOML strings.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// UnmarshalYAML parses YAML scalars.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
