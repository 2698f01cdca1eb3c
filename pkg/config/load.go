package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
)

// DefaultPath returns $XDG_CONFIG_HOME/mcinstall/config.toml, using the
// platform config directory when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "mcinstall", "config.toml"), nil
}

// Load reads path over [Default]. An empty path selects [DefaultPath],
// which may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return nil, mcerrors.New(mcerrors.ErrCodeInvalidConfig, "config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	cfg, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (".toml", ".yaml" or
// ".yml") over [Default] and validates the result.
func Parse(ext string, data []byte) (*Config, error) {
	cfg := Default()
	expanded := ExpandEnv(string(data))
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidConfig, err, "invalid TOML")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidConfig, err, "invalid YAML")
		}
	default:
		return nil, mcerrors.New(mcerrors.ErrCodeInvalidConfig, "unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
