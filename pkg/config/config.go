// Package config loads forcelayout settings from TOML or YAML files.
//
// A file may set any subset of fields; everything else keeps the value from
// [Default]. Unknown keys are rejected so that typos surface as errors
// instead of silently falling back to defaults.
//
//	# forcelayout.toml
//	[layout]
//	link_distance = 50
//	charge_strength = -60
//	iterations = 200
//
//	[render]
//	format = "svg"
//	show_labels = true
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/layout"
	"github.com/matzehuels/forcelayout/pkg/render"
)

// DefaultAddr is the listen address of the HTTP server.
const DefaultAddr = ":8080"

// Config is the full settings file.
type Config struct {
	Layout layout.Options `toml:"layout" yaml:"layout"`
	Render render.Options `toml:"render" yaml:"render"`
	Cache  Cache          `toml:"cache" yaml:"cache"`
	Server Server         `toml:"server" yaml:"server"`
}

// Cache selects the result cache backend. RedisURL takes precedence over Dir.
type Cache struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url"`

	// KeyPrefix namespaces cache keys, for deployments sharing one redis.
	KeyPrefix string `toml:"key_prefix" yaml:"key_prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Layout: layout.DefaultOptions(),
		Render: render.DefaultOptions(),
		Server: Server{Addr: DefaultAddr},
	}
}

// Load reads path over [Default] and validates the result. The format
// follows the extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "config %s: unsupported extension %q (use .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Validate checks the layout and render sections.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	return c.Render.Validate()
}
