// Package config loads ffg settings from an optional TOML or YAML file.
// Command-line flags override whatever the file sets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/ffg-go/internal/decode"
	"github.com/f4ah6o/ffg-go/internal/matcher"
)

// HomeEnv overrides the directory searched for a config file.
const HomeEnv = "FFG_HOME"

const (
	// ColorAuto colors output only when writing to a terminal.
	ColorAuto = "auto"
	// ColorAlways forces colored output.
	ColorAlways = "always"
	// ColorNever disables colored output.
	ColorNever = "never"
)

// candidateNames are tried in order inside the config home.
var candidateNames = []string{"config.toml", "config.yaml", "config.yml"}

// Config holds the tunable settings of a search.
type Config struct {
	// Encoding is the charset of file contents (WHATWG label).
	Encoding string `toml:"encoding" yaml:"encoding"`

	// BufferSize is the read chunk size in bytes.
	BufferSize int `toml:"buffer_size" yaml:"buffer_size"`

	// ExcludeDirs lists directory base names that are never descended into.
	ExcludeDirs []string `toml:"exclude_dirs" yaml:"exclude_dirs"`

	// Color is one of auto, always, never.
	Color string `toml:"color" yaml:"color"`

	// Verbose logs skipped entries and a summary to stderr.
	Verbose bool `toml:"verbose" yaml:"verbose"`

	// Source is the file the settings came from, empty for defaults.
	Source string `toml:"-" yaml:"-"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Encoding:   decode.DefaultCharset,
		BufferSize: matcher.DefaultBufferSize,
		Color:      ColorAuto,
	}
}

// Home returns the config directory.
// It checks the FFG_HOME environment variable first, then falls back to ~/.config/ffg
func Home() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	return filepath.Join(usr.HomeDir, ".config", "ffg"), nil
}

// Discover returns the first config file present in Home, or "" if none is.
func Discover() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}

	for _, name := range candidateNames {
		path := filepath.Join(home, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// Load reads the config at path. An empty path means "discover": a missing
// file then yields Default. An explicit path must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := Discover()
		if err != nil {
			return nil, err
		}
		if found == "" {
			return Default(), nil
		}
		path = found
	}

	return LoadFile(path)
}

// LoadFile parses a single file, choosing TOML or YAML by extension.
// Keys the Config does not know are rejected.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("failed to parse %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s (want .toml, .yaml or .yml)", path)
	}

	cfg.Source = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and that the encoding is known.
func (c *Config) Validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be %q, %q or %q, got %q", ColorAuto, ColorAlways, ColorNever, c.Color)
	}

	if _, err := decode.Lookup(c.Encoding); err != nil {
		return err
	}
	return nil
}
