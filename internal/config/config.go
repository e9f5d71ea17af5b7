// Package config loads collide settings from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/chazu/collide/pkg/partition"
	"github.com/chazu/collide/pkg/scene"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the full set of settings.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Script ScriptConfig `toml:"script"`
	Index  IndexConfig  `toml:"index"`
	Watch  WatchConfig  `toml:"watch"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// ScriptConfig controls scene evaluation. Timeout uses time.ParseDuration
// syntax.
type ScriptConfig struct {
	Timeout string `toml:"timeout"`
}

// IndexConfig is the R-tree fan-out used for every compound.
type IndexConfig struct {
	MinChildren int `toml:"min_children"`
	MaxChildren int `toml:"max_children"`
}

type WatchConfig struct {
	Debounce string `toml:"debounce"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "warn"},
		Script: ScriptConfig{Timeout: scene.DefaultTimeout.String()},
		Index: IndexConfig{
			MinChildren: partition.DefaultMinChildren,
			MaxChildren: partition.DefaultMaxChildren,
		},
		Watch: WatchConfig{Debounce: "200ms"},
	}
}

// Load reads settings from path on top of Default. A missing file yields
// the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every duration parses and the index fan-out is
// usable.
func (c Config) Validate() error {
	if _, err := c.ScriptTimeout(); err != nil {
		return err
	}
	if _, err := c.WatchDebounce(); err != nil {
		return err
	}
	if c.Index.MinChildren < 1 || c.Index.MaxChildren < c.Index.MinChildren {
		return fmt.Errorf("index: invalid fan-out min_children=%d max_children=%d",
			c.Index.MinChildren, c.Index.MaxChildren)
	}
	return nil
}

// ScriptTimeout parses script.timeout.
func (c Config) ScriptTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Script.Timeout)
	if err != nil {
		return 0, fmt.Errorf("script.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("script.timeout: %s must be positive", d)
	}
	return d, nil
}

// WatchDebounce parses watch.debounce.
func (c Config) WatchDebounce() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch.debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("watch.debounce: %s must not be negative", d)
	}
	return d, nil
}

// IndexOptions converts the [index] table.
func (c Config) IndexOptions() partition.Options {
	return partition.Options{MinChildren: c.Index.MinChildren, MaxChildren: c.Index.MaxChildren}
}

// SceneOptions returns the evaluation options described by c. c must be
// valid.
func (c Config) SceneOptions() scene.Options {
	timeout, err := c.ScriptTimeout()
	if err != nil {
		timeout = scene.DefaultTimeout
	}
	return scene.Options{Timeout: timeout, Index: c.IndexOptions()}
}
