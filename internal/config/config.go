package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrInvalidConcurrency indicates a concurrency setting below one.
var ErrInvalidConcurrency = errors.New("concurrency must be at least 1")

// Config holds all runtime configuration for a bundlegen run.
// Values are populated from .bundlegen.yaml, BUNDLEGEN_* env vars, and CLI flags.
type Config struct {
	EntryFile   string `mapstructure:"entry_file"`
	ScriptsRoot string `mapstructure:"scripts_root"`
	SharedDir   string `mapstructure:"shared_dir"`
	LibsDest    string `mapstructure:"libs_dest"`
	BuildConfig string `mapstructure:"build_config"`
	OutputDir   string `mapstructure:"output_dir"`
	Concurrency int    `mapstructure:"concurrency"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("entry_file", "scripts/main.js")
	viper.SetDefault("scripts_root", "scripts")
	viper.SetDefault("shared_dir", "scripts/shared")
	viper.SetDefault("libs_dest", "")
	viper.SetDefault("build_config", "bundlegen.toml")
	viper.SetDefault("output_dir", "build")
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Concurrency < 1 {
		return Config{}, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, cfg.Concurrency)
	}
	return cfg, nil
}

// LibsDir returns the folder libs.all.js is written to: LibsDest when set,
// otherwise the scripts root.
func (c Config) LibsDir() string {
	if c.LibsDest != "" {
		return c.LibsDest
	}
	return c.ScriptsRoot
}
