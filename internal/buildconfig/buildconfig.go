// Package buildconfig loads the TOML build config holding the optimizer
// options and the base module and bundle configs, and writes the generated
// configuration handed to r.js.
//
//	[optimizer]
//	baseUrl = "scripts"
//	dir = "build/scripts"
//
//	[[modules]]
//	name = "app"
//	include = ["app"]
//
//	[[modules]]
//	path = "shared/widgets"
//
//	[bundles]
//	"app.bundle" = ["config"]
package buildconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/papapumpkin/bundlegen/internal/rjs"
)

// DefaultPath is the conventional location of the build config.
const DefaultPath = "bundlegen.toml"

// Output file names written by WriteOutputs.
const (
	OptimizerFile = "rjs.build.json"
	BundlesFile   = "bundles.json"
)

// BuildConfig is the on-disk build config.
type BuildConfig struct {
	Optimizer map[string]any `toml:"optimizer,omitempty"`
	Modules   []rjs.Module   `toml:"modules"`
	Bundles   rjs.Bundles    `toml:"bundles,omitempty"`
}

// Load reads and validates the build config at path.
func Load(fsys afero.Fs, path string) (*BuildConfig, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoBuildConfig, path)
		}
		return nil, fmt.Errorf("reading build config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML build config.
func Parse(data []byte) (*BuildConfig, error) {
	var cfg BuildConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing build config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Bundles == nil {
		cfg.Bundles = rjs.Bundles{}
	}
	return &cfg, nil
}

// Validate checks that every base module can be identified and that no two
// explicit names collide. The optimizer table must not set the generated
// "modules" option.
func (c *BuildConfig) Validate() error {
	if _, ok := c.Optimizer["modules"]; ok {
		return fmt.Errorf("%w: modules", ErrReservedOption)
	}
	seen := make(map[string]int, len(c.Modules))
	for i, m := range c.Modules {
		if m.Name == "" && m.Path == "" {
			return fmt.Errorf("modules[%d]: %w", i, ErrUnnamedModule)
		}
		if m.Name == "" {
			continue
		}
		if j, dup := seen[m.Name]; dup {
			return fmt.Errorf("modules[%d] and modules[%d]: %w %q", j, i, ErrDuplicateName, m.Name)
		}
		seen[m.Name] = i
	}
	return nil
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(fsys afero.Fs, path string, cfg *BuildConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling build config: %w", err)
	}
	return writeAtomic(fsys, path, data)
}

// OptimizerOptions returns the r.js options: the optimizer table of c with
// the generated modules added under "modules".
func (c *BuildConfig) OptimizerOptions(modules []rjs.Module) map[string]any {
	opts := make(map[string]any, len(c.Optimizer)+1)
	for k, v := range c.Optimizer {
		opts[k] = v
	}
	opts["modules"] = modules
	return opts
}

// WriteOutputs writes the optimizer options and the bundles config as JSON
// into dir and returns the written paths.
func (c *BuildConfig) WriteOutputs(fsys afero.Fs, dir string, modules []rjs.Module, bundles rjs.Bundles) ([]string, error) {
	outputs := []struct {
		name  string
		value any
	}{
		{OptimizerFile, c.OptimizerOptions(modules)},
		{BundlesFile, bundles},
	}
	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		data, err := marshalJSON(o.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", o.name, err)
		}
		path := filepath.Join(dir, o.name)
		if err := writeAtomic(fsys, path, data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to a temp file next to path and renames it.
func writeAtomic(fsys afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}
