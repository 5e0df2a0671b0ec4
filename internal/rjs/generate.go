package rjs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/papapumpkin/bundlegen/internal/amd"
	"github.com/papapumpkin/bundlegen/internal/libpaths"
	"github.com/papapumpkin/bundlegen/internal/scan"
)

// Generator derives module and bundle configuration from a scripts tree.
// It keeps no state between calls: the library set is read from EntryFile on
// every call and base configurations are never modified.
type Generator struct {
	FS          afero.Fs    // filesystem holding the scripts (default: OS filesystem)
	EntryFile   string      // entry script declaring the library paths region
	ScriptsRoot string      // folder that module paths are relative to
	Logger      *log.Logger // receives warnings (default: stderr with "bundlegen" prefix)
}

// Result is the output of a full generation pass.
type Result struct {
	Libraries libpaths.Set
	Modules   []Module
	Bundles   Bundles
}

func (g *Generator) applyDefaults() {
	if g.FS == nil {
		g.FS = afero.NewOsFs()
	}
	if g.Logger == nil {
		g.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "bundlegen"})
	}
}

// Generate runs module generation followed by bundle generation, reading the
// library set once for both.
func (g *Generator) Generate(ctx context.Context, baseModules []Module, baseBundles Bundles) (*Result, error) {
	g.applyDefaults()

	libs, err := libpaths.Read(g.FS, g.EntryFile)
	if err != nil {
		return nil, err
	}
	modules, err := g.generateModules(ctx, baseModules, libs)
	if err != nil {
		return nil, err
	}
	return &Result{
		Libraries: libs,
		Modules:   modules,
		Bundles:   g.bundles(baseBundles, modules, libs),
	}, nil
}

// GenerateModules returns a fully populated copy of base. For each module only
// absent fields are filled in:
//   - library identifiers are appended to Exclude unless ExcludeLibs is false;
//   - modules without a Path are left as they are, with a warning unless they
//     are the app or libs.all module;
//   - Name defaults to the first entry script found (or Path/ShortName);
//   - the remaining entry scripts are appended to Include;
//   - the module's external dependencies and definition files are merged into
//     Exclude.
func (g *Generator) GenerateModules(ctx context.Context, base []Module) ([]Module, error) {
	g.applyDefaults()

	libs, err := libpaths.Read(g.FS, g.EntryFile)
	if err != nil {
		return nil, err
	}
	return g.generateModules(ctx, base, libs)
}

func (g *Generator) generateModules(ctx context.Context, base []Module, libs libpaths.Set) ([]Module, error) {
	modules := make([]Module, 0, len(base))
	for _, b := range base {
		m, err := g.generateModule(ctx, b.Clone(), libs)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (g *Generator) generateModule(ctx context.Context, m Module, libs libpaths.Set) (Module, error) {
	if m.excludesLibs() {
		m.Exclude = append(m.Exclude, libs.Names()...)
	}

	if m.Path == "" {
		if !m.distinguished() {
			g.Logger.Warn("module path not set, skipping name, include and exclude generation",
				"name", m.Name, "short_name", m.ShortName)
		}
		return m, nil
	}

	folder := g.moduleFolder(m)
	entry, err := scan.EntryScripts(ctx, g.FS, folder)
	if err != nil {
		return m, fmt.Errorf("module %s: %w", m.Path, err)
	}
	entries := requirePaths(entry.Scripts, m.Path)

	if m.Name == "" {
		switch {
		case m.ShortName == "" && len(entries) > 0:
			m.Name = entries[0]
			entries = entries[1:]
		case m.ShortName != "":
			m.Name = joinID(m.Path, m.ShortName)
		default:
			g.Logger.Warn("module has no entry scripts and no short name, naming it after its path",
				"path", m.Path)
			m.Name = strings.TrimSuffix(m.Path, "/")
		}
	}
	if len(entries) > 0 {
		m.Include = append(m.Include, entries...)
	}

	excludes, err := g.moduleExcludes(ctx, m, folder)
	if err != nil {
		return m, err
	}
	m.Exclude = union(m.Exclude, excludes)

	g.Logger.Debug("generated module", "name", m.Name, "include", len(m.Include), "exclude", len(m.Exclude))
	return m, nil
}

// ModuleExcludes returns the identifiers module m must not bundle: every
// external dependency declared by its scripts (definition, config and spec
// files aside) followed by its own *.module.js definition files.
func (g *Generator) ModuleExcludes(ctx context.Context, m Module) ([]string, error) {
	g.applyDefaults()
	if m.Path == "" {
		return nil, nil
	}
	return g.moduleExcludes(ctx, m, g.moduleFolder(m))
}

func (g *Generator) moduleExcludes(ctx context.Context, m Module, folder string) ([]string, error) {
	scripts, err := scan.ModuleScripts(ctx, g.FS, folder)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", m.Path, err)
	}

	var deps []string
	for _, rel := range scripts {
		external, err := amd.ReadDependencies(g.FS, filepath.Join(folder, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.Path, err)
		}
		deps = union(deps, external)
	}

	defs, err := scan.DefinitionFiles(ctx, g.FS, folder)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", m.Path, err)
	}
	return append(deps, requirePaths(defs, m.Path)...), nil
}

func (g *Generator) moduleFolder(m Module) string {
	return filepath.Join(g.ScriptsRoot, filepath.FromSlash(m.Path))
}

// requirePaths converts folder-relative script paths to module identifiers,
// e.g. list/list.ctrl.js under timeReporting/absence becomes
// timeReporting/absence/list/list.ctrl.
func requirePaths(rel []string, base string) []string {
	ids := make([]string, 0, len(rel))
	for _, r := range rel {
		ids = append(ids, joinID(base, trimJS(r)))
	}
	return ids
}

func joinID(base, name string) string {
	return strings.TrimSuffix(base, "/") + "/" + name
}

// trimJS drops a trailing .js extension, in any letter case.
func trimJS(p string) string {
	if len(p) >= 3 && strings.EqualFold(p[len(p)-3:], ".js") {
		return p[:len(p)-3]
	}
	return p
}
