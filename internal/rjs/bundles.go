package rjs

import (
	"context"
	"sort"
	"strings"

	"github.com/papapumpkin/bundlegen/internal/libpaths"
)

// LibsBundle is the bundle carrying every library of the entry script.
const LibsBundle = "libs.all.bundle"

// Bundles maps a bundle filename to the module identifiers packaged in it.
type Bundles map[string][]string

// Clone returns a deep copy of b.
func (b Bundles) Clone() Bundles {
	out := make(Bundles, len(b))
	for name, members := range b {
		out[name] = cloneStrings(members)
	}
	return out
}

// Names returns the bundle names in alphabetical order.
func (b Bundles) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BundleFilename maps a module name to the bundle file it is packaged in.
// Top-level modules keep their name; nested modules collapse onto their
// directory lineage, so modules sharing a directory share a bundle:
//
//	app                              -> app.bundle
//	shared/components/components.all -> shared-components.bundle
//	profile/profile.ctrl             -> profile.bundle
//	x/y                              -> x.bundle
//
// Any non-empty directory collapses, however short.
func BundleFilename(moduleName string) string {
	parts := strings.Split(moduleName, "/")
	dirname := strings.Join(parts[:len(parts)-1], "-")
	if dirname == "" {
		return moduleName + ".bundle"
	}
	return dirname + ".bundle"
}

// GenerateBundles returns a copy of base extended with the generated bundles:
// the libraries bundle is always replaced by the library set, and every named
// module contributes its name followed by its includes to the bundle derived
// from its name. Modules without a name are skipped.
func GenerateBundles(base Bundles, modules []Module, libs libpaths.Set) Bundles {
	out := base.Clone()
	out[LibsBundle] = libs.Names()

	for _, m := range modules {
		if m.Name == "" {
			continue
		}
		name := BundleFilename(m.Name)
		out[name] = append(out[name], m.Name)
		out[name] = append(out[name], m.Include...)
	}
	return out
}

// GenerateBundles reads the library set from the entry script and derives
// the bundles config for modules, which should be the output of
// GenerateModules.
func (g *Generator) GenerateBundles(_ context.Context, base Bundles, modules []Module) (Bundles, error) {
	g.applyDefaults()

	libs, err := libpaths.Read(g.FS, g.EntryFile)
	if err != nil {
		return nil, err
	}
	return g.bundles(base, modules, libs), nil
}

func (g *Generator) bundles(base Bundles, modules []Module, libs libpaths.Set) Bundles {
	for _, m := range modules {
		if m.Name == "" {
			g.Logger.Warn("module has no name, leaving it out of the bundles config", "path", m.Path)
		}
	}
	return GenerateBundles(base, modules, libs)
}
