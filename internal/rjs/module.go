// Package rjs generates r.js optimizer configuration for a modular AMD
// application: the per-module build options (name, include, exclude) and the
// require.js bundles config that maps bundle files to the modules they carry.
//
// Conventions the generator relies on:
//   - each module lives in its own folder under the scripts root;
//   - modules depend only on shared modules and libraries, and only
//     intra-module requires use relative paths (./, ../);
//   - files are named fileName.type.js (ctrl, component, all, module, config, ...);
//   - libraries are listed in the entry script between libs-paths markers.
package rjs

// Module names that are expected to have no folder of their own.
const (
	AppModule  = "app"
	LibsModule = "libs.all"
)

// Module is one entry of the optimizer's modules list. Path, ShortName and
// ExcludeLibs steer generation and are not passed on to the optimizer.
type Module struct {
	Name          string   `toml:"name" json:"name"`
	Path          string   `toml:"path,omitempty" json:"-"`
	ShortName     string   `toml:"short_name,omitempty" json:"-"`
	ExcludeLibs   *bool    `toml:"exclude_libs,omitempty" json:"-"`
	Create        bool     `toml:"create,omitempty" json:"create,omitempty"`
	InsertRequire []string `toml:"insert_require,omitempty" json:"insertRequire,omitempty"`
	Include       []string `toml:"include,omitempty" json:"include,omitempty"`
	Exclude       []string `toml:"exclude,omitempty" json:"exclude,omitempty"`
}

// excludesLibs reports whether library identifiers belong in m's excludes.
func (m Module) excludesLibs() bool {
	return m.ExcludeLibs == nil || *m.ExcludeLibs
}

// distinguished reports whether m is one of the modules that legitimately has
// no folder.
func (m Module) distinguished() bool {
	return m.Name == AppModule || m.Name == LibsModule
}

// Clone returns a deep copy of m.
func (m Module) Clone() Module {
	c := m
	if m.ExcludeLibs != nil {
		v := *m.ExcludeLibs
		c.ExcludeLibs = &v
	}
	c.InsertRequire = cloneStrings(m.InsertRequire)
	c.Include = cloneStrings(m.Include)
	c.Exclude = cloneStrings(m.Exclude)
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// union appends the members of add to base that are not already present and
// removes duplicates already in base. Order of first appearance is kept.
func union(base, add []string) []string {
	seen := make(map[string]bool, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, s := range list {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
