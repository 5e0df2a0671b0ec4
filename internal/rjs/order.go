package rjs

import (
	"fmt"

	"github.com/papapumpkin/bundlegen/internal/dag"
)

// LoadOrder returns the bundle names of bundles ordered so that every bundle
// comes after the bundles providing identifiers its modules exclude.
// Returns an error wrapping dag.ErrCycle when bundles depend on each other.
func LoadOrder(modules []Module, bundles Bundles) ([]string, error) {
	g, err := BundleGraph(modules, bundles)
	if err != nil {
		return nil, err
	}
	return g.TopologicalSort()
}

// BundleGraph returns the dependency graph of bundles: bundle A depends on
// bundle B when a module packaged in A excludes an identifier provided by B.
// An identifier is provided by the first bundle (alphabetically) listing it.
// The libraries bundle is ordered first whenever it is ready.
func BundleGraph(modules []Module, bundles Bundles) (*dag.DAG, error) {
	names := bundles.Names()
	g := dag.New()
	provider := make(map[string]string)
	for _, name := range names {
		priority := 0
		if name == LibsBundle {
			priority = 1
		}
		if err := g.AddNode(name, priority); err != nil {
			return nil, err
		}
		for _, id := range bundles[name] {
			if _, ok := provider[id]; !ok {
				provider[id] = name
			}
		}
	}

	for _, m := range modules {
		if m.Name == "" {
			continue
		}
		from := BundleFilename(m.Name)
		if g.Node(from) == nil {
			continue
		}
		for _, id := range m.Exclude {
			to, ok := provider[id]
			if !ok || to == from {
				continue
			}
			if err := g.AddEdge(from, to); err != nil {
				return nil, fmt.Errorf("bundle %s excludes %s from %s: %w", from, id, to, err)
			}
		}
	}
	return g, nil
}
