package analysis

import (
	"sort"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// FindOrphans performs a forward reachability scan from g's entry
// points and returns every module the store still holds that the scan
// cannot reach, in path order.
//
// A correctly maintained graph should never produce a nonempty result
// here: every live module's presence is justified by a chain of edges
// back to an entry point. The one case reference counting cannot see is
// an isolated cycle that has lost its last edge from the reachable
// part of the graph — each member still holds a nonzero inbound count
// from the others, so release never fires, yet no traversal from an
// entry point will ever visit it again. FindOrphans is the independent
// check for exactly that blind spot; pkg/doctor runs it alongside the
// invariant checks that refcounting enforces automatically.
func FindOrphans(g *graph.Graph) []string {
	reachable := make(map[string]struct{}, g.Len())

	var visit func(path string)
	visit = func(path string) {
		if _, seen := reachable[path]; seen {
			return
		}
		reachable[path] = struct{}{}
		m, ok := g.Get(path)
		if !ok {
			return
		}
		for _, dep := range m.Dependencies() {
			visit(dep.Path)
		}
	}
	for _, entry := range g.EntryPoints() {
		visit(entry)
	}

	orphans := make([]string, 0)
	for _, path := range g.Paths() {
		if _, ok := reachable[path]; !ok {
			orphans = append(orphans, path)
		}
	}
	sort.Strings(orphans)
	return orphans
}
