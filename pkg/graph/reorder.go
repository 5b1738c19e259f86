package graph

// ReorderGraph rewrites graph's iteration order to a depth-first
// pre-order walk rooted at its entry points, in entry-point order,
// visiting each module's dependencies in source order. It is
// idempotent: reordering an already-ordered graph is a no-op.
//
// Any module record the walk cannot reach from an entry point is
// dropped from the store. The deferred release sweep in
// TraverseDependencies releases a record only once its inverse set is
// empty, so a dependency cycle that loses its last outside referrer
// keeps non-empty inverse sets and stays in the store after
// TraverseDependencies returns; ReorderGraph's pruning is what removes
// such a cycle. Records left behind by a caller that mutates entry
// points directly are pruned the same way.
func ReorderGraph(g *Graph) {
	visited := make(map[string]struct{})
	var order []string

	var visit func(path string)
	visit = func(path string) {
		if _, seen := visited[path]; seen {
			return
		}
		visited[path] = struct{}{}

		m, ok := g.Get(path)
		if !ok {
			return
		}
		order = append(order, path)
		for _, dep := range m.Dependencies() {
			visit(dep.Path)
		}
	}

	for _, entry := range g.EntryPoints() {
		visit(entry)
	}

	g.reorder(order)
}
