package graph

import "sync"

// Graph is an insertion-ordered mapping from path to module record,
// plus the ordered list of entry points. Iteration order over modules
// is a public observable — it is what makes the added set's order and
// ReorderGraph's deterministic ordering testable.
//
// The engine (pkg/graph's traversal functions) is the sole mutator of
// a Graph during a traversal call and otherwise requires no external
// locking. The mutex here exists only to let read-only consumers
// added by this repository (pkg/server, pkg/viz, pkg/repl) safely
// observe a Graph from another goroutine while a watch-driven
// traversal may be running concurrently between watch events — it is
// not required by the core algorithm and traversal itself never
// blocks on it beyond the uncontended fast path.
type Graph struct {
	mu sync.RWMutex

	modules     *orderedMap[*Module]
	entryPoints []string
}

// NewGraph returns an empty graph with the given entry points.
// InitialTraverseDependencies requires entryPoints to be non-empty and
// the module map to be empty; NewGraph always satisfies both.
func NewGraph(entryPoints []string) *Graph {
	return &Graph{
		modules:     newOrderedMap[*Module](),
		entryPoints: append([]string(nil), entryPoints...),
	}
}

// EntryPoints returns the graph's entry points in declaration order.
func (g *Graph) EntryPoints() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.entryPoints...)
}

// IsEntryPoint reports whether path is one of the graph's entry
// points. Entry points carry an implicit inbound reference and are
// immune to reference-count release.
func (g *Graph) IsEntryPoint(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.entryPoints {
		if p == path {
			return true
		}
	}
	return false
}

// Get returns the module at path, if present.
func (g *Graph) Get(path string) (*Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.modules.Get(path)
}

// Has reports whether a module is present at path.
func (g *Graph) Has(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.modules.Has(path)
}

// Len returns the number of modules currently in the store.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.modules.Len()
}

// Paths returns every module path in store (insertion) order.
func (g *Graph) Paths() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.modules.Keys()...)
}

// Range calls fn for each module in insertion order, stopping early
// if fn returns false.
func (g *Graph) Range(fn func(*Module) bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	g.modules.Range(func(_ string, m *Module) bool {
		return fn(m)
	})
}

// set inserts or overwrites the record at path. Only called by the
// traversal engine.
func (g *Graph) set(path string, m *Module) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modules.Set(path, m)
}

// delete removes the record at path. Only called by the traversal
// engine, after the module's inverse set has been confirmed empty.
func (g *Graph) delete(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modules.Delete(path)
}

// resetModules empties the module map in place, keeping entryPoints.
// Used to restore the "graph left empty" guarantee on initial-traversal
// failure.
func (g *Graph) resetModules() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modules.reset()
}

// reorder replaces the store's iteration order wholesale, dropping any
// path not present in order. Used only by ReorderGraph.
func (g *Graph) reorder(order []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := newOrderedMap[*Module]()
	for _, path := range order {
		if m, ok := g.modules.Get(path); ok {
			next.Set(path, m)
		}
	}
	g.modules = next
}
