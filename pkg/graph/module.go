package graph

// Dependency is a single named edge out of a module: the name as
// written in the module's source, and the path it currently resolves
// to. The same target path may appear under more than one name; each
// such pair is a distinct edge.
type Dependency struct {
	Name string
	Path string
}

// Module is a single node in the dependency graph. Its dependency
// list preserves source textual order; its inverse set tracks every
// module currently holding an edge into it, which is what makes
// reference-counted deletion possible without walking the whole
// graph.
type Module struct {
	Path string

	dependencies        *orderedMap[string] // name -> target path, in source order
	inverseDependencies map[string]struct{} // paths of modules pointing at this one
	Output              interface{}         // opaque transform artifact, stored verbatim
}

// NewModule constructs an empty module record for path: dependencies
// and inverseDependencies both start empty.
func NewModule(path string) *Module {
	return &Module{
		Path:                path,
		dependencies:        newOrderedMap[string](),
		inverseDependencies: make(map[string]struct{}),
	}
}

// Dependencies returns the module's current dependency list in source
// order.
func (m *Module) Dependencies() []Dependency {
	deps := make([]Dependency, 0, m.dependencies.Len())
	m.dependencies.Range(func(name, path string) bool {
		deps = append(deps, Dependency{Name: name, Path: path})
		return true
	})
	return deps
}

// DependencyPath returns the target of the named dependency, if any.
func (m *Module) DependencyPath(name string) (string, bool) {
	return m.dependencies.Get(name)
}

// setDependencies replaces the dependency list wholesale, preserving
// the order of ordered. It does not touch inverse sets anywhere in the
// graph — the traversal engine is responsible for reconciling those
// before or after calling this.
func (m *Module) setDependencies(ordered []Dependency) {
	next := newOrderedMap[string]()
	for _, d := range ordered {
		next.Set(d.Name, d.Path)
	}
	m.dependencies = next
}

// InverseDependencies returns the set of paths that currently hold an
// edge into this module. The returned slice has no defined order.
func (m *Module) InverseDependencies() []string {
	paths := make([]string, 0, len(m.inverseDependencies))
	for p := range m.inverseDependencies {
		paths = append(paths, p)
	}
	return paths
}

// InverseDependencyCount reports the size of the inverse set, i.e. the
// module's inbound reference count.
func (m *Module) InverseDependencyCount() int {
	return len(m.inverseDependencies)
}

// addInverse idempotently records that path holds an edge into this
// module.
func (m *Module) addInverse(path string) {
	m.inverseDependencies[path] = struct{}{}
}

// removeInverse idempotently drops path from the inverse set. It
// returns true if the set is now empty, which is the signal the
// traversal engine uses to decide whether this module is eligible for
// garbage collection.
func (m *Module) removeInverse(path string) bool {
	delete(m.inverseDependencies, path)
	return len(m.inverseDependencies) == 0
}
