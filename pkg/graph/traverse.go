package graph

import "fmt"

// shallowResult is what a background worker goroutine sends back after
// running shallowResolve for a single path.
type shallowResult struct {
	deps   []Dependency
	output interface{}
	err    error
}

// fireShallowResolve starts path's shallow resolution in its own
// goroutine and returns immediately with a channel that will receive
// exactly one result. The channel is buffered so the goroutine never
// blocks on a result nobody ends up consuming: an abandoned sibling
// subtree after an error must not leak a stuck goroutine.
func fireShallowResolve(path string, opts Options) <-chan shallowResult {
	ch := make(chan shallowResult, 1)
	go func() {
		deps, output, err := shallowResolve(path, opts)
		ch <- shallowResult{deps: deps, output: output, err: err}
	}()
	return ch
}

type edgeKey struct{ name, path string }

// engine carries the bookkeeping for a single InitialTraverseDependencies
// or TraverseDependencies call. It is never shared across calls and,
// despite firing concurrent shallow-resolve work, is only ever touched
// by the one goroutine that owns the call — every graph mutation
// happens on a single serialized task context.
type engine struct {
	graph    *Graph
	opts     Options
	progress *progressTracker

	added   []*Module
	deleted []string

	// pendingRelease collects candidate paths whose inverse set hit
	// zero during this call's edge removals. Actual release is
	// deferred to the end of the call so that a path removed by one
	// dirty module and re-added by another within the same batch
	// never appears in either added or deleted.
	pendingRelease []string
}

// expand is the depth-first consumer of a shallow-resolve result: it
// waits for path's own result (already in flight on ch), synchronously
// reveals every newly discovered child into the graph store and the
// global discovery sequence — in the order the parent's transform
// listed them, before awaiting any of their own results — then
// recurses into each new child in that same order. Because revelation
// happens synchronously at the parent's own completion rather than at
// each child's completion, the resulting store order is a pure
// function of graph structure, not of which worker goroutine happens
// to finish first.
func (e *engine) expand(path string, ch <-chan shallowResult) error {
	res := <-ch
	if res.err != nil {
		return res.err
	}

	m, ok := e.graph.Get(path)
	if !ok {
		return &InvariantViolationError{Invariant: "store-presence", Detail: fmt.Sprintf("expanding %s but it is missing from the store", path)}
	}

	type reservedChild struct {
		path string
		ch   <-chan shallowResult
	}
	var newChildren []reservedChild

	for _, dep := range res.deps {
		child, exists := e.graph.Get(dep.Path)
		if !exists {
			child = NewModule(dep.Path)
			e.graph.set(dep.Path, child)
			e.added = append(e.added, child)
			e.progress.discover()
			newChildren = append(newChildren, reservedChild{dep.Path, fireShallowResolve(dep.Path, e.opts)})
			child, _ = e.graph.Get(dep.Path)
		}
		child.addInverse(path)
	}

	m.setDependencies(res.deps)
	m.Output = res.output
	e.progress.finish()

	for _, c := range newChildren {
		if err := e.expand(c.path, c.ch); err != nil {
			return err
		}
	}
	return nil
}

// reconcile applies the diff between an already-present dirty module's
// old and new dependency lists: edges present in the new list but not
// the old are attached, discovering and recursively expanding any
// brand-new target; edges present in the old list but not the new are
// detached, marking their target a release candidate if it just lost
// its last referrer. m's dependency list is then replaced with
// newDeps, preserving its order.
func (e *engine) reconcile(m *Module, oldDeps, newDeps []Dependency) error {
	oldSet := make(map[edgeKey]struct{}, len(oldDeps))
	for _, d := range oldDeps {
		oldSet[edgeKey{d.Name, d.Path}] = struct{}{}
	}
	newSet := make(map[edgeKey]struct{}, len(newDeps))
	for _, d := range newDeps {
		newSet[edgeKey{d.Name, d.Path}] = struct{}{}
	}

	for _, d := range newDeps {
		if _, had := oldSet[edgeKey{d.Name, d.Path}]; had {
			continue
		}
		child, exists := e.graph.Get(d.Path)
		if !exists {
			child = NewModule(d.Path)
			e.graph.set(d.Path, child)
			stubIdx := len(e.added)
			e.added = append(e.added, child)
			e.progress.discover()
			ch := fireShallowResolve(d.Path, e.opts)
			child.addInverse(m.Path)
			if err := e.expand(d.Path, ch); err != nil {
				// Undo every stub this attempt put in the store —
				// d.Path itself plus any of its own descendants that
				// expand() revealed before failing deeper in the
				// subtree — so a retry against an unchanged world
				// redoes shallow-resolve for all of them instead of
				// finding a half-built module already present.
				for _, stub := range e.added[stubIdx:] {
					for _, sd := range stub.Dependencies() {
						if t, ok := e.graph.Get(sd.Path); ok {
							t.removeInverse(stub.Path)
						}
					}
					e.graph.delete(stub.Path)
				}
				e.added = e.added[:stubIdx]
				return err
			}
			continue
		}
		child.addInverse(m.Path)
	}

	// newPaths tracks every path still referenced under *any* edge name
	// in newDeps, so dropping one aliased name doesn't sever a target
	// that survives via a different name out of the same module.
	newPaths := make(map[string]struct{}, len(newDeps))
	for _, d := range newDeps {
		newPaths[d.Path] = struct{}{}
	}

	for _, d := range oldDeps {
		if _, still := newSet[edgeKey{d.Name, d.Path}]; still {
			continue
		}
		if _, aliasSurvives := newPaths[d.Path]; aliasSurvives {
			continue
		}
		target, exists := e.graph.Get(d.Path)
		if !exists {
			continue
		}
		if target.removeInverse(m.Path) {
			e.pendingRelease = append(e.pendingRelease, d.Path)
		}
	}

	m.setDependencies(newDeps)
	return nil
}

// release drops path from the store if, right now, nothing still
// references it. It disconnects path's own outbound edges first and
// recurses into each target: a target that this was the last referrer
// of is released in turn. visited prevents infinite recursion through
// a dependency cycle and ensures a path already handled in this sweep
// is not processed twice.
func (e *engine) release(path string, visited map[string]struct{}) {
	if _, done := visited[path]; done {
		return
	}
	visited[path] = struct{}{}

	m, ok := e.graph.Get(path)
	if !ok {
		return
	}
	if e.graph.IsEntryPoint(path) || m.InverseDependencyCount() != 0 {
		return
	}

	for _, dep := range m.Dependencies() {
		target, ok := e.graph.Get(dep.Path)
		if !ok {
			continue
		}
		target.removeInverse(path)
		e.release(dep.Path, visited)
	}

	e.graph.delete(path)
	e.deleted = append(e.deleted, path)
}

// finalizeReleases processes every pending release candidate collected
// by reconcile, in the order first observed. Deferring to this single
// sweep — run only after every dirty path in the batch has been fully
// reconciled — is what makes a path removed by one dirty module and
// re-added by another within the same call end up in neither added
// nor deleted.
func (e *engine) finalizeReleases() {
	visited := make(map[string]struct{})
	for _, path := range e.pendingRelease {
		e.release(path, visited)
	}
}

// InitialTraverseDependencies performs the first full traversal of an
// empty graph. graph.EntryPoints() must be non-empty and graph must
// contain no modules yet. On success, deleted is always empty and
// added contains every module now in the graph, in depth-first
// pre-order from the entry points (the order ReorderGraph gives the
// store). On failure, graph is left exactly as empty as it
// started.
func InitialTraverseDependencies(g *Graph, opts Options) (added []*Module, deleted []string, err error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	if g.Len() != 0 {
		return nil, nil, &InvariantViolationError{Invariant: "precondition", Detail: "InitialTraverseDependencies requires an empty graph"}
	}
	entries := g.EntryPoints()
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("graph: InitialTraverseDependencies requires at least one entry point")
	}

	e := &engine{graph: g, opts: opts, progress: newProgressTracker(opts.OnProgress)}

	channels := make([]<-chan shallowResult, len(entries))
	for i, path := range entries {
		m := NewModule(path)
		g.set(path, m)
		e.added = append(e.added, m)
		e.progress.discover()
		channels[i] = fireShallowResolve(path, opts)
	}

	for i, path := range entries {
		if err := e.expand(path, channels[i]); err != nil {
			g.resetModules()
			return nil, nil, err
		}
	}

	ReorderGraph(g)
	added = make([]*Module, 0, g.Len())
	g.Range(func(m *Module) bool {
		added = append(added, m)
		return true
	})
	return added, nil, nil
}

// TraverseDependencies recomputes the graph for a batch of dirty
// paths. Each path must already be present in graph, or be one of its
// entry points (in which case it is treated as a brand new discovery);
// any other path is a stale notification and is skipped. Returns the
// modules added or re-transformed during this call and the paths
// released as a result, with added ordered newly discovered modules
// first (discovery order), then re-transformed modules in the order
// dirtyPaths lists them.
func TraverseDependencies(dirtyPaths []string, g *Graph, opts Options) (added []*Module, deleted []string, err error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	e := &engine{graph: g, opts: opts, progress: newProgressTracker(opts.OnProgress)}

	type job struct {
		path     string
		ch       <-chan shallowResult
		newEntry bool
	}

	var jobs []job
	for _, p := range dirtyPaths {
		if g.Has(p) {
			jobs = append(jobs, job{path: p, ch: fireShallowResolve(p, opts)})
			continue
		}
		if !g.IsEntryPoint(p) {
			continue
		}
		jobs = append(jobs, job{path: p, newEntry: true})
	}

	for i := range jobs {
		if !jobs[i].newEntry {
			continue
		}
		m := NewModule(jobs[i].path)
		g.set(jobs[i].path, m)
		e.added = append(e.added, m)
		e.progress.discover()
		jobs[i].ch = fireShallowResolve(jobs[i].path, opts)
	}

	var reTransformed []*Module
	for _, j := range jobs {
		if j.newEntry {
			if err := e.expand(j.path, j.ch); err != nil {
				return nil, nil, err
			}
			continue
		}

		res := <-j.ch
		if res.err != nil {
			return nil, nil, res.err
		}

		existing, _ := g.Get(j.path)
		oldDeps := existing.Dependencies()
		e.progress.discover()
		if err := e.reconcile(existing, oldDeps, res.deps); err != nil {
			return nil, nil, err
		}
		existing.Output = res.output
		e.progress.finish()
		reTransformed = append(reTransformed, existing)
	}

	e.finalizeReleases()

	e.added = append(e.added, reTransformed...)
	return e.added, e.deleted, nil
}
