// Package analysis implements read-only queries over a *graph.Graph:
// topological ordering, cycle reporting, shortest/transitive paths, and
// the impact and dead-code diagnostics layered on top of them.
package analysis

import (
	"fmt"
	"sort"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// TopologicalSort orders g's modules so that every dependency precedes
// its dependents. It returns an error if the graph contains a cycle,
// since pure refcounting never fully collects one (see DESIGN.md) and a
// cyclic graph has no total order.
func TopologicalSort(g *graph.Graph) ([]*graph.Module, error) {
	inDegree := make(map[string]int)
	adjList := make(map[string][]string)

	for _, path := range g.Paths() {
		inDegree[path] = 0
		adjList[path] = nil
	}

	for _, path := range g.Paths() {
		m, _ := g.Get(path)
		for _, dep := range m.Dependencies() {
			adjList[dep.Path] = append(adjList[dep.Path], path)
			inDegree[path]++
		}
	}

	queue := make([]string, 0)
	for path, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, path)
		}
	}
	sort.Strings(queue)

	result := make([]*graph.Module, 0, g.Len())
	visited := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if m, ok := g.Get(current); ok {
			result = append(result, m)
			visited++
		}

		neighbors := append([]string(nil), adjList[current]...)
		sort.Strings(neighbors)
		for _, neighbor := range neighbors {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if visited != g.Len() {
		return nil, fmt.Errorf("analysis: graph contains a cycle, no topological order exists")
	}
	return result, nil
}

// ShortestPath finds the shortest dependency path from fromPath to
// toPath by BFS over forward edges. It returns nil if no path exists.
func ShortestPath(g *graph.Graph, fromPath, toPath string) []string {
	if !g.Has(fromPath) || !g.Has(toPath) {
		return nil
	}
	if fromPath == toPath {
		return []string{fromPath}
	}

	queue := [][]string{{fromPath}}
	visited := map[string]bool{fromPath: true}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		current := path[len(path)-1]
		m, ok := g.Get(current)
		if !ok {
			continue
		}

		for _, dep := range m.Dependencies() {
			if visited[dep.Path] {
				continue
			}
			newPath := append(append([]string{}, path...), dep.Path)
			if dep.Path == toPath {
				return newPath
			}
			visited[dep.Path] = true
			queue = append(queue, newPath)
		}
	}
	return nil
}

// StronglyConnectedComponents finds every strongly connected component
// of g's forward-edge graph via Tarjan's algorithm. A component with
// more than one module, or a single module with a self-loop, is a
// cycle.
func StronglyConnectedComponents(g *graph.Graph) [][]string {
	index := 0
	stack := make([]string, 0)
	indices := make(map[string]int)
	lowLinks := make(map[string]int)
	onStack := make(map[string]bool)
	sccs := make([][]string, 0)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowLinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		if m, ok := g.Get(v); ok {
			for _, dep := range m.Dependencies() {
				w := dep.Path
				if _, seen := indices[w]; !seen {
					strongConnect(w)
					if lowLinks[w] < lowLinks[v] {
						lowLinks[v] = lowLinks[w]
					}
				} else if onStack[w] {
					if indices[w] < lowLinks[v] {
						lowLinks[v] = indices[w]
					}
				}
			}
		}

		if lowLinks[v] == indices[v] {
			scc := make([]string, 0)
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	paths := g.Paths()
	sort.Strings(paths)
	for _, path := range paths {
		if _, seen := indices[path]; !seen {
			strongConnect(path)
		}
	}
	return sccs
}

// CyclicDependencies reports every cycle in g: each strongly connected
// component with more than one member, plus each single module that
// depends on itself.
func CyclicDependencies(g *graph.Graph) [][]string {
	sccs := StronglyConnectedComponents(g)
	cycles := make([][]string, 0)

	for _, scc := range sccs {
		if len(scc) > 1 {
			cycles = append(cycles, scc)
			continue
		}
		m, ok := g.Get(scc[0])
		if !ok {
			continue
		}
		for _, dep := range m.Dependencies() {
			if dep.Path == scc[0] {
				cycles = append(cycles, scc)
				break
			}
		}
	}
	return cycles
}

// TransitiveDependencies returns every module reachable from modulePath
// by forward edges, mapped to its shortest distance. modulePath itself
// is excluded.
func TransitiveDependencies(g *graph.Graph, modulePath string) map[string]int {
	if !g.Has(modulePath) {
		return nil
	}

	deps := make(map[string]int)
	type item struct {
		path  string
		depth int
	}
	queue := []item{{modulePath, 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if existing, seen := deps[current.path]; seen && existing <= current.depth {
			continue
		}
		deps[current.path] = current.depth

		if m, ok := g.Get(current.path); ok {
			for _, dep := range m.Dependencies() {
				queue = append(queue, item{dep.Path, current.depth + 1})
			}
		}
	}
	delete(deps, modulePath)
	return deps
}

// TransitiveDependents returns every module that transitively depends
// on modulePath, via each module's inverse-dependency set, mapped to
// its shortest distance. modulePath itself is excluded.
func TransitiveDependents(g *graph.Graph, modulePath string) map[string]int {
	if !g.Has(modulePath) {
		return nil
	}

	dependents := make(map[string]int)
	type item struct {
		path  string
		depth int
	}
	queue := []item{{modulePath, 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if existing, seen := dependents[current.path]; seen && existing <= current.depth {
			continue
		}
		dependents[current.path] = current.depth

		if m, ok := g.Get(current.path); ok {
			for _, inv := range m.InverseDependencies() {
				queue = append(queue, item{inv, current.depth + 1})
			}
		}
	}
	delete(dependents, modulePath)
	return dependents
}

// DependencyDepth returns the length of the longest forward-edge chain
// starting at modulePath, or -1 if modulePath is not in g. Cyclic
// reachability sets recurse forever here by design: call
// CyclicDependencies first and skip modules inside a reported cycle.
func DependencyDepth(g *graph.Graph, modulePath string) int {
	if !g.Has(modulePath) {
		return -1
	}

	memo := make(map[string]int)
	var calculateDepth func(string) int
	calculateDepth = func(path string) int {
		if depth, ok := memo[path]; ok {
			return depth
		}
		m, ok := g.Get(path)
		if !ok || len(m.Dependencies()) == 0 {
			memo[path] = 0
			return 0
		}

		maxDepth := 0
		for _, dep := range m.Dependencies() {
			if depth := calculateDepth(dep.Path); depth+1 > maxDepth {
				maxDepth = depth + 1
			}
		}
		memo[path] = maxDepth
		return maxDepth
	}
	return calculateDepth(modulePath)
}
