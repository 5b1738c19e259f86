package analysis

import (
	"testing"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// buildGraph drives the real traversal engine to construct a graph from
// entryPoints, using deps as an adjacency list keyed by path where each
// dependency name is already the resolved target path. This keeps
// analysis tests exercising graph.Module/graph.Graph through their
// public API rather than poking at unexported fields.
func buildGraph(t *testing.T, entryPoints []string, deps map[string][]string) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(entryPoints)
	opts := graph.Options{
		Resolve: func(fromPath, name string) (string, error) {
			return name, nil
		},
		Transform: func(path string) (graph.TransformResult, error) {
			return graph.TransformResult{Dependencies: deps[path]}, nil
		},
	}
	if _, _, err := graph.InitialTraverseDependencies(g, opts); err != nil {
		t.Fatalf("buildGraph: InitialTraverseDependencies: %v", err)
	}
	return g
}
