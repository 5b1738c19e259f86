package analysis

import (
	"reflect"
	"sort"
	"testing"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// Diamond DAG rooted at A and C, plus E held reachable as its own
// entry point so it behaves like an isolated module with no edges in
// either direction.
func dagGraph(t *testing.T) *graph.Graph {
	return buildGraph(t, []string{"A", "E"}, map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
		"D": {},
		"E": {},
	})
}

// A -> B -> C -> A cycle, plus D held reachable as its own entry point.
func cyclicGraph(t *testing.T) *graph.Graph {
	return buildGraph(t, []string{"A", "D"}, map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
		"D": {},
	})
}

func TestTopologicalSort(t *testing.T) {
	t.Run("valid DAG", func(t *testing.T) {
		g := dagGraph(t)
		result, err := TopologicalSort(g)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(result) != 5 {
			t.Fatalf("Expected 5 modules, got %d", len(result))
		}

		positions := make(map[string]int)
		for i, module := range result {
			positions[module.Path] = i
		}

		if positions["D"] >= positions["B"] || positions["D"] >= positions["C"] {
			t.Error("D should come before B and C")
		}
		if positions["B"] >= positions["A"] || positions["C"] >= positions["A"] {
			t.Error("B and C should come before A")
		}
	})

	t.Run("cyclic graph", func(t *testing.T) {
		g := cyclicGraph(t)
		if _, err := TopologicalSort(g); err == nil {
			t.Fatal("Expected error for cyclic graph, got nil")
		}
	})

	t.Run("empty graph has no entry points", func(t *testing.T) {
		g := graph.NewGraph(nil)
		result, err := TopologicalSort(g)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(result) != 0 {
			t.Fatalf("Expected 0 modules, got %d", len(result))
		}
	})
}

func TestShortestPath(t *testing.T) {
	g := dagGraph(t)

	tests := []struct {
		name     string
		from, to string
		expected []string
	}{
		{"direct dependency", "A", "B", []string{"A", "B"}},
		{"same module", "A", "A", []string{"A"}},
		{"no path", "D", "A", nil},
		{"isolated module", "E", "A", nil},
		{"non-existent source", "X", "A", nil},
		{"non-existent target", "A", "X", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShortestPath(g, tt.from, tt.to)
			if tt.expected == nil {
				if result != nil {
					t.Errorf("Expected nil, got %v", result)
				}
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}

	t.Run("transitive dependency takes either diamond branch", func(t *testing.T) {
		result := ShortestPath(g, "A", "D")
		if len(result) != 3 || result[0] != "A" || result[2] != "D" {
			t.Errorf("Expected path of length 3 from A to D, got %v", result)
		}
	})
}

func TestStronglyConnectedComponents(t *testing.T) {
	t.Run("DAG with no cycles", func(t *testing.T) {
		g := dagGraph(t)
		sccs := StronglyConnectedComponents(g)
		if len(sccs) != 5 {
			t.Fatalf("Expected 5 SCCs, got %d", len(sccs))
		}
		for _, scc := range sccs {
			if len(scc) != 1 {
				t.Errorf("Expected singleton SCC, got %v", scc)
			}
		}
	})

	t.Run("graph with cycle", func(t *testing.T) {
		g := cyclicGraph(t)
		sccs := StronglyConnectedComponents(g)
		if len(sccs) != 2 {
			t.Fatalf("Expected 2 SCCs, got %d", len(sccs))
		}

		var cycleSCC []string
		for _, scc := range sccs {
			if len(scc) == 3 {
				cycleSCC = scc
			}
		}
		if cycleSCC == nil {
			t.Fatal("Expected to find SCC with 3 nodes")
		}
		sort.Strings(cycleSCC)
		if !reflect.DeepEqual(cycleSCC, []string{"A", "B", "C"}) {
			t.Errorf("Expected cycle SCC [A B C], got %v", cycleSCC)
		}
	})
}

func TestTransitiveDependencies(t *testing.T) {
	g := dagGraph(t)

	tests := []struct {
		name     string
		module   string
		expected map[string]int
	}{
		{"module A", "A", map[string]int{"B": 1, "C": 1, "D": 2}},
		{"module B", "B", map[string]int{"D": 1}},
		{"module D (leaf)", "D", map[string]int{}},
		{"module E (isolated)", "E", map[string]int{}},
		{"non-existent module", "X", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TransitiveDependencies(g, tt.module)
			if tt.expected == nil {
				if result != nil {
					t.Errorf("Expected nil, got %v", result)
				}
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestTransitiveDependents(t *testing.T) {
	g := dagGraph(t)

	tests := []struct {
		name     string
		module   string
		expected map[string]int
	}{
		{"module D (depended on by all)", "D", map[string]int{"B": 1, "C": 1, "A": 2}},
		{"module B", "B", map[string]int{"A": 1}},
		{"module A (root)", "A", map[string]int{}},
		{"module E (isolated)", "E", map[string]int{}},
		{"non-existent module", "X", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TransitiveDependents(g, tt.module)
			if tt.expected == nil {
				if result != nil {
					t.Errorf("Expected nil, got %v", result)
				}
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestCyclicDependencies(t *testing.T) {
	t.Run("DAG with no cycles", func(t *testing.T) {
		g := dagGraph(t)
		if cycles := CyclicDependencies(g); len(cycles) != 0 {
			t.Errorf("Expected 0 cycles, got %d: %v", len(cycles), cycles)
		}
	})

	t.Run("graph with cycle", func(t *testing.T) {
		g := cyclicGraph(t)
		cycles := CyclicDependencies(g)
		if len(cycles) != 1 {
			t.Fatalf("Expected 1 cycle, got %d", len(cycles))
		}
		cycle := cycles[0]
		sort.Strings(cycle)
		if !reflect.DeepEqual(cycle, []string{"A", "B", "C"}) {
			t.Errorf("Expected cycle [A B C], got %v", cycle)
		}
	})

	t.Run("self-loop", func(t *testing.T) {
		g := buildGraph(t, []string{"A"}, map[string][]string{"A": {"A"}})
		cycles := CyclicDependencies(g)
		if len(cycles) != 1 {
			t.Fatalf("Expected 1 cycle (self-loop), got %d", len(cycles))
		}
		if len(cycles[0]) != 1 || cycles[0][0] != "A" {
			t.Errorf("Expected self-loop cycle [A], got %v", cycles[0])
		}
	})
}

func TestDependencyDepth(t *testing.T) {
	g := dagGraph(t)

	tests := []struct {
		name     string
		module   string
		expected int
	}{
		{"module A (deepest)", "A", 2},
		{"module B", "B", 1},
		{"module C", "C", 1},
		{"module D (leaf)", "D", 0},
		{"module E (isolated)", "E", 0},
		{"non-existent module", "X", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := DependencyDepth(g, tt.module); result != tt.expected {
				t.Errorf("Expected depth %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestComplexGraph(t *testing.T) {
	// Diamond with a tail: A -> {B, C} -> D -> E
	g := buildGraph(t, []string{"A"}, map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
		"D": {"E"},
		"E": {},
	})

	t.Run("topological sort", func(t *testing.T) {
		result, err := TopologicalSort(g)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(result) != 5 {
			t.Fatalf("Expected 5 modules, got %d", len(result))
		}

		positions := make(map[string]int)
		for i, module := range result {
			positions[module.Path] = i
		}
		if positions["E"] >= positions["D"] {
			t.Error("E should come before D")
		}
		if positions["D"] >= positions["B"] || positions["D"] >= positions["C"] {
			t.Error("D should come before B and C")
		}
		if positions["B"] >= positions["A"] || positions["C"] >= positions["A"] {
			t.Error("B and C should come before A")
		}
	})

	t.Run("transitive dependencies of A", func(t *testing.T) {
		deps := TransitiveDependencies(g, "A")
		expected := map[string]int{"B": 1, "C": 1, "D": 2, "E": 3}
		if !reflect.DeepEqual(deps, expected) {
			t.Errorf("Expected %v, got %v", expected, deps)
		}
	})

	t.Run("dependency depth", func(t *testing.T) {
		if depth := DependencyDepth(g, "A"); depth != 3 {
			t.Errorf("Expected depth 3, got %d", depth)
		}
	})
}
