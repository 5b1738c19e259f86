package graphql

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	metrograph "github.com/nguyenquangtin/metro/pkg/graph"
)

func TestNewResolver(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	if resolver == nil {
		t.Fatal("NewResolver returned nil")
	}
	if resolver.graph != g {
		t.Error("Resolver graph not set correctly")
	}
}

func TestResolverModule(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
		isNil    bool
	}{
		{name: "find by path", args: map[string]interface{}{"path": "utils/helper.go"}, expected: "utils/helper.go"},
		{name: "not found", args: map[string]interface{}{"path": "nonexistent.go"}, isNil: true},
		{name: "missing path", args: map[string]interface{}{}, isNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := graphql.ResolveParams{Args: tt.args, Context: context.Background()}

			result, err := resolver.Module(params)
			if err != nil {
				t.Fatalf("Module resolver failed: %v", err)
			}

			if tt.isNil {
				if result != nil {
					t.Errorf("Expected nil result, got %v", result)
				}
				return
			}
			if result == nil {
				t.Fatal("Expected non-nil result")
			}
			module := result.(*metrograph.Module)
			if module.Path != tt.expected {
				t.Errorf("Expected path %s, got %s", tt.expected, module.Path)
			}
		})
	}
}

func TestResolverModules(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	tests := []struct {
		name          string
		args          map[string]interface{}
		expectedCount int
	}{
		{name: "all modules", args: map[string]interface{}{}, expectedCount: 3},
		{name: "filter by extension", args: map[string]interface{}{"extension": ".go"}, expectedCount: 3},
		{name: "no matches", args: map[string]interface{}{"extension": ".py"}, expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := graphql.ResolveParams{Args: tt.args, Context: context.Background()}

			result, err := resolver.Modules(params)
			if err != nil {
				t.Fatalf("Modules resolver failed: %v", err)
			}

			connection := result.(map[string]interface{})
			totalCount := connection["totalCount"].(int)
			if totalCount != tt.expectedCount {
				t.Errorf("Expected count %d, got %d", tt.expectedCount, totalCount)
			}
		})
	}
}

func TestResolverModulesPagination(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	params := graphql.ResolveParams{
		Args:    map[string]interface{}{"first": 2},
		Context: context.Background(),
	}

	result, err := resolver.Modules(params)
	if err != nil {
		t.Fatalf("Modules resolver failed: %v", err)
	}

	connection := result.(map[string]interface{})
	edges := connection["edges"].([]map[string]interface{})
	if len(edges) != 2 {
		t.Errorf("Expected 2 edges, got %d", len(edges))
	}

	pageInfo := connection["pageInfo"].(map[string]interface{})
	if pageInfo["hasNextPage"] != true {
		t.Error("Expected hasNextPage to be true")
	}
	if pageInfo["hasPreviousPage"] != false {
		t.Error("Expected hasPreviousPage to be false")
	}

	endCursor := pageInfo["endCursor"].(string)
	params2 := graphql.ResolveParams{
		Args:    map[string]interface{}{"first": 2, "after": endCursor},
		Context: context.Background(),
	}

	result2, err := resolver.Modules(params2)
	if err != nil {
		t.Fatalf("Modules resolver failed: %v", err)
	}

	connection2 := result2.(map[string]interface{})
	edges2 := connection2["edges"].([]map[string]interface{})
	if len(edges2) != 1 {
		t.Errorf("Expected 1 edge, got %d", len(edges2))
	}

	pageInfo2 := connection2["pageInfo"].(map[string]interface{})
	if pageInfo2["hasNextPage"] != false {
		t.Error("Expected hasNextPage to be false")
	}
	if pageInfo2["hasPreviousPage"] != true {
		t.Error("Expected hasPreviousPage to be true")
	}
}

func TestResolverSearchModules(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	tests := []struct {
		name          string
		query         string
		expectedCount int
	}{
		{name: "search path", query: "helper", expectedCount: 1},
		{name: "search config", query: "config", expectedCount: 1},
		{name: "case insensitive", query: "HELPER", expectedCount: 1},
		{name: "no matches", query: "xyz123", expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := graphql.ResolveParams{
				Args:    map[string]interface{}{"query": tt.query},
				Context: context.Background(),
			}

			result, err := resolver.SearchModules(params)
			if err != nil {
				t.Fatalf("SearchModules resolver failed: %v", err)
			}

			modules := result.([]*metrograph.Module)
			if len(modules) != tt.expectedCount {
				t.Errorf("Expected %d modules, got %d", tt.expectedCount, len(modules))
			}
		})
	}
}

func TestResolverStats(t *testing.T) {
	g := setupTestGraph(t)
	resolver := NewResolver(g)

	params := graphql.ResolveParams{Args: map[string]interface{}{}, Context: context.Background()}

	result, err := resolver.Stats(params)
	if err != nil {
		t.Fatalf("Stats resolver failed: %v", err)
	}

	stats := result.(map[string]interface{})

	if stats["totalModules"] != 3 {
		t.Errorf("Expected totalModules 3, got %v", stats["totalModules"])
	}
	if stats["totalEdges"] != 2 {
		t.Errorf("Expected totalEdges 2, got %v", stats["totalEdges"])
	}
	if stats["entryPointCount"] != 1 {
		t.Errorf("Expected entryPointCount 1, got %v", stats["entryPointCount"])
	}

	modulesByExtension := stats["modulesByExtension"].([]map[string]interface{})
	if len(modulesByExtension) != 1 {
		t.Errorf("Expected 1 extension entry, got %d", len(modulesByExtension))
	}
	extStats := modulesByExtension[0]
	if extStats["extension"] != ".go" {
		t.Errorf("Expected extension '.go', got %v", extStats["extension"])
	}
	if extStats["count"] != 3 {
		t.Errorf("Expected count 3, got %v", extStats["count"])
	}
}

func TestEncodeCursor(t *testing.T) {
	cursor := encodeCursor(42)
	if cursor == "" {
		t.Error("Expected non-empty cursor")
	}
}

func TestDecodeCursor(t *testing.T) {
	cursor := encodeCursor(42)
	idx, err := decodeCursor(cursor)
	if err != nil {
		t.Fatalf("decodeCursor failed: %v", err)
	}
	if idx != 42 {
		t.Errorf("Expected index 42, got %d", idx)
	}

	if _, err := decodeCursor("invalid"); err == nil {
		t.Error("Expected error for invalid cursor")
	}
	if _, err := decodeCursor("YWJjZGVm"); err == nil {
		t.Error("Expected error for malformed cursor")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	for _, idx := range []int{0, 1, 10, 100, 999} {
		cursor := encodeCursor(idx)
		decoded, err := decodeCursor(cursor)
		if err != nil {
			t.Fatalf("Round trip failed: %v", err)
		}
		if decoded != idx {
			t.Errorf("Expected %d, got %d", idx, decoded)
		}
	}
}

func TestModuleExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"main.go", ".go"},
		{"pkg/graph/graph.go", ".go"},
		{"no-extension", ""},
		{"dir.with.dot/file", ""},
	}
	for _, tt := range tests {
		if got := moduleExtension(tt.path); got != tt.expected {
			t.Errorf("moduleExtension(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}
