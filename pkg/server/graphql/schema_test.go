package graphql

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	metrograph "github.com/nguyenquangtin/metro/pkg/graph"
)

func setupTestGraph(t *testing.T) *metrograph.Graph {
	t.Helper()
	deps := map[string][]string{
		"main.go":             {"utils/helper.go", "config/config.go"},
		"utils/helper.go":     {},
		"config/config.go":    {},
	}
	g := metrograph.NewGraph([]string{"main.go"})
	opts := metrograph.Options{
		Resolve: func(fromPath, name string) (string, error) { return name, nil },
		Transform: func(path string) (metrograph.TransformResult, error) {
			return metrograph.TransformResult{Dependencies: deps[path]}, nil
		},
	}
	if _, _, err := metrograph.InitialTraverseDependencies(g, opts); err != nil {
		t.Fatalf("setupTestGraph: %v", err)
	}
	return g
}

func TestBuildSchema(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	if schema.QueryType() == nil {
		t.Error("Schema missing Query type")
	}
}

func TestModuleQuery(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		module(path: "main.go") {
			path
			isEntryPoint
		}
	}`

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})

	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	module := data["module"].(map[string]interface{})

	if module["path"] != "main.go" {
		t.Errorf("Expected path 'main.go', got %v", module["path"])
	}
	if module["isEntryPoint"] != true {
		t.Errorf("Expected isEntryPoint true, got %v", module["isEntryPoint"])
	}
}

func TestModulesQuery(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		modules {
			edges {
				node {
					path
				}
			}
			totalCount
		}
	}`

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})

	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	modules := data["modules"].(map[string]interface{})

	if modules["totalCount"] != 3 {
		t.Errorf("Expected totalCount 3, got %v", modules["totalCount"])
	}

	edges := modules["edges"].([]interface{})
	if len(edges) != 3 {
		t.Errorf("Expected 3 edges, got %d", len(edges))
	}
}

func TestModulesQueryWithFilter(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		modules(extension: ".go") {
			totalCount
		}
	}`

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})

	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	modules := data["modules"].(map[string]interface{})

	if modules["totalCount"] != 3 {
		t.Errorf("Expected totalCount 3, got %v", modules["totalCount"])
	}
}

func TestModulesQueryWithPagination(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		modules(first: 2) {
			edges {
				node {
					path
				}
				cursor
			}
			pageInfo {
				hasNextPage
				hasPreviousPage
			}
			totalCount
		}
	}`

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})

	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	modules := data["modules"].(map[string]interface{})

	edges := modules["edges"].([]interface{})
	if len(edges) != 2 {
		t.Errorf("Expected 2 edges, got %d", len(edges))
	}

	pageInfo := modules["pageInfo"].(map[string]interface{})
	if pageInfo["hasNextPage"] != true {
		t.Error("Expected hasNextPage to be true")
	}
	if pageInfo["hasPreviousPage"] != false {
		t.Error("Expected hasPreviousPage to be false")
	}
}

func TestSearchModulesQuery(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		searchModules(query: "helper") {
			path
		}
	}`

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})

	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	modules := data["searchModules"].([]interface{})

	if len(modules) != 1 {
		t.Errorf("Expected 1 module, got %d", len(modules))
	}

	module := modules[0].(map[string]interface{})
	if module["path"] != "utils/helper.go" {
		t.Errorf("Expected path 'utils/helper.go', got %v", module["path"])
	}
}

func TestStatsQuery(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		stats {
			totalModules
			totalEdges
			entryPointCount
			modulesByExtension {
				extension
				count
			}
		}
	}`

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})

	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	stats := data["stats"].(map[string]interface{})

	if stats["totalModules"] != 3 {
		t.Errorf("Expected totalModules 3, got %v", stats["totalModules"])
	}
	if stats["totalEdges"] != 2 {
		t.Errorf("Expected totalEdges 2, got %v", stats["totalEdges"])
	}
	if stats["entryPointCount"] != 1 {
		t.Errorf("Expected entryPointCount 1, got %v", stats["entryPointCount"])
	}

	byExtension := stats["modulesByExtension"].([]interface{})
	if len(byExtension) != 1 {
		t.Errorf("Expected 1 extension entry, got %d", len(byExtension))
	}
}

func TestDependenciesQuery(t *testing.T) {
	g := setupTestGraph(t)

	schema, err := BuildSchema(g)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	query := `{
		module(path: "main.go") {
			path
			dependencies {
				path
			}
			dependents {
				path
			}
		}
	}`

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})

	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	module := data["module"].(map[string]interface{})

	dependencies := module["dependencies"].([]interface{})
	if len(dependencies) != 2 {
		t.Errorf("Expected 2 dependencies, got %d", len(dependencies))
	}

	dependents := module["dependents"].([]interface{})
	if len(dependents) != 0 {
		t.Errorf("Expected 0 dependents for the entry point, got %d", len(dependents))
	}
}
