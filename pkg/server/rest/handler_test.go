package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

func setupTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	deps := map[string][]string{
		"main.go":          {"utils/helper.go", "config/config.go"},
		"utils/helper.go":  {},
		"config/config.go": {},
	}
	g := graph.NewGraph([]string{"main.go"})
	opts := graph.Options{
		Resolve: func(fromPath, name string) (string, error) { return name, nil },
		Transform: func(path string) (graph.TransformResult, error) {
			return graph.TransformResult{Dependencies: deps[path]}, nil
		},
	}
	if _, _, err := graph.InitialTraverseDependencies(g, opts); err != nil {
		t.Fatalf("setupTestGraph: %v", err)
	}
	return g
}

func TestHandleModules(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Meta["total"] != 3 {
		t.Errorf("Expected 3 modules, got %d", response.Meta["total"])
	}
}

func TestHandleModulesWithFilter(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules?extension=.go", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var response ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Meta["total"] != 3 {
		t.Errorf("Expected 3 modules, got %d", response.Meta["total"])
	}
}

func TestHandleModulesWithPagination(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules?limit=2&offset=0", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var response ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Meta["count"] != 2 {
		t.Errorf("Expected 2 modules in page, got %d", response.Meta["count"])
	}
	if response.Meta["total"] != 3 {
		t.Errorf("Expected total 3 modules, got %d", response.Meta["total"])
	}
	if response.Links["next"] == "" {
		t.Error("Expected next link")
	}
}

func TestHandleModuleByPath(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules/main.go", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response ModuleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Path != "main.go" {
		t.Errorf("Expected path main.go, got %s", response.Path)
	}
	if len(response.Dependencies) != 2 {
		t.Errorf("Expected 2 dependencies, got %d", len(response.Dependencies))
	}
	if !response.IsEntryPoint {
		t.Error("Expected main.go to be an entry point")
	}
}

func TestHandleModuleNotFound(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules/nonexistent.go", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleModuleDependents(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules/utils/helper.go/dependents", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["count"].(float64) != 1 {
		t.Errorf("Expected 1 dependent, got %v", response["count"])
	}
}

func TestHandleModulesSearch(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules/search?q=helper", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["count"].(float64) != 1 {
		t.Errorf("Expected 1 result, got %v", response["count"])
	}
}

func TestHandleModulesSearchMissingQuery(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules/search", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleAnalysisStats(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/analysis/stats", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["totalModules"].(float64) != 3 {
		t.Errorf("Expected 3 modules, got %v", response["totalModules"])
	}
	if response["totalRelationships"].(float64) != 2 {
		t.Errorf("Expected 2 relationships, got %v", response["totalRelationships"])
	}
}

func TestHandleAnalysisImpact(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/analysis/impact/utils/helper.go", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleAnalysisImpactNotFound(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/analysis/impact/nonexistent.go", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	g := setupTestGraph(t)
	handler := NewHandler(g, true)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/v1/modules", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}
}
