package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nguyenquangtin/metro/pkg/analysis"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

// ModuleResponse represents a module in the API response
type ModuleResponse struct {
	Path         string            `json:"path"`
	Extension    string            `json:"extension,omitempty"`
	IsEntryPoint bool              `json:"isEntryPoint"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Dependents   []string          `json:"dependents,omitempty"`
	Links        map[string]string `json:"links"`
}

// ListResponse represents a paginated list response
type ListResponse struct {
	Data  interface{}       `json:"data"`
	Meta  map[string]int    `json:"meta"`
	Links map[string]string `json:"links,omitempty"`
}

// toModuleResponse converts a graph.Module to API response format
func (h *Handler) toModuleResponse(mod *graph.Module, includeDeps bool) ModuleResponse {
	resp := ModuleResponse{
		Path:         mod.Path,
		Extension:    moduleExtension(mod.Path),
		IsEntryPoint: h.graph.IsEntryPoint(mod.Path),
		Links: map[string]string{
			"self":         fmt.Sprintf("/api/v1/modules/%s", mod.Path),
			"dependencies": fmt.Sprintf("/api/v1/modules/%s/dependencies", mod.Path),
			"dependents":   fmt.Sprintf("/api/v1/modules/%s/dependents", mod.Path),
		},
	}

	if includeDeps {
		for _, dep := range mod.Dependencies() {
			resp.Dependencies = append(resp.Dependencies, dep.Path)
		}
		resp.Dependents = mod.InverseDependencies()
		if resp.Dependencies == nil {
			resp.Dependencies = []string{}
		}
		if resp.Dependents == nil {
			resp.Dependents = []string{}
		}
	}

	return resp
}

// handleModules handles GET /api/v1/modules
func (h *Handler) handleModules(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.writeJSON(w, http.StatusOK, nil)
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}

	extension, limit, offset := h.parseQueryParams(r)
	filtered := h.filterModules(extension)

	total := len(filtered)
	start := offset
	end := offset + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	paginated := filtered[start:end]

	modules := make([]ModuleResponse, len(paginated))
	for i, mod := range paginated {
		modules[i] = h.toModuleResponse(mod, false)
	}

	response := ListResponse{
		Data: modules,
		Meta: map[string]int{
			"total":  total,
			"limit":  limit,
			"offset": offset,
			"count":  len(modules),
		},
	}

	links := make(map[string]string)
	queryBase := buildQueryString(extension)
	links["self"] = fmt.Sprintf("/api/v1/modules?%slimit=%d&offset=%d", queryBase, limit, offset)
	if end < total {
		links["next"] = fmt.Sprintf("/api/v1/modules?%slimit=%d&offset=%d", queryBase, limit, end)
	}
	if start > 0 {
		prevOffset := start - limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		links["prev"] = fmt.Sprintf("/api/v1/modules?%slimit=%d&offset=%d", queryBase, limit, prevOffset)
	}
	response.Links = links

	h.writeJSON(w, http.StatusOK, response)
}

// handleModulesWithPath handles GET /api/v1/modules/{path}[/dependencies|/dependents]
func (h *Handler) handleModulesWithPath(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.writeJSON(w, http.StatusOK, nil)
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}

	modulePath, sub := pathFromRoute(r.URL.Path, "/api/v1/modules/", "dependencies", "dependents")

	module, ok := h.graph.Get(modulePath)
	if !ok {
		h.writeError(w, http.StatusNotFound, "MODULE_NOT_FOUND", fmt.Sprintf("Module %q not found", modulePath))
		return
	}

	switch sub {
	case "dependencies":
		deps := make([]ModuleResponse, 0)
		for _, dep := range module.Dependencies() {
			if depMod, ok := h.graph.Get(dep.Path); ok {
				deps = append(deps, h.toModuleResponse(depMod, false))
			}
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"module":       h.toModuleResponse(module, false),
			"dependencies": deps,
			"count":        len(deps),
		})
	case "dependents":
		deps := make([]ModuleResponse, 0)
		for _, path := range module.InverseDependencies() {
			if depMod, ok := h.graph.Get(path); ok {
				deps = append(deps, h.toModuleResponse(depMod, false))
			}
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"module":     h.toModuleResponse(module, false),
			"dependents": deps,
			"count":      len(deps),
		})
	default:
		h.writeJSON(w, http.StatusOK, h.toModuleResponse(module, true))
	}
}

// handleModulesSearch handles GET /api/v1/modules/search
func (h *Handler) handleModulesSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.writeJSON(w, http.StatusOK, nil)
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_QUERY", "Query parameter 'q' is required")
		return
	}

	queryLower := strings.ToLower(query)
	var results []*graph.Module
	h.graph.Range(func(mod *graph.Module) bool {
		if strings.Contains(strings.ToLower(mod.Path), queryLower) {
			results = append(results, mod)
		}
		return true
	})

	modules := make([]ModuleResponse, len(results))
	for i, mod := range results {
		modules[i] = h.toModuleResponse(mod, false)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": modules,
		"count":   len(modules),
	})
}

// handleAnalysisStats handles GET /api/v1/analysis/stats
func (h *Handler) handleAnalysisStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}

	extensionCounts := make(map[string]int)
	totalEdges := 0
	h.graph.Range(func(mod *graph.Module) bool {
		if ext := moduleExtension(mod.Path); ext != "" {
			extensionCounts[ext]++
		}
		totalEdges += len(mod.Dependencies())
		return true
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalModules":       h.graph.Len(),
		"totalRelationships": totalEdges,
		"entryPointCount":    len(h.graph.EntryPoints()),
		"modulesByExtension": extensionCounts,
	})
}

// handleAnalysisImpact handles GET /api/v1/analysis/impact/{path}
func (h *Handler) handleAnalysisImpact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}

	modulePath := strings.TrimPrefix(r.URL.Path, "/api/v1/analysis/impact/")
	if modulePath == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_PATH", "A module path is required")
		return
	}

	result, err := analysis.NewImpactAnalysis(h.graph).AnalyzeImpact(modulePath)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "MODULE_NOT_FOUND", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// buildQueryString builds a query string fragment from filter parameters
func buildQueryString(extension string) string {
	if extension == "" {
		return ""
	}
	return fmt.Sprintf("extension=%s&", extension)
}
