// Package rest provides RESTful JSON endpoints over a *graph.Graph:
// module listing, lookup, search, and impact analysis, mounted under
// /api/v1 by cmd/metro's serve command.
package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// Handler handles REST API requests
type Handler struct {
	graph      *graph.Graph
	enableCORS bool
}

// NewHandler creates a new REST API handler
func NewHandler(g *graph.Graph, enableCORS bool) *Handler {
	return &Handler{graph: g, enableCORS: enableCORS}
}

// RegisterRoutes registers all REST API routes on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/modules", h.handleModules)
	mux.HandleFunc("/api/v1/modules/search", h.handleModulesSearch)
	mux.HandleFunc("/api/v1/modules/", h.handleModulesWithPath)

	mux.HandleFunc("/api/v1/analysis/stats", h.handleAnalysisStats)
	mux.HandleFunc("/api/v1/analysis/impact/", h.handleAnalysisImpact)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if h.enableCORS {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
	}
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	h.writeJSON(w, statusCode, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"status":  statusCode,
		},
	})
}

// parseQueryParams parses common query parameters
func (h *Handler) parseQueryParams(r *http.Request) (extension string, limit, offset int) {
	extension = r.URL.Query().Get("extension")

	limit = 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	offset = 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return
}

// filterModules returns every module whose path has the given
// extension, or every module if extension is empty.
func (h *Handler) filterModules(extension string) []*graph.Module {
	var filtered []*graph.Module
	h.graph.Range(func(mod *graph.Module) bool {
		if extension != "" && moduleExtension(mod.Path) != extension {
			return true
		}
		filtered = append(filtered, mod)
		return true
	})
	return filtered
}

// moduleExtension returns the file extension of path, including the
// leading dot, or "" if path has none.
func moduleExtension(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[i:]
		case '/':
			return ""
		}
	}
	return ""
}

// pathFromRoute extracts a module path from a URL path after a fixed
// prefix, trimming a trailing subresource segment such as
// "/dependencies" or "/dependents" if present.
func pathFromRoute(urlPath, prefix string, subresources ...string) (modulePath, subresource string) {
	rest := strings.TrimPrefix(urlPath, prefix)
	for _, sub := range subresources {
		if strings.HasSuffix(rest, "/"+sub) {
			return strings.TrimSuffix(rest, "/"+sub), sub
		}
	}
	return rest, ""
}
