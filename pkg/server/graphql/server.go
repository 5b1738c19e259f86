package graphql

import (
	"net/http"

	"github.com/graphql-go/handler"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

// HandlerConfig configures the GraphQL handler
type HandlerConfig struct {
	EnablePlayground bool
	EnableCORS       bool
}

// NewHandler creates a new GraphQL HTTP handler
func NewHandler(g *graph.Graph, config HandlerConfig) (http.Handler, error) {
	// Build schema
	schema, err := BuildSchema(g)
	if err != nil {
		return nil, err
	}

	// Create handler
	h := handler.New(&handler.Config{
		Schema:     &schema,
		Pretty:     true,
		GraphiQL:   config.EnablePlayground,
		Playground: config.EnablePlayground,
	})

	// Wrap with CORS if enabled
	if config.EnableCORS {
		return corsHandler(h), nil
	}

	return h, nil
}

// corsHandler wraps an HTTP handler with CORS headers
func corsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}
