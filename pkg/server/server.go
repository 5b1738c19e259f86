// Package server hosts the HTTP surface over a built dependency graph:
// a GraphQL endpoint, a REST API under /api/v1, health and cache-stats
// endpoints, and an optional in-memory response cache.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nguyenquangtin/metro/pkg/cache"
	"github.com/nguyenquangtin/metro/pkg/graph"
	"github.com/nguyenquangtin/metro/pkg/logging"
	graphqlserver "github.com/nguyenquangtin/metro/pkg/server/graphql"
	restserver "github.com/nguyenquangtin/metro/pkg/server/rest"
)

var log = logging.Component("server")

// Config holds server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	EnableCORS       bool
	EnableGraphQL    bool
	EnablePlayground bool
	EnableREST       bool
	EnableCache      bool
	CacheMaxEntries  int
	CacheTTL         time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:             "localhost",
		Port:             8080,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		EnableCORS:       true,
		EnableGraphQL:    true,
		EnablePlayground: true,
		EnableREST:       true,
		EnableCache:      true,
		CacheMaxEntries:  1000,
		CacheTTL:         5 * time.Minute,
	}
}

// Server is the HTTP server fronting a dependency graph
type Server struct {
	config *Config
	graph  *graph.Graph
	server *http.Server
	cache  *cache.Cache
}

// NewServer creates a new HTTP server bound to g
func NewServer(config *Config, g *graph.Graph) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server{config: config, graph: g}
	if config.EnableCache {
		s.cache = cache.NewCache(config.CacheMaxEntries, config.CacheTTL)
	}
	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	if s.config.EnableGraphQL && s.graph != nil {
		graphqlHandler, err := graphqlserver.NewHandler(s.graph, graphqlserver.HandlerConfig{
			EnablePlayground: s.config.EnablePlayground,
			EnableCORS:       s.config.EnableCORS,
		})
		if err != nil {
			return fmt.Errorf("server: build graphql handler: %w", err)
		}

		if s.config.EnableCache && s.cache != nil {
			mux.Handle("/graphql", CacheMiddleware(graphqlHandler, s.cache))
		} else {
			mux.Handle("/graphql", graphqlHandler)
		}
	}

	if s.config.EnableREST && s.graph != nil {
		restHandler := restserver.NewHandler(s.graph, s.config.EnableCORS)
		restMux := http.NewServeMux()
		restHandler.RegisterRoutes(restMux)

		if s.config.EnableCache && s.cache != nil {
			mux.Handle("/api/v1/", CacheMiddleware(restMux, s.cache))
		} else {
			mux.Handle("/api/v1/", restMux)
		}
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if s.config.EnableCache && s.cache != nil {
		mux.HandleFunc("/cache/stats", s.handleCacheStats)
	}

	mux.HandleFunc("/", s.handleRoot)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	log.Info().Str("addr", addr).Msg("starting metro server")
	if s.config.EnableGraphQL && s.graph != nil {
		log.Info().Str("path", "/graphql").Bool("playground", s.config.EnablePlayground).Msg("graphql endpoint ready")
	}
	if s.config.EnableREST && s.graph != nil {
		log.Info().Str("path", "/api/v1").Msg("rest endpoints ready")
	}
	if s.config.EnableCache && s.cache != nil {
		log.Info().Int("maxEntries", s.config.CacheMaxEntries).Dur("ttl", s.config.CacheTTL).Msg("response cache enabled")
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("shutting down")
	return s.server.Shutdown(ctx)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	endpoints := `{
  "name": "metro dependency graph API",
  "version": "0.1.0",
  "endpoints": {`

	first := true
	if s.config.EnableGraphQL && s.graph != nil {
		endpoints += `
    "graphql": {
      "path": "/graphql",
      "methods": ["GET", "POST"],
      "description": "GraphQL query endpoint",
      "playground": ` + fmt.Sprintf("%v", s.config.EnablePlayground) + `
    }`
		first = false
	}

	if s.config.EnableREST && s.graph != nil {
		if !first {
			endpoints += `,`
		}
		endpoints += `
    "rest": {
      "path": "/api/v1",
      "methods": ["GET"],
      "description": "RESTful API for module and impact queries",
      "endpoints": {
        "modules": "/api/v1/modules",
        "search": "/api/v1/modules/search?q=query",
        "stats": "/api/v1/analysis/stats",
        "impact": "/api/v1/analysis/impact/{path}"
      }
    }`
		first = false
	}

	if !first {
		endpoints += `,`
	}
	endpoints += `
    "health": {
      "path": "/health",
      "methods": ["GET"],
      "description": "Health check endpoint"
    }
  }
}`

	w.Write([]byte(endpoints))
}

// handleCacheStats provides cache statistics
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.cache == nil {
		http.Error(w, "Cache not enabled", http.StatusNotFound)
		return
	}

	stats := s.cache.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := fmt.Sprintf(`{
  "hits": %d,
  "misses": %d,
  "evictions": %d,
  "size": %d,
  "maxSize": %d,
  "totalBytes": %d,
  "hitRate": %.4f
}`, stats.Hits, stats.Misses, stats.Evictions, stats.Size, stats.MaxSize, stats.TotalBytes, stats.HitRate)

	w.Write([]byte(response))
}
