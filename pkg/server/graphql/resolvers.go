package graphql

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	metrograph "github.com/nguyenquangtin/metro/pkg/graph"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// graphContextKey is the context key for storing the graph
	graphContextKey contextKey = "graph"
)

// Resolver handles GraphQL query resolution
type Resolver struct {
	graph *metrograph.Graph
}

// NewResolver creates a new resolver
func NewResolver(g *metrograph.Graph) *Resolver {
	return &Resolver{graph: g}
}

// Module resolves the module query
func (r *Resolver) Module(p graphql.ResolveParams) (interface{}, error) {
	p.Context = context.WithValue(p.Context, graphContextKey, r.graph)

	path, _ := p.Args["path"].(string)
	if path == "" {
		return nil, nil
	}

	if mod, ok := r.graph.Get(path); ok {
		return mod, nil
	}
	return nil, nil
}

// Modules resolves the modules query with filtering and pagination
func (r *Resolver) Modules(p graphql.ResolveParams) (interface{}, error) {
	p.Context = context.WithValue(p.Context, graphContextKey, r.graph)

	extension, _ := p.Args["extension"].(string)
	first, hasFirst := p.Args["first"].(int)
	after, _ := p.Args["after"].(string)

	var filtered []*metrograph.Module
	r.graph.Range(func(mod *metrograph.Module) bool {
		if extension != "" && moduleExtension(mod.Path) != extension {
			return true
		}
		filtered = append(filtered, mod)
		return true
	})

	startIdx := 0
	if after != "" {
		if idx, err := decodeCursor(after); err == nil {
			startIdx = idx + 1
		}
	}

	endIdx := len(filtered)
	if hasFirst && startIdx+first < endIdx {
		endIdx = startIdx + first
	}
	if startIdx > endIdx {
		startIdx = endIdx
	}

	var edges []map[string]interface{}
	for i := startIdx; i < endIdx; i++ {
		edges = append(edges, map[string]interface{}{
			"node":   filtered[i],
			"cursor": encodeCursor(i),
		})
	}

	pageInfo := map[string]interface{}{
		"hasNextPage":     endIdx < len(filtered),
		"hasPreviousPage": startIdx > 0,
		"startCursor":     nil,
		"endCursor":       nil,
	}
	if len(edges) > 0 {
		pageInfo["startCursor"] = encodeCursor(startIdx)
		pageInfo["endCursor"] = encodeCursor(endIdx - 1)
	}

	return map[string]interface{}{
		"edges":      edges,
		"pageInfo":   pageInfo,
		"totalCount": len(filtered),
	}, nil
}

// SearchModules resolves the searchModules query
func (r *Resolver) SearchModules(p graphql.ResolveParams) (interface{}, error) {
	p.Context = context.WithValue(p.Context, graphContextKey, r.graph)

	query, ok := p.Args["query"].(string)
	if !ok || query == "" {
		return []*metrograph.Module{}, nil
	}

	queryLower := strings.ToLower(query)
	var results []*metrograph.Module
	r.graph.Range(func(mod *metrograph.Module) bool {
		if strings.Contains(strings.ToLower(mod.Path), queryLower) {
			results = append(results, mod)
		}
		return true
	})

	return results, nil
}

// Stats resolves the stats query
func (r *Resolver) Stats(p graphql.ResolveParams) (interface{}, error) {
	extensionCounts := make(map[string]int)
	totalEdges := 0

	r.graph.Range(func(mod *metrograph.Module) bool {
		ext := moduleExtension(mod.Path)
		if ext != "" {
			extensionCounts[ext]++
		}
		totalEdges += len(mod.Dependencies())
		return true
	})

	extensions := make([]string, 0, len(extensionCounts))
	for ext := range extensionCounts {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)

	modulesByExtension := make([]map[string]interface{}, 0, len(extensions))
	for _, ext := range extensions {
		modulesByExtension = append(modulesByExtension, map[string]interface{}{
			"extension": ext,
			"count":     extensionCounts[ext],
		})
	}

	return map[string]interface{}{
		"totalModules":       r.graph.Len(),
		"totalEdges":         totalEdges,
		"entryPointCount":    len(r.graph.EntryPoints()),
		"modulesByExtension": modulesByExtension,
	}, nil
}

// encodeCursor encodes an index as a base64 cursor
func encodeCursor(idx int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("cursor:%d", idx)))
}

// decodeCursor decodes a base64 cursor to an index
func decodeCursor(cursor string) (int, error) {
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, err
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 2 || parts[0] != "cursor" {
		return 0, fmt.Errorf("invalid cursor format")
	}

	return strconv.Atoi(parts[1])
}
