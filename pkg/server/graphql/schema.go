// Package graphql exposes the dependency graph through a GraphQL schema:
// single-module lookups, a paginated module listing, substring search,
// and aggregate stats, all resolved directly against a *graph.Graph.
package graphql

import (
	"github.com/graphql-go/graphql"
	metrograph "github.com/nguyenquangtin/metro/pkg/graph"
)

var (
	// ModuleType represents a dependency-graph module
	ModuleType *graphql.Object

	// ExtensionStatsType represents a module count grouped by file extension
	ExtensionStatsType *graphql.Object

	// GraphStatsType represents aggregate graph statistics
	GraphStatsType *graphql.Object

	// PageInfoType represents pagination information
	PageInfoType *graphql.Object

	// ModuleEdgeType represents a module edge
	ModuleEdgeType *graphql.Object

	// ModuleConnectionType represents a module connection
	ModuleConnectionType *graphql.Object
)

// BuildSchema builds the GraphQL schema for g.
func BuildSchema(g *metrograph.Graph) (graphql.Schema, error) {
	initTypes(g)

	resolver := NewResolver(g)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Query",
		Description: "Root query type",
		Fields: graphql.Fields{
			"module": &graphql.Field{
				Type:        ModuleType,
				Description: "Get a single module by path",
				Args: graphql.FieldConfigArgument{
					"path": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Module path",
					},
				},
				Resolve: resolver.Module,
			},
			"modules": &graphql.Field{
				Type:        ModuleConnectionType,
				Description: "List all modules with optional filtering",
				Args: graphql.FieldConfigArgument{
					"extension": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Filter by file extension, e.g. \".ts\"",
					},
					"first": &graphql.ArgumentConfig{
						Type:        graphql.Int,
						Description: "Maximum number of results",
					},
					"after": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Cursor for pagination",
					},
				},
				Resolve: resolver.Modules,
			},
			"searchModules": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(ModuleType)),
				Description: "Search modules by path substring",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "Search query",
					},
				},
				Resolve: resolver.SearchModules,
			},
			"stats": &graphql.Field{
				Type:        GraphStatsType,
				Description: "Get graph statistics",
				Resolve:     resolver.Stats,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// initTypes initializes all GraphQL types
func initTypes(g *metrograph.Graph) {
	ExtensionStatsType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "ExtensionStats",
		Description: "Module count for a single file extension",
		Fields: graphql.Fields{
			"extension": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "File extension, including the leading dot",
			},
			"count": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Number of modules with this extension",
			},
		},
	})

	GraphStatsType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "GraphStats",
		Description: "Statistics about the dependency graph",
		Fields: graphql.Fields{
			"totalModules": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total number of modules",
			},
			"totalEdges": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total number of dependency edges",
			},
			"entryPointCount": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Number of entry points",
			},
			"modulesByExtension": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(ExtensionStatsType)),
				Description: "Modules grouped by file extension",
			},
		},
	})

	PageInfoType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "PageInfo",
		Description: "Information about pagination",
		Fields: graphql.Fields{
			"hasNextPage": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether there are more results",
			},
			"hasPreviousPage": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether there are previous results",
			},
			"startCursor": &graphql.Field{
				Type:        graphql.String,
				Description: "Cursor of the first edge",
			},
			"endCursor": &graphql.Field{
				Type:        graphql.String,
				Description: "Cursor of the last edge",
			},
		},
	})

	ModuleType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Module",
		Description: "A single module in the dependency graph",
		Fields: graphql.Fields{
			"path": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "File path relative to the project root",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if module, ok := p.Source.(*metrograph.Module); ok {
						return module.Path, nil
					}
					return nil, nil
				},
			},
			"extension": &graphql.Field{
				Type:        graphql.String,
				Description: "File extension, including the leading dot",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if module, ok := p.Source.(*metrograph.Module); ok {
						return moduleExtension(module.Path), nil
					}
					return nil, nil
				},
			},
			"isEntryPoint": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether this module is a declared entry point",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if module, ok := p.Source.(*metrograph.Module); ok {
						if g != nil {
							return g.IsEntryPoint(module.Path), nil
						}
					}
					return false, nil
				},
			},
		},
	})

	ModuleType.AddFieldConfig("dependencies", &graphql.Field{
		Type:        graphql.NewList(graphql.NewNonNull(ModuleType)),
		Description: "Modules this module depends on",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if module, ok := p.Source.(*metrograph.Module); ok {
				if g != nil {
					var deps []*metrograph.Module
					for _, dep := range module.Dependencies() {
						if depMod, ok := g.Get(dep.Path); ok {
							deps = append(deps, depMod)
						}
					}
					return deps, nil
				}
			}
			return []*metrograph.Module{}, nil
		},
	})

	ModuleType.AddFieldConfig("dependents", &graphql.Field{
		Type:        graphql.NewList(graphql.NewNonNull(ModuleType)),
		Description: "Modules that depend on this module",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if module, ok := p.Source.(*metrograph.Module); ok {
				if g != nil {
					var deps []*metrograph.Module
					for _, path := range module.InverseDependencies() {
						if depMod, ok := g.Get(path); ok {
							deps = append(deps, depMod)
						}
					}
					return deps, nil
				}
			}
			return []*metrograph.Module{}, nil
		},
	})

	ModuleEdgeType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "ModuleEdge",
		Description: "Edge type for module connections",
		Fields: graphql.Fields{
			"node": &graphql.Field{
				Type:        graphql.NewNonNull(ModuleType),
				Description: "The module",
			},
			"cursor": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Cursor for this edge",
			},
		},
	})

	ModuleConnectionType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "ModuleConnection",
		Description: "Connection type for module pagination",
		Fields: graphql.Fields{
			"edges": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(ModuleEdgeType)),
				Description: "List of module edges",
			},
			"pageInfo": &graphql.Field{
				Type:        graphql.NewNonNull(PageInfoType),
				Description: "Pagination information",
			},
			"totalCount": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total count of modules",
			},
		},
	})
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
