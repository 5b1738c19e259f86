package main

import (
	"encoding/json"
	"fmt"

	"github.com/nguyenquangtin/metro/pkg/cache"
	"github.com/nguyenquangtin/metro/pkg/config"
	"github.com/nguyenquangtin/metro/pkg/graph"
	"github.com/nguyenquangtin/metro/pkg/logging"
	"github.com/nguyenquangtin/metro/pkg/resolve"
	"github.com/nguyenquangtin/metro/pkg/transform"
)

// cachedTransformResult is what a cache hit unmarshals into: the
// dependency names a prior Transform call found, plus its Output
// carried as a raw JSON value rather than transform.Output, since the
// cache only needs to round-trip what graph.Module stores opaquely,
// not reconstruct the exact struct the first run produced.
type cachedTransformResult struct {
	Dependencies []string        `json:"Dependencies"`
	Output       json.RawMessage `json:"Output"`
}

// newTransform adapts transform.Transform into a graph.TransformFunc
// that consults mgr first, satisfying graph.Options.Transform. A nil
// mgr disables caching and calls transform.Transform directly on
// every file.
func newTransform(mgr *cache.Manager) graph.TransformFunc {
	return func(path string) (graph.TransformResult, error) {
		if mgr != nil {
			if data, ok := mgr.Get(path); ok {
				var cached cachedTransformResult
				if err := json.Unmarshal(data, &cached); err == nil {
					return graph.TransformResult{Dependencies: cached.Dependencies, Output: cached.Output}, nil
				}
			}
		}

		result, err := transform.Transform(path)
		if err != nil {
			return graph.TransformResult{}, err
		}

		out := graph.TransformResult{Dependencies: result.Dependencies, Output: result.Output}
		if mgr != nil {
			if err := mgr.Set(path, out); err != nil {
				logging.Component("build").Warn().Err(err).Str("path", path).Msg("failed to write transform cache entry")
			}
		}
		return out, nil
	}
}

// newResolve adapts pkg/resolve into a graph.ResolveFunc per cfg.
func newResolve(cfg *config.Config) graph.ResolveFunc {
	r := resolve.New(resolve.Options{
		Extensions: cfg.Resolve.Extensions,
		Aliases:    cfg.Resolve.Aliases,
	})
	return r.Resolve
}

// buildOptions bundles the graph.Options every command that builds or
// rebuilds a graph shares, along with the cache manager backing it so
// callers can Close it when done.
type buildOptions struct {
	opts graph.Options
	mgr  *cache.Manager
}

// newBuildOptions wires a resolver, a cache-backed transformer, and an
// OnProgress callback into a graph.Options. cacheDir == "" disables
// the persistent cache.
func newBuildOptions(cacheDir string, onProgress graph.ProgressFunc) (*buildOptions, error) {
	var mgr *cache.Manager
	if cacheDir != "" {
		m, err := cache.NewManager(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("metro: open cache: %w", err)
		}
		mgr = m
	}

	return &buildOptions{
		opts: graph.Options{
			Resolve:    newResolve(cfg),
			Transform:  newTransform(mgr),
			OnProgress: onProgress,
		},
		mgr: mgr,
	}, nil
}

func (b *buildOptions) Close() error {
	if b.mgr != nil {
		return b.mgr.Close()
	}
	return nil
}

// buildGraph runs InitialTraverseDependencies from entryPoints using
// b's collaborators, returning the built graph.
func buildGraph(entryPoints []string, b *buildOptions) (*graph.Graph, error) {
	g := graph.NewGraph(entryPoints)
	if _, _, err := graph.InitialTraverseDependencies(g, b.opts); err != nil {
		return nil, fmt.Errorf("metro: build graph: %w", err)
	}
	return g, nil
}
