// Package viz renders a *graph.Graph as GraphViz DOT or Mermaid source,
// either as a plain dependency diagram or highlighted around the
// result of an analysis.ImpactResult.
package viz

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nguyenquangtin/metro/pkg/analysis"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

// VizType selects what a generator draws.
type VizType string

const (
	VizDependency VizType = "dependency" // every module and edge in the graph
	VizImpact     VizType = "impact"     // one module's blast radius
)

// VizOptions configures a DOTGenerator or MermaidGenerator.
type VizOptions struct {
	Type       VizType
	Layout     string // dot, neato, fdp, circo, twopi (DOT only)
	ColorBy    string // "extension" or "" for a flat default color
	Filter     *FilterOptions
	ShowLabels bool // include the full path, not just the base name
	Rankdir    string
	Title      string
	Impact     *analysis.ImpactResult
}

// FilterOptions restricts which modules a generator draws.
type FilterOptions struct {
	IncludePaths []string // glob patterns; a module must match at least one
	ExcludePaths []string // glob patterns; a module matching any is dropped
}

// DOTGenerator renders a graph to GraphViz DOT source.
type DOTGenerator struct {
	graph   *graph.Graph
	options VizOptions
	builder strings.Builder
}

// NewDOTGenerator returns a generator for g with defaults filled in.
func NewDOTGenerator(g *graph.Graph, opts VizOptions) *DOTGenerator {
	if opts.Rankdir == "" {
		opts.Rankdir = "LR"
	}
	if opts.Layout == "" {
		opts.Layout = "dot"
	}
	return &DOTGenerator{graph: g, options: opts}
}

// GenerateDOT renders g per opts and returns the DOT source.
func GenerateDOT(g *graph.Graph, opts VizOptions) (string, error) {
	return NewDOTGenerator(g, opts).Generate()
}

// Generate produces the full DOT document.
func (dg *DOTGenerator) Generate() (string, error) {
	dg.builder.Reset()
	dg.writeHeader()
	dg.writeGraphAttributes()

	switch dg.options.Type {
	case VizImpact:
		dg.generateImpactGraph()
	default:
		dg.generateDependencyGraph()
	}

	dg.builder.WriteString("}\n")
	return dg.builder.String(), nil
}

func (dg *DOTGenerator) writeHeader() {
	dg.builder.WriteString("digraph metro {\n")
	if dg.options.Title != "" {
		dg.builder.WriteString(fmt.Sprintf("  labelloc=\"t\";\n  label=\"%s\";\n", escapeLabel(dg.options.Title)))
	}
}

func (dg *DOTGenerator) writeGraphAttributes() {
	dg.builder.WriteString(fmt.Sprintf("  rankdir=%s;\n", dg.options.Rankdir))
	dg.builder.WriteString("  node [shape=box, style=filled, fontname=\"Arial\"];\n")
	dg.builder.WriteString("  edge [fontname=\"Arial\", fontsize=10];\n")
	dg.builder.WriteString("  graph [fontname=\"Arial\"];\n\n")
}

func (dg *DOTGenerator) generateDependencyGraph() {
	modules := dg.filteredModules()

	dg.builder.WriteString("  // Nodes\n")
	for _, m := range modules {
		dg.writeNode(m)
	}
	dg.builder.WriteString("\n  // Dependencies\n")
	for _, m := range modules {
		dg.writeEdges(m, dg.shouldInclude)
	}
}

// generateImpactGraph draws the target module, its direct dependents,
// and its remaining transitive dependents in three shades, falling
// back to a plain dependency graph if no impact result was supplied or
// the target is no longer in the graph.
func (dg *DOTGenerator) generateImpactGraph() {
	impact := dg.options.Impact
	if impact == nil {
		dg.generateDependencyGraph()
		return
	}
	target, ok := dg.graph.Get(impact.TargetModule)
	if !ok {
		dg.generateDependencyGraph()
		return
	}

	dg.builder.WriteString("  // Changed module\n")
	dg.writeNodeWithColor(target, "#FF5722")

	dg.builder.WriteString("\n  // Directly affected\n")
	direct := make(map[string]bool, len(impact.DirectDependents))
	for _, path := range impact.DirectDependents {
		direct[path] = true
		if m, ok := dg.graph.Get(path); ok {
			dg.writeNodeWithColor(m, "#FF9800")
		}
	}

	dg.builder.WriteString("\n  // Transitively affected\n")
	affected := map[string]bool{impact.TargetModule: true}
	for path := range direct {
		affected[path] = true
	}
	for path, depth := range impact.TransitiveDependents {
		affected[path] = true
		if depth <= 1 {
			continue
		}
		if m, ok := dg.graph.Get(path); ok {
			dg.writeNodeWithColor(m, "#FFC107")
		}
	}

	dg.builder.WriteString("\n  // Dependencies\n")
	paths := make([]string, 0, len(affected))
	for path := range affected {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if m, ok := dg.graph.Get(path); ok {
			dg.writeEdges(m, func(p string) bool { return affected[p] })
		}
	}
}

func (dg *DOTGenerator) writeNode(m *graph.Module) {
	dg.writeNodeWithColor(m, dg.nodeColor(m))
}

func (dg *DOTGenerator) writeNodeWithColor(m *graph.Module, color string) {
	dg.builder.WriteString(fmt.Sprintf("  \"%s\" [fillcolor=\"%s\", label=\"%s\"];\n",
		m.Path, color, escapeLabel(dg.nodeLabel(m))))
}

func (dg *DOTGenerator) writeEdges(m *graph.Module, include func(path string) bool) {
	for _, dep := range m.Dependencies() {
		if !include(dep.Path) {
			continue
		}
		dg.builder.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", m.Path, dep.Path))
	}
}

func (dg *DOTGenerator) nodeLabel(m *graph.Module) string {
	if dg.options.ShowLabels {
		return m.Path
	}
	return filepath.Base(m.Path)
}

func (dg *DOTGenerator) nodeColor(m *graph.Module) string {
	if dg.options.ColorBy == "extension" {
		return extensionColor(filepath.Ext(m.Path))
	}
	return "#90CAF9"
}

func extensionColor(ext string) string {
	switch strings.ToLower(ext) {
	case ".ts", ".tsx":
		return "#3178C6"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "#F7DF1E"
	case ".json":
		return "#8BC34A"
	default:
		return "#90CAF9"
	}
}

func (dg *DOTGenerator) filteredModules() []*graph.Module {
	filtered := make([]*graph.Module, 0, dg.graph.Len())
	dg.graph.Range(func(m *graph.Module) bool {
		if dg.shouldInclude(m.Path) {
			filtered = append(filtered, m)
		}
		return true
	})
	return filtered
}

func (dg *DOTGenerator) shouldInclude(path string) bool {
	filter := dg.options.Filter
	if filter == nil {
		return true
	}
	if len(filter.IncludePaths) > 0 && !matchesAny(filter.IncludePaths, path) {
		return false
	}
	if matchesAny(filter.ExcludePaths, path) {
		return false
	}
	return true
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
