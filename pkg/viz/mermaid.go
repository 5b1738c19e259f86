package viz

import (
	"fmt"
	"strings"

	"github.com/nguyenquangtin/metro/pkg/analysis"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

// MermaidType selects the Mermaid diagram syntax a generator emits.
type MermaidType string

const (
	MermaidFlowchart MermaidType = "flowchart"
	MermaidGraph     MermaidType = "graph"
	MermaidClass     MermaidType = "class"
)

// MermaidOptions configures Mermaid diagram generation. ColorBy accepts
// "extension" or "" for no styling, matching VizOptions.ColorBy.
type MermaidOptions struct {
	Type      MermaidType
	Direction string // TD, LR, BT, RL
	ColorBy   string
	Filter    *FilterOptions
	Title     string
}

// MermaidGenerator renders a graph to Mermaid diagram source.
type MermaidGenerator struct {
	graph   *graph.Graph
	options MermaidOptions
	builder strings.Builder
	nodeIDs map[string]string
}

// GenerateMermaid renders g per opts and returns the Mermaid source.
func GenerateMermaid(g *graph.Graph, opts MermaidOptions) (string, error) {
	gen := &MermaidGenerator{
		graph:   g,
		options: opts,
		nodeIDs: make(map[string]string),
	}
	return gen.generate()
}

// GenerateMermaidMarkdown wraps GenerateMermaid's output in a Markdown
// fenced code block, with an optional title heading.
func GenerateMermaidMarkdown(g *graph.Graph, opts MermaidOptions) (string, error) {
	mermaid, err := GenerateMermaid(g, opts)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if opts.Title != "" {
		sb.WriteString("## ")
		sb.WriteString(opts.Title)
		sb.WriteString("\n\n")
	}
	sb.WriteString("```mermaid\n")
	sb.WriteString(mermaid)
	sb.WriteString("\n```\n")

	return sb.String(), nil
}

func (mg *MermaidGenerator) generate() (string, error) {
	if mg.options.Direction == "" {
		mg.options.Direction = "TD"
	}
	if mg.options.Type == "" {
		mg.options.Type = MermaidFlowchart
	}

	switch mg.options.Type {
	case MermaidFlowchart:
		return mg.generateFlowchart()
	case MermaidGraph:
		return mg.generateGraph()
	case MermaidClass:
		return mg.generateClassDiagram()
	default:
		return "", fmt.Errorf("unsupported Mermaid type: %s", mg.options.Type)
	}
}

func (mg *MermaidGenerator) generateFlowchart() (string, error) {
	mg.builder.WriteString(fmt.Sprintf("flowchart %s\n", mg.options.Direction))

	modules := mg.getFilteredModules()
	if len(modules) == 0 {
		return "", fmt.Errorf("no modules to display")
	}
	for _, module := range modules {
		mg.nodeIDs[module.Path] = mg.sanitizeNodeID(module.Path)
	}

	mg.generateNodesAndEdges(modules)
	mg.addStyling(modules)

	return mg.builder.String(), nil
}

func (mg *MermaidGenerator) generateGraph() (string, error) {
	mg.builder.WriteString(fmt.Sprintf("graph %s\n", mg.options.Direction))

	modules := mg.getFilteredModules()
	if len(modules) == 0 {
		return "", fmt.Errorf("no modules to display")
	}
	for _, module := range modules {
		mg.nodeIDs[module.Path] = mg.sanitizeNodeID(module.Path)
	}

	mg.generateNodesAndEdges(modules)
	mg.addStyling(modules)

	return mg.builder.String(), nil
}

// generateClassDiagram renders each module as a UML class whose
// dependency edges become "depends on" associations.
func (mg *MermaidGenerator) generateClassDiagram() (string, error) {
	mg.builder.WriteString("classDiagram\n")

	modules := mg.getFilteredModules()
	if len(modules) == 0 {
		return "", fmt.Errorf("no modules to display")
	}

	for _, module := range modules {
		className := mg.sanitizeClassName(module.Path)
		mg.builder.WriteString(fmt.Sprintf("    class %s {\n", className))
		mg.builder.WriteString(fmt.Sprintf("        +path: %s\n", module.Path))
		mg.builder.WriteString("    }\n")
	}

	mg.builder.WriteString("\n")
	for _, module := range modules {
		className := mg.sanitizeClassName(module.Path)
		for _, dep := range module.Dependencies() {
			if depModule, ok := mg.graph.Get(dep.Path); ok && mg.shouldIncludeModule(depModule) {
				depClassName := mg.sanitizeClassName(depModule.Path)
				mg.builder.WriteString(fmt.Sprintf("    %s --> %s : depends on\n", className, depClassName))
			}
		}
	}

	return mg.builder.String(), nil
}

func (mg *MermaidGenerator) generateNodesAndEdges(modules []*graph.Module) {
	for _, module := range modules {
		nodeID := mg.nodeIDs[module.Path]
		label := mg.getNodeLabel(module)
		mg.builder.WriteString(fmt.Sprintf("    %s[%s]\n", nodeID, escapeMermaidLabel(label)))
	}

	mg.builder.WriteString("\n")
	for _, module := range modules {
		fromID := mg.nodeIDs[module.Path]
		for _, dep := range module.Dependencies() {
			if toID, exists := mg.nodeIDs[dep.Path]; exists {
				mg.builder.WriteString(fmt.Sprintf("    %s --> %s\n", fromID, toID))
			}
		}
	}
}

func (mg *MermaidGenerator) addStyling(modules []*graph.Module) {
	if mg.options.ColorBy != "extension" {
		return
	}

	mg.builder.WriteString("\n")

	extColors := make(map[string]string)
	for _, module := range modules {
		ext := moduleExt(module.Path)
		if _, ok := extColors[ext]; !ok {
			extColors[ext] = extensionColor(ext)
		}
	}

	styleNum := 0
	extStyles := make(map[string]int, len(extColors))
	for ext, color := range extColors {
		mg.builder.WriteString(fmt.Sprintf("    classDef style%d fill:%s,stroke:#333,stroke-width:2px\n", styleNum, color))
		extStyles[ext] = styleNum
		styleNum++
	}

	mg.builder.WriteString("\n")
	for _, module := range modules {
		num := extStyles[moduleExt(module.Path)]
		nodeID := mg.nodeIDs[module.Path]
		mg.builder.WriteString(fmt.Sprintf("    class %s style%d\n", nodeID, num))
	}
}

func (mg *MermaidGenerator) getFilteredModules() []*graph.Module {
	modules := make([]*graph.Module, 0, mg.graph.Len())
	mg.graph.Range(func(m *graph.Module) bool {
		if mg.shouldIncludeModule(m) {
			modules = append(modules, m)
		}
		return true
	})
	return modules
}

func (mg *MermaidGenerator) shouldIncludeModule(module *graph.Module) bool {
	filter := mg.options.Filter
	if filter == nil {
		return true
	}
	if len(filter.IncludePaths) > 0 && !matchesAny(filter.IncludePaths, module.Path) {
		return false
	}
	if matchesAny(filter.ExcludePaths, module.Path) {
		return false
	}
	return true
}

func (mg *MermaidGenerator) getNodeLabel(module *graph.Module) string {
	return module.Path
}

func (mg *MermaidGenerator) sanitizeNodeID(path string) string {
	id := strings.ReplaceAll(path, "/", "_")
	id = strings.ReplaceAll(id, ".", "_")
	id = strings.ReplaceAll(id, "-", "_")
	return id
}

func (mg *MermaidGenerator) sanitizeClassName(path string) string {
	return mg.sanitizeNodeID(path)
}

func moduleExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func escapeMermaidLabel(label string) string {
	label = strings.ReplaceAll(label, "\"", "&quot;")
	label = strings.ReplaceAll(label, "[", "(")
	label = strings.ReplaceAll(label, "]", ")")
	return "\"" + label + "\""
}

// GenerateMermaidForImpact renders the target module, its direct
// dependents, and its remaining transitive dependents with distinct
// Mermaid classDefs, mirroring GenerateDOT's impact mode.
func GenerateMermaidForImpact(g *graph.Graph, impact *analysis.ImpactResult, opts MermaidOptions) (string, error) {
	opts.Type = MermaidFlowchart
	if opts.Direction == "" {
		opts.Direction = "TD"
	}

	gen := &MermaidGenerator{
		graph:   g,
		options: opts,
		nodeIDs: make(map[string]string),
	}
	gen.builder.WriteString(fmt.Sprintf("flowchart %s\n", opts.Direction))

	affected := map[string]bool{impact.TargetModule: true}
	for _, dep := range impact.DirectDependents {
		affected[dep] = true
	}
	for path := range impact.TransitiveDependents {
		affected[path] = true
	}

	for path := range affected {
		if _, ok := g.Get(path); ok {
			gen.nodeIDs[path] = gen.sanitizeNodeID(path)
		}
	}

	for path := range affected {
		m, ok := g.Get(path)
		if !ok {
			continue
		}
		nodeID := gen.nodeIDs[path]
		gen.builder.WriteString(fmt.Sprintf("    %s[%s]\n", nodeID, escapeMermaidLabel(gen.getNodeLabel(m))))
	}

	gen.builder.WriteString("\n")
	for path := range affected {
		m, ok := g.Get(path)
		if !ok {
			continue
		}
		fromID := gen.nodeIDs[path]
		for _, dep := range m.Dependencies() {
			if toID, exists := gen.nodeIDs[dep.Path]; exists {
				gen.builder.WriteString(fmt.Sprintf("    %s --> %s\n", fromID, toID))
			}
		}
	}

	gen.builder.WriteString("\n")
	gen.builder.WriteString("    classDef changed fill:#FF5722,stroke:#333,stroke-width:3px\n")
	gen.builder.WriteString("    classDef direct fill:#FF9800,stroke:#333,stroke-width:2px\n")
	gen.builder.WriteString("    classDef transitive fill:#FFC107,stroke:#333,stroke-width:1px\n")

	gen.builder.WriteString("\n")
	if changedID, ok := gen.nodeIDs[impact.TargetModule]; ok {
		gen.builder.WriteString(fmt.Sprintf("    class %s changed\n", changedID))
	}
	for _, dep := range impact.DirectDependents {
		if nodeID, exists := gen.nodeIDs[dep]; exists {
			gen.builder.WriteString(fmt.Sprintf("    class %s direct\n", nodeID))
		}
	}
	for path := range impact.TransitiveDependents {
		if path != impact.TargetModule && !contains(impact.DirectDependents, path) {
			if nodeID, exists := gen.nodeIDs[path]; exists {
				gen.builder.WriteString(fmt.Sprintf("    class %s transitive\n", nodeID))
			}
		}
	}

	return gen.builder.String(), nil
}

func contains(slice []string, value string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
