package analysis

import (
	"fmt"
	"sort"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// RiskLevel summarizes how disruptive a change to a module is expected
// to be, based on how much of the graph sits downstream of it.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// ImpactResult is the outcome of analyzing what would be affected by
// changing or removing one or more modules.
type ImpactResult struct {
	TargetModule string

	DirectDependents   []string
	DirectDependencies []string

	TransitiveDependents map[string]int
	TotalImpactedModules int

	RiskLevel       RiskLevel
	RiskFactors     []string
	Recommendations []string
	CriticalPaths   [][]string
	BreakingChanges bool

	MaxImpactDepth   int
	ImpactPercentage float64
}

// ImpactAnalysis computes ImpactResults against a fixed graph snapshot.
type ImpactAnalysis struct {
	graph *graph.Graph
}

// NewImpactAnalysis returns an analysis engine bound to g.
func NewImpactAnalysis(g *graph.Graph) *ImpactAnalysis {
	return &ImpactAnalysis{graph: g}
}

// AnalyzeImpact computes the full impact of changing modulePath: its
// direct edges in both directions, every module transitively
// downstream, and a risk assessment with recommendations.
func (ia *ImpactAnalysis) AnalyzeImpact(modulePath string) (*ImpactResult, error) {
	module, ok := ia.graph.Get(modulePath)
	if !ok {
		return nil, fmt.Errorf("analysis: module not found: %s", modulePath)
	}

	result := &ImpactResult{
		TargetModule:    modulePath,
		RiskFactors:     make([]string, 0),
		Recommendations: make([]string, 0),
		CriticalPaths:   make([][]string, 0),
	}

	result.DirectDependents = sortedCopy(module.InverseDependencies())
	result.DirectDependencies = directDependencyPaths(module)

	result.TransitiveDependents = TransitiveDependents(ia.graph, modulePath)
	result.TotalImpactedModules = len(result.TransitiveDependents)

	ia.findCriticalPaths(result)
	result.MaxImpactDepth = maxDepth(result.TransitiveDependents)

	if total := ia.graph.Len(); total > 0 {
		result.ImpactPercentage = float64(result.TotalImpactedModules) / float64(total) * 100
	}

	ia.assessRisk(result)
	ia.generateRecommendations(result)

	return result, nil
}

// AnalyzeMultipleModules computes the combined impact of changing every
// module in modulePaths together, merging transitive sets by their
// shortest observed distance.
func (ia *ImpactAnalysis) AnalyzeMultipleModules(modulePaths []string) (*ImpactResult, error) {
	if len(modulePaths) == 0 {
		return nil, fmt.Errorf("analysis: no modules specified")
	}
	for _, path := range modulePaths {
		if !ia.graph.Has(path) {
			return nil, fmt.Errorf("analysis: module not found: %s", path)
		}
	}

	result := &ImpactResult{
		TargetModule:         fmt.Sprintf("%d modules", len(modulePaths)),
		TransitiveDependents: make(map[string]int),
		RiskFactors:          make([]string, 0),
		Recommendations:      make([]string, 0),
		CriticalPaths:        make([][]string, 0),
	}

	dependents := make(map[string]bool)
	dependencies := make(map[string]bool)

	for _, modulePath := range modulePaths {
		module, _ := ia.graph.Get(modulePath)

		for _, dep := range module.InverseDependencies() {
			dependents[dep] = true
		}
		for _, dep := range directDependencyPaths(module) {
			dependencies[dep] = true
		}

		for path, depth := range TransitiveDependents(ia.graph, modulePath) {
			if existing, ok := result.TransitiveDependents[path]; !ok || depth < existing {
				result.TransitiveDependents[path] = depth
			}
		}
	}

	result.DirectDependents = sortedCopy(keys(dependents))
	result.DirectDependencies = sortedCopy(keys(dependencies))
	result.TotalImpactedModules = len(result.TransitiveDependents)

	result.MaxImpactDepth = maxDepth(result.TransitiveDependents)
	if total := ia.graph.Len(); total > 0 {
		result.ImpactPercentage = float64(result.TotalImpactedModules) / float64(total) * 100
	}

	ia.assessRisk(result)
	ia.generateRecommendations(result)

	return result, nil
}

// CompareImpacts runs AnalyzeImpact independently for each path in
// modulePaths and returns them keyed by path.
func (ia *ImpactAnalysis) CompareImpacts(modulePaths []string) (map[string]*ImpactResult, error) {
	results := make(map[string]*ImpactResult, len(modulePaths))
	for _, path := range modulePaths {
		result, err := ia.AnalyzeImpact(path)
		if err != nil {
			return nil, fmt.Errorf("analysis: analyze %s: %w", path, err)
		}
		results[path] = result
	}
	return results, nil
}

// findCriticalPaths picks the transitively-impacted modules with at
// least three direct dependents of their own and records the shortest
// route from each back to the target.
func (ia *ImpactAnalysis) findCriticalPaths(result *ImpactResult) {
	critical := make([]string, 0)
	for modulePath := range result.TransitiveDependents {
		m, ok := ia.graph.Get(modulePath)
		if ok && m.InverseDependencyCount() >= 3 {
			critical = append(critical, modulePath)
		}
	}
	sort.Strings(critical)
	if len(critical) > 5 {
		critical = critical[:5]
	}

	for _, c := range critical {
		if path := ShortestPath(ia.graph, c, result.TargetModule); len(path) > 1 {
			result.CriticalPaths = append(result.CriticalPaths, path)
		}
	}
}

// assessRisk scores the blast radius of a change and buckets it into a
// RiskLevel. The thresholds are heuristic, not derived from a formula.
func (ia *ImpactAnalysis) assessRisk(result *ImpactResult) {
	score := 0

	switch direct := len(result.DirectDependents); {
	case direct > 10:
		score += 3
		result.RiskFactors = append(result.RiskFactors, fmt.Sprintf("high number of direct dependents (%d)", direct))
	case direct > 5:
		score += 2
		result.RiskFactors = append(result.RiskFactors, fmt.Sprintf("moderate number of direct dependents (%d)", direct))
	case direct > 0:
		score++
	}

	switch total := result.TotalImpactedModules; {
	case total > 20:
		score += 3
		result.RiskFactors = append(result.RiskFactors, fmt.Sprintf("large transitive impact (%d modules)", total))
	case total > 10:
		score += 2
		result.RiskFactors = append(result.RiskFactors, fmt.Sprintf("moderate transitive impact (%d modules)", total))
	case total > 0:
		score++
	}

	switch pct := result.ImpactPercentage; {
	case pct > 30:
		score += 2
		result.RiskFactors = append(result.RiskFactors, fmt.Sprintf("high impact percentage (%.1f%%)", pct))
	case pct > 15:
		score++
	}

	if result.MaxImpactDepth > 4 {
		score++
		result.RiskFactors = append(result.RiskFactors, fmt.Sprintf("deep dependency chain (depth %d)", result.MaxImpactDepth))
	}

	switch {
	case score >= 7:
		result.RiskLevel = RiskLevelCritical
		result.BreakingChanges = true
	case score >= 5:
		result.RiskLevel = RiskLevelHigh
		result.BreakingChanges = true
	case score >= 3:
		result.RiskLevel = RiskLevelMedium
	default:
		result.RiskLevel = RiskLevelLow
	}

	if len(result.RiskFactors) == 0 {
		result.RiskFactors = append(result.RiskFactors, "minimal impact on the bundle graph")
	}
}

func (ia *ImpactAnalysis) generateRecommendations(result *ImpactResult) {
	switch result.RiskLevel {
	case RiskLevelCritical:
		result.Recommendations = append(result.Recommendations,
			"coordinate with every owning team before changing this module",
			"stage the rollout and keep a rollback path ready",
		)
	case RiskLevelHigh:
		result.Recommendations = append(result.Recommendations,
			"notify teams owning the direct dependents",
			"add or extend tests around the impacted modules",
		)
	case RiskLevelMedium:
		result.Recommendations = append(result.Recommendations,
			"review the impacted modules before merging",
		)
	case RiskLevelLow:
		result.Recommendations = append(result.Recommendations,
			"standard review is sufficient",
		)
	}

	if len(result.CriticalPaths) > 0 {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("review %d critical dependency path(s) identified", len(result.CriticalPaths)),
		)
	}
}

func directDependencyPaths(m *graph.Module) []string {
	deps := m.Dependencies()
	paths := make([]string, 0, len(deps))
	for _, d := range deps {
		paths = append(paths, d.Path)
	}
	sort.Strings(paths)
	return paths
}

func maxDepth(m map[string]int) int {
	max := 0
	for _, depth := range m {
		if depth > max {
			max = depth
		}
	}
	return max
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
