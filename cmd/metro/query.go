package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyenquangtin/metro/pkg/analysis"
	"github.com/nguyenquangtin/metro/pkg/cli"
)

var (
	queryEntries []string
	queryImpact  bool
)

var queryCmd = &cobra.Command{
	Use:   "query <module> --entry <entry> [--entry <entry>...]",
	Short: "Build a graph and print one module's dependencies and dependents",
	Long: `Query builds a graph from --entry and reports a single module's
direct dependencies, direct dependents, and (with --impact) its full
transitive impact set.

Examples:
  metro query src/utils/math.js --entry src/index.js
  metro query src/utils/math.js --entry src/index.js --impact`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVar(&queryEntries, "entry", nil, "entry point (repeatable)")
	queryCmd.Flags().BoolVar(&queryImpact, "impact", false, "also report the module's full transitive impact set")
	queryCmd.MarkFlagRequired("entry")
}

func runQuery(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)
	target := args[0]
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	entries := absPaths(queryEntries)

	b, err := newBuildOptions(filepath.Dir(entries[0]), nil)
	if err != nil {
		return err
	}
	defer b.Close()

	g, err := buildGraph(entries, b)
	if err != nil {
		out.Error("%v", err)
		return err
	}

	m, ok := g.Get(target)
	if !ok {
		return fmt.Errorf("module not found in graph: %s", target)
	}

	out.Header(target)
	out.KeyValue("entry point", g.IsEntryPoint(target))
	out.KeyValue("inverse dependency count", m.InverseDependencyCount())

	rows := make([][]string, 0, len(m.Dependencies()))
	for _, d := range m.Dependencies() {
		rows = append(rows, []string{d.Name, d.Path})
	}
	out.Println("\ndependencies:")
	out.Table([]string{"name", "path"}, rows)

	dependentRows := make([][]string, 0, len(m.InverseDependencies()))
	for _, dep := range m.InverseDependencies() {
		dependentRows = append(dependentRows, []string{dep})
	}
	out.Println("\ndependents:")
	out.Table([]string{"path"}, dependentRows)

	if queryImpact {
		result, err := analysis.NewImpactAnalysis(g).AnalyzeImpact(target)
		if err != nil {
			out.Error("%v", err)
			return err
		}
		out.Println("\nimpact (%s risk, %d module(s) downstream):", result.RiskLevel, result.TotalImpactedModules)
		impactRows := make([][]string, 0, len(result.TransitiveDependents))
		for path, depth := range result.TransitiveDependents {
			impactRows = append(impactRows, []string{path, fmt.Sprintf("%d", depth)})
		}
		out.Table([]string{"affected module", "depth"}, impactRows)
	}

	return nil
}
