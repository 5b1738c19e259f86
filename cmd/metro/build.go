package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyenquangtin/metro/pkg/cli"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

var (
	buildNoCache bool
	buildReorder bool
)

var buildCmd = &cobra.Command{
	Use:   "build <entry> [entry...]",
	Short: "Build a dependency graph from one or more entry points",
	Long: `Build resolves and transforms every module reachable from the
given entry points and prints a summary of the resulting graph.

Examples:
  metro build src/index.js
  metro build src/index.js src/worker.js --reorder
  metro build src/index.js --no-cache`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "disable the persistent transform cache")
	buildCmd.Flags().BoolVar(&buildReorder, "reorder", false, "reorder the graph into deterministic depth-first order after building")
}

func runBuild(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)
	entries := absPaths(args)

	cacheDir := ""
	if !buildNoCache {
		cacheDir = filepath.Dir(entries[0])
	}

	bar := out.ProgressBar(len(entries), "building")
	b, err := newBuildOptions(cacheDir, func(finished, discovered int) {
		bar.ChangeMax(discovered)
		bar.Set(finished)
	})
	if err != nil {
		return err
	}
	defer b.Close()

	g, err := buildGraph(entries, b)
	if err != nil {
		out.Error("%v", err)
		return err
	}
	bar.Finish()

	if buildReorder {
		graph.ReorderGraph(g)
	}

	out.Success("built graph: %d modules from %d entry point(s)", g.Len(), len(g.EntryPoints()))
	if out.IsVerbose() {
		for _, path := range g.Paths() {
			out.Println("  %s", path)
		}
	}
	return nil
}

// absPaths resolves each of args to an absolute path, leaving an arg
// unchanged if it cannot be resolved (cobra args are typically already
// valid relative paths from the working directory).
func absPaths(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if abs, err := filepath.Abs(a); err == nil {
			out[i] = abs
		} else {
			out[i] = a
		}
	}
	return out
}
