package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyenquangtin/metro/pkg/cli"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder <entry> [entry...]",
	Short: "Build a graph and print it in deterministic depth-first order",
	Long: `Reorder builds a graph, then runs the deterministic depth-first
reordering pass and prints the resulting module order, pruning any
module no longer reachable from an entry point.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReorder,
}

func runReorder(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)
	entries := absPaths(args)

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

	before := g.Len()
	graph.ReorderGraph(g)
	after := g.Len()

	if after < before {
		out.Warning("pruned %d module(s) unreachable from any entry point", before-after)
	}

	out.Header("Module order")
	for i, path := range g.Paths() {
		out.Println("%3d  %s", i+1, path)
	}
	return nil
}
