package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyenquangtin/metro/pkg/cli"
	"github.com/nguyenquangtin/metro/pkg/graph"
	"github.com/nguyenquangtin/metro/pkg/viz"
	"github.com/nguyenquangtin/metro/pkg/watch"
)

var watchOutput string

var watchCmd = &cobra.Command{
	Use:   "watch <entry> [entry...]",
	Short: "Build a graph, then keep it up to date as files change",
	Long: `Watch builds an initial graph from the given entry points, then
watches the entry points' directory tree and re-traverses only the
modules affected by each debounced batch of file changes.

Examples:
  metro watch src/index.js
  metro watch src/index.js --viz-output graph.svg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchOutput, "viz-output", "", "regenerate a visualization at this path after every change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)
	entries := absPaths(args)
	root := filepath.Dir(entries[0])

	b, err := newBuildOptions(root, nil)
	if err != nil {
		return err
	}
	defer b.Close()

	out.Info("building initial graph...")
	g, err := buildGraph(entries, b)
	if err != nil {
		out.Error("%v", err)
		return err
	}
	out.Success("graph built: %d modules", g.Len())

	renderViz := func() {
		if watchOutput == "" {
			return
		}
		if err := viz.RenderToFile(g, viz.RenderOptions{Output: watchOutput}); err != nil {
			out.Warning("visualization failed: %v", err)
		}
	}
	renderViz()

	opts := watch.DefaultOptions()
	opts.Root = root
	opts.Debounce = cfg.Watch.Debounce
	opts.IgnorePatterns = cfg.Watch.IgnorePatterns
	opts.Extensions = cfg.Resolve.Extensions

	w, err := watch.New(opts, func(changed []string) {
		added, deleted, err := graph.TraverseDependencies(changed, g, b.opts)
		if err != nil {
			out.Error("re-traverse failed: %v", err)
			return
		}
		out.Info("%d file(s) changed: +%d modules, -%d modules", len(changed), len(added), len(deleted))
		renderViz()
	})
	if err != nil {
		return err
	}

	w.Start()
	defer w.Stop()

	out.Info("watching %s (ctrl-c to stop)", root)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	out.Success("watch stopped")
	return nil
}
