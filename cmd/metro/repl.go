package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyenquangtin/metro/pkg/cli"
	"github.com/nguyenquangtin/metro/pkg/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl <entry> [entry...]",
	Short: "Build a graph and open an interactive query session",
	Long: `Repl builds a graph from the given entry points and drops into an
interactive Read-Eval-Print Loop for ad hoc lookups, dependency and
dependent listings, search, and impact queries.

Examples:
  metro repl src/index.js`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
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

	session, err := repl.New(g, &repl.Config{NoColor: noColor})
	if err != nil {
		return err
	}
	return session.Run()
}
