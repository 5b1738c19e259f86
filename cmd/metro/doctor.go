package main

import (
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nguyenquangtin/metro/pkg/cli"
	"github.com/nguyenquangtin/metro/pkg/doctor"
)

var doctorEntries []string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run environment and graph health checks",
	Long: `Doctor checks the Go toolchain, optional GraphViz installation,
persistent cache integrity, config file presence, disk space, and file
permissions. Pass --entry one or more times to also build a graph and
run its invariant checks (reachability, inverse-edge consistency,
entry point presence).

Examples:
  metro doctor
  metro doctor --entry src/index.js`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringArrayVar(&doctorEntries, "entry", nil, "entry point to build and check (repeatable)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)

	rootPath, err := os.Getwd()
	if err != nil {
		rootPath = "."
	}
	rootPath, _ = filepath.Abs(rootPath)

	out.Header("Environment")
	checks := doctor.RunAllChecks(rootPath, version)

	if len(doctorEntries) > 0 {
		entries := absPaths(doctorEntries)
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
		out.Header("Graph")
		checks = append(checks, doctor.RunGraphChecks(g)...)
	}

	issues, warnings := 0, 0
	for _, check := range checks {
		switch check.Status {
		case doctor.StatusOK:
			out.Success("%s%s", check.Name, suffixIfVerbose(out, check.Message))
		case doctor.StatusWarning:
			out.Warning("%s: %s", check.Name, check.Message)
			if check.Fix != "" {
				out.Println("  fix: %s", check.Fix)
			}
			warnings++
		case doctor.StatusError:
			out.Error("%s: %s", check.Name, check.Message)
			if check.Fix != "" {
				out.Println("  fix: %s", check.Fix)
			}
			issues++
		}
	}

	if out.IsVerbose() {
		out.Println("")
		out.Println("%s", formatCheckTable(checks))
	}

	if issues == 0 && warnings == 0 {
		out.Success("all checks passed")
		return nil
	}
	if issues > 0 {
		os.Exit(1)
	}
	return nil
}

// formatCheckTable renders the full set of checks as a rounded table,
// one row per check, independent of the per-line status output above.
func formatCheckTable(checks []doctor.HealthCheck) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"check", "status", "message"})
	for _, check := range checks {
		t.AppendRow(table.Row{check.Name, check.Status, check.Message})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	return t.Render()
}

func suffixIfVerbose(out *cli.OutputFormatter, msg string) string {
	if !out.IsVerbose() || msg == "" {
		return ""
	}
	return " - " + msg
}
