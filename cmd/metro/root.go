package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyenquangtin/metro/pkg/config"
	"github.com/nguyenquangtin/metro/pkg/logging"
)

const (
	// version is the metro binary's reported version.
	version = "0.1.0"
	// name is the application name shown in version/doctor output.
	name = "metro"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	quiet   bool

	// cfg is populated by initConfig once cobra has parsed the
	// persistent flags every subcommand's RunE reads.
	cfg *config.Config
)

// rootCmd is the base command when metro is called without any subcommand.
var rootCmd = &cobra.Command{
	Use:   "metro",
	Short: "Incremental dependency graph for a JavaScript bundler",
	Long: `metro builds and maintains an incremental module dependency
graph for a JavaScript/TypeScript project tree: it resolves and
transforms every module reachable from a set of entry points, keeps
the graph up to date as files change, and exposes it for querying,
visualization, and diagnostics.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default metro.yaml or .metro/metro.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output (for scripting)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(vizCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig loads metro.yaml (via viper's search path, or --config
// if given) and parses it into cfg with yaml.v3, then points the
// global zerolog logger at the level --verbose/--quiet imply.
func initConfig() {
	config.Init(cfgFile)

	path := config.ConfigFileUsed()
	if path == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Printf("metro: %v, using defaults\n", err)
			loaded = config.Default()
		}
		cfg = loaded
	}

	logCfg := logging.DefaultConfig()
	switch {
	case verbose:
		logCfg.Level = "debug"
	case quiet:
		logCfg.Level = "error"
	}
	if err := logging.Init(logCfg); err != nil {
		fmt.Printf("metro: logging init: %v\n", err)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s\n", name, version)
	},
}
