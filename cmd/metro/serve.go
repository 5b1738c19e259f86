package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyenquangtin/metro/pkg/cli"
	"github.com/nguyenquangtin/metro/pkg/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve <entry> [entry...]",
	Short: "Build a graph and serve it over REST and GraphQL",
	Long: `Serve builds a graph from the given entry points and exposes it
over a REST API under /api/v1 and a GraphQL endpoint at /graphql,
until interrupted.

Examples:
  metro serve src/index.js
  metro serve src/index.js --port 9000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (defaults to config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (defaults to config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)
	entries := absPaths(args)

	b, err := newBuildOptions(filepath.Dir(entries[0]), nil)
	if err != nil {
		return err
	}
	defer b.Close()

	out.Info("building graph...")
	g, err := buildGraph(entries, b)
	if err != nil {
		out.Error("%v", err)
		return err
	}
	out.Success("graph built: %d modules", g.Len())

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Server.Host
	srvCfg.Port = cfg.Server.Port
	if serveHost != "" {
		srvCfg.Host = serveHost
	}
	if servePort != 0 {
		srvCfg.Port = servePort
	}

	srv := server.NewServer(srvCfg, g)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		out.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			out.Error("shutdown: %v", err)
		}
	}()

	out.Success("serving on %s:%d", srvCfg.Host, srvCfg.Port)
	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
