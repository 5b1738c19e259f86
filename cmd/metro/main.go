// Command metro builds, watches, and serves a JavaScript module
// dependency graph.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
