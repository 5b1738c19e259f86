package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// handleCommand processes REPL dot-commands
func (r *REPL) handleCommand(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case ".help":
		return r.cmdHelp(args)
	case ".format":
		return r.cmdFormat(args)
	case ".load":
		return r.cmdLoad(args)
	case ".save":
		return r.cmdSave(args)
	case ".history":
		return r.cmdHistory(args)
	case ".clear":
		return r.cmdClear(args)
	case ".commands":
		return r.cmdCommands(args)
	case ".examples":
		return r.cmdExamples(args)
	case ".stats":
		return r.cmdStats(args)
	case ".exit", ".quit":
		return io.EOF
	default:
		return fmt.Errorf("unknown command: %s (type .help for available commands)", cmd)
	}
}

// cmdHelp displays help information
func (r *REPL) cmdHelp(args []string) error {
	help := `
metro REPL Commands:
====================

Graph Commands:
  get <path>            Show a single module
  deps <path>           List a module's dependencies
  dependents <path>     List a module's dependents
  search <term>         Find modules whose path contains term
  impact <path>         Run impact analysis on a module
  entrypoints           List graph entry points
  list [extension]      List modules, optionally filtered by extension

REPL Commands:
  .help                 Show this help message
  .format [fmt]         Change output format (table, json, csv)
  .load <file>          Load and execute a command from file
  .save <file>          Save the last command to a file
  .history              Show command history
  .clear                Clear screen
  .commands             Show available graph commands
  .examples             Show example commands
  .stats                Show graph statistics
  .exit                 Exit REPL (or Ctrl+D)

Other Features:
  - Tab completion: Press Tab for command and module path completion
  - History: Use Up/Down arrows to navigate command history

Examples:
  get main.js
  deps main.js
  impact utils/helper.js
  .format json
  .stats
`
	fmt.Println(help)
	return nil
}

// cmdFormat changes the output format
func (r *REPL) cmdFormat(args []string) error {
	if len(args) == 0 {
		r.printInfo(fmt.Sprintf("Current format: %s", r.format))
		r.printInfo("Available formats: table, json, csv")
		return nil
	}

	format := strings.ToLower(args[0])
	switch format {
	case "table", "json", "csv":
		r.format = format
		r.printSuccess(fmt.Sprintf("Output format set to: %s", format))
	default:
		return fmt.Errorf("unknown format: %s (available: table, json, csv)", format)
	}

	return nil
}

// cmdLoad loads and executes a command from a file
func (r *REPL) cmdLoad(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: .load <file>")
	}

	filename := args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	line := strings.TrimSpace(string(data))
	r.printInfo(fmt.Sprintf("Loaded command from %s", filename))
	r.executeLine(line)

	return nil
}

// cmdSave saves the last command to a file
func (r *REPL) cmdSave(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: .save <file>")
	}

	if len(r.history) == 0 {
		return fmt.Errorf("no command in history to save")
	}

	filename := args[0]
	last := r.history[len(r.history)-1]

	if err := os.WriteFile(filename, []byte(last), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.printSuccess(fmt.Sprintf("Saved last command to %s", filename))
	return nil
}

// cmdHistory shows command history
func (r *REPL) cmdHistory(args []string) error {
	if len(r.history) == 0 {
		r.printInfo("No command history")
		return nil
	}

	r.printInfo("Command History:")
	r.printInfo("=================")
	for i, cmd := range r.history {
		fmt.Printf("%d: %s\n", i+1, truncate(cmd, 80))
	}

	return nil
}

// cmdClear clears the screen
func (r *REPL) cmdClear(args []string) error {
	fmt.Print("\033[H\033[2J")
	return nil
}

// cmdCommands shows available graph commands
func (r *REPL) cmdCommands(args []string) error {
	r.printInfo("Available Graph Commands:")
	r.printInfo("==========================")
	for _, cmd := range r.completer.GetCommands() {
		fmt.Printf("  %s\n", cmd)
	}
	return nil
}

// cmdExamples shows example commands
func (r *REPL) cmdExamples(args []string) error {
	examples := `
Example Commands:
==================

1. Show a module:
   get main.js

2. List a module's dependencies:
   deps main.js

3. List a module's dependents:
   dependents utils/helper.js

4. Find modules by substring:
   search helper

5. Run impact analysis:
   impact utils/helper.js

6. List all entry points:
   entrypoints

7. List modules by extension:
   list .js

Try copying and modifying these examples!
`
	fmt.Println(examples)
	return nil
}

// cmdStats shows graph statistics
func (r *REPL) cmdStats(args []string) error {
	r.printInfo("Graph Statistics:")
	r.printInfo("=================")

	extensionCounts := make(map[string]int)
	totalEdges := 0
	r.graph.Range(func(mod *graph.Module) bool {
		if ext := moduleExtension(mod.Path); ext != "" {
			extensionCounts[ext]++
		}
		totalEdges += len(mod.Dependencies())
		return true
	})

	fmt.Printf("Total Modules: %d\n", r.graph.Len())
	fmt.Printf("Total Edges: %d\n", totalEdges)
	fmt.Printf("Entry Points: %d\n", len(r.graph.EntryPoints()))

	fmt.Println("\nModules by Extension:")
	for ext, count := range extensionCounts {
		fmt.Printf("  %-15s: %d\n", ext, count)
	}

	return nil
}

// moduleExtension returns the file extension of path, including the
// leading dot, or "" if path has none.
func moduleExtension(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
