// Package repl provides an interactive Read-Eval-Print Loop for exploring
// a dependency graph: module lookups, dependency and dependent listings,
// search, and impact analysis, with readline editing, syntax highlighting,
// and tab completion.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/nguyenquangtin/metro/pkg/analysis"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

// Config holds REPL configuration
type Config struct {
	HistoryFile string
	Prompt      string
	NoColor     bool
	PageSize    int  // Number of results per page (default: 20)
	Paginate    bool // Enable interactive pagination (default: true)
}

// Result is a tabular command result: a set of named columns and the
// rows that formatResult renders as a table, JSON, or CSV.
type Result struct {
	Columns []string
	Rows    []map[string]string
}

// REPL is the interactive Read-Eval-Print Loop over a dependency graph
type REPL struct {
	config      *Config
	graph       *graph.Graph
	impact      *analysis.ImpactAnalysis
	rl          *readline.Instance
	format      string
	history     []string
	completer   *Completer
	highlighter *Highlighter
}

// New creates a new REPL instance bound to g
func New(g *graph.Graph, config *Config) (*REPL, error) {
	if config == nil {
		config = &Config{
			HistoryFile: filepath.Join(os.TempDir(), ".metro_history"),
			Prompt:      "metro> ",
			NoColor:     false,
			PageSize:    20,
			Paginate:    true,
		}
	}
	if config.PageSize <= 0 {
		config.PageSize = 20
	}

	rlConfig := &readline.Config{
		Prompt:          config.Prompt,
		HistoryFile:     config.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}

	completer := NewCompleter(g)
	highlighter := NewHighlighter(config.NoColor)

	repl := &REPL{
		config:      config,
		graph:       g,
		impact:      analysis.NewImpactAnalysis(g),
		rl:          rl,
		format:      "table",
		history:     make([]string, 0),
		completer:   completer,
		highlighter: highlighter,
	}

	repl.setupAutocomplete()

	return repl, nil
}

// Run starts the REPL loop
func (r *REPL) Run() error {
	defer r.rl.Close()

	r.printWelcome()

	for {
		r.rl.SetPrompt(r.config.Prompt)
		line, err := r.rl.Readline()

		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					break
				}
				continue
			} else if err == io.EOF {
				break
			}
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if err := r.handleCommand(line); err != nil {
				if err == io.EOF {
					break
				}
				r.printError(err.Error())
			}
			continue
		}

		r.executeLine(line)
	}

	r.printGoodbye()
	return nil
}

// executeLine parses and runs one graph command, then displays its result
func (r *REPL) executeLine(line string) {
	r.history = append(r.history, line)

	start := time.Now()
	result, err := r.evalCommand(line)
	duration := time.Since(start)

	if err != nil {
		r.printError(err.Error())
		return
	}

	if r.config.Paginate && result != nil && len(result.Rows) > r.config.PageSize {
		r.displayPaginatedResults(result, duration)
		return
	}

	if err := r.formatResult(result); err != nil {
		r.printError(fmt.Sprintf("format error: %v", err))
		return
	}

	r.printInfo(fmt.Sprintf("completed in %v", duration))
	if result != nil {
		r.printInfo(fmt.Sprintf("%d row(s)", len(result.Rows)))
	}
}

// evalCommand dispatches a graph command line to its handler
func (r *REPL) evalCommand(line string) (*Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "get", "show":
		return r.cmdGet(args)
	case "deps", "dependencies":
		return r.cmdDeps(args)
	case "dependents":
		return r.cmdDependents(args)
	case "search", "find":
		return r.cmdSearch(args)
	case "impact":
		return r.cmdImpact(args)
	case "entrypoints", "entries":
		return r.cmdEntrypoints(args)
	case "list":
		return r.cmdList(args)
	default:
		return nil, fmt.Errorf("unknown command: %s (type .help for available commands)", fields[0])
	}
}

func (r *REPL) cmdGet(args []string) (*Result, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: get <path>")
	}
	mod, ok := r.graph.Get(args[0])
	if !ok {
		return nil, fmt.Errorf("module not found: %s", args[0])
	}
	return &Result{
		Columns: []string{"path", "isEntryPoint", "dependencyCount", "dependentCount"},
		Rows: []map[string]string{{
			"path":            mod.Path,
			"isEntryPoint":    fmt.Sprintf("%v", r.graph.IsEntryPoint(mod.Path)),
			"dependencyCount": fmt.Sprintf("%d", len(mod.Dependencies())),
			"dependentCount":  fmt.Sprintf("%d", mod.InverseDependencyCount()),
		}},
	}, nil
}

func (r *REPL) cmdDeps(args []string) (*Result, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: deps <path>")
	}
	mod, ok := r.graph.Get(args[0])
	if !ok {
		return nil, fmt.Errorf("module not found: %s", args[0])
	}
	rows := make([]map[string]string, 0, len(mod.Dependencies()))
	for _, dep := range mod.Dependencies() {
		rows = append(rows, map[string]string{"name": dep.Name, "path": dep.Path})
	}
	return &Result{Columns: []string{"name", "path"}, Rows: rows}, nil
}

func (r *REPL) cmdDependents(args []string) (*Result, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: dependents <path>")
	}
	mod, ok := r.graph.Get(args[0])
	if !ok {
		return nil, fmt.Errorf("module not found: %s", args[0])
	}
	rows := make([]map[string]string, 0, mod.InverseDependencyCount())
	for _, path := range mod.InverseDependencies() {
		rows = append(rows, map[string]string{"path": path})
	}
	return &Result{Columns: []string{"path"}, Rows: rows}, nil
}

func (r *REPL) cmdSearch(args []string) (*Result, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: search <term>")
	}
	term := strings.ToLower(args[0])
	var rows []map[string]string
	r.graph.Range(func(mod *graph.Module) bool {
		if strings.Contains(strings.ToLower(mod.Path), term) {
			rows = append(rows, map[string]string{"path": mod.Path})
		}
		return true
	})
	return &Result{Columns: []string{"path"}, Rows: rows}, nil
}

func (r *REPL) cmdImpact(args []string) (*Result, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: impact <path>")
	}
	res, err := r.impact.AnalyzeImpact(args[0])
	if err != nil {
		return nil, err
	}
	return &Result{
		Columns: []string{"targetModule", "directDependents", "directDependencies", "totalImpacted", "riskLevel", "impactPercentage"},
		Rows: []map[string]string{{
			"targetModule":        res.TargetModule,
			"directDependents":    fmt.Sprintf("%d", len(res.DirectDependents)),
			"directDependencies":  fmt.Sprintf("%d", len(res.DirectDependencies)),
			"totalImpacted":       fmt.Sprintf("%d", res.TotalImpactedModules),
			"riskLevel":           string(res.RiskLevel),
			"impactPercentage":    fmt.Sprintf("%.1f", res.ImpactPercentage),
		}},
	}, nil
}

func (r *REPL) cmdEntrypoints(args []string) (*Result, error) {
	rows := make([]map[string]string, 0)
	for _, path := range r.graph.EntryPoints() {
		rows = append(rows, map[string]string{"path": path})
	}
	return &Result{Columns: []string{"path"}, Rows: rows}, nil
}

func (r *REPL) cmdList(args []string) (*Result, error) {
	extension := ""
	if len(args) == 1 {
		extension = args[0]
	}
	var rows []map[string]string
	r.graph.Range(func(mod *graph.Module) bool {
		if extension == "" || strings.HasSuffix(mod.Path, extension) {
			rows = append(rows, map[string]string{
				"path":         mod.Path,
				"isEntryPoint": fmt.Sprintf("%v", r.graph.IsEntryPoint(mod.Path)),
			})
		}
		return true
	})
	return &Result{Columns: []string{"path", "isEntryPoint"}, Rows: rows}, nil
}

// displayPaginatedResults displays a result with interactive pagination
func (r *REPL) displayPaginatedResults(result *Result, duration time.Duration) {
	if result == nil || len(result.Rows) == 0 {
		r.printInfo("no results")
		return
	}

	totalResults := len(result.Rows)
	pageSize := r.config.PageSize
	totalPages := (totalResults + pageSize - 1) / pageSize
	currentPage := 0

	for {
		start := currentPage * pageSize
		end := start + pageSize
		if end > totalResults {
			end = totalResults
		}

		pageResult := &Result{
			Columns: result.Columns,
			Rows:    result.Rows[start:end],
		}

		fmt.Print("\033[H\033[2J")
		if err := r.formatResult(pageResult); err != nil {
			r.printError(fmt.Sprintf("format error: %v", err))
			return
		}

		fmt.Println()
		r.printInfo(fmt.Sprintf("Results %d-%d of %d (Page %d/%d)", start+1, end, totalResults, currentPage+1, totalPages))
		r.printInfo(fmt.Sprintf("completed in %v", duration))

		if totalPages == 1 {
			return
		}

		if r.config.NoColor {
			fmt.Print("\n[n]ext  [p]rev  [f]irst  [l]ast  [g]oto  [q]uit: ")
		} else {
			cyan := color.New(color.FgCyan)
			cyan.Print("\n[n]ext  [p]rev  [f]irst  [l]ast  [g]oto  [q]uit: ")
		}

		line, err := r.rl.Readline()
		if err != nil {
			return
		}

		input := strings.TrimSpace(strings.ToLower(line))
		switch input {
		case "n", "next", "":
			if currentPage < totalPages-1 {
				currentPage++
			}
		case "p", "prev", "previous":
			if currentPage > 0 {
				currentPage--
			}
		case "f", "first":
			currentPage = 0
		case "l", "last":
			currentPage = totalPages - 1
		case "q", "quit", "exit":
			return
		default:
			if strings.HasPrefix(input, "g") {
				pageStr := strings.TrimSpace(strings.TrimPrefix(input, "g"))
				if pageNum, parseErr := parsePageNumber(pageStr); parseErr == nil {
					if pageNum >= 1 && pageNum <= totalPages {
						currentPage = pageNum - 1
					}
				}
			} else if pageNum, parseErr := parsePageNumber(input); parseErr == nil {
				if pageNum >= 1 && pageNum <= totalPages {
					currentPage = pageNum - 1
				}
			}
		}
	}
}

// parsePageNumber attempts to parse a page number from a string
func parsePageNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	var pageNum int
	_, err := fmt.Sscanf(s, "%d", &pageNum)
	return pageNum, err
}

// setupAutocomplete configures tab completion
func (r *REPL) setupAutocomplete() {
	r.rl.Config.AutoComplete = r.completer.GetAutoCompleteFunc()
}

// printWelcome displays the welcome message
func (r *REPL) printWelcome() {
	if r.config.NoColor {
		fmt.Println("metro dependency graph REPL")
		fmt.Println("Type .help for commands or enter a graph command, e.g. get <path>")
		fmt.Printf("Loaded graph with %d modules\n", r.graph.Len())
		fmt.Println()
	} else {
		cyan := color.New(color.FgCyan, color.Bold)
		cyan.Println("metro dependency graph REPL")
		fmt.Println("Type .help for commands or enter a graph command, e.g. get <path>")
		fmt.Printf("Loaded graph with %d modules\n", r.graph.Len())
		fmt.Println()
	}
}

// printGoodbye displays the goodbye message
func (r *REPL) printGoodbye() {
	fmt.Println("\nGoodbye!")
}

// printError displays an error message
func (r *REPL) printError(msg string) {
	if r.config.NoColor {
		fmt.Fprintf(r.rl.Stderr(), "Error: %s\n", msg)
	} else {
		red := color.New(color.FgRed)
		red.Fprintf(r.rl.Stderr(), "Error: %s\n", msg)
	}
}

// printInfo displays an info message
func (r *REPL) printInfo(msg string) {
	if r.config.NoColor {
		fmt.Println(msg)
	} else {
		cyan := color.New(color.FgCyan)
		cyan.Println(msg)
	}
}

// printSuccess displays a success message
func (r *REPL) printSuccess(msg string) {
	if r.config.NoColor {
		fmt.Println(msg)
	} else {
		green := color.New(color.FgGreen)
		green.Println(msg)
	}
}
