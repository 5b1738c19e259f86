package repl

import (
	"strings"
	"unicode"

	"github.com/chzyer/readline"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// Completer provides tab-completion for REPL commands and module paths
type Completer struct {
	graph    *graph.Graph
	commands []readline.PrefixCompleterInterface
	verbs    []string
	modules  []string
}

// NewCompleter creates a new completer bound to g
func NewCompleter(g *graph.Graph) *Completer {
	c := &Completer{
		graph: g,
		verbs: getGraphVerbs(),
	}

	c.buildModuleList()
	c.buildCommandList()

	return c
}

// buildCommandList creates the command autocomplete tree
func (c *Completer) buildCommandList() {
	c.commands = []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".format",
			readline.PcItem("table"),
			readline.PcItem("json"),
			readline.PcItem("csv"),
		),
		readline.PcItem(".load"),
		readline.PcItem(".save"),
		readline.PcItem(".history"),
		readline.PcItem(".clear"),
		readline.PcItem(".commands"),
		readline.PcItem(".examples"),
		readline.PcItem(".stats"),
		readline.PcItem(".exit"),
		readline.PcItem(".quit"),

		readline.PcItem("get"),
		readline.PcItem("deps"),
		readline.PcItem("dependents"),
		readline.PcItem("search"),
		readline.PcItem("impact"),
		readline.PcItem("entrypoints"),
		readline.PcItem("list"),
	}
}

// buildModuleList extracts module paths from the graph
func (c *Completer) buildModuleList() {
	if c.graph == nil {
		return
	}
	c.graph.Range(func(mod *graph.Module) bool {
		if mod.Path != "" {
			c.modules = append(c.modules, mod.Path)
		}
		return true
	})
}

// GetCompleter returns a readline completer
func (c *Completer) GetCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(c.commands...)
}

// GetAutoCompleteFunc returns a custom autocomplete function for
// context-aware completion
func (c *Completer) GetAutoCompleteFunc() readline.AutoCompleter {
	return &contextCompleter{c}
}

// contextCompleter implements readline.AutoCompleter for context-aware
// completion
type contextCompleter struct {
	completer *Completer
}

// pathArgVerbs are graph verbs whose single argument is a module path
var pathArgVerbs = map[string]bool{
	"get":        true,
	"show":       true,
	"deps":       true,
	"dependents": true,
	"impact":     true,
}

// Do implements the readline.AutoCompleter interface
func (cc *contextCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])

	words := strings.Fields(lineStr)
	if len(words) == 0 {
		return nil, 0
	}

	lastWord := ""
	if pos > 0 && !unicode.IsSpace(rune(line[pos-1])) {
		lastWord = words[len(words)-1]
	}

	var suggestions []string

	if len(words) >= 1 && pathArgVerbs[strings.ToLower(words[0])] && (len(words) > 1 || lastWord == "") {
		suggestions = cc.completer.modules
	} else if strings.HasPrefix(lastWord, ".") {
		suggestions = []string{
			".help", ".format", ".load", ".save", ".history",
			".clear", ".commands", ".examples", ".stats", ".exit", ".quit",
		}
	} else {
		suggestions = cc.completer.verbs
	}

	var matches []string
	lowerLast := strings.ToLower(lastWord)
	for _, suggestion := range suggestions {
		if strings.HasPrefix(strings.ToLower(suggestion), lowerLast) {
			matches = append(matches, suggestion)
		}
	}

	if len(matches) == 0 {
		return nil, 0
	}

	length = len(lastWord)

	newLine = make([][]rune, len(matches))
	for i, match := range matches {
		completion := match[len(lastWord):]
		newLine[i] = []rune(completion)
	}

	return newLine, length
}

// getGraphVerbs returns the set of graph command verbs
func getGraphVerbs() []string {
	return []string{
		"get", "show", "deps", "dependencies", "dependents",
		"search", "find", "impact", "entrypoints", "entries", "list",
	}
}

// GetModules returns the list of known module paths
func (c *Completer) GetModules() []string {
	return c.modules
}

// GetCommands returns the combined list of graph verbs and REPL commands
func (c *Completer) GetCommands() []string {
	cmds := make([]string, 0, len(c.verbs)+11)
	cmds = append(cmds, c.verbs...)
	cmds = append(cmds,
		".help", ".format", ".load", ".save", ".history",
		".clear", ".commands", ".examples", ".stats", ".exit", ".quit",
	)
	return cmds
}

// FilterSuggestions filters suggestions based on prefix
func FilterSuggestions(suggestions []string, prefix string) []string {
	if prefix == "" {
		return suggestions
	}

	prefix = strings.ToLower(prefix)
	filtered := make([]string, 0)

	for _, suggestion := range suggestions {
		if strings.HasPrefix(strings.ToLower(suggestion), prefix) {
			filtered = append(filtered, suggestion)
		}
	}

	return filtered
}
