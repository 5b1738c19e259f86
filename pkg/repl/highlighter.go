package repl

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// Highlighter provides syntax highlighting for REPL command lines
type Highlighter struct {
	noColor     bool
	verbColor   *color.Color
	pathColor   *color.Color
	flagColor   *color.Color
	commentColor *color.Color
}

// NewHighlighter creates a new syntax highlighter
func NewHighlighter(noColor bool) *Highlighter {
	return &Highlighter{
		noColor:      noColor,
		verbColor:    color.New(color.FgCyan, color.Bold),
		pathColor:    color.New(color.FgGreen),
		flagColor:    color.New(color.FgMagenta),
		commentColor: color.New(color.FgHiBlack),
	}
}

// HighlightQuery applies syntax highlighting to a REPL command line
func (h *Highlighter) HighlightQuery(line string) string {
	if h.noColor {
		return line
	}

	verbPattern := regexp.MustCompile(`^\s*(get|show|deps|dependencies|dependents|search|find|impact|entrypoints|entries|list)\b`)
	dotCommandPattern := regexp.MustCompile(`^\s*(\.\w+)`)
	pathPattern := regexp.MustCompile(`[\w./-]+\.\w+`)
	commentPattern := regexp.MustCompile(`#.*$`)

	result := line

	result = pathPattern.ReplaceAllStringFunc(result, func(match string) string {
		return h.pathColor.Sprint(match)
	})

	result = dotCommandPattern.ReplaceAllStringFunc(result, func(match string) string {
		return h.flagColor.Sprint(match)
	})

	result = verbPattern.ReplaceAllStringFunc(result, func(match string) string {
		return h.verbColor.Sprint(strings.ToLower(match))
	})

	result = commentPattern.ReplaceAllStringFunc(result, func(match string) string {
		return h.commentColor.Sprint(match)
	})

	return result
}

// HighlightQuery is a convenience function for highlighting a single line
func HighlightQuery(line string, noColor bool) string {
	h := NewHighlighter(noColor)
	return h.HighlightQuery(line)
}
