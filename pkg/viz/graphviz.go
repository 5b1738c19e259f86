package viz

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nguyenquangtin/metro/pkg/analysis"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

// OutputFormat selects the file RenderToFile produces.
type OutputFormat string

const (
	FormatDOT     OutputFormat = "dot"     // DOT source, written as-is
	FormatSVG     OutputFormat = "svg"     // rendered via the `dot` binary
	FormatPNG     OutputFormat = "png"     // rendered via the `dot` binary
	FormatPDF     OutputFormat = "pdf"     // rendered via the `dot` binary
	FormatMermaid OutputFormat = "mermaid" // Mermaid source, written as-is
)

// RenderOptions configures RenderToFile.
type RenderOptions struct {
	VizOptions
	Output string       // output file path
	Format OutputFormat // output format; inferred from Output's extension if empty
}

// formatFromExt maps a lowercased file extension to the format
// RenderToFile should use when Format wasn't set explicitly.
func formatFromExt(ext string) OutputFormat {
	switch ext {
	case ".svg":
		return FormatSVG
	case ".png":
		return FormatPNG
	case ".pdf":
		return FormatPDF
	case ".mmd", ".md":
		return FormatMermaid
	default:
		return FormatDOT
	}
}

// RenderToFile renders g to opts.Output in opts.Format (inferring the
// format from the file extension when unset). `cmd/metro viz` is the
// only caller: it builds opts.VizOptions from --impact/--color-by/etc
// flags and leaves the format decision to the output path the user gave.
func RenderToFile(g *graph.Graph, opts RenderOptions) error {
	if opts.Format == "" {
		opts.Format = formatFromExt(strings.ToLower(filepath.Ext(opts.Output)))
	}

	if opts.Format == FormatMermaid {
		mermaidContent, err := GenerateMermaidMarkdown(g, MermaidOptions{
			Type:    MermaidGraph,
			ColorBy: opts.ColorBy,
			Title:   opts.Title,
		})
		if err != nil {
			return fmt.Errorf("viz: generate mermaid: %w", err)
		}
		return os.WriteFile(opts.Output, []byte(mermaidContent), 0644)
	}

	dotContent, err := GenerateDOT(g, opts.VizOptions)
	if err != nil {
		return fmt.Errorf("viz: generate dot: %w", err)
	}

	if opts.Format == FormatDOT {
		return os.WriteFile(opts.Output, []byte(dotContent), 0644)
	}

	if !isGraphVizAvailable() {
		dotPath := strings.TrimSuffix(opts.Output, filepath.Ext(opts.Output)) + ".dot"
		if err := os.WriteFile(dotPath, []byte(dotContent), 0644); err != nil {
			return fmt.Errorf("viz: write fallback dot file: %w", err)
		}
		return fmt.Errorf("graphviz not installed, saved DOT source to %s instead (install graphviz to render %s)", dotPath, opts.Format)
	}

	return renderWithGraphViz(dotContent, opts)
}

// RenderImpactToFile is a convenience wrapper around RenderToFile for
// the common case of visualizing one module's blast radius, as
// produced by analysis.ImpactAnalysis.AnalyzeImpact.
func RenderImpactToFile(g *graph.Graph, impact *analysis.ImpactResult, output string, format OutputFormat) error {
	return RenderToFile(g, RenderOptions{
		VizOptions: VizOptions{Type: VizImpact, Impact: impact, Title: "Impact: " + impact.TargetModule},
		Output:     output,
		Format:     format,
	})
}

// isGraphVizAvailable checks if GraphViz is installed
func isGraphVizAvailable() bool {
	_, err := exec.LookPath("dot")
	return err == nil
}

// renderWithGraphViz renders DOT content using GraphViz
func renderWithGraphViz(dotContent string, opts RenderOptions) error {
	// Determine the GraphViz command based on layout
	cmd := opts.Layout
	if cmd == "" {
		cmd = "dot"
	}

	// Create command
	command := exec.Command(cmd, fmt.Sprintf("-T%s", opts.Format), "-o", opts.Output)
	command.Stdin = strings.NewReader(dotContent)

	// Capture stderr for error messages
	var stderr strings.Builder
	command.Stderr = &stderr

	// Run command
	if err := command.Run(); err != nil {
		return fmt.Errorf("GraphViz rendering failed: %s: %w", stderr.String(), err)
	}

	return nil
}

// GetAvailableLayouts returns available GraphViz layout engines
func GetAvailableLayouts() []string {
	layouts := []string{"dot", "neato", "fdp", "circo", "twopi", "sfdp"}
	available := make([]string, 0)

	for _, layout := range layouts {
		if _, err := exec.LookPath(layout); err == nil {
			available = append(available, layout)
		}
	}

	return available
}

// ValidateLayout checks if a layout engine is available
func ValidateLayout(layout string) error {
	if layout == "" {
		layout = "dot"
	}

	if _, err := exec.LookPath(layout); err != nil {
		return fmt.Errorf("layout engine '%s' not found (install graphviz)", layout)
	}

	return nil
}
