// Package transform implements graph.TransformFunc for JavaScript and
// TypeScript source: it extracts the ordered list of module
// specifiers a file references (CommonJS require and ES import/export
// forms) and produces the opaque per-module artifact the graph stores.
//
// Full JS/TS parsing is out of reach of the standard library and no
// ecosystem JS parser is available here, so dependency names are
// extracted with a small set of targeted regular expressions rather
// than a real AST walk; see DESIGN.md for why this is the deliberate
// boundary rather than an oversight.
package transform

import (
	"fmt"
	"os"
	"regexp"
	"sort"
)

var (
	requireRe   = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	importRe    = regexp.MustCompile(`import(?:[^'";]*?)from\s+['"]([^'"]+)['"]`)
	bareImport  = regexp.MustCompile(`(?m)^[ \t]*import\s+['"]([^'"]+)['"]`)
	exportFromR = regexp.MustCompile(`export(?:[\s\S]*?)from\s+['"]([^'"]+)['"]`)
	dynamicImpR = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)
)

// Output is the opaque artifact this package's Transform stores on
// every module: an arbitrary per-file payload carried verbatim by the
// graph.
type Output struct {
	Path       string
	Source     []byte
	LineCount  int
	ByteLength int
}

// Transform reads path and extracts its dependency specifiers in
// source order, satisfying graph.TransformFunc.
func Transform(path string) (TransformResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TransformResult{}, fmt.Errorf("transform: read %s: %w", path, err)
	}

	names := ExtractDependencyNames(data)
	lines := 1
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}

	return TransformResult{
		Dependencies: names,
		Output: Output{
			Path:       path,
			Source:     data,
			LineCount:  lines,
			ByteLength: len(data),
		},
	}, nil
}

// TransformResult mirrors graph.TransformResult's shape locally so
// this package has no import-time dependency on pkg/graph; callers
// wire Transform directly into graph.Options.Transform, whose
// parameter types are structurally identical.
type TransformResult struct {
	Dependencies []string
	Output       interface{}
}

// ExtractDependencyNames scans source for require(...), import ... from
// "...", bare import "...", export ... from "...", and dynamic
// import(...) forms, returning every specifier found in the order its
// opening token appears, without duplicates.
func ExtractDependencyNames(source []byte) []string {
	type match struct {
		offset int
		name   string
	}
	var matches []match

	collect := func(re *regexp.Regexp) {
		for _, loc := range re.FindAllSubmatchIndex(source, -1) {
			matches = append(matches, match{offset: loc[0], name: string(source[loc[2]:loc[3]])})
		}
	}
	collect(requireRe)
	collect(importRe)
	collect(bareImport)
	collect(exportFromR)
	collect(dynamicImpR)

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].offset < matches[j].offset })

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.name]; dup {
			continue
		}
		seen[m.name] = struct{}{}
		names = append(names, m.name)
	}
	return names
}
