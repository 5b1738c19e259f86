// Package resolve implements graph.ResolveFunc for a JavaScript/
// TypeScript project tree: Node-style relative resolution, extension
// probing, directory index files, and node_modules lookup walking up
// the directory tree.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions is the order in which a bare specifier or an
// extension-less relative import is probed, matching the priority a
// typical bundler resolver uses.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".json", ".mjs", ".cjs"}

// Options configures a Resolver.
type Options struct {
	Extensions []string          // probed in order; defaults to DefaultExtensions
	Aliases    map[string]string // exact specifier -> replacement path/specifier, applied before resolution
}

// Resolver resolves dependency names written in one file's source to
// the canonical absolute path of the file they refer to. It satisfies
// graph.ResolveFunc via its Resolve method.
type Resolver struct {
	extensions []string
	aliases    map[string]string
}

// New constructs a Resolver. A zero-value Options uses DefaultExtensions
// and no aliases.
func New(opts Options) *Resolver {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Resolver{extensions: extensions, aliases: opts.Aliases}
}

// Resolve maps name, as written in fromPath's source, to an absolute
// target path. It is shaped to satisfy graph.ResolveFunc directly.
func (r *Resolver) Resolve(fromPath, name string) (string, error) {
	if repl, ok := r.aliases[name]; ok {
		name = repl
	}

	if isRelative(name) {
		base := filepath.Join(filepath.Dir(fromPath), name)
		if resolved, ok := r.resolveFileOrDir(base); ok {
			return resolved, nil
		}
		return "", fmt.Errorf("cannot resolve relative import %q from %s", name, fromPath)
	}

	if resolved, ok := r.resolveNodeModules(fromPath, name); ok {
		return resolved, nil
	}
	return "", fmt.Errorf("cannot resolve %q from %s: not found in any node_modules", name, fromPath)
}

func isRelative(name string) bool {
	return strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") || strings.HasPrefix(name, "/")
}

// resolveFileOrDir tries base verbatim, base with each probed
// extension appended, and base as a directory with an index file or a
// package.json "main"/"browser" entry.
func (r *Resolver) resolveFileOrDir(base string) (string, bool) {
	if isRegularFile(base) {
		return base, true
	}
	for _, ext := range r.extensions {
		candidate := base + ext
		if isRegularFile(candidate) {
			return candidate, true
		}
	}

	info, err := os.Stat(base)
	if err == nil && info.IsDir() {
		if main, ok := r.readPackageMain(base); ok {
			if resolved, ok := r.resolveFileOrDir(filepath.Join(base, main)); ok {
				return resolved, true
			}
		}
		for _, ext := range r.extensions {
			candidate := filepath.Join(base, "index"+ext)
			if isRegularFile(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

// resolveNodeModules walks up from fromPath's directory looking for a
// node_modules folder that contains name, per Node's module resolution
// algorithm.
func (r *Resolver) resolveNodeModules(fromPath, name string) (string, bool) {
	dir := filepath.Dir(fromPath)
	for {
		candidate := filepath.Join(dir, "node_modules", name)
		if resolved, ok := r.resolveFileOrDir(candidate); ok {
			return resolved, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type packageJSON struct {
	Main    string `json:"main"`
	Browser string `json:"browser"`
	Module  string `json:"module"`
}

func (r *Resolver) readPackageMain(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return "", false
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", false
	}
	switch {
	case pkg.Browser != "":
		return pkg.Browser, true
	case pkg.Module != "":
		return pkg.Module, true
	case pkg.Main != "":
		return pkg.Main, true
	default:
		return "", false
	}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
