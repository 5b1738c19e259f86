// Package doctor runs environment and graph-health diagnostics: Go
// toolchain and GraphViz availability, disk space and permissions,
// persistent-cache integrity, and the live invariant checks a bundler
// operator runs against a built dependency graph before trusting it.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/nguyenquangtin/metro/pkg/analysis"
	"github.com/nguyenquangtin/metro/pkg/cache"
	"github.com/nguyenquangtin/metro/pkg/graph"
)

// CheckStatus represents the status of a health check
type CheckStatus int

const (
	StatusOK CheckStatus = iota
	StatusWarning
	StatusError
)

func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// HealthCheck represents a single diagnostic check
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string
}

// CheckMetroVersion reports the running binary's version string.
func CheckMetroVersion(version string) HealthCheck {
	if version == "" {
		version = "unknown"
	}
	return HealthCheck{Name: "metro version", Status: StatusOK, Message: fmt.Sprintf("v%s", version)}
}

// CheckGoVersion checks if Go version meets minimum requirements
func CheckGoVersion() HealthCheck {
	goVersion := runtime.Version()

	if !strings.HasPrefix(goVersion, "go1.") {
		return HealthCheck{Name: "Go version", Status: StatusError, Message: fmt.Sprintf("Unexpected Go version format: %s", goVersion)}
	}

	parts := strings.Split(goVersion[4:], ".")
	if len(parts) < 2 {
		return HealthCheck{Name: "Go version", Status: StatusWarning, Message: fmt.Sprintf("Could not parse Go version: %s", goVersion)}
	}

	if len(parts[0]) < 2 || (len(parts[0]) == 2 && parts[0] < "21") {
		return HealthCheck{
			Name: "Go version", Status: StatusError,
			Message: fmt.Sprintf("%s (requires Go 1.21+)", goVersion),
			Fix:     "Upgrade Go: https://golang.org/dl/",
		}
	}

	return HealthCheck{Name: "Go version", Status: StatusOK, Message: goVersion}
}

// CheckGraphVizInstalled checks if GraphViz is installed (optional, used by pkg/viz to rasterize DOT output)
func CheckGraphVizInstalled() HealthCheck {
	if _, err := exec.LookPath("dot"); err != nil {
		fix := "Install GraphViz for visualization support"
		switch runtime.GOOS {
		case "darwin":
			fix = "Install: brew install graphviz"
		case "linux":
			fix = "Install: sudo apt-get install graphviz (or equivalent)"
		}
		return HealthCheck{Name: "GraphViz installation", Status: StatusWarning, Message: "GraphViz not found (optional for visualizations)", Fix: fix}
	}
	return HealthCheck{Name: "GraphViz installation", Status: StatusOK, Message: "GraphViz available"}
}

// CheckCacheIntegrity opens the bbolt-backed transform cache under
// rootPath and reports its module count, or flags corruption.
func CheckCacheIntegrity(rootPath string) HealthCheck {
	cacheDir := filepath.Join(rootPath, ".metro-cache")
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		return HealthCheck{Name: "Cache directory", Status: StatusOK, Message: "No cache (will be created on first build)"}
	}

	mgr, err := cache.NewManager(rootPath)
	if err != nil {
		return HealthCheck{
			Name: "Cache integrity", Status: StatusError,
			Message: fmt.Sprintf("Cache corrupted: %v", err),
			Fix:     "Delete cache directory: rm -rf .metro-cache",
		}
	}
	defer mgr.Close()

	stats, err := mgr.Stats()
	if err != nil {
		return HealthCheck{Name: "Cache integrity", Status: StatusWarning, Message: fmt.Sprintf("Could not get cache stats: %v", err)}
	}

	checked, mismatched, err := mgr.VerifyIntegrity()
	if err != nil {
		return HealthCheck{Name: "Cache integrity", Status: StatusWarning, Message: fmt.Sprintf("Could not verify cache: %v", err)}
	}
	if mismatched > 0 {
		return HealthCheck{
			Name: "Cache integrity", Status: StatusWarning,
			Message: fmt.Sprintf("%d of %d entries have a hash index mismatch", mismatched, checked),
			Fix:     "Clear the cache: rm -rf .metro-cache",
		}
	}

	return HealthCheck{Name: "Cache integrity", Status: StatusOK, Message: fmt.Sprintf("%d cached modules", stats.ModuleCount)}
}

// CheckConfigFile checks if the configuration file exists
func CheckConfigFile(rootPath string) HealthCheck {
	configPath := filepath.Join(rootPath, "metro.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return HealthCheck{Name: "Configuration file", Status: StatusWarning, Message: "No config file (using defaults)", Fix: "Create config: add a metro.yaml in the project root"}
	}
	return HealthCheck{Name: "Configuration file", Status: StatusOK, Message: "Configuration found"}
}

// CheckDiskSpace checks available disk space
func CheckDiskSpace(rootPath string) HealthCheck {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(rootPath, &stat); err != nil {
		return HealthCheck{Name: "Disk space", Status: StatusWarning, Message: fmt.Sprintf("Could not check disk space: %v", err)}
	}

	availableGB := float64(stat.Bavail*uint64(stat.Bsize)) / (1024 * 1024 * 1024)

	if availableGB < 1.0 {
		return HealthCheck{Name: "Disk space", Status: StatusError, Message: fmt.Sprintf("Low disk space: %.1f GB available", availableGB), Fix: "Free up disk space"}
	}
	if availableGB < 5.0 {
		return HealthCheck{Name: "Disk space", Status: StatusWarning, Message: fmt.Sprintf("%.1f GB available (consider freeing space)", availableGB)}
	}
	return HealthCheck{Name: "Disk space", Status: StatusOK, Message: fmt.Sprintf("%.1f GB available", availableGB)}
}

// CheckPermissions checks if the current directory is readable/writable
func CheckPermissions(rootPath string) HealthCheck {
	if _, err := os.ReadDir(rootPath); err != nil {
		return HealthCheck{Name: "File permissions", Status: StatusError, Message: fmt.Sprintf("Cannot read directory: %v", err), Fix: "Check directory permissions"}
	}

	testFile := filepath.Join(rootPath, ".metro_permission_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return HealthCheck{Name: "File permissions", Status: StatusError, Message: fmt.Sprintf("Cannot write to directory: %v", err), Fix: "Check directory permissions"}
	}
	os.Remove(testFile)

	return HealthCheck{Name: "File permissions", Status: StatusOK, Message: "Read/write access OK"}
}

// RunAllChecks runs every environment-level check. It takes no graph,
// since a graph may not exist yet (e.g. before the first build).
func RunAllChecks(rootPath, version string) []HealthCheck {
	return []HealthCheck{
		CheckMetroVersion(version),
		CheckGoVersion(),
		CheckGraphVizInstalled(),
		CheckCacheIntegrity(rootPath),
		CheckConfigFile(rootPath),
		CheckDiskSpace(rootPath),
		CheckPermissions(rootPath),
	}
}

// CheckOrphans runs analysis.FindOrphans against g and reports the
// result as a health check: any orphan means the graph has drifted
// from the pure reference-counting invariant, almost always because an
// isolated cycle lost its last external edge.
func CheckOrphans(g *graph.Graph) HealthCheck {
	orphans := analysis.FindOrphans(g)
	if len(orphans) == 0 {
		return HealthCheck{Name: "Graph reachability", Status: StatusOK, Message: fmt.Sprintf("all %d modules reachable from an entry point", g.Len())}
	}
	return HealthCheck{
		Name: "Graph reachability", Status: StatusWarning,
		Message: fmt.Sprintf("%d module(s) unreachable from any entry point: %s", len(orphans), strings.Join(orphans, ", ")),
		Fix:     "call graph.ReorderGraph to prune them, or investigate the cycle that is retaining them",
	}
}

// CheckInverseConsistency verifies that every module's forward
// dependency edges and every target's inverse-dependency set agree
// with each other — the two halves of the same edge the traversal
// engine is responsible for keeping in sync.
func CheckInverseConsistency(g *graph.Graph) HealthCheck {
	var mismatches []string
	g.Range(func(m *graph.Module) bool {
		for _, dep := range m.Dependencies() {
			target, ok := g.Get(dep.Path)
			if !ok {
				mismatches = append(mismatches, fmt.Sprintf("%s -> %s (target missing)", m.Path, dep.Path))
				continue
			}
			found := false
			for _, inv := range target.InverseDependencies() {
				if inv == m.Path {
					found = true
					break
				}
			}
			if !found {
				mismatches = append(mismatches, fmt.Sprintf("%s -> %s (missing inverse edge)", m.Path, dep.Path))
			}
		}
		return true
	})

	if len(mismatches) == 0 {
		return HealthCheck{Name: "Inverse edge consistency", Status: StatusOK, Message: "every forward edge has a matching inverse entry"}
	}
	return HealthCheck{
		Name: "Inverse edge consistency", Status: StatusError,
		Message: fmt.Sprintf("%d inconsistent edge(s): %s", len(mismatches), strings.Join(mismatches, "; ")),
		Fix:     "this indicates an engine bug, not a recoverable user error",
	}
}

// CheckEntryPointsPresent verifies every declared entry point still
// has a module record, per invariant I5 (entry points are immune to
// release and must always resolve).
func CheckEntryPointsPresent(g *graph.Graph) HealthCheck {
	var missing []string
	for _, entry := range g.EntryPoints() {
		if !g.Has(entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return HealthCheck{Name: "Entry points present", Status: StatusOK, Message: fmt.Sprintf("%d entry point(s) all resolved", len(g.EntryPoints()))}
	}
	return HealthCheck{
		Name: "Entry points present", Status: StatusError,
		Message: fmt.Sprintf("missing entry point module(s): %s", strings.Join(missing, ", ")),
	}
}

// RunGraphChecks runs every check that needs a live graph in hand, in
// addition to RunAllChecks' environment checks.
func RunGraphChecks(g *graph.Graph) []HealthCheck {
	return []HealthCheck{
		CheckEntryPointsPresent(g),
		CheckInverseConsistency(g),
		CheckOrphans(g),
	}
}
