package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

func TestCheckMetroVersion(t *testing.T) {
	tests := []struct {
		version string
		wantMsg string
	}{
		{"1.0.0", "v1.0.0"},
		{"", "vunknown"},
		{"2.3.4-beta", "v2.3.4-beta"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			check := CheckMetroVersion(tt.version)
			if check.Status != StatusOK {
				t.Errorf("Expected StatusOK, got %v", check.Status)
			}
			if !strings.Contains(check.Message, tt.wantMsg) {
				t.Errorf("Expected message to contain %q, got %q", tt.wantMsg, check.Message)
			}
		})
	}
}

func TestCheckGoVersion(t *testing.T) {
	check := CheckGoVersion()
	if check.Status == StatusError {
		t.Errorf("Go version check failed: %s", check.Message)
	}
	if check.Name != "Go version" {
		t.Errorf("Expected name 'Go version', got %q", check.Name)
	}
}

func TestCheckGraphVizInstalled(t *testing.T) {
	check := CheckGraphVizInstalled()
	if check.Status == StatusError {
		t.Errorf("GraphViz check should not return Error status")
	}
	if check.Name != "GraphViz installation" {
		t.Errorf("Expected name 'GraphViz installation', got %q", check.Name)
	}
}

func TestCheckCacheIntegrity(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "metro-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	check := CheckCacheIntegrity(tmpDir)
	if check.Status != StatusOK {
		t.Errorf("Expected StatusOK for missing cache, got %v", check.Status)
	}
}

func TestCheckConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "metro-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	check := CheckConfigFile(tmpDir)
	if check.Status != StatusWarning {
		t.Errorf("Expected StatusWarning for missing config, got %v", check.Status)
	}

	configFile := filepath.Join(tmpDir, "metro.yaml")
	os.WriteFile(configFile, []byte("root: ."), 0644)

	check = CheckConfigFile(tmpDir)
	if check.Status != StatusOK {
		t.Errorf("Expected StatusOK for existing config, got %v", check.Status)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	check := CheckDiskSpace(".")
	if check.Status == StatusError && !strings.Contains(check.Message, "Low disk space") {
		t.Errorf("Unexpected error in disk space check: %s", check.Message)
	}
	if check.Name != "Disk space" {
		t.Errorf("Expected name 'Disk space', got %q", check.Name)
	}
}

func TestCheckPermissions(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "metro-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	check := CheckPermissions(tmpDir)
	if check.Status != StatusOK {
		t.Errorf("Expected StatusOK for temp dir permissions, got %v: %s", check.Status, check.Message)
	}
}

func TestRunAllChecks(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "metro-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	checks := RunAllChecks(tmpDir, "test-version")

	expectedChecks := 7
	if len(checks) != expectedChecks {
		t.Errorf("Expected %d checks, got %d", expectedChecks, len(checks))
	}
	for i, check := range checks {
		if check.Name == "" {
			t.Errorf("Check %d has empty name", i)
		}
	}
}

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusOK, "OK"},
		{StatusWarning, "WARNING"},
		{StatusError, "ERROR"},
		{CheckStatus(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func buildDoctorTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	deps := map[string][]string{
		"entry.js": {"a.js"},
		"a.js":     {"b.js"},
		"b.js":     {},
	}
	g := graph.NewGraph([]string{"entry.js"})
	opts := graph.Options{
		Resolve:   func(fromPath, name string) (string, error) { return name, nil },
		Transform: func(path string) (graph.TransformResult, error) { return graph.TransformResult{Dependencies: deps[path]}, nil },
	}
	if _, _, err := graph.InitialTraverseDependencies(g, opts); err != nil {
		t.Fatalf("InitialTraverseDependencies: %v", err)
	}
	return g
}

func TestCheckEntryPointsPresent(t *testing.T) {
	g := buildDoctorTestGraph(t)
	check := CheckEntryPointsPresent(g)
	if check.Status != StatusOK {
		t.Errorf("Expected StatusOK, got %v: %s", check.Status, check.Message)
	}
}

func TestCheckInverseConsistency(t *testing.T) {
	g := buildDoctorTestGraph(t)
	check := CheckInverseConsistency(g)
	if check.Status != StatusOK {
		t.Errorf("Expected StatusOK, got %v: %s", check.Status, check.Message)
	}
}

func TestCheckOrphans(t *testing.T) {
	g := buildDoctorTestGraph(t)
	check := CheckOrphans(g)
	if check.Status != StatusOK {
		t.Errorf("Expected StatusOK for a cleanly built graph, got %v: %s", check.Status, check.Message)
	}
}

func TestRunGraphChecks(t *testing.T) {
	g := buildDoctorTestGraph(t)
	checks := RunGraphChecks(g)
	if len(checks) != 3 {
		t.Fatalf("Expected 3 graph checks, got %d", len(checks))
	}
	for _, check := range checks {
		if check.Status == StatusError {
			t.Errorf("Unexpected error check %q: %s", check.Name, check.Message)
		}
	}
}
