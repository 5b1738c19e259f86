package repl

import (
	"testing"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatValue(tt.input)
			if result != tt.expected {
				t.Errorf("formatValue(%v) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"short", "hi", 5, "hi   "},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padRight(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, result, tt.expected)
			}
		})
	}
}

func TestFormatTable(t *testing.T) {
	config := &Config{
		NoColor: true,
		Prompt:  "test> ",
	}

	result := &Result{
		Columns: []string{"path", "isEntryPoint"},
		Rows: []map[string]string{
			{"path": "main.js", "isEntryPoint": "true"},
		},
	}

	r := &REPL{
		config: config,
		format: "table",
	}

	if err := r.formatTable(result); err != nil {
		t.Errorf("formatTable() returned error: %v", err)
	}
}

func TestFormatJSON(t *testing.T) {
	config := &Config{
		NoColor: true,
		Prompt:  "test> ",
	}

	result := &Result{
		Columns: []string{"path"},
		Rows: []map[string]string{
			{"path": "main.js"},
		},
	}

	r := &REPL{
		config: config,
		format: "json",
	}

	if err := r.formatJSON(result); err != nil {
		t.Errorf("formatJSON() returned error: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"multiline", "hello\nworld", 20, "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestModuleExtension(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "main.js", ".js"},
		{"nested", "pkg/graph/graph.go", ".go"},
		{"none", "no-extension", ""},
		{"dotted dir", "dir.with.dot/file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := moduleExtension(tt.input)
			if result != tt.expected {
				t.Errorf("moduleExtension(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
