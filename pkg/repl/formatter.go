package repl

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// formatResult formats and displays a command result
func (r *REPL) formatResult(result *Result) error {
	if result == nil {
		r.printInfo("Command executed successfully (no results)")
		return nil
	}

	switch r.format {
	case "table":
		return r.formatTable(result)
	case "json":
		return r.formatJSON(result)
	case "csv":
		return r.formatCSV(result)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// formatTable formats a result as a table
func (r *REPL) formatTable(result *Result) error {
	if len(result.Rows) == 0 {
		r.printInfo("No results")
		return nil
	}

	cols := result.Columns
	if len(cols) == 0 {
		r.printInfo("No results")
		return nil
	}

	colWidths := make(map[string]int)
	for _, c := range cols {
		colWidths[c] = len(c)
	}

	for _, row := range result.Rows {
		for _, c := range cols {
			if val, ok := row[c]; ok {
				if len(val) > colWidths[c] {
					colWidths[c] = len(val)
				}
			}
		}
	}

	for c := range colWidths {
		if colWidths[c] > 50 {
			colWidths[c] = 50
		}
	}

	var headerParts []string
	for _, c := range cols {
		headerParts = append(headerParts, padRight(c, colWidths[c]))
	}

	if r.config.NoColor {
		fmt.Println(strings.Join(headerParts, " | "))
		fmt.Println(strings.Repeat("-", sumWidths(colWidths, len(cols))))
	} else {
		cyan := color.New(color.FgCyan, color.Bold)
		cyan.Println(strings.Join(headerParts, " | "))
		fmt.Println(strings.Repeat("-", sumWidths(colWidths, len(cols))))
	}

	for _, row := range result.Rows {
		var rowParts []string
		for _, c := range cols {
			val := row[c]
			if len(val) > 50 {
				val = val[:47] + "..."
			}
			rowParts = append(rowParts, padRight(val, colWidths[c]))
		}
		fmt.Println(strings.Join(rowParts, " | "))
	}

	return nil
}

// formatJSON formats a result as JSON
func (r *REPL) formatJSON(result *Result) error {
	data, err := json.MarshalIndent(result.Rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Println(string(data))
	return nil
}

// formatCSV formats a result as CSV
func (r *REPL) formatCSV(result *Result) error {
	if len(result.Rows) == 0 {
		r.printInfo("No results")
		return nil
	}

	w := csv.NewWriter(r.rl.Stdout())

	if err := w.Write(result.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range result.Rows {
		record := make([]string, len(result.Columns))
		for i, c := range result.Columns {
			record[i] = row[c]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// formatValue formats an arbitrary value as a string
func formatValue(val interface{}) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// padRight pads a string to the right
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// sumWidths calculates the total width for the table
func sumWidths(widths map[string]int, numCols int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	total += (numCols - 1) * 3
	return total
}
