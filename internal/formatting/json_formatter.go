package formatting

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// FormatReports writes the reports as indented JSON
func (f *JSONFormatter) FormatReports(results []DocumentResult) error {
	return f.write(serializable(results))
}

// FormatNames writes the names as a JSON array
func (f *JSONFormatter) FormatNames(names []string) error {
	if names == nil {
		names = []string{}
	}
	return f.write(names)
}

// FormatCycles writes {"cycles": [...]}
func (f *JSONFormatter) FormatCycles(cycles [][]string) error {
	if cycles == nil {
		cycles = [][]string{}
	}
	return f.write(map[string]interface{}{"cycles": cycles})
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

func (f *JSONFormatter) write(data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	_, err = fmt.Fprintln(f.options.writer(), string(b))
	return err
}
